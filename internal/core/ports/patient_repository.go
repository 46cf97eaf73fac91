package ports

import (
	"context"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// PatientRepository defines persistence operations for patients.
type PatientRepository interface {
	// Create inserts p and sets p.ID to the store-assigned identifier.
	Create(ctx context.Context, p *domain.Patient) error
	FindByID(ctx context.Context, id int64) (*domain.Patient, error)
	// List returns every patient ordered by id.
	List(ctx context.Context) ([]*domain.Patient, error)
	// Update overwrites name, email and phone of the patient with p.ID.
	Update(ctx context.Context, p *domain.Patient) error
	// Delete removes the patient and every meeting that references it.
	Delete(ctx context.Context, id int64) error
}
