package ports

import (
	"context"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// StaffRepository defines persistence operations for doctors.
type StaffRepository interface {
	Create(ctx context.Context, s *domain.Staff) error
	FindByID(ctx context.Context, id int64) (*domain.Staff, error)
	List(ctx context.Context) ([]*domain.Staff, error)
	Update(ctx context.Context, s *domain.Staff) error
	// Delete removes the doctor and every meeting booked with them.
	Delete(ctx context.Context, id int64) error
}
