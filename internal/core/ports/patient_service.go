package ports

import (
	"context"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// PatientInput carries the mutable fields of a patient.
type PatientInput struct {
	Name  string
	Email string
	Phone string
}

// PatientService defines use-case operations for patients.
type PatientService interface {
	CreatePatient(ctx context.Context, in PatientInput) (*domain.Patient, error)
	ListPatients(ctx context.Context) ([]*domain.Patient, error)
	GetPatient(ctx context.Context, id int64) (*domain.Patient, error)
	UpdatePatient(ctx context.Context, id int64, in PatientInput) (*domain.Patient, error)
	DeletePatient(ctx context.Context, id int64) error
}
