package ports

import (
	"context"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// StaffInput carries the mutable fields of a doctor.
type StaffInput struct {
	Name           string
	Specialization string
	Email          string
	Phone          string
}

// StaffService defines use-case operations for the staff directory.
type StaffService interface {
	CreateStaff(ctx context.Context, in StaffInput) (*domain.Staff, error)
	ListStaff(ctx context.Context) ([]*domain.Staff, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	UpdateStaff(ctx context.Context, id int64, in StaffInput) (*domain.Staff, error)
	DeleteStaff(ctx context.Context, id int64) error
}
