package ports

import (
	"context"
	"time"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// MeetingRepository defines persistence operations for meetings.
//
// Implementations enforce uniqueness of (doctor_id, appointment_at) and
// return domain.ErrSlotTaken from Create and Update when it is violated.
type MeetingRepository interface {
	Create(ctx context.Context, m *domain.Meeting) error
	FindByID(ctx context.Context, id int64) (*domain.Meeting, error)
	// FindByDoctorAndTime returns the meeting occupying the slot, or
	// domain.ErrMeetingNotFound when the slot is free.
	FindByDoctorAndTime(ctx context.Context, doctorID int64, at time.Time) (*domain.Meeting, error)
	List(ctx context.Context) ([]*domain.Meeting, error)
	Update(ctx context.Context, m *domain.Meeting) error
	Delete(ctx context.Context, id int64) error
}
