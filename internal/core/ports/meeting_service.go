package ports

import (
	"context"
	"time"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

// MeetingInput is the DTO passed from the transport layer to MeetingService.
type MeetingInput struct {
	DoctorID      int64
	PatientID     int64
	AppointmentAt time.Time
}

// MeetingService defines use-case operations for meetings.
type MeetingService interface {
	CreateMeeting(ctx context.Context, in MeetingInput) (*domain.Meeting, error)
	ListMeetings(ctx context.Context) ([]*domain.Meeting, error)
	GetMeeting(ctx context.Context, id int64) (*domain.Meeting, error)
	UpdateMeeting(ctx context.Context, id int64, in MeetingInput) (*domain.Meeting, error)
	DeleteMeeting(ctx context.Context, id int64) error
}
