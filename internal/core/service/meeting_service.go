package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qubehealth/appointments-api/internal/core/domain"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

type MeetingService struct {
	meetings ports.MeetingRepository
	staff    ports.StaffRepository
	patients ports.PatientRepository
	locker   ports.SlotLocker
	logger   zerolog.Logger
}

// NewMeetingService builds the appointment manager. A nil locker disables
// slot serialisation; the store's uniqueness constraint still applies.
func NewMeetingService(
	meetings ports.MeetingRepository,
	staff ports.StaffRepository,
	patients ports.PatientRepository,
	locker ports.SlotLocker,
	logger zerolog.Logger,
) *MeetingService {
	if locker == nil {
		locker = noopLocker{}
	}
	return &MeetingService{
		meetings: meetings,
		staff:    staff,
		patients: patients,
		locker:   locker,
		logger:   logger,
	}
}

// CreateMeeting books a doctor for a patient at the given time.
func (s *MeetingService) CreateMeeting(ctx context.Context, in ports.MeetingInput) (*domain.Meeting, error) {
	// 1. Both references must resolve.
	if err := s.resolveReferences(ctx, in.DoctorID, in.PatientID); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	m := &domain.Meeting{
		DoctorID:      in.DoctorID,
		PatientID:     in.PatientID,
		AppointmentAt: in.AppointmentAt,
	}

	// 2. Hold the slot while checking and writing.
	release, err := s.locker.Lock(ctx, m.Slot())
	if err != nil {
		return nil, fmt.Errorf("create meeting: lock slot: %w", err)
	}
	defer release()

	// 3. Double booking check.
	if err := s.ensureSlotFree(ctx, m.Slot(), 0); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	// 4. Persist; the store rejects a slot taken by a concurrent writer.
	if err := s.meetings.Create(ctx, m); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			s.logger.Warn().Int64("doctor_id", m.DoctorID).Time("at", m.AppointmentAt).Msg("slot taken at insert")
		}
		return nil, fmt.Errorf("create meeting: %w", err)
	}

	s.logger.Info().
		Int64("meeting_id", m.ID).
		Int64("doctor_id", m.DoctorID).
		Int64("patient_id", m.PatientID).
		Time("at", m.AppointmentAt).
		Msg("meeting created")

	return m, nil
}

func (s *MeetingService) ListMeetings(ctx context.Context) ([]*domain.Meeting, error) {
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

func (s *MeetingService) GetMeeting(ctx context.Context, id int64) (*domain.Meeting, error) {
	m, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get meeting %d: %w", id, err)
	}
	return m, nil
}

// UpdateMeeting reassigns doctor, patient and time. A meeting may be updated
// into the slot it already occupies.
func (s *MeetingService) UpdateMeeting(ctx context.Context, id int64, in ports.MeetingInput) (*domain.Meeting, error) {
	m, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update meeting %d: %w", id, err)
	}

	if err := s.resolveReferences(ctx, in.DoctorID, in.PatientID); err != nil {
		return nil, fmt.Errorf("update meeting %d: %w", id, err)
	}

	target := domain.Slot{DoctorID: in.DoctorID, At: in.AppointmentAt}
	release, err := s.locker.Lock(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("update meeting %d: lock slot: %w", id, err)
	}
	defer release()

	if err := s.ensureSlotFree(ctx, target, id); err != nil {
		return nil, fmt.Errorf("update meeting %d: %w", id, err)
	}

	m.DoctorID = in.DoctorID
	m.PatientID = in.PatientID
	m.AppointmentAt = in.AppointmentAt

	if err := s.meetings.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update meeting %d: %w", id, err)
	}

	s.logger.Info().
		Int64("meeting_id", id).
		Int64("doctor_id", m.DoctorID).
		Time("at", m.AppointmentAt).
		Msg("meeting updated")

	return m, nil
}

func (s *MeetingService) DeleteMeeting(ctx context.Context, id int64) error {
	if err := s.meetings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete meeting %d: %w", id, err)
	}

	s.logger.Info().Int64("meeting_id", id).Msg("meeting deleted")
	return nil
}

// resolveReferences looks up both ids. A miss in either store is reported as
// domain.ErrInvalidReference; store failures are passed through.
func (s *MeetingService) resolveReferences(ctx context.Context, doctorID, patientID int64) error {
	_, staffErr := s.staff.FindByID(ctx, doctorID)
	if staffErr != nil && !errors.Is(staffErr, domain.ErrStaffNotFound) {
		return fmt.Errorf("resolve staff %d: %w", doctorID, staffErr)
	}

	_, patientErr := s.patients.FindByID(ctx, patientID)
	if patientErr != nil && !errors.Is(patientErr, domain.ErrPatientNotFound) {
		return fmt.Errorf("resolve patient %d: %w", patientID, patientErr)
	}

	if staffErr != nil || patientErr != nil {
		s.logger.Debug().Int64("doctor_id", doctorID).Int64("patient_id", patientID).Msg("unresolved meeting reference")
		return domain.ErrInvalidReference
	}
	return nil
}

// ensureSlotFree fails with domain.ErrSlotTaken when a meeting other than
// excludeID occupies the slot. Store ids start at 1, so 0 excludes nothing.
func (s *MeetingService) ensureSlotFree(ctx context.Context, slot domain.Slot, excludeID int64) error {
	existing, err := s.meetings.FindByDoctorAndTime(ctx, slot.DoctorID, slot.At)
	if err != nil {
		if errors.Is(err, domain.ErrMeetingNotFound) {
			return nil
		}
		return fmt.Errorf("check slot: %w", err)
	}
	if existing.ID != excludeID {
		return domain.ErrSlotTaken
	}
	return nil
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, domain.Slot) (func(), error) {
	return func() {}, nil
}
