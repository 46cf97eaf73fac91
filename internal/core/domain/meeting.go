package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMeetingNotFound = errors.New("meeting not found")
	// ErrInvalidReference is returned when a doctor or patient id does not resolve.
	ErrInvalidReference = errors.New("invalid staff or user id")
	// ErrSlotTaken is returned when the doctor already has a meeting at the requested time.
	ErrSlotTaken = errors.New("staff already has a meeting at this time")
)

// Meeting is an appointment between a doctor and a patient at a single point in time.
type Meeting struct {
	ID            int64
	DoctorID      int64
	PatientID     int64
	AppointmentAt time.Time
}

// Slot returns the uniqueness key of the meeting.
func (m *Meeting) Slot() Slot {
	return Slot{DoctorID: m.DoctorID, At: m.AppointmentAt}
}

// Slot identifies a doctor's calendar position. Two meetings conflict when
// their slots are equal; there is no interval overlap.
type Slot struct {
	DoctorID int64
	At       time.Time
}

// Key renders the slot as a stable string, used for locking.
func (s Slot) Key() string {
	return fmt.Sprintf("%d:%d", s.DoctorID, s.At.UTC().UnixNano())
}
