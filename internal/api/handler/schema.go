package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// localDateTimeLayout is the zone-less ISO-8601 form used by the front end.
const localDateTimeLayout = "2006-01-02T15:04:05"

// renderLayout adds milliseconds only when present, so whole seconds still
// render as localDateTimeLayout and every stored value reads back exactly.
const renderLayout = "2006-01-02T15:04:05.999"

var acceptedLayouts = []string{
	localDateTimeLayout,
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// localDateTime decodes a zone-less timestamp as UTC. RFC 3339 input is
// converted to UTC so equal instants compare equal, and values are truncated
// to milliseconds, the coarsest precision among the stores.
type localDateTime struct {
	time.Time
}

func (t *localDateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("appointmentDateTime must be a string: %w", err)
	}
	parsed, err := parseLocalDateTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t localDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(renderLayout))
}

func parseLocalDateTime(s string) (time.Time, error) {
	for _, layout := range acceptedLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q, expected %s", s, localDateTimeLayout)
}

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// --- Request / Response types ---

type patientRequest struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone" validate:"required,max=32"`
}

type patientResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type staffRequest struct {
	Name           string `json:"name"           validate:"required,max=255"`
	Specialization string `json:"specialization" validate:"required,max=255"`
	Email          string `json:"email"          validate:"required,email,max=255"`
	Phone          string `json:"phone"          validate:"required,max=32"`
}

type staffResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

type meetingRequest struct {
	DoctorID            int64          `json:"doctorId"            validate:"required,gt=0"`
	PatientID           int64          `json:"patientId"           validate:"required,gt=0"`
	AppointmentDateTime *localDateTime `json:"appointmentDateTime" validate:"required" swaggertype:"string" example:"2024-01-01T10:00:00"`
}

type meetingResponse struct {
	ID                  int64         `json:"id"`
	DoctorID            int64         `json:"doctorId"`
	PatientID           int64         `json:"patientId"`
	AppointmentDateTime localDateTime `json:"appointmentDateTime" swaggertype:"string" example:"2024-01-01T10:00:00"`
}
