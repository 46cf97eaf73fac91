package handler

import (
	"github.com/qubehealth/appointments-api/internal/core/domain"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

// --- Request → Service input ---

func toPatientInput(req patientRequest) ports.PatientInput {
	return ports.PatientInput{Name: req.Name, Email: req.Email, Phone: req.Phone}
}

func toStaffInput(req staffRequest) ports.StaffInput {
	return ports.StaffInput{
		Name:           req.Name,
		Specialization: req.Specialization,
		Email:          req.Email,
		Phone:          req.Phone,
	}
}

func toMeetingInput(req meetingRequest) ports.MeetingInput {
	return ports.MeetingInput{
		DoctorID:      req.DoctorID,
		PatientID:     req.PatientID,
		AppointmentAt: req.AppointmentDateTime.Time,
	}
}

// --- Domain → HTTP response ---

func toPatientResponse(p *domain.Patient) patientResponse {
	return patientResponse{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone}
}

func toPatientResponses(ps []*domain.Patient) []patientResponse {
	out := make([]patientResponse, len(ps))
	for i, p := range ps {
		out[i] = toPatientResponse(p)
	}
	return out
}

func toStaffResponse(s *domain.Staff) staffResponse {
	return staffResponse{
		ID:             s.ID,
		Name:           s.Name,
		Specialization: s.Specialization,
		Email:          s.Email,
		Phone:          s.Phone,
	}
}

func toStaffResponses(ss []*domain.Staff) []staffResponse {
	out := make([]staffResponse, len(ss))
	for i, s := range ss {
		out[i] = toStaffResponse(s)
	}
	return out
}

func toMeetingResponse(m *domain.Meeting) meetingResponse {
	return meetingResponse{
		ID:                  m.ID,
		DoctorID:            m.DoctorID,
		PatientID:           m.PatientID,
		AppointmentDateTime: localDateTime{Time: m.AppointmentAt},
	}
}

func toMeetingResponses(ms []*domain.Meeting) []meetingResponse {
	out := make([]meetingResponse, len(ms))
	for i, m := range ms {
		out[i] = toMeetingResponse(m)
	}
	return out
}
