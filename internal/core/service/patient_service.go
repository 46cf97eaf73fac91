package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qubehealth/appointments-api/internal/core/domain"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

type PatientService struct {
	repo   ports.PatientRepository
	logger zerolog.Logger
}

func NewPatientService(repo ports.PatientRepository, logger zerolog.Logger) *PatientService {
	return &PatientService{repo: repo, logger: logger}
}

// CreatePatient registers a new patient. The identifier is always assigned by the store.
func (s *PatientService) CreatePatient(ctx context.Context, in ports.PatientInput) (*domain.Patient, error) {
	p := &domain.Patient{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create patient")
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info().Int64("patient_id", p.ID).Msg("patient created")
	return p, nil
}

func (s *PatientService) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get patient %d: %w", id, err)
	}
	return p, nil
}

// UpdatePatient overwrites name, email and phone. The identifier never changes.
func (s *PatientService) UpdatePatient(ctx context.Context, id int64, in ports.PatientInput) (*domain.Patient, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update patient %d: %w", id, err)
	}

	p.Name = in.Name
	p.Email = in.Email
	p.Phone = in.Phone

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient %d: %w", id, err)
	}

	s.logger.Info().Int64("patient_id", id).Msg("patient updated")
	return p, nil
}

// DeletePatient removes the patient together with the meetings booked for them.
func (s *PatientService) DeletePatient(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete patient %d: %w", id, err)
	}

	s.logger.Info().Int64("patient_id", id).Msg("patient deleted")
	return nil
}
