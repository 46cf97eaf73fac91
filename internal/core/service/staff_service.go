package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/qubehealth/appointments-api/internal/core/domain"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

type StaffService struct {
	repo   ports.StaffRepository
	logger zerolog.Logger
}

func NewStaffService(repo ports.StaffRepository, logger zerolog.Logger) *StaffService {
	return &StaffService{repo: repo, logger: logger}
}

func (s *StaffService) CreateStaff(ctx context.Context, in ports.StaffInput) (*domain.Staff, error) {
	st := &domain.Staff{
		Name:           in.Name,
		Specialization: in.Specialization,
		Email:          in.Email,
		Phone:          in.Phone,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		s.logger.Error().Err(err).Msg("failed to create staff")
		return nil, fmt.Errorf("create staff: %w", err)
	}

	s.logger.Info().Int64("staff_id", st.ID).Str("specialization", st.Specialization).Msg("staff created")
	return st, nil
}

func (s *StaffService) ListStaff(ctx context.Context) ([]*domain.Staff, error) {
	staff, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

func (s *StaffService) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get staff %d: %w", id, err)
	}
	return st, nil
}

func (s *StaffService) UpdateStaff(ctx context.Context, id int64, in ports.StaffInput) (*domain.Staff, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update staff %d: %w", id, err)
	}

	st.Name = in.Name
	st.Specialization = in.Specialization
	st.Email = in.Email
	st.Phone = in.Phone

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, fmt.Errorf("update staff %d: %w", id, err)
	}

	s.logger.Info().Int64("staff_id", id).Msg("staff updated")
	return st, nil
}

// DeleteStaff removes the doctor together with their meetings.
func (s *StaffService) DeleteStaff(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete staff %d: %w", id, err)
	}

	s.logger.Info().Int64("staff_id", id).Msg("staff deleted")
	return nil
}
