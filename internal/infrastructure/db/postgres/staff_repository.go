package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

const staffCols = `id, name, specialization, email, phone`

type StaffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

func (r *StaffRepository) Create(ctx context.Context, s *domain.Staff) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO staff (name, specialization, email, phone) VALUES ($1, $2, $3, $4) RETURNING id`,
		s.Name, s.Specialization, s.Email, s.Phone,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (r *StaffRepository) FindByID(ctx context.Context, id int64) (*domain.Staff, error) {
	var s domain.Staff
	err := r.pool.QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Specialization, &s.Email, &s.Phone)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrStaffNotFound
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return &s, nil
}

func (r *StaffRepository) List(ctx context.Context) ([]*domain.Staff, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+staffCols+` FROM staff ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	out := []*domain.Staff{}
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Specialization, &s.Email, &s.Phone); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *StaffRepository) Update(ctx context.Context, s *domain.Staff) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE staff SET name = $2, specialization = $3, email = $4, phone = $5 WHERE id = $1`,
		s.ID, s.Name, s.Specialization, s.Email, s.Phone,
	)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}
