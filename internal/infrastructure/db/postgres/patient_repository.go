package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

type PatientRepository struct {
	pool *pgxpool.Pool
}

func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO patients (name, email, phone) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.Email, p.Phone,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) FindByID(ctx context.Context, id int64) (*domain.Patient, error) {
	var p domain.Patient
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone FROM patients WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Email, &p.Phone)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) List(ctx context.Context) ([]*domain.Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	out := []*domain.Patient{}
	for rows.Next() {
		var p domain.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE patients SET name = $2, email = $3, phone = $4 WHERE id = $1`,
		p.ID, p.Name, p.Email, p.Phone,
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

// Delete relies on ON DELETE CASCADE to remove the patient's meetings.
func (r *PatientRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}
