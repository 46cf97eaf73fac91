package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

const meetingCols = `id, doctor_id, patient_id, appointment_at`

// MeetingRepository stores meetings in a table carrying a UNIQUE
// (doctor_id, appointment_at) constraint. appointment_at is a TIMESTAMP
// without time zone; values are written and read as UTC wall-clock time.
type MeetingRepository struct {
	pool *pgxpool.Pool
}

func NewMeetingRepository(pool *pgxpool.Pool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var m domain.Meeting
	if err := row.Scan(&m.ID, &m.DoctorID, &m.PatientID, &m.AppointmentAt); err != nil {
		return nil, err
	}
	m.AppointmentAt = m.AppointmentAt.UTC()
	return &m, nil
}

func (r *MeetingRepository) Create(ctx context.Context, m *domain.Meeting) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO meetings (doctor_id, patient_id, appointment_at) VALUES ($1, $2, $3) RETURNING id`,
		m.DoctorID, m.PatientID, m.AppointmentAt.UTC(),
	).Scan(&m.ID)
	if err != nil {
		if derr := meetingWriteError(err); derr != nil {
			return derr
		}
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}

func (r *MeetingRepository) FindByID(ctx context.Context, id int64) (*domain.Meeting, error) {
	m, err := scanMeeting(r.pool.QueryRow(ctx, `SELECT `+meetingCols+` FROM meetings WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("find meeting: %w", err)
	}
	return m, nil
}

func (r *MeetingRepository) FindByDoctorAndTime(ctx context.Context, doctorID int64, at time.Time) (*domain.Meeting, error) {
	m, err := scanMeeting(r.pool.QueryRow(ctx,
		`SELECT `+meetingCols+` FROM meetings WHERE doctor_id = $1 AND appointment_at = $2`,
		doctorID, at.UTC(),
	))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("find meeting by slot: %w", err)
	}
	return m, nil
}

func (r *MeetingRepository) List(ctx context.Context) ([]*domain.Meeting, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+meetingCols+` FROM meetings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	out := []*domain.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MeetingRepository) Update(ctx context.Context, m *domain.Meeting) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE meetings SET doctor_id = $2, patient_id = $3, appointment_at = $4 WHERE id = $1`,
		m.ID, m.DoctorID, m.PatientID, m.AppointmentAt.UTC(),
	)
	if err != nil {
		if derr := meetingWriteError(err); derr != nil {
			return derr
		}
		return fmt.Errorf("update meeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

func (r *MeetingRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}
