package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for the PostgreSQL connection pool.
type Config struct {
	URL      string
	MaxConns int32
	MinConns int32
	Timeout  time.Duration
}

// Connect creates a pgx pool and verifies connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	// slotConstraint is the name of the UNIQUE (doctor_id, appointment_at) constraint.
	slotConstraint = "meetings_doctor_slot_key"
)

func isSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == slotConstraint
}

// meetingWriteError maps constraint violations raised by a meeting insert or
// update to domain errors. A foreign key violation means the doctor or patient
// was deleted after the references were resolved. Other errors map to nil.
func meetingWriteError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case isSlotViolation(err):
		return domain.ErrSlotTaken
	case errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation:
		return domain.ErrInvalidReference
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
