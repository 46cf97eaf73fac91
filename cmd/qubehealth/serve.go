package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/qubehealth/appointments-api/internal/api"
	"github.com/qubehealth/appointments-api/internal/api/handler"
	"github.com/qubehealth/appointments-api/internal/api/metrics"
	"github.com/qubehealth/appointments-api/internal/core/ports"
	"github.com/qubehealth/appointments-api/internal/core/service"
	"github.com/qubehealth/appointments-api/internal/infrastructure/db/memory"
	mongostore "github.com/qubehealth/appointments-api/internal/infrastructure/db/mongo"
	"github.com/qubehealth/appointments-api/internal/infrastructure/db/postgres"
	redisstore "github.com/qubehealth/appointments-api/internal/infrastructure/db/redis"
	"github.com/qubehealth/appointments-api/internal/infrastructure/queue"
	"github.com/qubehealth/appointments-api/internal/pkg/config"
	"github.com/qubehealth/appointments-api/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx)
		},
	}
}

// repositories groups the store-specific implementations behind the ports.
type repositories struct {
	patients ports.PatientRepository
	staff    ports.StaffRepository
	meetings ports.MeetingRepository
	ping     handler.Pinger
	close    func()
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "qubehealth",
	})

	repos, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close()

	ready := map[string]handler.Pinger{cfg.StoreDriver: repos.ping}

	locker, rdb, err := openLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		ready["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	svc := api.Services{
		Patients: service.NewPatientService(repos.patients, log.With().Str("component", "patients").Logger()),
		Staff:    service.NewStaffService(repos.staff, log.With().Str("component", "staff").Logger()),
		Meetings: service.NewMeetingService(repos.meetings, repos.staff, repos.patients, locker,
			log.With().Str("component", "meetings").Logger()),
	}

	e := api.NewRouter(svc, api.Options{
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
		Ready:       ready,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Str("slot_lock", cfg.SlotLock).
			Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &repositories{
			patients: postgres.NewPatientRepository(pool),
			staff:    postgres.NewStaffRepository(pool),
			meetings: postgres.NewMeetingRepository(pool),
			ping:     pool,
			close:    pool.Close,
		}, nil

	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &repositories{
			patients: mongostore.NewPatientRepository(db),
			staff:    mongostore.NewStaffRepository(db),
			meetings: mongostore.NewMeetingRepository(db),
			ping:     handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			patients: store.Patients(),
			staff:    store.Staff(),
			meetings: store.Meetings(),
			ping:     store,
			close:    func() {},
		}, nil
	}
}

// openLocker returns the slot locker for cfg.SlotLock. The redis client is
// returned so readiness can probe it and the caller can close it.
func openLocker(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SlotLocker, *redis.Client, error) {
	switch cfg.SlotLock {
	case config.LockRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
		return metrics.InstrumentLocker("redis", redisstore.NewSlotLocker(rdb, cfg.SlotLockTTL)), rdb, nil

	case config.LockLocal:
		s := queue.NewSerializer(0, log.With().Str("component", "slot_serializer").Logger())
		s.Start(ctx)
		return metrics.InstrumentLocker("local", s), nil, nil

	default:
		return nil, nil, nil
	}
}
