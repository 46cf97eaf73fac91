// Package metrics defines and registers all custom Prometheus metrics for the
// appointments API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/qubehealth/appointments-api/internal/core/domain"
	"github.com/qubehealth/appointments-api/internal/core/ports"
)

const namespace = "qubehealth"

// ── Meeting metrics ───────────────────────────────────────────────────────────

// MeetingsCreatedTotal counts meetings booked successfully.
var MeetingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "meetings_created_total",
		Help:      "Total number of meetings created.",
	},
)

// MeetingConflictsTotal counts writes rejected because the slot was taken.
// Label:
//   - operation: "create" or "update"
var MeetingConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "meeting_conflicts_total",
		Help:      "Total number of meeting writes rejected as double bookings.",
	},
	[]string{"operation"},
)

// ── Slot lock metrics ─────────────────────────────────────────────────────────

// SlotLockWaitSeconds measures how long writers wait to acquire a slot lock.
// Labels:
//   - backend: "redis" or "local"
//   - result: "acquired" or "error"
var SlotLockWaitSeconds = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "slot_lock_wait_seconds",
		Help:      "Time spent waiting for a per-slot lock.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"backend", "result"},
)

type instrumentedLocker struct {
	next    ports.SlotLocker
	backend string
}

// InstrumentLocker wraps next so each Lock call is observed in SlotLockWaitSeconds.
func InstrumentLocker(backend string, next ports.SlotLocker) ports.SlotLocker {
	return &instrumentedLocker{next: next, backend: backend}
}

func (l *instrumentedLocker) Lock(ctx context.Context, slot domain.Slot) (func(), error) {
	start := time.Now()
	release, err := l.next.Lock(ctx, slot)
	result := "acquired"
	if err != nil {
		result = "error"
	}
	SlotLockWaitSeconds.WithLabelValues(l.backend, result).Observe(time.Since(start).Seconds())
	return release, err
}
