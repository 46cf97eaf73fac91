package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

var tenAM = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func startSerializer(t *testing.T, workers int) *Serializer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s := NewSerializer(workers, zerolog.Nop())
	s.Start(ctx)
	return s
}

func TestNewSerializer_DefaultWorkers(t *testing.T) {
	s := NewSerializer(0, zerolog.Nop())
	if len(s.shards) != defaultWorkers {
		t.Errorf("workers = %d, want %d", len(s.shards), defaultWorkers)
	}
}

func TestSerializer_ShardIndexIsStable(t *testing.T) {
	s := NewSerializer(4, zerolog.Nop())
	key := domain.Slot{DoctorID: 3, At: tenAM}.Key()
	first := s.shardIndex(key)
	for i := 0; i < 10; i++ {
		if got := s.shardIndex(key); got != first {
			t.Fatalf("shard changed from %d to %d", first, got)
		}
	}
	if first < 0 || first >= 4 {
		t.Errorf("shard %d out of range", first)
	}
}

func TestSerializer_SameSlotIsExclusive(t *testing.T) {
	s := startSerializer(t, 4)
	slot := domain.Slot{DoctorID: 1, At: tenAM}

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := s.Lock(context.Background(), slot)
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most one holder at a time, saw %d", maxSeen)
	}
}

func TestSerializer_ContextCancelledWhileWaiting(t *testing.T) {
	s := startSerializer(t, 1)
	slot := domain.Slot{DoctorID: 1, At: tenAM}

	release, err := s.Lock(context.Background(), slot)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Lock(ctx, slot); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	release()
	release() // second call is a no-op

	// The abandoned request must not wedge the worker.
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	release2, err := s.Lock(ctx2, slot)
	if err != nil {
		t.Fatalf("lock after abandon: %v", err)
	}
	release2()
}

func TestSerializer_DifferentSlotsOnOneWorkerDoNotBlock(t *testing.T) {
	s := startSerializer(t, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, err := s.Lock(ctx, domain.Slot{DoctorID: 1, At: tenAM})
	if err != nil {
		t.Fatalf("first slot: %v", err)
	}
	defer first()

	second, err := s.Lock(ctx, domain.Slot{DoctorID: 2, At: tenAM})
	if err != nil {
		t.Fatalf("second slot blocked behind first: %v", err)
	}
	second()

	third, err := s.Lock(ctx, domain.Slot{DoctorID: 1, At: tenAM.Add(time.Hour)})
	if err != nil {
		t.Fatalf("third slot blocked behind first: %v", err)
	}
	third()
}

func TestSerializer_WaiterGrantedAfterRelease(t *testing.T) {
	s := startSerializer(t, 1)
	slot := domain.Slot{DoctorID: 5, At: tenAM}

	release, err := s.Lock(context.Background(), slot)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	got := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		r, err := s.Lock(ctx, slot)
		if err == nil {
			r()
		}
		got <- err
	}()

	select {
	case err := <-got:
		t.Fatalf("waiter acquired while slot held: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	release()
	if err := <-got; err != nil {
		t.Fatalf("waiter: %v", err)
	}
}

func TestSerializer_StoppedReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSerializer(1, zerolog.Nop())
	s.Start(ctx)
	cancel()
	<-s.done

	if _, err := s.Lock(context.Background(), domain.Slot{DoctorID: 1, At: tenAM}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
