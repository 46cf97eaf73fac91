package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

func TestLockKey(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	inOtherZone := at.In(time.FixedZone("UTC+2", 2*60*60))

	a := lockKey(domain.Slot{DoctorID: 1, At: at})
	b := lockKey(domain.Slot{DoctorID: 1, At: inOtherZone})
	if a != b {
		t.Errorf("same instant should map to one key: %q vs %q", a, b)
	}
	if want := "slotlock:1:1704103200000000000"; a != want {
		t.Errorf("got %q, want %q", a, want)
	}

	other := lockKey(domain.Slot{DoctorID: 2, At: at})
	if other == a {
		t.Error("different doctors must not share a lock key")
	}
}

func TestNewSlotLocker_DefaultTTL(t *testing.T) {
	l := NewSlotLocker(nil, 0)
	if l.ttl != defaultLockTTL {
		t.Errorf("ttl = %v, want %v", l.ttl, defaultLockTTL)
	}
}

func TestSlotLocker_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	release, err := NewSlotLocker(client, time.Second).Lock(ctx, domain.Slot{DoctorID: 1, At: time.Now()})
	if err == nil {
		release()
		t.Fatal("expected error when redis is unreachable")
	}
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions(Config{Addr: "cache:6379", DB: 3, Password: "s3cret", Timeout: 750 * time.Millisecond})
	if opts.Addr != "cache:6379" || opts.DB != 3 || opts.Password != "s3cret" {
		t.Errorf("connection fields not carried: %+v", opts)
	}
	if opts.DialTimeout != 750*time.Millisecond || opts.ReadTimeout != 750*time.Millisecond || opts.WriteTimeout != 750*time.Millisecond {
		t.Errorf("timeout not applied: dial=%v read=%v write=%v", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}

	if d := clientOptions(Config{Addr: "cache:6379"}).DialTimeout; d != defaultTimeout {
		t.Errorf("default timeout = %v, want %v", d, defaultTimeout)
	}
}

func TestConnect_UnreachableServer(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("expected ping error")
	}
}
