package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned by Lock once the serializer's context has ended.
var ErrStopped = errors.New("slot serializer stopped")

const (
	stateWaiting int32 = iota
	stateGranted
	stateAbandoned
)

// lockRequest moves from waiting to either granted (by the worker) or
// abandoned (by a caller whose context ended). Only one transition wins.
type lockRequest struct {
	key      string
	acquired chan struct{}
	state    atomic.Int32
}

type shard struct {
	requests chan *lockRequest
	releases chan string
}

// Serializer grants in-process slot locks. Slot keys are sharded across a
// fixed set of workers by consistent hashing; each worker tracks holders per
// key, so writers for the same slot run one at a time while different slots
// on the same shard proceed independently.
type Serializer struct {
	shards []shard
	done   chan struct{}
	log    zerolog.Logger
}

// NewSerializer creates a Serializer with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewSerializer(numWorkers int, log zerolog.Logger) *Serializer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &Serializer{
		shards: make([]shard, numWorkers),
		done:   make(chan struct{}),
		log:    log,
	}
	for i := range s.shards {
		s.shards[i] = shard{
			requests: make(chan *lockRequest, channelBuffer),
			releases: make(chan string, channelBuffer),
		}
	}
	return s
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (s *Serializer) Start(ctx context.Context) {
	for i := range s.shards {
		go s.runWorker(ctx, i, s.shards[i])
	}
	go func() {
		<-ctx.Done()
		close(s.done)
	}()
}

// Lock waits until slot is free and takes it. The returned release is safe to
// call more than once.
func (s *Serializer) Lock(ctx context.Context, slot domain.Slot) (func(), error) {
	select {
	case <-s.done:
		return nil, ErrStopped
	default:
	}

	key := slot.Key()
	sh := s.shards[s.shardIndex(key)]
	req := &lockRequest{key: key, acquired: make(chan struct{})}

	select {
	case sh.requests <- req:
	case <-ctx.Done():
		return nil, fmt.Errorf("enqueue slot lock: %w", ctx.Err())
	case <-s.done:
		return nil, ErrStopped
	}

	release := s.releaser(sh, key)

	select {
	case <-req.acquired:
		return release, nil
	case <-ctx.Done():
		if !req.state.CompareAndSwap(stateWaiting, stateAbandoned) {
			// Granted concurrently; hand it straight back.
			release()
		}
		return nil, fmt.Errorf("wait slot lock: %w", ctx.Err())
	case <-s.done:
		return nil, ErrStopped
	}
}

func (s *Serializer) releaser(sh shard, key string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			select {
			case sh.releases <- key:
			case <-s.done:
			}
		})
	}
}

// shardIndex maps a slot key deterministically to a worker index.
func (s *Serializer) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.shards)))
}

func (s *Serializer) runWorker(ctx context.Context, id int, sh shard) {
	held := make(map[string]bool)
	waiting := make(map[string][]*lockRequest)

	grant := func(req *lockRequest) bool {
		if !req.state.CompareAndSwap(stateWaiting, stateGranted) {
			s.log.Debug().Int("worker_id", id).Msg("slot lock abandoned before grant")
			return false
		}
		held[req.key] = true
		close(req.acquired)
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-sh.requests:
			if held[req.key] {
				waiting[req.key] = append(waiting[req.key], req)
				continue
			}
			grant(req)
		case key := <-sh.releases:
			delete(held, key)
			queue := waiting[key]
			for len(queue) > 0 {
				next := queue[0]
				queue = queue[1:]
				if grant(next) {
					break
				}
			}
			if len(queue) == 0 {
				delete(waiting, key)
			} else {
				waiting[key] = queue
			}
		}
	}
}
