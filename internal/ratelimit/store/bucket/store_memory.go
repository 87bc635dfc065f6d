package bucket

import (
	"context"
	"sync"
	"time"

	"docverify/internal/ratelimit/models"
)

// InMemoryBucketStore keeps a sliding window of request timestamps per key.
// It is local to one process; use RedisStore when several gateways share limits.
type InMemoryBucketStore struct {
	mu        sync.Mutex
	buckets   map[string]*slidingWindow
	now       func() time.Time
	lastSweep time.Time
}

type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

type MemoryOption func(*InMemoryBucketStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryBucketStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInMemoryBucketStore(opts ...MemoryOption) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records one request for key if fewer than limit were seen in the last window.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit int, window time.Duration) (models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= window {
		s.sweep(now)
	}
	sw := s.buckets[key]
	if sw == nil || sw.window != window {
		sw = &slidingWindow{window: window}
		s.buckets[key] = sw
	}
	sw.cleanup(now)

	if len(sw.timestamps) >= limit {
		return models.Result{
			Allowed: false,
			Limit:   limit,
			ResetAt: sw.timestamps[0].Add(window),
		}, nil
	}

	sw.timestamps = append(sw.timestamps, now)
	return models.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// Reset forgets everything recorded for key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.buckets, key)
	s.mu.Unlock()
	return nil
}

// sweep removes keys whose windows have emptied, so clients that stop
// calling do not hold memory.
func (s *InMemoryBucketStore) sweep(now time.Time) {
	for key, sw := range s.buckets {
		sw.cleanup(now)
		if len(sw.timestamps) == 0 {
			delete(s.buckets, key)
		}
	}
	s.lastSweep = now
}

// Len reports how many keys are tracked.
func (s *InMemoryBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// cleanup drops timestamps that fell out of the window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
