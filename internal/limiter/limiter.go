package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether another attempt identified by key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Memory is a token bucket per key. Buckets idle longer than ttl are swept on access.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

var _ Limiter = (*Memory)(nil)

// NewMemory allows limit attempts per window for each key.
func NewMemory(limit int, window time.Duration) *Memory {
	if limit < 1 {
		limit = 1
	}
	return &Memory{
		buckets: make(map[string]*bucket),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		ttl:     window * 5,
		now:     time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(m.every, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1), nil
}

func (m *Memory) sweep(now time.Time) {
	for k, b := range m.buckets {
		if now.Sub(b.lastSeen) > m.ttl {
			delete(m.buckets, k)
		}
	}
}
