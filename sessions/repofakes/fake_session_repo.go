package fakesessionrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/fedteam/sessions"
)

var (
	_ sessions.Repo    = (*FakeSessionRepo)(nil)
	_ sessions.Sweeper = (*FakeSessionRepo)(nil)
)

// FakeSessionRepo keeps session records in memory. It backs single instance
// deployments and tests.
type FakeSessionRepo struct {
	records map[string]sessions.Record
	lock    sync.RWMutex

	// Corrupt lets tests replace the stored user with arbitrary text
	Corrupt func(sessionID, raw string)
}

func NewFakeSessionRepo() *FakeSessionRepo {
	r := &FakeSessionRepo{records: make(map[string]sessions.Record)}
	r.Corrupt = func(sessionID, raw string) {
		r.lock.Lock()
		defer r.lock.Unlock()
		rec := r.records[sessionID]
		rec.User = raw
		r.records[sessionID] = rec
	}
	return r
}

func (sr *FakeSessionRepo) Get(_ context.Context, sessionID string) (sessions.Record, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	rec, ok := sr.records[sessionID]
	if !ok {
		return sessions.Record{}, sessions.ErrNotFound
	}
	return rec, nil
}

func (sr *FakeSessionRepo) Upsert(_ context.Context, sessionID string, record sessions.Record) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.records[sessionID] = record
	return nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	delete(sr.records, sessionID)
	return nil
}

// DeleteExpired removes records last written before the given time.
func (sr *FakeSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	removed := 0
	for id, rec := range sr.records {
		if rec.UpdatedAt.Before(before) {
			delete(sr.records, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports how many records are stored.
func (sr *FakeSessionRepo) Len() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return len(sr.records)
}
