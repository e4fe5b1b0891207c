package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no record exists for the session id.
var ErrNotFound = errors.New("session record not found")

// Record is the durable copy of one browser's credentials. Token, refresh
// token and user are always written and cleared together.
type Record struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         string    `json:"user"` // serialized auth user, kept raw so corruption is detectable on read
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repo stores persisted session records keyed by session id.
type Repo interface {
	// Get returns ErrNotFound when the session has no record
	Get(ctx context.Context, sessionID string) (Record, error)

	// Upsert replaces the whole record in one write
	Upsert(ctx context.Context, sessionID string, record Record) error

	// Delete removes the record. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// Sweeper is implemented by stores that have no native expiry.
type Sweeper interface {
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
