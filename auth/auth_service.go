package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/fedteam/sessions"
	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TouchInterval is how stale a record's UpdatedAt may get before Touch rewrites it.
const TouchInterval = time.Minute

// Service is the only reader and writer of one browser session's persisted
// record. Predicates never return storage errors; a record that cannot be
// read counts as no session.
type Service struct {
	repo      sessions.Repo
	mu        sync.RWMutex
	sessionID string
	expiry    ExpiryPolicy
}

type ServiceOption func(*Service)

// WithExpiryPolicy replaces the default permissive policy.
func WithExpiryPolicy(policy ExpiryPolicy) ServiceOption {
	return func(s *Service) {
		if policy != nil {
			s.expiry = policy
		}
	}
}

func NewService(repo sessions.Repo, sessionID string, opts ...ServiceOption) *Service {
	s := &Service{
		repo:      repo,
		sessionID: sessionID,
		expiry:    PermissiveExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Rotate moves the service to a new session id. Whatever the old id held is
// deleted, so credentials are never written under an id that existed before.
func (s *Service) Rotate(ctx context.Context, newID string) error {
	if newID == "" {
		return fmt.Errorf("[Service Rotate] new session id is required")
	}
	old := s.SessionID()
	if old != "" {
		if err := s.repo.Delete(ctx, old); err != nil {
			return fmt.Errorf("[Service Rotate] %w", err)
		}
	}

	s.mu.Lock()
	s.sessionID = newID
	s.mu.Unlock()
	return nil
}

// Touch refreshes the record's UpdatedAt, and with it the store's idle
// expiry, once it is older than TouchInterval.
func (s *Service) Touch(ctx context.Context) {
	rec, ok := s.load(ctx)
	if !ok || rec.Token == "" {
		return
	}
	now := NowTimeFunc()
	if now.Sub(rec.UpdatedAt) < TouchInterval {
		return
	}
	rec.UpdatedAt = now
	if err := s.repo.Upsert(ctx, s.SessionID(), rec); err != nil {
		log.Warn().Err(err).Str("session", s.SessionID()).Msg("Failed to refresh session record")
	}
}

// SetAuthData persists token, user and optional refresh token in one write.
func (s *Service) SetAuthData(ctx context.Context, token string, user User, refreshToken string) error {
	if token == "" {
		return ErrMissingToken
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("[Service SetAuthData] encode user: %w", err)
	}
	record := sessions.Record{
		Token:        token,
		RefreshToken: refreshToken,
		User:         string(raw),
		UpdatedAt:    NowTimeFunc(),
	}
	if err := s.repo.Upsert(ctx, s.SessionID(), record); err != nil {
		return fmt.Errorf("[Service SetAuthData] %w", err)
	}
	return nil
}

// User returns the persisted user or nil. A stored user that cannot be
// decoded is logged and the whole record cleared.
func (s *Service) User(ctx context.Context) *User {
	rec, ok := s.load(ctx)
	if !ok || rec.User == "" {
		return nil
	}

	var user *User
	if err := json.Unmarshal([]byte(rec.User), &user); err != nil {
		log.Err(err).Str("session", s.SessionID()).Msg("Failed to parse stored user, clearing session")
		s.Logout(ctx)
		return nil
	}
	return user
}

// IsAuthenticated is true when both a token and a user are stored. Expiry is not checked.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	if s.AccessToken(ctx) == "" {
		return false
	}
	return s.User(ctx) != nil
}

// ClearAuth removes token, user and refresh token as one unit.
func (s *Service) ClearAuth(ctx context.Context) error {
	if err := s.repo.Delete(ctx, s.SessionID()); err != nil {
		return fmt.Errorf("[Service ClearAuth] %w", err)
	}
	return nil
}

// Logout clears the session, logging instead of returning failures.
func (s *Service) Logout(ctx context.Context) {
	if err := s.ClearAuth(ctx); err != nil {
		log.Err(err).Str("session", s.SessionID()).Msg("Failed to clear session")
	}
}

func (s *Service) NeedsAuthentication(url string) bool {
	return NeedsAuthentication(url)
}

func (s *Service) AccessToken(ctx context.Context) string {
	rec, _ := s.load(ctx)
	return rec.Token
}

func (s *Service) RefreshToken(ctx context.Context) string {
	rec, _ := s.load(ctx)
	return rec.RefreshToken
}

// BearerToken formats the Authorization header value.
func (s *Service) BearerToken(ctx context.Context) (string, bool) {
	token := s.AccessToken(ctx)
	if token == "" {
		return "", false
	}
	return "Bearer " + token, true
}

// IsTokenExpired asks the configured policy. A missing token is expired.
func (s *Service) IsTokenExpired(ctx context.Context) bool {
	expired, err := s.expiry(s.AccessToken(ctx), NowTimeFunc())
	if err != nil {
		log.Warn().Err(err).Bool("expired", expired).Msg("Could not verify token expiry")
	}
	return expired
}

func (s *Service) IsTokenValid(ctx context.Context) bool {
	return s.AccessToken(ctx) != "" && !s.IsTokenExpired(ctx)
}

func (s *Service) load(ctx context.Context) (sessions.Record, bool) {
	sessionID := s.SessionID()
	if sessionID == "" {
		return sessions.Record{}, false
	}
	rec, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return sessions.Record{}, false
	}
	if err != nil {
		log.Err(err).Str("session", sessionID).Msg("Failed to read session record")
		return sessions.Record{}, false
	}
	return rec, true
}
