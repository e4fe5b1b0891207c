package appstate

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/ids"
	"github.com/rs/zerolog/log"
)

// Session owns the in-memory state of one browser session for the lifetime
// of a request. All user changes go through setUser.
type Session struct {
	mu    sync.Mutex
	auth  *auth.Service
	state State
}

// New returns a session in the initializing state.
func New(authService *auth.Service) *Session {
	return &Session{
		auth: authService,
		state: State{
			IsLoading: true,
			Theme:     ThemeLight,
		},
	}
}

// CheckAuthStatus derives the session from the persisted record and resolves loading.
func (s *Session) CheckAuthStatus(ctx context.Context) {
	var user *auth.User
	if s.auth.IsAuthenticated(ctx) {
		user = s.auth.User(ctx)
	}
	if user != nil {
		s.auth.Touch(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setUser(user)
	s.state.IsLoading = false
}

// Login moves the session to a fresh id, persists the credentials under it
// and marks the session authenticated. Callers must write the new id back to
// the browser.
func (s *Session) Login(ctx context.Context, token string, user auth.User, refreshToken string) error {
	if err := s.auth.Rotate(ctx, ids.SessionID()); err != nil {
		return fmt.Errorf("[Session Login] %w", err)
	}
	if err := s.auth.SetAuthData(ctx, token, user, refreshToken); err != nil {
		return fmt.Errorf("[Session Login] %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setUser(&user)
	s.state.IsLoading = false
	return nil
}

// Logout clears the persisted record and leaves the session anonymous.
func (s *Session) Logout(ctx context.Context) {
	s.auth.Logout(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setUser(nil)
	s.state.IsLoading = false
}

// UnauthorizedHandler is the callback the REST client runs when the backend
// rejects a non-login request with 401.
func (s *Session) UnauthorizedHandler() func(ctx context.Context) {
	return func(ctx context.Context) {
		log.Warn().Str("session", s.auth.SessionID()).Msg("Backend rejected credentials, logging out")
		s.Logout(ctx)
	}
}

func (s *Session) setUser(user *auth.User) {
	s.state.CurrentUser = user
	s.state.IsAuthenticated = user != nil
}

// State returns a copy safe to hand to templates.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.CurrentUser != nil {
		u := *st.CurrentUser
		st.CurrentUser = &u
	}
	st.Notifications = slices.Clone(st.Notifications)
	return st
}

func (s *Session) Permissions() auth.Permissions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return auth.NewPermissions(s.state.CurrentUser, s.state.IsAuthenticated)
}

func (s *Session) Auth() *auth.Service {
	return s.auth
}

func (s *Session) SetTheme(theme Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = theme
}

// AddNotification appends a notification and returns its id.
func (s *Session) AddNotification(kind NotificationType, message string) string {
	n := Notification{
		ID:        ids.RequestID(),
		Type:      kind,
		Message:   message,
		Timestamp: auth.NowTimeFunc(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Notifications = append(s.state.Notifications, n)
	return n.ID
}

// RestoreNotifications loads notifications carried over from a previous request.
func (s *Session) RestoreNotifications(ns []Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Notifications = append(s.state.Notifications, ns...)
}

func (s *Session) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Notifications = slices.DeleteFunc(s.state.Notifications, func(n Notification) bool {
		return n.ID == id
	})
}

func (s *Session) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Notifications = nil
}
