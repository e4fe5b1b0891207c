package appstate

import (
	"time"

	"github.com/jrsteele09/fedteam/auth"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme falls back to light for anything unrecognised.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
	NotifyWarning NotificationType = "warning"
	NotifyInfo    NotificationType = "info"
)

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

// State is a snapshot of one session. IsAuthenticated is true exactly when
// CurrentUser is set.
type State struct {
	CurrentUser     *auth.User
	IsAuthenticated bool
	IsLoading       bool
	Theme           Theme
	Notifications   []Notification
}
