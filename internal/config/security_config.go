package config

import (
	"strings"
	"time"
)

const (
	TokenExpiryPermissive = "permissive"
	TokenExpiryStrict     = "strict"
)

type SecurityConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetSecureCookies() bool
	GetMaxSessionAge() time.Duration
	GetTokenExpiryPolicy() string
	GetLoginRateLimit() int
	GetLoginRateWindow() time.Duration
	GetTrustedProxies() []string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionSecret returns the key used to sign the session cookie.
// The development default must be overridden in any shared environment.
func (Security) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "fed-team-development-session-secret")
}

func (Security) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "fed_team_session")
}

func (Security) GetSecureCookies() bool {
	return GetEnvBool("SECURE_COOKIES", false)
}

func (Security) GetMaxSessionAge() time.Duration {
	return time.Duration(GetEnvInt("SESSION_MAX_AGE_HOURS", 24)) * time.Hour
}

func (Security) GetTokenExpiryPolicy() string {
	if GetEnv("TOKEN_EXPIRY_POLICY", TokenExpiryPermissive) == TokenExpiryStrict {
		return TokenExpiryStrict
	}
	return TokenExpiryPermissive
}

// GetLoginRateLimit is the number of login attempts allowed per client within the window.
func (Security) GetLoginRateLimit() int {
	return GetEnvInt("LOGIN_RATE_LIMIT", 10)
}

func (Security) GetLoginRateWindow() time.Duration {
	return time.Duration(GetEnvInt("LOGIN_RATE_WINDOW_MINUTES", 1)) * time.Minute
}

// GetTrustedProxies reads a comma separated TRUSTED_PROXIES list of IPs or
// CIDRs. X-Forwarded-For is only honoured on requests arriving from them.
func (Security) GetTrustedProxies() []string {
	var proxies []string
	for _, p := range strings.Split(GetEnv("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}
