package config

import (
	"fmt"
	"strings"
	"time"
)

// MockAPIConfig configures the in-memory backend used for local development.
type MockAPIConfig interface {
	GetMockAPIPort() string
	GetMockAPISecret() string
	GetMockAPITokenExpiry() time.Duration
	GetMockAPISeed() bool
}

type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

func (MockAPI) GetMockAPIPort() string {
	port := GetEnv("MOCKAPI_PORT", "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetMockAPISecret returns the HMAC secret for issued tokens. Empty means a
// random secret per process.
func (MockAPI) GetMockAPISecret() string {
	return GetEnv("MOCKAPI_JWT_SECRET", "")
}

// GetMockAPITokenExpiry reads MOCKAPI_TOKEN_EXPIRY in milliseconds.
func (MockAPI) GetMockAPITokenExpiry() time.Duration {
	return GetEnvMillis("MOCKAPI_TOKEN_EXPIRY", 8*time.Hour)
}

func (MockAPI) GetMockAPISeed() bool {
	return GetEnvBool("MOCKAPI_SEED", true)
}
