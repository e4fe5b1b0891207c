package config

import "time"

// APIConfig configures the REST client talking to the Fed Team backend.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetRetryAttempts() int
	GetRetryDelay() time.Duration
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://192.168.50.174:8080")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvMillis("API_TIMEOUT", 5000*time.Millisecond)
}

func (API) GetRetryAttempts() int {
	return 3
}

func (API) GetRetryDelay() time.Duration {
	return 1 * time.Second
}
