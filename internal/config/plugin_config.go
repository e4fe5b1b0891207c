package config

import "time"

// PluginConfig configures the device plugin HTTP API client.
type PluginConfig interface {
	GetPluginBaseURL() string
	GetPluginTimeout() time.Duration
	GetPluginRetryAttempts() int
	GetPluginRetryDelay() time.Duration
}

type Plugin struct{}

var _ PluginConfig = Plugin{}

func (Plugin) GetPluginBaseURL() string {
	return GetEnv("PLUGIN_BASE_URL", "http://localhost:8080")
}

func (Plugin) GetPluginTimeout() time.Duration {
	return GetEnvMillis("PLUGIN_TIMEOUT", 10*time.Second)
}

func (Plugin) GetPluginRetryAttempts() int {
	return 3
}

func (Plugin) GetPluginRetryDelay() time.Duration {
	return 1 * time.Second
}
