package config

import (
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	PluginConfig
	SecurityConfig
	StoreConfig
	MockAPIConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetAppVersion() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Plugin
	Security
	Store
	MockAPI
}

// New loads an optional .env file and returns the environment backed config.
// Values already present in the environment win over the file.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
