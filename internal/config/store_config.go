package config

// StoreConfig selects where persisted session records live.
type StoreConfig interface {
	GetRedisURL() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetRedisURL returns the Redis URI. Empty means the in-memory store is used.
func (Store) GetRedisURL() string {
	return GetEnv("REDIS_URL", "")
}
