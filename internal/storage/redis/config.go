package redis

import "time"

// Config holds Redis connection settings for the credential store
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// ConnectTimeout bounds the startup ping
	ConnectTimeout time.Duration

	// WatchRetries bounds how often a counter update is replayed after
	// another writer touched the same account
	WatchRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		ConnectTimeout: 5 * time.Second,
		WatchRetries:   4,
	}
}

func (c Config) watchRetries() int {
	if c.WatchRetries <= 0 {
		return DefaultConfig().WatchRetries
	}
	return c.WatchRetries
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return DefaultConfig().ConnectTimeout
	}
	return c.ConnectTimeout
}
