package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware. Only the
// public item search is cached, so the key always includes the query string.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       strings.TrimSuffix(envStr("CACHE_PREFIX", "shareit:cache"), ":"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}
