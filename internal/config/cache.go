package config

import (
	"os"
	"strconv"
	"time"
)

// NavCacheConfig defines settings for the classification-list cache.  The
// classification list feeds site navigation and the management dropdown, and
// is recomputed from the store on every request unless this cache is enabled
// and a Redis client is configured.
type NavCacheConfig struct {
	Enabled bool          // whether to consult Redis before the store
	TTL     time.Duration // lifetime of a cached classification list
	Prefix  string        // key namespace in Redis
}

// LoadNavCacheConfig reads environment variables to build a NavCacheConfig.
// Defaults are used when variables are not set.
func LoadNavCacheConfig() NavCacheConfig {
	return NavCacheConfig{
		Enabled: getenv("NAV_CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("NAV_CACHE_TTL", "30s")),
		Prefix:  getenv("NAV_CACHE_PREFIX", "nav"),
	}
}

// Helper functions shared with ratelimit.go
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
