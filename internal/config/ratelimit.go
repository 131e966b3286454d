package config

import "time"

// LoginLimitConfig controls the fixed-window rate limiter applied to the
// login endpoint.  The limiter counts attempts per client IP in Redis; when
// Redis is unavailable the limiter is disabled and logins are not throttled.
type LoginLimitConfig struct {
	Enabled bool          // master switch for the limiter
	Max     int           // attempts allowed per window
	Window  time.Duration // length of the counting window
}

// LoadLoginLimitConfig reads environment variables to build a
// LoginLimitConfig.  Defaults allow 10 attempts per minute.
func LoadLoginLimitConfig() LoginLimitConfig {
	def := LoginLimitConfig{
		Enabled: getenv("LOGIN_LIMIT_ENABLED", "true") == "true",
		Max:     atoi(getenv("LOGIN_LIMIT_MAX", "10")),
		Window:  parseDur(getenv("LOGIN_LIMIT_WINDOW", "1m")),
	}
	if def.Max < 1 {
		def.Max = 1
	}
	if def.Window <= 0 {
		def.Window = time.Minute
	}
	return def
}
