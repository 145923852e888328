package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig drives the general per-client API throttle.  Capacity is
// the burst size and one token is refilled every RefillInterval.  Buckets
// idle for longer than TTL are evicted by the sweeper.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
	TTL            time.Duration
	SweepSpec      string // cron spec for evicting idle buckets
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		SweepSpec:      envStr("RATE_LIMIT_SWEEP_SPEC", "@every 1m"),
	}
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

// LoginLimitConfig bounds login attempts per client with a fixed window.
// Prefix namespaces the Redis keys when a shared store is available.
type LoginLimitConfig struct {
	Max    int
	Window time.Duration
	Prefix string
}

func LoadLoginLimitConfig() LoginLimitConfig {
	c := LoginLimitConfig{
		Max:    envInt("LOGIN_RATE_LIMIT_MAX", 5),
		Window: envDur("LOGIN_RATE_LIMIT_WINDOW", time.Minute),
		Prefix: envStr("LOGIN_RATE_LIMIT_PREFIX", "rl"),
	}
	if c.Max < 1 {
		c.Max = 1
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
