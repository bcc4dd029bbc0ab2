package config

import (
	"os"
	"strings"
	"time"
)

const (
	DefaultProbePort    = 1337
	DefaultProbeTimeout = 10 * time.Second
)

// StrictEditLock makes commits fail when the distributed edit lock cannot be taken,
// instead of proceeding unlocked.
//
// Set via env:
// - STRICT_EDIT_LOCK=true
func StrictEditLock() bool {
	return boolFromEnv("STRICT_EDIT_LOCK")
}

// ProbePort is the TCP port dialled by the connectivity probe.
//
// Set via env:
// - PROBE_PORT (default 1337)
func ProbePort() int {
	port := intFromEnv("PROBE_PORT", DefaultProbePort)
	if port < 1 || port > 65535 {
		return DefaultProbePort
	}
	return port
}

// ProbeTimeout bounds a single connectivity probe.
//
// Set via env:
// - PROBE_TIMEOUT_SECONDS (default 10)
func ProbeTimeout() time.Duration {
	seconds := intFromEnv("PROBE_TIMEOUT_SECONDS", 0)
	if seconds <= 0 {
		return DefaultProbeTimeout
	}
	return time.Duration(seconds) * time.Second
}

// EditSessionLifetime is how long an opened, uncommitted edit session is kept.
//
// Set via env:
// - EDIT_SESSION_MINUTES (default 120)
func EditSessionLifetime() time.Duration {
	return time.Duration(intFromEnv("EDIT_SESSION_MINUTES", 120)) * time.Minute
}

// CacheLifespan is the expiry of cached lookup lists.
//
// Set via env:
// - CACHE_LIFESPAN in hours (default 1)
func CacheLifespan() time.Duration {
	return time.Duration(intFromEnv("CACHE_LIFESPAN", 1)) * time.Hour
}

// ErrorLogFile receives store failures that could not be written to the store itself.
func ErrorLogFile() string {
	if v := strings.TrimSpace(os.Getenv("ERROR_LOG_FILE")); v != "" {
		return v
	}
	return "store_errors.log"
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
