package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	CartDataDir     string
	PlatformBaseURL string
	PlatformToken   string
	PlatformTimeout time.Duration
	DebounceWindow  time.Duration
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// FromEnv builds Config with defaults, overridden by environment variables.
// Without DB_DSN, carts persist to CART_DATA_DIR when set, otherwise they
// are memory-backed and die with the process.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:    envOrDefault("DB_DSN", ""),
		CartDataDir:     envOrDefault("CART_DATA_DIR", ""),
		PlatformBaseURL: envOrDefault("PLATFORM_BASE_URL", "http://localhost:9090/api"),
		PlatformToken:   envOrDefault("PLATFORM_TOKEN", ""),
		PlatformTimeout: envDuration("PLATFORM_TIMEOUT_SECONDS", 30*time.Second),
		DebounceWindow:  envMillis("DEBOUNCE_WINDOW_MS", 400*time.Millisecond),
		SessionTTL:      envDuration("SESSION_TTL_SECONDS", 7*24*time.Hour),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		AllowedOrigins:  envList("ALLOWED_ORIGINS", nil),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		millis, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(millis) * time.Millisecond
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
