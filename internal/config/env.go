package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Get returns the value of the environment variable `key` if set.
// If not set, and `key + "_FILE"` is set, the file at that path is read and
// its trimmed contents are returned. If neither are set, def is returned.
func Get(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if path := os.Getenv(key + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return def
}

// GetInt returns the integer value of the environment variable `key`.
// It parses the result of Get(key, ""). If parsing fails or the variable is
// unset, def is returned.
func GetInt(key string, def int) int {
	if val := Get(key, ""); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

// GetBool returns the boolean value of the environment variable `key`.
// Recognised true values are: 1, t, true, y, yes (case-insensitive).
// Recognised false values are: 0, f, false, n, no.
func GetBool(key string, def bool) bool {
	if val := Get(key, ""); val != "" {
		switch strings.ToLower(val) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

// ParseDuration parses a duration string. It behaves like time.ParseDuration
// but also supports values like "30d" to represent days.
func ParseDuration(s string) (time.Duration, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(lower, "d") {
		days := strings.TrimSuffix(lower, "d")
		if n, err := strconv.Atoi(days); err == nil {
			return time.Duration(n) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(lower)
}

// GetInt64 is GetInt for values that may not fit an int on 32-bit platforms
func GetInt64(key string, def int64) int64 {
	if val := Get(key, ""); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return def
}

// GetDuration returns the duration value of the environment variable `key`.
// It uses ParseDuration and falls back to def if parsing fails or the variable
// is unset.
func GetDuration(key string, def time.Duration) time.Duration {
	if val := Get(key, ""); val != "" {
		if d, err := ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}

// Settings collects every environment-driven knob of the service and CLI
type Settings struct {
	PresetsFile        string
	MaxPixels          int
	Workers            int
	Port               string
	GinMode            string
	DataDir            string
	RateLimitPerMinute int
	RateLimitBurst     int
	MaxUploadBytes     int64
	APIKeyHash         string
	OutputRetention    time.Duration
}

// Load reads Settings from the environment, applying defaults
func Load() Settings {
	return Settings{
		PresetsFile:        Get("HALFTONE_PRESETS", ""),
		MaxPixels:          GetInt("HALFTONE_MAX_PIXELS", 1<<28),
		Workers:            GetInt("HALFTONE_WORKERS", 0),
		Port:               Get("PORT", "8000"),
		GinMode:            Get("GIN_MODE", ""),
		DataDir:            Get("DATA_DIR", "./data"),
		RateLimitPerMinute: GetInt("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitBurst:     GetInt("RATE_LIMIT_BURST", 10),
		MaxUploadBytes:     GetInt64("MAX_UPLOAD_MB", 32) << 20,
		APIKeyHash:         Get("API_KEY_HASH", ""),
		OutputRetention:    GetDuration("OUTPUT_RETENTION", 7*24*time.Hour),
	}
}
