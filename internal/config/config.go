package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/discograph/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port           string
	DBPath         string
	MusicBrainzURL string
	LastFMURL      string
	LastFMAPIKey   string
	GeniusURL      string
	GeniusToken    string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	MaxRetries        int
	LyricsPerAlbum    int
	CacheTTL          time.Duration
	PollInterval      time.Duration

	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables with defaults.
// Provider URLs default to the public endpoints; keys left empty disable
// the corresponding provider.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", constants.DefaultPort),
		DBPath:         getEnv("DB_PATH", constants.DefaultDBPath),
		MusicBrainzURL: getEnv("MUSICBRAINZ_URL", ""),
		LastFMURL:      getEnv("LASTFM_URL", ""),
		LastFMAPIKey:   getEnv("LASTFM_API_KEY", ""),
		GeniusURL:      getEnv("GENIUS_URL", ""),
		GeniusToken:    getEnv("GENIUS_TOKEN", ""),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow),
		MaxRetries:        getEnvInt("MAX_RETRIES", constants.DefaultMaxRetries),
		LyricsPerAlbum:    getEnvInt("LYRICS_PER_ALBUM", constants.DefaultLyricsPerAlbum),
		CacheTTL:          getEnvDuration("CACHE_TTL", constants.DefaultCacheTTL),
		PollInterval:      getEnvDuration("POLL_INTERVAL", constants.DefaultPollInterval),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// EnrichmentEnabled reports whether a Last.fm key was supplied.
func (c *Config) EnrichmentEnabled() bool {
	return c.LastFMAPIKey != ""
}

// LyricsEnabled reports whether a Genius token was supplied.
func (c *Config) LyricsEnabled() bool {
	return c.GeniusToken != ""
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	// Validate DBPath
	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	// Provider URL overrides must parse when set
	for _, u := range []struct{ key, value string }{
		{"MUSICBRAINZ_URL", c.MusicBrainzURL},
		{"LASTFM_URL", c.LastFMURL},
		{"GENIUS_URL", c.GeniusURL},
	} {
		if u.value == "" {
			continue
		}
		if parsed, err := url.Parse(u.value); err != nil || parsed.Scheme == "" {
			errors = append(errors, fmt.Sprintf("%s is not a valid URL: %s", u.key, u.value))
		}
	}

	if c.RateLimitRequests < 1 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_REQUESTS must be at least 1, got: %d", c.RateLimitRequests))
	}
	if c.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_WINDOW must be positive, got: %s", c.RateLimitWindow))
	}
	if c.MaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("MAX_RETRIES cannot be negative, got: %d", c.MaxRetries))
	}
	if c.PollInterval <= 0 {
		errors = append(errors, fmt.Sprintf("POLL_INTERVAL must be positive, got: %s", c.PollInterval))
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable; unparseable
// values fall back to the default.
func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration retrieves a duration environment variable. Bare numbers
// are read as seconds; otherwise Go duration syntax applies.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return fallback
}
