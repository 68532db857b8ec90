// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "8080"
	DefaultDBPath       = "discograph.db"
	DefaultPollInterval = 2 * time.Second
	DefaultCacheTTL     = 12 * time.Hour
	DefaultHTTPTimeout  = 15 * time.Second
)

// Crawl throttling defaults
const (
	DefaultRateLimitRequests = 5
	DefaultRateLimitWindow   = 60 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryBase         = 1 * time.Second
	DefaultRetryMax          = 60 * time.Second
	DefaultLyricsPerAlbum    = 3
)

// Provider names as they appear in Discography.Sources
const (
	SourceMusicBrainz = "MusicBrainz"
	SourceLastFM      = "Last.fm"
	SourceGenius      = "Genius"
)

// API limits
const (
	MaxSearchResults = 50
	MaxHistoryItems  = 20
)
