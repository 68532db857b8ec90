// Package domain holds the canonical music metadata model. Every provider
// response is reconciled into these types before anything else sees it.
package domain

import (
	"strings"
	"time"
)

// Album types as reported by the catalog-of-record.
const (
	AlbumTypeAlbum   = "album"
	AlbumTypeSingle  = "single"
	AlbumTypeEP      = "ep"
	AlbumTypeUnknown = "unknown"
)

// Artist is the canonical representation of a musical artist.
type Artist struct {
	Name           string `json:"name"`
	SortName       string `json:"sort_name"`
	Disambiguation string `json:"disambiguation"`
	MusicBrainzID  string `json:"musicbrainz_id"`
	Country        string `json:"country"`
	BeginDate      Date   `json:"begin_date"`
	EndDate        Date   `json:"end_date"`
	ArtistType     string `json:"artist_type"`
	Gender         string `json:"gender"`
}

// Key returns the immutable identity of the artist: the provider id when
// known, otherwise the normalized name.
func (a Artist) Key() string {
	if a.MusicBrainzID != "" {
		return a.MusicBrainzID
	}
	return strings.ToLower(strings.TrimSpace(a.Name))
}

// LyricsReference points at a provider's lyrics page. It never carries
// lyric text; the snippet is capped for identification only.
type LyricsReference struct {
	Provider   string `json:"provider"`
	URL        string `json:"url"`
	Snippet    string `json:"snippet,omitempty"`
	Disclaimer string `json:"disclaimer"`
}

// Track is one track on an album. TrackNumber is 1-based and used for
// positional merging; DurationMS of 0 means unknown.
type Track struct {
	Title       string           `json:"title"`
	TrackNumber int              `json:"track_number"`
	DurationMS  int              `json:"duration_ms"`
	ISRC        string           `json:"isrc"`
	Explicit    bool             `json:"explicit"`
	Lyrics      *LyricsReference `json:"lyrics_reference,omitempty"`
}

// Album is a canonical release group. An album with zero tracks is valid
// (metadata-only entry).
type Album struct {
	Title         string   `json:"title"`
	ReleaseDate   Date     `json:"release_date"`
	ReleaseYear   int      `json:"release_year"`
	AlbumType     string   `json:"album_type"`
	Label         string   `json:"label"`
	CatalogNumber string   `json:"catalog_number"`
	MusicBrainzID string   `json:"musicbrainz_id"`
	Genre         []string `json:"genre"`
	Country       string   `json:"country"`
	Tracks        []Track  `json:"tracks"`
}

// Normalize derives ReleaseYear from ReleaseDate when absent and defaults
// the album type.
func (a *Album) Normalize() {
	if a.ReleaseYear == 0 && !a.ReleaseDate.IsZero() {
		a.ReleaseYear = a.ReleaseDate.Year()
	}
	if a.AlbumType == "" {
		a.AlbumType = AlbumTypeUnknown
	} else {
		a.AlbumType = strings.ToLower(a.AlbumType)
	}
}

func (a Album) TrackCount() int {
	return len(a.Tracks)
}

// TotalDurationMS sums the known track durations.
func (a Album) TotalDurationMS() int {
	total := 0
	for _, t := range a.Tracks {
		total += t.DurationMS
	}
	return total
}

// Discography is the final merged document for one artist.
type Discography struct {
	Artist    Artist         `json:"artist"`
	Albums    []Album        `json:"albums"`
	CrawledAt time.Time      `json:"crawled_at"`
	Sources   []string       `json:"sources"`
	Metadata  map[string]any `json:"metadata"`
}

func (d Discography) TotalAlbums() int {
	return len(d.Albums)
}

// TotalTracks is the sum of per-album track counts.
func (d Discography) TotalTracks() int {
	total := 0
	for _, a := range d.Albums {
		total += a.TrackCount()
	}
	return total
}

// Span returns the min and max release years present among the albums.
// ok is false when no album has a release year.
func (d Discography) Span() (start, end int, ok bool) {
	for _, a := range d.Albums {
		if a.ReleaseYear == 0 {
			continue
		}
		if !ok {
			start, end, ok = a.ReleaseYear, a.ReleaseYear, true
			continue
		}
		if a.ReleaseYear < start {
			start = a.ReleaseYear
		}
		if a.ReleaseYear > end {
			end = a.ReleaseYear
		}
	}
	return start, end, ok
}

// AlbumsByYear groups albums by release year; albums without a year are
// omitted.
func (d Discography) AlbumsByYear() map[int][]Album {
	byYear := make(map[int][]Album)
	for _, a := range d.Albums {
		if a.ReleaseYear != 0 {
			byYear[a.ReleaseYear] = append(byYear[a.ReleaseYear], a)
		}
	}
	return byYear
}

// AlbumsByType groups albums by album type.
func (d Discography) AlbumsByType() map[string][]Album {
	byType := make(map[string][]Album)
	for _, a := range d.Albums {
		t := a.AlbumType
		if t == "" {
			t = AlbumTypeUnknown
		}
		byType[t] = append(byType[t], a)
	}
	return byType
}
