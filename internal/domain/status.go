package domain

import "time"

// CrawlState is the lifecycle state of a crawl.
type CrawlState string

const (
	CrawlInProgress CrawlState = "in_progress"
	CrawlCompleted  CrawlState = "completed"
	CrawlFailed     CrawlState = "failed"
)

// CrawlStatus is an immutable snapshot of one crawl's progress. Transition
// methods return a new value; terminal states (completed, failed) never
// transition again.
type CrawlStatus struct {
	ArtistName  string     `json:"artist_name"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	State       CrawlState `json:"status"`
	AlbumsFound int        `json:"albums_found"`
	TracksFound int        `json:"tracks_found"`
	Errors      []string   `json:"errors"`
	SourcesUsed []string   `json:"sources_used"`
}

// NewCrawlStatus creates the initial in-progress status for an artist.
func NewCrawlStatus(artistName string, now time.Time) CrawlStatus {
	return CrawlStatus{
		ArtistName: artistName,
		StartedAt:  now,
		State:      CrawlInProgress,
	}
}

// Terminal reports whether the status can no longer transition.
func (s CrawlStatus) Terminal() bool {
	return s.State == CrawlCompleted || s.State == CrawlFailed
}

// WithCounts returns a copy with updated album and track counts.
func (s CrawlStatus) WithCounts(albums, tracks int) CrawlStatus {
	s.AlbumsFound = albums
	s.TracksFound = tracks
	return s
}

// WithSources returns a copy recording the providers consulted.
func (s CrawlStatus) WithSources(sources []string) CrawlStatus {
	s.SourcesUsed = append([]string(nil), sources...)
	return s
}

// WithError returns a copy with an error appended. The state is untouched;
// use Failed to terminate the crawl.
func (s CrawlStatus) WithError(msg string) CrawlStatus {
	s.Errors = appendCopy(s.Errors, msg)
	return s
}

// Completed marks the crawl as completed. A terminal status is returned
// unchanged.
func (s CrawlStatus) Completed(now time.Time) CrawlStatus {
	if s.Terminal() {
		return s
	}
	s.State = CrawlCompleted
	s.CompletedAt = &now
	return s
}

// Failed marks the crawl as failed and appends the error. A terminal
// status is returned unchanged.
func (s CrawlStatus) Failed(msg string, now time.Time) CrawlStatus {
	if s.Terminal() {
		return s
	}
	s.State = CrawlFailed
	s.CompletedAt = &now
	s.Errors = appendCopy(s.Errors, msg)
	return s
}

// Duration is the elapsed crawl time, zero until the crawl terminates.
func (s CrawlStatus) Duration() time.Duration {
	if s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

func appendCopy(in []string, s string) []string {
	out := make([]string, len(in), len(in)+1)
	copy(out, in)
	return append(out, s)
}
