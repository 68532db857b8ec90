package domain

// AlbumEnrichment carries the fields a secondary provider can contribute
// to a canonical album. The merge policy is non-destructive: these values
// only fill gaps, they never overwrite the catalog-of-record.
type AlbumEnrichment struct {
	Label     string
	Genres    []string
	URL       string
	Listeners int64
	Playcount int64
	Tracks    []TrackEnrichment
}

// TrackEnrichment is paired with a canonical track by position.
type TrackEnrichment struct {
	Title      string
	DurationMS int
}

// ArtistEnrichment carries artist-level stats from a secondary provider.
// It never touches the canonical artist; the crawler records it in
// Discography.Metadata.
type ArtistEnrichment struct {
	Name      string
	URL       string
	Listeners int64
	Playcount int64
	Genres    []string
}
