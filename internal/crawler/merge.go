package crawler

import "github.com/cesargomez89/discograph/internal/domain"

// mergeAlbum overlays enrichment onto a catalog album. The overlay is
// non-destructive: enrichment only fills fields the catalog left empty.
// Neither input is mutated.
func mergeAlbum(album domain.Album, e *domain.AlbumEnrichment) domain.Album {
	merged := album
	merged.Genre = append([]string(nil), album.Genre...)
	merged.Tracks = mergeTracks(album.Tracks, e.Tracks)

	if merged.Label == "" {
		merged.Label = e.Label
	}
	if len(merged.Genre) == 0 {
		merged.Genre = append([]string(nil), e.Genres...)
	}
	return merged
}

// mergeTracks pairs tracks positionally. Duration is the only field
// enrichment may touch, and only when the catalog track has none. A
// shorter enrichment list leaves the trailing tracks unmodified.
func mergeTracks(tracks []domain.Track, enrichment []domain.TrackEnrichment) []domain.Track {
	out := make([]domain.Track, len(tracks))
	copy(out, tracks)
	for i := range out {
		if i >= len(enrichment) {
			break
		}
		if out[i].DurationMS == 0 && enrichment[i].DurationMS > 0 {
			out[i].DurationMS = enrichment[i].DurationMS
		}
	}
	return out
}
