package musicbrainz

import "github.com/cesargomez89/discograph/internal/domain"

type artistSearchResponse struct {
	Artists []mbArtist `json:"artists"`
}

type mbArtist struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	SortName       string   `json:"sort-name"`
	Disambiguation string   `json:"disambiguation"`
	Country        string   `json:"country"`
	Type           string   `json:"type"`
	Gender         string   `json:"gender"`
	Score          int      `json:"score"`
	LifeSpan       lifeSpan `json:"life-span"`
}

type lifeSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

func (a mbArtist) toDomain() domain.Artist {
	// Partial dates that fail to parse degrade to unset rather than
	// discarding the whole artist.
	begin, _ := domain.ParseDate(a.LifeSpan.Begin)
	end, _ := domain.ParseDate(a.LifeSpan.End)
	return domain.Artist{
		Name:           a.Name,
		SortName:       a.SortName,
		Disambiguation: a.Disambiguation,
		MusicBrainzID:  a.ID,
		Country:        a.Country,
		BeginDate:      begin,
		EndDate:        end,
		ArtistType:     a.Type,
		Gender:         a.Gender,
	}
}

type releaseGroupBrowseResponse struct {
	Count         int            `json:"release-group-count"`
	Offset        int            `json:"release-group-offset"`
	ReleaseGroups []releaseGroup `json:"release-groups"`
}

type releaseGroup struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	PrimaryType      string `json:"primary-type"`
	FirstReleaseDate string `json:"first-release-date"`
}

type releaseBrowseResponse struct {
	Releases []release `json:"releases"`
}

type release struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Date      string      `json:"date"`
	Country   string      `json:"country"`
	LabelInfo []labelInfo `json:"label-info"`
	Media     []medium    `json:"media"`
}

type labelInfo struct {
	CatalogNumber string `json:"catalog-number"`
	Label         label  `json:"label"`
}

type label struct {
	Name string `json:"name"`
}

type medium struct {
	Tracks []mbTrack `json:"tracks"`
}

type mbTrack struct {
	Position  int         `json:"position"`
	Title     string      `json:"title"`
	Length    int         `json:"length"`
	Recording mbRecording `json:"recording"`
}

type mbRecording struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Length int    `json:"length"`
}

func (t mbTrack) toDomain() domain.Track {
	title := t.Recording.Title
	if title == "" {
		title = t.Title
	}
	duration := t.Length
	if duration == 0 {
		duration = t.Recording.Length
	}
	position := t.Position
	if position < 1 {
		position = 1
	}
	return domain.Track{
		Title:       title,
		TrackNumber: position,
		DurationMS:  duration,
	}
}
