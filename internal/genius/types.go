package genius

type searchResponse struct {
	Response struct {
		Hits []searchHit `json:"hits"`
	} `json:"response"`
}

type searchHit struct {
	Result songResult `json:"result"`
}

type songResult struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	URL             string     `json:"url"`
	PrimaryArtist   gnArtist   `json:"primary_artist"`
	FeaturedArtists []gnArtist `json:"featured_artists"`
	Stats           struct {
		PageViews int64 `json:"pageviews"`
	} `json:"stats"`
	Description *struct {
		Plain string `json:"plain"`
	} `json:"description"`
}

type gnArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (r songResult) toSong() *Song {
	s := &Song{
		GeniusID:   r.ID,
		Title:      r.Title,
		ArtistName: r.PrimaryArtist.Name,
		URL:        r.URL,
		PageViews:  r.Stats.PageViews,
	}
	for _, a := range r.FeaturedArtists {
		if a.Name != "" {
			s.FeaturedArtists = append(s.FeaturedArtists, a.Name)
		}
	}
	if r.Description != nil {
		s.Snippet = capSnippet(r.Description.Plain)
	}
	return s
}
