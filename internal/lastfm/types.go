package lastfm

import (
	"encoding/json"
	"strconv"
)

// Last.fm collapses single-element collections into bare objects and
// reports numbers as strings, so the decode types absorb both shapes.

type albumInfoResponse struct {
	Album *lfmAlbum `json:"album"`
	Error int       `json:"error"`
}

type lfmAlbum struct {
	Name      string     `json:"name"`
	Artist    string     `json:"artist"`
	URL       string     `json:"url"`
	Label     string     `json:"label"`
	Listeners flexNumber `json:"listeners"`
	Playcount flexNumber `json:"playcount"`
	Tags      tagWrapper `json:"tags"`
	Tracks    struct {
		Track trackList `json:"track"`
	} `json:"tracks"`
}

type artistInfoResponse struct {
	Artist *lfmArtist `json:"artist"`
	Error  int        `json:"error"`
}

type lfmArtist struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Stats struct {
		Listeners flexNumber `json:"listeners"`
		Playcount flexNumber `json:"playcount"`
	} `json:"stats"`
	Tags tagWrapper `json:"tags"`
}

type topAlbumsResponse struct {
	TopAlbums struct {
		Album albumList `json:"album"`
	} `json:"topalbums"`
}

type lfmTag struct {
	Name string `json:"name"`
}

type tagWrapper struct {
	Tag tagList `json:"tag"`
}

type lfmTrack struct {
	Name     string     `json:"name"`
	Duration flexNumber `json:"duration"`
}

type lfmTopAlbum struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// tagList accepts both a JSON array and a single object.
type tagList []lfmTag

func (l *tagList) UnmarshalJSON(data []byte) error {
	return unmarshalOneOrMany(data, (*[]lfmTag)(l))
}

type trackList []lfmTrack

func (l *trackList) UnmarshalJSON(data []byte) error {
	return unmarshalOneOrMany(data, (*[]lfmTrack)(l))
}

type albumList []lfmTopAlbum

func (l *albumList) UnmarshalJSON(data []byte) error {
	return unmarshalOneOrMany(data, (*[]lfmTopAlbum)(l))
}

func unmarshalOneOrMany[T any](data []byte, out *[]T) error {
	if len(data) == 0 || string(data) == "null" {
		*out = nil
		return nil
	}
	if data[0] == '[' {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*out = many
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*out = []T{one}
	return nil
}

// flexNumber decodes a JSON number or a numeric string; anything else
// counts as zero.
type flexNumber int64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(v)
	return nil
}

func (n flexNumber) Int() int {
	return int(n)
}

func (n flexNumber) Int64() int64 {
	return int64(n)
}
