// Package genius implements the lyrics-metadata-reference client. It
// returns links and identification snippets only; full lyric text is
// never fetched or stored.
package genius

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cesargomez89/discograph/internal/constants"
	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/httpclient"
)

const (
	DefaultBaseURL = "https://api.genius.com"

	minRequestInterval = 500 * time.Millisecond
	requestsPerMinute  = 60

	// Fair-use cap: the identification snippet never exceeds this many
	// words of any quoted text.
	snippetMaxWords = 3

	// Disclaimer accompanies every lyrics reference handed to callers.
	Disclaimer = "Lyrics are copyrighted material. This reference links to the official page only."
)

// Song is the public metadata Genius exposes for one track. It carries
// no lyric text.
type Song struct {
	GeniusID        int64
	Title           string
	ArtistName      string
	URL             string
	PageViews       int64
	FeaturedArtists []string
	Snippet         string
}

// Client talks to the Genius API with bearer-token auth. It owns its
// HTTP session for its lifetime.
type Client struct {
	baseURL string
	token   string
	http    *httpclient.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    httpclient.New(nil, minRequestInterval, requestsPerMinute),
	}
}

// Name identifies this provider in Discography.Sources.
func (c *Client) Name() string {
	return constants.SourceGenius
}

// Close releases the client's network session.
func (c *Client) Close() {
	c.http.Close()
}

// SearchSong finds the song best matching title and artist. Hits whose
// title and artist (primary or featured) overlap the query are preferred,
// the most-viewed one winning; with no match at all the first hit is
// returned. No hits is a NotFoundError.
func (c *Client) SearchSong(ctx context.Context, title, artist string) (*Song, error) {
	params := url.Values{}
	params.Set("q", artist+" "+title)
	params.Set("per_page", "10")

	var result searchResponse
	if err := c.getJSON(ctx, "/search", params, &result); err != nil {
		return nil, fmt.Errorf("song search %q / %q: %w", artist, title, err)
	}

	hits := result.Response.Hits
	if len(hits) == 0 {
		return nil, &domain.NotFoundError{Entity: "song", Query: artist + " - " + title}
	}

	best := hits[0].Result
	matched := false
	for _, h := range hits {
		if !matchesQuery(h.Result, title, artist) {
			continue
		}
		if !matched || h.Result.Stats.PageViews > best.Stats.PageViews {
			best = h.Result
			matched = true
		}
	}
	return best.toSong(), nil
}

// SongReference resolves a track to a lyrics reference: provider name,
// official page URL, identification snippet and disclaimer.
func (c *Client) SongReference(ctx context.Context, title, artist string) (*domain.LyricsReference, error) {
	song, err := c.SearchSong(ctx, title, artist)
	if err != nil {
		return nil, err
	}
	return &domain.LyricsReference{
		Provider:   c.Name(),
		URL:        song.URL,
		Snippet:    song.Snippet,
		Disclaimer: Disclaimer,
	}, nil
}

func matchesQuery(r songResult, title, artist string) bool {
	if !overlaps(r.Title, title) {
		return false
	}
	if overlaps(r.PrimaryArtist.Name, artist) {
		return true
	}
	for _, f := range r.FeaturedArtists {
		if overlaps(f.Name, artist) {
			return true
		}
	}
	return false
}

// overlaps is a case-insensitive bidirectional substring check.
func overlaps(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// capSnippet trims text to at most snippetMaxWords words. Anything
// shorter than two words is useless for identification and dropped.
func capSnippet(text string) string {
	words := strings.Fields(text)
	if len(words) > snippetMaxWords {
		words = words[:snippetMaxWords]
	}
	if len(words) < 2 {
		return ""
	}
	return strings.Join(words, " ") + "..."
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "discograph/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("genius returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
