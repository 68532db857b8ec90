// Package lastfm implements the enrichment provider client. Last.fm
// contributes tags, labels and track durations that MusicBrainz lacks;
// the crawler overlays them non-destructively.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/discograph/internal/constants"
	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/httpclient"
)

const (
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	minRequestInterval = 250 * time.Millisecond
	requestsPerMinute  = 120

	maxGenres = 5
)

// Client talks to the Last.fm web API. It owns its HTTP session for its
// lifetime; calling methods after Close is a programming error.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpclient.New(nil, minRequestInterval, requestsPerMinute),
	}
}

// Name identifies this provider in Discography.Sources.
func (c *Client) Name() string {
	return constants.SourceLastFM
}

// Close releases the client's network session.
func (c *Client) Close() {
	c.http.Close()
}

// AlbumInfo looks up one album by artist and title and maps the response
// into enrichment fields. A miss is a NotFoundError, never a fabricated
// empty result.
func (c *Client) AlbumInfo(ctx context.Context, artist, album string) (*domain.AlbumEnrichment, error) {
	params := url.Values{}
	params.Set("method", "album.getinfo")
	params.Set("artist", artist)
	params.Set("album", album)

	var result albumInfoResponse
	if err := c.getJSON(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("album info %q / %q: %w", artist, album, err)
	}
	if result.Error != 0 || result.Album == nil {
		return nil, &domain.NotFoundError{Entity: "album", Query: artist + " - " + album}
	}

	a := result.Album
	enrichment := &domain.AlbumEnrichment{
		Label:     a.Label,
		URL:       a.URL,
		Listeners: a.Listeners.Int64(),
		Playcount: a.Playcount.Int64(),
	}
	for i, tag := range a.Tags.Tag {
		if i >= maxGenres {
			break
		}
		if name := strings.TrimSpace(tag.Name); name != "" {
			enrichment.Genres = append(enrichment.Genres, name)
		}
	}
	for _, tr := range a.Tracks.Track {
		enrichment.Tracks = append(enrichment.Tracks, domain.TrackEnrichment{
			Title:      tr.Name,
			DurationMS: tr.Duration.Int() * 1000, // Last.fm reports seconds
		})
	}
	return enrichment, nil
}

// ArtistInfo returns the artist page URL, listener counts and top tags.
func (c *Client) ArtistInfo(ctx context.Context, artist string) (*domain.ArtistEnrichment, error) {
	params := url.Values{}
	params.Set("method", "artist.getinfo")
	params.Set("artist", artist)

	var result artistInfoResponse
	if err := c.getJSON(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("artist info %q: %w", artist, err)
	}
	if result.Error != 0 || result.Artist == nil {
		return nil, &domain.NotFoundError{Entity: "artist", Query: artist}
	}

	info := &domain.ArtistEnrichment{
		Name:      result.Artist.Name,
		URL:       result.Artist.URL,
		Listeners: result.Artist.Stats.Listeners.Int64(),
		Playcount: result.Artist.Stats.Playcount.Int64(),
	}
	for _, tag := range result.Artist.Tags.Tag {
		if name := strings.TrimSpace(tag.Name); name != "" {
			info.Genres = append(info.Genres, name)
		}
	}
	return info, nil
}

// TopAlbums returns the artist's most-played album titles, most popular
// first.
func (c *Client) TopAlbums(ctx context.Context, artist string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	params := url.Values{}
	params.Set("method", "artist.gettopalbums")
	params.Set("artist", artist)
	params.Set("limit", strconv.Itoa(limit))

	var result topAlbumsResponse
	if err := c.getJSON(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("top albums %q: %w", artist, err)
	}

	titles := make([]string, 0, len(result.TopAlbums.Album))
	for _, a := range result.TopAlbums.Album {
		if a.Name != "" {
			titles = append(titles, a.Name)
		}
	}
	return titles, nil
}

func (c *Client) getJSON(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
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
		return fmt.Errorf("lastfm returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
