// Package musicbrainz implements the catalog-of-record client. MusicBrainz
// provides the structural backbone of every crawl: artist identity, release
// groups and track lists.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/discograph/internal/constants"
	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/httpclient"
	"github.com/cesargomez89/discograph/internal/logger"
)

const (
	DefaultBaseURL   = "https://musicbrainz.org/ws/2"
	DefaultUserAgent = "discograph/1.0 (https://github.com/cesargomez89/discograph)"

	// MusicBrainz etiquette: no more than one request per second for
	// anonymous clients. A little slack avoids borderline 503s.
	minRequestInterval = 1050 * time.Millisecond
	requestsPerMinute  = 50

	browsePageSize   = 100
	maxReleaseGroups = 500
)

// Client talks to the MusicBrainz ws/2 JSON API. It owns its HTTP session
// for its lifetime; calling methods after Close is a programming error.
type Client struct {
	baseURL   string
	userAgent string
	http      *httpclient.Client
	log       *logger.Logger
}

func NewClient(baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: DefaultUserAgent,
		http:      httpclient.New(nil, minRequestInterval, requestsPerMinute),
		log:       log,
	}
}

// Name identifies this provider in Discography.Sources.
func (c *Client) Name() string {
	return constants.SourceMusicBrainz
}

// Close releases the client's network session.
func (c *Client) Close() {
	c.http.Close()
}

// SearchArtists looks up artist candidates by name, most relevant first
// (MusicBrainz orders by score).
func (c *Client) SearchArtists(ctx context.Context, name string, limit int) ([]domain.Artist, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	params := url.Values{}
	params.Set("query", luceneQuery("artist", name))
	params.Set("fmt", "json")
	params.Set("limit", strconv.Itoa(limit))

	var result artistSearchResponse
	if err := c.getJSON(ctx, "/artist?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("artist search %q: %w", name, err)
	}

	artists := make([]domain.Artist, 0, len(result.Artists))
	for _, a := range result.Artists {
		artists = append(artists, a.toDomain())
	}
	return artists, nil
}

// ArtistDiscography browses all release groups of an artist and resolves
// each one's track list through its primary release. Release groups that
// fail to parse are skipped; the rest of the discography survives.
func (c *Client) ArtistDiscography(ctx context.Context, artistID string) ([]domain.Album, error) {
	groups, err := c.browseReleaseGroups(ctx, artistID)
	if err != nil {
		return nil, err
	}

	albums := make([]domain.Album, 0, len(groups))
	for _, rg := range groups {
		album, err := c.releaseGroupAlbum(ctx, rg)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if c.log != nil {
				c.log.Warn("skipping release group", "title", rg.Title, "error", err)
			}
			continue
		}
		albums = append(albums, *album)
	}

	sort.SliceStable(albums, func(i, j int) bool {
		return albums[i].ReleaseYear < albums[j].ReleaseYear
	})
	return albums, nil
}

func (c *Client) browseReleaseGroups(ctx context.Context, artistID string) ([]releaseGroup, error) {
	var groups []releaseGroup

	for offset := 0; offset < maxReleaseGroups; offset += browsePageSize {
		params := url.Values{}
		params.Set("artist", artistID)
		params.Set("fmt", "json")
		params.Set("limit", strconv.Itoa(browsePageSize))
		params.Set("offset", strconv.Itoa(offset))

		var page releaseGroupBrowseResponse
		if err := c.getJSON(ctx, "/release-group?"+params.Encode(), &page); err != nil {
			return nil, fmt.Errorf("browse release groups for %s: %w", artistID, err)
		}

		groups = append(groups, page.ReleaseGroups...)
		if offset+browsePageSize >= page.Count || len(page.ReleaseGroups) == 0 {
			break
		}
	}

	return groups, nil
}

// releaseGroupAlbum turns one release group into a canonical album, pulling
// tracks, label and country from the group's first release.
func (c *Client) releaseGroupAlbum(ctx context.Context, rg releaseGroup) (*domain.Album, error) {
	if rg.Title == "" {
		return nil, &domain.ParseError{Source: c.Name(), Item: rg.ID, Err: fmt.Errorf("release group without title")}
	}

	releaseDate, err := domain.ParseDate(rg.FirstReleaseDate)
	if err != nil {
		return nil, &domain.ParseError{Source: c.Name(), Item: rg.Title, Err: err}
	}

	album := &domain.Album{
		Title:         rg.Title,
		ReleaseDate:   releaseDate,
		AlbumType:     rg.PrimaryType,
		MusicBrainzID: rg.ID,
	}

	rel, err := c.primaryRelease(ctx, rg.ID)
	if err != nil {
		return nil, err
	}
	if rel != nil {
		if album.ReleaseDate.IsZero() {
			if d, err := domain.ParseDate(rel.Date); err == nil {
				album.ReleaseDate = d
			}
		}
		album.Country = rel.Country
		if len(rel.LabelInfo) > 0 {
			album.Label = rel.LabelInfo[0].Label.Name
			album.CatalogNumber = rel.LabelInfo[0].CatalogNumber
		}
		for _, m := range rel.Media {
			for _, tr := range m.Tracks {
				album.Tracks = append(album.Tracks, tr.toDomain())
			}
		}
	}

	album.Normalize()
	return album, nil
}

// primaryRelease fetches the first release of a release group including
// its recordings. nil without error means the group has no releases
// (metadata-only album).
func (c *Client) primaryRelease(ctx context.Context, releaseGroupID string) (*release, error) {
	params := url.Values{}
	params.Set("release-group", releaseGroupID)
	params.Set("inc", "recordings+labels")
	params.Set("fmt", "json")
	params.Set("limit", "1")

	var result releaseBrowseResponse
	if err := c.getJSON(ctx, "/release?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("release lookup for group %s: %w", releaseGroupID, err)
	}
	if len(result.Releases) == 0 {
		return nil, nil
	}
	return &result.Releases[0], nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// luceneQuery builds a fielded Lucene query with the value quoted.
func luceneQuery(field, value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return fmt.Sprintf(`%s:"%s"`, field, escaped)
}
