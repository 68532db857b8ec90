// Package crawler aggregates provider responses into one canonical
// discography per artist. The catalog-of-record supplies the structural
// backbone; an optional enricher fills gaps and an optional lyrics
// source annotates tracks with reference links.
package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/cesargomez89/discograph/internal/constants"
	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/logger"
	"github.com/cesargomez89/discograph/internal/ratelimit"
	"github.com/cesargomez89/discograph/internal/retry"
)

// Catalog is the primary provider: artist identity and the album/track
// backbone come from here and are never overwritten.
type Catalog interface {
	Name() string
	SearchArtists(ctx context.Context, name string, limit int) ([]domain.Artist, error)
	ArtistDiscography(ctx context.Context, artistID string) ([]domain.Album, error)
}

// Enricher is the optional secondary provider. Its lookups may fail per
// album without affecting the crawl.
type Enricher interface {
	Name() string
	AlbumInfo(ctx context.Context, artist, album string) (*domain.AlbumEnrichment, error)
}

// ArtistEnricher is an optional Enricher capability: artist-level stats
// and the provider's top-album ranking, recorded in Discography.Metadata.
type ArtistEnricher interface {
	ArtistInfo(ctx context.Context, artist string) (*domain.ArtistEnrichment, error)
	TopAlbums(ctx context.Context, artist string, limit int) ([]string, error)
}

// LyricsSource resolves a track to a lyrics reference link. It never
// supplies lyric text.
type LyricsSource interface {
	Name() string
	SongReference(ctx context.Context, title, artist string) (*domain.LyricsReference, error)
}

// Options tune the shared throttle and retry layers. Zero values fall
// back to conservative defaults.
type Options struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RetryMaxDelay     time.Duration
	LyricsPerAlbum    int
}

func (o Options) withDefaults() Options {
	if o.RateLimitRequests <= 0 {
		o.RateLimitRequests = constants.DefaultRateLimitRequests
	}
	if o.RateLimitWindow <= 0 {
		o.RateLimitWindow = constants.DefaultRateLimitWindow
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = constants.DefaultRetryBase
	}
	if o.RetryMaxDelay <= 0 {
		o.RetryMaxDelay = constants.DefaultRetryMax
	}
	if o.LyricsPerAlbum <= 0 {
		o.LyricsPerAlbum = constants.DefaultLyricsPerAlbum
	}
	return o
}

// crawlSearchLimit bounds the candidate list fetched during a full
// crawl; only the first candidate is used.
const crawlSearchLimit = 5

// topAlbumsLimit caps the provider ranking recorded in metadata.
const topAlbumsLimit = 10

// Crawler orchestrates one provider set. Crawls run one at a time per
// Crawler; the rate limiter and retry manager are shared across all
// calls it makes.
type Crawler struct {
	catalog  Catalog
	enricher Enricher
	lyrics   LyricsSource
	limiter  *ratelimit.Limiter
	retrier  *retry.Manager
	log      *logger.Logger
	opts     Options

	mu     sync.Mutex
	status *domain.CrawlStatus
}

// New builds a crawler. enricher and lyrics may be nil; the crawl then
// skips those passes and omits the provider from Sources.
func New(catalog Catalog, enricher Enricher, lyrics LyricsSource, log *logger.Logger, opts Options) *Crawler {
	opts = opts.withDefaults()
	if log == nil {
		log = logger.Default()
	}
	return &Crawler{
		catalog:  catalog,
		enricher: enricher,
		lyrics:   lyrics,
		limiter:  ratelimit.New(opts.RateLimitRequests, opts.RateLimitWindow),
		retrier:  retry.New(opts.MaxRetries, opts.RetryBaseDelay, opts.RetryMaxDelay),
		log:      log.WithComponent("crawler"),
		opts:     opts,
	}
}

// SearchArtists returns up to limit candidates for a free-text name,
// for disambiguation before a full crawl.
func (c *Crawler) SearchArtists(ctx context.Context, query string, limit int) ([]domain.Artist, error) {
	var artists []domain.Artist
	err := c.request(ctx, func(ctx context.Context) error {
		var err error
		artists, err = c.catalog.SearchArtists(ctx, query, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return artists, nil
}

// Crawl produces the discography for an artist name. The caller gets
// either a complete document or an AggregationError carrying the artist
// name and root cause; per-album enrichment failures are recovered
// internally and only visible as logged warnings.
func (c *Crawler) Crawl(ctx context.Context, artistName string) (*domain.Discography, error) {
	status := domain.NewCrawlStatus(artistName, time.Now().UTC())
	c.setStatus(status)
	c.log.Info("crawl started", "artist", artistName)

	disc, err := c.crawl(ctx, artistName, &status)
	if err != nil {
		c.setStatus(status.Failed(err.Error(), time.Now().UTC()))
		c.log.Error("crawl failed", "artist", artistName, "error", err)
		return nil, &domain.AggregationError{ArtistName: artistName, Err: err}
	}

	status = status.
		WithCounts(disc.TotalAlbums(), disc.TotalTracks()).
		WithSources(disc.Sources).
		Completed(time.Now().UTC())
	c.setStatus(status)
	c.log.Info("crawl completed",
		"artist", disc.Artist.Name,
		"albums", disc.TotalAlbums(),
		"tracks", disc.TotalTracks())
	return disc, nil
}

func (c *Crawler) crawl(ctx context.Context, artistName string, status *domain.CrawlStatus) (*domain.Discography, error) {
	var candidates []domain.Artist
	err := c.request(ctx, func(ctx context.Context) error {
		var err error
		candidates, err = c.catalog.SearchArtists(ctx, artistName, crawlSearchLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, &domain.NotFoundError{Entity: "artist", Query: artistName}
	}
	artist := candidates[0]
	c.log.Info("artist resolved", "artist", artist.Name, "id", artist.MusicBrainzID)

	var albums []domain.Album
	err = c.request(ctx, func(ctx context.Context) error {
		var err error
		albums, err = c.catalog.ArtistDiscography(ctx, artist.MusicBrainzID)
		return err
	})
	if err != nil {
		return nil, err
	}
	*status = status.WithCounts(len(albums), 0)
	c.setStatus(*status)
	c.log.Info("backbone fetched", "artist", artist.Name, "albums", len(albums))

	sources := []string{c.catalog.Name()}
	metadata := map[string]any{
		c.catalog.Name(): map[string]any{"artist_id": artist.MusicBrainzID},
	}

	if c.enricher != nil {
		enriched, meta, err := c.enrichAlbums(ctx, artist, albums)
		if err != nil {
			return nil, err
		}
		albums = enriched
		if ae, ok := c.enricher.(ArtistEnricher); ok {
			if err := c.enrichArtist(ctx, ae, artist.Name, meta); err != nil {
				return nil, err
			}
		}
		sources = append(sources, c.enricher.Name())
		metadata[c.enricher.Name()] = meta
	}

	if c.lyrics != nil {
		if err := c.annotateLyrics(ctx, artist, albums); err != nil {
			return nil, err
		}
		sources = append(sources, c.lyrics.Name())
	}

	return &domain.Discography{
		Artist:    artist,
		Albums:    albums,
		CrawledAt: time.Now().UTC(),
		Sources:   sources,
		Metadata:  metadata,
	}, nil
}

// enrichAlbums runs the secondary lookup for every album. A failed
// lookup keeps the original album; only cancellation aborts the loop.
func (c *Crawler) enrichAlbums(ctx context.Context, artist domain.Artist, albums []domain.Album) ([]domain.Album, map[string]any, error) {
	log := c.log.WithProvider(c.enricher.Name())
	out := make([]domain.Album, 0, len(albums))
	tags := make(map[string][]string)

	for _, album := range albums {
		var enrichment *domain.AlbumEnrichment
		err := c.request(ctx, func(ctx context.Context) error {
			var err error
			enrichment, err = c.enricher.AlbumInfo(ctx, artist.Name, album.Title)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			log.Warn("album enrichment failed, keeping original", "album", album.Title, "error", err)
			out = append(out, album)
			continue
		}
		out = append(out, mergeAlbum(album, enrichment))
		if len(enrichment.Genres) > 0 {
			tags[album.Title] = enrichment.Genres
		}
	}

	meta := map[string]any{}
	if len(tags) > 0 {
		meta["album_tags"] = tags
	}
	return out, meta, nil
}

// enrichArtist records artist-level stats and the provider's top-album
// ranking in the enricher's metadata map. Failed lookups are logged and
// skipped; only cancellation aborts.
func (c *Crawler) enrichArtist(ctx context.Context, ae ArtistEnricher, artistName string, meta map[string]any) error {
	log := c.log.WithProvider(c.enricher.Name())

	var info *domain.ArtistEnrichment
	err := c.request(ctx, func(ctx context.Context) error {
		var err error
		info, err = ae.ArtistInfo(ctx, artistName)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("artist info lookup failed", "artist", artistName, "error", err)
	} else {
		artistMeta := map[string]any{
			"url":       info.URL,
			"listeners": info.Listeners,
			"playcount": info.Playcount,
		}
		if len(info.Genres) > 0 {
			artistMeta["tags"] = info.Genres
		}
		meta["artist"] = artistMeta
	}

	var top []string
	err = c.request(ctx, func(ctx context.Context) error {
		var err error
		top, err = ae.TopAlbums(ctx, artistName, topAlbumsLimit)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("top albums lookup failed", "artist", artistName, "error", err)
		return nil
	}
	if len(top) > 0 {
		meta["top_albums"] = top
	}
	return nil
}

// annotateLyrics attaches reference links to the first few tracks of
// each album. Failed lookups are per-track isolated; only cancellation
// aborts the pass.
func (c *Crawler) annotateLyrics(ctx context.Context, artist domain.Artist, albums []domain.Album) error {
	log := c.log.WithProvider(c.lyrics.Name())
	for ai := range albums {
		tracks := albums[ai].Tracks
		for ti := 0; ti < len(tracks) && ti < c.opts.LyricsPerAlbum; ti++ {
			if tracks[ti].Lyrics != nil {
				continue
			}
			var ref *domain.LyricsReference
			err := c.request(ctx, func(ctx context.Context) error {
				var err error
				ref, err = c.lyrics.SongReference(ctx, tracks[ti].Title, artist.Name)
				return err
			})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn("lyrics lookup failed", "track", tracks[ti].Title, "error", err)
				continue
			}
			tracks[ti].Lyrics = ref
		}
	}
	return nil
}

// request is the shared gate for every external call: acquire a rate
// limit slot, then run the operation under retry.
func (c *Crawler) request(ctx context.Context, op func(context.Context) error) error {
	if err := c.limiter.Acquire(ctx); err != nil {
		return err
	}
	return c.retrier.Do(ctx, op)
}

// Status returns a snapshot of the latest crawl's status, or nil before
// the first crawl.
func (c *Crawler) Status() *domain.CrawlStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return nil
	}
	s := *c.status
	return &s
}

func (c *Crawler) setStatus(s domain.CrawlStatus) {
	c.mu.Lock()
	c.status = &s
	c.mu.Unlock()
}

// Close releases the sessions of providers that own one. The crawler
// must not be used afterwards.
func (c *Crawler) Close() {
	for _, p := range []any{c.catalog, c.enricher, c.lyrics} {
		if cl, ok := p.(interface{ Close() }); ok {
			cl.Close()
		}
	}
}
