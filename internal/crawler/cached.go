package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cesargomez89/discograph/internal/domain"
)

type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
	ClearCache() error
}

// CachedEnricher wraps an Enricher with a byte cache. Album lookups are
// the hottest provider calls during a crawl, and their responses change
// rarely enough that a TTL cache is safe.
type CachedEnricher struct {
	enricher Enricher
	cache    Cache
	cacheTTL time.Duration
}

func NewCachedEnricher(enricher Enricher, cache Cache, cacheTTL time.Duration) *CachedEnricher {
	return &CachedEnricher{
		enricher: enricher,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (c *CachedEnricher) Name() string {
	return c.enricher.Name()
}

func (c *CachedEnricher) AlbumInfo(ctx context.Context, artist, album string) (*domain.AlbumEnrichment, error) {
	cacheKey := fmt.Sprintf("enrich:%s:%s:%s", c.enricher.Name(), artist, album)

	data, err := c.cache.GetCache(cacheKey)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var enrichment domain.AlbumEnrichment
		if err := json.Unmarshal(data, &enrichment); err == nil {
			return &enrichment, nil
		}
	}

	enrichment, err := c.enricher.AlbumInfo(ctx, artist, album)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(enrichment); err == nil {
		c.cache.SetCache(cacheKey, data, c.cacheTTL)
	}

	return enrichment, nil
}

// ArtistInfo forwards artist-level lookups through the same cache. A
// wrapped enricher without artist support reports a miss.
func (c *CachedEnricher) ArtistInfo(ctx context.Context, artist string) (*domain.ArtistEnrichment, error) {
	ae, ok := c.enricher.(ArtistEnricher)
	if !ok {
		return nil, &domain.NotFoundError{Entity: "artist info", Query: artist}
	}

	cacheKey := fmt.Sprintf("enrich-artist:%s:%s", c.enricher.Name(), artist)

	data, err := c.cache.GetCache(cacheKey)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var info domain.ArtistEnrichment
		if err := json.Unmarshal(data, &info); err == nil {
			return &info, nil
		}
	}

	info, err := ae.ArtistInfo(ctx, artist)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(info); err == nil {
		c.cache.SetCache(cacheKey, data, c.cacheTTL)
	}

	return info, nil
}

// TopAlbums forwards ranking lookups through the same cache.
func (c *CachedEnricher) TopAlbums(ctx context.Context, artist string, limit int) ([]string, error) {
	ae, ok := c.enricher.(ArtistEnricher)
	if !ok {
		return nil, &domain.NotFoundError{Entity: "top albums", Query: artist}
	}

	cacheKey := fmt.Sprintf("top-albums:%s:%s:%d", c.enricher.Name(), artist, limit)

	data, err := c.cache.GetCache(cacheKey)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var titles []string
		if err := json.Unmarshal(data, &titles); err == nil {
			return titles, nil
		}
	}

	titles, err := ae.TopAlbums(ctx, artist, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(titles); err == nil {
		c.cache.SetCache(cacheKey, data, c.cacheTTL)
	}

	return titles, nil
}

func (c *CachedEnricher) ClearCache() error {
	return c.cache.ClearCache()
}

// Close releases the wrapped enricher's session.
func (c *CachedEnricher) Close() {
	if cl, ok := c.enricher.(interface{ Close() }); ok {
		cl.Close()
	}
}
