package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cesargomez89/discograph/internal/domain"
)

type countingEnricher struct {
	called int
	err    error
}

func (m *countingEnricher) Name() string { return "Last.fm" }

func (m *countingEnricher) AlbumInfo(ctx context.Context, artist, album string) (*domain.AlbumEnrichment, error) {
	m.called++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.AlbumEnrichment{Label: "DGC"}, nil
}

type mapCache struct {
	data map[string][]byte
	err  error
}

func (m *mapCache) GetCache(key string) ([]byte, error) {
	return m.data[key], m.err
}

func (m *mapCache) SetCache(key string, data []byte, ttl time.Duration) error {
	m.data[key] = data
	return m.err
}

func (m *mapCache) ClearCache() error {
	m.data = make(map[string][]byte)
	return m.err
}

func TestCachedEnricher_AlbumInfo(t *testing.T) {
	inner := &countingEnricher{}
	cache := &mapCache{data: make(map[string][]byte)}
	ce := NewCachedEnricher(inner, cache, time.Hour)

	ctx := context.Background()

	// 1. First call - should call inner enricher
	e, err := ce.AlbumInfo(ctx, "Nirvana", "Nevermind")
	if err != nil {
		t.Fatalf("AlbumInfo failed: %v", err)
	}
	if e.Label != "DGC" {
		t.Errorf("Unexpected label %q", e.Label)
	}
	if inner.called != 1 {
		t.Errorf("Expected inner enricher to be called once, got %d", inner.called)
	}

	// 2. Second call - should hit cache
	e2, err := ce.AlbumInfo(ctx, "Nirvana", "Nevermind")
	if err != nil {
		t.Fatalf("Second AlbumInfo failed: %v", err)
	}
	if e2.Label != "DGC" {
		t.Errorf("Unexpected second label %q", e2.Label)
	}
	if inner.called != 1 {
		t.Errorf("Expected inner enricher to STILL be called once (cache hit), got %d", inner.called)
	}

	// 3. Different album - separate key, inner called again
	_, _ = ce.AlbumInfo(ctx, "Nirvana", "In Utero")
	if inner.called != 2 {
		t.Errorf("Expected inner enricher to be called for a new album, got %d", inner.called)
	}

	// 4. Clear cache - should call inner again
	_ = ce.ClearCache()
	_, _ = ce.AlbumInfo(ctx, "Nirvana", "Nevermind")
	if inner.called != 3 {
		t.Errorf("Expected inner enricher to be called again after clear, got %d", inner.called)
	}
}

func TestCachedEnricher_ErrorsNotCached(t *testing.T) {
	inner := &countingEnricher{err: errors.New("boom")}
	cache := &mapCache{data: make(map[string][]byte)}
	ce := NewCachedEnricher(inner, cache, time.Hour)

	ctx := context.Background()
	if _, err := ce.AlbumInfo(ctx, "A", "B"); err == nil {
		t.Fatal("expected error")
	}
	if len(cache.data) != 0 {
		t.Errorf("error response was cached: %v", cache.data)
	}

	inner.err = nil
	if _, err := ce.AlbumInfo(ctx, "A", "B"); err != nil {
		t.Fatalf("AlbumInfo failed after recovery: %v", err)
	}
	if inner.called != 2 {
		t.Errorf("inner called %d times, want 2", inner.called)
	}
}

func TestCachedEnricher_Name(t *testing.T) {
	ce := NewCachedEnricher(&countingEnricher{}, &mapCache{data: map[string][]byte{}}, time.Hour)
	if ce.Name() != "Last.fm" {
		t.Errorf("Name = %q, want the wrapped provider's name", ce.Name())
	}
}

// countingArtistEnricher adds artist-level lookups and session tracking.
type countingArtistEnricher struct {
	countingEnricher
	artistCalled int
	topCalled    int
	closed       bool
}

func (m *countingArtistEnricher) ArtistInfo(ctx context.Context, artist string) (*domain.ArtistEnrichment, error) {
	m.artistCalled++
	return &domain.ArtistEnrichment{Name: artist, Listeners: 42}, nil
}

func (m *countingArtistEnricher) TopAlbums(ctx context.Context, artist string, limit int) ([]string, error) {
	m.topCalled++
	return []string{"Nevermind"}, nil
}

func (m *countingArtistEnricher) Close() {
	m.closed = true
}

func TestCachedEnricher_ArtistInfo(t *testing.T) {
	inner := &countingArtistEnricher{}
	cache := &mapCache{data: make(map[string][]byte)}
	ce := NewCachedEnricher(inner, cache, time.Hour)

	ctx := context.Background()

	info, err := ce.ArtistInfo(ctx, "Nirvana")
	if err != nil {
		t.Fatalf("ArtistInfo failed: %v", err)
	}
	if info.Listeners != 42 {
		t.Errorf("Listeners = %d", info.Listeners)
	}

	// second lookup served from cache
	if _, err := ce.ArtistInfo(ctx, "Nirvana"); err != nil {
		t.Fatalf("Second ArtistInfo failed: %v", err)
	}
	if inner.artistCalled != 1 {
		t.Errorf("inner called %d times, want 1 (cache hit)", inner.artistCalled)
	}

	top, err := ce.TopAlbums(ctx, "Nirvana", 10)
	if err != nil {
		t.Fatalf("TopAlbums failed: %v", err)
	}
	if len(top) != 1 || top[0] != "Nevermind" {
		t.Errorf("TopAlbums = %v", top)
	}
	if _, err := ce.TopAlbums(ctx, "Nirvana", 10); err != nil {
		t.Fatalf("Second TopAlbums failed: %v", err)
	}
	if inner.topCalled != 1 {
		t.Errorf("inner called %d times, want 1 (cache hit)", inner.topCalled)
	}
}

func TestCachedEnricher_ArtistInfoWithoutCapability(t *testing.T) {
	ce := NewCachedEnricher(&countingEnricher{}, &mapCache{data: map[string][]byte{}}, time.Hour)

	_, err := ce.ArtistInfo(context.Background(), "Nirvana")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("ArtistInfo = %v, want NotFoundError when the wrapped enricher has no artist support", err)
	}
	_, err = ce.TopAlbums(context.Background(), "Nirvana", 10)
	if !errors.As(err, &nf) {
		t.Errorf("TopAlbums = %v, want NotFoundError when the wrapped enricher has no artist support", err)
	}
}

func TestCachedEnricher_CloseForwards(t *testing.T) {
	inner := &countingArtistEnricher{}
	ce := NewCachedEnricher(inner, &mapCache{data: map[string][]byte{}}, time.Hour)

	ce.Close()
	if !inner.closed {
		t.Error("Close not forwarded to the wrapped enricher")
	}
}
