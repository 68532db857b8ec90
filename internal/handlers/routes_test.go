package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/store"
	"github.com/go-chi/chi/v5"
)

type stubSearcher struct {
	artists []domain.Artist
	err     error
	gotQ    string
	gotLim  int
}

func (s *stubSearcher) SearchArtists(ctx context.Context, query string, limit int) ([]domain.Artist, error) {
	s.gotQ = query
	s.gotLim = limit
	return s.artists, s.err
}

func setupHandler(t *testing.T, searcher Searcher) (*Handler, *store.DB, func()) {
	t.Helper()
	tmpFile := "handlers_test.db"
	db, err := store.NewSQLiteDB(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	cleanup := func() {
		db.Close()
		os.Remove(tmpFile)
	}
	return NewHandler(db, searcher, nil), db, cleanup
}

func newRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestSearchArtists(t *testing.T) {
	searcher := &stubSearcher{
		artists: []domain.Artist{{Name: "Nirvana", MusicBrainzID: "mbid-1"}},
	}
	h, _, cleanup := setupHandler(t, searcher)
	defer cleanup()
	r := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/artists/search?q=Nirvana&limit=5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if searcher.gotQ != "Nirvana" || searcher.gotLim != 5 {
		t.Errorf("searcher called with %q / %d", searcher.gotQ, searcher.gotLim)
	}

	var artists []domain.Artist
	if err := json.Unmarshal(w.Body.Bytes(), &artists); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(artists) != 1 || artists[0].Name != "Nirvana" {
		t.Errorf("artists = %+v", artists)
	}
}

func TestSearchArtistsMissingQuery(t *testing.T) {
	h, _, cleanup := setupHandler(t, &stubSearcher{})
	defer cleanup()
	r := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/artists/search", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateCrawl(t *testing.T) {
	h, db, cleanup := setupHandler(t, &stubSearcher{})
	defer cleanup()
	r := newRouter(h)

	body := bytes.NewBufferString(`{"artist_name": "Nirvana", "enrich": true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/crawls", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	id := resp["id"]
	if id == "" {
		t.Fatal("response has no id")
	}

	rec, err := db.GetCrawl(id)
	if err != nil || rec == nil {
		t.Fatalf("crawl not persisted: %v", err)
	}
	if rec.ArtistName != "Nirvana" || !rec.Enrich || rec.Lyrics {
		t.Errorf("persisted crawl = %+v", rec)
	}
	if rec.Status != store.CrawlJobQueued {
		t.Errorf("status = %s, want queued", rec.Status)
	}
}

func TestCreateCrawlValidation(t *testing.T) {
	h, _, cleanup := setupHandler(t, &stubSearcher{})
	defer cleanup()
	r := newRouter(h)

	for _, body := range []string{`{}`, `{"artist_name": "  "}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/crawls", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestCreateCrawlDuplicateActive(t *testing.T) {
	h, _, cleanup := setupHandler(t, &stubSearcher{})
	defer cleanup()
	r := newRouter(h)

	post := func() *httptest.ResponseRecorder {
		body := bytes.NewBufferString(`{"artist_name": "Nirvana"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/crawls", body)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := post(); w.Code != http.StatusAccepted {
		t.Fatalf("first crawl: status = %d", w.Code)
	}
	if w := post(); w.Code != http.StatusConflict {
		t.Errorf("duplicate crawl: status = %d, want 409", w.Code)
	}
}

func TestGetCrawl(t *testing.T) {
	h, db, cleanup := setupHandler(t, &stubSearcher{})
	defer cleanup()
	r := newRouter(h)

	rec := &store.CrawlRecord{
		ID:         "c-1",
		ArtistName: "Nirvana",
		Status:     store.CrawlJobQueued,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.CreateCrawl(rec); err != nil {
		t.Fatalf("CreateCrawl failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/crawls/c-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got["artist_name"] != "Nirvana" {
		t.Errorf("artist_name = %v", got["artist_name"])
	}
	// no document before completion
	if _, ok := got["document"]; ok {
		t.Error("document present on a queued crawl")
	}
}

func TestGetCrawlIncludesDocumentWhenCompleted(t *testing.T) {
	h, db, cleanup := setupHandler(t, &stubSearcher{})
	defer cleanup()
	r := newRouter(h)

	rec := &store.CrawlRecord{
		ID:         "c-2",
		ArtistName: "Nirvana",
		Status:     store.CrawlJobQueued,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.CreateCrawl(rec); err != nil {
		t.Fatalf("CreateCrawl failed: %v", err)
	}
	doc := []byte(`{"artist":{"name":"Nirvana"},"albums":[]}`)
	if err := db.CompleteCrawl("c-2", 0, 0, doc); err != nil {
		t.Fatalf("CompleteCrawl failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/crawls/c-2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got struct {
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(got.Document) == 0 {
		t.Fatal("completed crawl response has no document")
	}
}

func TestGetCrawlNotFound(t *testing.T) {
	h, _, cleanup := setupHandler(t, &stubSearcher{})
	defer cleanup()
	r := newRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/crawls/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListCrawls(t *testing.T) {
	h, db, cleanup := setupHandler(t, &stubSearcher{})
	defer cleanup()
	r := newRouter(h)

	// empty history serializes as an array, not null
	req := httptest.NewRequest(http.MethodGet, "/api/crawls", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := trimmed(w.Body.Bytes()); body == "null" {
		t.Errorf("empty list serialized as %q", body)
	}

	for i, name := range []string{"Nirvana", "Pixies"} {
		rec := &store.CrawlRecord{
			ID:         name,
			ArtistName: name,
			Status:     store.CrawlJobQueued,
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Minute),
			UpdatedAt:  time.Now(),
		}
		if err := db.CreateCrawl(rec); err != nil {
			t.Fatalf("CreateCrawl failed: %v", err)
		}
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/crawls", nil))
	var recs []*store.CrawlRecord
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("crawls = %d, want 2", len(recs))
	}
	// newest first
	if recs[0].ArtistName != "Pixies" {
		t.Errorf("first crawl = %q, want newest", recs[0].ArtistName)
	}
}

func trimmed(b []byte) string { return string(bytes.TrimSpace(b)) }
