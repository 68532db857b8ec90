package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/logger"
	"github.com/cesargomez89/discograph/internal/store"
	"github.com/go-chi/chi/v5"
)

// Searcher answers artist disambiguation queries without starting a
// crawl. Satisfied by *crawler.Crawler.
type Searcher interface {
	SearchArtists(ctx context.Context, query string, limit int) ([]domain.Artist, error)
}

type Handler struct {
	Store    *store.DB
	Searcher Searcher
	Log      *logger.Logger
}

func NewHandler(db *store.DB, searcher Searcher, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Store:    db,
		Searcher: searcher,
		Log:      log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/artists/search", h.SearchArtists)
	r.Post("/api/crawls", h.CreateCrawl)
	r.Get("/api/crawls", h.ListCrawls)
	r.Get("/api/crawls/{id}", h.GetCrawl)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
