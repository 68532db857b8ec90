package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/discograph/internal/constants"
	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) SearchArtists(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit := constants.MaxSearchResults
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		if n < limit {
			limit = n
		}
	}

	artists, err := h.Searcher.SearchArtists(r.Context(), query, limit)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			h.writeJSON(w, http.StatusOK, []domain.Artist{})
			return
		}
		h.Log.Error("artist search failed", "query", query, "error", err)
		h.writeError(w, http.StatusBadGateway, "artist search failed")
		return
	}

	h.writeJSON(w, http.StatusOK, artists)
}

type createCrawlRequest struct {
	ArtistName string `json:"artist_name"`
	Enrich     bool   `json:"enrich"`
	Lyrics     bool   `json:"lyrics"`
}

func (h *Handler) CreateCrawl(w http.ResponseWriter, r *http.Request) {
	var req createCrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ArtistName = strings.TrimSpace(req.ArtistName)
	if req.ArtistName == "" {
		h.writeError(w, http.StatusBadRequest, "artist_name is required")
		return
	}

	rec := &store.CrawlRecord{
		ID:         uuid.New().String(),
		ArtistName: req.ArtistName,
		Enrich:     req.Enrich,
		Lyrics:     req.Lyrics,
		Status:     store.CrawlJobQueued,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := h.Store.CreateCrawl(rec); err != nil {
		// the unique index rejects a second active crawl per artist
		h.Log.Error("failed to enqueue crawl", "artist", req.ArtistName, "error", err)
		h.writeError(w, http.StatusConflict, "a crawl for this artist is already active")
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]string{"id": rec.ID})
}

type crawlResponse struct {
	*store.CrawlRecord
	Document json.RawMessage `json:"document,omitempty"`
}

func (h *Handler) GetCrawl(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetCrawl(id)
	if err != nil {
		h.Log.Error("failed to load crawl", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load crawl")
		return
	}
	if rec == nil {
		h.writeError(w, http.StatusNotFound, "crawl not found")
		return
	}

	resp := crawlResponse{CrawlRecord: rec}
	if rec.Status == store.CrawlJobCompleted && len(rec.Document) > 0 {
		resp.Document = json.RawMessage(rec.Document)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListCrawls(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListCrawls(constants.MaxHistoryItems)
	if err != nil {
		h.Log.Error("failed to list crawls", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list crawls")
		return
	}
	if recs == nil {
		recs = []*store.CrawlRecord{}
	}
	h.writeJSON(w, http.StatusOK, recs)
}
