package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/discograph/internal/config"
	"github.com/cesargomez89/discograph/internal/crawler"
	"github.com/cesargomez89/discograph/internal/genius"
	"github.com/cesargomez89/discograph/internal/handlers"
	"github.com/cesargomez89/discograph/internal/lastfm"
	"github.com/cesargomez89/discograph/internal/logger"
	"github.com/cesargomez89/discograph/internal/musicbrainz"
	"github.com/cesargomez89/discograph/internal/store"
	"github.com/cesargomez89/discograph/internal/worker"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	crawlerOpts := crawler.Options{
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		MaxRetries:        cfg.MaxRetries,
		LyricsPerAlbum:    cfg.LyricsPerAlbum,
	}

	// Each job gets fresh provider clients; sessions are not shared
	// across crawls.
	factory := func(enrich, lyrics bool) worker.Crawler {
		catalog := musicbrainz.NewClient(cfg.MusicBrainzURL, appLogger)

		var enricher crawler.Enricher
		if enrich && cfg.EnrichmentEnabled() {
			enricher = crawler.NewCachedEnricher(
				lastfm.NewClient(cfg.LastFMURL, cfg.LastFMAPIKey), db, cfg.CacheTTL)
		}

		var lyricsSource crawler.LyricsSource
		if lyrics && cfg.LyricsEnabled() {
			lyricsSource = genius.NewClient(cfg.GeniusURL, cfg.GeniusToken)
		}

		return crawler.New(catalog, enricher, lyricsSource, appLogger, crawlerOpts)
	}

	// Initialize Worker
	w := worker.New(db, factory, cfg.PollInterval, appLogger)
	w.Start()
	defer w.Stop()

	// Search endpoint shares one long-lived catalog client
	searchCrawler := crawler.New(musicbrainz.NewClient(cfg.MusicBrainzURL, appLogger), nil, nil, appLogger, crawlerOpts)
	defer searchCrawler.Close()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Routes
	h := handlers.NewHandler(db, searchCrawler, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exiting")
}
