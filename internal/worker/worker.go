// Package worker drains the crawl queue. Jobs run strictly one at a
// time; provider rate limits make parallel crawls counterproductive.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cesargomez89/discograph/internal/domain"
	"github.com/cesargomez89/discograph/internal/logger"
	"github.com/cesargomez89/discograph/internal/store"
)

// Crawler runs one full crawl. Close releases the provider sessions
// built for the job. Satisfied by *crawler.Crawler.
type Crawler interface {
	Crawl(ctx context.Context, artistName string) (*domain.Discography, error)
	Close()
}

// CrawlerFactory builds a crawler for one job. Each job gets a fresh
// crawler so provider sessions are never shared across crawls.
type CrawlerFactory func(enrich, lyrics bool) Crawler

type Worker struct {
	store        *store.DB
	newCrawler   CrawlerFactory
	pollInterval time.Duration
	log          *logger.Logger
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

func New(db *store.DB, factory CrawlerFactory, pollInterval time.Duration, log *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = logger.Default()
	}
	return &Worker{
		store:        db,
		newCrawler:   factory,
		pollInterval: pollInterval,
		log:          log.WithComponent("worker"),
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *Worker) Start() {
	w.log.Info("starting worker")

	if n, err := w.store.ResetStuckCrawls(); err != nil {
		w.log.Error("failed to reset stuck crawls", "error", err)
	} else if n > 0 {
		w.log.Info("requeued stuck crawls", "count", n)
	}

	w.wg.Add(1)
	go w.processJobs()
}

func (w *Worker) Stop() {
	w.log.Info("stopping worker")
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) processJobs() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			rec, err := w.store.NextQueuedCrawl()
			if err != nil {
				w.log.Error("failed to poll crawl queue", "error", err)
				continue
			}
			if rec == nil {
				continue
			}
			w.runJob(w.ctx, rec)
		}
	}
}

func (w *Worker) runJob(ctx context.Context, rec *store.CrawlRecord) {
	log := w.log.WithCrawl(rec.ID, rec.ArtistName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in crawl job", "panic", r)
			w.store.FailCrawl(rec.ID, fmt.Sprintf("panic: %v", r))
		}
	}()

	log.Info("running crawl job", "enrich", rec.Enrich, "lyrics", rec.Lyrics)

	if err := w.store.MarkCrawlRunning(rec.ID); err != nil {
		log.Error("failed to mark crawl running", "error", err)
		return
	}

	c := w.newCrawler(rec.Enrich, rec.Lyrics)
	defer c.Close()
	disc, err := c.Crawl(ctx, rec.ArtistName)
	if err != nil {
		// an interrupted crawl goes back to the queue on restart
		if ctx.Err() != nil {
			log.Info("crawl interrupted by shutdown")
			return
		}
		log.Error("crawl failed", "error", err)
		if dbErr := w.store.FailCrawl(rec.ID, err.Error()); dbErr != nil {
			log.Error("failed to record crawl failure", "error", dbErr)
		}
		return
	}

	document, err := json.Marshal(disc)
	if err != nil {
		log.Error("failed to encode discography", "error", err)
		w.store.FailCrawl(rec.ID, fmt.Sprintf("encoding discography: %v", err))
		return
	}

	if err := w.store.CompleteCrawl(rec.ID, disc.TotalAlbums(), disc.TotalTracks(), document); err != nil {
		log.Error("failed to record crawl result", "error", err)
		return
	}
	log.Info("crawl job completed", "albums", disc.TotalAlbums(), "tracks", disc.TotalTracks())
}
