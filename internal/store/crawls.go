package store

import (
	"database/sql"
	"time"
)

type CrawlJobStatus string

const (
	CrawlJobQueued    CrawlJobStatus = "queued"
	CrawlJobRunning   CrawlJobStatus = "running"
	CrawlJobCompleted CrawlJobStatus = "completed"
	CrawlJobFailed    CrawlJobStatus = "failed"
)

// CrawlRecord is one crawl request and its outcome. Document holds the
// final discography JSON once the crawl completes.
type CrawlRecord struct {
	ID          string         `db:"id" json:"id"`
	ArtistName  string         `db:"artist_name" json:"artist_name"`
	Enrich      bool           `db:"enrich" json:"enrich"`
	Lyrics      bool           `db:"lyrics" json:"lyrics"`
	Status      CrawlJobStatus `db:"status" json:"status"`
	AlbumsFound int            `db:"albums_found" json:"albums_found"`
	TracksFound int            `db:"tracks_found" json:"tracks_found"`
	Error       *string        `db:"error" json:"error,omitempty"`
	Document    []byte         `db:"document" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
}

func (db *DB) CreateCrawl(rec *CrawlRecord) error {
	query := `INSERT INTO crawls (id, artist_name, enrich, lyrics, status, created_at, updated_at)
		VALUES (:id, :artist_name, :enrich, :lyrics, :status, :created_at, :updated_at)`

	_, err := db.NamedExec(query, rec)
	return err
}

func (db *DB) MarkCrawlRunning(id string) error {
	query := `UPDATE crawls SET status = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, CrawlJobRunning, time.Now(), id)
	return err
}

func (db *DB) CompleteCrawl(id string, albums, tracks int, document []byte) error {
	now := time.Now()
	query := `UPDATE crawls SET status = ?, albums_found = ?, tracks_found = ?, document = ?,
		updated_at = ?, completed_at = ? WHERE id = ?`
	_, err := db.Exec(query, CrawlJobCompleted, albums, tracks, document, now, now, id)
	return err
}

func (db *DB) FailCrawl(id string, errorMsg string) error {
	now := time.Now()
	query := `UPDATE crawls SET status = ?, error = ?, updated_at = ?, completed_at = ? WHERE id = ?`
	_, err := db.Exec(query, CrawlJobFailed, errorMsg, now, now, id)
	return err
}

func (db *DB) GetCrawl(id string) (*CrawlRecord, error) {
	query := `SELECT id, artist_name, enrich, lyrics, status, albums_found, tracks_found,
		error, document, created_at, updated_at, completed_at FROM crawls WHERE id = ?`

	rec := &CrawlRecord{}
	err := db.Get(rec, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (db *DB) ListCrawls(limit int) ([]*CrawlRecord, error) {
	query := `SELECT id, artist_name, enrich, lyrics, status, albums_found, tracks_found,
		error, created_at, updated_at, completed_at FROM crawls ORDER BY created_at DESC LIMIT ?`

	var recs []*CrawlRecord
	err := db.Select(&recs, query, limit)
	return recs, err
}

// NextQueuedCrawl returns the oldest queued crawl, or nil when the queue
// is empty.
func (db *DB) NextQueuedCrawl() (*CrawlRecord, error) {
	query := `SELECT id, artist_name, enrich, lyrics, status, albums_found, tracks_found,
		error, created_at, updated_at, completed_at FROM crawls
		WHERE status = ? ORDER BY created_at ASC LIMIT 1`

	rec := &CrawlRecord{}
	err := db.Get(rec, query, CrawlJobQueued)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ResetStuckCrawls requeues crawls left in running state by an unclean
// shutdown. Called once on startup.
func (db *DB) ResetStuckCrawls() (int64, error) {
	res, err := db.Exec(`UPDATE crawls SET status = ?, updated_at = ? WHERE status = ?`,
		CrawlJobQueued, time.Now(), CrawlJobRunning)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
