package store

const Schema = `
CREATE TABLE IF NOT EXISTS crawls (
	id TEXT PRIMARY KEY,
	artist_name TEXT NOT NULL,
	enrich BOOLEAN NOT NULL DEFAULT 0,
	lyrics BOOLEAN NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	albums_found INTEGER NOT NULL DEFAULT 0,
	tracks_found INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	document BLOB,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

-- Prevent duplicate active crawls for the same artist
CREATE UNIQUE INDEX IF NOT EXISTS idx_crawls_active_artist ON crawls(artist_name)
WHERE status IN ('queued', 'running');

CREATE INDEX IF NOT EXISTS idx_crawls_status ON crawls(status, created_at);

CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	data BLOB,
	expires_at DATETIME
);
`
