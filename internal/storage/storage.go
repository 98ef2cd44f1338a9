package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib" // Import the driver
)

// DriverName is the database/sql driver registered by this package.
const DriverName = "pgx"

const schema = `
CREATE TABLE IF NOT EXISTS crawl_datasets (
	id         BIGSERIAL PRIMARY KEY,
	job_id     TEXT        NOT NULL,
	payload    JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS crawl_datasets_job_id_idx ON crawl_datasets (job_id);

CREATE TABLE IF NOT EXISTS crawl_runs (
	job_id      TEXT PRIMARY KEY,
	url         TEXT        NOT NULL,
	playlist_id TEXT        NOT NULL,
	state       TEXT        NOT NULL,
	video_count INTEGER     NOT NULL,
	error_kind  TEXT        NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT      NOT NULL
);`

// Storage is the Postgres handle shared by the scratch store and the run
// history sink.
type Storage struct {
	db *sql.DB
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// EnsureSchema creates the tables the crawler writes to.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
