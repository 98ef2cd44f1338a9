package storage

import (
	"context"
	"fmt"
	"log/slog"

	"playlist-crawler/pkg/models"
)

// RunSink implements engine.Sink for saving crawl run summaries to Postgres.
// A failed row aborts the whole batch.
type RunSink struct {
	*Storage
}

func (s *RunSink) Save(ctx context.Context, batch []models.CrawlRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO crawl_runs (job_id, url, playlist_id, state, video_count, error_kind, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (job_id) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range batch {
		_, err := stmt.ExecContext(ctx,
			r.JobID,
			r.URL,
			r.PlaylistID,
			r.State.String(),
			r.VideoCount,
			r.ErrorKind,
			r.StartedAt,
			r.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("save run %s: %w", r.JobID, err)
		}
	}

	return tx.Commit()
}

// LogSink writes run summaries to the log when no database is configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Save(ctx context.Context, batch []models.CrawlRun) error {
	for _, r := range batch {
		s.Logger.LogAttrs(ctx, slog.LevelInfo, "crawl run",
			slog.String("job_id", r.JobID),
			slog.String("url", r.URL),
			slog.String("playlist_id", r.PlaylistID),
			slog.String("state", r.State.String()),
			slog.Int("videos", r.VideoCount),
			slog.String("error_type", r.ErrorKind),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}
