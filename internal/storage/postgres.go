package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"playlist-crawler/internal/crawler"
	"playlist-crawler/pkg/models"
)

// PostgresOpener hands out scratch stores backed by rows in crawl_datasets,
// partitioned by job id.
type PostgresOpener struct {
	*Storage
}

func (s *Storage) Opener() *PostgresOpener {
	return &PostgresOpener{Storage: s}
}

func (o *PostgresOpener) Open(ctx context.Context, jobID string) (crawler.ScratchStore, error) {
	// Clear leftovers in case a previous process died before dropping.
	if _, err := o.db.ExecContext(ctx, `DELETE FROM crawl_datasets WHERE job_id = $1`, jobID); err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", jobID, err)
	}
	return &postgresStore{Storage: o.Storage, jobID: jobID}, nil
}

type postgresStore struct {
	*Storage
	jobID string
}

func (s *postgresStore) Write(ctx context.Context, item models.DatasetItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode dataset item: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO crawl_datasets (job_id, payload) VALUES ($1, $2)`,
		s.jobID, payload)
	if err != nil {
		return fmt.Errorf("write dataset %s: %w", s.jobID, err)
	}
	return nil
}

func (s *postgresStore) ReadAll(ctx context.Context) ([]models.DatasetItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM crawl_datasets WHERE job_id = $1 ORDER BY id`, s.jobID)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.jobID, err)
	}
	defer rows.Close()

	var items []models.DatasetItem
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var item models.DatasetItem
		if err := json.Unmarshal(payload, &item); err != nil {
			return nil, fmt.Errorf("decode dataset item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *postgresStore) Drop(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM crawl_datasets WHERE job_id = $1`, s.jobID); err != nil {
		return fmt.Errorf("drop dataset %s: %w", s.jobID, err)
	}
	return nil
}
