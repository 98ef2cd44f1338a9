package storage

import (
	"context"
	"fmt"
	"sync"

	"playlist-crawler/internal/crawler"
	"playlist-crawler/pkg/models"
)

// MemoryOpener keeps one in-process dataset per job.
type MemoryOpener struct {
	mu   sync.Mutex
	sets map[string][]models.DatasetItem
}

func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{sets: make(map[string][]models.DatasetItem)}
}

func (o *MemoryOpener) Open(ctx context.Context, jobID string) (crawler.ScratchStore, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.sets[jobID]; exists {
		return nil, fmt.Errorf("scratch store for job %s already open", jobID)
	}
	o.sets[jobID] = nil
	return &memoryStore{opener: o, jobID: jobID}, nil
}

// Len is the number of datasets not yet dropped.
func (o *MemoryOpener) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sets)
}

type memoryStore struct {
	opener *MemoryOpener
	jobID  string
}

func (s *memoryStore) Write(ctx context.Context, item models.DatasetItem) error {
	s.opener.mu.Lock()
	defer s.opener.mu.Unlock()
	items, ok := s.opener.sets[s.jobID]
	if !ok {
		return fmt.Errorf("scratch store for job %s was dropped", s.jobID)
	}
	s.opener.sets[s.jobID] = append(items, item)
	return nil
}

func (s *memoryStore) ReadAll(ctx context.Context) ([]models.DatasetItem, error) {
	s.opener.mu.Lock()
	defer s.opener.mu.Unlock()
	items, ok := s.opener.sets[s.jobID]
	if !ok {
		return nil, fmt.Errorf("scratch store for job %s was dropped", s.jobID)
	}
	return append([]models.DatasetItem(nil), items...), nil
}

func (s *memoryStore) Drop(ctx context.Context) error {
	s.opener.mu.Lock()
	defer s.opener.mu.Unlock()
	delete(s.opener.sets, s.jobID)
	return nil
}
