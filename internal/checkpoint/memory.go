package checkpoint

import (
	"context"
	"sync"
)

// MemoryStore keeps the checkpoint in memory. Used by --dry-run imports
// and tests; nothing survives the process.
type MemoryStore struct {
	mu sync.Mutex
	cp *Checkpoint
}

// NewMemoryStore returns an empty in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cp == nil {
		return New(), nil
	}
	c := *s.cp
	c.Errors = append([]ImportError(nil), s.cp.Errors...)
	c.CompletedBatches = append([]string(nil), s.cp.CompletedBatches...)
	return &c, nil
}

func (s *MemoryStore) CommitBatch(ctx context.Context, cp *Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp.Version++
	cp.LastUpdatedAt = nowUTC()
	c := *cp
	c.Errors = append([]ImportError(nil), cp.Errors...)
	c.CompletedBatches = append([]string(nil), cp.CompletedBatches...)
	s.cp = &c
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cp = nil
	return nil
}
