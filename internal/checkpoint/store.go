package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrStale means a CommitBatch observed a version other than the one it
// loaded: a second writer is active. The orchestrator treats this as
// fatal for the current batch rather than risk losing progress.
var ErrStale = errors.New("checkpoint version conflict: another writer is active")

// Store abstracts checkpoint persistence so the backend (file, database
// document) is swappable without touching the orchestrator.
type Store interface {
	// Load returns the stored checkpoint, or a fresh one when none exists.
	Load(ctx context.Context) (*Checkpoint, error)
	// CommitBatch persists the checkpoint after a batch, bumping its version.
	CommitBatch(ctx context.Context, cp *Checkpoint) error
	// Reset discards stored progress. Operator action only.
	Reset(ctx context.Context) error
}

// FileStore persists the checkpoint as a JSON file, written atomically
// via a temp file and rename. Mutual exclusion between orchestrator
// processes is the operator's responsibility with this backend.
type FileStore struct {
	path string
}

// NewFileStore returns a file-backed checkpoint store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint file '%s': %w", s.path, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint file '%s': %w", s.path, err)
	}
	return &cp, nil
}

func (s *FileStore) CommitBatch(ctx context.Context, cp *Checkpoint) error {
	cp.Version++
	cp.LastUpdatedAt = nowUTC()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace checkpoint file: %w", err)
	}
	return nil
}

func (s *FileStore) Reset(ctx context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
