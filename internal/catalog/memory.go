package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory ReviewStore. It backs --dry-run imports and
// the test suites; semantics mirror the Mongo store.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*Property
	bySourceID map[int64]string
}

// NewMemoryStore returns an empty in-memory review store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*Property),
		bySourceID: make(map[int64]string),
	}
}

// Upsert inserts a fresh pending record or refreshes the normalized
// fields of an existing one. Status and audit fields of existing records
// are preserved.
func (s *MemoryStore) Upsert(ctx context.Context, p *Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if id, ok := s.bySourceID[p.SourceID]; ok {
		existing := s.byID[id]
		existing.Payload = clonePayload(p.Payload)
		existing.PhotoCount = p.PhotoCount
		existing.PhotoURLs = append([]string(nil), p.PhotoURLs...)
		existing.ThumbnailURL = p.ThumbnailURL
		existing.UpdatedAt = now
		return nil
	}

	stored := cloneProperty(p)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = StatusPending
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.byID[stored.ID] = stored
	s.bySourceID[stored.SourceID] = stored.ID
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProperty(p), nil
}

func (s *MemoryStore) GetBySourceID(ctx context.Context, sourceID int64) (*Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySourceID[sourceID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProperty(s.byID[id]), nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]*Property, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Property
	for _, p := range s.byID {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SourceID < matched[j].SourceID
	})

	total := int64(len(matched))
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 30
	}
	from := (page - 1) * limit
	if from >= len(matched) {
		return nil, total, nil
	}
	to := from + limit
	if to > len(matched) {
		to = len(matched)
	}

	out := make([]*Property, 0, to-from)
	for _, p := range matched[from:to] {
		out = append(out, cloneProperty(p))
	}
	return out, total, nil
}

// ApplyStatus performs the conditional status update. The condition on
// change.From is what makes concurrent reviews of the same property safe:
// the loser of a race observes ErrConflict instead of clobbering.
func (s *MemoryStore) ApplyStatus(ctx context.Context, id string, change StatusChange) (*Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != change.From {
		return nil, ErrConflict
	}

	p.Status = change.To
	if change.ReviewedAt != nil {
		p.ReviewedBy = change.ReviewedBy
		p.ReviewedAt = change.ReviewedAt
		p.Notes = change.Notes
	}
	if change.MigratedAt != nil {
		p.MigratedAt = change.MigratedAt
		p.DestinationID = change.DestinationID
	}
	p.UpdatedAt = time.Now().UTC()
	return cloneProperty(p), nil
}

func (s *MemoryStore) Counts(ctx context.Context) (*Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := &Counts{ByStatus: make(map[Status]int64)}
	for _, p := range s.byID {
		counts.Total++
		counts.ByStatus[p.Status]++
		if p.PhotoCount > 0 {
			counts.WithPhotos++
		} else {
			counts.WithoutPhotos++
		}
	}
	return counts, nil
}

func cloneProperty(p *Property) *Property {
	c := *p
	c.Payload = clonePayload(p.Payload)
	c.PhotoURLs = append([]string(nil), p.PhotoURLs...)
	return &c
}

func clonePayload(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
