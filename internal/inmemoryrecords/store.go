// Package inmemoryrecords provides a simple, thread-safe, in-memory
// implementation of the recordstore.Store interface.
package inmemoryrecords

import (
	"context"
	"sync"

	"github.com/specialistvlad/timeliness/internal/ctxlog"
	"github.com/specialistvlad/timeliness/internal/lineage"
	"github.com/specialistvlad/timeliness/internal/recordstore"
)

// Store implements the recordstore.Store interface using a map and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu      sync.RWMutex
	records map[string]lineage.Record
	order   []string
}

// New creates a new, empty in-memory record store.
func New() *Store {
	return &Store{records: make(map[string]lineage.Record)}
}

var _ recordstore.Store = (*Store)(nil)

// Put stores records, replacing existing records with the same URN.
func (s *Store) Put(ctx context.Context, records ...lineage.Record) error {
	if err := recordstore.Validate(records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, rec := range records {
		if _, exists := s.records[rec.URN]; !exists {
			s.order = append(s.order, rec.URN)
			added++
		}
		s.records[rec.URN] = rec
	}
	ctxlog.FromContext(ctx).Debug("Records stored.", "count", len(records), "new", added, "total", len(s.order))
	return nil
}

// Get retrieves a record by URN.
func (s *Store) Get(_ context.Context, urn string) (*lineage.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[urn]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

// All returns a snapshot of every record in first-insertion order.
func (s *Store) All(_ context.Context) ([]lineage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]lineage.Record, 0, len(s.order))
	for _, urn := range s.order {
		out = append(out, s.records[urn])
	}
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
