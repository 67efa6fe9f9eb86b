// Package session keeps the designs currently loaded by a caller. A design
// is replaced wholesale on re-parse; holders of the previous model keep a
// valid, unchanged value.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/ftth-cli/internal/design"
	"github.com/sells-group/ftth-cli/internal/kmz"
)

// ErrNotFound is returned for an unknown or cleared design ID.
var ErrNotFound = eris.New("session: design not found")

// Entry is one loaded design.
type Entry struct {
	ID        string        `json:"id" yaml:"id"`
	Model     *design.Model `json:"-" yaml:"-"`
	Stats     kmz.Stats     `json:"stats" yaml:"stats"`
	Revision  int           `json:"revision" yaml:"revision"`
	UpdatedAt time.Time     `json:"updated_at" yaml:"updated_at"`
}

// Store is an in-memory, concurrency-safe set of designs.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry), now: time.Now}
}

// Put stores a new design and returns its entry.
func (s *Store) Put(m *design.Model, stats kmz.Stats) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Model:     m,
		Stats:     stats,
		Revision:  1,
		UpdatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
	return e
}

// Replace swaps the model for id.
func (s *Store) Replace(id string, m *design.Model, stats kmz.Stats) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.entries[id]
	if !ok {
		return Entry{}, eris.Wrapf(ErrNotFound, "id %s", id)
	}
	e := Entry{
		ID:        id,
		Model:     m,
		Stats:     stats,
		Revision:  prev.Revision + 1,
		UpdatedAt: s.now().UTC(),
	}
	s.entries[id] = e
	return e, nil
}

// Get returns the current entry for id.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, eris.Wrapf(ErrNotFound, "id %s", id)
	}
	return e, nil
}

// Clear drops id. Clearing an unknown ID reports ErrNotFound.
func (s *Store) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return eris.Wrapf(ErrNotFound, "id %s", id)
	}
	delete(s.entries, id)
	return nil
}

// Len returns the number of loaded designs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
