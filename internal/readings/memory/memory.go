package memory

import (
	"context"
	"sort"
	"sync"

	"weatherman/internal/core"
	"weatherman/internal/readings"
)

// Store keeps readings in memory, one per day. Used by tests and as a
// snapshot source when the web process preloads another backend.
type Store struct {
	mu    sync.Mutex
	items map[core.Date]core.Reading
}

var (
	_ readings.Source = (*Store)(nil)
	_ readings.Writer = (*Store)(nil)
)

func New(rs ...core.Reading) *Store {
	s := &Store{items: make(map[core.Date]core.Reading, len(rs))}
	for _, r := range rs {
		s.items[r.Date] = r
	}
	return s
}

// UpsertReadings stores the readings, replacing existing days.
func (s *Store) UpsertReadings(_ context.Context, rs []core.Reading, _ string) (int, error) {
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rs {
		s.items[r.Date] = r
	}
	return len(rs), nil
}

// Load returns a copy of the stored readings in date order.
func (s *Store) Load(_ context.Context) ([]core.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Reading, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

// Count returns how many days are stored.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}
