// Package runstore keeps the most recent simulation runs.
package runstore

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/pvsim/core/events"
)

// DefaultCapacity bounds the number of runs a store keeps.
const DefaultCapacity = 100

// ErrNotFound is returned by Get for unknown run IDs.
var ErrNotFound = errors.New("run not found")

type Filter struct {
	Tariff string
	Mode   string
	Since  time.Time
	Failed *bool
}

// Match reports whether e passes the filter.
func (f Filter) Match(e events.RunFinished) bool {
	if f.Tariff != "" && e.Tariff != f.Tariff {
		return false
	}
	if f.Mode != "" && e.Mode != f.Mode {
		return false
	}
	if !f.Since.IsZero() && e.StartedAt.Before(f.Since) {
		return false
	}
	if f.Failed != nil && e.Failed() != *f.Failed {
		return false
	}
	return true
}

// Store keeps finished runs. List returns the newest run first.
type Store interface {
	Add(events.RunFinished) error
	Get(runID string) (events.RunFinished, error)
	List(Filter) ([]events.RunFinished, error)
}

// MemoryStore evicts the oldest run once capacity is reached.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	runs     []events.RunFinished
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) Add(e events.RunFinished) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runs) == s.capacity {
		copy(s.runs, s.runs[1:])
		s.runs = s.runs[:len(s.runs)-1]
	}
	s.runs = append(s.runs, e)
	return nil
}

func (s *MemoryStore) Get(runID string) (events.RunFinished, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.runs) - 1; i >= 0; i-- {
		if runID != "" && s.runs[i].RunID == runID {
			return s.runs[i], nil
		}
	}
	return events.RunFinished{}, ErrNotFound
}

// List returns matching runs, newest first.
func (s *MemoryStore) List(f Filter) ([]events.RunFinished, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]events.RunFinished, 0, len(s.runs))
	for _, e := range s.runs {
		if f.Match(e) {
			res = append(res, e)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].StartedAt.After(res[j].StartedAt) })
	return res, nil
}
