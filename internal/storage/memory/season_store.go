package memory

import (
	"context"
	"sync"

	"github.com/curatorhq/curator/internal/curator"
)

// SeasonStore keeps season names in memory, in creation order.
type SeasonStore struct {
	mu    sync.RWMutex
	names []string
}

// NewSeasonStore creates an empty in-memory season store.
func NewSeasonStore() *SeasonStore {
	return &SeasonStore{}
}

// ListSeasons returns the season names in creation order.
func (s *SeasonStore) ListSeasons(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...), nil
}

// CreateSeason registers a new season name.
func (s *SeasonStore) CreateSeason(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.names {
		if n == name {
			return curator.ErrSeasonExists
		}
	}
	s.names = append(s.names, name)
	return nil
}

// RenameSeason replaces oldName with newName in place.
func (s *SeasonStore) RenameSeason(_ context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.names {
		if n == newName {
			return curator.ErrSeasonExists
		}
	}
	for i, n := range s.names {
		if n == oldName {
			s.names[i] = newName
			return nil
		}
	}
	return curator.ErrSeasonNotFound
}

// DeleteSeason removes a season name.
func (s *SeasonStore) DeleteSeason(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return nil
		}
	}
	return curator.ErrSeasonNotFound
}
