// Package memory provides in-memory store implementations used in guest
// mode and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/curatorhq/curator/internal/curator"
)

// ProductStore keeps product records in memory, in insertion order.
type ProductStore struct {
	mu      sync.RWMutex
	records []curator.ProductRecord
	ids     curator.IDGenerator
}

// NewProductStore creates an empty in-memory product store.
func NewProductStore(ids curator.IDGenerator) *ProductStore {
	return &ProductStore{ids: ids}
}

// ListProducts returns copies of every record.
func (s *ProductStore) ListProducts(context.Context) ([]curator.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]curator.ProductRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

// CreateProduct assigns an ID and stores the draft as a pending record.
func (s *ProductStore) CreateProduct(_ context.Context, d curator.Draft) (curator.ProductRecord, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return curator.ProductRecord{}, fmt.Errorf("generate id: %w", err)
	}
	record := curator.ProductRecord{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Images:      append([]string(nil), d.Images...),
		Price:       d.Price,
		Currency:    d.Currency,
		URL:         d.URL,
		Status:      curator.StatusPending,
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
	return record.Clone(), nil
}

// UpdateProduct applies the non-nil fields of the patch.
func (s *ProductStore) UpdateProduct(_ context.Context, id string, patch curator.ProductPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if patch.Status != nil {
			s.records[i].Status = *patch.Status
		}
		if patch.Season != nil {
			s.records[i].Season = *patch.Season
		}
		return nil
	}
	return curator.ErrNotFound
}

// DeleteProduct removes one record.
func (s *ProductStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return curator.ErrNotFound
}

// DeleteAllProducts empties the store.
func (s *ProductStore) DeleteAllProducts(context.Context) error {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
	return nil
}
