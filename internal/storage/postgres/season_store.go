package postgres

import (
	"context"
	"fmt"

	"github.com/curatorhq/curator/internal/curator"
)

// SeasonStore persists season names in Postgres.
type SeasonStore struct {
	pool pgxPool
}

// NewSeasonStore connects a pool and returns a SeasonStore.
func NewSeasonStore(ctx context.Context, cfg Config) (*SeasonStore, error) {
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &SeasonStore{pool: pool}, nil
}

// NewSeasonStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewSeasonStoreWithPool(pool pgxPool) (*SeasonStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &SeasonStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *SeasonStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// ListSeasons returns season names in creation order.
func (s *SeasonStore) ListSeasons(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM seasons ORDER BY created_at, name;`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan season row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate season rows: %w", err)
	}
	return names, nil
}

// CreateSeason inserts a season name; duplicates map to ErrSeasonExists.
func (s *SeasonStore) CreateSeason(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO seasons (name) VALUES ($1) ON CONFLICT (name) DO NOTHING;`, name)
	if err != nil {
		return fmt.Errorf("insert season: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curator.ErrSeasonExists
	}
	return nil
}

// RenameSeason renames a season row.
func (s *SeasonStore) RenameSeason(ctx context.Context, oldName, newName string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE seasons SET name = $2 WHERE name = $1;`, oldName, newName)
	if err != nil {
		return fmt.Errorf("rename season: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curator.ErrSeasonNotFound
	}
	return nil
}

// DeleteSeason removes a season row.
func (s *SeasonStore) DeleteSeason(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM seasons WHERE name = $1;`, name)
	if err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curator.ErrSeasonNotFound
	}
	return nil
}
