// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/curatorhq/curator/internal/curator"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// ProductStore persists product records in Postgres.
type ProductStore struct {
	pool pgxPool
	ids  curator.IDGenerator
}

// NewProductStore connects a pool and returns a ProductStore.
func NewProductStore(ctx context.Context, cfg Config, ids curator.IDGenerator) (*ProductStore, error) {
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &ProductStore{pool: pool, ids: ids}, nil
}

// NewProductStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewProductStoreWithPool(pool pgxPool, ids curator.IDGenerator) (*ProductStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &ProductStore{pool: pool, ids: ids}, nil
}

// Close releases the underlying pool resources.
func (s *ProductStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// ListProducts returns every record ordered by insertion.
func (s *ProductStore) ListProducts(ctx context.Context) ([]curator.ProductRecord, error) {
	query := `
		SELECT id, name, description, images, price, currency, url, status, COALESCE(season, '')
		FROM products
		ORDER BY created_at, id;
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var records []curator.ProductRecord
	for rows.Next() {
		var (
			r      curator.ProductRecord
			images []byte
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &images, &r.Price,
			&r.Currency, &r.URL, &r.Status, &r.Season); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		if len(images) > 0 {
			if err := json.Unmarshal(images, &r.Images); err != nil {
				return nil, fmt.Errorf("decode images for %s: %w", r.ID, err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return records, nil
}

// CreateProduct inserts the draft and returns the stored record.
func (s *ProductStore) CreateProduct(ctx context.Context, d curator.Draft) (curator.ProductRecord, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return curator.ProductRecord{}, fmt.Errorf("generate id: %w", err)
	}
	images, err := json.Marshal(d.Images)
	if err != nil {
		return curator.ProductRecord{}, fmt.Errorf("encode images: %w", err)
	}

	query := `
		INSERT INTO products (id, name, description, images, price, currency, url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = s.pool.Exec(ctx, query, id, d.Name, d.Description, images,
		d.Price, d.Currency, d.URL, curator.StatusPending)
	if err != nil {
		return curator.ProductRecord{}, fmt.Errorf("insert product: %w", err)
	}
	return curator.ProductRecord{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Images:      append([]string(nil), d.Images...),
		Price:       d.Price,
		Currency:    d.Currency,
		URL:         d.URL,
		Status:      curator.StatusPending,
	}, nil
}

// UpdateProduct applies the non-nil patch fields.
func (s *ProductStore) UpdateProduct(ctx context.Context, id string, patch curator.ProductPatch) error {
	if patch.Status == nil && patch.Season == nil {
		return nil
	}

	set := ""
	args := []any{id}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		set += fmt.Sprintf("status = $%d", len(args))
	}
	if patch.Season != nil {
		if set != "" {
			set += ", "
		}
		args = append(args, *patch.Season)
		set += fmt.Sprintf("season = NULLIF($%d, '')", len(args))
	}

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $1;", set)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curator.ErrNotFound
	}
	return nil
}

// DeleteProduct removes one record.
func (s *ProductStore) DeleteProduct(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return curator.ErrNotFound
	}
	return nil
}

// DeleteAllProducts truncates the record set.
func (s *ProductStore) DeleteAllProducts(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM products;`); err != nil {
		return fmt.Errorf("delete all products: %w", err)
	}
	return nil
}

func newPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
