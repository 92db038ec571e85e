package curator

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by store implementations.
var (
	ErrNotFound       = errors.New("product not found")
	ErrSeasonExists   = errors.New("season already exists")
	ErrSeasonNotFound = errors.New("season not found")
)

// ProductStore persists product records.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]ProductRecord, error)
	CreateProduct(ctx context.Context, draft Draft) (ProductRecord, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) error
	DeleteProduct(ctx context.Context, id string) error
	DeleteAllProducts(ctx context.Context) error
}

// SeasonStore persists season names. Membership lives on the product side;
// cascading updates are the workflow's responsibility.
type SeasonStore interface {
	ListSeasons(ctx context.Context) ([]string, error)
	CreateSeason(ctx context.Context, name string) error
	RenameSeason(ctx context.Context, oldName, newName string) error
	DeleteSeason(ctx context.Context, name string) error
}

// PageFetcher retrieves the rendered markup of a target URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces record and request IDs.
type IDGenerator interface {
	NewID() (string, error)
}
