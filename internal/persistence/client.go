// Package persistence talks to the remote curation backend over HTTP. It
// implements the product and season store interfaces so the workflow can
// run against either this client or the in-memory guest stores.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/archive"
	"github.com/curatorhq/curator/internal/curator"
)

// Config controls the persistence client.
type Config struct {
	// BaseURL is the backend root, e.g. https://curation.example.com.
	BaseURL string
	Timeout time.Duration
}

const defaultTimeout = 30 * time.Second

// Client is a session-aware HTTP client for the curation backend. The
// cookie jar carries the login session across calls.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a Client with a fresh cookie jar.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("persistence base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout, Jar: jar},
		logger:  logger,
	}, nil
}

// remoteProduct tolerates the backend's numeric IDs.
type remoteProduct struct {
	ID          json.Number      `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Price       float64          `json:"price"`
	Currency    curator.Currency `json:"currency"`
	URL         string           `json:"url"`
	Status      curator.Status   `json:"status"`
	Season      string           `json:"season"`
}

func (p remoteProduct) toRecord() curator.ProductRecord {
	return curator.ProductRecord{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Images:      p.Images,
		Price:       p.Price,
		Currency:    p.Currency,
		URL:         p.URL,
		Status:      p.Status,
		Season:      p.Season,
	}
}

// Login authenticates and stores the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (curator.User, error) {
	var out struct {
		User curator.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/login",
		map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return curator.User{}, err
	}
	return out.User, nil
}

// Logout clears the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// CurrentUser returns the logged-in user, or nil for guest mode.
func (c *Client) CurrentUser(ctx context.Context) (*curator.User, error) {
	var out struct {
		User *curator.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/current-user", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ListProducts fetches the user's records.
func (c *Client) ListProducts(ctx context.Context) ([]curator.ProductRecord, error) {
	var out struct {
		Products []remoteProduct `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	records := make([]curator.ProductRecord, 0, len(out.Products))
	for _, p := range out.Products {
		records = append(records, p.toRecord())
	}
	return records, nil
}

// CreateProduct stores a draft and returns the record with the assigned ID.
func (c *Client) CreateProduct(ctx context.Context, d curator.Draft) (curator.ProductRecord, error) {
	var out struct {
		ProductID json.Number `json:"product_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/products", d, &out); err != nil {
		return curator.ProductRecord{}, err
	}
	return curator.ProductRecord{
		ID:          out.ProductID.String(),
		Name:        d.Name,
		Description: d.Description,
		Images:      append([]string(nil), d.Images...),
		Price:       d.Price,
		Currency:    d.Currency,
		URL:         d.URL,
		Status:      curator.StatusPending,
	}, nil
}

// UpdateProduct sends only the patched fields.
func (c *Client) UpdateProduct(ctx context.Context, id string, patch curator.ProductPatch) error {
	body := map[string]any{}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}
	if patch.Season != nil {
		body["season"] = *patch.Season
	}
	if len(body) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPut, "/api/products/"+id, body, nil)
}

// DeleteProduct removes one record.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+id, nil, nil)
}

// DeleteAllProducts removes the user's whole record set.
func (c *Client) DeleteAllProducts(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/delete_all_products", nil, nil)
}

// ListSeasons fetches the user's season names.
func (c *Client) ListSeasons(ctx context.Context) ([]string, error) {
	var out struct {
		Seasons []string `json:"seasons"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/seasons", nil, &out); err != nil {
		return nil, err
	}
	return out.Seasons, nil
}

// CreateSeason registers a season name.
func (c *Client) CreateSeason(ctx context.Context, name string) error {
	err := c.do(ctx, http.MethodPost, "/api/seasons", map[string]string{"name": name}, nil)
	if isStatus(err, http.StatusBadRequest) {
		return curator.ErrSeasonExists
	}
	return err
}

// RenameSeason changes a season's name.
func (c *Client) RenameSeason(ctx context.Context, oldName, newName string) error {
	err := c.do(ctx, http.MethodPut, "/api/seasons/"+oldName,
		map[string]string{"new_name": newName}, nil)
	if isStatus(err, http.StatusBadRequest) {
		return curator.ErrSeasonExists
	}
	return err
}

// DeleteSeason removes a season name.
func (c *Client) DeleteSeason(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/seasons/"+name, nil, nil)
}

// ArchiveImages asks the backend to download a record's images to its own
// disk via /save-images-locally and reports the backend's save counts.
func (c *Client) ArchiveImages(ctx context.Context, record curator.ProductRecord) (archive.Result, error) {
	body := map[string]any{
		"product_name": record.Name,
		"image_urls":   record.Images,
		"product_id":   record.ID,
		"season":       record.Season,
	}
	var out archive.Result
	if err := c.do(ctx, http.MethodPost, "/save-images-locally", body, &out); err != nil {
		return archive.Result{}, err
	}
	return out, nil
}

// statusError carries the HTTP status of a failed call.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.status, e.message)
	}
	return fmt.Sprintf("backend returned %d", e.status)
}

func isStatus(err error, status int) bool {
	se, ok := err.(*statusError)
	return ok && se.status == status
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return curator.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		c.logger.Debug("backend call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", payload.Error))
		return &statusError{status: resp.StatusCode, message: payload.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
