package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curatorhq/curator/internal/archive"
	"github.com/curatorhq/curator/internal/config"
	"github.com/curatorhq/curator/internal/curator"
	"github.com/curatorhq/curator/internal/extract"
	"github.com/curatorhq/curator/internal/id"
	"github.com/curatorhq/curator/internal/normalize"
	"github.com/curatorhq/curator/internal/storage/memory"
	"github.com/curatorhq/curator/internal/workflow"
)

type pageFetcherStub struct {
	body []byte
}

func (s pageFetcherStub) FetchPage(context.Context, string) ([]byte, error) {
	return s.body, nil
}

type nullBlobStore struct{}

func (nullBlobStore) PutObject(_ context.Context, path, _ string, _ []byte) (string, error) {
	return "file:///" + path, nil
}

func newTestServer(t *testing.T, page []byte) *Server {
	t.Helper()

	flow := workflow.New(memory.NewProductStore(id.NewGenerator()), memory.NewSeasonStore(), nil)
	require.NoError(t, flow.Init(context.Background()))

	builder := normalize.NewBuilder(
		extract.NewExtractor(pageFetcherStub{body: page}, extract.Options{}), nil, 0)
	archiver := archive.NewArchiver(nullBlobStore{}, id.NewGenerator(), nil, nil)

	cfg, err := config.Load("")
	require.NoError(t, err)
	return NewServer(flow, builder, archiver, cfg, nil)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const productPage = `<html><body>
	<img class="product-image" src="https://cdn.example.com/mug.jpg">
	<span class="price">25.00</span>
</body></html>`

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, []byte(productPage))
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/healthz", nil).Code)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/readyz", nil).Code)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/metrics", nil).Code)
}

func TestPreviewProduct(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, []byte(productPage))
	rec := doJSON(t, srv, http.MethodPost, "/v1/products/preview",
		map[string]string{"url": "https://shop.example.com/products/blue-mug"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[previewResponse](t, rec)
	require.Equal(t, "blue mug", resp.Draft.Name)
	require.Equal(t, 25.0, resp.Draft.Price)
	require.False(t, resp.Degraded.Price)
	require.NotEmpty(t, resp.Draft.Description)
}

func TestPreviewProductRequiresURL(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, []byte(productPage))
	rec := doJSON(t, srv, http.MethodPost, "/v1/products/preview", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg bytes"))
	}))
	defer imageSrv.Close()

	page := `<html><body>
		<img class="product-image" src="` + imageSrv.URL + `/mug.jpg">
		<span class="price">25.00</span>
	</body></html>`
	srv := newTestServer(t, []byte(page))

	// create
	rec := doJSON(t, srv, http.MethodPost, "/v1/products/",
		map[string]string{"url": "https://shop.example.com/products/blue-mug"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[createProductResponse](t, rec)
	require.NotEmpty(t, created.Record.ID)
	require.Equal(t, curator.StatusPending, created.Record.Status)
	productID := created.Record.ID

	// list pending
	rec = doJSON(t, srv, http.MethodGet, "/v1/products/?filter=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[struct {
		Products []curator.ProductRecord `json:"products"`
	}](t, rec)
	require.Len(t, listed.Products, 1)

	// approve
	rec = doJSON(t, srv, http.MethodPut, "/v1/products/"+productID+"/status",
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/v1/products/?filter=approved", nil)
	listed = decode[struct {
		Products []curator.ProductRecord `json:"products"`
	}](t, rec)
	require.Len(t, listed.Products, 1)

	// bad status rejected
	rec = doJSON(t, srv, http.MethodPut, "/v1/products/"+productID+"/status",
		map[string]string{"status": "bogus"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// archive images
	rec = doJSON(t, srv, http.MethodPost, "/v1/products/"+productID+"/archive-images", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	archived := decode[archive.Result](t, rec)
	require.Equal(t, 1, archived.SavedCount)
	require.Equal(t, 1, archived.TotalCount)

	// delete
	rec = doJSON(t, srv, http.MethodDelete, "/v1/products/"+productID+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/v1/products/"+productID+"/", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

type backendArchiverStub struct {
	got    curator.ProductRecord
	result archive.Result
}

func (s *backendArchiverStub) ArchiveImages(_ context.Context, record curator.ProductRecord) (archive.Result, error) {
	s.got = record
	return s.result, nil
}

func TestArchiveImagesUsesConfiguredArchiver(t *testing.T) {
	t.Parallel()

	flow := workflow.New(memory.NewProductStore(id.NewGenerator()), memory.NewSeasonStore(), nil)
	require.NoError(t, flow.Init(context.Background()))
	builder := normalize.NewBuilder(
		extract.NewExtractor(pageFetcherStub{body: []byte(productPage)}, extract.Options{}), nil, 0)
	stub := &backendArchiverStub{result: archive.Result{FolderPath: "saved_images/blue_mug", SavedCount: 2, TotalCount: 3}}

	cfg, err := config.Load("")
	require.NoError(t, err)
	srv := NewServer(flow, builder, stub, cfg, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/products/",
		map[string]string{"url": "https://shop.example.com/products/blue-mug"})
	created := decode[createProductResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/v1/products/"+created.Record.ID+"/archive-images", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	archived := decode[archive.Result](t, rec)
	require.Equal(t, stub.result, archived)
	require.Equal(t, created.Record.ID, stub.got.ID)
}

func TestUnknownFilterRejected(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, []byte(productPage))
	rec := doJSON(t, srv, http.MethodGet, "/v1/products/?filter=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeasonEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, []byte(productPage))

	rec := doJSON(t, srv, http.MethodPost, "/v1/seasons/", map[string]string{"name": "Eid"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/v1/seasons/", map[string]string{"name": "Eid"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// create a product and assign it
	rec = doJSON(t, srv, http.MethodPost, "/v1/products/",
		map[string]string{"url": "https://shop.example.com/products/blue-mug"})
	created := decode[createProductResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPut, "/v1/products/"+created.Record.ID+"/season",
		map[string]string{"season": "Eid"})
	require.Equal(t, http.StatusOK, rec.Code)

	// assigning a season nobody created yet brings it into existence
	rec = doJSON(t, srv, http.MethodPut, "/v1/products/"+created.Record.ID+"/season",
		map[string]string{"season": "Winter"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/v1/seasons/", nil)
	seasons := decode[struct {
		Seasons []curator.Season `json:"seasons"`
	}](t, rec)
	require.Len(t, seasons.Seasons, 2)
	require.Equal(t, "Eid", seasons.Seasons[0].Name)
	require.Empty(t, seasons.Seasons[0].Members)
	require.Equal(t, "Winter", seasons.Seasons[1].Name)
	require.Len(t, seasons.Seasons[1].Members, 1)

	rec = doJSON(t, srv, http.MethodPut, "/v1/seasons/Eid", map[string]string{"new_name": "Ramadan"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/v1/seasons/Ramadan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodDelete, "/v1/seasons/Ramadan", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Parallel()

	flow := workflow.New(memory.NewProductStore(id.NewGenerator()), memory.NewSeasonStore(), nil)
	require.NoError(t, flow.Init(context.Background()))
	builder := normalize.NewBuilder(
		extract.NewExtractor(pageFetcherStub{}, extract.Options{}), nil, 0)
	archiver := archive.NewArchiver(nullBlobStore{}, id.NewGenerator(), nil, nil)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.Enabled = true
	cfg.Auth.APIKey = "secret"
	srv := NewServer(flow, builder, archiver, cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/products/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/products/", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, []byte(productPage))
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
