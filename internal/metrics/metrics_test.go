package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
	require.NotNil(t, extractionsTotal)
	require.NotNil(t, httpRequestsTotal)
}

func TestObserversToleratePartialInit(t *testing.T) {
	// Observers must be safe to call whether or not Init ran first.
	ObserveExtraction("images", "etsy", OutcomeOK)
	ObserveProxyRequest(OutcomeDegraded, 100*time.Millisecond)
	IncHeadlessPromotion()
	IncPersistenceFailure("update_product")
	ObserveHTTPRequest(http.MethodGet, "/v1/products", http.StatusOK, time.Millisecond)
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	Init()

	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/v1/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/products/42", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}
