package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/api/v1/shops/:id", normalizePath("/api/v1/shops/42"))
	assert.Equal(t, "/api/v1/shops/search", normalizePath("/api/v1/shops/search?name=x"))
	assert.Equal(t, "/", normalizePath(""))
	assert.Equal(t, "/health", normalizePath("/health/"))
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	handler, err := RegisterMetrics(Config{Registry: reg, Gatherer: reg})
	require.NoError(t, err)

	wrapped := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/shops/7", nil))

	RecordValidationFailure("overlap")
	RecordSearchCache("hit")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/api/v1/shops/:id",status="418"} 1`), body)
	assert.Contains(t, body, `shop_validation_failures_total{reason="overlap"} 1`)
	assert.Contains(t, body, `search_cache_requests_total{result="hit"} 1`)
}
