package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("catalog")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/products/:sku", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/RS1", nil))
	}

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/api/products/:sku", "404"))
	assert.Equal(t, 2.0, got)
}

func TestSearchMetrics(t *testing.T) {
	m := New("catalog")

	m.SearchFailed("suggestions")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchErrors.WithLabelValues("suggestions")))

	m.ObserveSearch("products", 3)
	assert.Equal(t, 1, testutil.CollectAndCount(m.searchResults))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New("catalog")
	m.ObserveSearch("suggestions", 2)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `search_results_count{mode="suggestions",service="catalog"} 1`)
}
