package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-search/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter("catalog", "info", &buf)

	var seen string
	r := gin.New()
	r.Use(RequestLogging(l))
	r.GET("/ping", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		l.InfoContext(c.Request.Context(), "handler log")
		c.String(http.StatusOK, "pong")
	})

	t.Run("propagates incoming id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-1", seen)

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)

		var handlerEntry, requestEntry map[string]any
		require.NoError(t, json.Unmarshal(lines[0], &handlerEntry))
		require.NoError(t, json.Unmarshal(lines[1], &requestEntry))

		assert.Equal(t, "handler log", handlerEntry["msg"])
		assert.Equal(t, "req-1", handlerEntry["request_id"])

		assert.Equal(t, "req-1", requestEntry["request_id"])
		assert.Equal(t, "/ping", requestEntry["path"])
		assert.EqualValues(t, 200, requestEntry["status"])
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		assert.Equal(t, w.Header().Get(RequestIDHeader), seen)
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
