package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-search/internal/config"
	"catalog-search/internal/metrics"
	"catalog-search/internal/search"
)

type SearchHandler struct {
	engine  *search.Engine
	mode    string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSearchHandler crea el handler de búsqueda. mode define la forma de la
// respuesta: config.SearchModeSuggestions o config.SearchModeProducts.
func NewSearchHandler(engine *search.Engine, mode string, m *metrics.Metrics, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		engine:  engine,
		mode:    mode,
		metrics: m,
		logger:  logger,
	}
}

// GET /api/search?query=
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("query")

	if h.mode == config.SearchModeProducts {
		h.searchProducts(c, query)
		return
	}
	h.searchSuggestions(c, query)
}

func (h *SearchHandler) searchProducts(c *gin.Context, query string) {
	products, err := h.engine.Products(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.fail(c, err)
		return
	}

	h.metrics.ObserveSearch(h.mode, len(products))
	c.JSON(http.StatusOK, products)
}

func (h *SearchHandler) searchSuggestions(c *gin.Context, query string) {
	words, err := h.engine.Suggestions(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.metrics.ObserveSearch(h.mode, len(words))
	c.JSON(http.StatusOK, words)
}

func (h *SearchHandler) fail(c *gin.Context, err error) {
	h.metrics.SearchFailed(h.mode)
	h.logger.ErrorContext(c.Request.Context(), "search failed",
		slog.String("mode", h.mode),
		slog.String("error", err.Error()),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "search failed"})
}
