package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-search/internal/repository"
)

type HealthHandler struct {
	store  repository.ProductStore
	logger *slog.Logger
}

func NewHealthHandler(store repository.ProductStore, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
