package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"catalog-search/internal/handlers"
	"catalog-search/internal/metrics"
	"catalog-search/internal/middleware"
)

// Deps reúne todo lo que el router necesita; se arma una vez al iniciar
type Deps struct {
	Products  *handlers.ProductHandler
	Search    *handlers.SearchHandler
	Health    *handlers.HealthHandler
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	UploadDir string
	// MaxMultipartMemory limita la parte del form que se guarda en memoria
	MaxMultipartMemory int64
}

// NewRouter crea el engine de gin con middleware y rutas
func NewRouter(d Deps) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	if d.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = d.MaxMultipartMemory
	}
	router.Use(
		middleware.Recovery(d.Logger),
		middleware.RequestLogging(d.Logger),
		d.Metrics.Middleware(),
	)

	RegisterRoutes(router, d)
	return router, nil
}

func RegisterRoutes(router *gin.Engine, d Deps) {
	router.GET("/health", d.Health.Health)
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	if d.UploadDir != "" {
		router.Static("/uploads", d.UploadDir)
	}

	api := router.Group("/api")
	{
		api.POST("/products", d.Products.CreateProduct)
		api.GET("/products", d.Products.ListProducts)
		api.GET("/products/:sku", d.Products.GetProduct)
		api.PUT("/products/:sku", d.Products.UpdateProduct)
		api.GET("/search", d.Search.Search)
	}
}
