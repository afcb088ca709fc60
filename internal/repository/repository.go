package repository

import (
	"context"
	"errors"
	"math"

	"catalog-search/internal/models"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateSKU = errors.New("product with this sku already exists")
)

// ProductStore es el almacén de documentos del catálogo
//
//go:generate mockgen -destination=mock/store.go -package=mock catalog-search/internal/repository ProductStore
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, page, pageSize int) ([]models.Product, int64, error)
	Update(ctx context.Context, sku string, changes models.ProductChanges) (*models.Product, error)
	Find(ctx context.Context, filter models.TextFilter) ([]models.Product, error)
	Ping(ctx context.Context) error
}

// pageOffset calcula cuántos documentos saltar para una página.
// Nunca es negativo, aunque page*pageSize desborde int.
func pageOffset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}
