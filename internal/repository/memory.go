package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalog-search/internal/models"
)

// MemoryStore es un ProductStore en memoria para desarrollo local y tests
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]models.Product),
	}
}

func (s *MemoryStore) Create(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.SKU]; exists {
		return ErrDuplicateSKU
	}

	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}

	s.products[product.SKU] = clone(*product)
	return nil
}

func (s *MemoryStore) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[sku]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(p)
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, page, pageSize int) ([]models.Product, int64, error) {
	s.mu.RLock()
	all := s.sorted()
	s.mu.RUnlock()

	total := len(all)
	offset := pageOffset(page, pageSize)
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}

	return all[offset:end], int64(total), nil
}

func (s *MemoryStore) Update(_ context.Context, sku string, changes models.ProductChanges) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[sku]
	if !ok {
		return nil, ErrNotFound
	}

	p = clone(p)
	changes.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	s.products[sku] = p

	out := clone(p)
	return &out, nil
}

func (s *MemoryStore) Find(_ context.Context, filter models.TextFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Product, 0)
	for _, p := range s.sorted() {
		if filter.Matches(&p) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// sorted devuelve copias ordenadas por fecha de creación descendente.
// Requiere s.mu tomado.
func (s *MemoryStore) sorted() []models.Product {
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SKU < out[j].SKU
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func clone(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	if p.Price != nil {
		price := *p.Price
		p.Price = &price
	}
	return p
}
