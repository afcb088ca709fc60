// Package search resuelve la búsqueda por subcadena y las sugerencias de
// palabras sobre el catálogo.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"catalog-search/internal/models"
	"catalog-search/internal/repository"
)

// ErrEmptyQuery lo devuelve Products cuando el motor rechaza consultas vacías
var ErrEmptyQuery = errors.New("query parameter is required")

// Engine responde las búsquedas. No guarda estado por request y se puede
// usar desde varias goroutines
type Engine struct {
	store       repository.ProductStore
	fields      []string
	rejectEmpty bool
	logger      *slog.Logger
}

// Option configura un Engine
type Option func(*Engine)

// WithRejectEmpty hace que Products falle con ErrEmptyQuery en vez de
// devolver una lista vacía cuando la consulta está vacía
func WithRejectEmpty(reject bool) Option {
	return func(e *Engine) { e.rejectEmpty = reject }
}

// WithFields reemplaza los campos donde se busca la subcadena
func WithFields(fields ...string) Option {
	return func(e *Engine) {
		if len(fields) > 0 {
			e.fields = fields
		}
	}
}

// New crea un motor de búsqueda sobre store
func New(store repository.ProductStore, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		fields: models.SearchableFields,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Products devuelve los productos donde algún campo buscable contiene query,
// sin distinguir mayúsculas
func (e *Engine) Products(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		if e.rejectEmpty {
			return nil, ErrEmptyQuery
		}
		return []models.Product{}, nil
	}

	products, err := e.find(ctx, query)
	if err != nil {
		return nil, err
	}

	e.logger.DebugContext(ctx, "product search executed",
		slog.String("query", query),
		slog.Int("matches", len(products)),
	)
	return products, nil
}

// Suggestions devuelve las palabras distintas, en minúsculas, que empiezan
// con query dentro de los productos encontrados. Con query vacía devuelve
// una lista vacía sin consultar el store
func (e *Engine) Suggestions(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}

	products, err := e.find(ctx, query)
	if err != nil {
		return nil, err
	}

	words := ExtractSuggestions(products, query)

	e.logger.DebugContext(ctx, "suggestions computed",
		slog.String("query", query),
		slog.Int("matches", len(products)),
		slog.Int("suggestions", len(words)),
	)
	return words, nil
}

func (e *Engine) find(ctx context.Context, query string) ([]models.Product, error) {
	products, err := e.store.Find(ctx, models.TextFilter{Query: query, Fields: e.fields})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return products, nil
}

// ExtractSuggestions separa el texto de cada producto por espacios y se
// queda con los tokens únicos en minúsculas que empiezan con query.
// El resultado va ordenado
func ExtractSuggestions(products []models.Product, query string) []string {
	prefix := strings.ToLower(strings.TrimSpace(query))
	if prefix == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	for i := range products {
		for _, token := range strings.Fields(products[i].SearchText()) {
			seen[strings.ToLower(token)] = struct{}{}
		}
	}

	words := make([]string, 0)
	for w := range seen {
		if strings.HasPrefix(w, prefix) {
			words = append(words, w)
		}
	}
	sort.Strings(words)
	return words
}
