package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"catalog-search/internal/models"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 3 * time.Second
	queryTimeout = 10 * time.Second
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// EnsureIndexes crea el índice único sobre sku
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: models.FieldSKU, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("sku_unique"),
	})
	if err != nil {
		return fmt.Errorf("create sku index: %w", err)
	}
	return nil
}

// Create crea un nuevo producto
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// FindBySKU obtiene un producto por su sku
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{models.FieldSKU: sku}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find product %s: %w", sku, err)
	}

	return &product, nil
}

// List lista productos con paginación, los más recientes primero
func (r *ProductRepository) List(ctx context.Context, page, pageSize int) ([]models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}

	// El conteo corre en paralelo con la consulta
	g, gctx := errgroup.WithContext(ctx)

	var total int64
	g.Go(func() error {
		n, err := r.collection.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		total = n
		return nil
	})

	products := make([]models.Product, 0)
	g.Go(func() error {
		findOptions := options.Find().
			SetSkip(int64(pageOffset(page, pageSize))).
			SetLimit(int64(pageSize)).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := r.collection.Find(gctx, filter, findOptions)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		defer cursor.Close(gctx)

		if err := cursor.All(gctx, &products); err != nil {
			return fmt.Errorf("decode products: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update aplica cambios parciales: las imágenes nuevas se agregan al final
// y el thumbnail solo se reemplaza si viene uno nuevo
func (r *ProductRepository) Update(ctx context.Context, sku string, changes models.ProductChanges) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if changes.ProductName != nil {
		set[models.FieldProductName] = *changes.ProductName
	}
	if changes.Quantity != nil {
		set["quantity"] = *changes.Quantity
	}
	if changes.Description != nil {
		set[models.FieldDescription] = *changes.Description
	}
	if changes.Price != nil {
		set["price"] = *changes.Price
	}
	if changes.Thumbnail != nil {
		set["thumbnail"] = *changes.Thumbnail
	}

	update := bson.M{"$set": set}
	if len(changes.Images) > 0 {
		update["$push"] = bson.M{"images": bson.M{"$each": changes.Images}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{models.FieldSKU: sku}, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update product %s: %w", sku, err)
	}

	return &product, nil
}

// Find devuelve los productos donde algún campo del filtro contiene el texto
func (r *ProductRepository) Find(ctx context.Context, filter models.TextFilter) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, textQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// Ping verifica la conexión con el servidor
func (r *ProductRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	return r.collection.Database().Client().Ping(ctx, nil)
}

// textQuery arma el $or de regex sin anclar; el texto se escapa para que
// se busque literal
func textQuery(filter models.TextFilter) bson.M {
	pattern := regexp.QuoteMeta(filter.Query)
	or := make([]bson.M, 0, len(filter.Fields))
	for _, field := range filter.Fields {
		or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
	}
	return bson.M{"$or": or}
}
