package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"catalog-search/internal/models"
)

const ns = "e_com_db.products"

func productDoc(sku, name, description string) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "sku", Value: sku},
		{Key: "productName", Value: name},
		{Key: "quantity", Value: 3},
		{Key: "description", Value: description},
		{Key: "images", Value: bson.A{"a.png"}},
		{Key: "thumbnail", Value: ""},
	}
}

func TestProductRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &models.Product{SKU: "RS1", ProductName: "Red Shoe", Description: "leather shoe"}
		require.NoError(mt, repo.Create(context.Background(), p))

		assert.False(mt, p.ID.IsZero())
		assert.False(mt, p.CreatedAt.IsZero())
		assert.NotNil(mt, p.Images)
	})

	mt.Run("duplicate sku", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.Create(context.Background(), &models.Product{SKU: "RS1"})
		assert.ErrorIs(mt, err, ErrDuplicateSKU)
	})
}

func TestProductRepository_FindBySKU(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			productDoc("RS1", "Red Shoe", "leather shoe")))

		p, err := repo.FindBySKU(context.Background(), "RS1")
		require.NoError(mt, err)
		assert.Equal(mt, "Red Shoe", p.ProductName)
		assert.Equal(mt, 3, p.Quantity)
		assert.Equal(mt, []string{"a.png"}, p.Images)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindBySKU(context.Background(), "nope")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestProductRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	// Count and find run concurrently and may take the responses in either
	// order, so both get the same batch. Each document also carries the "n"
	// field the count aggregation reads.
	pageResponse := func() bson.D {
		docs := []bson.D{
			productDoc("RS1", "Red Shoe", "leather shoe"),
			productDoc("BS2", "Blue Shoe", "canvas shoe"),
		}
		for i := range docs {
			docs[i] = append(docs[i], bson.E{Key: "n", Value: int64(7)})
		}
		return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
	}

	mt.Run("count and page", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(pageResponse(), pageResponse())

		products, total, err := repo.List(context.Background(), 2, 2)
		require.NoError(mt, err)
		assert.EqualValues(mt, 7, total)
		require.Len(mt, products, 2)
		assert.Equal(mt, "RS1", products[0].SKU)
		assert.Equal(mt, "BS2", products[1].SKU)
	})

	mt.Run("count failure", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		failure := mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		})
		mt.AddMockResponses(failure, failure)

		products, total, err := repo.List(context.Background(), 1, 10)
		assert.Error(mt, err)
		assert.Nil(mt, products)
		assert.Zero(mt, total)
	})
}

func TestProductRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns updated document", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		doc := productDoc("RS1", "Blue Shoe", "leather shoe")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		name := "Blue Shoe"
		p, err := repo.Update(context.Background(), "RS1", models.ProductChanges{
			ProductName: &name,
			Images:      []string{"b.png"},
		})
		require.NoError(mt, err)
		assert.Equal(mt, "Blue Shoe", p.ProductName)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		qty := 1
		_, err := repo.Update(context.Background(), "nope", models.ProductChanges{Quantity: &qty})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestProductRepository_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes matches", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			productDoc("RS1", "Red Shoe", "leather shoe"),
			productDoc("BS2", "Blue Shoe", "canvas shoe"),
		))

		products, err := repo.Find(context.Background(), models.TextFilter{
			Query:  "shoe",
			Fields: models.SearchableFields,
		})
		require.NoError(mt, err)
		require.Len(mt, products, 2)
		assert.Equal(mt, "RS1", products[0].SKU)
		assert.Equal(mt, "BS2", products[1].SKU)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		repo := NewProductRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		_, err := repo.Find(context.Background(), models.TextFilter{Query: "x", Fields: models.SearchableFields})
		assert.Error(mt, err)
	})
}

func TestTextQuery(t *testing.T) {
	q := textQuery(models.TextFilter{Query: "a.b+", Fields: []string{"sku", "productName"}})

	or, ok := q["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"sku": bson.M{"$regex": `a\.b\+`, "$options": "i"}}, or[0])
	assert.Equal(t, bson.M{"productName": bson.M{"$regex": `a\.b\+`, "$options": "i"}}, or[1])
}
