package models

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campos de texto sobre los que se hace la búsqueda por subcadena
const (
	FieldSKU         = "sku"
	FieldProductName = "productName"
	FieldDescription = "description"
)

// SearchableFields lista los campos consultados por la búsqueda de texto
var SearchableFields = []string{FieldProductName, FieldDescription, FieldSKU}

// Product representa un producto en el catálogo
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SKU         string             `json:"sku" bson:"sku"`
	ProductName string             `json:"productName" bson:"productName"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	Description string             `json:"description" bson:"description"`
	Price       *float64           `json:"price,omitempty" bson:"price,omitempty"`
	Images      []string           `json:"images" bson:"images"`
	Thumbnail   string             `json:"thumbnail" bson:"thumbnail"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Field devuelve el texto de un campo buscable, "" si no existe
func (p *Product) Field(name string) string {
	switch name {
	case FieldSKU:
		return p.SKU
	case FieldProductName:
		return p.ProductName
	case FieldDescription:
		return p.Description
	}
	return ""
}

// SearchText concatena nombre, descripción, sku y precio en un solo texto
func (p *Product) SearchText() string {
	parts := []string{p.ProductName, p.Description, p.SKU}
	if p.Price != nil {
		parts = append(parts, strconv.FormatFloat(*p.Price, 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// ProductInput es el cuerpo de alta de un producto (JSON o multipart)
type ProductInput struct {
	SKU         string   `json:"sku" form:"sku" binding:"required,sku"`
	ProductName string   `json:"productName" form:"productName" binding:"required"`
	Quantity    *int     `json:"quantity" form:"quantity" binding:"required,gte=0"`
	Description string   `json:"description" form:"description" binding:"required"`
	Price       *float64 `json:"price" form:"price" binding:"omitempty,gte=0"`
	Images      []string `json:"images" form:"-"`
	Thumbnail   string   `json:"thumbnail" form:"-"`
}

// ProductUpdate representa los campos actualizables de un producto
type ProductUpdate struct {
	ProductName *string  `json:"productName" form:"productName" binding:"omitempty,min=1"`
	Quantity    *int     `json:"quantity" form:"quantity" binding:"omitempty,gte=0"`
	Description *string  `json:"description" form:"description" binding:"omitempty,min=1"`
	Price       *float64 `json:"price" form:"price" binding:"omitempty,gte=0"`
	Images      []string `json:"images" form:"-"`
	Thumbnail   *string  `json:"thumbnail" form:"-"`
}

// ProductChanges es el cambio ya resuelto que se aplica en el store.
// Images se agrega al final de la lista existente; Thumbnail nil conserva el actual.
type ProductChanges struct {
	ProductName *string
	Quantity    *int
	Description *string
	Price       *float64
	Images      []string
	Thumbnail   *string
}

// IsEmpty indica si no hay nada que actualizar
func (c ProductChanges) IsEmpty() bool {
	return c.ProductName == nil && c.Quantity == nil && c.Description == nil &&
		c.Price == nil && len(c.Images) == 0 && c.Thumbnail == nil
}

// Apply aplica los cambios sobre una copia en memoria del producto
func (c ProductChanges) Apply(p *Product) {
	if c.ProductName != nil {
		p.ProductName = *c.ProductName
	}
	if c.Quantity != nil {
		p.Quantity = *c.Quantity
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.Price != nil {
		price := *c.Price
		p.Price = &price
	}
	if len(c.Images) > 0 {
		p.Images = append(p.Images, c.Images...)
	}
	if c.Thumbnail != nil {
		p.Thumbnail = *c.Thumbnail
	}
}

// TextFilter selecciona productos donde cualquiera de Fields contiene Query,
// sin distinguir mayúsculas
type TextFilter struct {
	Query  string
	Fields []string
}

// Matches evalúa el filtro sobre un producto en memoria
func (f TextFilter) Matches(p *Product) bool {
	q := strings.ToLower(f.Query)
	for _, field := range f.Fields {
		if strings.Contains(strings.ToLower(p.Field(field)), q) {
			return true
		}
	}
	return false
}
