package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"catalog-search/internal/cache"
	"catalog-search/internal/models"
	"catalog-search/internal/repository"
	"catalog-search/internal/storage"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
	maxPage         = 1_000_000

	listCachePrefix = "products:list:"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ProductListResponse struct {
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int64            `json:"total"`
	TotalPages int64            `json:"total_pages"`
	Products   []models.Product `json:"products"`
}

// RegisterValidators instala las reglas del catálogo en el validador de gin
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return models.RegisterValidators(v)
}

type ProductHandler struct {
	store    repository.ProductStore
	cache    *cache.Cache
	uploader *storage.Uploader
	logger   *slog.Logger
}

func NewProductHandler(store repository.ProductStore, c *cache.Cache, uploader *storage.Uploader, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		store:    store,
		cache:    c,
		uploader: uploader,
		logger:   logger,
	}
}

// POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	product := models.Product{
		SKU:         input.SKU,
		ProductName: input.ProductName,
		Quantity:    *input.Quantity,
		Description: input.Description,
		Price:       input.Price,
		Images:      input.Images,
		Thumbnail:   input.Thumbnail,
	}

	// Archivos subidos: se agregan a los nombres recibidos en el cuerpo
	images, thumbnail, ok := h.saveUploads(c)
	if !ok {
		return
	}
	product.Images = append(product.Images, images...)
	if thumbnail != nil {
		product.Thumbnail = *thumbnail
	}

	if err := h.store.Create(c.Request.Context(), &product); err != nil {
		h.discardUploads(images, thumbnail)
		if errors.Is(err, repository.ErrDuplicateSKU) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "create product failed",
			slog.String("sku", product.SKU),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to add product"})
		return
	}

	h.cache.DeleteByPrefix(listCachePrefix)

	h.logger.InfoContext(c.Request.Context(), "product added",
		slog.String("sku", product.SKU),
		slog.Int("images", len(product.Images)),
	)
	c.JSON(http.StatusCreated, product)
}

// GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, pageSize := getPaginationParams(c)
	cacheKey := fmt.Sprintf("%sp%d_s%d", listCachePrefix, page, pageSize)

	if cached, found := h.cache.GetValue(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, err := h.store.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list products failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "could not fetch products"})
		return
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	response := ProductListResponse{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Products:   products,
	}

	h.cache.Set(cacheKey, response)
	c.JSON(http.StatusOK, response)
}

// GET /api/products/:sku
func (h *ProductHandler) GetProduct(c *gin.Context) {
	sku := c.Param("sku")
	cacheKey := productCacheKey(sku)

	if cached, found := h.cache.GetValue(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	product, err := h.store.FindBySKU(c.Request.Context(), sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get product failed",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "error fetching product"})
		return
	}

	h.cache.Set(cacheKey, product)
	c.JSON(http.StatusOK, product)
}

// PUT /api/products/:sku
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	sku := c.Param("sku")

	var update models.ProductUpdate
	if err := c.ShouldBind(&update); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	images, thumbnail, ok := h.saveUploads(c)
	if !ok {
		return
	}

	changes := models.ProductChanges{
		ProductName: update.ProductName,
		Quantity:    update.Quantity,
		Description: update.Description,
		Price:       update.Price,
		Images:      append(update.Images, images...),
		Thumbnail:   update.Thumbnail,
	}
	if thumbnail != nil {
		changes.Thumbnail = thumbnail
	}

	if changes.IsEmpty() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no valid fields to update"})
		return
	}

	product, err := h.store.Update(c.Request.Context(), sku, changes)
	if err != nil {
		h.discardUploads(images, thumbnail)
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "update product failed",
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update product"})
		return
	}

	// Invalidar caché relacionado
	h.cache.Delete(productCacheKey(sku))
	h.cache.DeleteByPrefix(listCachePrefix)

	h.logger.InfoContext(c.Request.Context(), "product updated",
		slog.String("sku", sku),
		slog.Int("new_images", len(changes.Images)),
		slog.Bool("thumbnail_replaced", changes.Thumbnail != nil),
	)
	c.JSON(http.StatusOK, product)
}

// --- Métodos auxiliares ---

// saveUploads guarda los archivos "images" y "thumbnail" de un request
// multipart. Con otro content type no hace nada. Si falla ya respondió al cliente.
func (h *ProductHandler) saveUploads(c *gin.Context) ([]string, *string, bool) {
	if !strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		return nil, nil, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return nil, nil, false
	}

	images, err := h.uploader.SaveAll(form.File["images"])
	if err != nil {
		h.respondUploadError(c, err)
		return nil, nil, false
	}

	var thumbnail *string
	if files := form.File["thumbnail"]; len(files) > 0 {
		name, err := h.uploader.Save(files[0])
		if err != nil {
			h.uploader.Remove(images...)
			h.respondUploadError(c, err)
			return nil, nil, false
		}
		thumbnail = &name
	}

	return images, thumbnail, true
}

func (h *ProductHandler) discardUploads(images []string, thumbnail *string) {
	h.uploader.Remove(images...)
	if thumbnail != nil {
		h.uploader.Remove(*thumbnail)
	}
}

func (h *ProductHandler) respondUploadError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrUnsupportedType) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	h.logger.ErrorContext(c.Request.Context(), "upload failed", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to store upload"})
}

// getPaginationParams obtiene y valida los parámetros de paginación
func getPaginationParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	return page, pageSize
}

func productCacheKey(sku string) string {
	return "product:" + sku
}
