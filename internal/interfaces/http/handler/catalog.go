package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/troves/backend/internal/application/catalog"
	"github.com/troves/backend/internal/domain/catalog"
	"github.com/troves/backend/internal/domain/shared"
	"github.com/troves/backend/internal/interfaces/http/middleware"
)

// CatalogHandler serves the product catalog. Reads are public and only
// show active products unless the caller is the admin.
type CatalogHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewCatalogHandler creates a CatalogHandler
func NewCatalogHandler(products *catalogapp.ProductService) *CatalogHandler {
	return &CatalogHandler{products: products}
}

// List returns a page of products
func (h *CatalogHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	if !middleware.IsAdmin(c) {
		filter.Status = string(catalog.ProductStatusActive)
	}

	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Featured returns featured products for the landing page. ?limit caps the count.
func (h *CatalogHandler) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.products.Featured(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetByID returns one product
func (h *CatalogHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	h.respondProduct(c, product, err)
}

// GetBySlug returns one product by its URL slug
func (h *CatalogHandler) GetBySlug(c *gin.Context) {
	product, err := h.products.GetBySlug(c.Request.Context(), c.Param("slug"))
	h.respondProduct(c, product, err)
}

func (h *CatalogHandler) respondProduct(c *gin.Context, product *catalogapp.ProductResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if product.Status != string(catalog.ProductStatusActive) && !middleware.IsAdmin(c) {
		h.HandleError(c, shared.ErrNotFound)
		return
	}
	h.Success(c, product)
}

// Create adds a product
func (h *CatalogHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update applies a partial update
func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AdjustStock applies a signed stock movement
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	product, err := h.products.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Activate puts a product back on sale
func (h *CatalogHandler) Activate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Deactivate hides a product from the storefront
func (h *CatalogHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// RequestImageUpload returns a presigned URL for uploading a product photo
func (h *CatalogHandler) RequestImageUpload(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	upload, err := h.products.RequestImageUpload(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}
