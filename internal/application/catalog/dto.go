package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/troves/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Slug        string          `json:"slug" binding:"omitempty,max=120,slug"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" binding:"omitempty,oneof=necklaces bracelets earrings rings pendants other"`
	CrystalType string          `json:"crystal_type" binding:"max=60"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url,max=500"`
	Stock       int             `json:"stock" binding:"min=0"`
	Featured    bool            `json:"featured"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" binding:"omitempty,oneof=necklaces bracelets earrings rings pendants other"`
	CrystalType *string          `json:"crystal_type" binding:"omitempty,max=60"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=500"`
	Featured    *bool            `json:"featured"`
}

// AdjustStockRequest applies a signed stock movement
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

// ImageUploadResponse carries the presigned PUT URL and the object key to
// store as the product image once the upload completes
type ImageUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ProductListFilter holds list query parameters
type ProductListFilter struct {
	Search      string `form:"search" binding:"max=100"`
	Category    string `form:"category" binding:"omitempty,oneof=necklaces bracelets earrings rings pendants other"`
	CrystalType string `form:"crystal_type" binding:"max=60"`
	Featured    *bool  `form:"featured"`
	Status      string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Page        int    `form:"page" binding:"min=0"`
	PageSize    int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	CrystalType string          `json:"crystal_type"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"in_stock"`
	Featured    bool            `json:"featured"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Category:    string(p.Category),
		CrystalType: p.CrystalType,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		InStock:     p.IsPurchasable(1),
		Featured:    p.Featured,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
