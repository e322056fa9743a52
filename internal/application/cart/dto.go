package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds units of a product to the session's cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

// UpdateQuantityRequest overwrites a line's quantity. Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=99"`
}

// ItemResponse is one cart line priced at the product's current price
type ItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Available bool            `json:"available"`
	AddedAt   time.Time       `json:"added_at"`
}

// Response is the cart view returned to the storefront
type Response struct {
	SessionID string          `json:"session_id"`
	Items     []ItemResponse  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}
