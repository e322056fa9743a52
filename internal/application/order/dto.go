package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/troves/backend/internal/domain/order"
)

// CustomerInput identifies the buyer
type CustomerInput struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"required,email,max=254"`
	Phone string `json:"phone" binding:"max=40"`
}

// AddressInput is a shipping address
type AddressInput struct {
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=60"`
}

// PlaceOrderRequest turns the session's cart into an order
type PlaceOrderRequest struct {
	Customer        CustomerInput `json:"customer" binding:"required"`
	ShippingAddress AddressInput  `json:"shipping_address" binding:"required"`
	Notes           string        `json:"notes" binding:"max=1000"`
}

// CancelOrderRequest carries an optional reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListFilter holds admin list query parameters
type ListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	Email    string `form:"email" binding:"omitempty,email"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse is one order line
type ItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// Response represents an order in API responses
type Response struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Status          string          `json:"status"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	ShippingAddress AddressInput    `json:"shipping_address"`
	Items           []ItemResponse  `json:"items"`
	ItemCount       int             `json:"item_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Notes           string          `json:"notes,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToResponse converts a domain order to a response
func ToResponse(o *order.Order) Response {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Amount:      it.Amount,
		}
	}
	a := o.ShippingAddress
	return Response{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		CustomerPhone: o.Customer.Phone,
		ShippingAddress: AddressInput{
			Line1: a.Line1, Line2: a.Line2, City: a.City,
			State: a.State, PostalCode: a.PostalCode, Country: a.Country,
		},
		Items:        items,
		ItemCount:    o.ItemCount(),
		TotalAmount:  o.TotalAmount,
		Notes:        o.Notes,
		CancelReason: o.CancelReason,
		ConfirmedAt:  o.ConfirmedAt,
		ShippedAt:    o.ShippedAt,
		DeliveredAt:  o.DeliveredAt,
		CancelledAt:  o.CancelledAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// ToResponses converts a slice of orders
func ToResponses(orders []order.Order) []Response {
	out := make([]Response, len(orders))
	for i := range orders {
		out[i] = ToResponse(&orders[i])
	}
	return out
}
