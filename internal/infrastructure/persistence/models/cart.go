package models

import (
	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/cart"
)

// CartItemModel is one cart line; (session_id, product_id) is unique
type CartItemModel struct {
	BaseModel
	SessionID string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_cart_items_session_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_session_product,priority:2"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the model to a cart item
func (m *CartItemModel) ToDomain() cart.Item {
	return cart.Item{
		BaseEntity: m.BaseModel.ToDomain(),
		SessionID:  m.SessionID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
	}
}

// CartItemModelFromDomain creates a persistence model from a cart item
func CartItemModelFromDomain(it *cart.Item) *CartItemModel {
	m := &CartItemModel{
		SessionID: it.SessionID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
	}
	m.FromDomainBaseEntity(it.BaseEntity)
	return m
}
