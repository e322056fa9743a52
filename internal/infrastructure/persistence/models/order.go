package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/troves/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	OrderNumber   string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	SessionID     string          `gorm:"type:varchar(128);not null;index"`
	CustomerName  string          `gorm:"type:varchar(200);not null"`
	CustomerEmail string          `gorm:"type:varchar(254);not null;index"`
	CustomerPhone string          `gorm:"type:varchar(40)"`
	ShipLine1     string          `gorm:"column:ship_line1;type:varchar(200);not null"`
	ShipLine2     string          `gorm:"column:ship_line2;type:varchar(200)"`
	ShipCity      string          `gorm:"type:varchar(100);not null"`
	ShipState     string          `gorm:"type:varchar(100)"`
	ShipPostal    string          `gorm:"column:ship_postal_code;type:varchar(20);not null"`
	ShipCountry   string          `gorm:"type:varchar(2);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes         string          `gorm:"type:text"`
	Status        order.Status    `gorm:"type:varchar(20);not null;index"`
	ConfirmedAt   *time.Time
	ShippedAt     *time.Time
	DeliveredAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  string           `gorm:"type:varchar(500)"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is an immutable order line
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		SessionID:         m.SessionID,
		Customer: order.Customer{
			Name:  m.CustomerName,
			Email: m.CustomerEmail,
			Phone: m.CustomerPhone,
		},
		ShippingAddress: order.Address{
			Line1:      m.ShipLine1,
			Line2:      m.ShipLine2,
			City:       m.ShipCity,
			State:      m.ShipState,
			PostalCode: m.ShipPostal,
			Country:    m.ShipCountry,
		},
		TotalAmount:  m.TotalAmount,
		Notes:        m.Notes,
		Status:       m.Status,
		ConfirmedAt:  m.ConfirmedAt,
		ShippedAt:    m.ShippedAt,
		DeliveredAt:  m.DeliveredAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
	o.Items = make([]order.Item, len(m.Items))
	for i, it := range m.Items {
		o.Items[i] = order.Item{
			ID:          it.ID,
			OrderID:     it.OrderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Amount:      it.Amount,
		}
	}
	return o
}

// OrderModelFromDomain creates a persistence model, items included
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:   o.OrderNumber,
		SessionID:     o.SessionID,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		CustomerPhone: o.Customer.Phone,
		ShipLine1:     o.ShippingAddress.Line1,
		ShipLine2:     o.ShippingAddress.Line2,
		ShipCity:      o.ShippingAddress.City,
		ShipState:     o.ShippingAddress.State,
		ShipPostal:    o.ShippingAddress.PostalCode,
		ShipCountry:   o.ShippingAddress.Country,
		TotalAmount:   o.TotalAmount,
		Notes:         o.Notes,
		Status:        o.Status,
		ConfirmedAt:   o.ConfirmedAt,
		ShippedAt:     o.ShippedAt,
		DeliveredAt:   o.DeliveredAt,
		CancelledAt:   o.CancelledAt,
		CancelReason:  o.CancelReason,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:          it.ID,
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Amount:      it.Amount,
			CreatedAt:   o.CreatedAt,
		}
	}
	return m
}
