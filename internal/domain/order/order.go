package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/troves/backend/internal/domain/shared"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	}
	return false
}

// Customer is who placed the order
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Address is a shipping address
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Item is a priced snapshot of a product at checkout time
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Amount      decimal.Decimal
}

// NewItem builds a line and computes its amount
func NewItem(orderID, productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) (Item, error) {
	if productID == uuid.Nil {
		return Item{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if strings.TrimSpace(productName) == "" {
		return Item{}, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return Item{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return Item{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return Item{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		Amount:      unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Order is the order aggregate root
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	SessionID       string
	Customer        Customer
	ShippingAddress Address
	Items           []Item
	TotalAmount     decimal.Decimal
	Notes           string
	Status          Status
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    string
}

// Line is the input for one order item
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// NewOrder creates a pending order from priced lines
func NewOrder(sessionID string, customer Customer, address Address, lines []Line, notes string) (*Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID is required")
	}
	customer = normalizeCustomer(customer)
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot place an order without items")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SessionID:         sessionID,
		Customer:          customer,
		ShippingAddress:   address,
		Notes:             strings.TrimSpace(notes),
		Status:            StatusPending,
	}
	o.OrderNumber = GenerateOrderNumber(o.CreatedAt)

	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.ProductID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Product appears more than once in the order")
		}
		seen[l.ProductID] = struct{}{}
		item, err := NewItem(o.ID, l.ProductID, l.ProductName, l.UnitPrice, l.Quantity)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	o.recalculateTotal()

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// Confirm acknowledges the order
func (o *Order) Confirm() error {
	if err := o.transition(StatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	return nil
}

// Ship marks the order as handed to the carrier
func (o *Order) Ship() error {
	if err := o.transition(StatusShipped); err != nil {
		return err
	}
	now := time.Now()
	o.ShippedAt = &now
	return nil
}

// Deliver completes the order
func (o *Order) Deliver() error {
	if err := o.transition(StatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	return nil
}

// Cancel cancels a pending or confirmed order. Stock restoration is the
// caller's job.
func (o *Order) Cancel(reason string) error {
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancelReason = strings.TrimSpace(reason)
	return nil
}

// ItemCount is the total number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// BelongsTo reports whether the order was placed from sessionID
func (o *Order) BelongsTo(sessionID string) bool {
	return sessionID != "" && o.SessionID == sessionID
}

func (o *Order) transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change order from %s to %s", o.Status, target))
	}
	old := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Amount)
	}
	o.TotalAmount = total
}

// GenerateOrderNumber returns TC-YYYYMMDD-XXXXXX with a random hex suffix
func GenerateOrderNumber(at time.Time) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("TC-%s-%s", at.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(b[:])))
}

func normalizeCustomer(c Customer) Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}

func validateCustomer(c Customer) error {
	if c.Name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name is required")
	}
	if len(c.Name) > 200 {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot exceed 200 characters")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return shared.NewDomainError("INVALID_EMAIL", "Customer email is not a valid address")
	}
	return nil
}

func validateAddress(a Address) error {
	if strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.PostalCode) == "" || strings.TrimSpace(a.Country) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Shipping address requires line1, city, postal code and country")
	}
	return nil
}
