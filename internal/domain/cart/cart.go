package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/shared"
)

// MaxItemQuantity caps the quantity of a single cart line
const MaxItemQuantity = 99

const maxSessionIDLength = 128

// Item is one product line in a session's cart
type Item struct {
	shared.BaseEntity
	SessionID string
	ProductID uuid.UUID
	Quantity  int
}

// Cart is the set of items that share a session id. It has no row of
// its own; it exists as long as it has items.
type Cart struct {
	SessionID string
	Items     []Item
}

// New returns an empty cart for sessionID
func New(sessionID string) (*Cart, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	return &Cart{SessionID: sessionID}, nil
}

// Load wraps persisted items into a cart
func Load(sessionID string, items []Item) *Cart {
	return &Cart{SessionID: sessionID, Items: items}
}

// ValidateSessionID rejects ids the HTTP edge should never have produced
func ValidateSessionID(sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return shared.NewDomainError("INVALID_SESSION", "Session ID is required")
	}
	if len(sessionID) > maxSessionIDLength {
		return shared.NewDomainError("INVALID_SESSION", "Session ID is too long")
	}
	return nil
}

// Find returns the line for productID, or nil
func (c *Cart) Find(productID uuid.UUID) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Add puts qty units of productID in the cart, merging with an existing
// line. It returns the resulting line.
func (c *Cart) Add(productID uuid.UUID, qty int) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if existing := c.Find(productID); existing != nil {
		if err := validateQuantity(existing.Quantity + qty); err != nil {
			return nil, err
		}
		existing.Quantity += qty
		existing.UpdatedAt = time.Now()
		return existing, nil
	}
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	c.Items = append(c.Items, Item{
		BaseEntity: shared.NewBaseEntity(),
		SessionID:  c.SessionID,
		ProductID:  productID,
		Quantity:   qty,
	})
	return &c.Items[len(c.Items)-1], nil
}

// SetQuantity overwrites a line's quantity. Zero removes the line, in
// which case the returned item is nil.
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) (*Item, error) {
	if qty < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	item := c.Find(productID)
	if item == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Product is not in the cart")
	}
	if qty == 0 {
		c.Remove(productID)
		return nil, nil
	}
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	item.Quantity = qty
	item.UpdatedAt = time.Now()
	return item, nil
}

// Remove drops the line for productID and reports whether it was present
func (c *Cart) Remove(productID uuid.UUID) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount is the total number of units across all lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// ProductIDs lists the products in the cart in line order
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	return ids
}

func validateQuantity(qty int) error {
	if qty > MaxItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot exceed 99 per item")
	}
	return nil
}
