// Package cart implements the session cart use cases.
package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/troves/backend/internal/domain/cart"
	"github.com/troves/backend/internal/domain/catalog"
	"github.com/troves/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles cart operations for anonymous sessions
type Service struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewService creates a new cart Service
func NewService(cartRepo cart.Repository, productRepo catalog.ProductRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cartRepo: cartRepo, productRepo: productRepo, logger: logger}
}

// Get returns the cart joined with current product data. Lines whose
// product no longer exists are left out.
func (s *Service) Get(ctx context.Context, sessionID string) (*Response, error) {
	if err := cart.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	c, err := s.cartRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// AddItem merges qty units into the cart after checking stock for the merged quantity
func (s *Service) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*Response, error) {
	if err := cart.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	c, err := s.cartRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, err := c.Add(product.ID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if err := checkPurchasable(product, item.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// UpdateQuantity sets a line's quantity; zero removes it
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, req UpdateQuantityRequest) (*Response, error) {
	if err := cart.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	c, err := s.cartRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if req.Quantity > 0 {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := checkPurchasable(product, req.Quantity); err != nil {
			return nil, err
		}
	}

	item, err := c.SetQuantity(productID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if item == nil {
		err = s.cartRepo.DeleteItem(ctx, sessionID, productID)
	} else {
		err = s.cartRepo.SaveItem(ctx, item)
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// RemoveItem drops a line. Removing a product that is not in the cart is a no-op.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*Response, error) {
	if err := cart.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.DeleteItem(ctx, sessionID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := cart.ValidateSessionID(sessionID); err != nil {
		return err
	}
	return s.cartRepo.DeleteBySession(ctx, sessionID)
}

// SweepStale deletes lines not touched for olderThan and returns how many went
func (s *Service) SweepStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Cart TTL must be positive")
	}
	n, err := s.cartRepo.DeleteUpdatedBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("stale cart items swept", zap.Int64("deleted", n), zap.Duration("ttl", olderThan))
	}
	return n, nil
}

func checkPurchasable(p *catalog.Product, qty int) error {
	if !p.IsActive() {
		return shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}
	if !p.IsPurchasable(qty) {
		return shared.ErrInsufficientStock
	}
	return nil
}

func (s *Service) view(ctx context.Context, c *cart.Cart) (*Response, error) {
	resp := &Response{
		SessionID: c.SessionID,
		Items:     make([]ItemResponse, 0, len(c.Items)),
		Total:     decimal.Zero,
	}
	if c.IsEmpty() {
		return resp, nil
	}

	products, err := s.productRepo.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, it := range c.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		resp.Items = append(resp.Items, ItemResponse{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			ImageURL:  p.ImageURL,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
			Subtotal:  subtotal,
			Available: p.IsPurchasable(it.Quantity),
			AddedAt:   it.CreatedAt,
		})
		resp.Total = resp.Total.Add(subtotal)
		resp.ItemCount += it.Quantity
	}
	return resp, nil
}
