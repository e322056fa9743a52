// Package order implements checkout and order fulfilment.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/catalog"
	"github.com/troves/backend/internal/domain/order"
	"github.com/troves/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service handles checkout and the order lifecycle
type Service struct {
	uow            order.UnitOfWork
	orderRepo      order.Repository
	receipts       ReceiptRenderer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new order Service. receipts and publisher may be nil.
func NewService(
	uow order.UnitOfWork,
	orderRepo order.Repository,
	receipts ReceiptRenderer,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		uow:            uow,
		orderRepo:      orderRepo,
		receipts:       receipts,
		eventPublisher: publisher,
		logger:         logger,
	}
}

// Viewer is who is asking for an order
type Viewer struct {
	SessionID string
	Admin     bool
}

func (v Viewer) canSee(o *order.Order) bool {
	return v.Admin || o.BelongsTo(v.SessionID)
}

// PlaceOrder checks out the session's cart. Stock is decremented, the order
// stored and the cart cleared in one transaction.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, req PlaceOrderRequest) (*Response, error) {
	var (
		placed  *order.Order
		pending []shared.DomainEvent
	)

	err := s.uow.Execute(ctx, func(ctx context.Context, repos order.Repositories) error {
		pending = nil

		c, err := repos.Carts.FindBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return shared.NewDomainError("EMPTY_CART", "Cannot place an order with an empty cart")
		}

		products := make([]*catalog.Product, 0, len(c.Items))
		lines := make([]order.Line, 0, len(c.Items))
		for _, it := range c.Items {
			p, err := repos.Products.FindByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError("PRODUCT_UNAVAILABLE", "A product in your cart is no longer available")
				}
				return err
			}
			if !p.IsPurchasable(it.Quantity) {
				return shared.NewDomainError(shared.ErrInsufficientStock.Code,
					fmt.Sprintf("Only %d of %s left in stock", p.Stock, p.Name))
			}
			products = append(products, p)
			lines = append(lines, order.Line{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    it.Quantity,
			})
		}

		o, err := order.NewOrder(sessionID,
			order.Customer{Name: req.Customer.Name, Email: req.Customer.Email, Phone: req.Customer.Phone},
			toAddress(req.ShippingAddress),
			lines,
			req.Notes,
		)
		if err != nil {
			return err
		}

		for i, p := range products {
			expected := p.Version
			if err := p.AdjustStock(-lines[i].Quantity, "order "+o.OrderNumber); err != nil {
				return err
			}
			if err := repos.Products.SaveWithLock(ctx, p, expected); err != nil {
				return err
			}
			pending = append(pending, p.GetDomainEvents()...)
		}
		if err := repos.Orders.Save(ctx, o); err != nil {
			return err
		}
		if err := repos.Carts.DeleteBySession(ctx, sessionID); err != nil {
			return err
		}

		pending = append(pending, o.GetDomainEvents()...)
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	placed.ClearDomainEvents()
	s.publish(ctx, pending)
	s.logger.Info("order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("order_number", placed.OrderNumber),
		zap.String("total", placed.TotalAmount.StringFixed(2)),
	)

	response := ToResponse(placed)
	return &response, nil
}

// Get returns an order the viewer is allowed to see. Other sessions'
// orders are reported as not found.
func (s *Service) Get(ctx context.Context, id uuid.UUID, viewer Viewer) (*Response, error) {
	o, err := s.load(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	response := ToResponse(o)
	return &response, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID, viewer Viewer) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.canSee(o) {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// List returns orders for the admin dashboard
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Response, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.Email != "" {
		f.Filters["email"] = filter.Email
	}

	var (
		orders []order.Order
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orderRepo.FindAll(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.orderRepo.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return ToResponses(orders), total, nil
}

// Confirm acknowledges a pending order
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Response, error) {
	return s.transition(ctx, id, (*order.Order).Confirm)
}

// Ship marks a confirmed order as shipped
func (s *Service) Ship(ctx context.Context, id uuid.UUID) (*Response, error) {
	return s.transition(ctx, id, (*order.Order).Ship)
}

// Deliver completes a shipped order
func (s *Service) Deliver(ctx context.Context, id uuid.UUID) (*Response, error) {
	return s.transition(ctx, id, (*order.Order).Deliver)
}

// transition applies a status change under the order's optimistic lock. A
// concurrent change to the same order fails with CONCURRENCY_CONFLICT.
func (s *Service) transition(ctx context.Context, id uuid.UUID, apply func(*order.Order) error) (*Response, error) {
	var changed *order.Order

	err := s.uow.Execute(ctx, func(ctx context.Context, repos order.Repositories) error {
		o, err := repos.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		expected := o.Version
		if err := apply(o); err != nil {
			return err
		}
		if err := repos.Orders.SaveWithLock(ctx, o, expected); err != nil {
			return err
		}
		changed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := changed.GetDomainEvents()
	changed.ClearDomainEvents()
	s.publish(ctx, events)

	response := ToResponse(changed)
	return &response, nil
}

// Cancel cancels a pending or confirmed order and puts its items back in stock
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req CancelOrderRequest) (*Response, error) {
	var (
		cancelled *order.Order
		pending   []shared.DomainEvent
	)

	err := s.uow.Execute(ctx, func(ctx context.Context, repos order.Repositories) error {
		pending = nil

		o, err := repos.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		expected := o.Version
		if err := o.Cancel(req.Reason); err != nil {
			return err
		}

		for _, it := range o.Items {
			p, err := repos.Products.FindByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					s.logger.Warn("cancelled order references a deleted product",
						zap.String("order_number", o.OrderNumber),
						zap.String("product_id", it.ProductID.String()),
					)
					continue
				}
				return err
			}
			expected := p.Version
			if err := p.AdjustStock(it.Quantity, "cancel "+o.OrderNumber); err != nil {
				return err
			}
			if err := repos.Products.SaveWithLock(ctx, p, expected); err != nil {
				return err
			}
			pending = append(pending, p.GetDomainEvents()...)
		}

		if err := repos.Orders.SaveWithLock(ctx, o, expected); err != nil {
			return err
		}
		pending = append(pending, o.GetDomainEvents()...)
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	cancelled.ClearDomainEvents()
	s.publish(ctx, pending)

	response := ToResponse(cancelled)
	return &response, nil
}

// Receipt renders the order receipt for the viewer
func (s *Service) Receipt(ctx context.Context, id uuid.UUID, viewer Viewer, format ReceiptFormat) (*ReceiptDocument, error) {
	if s.receipts == nil {
		return nil, shared.NewDomainError("RECEIPT_UNAVAILABLE", "Receipts are not configured")
	}
	o, err := s.load(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	switch format {
	case ReceiptPDF:
		if !s.receipts.PDFEnabled() {
			return nil, shared.NewDomainError("RECEIPT_UNAVAILABLE", "PDF receipts are not enabled")
		}
		data, err := s.receipts.PDF(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("render pdf receipt: %w", err)
		}
		return &ReceiptDocument{ContentType: "application/pdf", Filename: receiptFilename(o, "pdf"), Data: data}, nil
	case ReceiptHTML, "":
		data, err := s.receipts.HTML(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("render html receipt: %w", err)
		}
		return &ReceiptDocument{ContentType: "text/html; charset=utf-8", Filename: receiptFilename(o, "html"), Data: data}, nil
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown receipt format: "+string(format))
	}
}

func (s *Service) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events", zap.Error(err))
	}
}

func toAddress(a AddressInput) order.Address {
	return order.Address{
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
