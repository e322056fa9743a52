package catalog

import (
	"context"
	"fmt"

	"github.com/troves/backend/internal/domain/catalog"
	"github.com/troves/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockHandler warns the shop owner when a product is about to sell out
type LowStockHandler struct {
	logger *zap.Logger
}

// NewLowStockHandler creates a new handler for ProductLowStock events
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductLowStock}
}

// Handle logs a warning for the low stock product
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*catalog.ProductLowStockEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeProductLowStock, event.EventType())
	}

	h.logger.Warn("product stock is low",
		zap.String("product_id", e.ProductID.String()),
		zap.String("name", e.Name),
		zap.Int("stock", e.Stock),
		zap.Int("threshold", catalog.DefaultLowStockThreshold),
	)
	return nil
}
