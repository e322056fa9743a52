package order

import (
	"context"
	"fmt"

	"github.com/troves/backend/internal/domain/order"
	"github.com/troves/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationHandler tells the shop owner about new orders and status
// changes through the structured log
type NotificationHandler struct {
	logger *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger.Named("notify")}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderStatusChanged}
}

// Handle logs a notification line for the event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		h.logger.Info("new order received",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("customer", e.CustomerName),
			zap.String("email", e.CustomerEmail),
			zap.Int("items", e.ItemCount),
			zap.String("total", e.TotalAmount.StringFixed(2)),
		)
	case *order.OrderStatusChangedEvent:
		h.logger.Info("order status changed",
			zap.String("order_id", e.OrderID.String()),
			zap.String("order_number", e.OrderNumber),
			zap.String("from", string(e.OldStatus)),
			zap.String("to", string(e.NewStatus)),
		)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}
