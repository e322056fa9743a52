package contact

import (
	"context"
	"fmt"

	"github.com/troves/backend/internal/domain/contact"
	"github.com/troves/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReceivedHandler logs a notification for every new contact message
type ReceivedHandler struct {
	logger *zap.Logger
}

func NewReceivedHandler(logger *zap.Logger) *ReceivedHandler {
	return &ReceivedHandler{logger: logger.Named("notify")}
}

func (h *ReceivedHandler) EventTypes() []string {
	return []string{contact.EventTypeMessageReceived}
}

func (h *ReceivedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*contact.MessageReceivedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			contact.EventTypeMessageReceived, event.EventType())
	}
	h.logger.Info("new contact message",
		zap.String("message_id", e.MessageID.String()),
		zap.String("from", e.Name),
		zap.String("email", e.Email),
		zap.String("subject", e.Subject),
	)
	return nil
}
