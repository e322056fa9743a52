package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/shared"
)

// Repository defines order persistence. Items are stored with their order.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	// FindAll honours Filters keys: status, email, session_id
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Save inserts a new order with its items or updates the order header
	Save(ctx context.Context, order *Order) error
	// SaveWithLock updates the order header only if the stored version is
	// expectedVersion, otherwise it returns shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, order *Order, expectedVersion int) error
}
