package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists cart lines keyed by session id
type Repository interface {
	// FindBySession returns the cart for a session; an unknown session yields an empty cart
	FindBySession(ctx context.Context, sessionID string) (*Cart, error)
	// SaveItem inserts or updates one line, unique on (session, product)
	SaveItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, sessionID string, productID uuid.UUID) error
	DeleteBySession(ctx context.Context, sessionID string) error
	// DeleteUpdatedBefore removes lines untouched since cutoff and returns how many were removed
	DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
