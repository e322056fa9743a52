package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/shared"
)

// Repository persists contact messages
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	// FindAll honours the Filters key "status"
	FindAll(ctx context.Context, filter shared.Filter) ([]Message, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, m *Message) error
	// ArchiveReadBefore archives READ messages last updated before cutoff
	ArchiveReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
