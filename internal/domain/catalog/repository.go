package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	// FindByIDs returns the products that exist among ids, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// FindAll honours Filters keys: category, crystal_type, featured, status
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindFeatured returns active featured products, newest first
	FindFeatured(ctx context.Context, limit int) ([]Product, error)
	// FindByCrystalTypes matches crystal types case-insensitively among active products
	FindByCrystalTypes(ctx context.Context, crystalTypes []string, limit int) ([]Product, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, product *Product) error
	// SaveWithLock updates the row only if its stored version still equals
	// expectedVersion, returning shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, product *Product, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error
}
