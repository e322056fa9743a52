package order

import (
	"context"

	"github.com/troves/backend/internal/domain/cart"
	"github.com/troves/backend/internal/domain/catalog"
)

// Repositories groups the repositories checkout and cancellation touch
// together. All of them share one transaction inside UnitOfWork.Execute.
type Repositories struct {
	Products catalog.ProductRepository
	Carts    cart.Repository
	Orders   Repository
}

// UnitOfWork runs fn atomically. If fn returns an error every write is rolled back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
