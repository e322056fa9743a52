package persistence

import (
	"context"

	"github.com/troves/backend/internal/domain/order"
	"gorm.io/gorm"
)

// GormUnitOfWork binds the checkout repositories to a single GORM transaction
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a transaction
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos order.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, order.Repositories{
			Products: NewGormProductRepository(tx),
			Carts:    NewGormCartRepository(tx),
			Orders:   NewGormOrderRepository(tx),
		})
	})
}

var _ order.UnitOfWork = (*GormUnitOfWork)(nil)
