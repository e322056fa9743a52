package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/cart"
	"github.com/troves/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository stores cart lines in cart_items
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindBySession loads every line of a session in insertion order
func (r *GormCartRepository) FindBySession(ctx context.Context, sessionID string) (*cart.Cart, error) {
	var rows []models.CartItemModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]cart.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return cart.Load(sessionID, items), nil
}

// SaveItem upserts a line on (session_id, product_id)
func (r *GormCartRepository) SaveItem(ctx context.Context, item *cart.Item) error {
	model := models.CartItemModelFromDomain(item)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(model).Error
}

// DeleteItem removes one line; removing a missing line is not an error
func (r *GormCartRepository) DeleteItem(ctx context.Context, sessionID string, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ?", sessionID, productID).
		Delete(&models.CartItemModel{}).Error
}

// DeleteBySession empties a cart
func (r *GormCartRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.CartItemModel{}).Error
}

// DeleteUpdatedBefore sweeps stale lines
func (r *GormCartRepository) DeleteUpdatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&models.CartItemModel{})
	return result.RowsAffected, result.Error
}

var _ cart.Repository = (*GormCartRepository)(nil)
