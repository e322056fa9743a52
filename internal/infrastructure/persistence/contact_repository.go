package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/troves/backend/internal/domain/contact"
	"github.com/troves/backend/internal/domain/shared"
	"github.com/troves/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContactRepository implements contact.Repository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*contact.Message, error) {
	var model models.ContactMessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormContactRepository) FindAll(ctx context.Context, filter shared.Filter) ([]contact.Message, error) {
	var rows []models.ContactMessageModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContactMessageModel{}), filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, ContactSortFields))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]contact.Message, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormContactRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContactMessageModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormContactRepository) Save(ctx context.Context, m *contact.Message) error {
	return r.db.WithContext(ctx).Save(models.ContactMessageModelFromDomain(m)).Error
}

// ArchiveReadBefore bulk-archives READ messages not touched since cutoff
func (r *GormContactRepository) ArchiveReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ContactMessageModel{}).
		Where("status = ? AND updated_at < ?", contact.StatusRead, cutoff).
		Updates(map[string]interface{}{
			"status":     contact.StatusArchived,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

func (r *GormContactRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("email LIKE ? OR name LIKE ? OR subject LIKE ?", pattern, pattern, pattern)
	}
	return query
}

var _ contact.Repository = (*GormContactRepository)(nil)
