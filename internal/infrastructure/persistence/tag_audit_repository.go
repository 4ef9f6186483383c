package persistence

import (
	"context"

	"github.com/shoptag/backend/internal/domain/audit"
	"github.com/shoptag/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTagAuditRepository implements audit.Repository using GORM
type GormTagAuditRepository struct {
	db *gorm.DB
}

// NewGormTagAuditRepository creates a new GormTagAuditRepository
func NewGormTagAuditRepository(db *gorm.DB) *GormTagAuditRepository {
	return &GormTagAuditRepository{db: db}
}

// Save persists a tag audit record
func (r *GormTagAuditRepository) Save(ctx context.Context, record *audit.TagAudit) error {
	var model models.TagAuditModel
	model.FromDomain(record)
	return r.db.WithContext(ctx).Create(&model).Error
}

// ListRecent returns the newest audit records, most recent first
func (r *GormTagAuditRepository) ListRecent(ctx context.Context, limit int) ([]audit.TagAudit, error) {
	var auditModels []models.TagAuditModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&auditModels).Error; err != nil {
		return nil, err
	}

	records := make([]audit.TagAudit, len(auditModels))
	for i, model := range auditModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// ListByProduct returns all audit records for a product, most recent first
func (r *GormTagAuditRepository) ListByProduct(ctx context.Context, productID string) ([]audit.TagAudit, error) {
	var auditModels []models.TagAuditModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&auditModels).Error; err != nil {
		return nil, err
	}

	records := make([]audit.TagAudit, len(auditModels))
	for i, model := range auditModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}
