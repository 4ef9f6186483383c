package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shoptag/backend/internal/domain/audit"
	"github.com/shoptag/backend/internal/domain/shared"
)

// TagAuditModel is the persistence model for the TagAudit domain entity.
// The composite index supports the per-product history listing.
type TagAuditModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt    time.Time `gorm:"not null;index:idx_tag_audit_product_created,priority:2"`
	UpdatedAt    time.Time `gorm:"not null"`
	ProductID    string    `gorm:"type:varchar(255);not null;index:idx_tag_audit_product_created,priority:1"`
	Action       string    `gorm:"type:varchar(20);not null"`
	Tag          string    `gorm:"type:varchar(255);not null"`
	Status       string    `gorm:"type:varchar(20);not null"`
	ErrorMessage *string   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TagAuditModel) TableName() string {
	return "product_tag_audits"
}

// ToDomain converts the persistence model to a domain TagAudit entity.
func (m *TagAuditModel) ToDomain() *audit.TagAudit {
	return &audit.TagAudit{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ProductID:    m.ProductID,
		Action:       audit.TagAction(m.Action),
		Tag:          m.Tag,
		Status:       audit.TagStatus(m.Status),
		ErrorMessage: m.ErrorMessage,
	}
}

// FromDomain populates the persistence model from a domain TagAudit entity.
func (m *TagAuditModel) FromDomain(a *audit.TagAudit) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.ProductID = a.ProductID
	m.Action = string(a.Action)
	m.Tag = a.Tag
	m.Status = string(a.Status)
	m.ErrorMessage = a.ErrorMessage
}
