package audit

import (
	"fmt"

	"github.com/shoptag/backend/internal/domain/shared"
)

// TagAction represents the outcome class of a tag operation on a product
type TagAction string

const (
	TagActionAdded   TagAction = "added"
	TagActionSkipped TagAction = "skipped"
	TagActionFailed  TagAction = "failed"
)

// IsValid checks if the action is valid
func (a TagAction) IsValid() bool {
	switch a {
	case TagActionAdded, TagActionSkipped, TagActionFailed:
		return true
	}
	return false
}

// TagStatus represents whether the operation succeeded
type TagStatus string

const (
	TagStatusSuccess TagStatus = "success"
	TagStatusError   TagStatus = "error"
)

// IsValid checks if the status is valid
func (s TagStatus) IsValid() bool {
	return s == TagStatusSuccess || s == TagStatusError
}

// TagAudit records the outcome of a single tag operation against a single
// product. One row is written per processed item, append-only.
type TagAudit struct {
	shared.BaseEntity
	ProductID    string    `json:"product_id"`
	Action       TagAction `json:"action"`
	Tag          string    `json:"tag"`
	Status       TagStatus `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}

// NewTagAudit creates a new audit record for a tag operation outcome
func NewTagAudit(productID string, action TagAction, tag string, status TagStatus, errorMessage string) (*TagAudit, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", fmt.Sprintf("Invalid audit action: %s", action))
	}
	if tag == "" {
		return nil, shared.NewDomainError("INVALID_TAG", "Tag cannot be empty")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid audit status: %s", status))
	}

	a := &TagAudit{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Action:     action,
		Tag:        tag,
		Status:     status,
	}
	if errorMessage != "" {
		a.ErrorMessage = &errorMessage
	}
	return a, nil
}

// IsError returns true if the recorded operation failed
func (a *TagAudit) IsError() bool {
	return a.Status == TagStatusError
}
