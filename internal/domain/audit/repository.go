package audit

import "context"

// Repository defines persistence operations for tag audit records. The
// store is append-only; concurrent inserts require no coordination from
// callers.
type Repository interface {
	// Save persists a new audit record
	Save(ctx context.Context, record *TagAudit) error

	// ListRecent returns the most recent records, newest first, up to limit
	ListRecent(ctx context.Context, limit int) ([]TagAudit, error)

	// ListByProduct returns the history for a single product, newest first
	ListByProduct(ctx context.Context, productID string) ([]TagAudit, error)
}
