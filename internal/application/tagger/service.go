package tagger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/domain/audit"
	"github.com/shoptag/backend/internal/domain/catalog"
	"github.com/shoptag/backend/internal/infrastructure/cache"
	"github.com/shoptag/backend/internal/infrastructure/shopify"
	"github.com/shoptag/backend/internal/infrastructure/tasks"
)

const (
	// previewCap bounds how many matches a preview reports
	previewCap = 1000
	// previewSampleSize is how many matches a preview returns in full
	previewSampleSize = 10
	// auditPageSize is how many audit rows a listing returns
	auditPageSize = 100
)

// CatalogClient is the slice of the Shopify client the tagger needs
type CatalogClient interface {
	SearchProducts(ctx context.Context, query string) ([]catalog.ProductRef, error)
	SearchProductsPage(ctx context.Context, query, cursor string) (*shopify.ProductPage, error)
	GetCollections(ctx context.Context) ([]catalog.Collection, error)
	AddTagToProduct(ctx context.Context, productID, tag string) shopify.TagResult
}

// TaskRunner is the slice of the deferred task runner the tagger needs
type TaskRunner interface {
	Enqueue(task *tasks.Task) error
}

// PreviewResult reports how many products a filter matches plus a small sample
type PreviewResult struct {
	Count  int                  `json:"count"`
	Sample []catalog.ProductRef `json:"products"`
}

// TagStats tallies the outcome of a bulk tag run. Message is only set for
// queued runs, where the per-product counters are not yet known.
type TagStats struct {
	Total   int    `json:"total"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Message string `json:"message,omitempty"`
}

// ApplyResult is the outcome of an apply-tag request. For queued runs only
// Total is meaningful: the per-product work happens in the background.
type ApplyResult struct {
	Stats  TagStats `json:"stats"`
	Queued bool     `json:"queued"`
}

// Service drives bulk tagging operations against the shop catalog
type Service struct {
	client    CatalogClient
	auditRepo audit.Repository
	cache     cache.CollectionCache
	runner    TaskRunner
	logger    *zap.Logger
}

// NewService creates a new tagger service
func NewService(client CatalogClient, auditRepo audit.Repository, collectionCache cache.CollectionCache, runner TaskRunner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:    client,
		auditRepo: auditRepo,
		cache:     collectionCache,
		runner:    runner,
		logger:    logger.Named("tagger"),
	}
}

// Preview reports how many products match the filter without changing
// anything. Page draining stops once the cap is reached and only a sample
// of products is returned.
func (s *Service) Preview(ctx context.Context, filters catalog.FilterSet) (*PreviewResult, error) {
	query := filters.QueryExpression()

	var matched []catalog.ProductRef
	var cursor string
	for {
		page, err := s.client.SearchProductsPage(ctx, query, cursor)
		if err != nil {
			return nil, err
		}

		matched = append(matched, page.Products...)

		if !page.HasMore || len(matched) >= previewCap {
			break
		}
		cursor = page.NextCursor
	}

	if len(matched) > previewCap {
		matched = matched[:previewCap]
	}

	sample := matched
	if len(sample) > previewSampleSize {
		sample = sample[:previewSampleSize]
	}

	return &PreviewResult{Count: len(matched), Sample: sample}, nil
}

// ListProducts returns all products matching the filter
func (s *Service) ListProducts(ctx context.Context, filters catalog.FilterSet) ([]catalog.ProductRef, error) {
	return s.client.SearchProducts(ctx, filters.QueryExpression())
}

// ApplyTag adds a tag to every product matching the filter. In deferred mode
// the per-product work is handed to the task runner and only the match count
// is returned; otherwise products are tagged inline and the stats reflect
// the full run.
func (s *Service) ApplyTag(ctx context.Context, filters catalog.FilterSet, tag string, deferred bool) (*ApplyResult, error) {
	products, err := s.client.SearchProducts(ctx, filters.QueryExpression())
	if err != nil {
		return nil, err
	}

	if deferred {
		return s.applyDeferred(products, tag)
	}
	return s.applySync(ctx, products, tag), nil
}

// applySync tags products inline, one at a time. Individual failures are
// tallied and audited but never abort the run.
func (s *Service) applySync(ctx context.Context, products []catalog.ProductRef, tag string) *ApplyResult {
	stats := TagStats{Total: len(products)}

	for _, product := range products {
		result := s.client.AddTagToProduct(ctx, product.ID, tag)
		s.recordResult(ctx, result, tag)

		switch result.Action {
		case audit.TagActionAdded:
			stats.Updated++
		case audit.TagActionSkipped:
			stats.Skipped++
		default:
			stats.Failed++
		}
	}

	return &ApplyResult{Stats: stats}
}

// applyDeferred enqueues one task per product and returns immediately.
// Tasks retry on failure; a run that exhausts its attempts writes a failed
// audit row from the terminal-failure hook.
func (s *Service) applyDeferred(products []catalog.ProductRef, tag string) (*ApplyResult, error) {
	for _, product := range products {
		productID := product.ID
		task := &tasks.Task{
			ID:   uuid.New(),
			Name: "apply-product-tag",
			Run: func(taskCtx context.Context) error {
				result := s.client.AddTagToProduct(taskCtx, productID, tag)
				if !result.Success {
					return fmt.Errorf("tag product %s: %s", productID, result.Message)
				}
				s.recordResult(taskCtx, result, tag)
				return nil
			},
			OnTerminalFailure: func(taskCtx context.Context, err error) {
				s.recordFailure(taskCtx, productID, tag, err.Error())
			},
		}
		if err := s.runner.Enqueue(task); err != nil {
			return nil, err
		}
	}

	return &ApplyResult{
		Stats: TagStats{
			Total:   len(products),
			Message: fmt.Sprintf("Queued %d products for tagging", len(products)),
		},
		Queued: true,
	}, nil
}

// recordResult writes an audit row for a tag outcome. Audit write failures
// are logged, not propagated: the tag operation itself already happened.
func (s *Service) recordResult(ctx context.Context, result shopify.TagResult, tag string) {
	status := audit.TagStatusSuccess
	if !result.Success {
		status = audit.TagStatusError
	}

	record, err := audit.NewTagAudit(result.ProductID, result.Action, tag, status, result.Message)
	if err != nil {
		s.logger.Error("failed to build audit record",
			zap.String("product_id", result.ProductID),
			zap.Error(err))
		return
	}

	if err := s.auditRepo.Save(ctx, record); err != nil {
		s.logger.Error("failed to save audit record",
			zap.String("product_id", result.ProductID),
			zap.Error(err))
	}
}

// recordFailure writes a failed audit row for a product
func (s *Service) recordFailure(ctx context.Context, productID, tag, message string) {
	record, err := audit.NewTagAudit(productID, audit.TagActionFailed, tag, audit.TagStatusError, message)
	if err != nil {
		s.logger.Error("failed to build audit record",
			zap.String("product_id", productID),
			zap.Error(err))
		return
	}

	if err := s.auditRepo.Save(ctx, record); err != nil {
		s.logger.Error("failed to save audit record",
			zap.String("product_id", productID),
			zap.Error(err))
	}
}

// AuditLogs returns the most recent audit rows, newest first
func (s *Service) AuditLogs(ctx context.Context) ([]audit.TagAudit, error) {
	return s.auditRepo.ListRecent(ctx, auditPageSize)
}

// AuditLogsForProduct returns the audit history of one product
func (s *Service) AuditLogsForProduct(ctx context.Context, productID string) ([]audit.TagAudit, error) {
	return s.auditRepo.ListByProduct(ctx, productID)
}

// Collections returns the shop's collections, served from cache when warm
func (s *Service) Collections(ctx context.Context) ([]catalog.Collection, error) {
	if cached, ok, err := s.cache.Get(ctx); err == nil && ok {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("collection cache read failed", zap.Error(err))
	}

	collections, err := s.client.GetCollections(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, collections); err != nil {
		s.logger.Warn("collection cache write failed", zap.Error(err))
	}

	return collections, nil
}
