package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/application/tagger"
	"github.com/shoptag/backend/internal/domain/audit"
	"github.com/shoptag/backend/internal/domain/catalog"
)

// TaggerService is the application surface the tagger handler depends on
type TaggerService interface {
	Preview(ctx context.Context, filters catalog.FilterSet) (*tagger.PreviewResult, error)
	ListProducts(ctx context.Context, filters catalog.FilterSet) ([]catalog.ProductRef, error)
	ApplyTag(ctx context.Context, filters catalog.FilterSet, tag string, deferred bool) (*tagger.ApplyResult, error)
	AuditLogs(ctx context.Context) ([]audit.TagAudit, error)
	AuditLogsForProduct(ctx context.Context, productID string) ([]audit.TagAudit, error)
	Collections(ctx context.Context) ([]catalog.Collection, error)
}

// TaggerHandler exposes bulk tagging operations over HTTP
type TaggerHandler struct {
	BaseHandler
	service TaggerService
	logger  *zap.Logger
}

// NewTaggerHandler creates a new TaggerHandler
func NewTaggerHandler(service TaggerService, logger *zap.Logger) *TaggerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaggerHandler{service: service, logger: logger}
}

// RegisterRoutes registers tagger routes
func (h *TaggerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/tagger")
	{
		grp.GET("/collections", h.Collections)
		grp.GET("/products", h.ListProducts)
		grp.POST("/preview", h.Preview)
		grp.POST("/apply-tag", h.ApplyTag)
		grp.GET("/audit-logs", h.AuditLogs)
	}
}

// PreviewRequest is the body for POST /tagger/preview
type PreviewRequest struct {
	Filters catalog.FilterSet `json:"filters"`
}

// ApplyTagRequest is the body for POST /tagger/apply-tag. UseQueue hands the
// per-product work to the background task runner.
type ApplyTagRequest struct {
	Filters  catalog.FilterSet `json:"filters"`
	Tag      string            `json:"tag" binding:"required,max=255"`
	UseQueue bool              `json:"use_queue"`
}

// ApplyTagResponse is the response for POST /tagger/apply-tag
type ApplyTagResponse struct {
	Success bool            `json:"success"`
	Queued  bool            `json:"queued,omitempty"`
	Stats   tagger.TagStats `json:"stats"`
}

// filterQuery binds catalog filters from query parameters
type filterQuery struct {
	Keyword      string `form:"keyword"`
	ProductType  string `form:"product_type"`
	CollectionID string `form:"collection_id"`
}

func (q filterQuery) toFilterSet() catalog.FilterSet {
	return catalog.FilterSet{
		Keyword:      q.Keyword,
		ProductType:  q.ProductType,
		CollectionID: q.CollectionID,
	}
}

// ProductListResponse is the response for GET /tagger/products
type ProductListResponse struct {
	Count    int                  `json:"count"`
	Products []catalog.ProductRef `json:"products"`
}

// CollectionListResponse is the response for GET /tagger/collections
type CollectionListResponse struct {
	Collections []catalog.Collection `json:"collections"`
}

// AuditLogEntry is one row in the audit listing
type AuditLogEntry struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	Action       string    `json:"action"`
	Tag          string    `json:"tag"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditLogResponse is the response for GET /tagger/audit-logs
type AuditLogResponse struct {
	Logs []AuditLogEntry `json:"logs"`
}

// Preview handles POST /tagger/preview
func (h *TaggerHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Preview(c.Request.Context(), req.Filters)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListProducts handles GET /tagger/products
func (h *TaggerHandler) ListProducts(c *gin.Context) {
	var query filterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	products, err := h.service.ListProducts(c.Request.Context(), query.toFilterSet())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if products == nil {
		products = []catalog.ProductRef{}
	}
	h.Success(c, ProductListResponse{Count: len(products), Products: products})
}

// ApplyTag handles POST /tagger/apply-tag
func (h *TaggerHandler) ApplyTag(c *gin.Context) {
	var req ApplyTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ApplyTag(c.Request.Context(), req.Filters, req.Tag, req.UseQueue)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("apply-tag run accepted",
		zap.String("tag", req.Tag),
		zap.Bool("use_queue", req.UseQueue),
		zap.Int("total", result.Stats.Total))

	h.Success(c, ApplyTagResponse{
		Success: true,
		Queued:  result.Queued,
		Stats:   result.Stats,
	})
}

// AuditLogs handles GET /tagger/audit-logs. An optional product_id query
// parameter narrows the listing to one product's history.
func (h *TaggerHandler) AuditLogs(c *gin.Context) {
	var (
		logs []audit.TagAudit
		err  error
	)

	if productID := c.Query("product_id"); productID != "" {
		logs, err = h.service.AuditLogsForProduct(c.Request.Context(), productID)
	} else {
		logs, err = h.service.AuditLogs(c.Request.Context())
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	entries := make([]AuditLogEntry, len(logs))
	for i, log := range logs {
		entries[i] = AuditLogEntry{
			ID:           log.ID.String(),
			ProductID:    log.ProductID,
			Action:       string(log.Action),
			Tag:          log.Tag,
			Status:       string(log.Status),
			ErrorMessage: log.ErrorMessage,
			CreatedAt:    log.CreatedAt,
		}
	}

	h.Success(c, AuditLogResponse{Logs: entries})
}

// Collections handles GET /tagger/collections
func (h *TaggerHandler) Collections(c *gin.Context) {
	collections, err := h.service.Collections(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if collections == nil {
		collections = []catalog.Collection{}
	}
	h.Success(c, CollectionListResponse{Collections: collections})
}
