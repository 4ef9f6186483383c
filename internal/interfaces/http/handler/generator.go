package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/application/generator"
)

// GeneratorService is the application surface the generator handler depends on
type GeneratorService interface {
	Generate(ctx context.Context, count int, opts generator.GenerateOptions) (*generator.GenerateResult, error)
	DeleteTestData(ctx context.Context) (*generator.DeleteResult, error)
}

// GeneratorHandler exposes test-data generation over HTTP
type GeneratorHandler struct {
	BaseHandler
	service GeneratorService
	logger  *zap.Logger
}

// NewGeneratorHandler creates a new GeneratorHandler
func NewGeneratorHandler(service GeneratorService, logger *zap.Logger) *GeneratorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorHandler{service: service, logger: logger}
}

// RegisterRoutes registers generator routes
func (h *GeneratorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/generator")
	{
		grp.POST("/generate", h.Generate)
		grp.POST("/delete", h.Delete)
	}
}

// GenerateRequest is the body for POST /generator/generate
type GenerateRequest struct {
	Count       int    `json:"count" binding:"required,min=1,max=250"`
	ProductType string `json:"product_type" binding:"max=255"`
	Vendor      string `json:"vendor" binding:"max=255"`
}

// GenerateStats is the counter block of a generate response
type GenerateStats struct {
	Requested int `json:"requested"`
	Created   int `json:"created"`
	Failed    int `json:"failed"`
}

// GenerateResponse is the response for POST /generator/generate
type GenerateResponse struct {
	Success bool          `json:"success"`
	Stats   GenerateStats `json:"stats"`
	Errors  []string      `json:"errors"`
}

// DeleteStats is the counter block of a delete response
type DeleteStats struct {
	Matched int `json:"matched"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// DeleteResponse is the response for POST /generator/delete
type DeleteResponse struct {
	Success bool        `json:"success"`
	Stats   DeleteStats `json:"stats"`
	Errors  []string    `json:"errors"`
}

// Generate handles POST /generator/generate
func (h *GeneratorHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	opts := generator.GenerateOptions{
		ProductType: req.ProductType,
		Vendor:      req.Vendor,
	}
	result, err := h.service.Generate(c.Request.Context(), req.Count, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("generation run finished",
		zap.Int("requested", result.Requested),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed))

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	h.Success(c, GenerateResponse{
		Success: result.Failed == 0,
		Stats: GenerateStats{
			Requested: result.Requested,
			Created:   result.Created,
			Failed:    result.Failed,
		},
		Errors: errs,
	})
}

// Delete handles POST /generator/delete
func (h *GeneratorHandler) Delete(c *gin.Context) {
	result, err := h.service.DeleteTestData(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("delete run finished",
		zap.Int("matched", result.Matched),
		zap.Int("deleted", result.Deleted),
		zap.Int("failed", result.Failed))

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	h.Success(c, DeleteResponse{
		Success: result.Failed == 0,
		Stats: DeleteStats{
			Matched: result.Matched,
			Deleted: result.Deleted,
			Failed:  result.Failed,
		},
		Errors: errs,
	})
}
