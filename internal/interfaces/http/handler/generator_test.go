package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoptag/backend/internal/application/generator"
	"github.com/shoptag/backend/internal/domain/shared"
)

type stubGeneratorService struct {
	generate func(int, generator.GenerateOptions) (*generator.GenerateResult, error)
	delete   func() (*generator.DeleteResult, error)
}

func (s *stubGeneratorService) Generate(_ context.Context, count int, opts generator.GenerateOptions) (*generator.GenerateResult, error) {
	return s.generate(count, opts)
}

func (s *stubGeneratorService) DeleteTestData(_ context.Context) (*generator.DeleteResult, error) {
	return s.delete()
}

func setupGeneratorRouter(service GeneratorService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewGeneratorHandler(service, nil).RegisterRoutes(api)
	return engine
}

func TestGeneratorHandler_Generate(t *testing.T) {
	t.Run("returns run stats", func(t *testing.T) {
		service := &stubGeneratorService{
			generate: func(count int, opts generator.GenerateOptions) (*generator.GenerateResult, error) {
				assert.Equal(t, 25, count)
				assert.Empty(t, opts.ProductType)
				return &generator.GenerateResult{Requested: 25, Created: 25}, nil
			},
		}

		w := doRequest(setupGeneratorRouter(service), http.MethodPost, "/api/v1/generator/generate",
			`{"count":25}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp GenerateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 25, resp.Stats.Created)
		assert.Empty(t, resp.Errors)
	})

	t.Run("passes optional labels through", func(t *testing.T) {
		service := &stubGeneratorService{
			generate: func(count int, opts generator.GenerateOptions) (*generator.GenerateResult, error) {
				assert.Equal(t, generator.GenerateOptions{ProductType: "Mug", Vendor: "Acme"}, opts)
				return &generator.GenerateResult{Requested: count, Created: count}, nil
			},
		}

		w := doRequest(setupGeneratorRouter(service), http.MethodPost, "/api/v1/generator/generate",
			`{"count":5,"product_type":"Mug","vendor":"Acme"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("partial failure reports success false", func(t *testing.T) {
		service := &stubGeneratorService{
			generate: func(count int, opts generator.GenerateOptions) (*generator.GenerateResult, error) {
				return &generator.GenerateResult{
					Requested: 10, Created: 8, Failed: 2,
					Errors: []string{"shop suspended", "shop suspended"},
				}, nil
			},
		}

		w := doRequest(setupGeneratorRouter(service), http.MethodPost, "/api/v1/generator/generate",
			`{"count":10}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp GenerateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Len(t, resp.Errors, 2)
	})

	t.Run("binding rejects out-of-range counts", func(t *testing.T) {
		router := setupGeneratorRouter(&stubGeneratorService{})

		for _, body := range []string{`{"count":0}`, `{"count":251}`, `{}`, `{"count":"ten"}`} {
			w := doRequest(router, http.MethodPost, "/api/v1/generator/generate", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		}
	})

	t.Run("domain validation error maps to 400", func(t *testing.T) {
		service := &stubGeneratorService{
			generate: func(int, generator.GenerateOptions) (*generator.GenerateResult, error) {
				return nil, shared.NewDomainError("INVALID_COUNT", "Count must be between 1 and 250")
			},
		}

		w := doRequest(setupGeneratorRouter(service), http.MethodPost, "/api/v1/generator/generate",
			`{"count":100}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGeneratorHandler_Delete(t *testing.T) {
	t.Run("returns delete stats", func(t *testing.T) {
		service := &stubGeneratorService{
			delete: func() (*generator.DeleteResult, error) {
				return &generator.DeleteResult{Matched: 30, Deleted: 30}, nil
			},
		}

		w := doRequest(setupGeneratorRouter(service), http.MethodPost, "/api/v1/generator/delete", "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp DeleteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 30, resp.Stats.Deleted)
	})
}
