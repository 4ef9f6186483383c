package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shoptag/backend/internal/domain/catalog"
	"github.com/shoptag/backend/internal/domain/shared"
	"github.com/shoptag/backend/internal/infrastructure/shopify"
)

// =============================================================================
// Mocks
// =============================================================================

type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) SearchProductsPage(ctx context.Context, query, cursor string) (*shopify.ProductPage, error) {
	args := m.Called(ctx, query, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopify.ProductPage), args.Error(1)
}

func (m *MockCatalogClient) CreateProduct(ctx context.Context, input shopify.NewProduct) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogClient) DeleteProduct(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func newTestService(client *MockCatalogClient) (*Service, *[]time.Duration) {
	svc := NewService(client, nil)
	svc.intn = func(n int) int { return 0 } // deterministic vocabulary picks

	sleeps := &[]time.Duration{}
	svc.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}

	return svc, sleeps
}

// =============================================================================
// Generate
// =============================================================================

func TestService_Generate(t *testing.T) {
	t.Run("rejects out-of-range count before any remote call", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, _ := newTestService(client)

		for _, count := range []int{0, -1, 251} {
			_, err := svc.Generate(context.Background(), count, GenerateOptions{})
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "INVALID_COUNT", domainErr.Code)
		}
		client.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	})

	t.Run("creates requested number of products", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, _ := newTestService(client)

		var inputs []shopify.NewProduct
		client.On("CreateProduct", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				inputs = append(inputs, args.Get(1).(shopify.NewProduct))
			}).
			Return("gid://shopify/Product/1", nil).Times(5)

		result, err := svc.Generate(context.Background(), 5, GenerateOptions{})

		require.NoError(t, err)
		assert.Equal(t, 5, result.Requested)
		assert.Equal(t, 5, result.Created)
		assert.Zero(t, result.Failed)
		assert.Empty(t, result.Errors)

		require.Len(t, inputs, 5)
		// Deterministic picks: first entry of each vocabulary list
		assert.Equal(t, "Red Cotton T-Shirt #1", inputs[0].Title)
		assert.Equal(t, "Red Cotton T-Shirt #5", inputs[4].Title)
		assert.Equal(t, "T-Shirt", inputs[0].ProductType)
		assert.Contains(t, inputs[0].Description, "Generated test data")
		assert.Equal(t, []string{"T-Shirt", "Red", "Cotton", "Test Data"}, inputs[0].Tags)
		assert.Equal(t, "19.99", inputs[0].Price.StringFixed(2))
	})

	t.Run("honors optional product type and vendor labels", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, _ := newTestService(client)

		var inputs []shopify.NewProduct
		client.On("CreateProduct", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				inputs = append(inputs, args.Get(1).(shopify.NewProduct))
			}).
			Return("gid://shopify/Product/1", nil).Times(2)

		_, err := svc.Generate(context.Background(), 2, GenerateOptions{ProductType: "Mug", Vendor: "Acme"})

		require.NoError(t, err)
		require.Len(t, inputs, 2)
		assert.Equal(t, "Red Cotton Mug #1", inputs[0].Title)
		assert.Equal(t, "Mug", inputs[0].ProductType)
		assert.Equal(t, "Acme", inputs[0].Vendor)
		assert.Equal(t, []string{"Mug", "Red", "Cotton", "Test Data"}, inputs[0].Tags)
	})

	t.Run("pauses every tenth create", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, sleeps := newTestService(client)

		client.On("CreateProduct", mock.Anything, mock.Anything).
			Return("gid://shopify/Product/1", nil).Times(25)

		_, err := svc.Generate(context.Background(), 25, GenerateOptions{})

		require.NoError(t, err)
		// Pauses after #10 and #20; no trailing pause at the end of the run
		assert.Equal(t, []time.Duration{time.Second, time.Second}, *sleeps)
	})

	t.Run("tallies failures and reports only the first ten errors", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, _ := newTestService(client)

		var calls int
		client.On("CreateProduct", mock.Anything, mock.Anything).
			Return("", errors.New("shop suspended")).
			Run(func(mock.Arguments) { calls++ })

		result, err := svc.Generate(context.Background(), 30, GenerateOptions{})

		require.NoError(t, err)
		assert.Equal(t, 30, calls, "failures must not abort the run")
		assert.Zero(t, result.Created)
		assert.Equal(t, 30, result.Failed)
		assert.Len(t, result.Errors, 10)
		assert.Equal(t, "shop suspended", result.Errors[0])
	})
}

// =============================================================================
// DeleteTestData
// =============================================================================

func TestService_DeleteTestData(t *testing.T) {
	makeProducts := func(n int) []catalog.ProductRef {
		products := make([]catalog.ProductRef, n)
		for i := range products {
			products[i] = catalog.ProductRef{ID: fmt.Sprintf("gid://shopify/Product/%d", i+1)}
		}
		return products
	}

	t.Run("deletes matched products", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, _ := newTestService(client)

		client.On("SearchProductsPage", mock.Anything, "tag:'Test Data'", "").
			Return(&shopify.ProductPage{Products: makeProducts(3)}, nil)
		client.On("DeleteProduct", mock.Anything, mock.Anything).Return(nil).Times(3)

		result, err := svc.DeleteTestData(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, result.Matched)
		assert.Equal(t, 3, result.Deleted)
		assert.Zero(t, result.Failed)
	})

	t.Run("stops materializing at the cap", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, _ := newTestService(client)

		client.On("SearchProductsPage", mock.Anything, "tag:'Test Data'", "").
			Return(&shopify.ProductPage{Products: makeProducts(300), NextCursor: "c1", HasMore: true}, nil)
		client.On("DeleteProduct", mock.Anything, mock.Anything).Return(nil).Times(250)

		result, err := svc.DeleteTestData(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 250, result.Matched)
		assert.Equal(t, 250, result.Deleted)
		client.AssertNumberOfCalls(t, "SearchProductsPage", 1)
		client.AssertNumberOfCalls(t, "DeleteProduct", 250)
	})

	t.Run("pauses every tenth successful delete", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, sleeps := newTestService(client)

		products := makeProducts(21)
		client.On("SearchProductsPage", mock.Anything, "tag:'Test Data'", "").
			Return(&shopify.ProductPage{Products: products}, nil)
		// First delete fails, the rest succeed: pauses land on the 10th and
		// 20th success, not the 10th attempt
		client.On("DeleteProduct", mock.Anything, "gid://shopify/Product/1").Return(errors.New("locked"))
		for i := 2; i <= 21; i++ {
			client.On("DeleteProduct", mock.Anything, fmt.Sprintf("gid://shopify/Product/%d", i)).Return(nil)
		}

		result, err := svc.DeleteTestData(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 20, result.Deleted)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, []time.Duration{time.Second, time.Second}, *sleeps)
	})

	t.Run("propagates search error", func(t *testing.T) {
		client := new(MockCatalogClient)
		svc, _ := newTestService(client)

		client.On("SearchProductsPage", mock.Anything, "tag:'Test Data'", "").Return(nil, errors.New("boom"))

		_, err := svc.DeleteTestData(context.Background())
		assert.Error(t, err)
	})
}
