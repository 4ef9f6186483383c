package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/domain/catalog"
	"github.com/shoptag/backend/internal/domain/shared"
	"github.com/shoptag/backend/internal/infrastructure/shopify"
)

const (
	// MinCount and MaxCount bound a single generation run
	MinCount = 1
	MaxCount = 250
	// deleteCap bounds how many products one delete run removes
	deleteCap = 250
	// pauseEvery inserts a courtesy pause after this many API writes
	pauseEvery = 10
	// maxReportedErrors caps how many error strings a run returns
	maxReportedErrors = 10
	// testDataTag marks every generated product so delete runs can find them
	testDataTag = "Test Data"
)

// Product vocabulary for generated titles
var (
	productTypes = []string{"T-Shirt", "Hoodie", "Jacket", "Pants", "Shoes", "Hat", "Bag", "Accessory"}
	colors       = []string{"Red", "Blue", "Green", "Black", "White", "Yellow", "Purple", "Orange", "Pink", "Gray"}
	materials    = []string{"Cotton", "Polyester", "Wool", "Leather", "Denim", "Silk"}
)

// Price bounds in cents
const (
	minPriceCents = 1999
	maxPriceCents = 9999
)

// CatalogClient is the slice of the Shopify client the generator needs
type CatalogClient interface {
	SearchProductsPage(ctx context.Context, query, cursor string) (*shopify.ProductPage, error)
	CreateProduct(ctx context.Context, input shopify.NewProduct) (string, error)
	DeleteProduct(ctx context.Context, productID string) error
}

// GenerateOptions carries optional labels applied to every generated
// product. An empty ProductType keeps the randomized vocabulary.
type GenerateOptions struct {
	ProductType string
	Vendor      string
}

// GenerateResult reports the outcome of a generation run
type GenerateResult struct {
	Requested int      `json:"requested"`
	Created   int      `json:"created"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// DeleteResult reports the outcome of a test-data delete run
type DeleteResult struct {
	Matched int      `json:"matched"`
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Service creates and removes randomized test products
type Service struct {
	client CatalogClient
	logger *zap.Logger

	// intn and sleep are swappable for deterministic tests
	intn  func(n int) int
	sleep func(time.Duration)
}

// NewService creates a new generator service
func NewService(client CatalogClient, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		logger: logger.Named("generator"),
		intn:   rand.Intn,
		sleep:  time.Sleep,
	}
}

// Generate creates count randomized products. Individual create failures are
// tallied and the run keeps going; only the first few error messages are
// reported back. The count is validated before any remote call.
func (s *Service) Generate(ctx context.Context, count int, opts GenerateOptions) (*GenerateResult, error) {
	if count < MinCount || count > MaxCount {
		return nil, shared.NewDomainError("INVALID_COUNT",
			fmt.Sprintf("Count must be between %d and %d", MinCount, MaxCount))
	}

	result := &GenerateResult{Requested: count}

	for i := 1; i <= count; i++ {
		input := s.randomProduct(i, opts)

		if _, err := s.client.CreateProduct(ctx, input); err != nil {
			result.Failed++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, err.Error())
			}
			s.logger.Warn("product create failed",
				zap.Int("index", i),
				zap.Error(err))
		} else {
			result.Created++
		}

		// Courtesy pause to stay well clear of API rate limits
		if i%pauseEvery == 0 && i < count {
			s.sleep(time.Second)
		}
	}

	s.logger.Info("generation run finished",
		zap.Int("requested", result.Requested),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed))

	return result, nil
}

// randomProduct builds one randomized product input
func (s *Service) randomProduct(index int, opts GenerateOptions) shopify.NewProduct {
	productType := productTypes[s.intn(len(productTypes))]
	if opts.ProductType != "" {
		productType = opts.ProductType
	}
	color := colors[s.intn(len(colors))]
	material := materials[s.intn(len(materials))]

	priceCents := minPriceCents + s.intn(maxPriceCents-minPriceCents+1)
	price := decimal.NewFromInt(int64(priceCents)).Div(decimal.NewFromInt(100))

	title := fmt.Sprintf("%s %s %s #%d", color, material, productType, index)

	return shopify.NewProduct{
		Title:       title,
		Description: fmt.Sprintf("%s made from %s. Generated test data, safe to delete.", title, material),
		ProductType: productType,
		Vendor:      opts.Vendor,
		Tags:        []string{productType, color, material, testDataTag},
		Price:       price,
	}
}

// DeleteTestData removes products carrying the test-data tag. Page draining
// stops at the per-run cap so a huge backlog never gets materialized at
// once. Individual delete failures are tallied without aborting.
func (s *Service) DeleteTestData(ctx context.Context) (*DeleteResult, error) {
	query := fmt.Sprintf("tag:'%s'", testDataTag)

	var products []catalog.ProductRef
	var cursor string
	for {
		page, err := s.client.SearchProductsPage(ctx, query, cursor)
		if err != nil {
			return nil, err
		}

		products = append(products, page.Products...)

		if !page.HasMore || len(products) >= deleteCap {
			break
		}
		cursor = page.NextCursor
	}
	if len(products) > deleteCap {
		products = products[:deleteCap]
	}

	result := &DeleteResult{Matched: len(products)}

	for _, product := range products {
		if err := s.client.DeleteProduct(ctx, product.ID); err != nil {
			result.Failed++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, err.Error())
			}
			s.logger.Warn("product delete failed",
				zap.String("product_id", product.ID),
				zap.Error(err))
			continue
		}

		result.Deleted++
		if result.Deleted%pauseEvery == 0 {
			s.sleep(time.Second)
		}
	}

	s.logger.Info("delete run finished",
		zap.Int("matched", result.Matched),
		zap.Int("deleted", result.Deleted),
		zap.Int("failed", result.Failed))

	return result, nil
}
