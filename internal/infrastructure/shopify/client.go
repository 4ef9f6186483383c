package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/domain/audit"
	"github.com/shoptag/backend/internal/domain/catalog"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// GraphQL documents used by the client
const (
	searchProductsQuery = `
		query searchProducts($query: String!, $first: Int!, $after: String) {
			products(first: $first, after: $after, query: $query) {
				edges {
					cursor
					node {
						id
						title
						tags
					}
				}
				pageInfo {
					hasNextPage
					endCursor
				}
			}
		}`

	listCollectionsQuery = `
		query listCollections($first: Int!, $after: String) {
			collections(first: $first, after: $after) {
				edges {
					cursor
					node {
						id
						title
						handle
					}
				}
				pageInfo {
					hasNextPage
					endCursor
				}
			}
		}`

	getProductQuery = `
		query getProduct($id: ID!) {
			product(id: $id) {
				id
				title
				tags
			}
		}`

	productUpdateMutation = `
		mutation productUpdate($input: ProductInput!) {
			productUpdate(input: $input) {
				product {
					id
					tags
				}
				userErrors {
					field
					message
				}
			}
		}`

	productCreateMutation = `
		mutation productCreate($input: ProductInput!) {
			productCreate(input: $input) {
				product {
					id
					title
					tags
				}
				userErrors {
					field
					message
				}
			}
		}`

	productDeleteMutation = `
		mutation productDelete($input: ProductDeleteInput!) {
			productDelete(input: $input) {
				deletedProductId
				userErrors {
					field
					message
				}
			}
		}`

	shopNameQuery = `{ shop { name } }`
)

// TagResult is the outcome of an idempotent tag-add. Failures are reported
// as a result value, never as a Go error, so bulk runs keep going.
type TagResult struct {
	ProductID string
	Action    audit.TagAction
	Success   bool
	Message   string
}

// NewProduct is the input for creating a product
type NewProduct struct {
	Title       string
	Description string
	ProductType string
	Vendor      string
	Tags        []string
	Price       decimal.Decimal
}

// Client is a throttle-aware Shopify Admin GraphQL API client
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger

	// sleep is swappable so tests can observe pacing without waiting
	sleep func(time.Duration)
}

// NewClient creates a new Shopify client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.Named("shopify"),
		sleep:  time.Sleep,
	}, nil
}

// ProductPage is one page of a product search
type ProductPage struct {
	Products   []catalog.ProductRef
	NextCursor string
	HasMore    bool
}

// SearchProductsPage fetches one page of products matching the search query.
// An empty cursor starts from the beginning of the result set.
func (c *Client) SearchProductsPage(ctx context.Context, query, cursor string) (*ProductPage, error) {
	variables := map[string]any{
		"query": query,
		"first": c.config.SearchPageSize,
	}
	if cursor != "" {
		variables["after"] = cursor
	}

	var data searchProductsData
	if err := c.execute(ctx, searchProductsQuery, variables, &data); err != nil {
		return nil, err
	}

	page := &ProductPage{
		Products: make([]catalog.ProductRef, 0, len(data.Products.Edges)),
		HasMore:  data.Products.PageInfo.HasNextPage,
	}
	for _, edge := range data.Products.Edges {
		page.Products = append(page.Products, catalog.ProductRef{
			ID:    edge.Node.ID,
			Title: edge.Node.Title,
			Tags:  edge.Node.Tags,
		})
	}
	if page.HasMore {
		page.NextCursor = data.Products.PageInfo.EndCursor
	}

	return page, nil
}

// SearchProducts returns all products matching the search query, walking
// cursor pagination until exhausted.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]catalog.ProductRef, error) {
	var products []catalog.ProductRef
	var cursor string

	for {
		page, err := c.SearchProductsPage(ctx, query, cursor)
		if err != nil {
			return nil, err
		}

		products = append(products, page.Products...)

		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	return products, nil
}

// GetCollections returns all collections in the shop
func (c *Client) GetCollections(ctx context.Context) ([]catalog.Collection, error) {
	var collections []catalog.Collection
	var after *string

	for {
		variables := map[string]any{
			"first": c.config.CollectionPageSize,
		}
		if after != nil {
			variables["after"] = *after
		}

		var data listCollectionsData
		if err := c.execute(ctx, listCollectionsQuery, variables, &data); err != nil {
			return nil, err
		}

		for _, edge := range data.Collections.Edges {
			collections = append(collections, catalog.Collection{
				ID:     edge.Node.ID,
				Title:  edge.Node.Title,
				Handle: edge.Node.Handle,
			})
		}

		if !data.Collections.PageInfo.HasNextPage {
			break
		}
		cursor := data.Collections.PageInfo.EndCursor
		after = &cursor
	}

	return collections, nil
}

// AddTagToProduct adds a tag to a product if not already present.
// Membership is case-insensitive and existing tag order is preserved.
func (c *Client) AddTagToProduct(ctx context.Context, productID, tag string) TagResult {
	var lookup getProductData
	err := c.execute(ctx, getProductQuery, map[string]any{"id": productID}, &lookup)
	if err != nil {
		return TagResult{
			ProductID: productID,
			Action:    audit.TagActionFailed,
			Message:   err.Error(),
		}
	}

	if lookup.Product == nil {
		return TagResult{
			ProductID: productID,
			Action:    audit.TagActionFailed,
			Message:   fmt.Sprintf("product not found: %s", productID),
		}
	}

	product := catalog.ProductRef{
		ID:    lookup.Product.ID,
		Title: lookup.Product.Title,
		Tags:  lookup.Product.Tags,
	}
	if product.HasTag(tag) {
		return TagResult{
			ProductID: productID,
			Action:    audit.TagActionSkipped,
			Success:   true,
			Message:   fmt.Sprintf("tag %q already present", tag),
		}
	}

	newTags := append(append([]string{}, product.Tags...), tag)
	variables := map[string]any{
		"input": map[string]any{
			"id":   productID,
			"tags": newTags,
		},
	}

	var update productUpdateData
	if err := c.execute(ctx, productUpdateMutation, variables, &update); err != nil {
		return TagResult{
			ProductID: productID,
			Action:    audit.TagActionFailed,
			Message:   err.Error(),
		}
	}

	if len(update.ProductUpdate.UserErrors) > 0 {
		return TagResult{
			ProductID: productID,
			Action:    audit.TagActionFailed,
			Message:   joinUserErrors(update.ProductUpdate.UserErrors),
		}
	}

	return TagResult{
		ProductID: productID,
		Action:    audit.TagActionAdded,
		Success:   true,
	}
}

// CreateProduct creates a product and returns its platform ID
func (c *Client) CreateProduct(ctx context.Context, input NewProduct) (string, error) {
	productInput := map[string]any{
		"title":       input.Title,
		"productType": input.ProductType,
		"tags":        input.Tags,
		"variants": []map[string]any{
			{"price": input.Price.StringFixed(2)},
		},
	}
	if input.Description != "" {
		productInput["descriptionHtml"] = input.Description
	}
	if input.Vendor != "" {
		productInput["vendor"] = input.Vendor
	}
	variables := map[string]any{"input": productInput}

	var data productCreateData
	if err := c.execute(ctx, productCreateMutation, variables, &data); err != nil {
		return "", err
	}

	if len(data.ProductCreate.UserErrors) > 0 {
		return "", fmt.Errorf("shopify: product create rejected: %s", joinUserErrors(data.ProductCreate.UserErrors))
	}
	if data.ProductCreate.Product == nil {
		return "", fmt.Errorf("shopify: product create returned no product")
	}

	return data.ProductCreate.Product.ID, nil
}

// DeleteProduct deletes a product by its platform ID
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	variables := map[string]any{
		"input": map[string]any{"id": productID},
	}

	var data productDeleteData
	if err := c.execute(ctx, productDeleteMutation, variables, &data); err != nil {
		return err
	}

	if len(data.ProductDelete.UserErrors) > 0 {
		return fmt.Errorf("shopify: product delete rejected: %s", joinUserErrors(data.ProductDelete.UserErrors))
	}

	return nil
}

// ShopName fetches the shop name, useful as a connection check
func (c *Client) ShopName(ctx context.Context) (string, error) {
	var data shopData
	if err := c.execute(ctx, shopNameQuery, nil, &data); err != nil {
		return "", err
	}
	return data.Shop.Name, nil
}

// execute POSTs a GraphQL document with bounded retries and throttle pacing.
// Transport failures, HTTP error statuses and 429 responses all consume the
// same attempt budget. Top-level GraphQL errors are not retried.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("shopify: failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		resp, err := c.doRequest(ctx, body)
		if err != nil {
			lastErr = err
			c.logger.Warn("request attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))

			if attempt == c.config.MaxRetries {
				break
			}
			if wait, ok := retryAfter(err); ok {
				c.sleep(wait)
			} else {
				c.sleep(time.Duration(1<<attempt) * time.Second)
			}
			continue
		}

		if len(resp.Errors) > 0 {
			return graphQLErrors(resp.Errors)
		}

		c.paceForThrottle(resp.Extensions)

		if out != nil && resp.Data != nil {
			if err := json.Unmarshal(resp.Data, out); err != nil {
				return fmt.Errorf("shopify: failed to parse response data: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrMaxRetriesExceeded, c.config.MaxRetries, lastErr)
}

// rateLimitedError carries the server-requested delay from a 429 response
type rateLimitedError struct {
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("shopify: rate limited, retry after %s", e.retryAfter)
}

// retryAfter extracts the server-requested delay if err is a 429
func retryAfter(err error) (time.Duration, bool) {
	if rl, ok := err.(*rateLimitedError); ok {
		return rl.retryAfter, true
	}
	return 0, false
}

// doRequest performs a single HTTP round trip to the GraphQL endpoint
func (c *Client) doRequest(ctx context.Context, body []byte) (*graphQLResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.EndpointURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &rateLimitedError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("shopify: HTTP %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse response: %w", err)
	}

	return &envelope, nil
}

// parseRetryAfter parses a Retry-After header value in seconds
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs * float64(time.Second))
}

// paceForThrottle sleeps when the API cost bucket runs low, long enough for
// the bucket to refill back to the configured floor.
func (c *Client) paceForThrottle(ext *extensions) {
	if ext == nil || ext.Cost == nil || ext.Cost.ThrottleStatus == nil {
		return
	}

	status := ext.Cost.ThrottleStatus
	floor := float64(c.config.ThrottleFloor)
	if status.CurrentlyAvailable >= floor {
		return
	}

	restoreRate := status.RestoreRate
	if restoreRate <= 0 {
		restoreRate = defaultRestoreRate
	}

	waitSecs := (floor - status.CurrentlyAvailable) / restoreRate
	if waitSecs < 1 {
		waitSecs = 1
	}

	c.logger.Debug("throttle low, pacing",
		zap.Float64("currently_available", status.CurrentlyAvailable),
		zap.Float64("restore_rate", restoreRate),
		zap.Float64("wait_seconds", waitSecs))

	c.sleep(time.Duration(waitSecs * float64(time.Second)))
}
