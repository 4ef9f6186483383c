package shopify

import (
	"errors"
	"fmt"
	"time"
)

// Config holds configuration for the Shopify Admin GraphQL API integration
type Config struct {
	// ShopDomain is the myshopify domain, e.g. "my-store.myshopify.com"
	ShopDomain string
	// AccessToken is the Admin API access token for the shop
	AccessToken string
	// APIVersion is the Admin API version, e.g. "2024-10"
	APIVersion string
	// APIBaseURL overrides the scheme+host part of the endpoint.
	// Empty means "https://{ShopDomain}".
	APIBaseURL string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// MaxRetries is the total attempt budget per request
	MaxRetries int
	// SearchPageSize is the page size for product search pagination
	SearchPageSize int
	// CollectionPageSize is the page size for collection pagination
	CollectionPageSize int
	// ThrottleFloor is the cost-point level below which the client pauses
	// to let the API throttle bucket refill
	ThrottleFloor int
}

const (
	// DefaultAPIVersion is the Admin API version used when none is configured
	DefaultAPIVersion = "2024-10"
	// defaultRestoreRate is assumed when the API omits the restore rate
	defaultRestoreRate = 50.0
	// defaultRetryAfter is used when a 429 response has no Retry-After header
	defaultRetryAfter = 2 * time.Second
)

// Errors for Shopify configuration and request handling
var (
	ErrConfigMissingShopDomain  = errors.New("shopify: shop domain is required")
	ErrConfigMissingAccessToken = errors.New("shopify: access token is required")
	ErrMaxRetriesExceeded       = errors.New("shopify: max retries exceeded")
)

// NewConfig creates a new Shopify configuration with defaults
func NewConfig(shopDomain, accessToken string) *Config {
	return &Config{
		ShopDomain:         shopDomain,
		AccessToken:        accessToken,
		APIVersion:         DefaultAPIVersion,
		Timeout:            30 * time.Second,
		MaxRetries:         3,
		SearchPageSize:     50,
		CollectionPageSize: 250,
		ThrottleFloor:      100,
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.ShopDomain == "" {
		return ErrConfigMissingShopDomain
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.SearchPageSize <= 0 {
		c.SearchPageSize = 50
	}
	if c.CollectionPageSize <= 0 {
		c.CollectionPageSize = 250
	}
	if c.ThrottleFloor <= 0 {
		c.ThrottleFloor = 100
	}
	return nil
}

// EndpointURL returns the full GraphQL endpoint URL
func (c *Config) EndpointURL() string {
	base := c.APIBaseURL
	if base == "" {
		base = "https://" + c.ShopDomain
	}
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", base, c.APIVersion)
}
