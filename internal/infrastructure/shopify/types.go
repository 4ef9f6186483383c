package shopify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// graphQLRequest is the JSON body POSTed to the Admin GraphQL endpoint
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the generic Admin GraphQL response envelope
type graphQLResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []GraphQLError  `json:"errors"`
	Extensions *extensions     `json:"extensions"`
}

// GraphQLError is a top-level error returned by the GraphQL endpoint
type GraphQLError struct {
	Message string `json:"message"`
}

// Error implements the error interface for a set of GraphQL errors
type graphQLErrors []GraphQLError

func (e graphQLErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Message
	}
	return fmt.Sprintf("shopify: graphql errors: %s", strings.Join(msgs, "; "))
}

type extensions struct {
	Cost *queryCost `json:"cost"`
}

type queryCost struct {
	RequestedQueryCost float64         `json:"requestedQueryCost"`
	ActualQueryCost    float64         `json:"actualQueryCost"`
	ThrottleStatus     *throttleStatus `json:"throttleStatus"`
}

// throttleStatus reports the API cost bucket state after a request
type throttleStatus struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// userError is a field-level validation error returned inside mutation payloads
type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// joinUserErrors flattens mutation userErrors into a single message
func joinUserErrors(errs []userError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// pageInfo carries cursor pagination state
type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// productNode is the product shape selected by search and lookup queries
type productNode struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

type productEdge struct {
	Cursor string      `json:"cursor"`
	Node   productNode `json:"node"`
}

// searchProductsData is the data payload for the product search query
type searchProductsData struct {
	Products struct {
		Edges    []productEdge `json:"edges"`
		PageInfo pageInfo      `json:"pageInfo"`
	} `json:"products"`
}

type collectionNode struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

type collectionEdge struct {
	Cursor string         `json:"cursor"`
	Node   collectionNode `json:"node"`
}

// listCollectionsData is the data payload for the collection listing query
type listCollectionsData struct {
	Collections struct {
		Edges    []collectionEdge `json:"edges"`
		PageInfo pageInfo         `json:"pageInfo"`
	} `json:"collections"`
}

// getProductData is the data payload for the single-product lookup.
// Product is a pointer: null means the ID does not resolve.
type getProductData struct {
	Product *productNode `json:"product"`
}

// productUpdateData is the data payload for the productUpdate mutation
type productUpdateData struct {
	ProductUpdate struct {
		Product    *productNode `json:"product"`
		UserErrors []userError  `json:"userErrors"`
	} `json:"productUpdate"`
}

// productCreateData is the data payload for the productCreate mutation
type productCreateData struct {
	ProductCreate struct {
		Product    *productNode `json:"product"`
		UserErrors []userError  `json:"userErrors"`
	} `json:"productCreate"`
}

// productDeleteData is the data payload for the productDelete mutation
type productDeleteData struct {
	ProductDelete struct {
		DeletedProductID string      `json:"deletedProductId"`
		UserErrors       []userError `json:"userErrors"`
	} `json:"productDelete"`
}

// shopData is the data payload for the connection check query
type shopData struct {
	Shop struct {
		Name string `json:"name"`
	} `json:"shop"`
}
