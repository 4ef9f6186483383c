package catalog

import (
	"fmt"
	"strings"
)

// FilterSet describes the server-side product search criteria. All fields
// are optional; present fields are combined with logical AND. An empty
// FilterSet matches the whole catalog.
type FilterSet struct {
	Keyword      string `json:"keyword"`
	ProductType  string `json:"product_type"`
	CollectionID string `json:"collection_id"`
}

// IsEmpty returns true when no filter field is set
func (f FilterSet) IsEmpty() bool {
	return f.Keyword == "" && f.ProductType == "" && f.CollectionID == ""
}

// QueryExpression builds the Shopify search query string for this filter
// set. Present fields are joined with " AND "; an empty set produces the
// wildcard "*". Special characters in filter values are not escaped; this
// is a known limitation inherited from the search syntax.
func (f FilterSet) QueryExpression() string {
	conditions := make([]string, 0, 3)

	if f.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("title:*%s*", f.Keyword))
	}
	if f.ProductType != "" {
		conditions = append(conditions, fmt.Sprintf("product_type:'%s'", f.ProductType))
	}
	if f.CollectionID != "" {
		conditions = append(conditions, fmt.Sprintf("collection_id:%s", f.CollectionID))
	}

	if len(conditions) == 0 {
		return "*"
	}
	return strings.Join(conditions, " AND ")
}
