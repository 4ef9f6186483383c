package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSet_QueryExpression(t *testing.T) {
	tests := []struct {
		name    string
		filters FilterSet
		want    string
	}{
		{
			name:    "empty filter set matches everything",
			filters: FilterSet{},
			want:    "*",
		},
		{
			name:    "keyword only",
			filters: FilterSet{Keyword: "shirt"},
			want:    "title:*shirt*",
		},
		{
			name:    "product type only",
			filters: FilterSet{ProductType: "Apparel"},
			want:    "product_type:'Apparel'",
		},
		{
			name:    "collection only",
			filters: FilterSet{CollectionID: "gid://shopify/Collection/42"},
			want:    "collection_id:gid://shopify/Collection/42",
		},
		{
			name:    "keyword and product type joined with AND",
			filters: FilterSet{Keyword: "shirt", ProductType: "Apparel"},
			want:    "title:*shirt* AND product_type:'Apparel'",
		},
		{
			name: "all three fields",
			filters: FilterSet{
				Keyword:      "hoodie",
				ProductType:  "Apparel",
				CollectionID: "123",
			},
			want: "title:*hoodie* AND product_type:'Apparel' AND collection_id:123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.QueryExpression())
		})
	}
}

func TestFilterSet_IsEmpty(t *testing.T) {
	assert.True(t, FilterSet{}.IsEmpty())
	assert.False(t, FilterSet{Keyword: "x"}.IsEmpty())
	assert.False(t, FilterSet{ProductType: "x"}.IsEmpty())
	assert.False(t, FilterSet{CollectionID: "x"}.IsEmpty())
}

func TestProductRef_HasTag(t *testing.T) {
	product := ProductRef{
		ID:    "gid://shopify/Product/1",
		Title: "Red Cotton T-Shirt",
		Tags:  []string{"sale", "Summer", "Cotton"},
	}

	assert.True(t, product.HasTag("sale"))
	assert.True(t, product.HasTag("Sale"), "membership test is case-insensitive")
	assert.True(t, product.HasTag("SUMMER"))
	assert.False(t, product.HasTag("winter"))
	assert.False(t, ProductRef{}.HasTag("anything"))
}
