package catalog

import "strings"

// ProductRef is a lightweight reference to a remote product. Identity is
// the opaque ID issued by the platform (a gid:// URI for Shopify). Tags
// preserve the server-returned order.
type ProductRef struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// HasTag reports whether the product already carries the given tag.
// Membership is case-insensitive even though tags are stored case-sensitively.
func (p ProductRef) HasTag(tag string) bool {
	for _, existing := range p.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// Collection is a remote product collection, listed for the selector UI.
type Collection struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}
