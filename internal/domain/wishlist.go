package domain

import (
	"strconv"
	"time"
)

// WishlistEntry is a saved product. The entry ID is distinct from the product
// ID: removal is keyed by entry ID, membership checks by product ID or slug.
type WishlistEntry struct {
	ID      int64           `json:"id"`
	Product ProductSnapshot `json:"product"`
	AddedAt time.Time       `json:"added_at"`
}

// MatchesProduct reports whether the entry's product matches the given
// reference. Call sites key wishlist lookups by numeric product ID or by
// slug depending on where they sit, so both forms are accepted.
func (e WishlistEntry) MatchesProduct(ref any) bool {
	switch v := ref.(type) {
	case int64:
		return e.Product.ID == v
	case int:
		return e.Product.ID == int64(v)
	case string:
		if e.Product.Slug == v {
			return true
		}
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return e.Product.ID == id
		}
		return false
	default:
		return false
	}
}
