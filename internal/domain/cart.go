package domain

import "time"

// ProductSnapshot is a denormalized copy of a product's display fields,
// embedded in cart lines and wishlist entries so rendering needs no lookup.
type ProductSnapshot struct {
	ID        int64   `json:"id"`
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	MainImage string  `json:"main_image,omitempty"`
	PriceKES  float64 `json:"price_kes"`
}

// VariantSnapshot is a denormalized copy of a product variant (size, colour).
type VariantSnapshot struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	PriceKES float64 `json:"price_kes"`
}

// CartItem is a single line in the cart. SubtotalKES comes from the server
// and is never recomputed locally.
type CartItem struct {
	ID          int64            `json:"id"`
	Product     ProductSnapshot  `json:"product"`
	Variant     *VariantSnapshot `json:"variant,omitempty"`
	Quantity    int              `json:"quantity"`
	SubtotalKES float64          `json:"subtotal_kes"`
	AddedAt     time.Time        `json:"added_at"`
}

// Cart is the server-synced shopping cart. The server is the sole source of
// truth for item_count and monetary totals; the client replaces the whole
// struct with whatever the server returns after each mutation.
type Cart struct {
	ID        int64      `json:"id"`
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"item_count"`
	TotalKES  float64    `json:"total_kes"`
	TotalUSD  float64    `json:"total_usd"`
	Currency  string     `json:"currency"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || c.ItemCount == 0
}
