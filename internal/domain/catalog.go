package domain

// Category is a product category.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// Brand is a product brand.
type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Logo string `json:"logo,omitempty"`
}

// ProductImage is an image attached to a product.
type ProductImage struct {
	ID        int64  `json:"id"`
	Image     string `json:"image"`
	IsPrimary bool   `json:"is_primary"`
}

// Variant is a purchasable product variation (size, colour).
type Variant struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	PriceKES float64 `json:"price_kes"`
	Stock    int     `json:"stock"`
}

// Product is the full catalogue representation of a product.
type Product struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Description     string         `json:"description,omitempty"`
	PriceKES        float64        `json:"price_kes"`
	OldPriceKES     float64        `json:"old_price_kes,omitempty"`
	DiscountPercent int            `json:"discount_percent,omitempty"`
	Rating          float64        `json:"rating,omitempty"`
	ReviewCount     int            `json:"review_count,omitempty"`
	Stock           int            `json:"stock"`
	Category        *Category      `json:"category,omitempty"`
	Brand           *Brand         `json:"brand,omitempty"`
	Images          []ProductImage `json:"images,omitempty"`
	Variants        []Variant      `json:"variants,omitempty"`
}

// Snapshot returns the denormalized display copy of the product, as embedded
// in cart lines and wishlist entries.
func (p *Product) Snapshot() ProductSnapshot {
	snap := ProductSnapshot{
		ID:       p.ID,
		Slug:     p.Slug,
		Name:     p.Name,
		PriceKES: p.PriceKES,
	}
	for _, img := range p.Images {
		if img.IsPrimary {
			snap.MainImage = img.Image
			break
		}
	}
	return snap
}

// Banner is a homepage promotional banner.
type Banner struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
	Link  string `json:"link,omitempty"`
}

// ExchangeRates holds currency conversion rates relative to a base currency.
type ExchangeRates struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}
