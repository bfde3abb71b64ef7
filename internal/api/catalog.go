package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/pkg/pagination"
)

// ProductFilter holds the filter, sort, and pagination parameters accepted by
// the product list endpoint.
type ProductFilter struct {
	Search       string
	CategorySlug string
	BrandSlug    string
	MinPriceKES  float64
	MaxPriceKES  float64
	Ordering     string // e.g. "price_kes", "-created_at"
	Page         pagination.Params
}

// query encodes the filter into URL query values.
func (f ProductFilter) query() url.Values {
	v := f.Page.Query()
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.CategorySlug != "" {
		v.Set("category__slug", f.CategorySlug)
	}
	if f.BrandSlug != "" {
		v.Set("brand__slug", f.BrandSlug)
	}
	if f.MinPriceKES > 0 {
		v.Set("min_price", fmt.Sprintf("%g", f.MinPriceKES))
	}
	if f.MaxPriceKES > 0 {
		v.Set("max_price", fmt.Sprintf("%g", f.MaxPriceKES))
	}
	if f.Ordering != "" {
		v.Set("ordering", f.Ordering)
	}
	return v
}

// ListProducts fetches a page of products matching the filter.
func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) (*pagination.Page[domain.Product], error) {
	return get[pagination.Page[domain.Product]](ctx, c, "/products/", filter.query())
}

// GetProduct fetches a single product by slug.
func (c *Client) GetProduct(ctx context.Context, slug string) (*domain.Product, error) {
	return get[domain.Product](ctx, c, "/products/"+url.PathEscape(slug)+"/", nil)
}

// ListCategories fetches all categories.
func (c *Client) ListCategories(ctx context.Context) (*pagination.Page[domain.Category], error) {
	return get[pagination.Page[domain.Category]](ctx, c, "/categories/", nil)
}

// GetCategory fetches a single category by slug.
func (c *Client) GetCategory(ctx context.Context, slug string) (*domain.Category, error) {
	return get[domain.Category](ctx, c, "/categories/"+url.PathEscape(slug)+"/", nil)
}

// ListBrands fetches all brands.
func (c *Client) ListBrands(ctx context.Context) (*pagination.Page[domain.Brand], error) {
	return get[pagination.Page[domain.Brand]](ctx, c, "/brands/", nil)
}

// GetBrand fetches a single brand by slug.
func (c *Client) GetBrand(ctx context.Context, slug string) (*domain.Brand, error) {
	return get[domain.Brand](ctx, c, "/brands/"+url.PathEscape(slug)+"/", nil)
}

// ListBanners fetches active homepage banners.
func (c *Client) ListBanners(ctx context.Context) (*pagination.Page[domain.Banner], error) {
	return get[pagination.Page[domain.Banner]](ctx, c, "/banners/", nil)
}

// RecentlyViewed fetches the user's recently viewed products.
func (c *Client) RecentlyViewed(ctx context.Context) (*pagination.Page[domain.Product], error) {
	return get[pagination.Page[domain.Product]](ctx, c, "/recently-viewed/", nil)
}

// ExchangeRates fetches current currency conversion rates.
func (c *Client) ExchangeRates(ctx context.Context) (*domain.ExchangeRates, error) {
	return get[domain.ExchangeRates](ctx, c, "/exchange-rates/", nil)
}
