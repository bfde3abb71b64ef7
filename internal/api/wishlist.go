package api

import (
	"context"
	"fmt"

	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/pkg/pagination"
)

// GetWishlist fetches the user's full wishlist.
func (c *Client) GetWishlist(ctx context.Context) ([]domain.WishlistEntry, error) {
	page, err := get[pagination.Page[domain.WishlistEntry]](ctx, c, "/wishlist/", nil)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// AddToWishlist saves a product and returns the created entry.
func (c *Client) AddToWishlist(ctx context.Context, productID int64) (*domain.WishlistEntry, error) {
	return post[domain.WishlistEntry](ctx, c, "/wishlist/", map[string]any{"product_id": productID})
}

// RemoveFromWishlist deletes an entry by its entry ID (not the product ID).
func (c *Client) RemoveFromWishlist(ctx context.Context, entryID int64) error {
	return del(ctx, c, fmt.Sprintf("/wishlist/%d/", entryID))
}
