package api

import (
	"context"
	"net/http"

	"github.com/steve-ongera/amazon/internal/domain"
)

// AddCartItemInput is the payload for adding a product to the cart.
type AddCartItemInput struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// GetCart fetches the current server cart.
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	return get[domain.Cart](ctx, c, "/cart/", nil)
}

// AddCartItem adds a product line and returns the refreshed cart snapshot.
func (c *Client) AddCartItem(ctx context.Context, input AddCartItemInput) (*domain.Cart, error) {
	return post[domain.Cart](ctx, c, "/cart/add_item/", input)
}

// UpdateCartItem sets a line's quantity and returns the refreshed cart
// snapshot. Quantity semantics (e.g. whether 0 removes the line) are
// server-defined; the client forwards the value as-is.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*domain.Cart, error) {
	var out domain.Cart
	body := map[string]any{"item_id": itemID, "quantity": quantity}
	err := c.Do(ctx, RequestSpec{Method: http.MethodPatch, Path: "/cart/update_item/", Body: body}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveCartItem removes a line and returns the refreshed cart snapshot.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) (*domain.Cart, error) {
	return post[domain.Cart](ctx, c, "/cart/remove_item/", map[string]any{"item_id": itemID})
}

// ClearCart empties the cart and returns the refreshed (empty) snapshot.
func (c *Client) ClearCart(ctx context.Context) (*domain.Cart, error) {
	return post[domain.Cart](ctx, c, "/cart/clear/", nil)
}
