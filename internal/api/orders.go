package api

import (
	"context"
	"fmt"

	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/pkg/pagination"
)

// CreateOrderInput is the full checkout form submitted as a single
// authoritative order-creation request.
type CreateOrderInput struct {
	FullName         string `json:"full_name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required"`
	DeliveryType     string `json:"delivery_type" validate:"required,oneof=home pickup"`
	ShippingAddress  string `json:"shipping_address,omitempty"`
	ShippingCity     string `json:"shipping_city,omitempty"`
	ShippingCountyID *int64 `json:"shipping_county_id,omitempty"`
	PickupStationID  *int64 `json:"pickup_station_id,omitempty"`
	PaymentMethod    string `json:"payment_method" validate:"required,oneof=mpesa paypal cod"`
	MpesaPhone       string `json:"mpesa_phone,omitempty"`
	CouponCode       string `json:"coupon_code,omitempty"`
	Currency         string `json:"currency,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// ListOrders fetches a page of the user's orders.
func (c *Client) ListOrders(ctx context.Context, page pagination.Params) (*pagination.Page[domain.Order], error) {
	return get[pagination.Page[domain.Order]](ctx, c, "/orders/", page.Query())
}

// GetOrder fetches a single order by ID.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return get[domain.Order](ctx, c, fmt.Sprintf("/orders/%d/", orderID), nil)
}

// CreateOrder places an order from the submitted checkout form.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	return post[domain.Order](ctx, c, "/orders/", input)
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return post[domain.Order](ctx, c, fmt.Sprintf("/orders/%d/cancel/", orderID), nil)
}
