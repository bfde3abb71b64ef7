package api

import (
	"context"
	"fmt"

	"github.com/steve-ongera/amazon/internal/domain"
)

// MpesaSTKPush triggers a mobile-money push prompt on the payer's phone for
// the given order. Completion happens out-of-band; callers discover it by
// polling MpesaStatus.
func (c *Client) MpesaSTKPush(ctx context.Context, orderID int64, phone string) (*domain.STKPushResult, error) {
	body := map[string]any{"order_id": orderID, "phone": phone}
	return post[domain.STKPushResult](ctx, c, "/payments/mpesa/stk-push/", body)
}

// MpesaStatus checks the current payment status for an order.
func (c *Client) MpesaStatus(ctx context.Context, orderID int64) (*domain.PaymentStatusResult, error) {
	return get[domain.PaymentStatusResult](ctx, c, fmt.Sprintf("/payments/mpesa/status/%d/", orderID), nil)
}

// PaypalCreateOrder requests an approval handle from the external payment
// provider for a full-page redirect.
func (c *Client) PaypalCreateOrder(ctx context.Context, orderID int64) (*domain.PaypalOrderResult, error) {
	return post[domain.PaypalOrderResult](ctx, c, "/payments/paypal/create/", map[string]any{"order_id": orderID})
}

// PaypalCapture captures an approved provider order after the redirect returns.
func (c *Client) PaypalCapture(ctx context.Context, paypalOrderID string) (*domain.PaymentStatusResult, error) {
	body := map[string]any{"paypal_order_id": paypalOrderID}
	return post[domain.PaymentStatusResult](ctx, c, "/payments/paypal/capture/", body)
}

// ValidateCoupon checks a coupon code against the current cart total and
// returns the discount descriptor on success.
func (c *Client) ValidateCoupon(ctx context.Context, code string, cartTotal float64) (*domain.CouponResult, error) {
	body := map[string]any{"code": code, "amount": cartTotal}
	return post[domain.CouponResult](ctx, c, "/coupons/validate/", body)
}
