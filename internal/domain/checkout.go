package domain

// Delivery type constants.
const (
	DeliveryTypeHome   = "home"
	DeliveryTypePickup = "pickup"
)

// CouponResult is the discount descriptor returned by coupon validation.
// The discount amount is computed server-side against the submitted cart total.
type CouponResult struct {
	Code          string  `json:"code"`
	Description   string  `json:"description,omitempty"`
	Discount      float64 `json:"discount"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
}

// Country is a shipping destination country.
type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// County is a Kenyan county used for delivery selection.
type County struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PickupStation is a collection point within a county.
type PickupStation struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	CountySlug     string  `json:"county_slug"`
	Address        string  `json:"address,omitempty"`
	DeliveryFeeKES float64 `json:"delivery_fee_kes"`
}

// STKPushResult is the acknowledgement of a mobile-money push dispatch. The
// push itself completes out-of-band on the payer's phone.
type STKPushResult struct {
	CheckoutRequestID string `json:"checkout_request_id"`
	CustomerMessage   string `json:"customer_message,omitempty"`
}

// PaymentStatusResult is a single observation from the payment status poll.
type PaymentStatusResult struct {
	OrderID       int64  `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
	Receipt       string `json:"receipt,omitempty"`
}

// PaypalOrderResult carries the provider handle for an external redirect payment.
type PaypalOrderResult struct {
	PaypalOrderID string `json:"paypal_order_id"`
	ApprovalURL   string `json:"approval_url"`
}
