package domain

import "time"

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status constants.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment method constants.
const (
	PaymentMethodMpesa  = "mpesa"
	PaymentMethodPaypal = "paypal"
	PaymentMethodCOD    = "cod"
)

// OrderItem is a purchased line, denormalized at order time.
type OrderItem struct {
	ID          int64            `json:"id"`
	Product     ProductSnapshot  `json:"product"`
	Variant     *VariantSnapshot `json:"variant,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitPrice   float64          `json:"unit_price"`
	SubtotalKES float64          `json:"subtotal_kes"`
}

// Order is the client's read-only view of a placed order. After creation the
// client only re-fetches it; it never mutates order state locally.
type Order struct {
	ID              int64       `json:"id"`
	OrderNumber     string      `json:"order_number"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentMethod   string      `json:"payment_method"`
	Currency        string      `json:"currency"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	ShippingFee     float64     `json:"shipping_fee"`
	Tax             float64     `json:"tax"`
	Discount        float64     `json:"discount"`
	Total           float64     `json:"total"`
	FullName        string      `json:"full_name"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	DeliveryType    string      `json:"delivery_type"`
	ShippingAddress string      `json:"shipping_address,omitempty"`
	ShippingCity    string      `json:"shipping_city,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// IsPaid reports whether payment for the order has been captured.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// ValidPaymentMethods returns the payment methods the checkout accepts.
func ValidPaymentMethods() []string {
	return []string{PaymentMethodMpesa, PaymentMethodPaypal, PaymentMethodCOD}
}
