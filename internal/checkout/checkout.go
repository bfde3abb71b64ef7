// Package checkout walks a cart through the delivery, payment, and review
// steps and hands the resulting order to the selected payment flow. The
// server owns all money math for the real order; the totals here are a
// display-only preview of what the server will charge.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/steve-ongera/amazon/internal/api"
	"github.com/steve-ongera/amazon/internal/cart"
	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/internal/notify"
	apperrors "github.com/steve-ongera/amazon/pkg/errors"
	"github.com/steve-ongera/amazon/pkg/validator"
)

// Checkout steps, in order.
const (
	StepDelivery = "delivery"
	StepPayment  = "payment"
	StepReview   = "review"
)

var stepOrder = []string{StepDelivery, StepPayment, StepReview}

// Display pricing constants, mirroring the server's charging rules.
const (
	// HomeDeliveryFeeKES is the flat fee for door-to-door delivery.
	HomeDeliveryFeeKES = 350.0
	// VATRate is applied to the goods subtotal.
	VATRate = 0.16
)

// Config tunes the mobile-money polling loop.
type Config struct {
	// PollInterval is how long to wait between payment status checks.
	PollInterval time.Duration
	// MaxAttempts bounds the number of status checks per payment.
	MaxAttempts int
}

// DefaultConfig returns the production polling cadence.
func DefaultConfig() Config {
	return Config{
		PollInterval: 3 * time.Second,
		MaxAttempts:  20,
	}
}

// Orchestrator drives one checkout at a time. Safe for concurrent use.
type Orchestrator struct {
	api      *api.Client
	cart     *cart.Store
	notifier *notify.Channel
	nav      api.Navigator
	logger   *slog.Logger
	cfg      Config

	mu      sync.Mutex
	step    string
	form    api.CreateOrderInput
	station *domain.PickupStation
	coupon  *domain.CouponResult
}

// New creates a checkout orchestrator positioned at the delivery step.
func New(client *api.Client, cartStore *cart.Store, notifier *notify.Channel, nav api.Navigator, log *slog.Logger, cfg Config) *Orchestrator {
	if nav == nil {
		nav = api.NopNavigator
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &Orchestrator{
		api:      client,
		cart:     cartStore,
		notifier: notifier,
		nav:      nav,
		logger:   log,
		cfg:      cfg,
		step:     StepDelivery,
	}
}

// Step returns the current checkout step.
func (o *Orchestrator) Step() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// Form returns a copy of the accumulated checkout form.
func (o *Orchestrator) Form() api.CreateOrderInput {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form
}

// SetDelivery records the delivery details gathered at the first step. For
// pickup delivery the selected station carries its own fee.
func (o *Orchestrator) SetDelivery(fullName, email, phone, deliveryType, address, city string, station *domain.PickupStation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.FullName = fullName
	o.form.Email = email
	o.form.Phone = phone
	o.form.DeliveryType = deliveryType
	o.form.ShippingAddress = address
	o.form.ShippingCity = city
	o.station = station
	if station != nil {
		id := station.ID
		o.form.PickupStationID = &id
	} else {
		o.form.PickupStationID = nil
	}
}

// SetPayment records the payment method and, for mobile money, the phone the
// push prompt goes to.
func (o *Orchestrator) SetPayment(method, mpesaPhone string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form.PaymentMethod = method
	o.form.MpesaPhone = mpesaPhone
}

// Next validates the current step and advances. The step does not change
// when validation fails.
func (o *Orchestrator) Next() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.validateStepLocked(o.step); err != nil {
		return err
	}
	for i, s := range stepOrder {
		if s == o.step && i < len(stepOrder)-1 {
			o.step = stepOrder[i+1]
			return nil
		}
	}
	return nil
}

// Back returns to the previous step. Going back never validates.
func (o *Orchestrator) Back() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, s := range stepOrder {
		if s == o.step && i > 0 {
			o.step = stepOrder[i-1]
			return
		}
	}
}

// validateStepLocked checks only the fields the given step collects.
func (o *Orchestrator) validateStepLocked(step string) error {
	switch step {
	case StepDelivery:
		form := struct {
			FullName     string `validate:"required"`
			Email        string `validate:"required,email"`
			Phone        string `validate:"required"`
			DeliveryType string `validate:"required,oneof=home pickup"`
		}{o.form.FullName, o.form.Email, o.form.Phone, o.form.DeliveryType}
		if err := validator.Validate(form); err != nil {
			return err
		}
		if o.form.DeliveryType == domain.DeliveryTypeHome && o.form.ShippingAddress == "" {
			return apperrors.Validation("Shipping address is required for home delivery.",
				map[string]string{"shipping_address": "is required"})
		}
		if o.form.DeliveryType == domain.DeliveryTypePickup && o.form.PickupStationID == nil {
			return apperrors.Validation("Select a pickup station.",
				map[string]string{"pickup_station_id": "is required"})
		}
		return nil
	case StepPayment:
		form := struct {
			PaymentMethod string `validate:"required,oneof=mpesa paypal cod"`
		}{o.form.PaymentMethod}
		if err := validator.Validate(form); err != nil {
			return err
		}
		if o.form.PaymentMethod == domain.PaymentMethodMpesa && o.form.MpesaPhone == "" {
			return apperrors.Validation("Enter the M-Pesa phone number.",
				map[string]string{"mpesa_phone": "is required"})
		}
		return nil
	default:
		return nil
	}
}

// ApplyCoupon validates a coupon against the current cart total and records
// the discount for the totals preview. An invalid code clears any previously
// applied coupon.
func (o *Orchestrator) ApplyCoupon(ctx context.Context, code string) error {
	snapshot := o.cart.Cart()
	var total float64
	if snapshot != nil {
		total = snapshot.TotalKES
	}

	result, err := o.api.ValidateCoupon(ctx, code, total)
	if err != nil {
		o.mu.Lock()
		o.coupon = nil
		o.form.CouponCode = ""
		o.mu.Unlock()
		o.notifier.Error(apperrors.UserMessage(err, "Invalid coupon code."))
		return fmt.Errorf("validate coupon: %w", err)
	}

	o.mu.Lock()
	o.coupon = result
	o.form.CouponCode = result.Code
	o.mu.Unlock()
	o.notifier.Success("Coupon applied.")
	return nil
}

// Coupon returns the applied discount descriptor, or nil.
func (o *Orchestrator) Coupon() *domain.CouponResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.coupon
}
