package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/steve-ongera/amazon/internal/domain"
	apperrors "github.com/steve-ongera/amazon/pkg/errors"
	"github.com/steve-ongera/amazon/pkg/validator"
)

// PlaceOrder submits the checkout form, then dispatches to the selected
// payment flow. The server consumes the cart as part of order creation, so
// the local snapshot is re-fetched afterwards.
//
// Creation failure surfaces as a notification and no navigation happens; the
// user stays on the review step with their form intact. After a created order,
// payment failures navigate to the order view so the user can retry from
// there.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	snapshot := o.cart.Cart()
	if snapshot == nil || snapshot.IsEmpty() {
		o.notifier.Error("Your cart is empty.")
		return nil, apperrors.InvalidInput("cart is empty")
	}

	o.mu.Lock()
	form := o.form
	o.mu.Unlock()

	if err := validator.Validate(form); err != nil {
		return nil, err
	}

	order, err := o.api.CreateOrder(ctx, form)
	if err != nil {
		o.logger.ErrorContext(ctx, "order creation failed",
			slog.String("error", err.Error()),
		)
		o.notifier.Error(apperrors.UserMessage(err, "Could not place your order."))
		return nil, fmt.Errorf("create order: %w", err)
	}

	o.logger.InfoContext(ctx, "order created",
		slog.Int64("order_id", order.ID),
		slog.String("payment_method", form.PaymentMethod),
	)
	o.cart.Fetch(ctx)

	switch form.PaymentMethod {
	case domain.PaymentMethodMpesa:
		return order, o.payWithMpesa(ctx, order, form.MpesaPhone)
	case domain.PaymentMethodPaypal:
		return order, o.payWithPaypal(ctx, order)
	default:
		o.notifier.Success("Order placed. Pay on delivery.")
		o.nav.Navigate(orderSuccessPath(order.ID))
		return order, nil
	}
}

// payWithMpesa triggers the push prompt and polls until the payment resolves
// or the attempt budget runs out. Exhaustion is not a failure: the payment
// may still complete, so the user lands on the order view to check later.
func (o *Orchestrator) payWithMpesa(ctx context.Context, order *domain.Order, phone string) error {
	if _, err := o.api.MpesaSTKPush(ctx, order.ID, phone); err != nil {
		o.notifier.Error(apperrors.UserMessage(err, "Could not start M-Pesa payment."))
		o.nav.Navigate(orderPath(order.ID))
		return fmt.Errorf("mpesa stk push: %w", err)
	}

	o.notifier.Info("Check your phone and enter your M-Pesa PIN.")

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.cfg.PollInterval):
		}

		status, err := o.api.MpesaStatus(ctx, order.ID)
		if err != nil {
			pollAttemptsTotal.WithLabelValues("error").Inc()
			o.logger.WarnContext(ctx, "payment status check failed, stopping poll",
				slog.Int64("order_id", order.ID),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			o.nav.Navigate(orderPath(order.ID))
			return fmt.Errorf("payment status check: %w", err)
		}

		switch status.PaymentStatus {
		case domain.PaymentStatusPaid:
			pollAttemptsTotal.WithLabelValues("paid").Inc()
			o.notifier.Success("Payment received. Thank you!")
			o.nav.Navigate(orderSuccessPath(order.ID))
			return nil
		case domain.PaymentStatusFailed:
			pollAttemptsTotal.WithLabelValues("failed").Inc()
			o.notifier.Error("M-Pesa payment failed.")
			o.nav.Navigate(orderPath(order.ID))
			return apperrors.PaymentFailed("M-Pesa payment failed.")
		default:
			pollAttemptsTotal.WithLabelValues("pending").Inc()
		}
	}

	o.notifier.Info("We have not confirmed your payment yet. Check the order page shortly.")
	o.nav.Navigate(orderPath(order.ID))
	return nil
}

// payWithPaypal hands the browser to the provider's approval page. Capture
// happens when the redirect returns, outside this flow.
func (o *Orchestrator) payWithPaypal(ctx context.Context, order *domain.Order) error {
	result, err := o.api.PaypalCreateOrder(ctx, order.ID)
	if err != nil {
		o.notifier.Error(apperrors.UserMessage(err, "Could not start PayPal payment."))
		o.nav.Navigate(orderPath(order.ID))
		return fmt.Errorf("paypal create order: %w", err)
	}
	o.nav.Navigate(result.ApprovalURL)
	return nil
}

func orderPath(orderID int64) string {
	return fmt.Sprintf("/orders/%d", orderID)
}

func orderSuccessPath(orderID int64) string {
	return fmt.Sprintf("/orders/%d?success=1", orderID)
}
