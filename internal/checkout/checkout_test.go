package checkout

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve-ongera/amazon/internal/api"
	"github.com/steve-ongera/amazon/internal/apitest"
	"github.com/steve-ongera/amazon/internal/cart"
	"github.com/steve-ongera/amazon/internal/credstore"
	"github.com/steve-ongera/amazon/internal/domain"
	"github.com/steve-ongera/amazon/internal/notify"
	apperrors "github.com/steve-ongera/amazon/pkg/errors"
	"github.com/steve-ongera/amazon/pkg/httpclient"
	"github.com/steve-ongera/amazon/pkg/logger"
)

type fixture struct {
	orch     *Orchestrator
	cart     *cart.Store
	notifier *notify.Channel
	nav      *navRecorder
}

type navRecorder struct {
	paths []string
}

func (n *navRecorder) Navigate(path string) { n.paths = append(n.paths, path) }

func newFixture(t *testing.T, srv *apitest.Server) *fixture {
	t.Helper()
	log := logger.NewWithWriter("checkout-test", "error", io.Discard)
	creds := credstore.NewMemory()
	require.NoError(t, creds.Save(context.Background(), domain.TokenPair{
		Access:  apitest.ValidAccess,
		Refresh: apitest.ValidRefresh,
	}))
	client := api.New(srv.URL, httpclient.New(httpclient.Config{}), creds, api.NopNavigator, log)
	notifier := notify.NewChannel(log)
	t.Cleanup(notifier.Close)
	cartStore := cart.NewStore(client, notifier, log)
	nav := &navRecorder{}
	orch := New(client, cartStore, notifier, nav, log, Config{
		PollInterval: time.Millisecond,
		MaxAttempts:  20,
	})
	return &fixture{orch: orch, cart: cartStore, notifier: notifier, nav: nav}
}

func fillValidForm(orch *Orchestrator, method string) {
	orch.SetDelivery("John Kamau", "john@example.com", "+254700000001",
		domain.DeliveryTypeHome, "123 Moi Avenue", "Nairobi", nil)
	orch.SetPayment(method, "+254700000001")
}

func TestSteps_AdvanceAndBack(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	f := newFixture(t, srv)
	assert.Equal(t, StepDelivery, f.orch.Step())

	// Empty delivery details keep the step where it is.
	require.Error(t, f.orch.Next())
	assert.Equal(t, StepDelivery, f.orch.Step())

	f.orch.SetDelivery("John Kamau", "john@example.com", "+254700000001",
		domain.DeliveryTypeHome, "123 Moi Avenue", "Nairobi", nil)
	require.NoError(t, f.orch.Next())
	assert.Equal(t, StepPayment, f.orch.Step())

	f.orch.SetPayment(domain.PaymentMethodCOD, "")
	require.NoError(t, f.orch.Next())
	assert.Equal(t, StepReview, f.orch.Step())

	// Review is terminal for Next.
	require.NoError(t, f.orch.Next())
	assert.Equal(t, StepReview, f.orch.Step())

	f.orch.Back()
	assert.Equal(t, StepPayment, f.orch.Step())
	f.orch.Back()
	f.orch.Back()
	assert.Equal(t, StepDelivery, f.orch.Step())
}

func TestSteps_HomeDeliveryRequiresAddress(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	f := newFixture(t, srv)
	f.orch.SetDelivery("John Kamau", "john@example.com", "+254700000001",
		domain.DeliveryTypeHome, "", "", nil)

	err := f.orch.Next()
	require.Error(t, err)
	assert.Contains(t, apperrors.FieldErrors(err), "shipping_address")
}

func TestSteps_PickupRequiresStation(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	f := newFixture(t, srv)
	f.orch.SetDelivery("John Kamau", "john@example.com", "+254700000001",
		domain.DeliveryTypePickup, "", "", nil)

	err := f.orch.Next()
	require.Error(t, err)
	assert.Contains(t, apperrors.FieldErrors(err), "pickup_station_id")
}

func TestSteps_MpesaRequiresPhone(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	f := newFixture(t, srv)
	f.orch.SetDelivery("John Kamau", "john@example.com", "+254700000001",
		domain.DeliveryTypeHome, "123 Moi Avenue", "Nairobi", nil)
	require.NoError(t, f.orch.Next())

	f.orch.SetPayment(domain.PaymentMethodMpesa, "")
	err := f.orch.Next()
	require.Error(t, err)
	assert.Contains(t, apperrors.FieldErrors(err), "mpesa_phone")
}

func TestTotals_HomeDeliveryWithCoupon(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	srv.Coupons["SAVE500"] = domain.CouponResult{Code: "SAVE500", Discount: 500}
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodMpesa)
	require.NoError(t, f.orch.ApplyCoupon(context.Background(), "SAVE500"))

	totals := f.orch.Totals()
	assert.InDelta(t, 10000, totals.SubtotalKES, 0.001)
	assert.InDelta(t, 350, totals.ShippingKES, 0.001)
	assert.InDelta(t, 1600, totals.TaxKES, 0.001)
	assert.InDelta(t, 500, totals.DiscountKES, 0.001)
	assert.InDelta(t, 11450, totals.TotalKES, 0.001)
}

func TestTotals_PickupUsesStationFee(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())

	station := &domain.PickupStation{ID: 4, Name: "CBD Hub", DeliveryFeeKES: 120}
	f.orch.SetDelivery("John Kamau", "john@example.com", "+254700000001",
		domain.DeliveryTypePickup, "", "", station)

	totals := f.orch.Totals()
	assert.InDelta(t, 120, totals.ShippingKES, 0.001)
	assert.InDelta(t, 10000+120+1600, totals.TotalKES, 0.001)
}

func TestApplyCoupon_InvalidCodeClearsPrevious(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	srv.Coupons["SAVE500"] = domain.CouponResult{Code: "SAVE500", Discount: 500}
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())

	require.NoError(t, f.orch.ApplyCoupon(context.Background(), "SAVE500"))
	require.NotNil(t, f.orch.Coupon())

	require.Error(t, f.orch.ApplyCoupon(context.Background(), "BOGUS"))
	assert.Nil(t, f.orch.Coupon())
	assert.Empty(t, f.orch.Form().CouponCode)
}

func TestPlaceOrder_EmptyCartIsRejected(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodCOD)

	_, err := f.orch.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, f.nav.paths)
}

func TestPlaceOrder_CreationFailureNotifiesWithoutNavigating(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	srv.OrderCreateError = "Product out of stock."
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodCOD)

	_, err := f.orch.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.nav.paths)

	active := f.notifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Product out of stock.", active[0].Message)
}

func TestPlaceOrder_CashOnDelivery(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodCOD)

	order, err := f.orch.PlaceOrder(context.Background())
	require.NoError(t, err)
	require.NotNil(t, order)

	require.Len(t, f.nav.paths, 1)
	assert.Equal(t, orderSuccessPath(order.ID), f.nav.paths[0])

	// The server consumed the cart; the refreshed snapshot reflects that.
	assert.Equal(t, 0, f.cart.ItemCount())
}

func TestPlaceOrder_MpesaPaidOnTwentiethPoll(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	defer srv.Close()

	statuses := make([]string, 20)
	for i := range statuses {
		statuses[i] = domain.PaymentStatusPending
	}
	statuses[19] = domain.PaymentStatusPaid
	srv.PaymentStatuses = statuses

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodMpesa)

	order, err := f.orch.PlaceOrder(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, srv.StatusCalls)
	require.Len(t, f.nav.paths, 1)
	assert.Equal(t, orderSuccessPath(order.ID), f.nav.paths[0])
}

func TestPlaceOrder_MpesaExhaustsAttempts(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	srv.PaymentStatuses = []string{domain.PaymentStatusPending}
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodMpesa)

	order, err := f.orch.PlaceOrder(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, srv.StatusCalls)
	require.Len(t, f.nav.paths, 1)
	assert.Equal(t, orderPath(order.ID), f.nav.paths[0])
}

func TestPlaceOrder_MpesaFailedStatusStopsEarly(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	srv.PaymentStatuses = []string{
		domain.PaymentStatusPending,
		domain.PaymentStatusFailed,
	}
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodMpesa)

	order, err := f.orch.PlaceOrder(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)

	assert.Equal(t, 2, srv.StatusCalls)
	require.Len(t, f.nav.paths, 1)
	assert.Equal(t, orderPath(order.ID), f.nav.paths[0])
}

func TestPlaceOrder_MpesaPollRespectsCancellation(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	srv.PaymentStatuses = []string{domain.PaymentStatusPending}
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodMpesa)
	f.orch.cfg.PollInterval = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := f.orch.PlaceOrder(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, srv.StatusCalls)
}

func TestPlaceOrder_StkPushFailureNavigatesToOrder(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	srv.StkPushError = "Payment provider unavailable."
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodMpesa)

	order, err := f.orch.PlaceOrder(context.Background())
	require.Error(t, err)
	require.NotNil(t, order)
	require.Len(t, f.nav.paths, 1)
	assert.Equal(t, orderPath(order.ID), f.nav.paths[0])
}

func TestPlaceOrder_PaypalRedirectsToApproval(t *testing.T) {
	srv := apitest.New()
	product := srv.SeedProduct("Laptop", 10000)
	srv.SeedCartItem(product, 1)
	defer srv.Close()

	f := newFixture(t, srv)
	f.cart.Fetch(context.Background())
	fillValidForm(f.orch, domain.PaymentMethodPaypal)

	_, err := f.orch.PlaceOrder(context.Background())
	require.NoError(t, err)

	require.Len(t, f.nav.paths, 1)
	assert.Contains(t, f.nav.paths[0], "paypal.example.com/approve/")
}
