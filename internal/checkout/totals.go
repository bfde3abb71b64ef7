package checkout

import "github.com/steve-ongera/amazon/internal/domain"

// Totals is the order summary shown on the review step. It previews the
// server's charging rules; the amounts on the created order are authoritative.
type Totals struct {
	SubtotalKES float64
	ShippingKES float64
	TaxKES      float64
	DiscountKES float64
	TotalKES    float64
}

// Totals computes the review-step summary from the current cart snapshot,
// delivery selection, and applied coupon. Home delivery carries a flat fee;
// pickup uses the selected station's fee. VAT applies to the goods subtotal.
func (o *Orchestrator) Totals() Totals {
	snapshot := o.cart.Cart()

	o.mu.Lock()
	defer o.mu.Unlock()

	var t Totals
	if snapshot != nil {
		t.SubtotalKES = snapshot.TotalKES
	}

	switch o.form.DeliveryType {
	case domain.DeliveryTypePickup:
		if o.station != nil {
			t.ShippingKES = o.station.DeliveryFeeKES
		}
	default:
		t.ShippingKES = HomeDeliveryFeeKES
	}

	t.TaxKES = t.SubtotalKES * VATRate
	if o.coupon != nil {
		t.DiscountKES = o.coupon.Discount
	}

	t.TotalKES = t.SubtotalKES + t.ShippingKES + t.TaxKES - t.DiscountKES
	return t
}
