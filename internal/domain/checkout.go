package domain

// CheckoutResult is the platform's answer to a checkout submission. The two
// outcomes share one shape and are told apart by NeedsUpdate alone; HTTP
// status is not part of the contract.
type CheckoutResult struct {
	NeedsUpdate bool          `json:"needsUpdate"`
	OrderID     string        `json:"orderId,omitempty"`
	PaymentURL  string        `json:"paymentUrl,omitempty"`
	Summary     *OrderSummary `json:"summary,omitempty"`
	Errors      *Correction   `json:"errors,omitempty"`
}

// Correction is the platform's structured diff of everything it adjusted
// during checkout validation.
type Correction struct {
	ItemMessages        []ItemMessage     `json:"itemMessages,omitempty"`
	CouponRejections    []CouponRejection `json:"couponRejections,omitempty"`
	ShippingBeforeCents int64             `json:"shippingBeforeCents,omitempty"`
	ShippingAfterCents  int64             `json:"shippingAfterCents,omitempty"`
	CorrectedCart       *ServerCart       `json:"correctedCart,omitempty"`
}

// ItemMessage explains a per-product adjustment (price drift, removal, stock).
type ItemMessage struct {
	ProductID string `json:"productId"`
	Message   string `json:"message"`
}

// CouponRejection explains why a previously applied coupon no longer holds.
type CouponRejection struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// OrderSummary is the recomputed order total attached to either outcome.
type OrderSummary struct {
	ItemCount           int    `json:"itemCount"`
	SubtotalCents       int64  `json:"subtotalCents"`
	ShippingCents       int64  `json:"shippingCents"`
	CouponDiscountCents int64  `json:"couponDiscountCents,omitempty"`
	TotalCents          int64  `json:"totalCents"`
	DeliveryType        string `json:"deliveryType,omitempty"`
}
