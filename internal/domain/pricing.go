package domain

// DiscountKind distinguishes percentage discounts from fixed amounts off.
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

// SaleRule is one promotional discount rule on a product. Scope narrows from
// the whole product (both attribute fields empty), to an attribute dimension
// (name set, value empty), to one specific attribute value (both set).
// A rule with MaxBuys > 0 is exhausted once Bought reaches it.
type SaleRule struct {
	AttributeName  string       `json:"attributeName,omitempty"`
	AttributeValue string       `json:"attributeValue,omitempty"`
	Kind           DiscountKind `json:"kind"`
	Percent        int          `json:"percent,omitempty"`
	AmountCents    int64        `json:"amountCents,omitempty"`
	MaxBuys        int          `json:"maxBuys,omitempty"`
	Bought         int          `json:"boughtCount,omitempty"`
}

// Exhausted reports whether the rule's purchase cap has been reached.
func (r SaleRule) Exhausted() bool {
	return r.MaxBuys > 0 && r.Bought >= r.MaxBuys
}

// SaleInfo is a product's active sale definition: zero or more scoped rules.
type SaleInfo struct {
	Active bool       `json:"active"`
	Rules  []SaleRule `json:"rules,omitempty"`
}

// PricingTier is a bulk-purchase discount keyed by quantity thresholds.
// MaxQty of zero means unbounded.
type PricingTier struct {
	MinQty int          `json:"minQty"`
	MaxQty int          `json:"maxQty,omitempty"`
	Kind   DiscountKind `json:"kind"`
	Value  int64        `json:"value"`
}

// Covers reports whether qty falls inside the tier's quantity window.
func (t PricingTier) Covers(qty int) bool {
	return qty >= t.MinQty && (t.MaxQty == 0 || qty <= t.MaxQty)
}
