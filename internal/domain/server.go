package domain

import "time"

// ServerCart is the platform-side cart, authoritative for pricing and stock
// once the visitor is authenticated. The engine reads only the fields below
// and never depends on any further structure.
type ServerCart struct {
	ID                     string       `json:"_id"`
	Items                  []ServerItem `json:"items"`
	SubtotalCents          int64        `json:"subtotalCents"`
	TotalDiscountCents     int64        `json:"totalDiscountCents"`
	CouponDiscountCents    int64        `json:"couponDiscountCents"`
	TotalCents             int64        `json:"totalCents"`
	AppliedCoupons         []string     `json:"appliedCoupons,omitempty"`
	Status                 string       `json:"status,omitempty"`
	EstimatedShippingCents int64        `json:"estimatedShippingCents,omitempty"`
	LastActivity           time.Time    `json:"lastActivity"`
}

// ServerItem is one platform cart entry, keyed by the platform's own id.
// Product carries the freshest product snapshot; nil means the product no
// longer exists.
type ServerItem struct {
	ID                  string           `json:"_id"`
	ProductID           string           `json:"productId"`
	Quantity            int              `json:"qty"`
	Attributes          []Attribute      `json:"attributes,omitempty"`
	UnitPriceCents      int64            `json:"unitPriceCents"`
	TotalPriceCents     int64            `json:"totalPriceCents"`
	DiscountPercent     int              `json:"discountPercent,omitempty"`
	DiscountAmountCents int64            `json:"discountAmountCents,omitempty"`
	Tier                *TierSnapshot    `json:"pricingTier,omitempty"`
	Product             *ProductSnapshot `json:"productDetails,omitempty"`
}

// IdentityKey matches server items to local ones.
func (si ServerItem) IdentityKey() string {
	return IdentityKey(si.ProductID, si.Attributes)
}

// ProductSnapshot is the slice of product state the engine needs for
// availability and pricing checks.
type ProductSnapshot struct {
	ID         string         `json:"id"`
	PriceCents int64          `json:"priceCents"`
	Stock      int            `json:"stock"`
	Variants   []VariantStock `json:"variants,omitempty"`
	Sale       *SaleInfo      `json:"sale,omitempty"`
	Tiers      []PricingTier  `json:"pricingTiers,omitempty"`
}

// VariantStock is per-variant stock, keyed by the variant's attribute set.
type VariantStock struct {
	Attributes []Attribute `json:"attributes"`
	Stock      int         `json:"stock"`
}

// FindVariant returns the variant whose attribute set equals attrs, or nil.
func (p *ProductSnapshot) FindVariant(attrs []Attribute) *VariantStock {
	want := IdentityKey("", attrs)
	for i := range p.Variants {
		if IdentityKey("", p.Variants[i].Attributes) == want {
			return &p.Variants[i]
		}
	}
	return nil
}
