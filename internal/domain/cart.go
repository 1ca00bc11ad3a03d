package domain

import (
	"sort"
	"strings"
	"time"
)

// ItemTTL is how long a line item may sit in a cart before it is purged
// on the next read.
const ItemTTL = 24 * time.Hour

// Attribute is one selected variant dimension, e.g. {Name: "size", Value: "M"}.
// Matching is case-sensitive on both fields.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type UnavailableReason string

const (
	UnavailableOutOfStock     UnavailableReason = "out_of_stock"
	UnavailableVariantGone    UnavailableReason = "variant_unavailable"
	UnavailableProductDeleted UnavailableReason = "product_deleted"
)

// Label maps the reason to the wording shown to shoppers. A deleted product
// is presented the same way as an oversold one.
func (r UnavailableReason) Label() string {
	if r == UnavailableVariantGone {
		return "variant unavailable"
	}
	return "out of stock"
}

// TierSnapshot records the bulk-pricing tier that applied at the item's
// last-known quantity.
type TierSnapshot struct {
	MinQty            int          `json:"minQty"`
	MaxQty            int          `json:"maxQty,omitempty"`
	Strategy          DiscountKind `json:"strategy"`
	Value             int64        `json:"value"`
	AppliedPriceCents int64        `json:"appliedPriceCents"`
}

// LineItem is one cart entry. ID is generated client-side at creation and is
// stable across local mutations; ServerItemID is set only after the item has
// been pushed to the platform cart. ProductID and SelectedAttributes are
// immutable once created; reconciliation may rewrite pricing, discount and
// availability fields only.
type LineItem struct {
	ID                  string            `json:"id"`
	ServerItemID        string            `json:"serverItemId,omitempty"`
	ProductID           string            `json:"productId"`
	Quantity            int               `json:"quantity"`
	SelectedAttributes  []Attribute       `json:"selectedAttributes,omitempty"`
	UnitPriceCents      int64             `json:"unitPriceCents"`
	TotalPriceCents     int64             `json:"totalPriceCents"`
	OnSale              bool              `json:"onSale,omitempty"`
	SaleRuleIndex       int               `json:"saleRuleIndex,omitempty"`
	DiscountPercent     int               `json:"appliedDiscountPercent,omitempty"`
	DiscountAmountCents int64             `json:"discountAmountCents,omitempty"`
	Tier                *TierSnapshot     `json:"pricingTier,omitempty"`
	AddedAt             time.Time         `json:"addedAt"`
	IsAvailable         bool              `json:"isAvailable"`
	UnavailableReason   UnavailableReason `json:"unavailableReason,omitempty"`
}

// IdentityKey renders the (productId, selectedAttributes) pair that decides
// whether two line items are the same cart entry. Attribute order is
// irrelevant, so attributes are sorted before joining.
func (li LineItem) IdentityKey() string {
	return IdentityKey(li.ProductID, li.SelectedAttributes)
}

// IdentityKey builds the identity key for a product and attribute selection.
func IdentityKey(productID string, attrs []Attribute) string {
	if len(attrs) == 0 {
		return productID
	}
	pairs := make([]string, 0, len(attrs))
	for _, a := range attrs {
		pairs = append(pairs, a.Name+"\x1e"+a.Value)
	}
	sort.Strings(pairs)
	return productID + "\x1f" + strings.Join(pairs, "\x1f")
}

// Expired reports whether the item is past its TTL at the given instant.
func (li LineItem) Expired(now time.Time) bool {
	return now.Sub(li.AddedAt) > ItemTTL
}

// Cart is the client-visible cart: an insertion-ordered list of line items.
// Ordering is display order only and carries no business meaning.
type Cart struct {
	Items       []LineItem `json:"items"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// Find returns a pointer into Items for the given local id, or nil.
func (c *Cart) Find(itemID string) *LineItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// FindByIdentity returns a pointer into Items matching the identity key, or nil.
func (c *Cart) FindByIdentity(key string) *LineItem {
	for i := range c.Items {
		if c.Items[i].IdentityKey() == key {
			return &c.Items[i]
		}
	}
	return nil
}

// TotalCents sums the line totals.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, li := range c.Items {
		total += li.TotalPriceCents
	}
	return total
}

// TotalQuantity sums the line quantities.
func (c Cart) TotalQuantity() int {
	var qty int
	for _, li := range c.Items {
		qty += li.Quantity
	}
	return qty
}
