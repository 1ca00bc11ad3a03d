package pricing

import "cartsync/internal/domain"

// MatchTier picks the bulk-pricing tier for the given quantity: among tiers
// whose quantity window covers qty, the one with the highest MinQty wins.
func MatchTier(tiers []domain.PricingTier, qty int) (domain.PricingTier, bool) {
	var best domain.PricingTier
	found := false
	for _, t := range tiers {
		if !t.Covers(qty) {
			continue
		}
		if !found || t.MinQty > best.MinQty {
			best = t
			found = true
		}
	}
	return best, found
}

// TierPrice applies the tier's discount to the base unit price.
func TierPrice(basePriceCents int64, t domain.PricingTier) int64 {
	var price int64
	switch t.Kind {
	case domain.DiscountPercent:
		price = basePriceCents - (basePriceCents*t.Value+50)/100
	case domain.DiscountFixed:
		price = basePriceCents - t.Value
	default:
		price = basePriceCents
	}
	if price < 0 {
		price = 0
	}
	return price
}

// Snapshot freezes the tier as applied at the base price, for persisting on
// a line item.
func Snapshot(basePriceCents int64, t domain.PricingTier) *domain.TierSnapshot {
	return &domain.TierSnapshot{
		MinQty:            t.MinQty,
		MaxQty:            t.MaxQty,
		Strategy:          t.Kind,
		Value:             t.Value,
		AppliedPriceCents: TierPrice(basePriceCents, t),
	}
}

// NextTier describes the cheapest tier the shopper has not yet reached,
// for "buy N more to save" prompts.
type NextTier struct {
	Tier                domain.PricingTier
	QtyDelta            int
	PerUnitSavingsCents int64
}

// NextTierSavings finds the not-yet-reached tier with the lowest resulting
// unit price above the current quantity. The savings are measured against
// the unit price at the current quantity (tiered or base). Returns false
// when every tier is already reached or none exists.
func NextTierSavings(basePriceCents int64, tiers []domain.PricingTier, qty int) (NextTier, bool) {
	currentPrice := basePriceCents
	if t, ok := MatchTier(tiers, qty); ok {
		currentPrice = TierPrice(basePriceCents, t)
	}

	var best NextTier
	found := false
	for _, t := range tiers {
		if t.MinQty <= qty {
			continue
		}
		price := TierPrice(basePriceCents, t)
		if !found || price < TierPrice(basePriceCents, best.Tier) ||
			(price == TierPrice(basePriceCents, best.Tier) && t.MinQty < best.Tier.MinQty) {
			best = NextTier{Tier: t, QtyDelta: t.MinQty - qty, PerUnitSavingsCents: currentPrice - price}
			found = true
		}
	}
	if !found || best.PerUnitSavingsCents <= 0 {
		return NextTier{}, false
	}
	return best, true
}
