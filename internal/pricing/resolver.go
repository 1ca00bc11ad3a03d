package pricing

import "cartsync/internal/domain"

// Resolution is the outcome of resolving a product's sale against a price.
// RuleIndex is the index of the winning rule in the sale's rule list, or -1
// when no rule applies.
type Resolution struct {
	HasActiveSale        bool
	DiscountedPriceCents int64
	PercentOff           int
	AmountOffCents       int64
	RuleIndex            int
}

// Resolve determines the effective unit price for a product under its sale
// definition. active is the currently selected attribute, if any.
//
// Among applicable, non-exhausted rules the winner is the one with the
// largest absolute discount amount; equal amounts resolve to the earliest
// rule in list order. Resolve is pure: identical inputs always yield
// identical output.
func Resolve(basePriceCents int64, sale *domain.SaleInfo, active *domain.Attribute) Resolution {
	out := Resolution{DiscountedPriceCents: basePriceCents, RuleIndex: -1}
	if sale == nil || !sale.Active {
		return out
	}
	for i, rule := range sale.Rules {
		if rule.Exhausted() || !ruleApplies(rule, active) {
			continue
		}
		amount := amountOff(basePriceCents, rule)
		if amount > out.AmountOffCents {
			out.HasActiveSale = true
			out.AmountOffCents = amount
			out.DiscountedPriceCents = basePriceCents - amount
			out.PercentOff = rule.Percent
			out.RuleIndex = i
		}
	}
	return out
}

// ruleApplies checks the rule's scope against the current selection. A rule
// with neither attribute field set covers the whole product. A name-only
// rule covers the dimension: it applies when nothing is selected or the
// selection is in that dimension. A name+value rule needs an exact match
// when a selection exists; with no selection it is provisionally applicable
// pending variant choice.
func ruleApplies(rule domain.SaleRule, active *domain.Attribute) bool {
	switch {
	case rule.AttributeName == "":
		return true
	case rule.AttributeValue == "":
		return active == nil || active.Name == rule.AttributeName
	default:
		return active == nil || (active.Name == rule.AttributeName && active.Value == rule.AttributeValue)
	}
}

// amountOff computes the rule's discount in cents, never exceeding the price.
// Percentage amounts round half up.
func amountOff(priceCents int64, rule domain.SaleRule) int64 {
	var amount int64
	switch rule.Kind {
	case domain.DiscountPercent:
		amount = (priceCents*int64(rule.Percent) + 50) / 100
	case domain.DiscountFixed:
		amount = rule.AmountCents
	}
	if amount > priceCents {
		amount = priceCents
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}
