package pricing

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"cartsync/internal/domain"
)

func TestResolveNoSale(t *testing.T) {
	res := Resolve(1000, nil, nil)
	if res.HasActiveSale || res.DiscountedPriceCents != 1000 || res.RuleIndex != -1 {
		t.Fatalf("expected no sale at full price, got %+v", res)
	}

	res = Resolve(1000, &domain.SaleInfo{Active: false, Rules: []domain.SaleRule{
		{Kind: domain.DiscountPercent, Percent: 50},
	}}, nil)
	if res.HasActiveSale {
		t.Fatalf("inactive sale must not apply, got %+v", res)
	}
}

func TestResolveWholeProductPercent(t *testing.T) {
	sale := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{Kind: domain.DiscountPercent, Percent: 15},
	}}
	res := Resolve(1000, sale, nil)
	if !res.HasActiveSale {
		t.Fatalf("expected active sale, got %+v", res)
	}
	if res.AmountOffCents != 150 || res.DiscountedPriceCents != 850 || res.PercentOff != 15 || res.RuleIndex != 0 {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestResolvePercentRounding(t *testing.T) {
	sale := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{Kind: domain.DiscountPercent, Percent: 33},
	}}
	// 999 * 33% = 329.67, rounds to 330
	res := Resolve(999, sale, nil)
	if res.AmountOffCents != 330 {
		t.Fatalf("expected rounded amount 330, got %d", res.AmountOffCents)
	}
}

func TestResolveFixedFlooredAtZero(t *testing.T) {
	sale := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{Kind: domain.DiscountFixed, AmountCents: 5000},
	}}
	res := Resolve(300, sale, nil)
	if res.AmountOffCents != 300 || res.DiscountedPriceCents != 0 {
		t.Fatalf("fixed discount must not push price below zero, got %+v", res)
	}
}

func TestResolveLargestAmountWins(t *testing.T) {
	// 10% of 2000 = 200 beats 150 fixed, despite being listed second.
	sale := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{Kind: domain.DiscountFixed, AmountCents: 150},
		{Kind: domain.DiscountPercent, Percent: 10},
	}}
	res := Resolve(2000, sale, nil)
	if res.RuleIndex != 1 || res.AmountOffCents != 200 {
		t.Fatalf("expected percent rule to win with 200 off, got %+v", res)
	}
}

func TestResolveTieBreakFirstListed(t *testing.T) {
	// Both rules yield exactly 200 off; the earlier one must win.
	sale := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{Kind: domain.DiscountFixed, AmountCents: 200},
		{Kind: domain.DiscountPercent, Percent: 10},
	}}
	res := Resolve(2000, sale, nil)
	if res.RuleIndex != 0 {
		t.Fatalf("expected first-listed rule on tie, got index %d", res.RuleIndex)
	}
}

func TestResolveExhaustedRuleSkipped(t *testing.T) {
	sale := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{Kind: domain.DiscountPercent, Percent: 50, MaxBuys: 10, Bought: 10},
		{Kind: domain.DiscountPercent, Percent: 5},
	}}
	res := Resolve(1000, sale, nil)
	if res.RuleIndex != 1 || res.AmountOffCents != 50 {
		t.Fatalf("exhausted rule must be skipped, got %+v", res)
	}

	// MaxBuys of zero means no cap.
	uncapped := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{Kind: domain.DiscountPercent, Percent: 50, MaxBuys: 0, Bought: 999},
	}}
	res = Resolve(1000, uncapped, nil)
	if res.RuleIndex != 0 {
		t.Fatalf("uncapped rule must apply, got %+v", res)
	}
}

func TestResolveAttributeScoping(t *testing.T) {
	sale := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{AttributeName: "color", Kind: domain.DiscountPercent, Percent: 10},
		{AttributeName: "size", AttributeValue: "XL", Kind: domain.DiscountPercent, Percent: 30},
	}}

	// No selection: both rules provisionally applicable, 30% wins.
	res := Resolve(1000, sale, nil)
	if res.RuleIndex != 1 || res.AmountOffCents != 300 {
		t.Fatalf("expected value-scoped rule provisionally applicable, got %+v", res)
	}

	// Selection in the color dimension: name-only rule applies, XL rule does not.
	res = Resolve(1000, sale, &domain.Attribute{Name: "color", Value: "red"})
	if res.RuleIndex != 0 || res.AmountOffCents != 100 {
		t.Fatalf("expected dimension rule only, got %+v", res)
	}

	// Exact XL selection: both out of scope except XL rule and not color.
	res = Resolve(1000, sale, &domain.Attribute{Name: "size", Value: "XL"})
	if res.RuleIndex != 1 {
		t.Fatalf("expected exact-match rule, got %+v", res)
	}

	// Size M: neither the color rule nor the XL rule matches.
	res = Resolve(1000, sale, &domain.Attribute{Name: "size", Value: "M"})
	if res.HasActiveSale {
		t.Fatalf("expected no applicable rule, got %+v", res)
	}
}

func TestResolveCaseSensitiveMatch(t *testing.T) {
	sale := &domain.SaleInfo{Active: true, Rules: []domain.SaleRule{
		{AttributeName: "size", AttributeValue: "XL", Kind: domain.DiscountPercent, Percent: 30},
	}}
	res := Resolve(1000, sale, &domain.Attribute{Name: "size", Value: "xl"})
	if res.HasActiveSale {
		t.Fatalf("attribute match must be case-sensitive, got %+v", res)
	}
}

func TestResolveDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		price := rapid.Int64Range(0, 1_000_000).Draw(t, "price")
		ruleCount := rapid.IntRange(0, 6).Draw(t, "ruleCount")
		rules := make([]domain.SaleRule, 0, ruleCount)
		for i := 0; i < ruleCount; i++ {
			kind := domain.DiscountPercent
			if rapid.Bool().Draw(t, "fixed") {
				kind = domain.DiscountFixed
			}
			rules = append(rules, domain.SaleRule{
				Kind:        kind,
				Percent:     rapid.IntRange(0, 100).Draw(t, "percent"),
				AmountCents: rapid.Int64Range(0, 2_000_000).Draw(t, "amount"),
				MaxBuys:     rapid.IntRange(0, 3).Draw(t, "maxBuys"),
				Bought:      rapid.IntRange(0, 3).Draw(t, "bought"),
			})
		}
		sale := &domain.SaleInfo{Active: true, Rules: rules}

		first := Resolve(price, sale, nil)
		second := Resolve(price, sale, nil)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("resolve not deterministic: %+v vs %+v", first, second)
		}
		if first.DiscountedPriceCents < 0 {
			t.Fatalf("price went negative: %+v", first)
		}
		if first.DiscountedPriceCents+first.AmountOffCents != price && first.HasActiveSale {
			t.Fatalf("discount does not add up: %+v (price %d)", first, price)
		}
	})
}
