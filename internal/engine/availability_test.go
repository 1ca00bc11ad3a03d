package engine

import (
	"testing"

	"cartsync/internal/domain"
)

func TestAvailability(t *testing.T) {
	attrs := []domain.Attribute{{Name: "size", Value: "M"}}
	product := &domain.ProductSnapshot{
		ID:       "P1",
		Stock:    3,
		Variants: []domain.VariantStock{{Attributes: attrs, Stock: 2}},
	}

	cases := []struct {
		name    string
		qty     int
		attrs   []domain.Attribute
		product *domain.ProductSnapshot
		ok      bool
		reason  domain.UnavailableReason
	}{
		{"deleted product", 1, nil, nil, false, domain.UnavailableProductDeleted},
		{"base stock ok", 3, nil, product, true, ""},
		{"base stock short", 4, nil, product, false, domain.UnavailableOutOfStock},
		{"variant stock ok", 2, attrs, product, true, ""},
		{"variant stock short", 3, attrs, product, false, domain.UnavailableOutOfStock},
		{"variant missing", 1, []domain.Attribute{{Name: "size", Value: "XXL"}}, product, false, domain.UnavailableVariantGone},
	}
	for _, tc := range cases {
		ok, reason := availability(tc.qty, tc.attrs, tc.product)
		if ok != tc.ok || reason != tc.reason {
			t.Fatalf("%s: expected %v/%q, got %v/%q", tc.name, tc.ok, tc.reason, ok, reason)
		}
	}
}

func TestUnavailableReasonLabel(t *testing.T) {
	if domain.UnavailableProductDeleted.Label() != "out of stock" {
		t.Fatalf("deleted products are surfaced as out of stock")
	}
	if domain.UnavailableVariantGone.Label() != "variant unavailable" {
		t.Fatalf("unexpected label for missing variant")
	}
}
