package engine

import (
	"testing"
	"time"

	"cartsync/internal/domain"
)

func TestMergeCartsIdentityUnion(t *testing.T) {
	now := time.Now()
	local := domain.Cart{Items: []domain.LineItem{
		{ID: "l1", ProductID: "BOTH", Quantity: 2, UnitPriceCents: 1000, TotalPriceCents: 2000, AddedAt: now, IsAvailable: true},
		{ID: "l2", ProductID: "LOCAL", Quantity: 1, UnitPriceCents: 500, TotalPriceCents: 500, AddedAt: now, IsAvailable: true},
	}}
	sc := &domain.ServerCart{Items: []domain.ServerItem{
		{ID: "s1", ProductID: "BOTH", Quantity: 1, UnitPriceCents: 800, DiscountPercent: 20,
			Product: &domain.ProductSnapshot{ID: "BOTH", Stock: 10}},
		{ID: "s2", ProductID: "SERVER", Quantity: 3, UnitPriceCents: 300,
			Product: &domain.ProductSnapshot{ID: "SERVER", Stock: 10}},
	}}

	out := mergeCarts(local, sc, now)
	if len(out.Items) != 3 {
		t.Fatalf("expected 3 items in union, got %d", len(out.Items))
	}

	both := out.Items[0]
	if both.ID != "l1" || both.ServerItemID != "s1" {
		t.Fatalf("identities not linked: %+v", both)
	}
	if both.Quantity != 2 {
		t.Fatalf("local quantity must be preserved, not summed: %d", both.Quantity)
	}
	if both.UnitPriceCents != 800 || both.TotalPriceCents != 1600 {
		t.Fatalf("server pricing must win with local quantity: %+v", both)
	}
	if both.DiscountPercent != 20 || !both.OnSale {
		t.Fatalf("server discount must carry: %+v", both)
	}

	if out.Items[1].ID != "l2" || out.Items[1].UnitPriceCents != 500 {
		t.Fatalf("local-only item must pass through unchanged: %+v", out.Items[1])
	}
	srvOnly := out.Items[2]
	if srvOnly.ProductID != "SERVER" || srvOnly.Quantity != 3 || srvOnly.ServerItemID != "s2" {
		t.Fatalf("server-only item must be carried: %+v", srvOnly)
	}
	if srvOnly.ID == "" || srvOnly.ID == "s2" {
		t.Fatalf("server-only item needs a fresh local id: %+v", srvOnly)
	}
}

func TestMergeCartsMatchesAttributeSetsOrderIndependent(t *testing.T) {
	now := time.Now()
	local := domain.Cart{Items: []domain.LineItem{
		{ID: "l1", ProductID: "P1", Quantity: 1, UnitPriceCents: 100,
			SelectedAttributes: []domain.Attribute{{Name: "size", Value: "M"}, {Name: "color", Value: "red"}}},
	}}
	sc := &domain.ServerCart{Items: []domain.ServerItem{
		{ID: "s1", ProductID: "P1", Quantity: 1, UnitPriceCents: 90,
			Attributes: []domain.Attribute{{Name: "color", Value: "red"}, {Name: "size", Value: "M"}},
			Product:    &domain.ProductSnapshot{ID: "P1", Stock: 10, Variants: []domain.VariantStock{{Attributes: []domain.Attribute{{Name: "size", Value: "M"}, {Name: "color", Value: "red"}}, Stock: 10}}}},
	}}

	out := mergeCarts(local, sc, now)
	if len(out.Items) != 1 {
		t.Fatalf("reordered attribute sets are the same identity, got %d items", len(out.Items))
	}
	if out.Items[0].UnitPriceCents != 90 {
		t.Fatalf("expected server price, got %+v", out.Items[0])
	}
}

func TestMergeCartsComputesAvailability(t *testing.T) {
	now := time.Now()
	local := domain.Cart{Items: []domain.LineItem{
		{ID: "l1", ProductID: "GONE", Quantity: 1, UnitPriceCents: 100, IsAvailable: true},
		{ID: "l2", ProductID: "LOW", Quantity: 5, UnitPriceCents: 100, IsAvailable: true},
	}}
	sc := &domain.ServerCart{Items: []domain.ServerItem{
		{ID: "s1", ProductID: "GONE", Quantity: 1, UnitPriceCents: 100, Product: nil},
		{ID: "s2", ProductID: "LOW", Quantity: 5, UnitPriceCents: 100,
			Product: &domain.ProductSnapshot{ID: "LOW", Stock: 2}},
	}}

	out := mergeCarts(local, sc, now)
	if out.Items[0].IsAvailable || out.Items[0].UnavailableReason != domain.UnavailableProductDeleted {
		t.Fatalf("deleted product not flagged: %+v", out.Items[0])
	}
	if out.Items[1].IsAvailable || out.Items[1].UnavailableReason != domain.UnavailableOutOfStock {
		t.Fatalf("oversold item not flagged: %+v", out.Items[1])
	}
}
