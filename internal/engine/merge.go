package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cartsync/internal/domain"
)

func newLocalID() string {
	return uuid.NewString()
}

// merge reconciles the guest cart into the server cart. The union of both
// sides, keyed by identity, becomes the new local truth and is then pushed
// to the server wholesale: the server cart is cleared, every union item is
// re-added, and the re-fetched server cart backfills server ids and
// refreshed pricing. Callers guarantee at-most-once per session.
func (e *Engine) merge(ctx context.Context) {
	local := e.store.Read(ctx)

	sc, err := e.gw.Get(ctx)
	if err != nil {
		e.logger.Printf("merge skipped, server cart unreachable: %v", err)
		return
	}

	union := mergeCarts(local, sc, time.Now())
	e.store.Write(ctx, union)
	e.pushAll(ctx)
}

// resync rebuilds the server cart from the local one. Used when a targeted
// update is impossible because an item has no server id.
func (e *Engine) resync(ctx context.Context) {
	e.pushAll(ctx)
}

// pushAll clears the server cart, re-adds every local item, then re-fetches
// the server cart and folds the authoritative response back in. Items the
// server failed to accept are left without a server id; their next mutation
// resyncs again.
func (e *Engine) pushAll(ctx context.Context) {
	if err := e.gw.Clear(ctx); err != nil {
		e.logger.Printf("push aborted, server cart clear failed: %v", err)
		return
	}

	local := e.store.Read(ctx)
	for _, item := range local.Items {
		if _, err := e.gw.AddItem(ctx, item.ProductID, item.Quantity, item.SelectedAttributes); err != nil {
			e.logger.Printf("push of %s to server failed: %v", item.ProductID, err)
		}
	}

	final, err := e.gw.Get(ctx)
	if err != nil {
		e.logger.Printf("post-push fetch failed, server ids not backfilled: %v", err)
		return
	}
	e.fold(ctx, final)
}

// mergeCarts computes the identity-keyed union of a local and a server cart.
// For identities present on both sides the server wins every pricing,
// discount, tier and availability field while the local quantity is kept
// as-is: the server never saw guest-side quantity edits, so summing would
// double-count. Items unique to either side carry through unchanged. Local
// display order is preserved, server-only items append after it.
func mergeCarts(local domain.Cart, sc *domain.ServerCart, now time.Time) domain.Cart {
	byIdentity := make(map[string]*domain.ServerItem, len(sc.Items))
	for i := range sc.Items {
		byIdentity[sc.Items[i].IdentityKey()] = &sc.Items[i]
	}

	out := domain.Cart{Items: make([]domain.LineItem, 0, len(local.Items)+len(sc.Items))}
	seen := make(map[string]bool, len(local.Items))

	for _, item := range local.Items {
		key := item.IdentityKey()
		seen[key] = true
		si, ok := byIdentity[key]
		if !ok {
			out.Items = append(out.Items, item)
			continue
		}
		merged := item
		merged.ServerItemID = si.ID
		merged.UnitPriceCents = si.UnitPriceCents
		merged.OnSale = si.DiscountPercent > 0 || si.DiscountAmountCents > 0
		merged.DiscountPercent = si.DiscountPercent
		merged.DiscountAmountCents = si.DiscountAmountCents
		merged.Tier = si.Tier
		merged.TotalPriceCents = si.UnitPriceCents * int64(merged.Quantity)
		merged.IsAvailable, merged.UnavailableReason = availability(merged.Quantity, merged.SelectedAttributes, si.Product)
		out.Items = append(out.Items, merged)
	}

	for _, si := range sc.Items {
		if seen[si.IdentityKey()] {
			continue
		}
		out.Items = append(out.Items, lineItemFromServer(si, now))
	}

	return out
}
