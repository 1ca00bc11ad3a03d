package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"cartsync/internal/domain"
	"cartsync/internal/store"
)

// Gateway is the slice of the platform cart API the engine drives.
type Gateway interface {
	Get(ctx context.Context) (*domain.ServerCart, error)
	AddItem(ctx context.Context, productID string, qty int, attrs []domain.Attribute) (*domain.ServerCart, error)
	UpdateItem(ctx context.Context, serverItemID string, qty int) (*domain.ServerCart, error)
	RemoveItem(ctx context.Context, serverItemID string) error
	Clear(ctx context.Context) error
}

// Engine keeps the local cart store consistent with server truth. As a
// guest the store is the only truth and no network calls happen. Logging in
// runs the guest-to-server merge exactly once per session; afterwards every
// structural mutation is mirrored to the server and the server's pricing
// and availability are folded back into the local items.
//
// Network faults never roll back a local mutation: the local cart stays the
// user-visible truth and the failed sync is only retried implicitly by the
// next mutation.
type Engine struct {
	store  *store.Store
	gw     Gateway
	logger *log.Logger
	deb    *debouncer

	mu            sync.Mutex
	authenticated bool
	mergeDone     bool
}

// New builds an engine around a session's store and gateway. window is the
// quiescence window for debounced quantity commits.
func New(st *store.Store, gw Gateway, window time.Duration, logger *log.Logger) *Engine {
	if window <= 0 {
		window = 400 * time.Millisecond
	}
	return &Engine{store: st, gw: gw, logger: logger, deb: newDebouncer(window)}
}

// Authenticated reports whether the session is in the authenticated state.
func (e *Engine) Authenticated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authenticated
}

// Login transitions the session to authenticated and runs the one-shot
// merge. A merge failure leaves the local cart un-merged; it is not retried
// and does not block anything.
func (e *Engine) Login(ctx context.Context) {
	e.mu.Lock()
	e.authenticated = true
	run := !e.mergeDone
	e.mergeDone = true
	e.mu.Unlock()

	if run {
		e.merge(ctx)
	}
}

// Logout returns the session to the guest state. The local cart persists as
// guest truth and the server cart is left untouched for the next login's
// merge.
func (e *Engine) Logout() {
	e.deb.stop()
	e.mu.Lock()
	e.authenticated = false
	e.mergeDone = false
	e.mu.Unlock()
}

// Cart returns the current local cart.
func (e *Engine) Cart(ctx context.Context) domain.Cart {
	return e.store.Read(ctx)
}

// Add puts qty of a product/variant into the cart, merging into an existing
// identical item. When authenticated the add is mirrored to the server and
// the server's pricing folds back into the cart.
func (e *Engine) Add(ctx context.Context, productID string, qty int, attrs []domain.Attribute, price store.PriceSnapshot) domain.LineItem {
	item := e.store.Add(ctx, productID, qty, attrs, price)
	if !e.Authenticated() {
		return item
	}

	// an add that merged into an already-synced item is a quantity change
	var sc *domain.ServerCart
	var err error
	if item.ServerItemID != "" {
		sc, err = e.gw.UpdateItem(ctx, item.ServerItemID, item.Quantity)
	} else {
		sc, err = e.gw.AddItem(ctx, productID, item.Quantity, attrs)
	}
	if err != nil {
		e.logger.Printf("mirror add to server failed for %s: %v", productID, err)
		return item
	}
	e.fold(ctx, sc)
	cart := e.store.Read(ctx)
	if latest := cart.Find(item.ID); latest != nil {
		return *latest
	}
	return item
}

// SetQuantity applies a quantity edit to the local cart immediately and,
// when authenticated, schedules a debounced server commit keyed by the
// item's identity so rapid clicks collapse into one network call. Returns
// nil when the item id is unknown.
func (e *Engine) SetQuantity(ctx context.Context, itemID string, qty int) *domain.LineItem {
	item := e.store.Update(ctx, itemID, store.UpdateInput{Quantity: &qty})
	if item == nil {
		e.logger.Printf("quantity update for unknown item %s ignored", itemID)
		return nil
	}
	if e.Authenticated() {
		e.deb.call(item.IdentityKey(), func() {
			e.commitQuantity(item.ID)
		})
	}
	return item
}

// Remove deletes an item locally and mirrors the removal to the server. An
// item that never got a server id forces a full resync instead of a
// targeted delete.
func (e *Engine) Remove(ctx context.Context, itemID string) bool {
	cart := e.store.Read(ctx)
	var serverItemID string
	found := false
	if item := cart.Find(itemID); item != nil {
		serverItemID = item.ServerItemID
		found = true
	}

	removed := e.store.Remove(ctx, itemID)
	if !removed || !found || !e.Authenticated() {
		return removed
	}

	if serverItemID == "" {
		e.resync(ctx)
		return removed
	}
	if err := e.gw.RemoveItem(ctx, serverItemID); err != nil {
		e.logger.Printf("mirror remove to server failed for %s: %v", itemID, err)
	}
	return removed
}

// Clear empties the local cart and, when authenticated, the server cart.
func (e *Engine) Clear(ctx context.Context) {
	e.deb.stop()
	e.store.Clear(ctx)
	if !e.Authenticated() {
		return
	}
	if err := e.gw.Clear(ctx); err != nil {
		e.logger.Printf("mirror clear to server failed: %v", err)
	}
}

// Refresh pulls the server cart and folds its pricing and availability into
// the local items. A no-op for guests.
func (e *Engine) Refresh(ctx context.Context) {
	if !e.Authenticated() {
		return
	}
	sc, err := e.gw.Get(ctx)
	if err != nil {
		e.logger.Printf("cart refresh failed: %v", err)
		return
	}
	e.fold(ctx, sc)
}

// ApplySnapshot replaces the local cart with a server-provided snapshot,
// bypassing merge logic. Used when the shopper accepts a checkout
// correction. Local ids are kept where identities match so the UI keys stay
// stable.
func (e *Engine) ApplySnapshot(ctx context.Context, sc *domain.ServerCart) {
	if sc == nil {
		return
	}
	prev := e.store.Read(ctx)
	now := time.Now()

	cart := domain.Cart{Items: make([]domain.LineItem, 0, len(sc.Items))}
	for _, si := range sc.Items {
		item := lineItemFromServer(si, now)
		if existing := prev.FindByIdentity(si.IdentityKey()); existing != nil {
			item.ID = existing.ID
		}
		cart.Items = append(cart.Items, item)
	}
	e.store.Write(ctx, cart)
}

// Flush drains pending debounced commits. Called on shutdown.
func (e *Engine) Flush() {
	e.deb.flush()
}

// commitQuantity pushes the latest quantity of one item to the server. An
// item that lost (or never had) its server id falls back to a full resync.
func (e *Engine) commitQuantity(itemID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cart := e.store.Read(ctx)
	item := cart.Find(itemID)
	if item == nil {
		return
	}
	if item.ServerItemID == "" {
		e.resync(ctx)
		return
	}
	sc, err := e.gw.UpdateItem(ctx, item.ServerItemID, item.Quantity)
	if err != nil {
		e.logger.Printf("quantity commit failed for %s: %v", itemID, err)
		return
	}
	e.fold(ctx, sc)
}

// fold copies server pricing, discounts, tiers and availability into the
// matching local items. Matching is by server item id first, identity
// second. Items that exist only on the server are deliberately not
// reintroduced, so a locally deleted item cannot reappear through
// eventual-consistency lag.
func (e *Engine) fold(ctx context.Context, sc *domain.ServerCart) {
	if sc == nil {
		return
	}
	cart := e.store.Read(ctx)

	byServerID := make(map[string]*domain.ServerItem, len(sc.Items))
	byIdentity := make(map[string]*domain.ServerItem, len(sc.Items))
	for i := range sc.Items {
		byServerID[sc.Items[i].ID] = &sc.Items[i]
		byIdentity[sc.Items[i].IdentityKey()] = &sc.Items[i]
	}

	for _, item := range cart.Items {
		si, ok := byServerID[item.ServerItemID]
		if !ok {
			si, ok = byIdentity[item.IdentityKey()]
		}
		if !ok {
			continue
		}
		e.foldItem(ctx, item.ID, item.Quantity, item.SelectedAttributes, si)
	}
}

// foldItem writes one server item's authoritative fields onto a local item,
// preserving the local quantity.
func (e *Engine) foldItem(ctx context.Context, itemID string, qty int, attrs []domain.Attribute, si *domain.ServerItem) {
	onSale := si.DiscountPercent > 0 || si.DiscountAmountCents > 0
	available, reason := availability(qty, attrs, si.Product)

	in := store.UpdateInput{
		ServerItemID:        &si.ID,
		UnitPriceCents:      &si.UnitPriceCents,
		OnSale:              &onSale,
		DiscountPercent:     &si.DiscountPercent,
		DiscountAmountCents: &si.DiscountAmountCents,
		IsAvailable:         &available,
		UnavailableReason:   &reason,
	}
	if si.Tier != nil {
		in.Tier = si.Tier
	} else {
		in.ClearTier = true
	}
	if e.store.Update(ctx, itemID, in) == nil {
		e.logger.Printf("fold skipped, item %s vanished", itemID)
	}
}

// lineItemFromServer converts a server item into a fresh local line item.
func lineItemFromServer(si domain.ServerItem, now time.Time) domain.LineItem {
	available, reason := availability(si.Quantity, si.Attributes, si.Product)
	return domain.LineItem{
		ID:                  newLocalID(),
		ServerItemID:        si.ID,
		ProductID:           si.ProductID,
		Quantity:            si.Quantity,
		SelectedAttributes:  si.Attributes,
		UnitPriceCents:      si.UnitPriceCents,
		TotalPriceCents:     si.UnitPriceCents * int64(si.Quantity),
		OnSale:              si.DiscountPercent > 0 || si.DiscountAmountCents > 0,
		DiscountPercent:     si.DiscountPercent,
		DiscountAmountCents: si.DiscountAmountCents,
		Tier:                si.Tier,
		AddedAt:             now,
		IsAvailable:         available,
		UnavailableReason:   reason,
	}
}
