package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"cartsync/internal/domain"
)

// Store is the client-side cart: an insertion-ordered item list persisted as
// one blob through a Port. Every operation is read-modify-write over the
// whole blob. Storage faults never reach the caller; they degrade to an
// empty cart and a log line.
type Store struct {
	mu     sync.Mutex
	port   Port
	logger *log.Logger
	now    func() time.Time
	subs   []func(domain.Cart)
}

func New(port Port, logger *log.Logger) *Store {
	return &Store{port: port, logger: logger, now: time.Now}
}

// Subscribe registers fn to run after every successful write. Subscribers
// are invoked synchronously in registration order.
func (s *Store) Subscribe(fn func(domain.Cart)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// PriceSnapshot is the resolved pricing recorded on an item when it is
// added. It is display truth only; the server remains price authority.
type PriceSnapshot struct {
	UnitPriceCents      int64
	OnSale              bool
	SaleRuleIndex       int
	DiscountPercent     int
	DiscountAmountCents int64
	Tier                *domain.TierSnapshot
}

// UpdateInput names the fields a cart mutation may touch. Nil means leave
// unchanged. ProductID and attributes are immutable and deliberately absent.
type UpdateInput struct {
	Quantity            *int
	ServerItemID        *string
	UnitPriceCents      *int64
	TotalPriceCents     *int64
	OnSale              *bool
	SaleRuleIndex       *int
	DiscountPercent     *int
	DiscountAmountCents *int64
	Tier                *domain.TierSnapshot
	ClearTier           bool
	IsAvailable         *bool
	UnavailableReason   *domain.UnavailableReason
}

// Read loads the cart, purging expired items as a side effect. Absent or
// unreadable state yields an empty cart, never an error.
func (s *Store) Read(ctx context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx)
}

// Write replaces the persisted cart and notifies subscribers.
func (s *Store) Write(ctx context.Context, cart domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked(ctx, cart)
}

// Add merges qty of the given product/variant into the cart. If an item with
// the same identity exists its quantity grows and its TTL renews; otherwise
// a new item with a fresh local id is appended. Returns the post-merge item.
func (s *Store) Add(ctx context.Context, productID string, qty int, attrs []domain.Attribute, price PriceSnapshot) domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.readLocked(ctx)
	now := s.now()

	if existing := cart.FindByIdentity(domain.IdentityKey(productID, attrs)); existing != nil {
		existing.Quantity += qty
		existing.AddedAt = now
		existing.TotalPriceCents = existing.UnitPriceCents * int64(existing.Quantity)
		s.writeLocked(ctx, cart)
		return *existing
	}

	item := domain.LineItem{
		ID:                  uuid.NewString(),
		ProductID:           productID,
		Quantity:            qty,
		SelectedAttributes:  attrs,
		UnitPriceCents:      price.UnitPriceCents,
		TotalPriceCents:     price.UnitPriceCents * int64(qty),
		OnSale:              price.OnSale,
		SaleRuleIndex:       price.SaleRuleIndex,
		DiscountPercent:     price.DiscountPercent,
		DiscountAmountCents: price.DiscountAmountCents,
		Tier:                price.Tier,
		AddedAt:             now,
		IsAvailable:         true,
	}
	cart.Items = append(cart.Items, item)
	s.writeLocked(ctx, cart)
	return item
}

// Update mutates the allowed fields of one item and refreshes its TTL.
// TotalPriceCents is recomputed from unit price and quantity unless the
// input overrides it explicitly. Returns nil when the id is unknown; the
// caller logs and moves on.
func (s *Store) Update(ctx context.Context, itemID string, in UpdateInput) *domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.readLocked(ctx)
	item := cart.Find(itemID)
	if item == nil {
		return nil
	}

	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.ServerItemID != nil {
		item.ServerItemID = *in.ServerItemID
	}
	if in.UnitPriceCents != nil {
		item.UnitPriceCents = *in.UnitPriceCents
	}
	if in.OnSale != nil {
		item.OnSale = *in.OnSale
	}
	if in.SaleRuleIndex != nil {
		item.SaleRuleIndex = *in.SaleRuleIndex
	}
	if in.DiscountPercent != nil {
		item.DiscountPercent = *in.DiscountPercent
	}
	if in.DiscountAmountCents != nil {
		item.DiscountAmountCents = *in.DiscountAmountCents
	}
	if in.Tier != nil {
		item.Tier = in.Tier
	} else if in.ClearTier {
		item.Tier = nil
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}
	if in.UnavailableReason != nil {
		item.UnavailableReason = *in.UnavailableReason
	}

	if in.TotalPriceCents != nil {
		item.TotalPriceCents = *in.TotalPriceCents
	} else {
		item.TotalPriceCents = item.UnitPriceCents * int64(item.Quantity)
	}
	item.AddedAt = s.now()

	out := *item
	s.writeLocked(ctx, cart)
	return &out
}

// Remove deletes the item with the given local id. Returns whether an item
// was actually removed.
func (s *Store) Remove(ctx context.Context, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.readLocked(ctx)
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			s.writeLocked(ctx, cart)
			return true
		}
	}
	return false
}

// Clear empties the persisted cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked(ctx, domain.Cart{})
}

// Total returns the current cart total in cents.
func (s *Store) Total(ctx context.Context) int64 {
	return s.Read(ctx).TotalCents()
}

func (s *Store) readLocked(ctx context.Context) domain.Cart {
	blob, err := s.port.Read(ctx)
	if err != nil {
		s.logger.Printf("cart read failed, treating as empty: %v", err)
		return domain.Cart{}
	}
	if len(blob) == 0 {
		return domain.Cart{}
	}

	var cart domain.Cart
	if err := json.Unmarshal(blob, &cart); err != nil {
		s.logger.Printf("cart blob corrupted, treating as empty: %v", err)
		return domain.Cart{}
	}

	now := s.now()
	kept := cart.Items[:0]
	purged := false
	for _, item := range cart.Items {
		if item.Expired(now) {
			purged = true
			continue
		}
		kept = append(kept, item)
	}
	if purged {
		cart.Items = kept
		s.writeLocked(ctx, cart)
	}
	return cart
}

func (s *Store) writeLocked(ctx context.Context, cart domain.Cart) {
	cart.LastUpdated = s.now()
	blob, err := json.Marshal(cart)
	if err != nil {
		s.logger.Printf("cart serialize failed: %v", err)
		return
	}
	if err := s.port.Write(ctx, blob); err != nil {
		s.logger.Printf("cart persist failed: %v", err)
		return
	}
	for _, fn := range s.subs {
		fn(cart)
	}
}
