package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"cartsync/internal/domain"
	"cartsync/internal/gateway"
)

type stubEngine struct {
	applied    *domain.ServerCart
	cleared    int
	flushed    int
	applyCalls int
}

func (s *stubEngine) ApplySnapshot(_ context.Context, sc *domain.ServerCart) {
	s.applyCalls++
	s.applied = sc
}

func (s *stubEngine) Clear(_ context.Context) { s.cleared++ }
func (s *stubEngine) Flush()                  { s.flushed++ }

type stubSubmitter struct {
	results []*domain.CheckoutResult
	err     error
	calls   int
}

func (s *stubSubmitter) SubmitCheckout(_ context.Context, _ gateway.CheckoutRequest) (*domain.CheckoutResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++
	return s.results[idx], nil
}

func newTestFlow(eng *stubEngine, sub *stubSubmitter) *Flow {
	return New(eng, sub, log.New(io.Discard, "", 0))
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	eng := &stubEngine{}
	sub := &stubSubmitter{results: []*domain.CheckoutResult{
		{NeedsUpdate: false, OrderID: "ord-1", Summary: &domain.OrderSummary{TotalCents: 5000}},
	}}
	f := newTestFlow(eng, sub)

	res, err := f.Submit(context.Background(), gateway.CheckoutRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OrderID != "ord-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if eng.flushed != 1 {
		t.Fatalf("pending commits must be flushed before submit")
	}
	if eng.cleared != 1 {
		t.Fatalf("successful checkout must clear the cart")
	}
	if f.Pending() != nil {
		t.Fatalf("no correction expected")
	}
}

func TestSubmitCorrectionBlocksUntilAccepted(t *testing.T) {
	corrected := &domain.ServerCart{ID: "sc1", Items: []domain.ServerItem{
		{ID: "s1", ProductID: "P1", Quantity: 1, UnitPriceCents: 900,
			Product: &domain.ProductSnapshot{ID: "P1", Stock: 5}},
	}}
	sub := &stubSubmitter{results: []*domain.CheckoutResult{
		{NeedsUpdate: true, Errors: &domain.Correction{
			ItemMessages:  []domain.ItemMessage{{ProductID: "P1", Message: "price changed"}},
			CorrectedCart: corrected,
		}},
		{NeedsUpdate: false, OrderID: "ord-2"},
	}}
	eng := &stubEngine{}
	f := newTestFlow(eng, sub)
	ctx := context.Background()

	res, err := f.Submit(ctx, gateway.CheckoutRequest{})
	if err != nil {
		t.Fatalf("correction is not an error: %v", err)
	}
	if !res.NeedsUpdate || f.Pending() == nil {
		t.Fatalf("expected pending correction, got %+v", res)
	}
	if eng.cleared != 0 {
		t.Fatalf("corrected checkout must not clear the cart")
	}

	// hard gate
	if _, err := f.Submit(ctx, gateway.CheckoutRequest{}); !errors.Is(err, domain.ErrCorrectionPending) {
		t.Fatalf("expected ErrCorrectionPending, got %v", err)
	}
	if sub.calls != 1 {
		t.Fatalf("blocked submit must not reach the platform")
	}

	if err := f.Accept(ctx); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if eng.applyCalls != 1 || eng.applied != corrected {
		t.Fatalf("accept must apply the corrected snapshot")
	}
	if f.Pending() != nil {
		t.Fatalf("gate must lift after acceptance")
	}

	res, err = f.Submit(ctx, gateway.CheckoutRequest{})
	if err != nil || res.OrderID != "ord-2" {
		t.Fatalf("resubmit after acceptance failed: %+v %v", res, err)
	}
}

func TestAcceptWithoutPending(t *testing.T) {
	f := newTestFlow(&stubEngine{}, &stubSubmitter{})
	if err := f.Accept(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitNetworkFault(t *testing.T) {
	eng := &stubEngine{}
	f := newTestFlow(eng, &stubSubmitter{err: errors.New("unreachable")})
	if _, err := f.Submit(context.Background(), gateway.CheckoutRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if f.Pending() != nil {
		t.Fatalf("a network fault is not a correction")
	}
	if eng.cleared != 0 {
		t.Fatalf("failed submit must not clear the cart")
	}
}
