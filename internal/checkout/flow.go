package checkout

import (
	"context"
	"log"
	"sync"

	"cartsync/internal/domain"
	"cartsync/internal/gateway"
)

// Submitter submits a checkout to the platform.
type Submitter interface {
	SubmitCheckout(ctx context.Context, req gateway.CheckoutRequest) (*domain.CheckoutResult, error)
}

// Engine is the slice of the reconciliation engine the flow needs.
type Engine interface {
	ApplySnapshot(ctx context.Context, sc *domain.ServerCart)
	Clear(ctx context.Context)
	Flush()
}

// Flow owns a session's checkout corrections. When the platform adjusts a
// submission (price drift, dead coupon, oversold item, shipping change) the
// structured diff is held here until the shopper explicitly accepts it;
// until then further submissions are refused. This is a hard gate, and a
// correction is a recoverable condition, not an error.
type Flow struct {
	engine Engine
	submit Submitter
	logger *log.Logger

	mu      sync.Mutex
	pending *domain.CheckoutResult
}

func New(engine Engine, submit Submitter, logger *log.Logger) *Flow {
	return &Flow{engine: engine, submit: submit, logger: logger}
}

// Submit sends the cart to checkout. Pending debounced quantity commits are
// flushed first so the platform validates the latest quantities. Returns
// ErrCorrectionPending while an unaccepted correction exists.
func (f *Flow) Submit(ctx context.Context, req gateway.CheckoutRequest) (*domain.CheckoutResult, error) {
	f.mu.Lock()
	blocked := f.pending != nil
	f.mu.Unlock()
	if blocked {
		return nil, domain.ErrCorrectionPending
	}

	f.engine.Flush()

	result, err := f.submit.SubmitCheckout(ctx, req)
	if err != nil {
		return nil, err
	}

	if result.NeedsUpdate {
		f.mu.Lock()
		f.pending = result
		f.mu.Unlock()
		return result, nil
	}

	// Order placed; the cart is spent.
	f.engine.Clear(ctx)
	return result, nil
}

// Pending returns the unaccepted correction, or nil.
func (f *Flow) Pending() *domain.CheckoutResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Accept materializes the corrected cart snapshot as the new local truth and
// lifts the gate. Returns ErrNotFound when nothing is pending.
func (f *Flow) Accept(ctx context.Context) error {
	f.mu.Lock()
	pending := f.pending
	f.mu.Unlock()
	if pending == nil {
		return domain.ErrNotFound
	}

	if pending.Errors != nil && pending.Errors.CorrectedCart != nil {
		f.engine.ApplySnapshot(ctx, pending.Errors.CorrectedCart)
	} else {
		f.logger.Printf("correction accepted without a corrected cart snapshot")
	}

	f.mu.Lock()
	f.pending = nil
	f.mu.Unlock()
	return nil
}
