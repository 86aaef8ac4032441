package shop

import (
	"context"
	"sync"
	"time"
)

// AddedResetDelay is how long the button shows its confirmation
const AddedResetDelay = 1500 * time.Millisecond

// ButtonState is the visible state of an add-to-cart button
type ButtonState int

const (
	ButtonIdle ButtonState = iota
	ButtonDisabled
	ButtonAdding
	ButtonAdded
)

func (s ButtonState) String() string {
	switch s {
	case ButtonDisabled:
		return "Out of stock"
	case ButtonAdding:
		return "Adding..."
	case ButtonAdded:
		return "Added"
	default:
		return "Add to Cart"
	}
}

// AddToCartButton is the add-to-cart action for one variant.
// An out-of-stock variant is disabled and never sends a request.
type AddToCartButton struct {
	cart      *CartService
	auth      Authenticator
	productID string
	variant   Variant

	resetAfter time.Duration
	onChange   func(ButtonState)

	mu    sync.Mutex
	state ButtonState
	timer *time.Timer
}

// ButtonOption configures an AddToCartButton
type ButtonOption func(*AddToCartButton)

// WithResetAfter overrides how long the Added state is shown
func WithResetAfter(d time.Duration) ButtonOption {
	return func(b *AddToCartButton) {
		if d > 0 {
			b.resetAfter = d
		}
	}
}

// WithStateListener is called after every state change
func WithStateListener(fn func(ButtonState)) ButtonOption {
	return func(b *AddToCartButton) {
		b.onChange = fn
	}
}

// NewAddToCartButton creates the button for a variant of productID
func NewAddToCartButton(cart *CartService, auth Authenticator, productID string, variant Variant, opts ...ButtonOption) *AddToCartButton {
	b := &AddToCartButton{
		cart:       cart,
		auth:       auth,
		productID:  productID,
		variant:    variant,
		resetAfter: AddedResetDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	if !variant.InStock() {
		b.state = ButtonDisabled
	}
	return b
}

// State returns the current button state
func (b *AddToCartButton) State() ButtonState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Click adds quantity units to the cart. Without a session it returns
// ErrLoginRequired and for a variant without stock ErrOutOfStock, in both
// cases without contacting the backend.
func (b *AddToCartButton) Click(ctx context.Context, quantity int) error {
	if !b.auth.IsAuthenticated() {
		return ErrLoginRequired
	}

	b.mu.Lock()
	switch b.state {
	case ButtonDisabled:
		b.mu.Unlock()
		return ErrOutOfStock
	case ButtonAdding:
		b.mu.Unlock()
		return ErrBusy
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.state = ButtonAdding
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn(ButtonAdding)
	}

	if _, err := b.cart.Add(ctx, b.productID, b.variant.ID, quantity); err != nil {
		b.transition(ButtonIdle)
		return err
	}

	b.transition(ButtonAdded)
	b.mu.Lock()
	b.timer = time.AfterFunc(b.resetAfter, b.reset)
	b.mu.Unlock()
	return nil
}

// Close stops a pending reset
func (b *AddToCartButton) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *AddToCartButton) reset() {
	b.mu.Lock()
	if b.state != ButtonAdded {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.transition(ButtonIdle)
}

func (b *AddToCartButton) transition(to ButtonState) {
	b.mu.Lock()
	changed := b.state != to
	b.state = to
	fn := b.onChange
	b.mu.Unlock()

	if changed && fn != nil {
		fn(to)
	}
}
