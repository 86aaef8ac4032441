package shop

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/swadbest/shopctl/internal/counts"
)

// CartService mutates and reads the signed-in user's cart.
// Mutations on the same line are serialized so rapid quantity changes cannot interleave.
type CartService struct {
	gw     Gateway
	auth   Authenticator
	counts CountRefresher
	locks  *keyLock
	logger *slog.Logger
}

// NewCartService creates a cart service. refresher may be nil.
func NewCartService(gw Gateway, auth Authenticator, refresher CountRefresher, logger *slog.Logger) *CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{
		gw:     gw,
		auth:   auth,
		counts: refresher,
		locks:  newKeyLock(),
		logger: logger,
	}
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type updateCartRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type cartResponse struct {
	Cart Cart `json:"cart"`
}

// Add puts quantity units of a variant in the cart
func (s *CartService) Add(ctx context.Context, productID, variantID string, quantity int) (*Cart, error) {
	if productID == "" || variantID == "" {
		return nil, ErrMissingID
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}

	unlock := s.locks.Lock("variant:" + productID + "/" + variantID)
	defer unlock()

	var resp cartResponse
	req := addToCartRequest{ProductID: productID, VariantID: variantID, Quantity: quantity}
	if err := s.gw.Post(ctx, "/api/cart/add", req, &resp); err != nil {
		return nil, fmt.Errorf("adding to cart: %w", err)
	}
	s.changed(ctx)
	return &resp.Cart, nil
}

// UpdateQuantity sets the quantity of a cart line
func (s *CartService) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*Cart, error) {
	if itemID == "" {
		return nil, ErrMissingID
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}

	unlock := s.locks.Lock("item:" + itemID)
	defer unlock()

	var resp cartResponse
	if err := s.gw.Patch(ctx, "/api/cart/update", updateCartRequest{ItemID: itemID, Quantity: quantity}, &resp); err != nil {
		return nil, fmt.Errorf("updating cart item %s: %w", itemID, err)
	}
	s.changed(ctx)
	return &resp.Cart, nil
}

// Remove deletes a cart line
func (s *CartService) Remove(ctx context.Context, itemID string) error {
	if itemID == "" {
		return ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return ErrLoginRequired
	}

	unlock := s.locks.Lock("item:" + itemID)
	defer unlock()

	if err := s.gw.Delete(ctx, "/api/cart/remove/"+url.PathEscape(itemID), nil); err != nil {
		return fmt.Errorf("removing cart item %s: %w", itemID, err)
	}
	s.changed(ctx)
	return nil
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		return ErrLoginRequired
	}
	if err := s.gw.Delete(ctx, "/api/cart/clear", nil); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	s.changed(ctx)
	return nil
}

// Get returns the cart contents
func (s *CartService) Get(ctx context.Context) (*Cart, error) {
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	var resp cartResponse
	if err := s.gw.Get(ctx, "/api/cart", nil, &resp); err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	return &resp.Cart, nil
}

// Counts fetches the badge counts directly, bypassing the synchronizer
func (s *CartService) Counts(ctx context.Context) (counts.Counts, error) {
	if !s.auth.IsAuthenticated() {
		return counts.Counts{}, ErrLoginRequired
	}
	return CountsFetcher(s.gw)(ctx)
}

// CountsFetcher returns the fetch function for a counts.Synchronizer
func CountsFetcher(gw Gateway) counts.FetchFunc {
	return func(ctx context.Context) (counts.Counts, error) {
		var c counts.Counts
		if err := gw.Get(ctx, "/api/cart/counts", nil, &c); err != nil {
			return counts.Counts{}, fmt.Errorf("loading cart counts: %w", err)
		}
		return c, nil
	}
}

func (s *CartService) changed(ctx context.Context) {
	if s.counts == nil {
		return
	}
	// the synchronizer logs its own failures; the mutation already succeeded
	_ = s.counts.Refetch(ctx)
}
