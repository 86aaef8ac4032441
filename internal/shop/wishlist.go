package shop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// WishlistService mutates and reads the saved-products list
type WishlistService struct {
	gw     Gateway
	auth   Authenticator
	counts CountRefresher
	logger *slog.Logger
}

// NewWishlistService creates a wishlist service. refresher may be nil.
func NewWishlistService(gw Gateway, auth Authenticator, refresher CountRefresher, logger *slog.Logger) *WishlistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WishlistService{gw: gw, auth: auth, counts: refresher, logger: logger}
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
}

type toggleResponse struct {
	InWishlist bool   `json:"inWishlist"`
	Message    string `json:"message,omitempty"`
}

type wishlistResponse struct {
	Items []WishlistItem `json:"items"`
}

// Toggle adds or removes a product and reports whether it is now saved
func (s *WishlistService) Toggle(ctx context.Context, productID, variantID string) (bool, error) {
	if productID == "" {
		return false, ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return false, ErrLoginRequired
	}

	var resp toggleResponse
	if err := s.gw.Post(ctx, "/api/cart/wishlist/toggle", wishlistRequest{ProductID: productID, VariantID: variantID}, &resp); err != nil {
		return false, fmt.Errorf("updating wishlist: %w", err)
	}
	s.changed(ctx)
	return resp.InWishlist, nil
}

// MoveToCart moves a saved product into the cart
func (s *WishlistService) MoveToCart(ctx context.Context, productID, variantID string) error {
	if productID == "" {
		return ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return ErrLoginRequired
	}

	if err := s.gw.Post(ctx, "/api/cart/wishlist/move-to-cart", wishlistRequest{ProductID: productID, VariantID: variantID}, nil); err != nil {
		return fmt.Errorf("moving %s to cart: %w", productID, err)
	}
	s.changed(ctx)
	return nil
}

// List returns the saved products
func (s *WishlistService) List(ctx context.Context) ([]WishlistItem, error) {
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	var resp wishlistResponse
	if err := s.gw.Get(ctx, "/api/cart/wishlist", nil, &resp); err != nil {
		return nil, fmt.Errorf("loading wishlist: %w", err)
	}
	return resp.Items, nil
}

func (s *WishlistService) changed(ctx context.Context) {
	if s.counts != nil {
		_ = s.counts.Refetch(ctx)
	}
}

// WishlistState is the local liked/unliked view of a product list.
// Toggle flips the local state before the request and puts it back if the request fails.
type WishlistState struct {
	mu    sync.RWMutex
	liked map[string]bool
	svc   *WishlistService
}

// NewWishlistState seeds the state from a loaded wishlist
func NewWishlistState(svc *WishlistService, items []WishlistItem) *WishlistState {
	liked := make(map[string]bool, len(items))
	for _, it := range items {
		liked[it.ProductID] = true
	}
	return &WishlistState{liked: liked, svc: svc}
}

// Liked reports the current local state of productID
func (w *WishlistState) Liked(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.liked[productID]
}

// Toggle flips productID and returns the resulting state
func (w *WishlistState) Toggle(ctx context.Context, productID, variantID string) (bool, error) {
	w.mu.Lock()
	prev := w.liked[productID]
	w.liked[productID] = !prev
	w.mu.Unlock()

	saved, err := w.svc.Toggle(ctx, productID, variantID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.liked[productID] = prev
		return prev, err
	}
	w.liked[productID] = saved
	return saved, nil
}
