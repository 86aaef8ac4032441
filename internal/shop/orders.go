package shop

import (
	"context"
	"fmt"
	"net/url"
	"sort"
)

// OrderService reads and cancels the user's orders
type OrderService struct {
	gw   Gateway
	auth Authenticator
}

// NewOrderService creates an order service
func NewOrderService(gw Gateway, auth Authenticator) *OrderService {
	return &OrderService{gw: gw, auth: auth}
}

type orderResponse struct {
	Order Order `json:"order"`
}

type ordersResponse struct {
	Orders []Order `json:"orders"`
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	var resp orderResponse
	if err := s.gw.Get(ctx, "/api/orders/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("loading order %s: %w", id, err)
	}
	return &resp.Order, nil
}

// ListMine returns the user's orders, newest first
func (s *OrderService) ListMine(ctx context.Context) ([]Order, error) {
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	var resp ordersResponse
	if err := s.gw.Get(ctx, "/api/orders/user", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	sort.SliceStable(resp.Orders, func(i, j int) bool {
		return resp.Orders[i].CreatedAt.After(resp.Orders[j].CreatedAt)
	})
	return resp.Orders, nil
}

// Cancel asks the backend to cancel an order
func (s *OrderService) Cancel(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	var resp orderResponse
	if err := s.gw.Put(ctx, "/api/orders/cancel/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("cancelling order %s: %w", id, err)
	}
	return &resp.Order, nil
}
