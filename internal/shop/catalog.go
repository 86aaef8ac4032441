package shop

import (
	"context"
	"fmt"
	"net/url"
)

// CatalogService reads products
type CatalogService struct {
	gw Gateway
}

// NewCatalogService creates a catalog service
func NewCatalogService(gw Gateway) *CatalogService {
	return &CatalogService{gw: gw}
}

type productResponse struct {
	Product Product `json:"product"`
}

// ListProducts returns one page of the catalog
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	var page ProductPage
	if err := s.gw.Get(ctx, "/api/products", q.values(), &page); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return &page, nil
}

// GetProduct returns one product with its variants
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	var resp productResponse
	if err := s.gw.Get(ctx, "/api/products/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("loading product %s: %w", id, err)
	}
	return &resp.Product, nil
}
