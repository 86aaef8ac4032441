package shop

import (
	"log/slog"
	"time"
)

// Options configures NewServices
type Options struct {
	PaymentPublicKey string
	BlogTTL          time.Duration
	HomeProducts     int
	Counts           CountRefresher
	Logger           *slog.Logger
	Now              func() time.Time
}

// Services groups every storefront service over one gateway and session
type Services struct {
	Auth      *AuthService
	Catalog   *CatalogService
	Cart      *CartService
	Wishlist  *WishlistService
	Orders    *OrderService
	Payments  *PaymentService
	Blogs     *BlogService
	Shipments *ShipmentService
	Home      *HomeService

	session SessionManager
}

// NewServices wires the services together
func NewServices(gw Gateway, sess SessionManager, opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	catalog := NewCatalogService(gw)
	blogs := NewBlogService(gw, opts.BlogTTL, opts.Now)
	return &Services{
		Auth:      NewAuthService(gw, sess, logger),
		Catalog:   catalog,
		Cart:      NewCartService(gw, sess, opts.Counts, logger),
		Wishlist:  NewWishlistService(gw, sess, opts.Counts, logger),
		Orders:    NewOrderService(gw, sess),
		Payments:  NewPaymentService(gw, sess, opts.PaymentPublicKey),
		Blogs:     blogs,
		Shipments: NewShipmentService(gw, sess),
		Home:      NewHomeService(catalog, blogs, opts.HomeProducts, logger),
		session:   sess,
	}
}

// AddToCartButton creates a button for variant of productID using the shared cart
func (s *Services) AddToCartButton(productID string, variant Variant, opts ...ButtonOption) *AddToCartButton {
	return NewAddToCartButton(s.Cart, s.session, productID, variant, opts...)
}
