// Package shop wraps the storefront backend endpoints in typed services.
//
// Every service talks to the backend through a Gateway, which is satisfied by
// *apiclient.Client. Mutating cart and wishlist calls tell a CountRefresher so
// that badge counts follow the server.
package shop

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/swadbest/shopctl/internal/apiclient"
	"github.com/swadbest/shopctl/internal/session"
	"github.com/swadbest/shopctl/internal/shipment"
)

// Gateway is the subset of the API client used by the services
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Do(ctx context.Context, r apiclient.Request, out any) error
}

// Authenticator reports whether protected calls can be made
type Authenticator interface {
	IsAuthenticated() bool
}

// SessionManager is the part of the session store the auth flows need
type SessionManager interface {
	Authenticator
	Login(user session.User, accessToken, refreshToken string) error
	Logout() error
	User() *session.User
}

// CountRefresher is told after every successful cart or wishlist mutation
type CountRefresher interface {
	Refetch(ctx context.Context) error
}

// Variant is one purchasable configuration of a product
type Variant struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
	MRP   float64 `json:"mrp,omitempty"`
	Stock int     `json:"stock"`
}

// InStock reports whether the variant can be added to the cart
func (v Variant) InStock() bool {
	return v.Stock > 0
}

// Product is a catalog entry
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Variants    []Variant `json:"variants"`
}

// Variant returns the variant with id
func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// DefaultVariant returns the first in-stock variant, else the first variant
func (p Product) DefaultVariant() (Variant, bool) {
	for _, v := range p.Variants {
		if v.InStock() {
			return v, true
		}
	}
	if len(p.Variants) > 0 {
		return p.Variants[0], true
	}
	return Variant{}, false
}

// ProductQuery filters the catalog listing
type ProductQuery struct {
	Search   string
	Category string
	Sort     string
	Page     int
	Limit    int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// ProductPage is one page of catalog results
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
}

// CartItem is one line in the cart
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	Variant   string  `json:"variantLabel,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// LineTotal is price times quantity
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart is the signed-in user's cart
type Cart struct {
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

// Total returns the backend subtotal, or the sum of line totals when it is missing
func (c Cart) Total() float64 {
	if c.Subtotal > 0 {
		return c.Subtotal
	}
	var sum float64
	for _, it := range c.Items {
		sum += it.LineTotal()
	}
	return sum
}

// WishlistItem is one saved product
type WishlistItem struct {
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	AddedAt   string  `json:"addedAt,omitempty"`
}

// OrderItem is one line of an order
type OrderItem struct {
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId,omitempty"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is a placed order
type Order struct {
	ID            string      `json:"id"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus,omitempty"`
	Total         float64     `json:"total"`
	Items         []OrderItem `json:"items"`
	AWB           string      `json:"awbCode,omitempty"`
	ShipmentID    string      `json:"shipmentId,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// ShipmentStatus normalizes the order status for timeline rendering
func (o Order) ShipmentStatus() shipment.Status {
	return shipment.Normalize(o.Status)
}

// Cancellable reports whether the backend would still accept a cancel
func (o Order) Cancellable() bool {
	switch o.ShipmentStatus() {
	case shipment.StatusPlaced, shipment.StatusPreparing:
		return true
	default:
		return false
	}
}

// PaymentOrder is the provider handoff returned by create-order
type PaymentOrder struct {
	ProviderOrderID string  `json:"razorpayOrderId"`
	OrderID         string  `json:"orderId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	PublicKey       string  `json:"key,omitempty"`
}

// PaymentVerification is the provider callback payload checked by the backend
type PaymentVerification struct {
	ProviderOrderID string `json:"razorpay_order_id"`
	PaymentID       string `json:"razorpay_payment_id"`
	Signature       string `json:"razorpay_signature"`
}

// PaymentResult is the verify outcome
type PaymentResult struct {
	Verified bool   `json:"success"`
	OrderID  string `json:"orderId,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Blog is a content post. Content is HTML as served by the backend.
type Blog struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Content     string    `json:"content,omitempty"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Shipment is the provider record created for an order
type Shipment struct {
	OrderID         string `json:"orderId"`
	ShipmentID      string `json:"shipmentId"`
	ProviderOrderID string `json:"shiprocketOrderId,omitempty"`
	Status          string `json:"status,omitempty"`
}

// AWBAssignment is the result of generating an air waybill
type AWBAssignment struct {
	ShipmentID  string `json:"shipmentId"`
	AWB         string `json:"awbCode"`
	CourierName string `json:"courierName,omitempty"`
}

// Manifest is a generated pickup manifest
type Manifest struct {
	URL string `json:"manifestUrl"`
}

// TrackingActivity is one carrier scan
type TrackingActivity struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Activity string `json:"activity"`
	Location string `json:"location,omitempty"`
}

// TrackingInfo is the latest carrier view of a shipment
type TrackingInfo struct {
	AWB           string             `json:"awbCode"`
	CurrentStatus string             `json:"currentStatus"`
	Courier       string             `json:"courierName,omitempty"`
	ETA           string             `json:"etd,omitempty"`
	Activities    []TrackingActivity `json:"activities,omitempty"`
}

// Status normalizes the raw carrier status
func (t TrackingInfo) Status() shipment.Status {
	return shipment.Normalize(t.CurrentStatus)
}
