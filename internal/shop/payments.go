package shop

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/swadbest/shopctl/internal/apiclient"
)

// IdempotencyHeader carries the per-attempt key on create-order
const IdempotencyHeader = "Idempotency-Key"

// PaymentService hands orders to the payment provider and verifies the result
type PaymentService struct {
	gw        Gateway
	auth      Authenticator
	publicKey string
}

// NewPaymentService creates a payment service. publicKey is the provider key shown to the checkout.
func NewPaymentService(gw Gateway, auth Authenticator, publicKey string) *PaymentService {
	return &PaymentService{gw: gw, auth: auth, publicKey: publicKey}
}

// PublicKey returns the configured provider public key
func (s *PaymentService) PublicKey() string {
	return s.publicKey
}

type createPaymentRequest struct {
	OrderID string `json:"orderId"`
}

// CreateOrder registers an order with the payment provider
func (s *PaymentService) CreateOrder(ctx context.Context, orderID string) (*PaymentOrder, error) {
	if orderID == "" {
		return nil, ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}

	header := http.Header{}
	header.Set(IdempotencyHeader, uuid.NewString())

	var po PaymentOrder
	err := s.gw.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/payments/create-order",
		Body:   createPaymentRequest{OrderID: orderID},
		Header: header,
	}, &po)
	if err != nil {
		return nil, fmt.Errorf("starting payment for order %s: %w", orderID, err)
	}
	if po.OrderID == "" {
		po.OrderID = orderID
	}
	if po.PublicKey == "" {
		po.PublicKey = s.publicKey
	}
	return &po, nil
}

// Verify sends the provider callback to the backend. It works without a session.
func (s *PaymentService) Verify(ctx context.Context, v PaymentVerification) (*PaymentResult, error) {
	if v.ProviderOrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return nil, fmt.Errorf("order id, payment id and signature are required")
	}
	var res PaymentResult
	if err := s.gw.Post(ctx, "/api/payments/verify", v, &res); err != nil {
		return nil, fmt.Errorf("verifying payment %s: %w", v.PaymentID, err)
	}
	return &res, nil
}
