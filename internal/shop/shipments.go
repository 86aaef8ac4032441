package shop

import (
	"context"
	"fmt"
	"net/url"
)

// ShipmentService drives the logistics provider endpoints
type ShipmentService struct {
	gw   Gateway
	auth Authenticator
}

// NewShipmentService creates a shipment service
func NewShipmentService(gw Gateway, auth Authenticator) *ShipmentService {
	return &ShipmentService{gw: gw, auth: auth}
}

type trackingResponse struct {
	Tracking TrackingInfo `json:"tracking"`
}

// CreateShipment registers an order with the logistics provider
func (s *ShipmentService) CreateShipment(ctx context.Context, orderID string) (*Shipment, error) {
	if orderID == "" {
		return nil, ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	var sh Shipment
	if err := s.gw.Post(ctx, "/shiprocket/create-order", map[string]string{"orderId": orderID}, &sh); err != nil {
		return nil, fmt.Errorf("creating shipment for order %s: %w", orderID, err)
	}
	if sh.OrderID == "" {
		sh.OrderID = orderID
	}
	return &sh, nil
}

// GenerateAWB assigns a courier and air waybill to a shipment
func (s *ShipmentService) GenerateAWB(ctx context.Context, shipmentID string) (*AWBAssignment, error) {
	if shipmentID == "" {
		return nil, ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	var awb AWBAssignment
	if err := s.gw.Post(ctx, "/shiprocket/generate-awb", map[string]string{"shipmentId": shipmentID}, &awb); err != nil {
		return nil, fmt.Errorf("generating AWB for shipment %s: %w", shipmentID, err)
	}
	if awb.ShipmentID == "" {
		awb.ShipmentID = shipmentID
	}
	return &awb, nil
}

// GenerateManifest builds the pickup manifest for one or more shipments
func (s *ShipmentService) GenerateManifest(ctx context.Context, shipmentIDs ...string) (*Manifest, error) {
	if len(shipmentIDs) == 0 {
		return nil, ErrMissingID
	}
	if !s.auth.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	var m Manifest
	if err := s.gw.Post(ctx, "/shiprocket/generate-manifest", map[string][]string{"shipmentIds": shipmentIDs}, &m); err != nil {
		return nil, fmt.Errorf("generating manifest: %w", err)
	}
	return &m, nil
}

// Track returns the latest carrier status for an air waybill
func (s *ShipmentService) Track(ctx context.Context, awb string) (*TrackingInfo, error) {
	if awb == "" {
		return nil, ErrMissingID
	}
	var resp trackingResponse
	if err := s.gw.Get(ctx, "/shiprocket/track/"+url.PathEscape(awb), nil, &resp); err != nil {
		return nil, fmt.Errorf("tracking %s: %w", awb, err)
	}
	if resp.Tracking.AWB == "" {
		resp.Tracking.AWB = awb
	}
	return &resp.Tracking, nil
}
