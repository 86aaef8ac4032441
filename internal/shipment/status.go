// Package shipment maps free-text carrier statuses onto a fixed order lifecycle
package shipment

import "strings"

// Status is a normalized shipment lifecycle stage
type Status string

const (
	StatusPlaced         Status = "placed"
	StatusPreparing      Status = "preparing"
	StatusShipped        Status = "shipped"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusRTO            Status = "rto"
)

// Lifecycle is the ordered non-terminal progression
var Lifecycle = []Status{
	StatusPlaced,
	StatusPreparing,
	StatusShipped,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
}

// rules are checked in order; terminal and more specific stages come first.
// "out" precedes "deliver" so that "Out for Delivery" is not read as delivered.
var rules = []struct {
	keyword string
	status  Status
}{
	{"cancel", StatusCancelled},
	{"rto", StatusRTO},
	{"out", StatusOutForDelivery},
	{"deliver", StatusDelivered},
	{"transit", StatusInTransit},
	{"ship", StatusShipped},
	{"prepar", StatusPreparing},
}

var labels = map[Status]string{
	StatusPlaced:         "Order Placed",
	StatusPreparing:      "Preparing",
	StatusShipped:        "Shipped",
	StatusInTransit:      "In Transit",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
	StatusRTO:            "Returned to Origin",
}

// Normalize maps a raw carrier status to a Status. Unrecognized or empty input is StatusPlaced.
func Normalize(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return StatusPlaced
	}
	for _, r := range rules {
		if strings.Contains(s, r.keyword) {
			return r.status
		}
	}
	return StatusPlaced
}

// IsTerminal reports whether the status ends the shipment without delivery
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRTO
}

// Label returns a human readable name
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return labels[StatusPlaced]
}

// Index returns the position of s in Lifecycle, or 0 when s is not part of it
func (s Status) Index() int {
	for i, st := range Lifecycle {
		if st == s {
			return i
		}
	}
	return 0
}
