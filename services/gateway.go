package services

import (
	"errors"
	"strings"
)

// Adapter-boundary errors. Raw provider failures are normalized into these
// before reaching any controller.
var (
	ErrHashRequest      = errors.New("hash_request_failed")
	ErrGatewayOrder     = errors.New("gateway_order_failed")
	ErrBookingCreate    = errors.New("booking_create_failed")
	ErrUnknownGateway   = errors.New("unknown_gateway")
	ErrMissingHashField = errors.New("missing_required_fields")
)

// TrialBookingRequest is the student's booking-form submission.
type TrialBookingRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Grade        string `json:"grade"`
	Goals        string `json:"goals"`
	SelectedDate string `json:"selectedDate"`
	TimeSlot     string `json:"timeSlot"`
}

// Initiation modes, the tagged-variant discriminator of PaymentInitiation.
const (
	ModeRedirect = "redirect"
	ModeSession  = "session"
)

// PaymentInitiation is the gateway-agnostic result of starting a payment.
// For redirect gateways the client auto-posts Fields to Action; for session
// gateways it opens the embedded checkout with PaymentSessionID.
type PaymentInitiation struct {
	Gateway   string `json:"gateway"`
	Mode      string `json:"mode"`
	OrderID   string `json:"orderId"`
	BookingID uint   `json:"bookingId"`

	// redirect mode
	Action string            `json:"action,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`

	// session mode
	PaymentSessionID string `json:"paymentSessionId,omitempty"`
}

// PaymentGateway abstracts one payment provider's integration pattern. By
// the time Initiate returns, a pending booking exists for the order — or no
// booking and no order exist at all.
type PaymentGateway interface {
	Name() string
	Initiate(req TrialBookingRequest) (*PaymentInitiation, error)
}

// GatewayRegistry dispatches initiation requests by gateway name.
type GatewayRegistry struct {
	gateways map[string]PaymentGateway
}

func NewGatewayRegistry(gateways ...PaymentGateway) *GatewayRegistry {
	r := &GatewayRegistry{gateways: map[string]PaymentGateway{}}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *GatewayRegistry) Get(name string) (PaymentGateway, error) {
	g, ok := r.gateways[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrUnknownGateway
	}
	return g, nil
}
