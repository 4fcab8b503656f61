package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"achievex-backend/config"
	"achievex-backend/utils"

	"github.com/google/uuid"
)

// CashfreeService is the session/modal-based gateway adapter. Order
// creation is server-to-server; the client secret never reaches a browser.
type CashfreeService struct {
	Cfg      *config.PaymentConfig
	Bookings *BookingService
	Client   *http.Client
}

func NewCashfreeService(cfg *config.PaymentConfig, bookings *BookingService) *CashfreeService {
	return &CashfreeService{
		Cfg:      cfg,
		Bookings: bookings,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *CashfreeService) Name() string { return "cashfree" }

type cashfreeOrderRequest struct {
	OrderID         string                `json:"order_id"`
	OrderAmount     float64               `json:"order_amount"`
	OrderCurrency   string                `json:"order_currency"`
	OrderNote       string                `json:"order_note,omitempty"`
	CustomerDetails cashfreeCustomerBlock `json:"customer_details"`
}

type cashfreeCustomerBlock struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type cashfreeOrderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderStatus      string `json:"order_status"`
	Message          string `json:"message"`
}

// createOrder requests a payment session from Cashfree. The caller identity
// (customer block) attributes the gateway-side order.
func (s *CashfreeService) createOrder(orderID string, req TrialBookingRequest) (*cashfreeOrderResponse, error) {
	payload := cashfreeOrderRequest{
		OrderID:       orderID,
		OrderAmount:   s.Cfg.TrialAmount,
		OrderCurrency: "INR",
		OrderNote:     s.Cfg.ProductInfo,
		CustomerDetails: cashfreeCustomerBlock{
			CustomerID:    "cust_" + uuid.NewString(),
			CustomerName:  req.FullName,
			CustomerEmail: req.Email,
			CustomerPhone: req.Phone,
		},
	}

	b, _ := json.Marshal(payload)

	httpReq, err := http.NewRequest("POST", s.Cfg.Cashfree.BaseURL+"/pg/orders", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-version", s.Cfg.Cashfree.APIVersion)
	httpReq.Header.Set("x-client-id", s.Cfg.Cashfree.ClientID)
	httpReq.Header.Set("x-client-secret", s.Cfg.Cashfree.ClientSecret)

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var or cashfreeOrderResponse
	if err := json.Unmarshal(bodyBytes, &or); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if or.PaymentSessionID == "" {
		return nil, fmt.Errorf("payment_session_id missing from order response")
	}
	return &or, nil
}

// Initiate creates the gateway order first and only then the pending
// booking, so an order-creation failure leaves no orphaned record and a
// booking-create failure is loggable against a known gateway order.
func (s *CashfreeService) Initiate(req TrialBookingRequest) (*PaymentInitiation, error) {
	orderID, err := utils.GenerateOrderID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayOrder, err)
	}

	order, err := s.createOrder(orderID, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayOrder, err)
	}
	if order.OrderID != "" {
		orderID = order.OrderID
	}

	booking, err := s.Bookings.Create(BookingDraft{
		OrderID:      orderID,
		StudentName:  req.FullName,
		StudentEmail: req.Email,
		StudentPhone: req.Phone,
		Grade:        req.Grade,
		Goals:        req.Goals,
		SessionDate:  req.SelectedDate,
		TimeSlot:     req.TimeSlot,
		Amount:       s.Cfg.TrialAmount,
	})
	if err != nil {
		// A gateway-side order now exists with no local record; this needs
		// operator attention, not a user retry.
		log.Printf("ALERT: cashfree order %s created but booking write failed: %v", orderID, err)
		return nil, fmt.Errorf("%w: %v", ErrBookingCreate, err)
	}

	return &PaymentInitiation{
		Gateway:          s.Name(),
		Mode:             ModeSession,
		OrderID:          orderID,
		BookingID:        booking.ID,
		PaymentSessionID: order.PaymentSessionID,
	}, nil
}
