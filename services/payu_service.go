package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"achievex-backend/config"
	"achievex-backend/utils"
)

// PayuService is the redirect-based gateway adapter. It is the only
// component trusted to hold the merchant salt; callers only ever see the
// resulting digest and txnid.
type PayuService struct {
	Cfg      *config.PaymentConfig
	Bookings *BookingService
}

func NewPayuService(cfg *config.PaymentConfig, bookings *BookingService) *PayuService {
	return &PayuService{Cfg: cfg, Bookings: bookings}
}

func (s *PayuService) Name() string { return "payu" }

// HashRequest is the hash-service input. Amount is a json.Number-compatible
// string so both numeric and string JSON payloads bind.
type HashRequest struct {
	Amount      string
	ProductInfo string
	Firstname   string
	Email       string
}

// HashResult carries the only two values that leave the hash boundary.
type HashResult struct {
	Hash  string `json:"hash"`
	TxnID string `json:"txnid"`
}

// GenerateHash mints a fresh txnid and signs the order-sensitive field
// sequence with the merchant salt. Stateless beyond txnid generation.
func (s *PayuService) GenerateHash(req HashRequest) (*HashResult, error) {
	if strings.TrimSpace(req.Amount) == "" ||
		strings.TrimSpace(req.ProductInfo) == "" ||
		strings.TrimSpace(req.Firstname) == "" ||
		strings.TrimSpace(req.Email) == "" {
		return nil, ErrMissingHashField
	}

	txnid, err := utils.GenerateTxnID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashRequest, err)
	}

	hash, err := utils.GeneratePayuHash(
		s.Cfg.Payu.Key, txnid,
		req.Amount, req.ProductInfo, req.Firstname, req.Email,
		s.Cfg.Payu.Salt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashRequest, err)
	}

	log.Printf("Generated PayU hash for txnid: %s", txnid)
	return &HashResult{Hash: hash, TxnID: txnid}, nil
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// Initiate runs the redirect flow up to the point control leaves this
// origin: hash first, then the pending booking keyed by txnid, then the
// full auto-post field set for the hosted payment page. If either step
// fails the caller must not navigate to the gateway.
func (s *PayuService) Initiate(req TrialBookingRequest) (*PaymentInitiation, error) {
	amount := formatAmount(s.Cfg.TrialAmount)
	firstname := strings.TrimSpace(req.FullName)

	hashRes, err := s.GenerateHash(HashRequest{
		Amount:      amount,
		ProductInfo: s.Cfg.ProductInfo,
		Firstname:   firstname,
		Email:       req.Email,
	})
	if err != nil {
		return nil, err
	}

	booking, err := s.Bookings.Create(BookingDraft{
		OrderID:      hashRes.TxnID,
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
		return nil, fmt.Errorf("%w: %v", ErrBookingCreate, err)
	}

	return &PaymentInitiation{
		Gateway:   s.Name(),
		Mode:      ModeRedirect,
		OrderID:   hashRes.TxnID,
		BookingID: booking.ID,
		Action:    s.Cfg.Payu.BaseURL,
		Fields: map[string]string{
			"key":         s.Cfg.Payu.Key,
			"txnid":       hashRes.TxnID,
			"amount":      amount,
			"productinfo": s.Cfg.ProductInfo,
			"firstname":   firstname,
			"email":       req.Email,
			"phone":       req.Phone,
			"hash":        hashRes.Hash,
			"surl":        s.Cfg.Payu.SuccessURL,
			"furl":        s.Cfg.Payu.FailureURL,
		},
	}, nil
}
