package services

import (
	"errors"
	"testing"

	"achievex-backend/models"
	"achievex-backend/utils"
)

func newPayuFixture(t *testing.T) (*PayuService, *BookingService) {
	t.Helper()
	bookings := NewBookingService(newTestDB(t))
	return NewPayuService(newTestPaymentConfig(), bookings), bookings
}

func TestGenerateHash_MissingFields(t *testing.T) {
	svc, _ := newPayuFixture(t)

	cases := []HashRequest{
		{},
		{Amount: "19"},
		{Amount: "19", ProductInfo: "Trial Session"},
		{Amount: "19", ProductInfo: "Trial Session", Firstname: "Asha"},
		{ProductInfo: "Trial Session", Firstname: "Asha", Email: "asha@example.com"},
	}
	for i, req := range cases {
		if _, err := svc.GenerateHash(req); !errors.Is(err, ErrMissingHashField) {
			t.Fatalf("case %d: expected ErrMissingHashField, got %v", i, err)
		}
	}
}

func TestGenerateHash_Success(t *testing.T) {
	svc, _ := newPayuFixture(t)

	result, err := svc.GenerateHash(HashRequest{
		Amount:      "19",
		ProductInfo: "Trial Session",
		Firstname:   "Asha",
		Email:       "asha@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utils.IsValidTxnID(result.TxnID) {
		t.Fatalf("txnid %q does not match txn_<16 hex>", result.TxnID)
	}
	if len(result.Hash) != 128 {
		t.Fatalf("expected 128-hex hash, got %d chars", len(result.Hash))
	}

	// The digest must match the documented field sequence exactly.
	want, err := utils.GeneratePayuHash("testkey", result.TxnID, "19", "Trial Session", "Asha", "asha@example.com", "testsalt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Hash != want {
		t.Fatal("hash does not correspond to the key|txnid|...|salt sequence")
	}
}

func TestPayuInitiate_CreatesPendingBookingBeforeRedirect(t *testing.T) {
	svc, bookings := newPayuFixture(t)

	initiation, err := svc.Initiate(TrialBookingRequest{
		FullName:     "Asha Rao",
		Email:        "asha@example.com",
		Phone:        "9998887776",
		Grade:        "12th",
		SelectedDate: "2024-08-01",
		TimeSlot:     "17:00-18:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if initiation.Mode != ModeRedirect {
		t.Fatalf("expected redirect mode, got %q", initiation.Mode)
	}
	if initiation.Gateway != "payu" {
		t.Fatalf("expected payu gateway tag, got %q", initiation.Gateway)
	}
	if initiation.Action != "https://test.payu.in/_payment" {
		t.Fatalf("unexpected action URL %q", initiation.Action)
	}

	// The pending record must exist, keyed by txnid, before any caller
	// could post the returned fields to the gateway.
	booking, err := bookings.GetByOrderID(initiation.OrderID)
	if err != nil {
		t.Fatalf("pending booking missing for order %s: %v", initiation.OrderID, err)
	}
	if booking.ID != initiation.BookingID {
		t.Fatalf("initiation booking id %d != stored %d", initiation.BookingID, booking.ID)
	}
	if booking.PaymentStatus != models.PaymentPending || booking.SessionStatus != models.SessionPending {
		t.Fatalf("expected pending/pending, got %s/%s", booking.PaymentStatus, booking.SessionStatus)
	}
	if booking.Amount != 19 {
		t.Fatalf("expected amount 19, got %v", booking.Amount)
	}

	fields := initiation.Fields
	if fields["txnid"] != initiation.OrderID {
		t.Fatalf("form txnid %q != order id %q", fields["txnid"], initiation.OrderID)
	}
	if fields["key"] != "testkey" {
		t.Fatalf("expected merchant key in form, got %q", fields["key"])
	}
	if fields["amount"] != "19" {
		t.Fatalf("expected amount 19, got %q", fields["amount"])
	}
	if fields["hash"] == "" || len(fields["hash"]) != 128 {
		t.Fatal("expected 128-hex hash in form fields")
	}
	if fields["surl"] == "" || fields["furl"] == "" {
		t.Fatal("expected success and failure return URLs in form fields")
	}
	if _, ok := fields["salt"]; ok {
		t.Fatal("the merchant salt must never appear in the form fields")
	}
}

func TestPayuInitiate_HashFailureCreatesNoBooking(t *testing.T) {
	bookings := NewBookingService(newTestDB(t))
	cfg := newTestPaymentConfig()
	cfg.Payu.Salt = "" // simulate missing credentials at the hash boundary
	svc := NewPayuService(cfg, bookings)

	_, err := svc.Initiate(TrialBookingRequest{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "9998887776",
	})
	if !errors.Is(err, ErrHashRequest) {
		t.Fatalf("expected ErrHashRequest, got %v", err)
	}

	list, err := bookings.ListForAnalytics(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("no booking may exist after a hash failure, found %d", len(list))
	}
}

func TestPayuInitiate_BookingCreateFailure(t *testing.T) {
	svc, bookings := newPayuFixture(t)

	// Missing phone fails repository validation after a successful hash.
	_, err := svc.Initiate(TrialBookingRequest{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
	})
	if !errors.Is(err, ErrBookingCreate) {
		t.Fatalf("expected ErrBookingCreate, got %v", err)
	}

	list, err := bookings.ListForAnalytics(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no booking rows, found %d", len(list))
	}
}
