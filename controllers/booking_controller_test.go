package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestGetBookings_ByEmail(t *testing.T) {
	router, bookings := newTestRouter(t)
	seedPendingBooking(t, bookings, "txn_a1")
	seedPendingBooking(t, bookings, "txn_a2")

	w := performJSON(t, router, http.MethodGet, "/api/trial-bookings?email=asha@example.com", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("cannot decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(list))
	}

	w = performJSON(t, router, http.MethodGet, "/api/trial-bookings?email=nobody@example.com", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("cannot decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestGetBookingDetails(t *testing.T) {
	router, bookings := newTestRouter(t)
	seedPendingBooking(t, bookings, "txn_a1")

	booking, err := bookings.GetByOrderID("txn_a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := performJSON(t, router, http.MethodGet, fmt.Sprintf("/api/trial-bookings/%d", booking.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["orderId"] != "txn_a1" {
		t.Fatalf("unexpected booking payload %v", body)
	}

	w = performJSON(t, router, http.MethodGet, "/api/trial-bookings/99999", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = performJSON(t, router, http.MethodGet, "/api/trial-bookings/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestGetAnalytics_Endpoint(t *testing.T) {
	router, bookings := newTestRouter(t)
	seedPendingBooking(t, bookings, "txn_a1")
	seedPendingBooking(t, bookings, "txn_a2")

	w := performJSON(t, router, http.MethodGet, "/api/trial-bookings/analytics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	analytics, _ := body["analytics"].(map[string]interface{})
	if analytics == nil {
		t.Fatalf("missing analytics block in %v", body)
	}
	if analytics["totalBookings"].(float64) != 2 {
		t.Fatalf("expected 2 total bookings, got %v", analytics["totalBookings"])
	}

	w = performJSON(t, router, http.MethodGet, "/api/trial-bookings/analytics?from=not-a-date", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestAssignMentor_Endpoint(t *testing.T) {
	router, bookings := newTestRouter(t)
	seedPendingBooking(t, bookings, "txn_a1")

	booking, err := bookings.GetByOrderID("txn_a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := performJSON(t, router, http.MethodPost, fmt.Sprintf("/api/trial-bookings/%d/assign-mentor", booking.ID),
		`{"name":"Ravi Kumar","email":"ravi@achievex.local","subject":"Physics"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated, err := bookings.GetByID(booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.SessionStatus != "mentor_assigned" {
		t.Fatalf("expected mentor_assigned, got %s", updated.SessionStatus)
	}

	// missing mentor email
	w = performJSON(t, router, http.MethodPost, fmt.Sprintf("/api/trial-bookings/%d/assign-mentor", booking.ID),
		`{"name":"Ravi Kumar"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = performJSON(t, router, http.MethodPost, "/api/trial-bookings/99999/assign-mentor",
		`{"name":"Ravi Kumar","email":"ravi@achievex.local"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestMeetLinkAndReminder_Endpoints(t *testing.T) {
	router, bookings := newTestRouter(t)
	seedPendingBooking(t, bookings, "txn_a1")

	booking, err := bookings.GetByOrderID("txn_a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := performJSON(t, router, http.MethodPost, fmt.Sprintf("/api/trial-bookings/%d/meet-link", booking.ID),
		`{"meetLink":"https://meet.google.com/abc-defg-hij"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated, err := bookings.GetByID(booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.GoogleMeetLink == nil || *updated.GoogleMeetLink != "https://meet.google.com/abc-defg-hij" {
		t.Fatalf("meet link not stored: %v", updated.GoogleMeetLink)
	}
	if updated.SessionStatus != "meeting_scheduled" {
		t.Fatalf("expected meeting_scheduled, got %s", updated.SessionStatus)
	}

	w = performJSON(t, router, http.MethodPost, fmt.Sprintf("/api/trial-bookings/%d/reminders", booking.ID),
		`{"type":"24h"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated, err = bookings.GetByID(booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var reminders []map[string]interface{}
	if err := json.Unmarshal(updated.RemindersSent, &reminders); err != nil {
		t.Fatalf("cannot decode reminders: %v", err)
	}
	if len(reminders) != 1 || reminders[0]["type"] != "24h" {
		t.Fatalf("unexpected reminders %v", reminders)
	}
}
