package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"achievex-backend/services"
	"achievex-backend/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Registry *services.GatewayRegistry
	Payu     *services.PayuService
	Bookings *services.BookingService
}

func NewPaymentController(registry *services.GatewayRegistry, payu *services.PayuService, bookings *services.BookingService) *PaymentController {
	return &PaymentController{Registry: registry, Payu: payu, Bookings: bookings}
}

// ---------------------------
// Payload / DTOs
// ---------------------------

type hashPayload struct {
	Amount      interface{} `json:"amount"`
	ProductInfo string      `json:"productinfo"`
	Firstname   string      `json:"firstname"`
	Email       string      `json:"email"`
}

type initiatePayload struct {
	Gateway string `json:"gateway"`
	services.TrialBookingRequest
}

type cashfreeConfirmPayload struct {
	// Either identifier resolves the booking: order_id once a payment ran,
	// booking_id when the checkout session never opened.
	OrderID   string `json:"order_id"`
	BookingID uint   `json:"booking_id"`

	Payment *struct {
		Status        string `json:"status"`
		CfPaymentID   string `json:"cf_payment_id"`
		PaymentMethod string `json:"payment_method"`
	} `json:"payment"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ---------------------------
// 1) PayU hash service
// ---------------------------

// hashAmount renders the amount field for hashing. Clients send it either
// as a JSON number or as a string; a zero number counts as absent.
func hashAmount(v interface{}) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return a
	case float64:
		if a == 0 {
			return ""
		}
		return strconv.FormatFloat(a, 'f', -1, 64)
	case json.Number:
		if a.String() == "0" {
			return ""
		}
		return a.String()
	default:
		return ""
	}
}

// GeneratePayuHash is the hash boundary: only the digest and the fresh
// txnid leave it. POST only; the router returns 405 for other verbs.
func (ctrl *PaymentController) GeneratePayuHash(c *gin.Context) {
	var payload hashPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields."})
		return
	}

	result, err := ctrl.Payu.GenerateHash(services.HashRequest{
		Amount:      hashAmount(payload.Amount),
		ProductInfo: payload.ProductInfo,
		Firstname:   payload.Firstname,
		Email:       payload.Email,
	})
	if err != nil {
		if errors.Is(err, services.ErrMissingHashField) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields."})
			return
		}
		log.Printf("GeneratePayuHash error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "hash": result.Hash, "txnid": result.TxnID})
}

// ---------------------------
// 2) Initiate payment (gateway-agnostic dispatch)
// ---------------------------

func (ctrl *PaymentController) InitiatePayment(c *gin.Context) {
	var payload initiatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload",
			"fullName, email and phone are required", err.Error())
		return
	}

	gatewayName := payload.Gateway
	if gatewayName == "" {
		gatewayName = c.Query("gateway")
	}
	if gatewayName == "" {
		gatewayName = "payu"
	}

	gateway, err := ctrl.Registry.Get(gatewayName)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.unknownGateway",
			"unsupported payment gateway: "+gatewayName)
		return
	}

	initiation, err := gateway.Initiate(payload.TrialBookingRequest)
	if err != nil {
		log.Printf("InitiatePayment (%s) error: %v", gatewayName, err)

		switch {
		case errors.Is(err, services.ErrValidation):
			utils.JSONError(c, http.StatusBadRequest, "error.validation",
				"booking details are incomplete", err.Error())
		case errors.Is(err, services.ErrHashRequest), errors.Is(err, services.ErrGatewayOrder):
			// No booking record exists; the student can simply retry.
			utils.JSONError(c, http.StatusBadGateway, "error.gatewayUnavailable",
				"Could not start payment. Please try again.")
		case errors.Is(err, services.ErrBookingCreate):
			utils.JSONError(c, http.StatusInternalServerError, "error.bookingCreateFailed",
				"Could not record your booking. Please contact support before retrying.")
		default:
			utils.JSONError(c, http.StatusInternalServerError, "error.internal",
				"Could not start payment.")
		}
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, initiation)
}

// ---------------------------
// 3) Reconciliation: PayU return URLs
// ---------------------------

// returnParam reads a gateway return parameter from the query string or,
// for PayU's form-post return, from the posted form.
func returnParam(c *gin.Context, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return c.PostForm(key)
}

// PayuReturn finalizes exactly one booking from the gateway's redirect
// parameters. Reloading the URL re-observes the confirmed state without
// error or duplicated side effects.
func (ctrl *PaymentController) PayuReturn(c *gin.Context) {
	txnid := strings.TrimSpace(returnParam(c, "txnid"))
	status := strings.ToLower(strings.TrimSpace(returnParam(c, "status")))
	paymentID := strings.TrimSpace(returnParam(c, "mihpayid"))
	mode := strings.TrimSpace(returnParam(c, "mode"))

	if status != "success" || txnid == "" {
		ctrl.handleFailedReturn(c, txnid, status)
		return
	}

	method := "PayU"
	if mode != "" {
		method = mode
	}

	booking, applied, err := ctrl.Bookings.UpdateOnSuccess(txnid, services.PaymentDetails{
		PaymentID:     paymentID,
		PaymentMethod: method,
	})
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			log.Printf("PayuReturn: no booking for txnid %s (payment reported success)", txnid)
			utils.JSONError(c, http.StatusNotFound, "error.bookingNotFound",
				"We received your payment but could not find the matching booking. Please contact support.")
			return
		}
		log.Printf("PayuReturn reconcile error for txnid %s: %v", txnid, err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal",
			"Could not confirm your booking. Please contact support.")
		return
	}

	if applied {
		log.Printf("Booking %d confirmed for order %s", booking.ID, txnid)
	}

	utils.JSONSuccess(c, http.StatusOK, booking)
}

// PayuFailure is the furl target; the failure branch of reconciliation.
func (ctrl *PaymentController) PayuFailure(c *gin.Context) {
	txnid := strings.TrimSpace(returnParam(c, "txnid"))
	status := strings.ToLower(strings.TrimSpace(returnParam(c, "status")))
	ctrl.handleFailedReturn(c, txnid, status)
}

func (ctrl *PaymentController) handleFailedReturn(c *gin.Context, txnid, status string) {
	// Best-effort bookkeeping only: without a resolvable order id the
	// repository is left untouched.
	if txnid != "" {
		reason := "payment failed"
		if status != "" {
			reason = "gateway reported status: " + status
		}
		if _, err := ctrl.Bookings.UpdateOnFailure(txnid, reason); err != nil && !errors.Is(err, services.ErrBookingNotFound) {
			log.Printf("handleFailedReturn: failure update for txnid %s: %v", txnid, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "failed",
		"message": "Payment was not completed. No charge has been confirmed. Please try again or contact support.",
	})
}

// ---------------------------
// 4) Reconciliation: Cashfree modal result
// ---------------------------

// CashfreeConfirm consumes the synchronous modal result and applies the
// same idempotent transition as the redirect flow. A checkout that never
// opened reports only booking_id; the failure is then keyed on it.
func (ctrl *PaymentController) CashfreeConfirm(c *gin.Context) {
	var payload cashfreeConfirmPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload",
			"order_id or booking_id is required", err.Error())
		return
	}
	if payload.OrderID == "" && payload.BookingID == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload",
			"order_id or booking_id is required")
		return
	}

	if payload.Error != nil || payload.Payment == nil || !strings.EqualFold(payload.Payment.Status, "SUCCESS") {
		reason := "payment failed or was cancelled by user"
		if payload.Error != nil && payload.Error.Message != "" {
			reason = payload.Error.Message
		}
		ctrl.recordCashfreeFailure(payload.OrderID, payload.BookingID, reason)
		c.JSON(http.StatusOK, gin.H{
			"status":  "failed",
			"message": "Payment was not completed. No charge has been confirmed.",
		})
		return
	}

	// A successful payment always carries the gateway order id.
	if payload.OrderID == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload",
			"order_id is required for a successful payment")
		return
	}

	method := payload.Payment.PaymentMethod
	if method == "" {
		method = "Cashfree"
	}

	booking, applied, err := ctrl.Bookings.UpdateOnSuccess(payload.OrderID, services.PaymentDetails{
		PaymentID:     payload.Payment.CfPaymentID,
		PaymentMethod: method,
	})
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.bookingNotFound",
				"We received your payment but could not find the matching booking. Please contact support.")
			return
		}
		log.Printf("CashfreeConfirm reconcile error for order %s: %v", payload.OrderID, err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal",
			"Could not confirm your booking. Please contact support.")
		return
	}

	if applied {
		log.Printf("Booking %d confirmed for order %s", booking.ID, payload.OrderID)
	}

	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *PaymentController) recordCashfreeFailure(orderID string, bookingID uint, reason string) {
	var err error
	switch {
	case orderID != "":
		_, err = ctrl.Bookings.UpdateOnFailure(orderID, reason)
	case bookingID != 0:
		_, err = ctrl.Bookings.UpdateOnFailureByID(bookingID, reason)
	}
	if err != nil && !errors.Is(err, services.ErrBookingNotFound) {
		log.Printf("CashfreeConfirm: failure update (order=%q booking=%d): %v", orderID, bookingID, err)
	}
}
