package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"achievex-backend/services"
	"achievex-backend/utils"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

// ---------------------------
// Payload / DTOs
// ---------------------------

type assignMentorPayload struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject"`
}

type meetLinkPayload struct {
	MeetLink string `json:"meetLink" binding:"required"`
}

type reminderPayload struct {
	Type string `json:"type" binding:"required"`
}

func parseBookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidBookingId", "booking id must be numeric")
		return 0, false
	}
	return uint(id), true
}

// parseDateRange reads optional from/to query params ("2006-01-02").
func parseDateRange(c *gin.Context) (*services.DateRange, error) {
	fromRaw := c.Query("from")
	toRaw := c.Query("to")
	if fromRaw == "" && toRaw == "" {
		return nil, nil
	}

	var dr services.DateRange
	if fromRaw != "" {
		t, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return nil, err
		}
		dr.Start = t
	}
	if toRaw != "" {
		t, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return nil, err
		}
		// inclusive end of day
		dr.End = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &dr, nil
}

// ---------------------------
// Listing / details
// ---------------------------

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDateRange", "from/to must be formatted as YYYY-MM-DD")
		return
	}

	if email := c.Query("email"); email != "" {
		bookings, err := ctrl.BookingSvc.GetByEmail(email)
		if err != nil {
			log.Printf("GetBookings by email error: %v", err)
			utils.JSONError(c, http.StatusInternalServerError, "error.fetchBookings", "could not fetch bookings")
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	bookings, err := ctrl.BookingSvc.ListForAnalytics(dateRange)
	if err != nil {
		log.Printf("GetBookings error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.fetchBookings", "could not fetch bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (ctrl *BookingController) GetBookingDetails(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	booking, err := ctrl.BookingSvc.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONError(c, http.StatusNotFound, "error.bookingNotFound", "booking not found")
			return
		}
		log.Printf("GetBookingDetails error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.fetchBookingFailed", "could not fetch booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (ctrl *BookingController) GetAnalytics(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDateRange", "from/to must be formatted as YYYY-MM-DD")
		return
	}

	analytics, bookings, err := ctrl.BookingSvc.GetAnalytics(dateRange)
	if err != nil {
		log.Printf("GetAnalytics error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.analyticsFailed", "could not compute analytics")
		return
	}

	c.JSON(http.StatusOK, gin.H{"analytics": analytics, "bookings": bookings})
}

// ---------------------------
// Post-booking enrichment (mentor matching, calendar)
// ---------------------------

func (ctrl *BookingController) AssignMentor(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var payload assignMentorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "mentor name and email are required", err.Error())
		return
	}

	booking, err := ctrl.BookingSvc.AssignMentor(id, services.MentorInfo{
		Name:    payload.Name,
		Email:   payload.Email,
		Subject: payload.Subject,
	})
	if err != nil {
		ctrl.respondUpdateError(c, "AssignMentor", err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) AddMeetLink(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var payload meetLinkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "meetLink is required", err.Error())
		return
	}

	booking, err := ctrl.BookingSvc.AddMeetLink(id, payload.MeetLink)
	if err != nil {
		ctrl.respondUpdateError(c, "AddMeetLink", err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) RecordReminder(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var payload reminderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "reminder type is required", err.Error())
		return
	}

	booking, err := ctrl.BookingSvc.RecordReminderSent(id, payload.Type)
	if err != nil {
		ctrl.respondUpdateError(c, "RecordReminder", err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) respondUpdateError(c *gin.Context, op string, err error) {
	if errors.Is(err, services.ErrBookingNotFound) {
		utils.JSONError(c, http.StatusNotFound, "error.bookingNotFound", "booking not found")
		return
	}
	if errors.Is(err, services.ErrValidation) {
		utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
		return
	}
	log.Printf("%s error: %v", op, err)
	utils.JSONError(c, http.StatusInternalServerError, "error.internal", "could not update booking")
}
