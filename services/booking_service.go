package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"achievex-backend/models"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by the booking repository. Controllers map these
// to structured HTTP responses.
var (
	ErrBookingNotFound = errors.New("booking_not_found")
	ErrDuplicateOrder  = errors.New("duplicate_order_id")
	ErrValidation      = errors.New("validation_failed")
)

// BookingService is the single source of truth for a trial booking's
// lifecycle. It wraps *gorm.DB and never contacts a payment gateway.
type BookingService struct {
	DB *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{DB: db}
}

// BookingDraft is the caller-supplied data for a new pending booking. The
// OrderID must already be assigned (gateway-specific format) before the
// record is created.
type BookingDraft struct {
	OrderID      string
	StudentName  string
	StudentEmail string
	StudentPhone string
	Grade        string
	Goals        string
	SessionDate  string
	TimeSlot     string
	Amount       float64
	Source       string
}

// PaymentDetails carries the gateway result applied on successful
// reconciliation.
type PaymentDetails struct {
	PaymentID     string
	PaymentMethod string
}

func (d *BookingDraft) validate() error {
	if strings.TrimSpace(d.OrderID) == "" {
		return fmt.Errorf("%w: order id is required", ErrValidation)
	}
	if strings.TrimSpace(d.StudentName) == "" {
		return fmt.Errorf("%w: student name is required", ErrValidation)
	}
	if strings.TrimSpace(d.StudentEmail) == "" {
		return fmt.Errorf("%w: student email is required", ErrValidation)
	}
	if strings.TrimSpace(d.StudentPhone) == "" {
		return fmt.Errorf("%w: student phone is required", ErrValidation)
	}
	if d.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique")
}

// Create persists a new record in the (pending, pending) state and returns
// it with its assigned internal id. Exactly one booking may exist per
// OrderID.
func (s *BookingService) Create(draft BookingDraft) (*models.TrialBooking, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}

	source := draft.Source
	if source == "" {
		source = "web_trial_booking"
	}

	booking := models.TrialBooking{
		OrderID:          strings.TrimSpace(draft.OrderID),
		StudentName:      strings.TrimSpace(draft.StudentName),
		StudentEmail:     strings.TrimSpace(draft.StudentEmail),
		StudentPhone:     strings.TrimSpace(draft.StudentPhone),
		Grade:            strings.TrimSpace(draft.Grade),
		Goals:            draft.Goals,
		SessionDate:      draft.SessionDate,
		TimeSlot:         draft.TimeSlot,
		Amount:           draft.Amount,
		SessionStatus:    models.SessionPending,
		PaymentStatus:    models.PaymentPending,
		FollowUpRequired: true,
		BookingSource:    source,
		RemindersSent:    datatypes.JSON([]byte("[]")),
	}

	if err := s.DB.Create(&booking).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateOrder
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return &booking, nil
}

// GetByOrderID looks up the unique record for an external order identifier.
// A missing record is the expected ErrBookingNotFound outcome, not a fault.
func (s *BookingService) GetByOrderID(orderID string) (*models.TrialBooking, error) {
	var booking models.TrialBooking
	if err := s.DB.Where("order_id = ?", orderID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to look up booking by order id: %w", err)
	}
	return &booking, nil
}

func (s *BookingService) GetByID(id uint) (*models.TrialBooking, error) {
	var booking models.TrialBooking
	if err := s.DB.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to look up booking: %w", err)
	}
	return &booking, nil
}

// GetByEmail returns a student's bookings, newest first.
func (s *BookingService) GetByEmail(email string) ([]models.TrialBooking, error) {
	var list []models.TrialBooking
	if err := s.DB.
		Where("student_email = ?", strings.TrimSpace(email)).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings by email: %w", err)
	}
	return list, nil
}

// UpdateOnSuccess moves the booking for orderID to the confirmed terminal
// pair and records the payment details. The conditional write makes it
// idempotent: a second call observes the already-confirmed record, applies
// nothing, and reports applied=false so side effects are not re-fired.
func (s *BookingService) UpdateOnSuccess(orderID string, details PaymentDetails) (*models.TrialBooking, bool, error) {
	applied := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.TrialBooking
		if err := tx.Where("order_id = ?", orderID).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if booking.PaymentConfirmed() {
			return nil
		}

		now := time.Now().UTC()
		method := details.PaymentMethod
		if method == "" {
			method = "PayU"
		}

		res := tx.Model(&models.TrialBooking{}).
			Where("order_id = ? AND payment_status <> ?", orderID, models.PaymentSuccess).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentSuccess,
				"session_status": models.SessionConfirmed,
				"payment_id":     details.PaymentID,
				"payment_method": method,
				"paid_at":        now,
				"updated_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		applied = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	booking, err := s.GetByOrderID(orderID)
	if err != nil {
		return nil, false, err
	}
	return booking, applied, nil
}

// UpdateOnFailure marks a still-pending booking as payment_failed and
// records the reason. It never demotes a booking that already reached the
// successful terminal pair.
func (s *BookingService) UpdateOnFailure(orderID string, reason string) (*models.TrialBooking, error) {
	res := s.DB.Model(&models.TrialBooking{}).
		Where("order_id = ? AND payment_status = ?", orderID, models.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status":         models.PaymentFailed,
			"session_status":         models.SessionPaymentFailed,
			"payment_failure_reason": reason,
			"updated_at":             time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record payment failure: %w", res.Error)
	}
	return s.GetByOrderID(orderID)
}

// UpdateOnFailureByID is the variant for the modal flow, which knows the
// internal id rather than the order id.
func (s *BookingService) UpdateOnFailureByID(id uint, reason string) (*models.TrialBooking, error) {
	res := s.DB.Model(&models.TrialBooking{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status":         models.PaymentFailed,
			"session_status":         models.SessionPaymentFailed,
			"payment_failure_reason": reason,
			"updated_at":             time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record payment failure: %w", res.Error)
	}
	return s.GetByID(id)
}

// DateRange bounds an analytics query; zero values mean unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ListForAnalytics returns bookings newest first, optionally bounded by a
// creation-date range. Read-only; not on the payment-critical path.
func (s *BookingService) ListForAnalytics(dateRange *DateRange) ([]models.TrialBooking, error) {
	q := s.DB.Model(&models.TrialBooking{})
	if dateRange != nil {
		if !dateRange.Start.IsZero() {
			q = q.Where("created_at >= ?", dateRange.Start)
		}
		if !dateRange.End.IsZero() {
			q = q.Where("created_at <= ?", dateRange.End)
		}
	}

	var list []models.TrialBooking
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

// BookingAnalytics aggregates booking and revenue counters for the admin
// dashboard.
type BookingAnalytics struct {
	TotalBookings     int            `json:"totalBookings"`
	ConfirmedBookings int            `json:"confirmedBookings"`
	PendingBookings   int            `json:"pendingBookings"`
	CompletedBookings int            `json:"completedBookings"`
	FailedPayments    int            `json:"failedPayments"`
	TotalRevenue      float64        `json:"totalRevenue"`
	GradeDistribution map[string]int `json:"gradeDistribution"`
	PaymentMethods    map[string]int `json:"paymentMethods"`
}

// GetAnalytics lists bookings for the range and computes aggregates.
func (s *BookingService) GetAnalytics(dateRange *DateRange) (*BookingAnalytics, []models.TrialBooking, error) {
	bookings, err := s.ListForAnalytics(dateRange)
	if err != nil {
		return nil, nil, err
	}

	analytics := &BookingAnalytics{
		GradeDistribution: map[string]int{},
		PaymentMethods:    map[string]int{},
	}
	analytics.TotalBookings = len(bookings)
	for _, b := range bookings {
		switch b.SessionStatus {
		case models.SessionConfirmed:
			analytics.ConfirmedBookings++
		case models.SessionPending:
			analytics.PendingBookings++
		case models.SessionCompleted:
			analytics.CompletedBookings++
		}
		if b.PaymentStatus == models.PaymentFailed {
			analytics.FailedPayments++
		}
		if b.PaymentStatus == models.PaymentSuccess {
			analytics.TotalRevenue += b.Amount
		}
		if b.Grade != "" {
			analytics.GradeDistribution[b.Grade]++
		}
		if b.PaymentMethod != nil && *b.PaymentMethod != "" {
			analytics.PaymentMethods[*b.PaymentMethod]++
		}
	}
	return analytics, bookings, nil
}

// MentorInfo is the downstream mentor-matching payload stored on the
// booking as JSON.
type MentorInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
}

// AssignMentor attaches mentor details and advances the session status.
func (s *BookingService) AssignMentor(id uint, mentor MentorInfo) (*models.TrialBooking, error) {
	raw, err := json.Marshal(mentor)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mentor info: %w", err)
	}

	res := s.DB.Model(&models.TrialBooking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"mentor_assigned": datatypes.JSON(raw),
			"session_status":  models.SessionMentorAssigned,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to assign mentor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrBookingNotFound
	}
	return s.GetByID(id)
}

// AddMeetLink stores the session's meeting link and advances the status.
func (s *BookingService) AddMeetLink(id uint, link string) (*models.TrialBooking, error) {
	if strings.TrimSpace(link) == "" {
		return nil, fmt.Errorf("%w: meet link is required", ErrValidation)
	}

	res := s.DB.Model(&models.TrialBooking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"google_meet_link": link,
			"session_status":   models.SessionMeetingScheduled,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to add meet link: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrBookingNotFound
	}
	return s.GetByID(id)
}

type reminderEntry struct {
	Type   string    `json:"type"`
	SentAt time.Time `json:"sentAt"`
}

// RecordReminderSent appends a reminder marker to the booking's reminder
// history.
func (s *BookingService) RecordReminderSent(id uint, reminderType string) (*models.TrialBooking, error) {
	var booking *models.TrialBooking

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var b models.TrialBooking
		if err := tx.First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		var reminders []reminderEntry
		if len(b.RemindersSent) > 0 {
			if err := json.Unmarshal(b.RemindersSent, &reminders); err != nil {
				reminders = nil
			}
		}
		reminders = append(reminders, reminderEntry{Type: reminderType, SentAt: time.Now().UTC()})

		raw, err := json.Marshal(reminders)
		if err != nil {
			return err
		}

		if err := tx.Model(&b).Updates(map[string]interface{}{
			"reminders_sent": datatypes.JSON(raw),
			"updated_at":     time.Now().UTC(),
		}).Error; err != nil {
			return err
		}

		booking = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(booking.ID)
}
