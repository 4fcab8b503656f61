package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session lifecycle statuses. Transitions are one-way; a terminal
// (session, payment) pair is never reverted to pending.
const (
	SessionPending          = "pending"
	SessionConfirmed        = "confirmed"
	SessionPaymentFailed    = "payment_failed"
	SessionMentorAssigned   = "mentor_assigned"
	SessionMeetingScheduled = "meeting_scheduled"
	SessionCompleted        = "completed"
	SessionCancelled        = "cancelled"
)

// Payment lifecycle statuses.
const (
	PaymentPending  = "pending"
	PaymentSuccess  = "success"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// TrialBooking is the persisted record of one student's trial-session
// request plus its payment lifecycle. OrderID is the join key shared with
// the payment gateway; exactly one booking exists per OrderID.
type TrialBooking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrderID string `gorm:"column:order_id;size:64;uniqueIndex" json:"orderId"`

	// Student information, captured at creation.
	StudentName  string `gorm:"column:student_name;size:255" json:"studentName"`
	StudentEmail string `gorm:"column:student_email;size:255;index" json:"studentEmail"`
	StudentPhone string `gorm:"column:student_phone;size:32" json:"studentPhone"`
	Grade        string `gorm:"column:grade;size:32" json:"grade"`
	Goals        string `gorm:"column:goals;type:text" json:"goals,omitempty"`

	// Requested scheduling data.
	SessionDate string `gorm:"column:session_date;size:32" json:"sessionDate"`
	TimeSlot    string `gorm:"column:time_slot;size:64" json:"timeSlot,omitempty"`

	SessionStatus string `gorm:"column:session_status;size:32;default:pending" json:"sessionStatus"`

	// Payment information. PaymentID/PaymentMethod are set only on
	// successful reconciliation.
	Amount               float64    `gorm:"column:amount" json:"amount"`
	PaymentStatus        string     `gorm:"column:payment_status;size:32;default:pending" json:"paymentStatus"`
	PaymentID            *string    `gorm:"column:payment_id;size:128" json:"paymentId,omitempty"`
	PaymentMethod        *string    `gorm:"column:payment_method;size:64" json:"paymentMethod,omitempty"`
	PaymentFailureReason *string    `gorm:"column:payment_failure_reason;size:512" json:"paymentFailureReason,omitempty"`
	PaidAt               *time.Time `gorm:"column:paid_at" json:"paidAt,omitempty"`

	// Post-booking enrichment, mutated by downstream mentor-matching and
	// calendar workflows. The payment path only tolerates their presence.
	MentorAssigned   datatypes.JSON `gorm:"column:mentor_assigned" json:"mentorAssigned,omitempty"`
	GoogleMeetLink   *string        `gorm:"column:google_meet_link;size:512" json:"googleMeetLink,omitempty"`
	RemindersSent    datatypes.JSON `gorm:"column:reminders_sent" json:"remindersSent,omitempty"`
	FollowUpRequired bool           `gorm:"column:follow_up_required;default:true" json:"followUpRequired"`

	BookingSource string `gorm:"column:booking_source;size:64" json:"bookingSource,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentConfirmed reports whether the booking already reached the
// successful terminal pair.
func (b *TrialBooking) PaymentConfirmed() bool {
	return b.PaymentStatus == PaymentSuccess
}
