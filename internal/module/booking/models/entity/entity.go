package entity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending       BookingStatus = "pending"
	BookingStatusConfirmed     BookingStatus = "confirmed"
	BookingStatusCancelled     BookingStatus = "cancelled"
	BookingStatusCompleted     BookingStatus = "completed"
	BookingStatusPaymentFailed BookingStatus = "payment_failed"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type InsuranceType string

const (
	InsuranceTypeNone    InsuranceType = "none"
	InsuranceTypeBasic   InsuranceType = "basic"
	InsuranceTypePremium InsuranceType = "premium"
)

// transitions lists the legal next states for each booking status. Cancelled
// and Completed are terminal.
var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:       {BookingStatusConfirmed, BookingStatusPaymentFailed, BookingStatusCancelled},
	BookingStatusPaymentFailed: {BookingStatusPending, BookingStatusCancelled},
	BookingStatusConfirmed:     {BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusCancelled:     {},
	BookingStatusCompleted:     {},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Booking struct {
	ID                 uuid.UUID      `db:"id"` // UUID
	UserID             int64          `db:"user_id"`
	CarID              int64          `db:"car_id"`
	StartDate          time.Time      `db:"start_date"`
	EndDate            time.Time      `db:"end_date"`
	Status             BookingStatus  `db:"status"`
	PaymentStatus      PaymentStatus  `db:"payment_status"`
	TotalPrice         float64        `db:"total_price"`
	PaymentMethod      string         `db:"payment_method"`
	PickupLocation     string         `db:"pickup_location"`
	DropoffLocation    string         `db:"dropoff_location"`
	AdditionalRequests sql.NullString `db:"additional_requests"`
	Insurance          bool           `db:"insurance"`
	InsuranceType      InsuranceType  `db:"insurance_type"`
	DriverName         string         `db:"driver_name"`
	DriverAge          int            `db:"driver_age"`
	DriverLicense      string         `db:"driver_license"`
	PaymentIntentRef   sql.NullString `db:"payment_intent_ref"`
	TaskID             sql.NullString `db:"task_id"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          sql.NullTime   `db:"updated_at"`
	DeletedAt          sql.NullTime   `db:"deleted_at"`
}

// Overlaps reports whether the half-open date intervals [s1,e1) and [s2,e2)
// share at least one day. Touching endpoints do not conflict, so back-to-back
// bookings are allowed.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
