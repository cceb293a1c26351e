package usecases

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"rental-service/internal/module/booking/gateway"
	"rental-service/internal/module/booking/models/entity"
	"rental-service/internal/module/booking/models/request"
	"rental-service/internal/module/booking/models/response"
	"rental-service/internal/module/booking/pricing"
	"rental-service/internal/module/booking/repositories"
	"rental-service/internal/pkg/errors"
	"rental-service/internal/pkg/log"
	"rental-service/internal/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	dateLayout        = "2006-01-02"
	roleAdmin         = "admin"
	notificationTopic = "notification"
)

type usecase struct {
	repo          repositories.Repositories
	gw            gateway.Gateway
	log           log.Logger
	publish       message.Publisher
	paymentWindow time.Duration
	currency      string
}

type Usecase interface {
	// http
	CreateBooking(ctx context.Context, payload *request.CreateBooking, userID int64) (response.BookingCreated, error)
	CancelBooking(ctx context.Context, bookingID string, userID int64, role string) error
	GetBooking(ctx context.Context, bookingID string, userID int64, role string) (response.Booking, error)
	ShowBookings(ctx context.Context, userID int64) ([]response.Booking, error)
	ShowPaymentHistory(ctx context.Context, userID int64) ([]response.PaymentHistory, error)
	RetryPayment(ctx context.Context, bookingID string, userID int64) (response.Booking, error)
	CheckAvailability(ctx context.Context, carID int64, startDate, endDate string) (response.Availability, error)
	// payment events (webhook + queue)
	HandlePaymentEvent(ctx context.Context, event *gateway.Event) error
	// scheduler
	CompleteBooking(ctx context.Context, payload *request.BookingCompletion) error
	SetPaymentExpired(ctx context.Context, payload *request.PaymentExpiration) error
}

func New(repo repositories.Repositories, gw gateway.Gateway, log log.Logger, publish message.Publisher, paymentWindow time.Duration, currency string) Usecase {
	return &usecase{
		repo:          repo,
		gw:            gw,
		log:           log,
		publish:       publish,
		paymentWindow: paymentWindow,
		currency:      currency,
	}
}

// CreateBooking implements Usecase.
//
// The flow is: validate the range, price it from the catalog rate, claim the
// interval atomically, then attach the payment intent and the expiration
// task. The interval claim is the only step that may lose a race; everything
// after it is recoverable because the expiration task eventually releases a
// booking that never gets paid.
func (u *usecase) CreateBooking(ctx context.Context, payload *request.CreateBooking, userID int64) (response.BookingCreated, error) {
	startDate, endDate, err := parseRange(payload.StartDate, payload.EndDate)
	if err != nil {
		return response.BookingCreated{}, err
	}

	insuranceType := entity.InsuranceTypeNone
	if payload.Insurance {
		insuranceType = entity.InsuranceType(payload.InsuranceType)
		if insuranceType == "" {
			insuranceType = entity.InsuranceTypeBasic
		}
	}

	car, err := u.repo.GetCar(ctx, payload.CarID)
	if err == repositories.ErrNotFound {
		return response.BookingCreated{}, errors.NotFoundError("car not found")
	}
	if err != nil {
		u.log.Error(ctx, "error get car", err)
		return response.BookingCreated{}, errors.ServiceUnavailable("error get car")
	}

	totalPrice, err := pricing.Total(car.PricePerDay, startDate, endDate, insuranceType)
	if err != nil {
		return response.BookingCreated{}, errors.BadRequest("invalid date range")
	}

	booking := entity.Booking{
		ID:              uuid.New(),
		UserID:          userID,
		CarID:           payload.CarID,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          entity.BookingStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		TotalPrice:      totalPrice,
		PaymentMethod:   payload.PaymentMethod,
		PickupLocation:  payload.PickupLocation,
		DropoffLocation: payload.DropoffLocation,
		Insurance:       payload.Insurance,
		InsuranceType:   insuranceType,
		DriverName:      payload.Driver.Name,
		DriverAge:       payload.Driver.Age,
		DriverLicense:   payload.Driver.LicenseNumber,
		CreatedAt:       time.Now(),
	}
	if payload.AdditionalRequests != "" {
		booking.AdditionalRequests = sql.NullString{String: payload.AdditionalRequests, Valid: true}
	}

	err = u.repo.TryCreateBooking(ctx, &booking)
	if err == repositories.ErrUnavailableDates {
		return response.BookingCreated{}, errors.BadRequest("Car is not available for the selected dates")
	}
	if err != nil {
		u.log.Error(ctx, "error create booking", err)
		return response.BookingCreated{}, err
	}

	// The expiration task is scheduled before the payment intent so the
	// interval is always released even when the provider call fails.
	paymentExpiredAt := time.Now().Add(u.paymentWindow)
	taskPayload, _ := json.Marshal(request.PaymentExpiration{
		BookingID: booking.ID.String(),
		CarID:     booking.CarID,
	})
	taskID, err := u.repo.SetTaskScheduler(ctx, scheduler.TypeSetPaymentExpired, paymentExpiredAt, taskPayload)
	if err != nil {
		u.log.Error(ctx, "error schedule payment expiration", err)
	} else if err := u.repo.SetBookingTaskID(ctx, booking.ID.String(), taskID); err != nil {
		u.log.Error(ctx, "error store expiration task id", err)
	}

	intent, err := u.gw.CreateIntent(ctx, booking.ID.String(), amountCents(totalPrice), u.currency)
	if err != nil {
		u.log.Error(ctx, "error create payment intent", err)
		return response.BookingCreated{}, errors.ServiceUnavailable("error create payment intent")
	}

	if err := u.repo.SetPaymentIntentRef(ctx, booking.ID.String(), intent.ID); err != nil {
		u.log.Error(ctx, "error store payment intent ref", err)
	}

	// Best-effort denormalization; conflict detection never reads this flag.
	if err := u.repo.SetCarAvailability(ctx, booking.CarID, false); err != nil {
		u.log.Error(ctx, "error update cached car availability", err)
	}

	u.publishNotification(ctx, request.NotificationInvoice{
		BookingID:         booking.ID.String(),
		UserID:            userID,
		PaymentAmount:     totalPrice,
		PaymentExpiration: paymentExpiredAt.Format(time.RFC3339),
	})

	resp := response.BookingCreated{
		Booking:       toBookingResponse(booking),
		ClientSecret:  intent.ClientSecret,
		PaymentExpiry: paymentExpiredAt.Format(time.RFC3339),
	}
	return resp, nil
}

// CancelBooking implements Usecase. Cancellation is a guarded transition:
// only the owner or an admin may trigger it, and only from a non-terminal
// status. A cancelled booking releases its interval.
func (u *usecase) CancelBooking(ctx context.Context, bookingID string, userID int64, role string) error {
	booking, err := u.repo.FindBookingByID(ctx, bookingID)
	if err == repositories.ErrNotFound {
		return errors.NotFoundError("booking not found")
	}
	if err != nil {
		return err
	}

	if booking.UserID != userID && role != roleAdmin {
		return errors.ForbiddenError("not authorized to cancel this booking")
	}

	if !booking.Status.CanTransitionTo(entity.BookingStatusCancelled) {
		return errors.BadRequest("cannot cancel completed or cancelled booking")
	}

	_, err = u.repo.UpdateBookingStatus(ctx, bookingID,
		[]entity.BookingStatus{entity.BookingStatusPending, entity.BookingStatusConfirmed, entity.BookingStatusPaymentFailed},
		entity.BookingStatusCancelled, booking.PaymentStatus)
	if err == repositories.ErrStaleState {
		return errors.BadRequest("cannot cancel completed or cancelled booking")
	}
	if err != nil {
		u.log.Error(ctx, "error cancel booking", err)
		return err
	}

	if booking.TaskID.Valid {
		if err := u.repo.DeleteTaskScheduler(ctx, booking.TaskID.String); err != nil {
			u.log.Error(ctx, "error delete expiration task", err)
		}
	}

	u.releaseCarAvailability(ctx, booking.CarID)

	u.publishNotification(ctx, request.NotificationMessage{
		BookingID: bookingID,
		UserID:    booking.UserID,
		Message:   "Booking cancelled successfully",
	})

	return nil
}

// GetBooking implements Usecase.
func (u *usecase) GetBooking(ctx context.Context, bookingID string, userID int64, role string) (response.Booking, error) {
	booking, err := u.repo.FindBookingByID(ctx, bookingID)
	if err == repositories.ErrNotFound {
		return response.Booking{}, errors.NotFoundError("booking not found")
	}
	if err != nil {
		return response.Booking{}, err
	}

	if booking.UserID != userID && role != roleAdmin {
		return response.Booking{}, errors.ForbiddenError("not authorized to view this booking")
	}

	return toBookingResponse(booking), nil
}

// ShowBookings implements Usecase.
func (u *usecase) ShowBookings(ctx context.Context, userID int64) ([]response.Booking, error) {
	bookings, err := u.repo.FindBookingsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]response.Booking, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}
	return resp, nil
}

// ShowPaymentHistory implements Usecase. A payment-side projection over the
// caller's bookings: what was charged, through what method, and how each
// payment ended up.
func (u *usecase) ShowPaymentHistory(ctx context.Context, userID int64) ([]response.PaymentHistory, error) {
	bookings, err := u.repo.FindBookingsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := make([]response.PaymentHistory, 0, len(bookings))
	for _, b := range bookings {
		item := response.PaymentHistory{
			BookingID:     b.ID.String(),
			CarID:         b.CarID,
			Amount:        b.TotalPrice,
			Currency:      u.currency,
			PaymentStatus: string(b.PaymentStatus),
			PaymentMethod: b.PaymentMethod,
			Date:          b.CreatedAt.Format(time.RFC3339),
		}
		if b.PaymentIntentRef.Valid {
			item.PaymentIntentRef = b.PaymentIntentRef.String
		}
		history = append(history, item)
	}
	return history, nil
}

// RetryPayment implements Usecase. Moves a failed booking back to pending so
// the customer can attempt payment again against the same intent, and opens a
// fresh payment window.
func (u *usecase) RetryPayment(ctx context.Context, bookingID string, userID int64) (response.Booking, error) {
	booking, err := u.repo.FindBookingByID(ctx, bookingID)
	if err == repositories.ErrNotFound {
		return response.Booking{}, errors.NotFoundError("booking not found")
	}
	if err != nil {
		return response.Booking{}, err
	}

	if booking.UserID != userID {
		return response.Booking{}, errors.ForbiddenError("not authorized to retry payment for this booking")
	}

	updated, err := u.repo.UpdateBookingStatus(ctx, bookingID,
		[]entity.BookingStatus{entity.BookingStatusPaymentFailed},
		entity.BookingStatusPending, entity.PaymentStatusPending)
	if err == repositories.ErrStaleState {
		return response.Booking{}, errors.BadRequest("booking is not awaiting a payment retry")
	}
	if err != nil {
		return response.Booking{}, err
	}

	paymentExpiredAt := time.Now().Add(u.paymentWindow)
	taskPayload, _ := json.Marshal(request.PaymentExpiration{
		BookingID: bookingID,
		CarID:     booking.CarID,
	})
	taskID, err := u.repo.SetTaskScheduler(ctx, scheduler.TypeSetPaymentExpired, paymentExpiredAt, taskPayload)
	if err != nil {
		u.log.Error(ctx, "error schedule payment expiration", err)
	} else if err := u.repo.SetBookingTaskID(ctx, bookingID, taskID); err != nil {
		u.log.Error(ctx, "error store expiration task id", err)
	}

	return toBookingResponse(updated), nil
}

// CheckAvailability implements Usecase. Read-only view over the reservation
// index, exposed for the car catalog's date-range search.
func (u *usecase) CheckAvailability(ctx context.Context, carID int64, startDate, endDate string) (response.Availability, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return response.Availability{}, err
	}

	available, err := u.repo.IsCarAvailable(ctx, carID, start, end, "")
	if err != nil {
		return response.Availability{}, err
	}

	return response.Availability{
		CarID:     carID,
		StartDate: startDate,
		EndDate:   endDate,
		Available: available,
	}, nil
}

// HandlePaymentEvent implements Usecase. It is idempotent: the event id is
// claimed exactly once, and the guarded status update makes replays and
// out-of-order deliveries no-ops. A failed event arriving after a succeeded
// one cannot regress a confirmed booking because confirmed is not a legal
// "from" state for that transition.
func (u *usecase) HandlePaymentEvent(ctx context.Context, event *gateway.Event) error {
	switch event.Type {
	case gateway.EventPaymentSucceeded, gateway.EventPaymentFailed:
	default:
		u.log.Info(ctx, "unhandled payment event type", event.Type)
		return nil
	}

	if event.BookingRef == "" {
		return errors.BadRequest("payment event missing booking reference")
	}

	claimed, err := u.repo.ClaimPaymentEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if !claimed {
		// A held claim is not proof the transition landed: a crash between
		// claiming and applying leaks the claim. Ack only when the stored
		// booking actually left pending; otherwise re-apply, which the
		// guarded update keeps idempotent.
		booking, err := u.repo.FindBookingByID(ctx, event.BookingRef)
		if err == repositories.ErrNotFound {
			return errors.BadRequest("payment event references unknown booking")
		}
		if err != nil {
			return err
		}
		if booking.Status != entity.BookingStatusPending {
			u.log.Info(ctx, "payment event already processed", event.ID)
			return nil
		}
		u.log.Warn(ctx, "payment event claimed but never applied", event.ID)
	}

	if err := u.applyPaymentEvent(ctx, event); err != nil {
		// Release the claim so a redelivery can retry the transient failure.
		if relErr := u.repo.ReleasePaymentEvent(ctx, event.ID); relErr != nil {
			u.log.Error(ctx, "error releasing payment event claim", relErr)
		}
		return err
	}

	return nil
}

func (u *usecase) applyPaymentEvent(ctx context.Context, event *gateway.Event) error {
	switch event.Type {
	case gateway.EventPaymentSucceeded:
		booking, err := u.repo.UpdateBookingStatus(ctx, event.BookingRef,
			[]entity.BookingStatus{entity.BookingStatusPending},
			entity.BookingStatusConfirmed, entity.PaymentStatusPaid)
		if err == repositories.ErrStaleState {
			// Replayed or out-of-order delivery; the stored state wins.
			u.log.Info(ctx, "payment succeeded event ignored for settled booking", event.BookingRef)
			return nil
		}
		if err == repositories.ErrNotFound {
			return errors.BadRequest("payment event references unknown booking")
		}
		if err != nil {
			return err
		}

		if booking.TaskID.Valid {
			if err := u.repo.DeleteTaskScheduler(ctx, booking.TaskID.String); err != nil {
				u.log.Error(ctx, "error delete expiration task", err)
			}
		}

		taskPayload, _ := json.Marshal(request.BookingCompletion{
			BookingID: booking.ID.String(),
			CarID:     booking.CarID,
		})
		if _, err := u.repo.SetTaskScheduler(ctx, scheduler.TypeSetBookingCompleted, booking.EndDate, taskPayload); err != nil {
			u.log.Error(ctx, "error schedule booking completion", err)
		}

		u.publishNotification(ctx, request.NotificationMessage{
			BookingID: booking.ID.String(),
			UserID:    booking.UserID,
			Message:   "Payment received, your booking is confirmed",
		})

	case gateway.EventPaymentFailed:
		booking, err := u.repo.UpdateBookingStatus(ctx, event.BookingRef,
			[]entity.BookingStatus{entity.BookingStatusPending},
			entity.BookingStatusPaymentFailed, entity.PaymentStatusFailed)
		if err == repositories.ErrStaleState {
			u.log.Info(ctx, "payment failed event ignored for settled booking", event.BookingRef)
			return nil
		}
		if err == repositories.ErrNotFound {
			return errors.BadRequest("payment event references unknown booking")
		}
		if err != nil {
			return err
		}

		u.publishNotification(ctx, request.NotificationMessage{
			BookingID: booking.ID.String(),
			UserID:    booking.UserID,
			Message:   "Payment failed, please retry",
		})
	}

	return nil
}

// CompleteBooking implements Usecase. Runs when the checkout date passes; a
// booking cancelled in the meantime is left alone.
func (u *usecase) CompleteBooking(ctx context.Context, payload *request.BookingCompletion) error {
	_, err := u.repo.UpdateBookingStatus(ctx, payload.BookingID,
		[]entity.BookingStatus{entity.BookingStatusConfirmed},
		entity.BookingStatusCompleted, entity.PaymentStatusPaid)
	if err == repositories.ErrStaleState || err == repositories.ErrNotFound {
		u.log.Info(ctx, "completion skipped, booking not confirmed", payload.BookingID)
		return nil
	}
	if err != nil {
		return err
	}

	u.releaseCarAvailability(ctx, payload.CarID)

	return nil
}

// SetPaymentExpired implements Usecase. Fires when the payment window lapses
// without a confirmation; the booking is cancelled and its dates released.
func (u *usecase) SetPaymentExpired(ctx context.Context, payload *request.PaymentExpiration) error {
	booking, err := u.repo.UpdateBookingStatus(ctx, payload.BookingID,
		[]entity.BookingStatus{entity.BookingStatusPending, entity.BookingStatusPaymentFailed},
		entity.BookingStatusCancelled, entity.PaymentStatusFailed)
	if err == repositories.ErrStaleState || err == repositories.ErrNotFound {
		// Already paid or cancelled before the window closed.
		return nil
	}
	if err != nil {
		return err
	}

	u.releaseCarAvailability(ctx, payload.CarID)

	u.publishNotification(ctx, request.NotificationMessage{
		BookingID: payload.BookingID,
		UserID:    booking.UserID,
		Message:   "Booking cancelled: payment window expired",
	})

	return nil
}

func (u *usecase) releaseCarAvailability(ctx context.Context, carID int64) {
	active, err := u.repo.HasActiveBookings(ctx, carID, time.Now())
	if err != nil {
		u.log.Error(ctx, "error checking active bookings", err)
		return
	}
	if !active {
		if err := u.repo.SetCarAvailability(ctx, carID, true); err != nil {
			u.log.Error(ctx, "error update cached car availability", err)
		}
	}
}

func (u *usecase) publishNotification(ctx context.Context, payload interface{}) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		u.log.Error(ctx, "error marshal notification", err)
		return
	}

	err = u.publish.Publish(notificationTopic, message.NewMessage(watermill.NewUUID(), jsonPayload))
	if err != nil {
		u.log.Error(ctx, "error publish notification", err)
	}
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.BadRequest(fmt.Sprintf("invalid start date: %s", startDate))
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.BadRequest(fmt.Sprintf("invalid end date: %s", endDate))
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.BadRequest("invalid date range")
	}
	return start, end, nil
}

func amountCents(totalPrice float64) int64 {
	return int64(math.Round(totalPrice * 100))
}

func toBookingResponse(b entity.Booking) response.Booking {
	return response.Booking{
		ID:              b.ID.String(),
		CarID:           b.CarID,
		StartDate:       b.StartDate.Format(dateLayout),
		EndDate:         b.EndDate.Format(dateLayout),
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		TotalPrice:      b.TotalPrice,
		Insurance:       b.Insurance,
		InsuranceType:   string(b.InsuranceType),
		PaymentMethod:   b.PaymentMethod,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
	}
}
