package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rental-service/config"
	"rental-service/internal/module/booking/models/entity"
	"rental-service/internal/module/booking/models/response"
	"rental-service/internal/pkg/errors"
	"rental-service/internal/pkg/log"

	"github.com/go-redsync/redsync/v4"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	circuit "github.com/rubyist/circuitbreaker"
)

const (
	carLockExpiry        = 8 * time.Second
	paymentEventClaimTTL = 72 * time.Hour
)

type repositories struct {
	db             *sqlx.DB
	log            log.Logger
	httpClient     *circuit.HTTPClient
	redisClient    *redis.Client
	rs             *redsync.Redsync
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	cfgUserService *config.UserServiceConfig
	cfgCarService  *config.CarServiceConfig
}

type Repositories interface {
	// http
	ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error)
	GetCar(ctx context.Context, carID int64) (response.Car, error)
	SetCarAvailability(ctx context.Context, carID int64, available bool) error
	// redis
	ClaimPaymentEvent(ctx context.Context, eventID string) (bool, error)
	ReleasePaymentEvent(ctx context.Context, eventID string) error
	// db
	TryCreateBooking(ctx context.Context, booking *entity.Booking) error
	IsCarAvailable(ctx context.Context, carID int64, startDate, endDate time.Time, excludeBookingID string) (bool, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, expected []entity.BookingStatus, next entity.BookingStatus, paymentStatus entity.PaymentStatus) (entity.Booking, error)
	SetPaymentIntentRef(ctx context.Context, bookingID string, intentRef string) error
	SetBookingTaskID(ctx context.Context, bookingID string, taskID string) error
	FindBookingByID(ctx context.Context, bookingID string) (entity.Booking, error)
	FindBookingsByUserID(ctx context.Context, userID int64) ([]entity.Booking, error)
	HasActiveBookings(ctx context.Context, carID int64, after time.Time) (bool, error)
	// scheduler
	SetTaskScheduler(ctx context.Context, taskType string, processAt time.Time, payload []byte) (string, error)
	DeleteTaskScheduler(ctx context.Context, taskID string) error
}

func New(db *sqlx.DB, log log.Logger, httpClient *circuit.HTTPClient, redisClient *redis.Client, rs *redsync.Redsync, asynqClient *asynq.Client, asynqInspector *asynq.Inspector, cfgUserService *config.UserServiceConfig, cfgCarService *config.CarServiceConfig) Repositories {
	return &repositories{
		db:             db,
		log:            log,
		httpClient:     httpClient,
		redisClient:    redisClient,
		rs:             rs,
		asynqClient:    asynqClient,
		asynqInspector: asynqInspector,
		cfgUserService: cfgUserService,
		cfgCarService:  cfgCarService,
	}
}

// TryCreateBooking implements Repositories. The availability check and the
// insert run as one atomic unit: a distributed mutex scoped to the car id
// serializes concurrent creates for the same car, so of two racing requests
// with overlapping dates exactly one inserts and the other observes
// ErrUnavailableDates. Creates for different cars proceed in parallel.
func (r *repositories) TryCreateBooking(ctx context.Context, booking *entity.Booking) error {
	mutex := r.rs.NewMutex(fmt.Sprintf("lock:car:%d", booking.CarID), redsync.WithExpiry(carLockExpiry))
	if err := mutex.LockContext(ctx); err != nil {
		return errors.ServiceUnavailable("error acquiring car lock")
	}
	defer func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			r.log.Error(ctx, "error releasing car lock", err)
		}
	}()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.InternalServerError("error starting transaction")
	}

	// Half-open overlap test: [s1,e1) conflicts with [s2,e2) iff s1 < e2 AND s2 < e1.
	// Cancelled bookings no longer occupy their interval.
	const overlapQuery = `SELECT COUNT(1) FROM bookings
		WHERE car_id = $1
		  AND status <> 'cancelled'
		  AND deleted_at IS NULL
		  AND start_date < $3
		  AND end_date > $2`

	var conflicts int
	err = tx.GetContext(ctx, &conflicts, overlapQuery, booking.CarID, booking.StartDate, booking.EndDate)
	if err != nil {
		tx.Rollback()
		return errors.InternalServerError("error checking availability")
	}

	if conflicts > 0 {
		tx.Rollback()
		return ErrUnavailableDates
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO bookings (
			id, user_id, car_id, start_date, end_date, status, payment_status,
			total_price, payment_method, pickup_location, dropoff_location,
			additional_requests, insurance, insurance_type,
			driver_name, driver_age, driver_license, created_at
		) VALUES (
			:id, :user_id, :car_id, :start_date, :end_date, :status, :payment_status,
			:total_price, :payment_method, :pickup_location, :dropoff_location,
			:additional_requests, :insurance, :insurance_type,
			:driver_name, :driver_age, :driver_license, :created_at
		)
	`, booking)
	if err != nil {
		tx.Rollback()
		return errors.InternalServerError("error inserting booking")
	}

	if err := tx.Commit(); err != nil {
		return errors.InternalServerError("error committing transaction")
	}

	return nil
}

// IsCarAvailable implements Repositories. excludeBookingID lets a booking's
// own interval be ignored when re-validating after a self-mutation; pass an
// empty string otherwise.
func (r *repositories) IsCarAvailable(ctx context.Context, carID int64, startDate, endDate time.Time, excludeBookingID string) (bool, error) {
	query := `SELECT COUNT(1) FROM bookings
		WHERE car_id = $1
		  AND status <> 'cancelled'
		  AND deleted_at IS NULL
		  AND start_date < $3
		  AND end_date > $2`
	args := []interface{}{carID, startDate, endDate}

	if excludeBookingID != "" {
		query += ` AND id <> $4`
		args = append(args, excludeBookingID)
	}

	var conflicts int
	if err := r.db.GetContext(ctx, &conflicts, query, args...); err != nil {
		return false, errors.InternalServerError("error checking availability")
	}

	return conflicts == 0, nil
}

// UpdateBookingStatus implements Repositories. The update is guarded: it only
// applies while the stored status is one of the expected states, and the
// status and payment status move in the same statement so a transition never
// half-commits. Zero rows means the booking either does not exist or was
// mutated concurrently.
func (r *repositories) UpdateBookingStatus(ctx context.Context, bookingID string, expected []entity.BookingStatus, next entity.BookingStatus, paymentStatus entity.PaymentStatus) (entity.Booking, error) {
	expectedStates := make([]string, 0, len(expected))
	for _, s := range expected {
		expectedStates = append(expectedStates, string(s))
	}

	const query = `UPDATE bookings
		SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND status = ANY($4) AND deleted_at IS NULL
		RETURNING *`

	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, query, next, paymentStatus, bookingID, pq.Array(expectedStates))
	if err == sql.ErrNoRows {
		if _, findErr := r.FindBookingByID(ctx, bookingID); findErr == ErrNotFound {
			return entity.Booking{}, ErrNotFound
		}
		return entity.Booking{}, ErrStaleState
	}
	if err != nil {
		return entity.Booking{}, errors.InternalServerError("error updating booking status")
	}

	return booking, nil
}

// SetPaymentIntentRef implements Repositories. The reference is written at
// most once.
func (r *repositories) SetPaymentIntentRef(ctx context.Context, bookingID string, intentRef string) error {
	const query = `UPDATE bookings
		SET payment_intent_ref = $1, updated_at = NOW()
		WHERE id = $2 AND payment_intent_ref IS NULL AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, intentRef, bookingID)
	if err != nil {
		return errors.InternalServerError("error setting payment intent ref")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.InternalServerError("error setting payment intent ref")
	}
	if affected == 0 {
		return ErrIntentAlreadySet
	}

	return nil
}

// SetBookingTaskID implements Repositories.
func (r *repositories) SetBookingTaskID(ctx context.Context, bookingID string, taskID string) error {
	const query = `UPDATE bookings SET task_id = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, taskID, bookingID); err != nil {
		return errors.InternalServerError("error setting booking task id")
	}
	return nil
}

// FindBookingByID implements Repositories.
func (r *repositories) FindBookingByID(ctx context.Context, bookingID string) (entity.Booking, error) {
	const query = `SELECT * FROM bookings WHERE id = $1 AND deleted_at IS NULL`
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, query, bookingID)
	if err == sql.ErrNoRows {
		return entity.Booking{}, ErrNotFound
	}
	if err != nil {
		return entity.Booking{}, errors.InternalServerError("error find booking by id")
	}
	return booking, nil
}

// FindBookingsByUserID implements Repositories.
func (r *repositories) FindBookingsByUserID(ctx context.Context, userID int64) ([]entity.Booking, error) {
	const query = `SELECT * FROM bookings WHERE user_id = $1 AND deleted_at IS NULL ORDER BY start_date DESC`
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, errors.InternalServerError("error find bookings by user id")
	}
	return bookings, nil
}

// HasActiveBookings implements Repositories. Used to decide whether the car's
// cached availability flag can be released after a cancellation or completion.
func (r *repositories) HasActiveBookings(ctx context.Context, carID int64, after time.Time) (bool, error) {
	const query = `SELECT COUNT(1) FROM bookings
		WHERE car_id = $1
		  AND status NOT IN ('cancelled', 'completed')
		  AND deleted_at IS NULL
		  AND end_date > $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, carID, after); err != nil {
		return false, errors.InternalServerError("error counting active bookings")
	}

	return count > 0, nil
}

// ClaimPaymentEvent implements Repositories. The first claim for an event id
// wins; replays observe false and are treated as already processed.
func (r *repositories) ClaimPaymentEvent(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf("payment:event:%s", eventID)
	claimed, err := r.redisClient.SetNX(ctx, key, 1, paymentEventClaimTTL).Result()
	if err != nil {
		return false, errors.InternalServerError("error claiming payment event")
	}
	return claimed, nil
}

// ReleasePaymentEvent implements Repositories. Called when applying a claimed
// event failed transiently, so a redelivery can try again.
func (r *repositories) ReleasePaymentEvent(ctx context.Context, eventID string) error {
	key := fmt.Sprintf("payment:event:%s", eventID)
	if _, err := r.redisClient.Del(ctx, key).Result(); err != nil {
		return errors.InternalServerError("error releasing payment event")
	}
	return nil
}

// GetCar implements Repositories.
func (r *repositories) GetCar(ctx context.Context, carID int64) (response.Car, error) {
	url := fmt.Sprintf("http://%s:%s/api/private/cars/%d", r.cfgCarService.Host, r.cfgCarService.Port, carID)
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return response.Car{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return response.Car{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		r.log.Error(ctx, "car service returned unexpected status", resp.StatusCode)
		return response.Car{}, errors.InternalServerError("error get car")
	}

	var car response.Car
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&car); err != nil {
		return response.Car{}, err
	}

	return car, nil
}

// SetCarAvailability implements Repositories. Best-effort denormalization
// write; the availability index over bookings stays the source of truth.
func (r *repositories) SetCarAvailability(ctx context.Context, carID int64, available bool) error {
	url := fmt.Sprintf("http://%s:%s/api/private/cars/%d/availability", r.cfgCarService.Host, r.cfgCarService.Port, carID)
	body := fmt.Sprintf(`{"available":%t}`, available)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Error(ctx, "car service rejected availability update", resp.StatusCode)
		return errors.InternalServerError("error set car availability")
	}

	return nil
}

func (r *repositories) ValidateToken(ctx context.Context, token string) (response.UserServiceValidate, error) {
	// http call to user service
	url := fmt.Sprintf("http://%s:%s/api/private/token/validate?token=%s", r.cfgUserService.Host, r.cfgUserService.Port, token)
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return response.UserServiceValidate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Error(ctx, "Invalid token", resp.StatusCode)
		return response.UserServiceValidate{}, errors.BadRequest("Invalid token")
	}

	var respData response.UserServiceValidate
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&respData); err != nil {
		return response.UserServiceValidate{}, err
	}

	if !respData.IsValid {
		r.log.Error(ctx, "Invalid token", resp.StatusCode)
		return response.UserServiceValidate{}, errors.BadRequest("Invalid token")
	}

	return respData, nil
}

// SetTaskScheduler implements Repositories. Enqueues a deferred task and
// returns its id so the caller can drop it later.
func (r *repositories) SetTaskScheduler(ctx context.Context, taskType string, processAt time.Time, payload []byte) (string, error) {
	task := asynq.NewTask(taskType, payload)
	info, err := r.asynqClient.EnqueueContext(ctx, task, asynq.ProcessAt(processAt))
	if err != nil {
		return "", errors.InternalServerError("error scheduling task")
	}
	return info.ID, nil
}

// DeleteTaskScheduler implements Repositories.
func (r *repositories) DeleteTaskScheduler(ctx context.Context, taskID string) error {
	err := r.asynqInspector.DeleteTask("default", taskID)
	if err != nil {
		return errors.InternalServerError("error deleting scheduled task")
	}
	return nil
}
