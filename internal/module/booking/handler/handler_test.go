package handler_test

import (
	"context"
	"testing"

	"rental-service/internal/module/booking/gateway"
	"rental-service/internal/module/booking/handler"
	"rental-service/internal/module/booking/mocks"
	"rental-service/internal/module/booking/models/request"
	"rental-service/internal/module/booking/models/response"
	"rental-service/internal/pkg/errors"
	log_internal "rental-service/internal/pkg/log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/valyala/fasthttp"
)

var (
	h             *handler.BookingHandler
	ucm           *mocks.Usecase
	gwm           *mocks.Gateway
	logMock       *otelzap.Logger
	app           *fiber.App
	validatorTest *validator.Validate
	p             message.Publisher
)

type mockPublisher struct{}

// Close implements message.Publisher.
func (m *mockPublisher) Close() error {
	return nil
}

// Publish implements message.Publisher.
func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	return nil
}

func NewMockPublisher() message.Publisher {
	return &mockPublisher{}
}

func setup() {
	ucm = &mocks.Usecase{}
	gwm = &mocks.Gateway{}
	logMock = log_internal.Setup()
	validatorTest = validator.New()
	p = NewMockPublisher()
	h = &handler.BookingHandler{
		Log:       logMock,
		Validator: validatorTest,
		Usecase:   ucm,
		Publish:   p,
		Gateway:   gwm,
	}
	app = fiber.New()
}

func teardown() {
	ucm = nil
	gwm = nil
	logMock = nil
	validatorTest = nil
	p = nil
	h = nil
	app = nil
}

func createBookingPayload() request.CreateBooking {
	return request.CreateBooking{
		CarID:           1,
		StartDate:       "2024-06-01",
		EndDate:         "2024-06-04",
		PaymentMethod:   "credit_card",
		PickupLocation:  "Airport",
		DropoffLocation: "Downtown",
		Driver: request.DriverDetails{
			Name:          "John Doe",
			Age:           30,
			LicenseNumber: "D1234567",
		},
	}
}

func TestCreateBooking(t *testing.T) {
	setup()
	defer teardown()

	t.Run("success", func(t *testing.T) {
		// mock data
		payload := createBookingPayload()
		jsonData, _ := json.Marshal(payload)

		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().SetRequestURI("/api/v1/bookings")
		ctx.Request().Header.SetContentType("application/json")
		ctx.Request().Header.SetMethod("POST")
		ctx.Request().SetBody(jsonData)
		ctx.Locals("user_id", int64(1))

		// mock usecase
		ucm.On("CreateBooking", mock.Anything, &payload, int64(1)).Return(response.BookingCreated{
			Booking:      response.Booking{ID: "b-1", Status: "pending"},
			ClientSecret: "secret_1",
		}, nil)

		// test
		err := h.CreateBooking(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, ctx.Response().StatusCode())
	})

	t.Run("invalid payment method", func(t *testing.T) {
		setup()
		payload := createBookingPayload()
		payload.PaymentMethod = "cash"
		jsonData, _ := json.Marshal(payload)

		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().Header.SetContentType("application/json")
		ctx.Request().Header.SetMethod("POST")
		ctx.Request().SetBody(jsonData)
		ctx.Locals("user_id", int64(1))

		// test
		err := h.CreateBooking(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, ctx.Response().StatusCode())
		ucm.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("underage driver", func(t *testing.T) {
		payload := createBookingPayload()
		payload.Driver.Age = 17
		jsonData, _ := json.Marshal(payload)

		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().Header.SetContentType("application/json")
		ctx.Request().Header.SetMethod("POST")
		ctx.Request().SetBody(jsonData)
		ctx.Locals("user_id", int64(1))

		// test
		err := h.CreateBooking(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, ctx.Response().StatusCode())
	})
}

func TestCancelBooking(t *testing.T) {
	setup()
	defer teardown()

	t.Run("missing booking id", func(t *testing.T) {
		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().Header.SetMethod("PUT")
		ctx.Locals("user_id", int64(1))
		ctx.Locals("user_role", "customer")

		// test
		err := h.CancelBooking(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, ctx.Response().StatusCode())
		ucm.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestShowBookings(t *testing.T) {
	setup()
	defer teardown()

	t.Run("success", func(t *testing.T) {
		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().Header.SetMethod("GET")
		ctx.Locals("user_id", int64(1))

		// mock usecase
		ucm.On("ShowBookings", mock.Anything, int64(1)).Return([]response.Booking{
			{ID: "b-1", Status: "pending"},
		}, nil)

		// test
		err := h.ShowBookings(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, ctx.Response().StatusCode())
	})
}

func TestPaymentHistory(t *testing.T) {
	setup()
	defer teardown()

	t.Run("success", func(t *testing.T) {
		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().Header.SetMethod("GET")
		ctx.Locals("user_id", int64(1))

		// mock usecase
		ucm.On("ShowPaymentHistory", mock.Anything, int64(1)).Return([]response.PaymentHistory{
			{BookingID: "b-1", Amount: 150, Currency: "usd", PaymentStatus: "paid"},
		}, nil)

		// test
		err := h.PaymentHistory(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, ctx.Response().StatusCode())
	})
}

func TestCheckAvailability(t *testing.T) {
	setup()
	defer teardown()

	t.Run("success", func(t *testing.T) {
		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().SetRequestURI("/api/private/availability?car_id=1&start_date=2024-06-01&end_date=2024-06-04")
		ctx.Request().Header.SetMethod("GET")

		// mock usecase
		ucm.On("CheckAvailability", mock.Anything, int64(1), "2024-06-01", "2024-06-04").Return(response.Availability{
			CarID:     1,
			StartDate: "2024-06-01",
			EndDate:   "2024-06-04",
			Available: true,
		}, nil)

		// test
		err := h.CheckAvailability(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, ctx.Response().StatusCode())
	})

	t.Run("missing car id", func(t *testing.T) {
		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().SetRequestURI("/api/private/availability")
		ctx.Request().Header.SetMethod("GET")

		// test
		err := h.CheckAvailability(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, ctx.Response().StatusCode())
	})
}

func TestPaymentWebhook(t *testing.T) {
	setup()
	defer teardown()

	t.Run("valid signature", func(t *testing.T) {
		// mock data
		event := gateway.Event{ID: "evt_1", Type: gateway.EventPaymentSucceeded, BookingRef: "b-1"}
		body, _ := json.Marshal(event)
		signature := gateway.Sign("whsec_test", body)

		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().Header.SetContentType("application/json")
		ctx.Request().Header.SetMethod("POST")
		ctx.Request().Header.Set("Payment-Signature", signature)
		ctx.Request().SetBody(body)

		// mock gateway and usecase
		gwm.On("VerifyAndParse", body, signature).Return(event, nil)
		ucm.On("HandlePaymentEvent", mock.Anything, &event).Return(nil)

		// test
		err := h.PaymentWebhook(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, ctx.Response().StatusCode())
	})

	t.Run("bad signature", func(t *testing.T) {
		setup()
		body := []byte(`{"id":"evt_1"}`)

		ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
		ctx.Request().Header.SetContentType("application/json")
		ctx.Request().Header.SetMethod("POST")
		ctx.Request().Header.Set("Payment-Signature", "deadbeef")
		ctx.Request().SetBody(body)

		// mock gateway
		gwm.On("VerifyAndParse", body, "deadbeef").Return(gateway.Event{}, gateway.ErrSignatureMismatch)

		// test
		err := h.PaymentWebhook(ctx)

		// assertion
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, ctx.Response().StatusCode())
		ucm.AssertNotCalled(t, "HandlePaymentEvent", mock.Anything, mock.Anything)
	})
}

func TestConsumePaymentEventQueue(t *testing.T) {
	setup()
	defer teardown()

	t.Run("success", func(t *testing.T) {
		// mock data
		event := gateway.Event{ID: "evt_1", Type: gateway.EventPaymentSucceeded, BookingRef: "b-1"}
		jsonData, _ := json.Marshal(event)
		msg := message.NewMessage("1", jsonData)

		// mock usecase
		ucm.On("HandlePaymentEvent", mock.Anything, &event).Return(nil)

		// test
		err := h.ConsumePaymentEventQueue(msg)

		// assertion
		assert.NoError(t, err)
	})

	t.Run("malformed payload goes to poison queue", func(t *testing.T) {
		setup()
		msg := message.NewMessage("2", []byte("not json"))

		// test: the message is acked and handed to the poison queue
		err := h.ConsumePaymentEventQueue(msg)

		// assertion
		assert.NoError(t, err)
		ucm.AssertNotCalled(t, "HandlePaymentEvent", mock.Anything, mock.Anything)
	})
}

func TestSetPaymentExpired(t *testing.T) {
	setup()
	defer teardown()

	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		// mock data
		payload := request.PaymentExpiration{BookingID: "b-1", CarID: 1}
		jsonData, _ := json.Marshal(payload)
		task := asynq.NewTask("set_payment_expired", jsonData)

		// mock usecase
		ucm.On("SetPaymentExpired", ctx, &payload).Return(nil)

		// test
		err := h.SetPaymentExpired(ctx, task)

		// assertion
		assert.NoError(t, err)
	})

	t.Run("invalid payload", func(t *testing.T) {
		setup()
		task := asynq.NewTask("set_payment_expired", []byte(`{"car_id":1}`))

		// test
		err := h.SetPaymentExpired(ctx, task)

		// assertion
		assert.Error(t, err)
		ucm.AssertNotCalled(t, "SetPaymentExpired", mock.Anything, mock.Anything)
	})
}

func TestSetBookingCompleted(t *testing.T) {
	setup()
	defer teardown()

	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		// mock data
		payload := request.BookingCompletion{BookingID: "b-1", CarID: 1}
		jsonData, _ := json.Marshal(payload)
		task := asynq.NewTask("set_booking_completed", jsonData)

		// mock usecase
		ucm.On("CompleteBooking", ctx, &payload).Return(nil)

		// test
		err := h.SetBookingCompleted(ctx, task)

		// assertion
		assert.NoError(t, err)
	})

	t.Run("usecase failure propagates for retry", func(t *testing.T) {
		payload := request.BookingCompletion{BookingID: "b-2", CarID: 1}
		jsonData, _ := json.Marshal(payload)
		task := asynq.NewTask("set_booking_completed", jsonData)

		ucm.On("CompleteBooking", ctx, &payload).Return(errors.InternalServerError("db down"))

		// test
		err := h.SetBookingCompleted(ctx, task)

		// assertion
		assert.Error(t, err)
	})
}
