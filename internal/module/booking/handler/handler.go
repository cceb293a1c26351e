package handler

import (
	"context"
	"fmt"
	"strconv"

	"rental-service/internal/module/booking/gateway"
	"rental-service/internal/module/booking/models/request"
	"rental-service/internal/module/booking/usecases"
	"rental-service/internal/pkg/errors"
	"rental-service/internal/pkg/helpers"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

const signatureHeader = "Payment-Signature"

type BookingHandler struct {
	Log       *otelzap.Logger
	Validator *validator.Validate
	Usecase   usecases.Usecase
	Publish   message.Publisher
	Gateway   gateway.Gateway
}

func (h *BookingHandler) CreateBooking(ctx *fiber.Ctx) error {
	var req request.CreateBooking
	if err := ctx.BodyParser(&req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse request"))
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate request: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest(err.Error()))
	}

	userID := ctx.Locals("user_id").(int64)

	// call usecase to create booking
	resp, err := h.Usecase.CreateBooking(ctx.UserContext(), &req, userID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error create booking: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespCreated(ctx, h.Log, resp, "success create booking, please complete the payment")
}

func (h *BookingHandler) CancelBooking(ctx *fiber.Ctx) error {
	bookingID := ctx.Params("id")
	if bookingID == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("booking id is required"))
	}

	userID := ctx.Locals("user_id").(int64)
	role := ctx.Locals("user_role").(string)

	// call usecase to cancel booking
	err := h.Usecase.CancelBooking(ctx.UserContext(), bookingID, userID, role)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error cancel booking: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, nil, "Booking cancelled successfully")
}

func (h *BookingHandler) GetBooking(ctx *fiber.Ctx) error {
	bookingID := ctx.Params("id")
	if bookingID == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("booking id is required"))
	}

	userID := ctx.Locals("user_id").(int64)
	role := ctx.Locals("user_role").(string)

	resp, err := h.Usecase.GetBooking(ctx.UserContext(), bookingID, userID, role)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error get booking: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success get booking")
}

func (h *BookingHandler) ShowBookings(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(int64)

	// call usecase to show bookings
	resp, err := h.Usecase.ShowBookings(ctx.UserContext(), userID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error show bookings: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success show bookings")
}

func (h *BookingHandler) PaymentHistory(ctx *fiber.Ctx) error {
	userID := ctx.Locals("user_id").(int64)

	// call usecase to show payment history
	resp, err := h.Usecase.ShowPaymentHistory(ctx.UserContext(), userID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error show payment history: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success show payment history")
}

func (h *BookingHandler) RetryPayment(ctx *fiber.Ctx) error {
	bookingID := ctx.Params("id")
	if bookingID == "" {
		return helpers.RespError(ctx, h.Log, errors.BadRequest("booking id is required"))
	}

	userID := ctx.Locals("user_id").(int64)

	resp, err := h.Usecase.RetryPayment(ctx.UserContext(), bookingID, userID)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error retry payment: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success reopen payment")
}

// PaymentWebhook receives provider callbacks. The signature is verified over
// the raw body before any field is parsed; a bad signature or payload answers
// 400 so the provider redelivers, while processing outcomes always ack.
func (h *BookingHandler) PaymentWebhook(ctx *fiber.Ctx) error {
	signature := ctx.Get(signatureHeader)

	event, err := h.Gateway.VerifyAndParse(ctx.Body(), signature)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error verify payment event: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("invalid payment event"))
	}

	// call usecase to reconcile payment event
	err = h.Usecase.HandlePaymentEvent(ctx.UserContext(), &event)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error handle payment event: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, nil, "event processed")
}

func (h *BookingHandler) CheckAvailability(ctx *fiber.Ctx) error {
	carID, err := strconv.ParseInt(ctx.Query("car_id"), 10, 64)
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error parse car id: %v", err))
		return helpers.RespError(ctx, h.Log, errors.BadRequest("error parse car id"))
	}

	resp, err := h.Usecase.CheckAvailability(ctx.UserContext(), carID, ctx.Query("start_date"), ctx.Query("end_date"))
	if err != nil {
		h.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error check availability: %v", err))
		return helpers.RespError(ctx, h.Log, err)
	}

	return helpers.RespSuccess(ctx, h.Log, resp, "success check availability")
}

// ConsumePaymentEventQueue handles provider events arriving over the message
// stream instead of the webhook. Payloads on this queue were verified at the
// ingress edge; failed messages go to the poison queue.
func (h *BookingHandler) ConsumePaymentEventQueue(msg *message.Message) error {
	msg.Ack() // acknowledge message
	var event gateway.Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error unmarshal message: %v", err))

		// publish to poison queue
		reqPoisoned := request.PoisonedQueue{
			TopicTarget: "payment_events",
			ErrorMsg:    err.Error(),
			Payload:     msg.Payload,
		}

		jsonPayload, _ := json.Marshal(reqPoisoned)

		err = h.Publish.Publish("poisoned_queue", message.NewMessage(watermill.NewUUID(), jsonPayload))
		if err != nil {
			h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error publish to poison queue: %v", err))
		}

		return err
	}

	ctx := context.Background()

	// call usecase to reconcile payment event
	err := h.Usecase.HandlePaymentEvent(ctx, &event)
	if err != nil {
		// publish to poison queue
		reqPoisoned := request.PoisonedQueue{
			TopicTarget: "payment_events",
			ErrorMsg:    err.Error(),
			Payload:     msg.Payload,
		}

		jsonPayload, _ := json.Marshal(reqPoisoned)
		err = h.Publish.Publish("poisoned_queue", message.NewMessage(watermill.NewUUID(), jsonPayload))
		if err != nil {
			h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error publish to poison queue: %v", err))
		}

		h.Log.Ctx(msg.Context()).Error(fmt.Sprintf("error consume payment event queue: %v", err))

		return err
	}

	return nil
}

func (h *BookingHandler) SetPaymentExpired(ctx context.Context, t *asynq.Task) error {
	var req request.PaymentExpiration
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error unmarshal payload: %v", err))
		return err
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error validate payload: %v", err))
		return err
	}

	// call usecase to set payment expired
	err := h.Usecase.SetPaymentExpired(ctx, &req)
	if err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error set payment expired: %v", err))
		return err
	}

	return nil
}

func (h *BookingHandler) SetBookingCompleted(ctx context.Context, t *asynq.Task) error {
	var req request.BookingCompletion
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error unmarshal payload: %v", err))
		return err
	}

	if err := h.Validator.Struct(req); err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error validate payload: %v", err))
		return err
	}

	// call usecase to complete booking
	err := h.Usecase.CompleteBooking(ctx, &req)
	if err != nil {
		h.Log.Ctx(ctx).Error(fmt.Sprintf("error set booking completed: %v", err))
		return err
	}

	return nil
}
