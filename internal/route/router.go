package router

import (
	"rental-service/internal/module/booking/handler"
	"rental-service/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
)

func Initialize(app *fiber.App, handlerBooking *handler.BookingHandler, m *middleware.Middleware) *fiber.App {

	// health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("OK")
	})

	app.Use(m.Tracing)

	Api := app.Group("/api")

	// public routes
	v1 := Api.Group("/v1")
	v1.Post("/bookings", m.ValidateToken, handlerBooking.CreateBooking)
	v1.Get("/bookings", m.ValidateToken, handlerBooking.ShowBookings)
	v1.Get("/bookings/:id", m.ValidateToken, handlerBooking.GetBooking)
	v1.Put("/bookings/:id/cancel", m.ValidateToken, handlerBooking.CancelBooking)
	v1.Post("/bookings/:id/payment/retry", m.ValidateToken, handlerBooking.RetryPayment)

	v1.Get("/payments/history", m.ValidateToken, handlerBooking.PaymentHistory)

	// webhook is authenticated by its signature, not by a user token
	v1.Post("/payments/webhook", handlerBooking.PaymentWebhook)

	private := Api.Group("/private")
	private.Get("/availability", handlerBooking.CheckAvailability)

	return app

}
