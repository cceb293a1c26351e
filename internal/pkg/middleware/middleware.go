package middleware

import (
	"fmt"

	"rental-service/internal/module/booking/repositories"
	"rental-service/internal/pkg/errors"
	"rental-service/internal/pkg/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.elastic.co/apm"
)

type Middleware struct {
	Log  *otelzap.Logger
	Repo repositories.Repositories
}

// ValidateToken resolves the bearer token against the user service and stores
// the caller's identity and role in the request locals. Authentication itself
// is the user service's concern.
func (m *Middleware) ValidateToken(ctx *fiber.Ctx) error {
	// get token from header
	auth := ctx.Get("Authorization")
	if len(auth) < 8 {
		m.Log.Ctx(ctx.UserContext()).Error("error get token from header")
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("error get token from header"))
	}

	// grab token (Bearer token) from header, 7 is the length of "Bearer "
	token := auth[7:]

	// check repositories if token is valid
	resp, err := m.Repo.ValidateToken(ctx.Context(), token)
	if err != nil {
		m.Log.Ctx(ctx.UserContext()).Error(fmt.Sprintf("error validate token: %v", err))
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("error validate token"))
	}

	if !resp.IsValid {
		m.Log.Ctx(ctx.UserContext()).Error("error validate token")
		return helpers.RespError(ctx, m.Log, errors.UnauthorizedError("error validate token"))
	}

	ctx.Locals("user_id", resp.UserID)
	ctx.Locals("email_user", resp.EmailUser)
	ctx.Locals("user_role", resp.Role)

	return ctx.Next()
}

// Tracing opens an apm transaction per request and records the final status.
func (m *Middleware) Tracing(ctx *fiber.Ctx) error {
	tx := apm.DefaultTracer.StartTransaction(fmt.Sprintf("%s %s", ctx.Method(), ctx.Path()), "request")
	defer tx.End()

	ctx.SetUserContext(apm.ContextWithTransaction(ctx.UserContext(), tx))

	err := ctx.Next()
	if err != nil {
		apm.CaptureError(ctx.UserContext(), err).Send()
	}

	tx.Result = fmt.Sprintf("HTTP %d", ctx.Response().StatusCode())
	return err
}
