package http

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/ticketdesk/complain-service/internal/api/dto"
	"github.com/ticketdesk/complain-service/internal/observability"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// ErrorHandler renders errors that escape the middleware chain and logs
// server errors among them.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if observability.StatusFromError(err) >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return writeError(c, err)
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders returned errors and recovered panics.
// The request logger below it has already logged them.
func errorHandlingMiddleware(metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				metrics.RecordError(observability.RoutePath(c), utils.CopyString(c.Method()), errorCode(err))
				err = writeError(c, err)
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(dto.Envelope{Message: fiberErr.Message})
	}

	domainErr := apperrors.ToDomainError(err)
	body := dto.Envelope{Message: domainErr.Message, Errors: domainErr.Fields}
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		body.Error = domainErr.Cause()
	}
	return c.Status(domainErr.HTTPStatus).JSON(body)
}

func errorCode(err error) string {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return "HTTP_" + strconv.Itoa(fiberErr.Code)
	}
	return apperrors.ToDomainError(err).Code
}
