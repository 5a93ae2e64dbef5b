package observability

import (
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

// UnmatchedRoute labels requests that matched no registered route.
const UnmatchedRoute = "unmatched"

// RequestLogger logs one line per request and records request metrics.
// It runs inside the error middleware, so a returned error decides the status.
// A panic is recorded as a 500 and then re-raised for the outer recover.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				record(c, logger, metrics, fiber.StatusInternalServerError, time.Since(start),
					zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				panic(r)
			}
		}()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusFromError(err)
		}
		var extra []zap.Field
		if err != nil && status >= fiber.StatusInternalServerError {
			extra = append(extra, zap.Error(err))
		}
		record(c, logger, metrics, status, time.Since(start), extra...)
		return err
	}
}

func record(c *fiber.Ctx, logger *zap.Logger, metrics *Metrics, status int, elapsed time.Duration, extra ...zap.Field) {
	method := utils.CopyString(c.Method())
	metrics.RecordRequest(RoutePath(c), method, status, elapsed)

	fields := append([]zap.Field{
		zap.String("method", method),
		zap.String("path", utils.CopyString(c.Path())),
		zap.Int("status", status),
		zap.Duration("latency", elapsed),
		zap.String("ip", c.IP()),
	}, extra...)
	switch {
	case status >= fiber.StatusInternalServerError:
		logger.Error("request", fields...)
	case status >= fiber.StatusBadRequest:
		logger.Warn("request", fields...)
	default:
		logger.Info("request", fields...)
	}
}

// StatusFromError maps an error to the HTTP status it will be rendered with.
func StatusFromError(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

// RoutePath returns the registered route pattern for metric labels, or
// UnmatchedRoute when only app-level middleware ran.
func RoutePath(c *fiber.Ctx) string {
	route := c.Route()
	if route == nil || route.Method == "USE" || route.Path == "" {
		return UnmatchedRoute
	}
	return utils.CopyString(route.Path)
}
