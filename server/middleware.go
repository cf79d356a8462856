package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// requestLogger logs one line per request and counts it. Responses with a
// status of 400 or above log at warn level.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if c.Method() == fiber.MethodOptions {
			return err
		}

		status := c.Response().StatusCode()
		if err != nil {
			// Not yet written by the error handler.
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		route := c.Route().Path
		s.metrics.RecordRequest(c.UserContext(), c.Method(), route, status)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID(c)),
		}
		if status >= fiber.StatusBadRequest {
			s.logger.Warn("request", fields...)
		} else {
			s.logger.Info("request", fields...)
		}

		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
