package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/interviewer/pkg/api"
	"github.com/papercomputeco/interviewer/pkg/upstream"
)

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(api.NewError(message))
}

// upstreamFailure answers with the provider's own status and body when the
// provider rejected the call, and 500 otherwise.
func (s *Server) upstreamFailure(c *fiber.Ctx, provider string, err error) error {
	status := upstream.StatusCode(err)
	s.logger.Error("upstream call failed",
		zap.String("provider", provider),
		zap.Int("status", status),
		zap.Error(err),
	)

	var upErr *upstream.Error
	switch {
	case errors.As(err, &upErr):
		message := upErr.Body
		if message == "" {
			message = upErr.Error()
		}
		return c.Status(status).JSON(api.NewError(message))
	case errors.Is(err, upstream.ErrMissingCredential):
		return c.Status(status).JSON(api.NewError(provider + " credential not configured"))
	default:
		return c.Status(status).JSON(api.NewError(provider + " request failed"))
	}
}
