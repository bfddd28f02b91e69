package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"kakeibo/internal/handler"
	"kakeibo/internal/logger"
)

// AccessLog writes one line per request once the handler chain has returned.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()

		// Let the error handler set the final status before logging it
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		id, _ := c.Locals("requestid").(string)
		log := logger.WithRequestID(id)
		log.Info().
			Str("component", "httpreq").
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Int("status", c.Response().StatusCode()).
			Int("size", len(c.Response().Body())).
			Dur("duration", time.Since(start)).
			Msg("received request")

		return nil
	}
}

// ErrorHandler renders errors that escape the handlers (unknown routes, oversized
// bodies, recovered panics) in the same JSON shape as handler failures.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := handler.MsgOCRFailed

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		log := logger.WithComponent("server")
		log.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", code).
			Msg("Internal Server Error")
	}

	return c.Status(code).JSON(handler.ErrorResponse{Error: message})
}
