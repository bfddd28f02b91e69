package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"kakeibo/internal/logger"
	"kakeibo/internal/ocr"
)

// OCRHandler serves the OCR endpoint on top of a single engine.
// It holds no per-request state and is safe for concurrent use.
type OCRHandler struct {
	engine  ocr.Engine
	timeout time.Duration
}

// Option configures an OCRHandler.
type Option func(*OCRHandler)

// WithTimeout bounds each engine call. Zero leaves it unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(h *OCRHandler) {
		h.timeout = timeout
	}
}

// NewOCRHandler creates a handler that recognizes Japanese text with engine.
func NewOCRHandler(engine ocr.Engine, opts ...Option) *OCRHandler {
	h := &OCRHandler{engine: engine}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes one request:
//   - non-POST: 405 plain text
//   - missing or falsy "image": 400 JSON
//   - decode or engine failure: 500 JSON with details
//   - otherwise: 200 {"fullText": ...}
func (h *OCRHandler) Handle(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).SendString(MsgMethodNotAllowed)
	}

	image, ok := imageField(c.Body())
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: MsgImageMissing})
	}

	log := requestLogger(c)

	text, err := h.recognize(c.UserContext(), image)
	if err != nil {
		log.Error().
			Err(err).
			Str("engine", h.engine.Name()).
			Msg("OCR processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   MsgOCRFailed,
			Details: err.Error(),
		})
	}

	log.Debug().
		Str("engine", h.engine.Name()).
		Int("text_length", len(text)).
		Msg("OCR processing completed")

	return c.Status(fiber.StatusOK).JSON(OCRResponse{FullText: text})
}

// recognize decodes the payload and runs the engine. Every failure, including
// a panic inside the engine, comes back as an error.
func (h *OCRHandler) recognize(ctx context.Context, image gjson.Result) (text string, err error) {
	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("OCR engine panicked: %v", r)
		}
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		recognizeDuration.WithLabelValues(h.engine.Name(), outcome).Observe(time.Since(startTime).Seconds())
	}()

	data, err := decodeImage(image)
	if err != nil {
		return "", err
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.engine.Recognize(ctx, data, ocr.LanguageJapanese)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// requestLogger returns a logger tagged with the request ID set by the requestid middleware.
func requestLogger(c *fiber.Ctx) zerolog.Logger {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return logger.WithRequestID(id)
	}
	return logger.WithComponent("handler")
}
