// Package server assembles the fiber application that exposes the OCR endpoint.
package server

import (
	"runtime"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"kakeibo/internal/handler"
	"kakeibo/internal/logger"
	"kakeibo/internal/ocr"
)

const (
	// OCRPath is where callers POST images. The root path is served too for
	// platforms that route a whole deployment to one function.
	OCRPath     = "/api/ocr"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"

	serviceName = "kakeibo_ocr"
)

// Options configures the application.
type Options struct {
	AppName        string
	MaxBodyBytes   int
	OCRTimeout     time.Duration
	MetricsEnabled bool
}

// fiberprometheus registers its collectors globally, so one instance serves every app.
var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// New creates the fiber application serving engine.
func New(engine ocr.Engine, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		BodyLimit:             opts.MaxBodyBytes,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			log := logger.WithComponent("server")
			log.Error().Msgf("panic: %v\n%s\n", e, buf)
		},
	}))
	app.Use(requestid.New())
	app.Use(AccessLog())

	if opts.MetricsEnabled {
		p := metrics()
		p.RegisterAt(app, MetricsPath)
		app.Use(p.Middleware)
	}

	app.Get(HealthPath, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"engine":    engine.Name(),
			"tesseract": ocr.TesseractAvailable,
		})
	})

	ocrHandler := handler.NewOCRHandler(engine, handler.WithTimeout(opts.OCRTimeout))
	app.All(OCRPath, ocrHandler.Handle)
	app.All("/", ocrHandler.Handle)

	return app
}
