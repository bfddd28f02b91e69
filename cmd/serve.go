package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"kakeibo/internal/config"
	"kakeibo/internal/logger"
	"kakeibo/internal/ocr"
	"kakeibo/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the OCR endpoint over HTTP",
	Long: `Start an HTTP server exposing POST /api/ocr (also POST /).

Request body:   {"image": "<base64 image>"}
Success (200):  {"fullText": "<recognized text>"}
Missing (400):  {"error": "Image data is missing in the request body."}
Failure (500):  {"error": "OCR processing failed on the server.", "details": "<message>"}
Other methods receive 405 with a plain-text body.

Configuration is read from the environment (or .env):
  LISTEN_ADDR / PORT      - bind address (default :3000)
  OCR_ENGINE              - tesseract (default), vision or documentai
  OCR_TIMEOUT             - optional per-request engine deadline, e.g. 60s
  MAX_BODY_BYTES          - request body limit (default 10MB)
  METRICS_ENABLED         - expose /metrics (default true)`,
	Example: `  # Serve with local Tesseract (binary built with -tags tesseract)
  kakeibo serve

  # Serve with Google Cloud Vision on port 8080
  OCR_ENGINE=vision kakeibo serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides LISTEN_ADDR)")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Time to wait for in-flight requests on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ListenAddr
	}
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	engine, err := createEngine(cmd.Context(), cfg.GetEngineConfig(), log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
		}
	}()

	app := server.New(engine, server.Options{
		AppName:        "Kakeibo OCR " + version,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		OCRTimeout:     cfg.OCRTimeout,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("engine", engine.Name()).
			Dur("ocr_timeout", cfg.OCRTimeout).
			Msg("Starting HTTP server")
		listenErr <- app.Listen(addr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-listenErr:
		if err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("HTTP server failed")
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received interrupt signal, shutting down")
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info().Msg("HTTP server stopped")
	return nil
}

// createEngine creates the configured OCR engine with operator-facing errors
func createEngine(ctx context.Context, engineCfg ocr.EngineConfig, log zerolog.Logger) (ocr.Engine, error) {
	engine, err := ocr.NewEngine(ctx, engineCfg)
	if err != nil {
		log.Error().
			Err(err).
			Str("engine", engineCfg.Engine).
			Msg("Failed to create OCR engine")

		switch {
		case errors.Is(err, ocr.ErrEngineUnavailable):
			return nil, fmt.Errorf("the %s engine is not compiled into this binary. Rebuild with:\n\n"+
				"   go build -tags tesseract\n\n"+
				"or set OCR_ENGINE=vision / OCR_ENGINE=documentai", engineCfg.Engine)
		case errors.Is(err, ocr.ErrMissingCredentials):
			return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
				"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n" +
				"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n" +
				"2. Export GOOGLE_CREDENTIALS with inline JSON:\n" +
				"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",\"project_id\":\"your-project\",...}'\n\n" +
				"3. Use Application Default Credentials (if gcloud is configured):\n" +
				"   gcloud auth application-default login")
		default:
			return nil, fmt.Errorf("failed to create OCR engine: %w", err)
		}
	}

	log.Debug().Str("engine", engine.Name()).Msg("OCR engine created successfully")
	return engine, nil
}
