package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"kakeibo/internal/logger"
	"kakeibo/internal/ocr"
)

const defaultMaxBodyBytes = 10 * 1024 * 1024

type Config struct {
	// HTTP Server Configuration
	ListenAddr     string
	MaxBodyBytes   int
	MetricsEnabled bool

	// OCR Engine Configuration
	OCREngine      string
	OCRTimeout     time.Duration
	TessdataPrefix string

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		ListenAddr:                 listenAddr(),
		OCREngine:                  strings.ToLower(getEnv("OCR_ENGINE", ocr.EngineTesseract)),
		TessdataPrefix:             getEnv("TESSDATA_PREFIX", ""),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stdout"),
	}

	var err error
	if config.OCRTimeout, err = time.ParseDuration(getEnv("OCR_TIMEOUT", "0s")); err != nil {
		return nil, fmt.Errorf("OCR_TIMEOUT is not a valid duration: %w", err)
	}
	if config.MaxBodyBytes, err = strconv.Atoi(getEnv("MAX_BODY_BYTES", strconv.Itoa(defaultMaxBodyBytes))); err != nil {
		return nil, fmt.Errorf("MAX_BODY_BYTES is not a valid integer: %w", err)
	}
	if config.MetricsEnabled, err = strconv.ParseBool(getEnv("METRICS_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("METRICS_ENABLED is not a valid boolean: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case ocr.EngineTesseract, ocr.EngineVision:
	case ocr.EngineDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the %s engine", c.OCREngine)
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the %s engine", c.OCREngine)
		}
	default:
		return fmt.Errorf("OCR_ENGINE %q is not one of %s", c.OCREngine, strings.Join(ocr.Engines(), ", "))
	}
	if c.OCRTimeout < 0 {
		return fmt.Errorf("OCR_TIMEOUT must not be negative")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetEngineConfig returns the OCR engine settings from the main config
func (c *Config) GetEngineConfig() ocr.EngineConfig {
	return ocr.EngineConfig{
		Engine:                     c.OCREngine,
		TessdataPrefix:             c.TessdataPrefix,
		GoogleCloudProject:         c.GoogleCloudProject,
		GoogleCloudLocation:        c.GoogleCloudLocation,
		DocumentAIProcessorID:      c.DocumentAIProcessorID,
		DocumentAIProcessorVersion: c.DocumentAIProcessorVersion,
	}
}

// listenAddr prefers LISTEN_ADDR and falls back to the PORT convention of most hosting platforms
func listenAddr() string {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		return addr
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":3000"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
