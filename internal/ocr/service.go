// Package ocr provides text recognition for raw image bytes behind a single Engine interface.
//
// Three engines are available:
//   - tesseract: local Tesseract via gosseract (requires the "tesseract" build tag and
//     the tesseract-ocr library plus the traineddata for the requested language)
//   - vision: Google Cloud Vision API document text detection
//   - documentai: Google Document AI OCR processor
//
// Google engines read credentials from the environment:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - otherwise Application Default Credentials
//
// Language codes are Tesseract style ("jpn", "eng"). Engines that expect BCP-47
// hints translate them with LanguageHint.
package ocr

import (
	"context"
	"time"
)

// Engine names accepted by NewEngine.
const (
	EngineTesseract  = "tesseract"
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

// MaxImageSizeBytes is the local pre-check applied by the hosted engines before
// calling out. It matches Vision's 20MB per-image file limit; the APIs may still
// reject smaller inline requests (Vision caps JSON request bodies at 10MB).
const MaxImageSizeBytes = 20 * 1024 * 1024

// Engine recognizes text in a single image.
type Engine interface {
	// Name returns the engine identifier used in logs and metrics.
	Name() string

	// Recognize extracts text from raw image bytes using the given language.
	// A successful call may return empty text when nothing was recognized.
	Recognize(ctx context.Context, image []byte, language string) (*Result, error)

	// Close releases clients held by the engine.
	Close() error
}

// Result contains the recognized text and whatever metadata the engine reports.
type Result struct {
	// Text is the full recognized text in reading order.
	Text string `json:"text"`

	// Confidence is the average confidence reported by the engine (0.0 to 1.0),
	// zero when the engine does not report one.
	Confidence float32 `json:"confidence,omitempty"`

	// LanguageCodes contains the languages the engine detected, if any.
	LanguageCodes []string `json:"language_codes,omitempty"`

	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Engines lists the supported engine names.
func Engines() []string {
	return []string{EngineTesseract, EngineVision, EngineDocumentAI}
}
