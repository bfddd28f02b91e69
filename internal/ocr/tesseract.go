//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// TesseractAvailable reports whether the Tesseract engine was compiled in.
const TesseractAvailable = true

// TesseractEngine implements Engine using a local Tesseract installation.
type TesseractEngine struct {
	tessdataPrefix string
}

// NewTesseractEngine creates a Tesseract engine. An empty tessdataPrefix uses
// the library default (or the TESSDATA_PREFIX environment variable).
func NewTesseractEngine(tessdataPrefix string) (*TesseractEngine, error) {
	return &TesseractEngine{tessdataPrefix: tessdataPrefix}, nil
}

func (t *TesseractEngine) Name() string { return EngineTesseract }

// Recognize runs Tesseract on the image. gosseract clients are not safe for
// concurrent use, so every call gets its own client. Tesseract cannot be
// interrupted; on context cancellation the call returns early and the
// recognition finishes in the background.
func (t *TesseractEngine) Recognize(ctx context.Context, image []byte, language string) (*Result, error) {
	const op = "TesseractEngine.Recognize"
	startTime := time.Now()

	if err := checkImage(op, image, 0); err != nil {
		return nil, err
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		text, err := t.recognize(image, language)
		done <- outcome{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, WrapOCRError(op, ctx.Err(), "waiting for Tesseract")
	case out := <-done:
		if out.err != nil {
			return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Tesseract error: %v", out.err))
		}
		processedAt := time.Now()
		return &Result{
			Text:               out.text,
			ProcessedAt:        processedAt,
			ProcessingDuration: processedAt.Sub(startTime),
		}, nil
	}
}

func (t *TesseractEngine) recognize(image []byte, language string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return "", err
		}
	}
	if err := client.SetLanguage(language); err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return client.Text()
}

// Close is a no-op; clients are created per call.
func (t *TesseractEngine) Close() error {
	return nil
}
