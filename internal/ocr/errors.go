package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrEmptyImage is returned when the image payload decodes to zero bytes.
	ErrEmptyImage = errors.New("image data is empty")

	// ErrImageTooLarge is returned when the image exceeds MaxImageSizeBytes
	// on an engine that enforces an inline size limit.
	ErrImageTooLarge = errors.New("image size exceeds the maximum limit (20MB)")

	// ErrOCRFailed is returned when the engine fails to process the image.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned when no Google Cloud credentials can be found.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrUnknownEngine is returned by NewEngine for an unsupported engine name.
	ErrUnknownEngine = errors.New("unknown OCR engine")

	// ErrEngineUnavailable is returned when an engine was not compiled into the binary.
	ErrEngineUnavailable = errors.New("OCR engine not available in this build")

	// ErrInvalidConfiguration is returned when engine settings are incomplete.
	ErrInvalidConfiguration = errors.New("invalid OCR engine configuration")
)

// OCRError wraps errors with additional context about the OCR processing failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Recognize", "NewVisionEngine").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// checkImage applies the size checks shared by every engine.
func checkImage(op string, image []byte, maxSize int) error {
	if len(image) == 0 {
		return WrapOCRError(op, ErrEmptyImage, "")
	}
	if maxSize > 0 && len(image) > maxSize {
		return WrapOCRError(op, ErrImageTooLarge, fmt.Sprintf("image size: %d bytes", len(image)))
	}
	return nil
}
