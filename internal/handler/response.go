// Package handler implements the OCR endpoint: a base64 image in, recognized Japanese text out.
package handler

// Fixed response messages. Callers match on these strings.
const (
	MsgMethodNotAllowed = "Method Not Allowed. Only POST is accepted for OCR processing."
	MsgImageMissing     = "Image data is missing in the request body."
	MsgOCRFailed        = "OCR processing failed on the server."
)

// OCRResponse is the success body.
type OCRResponse struct {
	FullText string `json:"fullText"`
}

// ErrorResponse is the body of every JSON failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
