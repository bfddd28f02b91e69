//go:build !tesseract

package ocr

// TesseractAvailable reports whether the Tesseract engine was compiled in.
//
// Build with -tags tesseract to enable it. This requires libtesseract and
// libleptonica headers plus the jpn traineddata, e.g. on Debian/Ubuntu:
//
//	apt-get install libtesseract-dev tesseract-ocr-jpn
const TesseractAvailable = false

// NewTesseractEngine always fails in builds without the tesseract tag.
func NewTesseractEngine(tessdataPrefix string) (Engine, error) {
	return nil, WrapOCRError("NewTesseractEngine", ErrEngineUnavailable, "rebuild with -tags tesseract")
}
