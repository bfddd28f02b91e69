package ocr

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
)

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeBase64Image decodes a base64 image payload. Whitespace is ignored and
// both the standard and URL-safe alphabets are accepted, padded or not.
func DecodeBase64Image(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)

	var firstErr error
	for _, enc := range base64Encodings {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("image is not valid base64: %w", firstErr)
}
