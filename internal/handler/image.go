package handler

import (
	"errors"

	"github.com/tidwall/gjson"

	"kakeibo/internal/ocr"
)

// ErrImageNotString is returned when "image" is present and truthy but not a JSON string.
var ErrImageNotString = errors.New("image must be a base64-encoded string")

// imageField looks up "image" in a JSON body. ok is false when the body is
// not JSON or the field is absent or falsy (null, false, 0, "").
func imageField(body []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}

	image := gjson.GetBytes(body, "image")
	switch image.Type {
	case gjson.Null, gjson.False:
		return image, false
	case gjson.Number:
		return image, image.Num != 0
	case gjson.String:
		return image, image.Str != ""
	default:
		return image, true
	}
}

// decodeImage decodes the "image" field with the same rules as the CLI.
func decodeImage(image gjson.Result) ([]byte, error) {
	if image.Type != gjson.String {
		return nil, ErrImageNotString
	}
	return ocr.DecodeBase64Image(image.Str)
}
