package ocr

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64Image(t *testing.T) {
	want := []byte{0xfb, 0xff, 0xfe, 'o', 'k'}

	for name, encoded := range map[string]string{
		"standard":     base64.StdEncoding.EncodeToString(want),
		"unpadded":     "+//+b2s",
		"url safe":     "-__-b2s=",
		"url unpadded": base64.RawURLEncoding.EncodeToString(want),
		"wrapped":      "+//+\nb2s=\r\n",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeBase64Image(encoded)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := DecodeBase64Image("***")
	assert.ErrorContains(t, err, "image is not valid base64")
}
