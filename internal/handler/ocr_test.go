package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"kakeibo/internal/ocr"
)

type stubEngine struct {
	mu        sync.Mutex
	text      string
	err       error
	panicWith any
	block     bool
	calls     int
	lastImage []byte
	lastLang  string
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Recognize(ctx context.Context, image []byte, language string) (*ocr.Result, error) {
	s.mu.Lock()
	s.calls++
	s.lastImage = image
	s.lastLang = language
	s.mu.Unlock()

	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &ocr.Result{Text: s.text}, nil
}

func (s *stubEngine) Close() error { return nil }

func newTestApp(engine ocr.Engine, opts ...Option) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New())
	app.All("/api/ocr", NewOCRHandler(engine, opts...).Handle)
	return app
}

func do(t *testing.T, app *fiber.App, method, body string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(method, "/api/ocr", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func imageBody(data []byte) string {
	return `{"image":"` + base64.StdEncoding.EncodeToString(data) + `"}`
}

var fakePNG = []byte("\x89PNG\r\n\x1a\nreceipt")

func TestOCRHandlerRejectsNonPost(t *testing.T) {
	engine := &stubEngine{text: "unused"}
	app := newTestApp(engine)

	for _, method := range []string{
		http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions,
	} {
		t.Run(method, func(t *testing.T) {
			for _, body := range []string{"", imageBody(fakePNG), "garbage"} {
				resp, raw := do(t, app, method, body)
				assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
				assert.Equal(t, MsgMethodNotAllowed, raw)
				assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMETextPlain))
			}
		})
	}

	t.Run(http.MethodHead, func(t *testing.T) {
		resp, _ := do(t, app, http.MethodHead, imageBody(fakePNG))
		assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
	})

	assert.Zero(t, engine.calls, "engine must not run for rejected methods")
}

func TestOCRHandlerMissingImage(t *testing.T) {
	engine := &stubEngine{text: "unused"}
	app := newTestApp(engine)

	bodies := map[string]string{
		"empty body":   "",
		"not json":     "image=abc",
		"empty object": `{}`,
		"null":         `{"image":null}`,
		"empty string": `{"image":""}`,
		"false":        `{"image":false}`,
		"zero":         `{"image":0}`,
		"other field":  `{"picture":"aGVsbG8="}`,
		"json array":   `["aGVsbG8="]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			resp, raw := do(t, app, http.MethodPost, body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, `{"error":"Image data is missing in the request body."}`, raw)
		})
	}

	assert.Zero(t, engine.calls)
}

func TestOCRHandlerSuccess(t *testing.T) {
	engine := &stubEngine{text: "こんにちは"}
	app := newTestApp(engine)

	resp, raw := do(t, app, http.MethodPost, imageBody(fakePNG))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"fullText":"こんにちは"}`, raw)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON))

	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, fakePNG, engine.lastImage)
	assert.Equal(t, ocr.LanguageJapanese, engine.lastLang)
}

func TestOCRHandlerEmptyText(t *testing.T) {
	app := newTestApp(&stubEngine{text: ""})

	resp, raw := do(t, app, http.MethodPost, imageBody(fakePNG))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	fullText := gjson.Get(raw, "fullText")
	assert.True(t, fullText.Exists(), "fullText must be present even when empty")
	assert.Equal(t, "", fullText.String())
}

func TestOCRHandlerEngineFailure(t *testing.T) {
	app := newTestApp(&stubEngine{err: errors.New("engine timeout")})

	resp, raw := do(t, app, http.MethodPost, imageBody(fakePNG))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"OCR processing failed on the server.","details":"engine timeout"}`, raw)
}

func TestOCRHandlerIdempotent(t *testing.T) {
	app := newTestApp(&stubEngine{text: "家計簿\n食費 980円"})
	body := imageBody(fakePNG)

	firstResp, first := do(t, app, http.MethodPost, body)
	secondResp, second := do(t, app, http.MethodPost, body)

	assert.Equal(t, firstResp.StatusCode, secondResp.StatusCode)
	assert.Equal(t, first, second)
}

func TestOCRHandlerMalformedImage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		details string
	}{
		{"not base64", `{"image":"%%% not base64 %%%"}`, "image is not valid base64"},
		{"number", `{"image":42}`, ErrImageNotString.Error()},
		{"true", `{"image":true}`, ErrImageNotString.Error()},
		{"object", `{"image":{"data":"aGVsbG8="}}`, ErrImageNotString.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{text: "unused"}
			app := newTestApp(engine)

			resp, raw := do(t, app, http.MethodPost, tt.body)
			assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

			body := gjson.Parse(raw)
			assert.Equal(t, MsgOCRFailed, body.Get("error").String())
			assert.Contains(t, body.Get("details").String(), tt.details)
			assert.Zero(t, engine.calls)
		})
	}
}

func TestOCRHandlerEnginePanic(t *testing.T) {
	app := newTestApp(&stubEngine{panicWith: "tesseract: segfault in leptonica"})

	resp, raw := do(t, app, http.MethodPost, imageBody(fakePNG))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := gjson.Parse(raw)
	assert.Equal(t, MsgOCRFailed, body.Get("error").String())
	assert.Contains(t, body.Get("details").String(), "segfault in leptonica")
}

func TestOCRHandlerTimeout(t *testing.T) {
	app := newTestApp(&stubEngine{block: true}, WithTimeout(20*time.Millisecond))

	resp, raw := do(t, app, http.MethodPost, imageBody(fakePNG))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, context.DeadlineExceeded.Error(), gjson.Get(raw, "details").String())
}

func TestImageField(t *testing.T) {
	_, ok := imageField([]byte(`{"image":"aGVsbG8="}`))
	assert.True(t, ok)

	_, ok = imageField([]byte(`{"image":-1}`))
	assert.True(t, ok)

	_, ok = imageField([]byte(`{"image":[]}`))
	assert.True(t, ok)

	_, ok = imageField(nil)
	assert.False(t, ok)
}

func TestDecodeImage(t *testing.T) {
	got, err := decodeImage(gjson.Parse(`"b2s="`))
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), got)

	_, err = decodeImage(gjson.Parse(`12`))
	assert.ErrorIs(t, err, ErrImageNotString)

	_, err = decodeImage(gjson.Parse(`"***"`))
	assert.Error(t, err)
}

func TestOCRHandlerLenientBase64(t *testing.T) {
	for _, payload := range []string{"+//+b2s", "-__-b2s="} {
		t.Run(payload, func(t *testing.T) {
			engine := &stubEngine{text: "ok"}
			app := newTestApp(engine)

			resp, _ := do(t, app, http.MethodPost, `{"image":"`+payload+`"}`)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, []byte{0xfb, 0xff, 0xfe, 'o', 'k'}, engine.lastImage)
		})
	}
}
