package ocr

import "strings"

// LanguageJapanese is the Tesseract code for horizontal Japanese text.
const LanguageJapanese = "jpn"

var bcp47Hints = map[string]string{
	"jpn":      "ja",
	"jpn_vert": "ja",
	"eng":      "en",
	"chi_sim":  "zh",
	"chi_tra":  "zh-Hant",
	"kor":      "ko",
}

// LanguageHint translates a Tesseract language code (or a "+" joined list of them)
// into the BCP-47 hints Google APIs expect. Unknown codes pass through unchanged.
func LanguageHint(language string) []string {
	var hints []string
	seen := make(map[string]bool)
	for _, code := range strings.Split(language, "+") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		hint, ok := bcp47Hints[code]
		if !ok {
			hint = code
		}
		if !seen[hint] {
			seen[hint] = true
			hints = append(hints, hint)
		}
	}
	return hints
}
