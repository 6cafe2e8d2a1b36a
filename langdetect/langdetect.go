// Package langdetect identifies the language of recognized text.
package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Languages whisper handles well. A bounded set keeps lingua's model
// footprint small.
var candidates = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Japanese,
	lingua.Korean,
	lingua.Chinese,
	lingua.Arabic,
	lingua.Hindi,
	lingua.Turkish,
}

var (
	once     sync.Once
	detector lingua.LanguageDetector
)

// Detect returns the ISO 639-1 code ("en") and English display name
// ("English") for text. Both are empty when detection is inconclusive.
func Detect(text string) (code, name string) {
	if strings.TrimSpace(text) == "" {
		return "", ""
	}
	once.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidates...).
			Build()
	})
	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return "", ""
	}
	code = strings.ToLower(lang.IsoCode639_1().String())
	return code, Name(code)
}

// Name returns the English display name for an ISO 639-1 code, or the code
// itself when it has none.
func Name(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if n := display.English.Languages().Name(tag); n != "" {
		return n
	}
	return code
}
