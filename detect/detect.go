// Package detect resolves the language of incoming chat text. Short or
// ambiguous text goes to the completion backend with a detection prompt;
// longer text is classified locally first, which saves a backend round trip
// for the common case. Either way the result is a sanitized 2-3 letter
// lowercase ISO 639-1 code, or "und" when the text is not recognizable.
package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/onnwee/lingua-bot/telemetry"
)

// Undetermined is the sentinel code for unrecognizable text.
const Undetermined = "und"

const (
	// minLocalLength is the shortest text the local detector is trusted on.
	minLocalLength = 16
	// minLocalConfidence gates the local fast path; anything below goes to
	// the backend.
	minLocalConfidence = 0.90
)

// Completer is the slice of the completion backend the detector needs.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) string
}

// Detector classifies text into a language code.
type Detector struct {
	completer Completer
	model     string
	local     lingua.LanguageDetector
}

// localLanguages covers the bot's configured language set; lingua only
// weighs candidates it was built with.
var localLanguages = []lingua.Language{
	lingua.English, lingua.Spanish, lingua.Portuguese, lingua.French,
	lingua.German, lingua.Italian, lingua.Dutch, lingua.Polish,
	lingua.Russian, lingua.Japanese, lingua.Korean, lingua.Chinese,
}

// New builds a Detector that uses completer with the given (cheap) model for
// the backend path.
func New(completer Completer, model string) *Detector {
	local := lingua.NewLanguageDetectorBuilder().
		FromLanguages(localLanguages...).
		Build()
	return &Detector{completer: completer, model: model, local: local}
}

// Detect returns the language code for text. An error means the backend was
// unavailable; Undetermined is a valid, non-error outcome.
func (d *Detector) Detect(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Undetermined, nil
	}
	if code, ok := d.detectLocal(text); ok {
		telemetry.IncLocalDetection()
		return code, nil
	}
	reply := d.completer.Complete(ctx, d.model, DetectionPrompt(text))
	if reply == "" {
		return "", fmt.Errorf("detection backend returned empty reply")
	}
	return Sanitize(reply), nil
}

func (d *Detector) detectLocal(text string) (string, bool) {
	if d.local == nil || len(text) < minLocalLength {
		return "", false
	}
	lang, ok := d.local.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	if d.local.ComputeLanguageConfidence(text, lang) < minLocalConfidence {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// DetectionPrompt is the instruction sent to the backend for the detection
// call.
func DetectionPrompt(text string) string {
	return "Identify the language of the following text. Reply with only its ISO 639-1 code " +
		"(for example: en, es, pt). If the text is gibberish or the language cannot be determined, reply with exactly: und\n\n" + text
}

// Sanitize normalizes a backend detection reply to a 2-3 letter lowercase
// code, forcing Undetermined for anything malformed.
func Sanitize(reply string) string {
	code := strings.ToLower(strings.TrimSpace(reply))
	code = strings.Trim(code, ".\"'`")
	if len(code) < 2 || len(code) > 3 {
		return Undetermined
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return Undetermined
		}
	}
	return code
}
