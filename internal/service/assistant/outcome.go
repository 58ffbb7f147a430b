package assistant

import "errors"

// ErrUnavailable indicates the hosted model or speech API is not
// configured. Callers still receive a fail-soft Outcome.
var ErrUnavailable = errors.New("remote assistant unavailable")

// FallbackApology is returned as solution text when generation fails.
const FallbackApology = "Sorry, I could not work out a solution right now. Please try again in a moment."

// Outcome is the tagged result of a remote call. A Fallback outcome still
// carries usable text (the apology, an empty transcript, or the original
// untranslated input), so callers can either surface it or suppress it —
// a fallback is no longer indistinguishable from a real answer.
type Outcome struct {
	Text     string
	Fallback bool
	Err      error
}

// OK reports whether the call produced a genuine remote result.
func (o Outcome) OK() bool {
	return !o.Fallback
}

func fallback(text string, err error) Outcome {
	return Outcome{Text: text, Fallback: true, Err: err}
}
