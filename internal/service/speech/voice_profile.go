package speech

import (
	"strings"

	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
)

// DefaultVoice is used when no language-specific voice exists.
const DefaultVoice = "en_female_neutral_std"

var voicesByLanguage = map[locale.Language]string{
	locale.English: "en_in_female_asha_std",
	locale.Tamil:   "ta_in_female_kavitha_std",
	locale.Hindi:   "hi_in_female_priya_std",
}

// VoiceFor picks a synthesis voice matching the language, falling back to
// the default voice when no match is available.
func VoiceFor(language string) string {
	lang, ok := locale.ParseLanguage(language)
	if !ok {
		return DefaultVoice
	}

	voice, ok := voicesByLanguage[lang]
	if !ok {
		return DefaultVoice
	}
	return voice
}

// RecognitionLocale maps a UI language to the locale tag the speech API
// expects for transcription.
func RecognitionLocale(language string) string {
	lang, ok := locale.ParseLanguage(language)
	if !ok {
		return "en-IN"
	}

	switch lang {
	case locale.Tamil:
		return "ta-IN"
	case locale.Hindi:
		return "hi-IN"
	default:
		return "en-IN"
	}
}

// NormalizeVoiceAlias trims and lowercases a voice identifier supplied by
// configuration or the client.
func NormalizeVoiceAlias(voice string) string {
	return strings.ToLower(strings.TrimSpace(voice))
}
