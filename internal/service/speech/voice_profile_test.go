package speech_test

import (
	"testing"

	"github.com/sumoniya0512-oss/mobifix/internal/service/speech"
)

func TestVoiceFor(t *testing.T) {
	cases := []struct {
		language string
		want     string
	}{
		{"en", "en_in_female_asha_std"},
		{"ta", "ta_in_female_kavitha_std"},
		{"hi", "hi_in_female_priya_std"},
		{"EN", "en_in_female_asha_std"},
		{"fr", speech.DefaultVoice},
		{"", speech.DefaultVoice},
	}

	for _, tc := range cases {
		if got := speech.VoiceFor(tc.language); got != tc.want {
			t.Errorf("VoiceFor(%q) = %q, want %q", tc.language, got, tc.want)
		}
	}
}

func TestRecognitionLocale(t *testing.T) {
	cases := []struct {
		language string
		want     string
	}{
		{"en", "en-IN"},
		{"ta", "ta-IN"},
		{"hi", "hi-IN"},
		{"unknown", "en-IN"},
	}

	for _, tc := range cases {
		if got := speech.RecognitionLocale(tc.language); got != tc.want {
			t.Errorf("RecognitionLocale(%q) = %q, want %q", tc.language, got, tc.want)
		}
	}
}

func TestNormalizeVoiceAlias(t *testing.T) {
	if got := speech.NormalizeVoiceAlias("  EN_Female_Neutral_STD "); got != "en_female_neutral_std" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
