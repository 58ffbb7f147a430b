package assistant

import (
	"fmt"
	"strings"

	"github.com/sumoniya0512-oss/mobifix/internal/model/chat"
	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
)

var languageNames = map[locale.Language]string{
	locale.English: "English",
	locale.Tamil:   "Tamil",
	locale.Hindi:   "Hindi",
}

// LanguageName returns the display name the model is instructed with.
func LanguageName(lang locale.Language) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return "English"
}

var platformNames = map[chat.Platform]string{
	chat.PlatformAndroid: "Android",
	chat.PlatformIOS:     "iOS",
}

// BuildSystemPrompt assembles the troubleshooting system prompt from the
// session configuration in effect at submission time.
func BuildSystemPrompt(platform chat.Platform, deviceModel string, lang locale.Language) string {
	platformName, ok := platformNames[platform]
	if !ok {
		platformName = "Android"
	}

	device := strings.TrimSpace(deviceModel)
	if device == "" {
		device = "an unspecified " + platformName + " device"
	}

	return fmt.Sprintf(`You are MobiFix, a friendly mobile-device troubleshooting assistant.

Device context:
- Platform: %s
- Model: %s

Rules:
- Diagnose the user's problem and answer with clear, numbered, step-by-step instructions.
- Use simple language a non-technical phone owner can follow.
- Format the answer as markdown. Keep each step short.
- If a photo of the problem is attached, use it to refine the diagnosis.
- Warn the user before any step that could erase data.
- Respond entirely in %s.`,
		platformName,
		device,
		LanguageName(lang),
	)
}

// buildTranslateSystemPrompt instructs the model to translate while keeping
// markdown structure intact.
func buildTranslateSystemPrompt(target locale.Language) string {
	return fmt.Sprintf(`You are a translator. Translate the user's message into %s.
Preserve markdown formatting, step numbering and technical terms such as app or setting names.
Return only the translated text with no commentary.`, LanguageName(target))
}
