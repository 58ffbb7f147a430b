package locale

import "strings"

// Language identifies one of the supported UI languages.
type Language string

const (
	English Language = "en"
	Tamil   Language = "ta"
	Hindi   Language = "hi"
)

// ParseLanguage normalizes a language name or code supplied by the client.
func ParseLanguage(raw string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "en", "english", "en-in", "en-us":
		return English, true
	case "ta", "tamil", "ta-in":
		return Tamil, true
	case "hi", "hindi", "hi-in":
		return Hindi, true
	default:
		return "", false
	}
}

// Pack bundles the UI strings and canned example prompts for one language.
type Pack struct {
	Language       Language          `json:"language"`
	Name           string            `json:"name"`
	Strings        map[string]string `json:"strings"`
	ExamplePrompts []string          `json:"examplePrompts"`
}

// Seed provides the built-in language packs shipped with the assistant.
func Seed() []Pack {
	return []Pack{
		{
			Language: English,
			Name:     "English",
			Strings: map[string]string{
				"appTitle":       "MobiFix Assistant",
				"tagline":        "Describe your phone problem and get step-by-step help",
				"draftHint":      "Type your problem, attach a photo, or speak",
				"submit":         "Get solution",
				"listening":      "Listening...",
				"generating":     "Working on it...",
				"translate":      "Translate",
				"speak":          "Read aloud",
				"stopSpeaking":   "Stop",
				"edit":           "Edit",
				"feedbackAsk":    "Did this solve your problem?",
				"feedbackYes":    "Yes",
				"feedbackNo":     "No",
				"clearHistory":   "Clear history",
				"micDenied":      "Microphone access was denied. Please allow it in settings.",
				"platformLabel":  "Platform",
				"deviceLabel":    "Device model",
				"languageLabel":  "Language",
			},
			ExamplePrompts: []string{
				"My phone is hanging and apps take forever to open",
				"Battery drains from 100% to 20% in two hours",
				"Phone gets very hot while charging",
				"Cannot connect to Wi-Fi after the last update",
			},
		},
		{
			Language: Tamil,
			Name:     "தமிழ்",
			Strings: map[string]string{
				"appTitle":       "MobiFix உதவியாளர்",
				"tagline":        "உங்கள் போன் பிரச்சனையை விவரிக்கவும், படிப்படியான உதவி பெறவும்",
				"draftHint":      "பிரச்சனையை எழுதவும், புகைப்படம் இணைக்கவும் அல்லது பேசவும்",
				"submit":         "தீர்வு பெறுக",
				"listening":      "கேட்கிறது...",
				"generating":     "தயாராகிறது...",
				"translate":      "மொழிபெயர்",
				"speak":          "வாசிக்க",
				"stopSpeaking":   "நிறுத்து",
				"edit":           "திருத்து",
				"feedbackAsk":    "இது உங்கள் பிரச்சனையை தீர்த்ததா?",
				"feedbackYes":    "ஆம்",
				"feedbackNo":     "இல்லை",
				"clearHistory":   "வரலாற்றை அழி",
				"micDenied":      "மைக்ரோஃபோன் அனுமதி மறுக்கப்பட்டது. அமைப்புகளில் அனுமதிக்கவும்.",
				"platformLabel":  "இயங்குதளம்",
				"deviceLabel":    "சாதன மாடல்",
				"languageLabel":  "மொழி",
			},
			ExamplePrompts: []string{
				"என் போன் அடிக்கடி ஹேங் ஆகிறது",
				"பேட்டரி மிக வேகமாக தீர்ந்து விடுகிறது",
				"சார்ஜ் செய்யும் போது போன் சூடாகிறது",
				"வை-ஃபை இணைப்பு துண்டிக்கப்படுகிறது",
			},
		},
		{
			Language: Hindi,
			Name:     "हिन्दी",
			Strings: map[string]string{
				"appTitle":       "MobiFix सहायक",
				"tagline":        "अपने फ़ोन की समस्या बताएं और चरण-दर-चरण मदद पाएं",
				"draftHint":      "समस्या लिखें, फ़ोटो जोड़ें या बोलें",
				"submit":         "समाधान पाएं",
				"listening":      "सुन रहा है...",
				"generating":     "तैयार हो रहा है...",
				"translate":      "अनुवाद करें",
				"speak":          "पढ़कर सुनाएं",
				"stopSpeaking":   "रोकें",
				"edit":           "संपादित करें",
				"feedbackAsk":    "क्या इससे आपकी समस्या हल हुई?",
				"feedbackYes":    "हाँ",
				"feedbackNo":     "नहीं",
				"clearHistory":   "इतिहास साफ़ करें",
				"micDenied":      "माइक्रोफ़ोन की अनुमति नहीं मिली। कृपया सेटिंग्स में अनुमति दें।",
				"platformLabel":  "प्लेटफ़ॉर्म",
				"deviceLabel":    "डिवाइस मॉडल",
				"languageLabel":  "भाषा",
			},
			ExamplePrompts: []string{
				"मेरा फ़ोन बार-बार हैंग हो रहा है",
				"बैटरी बहुत जल्दी खत्म हो जाती है",
				"चार्जिंग के समय फ़ोन गरम हो जाता है",
				"अपडेट के बाद वाई-फ़ाई नहीं चल रहा",
			},
		},
	}
}
