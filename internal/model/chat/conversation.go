package chat

import (
	"strings"
	"time"

	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
)

// Platform identifies the user's device operating system.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

// ParsePlatform normalizes a platform name supplied by the client.
func ParsePlatform(raw string) (Platform, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "android":
		return PlatformAndroid, true
	case "ios", "iphone":
		return PlatformIOS, true
	default:
		return "", false
	}
}

// Conversation captures a transient troubleshooting session. Settings are
// mutable at any time and are read at request-submission time, not
// snapshotted per message.
type Conversation struct {
	ID          string          `json:"id"`
	Platform    Platform        `json:"platform"`
	DeviceModel string          `json:"deviceModel"`
	Language    locale.Language `json:"language"`
	CreatedAt   time.Time       `json:"createdAt"`
}
