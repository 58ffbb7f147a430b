package chat

import "time"

// Role distinguishes the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ImageAttachment carries an optional photo of the problem. Data is
// base64-encoded on the wire by encoding/json.
type ImageAttachment struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// Message is one entry in the conversation log. Content is mutable
// (edits, translations); ID, Role and CreatedAt are fixed at creation.
// An assistant message records the user message it answers in AnswersID,
// so regeneration never depends on log positions staying adjacent.
type Message struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversationId"`
	Role           Role             `json:"role"`
	Content        string           `json:"content"`
	Image          *ImageAttachment `json:"image,omitempty"`
	AnswersID      string           `json:"answersId,omitempty"`
	Failed         bool             `json:"failed,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// FeedbackChoice records the user's verdict on an assistant message.
type FeedbackChoice string

const (
	FeedbackYes FeedbackChoice = "yes"
	FeedbackNo  FeedbackChoice = "no"
)

// ValidFeedback reports whether the choice is one of the accepted values.
func ValidFeedback(choice FeedbackChoice) bool {
	return choice == FeedbackYes || choice == FeedbackNo
}
