package speech

import "time"

// TranscriptionRequest asks the hosted speech API to turn one recorded
// clip into text. Audio is the raw clip; there is no partial/streaming
// transcription, the clip is sent whole after recording stops.
type TranscriptionRequest struct {
	ConversationID string `json:"conversationId"`
	Audio          []byte `json:"-"`
	MIMEType       string `json:"mimeType"`
	Language       string `json:"language"`
}

// TranscriptionResponse carries the recognized text.
type TranscriptionResponse struct {
	ConversationID string    `json:"conversationId"`
	Text           string    `json:"text"`
	Confidence     float64   `json:"confidence"`
	DurationMillis int64     `json:"durationMillis"`
	RequestID      string    `json:"requestId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SynthesisRequest asks the hosted speech API to voice a message.
type SynthesisRequest struct {
	ConversationID string  `json:"conversationId"`
	MessageID      string  `json:"messageId"`
	Text           string  `json:"text"`
	Voice          string  `json:"voice"`
	Language       string  `json:"language"`
	Speed          float32 `json:"speed,omitempty"`
	Format         string  `json:"format,omitempty"`
}

// SynthesisResponse carries the synthesized audio.
type SynthesisResponse struct {
	ConversationID string    `json:"conversationId"`
	MessageID      string    `json:"messageId"`
	AudioData      []byte    `json:"-"`
	Format         string    `json:"format"`
	DurationMillis int64     `json:"durationMillis"`
	RequestID      string    `json:"requestId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
