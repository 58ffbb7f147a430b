package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sumoniya0512-oss/mobifix/internal/config"
	speechmodel "github.com/sumoniya0512-oss/mobifix/internal/model/speech"
)

// Service talks to the hosted speech API: one-shot transcription of a
// recorded clip and synthesis of a message for playback.
type Service struct {
	cfg    config.SpeechConfig
	client *resty.Client
}

// NewService creates a speech service instance.
func NewService(cfg config.SpeechConfig) *Service {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &Service{cfg: cfg, client: client}
}

// Enabled reports whether the hosted speech API is configured.
func (s *Service) Enabled() bool {
	return s.cfg.Enabled
}

type transcribePayload struct {
	Text           string  `json:"text"`
	Confidence     float64 `json:"confidence"`
	DurationMillis int64   `json:"durationMillis"`
	RequestID      string  `json:"requestId"`
}

// Transcribe sends one whole clip for recognition. The clip is never
// streamed; recording has already stopped by the time this is called.
func (s *Service) Transcribe(ctx context.Context, req *speechmodel.TranscriptionRequest) (*speechmodel.TranscriptionResponse, error) {
	if !s.cfg.Enabled {
		return nil, fmt.Errorf("speech service is not configured")
	}
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("audio clip is empty")
	}

	// The request carries a UI language code; the API expects a locale tag.
	language := s.cfg.Language
	if req.Language != "" {
		language = RecognitionLocale(req.Language)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"audio":    base64.StdEncoding.EncodeToString(req.Audio),
			"mimeType": req.MIMEType,
			"language": language,
		}).
		Post("/v1/recognize")
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("transcription failed, status: %d", resp.StatusCode())
	}

	var payload transcribePayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse transcription response: %w", err)
	}

	return &speechmodel.TranscriptionResponse{
		ConversationID: req.ConversationID,
		Text:           payload.Text,
		Confidence:     payload.Confidence,
		DurationMillis: payload.DurationMillis,
		RequestID:      payload.RequestID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

type synthesizePayload struct {
	Audio          string `json:"audio"`
	Format         string `json:"format"`
	DurationMillis int64  `json:"durationMillis"`
	RequestID      string `json:"requestId"`
}

// Synthesize voices the supplied text with the requested voice.
func (s *Service) Synthesize(ctx context.Context, req *speechmodel.SynthesisRequest) (*speechmodel.SynthesisResponse, error) {
	if !s.cfg.Enabled {
		return nil, fmt.Errorf("speech service is not configured")
	}
	if req.Text == "" {
		return nil, fmt.Errorf("text is required")
	}

	voice := req.Voice
	if voice == "" {
		voice = NormalizeVoiceAlias(s.cfg.Voice)
	}
	if voice == "" {
		voice = VoiceFor(req.Language)
	}

	format := req.Format
	if format == "" {
		format = "mp3"
	}

	speed := req.Speed
	if speed <= 0 {
		speed = 1.0
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"text":     req.Text,
			"voice":    voice,
			"language": req.Language,
			"speed":    speed,
			"format":   format,
		}).
		Post("/v1/synthesize")
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("synthesis failed, status: %d", resp.StatusCode())
	}

	var payload synthesizePayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse synthesis response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode synthesized audio: %w", err)
	}

	respFormat := payload.Format
	if respFormat == "" {
		respFormat = format
	}

	return &speechmodel.SynthesisResponse{
		ConversationID: req.ConversationID,
		MessageID:      req.MessageID,
		AudioData:      audio,
		Format:         respFormat,
		DurationMillis: payload.DurationMillis,
		RequestID:      payload.RequestID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
