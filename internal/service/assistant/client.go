package assistant

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sumoniya0512-oss/mobifix/internal/config"
	"github.com/sumoniya0512-oss/mobifix/internal/model/chat"
	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
	speechmodel "github.com/sumoniya0512-oss/mobifix/internal/model/speech"
)

// Transcriber is the speech-to-text half of the remote boundary.
type Transcriber interface {
	Transcribe(ctx context.Context, req *speechmodel.TranscriptionRequest) (*speechmodel.TranscriptionResponse, error)
}

// SolutionRequest carries everything the solution generator needs. The
// session configuration is read at submission time by the caller.
type SolutionRequest struct {
	Problem     string
	Platform    chat.Platform
	DeviceModel string
	Language    locale.Language
	Image       *chat.ImageAttachment
}

// Service is the remote assistant client: solution generation and
// translation ride on the hosted chat model, transcription on the hosted
// speech API. Every operation is stateless, idempotent and fail-soft.
type Service struct {
	chatModel   model.ChatModel
	transcriber Transcriber
	cfg         config.AssistantConfig
	solution    compose.Runnable[map[string]any, *schema.Message]
	translator  compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the remote assistant client. A nil chatModel or
// transcriber leaves the corresponding operations degraded to their
// fallback values rather than failing construction.
func NewService(ctx context.Context, chatModel model.ChatModel, transcriber Transcriber, cfg config.AssistantConfig) (*Service, error) {
	svc := &Service{
		chatModel:   chatModel,
		transcriber: transcriber,
		cfg:         cfg,
	}

	if chatModel == nil {
		return svc, nil
	}

	solution, err := compileChain(ctx, chatModel)
	if err != nil {
		return nil, fmt.Errorf("failed to compile solution chain: %w", err)
	}
	svc.solution = solution

	translator, err := compileChain(ctx, chatModel)
	if err != nil {
		return nil, fmt.Errorf("failed to compile translator chain: %w", err)
	}
	svc.translator = translator

	return svc, nil
}

func compileChain(ctx context.Context, chatModel model.ChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("query", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	return chain.Compile(ctx)
}

// StreamingEnabled indicates whether SSE streaming output is configured.
func (s *Service) StreamingEnabled() bool {
	return s.solution != nil && s.cfg.StreamResponse
}

// GenerateSolution asks the model for a step-by-step fix. It never returns
// a hard error: failures yield a Fallback outcome carrying the apology
// text, and the error is logged for operators only.
func (s *Service) GenerateSolution(ctx context.Context, req SolutionRequest) Outcome {
	if s.solution == nil {
		return fallback(FallbackApology, ErrUnavailable)
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	response, err := s.solution.Invoke(ctx, s.solutionInput(req))
	if err != nil {
		log.Printf("[assistant] solution generation failed: %v", err)
		return fallback(FallbackApology, err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		log.Printf("[assistant] solution generation returned empty response")
		return fallback(FallbackApology, fmt.Errorf("empty model response"))
	}

	return Outcome{Text: response.Content}
}

// StreamSolution streams the generated solution chunk by chunk. Unlike
// GenerateSolution this surfaces errors: the SSE handler owns the
// fallback decision for a broken stream.
func (s *Service) StreamSolution(ctx context.Context, req SolutionRequest) (*schema.StreamReader[*schema.Message], error) {
	if s.solution == nil {
		return nil, ErrUnavailable
	}
	if !s.cfg.StreamResponse {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.solution.Stream(ctx, s.solutionInput(req))
	if err != nil {
		return nil, fmt.Errorf("failed to stream solution: %w", err)
	}

	return stream, nil
}

func (s *Service) solutionInput(req SolutionRequest) map[string]any {
	return map[string]any{
		"system": BuildSystemPrompt(req.Platform, req.DeviceModel, req.Language),
		"query":  []*schema.Message{problemMessage(req)},
	}
}

// problemMessage builds the user turn, attaching the photo as an inline
// data URL when present.
func problemMessage(req SolutionRequest) *schema.Message {
	if req.Image == nil || len(req.Image.Data) == 0 {
		return schema.UserMessage(req.Problem)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		req.Image.MIMEType,
		base64.StdEncoding.EncodeToString(req.Image.Data),
	)

	parts := []schema.ChatMessagePart{
		{
			Type:     schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{URL: dataURL, Detail: schema.ImageURLDetailAuto},
		},
	}
	if strings.TrimSpace(req.Problem) != "" {
		parts = append(parts, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeText,
			Text: req.Problem,
		})
	}

	return &schema.Message{Role: schema.User, MultiContent: parts}
}

// TranslateText translates a message into the target language. On any
// failure the original text comes back unchanged as a Fallback outcome,
// so the caller's content is never clobbered.
func (s *Service) TranslateText(ctx context.Context, text string, target locale.Language) Outcome {
	if s.translator == nil {
		return fallback(text, ErrUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return fallback(text, fmt.Errorf("nothing to translate"))
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	input := map[string]any{
		"system": buildTranslateSystemPrompt(target),
		"query":  []*schema.Message{schema.UserMessage(text)},
	}

	response, err := s.translator.Invoke(ctx, input)
	if err != nil {
		log.Printf("[assistant] translation failed: %v", err)
		return fallback(text, err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return fallback(text, fmt.Errorf("empty translation response"))
	}

	return Outcome{Text: response.Content}
}

// TranscribeAudio turns one recorded clip into text. Failures yield an
// empty-text Fallback outcome.
func (s *Service) TranscribeAudio(ctx context.Context, req *speechmodel.TranscriptionRequest) Outcome {
	if s.transcriber == nil {
		return fallback("", ErrUnavailable)
	}

	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	resp, err := s.transcriber.Transcribe(ctx, req)
	if err != nil {
		log.Printf("[assistant] transcription failed: %v", err)
		return fallback("", err)
	}

	return Outcome{Text: resp.Text}
}

// withDeadline bounds every remote call so a hung dependency cannot pin
// the busy state forever.
func (s *Service) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}
