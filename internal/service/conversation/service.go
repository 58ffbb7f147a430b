package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/sumoniya0512-oss/mobifix/internal/model/chat"
	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
	"github.com/sumoniya0512-oss/mobifix/internal/service/assistant"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrEmptySubmission      = errors.New("draft text or image is required")
	ErrEmptyEdit            = errors.New("edited content must not be empty")
	ErrNotUserMessage       = errors.New("only user messages can be edited")
	ErrInvalidFeedback      = errors.New("feedback choice must be yes or no")

	// ErrSuperseded marks a remote result that arrived after the history
	// was cleared; the result is discarded instead of resurrecting a turn.
	ErrSuperseded = errors.New("conversation changed while request was in flight")
)

// Generator is the slice of the remote assistant client the state machine
// drives for solution generation and translation.
type Generator interface {
	GenerateSolution(ctx context.Context, req assistant.SolutionRequest) assistant.Outcome
	TranslateText(ctx context.Context, text string, target locale.Language) assistant.Outcome
}

type draft struct {
	Text  string
	Image *chat.ImageAttachment
}

type state struct {
	conversation chat.Conversation
	messages     []chat.Message
	feedback     map[string]chat.FeedbackChoice
	draft        draft
	epoch        uint64
}

// Service owns the ordered message log, in-flight request tracking, the
// edit-and-regenerate flow and per-message feedback/translation state.
// Everything lives in process memory; clearing history is irreversible.
type Service struct {
	mu        sync.RWMutex
	generator Generator
	states    map[string]*state
	pending   map[string]PendingOp
}

// NewService bootstraps the in-memory conversation state machine.
func NewService(generator Generator) *Service {
	return &Service{
		generator: generator,
		states:    make(map[string]*state),
		pending:   make(map[string]PendingOp),
	}
}

// CreateParams carries the session configuration for a new conversation.
type CreateParams struct {
	Platform    chat.Platform
	DeviceModel string
	Language    locale.Language
}

func (p CreateParams) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Platform, validation.Required, validation.In(chat.PlatformAndroid, chat.PlatformIOS)),
		validation.Field(&p.Language, validation.Required, validation.In(locale.English, locale.Tamil, locale.Hindi)),
		validation.Field(&p.DeviceModel, validation.Length(0, 120)),
	)
}

// CreateConversation provisions an empty conversation with the supplied
// device settings.
func (s *Service) CreateConversation(_ context.Context, params CreateParams) (chat.Conversation, error) {
	if err := params.validate(); err != nil {
		return chat.Conversation{}, err
	}

	conversation := chat.Conversation{
		ID:          uuid.NewString(),
		Platform:    params.Platform,
		DeviceModel: strings.TrimSpace(params.DeviceModel),
		Language:    params.Language,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.states[conversation.ID] = &state{
		conversation: conversation,
		messages:     make([]chat.Message, 0, 16),
		feedback:     make(map[string]chat.FeedbackChoice),
	}
	s.mu.Unlock()

	return conversation, nil
}

// SettingsParams updates the mutable session configuration. Nil fields are
// left untouched. Settings are read at request-submission time, never
// snapshotted per message.
type SettingsParams struct {
	Platform    *chat.Platform
	DeviceModel *string
	Language    *locale.Language
}

// UpdateSettings applies a partial settings change.
func (s *Service) UpdateSettings(_ context.Context, conversationID string, params SettingsParams) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[conversationID]
	if !ok {
		return chat.Conversation{}, ErrConversationNotFound
	}

	if params.Platform != nil {
		if _, ok := chat.ParsePlatform(string(*params.Platform)); !ok {
			return chat.Conversation{}, validation.NewError("validation_platform", "platform must be android or ios")
		}
		st.conversation.Platform = *params.Platform
	}
	if params.DeviceModel != nil {
		st.conversation.DeviceModel = strings.TrimSpace(*params.DeviceModel)
	}
	if params.Language != nil {
		if _, ok := locale.ParseLanguage(string(*params.Language)); !ok {
			return chat.Conversation{}, validation.NewError("validation_language", "language must be en, ta or hi")
		}
		st.conversation.Language = *params.Language
	}

	return st.conversation, nil
}

// GetConversation retrieves a conversation by identifier.
func (s *Service) GetConversation(_ context.Context, conversationID string) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[conversationID]
	if !ok {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return st.conversation, nil
}

// Transcript returns a copy of the ordered message log.
func (s *Service) Transcript(_ context.Context, conversationID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	copied := make([]chat.Message, len(st.messages))
	copy(copied, st.messages)
	return copied, nil
}

// GetMessage looks up a single message.
func (s *Service) GetMessage(_ context.Context, conversationID, messageID string) (chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[conversationID]
	if !ok {
		return chat.Message{}, ErrConversationNotFound
	}
	if idx := indexOf(st.messages, messageID); idx >= 0 {
		return st.messages[idx], nil
	}
	return chat.Message{}, ErrMessageNotFound
}

// TurnBegin is the synchronous half of a submission: the appended user
// message plus the settings snapshot the generation call must use.
type TurnBegin struct {
	User         chat.Message
	Conversation chat.Conversation
	Epoch        uint64
}

// BeginTurn validates and appends the user message, consuming the stored
// draft when no explicit text or image is supplied. Submitting with an
// empty draft and no image is rejected without touching the log.
func (s *Service) BeginTurn(_ context.Context, conversationID, text string, image *chat.ImageAttachment) (TurnBegin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[conversationID]
	if !ok {
		return TurnBegin{}, ErrConversationNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		text = strings.TrimSpace(st.draft.Text)
		image = st.draft.Image
	}
	if text == "" && image == nil {
		return TurnBegin{}, ErrEmptySubmission
	}

	message := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           chat.RoleUser,
		Content:        text,
		Image:          image,
		CreatedAt:      time.Now().UTC(),
	}

	st.messages = append(st.messages, message)
	st.draft = draft{}

	return TurnBegin{User: message, Conversation: st.conversation, Epoch: st.epoch}, nil
}

// CompleteTurn appends the assistant answer for a previously begun turn,
// linked to the user message it answers. A result arriving after the
// history was cleared is discarded.
func (s *Service) CompleteTurn(_ context.Context, conversationID, userMessageID string, epoch uint64, content string, failed bool) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[conversationID]
	if !ok {
		return chat.Message{}, ErrConversationNotFound
	}
	if st.epoch != epoch {
		return chat.Message{}, ErrSuperseded
	}

	message := chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           chat.RoleAssistant,
		Content:        content,
		AnswersID:      userMessageID,
		Failed:         failed,
		CreatedAt:      time.Now().UTC(),
	}

	st.messages = append(st.messages, message)
	return message, nil
}

// SubmitResult reports both halves of a completed turn. Assistant is nil
// only when the result was superseded by a concurrent clear.
type SubmitResult struct {
	User      chat.Message  `json:"user"`
	Assistant *chat.Message `json:"assistant"`
	Fallback  bool          `json:"fallback"`
}

// Submit runs one full turn: append the user message, call the solution
// generator with the current session configuration, append the linked
// assistant answer. A fail-soft generation still appends a message, with
// the apology text and the Failed flag set.
func (s *Service) Submit(ctx context.Context, conversationID, text string, image *chat.ImageAttachment) (SubmitResult, error) {
	begin, err := s.BeginTurn(ctx, conversationID, text, image)
	if err != nil {
		return SubmitResult{}, err
	}

	outcome := s.generate(ctx, conversationID, begin.Conversation, begin.User.Content, begin.User.Image)

	answer, err := s.CompleteTurn(ctx, conversationID, begin.User.ID, begin.Epoch, outcome.Text, outcome.Fallback)
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			log.Printf("[conversation] discarding stale solution for conversation=%s", conversationID)
			return SubmitResult{User: begin.User, Fallback: outcome.Fallback}, nil
		}
		return SubmitResult{}, err
	}

	return SubmitResult{User: begin.User, Assistant: &answer, Fallback: outcome.Fallback}, nil
}

func (s *Service) generate(ctx context.Context, conversationID string, conv chat.Conversation, problem string, image *chat.ImageAttachment) assistant.Outcome {
	token := s.BeginOp(conversationID, OpSolution)
	defer s.EndOp(token)

	return s.generator.GenerateSolution(ctx, assistant.SolutionRequest{
		Problem:     problem,
		Platform:    conv.Platform,
		DeviceModel: conv.DeviceModel,
		Language:    conv.Language,
		Image:       image,
	})
}

// EditResult reports an in-place edit and, for the live turn, the
// regenerated answer.
type EditResult struct {
	Message     chat.Message  `json:"message"`
	Regenerated bool          `json:"regenerated"`
	Assistant   *chat.Message `json:"assistant"`
	Fallback    bool          `json:"fallback"`
}

// Edit replaces a user message's content in place (id, role, timestamp
// unchanged). Only the most recent user message is "live": editing it
// drops its linked answer and regenerates with the new content and the
// originally attached image. Editing an older turn changes text only.
func (s *Service) Edit(ctx context.Context, conversationID, messageID, newContent string) (EditResult, error) {
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		return EditResult{}, ErrEmptyEdit
	}

	s.mu.Lock()
	st, ok := s.states[conversationID]
	if !ok {
		s.mu.Unlock()
		return EditResult{}, ErrConversationNotFound
	}

	idx := indexOf(st.messages, messageID)
	if idx < 0 {
		s.mu.Unlock()
		return EditResult{}, ErrMessageNotFound
	}
	if st.messages[idx].Role != chat.RoleUser {
		s.mu.Unlock()
		return EditResult{}, ErrNotUserMessage
	}

	st.messages[idx].Content = newContent
	edited := st.messages[idx]

	if !isLatestUserMessage(st.messages, messageID) {
		s.mu.Unlock()
		return EditResult{Message: edited}, nil
	}

	// Live turn: drop the answer linked to this message before resubmitting.
	if answerIdx := indexOfAnswer(st.messages, messageID); answerIdx >= 0 {
		delete(st.feedback, st.messages[answerIdx].ID)
		st.messages = append(st.messages[:answerIdx], st.messages[answerIdx+1:]...)
	}

	conv := st.conversation
	epoch := st.epoch
	s.mu.Unlock()

	outcome := s.generate(ctx, conversationID, conv, edited.Content, edited.Image)

	answer, err := s.CompleteTurn(ctx, conversationID, edited.ID, epoch, outcome.Text, outcome.Fallback)
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			log.Printf("[conversation] discarding stale regeneration for conversation=%s", conversationID)
			return EditResult{Message: edited, Regenerated: true, Fallback: outcome.Fallback}, nil
		}
		return EditResult{}, err
	}

	return EditResult{Message: edited, Regenerated: true, Assistant: &answer, Fallback: outcome.Fallback}, nil
}

// Translate rewrites a message's content in the target language. The id,
// role, timestamp and image are untouched. A translator fallback (which
// returns the original text) leaves the content unchanged.
func (s *Service) Translate(ctx context.Context, conversationID, messageID string, target locale.Language) (chat.Message, bool, error) {
	s.mu.RLock()
	st, ok := s.states[conversationID]
	if !ok {
		s.mu.RUnlock()
		return chat.Message{}, false, ErrConversationNotFound
	}
	idx := indexOf(st.messages, messageID)
	if idx < 0 {
		s.mu.RUnlock()
		return chat.Message{}, false, ErrMessageNotFound
	}
	original := st.messages[idx]
	epoch := st.epoch
	s.mu.RUnlock()

	token := s.BeginOp(conversationID, OpTranslation)
	outcome := s.generator.TranslateText(ctx, original.Content, target)
	s.EndOp(token)

	if !outcome.OK() {
		return original, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok = s.states[conversationID]
	if !ok {
		return chat.Message{}, false, ErrConversationNotFound
	}
	if st.epoch != epoch {
		return chat.Message{}, false, ErrSuperseded
	}
	idx = indexOf(st.messages, messageID)
	if idx < 0 {
		return chat.Message{}, false, ErrMessageNotFound
	}

	st.messages[idx].Content = outcome.Text
	return st.messages[idx], true, nil
}

// SetFeedback records a yes/no verdict for a message. Re-choosing
// overwrites; there is no network effect.
func (s *Service) SetFeedback(_ context.Context, conversationID, messageID string, choice chat.FeedbackChoice) error {
	if !chat.ValidFeedback(choice) {
		return ErrInvalidFeedback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	if indexOf(st.messages, messageID) < 0 {
		return ErrMessageNotFound
	}

	st.feedback[messageID] = choice
	return nil
}

// FeedbackMap returns a copy of the per-message feedback choices.
func (s *Service) FeedbackMap(_ context.Context, conversationID string) (map[string]chat.FeedbackChoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	copied := make(map[string]chat.FeedbackChoice, len(st.feedback))
	for id, choice := range st.feedback {
		copied[id] = choice
	}
	return copied, nil
}

// ClearHistory empties the log, feedback and draft unconditionally and
// bumps the epoch so in-flight results are discarded on arrival.
func (s *Service) ClearHistory(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[conversationID]
	if !ok {
		return ErrConversationNotFound
	}

	st.messages = make([]chat.Message, 0, 16)
	st.feedback = make(map[string]chat.FeedbackChoice)
	st.draft = draft{}
	st.epoch++
	return nil
}

// SetDraft replaces the transient draft text and pending image.
func (s *Service) SetDraft(_ context.Context, conversationID, text string, image *chat.ImageAttachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[conversationID]
	if !ok {
		return ErrConversationNotFound
	}

	st.draft = draft{Text: text, Image: image}
	return nil
}

// Draft returns the transient draft state.
func (s *Service) Draft(_ context.Context, conversationID string) (string, *chat.ImageAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[conversationID]
	if !ok {
		return "", nil, ErrConversationNotFound
	}
	return st.draft.Text, st.draft.Image, nil
}

// AppendTranscript merges a transcription result into the draft,
// space-joined only when the existing draft is non-empty. The updated
// draft text is returned.
func (s *Service) AppendTranscript(_ context.Context, conversationID, transcript string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[conversationID]
	if !ok {
		return "", ErrConversationNotFound
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return st.draft.Text, nil
	}

	if st.draft.Text == "" {
		st.draft.Text = transcript
	} else {
		st.draft.Text = st.draft.Text + " " + transcript
	}
	return st.draft.Text, nil
}

func indexOf(messages []chat.Message, messageID string) int {
	for i := range messages {
		if messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

func indexOfAnswer(messages []chat.Message, userMessageID string) int {
	for i := range messages {
		if messages[i].Role == chat.RoleAssistant && messages[i].AnswersID == userMessageID {
			return i
		}
	}
	return -1
}

func isLatestUserMessage(messages []chat.Message, messageID string) bool {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleUser {
			return messages[i].ID == messageID
		}
	}
	return false
}
