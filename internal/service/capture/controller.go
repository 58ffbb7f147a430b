package capture

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	speechmodel "github.com/sumoniya0512-oss/mobifix/internal/model/speech"
	"github.com/sumoniya0512-oss/mobifix/internal/service/assistant"
	"github.com/sumoniya0512-oss/mobifix/internal/service/conversation"
)

var (
	ErrAlreadyRecording = errors.New("a recording is already active for this conversation")
	ErrNotRecording     = errors.New("no active recording for this conversation")
	ErrClipTooLarge     = errors.New("recorded clip exceeds the size limit")
)

// maxClipBytes caps one buffered clip; matches the transcribe upload limit.
const maxClipBytes = 16 << 20

// Transcriber is the fail-soft speech-to-text boundary.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, req *speechmodel.TranscriptionRequest) assistant.Outcome
}

// DraftSink receives recognized text, space-joined into the draft.
type DraftSink interface {
	AppendTranscript(ctx context.Context, conversationID, transcript string) (string, error)
}

// BusyTracker marks the transcription as in flight while it runs.
type BusyTracker interface {
	BeginOp(conversationID string, kind conversation.OpKind) string
	EndOp(token string)
}

type recording struct {
	buffer    bytes.Buffer
	mimeType  string
	startedAt time.Time
}

// Controller manages the recording lifecycle per conversation: inactive or
// recording, one clip at a time. The microphone itself lives on the
// client; chunks arrive over the websocket intake and are buffered here
// until stop flushes the whole clip to the transcriber. There is no
// partial transcription.
type Controller struct {
	mu          sync.Mutex
	transcriber Transcriber
	drafts      DraftSink
	ops         BusyTracker
	active      map[string]*recording
}

// NewController wires the capture pipeline.
func NewController(transcriber Transcriber, drafts DraftSink, ops BusyTracker) *Controller {
	return &Controller{
		transcriber: transcriber,
		drafts:      drafts,
		ops:         ops,
		active:      make(map[string]*recording),
	}
}

// Start transitions inactive -> recording. A second start without a stop
// is rejected so a stuck client cannot leak buffers.
func (c *Controller) Start(conversationID, mimeType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[conversationID]; ok {
		return ErrAlreadyRecording
	}

	if mimeType == "" {
		mimeType = "audio/webm"
	}

	c.active[conversationID] = &recording{
		mimeType:  mimeType,
		startedAt: time.Now().UTC(),
	}
	return nil
}

// Push appends one audio chunk to the active recording.
func (c *Controller) Push(conversationID string, chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.active[conversationID]
	if !ok {
		return ErrNotRecording
	}
	if rec.buffer.Len()+len(chunk) > maxClipBytes {
		return ErrClipTooLarge
	}

	rec.buffer.Write(chunk)
	return nil
}

// Recording reports whether a recording is active for the conversation.
func (c *Controller) Recording(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[conversationID]
	return ok
}

// StopResult carries the recognized text and the draft it was merged into.
type StopResult struct {
	Transcript string `json:"transcript"`
	Draft      string `json:"draft"`
}

// Stop transitions recording -> inactive, flushes the buffered clip into
// a single transcription request and appends the result to the draft. A
// transcription fallback (empty text) leaves the draft untouched.
func (c *Controller) Stop(ctx context.Context, conversationID, language string) (StopResult, error) {
	c.mu.Lock()
	rec, ok := c.active[conversationID]
	if ok {
		delete(c.active, conversationID)
	}
	c.mu.Unlock()

	if !ok {
		return StopResult{}, ErrNotRecording
	}

	clip := rec.buffer.Bytes()
	if len(clip) == 0 {
		return StopResult{}, nil
	}

	token := c.ops.BeginOp(conversationID, conversation.OpTranscription)
	outcome := c.transcriber.TranscribeAudio(ctx, &speechmodel.TranscriptionRequest{
		ConversationID: conversationID,
		Audio:          clip,
		MIMEType:       rec.mimeType,
		Language:       language,
	})
	c.ops.EndOp(token)

	if outcome.Text == "" {
		if outcome.Err != nil {
			log.Printf("[capture] transcription fell back for conversation=%s: %v", conversationID, outcome.Err)
		}
		return StopResult{}, nil
	}

	draft, err := c.drafts.AppendTranscript(ctx, conversationID, outcome.Text)
	if err != nil {
		return StopResult{}, err
	}

	return StopResult{Transcript: outcome.Text, Draft: draft}, nil
}

// Abort discards an active recording without transcription. Used when the
// client vanishes mid-recording so the state cannot stay stuck.
func (c *Controller) Abort(conversationID string) {
	c.mu.Lock()
	delete(c.active, conversationID)
	c.mu.Unlock()
}
