package playback

import (
	"context"
	"errors"
	"sync"

	speechmodel "github.com/sumoniya0512-oss/mobifix/internal/model/speech"
	"github.com/sumoniya0512-oss/mobifix/internal/service/speech"
)

var ErrNothingToSpeak = errors.New("message has no text to speak")

// Synthesizer is the text-to-speech boundary.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speechmodel.SynthesisRequest) (*speechmodel.SynthesisResponse, error)
}

// Utterance is one synthesized message ready for playback on the client.
type Utterance struct {
	MessageID      string `json:"messageId"`
	Audio          []byte `json:"-"`
	Format         string `json:"format"`
	Voice          string `json:"voice"`
	DurationMillis int64  `json:"durationMillis"`
}

// Controller holds the single "currently speaking" slot: at most one
// utterance at a time, ever. Toggling the active message cancels it;
// toggling another message cancels the current one first.
type Controller struct {
	mu     sync.Mutex
	synth  Synthesizer
	active string
	cancel context.CancelFunc
}

// NewController creates the playback controller.
func NewController(synth Synthesizer) *Controller {
	return &Controller{synth: synth}
}

// Active returns the id of the message currently being spoken, or "".
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Toggle starts or stops speech for a message. A nil Utterance with a nil
// error means playback for that message was cancelled. The voice is
// selected to match the language, falling back to the default voice.
func (c *Controller) Toggle(ctx context.Context, conversationID, messageID, text, language string) (*Utterance, error) {
	c.mu.Lock()
	if c.active == messageID {
		c.stopLocked()
		c.mu.Unlock()
		return nil, nil
	}

	// Cancel whatever is currently playing before switching.
	c.stopLocked()

	if text == "" {
		c.mu.Unlock()
		return nil, ErrNothingToSpeak
	}

	synthCtx, cancel := context.WithCancel(ctx)
	c.active = messageID
	c.cancel = cancel
	c.mu.Unlock()

	voice := speech.VoiceFor(language)
	resp, err := c.synth.Synthesize(synthCtx, &speechmodel.SynthesisRequest{
		ConversationID: conversationID,
		MessageID:      messageID,
		Text:           text,
		Voice:          voice,
		Language:       language,
	})
	if err != nil {
		// Synthesis failed or was cancelled: the slot must not stay stuck.
		c.Finish(messageID)
		return nil, err
	}

	return &Utterance{
		MessageID:      messageID,
		Audio:          resp.AudioData,
		Format:         resp.Format,
		Voice:          voice,
		DurationMillis: resp.DurationMillis,
	}, nil
}

// Finish clears the slot when the client reports natural completion or a
// playback error. Finishing a message that is no longer active is a no-op.
func (c *Controller) Finish(messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == messageID {
		c.stopLocked()
	}
}

func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.active = ""
}
