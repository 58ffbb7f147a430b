package stream

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/sumoniya0512-oss/mobifix/internal/model/chat"
	"github.com/sumoniya0512-oss/mobifix/internal/service/assistant"
	conversationService "github.com/sumoniya0512-oss/mobifix/internal/service/conversation"
	"github.com/sumoniya0512-oss/mobifix/pkg/utils"
)

// Handler streams solution generation over Server-Sent Events. When
// streaming is not configured it degrades to a single blocking
// generation delivered as one frame, so clients keep a single endpoint.
type Handler struct {
	convSvc      *conversationService.Service
	assistantSvc *assistant.Service
}

// New creates the streaming handler.
func New(convSvc *conversationService.Service, assistantSvc *assistant.Service) *Handler {
	return &Handler{convSvc: convSvc, assistantSvc: assistantSvc}
}

// RegisterRoutes registers the streaming routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/conversations/{conversationID}/messages/stream", h.handleStreamSubmit)
}

type submitPayload struct {
	Text  string `json:"text"`
	Image *struct {
		MIMEType string `json:"mimeType"`
		Data     []byte `json:"data"`
	} `json:"image"`
}

func (p submitPayload) attachment() *chat.ImageAttachment {
	if p.Image == nil || len(p.Image.Data) == 0 {
		return nil
	}
	mime := p.Image.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return &chat.ImageAttachment{MIMEType: mime, Data: p.Image.Data}
}

func (h *Handler) handleStreamSubmit(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conversationID := chi.URLParam(r, "conversationID")

	begin, err := h.convSvc.BeginTurn(r.Context(), conversationID, payload.Text, payload.attachment())
	if err != nil {
		switch {
		case errors.Is(err, conversationService.ErrConversationNotFound):
			utils.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, conversationService.ErrEmptySubmission):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	utils.SendSSEEvent(w, flusher, "user", begin.User)

	req := assistant.SolutionRequest{
		Problem:     begin.User.Content,
		Platform:    begin.Conversation.Platform,
		DeviceModel: begin.Conversation.DeviceModel,
		Language:    begin.Conversation.Language,
		Image:       begin.User.Image,
	}

	token := h.convSvc.BeginOp(conversationID, conversationService.OpSolution)
	defer h.convSvc.EndOp(token)

	if !h.assistantSvc.StreamingEnabled() {
		outcome := h.assistantSvc.GenerateSolution(r.Context(), req)
		h.finish(r, w, flusher, conversationID, begin, outcome.Text, outcome.Fallback)
		return
	}

	reader, err := h.assistantSvc.StreamSolution(r.Context(), req)
	if err != nil {
		log.Printf("[stream] falling back to apology for conversation=%s: %v", conversationID, err)
		h.finish(r, w, flusher, conversationID, begin, assistant.FallbackApology, true)
		return
	}
	defer reader.Close()

	var chunks []*schema.Message
	for {
		message, err := reader.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Broken mid-stream: the turn still completes with the apology
			// so the log never ends on a dangling user message.
			log.Printf("[stream] receive failed for conversation=%s: %v", conversationID, err)
			h.finish(r, w, flusher, conversationID, begin, assistant.FallbackApology, true)
			return
		}

		chunks = append(chunks, message)
		if message.Content != "" {
			utils.SendSSEChunk(w, flusher, map[string]string{"delta": message.Content})
		}
	}

	full, err := schema.ConcatMessages(chunks)
	if err != nil || full == nil || full.Content == "" {
		log.Printf("[stream] empty or unmergeable stream for conversation=%s: %v", conversationID, err)
		h.finish(r, w, flusher, conversationID, begin, assistant.FallbackApology, true)
		return
	}

	h.finish(r, w, flusher, conversationID, begin, full.Content, false)
}

// finish appends the assistant answer and emits the terminal SSE events.
func (h *Handler) finish(r *http.Request, w http.ResponseWriter, flusher http.Flusher, conversationID string, begin conversationService.TurnBegin, content string, failed bool) {
	answer, err := h.convSvc.CompleteTurn(r.Context(), conversationID, begin.User.ID, begin.Epoch, content, failed)
	if err != nil {
		if errors.Is(err, conversationService.ErrSuperseded) {
			utils.SendSSEEvent(w, flusher, "end", map[string]any{"superseded": true})
			return
		}
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"message": err.Error()})
		return
	}

	if failed {
		utils.SendSSEChunk(w, flusher, map[string]string{"delta": content})
	}
	utils.SendSSEEvent(w, flusher, "message", answer)
	utils.SendSSEEvent(w, flusher, "end", map[string]any{"fallback": failed})
}
