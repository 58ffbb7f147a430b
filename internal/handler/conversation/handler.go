package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sumoniya0512-oss/mobifix/internal/model/chat"
	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
	conversationService "github.com/sumoniya0512-oss/mobifix/internal/service/conversation"
	"github.com/sumoniya0512-oss/mobifix/pkg/utils"
)

// Handler exposes the conversation state machine over HTTP.
type Handler struct {
	convSvc *conversationService.Service
}

// New creates the conversation handler.
func New(convSvc *conversationService.Service) *Handler {
	return &Handler{convSvc: convSvc}
}

// RegisterRoutes registers the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/conversations", func(cr chi.Router) {
		cr.Post("/", h.handleCreate)
		cr.Route("/{conversationID}", func(one chi.Router) {
			one.Get("/", h.handleGet)
			one.Patch("/settings", h.handleUpdateSettings)
			one.Get("/messages", h.handleTranscript)
			one.Post("/messages", h.handleSubmit)
			one.Delete("/messages", h.handleClear)
			one.Patch("/messages/{messageID}", h.handleEdit)
			one.Post("/messages/{messageID}/translate", h.handleTranslate)
			one.Put("/messages/{messageID}/feedback", h.handleFeedback)
			one.Get("/feedback", h.handleFeedbackMap)
			one.Get("/draft", h.handleGetDraft)
			one.Put("/draft", h.handleSetDraft)
			one.Get("/pending", h.handlePending)
		})
	})
}

type imagePayload struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

func (p *imagePayload) attachment() *chat.ImageAttachment {
	if p == nil || len(p.Data) == 0 {
		return nil
	}
	mime := p.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return &chat.ImageAttachment{MIMEType: mime, Data: p.Data}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Platform    string `json:"platform"`
		DeviceModel string `json:"deviceModel"`
		Language    string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	platform, ok := chat.ParsePlatform(payload.Platform)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "platform must be android or ios")
		return
	}
	language, ok := locale.ParseLanguage(payload.Language)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "language must be one of en, ta, hi")
		return
	}

	conversation, err := h.convSvc.CreateConversation(r.Context(), conversationService.CreateParams{
		Platform:    platform,
		DeviceModel: payload.DeviceModel,
		Language:    language,
	})
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, conversation)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	conversation, err := h.convSvc.GetConversation(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, conversation)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Platform    *string `json:"platform"`
		DeviceModel *string `json:"deviceModel"`
		Language    *string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := conversationService.SettingsParams{DeviceModel: payload.DeviceModel}
	if payload.Platform != nil {
		platform, ok := chat.ParsePlatform(*payload.Platform)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "platform must be android or ios")
			return
		}
		params.Platform = &platform
	}
	if payload.Language != nil {
		language, ok := locale.ParseLanguage(*payload.Language)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "language must be one of en, ta, hi")
			return
		}
		params.Language = &language
	}

	conversation, err := h.convSvc.UpdateSettings(r.Context(), chi.URLParam(r, "conversationID"), params)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, conversation)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.convSvc.Transcript(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text  string        `json:"text"`
		Image *imagePayload `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.convSvc.Submit(r.Context(), chi.URLParam(r, "conversationID"), payload.Text, payload.Image.attachment())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.convSvc.Edit(r.Context(),
		chi.URLParam(r, "conversationID"),
		chi.URLParam(r, "messageID"),
		payload.Content,
	)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var payload struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var target locale.Language
	if payload.Language != "" {
		parsed, ok := locale.ParseLanguage(payload.Language)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "language must be one of en, ta, hi")
			return
		}
		target = parsed
	} else {
		// Default to the conversation's active language.
		conversation, err := h.convSvc.GetConversation(r.Context(), conversationID)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		target = conversation.Language
	}

	message, translated, err := h.convSvc.Translate(r.Context(), conversationID, chi.URLParam(r, "messageID"), target)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message":    message,
		"translated": translated,
	})
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Choice string `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.convSvc.SetFeedback(r.Context(),
		chi.URLParam(r, "conversationID"),
		chi.URLParam(r, "messageID"),
		chat.FeedbackChoice(payload.Choice),
	)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *Handler) handleFeedbackMap(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.convSvc.FeedbackMap(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, feedback)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.convSvc.ClearHistory(r.Context(), chi.URLParam(r, "conversationID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	text, image, err := h.convSvc.Draft(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"text": text, "image": image})
}

func (h *Handler) handleSetDraft(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text  string        `json:"text"`
		Image *imagePayload `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.convSvc.SetDraft(r.Context(), chi.URLParam(r, "conversationID"), payload.Text, payload.Image.attachment()); err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	ops := h.convSvc.PendingOps(r.Context(), chi.URLParam(r, "conversationID"))
	utils.RespondJSON(w, http.StatusOK, ops)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversationService.ErrConversationNotFound),
		errors.Is(err, conversationService.ErrMessageNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, conversationService.ErrEmptySubmission),
		errors.Is(err, conversationService.ErrEmptyEdit),
		errors.Is(err, conversationService.ErrNotUserMessage),
		errors.Is(err, conversationService.ErrInvalidFeedback):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, conversationService.ErrSuperseded):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
