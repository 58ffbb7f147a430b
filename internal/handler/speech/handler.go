package speech

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	speechmodel "github.com/sumoniya0512-oss/mobifix/internal/model/speech"
	"github.com/sumoniya0512-oss/mobifix/internal/service/assistant"
	conversationService "github.com/sumoniya0512-oss/mobifix/internal/service/conversation"
	"github.com/sumoniya0512-oss/mobifix/internal/service/playback"
	"github.com/sumoniya0512-oss/mobifix/pkg/utils"
)

// maxUploadBytes caps one uploaded clip.
const maxUploadBytes = 16 << 20

// Handler covers the voice surface: one-shot clip transcription into the
// draft, and playback toggling for assistant answers.
type Handler struct {
	convSvc      *conversationService.Service
	assistantSvc *assistant.Service
	playbackCtrl *playback.Controller
}

// New creates the speech handler.
func New(convSvc *conversationService.Service, assistantSvc *assistant.Service, playbackCtrl *playback.Controller) *Handler {
	return &Handler{
		convSvc:      convSvc,
		assistantSvc: assistantSvc,
		playbackCtrl: playbackCtrl,
	}
}

// RegisterRoutes registers the speech routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/conversations/{conversationID}/speech", func(sr chi.Router) {
		sr.Post("/transcribe", h.handleTranscribe)
		sr.Post("/playback/{messageID}", h.handleToggle)
		sr.Delete("/playback/{messageID}", h.handleFinish)
		sr.Get("/playback", h.handlePlaybackStatus)
	})
}

// handleTranscribe accepts one multipart clip, transcribes it and merges
// the text into the conversation draft. A recognition fallback returns an
// empty transcript and leaves the draft untouched.
func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	conversation, err := h.convSvc.GetConversation(r.Context(), conversationID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	clip, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}
	if len(clip) > maxUploadBytes {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, "audio clip exceeds the size limit")
		return
	}
	if len(clip) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "audio clip is empty")
		return
	}

	token := h.convSvc.BeginOp(conversationID, conversationService.OpTranscription)
	outcome := h.assistantSvc.TranscribeAudio(r.Context(), &speechmodel.TranscriptionRequest{
		ConversationID: conversationID,
		Audio:          clip,
		MIMEType:       inferAudioMIME(header.Filename, header.Header.Get("Content-Type")),
		Language:       string(conversation.Language),
	})
	h.convSvc.EndOp(token)

	if outcome.Text == "" {
		if outcome.Err != nil {
			log.Printf("[speech] transcription fell back for conversation=%s: %v", conversationID, outcome.Err)
		}
		utils.RespondJSON(w, http.StatusOK, map[string]any{"transcript": "", "fallback": true})
		return
	}

	draft, err := h.convSvc.AppendTranscript(r.Context(), conversationID, outcome.Text)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"transcript": outcome.Text,
		"draft":      draft,
		"fallback":   false,
	})
}

// handleToggle starts or stops playback for a message. Toggling the
// message currently being spoken answers 204; starting a new one returns
// the synthesized audio bytes directly.
func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	messageID := chi.URLParam(r, "messageID")

	conversation, err := h.convSvc.GetConversation(r.Context(), conversationID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	message, err := h.convSvc.GetMessage(r.Context(), conversationID, messageID)
	if err != nil {
		if errors.Is(err, conversationService.ErrMessageNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utterance, err := h.playbackCtrl.Toggle(r.Context(), conversationID, messageID, message.Content, string(conversation.Language))
	if err != nil {
		if errors.Is(err, playback.ErrNothingToSpeak) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if utterance == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	format := utterance.Format
	if format == "" {
		format = "mp3"
	}
	w.Header().Set("Content-Type", "audio/"+format)
	w.Header().Set("X-Message-ID", utterance.MessageID)
	w.Header().Set("X-Voice", utterance.Voice)
	w.Header().Set("X-Duration-Millis", fmt.Sprintf("%d", utterance.DurationMillis))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(utterance.Audio); err != nil {
		log.Printf("[speech] failed to write audio response: %v", err)
	}
}

// handleFinish reports natural playback completion from the client.
func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	h.playbackCtrl.Finish(chi.URLParam(r, "messageID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePlaybackStatus(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"speakingMessageId": h.playbackCtrl.Active(),
	})
}

// inferAudioMIME prefers the upload's declared content type, falling back
// to the filename extension.
func inferAudioMIME(filename, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	default:
		return "audio/webm"
	}
}
