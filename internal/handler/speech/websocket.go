package speech

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sumoniya0512-oss/mobifix/internal/service/capture"
	conversationService "github.com/sumoniya0512-oss/mobifix/internal/service/conversation"
)

// WebSocketHandler is the microphone intake: the client records locally
// and streams chunks here, where the capture controller buffers them
// until stop flushes the clip to transcription.
type WebSocketHandler struct {
	convSvc     *conversationService.Service
	captureCtrl *capture.Controller
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates the websocket intake handler.
func NewWebSocketHandler(convSvc *conversationService.Service, captureCtrl *capture.Controller) *WebSocketHandler {
	return &WebSocketHandler{
		convSvc:     convSvc,
		captureCtrl: captureCtrl,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes registers the capture intake route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/capture/{conversationID}", h.handleCapture)
}

type inboundFrame struct {
	Type     string `json:"type"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type outgoingFrame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleCapture(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		http.Error(w, "conversationID is required", http.StatusBadRequest)
		return
	}

	conversation, err := h.convSvc.GetConversation(r.Context(), conversationID)
	if err != nil {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] capture intake connected conversation=%s", conversationID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// A dropped connection must never leave the state machine recording.
	defer h.captureCtrl.Abort(conversationID)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.send(conn, "connected", map[string]any{
		"conversationId": conversationID,
		"language":       conversation.Language,
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var frame inboundFrame
			if err := conn.ReadJSON(&frame); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			h.handleFrame(ctx, conn, conversationID, &frame)
		}
	}
}

func (h *WebSocketHandler) handleFrame(ctx context.Context, conn *websocket.Conn, conversationID string, frame *inboundFrame) {
	switch frame.Type {
	case "start":
		if err := h.captureCtrl.Start(conversationID, frame.MIMEType); err != nil {
			h.sendError(conn, err.Error())
			return
		}
		h.send(conn, "recording", map[string]any{"active": true})

	case "chunk":
		if err := h.captureCtrl.Push(conversationID, frame.Data); err != nil {
			if errors.Is(err, capture.ErrClipTooLarge) {
				h.captureCtrl.Abort(conversationID)
			}
			h.sendError(conn, err.Error())
		}

	case "stop":
		// The conversation language at stop time drives recognition.
		language := ""
		if conversation, err := h.convSvc.GetConversation(ctx, conversationID); err == nil {
			language = string(conversation.Language)
		}

		result, err := h.captureCtrl.Stop(ctx, conversationID, language)
		if err != nil {
			h.sendError(conn, err.Error())
			return
		}
		h.send(conn, "transcript", map[string]any{
			"text":     result.Transcript,
			"draft":    result.Draft,
			"fallback": result.Transcript == "",
		})

	case "abort":
		h.captureCtrl.Abort(conversationID)
		h.send(conn, "recording", map[string]any{"active": false})

	default:
		h.sendError(conn, "unsupported frame type: "+frame.Type)
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, frameType string, data map[string]any) {
	frame := outgoingFrame{
		Type:      frameType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[websocket] write failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	frame := outgoingFrame{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
