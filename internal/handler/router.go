package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	conversationHandler "github.com/sumoniya0512-oss/mobifix/internal/handler/conversation"
	localeHandler "github.com/sumoniya0512-oss/mobifix/internal/handler/locale"
	speechHandler "github.com/sumoniya0512-oss/mobifix/internal/handler/speech"
	streamHandler "github.com/sumoniya0512-oss/mobifix/internal/handler/stream"
	localeModel "github.com/sumoniya0512-oss/mobifix/internal/model/locale"
	"github.com/sumoniya0512-oss/mobifix/internal/service/assistant"
	"github.com/sumoniya0512-oss/mobifix/internal/service/capture"
	conversationService "github.com/sumoniya0512-oss/mobifix/internal/service/conversation"
	"github.com/sumoniya0512-oss/mobifix/internal/service/playback"
	"github.com/sumoniya0512-oss/mobifix/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(
	locales localeModel.Store,
	convSvc *conversationService.Service,
	assistantSvc *assistant.Service,
	captureCtrl *capture.Controller,
	playbackCtrl *playback.Controller,
	corsOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		localeHandler.New(locales).RegisterRoutes(api)
		conversationHandler.New(convSvc).RegisterRoutes(api)

		if assistantSvc != nil {
			streamHandler.New(convSvc, assistantSvc).RegisterRoutes(api)

			if playbackCtrl != nil {
				speechHandler.New(convSvc, assistantSvc, playbackCtrl).RegisterRoutes(api)
			}
		}

		if captureCtrl != nil {
			speechHandler.NewWebSocketHandler(convSvc, captureCtrl).RegisterWebSocketRoutes(api)
		}
	})

	return r
}
