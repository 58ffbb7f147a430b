package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/sumoniya0512-oss/mobifix/internal/config"
	"github.com/sumoniya0512-oss/mobifix/internal/handler"
	"github.com/sumoniya0512-oss/mobifix/internal/model/locale"
	"github.com/sumoniya0512-oss/mobifix/internal/service/assistant"
	"github.com/sumoniya0512-oss/mobifix/internal/service/capture"
	conversationService "github.com/sumoniya0512-oss/mobifix/internal/service/conversation"
	"github.com/sumoniya0512-oss/mobifix/internal/service/playback"
	speechService "github.com/sumoniya0512-oss/mobifix/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	localeStore := locale.NewMemoryStore(locale.Seed())

	// Hosted chat model. Missing credentials degrade generation and
	// translation to their fallback outcomes instead of blocking startup.
	var chatModel model.ChatModel
	if cfg.Assistant.Enabled() {
		chatModel, err = cfg.Assistant.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize chat model: %v", err)
			log.Println("continuing without solution generation")
			chatModel = nil
		} else {
			log.Println("chat model initialized successfully")
		}
	} else {
		log.Println("assistant credentials not configured, solution generation degraded to fallbacks")
	}

	// Hosted speech API for transcription and synthesis.
	var speechSvc *speechService.Service
	if cfg.Speech.Enabled {
		speechSvc = speechService.NewService(cfg.Speech)
		log.Println("speech service initialized successfully")
	} else {
		log.Println("speech credentials not configured, voice features disabled")
	}

	var transcriber assistant.Transcriber
	if speechSvc != nil {
		transcriber = speechSvc
	}

	assistantSvc, err := assistant.NewService(ctx, chatModel, transcriber, cfg.Assistant)
	if err != nil {
		log.Fatalf("failed to initialize assistant service: %v", err)
	}

	convSvc := conversationService.NewService(assistantSvc)
	captureCtrl := capture.NewController(assistantSvc, convSvc, convSvc)

	var playbackCtrl *playback.Controller
	if speechSvc != nil {
		playbackCtrl = playback.NewController(speechSvc)
	}

	router := handler.NewRouter(localeStore, convSvc, assistantSvc, captureCtrl, playbackCtrl, cfg.Server.CORSOrigins)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MobiFix backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
