package config_test

import (
	"testing"
	"time"

	"github.com/sumoniya0512-oss/mobifix/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %s", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected default CORS origins: %v", cfg.Server.CORSOrigins)
	}
	if cfg.Assistant.Enabled() {
		t.Fatal("assistant must be disabled without credentials")
	}
	if !cfg.Assistant.StreamResponse {
		t.Fatal("streaming should default to enabled")
	}
	if cfg.Assistant.RequestTimeout != 60*time.Second {
		t.Fatalf("unexpected default timeout: %s", cfg.Assistant.RequestTimeout)
	}
	if cfg.Speech.Enabled {
		t.Fatal("speech must be disabled without a base URL")
	}
}

func TestLoadServerOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://app.example.com,https://beta.example.com")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("unexpected origins: %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadServerAddrVerbatim(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
}

func TestLoadAssistant(t *testing.T) {
	t.Setenv("ASSISTANT_API_KEY", "key-123")
	t.Setenv("ASSISTANT_MODEL", "model-x")
	t.Setenv("ASSISTANT_TEMPERATURE", "0.4")
	t.Setenv("ASSISTANT_MAX_TOKENS", "2048")
	t.Setenv("ASSISTANT_STREAM", "false")
	t.Setenv("ASSISTANT_TIMEOUT", "90")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if !cfg.Assistant.Enabled() {
		t.Fatal("assistant should be enabled")
	}
	if cfg.Assistant.Temperature == nil || *cfg.Assistant.Temperature != 0.4 {
		t.Fatalf("temperature not parsed: %v", cfg.Assistant.Temperature)
	}
	if cfg.Assistant.MaxTokens == nil || *cfg.Assistant.MaxTokens != 2048 {
		t.Fatalf("max tokens not parsed: %v", cfg.Assistant.MaxTokens)
	}
	if cfg.Assistant.StreamResponse {
		t.Fatal("streaming should be disabled")
	}
	if cfg.Assistant.RequestTimeout != 90*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Assistant.RequestTimeout)
	}
}

func TestLoadAssistantInvalidValues(t *testing.T) {
	t.Setenv("ASSISTANT_TEMPERATURE", "warm")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid temperature")
	}

	t.Setenv("ASSISTANT_TEMPERATURE", "")
	t.Setenv("ASSISTANT_STREAM", "definitely")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid stream flag")
	}
}

func TestLoadSpeech(t *testing.T) {
	t.Setenv("SPEECH_BASE_URL", "https://speech.example.com")
	t.Setenv("SPEECH_API_KEY", "speech-key")
	t.Setenv("SPEECH_TIMEOUT", "15")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.Speech.Enabled {
		t.Fatal("speech should be enabled")
	}
	if cfg.Speech.Timeout != 15*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Speech.Timeout)
	}
}

func TestLoadSpeechFallsBackToAssistantKey(t *testing.T) {
	t.Setenv("SPEECH_BASE_URL", "https://speech.example.com")
	t.Setenv("ASSISTANT_API_KEY", "shared-key")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.Speech.Enabled {
		t.Fatal("speech should be enabled via the shared credential")
	}
	if cfg.Speech.APIKey != "shared-key" {
		t.Fatalf("unexpected key: %s", cfg.Speech.APIKey)
	}
}
