package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server    ServerConfig
	Assistant AssistantConfig
	Speech    SpeechConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	assistant, err := loadAssistantConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Assistant: assistant, Speech: speech}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if origins == "" {
		origins = "*"
	}

	cfg := ServerConfig{CORSOrigins: strings.Split(origins, ",")}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" verbatim.
		cfg.Addr = port
		return cfg, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	cfg.Addr = ":" + port
	return cfg, nil
}

// AssistantConfig describes the hosted model used for solution generation
// and translation.
type AssistantConfig struct {
	APIKey         string
	AccessKey      string
	SecretKey      string
	Model          string
	BaseURL        string
	Region         string
	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	StreamResponse bool
	RequestTimeout time.Duration
}

// Enabled reports whether the required credentials are present. A missing
// credential degrades remote calls to fail-soft fallbacks, never a crash.
func (c AssistantConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AssistantConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("assistant credentials or model missing: set ASSISTANT_API_KEY + ASSISTANT_MODEL, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAssistantConfig() (AssistantConfig, error) {
	temperature, err := parseOptionalFloatEnv("ASSISTANT_TEMPERATURE")
	if err != nil {
		return AssistantConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ASSISTANT_TOP_P")
	if err != nil {
		return AssistantConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ASSISTANT_MAX_TOKENS")
	if err != nil {
		return AssistantConfig{}, err
	}

	stream, err := parseBoolEnv("ASSISTANT_STREAM", true)
	if err != nil {
		return AssistantConfig{}, err
	}

	timeoutSeconds := 60
	if override, err := parseOptionalIntEnv("ASSISTANT_TIMEOUT"); err != nil {
		return AssistantConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return AssistantConfig{
		APIKey:         strings.TrimSpace(os.Getenv("ASSISTANT_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ASSISTANT_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ASSISTANT_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("ASSISTANT_MODEL")),
		BaseURL:        getEnvOrDefault("ASSISTANT_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("ASSISTANT_REGION", "cn-beijing"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		StreamResponse: stream,
		RequestTimeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// SpeechConfig describes the hosted speech-to-text / text-to-speech API.
type SpeechConfig struct {
	BaseURL  string
	APIKey   string
	Language string
	Voice    string
	Timeout  time.Duration
	Enabled  bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("SPEECH_TIMEOUT"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	if apiKey == "" {
		// Fall back to the assistant credential when no dedicated key is set.
		apiKey = strings.TrimSpace(os.Getenv("ASSISTANT_API_KEY"))
	}

	baseURL := strings.TrimSpace(os.Getenv("SPEECH_BASE_URL"))

	return SpeechConfig{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Language: getEnvOrDefault("SPEECH_LANGUAGE", "en-IN"),
		Voice:    getEnvOrDefault("SPEECH_TTS_VOICE", ""),
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
		Enabled:  baseURL != "" && apiKey != "",
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
