package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server    ServerConfig
	Assistant AssistantConfig
	Upload    UploadConfig
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

	upload, err := loadUploadConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Assistant: assistant, Upload: upload}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AssistantConfig describes the upstream assistant service connection.
// It is handed explicitly to the gateway constructor; nothing reads these
// values from the environment after startup.
type AssistantConfig struct {
	APIKey       string
	BaseURL      string
	AssistantID  string
	Model        string
	PollInterval time.Duration
	RunTimeout   time.Duration
}

// Enabled reports whether the upstream credential is configured.
func (c AssistantConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadAssistantConfig() (AssistantConfig, error) {
	pollMS, err := parseOptionalIntEnv("RUN_POLL_INTERVAL_MS")
	if err != nil {
		return AssistantConfig{}, err
	}
	pollInterval := 500 * time.Millisecond
	if pollMS != nil {
		if *pollMS < 1 {
			return AssistantConfig{}, fmt.Errorf("RUN_POLL_INTERVAL_MS must be positive, got %d", *pollMS)
		}
		pollInterval = time.Duration(*pollMS) * time.Millisecond
	}

	timeoutSec, err := parseOptionalIntEnv("RUN_TIMEOUT_SEC")
	if err != nil {
		return AssistantConfig{}, err
	}
	runTimeout := 120 * time.Second
	if timeoutSec != nil {
		if *timeoutSec < 1 {
			return AssistantConfig{}, fmt.Errorf("RUN_TIMEOUT_SEC must be positive, got %d", *timeoutSec)
		}
		runTimeout = time.Duration(*timeoutSec) * time.Second
	}

	return AssistantConfig{
		APIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:      getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AssistantID:  strings.TrimSpace(os.Getenv("ASSISTANT_ID")),
		Model:        getEnvOrDefault("ASSISTANT_MODEL", "gpt-4-turbo-preview"),
		PollInterval: pollInterval,
		RunTimeout:   runTimeout,
	}, nil
}

// UploadConfig bounds the file relay endpoint.
type UploadConfig struct {
	MaxBytes int64
}

func loadUploadConfig() (UploadConfig, error) {
	maxBytes, err := parseOptionalIntEnv("UPLOAD_MAX_BYTES")
	if err != nil {
		return UploadConfig{}, err
	}

	limit := int64(32 << 20) // 32 MiB
	if maxBytes != nil {
		if *maxBytes < 1 {
			return UploadConfig{}, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", *maxBytes)
		}
		limit = int64(*maxBytes)
	}

	return UploadConfig{MaxBytes: limit}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
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
