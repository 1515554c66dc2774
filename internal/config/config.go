package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the live gateway service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Public base URL for this service (e.g. https://xxx.ngrok-free.dev when behind ngrok).
	// Used for logging the WebSocket endpoint; clients connect to wss://<this-host>/ws.
	// Optional; if unset, logs ws://localhost:PORT/ws.
	GatewayURL string `envconfig:"GATEWAY_URL" default:""`

	// Gemini Live API configuration
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY" required:"true"`
	GeminiModel       string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash-native-audio-preview-12-2025"`
	GeminiVoice       string `envconfig:"GEMINI_VOICE" default:"Puck"`
	SystemInstruction string `envconfig:"SYSTEM_INSTRUCTION" default:""` // empty = built-in appliance-scanning persona

	// Audio configuration. Input is what the client microphone sends,
	// output is what the model speaks; both are raw 16-bit PCM.
	InputSampleRate  int `envconfig:"AUDIO_INPUT_SAMPLE_RATE" default:"16000"`
	OutputSampleRate int `envconfig:"AUDIO_OUTPUT_SAMPLE_RATE" default:"24000"`

	// ManualActivity forwards the client's push-to-talk boundaries to the
	// model and disables its automatic voice activity detection.
	ManualActivity bool `envconfig:"MANUAL_ACTIVITY" default:"true"`

	// Upstream queue capacities. Pushes drop (with a warning) when full.
	AudioQueueSize int `envconfig:"AUDIO_QUEUE_SIZE" default:"100"`
	VideoQueueSize int `envconfig:"VIDEO_QUEUE_SIZE" default:"30"`
	TextQueueSize  int `envconfig:"TEXT_QUEUE_SIZE" default:"16"`

	// Video frame ring capacity (most recent frames kept for tool inspection)
	FrameBufferSize int `envconfig:"FRAME_BUFFER_SIZE" default:"10"`

	// Per-tool-call timeout in seconds; 0 disables the timeout
	ToolTimeout int `envconfig:"TOOL_TIMEOUT" default:"30"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.InputSampleRate <= 0 {
		return fmt.Errorf("AUDIO_INPUT_SAMPLE_RATE must be positive, got %d", c.InputSampleRate)
	}
	if c.OutputSampleRate <= 0 {
		return fmt.Errorf("AUDIO_OUTPUT_SAMPLE_RATE must be positive, got %d", c.OutputSampleRate)
	}
	if c.FrameBufferSize <= 0 {
		return fmt.Errorf("FRAME_BUFFER_SIZE must be positive, got %d", c.FrameBufferSize)
	}
	return nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
