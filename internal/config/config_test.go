package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Set required environment variables
	os.Setenv("GEMINI_API_KEY", "test-gemini-key")
	defer os.Unsetenv("GEMINI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.GeminiAPIKey != "test-gemini-key" {
		t.Errorf("Expected GeminiAPIKey 'test-gemini-key', got '%s'", cfg.GeminiAPIKey)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	// Clear environment variables
	os.Unsetenv("GEMINI_API_KEY")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when required keys are missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("GEMINI_API_KEY", "test-gemini-key")
	defer os.Unsetenv("GEMINI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8080" {
		t.Errorf("Expected default Port '8080', got '%s'", cfg.Port)
	}

	if cfg.GeminiModel != "gemini-2.5-flash-native-audio-preview-12-2025" {
		t.Errorf("Expected default GeminiModel 'gemini-2.5-flash-native-audio-preview-12-2025', got '%s'", cfg.GeminiModel)
	}

	if cfg.GeminiVoice != "Puck" {
		t.Errorf("Expected default GeminiVoice 'Puck', got '%s'", cfg.GeminiVoice)
	}

	if cfg.InputSampleRate != 16000 {
		t.Errorf("Expected default InputSampleRate 16000, got %d", cfg.InputSampleRate)
	}

	if cfg.OutputSampleRate != 24000 {
		t.Errorf("Expected default OutputSampleRate 24000, got %d", cfg.OutputSampleRate)
	}

	if cfg.AudioQueueSize != 100 {
		t.Errorf("Expected default AudioQueueSize 100, got %d", cfg.AudioQueueSize)
	}

	if cfg.VideoQueueSize != 30 {
		t.Errorf("Expected default VideoQueueSize 30, got %d", cfg.VideoQueueSize)
	}

	if cfg.TextQueueSize != 16 {
		t.Errorf("Expected default TextQueueSize 16, got %d", cfg.TextQueueSize)
	}

	if cfg.FrameBufferSize != 10 {
		t.Errorf("Expected default FrameBufferSize 10, got %d", cfg.FrameBufferSize)
	}

	if cfg.ToolTimeout != 30 {
		t.Errorf("Expected default ToolTimeout 30, got %d", cfg.ToolTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("GEMINI_API_KEY", "test-gemini-key")
	defer os.Unsetenv("GEMINI_API_KEY")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.GeminiAPIKey != "test-gemini-key" {
		t.Errorf("Expected GeminiAPIKey 'test-gemini-key', got '%s'", cfg.GeminiAPIKey)
	}
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	os.Setenv("GEMINI_API_KEY", "test-gemini-key")
	os.Setenv("AUDIO_INPUT_SAMPLE_RATE", "0")
	defer os.Unsetenv("GEMINI_API_KEY")
	defer os.Unsetenv("AUDIO_INPUT_SAMPLE_RATE")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for zero input sample rate")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_KEY", "test-value")
	defer os.Unsetenv("TEST_KEY")

	value := GetEnv("TEST_KEY", "default")
	if value != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", value)
	}

	value = GetEnv("NON_EXISTENT_KEY", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	os.Setenv("GEMINI_API_KEY", "test-gemini-key")
	// Clear LOG_LEVEL to ensure we get the default
	os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("GEMINI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check observability defaults
	// The default should be "info" (lowercase) as defined in config.go
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}

	if !cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled true, got false")
	}
}
