package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/linecue/linecue/internal/config"
)

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_addr: ":8080"
  log_level: debug
providers:
  llm:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
  stt:
    name: whisper
    base_url: http://localhost:9000
    language: en
  embeddings:
    name: openai
    api_key: sk-test
    model: text-embedding-3-small
evaluate:
  pass_threshold: 0.9
  phonetic_lenience: true
  cache:
    addr: localhost:6379
    ttl: 12h
storage:
  postgres_dsn: "postgres://localhost/linecue"
  embedding_dimensions: 1536
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q, want :8080", cfg.Server.ListenAddr)
	}
	if cfg.Providers.STT.BaseURL != "http://localhost:9000" {
		t.Errorf("stt base_url = %q", cfg.Providers.STT.BaseURL)
	}
	if !cfg.Evaluate.PhoneticLenience {
		t.Error("phonetic_lenience not decoded")
	}
	if cfg.Evaluate.Cache.TTL != 12*time.Hour {
		t.Errorf("cache ttl = %s, want 12h", cfg.Evaluate.Cache.TTL)
	}
	if cfg.Storage.EmbeddingDimensions != 1536 {
		t.Errorf("embedding_dimensions = %d, want 1536", cfg.Storage.EmbeddingDimensions)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_adr: ":8080"
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for misspelled field, got nil")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: loud
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_PassThresholdOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := `
evaluate:
  pass_threshold: 1.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range pass_threshold, got nil")
	}
	if !strings.Contains(err.Error(), "pass_threshold") {
		t.Errorf("error should mention pass_threshold, got: %v", err)
	}
}

func TestValidate_WhisperRequiresBaseURL(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  stt:
    name: whisper
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for whisper without base_url, got nil")
	}
	if !strings.Contains(err.Error(), "base_url") {
		t.Errorf("error should mention base_url, got: %v", err)
	}
}

func TestValidate_WhisperNativeRequiresModel(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  stt:
    name: whisper-native
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for whisper-native without model path, got nil")
	}
	if !strings.Contains(err.Error(), "model") {
		t.Errorf("error should mention model, got: %v", err)
	}
}

func TestValidate_TLSRequiresBothFiles(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  tls:
    cert_file: /etc/linecue/tls.crt
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for TLS without key file, got nil")
	}
	if !strings.Contains(err.Error(), "key_file") {
		t.Errorf("error should mention key_file, got: %v", err)
	}
}

func TestLoadFromReader_ProviderFallbacks(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  llm:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
    fallbacks:
      - name: ollama
        base_url: http://localhost:11434
        model: llama3.1
  stt:
    name: whisper-native
    model: /models/ggml-base.en.bin
    fallbacks:
      - name: whisper
        base_url: http://localhost:9000
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Providers.LLM.Fallbacks) != 1 || cfg.Providers.LLM.Fallbacks[0].Name != "ollama" {
		t.Errorf("llm fallbacks = %v, want one ollama entry", cfg.Providers.LLM.Fallbacks)
	}
	if len(cfg.Providers.STT.Fallbacks) != 1 {
		t.Errorf("stt fallbacks = %v, want one entry", cfg.Providers.STT.Fallbacks)
	}
}

func TestValidate_FallbackEntriesAreChecked(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  stt:
    name: whisper
    base_url: http://localhost:9000
    fallbacks:
      - name: whisper-native
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for whisper-native fallback without model path, got nil")
	}
	if !strings.Contains(err.Error(), "whisper-native") {
		t.Errorf("error should mention whisper-native, got: %v", err)
	}
}

func TestValidate_MinimalConfigIsValid(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("server:\n  listen_addr: \":8080\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
