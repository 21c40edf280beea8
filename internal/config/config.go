// Package config provides the configuration schema and loader for the
// linecue server.
package config

import "time"

// LogLevel controls log verbosity for the linecue server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for linecue.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Evaluate  EvaluateConfig  `yaml:"evaluate"`
	Storage   StorageConfig   `yaml:"storage"`
}

// ServerConfig holds network and logging settings for the linecue server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// ProvidersConfig declares which provider implementation to use for each
// external dependency.
type ProvidersConfig struct {
	LLM        ProviderEntry `yaml:"llm"`
	STT        ProviderEntry `yaml:"stt"`
	Embeddings ProviderEntry `yaml:"embeddings"`
}

// ProviderEntry is the common configuration block shared by all provider types.
type ProviderEntry struct {
	// Name selects the provider implementation (e.g., "openai", "whisper").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint. For the
	// "whisper" STT provider this is the whisper-server address; for
	// "whisper-native" it is ignored.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g.,
	// "gpt-4o-mini", "text-embedding-3-small", or a whisper model path).
	Model string `yaml:"model"`

	// Language is the BCP-47 recognition language for STT providers.
	Language string `yaml:"language"`

	// Fallbacks lists backup providers tried in order when this one fails.
	// Only one level deep; fallbacks of fallbacks are ignored.
	Fallbacks []ProviderEntry `yaml:"fallbacks"`
}

// EvaluateConfig tunes the tiered attempt evaluator.
type EvaluateConfig struct {
	// PassThreshold is the word-overlap similarity above which the local
	// scorer's verdict is trusted without consulting the remote judge.
	// Zero means the default (0.9).
	PassThreshold float64 `yaml:"pass_threshold"`

	// PhoneticLenience promotes sound-alike word substitutions to matches
	// in the local scorer, forgiving recognizer homophone choices.
	PhoneticLenience bool `yaml:"phonetic_lenience"`

	// Cache configures the evaluation result cache. When Addr is empty,
	// caching is disabled.
	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig holds Redis settings for the evaluation cache.
type CacheConfig struct {
	// Addr is the Redis address (host:port).
	Addr string `yaml:"addr"`

	// TTL bounds the lifetime of cached verdicts. Zero means the default
	// (24h).
	TTL time.Duration `yaml:"ttl"`
}

// StorageConfig holds settings for the progress store.
type StorageConfig struct {
	// PostgresDSN is the connection string for the progress database.
	// When empty, an in-memory store is used and progress is lost on
	// restart.
	PostgresDSN string `yaml:"postgres_dsn"`

	// EmbeddingDimensions must match the embeddings provider's output
	// dimension. Zero defaults to 1536.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`
}
