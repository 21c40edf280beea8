package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"stt":        {"whisper", "whisper-native"},
	"embeddings": {"openai"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file is required when tls is configured"))
		}
		if cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.key_file is required when tls is configured"))
		}
	}

	// Provider name validation — warn for unknown provider names,
	// fallbacks included.
	for _, entry := range append([]ProviderEntry{cfg.Providers.LLM}, cfg.Providers.LLM.Fallbacks...) {
		validateProviderName("llm", entry.Name)
	}
	for _, entry := range append([]ProviderEntry{cfg.Providers.STT}, cfg.Providers.STT.Fallbacks...) {
		validateProviderName("stt", entry.Name)
		errs = append(errs, validateSTTEntry(entry)...)
	}
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)

	// Evaluation tuning
	if t := cfg.Evaluate.PassThreshold; t != 0 && (t <= 0 || t > 1) {
		errs = append(errs, fmt.Errorf("evaluate.pass_threshold %.2f is out of range (0, 1]", t))
	}
	if cfg.Evaluate.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("evaluate.cache.ttl %s must not be negative", cfg.Evaluate.Cache.TTL))
	}
	if cfg.Evaluate.Cache.TTL != 0 && cfg.Evaluate.Cache.Addr == "" {
		slog.Warn("evaluate.cache.ttl is set but evaluate.cache.addr is empty; caching is disabled")
	}

	// Remote judge availability
	if cfg.Providers.LLM.Name == "" {
		slog.Warn("no LLM provider configured; attempt evaluation will use the local scorer only")
	}

	// Embeddings ↔ storage dimensions
	if cfg.Providers.Embeddings.Name != "" && cfg.Storage.EmbeddingDimensions <= 0 {
		slog.Warn("providers.embeddings is configured but storage.embedding_dimensions is not set; defaulting to 1536")
	}
	if cfg.Storage.EmbeddingDimensions < 0 {
		errs = append(errs, fmt.Errorf("storage.embedding_dimensions %d must not be negative", cfg.Storage.EmbeddingDimensions))
	}

	// Storage availability
	if cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.postgres_dsn is empty; progress history is kept in memory and lost on restart")
	}

	return errors.Join(errs...)
}

// validateSTTEntry checks the cross-field requirements of an STT provider
// entry.
func validateSTTEntry(entry ProviderEntry) []error {
	var errs []error
	if entry.Name == "whisper" && entry.BaseURL == "" {
		errs = append(errs, errors.New("providers.stt: base_url is required for the whisper provider"))
	}
	if entry.Name == "whisper-native" && entry.Model == "" {
		errs = append(errs, errors.New("providers.stt: model (model file path) is required for the whisper-native provider"))
	}
	return errs
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
