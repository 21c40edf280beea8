// Command linecue is the line-rehearsal coach server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/linecue/linecue/internal/api"
	"github.com/linecue/linecue/internal/config"
	"github.com/linecue/linecue/internal/evaluate"
	"github.com/linecue/linecue/internal/health"
	"github.com/linecue/linecue/internal/match"
	"github.com/linecue/linecue/internal/observe"
	"github.com/linecue/linecue/internal/progress"
	"github.com/linecue/linecue/internal/resilience"
	"github.com/linecue/linecue/internal/script"
	"github.com/linecue/linecue/pkg/provider/embeddings"
	oaembed "github.com/linecue/linecue/pkg/provider/embeddings/openai"
	"github.com/linecue/linecue/pkg/provider/llm"
	"github.com/linecue/linecue/pkg/provider/llm/anyllm"
	"github.com/linecue/linecue/pkg/provider/stt"
	"github.com/linecue/linecue/pkg/provider/stt/whisper"
)

const (
	defaultListenAddr         = ":8080"
	defaultEmbeddingDimension = 1536
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "linecue: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "linecue: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("linecue starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "linecue"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Providers ─────────────────────────────────────────────────────────────
	llmProvider, err := buildLLM(cfg.Providers.LLM)
	if err != nil {
		slog.Error("failed to create llm provider", "name", cfg.Providers.LLM.Name, "err", err)
		return 1
	}
	sttProvider, err := buildSTT(cfg.Providers.STT)
	if err != nil {
		slog.Error("failed to create stt provider", "name", cfg.Providers.STT.Name, "err", err)
		return 1
	}
	embedder, err := buildEmbeddings(cfg.Providers.Embeddings)
	if err != nil {
		slog.Error("failed to create embeddings provider", "name", cfg.Providers.Embeddings.Name, "err", err)
		return 1
	}

	// ── Progress store ────────────────────────────────────────────────────────
	var (
		store    progress.Store
		checkers []health.Checker
	)
	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		dims := cfg.Storage.EmbeddingDimensions
		if dims == 0 {
			if embedder != nil {
				dims = embedder.Dimensions()
			} else {
				dims = defaultEmbeddingDimension
			}
		}
		pg, err := progress.NewPostgres(ctx, dsn, dims)
		if err != nil {
			slog.Error("failed to connect progress store", "err", err)
			return 1
		}
		defer pg.Close()
		store = pg
		checkers = append(checkers, health.Checker{Name: "postgres", Check: pg.Ping})
		slog.Info("progress store connected", "embedding_dimensions", dims)
	} else {
		store = progress.NewMemStore()
		slog.Info("using in-memory progress store")
	}

	// ── Evaluation cache ──────────────────────────────────────────────────────
	var cache evaluate.Cache
	if addr := cfg.Evaluate.Cache.Addr; addr != "" {
		var opts []evaluate.RedisCacheOption
		if cfg.Evaluate.Cache.TTL > 0 {
			opts = append(opts, evaluate.WithTTL(cfg.Evaluate.Cache.TTL))
		}
		rc, err := evaluate.NewRedisCache(ctx, addr, opts...)
		if err != nil {
			slog.Error("failed to connect evaluation cache", "addr", addr, "err", err)
			return 1
		}
		defer rc.Close()
		cache = rc
		checkers = append(checkers, health.Checker{Name: "cache", Check: rc.Ping})
		slog.Info("evaluation cache connected", "addr", addr)
	}

	// ── Evaluators ────────────────────────────────────────────────────────────
	local := evaluate.NewLocal(match.WithPhoneticLenience(cfg.Evaluate.PhoneticLenience))

	var (
		remote evaluate.Evaluator
		parser *script.Parser
	)
	if llmProvider != nil {
		remote = evaluate.NewRemote(llmProvider)
		parser = script.NewParser(llmProvider)
	}

	tiered := evaluate.NewTiered(local, remote, cache, evaluate.TieredConfig{
		PassThreshold: cfg.Evaluate.PassThreshold,
	})

	// ── HTTP server ───────────────────────────────────────────────────────────
	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}
	var srvOpts []api.Option
	if tls := cfg.Server.TLS; tls != nil {
		srvOpts = append(srvOpts, api.WithTLS(tls.CertFile, tls.KeyFile))
	}
	srv := api.New(addr, api.Deps{
		Evaluator: tiered,
		Local:     local,
		Parser:    parser,
		STT:       sttProvider,
		Embedder:  embedder,
		Store:     store,
		Health:    health.New(checkers...),
	}, srvOpts...)

	slog.Info("server ready — press Ctrl+C to shut down")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildLLM creates the configured LLM provider, or returns nil when none is
// configured. Entries with fallbacks are wrapped in a failover group.
func buildLLM(entry config.ProviderEntry) (llm.Provider, error) {
	if entry.Name == "" {
		return nil, nil
	}
	primary, err := buildAnyLLM(entry)
	if err != nil {
		return nil, err
	}
	if len(entry.Fallbacks) == 0 {
		return primary, nil
	}

	group := resilience.NewLLMFallback(primary, entry.Name, resilience.FallbackConfig{})
	for _, fb := range entry.Fallbacks {
		if fb.Name == "" {
			continue
		}
		p, err := buildAnyLLM(fb)
		if err != nil {
			return nil, fmt.Errorf("fallback %q: %w", fb.Name, err)
		}
		group.AddFallback(fb.Name, p)
		slog.Info("registered llm fallback", "name", fb.Name, "model", fb.Model)
	}
	return group, nil
}

// buildAnyLLM constructs a single any-llm backend. All backends share the
// APIKey + BaseURL pattern.
func buildAnyLLM(entry config.ProviderEntry) (llm.Provider, error) {
	var opts []anyllmlib.Option
	if entry.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
	}
	if entry.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
	}
	p, err := anyllm.New(entry.Name, entry.Model, opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("provider created", "kind", "llm", "name", entry.Name, "model", entry.Model)
	return p, nil
}

// buildSTT creates the configured STT provider, or returns nil when none is
// configured. Entries with fallbacks are wrapped in a failover group.
func buildSTT(entry config.ProviderEntry) (stt.Provider, error) {
	if entry.Name == "" {
		return nil, nil
	}
	primary, err := buildSingleSTT(entry)
	if err != nil {
		return nil, err
	}
	if len(entry.Fallbacks) == 0 {
		return primary, nil
	}

	group := resilience.NewSTTFallback(primary, entry.Name, resilience.FallbackConfig{})
	for _, fb := range entry.Fallbacks {
		if fb.Name == "" {
			continue
		}
		p, err := buildSingleSTT(fb)
		if err != nil {
			return nil, fmt.Errorf("fallback %q: %w", fb.Name, err)
		}
		group.AddFallback(fb.Name, p)
		slog.Info("registered stt fallback", "name", fb.Name)
	}
	return group, nil
}

func buildSingleSTT(entry config.ProviderEntry) (stt.Provider, error) {
	switch entry.Name {
	case "whisper":
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if entry.Language != "" {
			opts = append(opts, whisper.WithLanguage(entry.Language))
		}
		p, err := whisper.New(entry.BaseURL, opts...)
		if err != nil {
			return nil, err
		}
		slog.Info("provider created", "kind", "stt", "name", "whisper", "server", entry.BaseURL)
		return p, nil

	case "whisper-native":
		var opts []whisper.NativeOption
		if entry.Language != "" {
			opts = append(opts, whisper.WithNativeLanguage(entry.Language))
		}
		p, err := whisper.NewNative(entry.Model, opts...)
		if err != nil {
			return nil, err
		}
		slog.Info("provider created", "kind", "stt", "name", "whisper-native", "model", entry.Model)
		return p, nil

	default:
		return nil, fmt.Errorf("unknown stt provider %q", entry.Name)
	}
}

// buildEmbeddings creates the configured embeddings provider, or returns nil
// when none is configured.
func buildEmbeddings(entry config.ProviderEntry) (embeddings.Provider, error) {
	switch entry.Name {
	case "":
		return nil, nil

	case "openai":
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		p, err := oaembed.New(entry.APIKey, entry.Model, opts...)
		if err != nil {
			return nil, err
		}
		slog.Info("provider created", "kind", "embeddings", "name", "openai", "model", p.ModelID())
		return p, nil

	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", entry.Name)
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
