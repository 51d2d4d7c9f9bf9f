// Application wiring for CLI commands.
//
// Information Hiding:
// - Provider and adapter construction from settings hidden
// - Optional backends left out when their credential is missing
// - Server lifecycle hidden behind Serve

package cli

import (
	"fmt"
	"time"

	"github.com/richinex/slidesmith/config"
	"github.com/richinex/slidesmith/generation"
	"github.com/richinex/slidesmith/images"
	"github.com/richinex/slidesmith/internal/httpclient"
	"github.com/richinex/slidesmith/internal/limiter"
	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/llm"
	"github.com/richinex/slidesmith/search"
	"github.com/richinex/slidesmith/tools"
)

const userAgent = "slidesmith/1.0"

// Options holds CLI overrides applied on top of loaded settings.
type Options struct {
	Provider string
	Model    string
	Verbose  bool
}

// Apply returns settings with the non-empty overrides applied.
func (o Options) Apply(settings config.Settings) (config.Settings, error) {
	if o.Provider != "" {
		if err := settings.UseProvider(o.Provider); err != nil {
			return settings, err
		}
	}
	if o.Model != "" {
		settings.LLM.Model = o.Model
	}
	if o.Verbose {
		settings.Log.Level = "debug"
		settings.Log.Format = "console"
	}
	return settings, nil
}

// App is the fully wired service.
type App struct {
	Settings  config.Settings
	Logger    *logger.Logger
	Provider  llm.Provider // nil when no provider could be configured
	Registry  *tools.Registry
	Generator *generation.Generator
	Limiter   *limiter.Limiter
}

// Build wires every component from settings. A missing credential only
// disables the component that needs it.
func Build(settings config.Settings, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	client := httpclient.New(httpclient.Options{
		Timeout:    settings.ToolTimeout(),
		MaxRetries: 1,
		UserAgent:  userAgent,
	})

	searcher := search.NewSearcher(
		optionalBackend(settings.Search.TavilyAPIKey, func(key string) search.Backend {
			return search.NewTavilyBackend(key, client)
		}),
		optionalBackend(settings.Search.ExaAPIKey, func(key string) search.Backend {
			return search.NewExaBackend(key, client)
		}),
		settings.ToolTimeout(),
		log.With("component", "search"),
	)
	if _, err := searcher.Backends(); err != nil {
		log.Warn("web search disabled", "error", err)
	}

	var imageBackend images.Backend
	if settings.Images.PexelsAPIKey != "" {
		imageBackend = images.NewPexelsBackend(settings.Images.PexelsAPIKey, client)
	} else {
		log.Info("PEXELS_API_KEY not set, using placeholder images")
	}
	finder := images.NewFinder(imageBackend, settings.ToolTimeout(), log.With("component", "images"))

	registry, err := tools.WithDefaults(searcher, finder)
	if err != nil {
		return nil, err
	}
	// Search may run through both backends; leave room for that plus slack.
	executor := tools.NewExecutor(registry, 3*settings.ToolTimeout(), 0)

	provider, err := createProvider(settings)
	if err != nil {
		log.Warn("LLM provider unavailable", "provider", settings.LLM.Provider, "error", err)
		provider = nil
	} else {
		log.Info("LLM provider ready", "provider", provider.Name(), "model", provider.Model())
	}

	return &App{
		Settings:  settings,
		Logger:    log,
		Provider:  provider,
		Registry:  registry,
		Generator: generation.New(provider, registry, executor, log.With("component", "generation")),
		Limiter:   limiter.New(settings.Generation.MaxConcurrent, settings.Generation.RatePerSecond),
	}, nil
}

func optionalBackend(key string, build func(string) search.Backend) search.Backend {
	if key == "" {
		return nil
	}
	return build(key)
}

// createProvider builds the configured LLM provider.
func createProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}
	if settings.LLM.APIKey == "" {
		return nil, fmt.Errorf("%w: %s not set", generation.ErrNoProvider, providerType.EnvVar())
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		BaseURL(settings.LLM.BaseURL).
		APIKey(settings.LLM.APIKey)
}

// NewLogger builds the process logger from settings.
func NewLogger(settings config.Settings) (*logger.Logger, error) {
	return logger.New(logger.Config{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
		File:   settings.Log.File,
	})
}

// shutdownGrace bounds how long Serve waits for sessions to drain.
const shutdownGrace = 30 * time.Second
