// Package config provides application settings.
//
// Settings are created via Load() which applies, in order:
// - Built-in defaults
// - An optional YAML file (CONFIG_PATH, default slidesmith.yaml)
// - Environment variable overrides with validation
//
// A missing credential is not an error: the component that needs it is
// simply left out.

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when CONFIG_PATH is unset. It may be absent.
const DefaultConfigPath = "slidesmith.yaml"

// Settings holds all application configuration.
type Settings struct {
	LLM        LLMConfig        `yaml:"llm"`
	Server     ServerConfig     `yaml:"server"`
	Search     SearchConfig     `yaml:"search"`
	Images     ImagesConfig     `yaml:"images"`
	Generation GenerationConfig `yaml:"generation"`
	Log        LogConfig        `yaml:"log"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"` // empty uses the provider's public endpoint
	MaxTokens   uint32  `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"` // zero leaves the model default
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
}

type SearchConfig struct {
	TavilyAPIKey string `yaml:"tavily_api_key"`
	ExaAPIKey    string `yaml:"exa_api_key"`
}

type ImagesConfig struct {
	PexelsAPIKey string `yaml:"pexels_api_key"`
}

// GenerationConfig bounds tool calls and admission of new generations.
type GenerationConfig struct {
	ToolTimeoutSeconds int     `yaml:"tool_timeout_seconds"`
	MaxConcurrent      int     `yaml:"max_concurrent"`
	RatePerSecond      float64 `yaml:"rate_per_second"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Addr is the listen address.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Server.Host, strconv.Itoa(s.Server.Port))
}

// ToolTimeout bounds one backend call inside a search or image adapter.
func (s Settings) ToolTimeout() time.Duration {
	return time.Duration(s.Generation.ToolTimeoutSeconds) * time.Second
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-5.1", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-5", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		LLM: LLMConfig{
			Provider:  "openai",
			MaxTokens: 4096,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8001,
			FrontendURL: "http://localhost:5173",
		},
		Generation: GenerationConfig{
			ToolTimeoutSeconds: 10,
			MaxConcurrent:      8,
			RatePerSecond:      4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds settings from defaults, the YAML file and the environment.
// An explicitly named CONFIG_PATH must exist; the default path may not.
func Load() (Settings, error) {
	settings := Defaults()

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	if err := settings.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Settings{}, err
		}
	}

	if err := settings.applyEnv(); err != nil {
		return Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// MustLoad is Load that panics on error.
// Use this only when configuration errors should be fatal.
func MustLoad() Settings {
	settings, err := Load()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (s *Settings) applyEnv() error {
	var err error

	if v := os.Getenv("USE_PROVIDER"); v != "" {
		s.LLM.Provider = v
	}
	s.LLM.Provider = normalizeProvider(s.LLM.Provider)
	info, err := getProviderInfo(s.LLM.Provider)
	if err != nil {
		return err
	}

	switch {
	case os.Getenv("MODEL_NAME") != "":
		s.LLM.Model = os.Getenv("MODEL_NAME")
	case os.Getenv(info.modelEnv) != "":
		s.LLM.Model = os.Getenv(info.modelEnv)
	case s.LLM.Model == "":
		s.LLM.Model = info.defaultModel
	}
	if v := os.Getenv(info.apiKeyEnv); v != "" {
		s.LLM.APIKey = v
	}

	s.LLM.BaseURL = getEnvString("LLM_BASE_URL", s.LLM.BaseURL)

	if s.LLM.MaxTokens, err = getEnvUint32("LLM_MAX_TOKENS", s.LLM.MaxTokens); err != nil {
		return err
	}
	if s.LLM.Temperature, err = getEnvFloat64("LLM_TEMPERATURE", s.LLM.Temperature); err != nil {
		return err
	}

	s.Server.Host = getEnvString("HOST", s.Server.Host)
	if s.Server.Port, err = getEnvInt("PORT", s.Server.Port); err != nil {
		return err
	}
	s.Server.FrontendURL = getEnvString("FRONTEND_URL", s.Server.FrontendURL)

	s.Search.TavilyAPIKey = getEnvString("TAVILY_API_KEY", s.Search.TavilyAPIKey)
	s.Search.ExaAPIKey = getEnvString("EXA_API_KEY", s.Search.ExaAPIKey)
	s.Images.PexelsAPIKey = getEnvString("PEXELS_API_KEY", s.Images.PexelsAPIKey)

	if s.Generation.ToolTimeoutSeconds, err = getEnvInt("TOOL_TIMEOUT_SECONDS", s.Generation.ToolTimeoutSeconds); err != nil {
		return err
	}
	if s.Generation.MaxConcurrent, err = getEnvInt("MAX_CONCURRENT_GENERATIONS", s.Generation.MaxConcurrent); err != nil {
		return err
	}
	if s.Generation.RatePerSecond, err = getEnvFloat64("GENERATION_RATE_PER_SECOND", s.Generation.RatePerSecond); err != nil {
		return err
	}

	s.Log.Level = getEnvString("LOG_LEVEL", s.Log.Level)
	s.Log.Format = getEnvString("LOG_FORMAT", s.Log.Format)
	s.Log.File = getEnvString("LOG_FILE", s.Log.File)
	return nil
}

// UseProvider switches to another provider and re-resolves its model and
// API key from the environment.
func (s *Settings) UseProvider(provider string) error {
	provider = normalizeProvider(provider)
	info, err := getProviderInfo(provider)
	if err != nil {
		return err
	}
	if provider == s.LLM.Provider {
		return nil
	}

	s.LLM.Provider = provider
	s.LLM.Model = firstNonEmpty(os.Getenv("MODEL_NAME"), os.Getenv(info.modelEnv), info.defaultModel)
	s.LLM.APIKey = os.Getenv(info.apiKeyEnv)
	s.LLM.BaseURL = os.Getenv("LLM_BASE_URL")
	return nil
}

// Validate rejects values no component can work with.
func (s Settings) Validate() error {
	if _, err := getProviderInfo(s.LLM.Provider); err != nil {
		return err
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Server.Port)
	}
	if s.Generation.ToolTimeoutSeconds <= 0 {
		return fmt.Errorf("tool timeout must be positive, got %d", s.Generation.ToolTimeoutSeconds)
	}
	if s.Generation.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent generations must be positive, got %d", s.Generation.MaxConcurrent)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %v", s.LLM.Temperature)
	}
	return nil
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// ModelFor returns the model for a provider, checking environment first.
func ModelFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	if val := os.Getenv(info.modelEnv); val != "" {
		return val, nil
	}
	return info.defaultModel, nil
}

// SupportedProviders returns the supported provider names, sorted.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}
