package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingCredential is returned when a required secret is not configured.
var ErrMissingCredential = errors.New("missing credential")

const (
	BrainModeOpenAI     = "openai"
	BrainModeAnthropic  = "anthropic"
	BrainModeOpenRouter = "openrouter"
	BrainModeHTTP       = "http"
	BrainModeMock       = "mock"
)

// Config contains all runtime settings for the bot process.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool

	LogLevel  string
	LogFormat string

	TelegramToken       string
	TelegramAPIBaseURL  string
	TelegramPollTimeout time.Duration
	TelegramMaxInFlight int

	BrainMode         string
	BrainAPIKey       string
	BrainBaseURL      string
	BrainModel        string
	BrainHTTPURL      string
	GenerationTimeout time.Duration

	BotName     string
	OwnerHandle string

	MemoryUserCap  int
	MemoryGroupCap int

	RulesFile  string
	RulesWatch bool

	GroupPlaceholder       bool
	VoiceSwitchProbability float64
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            bindAddr(),
		MetricsNamespace:    envOrDefault("APP_METRICS_NAMESPACE", "aanyaa"),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "text"),
		TelegramToken:       trimmedEnv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIBaseURL:  envOrDefault("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		TelegramPollTimeout: 30 * time.Second,
		TelegramMaxInFlight: 16,
		BrainMode:           strings.ToLower(envOrDefault("BRAIN_MODE", BrainModeOpenAI)),
		BrainAPIKey:         trimmedEnv("A4F_API_KEY"),
		// A4F exposes an OpenAI-compatible endpoint in front of Gemini.
		BrainBaseURL:      envOrDefault("BRAIN_BASE_URL", "https://api.a4f.co/v1"),
		BrainModel:        envOrDefault("BRAIN_MODEL", "provider-6/gemini-2.5-flash"),
		BrainHTTPURL:      trimmedEnv("BRAIN_HTTP_URL"),
		GenerationTimeout: 30 * time.Second,
		BotName:           envOrDefault("BOT_NAME", "Aanyaa"),
		OwnerHandle:       trimmedEnv("OWNER_HANDLE"),
		MemoryUserCap:     10,
		MemoryGroupCap:    20,
		RulesFile:         trimmedEnv("RULES_FILE"),
		ShutdownTimeout:   15 * time.Second,
	}

	var err error
	if cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", false); err != nil {
		return Config{}, err
	}
	if cfg.TelegramPollTimeout, err = durationFromEnv("TELEGRAM_POLL_TIMEOUT", cfg.TelegramPollTimeout); err != nil {
		return Config{}, err
	}
	if cfg.TelegramMaxInFlight, err = intFromEnv("TELEGRAM_MAX_IN_FLIGHT", cfg.TelegramMaxInFlight); err != nil {
		return Config{}, err
	}
	if cfg.GenerationTimeout, err = durationFromEnv("GENERATION_TIMEOUT", cfg.GenerationTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MemoryUserCap, err = intFromEnv("MEMORY_USER_CAP", cfg.MemoryUserCap); err != nil {
		return Config{}, err
	}
	if cfg.MemoryGroupCap, err = intFromEnv("MEMORY_GROUP_CAP", cfg.MemoryGroupCap); err != nil {
		return Config{}, err
	}
	if cfg.RulesWatch, err = boolFromEnv("RULES_WATCH", false); err != nil {
		return Config{}, err
	}
	if cfg.GroupPlaceholder, err = boolFromEnv("GROUP_PLACEHOLDER", false); err != nil {
		return Config{}, err
	}
	if cfg.VoiceSwitchProbability, err = floatFromEnv("VOICE_SWITCH_PROBABILITY", 0); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("%w: TELEGRAM_BOT_TOKEN required", ErrMissingCredential)
	}
	switch c.BrainMode {
	case BrainModeOpenAI, BrainModeAnthropic, BrainModeOpenRouter:
		if c.BrainAPIKey == "" {
			return fmt.Errorf("%w: A4F_API_KEY required for BRAIN_MODE=%s", ErrMissingCredential, c.BrainMode)
		}
	case BrainModeHTTP:
		if c.BrainHTTPURL == "" {
			return fmt.Errorf("BRAIN_HTTP_URL required for BRAIN_MODE=http")
		}
	case BrainModeMock:
	default:
		return fmt.Errorf("BRAIN_MODE must be one of openai, anthropic, openrouter, http, mock")
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if c.TelegramPollTimeout < 0 {
		return fmt.Errorf("TELEGRAM_POLL_TIMEOUT must be >= 0")
	}
	if c.TelegramMaxInFlight <= 0 {
		return fmt.Errorf("TELEGRAM_MAX_IN_FLIGHT must be positive")
	}
	if c.MemoryUserCap <= 0 {
		return fmt.Errorf("MEMORY_USER_CAP must be positive")
	}
	if c.MemoryGroupCap <= 0 {
		return fmt.Errorf("MEMORY_GROUP_CAP must be positive")
	}
	if c.VoiceSwitchProbability < 0 || c.VoiceSwitchProbability > 1 {
		return fmt.Errorf("VOICE_SWITCH_PROBABILITY must be within [0,1]")
	}
	return nil
}

// bindAddr prefers APP_BIND_ADDR and falls back to the hosting platform's PORT.
func bindAddr() string {
	if v := trimmedEnv("APP_BIND_ADDR"); v != "" {
		return v
	}
	return ":" + envOrDefault("PORT", "5000")
}

func envOrDefault(key, fallback string) string {
	v := trimmedEnv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
