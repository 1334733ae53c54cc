package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("A4F_API_KEY", "ddc-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":5000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":5000")
	}
	if cfg.BrainMode != BrainModeOpenAI {
		t.Fatalf("BrainMode = %q, want %q", cfg.BrainMode, BrainModeOpenAI)
	}
	if cfg.BrainBaseURL != "https://api.a4f.co/v1" {
		t.Fatalf("BrainBaseURL = %q, want a4f default", cfg.BrainBaseURL)
	}
	if cfg.GenerationTimeout != 30*time.Second {
		t.Fatalf("GenerationTimeout = %v, want 30s", cfg.GenerationTimeout)
	}
	if cfg.MemoryUserCap != 10 || cfg.MemoryGroupCap != 20 {
		t.Fatalf("caps = %d/%d, want 10/20", cfg.MemoryUserCap, cfg.MemoryGroupCap)
	}
	if cfg.BotName != "Aanyaa" {
		t.Fatalf("BotName = %q, want Aanyaa", cfg.BotName)
	}
	if cfg.VoiceSwitchProbability != 0 {
		t.Fatalf("VoiceSwitchProbability = %v, want 0", cfg.VoiceSwitchProbability)
	}
}

func TestLoadBindAddrPrecedence(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BRAIN_MODE", "mock")
	t.Setenv("PORT", "10000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":10000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":10000")
	}

	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9090")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9090" {
		t.Fatalf("BindAddr = %q, want explicit value", cfg.BindAddr)
	}
}

func TestLoadMissingTelegramToken(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("A4F_API_KEY", "ddc-key")

	_, err := Load()
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("Load() error = %v, want ErrMissingCredential", err)
	}
	if !strings.Contains(err.Error(), "TELEGRAM_BOT_TOKEN") {
		t.Fatalf("error %q does not name the key", err)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	_, err := Load()
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("Load() error = %v, want ErrMissingCredential", err)
	}
	if !strings.Contains(err.Error(), "A4F_API_KEY") {
		t.Fatalf("error %q does not name the key", err)
	}
}

func TestLoadMockModeNeedsNoAPIKey(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BRAIN_MODE", "MOCK")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BrainMode != BrainModeMock {
		t.Fatalf("BrainMode = %q, want mock", cfg.BrainMode)
	}
}

func TestLoadHTTPModeNeedsURL(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BRAIN_MODE", "http")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want BRAIN_HTTP_URL error")
	}
	t.Setenv("BRAIN_HTTP_URL", "http://localhost:8787/generate")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"GENERATION_TIMEOUT":       "soon",
		"MEMORY_USER_CAP":          "0",
		"MEMORY_GROUP_CAP":         "-1",
		"VOICE_SWITCH_PROBABILITY": "1.5",
		"TELEGRAM_MAX_IN_FLIGHT":   "0",
		"GROUP_PLACEHOLDER":        "maybe",
		"BRAIN_MODE":               "oracle",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
			t.Setenv("A4F_API_KEY", "ddc-key")
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%q error = nil, want error", key, value)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("A4F_API_KEY", "ddc-key")
	t.Setenv("OWNER_HANDLE", "@Arin")
	t.Setenv("GROUP_PLACEHOLDER", "yes")
	t.Setenv("VOICE_SWITCH_PROBABILITY", "0.3")
	t.Setenv("MEMORY_USER_CAP", "15")
	t.Setenv("MEMORY_GROUP_CAP", "25")
	t.Setenv("GENERATION_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OwnerHandle != "@Arin" {
		t.Fatalf("OwnerHandle = %q, want %q", cfg.OwnerHandle, "@Arin")
	}
	if !cfg.GroupPlaceholder {
		t.Fatalf("GroupPlaceholder = false, want true")
	}
	if cfg.VoiceSwitchProbability != 0.3 {
		t.Fatalf("VoiceSwitchProbability = %v, want 0.3", cfg.VoiceSwitchProbability)
	}
	if cfg.MemoryUserCap != 15 || cfg.MemoryGroupCap != 25 {
		t.Fatalf("caps = %d/%d, want 15/25", cfg.MemoryUserCap, cfg.MemoryGroupCap)
	}
	if cfg.GenerationTimeout != 10*time.Second {
		t.Fatalf("GenerationTimeout = %v, want 10s", cfg.GenerationTimeout)
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"PORT",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"TELEGRAM_BOT_TOKEN",
		"TELEGRAM_API_BASE_URL",
		"TELEGRAM_POLL_TIMEOUT",
		"TELEGRAM_MAX_IN_FLIGHT",
		"BRAIN_MODE",
		"A4F_API_KEY",
		"BRAIN_BASE_URL",
		"BRAIN_MODEL",
		"BRAIN_HTTP_URL",
		"GENERATION_TIMEOUT",
		"BOT_NAME",
		"OWNER_HANDLE",
		"MEMORY_USER_CAP",
		"MEMORY_GROUP_CAP",
		"RULES_FILE",
		"RULES_WATCH",
		"GROUP_PLACEHOLDER",
		"VOICE_SWITCH_PROBABILITY",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
