// Package brain turns an assembled prompt into reply text.
package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 30 * time.Second

// Generator produces a completion for one prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Config controls generator construction.
type Config struct {
	Mode    string
	APIKey  string
	BaseURL string
	Model   string
	HTTPURL string
}

// NewGenerator builds the generator for cfg.Mode. Callers bound each call
// with their own deadline, DefaultTimeout unless configured.
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "openai"
	}

	switch mode {
	case "openai", "anthropic", "openrouter":
		fg, err := NewFantasyGenerator(ctx, FantasyConfig{
			Provider: mode,
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		return fg, nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("brain HTTP url is required for http mode")
		}
		return NewHTTPGenerator(cfg.HTTPURL, cfg.Model), nil
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported brain mode %q", cfg.Mode)
	}
}
