package brain

import (
	"context"
	"strings"
)

// MockGenerator answers deterministically from the last line of the prompt.
// It is meant for local runs without an API key.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	said := ""
	for _, line := range strings.Split(prompt, "\n") {
		if i := strings.Index(line, " says: "); i >= 0 && strings.HasPrefix(line, "User ") {
			said = strings.TrimSpace(line[i+len(" says: "):])
		}
	}
	if said == "" {
		return "hehe I'm listening 😊", nil
	}
	return "You said: " + said + " hehe 😊", nil
}
