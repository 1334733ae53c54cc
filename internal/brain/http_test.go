package brain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPGeneratorJSONResponse(t *testing.T) {
	var got httpRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"hi Asha 🌸"}`))
	}))
	defer srv.Close()

	text, err := NewHTTPGenerator(srv.URL, "m1").Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "hi Asha 🌸" {
		t.Fatalf("Generate() = %q, want %q", text, "hi Asha 🌸")
	}
	if got.Prompt != "hello" || got.Model != "m1" {
		t.Fatalf("request = %+v", got)
	}
}

func TestHTTPGeneratorPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("  just text \n"))
	}))
	defer srv.Close()

	text, err := NewHTTPGenerator(srv.URL, "").Generate(context.Background(), "x")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "just text" {
		t.Fatalf("Generate() = %q", text)
	}
}

func TestHTTPGeneratorStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPGenerator(srv.URL, "").Generate(context.Background(), "x")
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Generate() error = %v, want HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("StatusCode = %d, want 429", statusErr.StatusCode)
	}
}

func TestConsumeStreamingSSE(t *testing.T) {
	stream := strings.NewReader(strings.Join([]string{
		": keepalive",
		"",
		"data: {\"delta\":\"Hel\"}",
		"",
		"data: {\"delta\":\"lo\"}",
		"",
		"data: [DONE]",
		"",
	}, "\n"))

	text, err := consumeStreaming(stream)
	if err != nil {
		t.Fatalf("consumeStreaming() error = %v", err)
	}
	if text != "Hello" {
		t.Fatalf("consumeStreaming() = %q, want %q", text, "Hello")
	}
}

func TestConsumeStreamingNDJSON(t *testing.T) {
	stream := strings.NewReader("{\"text\":\"Hi\"}\n{\"text\":\" there\"}\n")
	text, err := consumeStreaming(stream)
	if err != nil {
		t.Fatalf("consumeStreaming() error = %v", err)
	}
	if text != "Hi there" {
		t.Fatalf("consumeStreaming() = %q, want %q", text, "Hi there")
	}
}
