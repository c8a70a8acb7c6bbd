package ai_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/forgeflow/internal/domain/ai"
	infraAI "github.com/felixgeelhaar/forgeflow/internal/infrastructure/ai"
)

func TestAnthropicProvider_Basic(t *testing.T) {
	p := infraAI.NewAnthropicProvider("", "key")
	if p.ID() != "anthropic:claude-sonnet-4-20250514" {
		t.Errorf("unexpected default model id: %s", p.ID())
	}
}

func TestAnthropicProvider_MissingKey(t *testing.T) {
	p := infraAI.NewAnthropicProvider("claude-sonnet-4-20250514", "")
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "hi"}); err == nil {
		t.Error("expected error without an API key")
	}
}

func TestAnthropicProvider_StitchesContentBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"content": [{"type": "text", "text": "part one "}, {"type": "text", "text": "part two"}],
			"usage": {"input_tokens": 12, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	p := infraAI.NewAnthropicProvider("claude-sonnet-4-20250514", "key")
	p.BaseURL = srv.URL

	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "hi", MaxTokens: 100})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "part one part two" {
		t.Errorf("expected stitched text, got %q", resp.Text)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 4 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestAnthropicProvider_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	p := infraAI.NewAnthropicProvider("claude-sonnet-4-20250514", "key")
	p.BaseURL = srv.URL

	_, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected API error")
	}
	if got := err.Error(); got != "anthropic API error: rate limited" {
		t.Errorf("expected upstream message in error, got %q", got)
	}
}

func TestAnthropicProvider_Temp(t *testing.T) {
	p := infraAI.NewAnthropicProvider("claude-sonnet-4-20250514", "key")
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Temperature: -1}); err == nil {
		t.Error("expected error for negative temp")
	}
}
