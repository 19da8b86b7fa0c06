package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnquangdev/meeting-copilot/pkg/config"
)

func TestGroqGenerate_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Model != "llama" || len(payload.Messages) != 1 || payload.Messages[0].Content != "summarize" {
			t.Fatalf("unexpected payload %+v", payload)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": "done"}}},
		})
	}))
	defer ts.Close()

	client := NewGroqClient(&config.GroqConfig{APIKey: "test-key", Model: "llama", BaseURL: ts.URL})
	got, err := client.Generate(context.Background(), "summarize", GenerateOptions{Temperature: 0.2})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got != "done" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestGroqGenerate_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer ts.Close()

	client := NewGroqClient(&config.GroqConfig{APIKey: "k", BaseURL: ts.URL})
	_, err := client.Generate(context.Background(), "x", GenerateOptions{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 APIError got %v", err)
	}
	if !IsQuotaError(err) {
		t.Fatalf("expected quota classification")
	}
}

func TestNewTextGenerator_RequiresKey(t *testing.T) {
	if _, err := NewTextGenerator(&config.AIConfig{Provider: "gemini"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey got %v", err)
	}
	gen, err := NewTextGenerator(&config.AIConfig{Provider: "groq", Groq: config.GroqConfig{APIKey: "k"}})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if _, ok := gen.(*GroqClient); !ok {
		t.Fatalf("expected groq client got %T", gen)
	}
}
