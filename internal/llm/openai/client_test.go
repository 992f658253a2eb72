package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resume-bot/internal/llm"
)

var testModels = llm.Models{General: "gpt-4o", Small: "gpt-4o-mini"}

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	client, err := NewClient(url, "test-key", testModels, timeout, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGenerateSendsSystemAndUserMessages(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  {\"is_valid\": true}  "}}]}`))
	}))
	defer server.Close()

	out, err := newTestClient(t, server.URL+"/", 0).Generate(context.Background(), llm.TierSmall, "sys", "usr")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"is_valid": true}` {
		t.Fatalf("unexpected content %q", out)
	}
	if body["model"] != "gpt-4o-mini" {
		t.Fatalf("expected small model, got %v", body["model"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	first, _ := messages[0].(map[string]any)
	second, _ := messages[1].(map[string]any)
	if first["role"] != "system" || first["content"] != "sys" || second["role"] != "user" || second["content"] != "usr" {
		t.Fatalf("unexpected messages %v", messages)
	}
	if _, ok := body["temperature"]; !ok {
		t.Fatalf("expected temperature for non gpt-5 model")
	}
}

func TestGenerateOmitsTemperatureForGPT5(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "k", llm.Models{General: "gpt-5-mini"}, 0, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), llm.TierGeneral, "s", "u"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := body["temperature"]; ok {
		t.Fatalf("temperature must be omitted for gpt-5 models")
	}
}

func TestGenerateErrorsAreNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 0).Generate(context.Background(), llm.TierGeneral, "s", "u")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected provider error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 0).Generate(context.Background(), llm.TierGeneral, "s", "u")
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateMissingChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL, 0).Generate(context.Background(), llm.TierGeneral, "s", "u"); err == nil {
		t.Fatalf("expected error for missing choices")
	}
}

func TestGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := newTestClient(t, server.URL, 50*time.Millisecond).Generate(context.Background(), llm.TierGeneral, "s", "u")
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "", testModels, 0, nil); err == nil {
		t.Fatalf("expected error for missing key")
	}
	if _, err := NewClient("", "k", llm.Models{}, 0, nil); err == nil {
		t.Fatalf("expected error for missing model")
	}
	client, err := NewClient("", "k", testModels, 0, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Fatalf("unexpected default base url %q", client.baseURL)
	}
}
