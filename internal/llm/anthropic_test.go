package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/reliefdesk/internal/model"
)

func TestAnthropic_Converse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !strings.Contains(req.System, "Justice Aide") {
			t.Errorf("unexpected system prompt: %q", req.System)
		}
		if len(req.Messages) != 3 || req.Messages[1].Role != "assistant" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"  Section 15A applies.  "}]}`))
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	history := []model.Turn{
		{Role: model.RoleUser, Text: "hi"},
		{Role: model.RoleAI, Text: "hello"},
	}
	got, err := p.Converse(context.Background(), history, "rights?")
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got != "Section 15A applies." {
		t.Errorf("unexpected answer: %q", got)
	}
}

func TestAnthropic_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider(Config{APIKey: "bad", BaseURL: server.URL})
	_, err := p.Analyze(context.Background(), nil, "statement")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "authentication_error") {
		t.Errorf("unexpected error: %v", err)
	}
	if IsNonConforming(err) {
		t.Error("transport errors must not be reported as non-conforming")
	}
	if p.IsAvailable(context.Background()) {
		t.Error("expected provider to be unavailable")
	}
}
