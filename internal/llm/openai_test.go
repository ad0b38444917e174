package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/reliefdesk/internal/model"
)

func openAIServer(t *testing.T, content string, inspect func(openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(req)
		}

		resp := openai.ChatCompletionResponse{
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAI_Analyze(t *testing.T) {
	server := openAIServer(t, `{"isVerified": true, "score": 88, "remarks": "consistent", "matchedFields": ["Identity"]}`,
		func(req openai.ChatCompletionRequest) {
			if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
				t.Error("expected JSON response format")
			}
			if req.Messages[0].Role != openai.ChatMessageRoleSystem {
				t.Errorf("first message should be system, got %s", req.Messages[0].Role)
			}
		})
	defer server.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}

	res, err := p.Analyze(context.Background(), &model.CrimeRecord{FIRID: "FIR/1"}, "statement")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.Verified || res.Score != 88 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestOpenAI_AnalyzeNonConforming(t *testing.T) {
	server := openAIServer(t, "I cannot answer that.", nil)
	defer server.Close()

	p, _ := NewOpenAIProvider(Config{APIKey: "test", BaseURL: server.URL})
	res, err := p.Analyze(context.Background(), nil, "statement")
	if !IsNonConforming(err) {
		t.Fatalf("expected non-conforming error, got %v", err)
	}
	if res == nil || res.Score != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestOpenAI_ConverseSendsHistory(t *testing.T) {
	server := openAIServer(t, "You are entitled to relief.", func(req openai.ChatCompletionRequest) {
		if len(req.Messages) != 4 {
			t.Fatalf("expected system + 2 history + query, got %d messages", len(req.Messages))
		}
		if req.Messages[2].Role != openai.ChatMessageRoleAssistant {
			t.Errorf("ai turn should map to assistant, got %s", req.Messages[2].Role)
		}
		if req.Messages[3].Content != "What next?" {
			t.Errorf("unexpected last message: %q", req.Messages[3].Content)
		}
		if req.ResponseFormat != nil {
			t.Error("conversation should not request JSON")
		}
	})
	defer server.Close()

	p, _ := NewOpenAIProvider(Config{APIKey: "test", BaseURL: server.URL})
	history := []model.Turn{
		{Role: model.RoleUser, Text: "I was assaulted."},
		{Role: model.RoleAI, Text: "I am sorry to hear that."},
	}

	got, err := p.Converse(context.Background(), history, "What next?")
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if got != "You are entitled to relief." {
		t.Errorf("unexpected answer: %q", got)
	}
}

func TestOpenAI_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("expected error without API key")
	}
}
