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

func TestGemini_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		cfg, _ := body["generationConfig"].(map[string]any)
		if cfg["responseMimeType"] != "application/json" {
			t.Errorf("expected JSON mime type, got %v", cfg["responseMimeType"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"isVerified\":true,\"score\":94,\"remarks\":\"High semantic alignment\",\"matchedFields\":[\"Identity\",\"Date\"]}"}]}}]}`))
	}))
	defer server.Close()

	p, err := NewGeminiProvider(Config{APIKey: "test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}

	res, err := p.Analyze(context.Background(), &model.CrimeRecord{FIRID: "FIR/1"}, "statement")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.Verified || res.Score != 94 || len(res.MatchedFields) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestGemini_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(Config{}); err == nil {
		t.Error("expected error without API key")
	}
}
