package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/reliefdesk/internal/model"
)

func TestParseVerification_Conforming(t *testing.T) {
	res, err := ParseVerification(`{"isVerified": true, "score": 91.6, "remarks": " ok ", "matchedFields": ["Identity", "Date"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Verified || res.Score != 92 || res.Remarks != "ok" {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(res.MatchedFields) != 2 {
		t.Errorf("expected 2 matched fields, got %v", res.MatchedFields)
	}
}

func TestParseVerification_CodeFence(t *testing.T) {
	text := "```json\n{\"isVerified\": false, \"score\": 10, \"remarks\": \"x\", \"matchedFields\": []}\n```"
	res, err := ParseVerification(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Verified || res.Score != 10 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestParseVerification_NonConforming(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "The claim looks fine."},
		{"missing field", `{"isVerified": true, "score": 80, "remarks": "ok"}`},
		{"wrong type", `{"isVerified": "yes", "score": 80, "remarks": "ok", "matchedFields": []}`},
		{"score out of range", `{"isVerified": true, "score": 180, "remarks": "ok", "matchedFields": []}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseVerification(tt.text)
			if !errors.Is(err, ErrNonConforming) {
				t.Fatalf("expected ErrNonConforming, got %v", err)
			}
			if res == nil || res.Verified || res.Score != 0 || res.Remarks != "" {
				t.Errorf("expected empty result, got %+v", res)
			}
		})
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	rec := &model.CrimeRecord{FIRID: "FIR/1", Narrative: "marketplace abuse"}
	prompt := BuildAnalysisPrompt(rec, "  I was abused  ")

	for _, want := range []string{`"firId":"FIR/1"`, "VICTIM STATEMENT: I was abused", "SC/ST Act 1989", "matchedFields"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if !strings.Contains(BuildAnalysisPrompt(nil, ""), "CCTNS RECORD: null") {
		t.Error("nil record should render as null")
	}
}

func TestFlattenTranscript(t *testing.T) {
	got := flattenTranscript([]model.Turn{
		{Role: model.RoleUser, Text: "hi"},
		{Role: model.RoleAI, Text: "hello"},
	})
	if got != "User: hi\n\nAssistant: hello" {
		t.Errorf("unexpected transcript: %q", got)
	}
}
