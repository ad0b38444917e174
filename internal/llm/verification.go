package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ppiankov/reliefdesk/internal/model"
)

// ErrNonConforming is returned when a provider answer does not match the
// verification-result schema. Callers treat the result as empty.
var ErrNonConforming = errors.New("response does not conform to verification schema")

const verificationSchemaURL = "https://reliefdesk.schemas.local/verification-result.schema.json"

// VerificationSchema is the JSON Schema every analysis answer must satisfy
const VerificationSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "isVerified": {"type": "boolean"},
    "score": {"type": "number", "minimum": 0, "maximum": 100},
    "remarks": {"type": "string"},
    "matchedFields": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["isVerified", "score", "remarks", "matchedFields"]
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func verificationSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(verificationSchemaURL, strings.NewReader(VerificationSchema)); err != nil {
			schemaErr = fmt.Errorf("verification schema load failed: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(verificationSchemaURL)
	})
	return compiledSchema, schemaErr
}

// ParseVerification validates a raw provider answer and converts it to a
// result. Markdown code fences around the JSON are tolerated. A
// non-conforming answer yields an empty result and ErrNonConforming.
func ParseVerification(text string) (*model.VerificationResult, error) {
	schema, err := verificationSchema()
	if err != nil {
		return nil, err
	}

	body := stripFences(text)

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return &model.VerificationResult{}, fmt.Errorf("%w: %v", ErrNonConforming, err)
	}
	if err := schema.Validate(doc); err != nil {
		return &model.VerificationResult{}, fmt.Errorf("%w: %v", ErrNonConforming, err)
	}

	var raw struct {
		Verified      bool     `json:"isVerified"`
		Score         float64  `json:"score"`
		Remarks       string   `json:"remarks"`
		MatchedFields []string `json:"matchedFields"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return &model.VerificationResult{}, fmt.Errorf("%w: %v", ErrNonConforming, err)
	}

	fields := raw.MatchedFields
	if fields == nil {
		fields = []string{}
	}

	return &model.VerificationResult{
		Verified:      raw.Verified,
		Score:         int(math.Round(raw.Score)),
		Remarks:       strings.TrimSpace(raw.Remarks),
		MatchedFields: fields,
	}, nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
