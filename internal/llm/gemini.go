package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/ppiankov/reliefdesk/internal/model"
)

const defaultGeminiModel = "gemini-3-flash-preview"

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	model  string
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: config.transport()},
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimSuffix(config.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	name := config.Model
	if name == "" {
		name = defaultGeminiModel
	}

	return &GeminiProvider{client: client, model: name, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks that the configured model can be resolved
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Models.Get(ctx, p.model, nil)
	return err == nil
}

// Analyze runs the semantic match with a schema-constrained JSON response
func (p *GeminiProvider) Analyze(ctx context.Context, record *model.CrimeRecord, statement string) (*model.VerificationResult, error) {
	return analyzeWith(ctx, p, record, statement)
}

// Converse answers a legal-rights question with the full transcript
func (p *GeminiProvider) Converse(ctx context.Context, history []model.Turn, query string) (string, error) {
	return converseWith(ctx, p, history, query)
}

func (p *GeminiProvider) complete(ctx context.Context, req completion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == model.RoleAI {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		MaxOutputTokens:   int32(p.config.maxTokens()),
		Temperature:       genai.Ptr[float32](0.3),
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = geminiVerificationSchema()
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no content in gemini response")
	}
	return text, nil
}

func geminiVerificationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"isVerified":    {Type: genai.TypeBoolean},
			"score":         {Type: genai.TypeNumber, Description: "Confidence score 0-100"},
			"remarks":       {Type: genai.TypeString},
			"matchedFields": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"isVerified", "score", "remarks", "matchedFields"},
	}
}
