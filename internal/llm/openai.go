package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/reliefdesk/internal/model"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Transport: config.transport()}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Analyze runs the semantic match in JSON-object mode
func (p *OpenAIProvider) Analyze(ctx context.Context, record *model.CrimeRecord, statement string) (*model.VerificationResult, error) {
	return analyzeWith(ctx, p, record, statement)
}

// Converse answers a legal-rights question with the full transcript
func (p *OpenAIProvider) Converse(ctx context.Context, history []model.Turn, query string) (string, error) {
	return converseWith(ctx, p, history, query)
}

func (p *OpenAIProvider) complete(ctx context.Context, req completion) (string, error) {
	modelName := p.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == model.RoleAI {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    msgs,
		MaxTokens:   p.config.maxTokens(),
		Temperature: 0.3,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
