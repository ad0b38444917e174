package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/util"
)

// Analyzer performs the semantic match between an FIR record and a statement
type Analyzer interface {
	// Analyze compares the record with the claimant's statement. A nil record
	// means no FIR could be retrieved.
	Analyze(ctx context.Context, record *model.CrimeRecord, statement string) (*model.VerificationResult, error)
}

// Advisor answers legal-rights questions in a conversation
type Advisor interface {
	// Converse answers query given the prior transcript (oldest first)
	Converse(ctx context.Context, history []model.Turn, query string) (string, error)
}

// Provider is a configured AI backend offering both capabilities
type Provider interface {
	Analyzer
	Advisor

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "anthropic", "ollama", "offline", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, test servers)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings. NoProxy uses NO_PROXY syntax.
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1000,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// transport routes provider traffic through the configured proxies
func (c Config) transport() *http.Transport {
	return &http.Transport{Proxy: util.NewProxyFunc(c.HTTPProxy, c.HTTPSProxy, c.NoProxy)}
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 1000
	}
	return c.MaxTokens
}

// completion is a provider-neutral chat request
type completion struct {
	System   string
	Messages []model.Turn
	JSON     bool // Ask for a verification-result JSON object
}

// completer is implemented by every remote provider
type completer interface {
	complete(ctx context.Context, req completion) (string, error)
}

func analyzeWith(ctx context.Context, c completer, record *model.CrimeRecord, statement string) (*model.VerificationResult, error) {
	text, err := c.complete(ctx, completion{
		System:   AnalysisSystemPrompt,
		Messages: []model.Turn{{Role: model.RoleUser, Text: BuildAnalysisPrompt(record, statement)}},
		JSON:     true,
	})
	if err != nil {
		return nil, err
	}
	return ParseVerification(text)
}

func converseWith(ctx context.Context, c completer, history []model.Turn, query string) (string, error) {
	msgs := make([]model.Turn, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, model.Turn{Role: model.RoleUser, Text: query})

	return c.complete(ctx, completion{
		System:   GuidanceSystemPrompt,
		Messages: msgs,
	})
}
