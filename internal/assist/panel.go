// Package assist implements the legal-assistant conversation panel.
package assist

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/llm"
	"github.com/ppiankov/reliefdesk/internal/metrics"
	"github.com/ppiankov/reliefdesk/internal/model"
)

// Fallback replies shown in place of an AI answer
const (
	EmptyReplyFallback = "I am having trouble accessing legal records. Please try again later."
	ErrorFallback      = "Connection to JusticeStream AI failed. Please check your internet."
)

// Greeting is shown before the first query
const Greeting = "Namaste! I am your Justice Aide. I can help you understand your rights under the PCR Act 1955 and PoA Act 1989. How can I help you today?"

// Panel is a single conversation with the legal assistant. At most one
// query is in flight at a time.
type Panel struct {
	advisor llm.Advisor
	logger  *zap.Logger

	mu         sync.Mutex
	transcript []model.Turn
	busy       bool
}

// NewPanel creates a panel with an empty transcript. A nil advisor always
// yields ErrorFallback.
func NewPanel(advisor llm.Advisor, logger *zap.Logger) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		advisor: advisor,
		logger:  logger,
	}
}

// Send submits a query. It reports false without changing anything when the
// query is blank or another query is in flight. Failures surface as
// fallback replies in the transcript, never as errors.
func (p *Panel) Send(ctx context.Context, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return false
	}
	p.busy = true
	history := append([]model.Turn(nil), p.transcript...)
	p.transcript = append(p.transcript, model.Turn{Role: model.RoleUser, Text: query})
	p.mu.Unlock()

	reply, source := p.ask(ctx, history, query)
	metrics.AssistantMessages.WithLabelValues(source).Inc()

	p.mu.Lock()
	p.transcript = append(p.transcript, model.Turn{Role: model.RoleAI, Text: reply})
	p.busy = false
	p.mu.Unlock()

	return true
}

func (p *Panel) ask(ctx context.Context, history []model.Turn, query string) (string, string) {
	if p.advisor == nil {
		return ErrorFallback, "fallback"
	}

	reply, err := p.advisor.Converse(ctx, history, query)
	if err != nil {
		p.logger.Warn("legal assistant request failed", zap.Error(err))
		return ErrorFallback, "fallback"
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return EmptyReplyFallback, "fallback"
	}
	return reply, "provider"
}

// Transcript returns a copy of the conversation, oldest first
func (p *Panel) Transcript() []model.Turn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Turn(nil), p.transcript...)
}

// Busy reports whether a query is in flight
func (p *Panel) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}
