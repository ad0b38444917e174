package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ppiankov/reliefdesk/internal/cache"
	"github.com/ppiankov/reliefdesk/internal/metrics"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/worker"
)

// RateLimited throttles every call to the wrapped provider through a shared
// per-provider token bucket
type RateLimited struct {
	Provider
	limiter *worker.Limiter
}

// WithRateLimit wraps p so each call first waits on limiter
func WithRateLimit(p Provider, limiter *worker.Limiter) *RateLimited {
	return &RateLimited{Provider: p, limiter: limiter}
}

// wait takes a token immediately when one is free and otherwise blocks,
// counting the call as throttled
func (r *RateLimited) wait(ctx context.Context) error {
	if r.limiter.Allow(r.Name()) {
		return nil
	}
	metrics.AIThrottled.WithLabelValues(r.Name()).Inc()
	return r.limiter.Wait(ctx, r.Name())
}

// Analyze waits for rate-limit clearance, then delegates
func (r *RateLimited) Analyze(ctx context.Context, record *model.CrimeRecord, statement string) (*model.VerificationResult, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.Provider.Analyze(ctx, record, statement)
}

// Converse waits for rate-limit clearance, then delegates
func (r *RateLimited) Converse(ctx context.Context, history []model.Turn, query string) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.Provider.Converse(ctx, history, query)
}

// CachedAnalyzer memoises conforming analysis results keyed by the record
// and statement. Failures and non-conforming answers are never cached.
type CachedAnalyzer struct {
	next  Analyzer
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedAnalyzer wraps next with c
func NewCachedAnalyzer(next Analyzer, c cache.Cache, ttl time.Duration) *CachedAnalyzer {
	return &CachedAnalyzer{next: next, cache: c, ttl: ttl}
}

// Analyze returns a cached result when one exists
func (c *CachedAnalyzer) Analyze(ctx context.Context, record *model.CrimeRecord, statement string) (*model.VerificationResult, error) {
	key := analysisKey(record, statement)

	if data, ok := c.cache.Get(key); ok {
		var res model.VerificationResult
		if err := json.Unmarshal(data, &res); err == nil {
			return &res, nil
		}
		_ = c.cache.Delete(key)
	}

	res, err := c.next.Analyze(ctx, record, statement)
	if err != nil {
		return res, err
	}

	if data, mErr := json.Marshal(res); mErr == nil {
		_ = c.cache.Set(key, data, c.ttl)
	}
	return res, nil
}

func analysisKey(record *model.CrimeRecord, statement string) string {
	rec := "null"
	if record != nil {
		if b, err := json.Marshal(record); err == nil {
			rec = string(b)
		}
	}
	return cache.Key("analysis", rec, statement)
}

// IsNonConforming reports whether err marks a schema-violating answer
func IsNonConforming(err error) bool {
	return errors.Is(err, ErrNonConforming)
}
