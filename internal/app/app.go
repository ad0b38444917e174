// Package app assembles the portal's components from configuration.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/assist"
	"github.com/ppiankov/reliefdesk/internal/cache"
	"github.com/ppiankov/reliefdesk/internal/disburse"
	"github.com/ppiankov/reliefdesk/internal/llm"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/notify"
	"github.com/ppiankov/reliefdesk/internal/query"
	"github.com/ppiankov/reliefdesk/internal/registry"
	"github.com/ppiankov/reliefdesk/internal/store"
	"github.com/ppiankov/reliefdesk/internal/verify"
	"github.com/ppiankov/reliefdesk/internal/views"
	"github.com/ppiankov/reliefdesk/internal/worker"
)

// App holds one portal instance
type App struct {
	Config    *model.Config
	Logger    *zap.Logger
	Notices   *notify.Center
	Store     *store.Store
	Stubs     registry.Stubs
	Provider  llm.Provider // nil when AI is disabled
	Sequencer *verify.Sequencer
	Desk      *verify.Desk
	Batch     *verify.Batch
	Disburser *disburse.Disburser
	Panel     *assist.Panel
	Query     *query.Engine
	Format    *views.Formatter
}

// Option adjusts an App before its components are wired
type Option func(*options)

type options struct {
	stubs    *registry.Stubs
	provider llm.Provider
	override bool
	noSeed   bool
}

// WithStubs replaces the simulated integrations
func WithStubs(s registry.Stubs) Option {
	return func(o *options) { o.stubs = &s }
}

// WithProvider replaces the configured AI provider (nil disables AI)
func WithProvider(p llm.Provider) Option {
	return func(o *options) {
		o.provider = p
		o.override = true
	}
}

// WithoutSeed starts with an empty store
func WithoutSeed() Option {
	return func(o *options) { o.noSeed = true }
}

// New wires every component. The store is seeded with the demo records.
func New(cfg *model.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}

	a.Notices = notify.NewCenter(cfg.Notifications.TTL, cfg.Notifications.Capacity, logger.Named("notify"))
	a.Store = store.New(a.Notices, logger.Named("store"))
	if !o.noSeed {
		store.Seed(a.Store)
	}

	if o.stubs != nil {
		a.Stubs = *o.stubs
	} else {
		a.Stubs = registry.NewStubs(cfg.Stubs)
	}

	provider := o.provider
	if !o.override {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("configure AI provider: %w", err)
		}
		provider = p
	}

	var analyzer llm.Analyzer
	var advisor llm.Advisor
	if provider != nil {
		limited := llm.WithRateLimit(provider, worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst))
		a.Provider = limited
		advisor = limited
		analyzer = limited
		if ttl := cfg.LLM.AnalysisCacheTTL; ttl > 0 {
			var c cache.Cache = cache.NewMemoryCache(ttl, ttl)
			if dir := cfg.LLM.AnalysisCacheDir; dir != "" {
				c = cache.NewTiered(c, cache.NewDiskCache(dir, ttl))
			}
			analyzer = llm.NewCachedAnalyzer(limited, c, ttl)
		}
		logger.Info("AI provider configured", zap.String("provider", provider.Name()))
	} else {
		logger.Warn("AI provider disabled; semantic match and legal assistant will degrade")
	}

	bankDelay := cfg.Stubs.BankLinkDelay
	if bankDelay < 0 {
		bankDelay = 0
	}
	a.Sequencer = verify.NewSequencer(a.Stubs.Identity, a.Stubs.Bureau, analyzer, bankDelay, logger.Named("verify"))
	a.Desk = verify.NewDesk(a.Store, a.Sequencer, logger.Named("desk"))
	a.Batch = verify.NewBatch(a.Store, a.Sequencer, cfg.Concurrency.Workers, logger.Named("batch"))
	a.Disburser = disburse.New(a.Store, a.Stubs.Gateway, disburse.PolicyFromConfig(cfg.Disbursement), logger.Named("disburse"))
	a.Panel = assist.NewPanel(advisor, logger.Named("assist"))
	a.Format = views.NewFormatter(cfg.Output.Locale)

	q, err := query.NewEngine()
	if err != nil {
		return nil, err
	}
	a.Query = q

	return a, nil
}

// Instant returns configuration with every simulated delay removed
func Instant(cfg *model.Config) *model.Config {
	c := *cfg
	c.Stubs.IdentityLatency = 0
	c.Stubs.RecordLatency = 0
	c.Stubs.PaymentLatency = 0
	c.Stubs.BankLinkDelay = 0
	c.Disbursement.SettleDelay = 0
	c.Disbursement.BackoffBase = time.Millisecond
	c.Disbursement.BackoffMax = time.Millisecond
	return &c
}
