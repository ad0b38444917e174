// Package verify runs the four-step eligibility check for a claim and hosts
// the operator desk that drives it.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/llm"
	"github.com/ppiankov/reliefdesk/internal/metrics"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/registry"
	"github.com/ppiankov/reliefdesk/internal/worker"
)

var (
	// ErrIdentityRejected means the identity registry did not accept the number
	ErrIdentityRejected = errors.New("identity number rejected by registry")

	// ErrAnalyzerUnavailable means no AI provider is configured
	ErrAnalyzerUnavailable = errors.New("AI analysis unavailable")
)

// DefaultBankLinkDelay is the simulated PFMS bank-linkage check
const DefaultBankLinkDelay = 1000 * time.Millisecond

// Outcome is the final state of one sequencer run
type Outcome struct {
	Checklist model.Checklist
	Record    *model.CrimeRecord        // nil when no FIR was found
	Result    *model.VerificationResult // nil unless step 3 succeeded
	Err       error                     // cause of the failed step
}

// Completed reports whether all four steps succeeded
func (o Outcome) Completed() bool {
	return o.Err == nil && o.Checklist.Done()
}

// Sequencer runs identity, record, semantic and bank checks in strict order
type Sequencer struct {
	identity  registry.IdentityRegistry
	bureau    registry.RecordBureau
	analyzer  llm.Analyzer
	bankDelay time.Duration
	logger    *zap.Logger
}

// NewSequencer creates a sequencer. A nil analyzer makes step 3 fail with
// ErrAnalyzerUnavailable.
func NewSequencer(identity registry.IdentityRegistry, bureau registry.RecordBureau, analyzer llm.Analyzer, bankDelay time.Duration, logger *zap.Logger) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		identity:  identity,
		bureau:    bureau,
		analyzer:  analyzer,
		bankDelay: bankDelay,
		logger:    logger,
	}
}

// run tracks the checklist of a single invocation
type run struct {
	list    model.Checklist
	observe func(model.Checklist)
	started time.Time
}

func (r *run) notify() {
	if r.observe != nil {
		r.observe(r.list)
	}
}

func (r *run) begin(i int) {
	r.list[i].Status = model.StepRunning
	r.started = time.Now()
	r.notify()
}

func (r *run) finish(i int, err error) {
	status := model.StepSucceeded
	if err != nil {
		status = model.StepFailed
		r.list[i].Error = err.Error()
	}
	r.list[i].Status = status
	metrics.StepDuration.WithLabelValues(string(r.list[i].Label), string(status)).Observe(time.Since(r.started).Seconds())
	r.notify()
}

// Run verifies claim. observe, when non-nil, receives a checklist snapshot
// after every step transition. Run never changes the claim's status.
func (s *Sequencer) Run(ctx context.Context, claim model.Claim, observe func(model.Checklist)) Outcome {
	r := &run{list: model.NewChecklist(), observe: observe}
	log := s.logger.With(zap.String("claim_id", claim.ID))

	fail := func(i int, err error) Outcome {
		r.finish(i, err)
		recordRun(err)
		log.Info("verification stopped",
			zap.String("step", string(r.list[i].Label)),
			zap.Error(err))
		return Outcome{Checklist: r.list, Err: err}
	}

	// Step 1: identity
	r.begin(0)
	ok, err := s.identity.VerifyIdentity(ctx, claim.IdentityNumber)
	if err != nil {
		return fail(0, fmt.Errorf("identity check: %w", err))
	}
	if !ok {
		return fail(0, ErrIdentityRejected)
	}
	r.finish(0, nil)

	// Step 2: FIR lookup; a missing record is not a failure
	r.begin(1)
	record, err := s.bureau.LookupFIR(ctx, claim.FIRNumber)
	if err != nil {
		return fail(1, fmt.Errorf("record lookup: %w", err))
	}
	r.finish(1, nil)

	// Step 3: semantic match
	r.begin(2)
	if s.analyzer == nil {
		return fail(2, ErrAnalyzerUnavailable)
	}
	result, err := s.analyzer.Analyze(ctx, record, claim.Statement)
	switch {
	case err == nil:
	case llm.IsNonConforming(err):
		log.Warn("AI response did not conform to schema; treating as empty", zap.Error(err))
		result = &model.VerificationResult{MatchedFields: []string{}}
	default:
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		out := fail(2, fmt.Errorf("semantic match: %w", err))
		out.Record = record
		return out
	}
	if result == nil {
		result = &model.VerificationResult{MatchedFields: []string{}}
	}
	r.finish(2, nil)

	// Step 4: bank linkage
	r.begin(3)
	if err := worker.Sleep(ctx, s.bankDelay); err != nil {
		out := fail(3, fmt.Errorf("bank linkage: %w", err))
		out.Record = record
		return out
	}
	r.finish(3, nil)

	recordRun(nil)
	log.Debug("verification completed",
		zap.Bool("verified", result.Verified),
		zap.Int("score", result.Score))

	return Outcome{Checklist: r.list, Record: record, Result: result}
}

func recordRun(err error) {
	outcome := "completed"
	switch {
	case err == nil:
	case errors.Is(err, ErrIdentityRejected):
		outcome = "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	default:
		outcome = "failed"
	}
	metrics.VerificationRuns.WithLabelValues(outcome).Inc()
}
