// Package disburse releases sanctioned relief through the payment gateway.
package disburse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/metrics"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/registry"
	"github.com/ppiankov/reliefdesk/internal/store"
	"github.com/ppiankov/reliefdesk/internal/worker"
)

var (
	ErrNotSanctioned = errors.New("claim is not sanctioned")
	ErrInProgress    = errors.New("disbursement already in progress")
)

// Policy bounds how hard the gateway is retried
type Policy struct {
	Attempts       int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	SettleDelay    time.Duration // pause between receipt and DISBURSED
}

// PolicyFromConfig converts configuration to a policy
func PolicyFromConfig(cfg model.DisbursementConfig) Policy {
	return Policy{
		Attempts:       cfg.Attempts,
		AttemptTimeout: cfg.AttemptTimeout,
		BackoffBase:    cfg.BackoffBase,
		BackoffMax:     cfg.BackoffMax,
		SettleDelay:    cfg.SettleDelay,
	}
}

// backoff returns the wait before attempt n+1 (n starts at 1)
func (p Policy) backoff(n int) time.Duration {
	d := p.BackoffBase << (n - 1)
	if p.BackoffMax > 0 && (d > p.BackoffMax || d <= 0) {
		d = p.BackoffMax
	}
	return d
}

// Disburser moves SANCTIONED claims to DISBURSED
type Disburser struct {
	store   *store.Store
	gateway registry.PaymentGateway
	policy  Policy
	logger  *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a disburser
func New(s *store.Store, gateway registry.PaymentGateway, policy Policy, logger *zap.Logger) *Disburser {
	if policy.Attempts <= 0 {
		policy.Attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Disburser{
		store:    s,
		gateway:  gateway,
		policy:   policy,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Disburse transfers the claim amount and marks the claim DISBURSED once the
// settle delay has passed. After the gateway has paid, the claim is settled
// even if ctx is cancelled.
func (d *Disburser) Disburse(ctx context.Context, id string) (*model.TransferReceipt, error) {
	if !d.acquire(id) {
		return nil, fmt.Errorf("disburse %s: %w", id, ErrInProgress)
	}
	defer d.release(id)

	// status is read while the in-flight guard is held
	claim, ok := d.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("disburse %s: %w", id, store.ErrNotFound)
	}
	if claim.Status != model.StatusSanctioned {
		return nil, fmt.Errorf("disburse %s (%s): %w", id, claim.Status, ErrNotSanctioned)
	}

	log := d.logger.With(zap.String("claim_id", id), zap.Int64("amount", claim.Amount))

	receipt, err := d.transfer(ctx, claim, log)
	if err != nil {
		metrics.Disbursements.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := d.settle(context.WithoutCancel(ctx), id, *receipt); err != nil {
		metrics.Disbursements.WithLabelValues("failed").Inc()
		log.Error("paid claim not settled", zap.String("utr", receipt.UTR), zap.Error(err))
		return nil, err
	}

	metrics.Disbursements.WithLabelValues("success").Inc()
	log.Info("relief disbursed", zap.String("utr", receipt.UTR))
	return receipt, nil
}

// settle records the receipt and moves the claim to DISBURSED after the
// settle delay
func (d *Disburser) settle(ctx context.Context, id string, receipt model.TransferReceipt) error {
	if err := d.store.AttachTransfer(id, receipt); err != nil {
		return fmt.Errorf("disburse %s: %w", id, err)
	}
	if err := worker.Sleep(ctx, d.policy.SettleDelay); err != nil {
		return fmt.Errorf("disburse %s: settle: %w", id, err)
	}
	if err := d.store.SetStatus(id, model.StatusDisbursed); err != nil {
		return fmt.Errorf("disburse %s: %w", id, err)
	}
	return nil
}

func (d *Disburser) transfer(ctx context.Context, claim model.Claim, log *zap.Logger) (*model.TransferReceipt, error) {
	var lastErr error
	for attempt := 1; attempt <= d.policy.Attempts; attempt++ {
		receipt, err := d.attempt(ctx, claim)
		if err == nil {
			return receipt, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		log.Warn("transfer attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt < d.policy.Attempts {
			if err := worker.Sleep(ctx, d.policy.backoff(attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}
	return nil, fmt.Errorf("disburse %s: transfer failed: %w", claim.ID, lastErr)
}

func (d *Disburser) attempt(ctx context.Context, claim model.Claim) (*model.TransferReceipt, error) {
	if d.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.policy.AttemptTimeout)
		defer cancel()
	}
	return d.gateway.Transfer(ctx, claim.ID, claim.Amount)
}

func (d *Disburser) acquire(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inflight[id]; busy {
		return false
	}
	d.inflight[id] = struct{}{}
	return true
}

func (d *Disburser) release(id string) {
	d.mu.Lock()
	delete(d.inflight, id)
	d.mu.Unlock()
}
