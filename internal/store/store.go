// Package store is the in-memory application store: the single owner of
// claim records and grievance tickets for the lifetime of the process.
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/metrics"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/notify"
)

var (
	ErrDuplicateID       = errors.New("duplicate identifier")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrMissingField      = errors.New("missing required field")
	ErrNotFound          = errors.New("not found")
)

// Store holds claims and grievances, most recent first
type Store struct {
	mu         sync.RWMutex
	claims     []model.Claim
	grievances []model.Grievance
	notifier   notify.Notifier
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for generated dates
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store. A nil notifier discards notifications.
func New(notifier notify.Notifier, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit adds a claim to the front of the collection, generating an
// identifier when absent
func (s *Store) Submit(c model.Claim) (model.Claim, error) {
	s.mu.Lock()
	if c.ID == "" {
		id, err := uniqueID(NewClaimID, s.hasClaim)
		if err != nil {
			s.mu.Unlock()
			return model.Claim{}, err
		}
		c.ID = id
	} else if s.hasClaim(c.ID) {
		s.mu.Unlock()
		return model.Claim{}, fmt.Errorf("%w: claim %s", ErrDuplicateID, c.ID)
	}
	if c.Status == "" {
		c.Status = model.StatusPending
	}
	if c.AppliedDate == "" {
		c.AppliedDate = s.now().Format(time.DateOnly)
	}

	c = cloneClaim(c)
	s.claims = append([]model.Claim{c}, s.claims...)
	s.mu.Unlock()

	metrics.ClaimsSubmitted.WithLabelValues(string(c.CaseType)).Inc()
	s.logger.Info("claim submitted",
		zap.String("id", c.ID),
		zap.String("claimant", c.ClaimantID),
		zap.String("case_type", string(c.CaseType)))
	s.emit("Application Lodged! Ref: " + c.ID)

	return cloneClaim(c), nil
}

// SetStatus moves a claim to a new status. Unknown identifiers are ignored;
// transitions outside the lifecycle table are refused.
func (s *Store) SetStatus(id string, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	i := s.claimIndex(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("status update for unknown claim ignored", zap.String("id", id))
		return nil
	}
	from := s.claims[i].Status
	if !model.CanTransition(from, status) {
		s.mu.Unlock()
		metrics.StatusTransitions.WithLabelValues(string(status), "refused").Inc()
		return fmt.Errorf("%w: %s %s -> %s (allowed: %s)", ErrIllegalTransition, id, from, status, allowed(from))
	}
	s.claims[i].Status = status
	s.mu.Unlock()

	metrics.StatusTransitions.WithLabelValues(string(status), "applied").Inc()
	s.logger.Info("claim status changed",
		zap.String("id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)))
	s.emit(fmt.Sprintf("Status Change: %s is now %s", id, status))

	return nil
}

// List returns copies of the claims matching pred in collection order.
// A nil predicate matches everything.
func (s *Store) List(pred Predicate) []model.Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Claim, 0, len(s.claims))
	for _, c := range s.claims {
		if pred == nil || pred(c) {
			out = append(out, cloneClaim(c))
		}
	}
	return out
}

// Get returns a copy of a claim
func (s *Store) Get(id string) (model.Claim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.claimIndex(id)
	if i < 0 {
		return model.Claim{}, false
	}
	return cloneClaim(s.claims[i]), true
}

// AttachVerification records a verification result on a claim without
// changing its status
func (s *Store) AttachVerification(id string, result model.VerificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.claimIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: claim %s", ErrNotFound, id)
	}
	r := cloneResult(&result)
	s.claims[i].Verification = r
	return nil
}

// AttachTransfer records a payment receipt on a claim
func (s *Store) AttachTransfer(id string, receipt model.TransferReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.claimIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: claim %s", ErrNotFound, id)
	}
	s.claims[i].Transfer = &receipt
	return nil
}

// Len returns the number of claims
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}

// LodgeGrievance adds a ticket to the front of the grievance log
func (s *Store) LodgeGrievance(g model.Grievance) (model.Grievance, error) {
	if strings.TrimSpace(g.ClaimID) == "" {
		return model.Grievance{}, fmt.Errorf("%w: claim reference", ErrMissingField)
	}
	if strings.TrimSpace(g.Subject) == "" {
		return model.Grievance{}, fmt.Errorf("%w: subject", ErrMissingField)
	}

	s.mu.Lock()
	if g.ID == "" {
		id, err := uniqueID(NewGrievanceID, s.hasGrievance)
		if err != nil {
			s.mu.Unlock()
			return model.Grievance{}, err
		}
		g.ID = id
	} else if s.hasGrievance(g.ID) {
		s.mu.Unlock()
		return model.Grievance{}, fmt.Errorf("%w: grievance %s", ErrDuplicateID, g.ID)
	}
	if g.Status == "" {
		g.Status = model.GrievanceOpen
	}
	if g.CreatedAt == "" {
		g.CreatedAt = s.now().Format(time.DateOnly)
	}
	s.grievances = append([]model.Grievance{g}, s.grievances...)
	s.mu.Unlock()

	metrics.GrievancesLodged.Inc()
	s.logger.Info("grievance lodged", zap.String("id", g.ID), zap.String("claim", g.ClaimID))
	s.emit("Grievance Lodged! Ticket: " + g.ID)

	return g, nil
}

// SetGrievanceStatus moves a ticket to a new status
func (s *Store) SetGrievanceStatus(id string, status model.GrievanceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.grievances {
		if s.grievances[i].ID != id {
			continue
		}
		from := s.grievances[i].Status
		if !model.CanTransitionGrievance(from, status) {
			return fmt.Errorf("%w: %s %s -> %s", ErrIllegalTransition, id, from, status)
		}
		s.grievances[i].Status = status
		return nil
	}
	return fmt.Errorf("%w: grievance %s", ErrNotFound, id)
}

// Grievances returns the tickets matching pred, most recent first
func (s *Store) Grievances(pred GrievancePredicate) []model.Grievance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Grievance, 0, len(s.grievances))
	for _, g := range s.grievances {
		if pred == nil || pred(g) {
			out = append(out, g)
		}
	}
	return out
}

func (s *Store) emit(msg string) {
	if s.notifier != nil {
		s.notifier.Emit(msg)
	}
}

func (s *Store) claimIndex(id string) int {
	for i := range s.claims {
		if s.claims[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) hasClaim(id string) bool {
	return s.claimIndex(id) >= 0
}

func (s *Store) hasGrievance(id string) bool {
	for i := range s.grievances {
		if s.grievances[i].ID == id {
			return true
		}
	}
	return false
}

func cloneClaim(c model.Claim) model.Claim {
	c.Verification = cloneResult(c.Verification)
	if c.Transfer != nil {
		t := *c.Transfer
		c.Transfer = &t
	}
	return c
}

func cloneResult(r *model.VerificationResult) *model.VerificationResult {
	if r == nil {
		return nil
	}
	out := *r
	out.MatchedFields = append([]string(nil), r.MatchedFields...)
	return &out
}

func allowed(from model.Status) string {
	next := model.NextStatuses(from)
	if len(next) == 0 {
		return "none"
	}
	names := make([]string, len(next))
	for i, st := range next {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}
