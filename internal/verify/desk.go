package verify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/store"
)

var (
	ErrNoSelection = errors.New("no claim selected")
	ErrBusy        = errors.New("verification already running")
	ErrStale       = errors.New("selection changed during verification")
)

// DeskState is a snapshot of the operator workspace
type DeskState struct {
	ClaimID    string                    `json:"claim_id,omitempty"`
	Generation uint64                    `json:"generation"`
	Running    bool                      `json:"running"`
	Checklist  model.Checklist           `json:"checklist"`
	Result     *model.VerificationResult `json:"result,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

// Desk is the officer's verification workspace. Every selection bumps a
// generation counter; updates from a run started under an older generation
// are dropped.
type Desk struct {
	store  *store.Store
	seq    *Sequencer
	logger *zap.Logger

	mu    sync.Mutex
	state DeskState
}

// NewDesk creates an empty desk
func NewDesk(s *store.Store, seq *Sequencer, logger *zap.Logger) *Desk {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Desk{
		store:  s,
		seq:    seq,
		logger: logger,
		state:  DeskState{Checklist: model.NewChecklist()},
	}
}

// Select makes id the active claim and resets the checklist
func (d *Desk) Select(id string) (DeskState, error) {
	if _, ok := d.store.Get(id); !ok {
		return DeskState{}, fmt.Errorf("select %s: %w", id, store.ErrNotFound)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = DeskState{
		ClaimID:    id,
		Generation: d.state.Generation + 1,
		Checklist:  model.NewChecklist(),
	}
	return d.state, nil
}

// State returns the current workspace snapshot
func (d *Desk) State() DeskState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneState(d.state)
}

// Verify runs the sequencer for the selected claim. On completion the
// analysis result is attached to the claim; the status is left for Decide.
func (d *Desk) Verify(ctx context.Context) (Outcome, error) {
	d.mu.Lock()
	id, gen := d.state.ClaimID, d.state.Generation
	switch {
	case id == "":
		d.mu.Unlock()
		return Outcome{}, ErrNoSelection
	case d.state.Running:
		d.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	claim, ok := d.store.Get(id)
	if !ok {
		d.mu.Unlock()
		return Outcome{}, fmt.Errorf("verify %s: %w", id, store.ErrNotFound)
	}
	d.state.Running = true
	d.state.Checklist = model.NewChecklist()
	d.state.Result = nil
	d.state.Error = ""
	d.mu.Unlock()

	out := d.seq.Run(ctx, claim, func(c model.Checklist) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.state.Generation == gen {
			d.state.Checklist = c
		}
	})

	d.mu.Lock()
	stale := d.state.Generation != gen
	if !stale {
		d.state.Running = false
		d.state.Checklist = out.Checklist
		d.state.Result = out.Result
		if out.Err != nil {
			d.state.Error = out.Err.Error()
		}
	}
	d.mu.Unlock()

	if stale {
		d.logger.Debug("discarding stale verification run",
			zap.String("claim_id", id),
			zap.Uint64("generation", gen))
		return out, ErrStale
	}

	if out.Completed() {
		if err := d.store.AttachVerification(id, *out.Result); err != nil {
			return out, err
		}
	}
	return out, out.Err
}

// Decide records the officer's sanction or rejection
func (d *Desk) Decide(id string, sanction bool) error {
	status := model.StatusRejected
	if sanction {
		status = model.StatusSanctioned
	}
	if _, ok := d.store.Get(id); !ok {
		return fmt.Errorf("decide %s: %w", id, store.ErrNotFound)
	}
	return d.store.SetStatus(id, status)
}

func cloneState(s DeskState) DeskState {
	if s.Result != nil {
		r := *s.Result
		r.MatchedFields = append([]string(nil), s.Result.MatchedFields...)
		s.Result = &r
	}
	return s
}
