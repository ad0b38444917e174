package verify

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/store"
	"github.com/ppiankov/reliefdesk/internal/worker"
)

// Report is the result of verifying one claim in a batch
type Report struct {
	ClaimID string
	Outcome Outcome
	Err     error
}

// GetError returns the failure cause, if any
func (r *Report) GetError() error {
	return r.Err
}

// job verifies a single claim
type job struct {
	id    string
	store *store.Store
	seq   *Sequencer
}

// Execute runs the sequencer and attaches a completed result
func (j *job) Execute(ctx context.Context) worker.Result {
	claim, ok := j.store.Get(j.id)
	if !ok {
		return &Report{ClaimID: j.id, Err: fmt.Errorf("%s: %w", j.id, store.ErrNotFound)}
	}

	out := j.seq.Run(ctx, claim, nil)
	rep := &Report{ClaimID: j.id, Outcome: out, Err: out.Err}
	if out.Completed() {
		if err := j.store.AttachVerification(j.id, *out.Result); err != nil {
			rep.Err = err
		}
	}
	return rep
}

// Batch verifies many claims concurrently. Claims are independent; there is
// no ordering between them.
type Batch struct {
	store   *store.Store
	seq     *Sequencer
	workers int
	logger  *zap.Logger
}

// NewBatch creates a batch verifier
func NewBatch(s *store.Store, seq *Sequencer, workers int, logger *zap.Logger) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{store: s, seq: seq, workers: workers, logger: logger}
}

// Run verifies every id and returns reports in input order
func (b *Batch) Run(ctx context.Context, ids []string) []*Report {
	if len(ids) == 0 {
		return []*Report{}
	}

	pool := worker.NewPoolContext(ctx, b.workers)
	pool.Start()

	for _, id := range ids {
		pool.Submit(&job{id: id, store: b.store, seq: b.seq})
	}
	results := pool.Wait()

	reports := make([]*Report, 0, len(ids))
	for i, id := range ids {
		var rep *Report
		if i < len(results) && results[i] != nil {
			if r, ok := results[i].(*Report); ok {
				rep = r
			} else {
				rep = &Report{ClaimID: id, Err: results[i].GetError()}
			}
		} else {
			// never ran: the context was canceled before the job was picked up
			rep = &Report{ClaimID: id, Err: fmt.Errorf("%s: %w", id, context.Cause(ctx))}
		}
		reports = append(reports, rep)
	}

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	b.logger.Info("batch verification finished",
		zap.Int("claims", len(reports)),
		zap.Int("failed", failed))

	return reports
}

// ReadIDsFromFile reads claim ids from a file (one per line)
func ReadIDsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}
