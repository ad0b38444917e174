package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reliefdesk/internal/app"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/store"
	"github.com/ppiankov/reliefdesk/internal/verify"
)

var (
	verifyAll     bool
	verifyFile    string
	verifyDecide  string
	verifyTimeout time.Duration
)

var verifyCmd = &cobra.Command{
	Use:   "verify [id]",
	Short: "Run the four-step verification for one or more claims",
	Long: `Verify runs the identity check, FIR lookup, AI semantic match and bank
linkage for a claim and attaches the analysis result.

A single claim goes through the verification desk and may be decided on
the spot. --all verifies every pending claim and --file reads claim ids
(one per line) for a concurrent batch run.

Example:
  reliefdesk verify BT-101
  reliefdesk verify BT-101 --decide sanction
  reliefdesk verify --all
  reliefdesk verify --file ids.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "verify every pending claim")
	verifyCmd.Flags().StringVar(&verifyFile, "file", "", "read claim ids from file")
	verifyCmd.Flags().StringVar(&verifyDecide, "decide", "", "record a decision after a completed run (sanction or reject)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "overall verification timeout")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	batch := verifyAll || verifyFile != ""
	switch {
	case batch && len(args) > 0:
		return errors.New("give a claim id or --all/--file, not both")
	case !batch && len(args) == 0:
		return errors.New("claim id required (or --all/--file)")
	}
	if verifyDecide != "" && verifyDecide != "sanction" && verifyDecide != "reject" {
		return fmt.Errorf("--decide must be sanction or reject, got %q", verifyDecide)
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if verifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, verifyTimeout)
		defer cancel()
	}

	if !batch {
		return verifyOne(ctx, cmd, a, args[0])
	}

	var ids []string
	if verifyFile != "" {
		if ids, err = verify.ReadIDsFromFile(verifyFile); err != nil {
			return err
		}
	} else {
		for _, c := range a.Store.List(store.ByStatus(model.StatusPending)) {
			ids = append(ids, c.ID)
		}
	}
	return verifyMany(ctx, cmd, a, ids)
}

func verifyOne(ctx context.Context, cmd *cobra.Command, a *app.App, id string) error {
	out := cmd.OutOrStdout()

	if _, err := a.Desk.Select(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "⚙️  Verifying %s...\n", id)

	outcome, err := a.Desk.Verify(ctx)
	if asJSON {
		if jerr := printJSON(out, a.Desk.State()); jerr != nil {
			return jerr
		}
	} else {
		printChecklist(out, outcome.Checklist)
		if outcome.Result != nil {
			fmt.Fprintln(out)
			printVerification(out, outcome.Result)
		}
	}
	if err != nil {
		return fmt.Errorf("verification failed%s: %w", failedStep(outcome.Checklist), err)
	}

	if verifyDecide == "" {
		return nil
	}
	if err := a.Desk.Decide(id, verifyDecide == "sanction"); err != nil {
		return err
	}
	c, _ := a.Store.Get(id)
	if !asJSON {
		fmt.Fprintf(out, "\n✓ %s is now %s\n", id, c.Status)
	}
	return nil
}

func verifyMany(ctx context.Context, cmd *cobra.Command, a *app.App, ids []string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "⚙️  Verifying %d claims with %d workers...\n\n", len(ids), a.Config.Concurrency.Workers)

	reports := a.Batch.Run(ctx, ids)
	if asJSON {
		return printJSON(cmd.OutOrStdout(), batchSummary(reports))
	}

	successCount, failureCount := 0, 0
	for _, r := range reports {
		if r.Err != nil {
			failureCount++
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s%s: %v\n", r.ClaimID, failedStep(r.Outcome.Checklist), r.Err)
			continue
		}
		successCount++
		res := r.Outcome.Result
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: score %d/100, verified=%v\n", r.ClaimID, res.Score, res.Verified)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nCompleted: %d succeeded, %d failed\n", successCount, failureCount)
	if failureCount > 0 {
		return fmt.Errorf("%d of %d verifications failed", failureCount, len(reports))
	}
	return nil
}

type batchEntry struct {
	ClaimID    string                    `json:"claim_id"`
	Checklist  model.Checklist           `json:"checklist"`
	Result     *model.VerificationResult `json:"result,omitempty"`
	FailedStep int                       `json:"failed_step,omitempty"` // 1-based
	Error      string                    `json:"error,omitempty"`
}

func batchSummary(reports []*verify.Report) []batchEntry {
	out := make([]batchEntry, 0, len(reports))
	for _, r := range reports {
		e := batchEntry{
			ClaimID:    r.ClaimID,
			Checklist:  r.Outcome.Checklist,
			Result:     r.Outcome.Result,
			FailedStep: r.Outcome.Checklist.Failed() + 1,
		}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		out = append(out, e)
	}
	return out
}

// failedStep names the first failed step, or returns "" when none failed
func failedStep(c model.Checklist) string {
	i := c.Failed()
	if i < 0 {
		return ""
	}
	return fmt.Sprintf(" at step %d (%s)", i+1, c[i].Label)
}
