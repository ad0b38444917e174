package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/views"
)

var asJSON bool

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printClaims(w io.Writer, f *views.Formatter, claims []model.Claim) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCASE TYPE\tSTATUS\tAMOUNT\tAPPLIED\tAI SCORE")
	for _, c := range claims {
		score := "-"
		if c.Verification != nil {
			score = fmt.Sprintf("%d", c.Verification.Score)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.CaseType, c.Status, f.Amount(c.Amount), c.AppliedDate, score)
	}
	return tw.Flush()
}

func printClaim(w io.Writer, f *views.Formatter, c model.Claim) {
	fmt.Fprintf(w, "Claim:     %s\n", c.ID)
	fmt.Fprintf(w, "Claimant:  %s (%s)\n", c.Name, c.ClaimantID)
	fmt.Fprintf(w, "Case type: %s\n", c.CaseType)
	fmt.Fprintf(w, "Status:    %s\n", c.Status)
	fmt.Fprintf(w, "Amount:    %s\n", f.Amount(c.Amount))
	fmt.Fprintf(w, "Applied:   %s\n", c.AppliedDate)
	if c.FIRNumber != "" {
		fmt.Fprintf(w, "FIR:       %s\n", c.FIRNumber)
	}
	if r := c.Verification; r != nil {
		printVerification(w, r)
	}
	if t := c.Transfer; t != nil {
		fmt.Fprintf(w, "Transfer:  UTR %s, %s at %s\n", t.UTR, t.Status, t.Timestamp)
	}
}

func printVerification(w io.Writer, r *model.VerificationResult) {
	verdict := "not verified"
	if r.Verified {
		verdict = "verified"
	}
	fmt.Fprintf(w, "AI match:  %s, score %d/100\n", verdict, r.Score)
	if len(r.MatchedFields) > 0 {
		fmt.Fprintf(w, "Matched:   %v\n", r.MatchedFields)
	}
	if r.Remarks != "" {
		fmt.Fprintf(w, "Remarks:   %s\n", r.Remarks)
	}
}

func printChecklist(w io.Writer, c model.Checklist) {
	for i, s := range c {
		mark := " "
		switch s.Status {
		case model.StepRunning:
			mark = "…"
		case model.StepSucceeded:
			mark = "✓"
		case model.StepFailed:
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s %d. %s", mark, i+1, s.Label)
		if s.Error != "" {
			fmt.Fprintf(w, ": %s", s.Error)
		}
		fmt.Fprintln(w)
	}
}

func printTrack(w io.Writer, t views.Tracker) {
	fmt.Fprintf(w, "Claim %s: %s (%d%%)\n", t.ClaimID, t.Status, t.Progress)
	for _, m := range t.Milestones {
		mark := "○"
		if m.Complete {
			mark = "●"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, m.Name)
	}
	if t.Rejected {
		fmt.Fprintln(w, "  Application rejected")
	}
	if r := t.Receipt; r != nil {
		fmt.Fprintf(w, "  UTR %s\n", r.UTR)
	}
}
