package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/views"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the official or claimant dashboard",
}

var dashboardOfficialCmd = &cobra.Command{
	Use:   "official",
	Short: "Aggregate statistics, AI confidence and critical remarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		v := views.OfficialDashboard(a.Store)
		if asJSON {
			return printJSON(cmd.OutOrStdout(), v)
		}
		printOfficial(cmd.OutOrStdout(), a.Format, v, views.ReviewQueue(a.Store))
		return nil
	},
}

var dashboardClaimantCmd = &cobra.Command{
	Use:   "claimant <claimant-id>",
	Short: "Claims, totals and case tracker for one claimant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		v := views.ClaimantDashboard(a.Store, args[0])
		if asJSON {
			return printJSON(cmd.OutOrStdout(), v)
		}

		out := cmd.OutOrStdout()
		if len(v.Claims) == 0 {
			fmt.Fprintf(out, "No claims for %s\n", v.ClaimantID)
			return nil
		}
		fmt.Fprintf(out, "%s (%s)\n", v.Name, v.ClaimantID)
		fmt.Fprintf(out, "Sanctioned: %s   Disbursed: %s\n\n", a.Format.Amount(v.TotalSanctioned), a.Format.Amount(v.TotalDisbursed))
		if v.ActiveTrack != nil {
			printTrack(out, *v.ActiveTrack)
			fmt.Fprintln(out)
		}
		return printClaims(out, a.Format, v.Claims)
	},
}

func init() {
	dashboardCmd.AddCommand(dashboardOfficialCmd, dashboardClaimantCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func printOfficial(w io.Writer, f *views.Formatter, v views.OfficialView, queue []model.Claim) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "  Official Dashboard")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total claims:        %d\n", v.Total)
	for _, s := range model.Statuses {
		fmt.Fprintf(w, "    %-18s %d\n", s, v.ByStatus[s])
	}
	fmt.Fprintf(w, "  Disbursed:           %s\n", f.Amount(v.AmountDisbursed))
	fmt.Fprintf(w, "  Pending:             %s\n", f.Amount(v.AmountPending))
	fmt.Fprintf(w, "  AI analyzed:         %d\n", v.Analyzed)
	fmt.Fprintf(w, "  Average confidence:  %d%%\n", v.AverageConfidence)
	fmt.Fprintf(w, "  Flagged:             %d\n", v.Flagged)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Case categories:")
	for _, c := range v.Categories {
		fmt.Fprintf(w, "    %-32s %3d%% (%d)\n", c.CaseType, c.Percent, c.Count)
	}

	if len(v.CriticalRemarks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Critical AI remarks:")
		for _, r := range v.CriticalRemarks {
			fmt.Fprintf(w, "    ⚠️  %s %s (score %d): %s\n", r.ClaimID, r.Name, r.Score, r.Remarks)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Review queue: %d claims\n", len(queue))
	for _, c := range queue {
		fmt.Fprintf(w, "    %s  %-20s %s\n", c.ID, c.Name, c.Status)
	}
	fmt.Fprintln(w)
}
