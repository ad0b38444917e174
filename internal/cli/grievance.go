package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/store"
)

var (
	grievanceClaim       string
	grievanceSubject     string
	grievanceDescription string
)

var grievanceCmd = &cobra.Command{
	Use:   "grievance",
	Short: "List and lodge grievance tickets",
}

var grievanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List grievance tickets, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var pred store.GrievancePredicate
		if grievanceClaim != "" {
			pred = store.GrievancesForClaim(grievanceClaim)
		}
		tickets := a.Store.Grievances(pred)
		if asJSON {
			return printJSON(cmd.OutOrStdout(), tickets)
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "TICKET\tCLAIM\tSUBJECT\tSTATUS\tCREATED")
		for _, g := range tickets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", g.ID, g.ClaimID, g.Subject, g.Status, g.CreatedAt)
		}
		return tw.Flush()
	},
}

var grievanceLodgeCmd = &cobra.Command{
	Use:   "lodge",
	Short: "Lodge a grievance against a claim",
	Long: `Lodge a grievance ticket referencing a claim.

Example:
  reliefdesk grievance lodge --claim BT-101 --subject "Delay in verification"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		g, err := a.Store.LodgeGrievance(model.Grievance{
			ClaimID:     grievanceClaim,
			Subject:     grievanceSubject,
			Description: grievanceDescription,
		})
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), g)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Grievance lodged! Ticket: %s\n", g.ID)
		return nil
	},
}

func init() {
	grievanceListCmd.Flags().StringVar(&grievanceClaim, "claim", "", "only tickets for this claim")

	grievanceLodgeCmd.Flags().StringVar(&grievanceClaim, "claim", "", "claim the ticket refers to")
	grievanceLodgeCmd.Flags().StringVar(&grievanceSubject, "subject", "", "ticket subject")
	grievanceLodgeCmd.Flags().StringVar(&grievanceDescription, "description", "", "details")

	grievanceCmd.AddCommand(grievanceListCmd, grievanceLodgeCmd)
	rootCmd.AddCommand(grievanceCmd)
}
