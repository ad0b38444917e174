package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var disburseSanction bool

var disburseCmd = &cobra.Command{
	Use:   "disburse <id>",
	Short: "Transfer the relief amount of a sanctioned claim",
	Long: `Disburse sends a sanctioned claim's amount through the payment gateway,
retrying transient failures, and marks the claim DISBURSED.

Records start from the demo data set on every run, so --sanction records
the official's sanction first.

Example:
  reliefdesk disburse BT-101 --sanction`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if disburseSanction {
			if err := a.Desk.Decide(args[0], true); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "⚙️  Initiating PFMS transfer for %s...\n", args[0])
		receipt, err := a.Disburser.Disburse(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("disbursement failed: %w", err)
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), receipt)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Transferred %s\n", a.Format.Amount(receipt.Amount))
		fmt.Fprintf(cmd.OutOrStdout(), "  UTR:    %s\n", receipt.UTR)
		fmt.Fprintf(cmd.OutOrStdout(), "  Status: %s\n", receipt.Status)
		fmt.Fprintf(cmd.OutOrStdout(), "  Time:   %s\n", receipt.Timestamp)
		return nil
	},
}

func init() {
	disburseCmd.Flags().BoolVar(&disburseSanction, "sanction", false, "sanction the claim before transferring")
	rootCmd.AddCommand(disburseCmd)
}
