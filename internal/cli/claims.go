package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/reliefdesk/internal/intake"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/store"
	"github.com/ppiankov/reliefdesk/internal/views"
)

var (
	listStatus   string
	listClaimant string
	listFilter   string

	submitClaimant string
	submitForm     intake.Application
	submitCaseType string
)

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "List, submit and track relief claims",
}

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims, most recent first",
	Long: `List claims, optionally narrowed by status, claimant or a CEL filter
over the claim fields.

Example:
  reliefdesk claims list --status PENDING
  reliefdesk claims list --filter 'claim.analyzed && claim.score < 60'
  reliefdesk claims list --filter 'claim.case_type.startsWith("PoA") && claim.amount > 50000'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		var preds []store.Predicate
		if listStatus != "" {
			preds = append(preds, store.ByStatus(model.Status(listStatus)))
		}
		if listClaimant != "" {
			preds = append(preds, store.ByClaimant(listClaimant))
		}
		if listFilter != "" {
			pred, err := a.Query.Compile(listFilter)
			if err != nil {
				return err
			}
			preds = append(preds, pred)
		}

		claims := a.Store.List(store.All(preds...))
		if asJSON {
			return printJSON(cmd.OutOrStdout(), claims)
		}
		return printClaims(cmd.OutOrStdout(), a.Format, claims)
	},
}

var claimsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a relief application",
	Long: `Submit a relief application. The amount follows the case type:
82,500 for PCR and PoA Act cases, 2,50,000 for the marriage incentive.

Example:
  reliefdesk claims submit --name "Asha Devi" --identity 123412341234 \
    --phone 9876543210 --account 001234567890 --ifsc SBIN0001234 \
    --case-type "PoA Act, 1989" --fir FIR-2024-0099`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		form := submitForm
		form.CaseType = model.CaseType(submitCaseType)
		c, err := intake.Lodge(a.Store, form, submitClaimant, time.Now())
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), c)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Application submitted: %s\n\n", c.ID)
		printClaim(cmd.OutOrStdout(), a.Format, c)
		return nil
	},
}

var claimsStatusCmd = &cobra.Command{
	Use:   "status <id> [new-status]",
	Short: "Show a claim, or move it to a new status",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		id := args[0]
		if len(args) == 2 {
			if err := a.Store.SetStatus(id, model.Status(args[1])); err != nil {
				return err
			}
		}

		c, ok := a.Store.Get(id)
		if !ok {
			return fmt.Errorf("claim %s: %w", id, store.ErrNotFound)
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), c)
		}
		printClaim(cmd.OutOrStdout(), a.Format, c)
		return nil
	},
}

var claimsTrackCmd = &cobra.Command{
	Use:   "track <id>",
	Short: "Show the public case tracker for a claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		c, ok := a.Store.Get(args[0])
		if !ok {
			return fmt.Errorf("claim %s: %w", args[0], store.ErrNotFound)
		}
		t := views.Track(c)
		if asJSON {
			return printJSON(cmd.OutOrStdout(), t)
		}
		printTrack(cmd.OutOrStdout(), t)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	claimsListCmd.Flags().StringVar(&listStatus, "status", "", "only claims in this status")
	claimsListCmd.Flags().StringVar(&listClaimant, "claimant", "", "only claims owned by this claimant")
	claimsListCmd.Flags().StringVar(&listFilter, "filter", "", "CEL expression over the claim variable")

	f := claimsSubmitCmd.Flags()
	f.StringVar(&submitClaimant, "claimant", store.DemoClaimantID, "claimant identity owning the claim")
	f.StringVar(&submitForm.Name, "name", "", "applicant name")
	f.StringVar(&submitForm.IdentityNumber, "identity", "", "12-digit identity number")
	f.StringVar(&submitForm.Phone, "phone", "", "mobile number")
	f.StringVar(&submitCaseType, "case-type", string(model.CasePoAAct), "case type")
	f.StringVar(&submitForm.FIRNumber, "fir", "", "FIR number")
	f.StringVar(&submitForm.BankAccount, "account", "", "bank account number")
	f.StringVar(&submitForm.IFSC, "ifsc", "", "bank IFSC code")
	f.StringVar(&submitForm.Statement, "statement", "", "victim statement")

	claimsCmd.AddCommand(claimsListCmd, claimsSubmitCmd, claimsStatusCmd, claimsTrackCmd)
	rootCmd.AddCommand(claimsCmd)
}
