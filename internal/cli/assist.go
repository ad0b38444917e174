package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/ppiankov/reliefdesk/internal/assist"
	"github.com/ppiankov/reliefdesk/internal/model"
)

var assistPlain bool

var assistCmd = &cobra.Command{
	Use:   "assist [question]",
	Short: "Ask the Justice Aide legal assistant",
	Long: `Assist answers questions about rights and relief under the PCR Act, 1955
and the PoA Act, 1989. With a question argument it answers once and exits;
otherwise it starts an interactive session (type "exit" to quit).

Example:
  reliefdesk assist "What relief is available for inter-caste marriage?"
  reliefdesk assist`,
	RunE: runAssist,
}

func init() {
	assistCmd.Flags().BoolVar(&assistPlain, "plain", false, "print replies without markdown rendering")
	rootCmd.AddCommand(assistCmd)
}

func runAssist(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	render := plainRenderer
	if !assistPlain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err != nil {
			return fmt.Errorf("init renderer: %w", err)
		}
		render = func(md string) string {
			out, err := r.Render(md)
			if err != nil {
				return md
			}
			return out
		}
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		return ask(cmd, a.Panel, strings.Join(args, " "), render, out)
	}

	fmt.Fprintln(out, render(assist.Greeting))
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := ask(cmd, a.Panel, line, render, out); err != nil {
			return err
		}
	}
}

// ask sends one query and prints the assistant's reply
func ask(cmd *cobra.Command, p *assist.Panel, query string, render func(string) string, out io.Writer) error {
	if !p.Send(cmd.Context(), query) {
		return nil
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	transcript := p.Transcript()
	reply := transcript[len(transcript)-1]
	if reply.Role != model.RoleAI {
		return nil
	}
	if asJSON {
		return printJSON(out, reply)
	}
	fmt.Fprintln(out, render(reply.Text))
	return nil
}

func plainRenderer(md string) string {
	return md
}
