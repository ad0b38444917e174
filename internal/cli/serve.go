package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/reliefdesk/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portal JSON API",
	Long: `Serve exposes claims, dashboards, the verification desk, grievances,
the legal assistant and notifications over HTTP, plus Prometheus metrics
on /metrics. The server shuts down gracefully on interrupt.

Example:
  reliefdesk serve --addr :8080
  RELIEFDESK_LLM_PROVIDER=gemini GEMINI_API_KEY=... reliefdesk serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Reliefdesk API on %s (AI: %s)\n", a.Config.Server.Addr, providerName(a.Config.LLM.Provider))
		return server.New(a).Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func providerName(p string) string {
	if p == "" {
		return "disabled"
	}
	return p
}
