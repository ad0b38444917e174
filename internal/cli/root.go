package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/reliefdesk/internal/app"
	"github.com/ppiankov/reliefdesk/internal/model"
)

const version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reliefdesk",
	Short: "Reliefdesk - relief claim portal for PCR and PoA Act victims",
	Long: `Reliefdesk manages monetary relief claims filed under the Protection of
Civil Rights Act, 1955, the SC/ST (Prevention of Atrocities) Act, 1989 and
the inter-caste marriage incentive scheme.

Claims are verified against simulated identity, crime-record and payment
systems, checked by an AI semantic match, sanctioned by an official and
disbursed through the payment gateway.

All records live in memory. Every command starts from the demo data set.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("reliefdesk " + version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.reliefdesk/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".reliefdesk"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// RELIEFDESK_LLM_PROVIDER, RELIEFDESK_SERVER_ADDR, ...
	viper.SetEnvPrefix("RELIEFDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Unmarshal only sees keys viper already knows about
	for _, key := range []string{"server.addr", "llm.provider", "llm.model", "llm.base_url", "llm.analysis_cache_dir", "output.locale"} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger. Production encoding on stderr,
// debug level with --verbose.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// loadConfig overlays the config file, environment and flags onto the
// defaults. Provider credentials come from their conventional variables.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "gemini", "google":
			cfg.LLM.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.LLM.Provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if cfg.LLM.HTTPProxy == "" {
		cfg.LLM.HTTPProxy = os.Getenv("HTTP_PROXY")
	}
	if cfg.LLM.HTTPSProxy == "" {
		cfg.LLM.HTTPSProxy = os.Getenv("HTTPS_PROXY")
	}
	if cfg.LLM.NoProxy == "" {
		cfg.LLM.NoProxy = firstEnv("NO_PROXY", "no_proxy")
	}
	return cfg, nil
}

// newApp loads configuration and wires a portal instance
func newApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logger)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
