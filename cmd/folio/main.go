package main

import (
	"fmt"
	"os"
	"time"

	"foliochat/cmd/folio/config"
	"foliochat/internal/api"
	"foliochat/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at release time via -ldflags.
var version = "0.3.0"

var (
	// Global flags
	verbose   bool
	server    string
	configDir string
	visitor   string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "folio [portfolio-url]",
	Short: "folioChat - talk to AI portfolio assistants from your terminal",
	Long: `folio is the terminal client for the folioChat portfolio service.

Visitors chat with a portfolio's AI assistant, which answers from the
owner's resume and project details. Owners log in to upload portfolios,
review visitor analytics and manage their account.

Run without arguments to open the interactive chat interface.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configDir != "" {
			// Everything that resolves the dot directory reads FOLIO_HOME
			os.Setenv("FOLIO_HOME", configDir)
		}

		// Optional .env in the working directory; never overrides real env
		_ = godotenv.Load()

		if home, err := config.ConfigDir(); err == nil {
			if err := logging.Initialize(home); err != nil {
				fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
			}
		}

		// Skip the zap logger for interactive mode (the TUI has its own logs)
		if cmd.Name() == "folio" || cmd.Name() == "chat" {
			return nil
		}

		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: open the chat interface
		return runChat(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "Backend URL (or set FOLIO_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Config directory (default: ~/.folio)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// The root command doubles as 'chat', so it carries the same flag
	rootCmd.Flags().StringVar(&visitor, "visitor", "", "Visitor name shared with the portfolio owner")

	// Add commands to root
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(usageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAPIClient builds a client for the resolved server, with the saved
// token installed when one exists.
func newAPIClient() *api.Client {
	client := api.NewClientWithConfig(api.Config{
		BaseURL: resolveServerURL(),
		Timeout: timeout,
	})
	if token := resolveToken(); token != "" {
		client.SetToken(token)
	}
	return client
}

// resolveServerURL picks the backend address: flag, then environment,
// then the saved user config.
func resolveServerURL() string {
	if server != "" {
		return server
	}
	if env := os.Getenv("FOLIO_SERVER_URL"); env != "" {
		return env
	}
	cfg, _ := config.Load()
	return cfg.ServerURL
}

// resolveToken picks the bearer token: environment, then the saved
// user config.
func resolveToken() string {
	if env := os.Getenv("FOLIO_TOKEN"); env != "" {
		return env
	}
	cfg, _ := config.Load()
	return cfg.Token
}

// resolveVisitorName picks the name sent with visitor questions: flag,
// then the saved user config, then environment.
func resolveVisitorName() string {
	if visitor != "" {
		return visitor
	}
	cfg, _ := config.Load()
	if cfg.VisitorName != "" {
		return cfg.VisitorName
	}
	return os.Getenv("FOLIO_VISITOR_NAME")
}

// requireToken rejects owner commands early when no login is saved.
func requireToken(client *api.Client) error {
	if client.Token() == "" {
		return fmt.Errorf("not logged in. Run 'folio login' first")
	}
	return nil
}

func joinArgs(args []string) string {
	result := ""
	for i, arg := range args {
		if i > 0 {
			result += " "
		}
		result += arg
	}
	return result
}
