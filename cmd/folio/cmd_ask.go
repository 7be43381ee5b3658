package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"foliochat/cmd/folio/config"
	"foliochat/internal/api"
	"foliochat/internal/logging"
	"foliochat/internal/usage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// askCmd sends a single question without opening the TUI
var askCmd = &cobra.Command{
	Use:   "ask <portfolio-url> <question...>",
	Short: "Ask a portfolio's assistant one question",
	Long: `Sends one question to a portfolio's AI assistant and prints the full
answer, without opening the interactive interface.

Examples:
  folio ask acme-dana "What projects has Dana shipped?"
  folio ask acme-dana what is the tech stack`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&visitor, "visitor", "", "Visitor name shared with the portfolio owner")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	portfolioURL := args[0]
	question := joinArgs(args[1:])

	client := newAPIClient()

	portfolio, err := client.LookupPortfolio(ctx, portfolioURL)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			return fmt.Errorf("portfolio '%s' not found or not active", portfolioURL)
		}
		return fmt.Errorf("failed to reach portfolio: %w", err)
	}

	logger.Info("asking question",
		zap.String("portfolio", portfolioURL),
		zap.Int("length", len(question)))

	answer, err := client.AskQuestion(ctx, portfolioURL, question, resolveVisitorName())
	trackAskOutcome(ctx, portfolioURL, err)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.QuotaExceeded() {
			fmt.Println("This assistant has reached its daily chat limit.")
			fmt.Println("The portfolio owner can raise it by upgrading their plan.")
			return fmt.Errorf("quota exceeded")
		}
		return fmt.Errorf("question failed: %w", err)
	}

	fmt.Printf("%s's assistant:\n\n%s\n", portfolio.OwnerName, answer)
	return nil
}

// trackAskOutcome records the settled turn in the local usage file.
// One-shot commands exit immediately, so the save is explicit rather
// than waiting out the tracker's debounce.
func trackAskOutcome(ctx context.Context, portfolioURL string, askErr error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return
	}
	tracker, err := usage.NewTracker(dir)
	if err != nil {
		logging.Usage("ask: usage tracking unavailable: %v", err)
		return
	}

	outcome := usage.OutcomeAnswered
	if askErr != nil {
		outcome = usage.OutcomeFailed
		var statusErr *api.StatusError
		if errors.As(askErr, &statusErr) && statusErr.QuotaExceeded() {
			outcome = usage.OutcomeQuotaDenied
		}
	}

	tracker.Track(usage.WithSessionContext(ctx, "ask-"+uuid.NewString()), portfolioURL, outcome)
	if err := tracker.Save(); err != nil {
		logging.Usage("ask: usage save failed: %v", err)
	}
}
