package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"foliochat/internal/api"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// portfolioCmd groups the owner-side portfolio operations
var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Manage your portfolios",
	Long: `Create and manage the portfolios on your account.

Available subcommands:
  list      - List your portfolios with processing state
  create    - Upload a resume and create a portfolio
  delete    - Delete a portfolio by id
  analytics - Show visitor chat statistics`,
}

// portfolioListCmd lists owned portfolios
var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your portfolios",
	RunE:  runPortfolioList,
}

// portfolioCreateCmd uploads a new portfolio
var portfolioCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a portfolio from a resume",
	Long: `Uploads a resume plus a free-form details document and creates the
portfolio. The backend processes the documents in the background; the
assistant starts answering once processing completes.

Example:
  folio portfolio create --name "Dana at Acme" --url acme-dana \
      --resume resume.pdf --details details.txt`,
	RunE: runPortfolioCreate,
}

// portfolioDeleteCmd deletes a portfolio by id
var portfolioDeleteCmd = &cobra.Command{
	Use:   "delete <portfolio-id>",
	Short: "Delete a portfolio",
	Args:  cobra.ExactArgs(1),
	RunE:  runPortfolioDelete,
}

// portfolioAnalyticsCmd shows visitor chat statistics
var portfolioAnalyticsCmd = &cobra.Command{
	Use:   "analytics [portfolio-id]",
	Short: "Show visitor chat statistics",
	Long: `Shows how many visitor conversations and messages a portfolio has
received. Pass a portfolio id, or --all to fetch every portfolio on
the account.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPortfolioAnalytics,
}

var (
	createName    string
	createURL     string
	createResume  string
	createDetails string
	deleteYes     bool
	analyticsAll  bool
)

func init() {
	portfolioCreateCmd.Flags().StringVar(&createName, "name", "", "Display name for the portfolio (required)")
	portfolioCreateCmd.Flags().StringVar(&createURL, "url", "", "Custom URL slug, e.g. acme-dana (required)")
	portfolioCreateCmd.Flags().StringVar(&createResume, "resume", "", "Path to the resume file (required)")
	portfolioCreateCmd.Flags().StringVar(&createDetails, "details", "", "Path to the details file (required)")
	portfolioCreateCmd.MarkFlagRequired("name")
	portfolioCreateCmd.MarkFlagRequired("url")
	portfolioCreateCmd.MarkFlagRequired("resume")
	portfolioCreateCmd.MarkFlagRequired("details")

	portfolioDeleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "Skip the confirmation prompt")

	portfolioAnalyticsCmd.Flags().BoolVar(&analyticsAll, "all", false, "Fetch analytics for every portfolio")

	portfolioCmd.AddCommand(portfolioListCmd)
	portfolioCmd.AddCommand(portfolioCreateCmd)
	portfolioCmd.AddCommand(portfolioDeleteCmd)
	portfolioCmd.AddCommand(portfolioAnalyticsCmd)
}

func runPortfolioList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := newAPIClient()
	if err := requireToken(client); err != nil {
		return err
	}

	portfolios, err := client.ListPortfolios(ctx)
	if err != nil {
		return fmt.Errorf("failed to list portfolios: %w", err)
	}

	if len(portfolios) == 0 {
		fmt.Println("No portfolios yet. Run 'folio portfolio create' to upload one.")
		return nil
	}

	fmt.Printf("Portfolios (%d)\n", len(portfolios))
	fmt.Println(strings.Repeat("-", 60))

	for _, p := range portfolios {
		state := "inactive"
		if p.IsActive {
			state = "active"
		}
		if !p.IsProcessed {
			state += ", processing"
		}

		fmt.Printf("%s\n", p.Name)
		fmt.Printf("    URL: /%s (%s)\n", p.CustomURL, state)
		fmt.Printf("    ID:  %s\n", p.ID)
		if p.CustomDomain != "" {
			fmt.Printf("    Domain: %s\n", p.CustomDomain)
		}
		fmt.Println()
	}

	return nil
}

func runPortfolioCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := newAPIClient()
	if err := requireToken(client); err != nil {
		return err
	}

	for _, path := range []string{createResume, createDetails} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
	}

	logger.Info("creating portfolio",
		zap.String("name", createName),
		zap.String("url", createURL))

	fmt.Printf("Uploading %s...\n", createResume)
	resp, err := client.CreatePortfolio(ctx, createName, createURL, createResume, createDetails)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.UpgradeRequired() {
				fmt.Printf("\n❌ %s\n", statusErr.Detail)
				fmt.Println("\nUpgrade your plan to host more portfolios.")
				return fmt.Errorf("portfolio limit reached")
			}
			if statusErr.StatusCode == 400 {
				return fmt.Errorf("create rejected: %s", statusErr.Detail)
			}
		}
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	fmt.Println("\n✓ Portfolio created!")
	fmt.Printf("  ID:  %s\n", resp.PortfolioID)
	fmt.Printf("  URL: /%s\n", resp.CustomURL)
	fmt.Println("\nThe documents are being processed. Run 'folio portfolio list' to")
	fmt.Printf("check progress, then 'folio chat %s' to try the assistant.\n", resp.CustomURL)
	return nil
}

func runPortfolioDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := newAPIClient()
	if err := requireToken(client); err != nil {
		return err
	}

	portfolioID := args[0]
	if !deleteYes {
		answer, err := promptLine(fmt.Sprintf("Delete portfolio %s? This cannot be undone. [y/N]: ", portfolioID))
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := client.DeletePortfolio(ctx, portfolioID); err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			return fmt.Errorf("portfolio '%s' not found", portfolioID)
		}
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	fmt.Printf("✓ Deleted portfolio %s\n", portfolioID)
	return nil
}

func runPortfolioAnalytics(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := newAPIClient()
	if err := requireToken(client); err != nil {
		return err
	}

	if !analyticsAll {
		if len(args) == 0 {
			return fmt.Errorf("pass a portfolio id, or --all for every portfolio")
		}
		resp, err := client.GetAnalytics(ctx, args[0])
		if err != nil {
			var statusErr *api.StatusError
			if errors.As(err, &statusErr) && statusErr.NotFound() {
				return fmt.Errorf("portfolio '%s' not found", args[0])
			}
			return fmt.Errorf("failed to fetch analytics: %w", err)
		}
		printAnalytics(args[0], resp)
		return nil
	}

	portfolios, err := client.ListPortfolios(ctx)
	if err != nil {
		return fmt.Errorf("failed to list portfolios: %w", err)
	}
	if len(portfolios) == 0 {
		fmt.Println("No portfolios yet.")
		return nil
	}

	logger.Debug("fetching analytics", zap.Int("portfolios", len(portfolios)))

	// One request per portfolio, a few in flight at a time
	results := make([]*api.AnalyticsResponse, len(portfolios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range portfolios {
		g.Go(func() error {
			resp, err := client.GetAnalytics(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("analytics for %s: %w", p.CustomURL, err)
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var totalChats, totalMessages int
	for i, p := range portfolios {
		printAnalytics(p.Name, results[i])
		totalChats += results[i].TotalChats
		totalMessages += results[i].TotalMessages
	}

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Total: %d chats, %d messages\n", totalChats, totalMessages)
	return nil
}

func printAnalytics(name string, resp *api.AnalyticsResponse) {
	fmt.Printf("%s\n", name)
	fmt.Printf("  Chats:    %d\n", resp.TotalChats)
	fmt.Printf("  Messages: %d\n", resp.TotalMessages)
	fmt.Println()
}
