package main

import (
	"fmt"
	"sort"

	"foliochat/cmd/folio/config"
	"foliochat/internal/usage"

	"github.com/spf13/cobra"
)

// usageCmd prints the locally recorded chat statistics
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show local chat usage counters",
	Long: `Prints the counters folio records for every question you ask, broken
down per portfolio and per day. The data lives in usage.json in the
config directory and never leaves this machine.`,
	RunE: showUsage,
}

func showUsage(cmd *cobra.Command, args []string) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve config dir: %w", err)
	}

	tracker, err := usage.NewTracker(dir)
	if err != nil {
		return fmt.Errorf("failed to open usage data: %w", err)
	}

	stats := tracker.Stats()
	if stats.Total.Questions == 0 {
		fmt.Println("No questions recorded yet. Ask one with 'folio ask' or 'folio chat'.")
		return nil
	}

	fmt.Println("Chat Usage")
	fmt.Println("==========")
	fmt.Printf("Questions:    %d\n", stats.Total.Questions)
	fmt.Printf("Answered:     %d\n", stats.Total.Answered)
	fmt.Printf("Quota denied: %d\n", stats.Total.QuotaDenied)
	fmt.Printf("Failed:       %d\n", stats.Total.Failed)

	if len(stats.ByPortfolio) > 0 {
		fmt.Println("\nBy portfolio:")
		urls := make([]string, 0, len(stats.ByPortfolio))
		for url := range stats.ByPortfolio {
			urls = append(urls, url)
		}
		sort.Strings(urls)
		for _, url := range urls {
			counts := stats.ByPortfolio[url]
			fmt.Printf("  %-30s %d asked, %d answered\n", url, counts.Questions, counts.Answered)
		}
	}

	if len(stats.ByDay) > 0 {
		days := make([]string, 0, len(stats.ByDay))
		for day := range stats.ByDay {
			days = append(days, day)
		}
		sort.Strings(days)
		if len(days) > 7 {
			days = days[len(days)-7:]
		}

		fmt.Println("\nRecent days:")
		for _, day := range days {
			counts := stats.ByDay[day]
			fmt.Printf("  %s  %d asked\n", day, counts.Questions)
		}
	}

	return nil
}
