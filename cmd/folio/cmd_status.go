package main

import (
	"context"
	"fmt"

	"foliochat/cmd/folio/config"
	"foliochat/internal/logging"

	"github.com/spf13/cobra"
)

// statusCmd shows client and backend health
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show folioChat status",
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	fmt.Println("folioChat Status")
	fmt.Println("================")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Server:  %s\n", resolveServerURL())
	fmt.Println()

	if dir, err := config.ConfigDir(); err == nil {
		fmt.Printf("✓ Config dir: %s\n", dir)
	} else {
		fmt.Printf("✗ Config dir unavailable: %v\n", err)
	}

	client := newAPIClient()
	if health, err := client.Health(ctx); err == nil {
		fmt.Printf("✓ Backend reachable (%s)\n", health.Status)
	} else {
		fmt.Printf("✗ Backend unreachable: %v\n", err)
	}

	if client.Token() == "" {
		fmt.Println("✗ Not logged in")
	} else if user, err := client.Me(ctx); err == nil {
		fmt.Printf("✓ Logged in as %s\n", user.Email)
	} else {
		fmt.Printf("✗ Saved login rejected: %v\n", err)
	}

	if logging.IsDebugMode() {
		fmt.Println("✓ Debug file logging enabled")
	}

	return nil
}
