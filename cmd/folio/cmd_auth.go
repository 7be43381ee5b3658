package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"foliochat/cmd/folio/config"
	"foliochat/internal/api"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCmd authenticates against the backend and saves the token
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in to your folioChat account",
	Long: `Log in with email and password. The access token is saved in the
config file so portfolio commands work without logging in again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// registerCmd creates a new account
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new folioChat account",
	Long: `Create an account with email and password, then log in with the
returned token. Free accounts can host one portfolio.`,
	RunE: runRegister,
}

// whoamiCmd shows the logged-in account
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently logged-in account",
	RunE:  runWhoami,
}

// logoutCmd discards the saved token
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved login",
	RunE:  runLogout,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	email := ""
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		var err error
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	client := newAPIClient()
	resp, err := client.Login(ctx, email, password)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("invalid email or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if err := saveLogin(resp.AccessToken); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("\n✓ Logged in as %s\n", resp.User.Email)
	if resp.User.SubscriptionTier != "" {
		fmt.Printf("  Tier: %s\n", resp.User.SubscriptionTier)
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	name, err := promptLine("Name: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	client := newAPIClient()
	resp, err := client.Register(ctx, email, password, name)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
			return fmt.Errorf("registration rejected: %s", statusErr.Detail)
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	if err := saveLogin(resp.AccessToken); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("\n✓ Account created for %s\n", resp.User.Email)
	fmt.Println("\nNext steps:")
	fmt.Println("  folio portfolio create --name \"My Portfolio\" --url my-name \\")
	fmt.Println("      --resume resume.pdf --details details.txt")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := newAPIClient()
	if err := requireToken(client); err != nil {
		return err
	}

	user, err := client.Me(ctx)
	if err != nil {
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("saved login has expired. Run 'folio login' again")
		}
		return fmt.Errorf("failed to fetch account: %w", err)
	}

	fmt.Printf("Logged in as %s\n", user.Email)
	if user.Name != "" {
		fmt.Printf("  Name: %s\n", user.Name)
	}
	if user.SubscriptionTier != "" {
		fmt.Printf("  Tier: %s\n", user.SubscriptionTier)
	}
	fmt.Printf("  Portfolios: %d\n", user.PortfoliosCount)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, _ := config.Load()
	if cfg.Token == "" {
		fmt.Println("Not logged in.")
		return nil
	}

	cfg.Token = ""
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}

	fmt.Println("✓ Logged out")
	return nil
}

// saveLogin persists the token, adopting the --server override so the
// next command talks to the same backend that issued it.
func saveLogin(token string) error {
	cfg, _ := config.Load()
	cfg.Token = token
	if server != "" {
		cfg.ServerURL = server
	}
	return config.Save(cfg)
}

// stdin is shared across prompts so consecutive reads don't drop
// buffered piped input.
var stdin = bufio.NewReader(os.Stdin)

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a secret without echoing it. Piped input falls
// back to a plain line read.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine("")
	}

	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
