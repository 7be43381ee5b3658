package main

import (
	"context"
	"fmt"

	"foliochat/cmd/folio/chat"
	"foliochat/internal/api"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// chatCmd opens the interactive chat interface
var chatCmd = &cobra.Command{
	Use:   "chat [portfolio-url]",
	Short: "Chat with a portfolio's AI assistant",
	Long: `Opens the interactive chat interface for a portfolio.

Visitors pass the portfolio's URL slug directly:

  folio chat acme-dana
  folio acme-dana

With no argument and a saved login, your own portfolios are listed so
you can pick one to preview.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&visitor, "visitor", "", "Visitor name shared with the portfolio owner")
}

// runChat resolves the target portfolio and hands off to the TUI
func runChat(cmd *cobra.Command, args []string) error {
	portfolioURL := ""
	if len(args) > 0 {
		portfolioURL = args[0]
	}

	if portfolioURL == "" {
		picked, err := pickOwnPortfolio(cmd.Context())
		if err != nil {
			return err
		}
		portfolioURL = picked
	}

	return chat.RunInteractiveChat(chat.Config{
		PortfolioURL: portfolioURL,
		VisitorName:  visitor,
		ServerURL:    server,
	})
}

// pickOwnPortfolio lists the logged-in user's portfolios and returns
// the chosen custom URL. A single portfolio is chosen automatically.
func pickOwnPortfolio(ctx context.Context) (string, error) {
	client := newAPIClient()
	if err := requireToken(client); err != nil {
		return "", fmt.Errorf("pass a portfolio URL, or log in to pick from your own: %w", err)
	}

	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	portfolios, err := client.ListPortfolios(lctx)
	if err != nil {
		return "", fmt.Errorf("failed to list portfolios: %w", err)
	}

	switch len(portfolios) {
	case 0:
		return "", fmt.Errorf("no portfolios yet. Run 'folio portfolio create' to upload one")
	case 1:
		fmt.Printf("Opening chat with %s...\n", portfolios[0].Name)
		return portfolios[0].CustomURL, nil
	}

	return runPortfolioPicker(portfolios)
}

// portfolioItem adapts an owned portfolio for the list component
type portfolioItem struct {
	portfolio api.Portfolio
}

func (i portfolioItem) Title() string {
	return i.portfolio.Name
}

func (i portfolioItem) Description() string {
	state := "inactive"
	if i.portfolio.IsActive {
		state = "active"
	}
	if !i.portfolio.IsProcessed {
		state += ", processing"
	}
	return fmt.Sprintf("/%s (%s)", i.portfolio.CustomURL, state)
}

func (i portfolioItem) FilterValue() string {
	return i.portfolio.Name + " " + i.portfolio.CustomURL
}

// pickerModel is the minimal list UI for choosing a portfolio
type pickerModel struct {
	list   list.Model
	choice string
}

func newPickerModel(portfolios []api.Portfolio) pickerModel {
	items := make([]list.Item, len(portfolios))
	for i, p := range portfolios {
		items[i] = portfolioItem{portfolio: p}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a portfolio"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// Don't intercept keys while the user is typing a filter
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "enter":
				if item, ok := m.list.SelectedItem().(portfolioItem); ok {
					m.choice = item.portfolio.CustomURL
				}
				return m, tea.Quit
			case "esc", "ctrl+c":
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

// runPortfolioPicker runs the picker and returns the selected URL
func runPortfolioPicker(portfolios []api.Portfolio) (string, error) {
	p := tea.NewProgram(newPickerModel(portfolios), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker failed: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.choice == "" {
		return "", fmt.Errorf("no portfolio selected")
	}
	return m.choice, nil
}
