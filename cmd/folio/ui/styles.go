// Package ui provides the visual styling for the folioChat terminal client.
// Uses the folioChat brand color palette with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette based on folioChat brand guidelines
var (
	// Light Mode Colors
	LightBackground = lipgloss.Color("#fafafa") // hsl(0, 0%, 98%)
	LightForeground = lipgloss.Color("#18181b") // Near black
	LightPrimary    = lipgloss.Color("#4f46e5") // Indigo
	LightAccent     = lipgloss.Color("#0ea5e9") // Sky blue
	LightSecondary  = lipgloss.Color("#e4e4e7") // hsl(240, 5%, 90%)
	LightMuted      = lipgloss.Color("#a1a1aa") // hsl(240, 5%, 65%)
	LightBorder     = lipgloss.Color("#d4d4d8") // hsl(240, 6%, 84%)
	LightCard       = lipgloss.Color("#ffffff") // White

	// Dark Mode Colors (Default)
	DarkBackground = lipgloss.Color("#16161e") // hsl(240, 15%, 10%)
	DarkForeground = lipgloss.Color("#e4e4e7") // hsl(240, 5%, 90%)
	DarkPrimary    = lipgloss.Color("#818cf8") // Indigo (lightened)
	DarkAccent     = lipgloss.Color("#38bdf8") // Sky blue (lightened)
	DarkSecondary  = lipgloss.Color("#1f2030") // Darker indigo
	DarkMuted      = lipgloss.Color("#52525b") // Muted dark
	DarkBorder     = lipgloss.Color("#2b2c3b") // Border dark
	DarkCard       = lipgloss.Color("#1d1e2b") // Card dark

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#ef4444") // Red
	Success     = lipgloss.Color("#22c55e") // Green
	Warning     = lipgloss.Color("#f59e0b") // Amber
	Info        = lipgloss.Color("#3b82f6") // Blue
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectTheme auto-detects the terminal background or falls back to dark mode.
// TODO: Consider muesli/termenv for more robust background detection.
func DetectTheme() Theme {
	// COLORFGBG is usually "foreground;background". Background indexes
	// 0-6 and 8 are the standard dark palette entries.
	colorTerm := os.Getenv("COLORFGBG")
	if colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
				return LightTheme()
			}
		}
	}

	// Explicit light mode preference
	if os.Getenv("FOLIO_LIGHT_MODE") == "1" {
		return LightTheme()
	}

	// Default to dark mode
	return DarkTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	App     lipgloss.Style
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Interactive
	Prompt         lipgloss.Style
	UserInput      lipgloss.Style
	AssistantReply lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Code
	InlineCode lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		// Layout styles
		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		// Text styles
		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		// Interactive styles
		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		UserInput: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		AssistantReply: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		// Status styles
		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		// Code styles
		InlineCode: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Primary).
			Padding(0, 1),

		// Component styles
		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// DefaultStyles returns styles with the auto-detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Logo returns the folioChat ASCII banner
func Logo(s Styles) string {
	logo := `
  __       _ _        ___ _           _
 / _| ___ | (_) ___  / __| |__   __ _| |_
| |_ / _ \| | |/ _ \| |   | '_ \ / _' | __|
|  _| (_) | | | (_) | |___| | | | (_| | |_
|_|  \___/|_|_|\___/ \____|_| |_|\__,_|\__|
`
	return s.Title.Foreground(s.Theme.Primary).Render(logo)
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", width))
}
