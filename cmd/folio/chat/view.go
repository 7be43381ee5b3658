// Package chat provides the interactive TUI chat surface for folioChat.
// This file contains view rendering functions for the TUI.
package chat

import (
	"fmt"
	"strings"
	"time"

	"foliochat/cmd/folio/ui"
	"foliochat/internal/session"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// quotaNoticeText is shown once the backend refuses a question because
// the portfolio's message allowance is spent. The refused question
// stays in the transcript without an answer.
const quotaNoticeText = "This portfolio has used up its included messages. " +
	"New questions will go unanswered until the owner upgrades their plan."

// =============================================================================
// VIEW RENDERING
// =============================================================================

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch msg.Role {
		case session.RoleUser:
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		default: // assistant
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render(m.assistantLabel()) + "\n")

			// Render markdown with panic recovery; mid-reveal the
			// content is an arbitrary prefix and may be unbalanced
			rendered := m.safeRenderMarkdown(msg.Content)
			sb.WriteString(rendered)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (m Model) assistantLabel() string {
	if m.ownerName != "" {
		return m.ownerName
	}
	return "folioChat"
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Handle Booting State
	if m.isBooting {
		return m.renderBootScreen()
	}

	// A failed portfolio lookup is terminal: no chat surface
	if m.sess == nil {
		return m.renderUnavailableScreen()
	}

	// Header
	header := m.renderHeader()

	// Content area (chat viewport + optional quota banner)
	content := m.viewport.View()
	if m.quotaNotice != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderQuotaBanner())
	}
	chatView := m.styles.Content.Render(content)

	// Input area, topped with quick replies while the conversation
	// still holds nothing but the welcome message
	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())
	if hint := m.renderSuggestedHint(); hint != "" {
		inputArea = lipgloss.JoinVertical(lipgloss.Left, hint, inputArea)
	}

	// Footer
	footer := m.renderFooter()

	// Compose full view
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" folioChat ")
	version := m.styles.Badge.Render("v1.0")

	// Status indicators
	var status string
	switch {
	case m.sess != nil && m.sess.IsSending():
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render("Thinking..."))
	case m.sess != nil && m.sess.Revealing():
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render("Answering..."))
	default:
		status = m.styles.Success.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		status,
	)

	portfolio := m.styles.Muted.Render(" " + m.portfolioLabel())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		portfolio,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) portfolioLabel() string {
	if m.sess == nil {
		return m.portfolioURL
	}
	info := m.sess.Portfolio()
	if info.Name == "" {
		return m.portfolioURL
	}
	return fmt.Sprintf("%s (%s)", info.Name, info.CustomURL)
}

func (m Model) renderFooter() string {
	visitor := "Anonymous"
	if m.visitorName != "" {
		visitor = "Visitor: " + m.visitorName
	}

	quotaIndicator := ""
	if m.quotaCount > 0 {
		quotaIndicator = fmt.Sprintf(" | Limit hit: %d", m.quotaCount)
	}

	// Show Ctrl+X prominently while an answer is typing out
	hotkeys := "Enter: send"
	if m.sess != nil && m.sess.Revealing() {
		hotkeys = "Ctrl+X: SKIP | " + hotkeys
	}
	hotkeys += fmt.Sprintf(" | Alt+1-%d: suggested | Ctrl+C: exit", len(defaultSuggestedQuestions))

	timestamp := time.Now().Format("15:04")
	help := m.styles.Muted.Render(fmt.Sprintf("%s%s | %s | %s",
		visitor, quotaIndicator, timestamp, hotkeys))
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(help)
}

func (m Model) renderSuggestedHint() string {
	if len(m.history) > 1 {
		return ""
	}
	qs := m.sess.SuggestedQuestions()
	if len(qs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Subtitle.Render("Try one of these:"))
	for i, q := range qs {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  Alt+%d ", i+1)))
		sb.WriteString(m.styles.Body.Render(q))
	}
	return sb.String()
}

func (m Model) renderQuotaBanner() string {
	label := m.styles.Warning.Render("Message limit reached  ")
	body := m.styles.Body.Render(m.quotaNotice)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.Warning).
		Padding(0, 1).
		Width(m.viewport.Width).
		MaxWidth(m.viewport.Width).
		Render(label + body)
}

func (m Model) renderBootScreen() string {
	spin := m.spinner.View()
	subtitle := m.styles.Badge.Render("Connecting")
	detail := m.styles.Muted.Render(fmt.Sprintf("Looking up %s...", m.portfolioURL))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		ui.Logo(m.styles),
		spin,
		"\n",
		subtitle,
		detail,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

func (m Model) renderUnavailableScreen() string {
	title := m.styles.Error.Render("Portfolio unavailable")
	detail := m.styles.Body.Render(fmt.Sprintf("Could not open a chat for %q.", m.portfolioURL))
	reason := ""
	if m.err != nil {
		reason = m.styles.Muted.Render(m.err.Error())
	}
	hint := m.styles.Muted.Render("Check the URL or try again later. Press Ctrl+C to exit.")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		detail,
		reason,
		"",
		hint,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// newMarkdownRenderer builds a glamour renderer for the active theme.
func newMarkdownRenderer(dark bool, wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	var renderer *glamour.TermRenderer
	if dark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(wrap),
		)
	}
	return renderer
}
