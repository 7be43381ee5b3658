package chat

import (
	"foliochat/cmd/folio/ui"
	appconfig "foliochat/internal/config"
	"foliochat/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (Ctrl+C, Esc, Ctrl+X)
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			// Graceful shutdown before quit
			m.performShutdown()
			return m, tea.Quit

		case tea.KeyCtrlX:
			// Ctrl+X freezes the typewriter at its current prefix.
			// The partial answer stays in the transcript as-is.
			if m.sess != nil {
				m.sess.CancelActiveReveal()
			}
			return m, nil

		case tea.KeyEnter:
			return m.handleSubmit()
		}

		// Alt+1..9 submit a suggested question
		if msg.Alt && len(msg.Runes) > 0 {
			r := msg.Runes[0]
			if r >= '1' && r <= '9' {
				return m.handleSuggested(int(r - '1'))
			}
		}

		// Up/Down walk the input history; page keys drive the viewport
		switch msg.Type {
		case tea.KeyUp:
			if m.historyIndex > 0 {
				m.historyIndex--
				m.textinput.SetValue(m.inputHistory[m.historyIndex])
				m.textinput.CursorEnd()
			}
			return m, nil

		case tea.KeyDown:
			if m.historyIndex < len(m.inputHistory) {
				m.historyIndex++
				if m.historyIndex == len(m.inputHistory) {
					m.textinput.SetValue("")
				} else {
					m.textinput.SetValue(m.inputHistory[m.historyIndex])
					m.textinput.CursorEnd()
				}
			}
			return m, nil

		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

		// Handle regular key input
		m.textinput, tiCmd = m.textinput.Update(msg)
		return m, tiCmd

	case windowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		inputHeight := 3
		paddingHeight := 2

		chatWidth := msg.Width - 4
		if chatWidth < 1 {
			chatWidth = 1
		}

		bannerHeight := 0
		if m.quotaNotice != "" {
			// 1 content line + 2 border lines
			bannerHeight = 3
		}

		calcHeight := msg.Height - headerHeight - footerHeight - inputHeight - paddingHeight - bannerHeight
		if calcHeight < 1 {
			calcHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(chatWidth, calcHeight)
			m.ready = true
		} else {
			m.viewport.Width = chatWidth
			m.viewport.Height = calcHeight
		}

		// Reduce input width to accommodate border (2) + padding (2)
		m.textinput.Width = chatWidth - 4

		// Update renderer word wrap and re-render with the new width
		if m.renderer != nil {
			m.renderer = newMarkdownRenderer(m.styles.Theme.IsDark, chatWidth-4)
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
		}

	case tea.WindowSizeMsg:
		// Convert to our alias and re-process
		return m.Update(windowSizeMsg(msg))

	case spinner.TickMsg:
		if m.busy() {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case bootCompleteMsg:
		m.isBooting = false
		if msg.err != nil {
			// Lookup failed: the conversation never opens. The view
			// renders the unavailable screen instead of an input area.
			m.err = msg.err
			m.textinput.Blur()
			return m, nil
		}
		m.sess = msg.sess
		m.ownerName = m.sess.Portfolio().OwnerName
		m.history = m.sess.Messages()
		m.textinput.Placeholder = "Ask me anything... (Enter to send, Ctrl+C to exit)"
		m.textinput.Focus()
		if m.ready {
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
		}
		return m, tea.Batch(m.waitForUpdate(), m.waitForQuota(), textinput.Blink)

	case sessionUpdateMsg:
		if m.sess == nil {
			return m, nil
		}
		m.history = m.sess.Messages()
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, m.waitForUpdate()

	case quotaMsg:
		m.quotaCount++
		m.quotaNotice = quotaNoticeText
		logging.UI("chat: quota refusal #%d", m.quotaCount)
		// Trigger re-layout so the banner gets room
		return m, tea.Batch(m.waitForQuota(), func() tea.Msg {
			return windowSizeMsg{Width: m.width, Height: m.height}
		})

	case sessionClosedMsg:
		// Engine shut down; stop re-arming listeners
		return m, nil

	case configReloadMsg:
		if msg.cfg != nil {
			m = m.applyAppConfig(msg.cfg)
		}
		return m, m.waitForConfigReload()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// busy reports whether the spinner should keep ticking.
func (m Model) busy() bool {
	if m.isBooting {
		return true
	}
	return m.sess != nil && (m.sess.IsSending() || m.sess.Revealing())
}

// handleSubmit hands the typed question to the engine. The engine
// drops blank input and anything submitted while a request is already
// in flight; only an accepted submission clears the input box.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.sess == nil || m.isBooting {
		return m, nil
	}
	input := m.textinput.Value()
	if !m.sess.SubmitQuestion(input) {
		return m, nil
	}

	// Append to input history, skipping immediate repeats
	if len(m.inputHistory) == 0 || m.inputHistory[len(m.inputHistory)-1] != input {
		m.inputHistory = append(m.inputHistory, input)
	}
	m.historyIndex = len(m.inputHistory)

	m.textinput.Reset()
	m.quotaNotice = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return windowSizeMsg{Width: m.width, Height: m.height}
	})
}

// handleSuggested submits the i-th suggested question, subject to the
// same in-flight gate as typed input.
func (m Model) handleSuggested(i int) (tea.Model, tea.Cmd) {
	if m.sess == nil || m.isBooting {
		return m, nil
	}
	if !m.sess.SubmitSuggestedQuestion(i) {
		return m, nil
	}
	m.quotaNotice = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return windowSizeMsg{Width: m.width, Height: m.height}
	})
}

// applyAppConfig folds a reloaded tuning file into the running chat.
// Reveal pacing reaches the engine directly; a theme change rebuilds
// the styles and the markdown renderer.
func (m Model) applyAppConfig(cfg *appconfig.Config) Model {
	if m.sess != nil {
		m.sess.SetRevealPacing(cfg.GetRevealInterval(), cfg.GetRevealChunk())
	}

	var theme ui.Theme
	switch cfg.Chat.Theme {
	case "dark":
		theme = ui.DarkTheme()
	case "light":
		theme = ui.LightTheme()
	default:
		return m
	}
	if theme.IsDark == m.styles.Theme.IsDark {
		return m
	}

	m.styles = ui.NewStyles(theme)
	m.textinput.PromptStyle = m.styles.Prompt
	m.textinput.TextStyle = m.styles.UserInput
	m.spinner.Style = m.styles.Spinner

	wrap := 80
	if m.ready {
		wrap = m.viewport.Width - 4
	}
	m.renderer = newMarkdownRenderer(theme.IsDark, wrap)
	if m.ready {
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
	}

	logging.UI("chat: theme switched to %s", cfg.Chat.Theme)
	return m
}
