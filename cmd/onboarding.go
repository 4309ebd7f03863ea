package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"hoteldesk/internal/ui"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errOnboardingCanceled = errors.New("onboarding canceled")

// shouldRunOnboarding reports whether stdin is a terminal someone can
// answer the setup questions on.
func shouldRunOnboarding() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepBackend onboardingStep = iota
	stepLive
	stepDone
)

type onboardingModel struct {
	step     onboardingStep
	urlInput textinput.Model
	live     bool
	config   *Config
	status   string
	err      string
	canceled bool
	width    int
	height   int
}

// Setup screens reuse the dashboard palette so the first run looks like
// the app it configures.
var (
	obColorMuted  = ui.ColorMuted
	obColorText   = ui.ColorText
	obColorAccent = ui.ColorAccent

	obTitleStyle     = ui.LabelStyle
	obHeaderStyle    = ui.TitleStyle
	obTabsStyle      = ui.FooterStyle.BorderTop(false).BorderBottom(true).Padding(0, 2)
	obTabInactive    = lipgloss.NewStyle().Foreground(obColorMuted).Padding(0, 2)
	obTabActive      = obTabInactive.Foreground(obColorText).Bold(true).Underline(true)
	obPanelStyle     = ui.PanelStyle
	obInputStyle     = ui.ActiveBorderStyle.Padding(0, 1)
	obLabelStyle     = ui.LabelStyle
	obMutedStyle     = ui.HelpDescStyle
	obOptionStyle    = ui.NormalRowStyle
	obOptionSelected = ui.LabelStyle
	obWarnStyle      = ui.ErrorStyle.Padding(0)
	obFooterStyle    = ui.FooterStyle
)

func newOnboardingModel(defaults *Config) onboardingModel {
	in := textinput.New()
	in.Placeholder = DefaultBackendURL
	in.CharLimit = 300
	in.Prompt = "url> "
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
	in.SetValue(defaults.Backend.BaseURL)
	in.Focus()

	cfg := *defaults
	return onboardingModel{
		step:     stepBackend,
		urlInput: in,
		live:     true,
		config:   &cfg,
	}
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			m.status = "Setup canceled. Using default settings for this run."
			m.step = stepDone
			return m, tea.Quit
		}

		switch m.step {
		case stepBackend:
			switch msg.String() {
			case "enter":
				raw := strings.TrimSpace(m.urlInput.Value())
				if raw == "" {
					raw = DefaultBackendURL
				}
				u, err := url.Parse(raw)
				if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
					m.err = "Enter an http:// or https:// URL"
					return m, nil
				}
				m.err = ""
				m.config.Backend.BaseURL = strings.TrimRight(raw, "/")
				m.step = stepLive
				m.urlInput.Blur()
				return m, nil
			case "esc":
				m.config.Backend.BaseURL = DefaultBackendURL
				m.step = stepLive
				m.urlInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.urlInput, cmd = m.urlInput.Update(msg)
			return m, cmd
		case stepLive:
			switch msg.String() {
			case "y", "Y":
				m.live = true
				return m.finish()
			case "n", "N":
				m.live = false
				return m.finish()
			case "up", "k", "left", "h":
				m.live = true
			case "down", "j", "right", "l":
				m.live = false
			case "enter":
				// Enter commits the currently selected option
				return m.finish()
			case "esc":
				m.step = stepBackend
				return m, m.urlInput.Focus()
			case "q":
				m.canceled = true
				m.status = "Setup canceled. Using default settings for this run."
				m.step = stepDone
				return m, tea.Quit
			}
			return m, nil
		}
	}
	return m, nil
}

func (m onboardingModel) finish() (tea.Model, tea.Cmd) {
	m.config.Live.Enabled = m.live
	if m.live {
		m.status = "Live updates enabled."
	} else {
		m.status = "Live updates disabled. Tables refresh on r or on their timers."
	}
	m.step = stepDone
	return m, tea.Quit
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := m.renderHeader(width)
	tabs := m.renderTabs(width)
	footer := m.renderFooter(width)

	contentHeight := max(height-6, 8)
	content := m.renderContent(width, contentHeight)
	ui := lipgloss.JoinVertical(lipgloss.Left, header, tabs, content, footer)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(ui)
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("hoteldesk") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	backendTab := obTabInactive.Render("Backend")
	liveTab := obTabInactive.Render("Live updates")
	if m.step == stepBackend {
		backendTab = obTabActive.Render("Backend")
	}
	if m.step == stepLive {
		liveTab = obTabActive.Render("Live updates")
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, "  ", backendTab, liveTab))
}

func (m onboardingModel) renderFooter(width int) string {
	switch m.step {
	case stepBackend:
		return obFooterStyle.Width(width).Render("enter next  esc use default  ctrl+c cancel")
	case stepLive:
		return obFooterStyle.Width(width).Render("↑↓/jk to choose  y/n enter to confirm  esc back  q cancel")
	default:
		return obFooterStyle.Width(width).Render("Setup complete")
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepBackend:
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.urlInput.View())
		lines := []string{
			obLabelStyle.Render("Where is the hotel backend?"),
			"",
			obMutedStyle.Render("The dashboard reads queries, users, transactions, tasks,"),
			obMutedStyle.Render("guests and rooms from this server's /api endpoints."),
			"",
			obLabelStyle.Render("Backend URL"),
			input,
		}
		if m.err != "" {
			lines = append(lines, "", obWarnStyle.Render(m.err))
		}
		lines = append(lines, "", obMutedStyle.Render("Press Enter to continue, Esc to use "+DefaultBackendURL+"."))
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	case stepLive:
		question := obLabelStyle.Render("Listen for live changes from the backend?")
		on := "Enable live updates"
		off := "Disable live updates"

		var onDisplay, offDisplay string
		if m.live {
			onDisplay = "  " + obOptionSelected.Render("→ "+on)
			offDisplay = "    " + obOptionStyle.Render(off)
		} else {
			onDisplay = "    " + obOptionStyle.Render(on)
			offDisplay = "  " + obOptionSelected.Render("→ "+off)
		}

		body = lipgloss.JoinVertical(
			lipgloss.Left,
			question,
			"",
			onDisplay,
			offDisplay,
			"",
			obMutedStyle.Render("Open tables reload when the backend reports a change."),
			obMutedStyle.Render(fmt.Sprintf("You can change this later in %s", m.config.Path)),
		)
	default:
		msg := obMutedStyle.Render(m.status)
		if m.canceled || strings.Contains(strings.ToLower(m.status), "disabled") {
			msg = obWarnStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, obLabelStyle.Render("Onboarding Complete"), "", msg)
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

// runOnboarding asks for the backend URL and the live feed toggle. A
// canceled setup returns the defaults unchanged and writes nothing.
func runOnboarding(defaults *Config) (*Config, error) {
	model := newOnboardingModel(defaults)
	prog := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return nil, fmt.Errorf("unexpected onboarding model type")
	}
	if m.canceled {
		return nil, errOnboardingCanceled
	}
	return m.config, nil
}
