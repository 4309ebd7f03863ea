package ui

import (
	"context"
	"strings"

	"hoteldesk/internal/model"
	"hoteldesk/internal/util"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// profileSavedMsg reports a saved profile so the header can show it.
type profileSavedMsg struct {
	profile model.Profile
	err     error
}

// ProfileFormModel edits the signed-in staff member's contact card.
type ProfileFormModel struct {
	backend      Backend
	log          *zap.Logger
	focusedField int
	inputs       []textinput.Model
	error        string
}

// NewProfileFormModel creates a profile editor prefilled with p.
func NewProfileFormModel(backend Backend, log *zap.Logger, p model.Profile) *ProfileFormModel {
	inputs := make([]textinput.Model, 3)

	// Name
	inputs[0] = textinput.New()
	inputs[0].Placeholder = "Full name"
	inputs[0].CharLimit = 100
	inputs[0].SetValue(p.Name)
	inputs[0].Focus()

	// Email
	inputs[1] = textinput.New()
	inputs[1].Placeholder = "name@hotel.com"
	inputs[1].CharLimit = 120
	inputs[1].SetValue(p.Email)

	// Phone
	inputs[2] = textinput.New()
	inputs[2].Placeholder = "+91 98450 00000"
	inputs[2].CharLimit = 20
	inputs[2].SetValue(p.Phone)

	return &ProfileFormModel{
		backend: backend,
		log:     log,
		inputs:  inputs,
	}
}

// Profile returns the profile as currently edited.
func (m *ProfileFormModel) Profile() model.Profile {
	return model.Profile{
		Name:  strings.TrimSpace(m.inputs[0].Value()),
		Email: strings.TrimSpace(m.inputs[1].Value()),
		Phone: strings.TrimSpace(m.inputs[2].Value()),
	}
}

func (m ProfileFormModel) Update(msg tea.Msg) (ProfileFormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case "ctrl+s":
		cmd := m.save()
		return m, cmd
	case "tab", "down":
		m.focusField((m.focusedField + 1) % len(m.inputs))
		return m, nil
	case "shift+tab", "up":
		m.focusField((m.focusedField - 1 + len(m.inputs)) % len(m.inputs))
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(keyMsg)
	m.error = ""
	return m, cmd
}

func (m *ProfileFormModel) focusField(i int) {
	m.inputs[m.focusedField].Blur()
	m.focusedField = i
	m.inputs[m.focusedField].Focus()
}

func (m *ProfileFormModel) save() tea.Cmd {
	p := m.Profile()
	if err := p.Validate(); err != nil {
		m.error = err.Error()
		return nil
	}
	backend, log := m.backend, m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := backend.UpdateProfile(ctx, p)
		if err != nil {
			log.Warn("profile update failed", zap.Error(err))
		} else {
			log.Info("profile updated")
		}
		return profileSavedMsg{profile: p, err: err}
	}
}

// View renders the form.
func (m *ProfileFormModel) View(width, height int) string {
	fields := []string{
		LabelStyle.Render("Edit profile"),
		renderFormField("Name", m.inputs[0], m.focusedField == 0),
		renderFormField("Email", m.inputs[1], m.focusedField == 1),
		renderFormField("Phone", m.inputs[2], m.focusedField == 2),
	}
	if m.error != "" {
		fields = append(fields, ErrorStyle.Render(m.error))
	}
	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(strings.Join(fields, "\n\n"))
}

// renderProfile renders the read-only contact card.
func renderProfile(p model.Profile, loaded bool, width, height int) string {
	var body string
	if !loaded {
		body = HelpDescStyle.Render("Loading profile...")
	} else {
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			StatValueStyle.Render(p.DisplayName()),
			"",
			LabelStyle.Render("Email  ")+util.Dash(p.Email),
			LabelStyle.Render("Phone  ")+util.Dash(p.Phone),
		)
	}
	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(body)
}
