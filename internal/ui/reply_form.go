package ui

import (
	"context"
	"fmt"
	"strings"

	"hoteldesk/internal/model"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// ReplyFormModel is the reply box for a guest query.
type ReplyFormModel struct {
	backend Backend
	log     *zap.Logger
	queryID string
	subject string
	input   textarea.Model
	error   string
}

// NewReplyFormModel creates a reply form for the query.
func NewReplyFormModel(backend Backend, log *zap.Logger, queryID, subject string) *ReplyFormModel {
	ta := textarea.New()
	ta.Placeholder = "Write a reply to the guest..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(6)
	ta.Focus()

	return &ReplyFormModel{
		backend: backend,
		log:     log,
		queryID: queryID,
		subject: subject,
		input:   ta,
	}
}

func (m ReplyFormModel) Update(msg tea.Msg) (ReplyFormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
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
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	if m.error != "" && strings.TrimSpace(m.input.Value()) != "" {
		m.error = ""
	}
	return m, cmd
}

func (m *ReplyFormModel) save() tea.Cmd {
	reply := strings.TrimSpace(m.input.Value())
	if reply == "" {
		m.error = "Reply cannot be empty"
		return nil
	}
	id := m.queryID
	return actionCmd(model.ViewQueries, fmt.Sprintf("Reply sent to query %s", id), m.log, func(ctx context.Context) error {
		return m.backend.ReplyQuery(ctx, id, reply)
	})
}

// View renders the form.
func (m *ReplyFormModel) View(width, height int) string {
	m.input.SetWidth(max(20, width-14))

	fields := []string{
		LabelStyle.Render(fmt.Sprintf("Reply to query #%s", m.queryID)) + "  " + HelpDescStyle.Render(m.subject),
		ActiveBorderStyle.Render(m.input.View()),
	}
	if m.error != "" {
		fields = append(fields, ErrorStyle.Render(m.error))
	}

	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(lipgloss.JoinVertical(lipgloss.Left, strings.Join(fields, "\n\n")))
}
