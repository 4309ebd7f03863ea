package ui

import (
	"context"
	"fmt"
	"strings"

	"hoteldesk/internal/model"
	"hoteldesk/internal/tableview"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var taskStatusOptions = []string{"pending", "in_progress", "completed"}

// TaskFormModel updates the status and remarks of a staff task.
type TaskFormModel struct {
	backend Backend
	log     *zap.Logger

	taskID       string
	description  string
	status       choiceField
	remarks      textinput.Model
	focusedField int
}

// NewTaskFormModel creates a task editor prefilled from the task row.
func NewTaskFormModel(backend Backend, log *zap.Logger, row tableview.Row) *TaskFormModel {
	status := strings.ReplaceAll(strings.ToLower(row.Value("status")), " ", "_")
	if status == "" {
		status = "pending"
	}

	remarks := textinput.New()
	remarks.Placeholder = "Remarks (optional)"
	remarks.CharLimit = 500
	remarks.SetValue(row.Value("remarks"))

	return &TaskFormModel{
		backend:     backend,
		log:         log,
		taskID:      row.Value("task_id"),
		description: row.Value("description"),
		status:      newChoiceField("Status", taskStatusOptions, status),
		remarks:     remarks,
	}
}

// Request returns the update as currently edited.
func (m *TaskFormModel) Request() model.TaskUpdate {
	return model.TaskUpdate{
		TaskID:  m.taskID,
		Status:  m.status.Value(),
		Remarks: strings.TrimSpace(m.remarks.Value()),
	}
}

func (m TaskFormModel) Update(msg tea.Msg) (TaskFormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.remarks, cmd = m.remarks.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case "ctrl+s":
		req := m.Request()
		return m, actionCmd(model.ViewTasks, fmt.Sprintf("Task %s updated", req.TaskID), m.log, func(ctx context.Context) error {
			return m.backend.UpdateTask(ctx, req)
		})
	case "tab", "shift+tab":
		m.focusField(1 - m.focusedField)
		return m, nil
	}

	if m.focusedField == 0 {
		switch keyMsg.String() {
		case "right", "l", " ", "enter":
			m.status.Next()
		case "left", "h":
			m.status.Prev()
		case "down", "j":
			m.focusField(1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.remarks, cmd = m.remarks.Update(keyMsg)
	return m, cmd
}

func (m *TaskFormModel) focusField(i int) {
	m.focusedField = i
	if i == 1 {
		m.remarks.Focus()
	} else {
		m.remarks.Blur()
	}
}

// View renders the form.
func (m *TaskFormModel) View(width, height int) string {
	fields := []string{
		LabelStyle.Render("Update task "+m.taskID) + "  " + HelpDescStyle.Render(m.description),
		m.status.View(m.focusedField == 0),
		renderFormField("Remarks", m.remarks, m.focusedField == 1),
	}
	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(strings.Join(fields, "\n\n"))
}
