package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"hoteldesk/internal/model"
	"hoteldesk/internal/tableview"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	roleOptions       = []string{string(model.RoleAdmin), string(model.RoleStaff), string(model.RoleGuest)}
	userStatusOptions = []string{"active", "disabled"}
)

// accessSavedMsg reports a single-user access update so it can be undone.
type accessSavedMsg struct {
	id     string
	before model.UserAccess
	after  model.UserAccess
	err    error
}

// AccessFormModel edits one user's role, status and privileges.
type AccessFormModel struct {
	backend Backend
	log     *zap.Logger

	userID   string
	username string
	before   model.UserAccess

	role         choiceField
	status       choiceField
	privileges   map[string]bool
	focusedField int // 0 role, 1 status, 2.. privileges
}

// accessFromRow reads the current access settings of a user row.
func accessFromRow(row tableview.Row) model.UserAccess {
	access := model.UserAccess{
		Role:   row.Value("role"),
		Status: row.Value("status"),
	}
	if access.Status == "" {
		access.Status = "active"
	}
	switch p := row["privileges"].(type) {
	case []any:
		for _, v := range p {
			if s := strings.TrimSpace(tableview.Stringify(v)); s != "" {
				access.Privileges = append(access.Privileges, s)
			}
		}
	case string:
		for _, s := range strings.FieldsFunc(p, func(r rune) bool { return r == ',' || r == ';' }) {
			if s = strings.TrimSpace(s); s != "" {
				access.Privileges = append(access.Privileges, s)
			}
		}
	}
	return access
}

// NewAccessFormModel creates an editor prefilled from the user row.
func NewAccessFormModel(backend Backend, log *zap.Logger, row tableview.Row) *AccessFormModel {
	before := accessFromRow(row)
	granted := make(map[string]bool, len(before.Privileges))
	for _, p := range before.Privileges {
		granted[strings.ToUpper(p)] = true
	}

	return &AccessFormModel{
		backend:    backend,
		log:        log,
		userID:     row.Value("user_id"),
		username:   row.Value("username"),
		before:     before,
		role:       newChoiceField("Role", roleOptions, before.Role),
		status:     newChoiceField("Status", userStatusOptions, before.Status),
		privileges: granted,
	}
}

func (m *AccessFormModel) fieldCount() int { return 2 + len(model.Privileges) }

func (m AccessFormModel) Update(msg tea.Msg) (AccessFormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case "ctrl+s":
		cmd := m.save()
		return m, cmd
	case "tab", "down", "j":
		m.focusedField = (m.focusedField + 1) % m.fieldCount()
	case "shift+tab", "up", "k":
		m.focusedField = (m.focusedField - 1 + m.fieldCount()) % m.fieldCount()
	case "right", "l", " ", "enter":
		m.change(true)
	case "left", "h":
		m.change(false)
	}
	return m, nil
}

func (m *AccessFormModel) change(forward bool) {
	switch m.focusedField {
	case 0:
		if forward {
			m.role.Next()
		} else {
			m.role.Prev()
		}
	case 1:
		if forward {
			m.status.Next()
		} else {
			m.status.Prev()
		}
	default:
		p := model.Privileges[m.focusedField-2]
		m.privileges[p] = !m.privileges[p]
	}
}

// Access returns the settings as currently edited.
func (m *AccessFormModel) Access() model.UserAccess {
	access := model.UserAccess{
		Role:       m.role.Value(),
		Status:     m.status.Value(),
		Privileges: []string{},
	}
	for _, p := range model.Privileges {
		if m.privileges[p] {
			access.Privileges = append(access.Privileges, p)
		}
	}
	return access
}

func (m *AccessFormModel) save() tea.Cmd {
	id := m.userID
	before := m.before
	after := m.Access()
	backend := m.backend
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := backend.UpdateUserAccess(ctx, id, after)
		if err != nil {
			log.Warn("access update failed", zap.String("user_id", id), zap.Error(err))
		} else {
			log.Info("access updated",
				zap.String("user_id", id),
				zap.String("role", after.Role),
				zap.String("status", after.Status),
				zap.Strings("privileges", after.Privileges))
		}
		return accessSavedMsg{id: id, before: before, after: after, err: err}
	}
}

// View renders the form.
func (m *AccessFormModel) View(width, height int) string {
	fields := []string{
		LabelStyle.Render(fmt.Sprintf("Edit access for %s (#%s)", m.username, m.userID)),
		m.role.View(m.focusedField == 0),
		m.status.View(m.focusedField == 1),
	}

	var boxes []string
	for i, p := range model.Privileges {
		boxes = append(boxes, renderCheckbox(p, m.privileges[p], m.focusedField == i+2))
	}
	privStyle := BorderStyle
	if m.focusedField >= 2 {
		privStyle = ActiveBorderStyle
	}
	fields = append(fields, privStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render("Privileges"),
		strings.Join(boxes, "  "),
	)))

	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(strings.Join(fields, "\n\n"))
}

// BulkFormModel applies a role and/or status to every marked user.
type BulkFormModel struct {
	backend Backend
	log     *zap.Logger

	ids          []int64
	role         choiceField
	status       choiceField
	focusedField int
	error        string
}

// NewBulkFormModel creates a bulk editor for keys, which must be numeric
// user ids.
func NewBulkFormModel(backend Backend, log *zap.Logger, keys []string) (*BulkFormModel, error) {
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", k, err)
		}
		ids = append(ids, id)
	}

	unchanged := map[string]string{"": "(unchanged)"}
	return &BulkFormModel{
		backend: backend,
		log:     log,
		ids:     ids,
		role:    choiceField{label: "Role", options: append([]string{""}, roleOptions...), display: unchanged},
		status:  choiceField{label: "Status", options: append([]string{""}, userStatusOptions...), display: unchanged},
	}, nil
}

// Request returns the bulk update as currently edited.
func (m *BulkFormModel) Request() model.BulkUpdate {
	return model.BulkUpdate{IDs: m.ids, Role: m.role.Value(), Status: m.status.Value()}
}

func (m BulkFormModel) Update(msg tea.Msg) (BulkFormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	field := &m.role
	if m.focusedField == 1 {
		field = &m.status
	}

	switch keyMsg.String() {
	case "esc":
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case "ctrl+s":
		req := m.Request()
		if req.Role == "" && req.Status == "" {
			m.error = "Pick a role or status to apply"
			return m, nil
		}
		return m, actionCmd(model.ViewAccess, fmt.Sprintf("Updated %d users", len(req.IDs)), m.log, func(ctx context.Context) error {
			return m.backend.BulkUpdateUsers(ctx, req)
		})
	case "tab", "shift+tab", "up", "down", "j", "k":
		m.focusedField = 1 - m.focusedField
	case "right", "l", " ", "enter":
		field.Next()
		m.error = ""
	case "left", "h":
		field.Prev()
		m.error = ""
	}
	return m, nil
}

// View renders the form.
func (m *BulkFormModel) View(width, height int) string {
	fields := []string{
		LabelStyle.Render(fmt.Sprintf("Bulk update %d users", len(m.ids))),
		m.role.View(m.focusedField == 0),
		m.status.View(m.focusedField == 1),
	}
	if m.error != "" {
		fields = append(fields, ErrorStyle.Render(m.error))
	}
	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(strings.Join(fields, "\n\n"))
}
