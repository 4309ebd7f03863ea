package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hoteldesk/internal/model"
	"hoteldesk/internal/tableview"
	"hoteldesk/internal/util"

	"github.com/charmbracelet/lipgloss"
)

// DetailModel shows every field of one row plus view-specific history.
type DetailModel struct {
	def     viewDef
	row     tableview.Row
	replies []model.QueryReply
	audit   []model.AuditEntry
	admin   bool
}

// NewDetailModel creates a detail screen for row.
func NewDetailModel(def viewDef, row tableview.Row, admin bool) *DetailModel {
	return &DetailModel{
		def:     def,
		row:     row,
		replies: repliesFromRow(row),
		admin:   admin,
	}
}

// Key returns the primary key of the shown row.
func (m *DetailModel) Key() string { return m.row.Value(m.def.primaryKey) }

func (m *DetailModel) Title() string {
	switch m.def.view {
	case model.ViewQueries:
		if s := m.row.Value("subject"); s != "" {
			return s
		}
	case model.ViewAccess:
		if s := m.row.Value("username"); s != "" {
			return s
		}
	case model.ViewGuests:
		if s := m.row.Value("name"); s != "" {
			return s
		}
	}
	return "#" + m.Key()
}

func (m *DetailModel) SetAudit(entries []model.AuditEntry) {
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	m.audit = entries
}

func repliesFromRow(row tableview.Row) []model.QueryReply {
	raw, ok := row["replies"].([]any)
	if !ok {
		return nil
	}
	var out []model.QueryReply
	for _, r := range raw {
		obj, ok := r.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.QueryReply{
			By:  tableview.Stringify(obj["by"]),
			Msg: tableview.Stringify(obj["msg"]),
			At:  tableview.Stringify(obj["at"]),
		})
	}
	return out
}

// fieldOrder lists the view's columns first, then any other fields sorted.
func (m *DetailModel) fieldOrder() []string {
	seen := map[string]bool{"replies": true}
	var keys []string
	for _, c := range m.def.columns {
		keys = append(keys, c.key)
		seen[c.key] = true
	}
	var rest []string
	for k := range m.row {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func (m *DetailModel) shortcuts() string {
	var keys []string
	switch m.def.view {
	case model.ViewQueries:
		keys = append(keys, "R reply")
		if !strings.EqualFold(m.row.Value("status"), "resolved") {
			keys = append(keys, "v resolve")
		}
		if m.admin {
			keys = append(keys, "d delete")
		}
	case model.ViewAccess:
		if m.admin {
			keys = append(keys, "e edit")
		}
	case model.ViewTasks:
		keys = append(keys, "e update")
	}
	keys = append(keys, "y copy", "h back")
	return strings.Join(keys, "  ")
}

// View renders the detail screen.
func (m *DetailModel) View(width, height int) string {
	var sections []string

	kinds := map[string]columnKind{}
	labels := map[string]string{}
	for _, c := range m.def.columns {
		kinds[c.key] = c.kind
		labels[c.key] = c.label
	}

	var fields []string
	for _, key := range m.fieldOrder() {
		label := labels[key]
		if label == "" {
			label = strings.ReplaceAll(key, "_", " ")
		}
		if label == "" {
			continue
		}
		value := m.row.Value(key)
		switch kinds[key] {
		case kindAmount:
			value = util.FormatAmount(value)
		case kindDate:
			value = util.FormatDate(value)
		}
		fields = append(fields, renderField(strings.ToUpper(label[:1])+label[1:], value))
	}
	sections = append(sections, strings.Join(fields, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))

	switch m.def.view {
	case model.ViewQueries:
		sections = append(sections, divider, m.renderReplies())
	case model.ViewAccess:
		sections = append(sections, divider, m.renderAudit())
	}

	content := PanelStyle.
		Width(width - 4).
		Render(strings.Join(sections, "\n\n"))

	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(HelpDescStyle.Render(m.shortcuts()))

	return lipgloss.JoinVertical(lipgloss.Left, header, content)
}

func (m *DetailModel) renderReplies() string {
	if len(m.replies) == 0 {
		return HelpDescStyle.Render("No replies yet")
	}
	lines := []string{LabelStyle.Render("Replies:")}
	for _, r := range m.replies {
		who := util.Dash(r.By)
		when := util.FormatDateHuman(r.At, time.Now())
		lines = append(lines,
			HelpKeyStyle.Render(who)+" "+HelpDescStyle.Render(when),
			"  "+NormalRowStyle.Render(r.Msg))
	}
	return strings.Join(lines, "\n")
}

func (m *DetailModel) renderAudit() string {
	if m.audit == nil {
		return HelpDescStyle.Render("Loading audit log...")
	}
	if len(m.audit) == 0 {
		return HelpDescStyle.Render("No audit entries")
	}
	lines := []string{LabelStyle.Render(fmt.Sprintf("Audit log (%d):", len(m.audit)))}
	for _, e := range m.audit {
		lines = append(lines, fmt.Sprintf("%s  %s %s %s",
			HelpDescStyle.Render(util.FormatDate(e.When)),
			HelpKeyStyle.Render(e.Actor),
			NormalRowStyle.Render(e.Action),
			NormalRowStyle.Render(e.Target)))
	}
	return strings.Join(lines, "\n")
}

func renderField(label, value string) string {
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(util.Dash(util.OneLine(value)))
}
