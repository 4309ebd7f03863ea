package ui

import (
	"fmt"
	"sort"
	"strings"

	"hoteldesk/internal/model"
	"hoteldesk/internal/store"
	"hoteldesk/internal/tableview"
	"hoteldesk/internal/util"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

type tableColumn struct {
	columnDef
	hidden bool
}

// TableModel is one dashboard tab: a controller plus the column, cursor
// and input state needed to drive it from the keyboard.
type TableModel struct {
	def  viewDef
	ctrl *tableview.Controller

	columns      []tableColumn
	activeColumn int
	cursor       int // row within the visible page
	filterField  int // index into def.filterFields cycled by f

	marked map[string]bool

	search textinput.Model
	pager  paginator.Model

	loaded      bool
	loading     bool
	autoRefresh bool
	stats       []model.Stat
}

// NewTableModel creates an empty table for def.
func NewTableModel(def viewDef) *TableModel {
	cols := make([]tableColumn, len(def.columns))
	for i, c := range def.columns {
		cols[i] = tableColumn{columnDef: c}
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 100
	if len(def.searchFields) > 0 {
		ti.Placeholder = "search " + strings.Join(def.searchFields, ", ")
	} else {
		ti.Placeholder = "search all fields"
	}

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = lipgloss.NewStyle().Foreground(ColorAccent).Render("•")
	p.InactiveDot = lipgloss.NewStyle().Foreground(ColorMuted).Render("•")

	return &TableModel{
		def: def,
		ctrl: tableview.New(tableview.Config{
			PageSize:     def.pageSize,
			SearchFields: def.searchFields,
		}),
		columns: cols,
		marked:  map[string]bool{},
		search:  ti,
		pager:   p,
	}
}

// SetRows replaces the table data. Marks on rows that disappeared are
// dropped.
func (m *TableModel) SetRows(rows []tableview.Row) {
	m.ctrl.SetData(rows)
	m.loaded = true
	m.loading = false

	present := make(map[string]bool, len(rows))
	for _, r := range rows {
		present[r.Value(m.def.primaryKey)] = true
	}
	for k := range m.marked {
		if !present[k] {
			delete(m.marked, k)
		}
	}

	if m.def.localSummary != nil {
		m.stats = m.def.localSummary(rows)
	}
	m.clampCursor()
}

// SetSearch applies the free-text query.
func (m *TableModel) SetSearch(text string) {
	m.ctrl.SetFilterText(text)
	m.cursor = 0
}

func (m *TableModel) clampCursor() {
	n := len(m.ctrl.VisibleSlice().Rows)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the row under the cursor.
func (m *TableModel) Selected() (tableview.Row, bool) {
	rows := m.ctrl.VisibleSlice().Rows
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil, false
	}
	return rows[m.cursor], true
}

// SelectedKey returns the primary key of the row under the cursor.
func (m *TableModel) SelectedKey() string {
	row, ok := m.Selected()
	if !ok {
		return ""
	}
	return row.Value(m.def.primaryKey)
}

// MoveDown moves the cursor down, continuing on the next page.
func (m *TableModel) MoveDown() {
	n := len(m.ctrl.VisibleSlice().Rows)
	if m.cursor < n-1 {
		m.cursor++
		return
	}
	if m.NextPage() {
		m.cursor = 0
	}
}

// MoveUp moves the cursor up, continuing on the previous page.
func (m *TableModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		return
	}
	if m.PrevPage() {
		m.cursor = len(m.ctrl.VisibleSlice().Rows) - 1
	}
}

// JumpToTop moves to the first row of the page.
func (m *TableModel) JumpToTop() { m.cursor = 0 }

// JumpToBottom moves to the last row of the page.
func (m *TableModel) JumpToBottom() {
	m.cursor = len(m.ctrl.VisibleSlice().Rows) - 1
	m.clampCursor()
}

// NextPage reports whether the page changed.
func (m *TableModel) NextPage() bool {
	return m.changePage(1)
}

// PrevPage reports whether the page changed.
func (m *TableModel) PrevPage() bool {
	return m.changePage(-1)
}

func (m *TableModel) changePage(delta int) bool {
	before := m.ctrl.CurrentPage()
	m.ctrl.ChangePage(delta)
	if m.ctrl.CurrentPage() == before {
		return false
	}
	m.cursor = 0
	return true
}

func (m *TableModel) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *TableModel) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for offset := 1; offset < len(m.columns); offset++ {
		i := (m.activeColumn + offset) % len(m.columns)
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

func (m *TableModel) activeKey() string { return m.columns[m.activeColumn].key }

func (m *TableModel) activeLabel() string {
	return strings.ToUpper(m.columns[m.activeColumn].label)
}

func (m *TableModel) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *TableModel) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

// JumpToColumn activates the number-th visible column, counting from 1.
func (m *TableModel) JumpToColumn(number int) bool {
	visible := m.visibleColumnIndexes()
	if number < 1 || number > len(visible) {
		return false
	}
	m.activeColumn = visible[number-1]
	return true
}

// SortActiveColumn sorts by the active column; pressing it again on the
// same column flips direction.
func (m *TableModel) SortActiveColumn() string {
	m.ctrl.SetSort(m.activeKey())
	m.clampCursor()
	spec, _ := m.ctrl.Sort()
	if spec.Ascending {
		return fmt.Sprintf("Sorted %s ascending", m.activeLabel())
	}
	return fmt.Sprintf("Sorted %s descending", m.activeLabel())
}

func (m *TableModel) ClearSort() bool {
	if _, ok := m.ctrl.Sort(); !ok {
		return false
	}
	m.ctrl.ClearSort()
	m.clampCursor()
	return true
}

func (m *TableModel) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *TableModel) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

// FilterBySelectedValue filters the active column by the selected cell.
// Applying it to the value already filtered on removes the filter.
func (m *TableModel) FilterBySelectedValue() string {
	row, ok := m.Selected()
	if !ok {
		return "No rows to filter"
	}
	key := m.activeKey()
	value := row.Value(key)
	if strings.TrimSpace(value) == "" {
		return "No filterable value in selected cell"
	}

	m.cursor = 0
	if m.ctrl.FieldFilter(key) == value {
		m.ctrl.SetFieldFilter(key, "")
		return "Filter cleared"
	}
	m.ctrl.SetFieldFilter(key, value)
	return fmt.Sprintf("Filtered %s = %s", m.activeLabel(), value)
}

// ClearFilter drops the search text and every field filter.
func (m *TableModel) ClearFilter() bool {
	if m.ctrl.FilterText() == "" && len(m.ctrl.FieldFilters()) == 0 {
		return false
	}
	m.ctrl.ClearFilters()
	m.search.SetValue("")
	m.cursor = 0
	return true
}

// CycleFieldFilter steps the current filter field through "all" and each
// value present in the data.
func (m *TableModel) CycleFieldFilter() string {
	if len(m.def.filterFields) == 0 {
		return fmt.Sprintf("%s has no field filters", m.def.title)
	}
	field := m.def.filterFields[m.filterField]
	options := append([]string{""}, m.ctrl.Distinct(field)...)

	current := m.ctrl.FieldFilter(field)
	next := options[0]
	for i, o := range options {
		if o == current {
			next = options[(i+1)%len(options)]
			break
		}
	}

	m.ctrl.SetFieldFilter(field, next)
	m.cursor = 0
	if next == "" {
		return fmt.Sprintf("%s: all", strings.ToUpper(field))
	}
	return fmt.Sprintf("%s = %s", strings.ToUpper(field), next)
}

// NextFilterField switches which field CycleFieldFilter steps through.
func (m *TableModel) NextFilterField() string {
	if len(m.def.filterFields) == 0 {
		return fmt.Sprintf("%s has no field filters", m.def.title)
	}
	m.filterField = (m.filterField + 1) % len(m.def.filterFields)
	return fmt.Sprintf("f now filters %s", strings.ToUpper(m.def.filterFields[m.filterField]))
}

// ToggleMark marks or unmarks the selected row for bulk actions.
func (m *TableModel) ToggleMark() bool {
	key := m.SelectedKey()
	if key == "" {
		return false
	}
	if m.marked[key] {
		delete(m.marked, key)
	} else {
		m.marked[key] = true
	}
	return true
}

// MarkedKeys returns the marked primary keys in sorted order.
func (m *TableModel) MarkedKeys() []string {
	keys := make([]string, 0, len(m.marked))
	for k := range m.marked {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *TableModel) ClearMarks() {
	m.marked = map[string]bool{}
}

// Prefs captures what is remembered between runs.
func (m *TableModel) Prefs() store.ViewPrefs {
	prefs := store.ViewPrefs{
		SortAsc:      true,
		AutoRefresh:  m.autoRefresh,
		ActiveColumn: m.activeKey(),
	}
	if spec, ok := m.ctrl.Sort(); ok {
		prefs.SortField = spec.Field
		prefs.SortAsc = spec.Ascending
	}
	for _, c := range m.columns {
		if c.hidden {
			prefs.HiddenColumns = append(prefs.HiddenColumns, c.key)
		}
	}
	return prefs
}

func (m *TableModel) ApplyPrefs(prefs store.ViewPrefs) {
	m.ctrl.RestoreSort(prefs.SortField, prefs.SortAsc)
	m.autoRefresh = prefs.AutoRefresh

	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, c := range m.columns {
			if c.key == prefs.ActiveColumn {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
	m.clampCursor()
}

func (m *TableModel) TableMeta() string {
	parts := []string{fmt.Sprintf("col %s", m.activeLabel())}
	if meta := m.ctrl.Meta(); meta != "" {
		parts = append(parts, meta)
	}
	if len(m.def.filterFields) > 0 {
		parts = append(parts, fmt.Sprintf("f:%s", m.def.filterFields[m.filterField]))
	}
	if n := len(m.marked); n > 0 {
		parts = append(parts, fmt.Sprintf("%d marked", n))
	}
	return strings.Join(parts, "  ·  ")
}

// View renders the table page.
func (m *TableModel) View(width, height int, searching bool) string {
	var top []string
	if len(m.stats) > 0 {
		top = append(top, renderStats(m.stats, width))
	}
	if searching || m.search.Value() != "" {
		top = append(top, InputStyle.Render(m.search.View()))
	}
	topBlock := strings.Join(top, "\n")
	bodyHeight := height - lipgloss.Height(topBlock)
	if topBlock == "" {
		bodyHeight = height
	}

	body := m.renderBody(width, bodyHeight)
	if topBlock == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, topBlock, body)
}

func (m *TableModel) renderBody(width, height int) string {
	if !m.loaded {
		return EmptyStateStyle.Width(width).Height(height).Render("Loading " + strings.ToLower(m.def.title) + "...")
	}
	if m.ctrl.Len() == 0 {
		return EmptyStateStyle.Width(width).Height(height).Render(
			fmt.Sprintf("No %s to show.\n    Press  r  to reload.", strings.ToLower(m.def.title)))
	}

	visible := m.visibleColumnIndexes()
	if len(visible) == 0 {
		return EmptyStateStyle.Width(width).Height(height).Render("No visible columns. Press C to show all columns.")
	}

	slice := m.ctrl.VisibleSlice()
	sortSpec, sorted := m.ctrl.Sort()

	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := formatHeaderLabel(col.label)
		if idx == m.activeColumn {
			label = renderActiveHeaderLabel(label)
		}
		if sorted && sortSpec.Field == col.key {
			if sortSpec.Ascending {
				label += " ↑"
			} else {
				label += " ↓"
			}
		}
		if m.ctrl.FieldFilter(col.key) != "" {
			label += " ⚑"
		}
		cellWidth := max(col.width+2, lipgloss.Width(label)+4)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if len(widths) > 0 {
		extra := width - totalFixed - 2
		if extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	var rows []string
	if len(slice.Rows) == 0 {
		rows = append(rows, HelpDescStyle.Render("  No rows match the current filters. Press N to clear."))
	}
	for i, row := range slice.Rows {
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, 0, len(visible))
		for n, idx := range visible {
			col := m.columns[idx]
			cell := formatCell(col.columnDef, row.Value(col.key), i == m.cursor)
			if n == 0 && m.marked[row.Value(m.def.primaryKey)] {
				mark := "✓"
				if i != m.cursor {
					mark = MarkStyle.Render(mark)
				}
				cell = mark + " " + cell
			}
			cells = append(cells, cell)
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	status := StatusBarStyle.Render(m.statusLine(slice))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	statusHeight := lipgloss.Height(status)
	contentHeight := lipgloss.Height(content)
	spacerHeight := max(0, height-contentHeight-statusHeight)
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		spacer,
		status,
	)
}

func (m *TableModel) statusLine(slice tableview.Slice) string {
	m.pager.TotalPages = slice.TotalPages
	m.pager.Page = slice.CurrentPage - 1

	parts := []string{
		fmt.Sprintf("%s · Page %d/%d", slice.Summary(), slice.CurrentPage, slice.TotalPages),
	}
	if slice.TotalPages > 1 {
		parts = append(parts, m.pager.View())
	}
	if meta := m.TableMeta(); meta != "" {
		parts = append(parts, meta)
	}
	if m.autoRefresh {
		parts = append(parts, "⟳ auto")
	}
	return strings.Join(parts, "  ·  ")
}

func formatCell(col columnDef, value string, selected bool) string {
	value = util.OneLine(value)
	switch col.kind {
	case kindAmount:
		value = util.FormatAmount(value)
	case kindDate:
		value = util.FormatDate(value)
	default:
		value = util.Dash(value)
	}
	value = util.TruncateString(value, col.width)
	if col.kind == kindStatus && !selected {
		return lipgloss.NewStyle().Foreground(statusColor(value)).Render(value)
	}
	return value
}

func statusColor(status string) lipgloss.Color {
	switch strings.ToLower(status) {
	case "pending", "in_progress", "in progress", "occupied":
		return ColorYellow
	case "resolved", "paid", "success", "completed", "done", "active", "available":
		return ColorGreen
	case "failed", "disabled", "cancelled", "blocked", "maintenance":
		return ColorRed
	default:
		return ColorText
	}
}

func renderStats(stats []model.Stat, width int) string {
	parts := make([]string, 0, len(stats))
	for _, s := range stats {
		parts = append(parts, HelpDescStyle.Render(s.Label)+" "+StatValueStyle.Render(s.Value))
	}
	return StatusBarStyle.Width(width).Render(strings.Join(parts, "   "))
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return lipgloss.NewStyle().Underline(true).Render(label)
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderTableDivider(widths []int) string {
	total := 0
	for _, w := range widths {
		total += w
	}
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("─", total))
}
