package ui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hoteldesk/internal/export"
	"hoteldesk/internal/live"
	"hoteldesk/internal/model"
	"hoteldesk/internal/schedule"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const defaultSearchDebounce = 300 * time.Millisecond

// Options configures the dashboard.
type Options struct {
	Backend Backend
	DB      *sql.DB
	Logger  *zap.Logger
	// Refresh overrides the auto-refresh interval per view. Zero disables
	// auto refresh for that view.
	Refresh        map[model.View]time.Duration
	SearchDebounce time.Duration
	ExportDir      string
	LiveURL        string
	Live           live.Config
}

// Model is the root Bubble Tea model.
type Model struct {
	backend   Backend
	db        *sql.DB
	log       *zap.Logger
	exportDir string

	view       model.View
	screen     model.Screen
	mode       model.Mode
	gState     GState
	columnJump bool
	confirm    string // pending confirmation, e.g. "delete"

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	tables     map[model.View]*TableModel
	repeaters  map[model.View]*schedule.Repeater
	debouncers map[model.View]*schedule.Debouncer
	feed       *live.Feed

	me            model.Me
	profile       model.Profile
	profileLoaded bool
	notifications []model.Notification
	spinner       spinner.Model

	detail      *DetailModel
	replyForm   *ReplyFormModel
	accessForm  *AccessFormModel
	bulkForm    *BulkFormModel
	taskForm    *TaskFormModel
	profileForm *ProfileFormModel

	keys      KeyMap
	formKeys  FormKeyMap
	undoStack []undoAction
	redoStack []undoAction
}

// New creates a new root model.
func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	debounce := opts.SearchDebounce
	if debounce <= 0 {
		debounce = defaultSearchDebounce
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		backend:    opts.Backend,
		db:         opts.DB,
		log:        log,
		exportDir:  opts.ExportDir,
		screen:     model.ScreenTable,
		mode:       model.ModeNav,
		gState:     GStateIdle,
		tables:     map[model.View]*TableModel{},
		repeaters:  map[model.View]*schedule.Repeater{},
		debouncers: map[model.View]*schedule.Debouncer{},
		me:         model.Me{Role: model.RoleStaff},
		spinner:    sp,
		keys:       DefaultKeyMap(),
		formKeys:   DefaultFormKeyMap(),
	}

	for _, def := range viewDefs {
		view := def.view
		m.tables[view] = NewTableModel(def)

		interval := def.refresh
		if d, ok := opts.Refresh[view]; ok {
			interval = d
		}
		m.repeaters[view] = schedule.NewRepeater(interval, func(gen uint64) tea.Msg {
			return model.RefreshTickMsg{View: view, Gen: gen}
		})
		m.debouncers[view] = schedule.NewDebouncer(debounce)
	}

	m.loadTablePrefs()
	m.view = m.restoreLastView()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadMeCmd(m.backend, m.log),
		loadProfileCmd(m.backend, m.log),
		loadNotificationsCmd(m.backend, m.log),
		m.reloadViewCmd(m.view),
		m.startAutoRefresh(),
	)
}

// startAutoRefresh starts the timers of every table with auto refresh on.
func (m *Model) startAutoRefresh() tea.Cmd {
	var cmds []tea.Cmd
	for view, t := range m.tables {
		if t.autoRefresh {
			cmds = append(cmds, m.repeaters[view].Start())
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) current() *TableModel { return m.tables[m.view] }

func (m *Model) reloadViewCmd(view model.View) tea.Cmd {
	t := m.tables[view]
	if t == nil {
		return nil
	}
	t.loading = true
	cmds := []tea.Cmd{
		loadRowsCmd(m.backend, t.def, m.log),
		loadSummaryCmd(m.backend, t.def, m.log),
		m.spinner.Tick,
	}
	if view == model.ViewQueries {
		cmds = append(cmds, loadNotificationsCmd(m.backend, m.log))
	}
	return tea.Batch(cmds...)
}

func (m *Model) switchView(view model.View) tea.Cmd {
	if m.view == view && m.screen == model.ScreenTable {
		return nil
	}
	m.view = view
	m.screen = model.ScreenTable
	m.detail = nil
	m.columnJump = false
	m.confirm = ""
	m.saveLastView()

	t := m.current()
	if !t.loaded && !t.loading {
		return m.reloadViewCmd(view)
	}
	return nil
}

func (m *Model) shiftView(delta int) tea.Cmd {
	idx := 0
	for i, v := range model.Views {
		if v == m.view {
			idx = i
		}
	}
	n := len(model.Views)
	return m.switchView(model.Views[(idx+delta+n)%n])
}

func (m *Model) anyLoading() bool {
	for _, t := range m.tables {
		if t.loading {
			return true
		}
	}
	return false
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == model.ModeNav && m.columnJump {
			if msg.String() == "esc" {
				m.columnJump = false
				m.info = ""
				return m, nil
			}
			if n, err := strconv.Atoi(msg.String()); err == nil {
				m.columnJump = false
				if m.current().JumpToColumn(n) {
					m.info = fmt.Sprintf("Jumped to column %d", n)
					m.persistTablePrefs(m.view)
				} else {
					m.info = fmt.Sprintf("Column %d unavailable", n)
				}
				return m, nil
			}
			m.columnJump = false
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if key.Matches(msg, m.keys.Help) && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" || msg.String() == "?" {
				m.showingHelp = false
			}
			return m, nil
		}

		switch m.mode {
		case model.ModeSearch:
			return m.handleSearchMode(msg)
		case model.ModeInsert:
			return m.handleInsertMode(msg)
		}
		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.RowsLoadedMsg:
		t := m.tables[msg.View]
		if t == nil {
			return m, nil
		}
		t.SetRows(msg.Rows)
		if msg.Err != nil {
			m.error = fmt.Sprintf("Failed to load %s: %v", strings.ToLower(t.def.title), msg.Err)
		} else if msg.View == m.view {
			m.error = ""
		}
		m.refreshDetail(msg.View)
		return m, nil

	case model.SummaryLoadedMsg:
		if t := m.tables[msg.View]; t != nil && len(msg.Stats) > 0 {
			t.stats = msg.Stats
		}
		return m, nil

	case model.NotificationsLoadedMsg:
		m.notifications = msg.Items
		return m, nil

	case model.AuditLoadedMsg:
		if m.detail != nil && m.detail.def.view == model.ViewAccess {
			m.detail.SetAudit(msg.Entries)
		}
		return m, nil

	case model.MeLoadedMsg:
		if msg.Me.Role != "" {
			m.me = msg.Me
		}
		return m, nil

	case model.ProfileLoadedMsg:
		if msg.Err != nil {
			if m.screen == model.ScreenProfile {
				m.error = fmt.Sprintf("Failed to load profile: %v", msg.Err)
			}
			return m, nil
		}
		m.profile = msg.Profile
		m.profileLoaded = true
		return m, nil

	case profileSavedMsg:
		if msg.err != nil {
			m.error = fmt.Sprintf("Profile save failed: %v", msg.err)
			return m, nil
		}
		m.profile = msg.profile
		m.profileLoaded = true
		m.error = ""
		m.info = "Profile saved"
		m.closeForms()
		m.screen = model.ScreenProfile
		return m, nil

	case model.RefreshTickMsg:
		r := m.repeaters[msg.View]
		if r == nil || !r.Accept(msg.Gen) {
			return m, nil
		}
		if m.tables[msg.View].loading {
			return m, r.Next()
		}
		cmd := tea.Batch(m.reloadViewCmd(msg.View), r.Next())
		return m, cmd

	case model.SearchSettledMsg:
		if d := m.debouncers[msg.View]; d != nil && d.Settle(msg.Seq) {
			m.tables[msg.View].SetSearch(msg.Text)
		}
		return m, nil

	case model.LiveEventMsg:
		var cmds []tea.Cmd
		for _, view := range viewsForResource(msg.Resource) {
			if t := m.tables[view]; t.loaded && !t.loading {
				cmds = append(cmds, m.reloadViewCmd(view))
			}
		}
		return m, tea.Batch(cmds...)

	case model.ActionDoneMsg:
		if msg.Err != nil {
			m.error = fmt.Sprintf("%s failed: %v", msg.Label, msg.Err)
			return m, nil
		}
		m.error = ""
		m.info = msg.Label
		m.closeForms()
		m.screen = model.ScreenTable
		m.detail = nil
		if msg.View == model.ViewAccess {
			m.tables[model.ViewAccess].ClearMarks()
		}
		cmd := m.reloadViewCmd(msg.View)
		return m, cmd

	case accessSavedMsg:
		if msg.err != nil {
			m.error = fmt.Sprintf("Access update failed: %v", msg.err)
			return m, nil
		}
		m.pushUndoAction(m.buildAccessUpdateAction(msg))
		m.error = ""
		m.info = fmt.Sprintf("Access updated for user %s (u to undo)", msg.id)
		m.closeForms()
		m.screen = model.ScreenTable
		m.detail = nil
		cmd := m.reloadViewCmd(model.ViewAccess)
		return m, cmd

	case undoAppliedMsg:
		cmd := m.applyUndoResult(msg)
		return m, cmd

	case model.ExportDoneMsg:
		if msg.Err != nil {
			m.error = msg.Err.Error()
			return m, nil
		}
		m.info = fmt.Sprintf("Exported %d rows to %s", msg.Count, msg.Path)
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.error = fmt.Sprintf("Copy failed: %v", msg.err)
			return m, nil
		}
		m.info = "Copied " + msg.value
		return m, nil

	case model.FormCancelledMsg:
		editingProfile := m.screen == model.ScreenProfileForm
		m.closeForms()
		switch {
		case editingProfile:
			m.screen = model.ScreenProfile
		case m.detail != nil:
			m.screen = model.ScreenDetail
		default:
			m.screen = model.ScreenTable
		}
		return m, nil

	default:
		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}
	}

	return m, nil
}

// refreshDetail swaps the detail row for its reloaded version.
func (m *Model) refreshDetail(view model.View) {
	if m.detail == nil || m.detail.def.view != view {
		return
	}
	key := m.detail.Key()
	for _, row := range m.tables[view].ctrl.Ordered() {
		if row.Value(m.detail.def.primaryKey) == key {
			audit := m.detail.audit
			m.detail = NewDetailModel(m.detail.def, row, m.me.IsAdmin())
			m.detail.audit = audit
			return
		}
	}
}

func (m *Model) closeForms() {
	m.mode = model.ModeNav
	m.replyForm = nil
	m.accessForm = nil
	m.bulkForm = nil
	m.taskForm = nil
	m.profileForm = nil
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	t := m.current()
	breadcrumbParts := []string{t.def.title}
	showTabs := m.screen == model.ScreenTable

	var banners []string
	if m.error != "" {
		banners = append(banners, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		banners = append(banners, SuccessStyle.Width(m.width).Render(m.info))
	}
	if m.confirm != "" {
		banners = append(banners, ConfirmStyle.Width(m.width).Render(m.confirm))
	}

	contentHeight := m.height - 4 - len(banners)
	if showTabs {
		contentHeight -= 2
	}
	contentHeight = max(contentHeight, 3)

	var content string
	switch m.screen {
	case model.ScreenTable:
		content = t.View(m.width, contentHeight, m.mode == model.ModeSearch)
		if t.loading && !t.loaded {
			content = EmptyStateStyle.Render(m.spinner.View() + " Loading " + strings.ToLower(t.def.title) + "...")
		}
	case model.ScreenDetail:
		if m.detail != nil {
			breadcrumbParts = append(breadcrumbParts, m.detail.Title())
			content = m.detail.View(m.width, contentHeight)
		}
	case model.ScreenReplyForm:
		breadcrumbParts = append(breadcrumbParts, "Reply")
		if m.replyForm != nil {
			content = m.replyForm.View(m.width, contentHeight)
		}
	case model.ScreenAccessForm:
		breadcrumbParts = append(breadcrumbParts, "Edit access")
		if m.accessForm != nil {
			content = m.accessForm.View(m.width, contentHeight)
		}
	case model.ScreenBulkForm:
		breadcrumbParts = append(breadcrumbParts, "Bulk update")
		if m.bulkForm != nil {
			content = m.bulkForm.View(m.width, contentHeight)
		}
	case model.ScreenTaskForm:
		breadcrumbParts = append(breadcrumbParts, "Update task")
		if m.taskForm != nil {
			content = m.taskForm.View(m.width, contentHeight)
		}
	case model.ScreenProfile:
		breadcrumbParts = []string{"Profile"}
		content = renderProfile(m.profile, m.profileLoaded, m.width, contentHeight)
	case model.ScreenProfileForm:
		breadcrumbParts = []string{"Profile", "Edit"}
		if m.profileForm != nil {
			content = m.profileForm.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.headerStatus(), m.width)
	footer := RenderHelp(m.keys, m.formKeys, m.screen, m.mode, m.view, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := []string{header}
	if showTabs {
		parts = append(parts, renderTabs(m.view, m.width))
	}
	parts = append(parts, banners...)
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) headerStatus() string {
	var parts []string
	if m.current().loading {
		parts = append(parts, m.spinner.View())
	}
	if m.profileLoaded {
		parts = append(parts, m.profile.DisplayName())
	}
	parts = append(parts, string(m.me.Role))
	if n := len(m.notifications); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorYellow).Render(fmt.Sprintf("✉ %d pending", n)))
	}
	if m.feed != nil {
		st := m.feed.Status()
		switch {
		case st.Connected:
			parts = append(parts, lipgloss.NewStyle().Foreground(ColorGreen).Render("● live"))
		case st.Reconnecting:
			parts = append(parts, lipgloss.NewStyle().Foreground(ColorYellow).Render("○ reconnecting"))
		default:
			parts = append(parts, "○ offline")
		}
	}
	return strings.Join(parts, "  ")
}

func renderTabs(current model.View, width int) string {
	var tabStrings []string
	for i, view := range model.Views {
		def, _ := lookupView(view)
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if current == view {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(fmt.Sprintf("%d %s", i+1, def.title)))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func renderHeader(breadcrumbParts []string, status string, width int) string {
	title := HeaderStyle.Render("hoteldesk")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	dateStr := time.Now().Format("Mon 02 Jan")
	right := BreadcrumbStyle.Render(status+"  "+dateStr) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	headerContent := left + strings.Repeat(" ", padding) + right
	return TitleStyle.Width(width).Render(headerContent)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != "" && !key.Matches(msg, m.keys.Delete) {
		m.confirm = ""
	}

	switch {
	case key.Matches(msg, m.keys.Undo):
		if len(m.undoStack) == 0 {
			m.info = "Nothing to undo"
			return m, nil
		}
		cmd := m.undoCmd()
		return m, cmd
	case key.Matches(msg, m.keys.Redo):
		if len(m.redoStack) == 0 {
			m.info = "Nothing to redo"
			return m, nil
		}
		cmd := m.redoCmd()
		return m, cmd
	}

	switch m.screen {
	case model.ScreenDetail:
		return m.handleDetailNav(msg)
	case model.ScreenProfile:
		return m.handleProfileNav(msg)
	}
	return m.handleTableNav(msg)
}

func (m Model) handleTableNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.current()

	if m.handleTableControls(t, msg) {
		return m, nil
	}

	// Handle "gg" state machine
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		t.JumpToTop()
		return m, nil
	}
	m.gState = GStateIdle

	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(model.Views) {
		cmd := m.switchView(model.Views[n-1])
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.persistTablePrefs(m.view)
		return m, tea.Quit
	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.shiftView(-1)
		return m, cmd
	case key.Matches(msg, m.keys.NextTab):
		cmd := m.shiftView(1)
		return m, cmd
	case key.Matches(msg, m.keys.Down):
		t.MoveDown()
	case key.Matches(msg, m.keys.Up):
		t.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		t.JumpToBottom()
	case key.Matches(msg, m.keys.NextPage):
		t.NextPage()
	case key.Matches(msg, m.keys.PrevPage):
		t.PrevPage()
	case key.Matches(msg, m.keys.Search):
		m.mode = model.ModeSearch
		return m, t.search.Focus()
	case key.Matches(msg, m.keys.ColumnJump):
		m.columnJump = true
		m.info = "Jump to column: press 1-9 (esc to cancel)"
	case key.Matches(msg, m.keys.Reload):
		m.info = "Reloading " + strings.ToLower(t.def.title)
		cmd := m.reloadViewCmd(m.view)
		return m, cmd
	case key.Matches(msg, m.keys.AutoRefresh):
		cmd := m.toggleAutoRefresh(t)
		return m, cmd
	case key.Matches(msg, m.keys.ExportCSV):
		cmd := m.exportCmd(t, export.FormatCSV)
		return m, cmd
	case key.Matches(msg, m.keys.ExportXLSX):
		cmd := m.exportCmd(t, export.FormatXLSX)
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		if k := t.SelectedKey(); k != "" {
			return m, copyCmd(k)
		}
	case key.Matches(msg, m.keys.Mark):
		if m.view == model.ViewAccess && t.ToggleMark() {
			m.info = fmt.Sprintf("%d users marked", len(t.marked))
		}
	case key.Matches(msg, m.keys.Bulk):
		cmd := m.openBulkForm(t)
		return m, cmd
	case key.Matches(msg, m.keys.Profile):
		m.screen = model.ScreenProfile
		m.detail = nil
		m.confirm = ""
		return m, loadProfileCmd(m.backend, m.log)
	case key.Matches(msg, m.keys.Select):
		row, ok := t.Selected()
		if !ok {
			return m, nil
		}
		m.detail = NewDetailModel(t.def, row, m.me.IsAdmin())
		m.screen = model.ScreenDetail
		if m.view == model.ViewAccess {
			return m, loadAuditCmd(m.backend, m.log)
		}
	}
	return m, nil
}

// handleTableControls applies the column, sort and filter keys. It reports
// whether msg was one of them.
func (m *Model) handleTableControls(t tableController, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.NextColumn):
		t.NextColumn()
	case key.Matches(msg, m.keys.PrevColumn):
		t.PrevColumn()
	case key.Matches(msg, m.keys.Sort):
		m.info = t.SortActiveColumn()
	case key.Matches(msg, m.keys.ClearSort):
		if t.ClearSort() {
			m.info = "Sort cleared"
		}
	case key.Matches(msg, m.keys.HideColumn):
		if t.HideActiveColumn() {
			m.info = "Column hidden"
		} else {
			m.info = "Cannot hide last visible column"
		}
	case key.Matches(msg, m.keys.ShowColumns):
		t.ShowAllColumns()
		m.info = "All columns shown"
	case key.Matches(msg, m.keys.FilterValue):
		m.info = t.FilterBySelectedValue()
		return true
	case key.Matches(msg, m.keys.CycleFilter):
		m.info = t.CycleFieldFilter()
		return true
	case key.Matches(msg, m.keys.FilterField):
		m.info = t.NextFilterField()
		return true
	case key.Matches(msg, m.keys.ClearFilter):
		if t.ClearFilter() {
			m.info = "Filters cleared"
		}
		return true
	default:
		return false
	}
	m.persistTablePrefs(m.view)
	return true
}

func (m *Model) toggleAutoRefresh(t *TableModel) tea.Cmd {
	r := m.repeaters[m.view]
	if r.Interval() <= 0 {
		m.info = fmt.Sprintf("Set refresh.%s in the config file to enable auto refresh", m.view)
		return nil
	}
	t.autoRefresh = !t.autoRefresh
	m.persistTablePrefs(m.view)
	if !t.autoRefresh {
		r.Stop()
		m.info = "Auto refresh off"
		return nil
	}
	m.info = fmt.Sprintf("Auto refresh on (every %s)", r.Interval())
	return r.Start()
}

func (m *Model) exportCmd(t *TableModel, format string) tea.Cmd {
	if !t.loaded {
		m.info = "Nothing loaded to export yet"
		return nil
	}
	m.info = fmt.Sprintf("Exporting %s...", strings.ToLower(t.def.title))
	return exportCmd(m.db, m.exportDir, t.def, t.columns, t.ctrl.Ordered(), format, m.log)
}

func (m *Model) openBulkForm(t *TableModel) tea.Cmd {
	if m.view != model.ViewAccess {
		return nil
	}
	if !m.me.IsAdmin() {
		m.info = "Bulk updates are for admins only"
		return nil
	}
	keys := t.MarkedKeys()
	if len(keys) == 0 {
		m.info = "Mark users with space first"
		return nil
	}
	form, err := NewBulkFormModel(m.backend, m.log, keys)
	if err != nil {
		m.error = err.Error()
		return nil
	}
	m.bulkForm = form
	m.mode = model.ModeInsert
	m.screen = model.ScreenBulkForm
	return nil
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.detail
	if d == nil {
		m.screen = model.ScreenTable
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenTable
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Copy):
		return m, copyCmd(d.Key())
	}

	id := d.Key()
	switch m.view {
	case model.ViewQueries:
		switch {
		case key.Matches(msg, m.keys.Reply):
			m.replyForm = NewReplyFormModel(m.backend, m.log, id, d.row.Value("subject"))
			m.mode = model.ModeInsert
			m.screen = model.ScreenReplyForm
			return m, nil
		case key.Matches(msg, m.keys.Resolve):
			if strings.EqualFold(d.row.Value("status"), "resolved") {
				m.info = "Query is already resolved"
				return m, nil
			}
			return m, actionCmd(model.ViewQueries, fmt.Sprintf("Query %s resolved", id), m.log, func(ctx context.Context) error {
				return m.backend.ResolveQuery(ctx, id)
			})
		case key.Matches(msg, m.keys.Delete):
			if !m.me.IsAdmin() {
				m.info = "Only admins can delete queries"
				return m, nil
			}
			if m.confirm == "" {
				m.confirm = fmt.Sprintf("Delete query %s? Press d again to confirm.", id)
				return m, nil
			}
			m.confirm = ""
			return m, actionCmd(model.ViewQueries, fmt.Sprintf("Query %s deleted", id), m.log, func(ctx context.Context) error {
				return m.backend.DeleteQuery(ctx, id)
			})
		}
	case model.ViewAccess:
		if key.Matches(msg, m.keys.Edit) {
			if !m.me.IsAdmin() {
				m.info = "Only admins can change access"
				return m, nil
			}
			m.accessForm = NewAccessFormModel(m.backend, m.log, d.row)
			m.mode = model.ModeInsert
			m.screen = model.ScreenAccessForm
		}
	case model.ViewTasks:
		if key.Matches(msg, m.keys.Edit) {
			m.taskForm = NewTaskFormModel(m.backend, m.log, d.row)
			m.mode = model.ModeInsert
			m.screen = model.ScreenTaskForm
		}
	}
	return m, nil
}

func (m Model) handleProfileNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenTable
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		return m, loadProfileCmd(m.backend, m.log)
	case key.Matches(msg, m.keys.Edit):
		if !m.profileLoaded {
			m.info = "Profile is still loading"
			return m, nil
		}
		m.profileForm = NewProfileFormModel(m.backend, m.log, m.profile)
		m.mode = model.ModeInsert
		m.screen = model.ScreenProfileForm
		return m, textinput.Blink
	}
	return m, nil
}

// handleSearchMode feeds the search box. The filter is applied once typing
// pauses; enter applies it at once and esc clears it.
func (m Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.current()
	debouncer := m.debouncers[m.view]

	switch msg.String() {
	case "esc":
		debouncer.Cancel()
		t.search.SetValue("")
		t.search.Blur()
		t.SetSearch("")
		m.mode = model.ModeNav
		return m, nil
	case "enter":
		debouncer.Cancel()
		t.search.Blur()
		t.SetSearch(t.search.Value())
		m.mode = model.ModeNav
		return m, nil
	}

	before := t.search.Value()
	var cmd tea.Cmd
	t.search, cmd = t.search.Update(msg)
	if text := t.search.Value(); text != before {
		view := m.view
		settle := debouncer.Trigger(func(seq uint64) tea.Msg {
			return model.SearchSettledMsg{View: view, Text: text, Seq: seq}
		})
		return m, tea.Batch(cmd, settle)
	}
	return m, cmd
}

// handleInsertMode handles insert/edit mode input.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenReplyForm:
		if m.replyForm != nil {
			newForm, cmd := m.replyForm.Update(msg)
			m.replyForm = &newForm
			return m, cmd
		}
	case model.ScreenAccessForm:
		if m.accessForm != nil {
			newForm, cmd := m.accessForm.Update(msg)
			m.accessForm = &newForm
			return m, cmd
		}
	case model.ScreenBulkForm:
		if m.bulkForm != nil {
			newForm, cmd := m.bulkForm.Update(msg)
			m.bulkForm = &newForm
			return m, cmd
		}
	case model.ScreenTaskForm:
		if m.taskForm != nil {
			newForm, cmd := m.taskForm.Update(msg)
			m.taskForm = &newForm
			return m, cmd
		}
	case model.ScreenProfileForm:
		if m.profileForm != nil {
			newForm, cmd := m.profileForm.Update(msg)
			m.profileForm = &newForm
			return m, cmd
		}
	}
	return m, nil
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)

	// The feed is the one producer outside the update loop; it reaches the
	// program through Send.
	var p *tea.Program
	if opts.Live.Enabled && opts.LiveURL != "" {
		m.feed = live.NewFeed(opts.LiveURL, opts.Live, func(resource string) {
			p.Send(model.LiveEventMsg{Resource: resource})
		}, m.log)
	}

	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if m.feed != nil {
		m.feed.Start(ctx)
		defer m.feed.Stop()
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
