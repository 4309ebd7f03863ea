package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hoteldesk/internal/api"
	"hoteldesk/internal/export"
	"hoteldesk/internal/model"
	"hoteldesk/internal/store"
	"hoteldesk/internal/tableview"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	rows     map[string][]tableview.Row
	fetchErr error
	role     model.Role

	access   []model.UserAccess
	resolved []string
	deleted  []string
	replies  []string
	bulk     []model.BulkUpdate
	tasks    []model.TaskUpdate

	profile    model.Profile
	profileErr error
	profiles   []model.Profile
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{rows: map[string][]tableview.Row{}, role: model.RoleAdmin}
}

func (f *fakeBackend) FetchRows(_ context.Context, path string) ([]tableview.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.rows[path], nil
}

func (f *fakeBackend) Me(context.Context) (model.Me, error) {
	return model.Me{Role: f.role}, nil
}

func (f *fakeBackend) Summary(context.Context, string, []api.SummaryField) ([]model.Stat, error) {
	return []model.Stat{{Label: "Total", Value: "3"}}, nil
}

func (f *fakeBackend) RecentQueries(context.Context) ([]model.Notification, error) {
	return []model.Notification{{QueryID: 1, Subject: "Towels"}}, nil
}

func (f *fakeBackend) Audit(context.Context) ([]model.AuditEntry, error) {
	return []model.AuditEntry{{ID: 1, Actor: "admin", Action: "role", Target: "mary"}}, nil
}

func (f *fakeBackend) Profile(context.Context) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, f.profileErr
}

func (f *fakeBackend) UpdateProfile(_ context.Context, p model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return f.profileErr
	}
	f.profiles = append(f.profiles, p)
	f.profile = p
	return nil
}

func (f *fakeBackend) ReplyQuery(_ context.Context, id, reply string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, id+":"+reply)
	return nil
}

func (f *fakeBackend) ResolveQuery(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, id)
	return nil
}

func (f *fakeBackend) DeleteQuery(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) UpdateUserAccess(_ context.Context, _ string, access model.UserAccess) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = append(f.access, access)
	return nil
}

func (f *fakeBackend) BulkUpdateUsers(_ context.Context, update model.BulkUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk = append(f.bulk, update)
	return nil
}

func (f *fakeBackend) UpdateTask(_ context.Context, update model.TaskUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, update)
	return nil
}

// runCmd executes cmd and every command batched into it, returning the
// resulting messages. Spinner ticks and commands that wait on a timer, like
// cursor blinks, are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(200 * time.Millisecond):
		return nil
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(c)...)
		}
		return out
	case spinner.TickMsg, nil:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// feed applies msgs to m, running any resulting commands, until no
// messages are left.
func feed(m Model, msgs ...tea.Msg) Model {
	for len(msgs) > 0 {
		msg := msgs[0]
		msgs = msgs[1:]
		next, cmd := m.Update(msg)
		m = next.(Model)
		msgs = append(msgs, runCmd(cmd)...)
	}
	return m
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m = feed(m, keyMsg(k))
	}
	return m
}

// typeKeys delivers keys without running the commands they return.
func typeKeys(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func testModel(t *testing.T, backend *fakeBackend, opts Options) Model {
	t.Helper()
	opts.Backend = backend
	m := New(opts)
	m = feed(m, tea.WindowSizeMsg{Width: 160, Height: 40})
	m = feed(m, runCmd(m.Init())...)
	return m
}

func userRows() []tableview.Row {
	return []tableview.Row{
		{"user_id": "1", "username": "admin", "email": "a@x.com", "role": "admin", "status": "active", "privileges": []any{"SELECT", "UPDATE"}},
		{"user_id": "2", "username": "mary", "email": "m@x.com", "role": "staff", "status": "active", "privileges": []any{"SELECT"}},
		{"user_id": "3", "username": "john", "email": "john@x.com", "role": "staff", "status": "disabled"},
	}
}

func TestInitLoadsCurrentView(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()

	m := testModel(t, backend, Options{})

	assert.Equal(t, model.ViewQueries, m.view)
	assert.Equal(t, model.RoleAdmin, m.me.Role)
	assert.Len(t, m.notifications, 1)
	q := m.tables[model.ViewQueries]
	assert.True(t, q.loaded)
	assert.False(t, q.loading)
	assert.Equal(t, 3, q.ctrl.Len())
	assert.Equal(t, []model.Stat{{Label: "Total", Value: "3"}}, q.stats)
	assert.False(t, m.tables[model.ViewRooms].loaded, "other views load lazily")
}

func TestTabKeysSwitchViewsAndLoadLazily(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathUsers] = userRows()
	m := testModel(t, backend, Options{})

	m = press(m, "2")
	assert.Equal(t, model.ViewAccess, m.view)
	access := m.tables[model.ViewAccess]
	assert.Equal(t, 3, access.ctrl.Len())
	assert.Equal(t, "Users", access.stats[0].Label)
	assert.Equal(t, "3", access.stats[0].Value)

	m = press(m, "right")
	assert.Equal(t, model.ViewTransactions, m.view)
	m = press(m, "8")
	assert.Equal(t, model.ViewUsers, m.view)
	m = press(m, "right")
	assert.Equal(t, model.ViewQueries, m.view, "tabs wrap around")
}

func TestFetchFailureShowsEmptyTable(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()
	m := testModel(t, backend, Options{})
	require.Equal(t, 3, m.tables[model.ViewQueries].ctrl.Len())

	backend.fetchErr = errors.New("connection refused")
	m = press(m, "r")

	assert.Equal(t, 0, m.tables[model.ViewQueries].ctrl.Len())
	assert.Contains(t, m.error, "Failed to load queries: connection refused")
	assert.Contains(t, m.View(), "Error: Failed to load queries")
}

func TestSearchIsDebounced(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 9).ctrl.Ordered()
	m := testModel(t, backend, Options{SearchDebounce: 20 * time.Millisecond})
	queries := m.tables[model.ViewQueries]

	m = press(m, "/")
	var settled []tea.Msg
	for _, k := range []string{"g", "u", "e", "s", "t", "0", "2"} {
		next, cmd := m.Update(keyMsg(k))
		m = next.(Model)
		for _, msg := range runCmd(cmd) {
			if _, ok := msg.(model.SearchSettledMsg); ok {
				settled = append(settled, msg)
			}
		}
	}
	require.Equal(t, model.ModeSearch, m.mode)
	require.Len(t, settled, 7, "every keystroke schedules a settle")
	assert.Equal(t, 9, queries.ctrl.VisibleSlice().TotalFiltered, "not applied while typing")

	m = feed(m, settled[:6]...)
	assert.Equal(t, 9, queries.ctrl.VisibleSlice().TotalFiltered, "superseded keystrokes are ignored")
	assert.Empty(t, queries.ctrl.FilterText())

	last := settled[6].(model.SearchSettledMsg)
	assert.Equal(t, "guest02", last.Text)
	m = feed(m, last)
	assert.Equal(t, 1, queries.ctrl.VisibleSlice().TotalFiltered)

	m = feed(m, model.SearchSettledMsg{View: model.ViewQueries, Text: "stale", Seq: last.Seq})
	assert.Equal(t, "guest02", queries.ctrl.FilterText(), "a settle applies once")

	m = press(m, "esc")
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Equal(t, 9, queries.ctrl.VisibleSlice().TotalFiltered)
}

func TestSearchEnterAppliesImmediately(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 9).ctrl.Ordered()
	m := testModel(t, backend, Options{SearchDebounce: time.Hour})

	m = press(m, "/")
	m = typeKeys(m, "g", "u", "e", "s", "t", "0", "3")
	m = press(m, "enter")
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Equal(t, 1, m.tables[model.ViewQueries].ctrl.VisibleSlice().TotalFiltered)
	assert.False(t, m.debouncers[model.ViewQueries].Pending())

	// The settle scheduled by the last keystroke arrives after enter.
	m = feed(m, model.SearchSettledMsg{View: model.ViewQueries, Text: "guest0", Seq: 7})
	assert.Equal(t, "guest03", m.tables[model.ViewQueries].ctrl.FilterText())
}

func TestResolveAndDeleteQuery(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()
	m := testModel(t, backend, Options{})

	m = press(m, "enter")
	require.Equal(t, model.ScreenDetail, m.screen)
	m = press(m, "v")
	assert.Equal(t, []string{"1"}, backend.resolved)
	assert.Equal(t, model.ScreenTable, m.screen)
	assert.Equal(t, "Query 1 resolved", m.info)

	m = press(m, "enter", "d")
	assert.Empty(t, backend.deleted, "delete asks for confirmation")
	assert.Contains(t, m.View(), "Press d again")
	m = press(m, "d")
	assert.Equal(t, []string{"1"}, backend.deleted)
}

func TestStaffCannotDeleteQueries(t *testing.T) {
	backend := newFakeBackend()
	backend.role = model.RoleStaff
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()
	m := testModel(t, backend, Options{})

	m = press(m, "enter", "d", "d")
	assert.Empty(t, backend.deleted)
	assert.Equal(t, "Only admins can delete queries", m.info)
}

func TestReplyForm(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()
	m := testModel(t, backend, Options{})

	m = press(m, "enter", "R")
	require.Equal(t, model.ScreenReplyForm, m.screen)
	m = press(m, "ctrl+s")
	assert.Empty(t, backend.replies)
	assert.Equal(t, "Reply cannot be empty", m.replyForm.error)

	m = typeKeys(m, "O", "n", " ", "i", "t")
	m = press(m, "ctrl+s")
	assert.Equal(t, []string{"1:On it"}, backend.replies)
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Nil(t, m.replyForm)
}

func TestAccessEditUndoRedo(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathUsers] = userRows()
	m := testModel(t, backend, Options{})

	m = press(m, "2", "j", "enter")
	require.Equal(t, model.ScreenDetail, m.screen)
	require.NotNil(t, m.detail.audit, "audit loads with the access detail")

	m = press(m, "e")
	require.Equal(t, model.ScreenAccessForm, m.screen)
	m = press(m, "right") // staff -> guest
	m = press(m, "ctrl+s")

	require.Len(t, backend.access, 1)
	after := model.UserAccess{Role: "guest", Status: "active", Privileges: []string{"SELECT"}}
	assert.Equal(t, after, backend.access[0])
	assert.Contains(t, m.info, "Access updated for user 2")

	m = press(m, "u")
	require.Len(t, backend.access, 2)
	assert.Equal(t, model.UserAccess{Role: "staff", Status: "active", Privileges: []string{"SELECT"}}, backend.access[1])
	assert.Equal(t, "Undid: access change for user 2", m.info)

	m = press(m, "ctrl+r")
	require.Len(t, backend.access, 3)
	assert.Equal(t, after, backend.access[2])

	m = press(m, "ctrl+r")
	assert.Equal(t, "Nothing to redo", m.info)
}

func TestBulkUpdateMarkedUsers(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathUsers] = userRows()
	m := testModel(t, backend, Options{})

	m = press(m, "2", "B")
	assert.Equal(t, "Mark users with space first", m.info)

	m = press(m, "j", "space", "j", "space")
	assert.Equal(t, []string{"2", "3"}, m.tables[model.ViewAccess].MarkedKeys())

	m = press(m, "B")
	require.Equal(t, model.ScreenBulkForm, m.screen)
	m = press(m, "tab", "right", "ctrl+s") // status: active
	require.Len(t, backend.bulk, 1)
	assert.Equal(t, model.BulkUpdate{IDs: []int64{2, 3}, Status: "active"}, backend.bulk[0])
	assert.Empty(t, m.tables[model.ViewAccess].MarkedKeys())
}

func TestTaskUpdate(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathTasks] = []tableview.Row{
		{"task_id": "T-1", "assigned_to": "mary", "description": "Clean 101", "status": "Pending"},
	}
	m := testModel(t, backend, Options{})

	m = press(m, "4", "enter", "e")
	require.Equal(t, model.ScreenTaskForm, m.screen)
	m = press(m, "right", "tab")
	m = typeKeys(m, "d", "o", "n", "e")
	m = press(m, "ctrl+s")

	require.Len(t, backend.tasks, 1)
	assert.Equal(t, model.TaskUpdate{TaskID: "T-1", Status: "in_progress", Remarks: "done"}, backend.tasks[0])
}

func TestFormCancelReturnsToDetail(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathTasks] = []tableview.Row{{"task_id": "T-1"}}
	m := testModel(t, backend, Options{})

	m = press(m, "4", "enter", "e", "esc")
	assert.Equal(t, model.ScreenDetail, m.screen)
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Empty(t, backend.tasks)
}

func TestLiveEventReloadsLoadedView(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()
	m := testModel(t, backend, Options{})

	backend.rows[api.PathQueries] = queryTable(t, 5).ctrl.Ordered()
	m = feed(m, model.LiveEventMsg{Resource: "queries"})
	assert.Equal(t, 5, m.tables[model.ViewQueries].ctrl.Len())

	m = feed(m, model.LiveEventMsg{Resource: "rooms"})
	assert.False(t, m.tables[model.ViewRooms].loaded, "unloaded views wait for their tab")
}

func TestLiveUsersEventReloadsBothUserTables(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathUsers] = userRows()
	backend.rows[api.PathAdminUsers] = userRows()
	m := testModel(t, backend, Options{})
	m = press(m, "2", "8")
	require.Equal(t, 3, m.tables[model.ViewAccess].ctrl.Len())
	require.Equal(t, 3, m.tables[model.ViewUsers].ctrl.Len())

	backend.rows[api.PathUsers] = userRows()[:2]
	backend.rows[api.PathAdminUsers] = userRows()[:1]
	m = feed(m, model.LiveEventMsg{Resource: "users"})
	assert.Equal(t, 2, m.tables[model.ViewAccess].ctrl.Len())
	assert.Equal(t, 1, m.tables[model.ViewUsers].ctrl.Len())
}

func TestBookingsShowAdminSummary(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathBookings] = []tableview.Row{
		{"booking_id": "B-1", "guest_name": "Ravi", "room_no": "101", "check_in": "2025-06-01", "status": "Confirmed"},
		{"booking_id": "B-2", "guest_name": "Meera", "room_no": "204", "status": "Cancelled"},
	}
	m := testModel(t, backend, Options{})

	m = press(m, "7")
	assert.Equal(t, model.ViewBookings, m.view)
	bookings := m.tables[model.ViewBookings]
	assert.Equal(t, 2, bookings.ctrl.Len())
	assert.Equal(t, []model.Stat{{Label: "Total", Value: "3"}}, bookings.stats, "summary comes from the backend")
	assert.Contains(t, m.View(), "Meera")
}

func TestUsersViewCountsRoles(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathAdminUsers] = append(userRows(), tableview.Row{"user_id": "4", "username": "guest1", "role": "guest"})
	m := testModel(t, backend, Options{})

	m = press(m, "8")
	assert.Equal(t, []model.Stat{
		{Label: "Users", Value: "4"},
		{Label: "Admins", Value: "1"},
		{Label: "Staff", Value: "2"},
		{Label: "Guests", Value: "1"},
	}, m.tables[model.ViewUsers].stats)
}

func TestProfileViewAndEdit(t *testing.T) {
	backend := newFakeBackend()
	backend.profile = model.Profile{Name: "Asha Rao", Email: "asha@hotel.test", Phone: "080-1111"}
	m := testModel(t, backend, Options{})
	assert.Contains(t, m.headerStatus(), "Asha Rao")

	m = press(m, "P")
	require.Equal(t, model.ScreenProfile, m.screen)
	assert.Contains(t, m.View(), "asha@hotel.test")

	m = press(m, "e")
	require.Equal(t, model.ScreenProfileForm, m.screen)
	require.Equal(t, model.ModeInsert, m.mode)
	assert.Equal(t, backend.profile, m.profileForm.Profile(), "form is prefilled")

	m = typeKeys(m, "tab")
	m.profileForm.inputs[1].SetValue("not-an-email")
	m = press(m, "ctrl+s")
	assert.Equal(t, model.ScreenProfileForm, m.screen, "invalid email keeps the form open")
	assert.Contains(t, m.profileForm.error, "is not an address")
	assert.Empty(t, backend.profiles)

	m.profileForm.inputs[0].SetValue("Asha R.")
	m.profileForm.inputs[1].SetValue("asha.r@hotel.test")
	m = press(m, "ctrl+s")
	require.Len(t, backend.profiles, 1)
	assert.Equal(t, model.Profile{Name: "Asha R.", Email: "asha.r@hotel.test", Phone: "080-1111"}, backend.profiles[0])
	assert.Equal(t, model.ScreenProfile, m.screen)
	assert.Equal(t, model.ModeNav, m.mode)
	assert.Equal(t, "Profile saved", m.info)
	assert.Contains(t, m.headerStatus(), "Asha R.")

	m = press(m, "esc")
	assert.Equal(t, model.ScreenTable, m.screen)
}

func TestProfileEditCancelAndSaveFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.profile = model.Profile{Name: "Asha"}
	m := testModel(t, backend, Options{})

	m = press(m, "P", "e", "esc")
	assert.Equal(t, model.ScreenProfile, m.screen, "cancel returns to the card")
	assert.Nil(t, m.profileForm)

	backend.profileErr = errors.New("backend down")
	m = press(m, "e", "ctrl+s")
	assert.Equal(t, model.ScreenProfileForm, m.screen)
	assert.Contains(t, m.error, "Profile save failed: backend down")

	m = press(m, "esc", "r")
	assert.Contains(t, m.error, "Failed to load profile: backend down")
}

func TestAutoRefreshToggleAndTick(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()
	m := testModel(t, backend, Options{Refresh: map[model.View]time.Duration{model.ViewQueries: time.Hour}})
	r := m.repeaters[model.ViewQueries]
	tick := func(gen uint64) model.RefreshTickMsg {
		return model.RefreshTickMsg{View: model.ViewQueries, Gen: gen}
	}

	m = feed(m, tick(r.Generation()))
	assert.Equal(t, 3, m.tables[model.ViewQueries].ctrl.Len(), "ticks ignored while off")

	m = press(m, "A")
	assert.True(t, m.tables[model.ViewQueries].autoRefresh)
	assert.True(t, r.Running())

	backend.rows[api.PathQueries] = queryTable(t, 4).ctrl.Ordered()
	m = feed(m, tick(r.Generation()))
	assert.Equal(t, 4, m.tables[model.ViewQueries].ctrl.Len())

	stale := r.Generation()
	m = press(m, "A")
	assert.False(t, r.Running())

	backend.rows[api.PathQueries] = queryTable(t, 5).ctrl.Ordered()
	m = feed(m, tick(stale))
	assert.Equal(t, 4, m.tables[model.ViewQueries].ctrl.Len(), "ticks of a stopped timer are ignored")

	m = press(m, "A")
	m = feed(m, tick(stale))
	assert.Equal(t, 4, m.tables[model.ViewQueries].ctrl.Len(), "restarting does not revive old ticks")
	m = feed(m, tick(r.Generation()))
	assert.Equal(t, 5, m.tables[model.ViewQueries].ctrl.Len())

	m = press(m, "A", "3", "A")
	assert.Contains(t, m.info, "refresh.transactions")
}

func TestAutoRefreshTickSchedulesNext(t *testing.T) {
	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()
	m := testModel(t, backend, Options{Refresh: map[model.View]time.Duration{model.ViewQueries: 20 * time.Millisecond}})
	m = typeKeys(m, "A")
	r := m.repeaters[model.ViewQueries]

	next, cmd := m.Update(model.RefreshTickMsg{View: model.ViewQueries, Gen: r.Generation()})
	m = next.(Model)
	var ticks []model.RefreshTickMsg
	reloaded := false
	for _, msg := range runCmd(cmd) {
		switch msg := msg.(type) {
		case model.RefreshTickMsg:
			ticks = append(ticks, msg)
		case model.RowsLoadedMsg:
			reloaded = true
		}
	}
	assert.True(t, reloaded)
	require.Len(t, ticks, 1)
	assert.True(t, r.Accept(ticks[0].Gen))
	assert.True(t, m.tables[model.ViewQueries].loading)
}

func TestPrefsPersistAcrossModels(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "hoteldesk.db"))
	require.NoError(t, err)
	defer db.Close()

	backend := newFakeBackend()
	backend.rows[api.PathUsers] = userRows()
	m := testModel(t, backend, Options{DB: db})
	m = press(m, "2", "tab", "s", "c")

	again := testModel(t, backend, Options{DB: db})
	assert.Equal(t, model.ViewAccess, again.view, "last view restored")
	prefs := again.tables[model.ViewAccess].Prefs()
	assert.Equal(t, "username", prefs.SortField)
	assert.Equal(t, []string{"username"}, prefs.HiddenColumns)
	assert.Equal(t, "email", prefs.ActiveColumn)
}

func TestExportWritesFileAndHistory(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "hoteldesk.db"))
	require.NoError(t, err)
	defer db.Close()
	dir := t.TempDir()

	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 9).ctrl.Ordered()
	m := testModel(t, backend, Options{DB: db, ExportDir: dir})

	m = press(m, "f", "E")
	assert.Contains(t, m.info, "Exported 6 rows to ")

	records, err := store.ListExports(db, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, export.FormatCSV, records[0].Format)
	assert.Equal(t, 6, records[0].RowCount)
	_, err = os.Stat(records[0].Path)
	assert.NoError(t, err)
}

func TestCopySelectedKey(t *testing.T) {
	var copied string
	writeClipboard = func(s string) error { copied = s; return nil }
	defer func() { writeClipboard = origClipboard }()

	backend := newFakeBackend()
	backend.rows[api.PathQueries] = queryTable(t, 3).ctrl.Ordered()
	m := testModel(t, backend, Options{})

	m = press(m, "j", "y")
	assert.Equal(t, "2", copied)
	assert.Equal(t, "Copied 2", m.info)
}

var origClipboard = writeClipboard
