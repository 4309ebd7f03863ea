package model

import "hoteldesk/internal/tableview"

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// RowsLoadedMsg is sent when a view's list endpoint answered. Err is set
// when the fetch failed; Rows is then empty.
type RowsLoadedMsg struct {
	View View
	Rows []tableview.Row
	Err  error
}

// SummaryLoadedMsg carries a view's summary counters.
type SummaryLoadedMsg struct {
	View  View
	Stats []Stat
}

// NotificationsLoadedMsg carries recent pending queries.
type NotificationsLoadedMsg struct {
	Items []Notification
}

// AuditLoadedMsg carries the access audit log.
type AuditLoadedMsg struct {
	Entries []AuditEntry
}

// MeLoadedMsg is sent once the user's role is known.
type MeLoadedMsg struct {
	Me Me
}

// ProfileLoadedMsg carries the staff member's profile.
type ProfileLoadedMsg struct {
	Profile Profile
	Err     error
}

// RefreshTickMsg is delivered by a view's auto-refresh timer. Gen is the
// timer generation the tick was scheduled for.
type RefreshTickMsg struct {
	View View
	Gen  uint64
}

// SearchSettledMsg is delivered when typing in a view's search box has been
// quiet for the debounce delay. Seq identifies the keystroke it settles.
type SearchSettledMsg struct {
	View View
	Text string
	Seq  uint64
}

// LiveEventMsg is posted when the backend reports a changed resource.
type LiveEventMsg struct {
	Resource string
}

// ActionDoneMsg is sent when a write action finished.
type ActionDoneMsg struct {
	View  View
	Label string
	Err   error
}

// ExportDoneMsg is sent when an export file was written.
type ExportDoneMsg struct {
	View  View
	Path  string
	Count int
	Err   error
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}
