package model

import (
	"fmt"
	"strings"
)

// View identifies one dashboard table.
type View string

const (
	ViewQueries      View = "queries"
	ViewAccess       View = "access"
	ViewTransactions View = "transactions"
	ViewTasks        View = "tasks"
	ViewGuests       View = "guests"
	ViewRooms        View = "rooms"
	ViewBookings     View = "bookings"
	ViewUsers        View = "users"
)

// Views lists every table in tab order.
var Views = []View{
	ViewQueries,
	ViewAccess,
	ViewTransactions,
	ViewTasks,
	ViewGuests,
	ViewRooms,
	ViewBookings,
	ViewUsers,
}

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

// Role is the signed-in user's role as reported by /api/me.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleGuest Role = "guest"
)

// Me is the /api/me payload.
type Me struct {
	Role Role `json:"role"`
}

// IsAdmin reports whether admin-only actions should be offered.
func (m Me) IsAdmin() bool { return m.Role == RoleAdmin }

// QueryReply is one entry of a guest query's reply history.
type QueryReply struct {
	By  string `json:"by"`
	Msg string `json:"msg"`
	At  string `json:"at"`
}

// UserAccess is the body of a single-user access update.
type UserAccess struct {
	Role       string   `json:"role"`
	Status     string   `json:"status"`
	Privileges []string `json:"privileges"`
}

// BulkUpdate applies role and/or status to several users at once.
type BulkUpdate struct {
	IDs    []int64 `json:"ids"`
	Role   string  `json:"role,omitempty"`
	Status string  `json:"status,omitempty"`
}

// TaskUpdate is the staff task status update.
type TaskUpdate struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// Profile is the staff member's contact card from /api/staff/profile.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate checks the fields the backend cannot repair.
func (p Profile) Validate() error {
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return fmt.Errorf("email %q is not an address", p.Email)
	}
	for _, r := range p.Phone {
		if !strings.ContainsRune("0123456789+-() ", r) {
			return fmt.Errorf("phone %q has invalid characters", p.Phone)
		}
	}
	return nil
}

// DisplayName is the name shown in the header.
func (p Profile) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return "Staff Member"
	}
	return p.Name
}

// AuditEntry is one line of /api/users/audit.
type AuditEntry struct {
	ID     int64  `json:"id"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	Target string `json:"target"`
	When   string `json:"when"`
}

// Notification is a recent pending guest query.
type Notification struct {
	QueryID   int64  `json:"query_id"`
	UserName  string `json:"user_name"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"created_at"`
}

// Stat is one labelled number of a view summary.
type Stat struct {
	Label string
	Value string
}

// Privileges offered in the access editor. The backend enforces the real
// grants.
var Privileges = []string{"SELECT", "INSERT", "UPDATE", "DELETE"}

// Screen represents different app screens.
type Screen int

const (
	ScreenTable Screen = iota
	ScreenDetail
	ScreenReplyForm
	ScreenAccessForm
	ScreenBulkForm
	ScreenTaskForm
	ScreenProfile
	ScreenProfileForm
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeSearch
	ModeInsert
)
