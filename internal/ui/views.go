package ui

import (
	"strconv"
	"strings"
	"time"

	"hoteldesk/internal/api"
	"hoteldesk/internal/model"
	"hoteldesk/internal/tableview"
)

type columnKind int

const (
	kindText columnKind = iota
	kindAmount
	kindDate
	kindStatus
)

type columnDef struct {
	key   string
	label string
	width int
	kind  columnKind
}

// viewDef describes one dashboard table: where its rows come from and how
// the controller is configured for it.
type viewDef struct {
	view         model.View
	title        string
	path         string
	resource     string // live feed resource name
	primaryKey   string
	pageSize     int
	searchFields []string // empty searches every field
	filterFields []string
	refresh      time.Duration
	columns      []columnDef

	summaryPath   string
	summaryFields []api.SummaryField
	localSummary  func(rows []tableview.Row) []model.Stat
}

var viewDefs = []viewDef{
	{
		view:         model.ViewQueries,
		title:        "Queries",
		path:         api.PathQueries,
		resource:     "queries",
		primaryKey:   "query_id",
		pageSize:     6,
		searchFields: []string{"user_name", "subject", "message", "query_id"},
		filterFields: []string{"status"},
		refresh:      30 * time.Second,
		columns: []columnDef{
			{key: "query_id", label: "id", width: 6},
			{key: "user_name", label: "guest", width: 16},
			{key: "subject", label: "subject", width: 22},
			{key: "message", label: "message", width: 30},
			{key: "status", label: "status", width: 10, kind: kindStatus},
			{key: "created_at", label: "created", width: 12, kind: kindDate},
		},
		summaryPath:   api.PathQuerySummary,
		summaryFields: api.QuerySummaryFields,
	},
	{
		view:         model.ViewAccess,
		title:        "Access",
		path:         api.PathUsers,
		resource:     "users",
		primaryKey:   "user_id",
		pageSize:     10,
		searchFields: []string{"username", "email", "user_id"},
		filterFields: []string{"role", "status"},
		refresh:      60 * time.Second,
		columns: []columnDef{
			{key: "user_id", label: "id", width: 6},
			{key: "username", label: "username", width: 16},
			{key: "email", label: "email", width: 24},
			{key: "role", label: "role", width: 8},
			{key: "privileges", label: "privileges", width: 24},
			{key: "status", label: "status", width: 10, kind: kindStatus},
			{key: "last_updated", label: "updated", width: 12, kind: kindDate},
		},
		localSummary: func(rows []tableview.Row) []model.Stat {
			return countStats(rows, "Users", "role", []string{"admin", "staff"}, []string{"Admins", "Staff"})
		},
	},
	{
		view:         model.ViewTransactions,
		title:        "Transactions",
		path:         api.PathTransactions,
		resource:     "transactions",
		primaryKey:   "payment_id",
		pageSize:     6,
		searchFields: []string{"booking_id", "guest_name"},
		filterFields: []string{"status", "mode"},
		columns: []columnDef{
			{key: "payment_id", label: "payment", width: 8},
			{key: "booking_id", label: "booking", width: 10},
			{key: "guest_name", label: "guest", width: 18},
			{key: "amount", label: "amount", width: 12, kind: kindAmount},
			{key: "mode", label: "mode", width: 8},
			{key: "date", label: "date", width: 12, kind: kindDate},
			{key: "status", label: "status", width: 10, kind: kindStatus},
		},
	},
	{
		view:         model.ViewTasks,
		title:        "Tasks",
		path:         api.PathTasks,
		resource:     "tasks",
		primaryKey:   "task_id",
		pageSize:     10,
		searchFields: []string{"task_id", "assigned_to", "description"},
		filterFields: []string{"status", "priority"},
		columns: []columnDef{
			{key: "task_id", label: "task", width: 8},
			{key: "assigned_to", label: "assigned", width: 14},
			{key: "description", label: "description", width: 30},
			{key: "priority", label: "priority", width: 9},
			{key: "status", label: "status", width: 12, kind: kindStatus},
			{key: "due_date", label: "due", width: 12, kind: kindDate},
		},
		summaryPath:   api.PathStaffSummary,
		summaryFields: api.StaffSummaryFields,
	},
	{
		view:         model.ViewGuests,
		title:        "Guests",
		path:         api.PathStaffGuests,
		resource:     "guests",
		primaryKey:   "guest_id",
		pageSize:     10,
		searchFields: []string{"name", "room_no", "phone"},
		columns: []columnDef{
			{key: "name", label: "name", width: 18},
			{key: "room_no", label: "room", width: 6},
			{key: "check_in", label: "check in", width: 12, kind: kindDate},
			{key: "check_out", label: "check out", width: 12, kind: kindDate},
			{key: "phone", label: "phone", width: 14},
			{key: "notes", label: "notes", width: 24},
		},
	},
	{
		view:         model.ViewRooms,
		title:        "Rooms",
		path:         api.PathRooms,
		resource:     "rooms",
		primaryKey:   "room_no",
		pageSize:     10,
		filterFields: []string{"status", "room_type"},
		columns: []columnDef{
			{key: "room_no", label: "room", width: 6},
			{key: "room_type", label: "type", width: 12},
			{key: "price_per_night", label: "per night", width: 12, kind: kindAmount},
			{key: "status", label: "status", width: 12, kind: kindStatus},
		},
		localSummary: func(rows []tableview.Row) []model.Stat {
			return countStats(rows, "Rooms", "status", []string{"occupied", "available"}, []string{"Occupied", "Available"})
		},
	},
	{
		view:         model.ViewBookings,
		title:        "Bookings",
		path:         api.PathBookings,
		resource:     "bookings",
		primaryKey:   "booking_id",
		pageSize:     10,
		searchFields: []string{"booking_id", "guest_name", "room_no"},
		filterFields: []string{"status"},
		columns: []columnDef{
			{key: "booking_id", label: "booking", width: 10},
			{key: "guest_name", label: "guest", width: 18},
			{key: "room_no", label: "room", width: 6},
			{key: "check_in", label: "check in", width: 12, kind: kindDate},
			{key: "status", label: "status", width: 12, kind: kindStatus},
		},
		summaryPath:   api.PathAdminSummary,
		summaryFields: api.AdminSummaryFields,
	},
	{
		view:         model.ViewUsers,
		title:        "Users",
		path:         api.PathAdminUsers,
		resource:     "users",
		primaryKey:   "user_id",
		pageSize:     10,
		searchFields: []string{"user_id", "username", "email", "phone"},
		filterFields: []string{"role"},
		columns: []columnDef{
			{key: "user_id", label: "id", width: 6},
			{key: "username", label: "username", width: 16},
			{key: "email", label: "email", width: 24},
			{key: "phone", label: "phone", width: 14},
			{key: "role", label: "role", width: 8},
			{key: "created_at", label: "joined", width: 12, kind: kindDate},
		},
		localSummary: func(rows []tableview.Row) []model.Stat {
			return countStats(rows, "Users", "role", []string{"admin", "staff", "guest"}, []string{"Admins", "Staff", "Guests"})
		},
	},
}

func lookupView(v model.View) (viewDef, bool) {
	for _, d := range viewDefs {
		if d.view == v {
			return d, true
		}
	}
	return viewDef{}, false
}

// viewsForResource returns every view fed by a live feed resource. The
// access and users tables both list "users".
func viewsForResource(resource string) []model.View {
	var views []model.View
	for _, d := range viewDefs {
		if d.resource == resource || string(d.view) == resource {
			views = append(views, d.view)
		}
	}
	return views
}

// countStats counts rows whose field equals each of values, ignoring case.
func countStats(rows []tableview.Row, totalLabel, field string, values, labels []string) []model.Stat {
	counts := make([]int, len(values))
	for _, r := range rows {
		v := r.Value(field)
		for i, want := range values {
			if strings.EqualFold(v, want) {
				counts[i]++
			}
		}
	}
	stats := []model.Stat{{Label: totalLabel, Value: strconv.Itoa(len(rows))}}
	for i, label := range labels {
		stats = append(stats, model.Stat{Label: label, Value: strconv.Itoa(counts[i])})
	}
	return stats
}
