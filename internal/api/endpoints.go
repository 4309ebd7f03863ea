package api

import (
	"context"
	"fmt"
	"net/url"

	"hoteldesk/internal/model"
	"hoteldesk/internal/tableview"
	"hoteldesk/internal/util"
)

// Backend paths.
const (
	PathMe           = "/api/me"
	PathQueries      = "/api/queries"
	PathQuerySummary = "/api/queries/summary"
	PathQueryRecent  = "/api/queries/recent"
	PathUsers        = "/api/users"
	PathUserAudit    = "/api/users/audit"
	PathUserBulk     = "/api/users/bulk_update"
	PathTransactions = "/api/transactions"
	PathTasks        = "/api/staff/tasks"
	PathStaffSummary = "/api/staff/summary"
	PathStaffGuests  = "/api/staff/guests"
	PathTaskUpdate   = "/api/staff/update_task"
	PathRooms        = "/api/admin/rooms"
	PathAdminSummary = "/api/admin/summary"
	PathBookings     = "/api/admin/recent_bookings"
	PathAdminUsers   = "/api/admin/users"
	PathProfile      = "/api/staff/profile"
	PathProfileSave  = "/api/staff/update_profile"
	PathEvents       = "/api/events"
)

const maxAuditEntries = 50

// Me returns the signed-in user's role. A missing role reads as staff.
func (c *Client) Me(ctx context.Context) (model.Me, error) {
	var me model.Me
	if err := c.get(ctx, PathMe, &me); err != nil {
		return model.Me{Role: model.RoleStaff}, err
	}
	if me.Role == "" {
		me.Role = model.RoleStaff
	}
	return me, nil
}

// Summary fetches a summary object and returns the requested counters in
// order. Missing counters read as "—".
func (c *Client) Summary(ctx context.Context, path string, fields []SummaryField) ([]model.Stat, error) {
	obj, err := c.FetchObject(ctx, path)
	if err != nil {
		return nil, err
	}
	stats := make([]model.Stat, 0, len(fields))
	for _, f := range fields {
		v := tableview.Stringify(obj[f.Key])
		if f.Amount {
			v = util.FormatAmount(v)
		} else {
			v = util.Dash(v)
		}
		stats = append(stats, model.Stat{Label: f.Label, Value: v})
	}
	return stats, nil
}

// SummaryField maps a summary object key to its label. Amount fields are
// shown as rupees.
type SummaryField struct {
	Key    string
	Label  string
	Amount bool
}

// Summary layouts of the backend's summary endpoints.
var (
	QuerySummaryFields = []SummaryField{
		{Key: "total", Label: "Total"},
		{Key: "pending", Label: "Pending"},
		{Key: "resolved", Label: "Resolved"},
	}
	StaffSummaryFields = []SummaryField{
		{Key: "assigned_tasks", Label: "Assigned tasks"},
		{Key: "pending_queries", Label: "Pending queries"},
		{Key: "guests_assisted", Label: "Guests assisted"},
		{Key: "completed_today", Label: "Completed today"},
	}
	AdminSummaryFields = []SummaryField{
		{Key: "total_users", Label: "Users"},
		{Key: "total_staff", Label: "Staff"},
		{Key: "total_guests", Label: "Guests"},
		{Key: "total_revenue", Label: "Revenue", Amount: true},
	}
)

// RecentQueries returns the pending queries shown as notifications.
func (c *Client) RecentQueries(ctx context.Context) ([]model.Notification, error) {
	var list []model.Notification
	if err := c.get(ctx, PathQueryRecent, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Audit returns at most the 50 newest access changes.
func (c *Client) Audit(ctx context.Context) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	if err := c.get(ctx, PathUserAudit, &entries); err != nil {
		return nil, err
	}
	if len(entries) > maxAuditEntries {
		entries = entries[:maxAuditEntries]
	}
	return entries, nil
}

// ReplyQuery posts a reply to a guest query.
func (c *Client) ReplyQuery(ctx context.Context, id, reply string) error {
	if err := c.post(ctx, "/api/queries/reply/"+url.PathEscape(id), map[string]string{"reply": reply}); err != nil {
		return fmt.Errorf("reply to query %s: %w", id, err)
	}
	return nil
}

// ResolveQuery marks a guest query resolved.
func (c *Client) ResolveQuery(ctx context.Context, id string) error {
	if err := c.post(ctx, "/api/queries/resolve/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("resolve query %s: %w", id, err)
	}
	return nil
}

// DeleteQuery removes a guest query. The backend only accepts it from admins.
func (c *Client) DeleteQuery(ctx context.Context, id string) error {
	if err := c.post(ctx, "/api/queries/delete/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("delete query %s: %w", id, err)
	}
	return nil
}

// UpdateUserAccess replaces one user's role, status and privileges.
func (c *Client) UpdateUserAccess(ctx context.Context, id string, access model.UserAccess) error {
	if err := c.post(ctx, "/api/users/update/"+url.PathEscape(id), access); err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	return nil
}

// BulkUpdateUsers applies role and/or status to several users.
func (c *Client) BulkUpdateUsers(ctx context.Context, update model.BulkUpdate) error {
	if len(update.IDs) == 0 {
		return fmt.Errorf("bulk update: no users selected")
	}
	if update.Role == "" && update.Status == "" {
		return fmt.Errorf("bulk update: nothing to change")
	}
	if err := c.post(ctx, PathUserBulk, update); err != nil {
		return fmt.Errorf("bulk update %d users: %w", len(update.IDs), err)
	}
	return nil
}

// UpdateTask sets a staff task's status and remarks.
func (c *Client) UpdateTask(ctx context.Context, update model.TaskUpdate) error {
	if err := c.post(ctx, PathTaskUpdate, update); err != nil {
		return fmt.Errorf("update task %s: %w", update.TaskID, err)
	}
	return nil
}

// Profile returns the signed-in staff member's contact details.
func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	var p model.Profile
	if err := c.get(ctx, PathProfile, &p); err != nil {
		return model.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// UpdateProfile replaces the signed-in staff member's contact details.
func (c *Client) UpdateProfile(ctx context.Context, p model.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := c.post(ctx, PathProfileSave, p); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
