package ui

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hoteldesk/internal/api"
	"hoteldesk/internal/export"
	"hoteldesk/internal/model"
	"hoteldesk/internal/store"
	"hoteldesk/internal/tableview"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// requestTimeout bounds every backend call made from a command.
const requestTimeout = 15 * time.Second

// Backend is the data source the dashboard reads from and writes to.
type Backend interface {
	FetchRows(ctx context.Context, path string) ([]tableview.Row, error)
	Me(ctx context.Context) (model.Me, error)
	Summary(ctx context.Context, path string, fields []api.SummaryField) ([]model.Stat, error)
	RecentQueries(ctx context.Context) ([]model.Notification, error)
	Audit(ctx context.Context) ([]model.AuditEntry, error)
	Profile(ctx context.Context) (model.Profile, error)

	ReplyQuery(ctx context.Context, id, reply string) error
	ResolveQuery(ctx context.Context, id string) error
	DeleteQuery(ctx context.Context, id string) error
	UpdateUserAccess(ctx context.Context, id string, access model.UserAccess) error
	BulkUpdateUsers(ctx context.Context, update model.BulkUpdate) error
	UpdateTask(ctx context.Context, update model.TaskUpdate) error
	UpdateProfile(ctx context.Context, p model.Profile) error
}

var _ Backend = (*api.Client)(nil)

type clipboardMsg struct {
	value string
	err   error
}

var writeClipboard = clipboard.WriteAll

func loadRowsCmd(b Backend, def viewDef, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		rows, err := b.FetchRows(ctx, def.path)
		if err != nil {
			log.Warn("fetch rows failed", zap.String("view", string(def.view)), zap.Error(err))
			return model.RowsLoadedMsg{View: def.view, Err: err}
		}
		log.Debug("rows loaded", zap.String("view", string(def.view)), zap.Int("count", len(rows)))
		return model.RowsLoadedMsg{View: def.view, Rows: rows}
	}
}

func loadSummaryCmd(b Backend, def viewDef, log *zap.Logger) tea.Cmd {
	if def.summaryPath == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		stats, err := b.Summary(ctx, def.summaryPath, def.summaryFields)
		if err != nil {
			log.Warn("fetch summary failed", zap.String("view", string(def.view)), zap.Error(err))
		}
		return model.SummaryLoadedMsg{View: def.view, Stats: stats}
	}
}

func loadNotificationsCmd(b Backend, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		items, err := b.RecentQueries(ctx)
		if err != nil {
			log.Warn("fetch notifications failed", zap.Error(err))
		}
		return model.NotificationsLoadedMsg{Items: items}
	}
}

func loadAuditCmd(b Backend, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		entries, err := b.Audit(ctx)
		if err != nil {
			log.Warn("fetch audit failed", zap.Error(err))
		}
		return model.AuditLoadedMsg{Entries: entries}
	}
}

func loadProfileCmd(b Backend, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		p, err := b.Profile(ctx)
		if err != nil {
			log.Warn("fetch profile failed", zap.Error(err))
		}
		return model.ProfileLoadedMsg{Profile: p, Err: err}
	}
}

func loadMeCmd(b Backend, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		me, err := b.Me(ctx)
		if err != nil {
			log.Warn("fetch role failed, assuming staff", zap.Error(err))
		}
		return model.MeLoadedMsg{Me: me}
	}
}

// actionCmd runs one write against the backend and reports it as an
// ActionDoneMsg for view.
func actionCmd(view model.View, label string, log *zap.Logger, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := fn(ctx)
		if err != nil {
			log.Warn("action failed", zap.String("view", string(view)), zap.String("action", label), zap.Error(err))
		} else {
			log.Info("action done", zap.String("view", string(view)), zap.String("action", label))
		}
		return model.ActionDoneMsg{View: view, Label: label, Err: err}
	}
}

// exportCmd writes rows to a file in dir and records it in the export
// history. Only the visible columns are exported, in display order.
func exportCmd(database *sql.DB, dir string, def viewDef, columns []tableColumn, rows []tableview.Row, format string, log *zap.Logger) tea.Cmd {
	var headers, fields []string
	for _, c := range columns {
		if c.hidden {
			continue
		}
		headers = append(headers, strings.ToUpper(c.label))
		fields = append(fields, c.key)
	}

	return func() tea.Msg {
		path, err := export.ToFile(dir, string(def.view), format, headers, export.Table(rows, fields), time.Now())
		if err != nil {
			log.Warn("export failed", zap.String("view", string(def.view)), zap.String("format", format), zap.Error(err))
			return model.ExportDoneMsg{View: def.view, Err: fmt.Errorf("export %s: %w", def.view, err)}
		}
		log.Info("exported view",
			zap.String("view", string(def.view)),
			zap.String("path", path),
			zap.Int("rows", len(rows)))

		if database != nil {
			rec := store.ExportRecord{View: string(def.view), Format: format, Path: path, RowCount: len(rows)}
			if _, err := store.RecordExport(database, rec); err != nil {
				log.Warn("record export failed", zap.Error(err))
			}
		}
		return model.ExportDoneMsg{View: def.view, Path: path, Count: len(rows)}
	}
}

func copyCmd(value string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{value: value, err: writeClipboard(value)}
	}
}
