package ui

import (
	"hoteldesk/internal/model"
	"hoteldesk/internal/store"

	"go.uber.org/zap"
)

const lastViewKey = "last_view"

// loadTablePrefs applies the stored preferences of every table.
func (m *Model) loadTablePrefs() {
	if m.db == nil {
		return
	}
	for view, t := range m.tables {
		prefs, found, err := store.LoadViewPrefs(m.db, string(view))
		if err != nil {
			m.log.Warn("load view prefs failed", zap.String("view", string(view)), zap.Error(err))
			continue
		}
		if found {
			t.ApplyPrefs(prefs)
		}
	}
}

func (m *Model) persistTablePrefs(view model.View) {
	t := m.tables[view]
	if m.db == nil || t == nil {
		return
	}
	if err := store.SaveViewPrefs(m.db, string(view), t.Prefs()); err != nil {
		m.log.Warn("save view prefs failed", zap.String("view", string(view)), zap.Error(err))
	}
}

func (m *Model) restoreLastView() model.View {
	if m.db == nil {
		return model.ViewQueries
	}
	value, found, err := store.GetSetting(m.db, lastViewKey)
	if err != nil {
		m.log.Warn("load last view failed", zap.Error(err))
		return model.ViewQueries
	}
	if v := model.View(value); found && v.Valid() {
		return v
	}
	return model.ViewQueries
}

func (m *Model) saveLastView() {
	if m.db == nil {
		return
	}
	if err := store.SetSetting(m.db, lastViewKey, string(m.view)); err != nil {
		m.log.Warn("save last view failed", zap.Error(err))
	}
}
