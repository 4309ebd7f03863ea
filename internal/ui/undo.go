package ui

import (
	"context"
	"fmt"

	"hoteldesk/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type undoAction struct {
	label string
	undo  func() error
	redo  func() error
}

type undoAppliedMsg struct {
	err       error
	action    undoAction
	direction string // undo, redo
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
}

func (m *Model) undoCmd() tea.Cmd {
	if len(m.undoStack) == 0 {
		return nil
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return func() tea.Msg {
		err := action.undo()
		return undoAppliedMsg{err: err, action: action, direction: "undo"}
	}
}

func (m *Model) redoCmd() tea.Cmd {
	if len(m.redoStack) == 0 {
		return nil
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return func() tea.Msg {
		err := action.redo()
		return undoAppliedMsg{err: err, action: action, direction: "redo"}
	}
}

// buildAccessUpdateAction undoes an access edit by posting the previous
// settings back.
func (m *Model) buildAccessUpdateAction(msg accessSavedMsg) undoAction {
	backend := m.backend
	id := msg.id
	before := msg.before
	after := msg.after
	post := func(access model.UserAccess) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return backend.UpdateUserAccess(ctx, id, access)
	}
	return undoAction{
		label: fmt.Sprintf("access change for user %s", id),
		undo: func() error {
			return post(before)
		},
		redo: func() error {
			return post(after)
		},
	}
}

func (m *Model) applyUndoResult(msg undoAppliedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Warn("undo stack action failed", zap.String("direction", msg.direction), zap.Error(msg.err))
		m.error = fmt.Sprintf("%s failed: %v", msg.direction, msg.err)
		// Put it back so the user can retry.
		if msg.direction == "undo" {
			m.undoStack = append(m.undoStack, msg.action)
		} else {
			m.redoStack = append(m.redoStack, msg.action)
		}
		return nil
	}

	if msg.direction == "undo" {
		m.redoStack = append(m.redoStack, msg.action)
		m.info = "Undid: " + msg.action.label
	} else {
		m.undoStack = append(m.undoStack, msg.action)
		m.info = "Redid: " + msg.action.label
	}
	m.error = ""
	return m.reloadViewCmd(model.ViewAccess)
}
