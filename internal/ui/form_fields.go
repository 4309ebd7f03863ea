package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// choiceField is a select box cycled with left/right or space.
type choiceField struct {
	label   string
	options []string
	// display overrides how an option is shown; "" options need one.
	display map[string]string
	index   int
}

func newChoiceField(label string, options []string, value string) choiceField {
	f := choiceField{label: label, options: options}
	f.Set(value)
	return f
}

func (f *choiceField) Set(value string) {
	for i, o := range f.options {
		if strings.EqualFold(o, value) {
			f.index = i
			return
		}
	}
	f.index = 0
}

func (f choiceField) Value() string {
	if len(f.options) == 0 {
		return ""
	}
	return f.options[f.index]
}

func (f *choiceField) Next() {
	if len(f.options) > 0 {
		f.index = (f.index + 1) % len(f.options)
	}
}

func (f *choiceField) Prev() {
	if len(f.options) > 0 {
		f.index = (f.index - 1 + len(f.options)) % len(f.options)
	}
}

func (f choiceField) View(focused bool) string {
	var parts []string
	for i, o := range f.options {
		text := o
		if d, ok := f.display[o]; ok {
			text = d
		}
		style := HelpDescStyle
		if i == f.index {
			style = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
			text = "‹ " + text + " ›"
		}
		parts = append(parts, style.Render(text))
	}

	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}
	return style.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(f.label),
		strings.Join(parts, "  "),
	))
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}

func renderCheckbox(label string, checked, focused bool) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	style := NormalRowStyle
	if focused {
		style = SelectedRowStyle
	}
	return style.Render(box + " " + label)
}
