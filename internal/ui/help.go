package ui

import (
	"fmt"
	"strings"

	"hoteldesk/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(keys KeyMap, formKeys FormKeyMap, screen model.Screen, mode model.Mode, view model.View, width int) string {
	switch mode {
	case model.ModeInsert:
		return renderFormHelp(formKeys, screen, width)
	case model.ModeSearch:
		return renderHelpLine([]string{
			helpKey("type", "filter rows"),
			helpKey("enter", "apply"),
			helpKey("esc", "clear"),
		}, width)
	}

	switch screen {
	case model.ScreenDetail:
		return renderDetailHelp(keys, view, width)
	case model.ScreenProfile:
		return renderHelpLine(bindingHelp([]key.Binding{keys.Edit, keys.Reload, keys.Back}), width)
	}
	return renderTableHelp(keys, view, width)
}

func renderTableHelp(keys KeyMap, view model.View, width int) string {
	bindings := []key.Binding{keys.Up, keys.NextPage, keys.NextColumn, keys.Sort, keys.Search, keys.CycleFilter, keys.FilterValue, keys.ClearFilter}
	if view == model.ViewAccess {
		bindings = append(bindings, keys.Mark, keys.Bulk, keys.Undo)
	}
	bindings = append(bindings, keys.Reload, keys.AutoRefresh, keys.ExportCSV, keys.Select, keys.Profile, keys.Help)

	items := []string{helpKey(fmt.Sprintf("1-%d", len(model.Views)), "tabs")}
	items = append(items, bindingHelp(bindings)...)
	return renderHelpLine(items, width)
}

func renderDetailHelp(keys KeyMap, view model.View, width int) string {
	var bindings []key.Binding
	switch view {
	case model.ViewQueries:
		bindings = []key.Binding{keys.Reply, keys.Resolve, keys.Delete}
	case model.ViewAccess:
		bindings = []key.Binding{keys.Edit, keys.Undo, keys.Redo}
	case model.ViewTasks:
		bindings = []key.Binding{keys.Edit}
	}
	bindings = append(bindings, keys.Copy, keys.Back)
	return renderHelpLine(bindingHelp(bindings), width)
}

func renderFormHelp(keys FormKeyMap, screen model.Screen, width int) string {
	bindings := []key.Binding{keys.NextField, keys.PrevField}
	if screen != model.ScreenReplyForm && screen != model.ScreenProfileForm {
		bindings = append(bindings, keys.Change)
	}
	bindings = append(bindings, keys.Save, keys.Cancel)
	return renderHelpLine(bindingHelp(bindings), width)
}

func bindingHelp(bindings []key.Binding) []string {
	items := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		items = append(items, helpKey(h.Key, h.Desc))
	}
	return items
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"1-8 / ← →", "Switch table"},
			{"j / ↓, k / ↑", "Move down / up (crosses pages)"},
			{"] / pgdn, [ / pgup", "Next / previous page"},
			{"gg / G", "First / last row of the page"},
			{"enter / l", "Open details"},
			{"P", "Your profile (e to edit)"},
			{"h / esc / b", "Back to the table"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Table"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Cycle active column"},
			{": then 1-9", "Jump to column"},
			{"s", "Sort by active column (again to reverse)"},
			{"S", "Clear sort"},
			{"/", "Search (applies after a short pause)"},
			{"f / F", "Cycle field filter value / switch filter field"},
			{"n / N", "Filter by selected value / clear all filters"},
			{"c / C", "Hide active column / show all"},
			{"r", "Reload from the backend"},
			{"A", "Toggle auto refresh"},
			{"E / X", "Export filtered rows to CSV / XLSX"},
			{"y", "Copy the selected row id"},
		}),
		titleSection("Queries"),
		helpSection([]helpItem{
			{"R", "Reply (from detail)"},
			{"v", "Mark resolved (from detail)"},
			{"d d", "Delete, admins only (from detail)"},
		}),
		titleSection("Access"),
		helpSection([]helpItem{
			{"e", "Edit role, status and privileges (from detail)"},
			{"space / B", "Mark users / bulk update marked users"},
			{"u / ctrl+r", "Undo / redo access edits"},
		}),
		titleSection("Tasks"),
		helpSection([]helpItem{
			{"e", "Update status and remarks (from detail)"},
		}),
		titleSection("Forms"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Next / previous field"},
			{"← → / space", "Change choice or toggle privilege"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
