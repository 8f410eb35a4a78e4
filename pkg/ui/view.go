package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"atelier/pkg/calendar"
	"atelier/pkg/models"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		if m.viewMode == models.CalendarViewMode {
			sb.WriteString(m.titleBar(" Atelier - Calendar ", m.styles.AccentColor))
			sb.WriteString("\n\n")
			sb.WriteString(m.renderCalendar())
		} else {
			sb.WriteString(m.titleBar(" Atelier - Tasks ", m.styles.AccentColor))
			sb.WriteString("\n\n")
			sb.WriteString(m.renderTasks())
		}

	case EventFormMode, TaskFormMode:
		title := " Add "
		if m.form.editing() {
			title = " Edit "
		}
		if m.mode == EventFormMode {
			title += "Event "
		} else {
			title += "Task "
		}
		sb.WriteString(m.titleBar(title, m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case DeleteConfirmMode:
		what, title := "task", " Delete Task "
		if m.pendingDelete != nil && m.pendingDelete.event {
			what, title = "event", " Delete Event "
		}
		sb.WriteString(m.titleBar(title, m.styles.ErrorColor))
		sb.WriteString("\n\n")
		if m.pendingDelete != nil {
			sb.WriteString(fmt.Sprintf("Are you sure you want to delete this %s?\n\n", what))
			sb.WriteString(fmt.Sprintf("Title: %s\n\n", m.pendingDelete.title))
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case LoginMode:
		sb.WriteString(m.titleBar(" Log in ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderLogin())

	case HelpViewMode:
		sb.WriteString(m.renderHelp())
	}

	if m.loading() {
		sb.WriteString("\n\n")
		sb.WriteString(m.muted("Loading…"))
	}

	// Error message if any
	if m.err != nil {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor)).Render("Error: " + m.err.Error()))
	} else if m.status != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.muted(m.status))
	}

	sb.WriteString("\n")
	sb.WriteString(m.helpBar())
	return sb.String()
}

func (m Model) loading() bool {
	return m.agenda.Loading()
}

func (m Model) titleBar(text, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(text)
}

func (m Model) muted(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.MutedTextColor)).Render(text)
}

// renderCalendar draws the month grid and the selected day's events
func (m Model) renderCalendar() string {
	var sb strings.Builder
	grid := m.agenda.Grid()
	loc := m.location()

	header := fmt.Sprintf("%s %d", grid.Month, grid.Year)
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	sb.WriteString("\n\n")

	weekdayRow := ""
	for _, day := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		weekdayRow += fmt.Sprintf("%-6s", day)
	}
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(weekdayRow))
	sb.WriteString("\n")

	for _, week := range grid.Weeks() {
		row := ""
		for _, day := range week {
			if day == nil {
				row += "      "
				continue
			}
			row += m.dayCell(day)
		}
		sb.WriteString(row)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sel := m.agenda.Selected().In(loc)
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(sel.Format("Monday, January 2")))
	sb.WriteString("\n")

	events := m.agenda.SelectedEvents()
	if len(events) == 0 {
		sb.WriteString(m.muted("  No events"))
		sb.WriteString("\n")
	}
	for i, e := range events {
		cursor := "  "
		if i == m.eventCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-11s %s (%s, %s)", cursor, eventTimeRange(e, loc), e.Title, e.Type, e.Status)
		if e.Location != "" {
			line += " @ " + e.Location
		}
		style := lipgloss.NewStyle()
		if i == m.eventCursor {
			style = style.Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true)
		} else if e.Status.IsTerminal() {
			style = style.Foreground(lipgloss.Color(m.styles.MutedTextColor))
		}
		sb.WriteString(style.Render(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

// dayCell renders a day number followed by up to calendar.MaxMarks dots
func (m Model) dayCell(day *calendar.Day) string {
	marks := strings.Repeat("•", day.Marks())
	text := fmt.Sprintf("%2d%-4s", day.Number, marks)

	style := lipgloss.NewStyle()
	switch {
	case day.Selected:
		style = style.Background(lipgloss.Color(m.styles.AccentColor)).
			Foreground(lipgloss.Color(m.styles.SelectedTextColor)).Bold(true)
	case day.Today:
		style = style.Foreground(lipgloss.Color(m.styles.TodayColor)).Bold(true)
	case len(day.Events) > 0:
		style = style.Foreground(lipgloss.Color(m.styles.NormalTextColor))
	default:
		style = style.Foreground(lipgloss.Color(m.styles.MutedTextColor))
	}
	return style.Render(text)
}

func (m Model) renderTasks() string {
	var sb strings.Builder
	stats := m.agenda.Stats()

	order := "asc"
	if m.sortOrder == models.SortDesc {
		order = "desc"
	}
	group := ""
	if m.groupByTag {
		group = ", grouped by tag"
	}
	info := fmt.Sprintf("Filter: %s | sorted by %s (%s)%s", filterLabel(m.agenda.Filter()), m.sortBy, order, group)
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render(info))
	sb.WriteString("\n")

	statsLine := fmt.Sprintf("%d total · %d pending · %d in progress · %d completed",
		stats.Total, stats.Pending, stats.InProgress, stats.Completed)
	sb.WriteString(m.muted(statsLine))
	if stats.Overdue > 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.OverdueColor)).
			Render(fmt.Sprintf(" · %d overdue", stats.Overdue)))
	}
	sb.WriteString("\n\n")

	if len(m.rowTasks) == 0 {
		sb.WriteString(m.muted("No tasks"))
		sb.WriteString("\n")
		return sb.String()
	}
	sb.WriteString(m.table.View())
	sb.WriteString("\n")

	if t, ok := m.selectedTask(); ok && len(t.Checklist) > 0 {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Checklist %s %d%%\n", progressBar(t.ChecklistProgress(), 10), int(t.ChecklistProgress()*100+0.5)))
		for i, item := range t.Checklist {
			box := "[ ]"
			if item.Completed {
				box = "[x]"
			}
			sb.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, box, highlightTags(item.Text, m.styles.TagColor)))
		}
	}
	return sb.String()
}

func filterLabel(f models.TaskFilter) string {
	if f == models.FilterAll || f == "" {
		return "all"
	}
	return f.Status().Label()
}

// renderForm renders the inputs with inline validation messages
func (m Model) renderForm() string {
	var sb strings.Builder
	fs := m.form
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor))

	if fs.submitErr != "" {
		sb.WriteString(errStyle.Render(fs.submitErr))
		sb.WriteString("\n\n")
	}
	for i, f := range fs.fields {
		label := f.Label + ":"
		if i == fs.active {
			label = lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true).Render(label)
		}
		sb.WriteString(label)
		sb.WriteString("\n")
		sb.WriteString(fs.inputs[i].View())
		if fs.errs != nil {
			if msg := fs.errs.For(f.Label); msg != "" {
				sb.WriteString("  ")
				sb.WriteString(errStyle.Render(msg))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderLogin() string {
	var sb strings.Builder
	if m.login.reason != "" {
		sb.WriteString(m.login.reason)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Email:\n")
	sb.WriteString(m.login.email.View())
	sb.WriteString("\n\nPassword:\n")
	sb.WriteString(m.login.password.View())
	sb.WriteString("\n")
	if m.login.busy {
		sb.WriteString("\n")
		sb.WriteString(m.muted("Signing in…"))
	}
	if m.login.message != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.ErrorColor)).Render(m.login.message))
	}
	return sb.String()
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor))

	addCommand := func(binding key.Binding) {
		sb.WriteString(fmt.Sprintf("%s: %s\n", descStyle.Render(binding.Help().Desc), keyStyle.Render(binding.Help().Key)))
	}
	section := func(title string, bindings ...key.Binding) {
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
		sb.WriteString("\n\n")
		for _, b := range bindings {
			addCommand(b)
		}
		sb.WriteString("\n")
	}

	km := m.keyMap
	section("General", km.Quit, km.ShowHelp, km.SwitchView, km.Reload, km.Add, km.Edit, km.Delete, km.Login)
	section("Calendar", km.Left, km.Right, km.Up, km.Down, km.PrevMonth, km.NextMonth, km.JumpToToday,
		km.NextEvent, km.CompleteEvent, km.CancelEvent)
	section("Tasks", km.CycleStatus, km.ToggleChecklist, km.CycleFilter, km.ToggleSortBy, km.ToggleSortOrder, km.ToggleGroupBy)
	return sb.String()
}

// helpBar renders a status bar with available actions
func (m Model) helpBar() string {
	var actions []string
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separator := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.BorderColor)).Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}

	switch m.mode {
	case NormalMode:
		if m.viewMode == models.CalendarViewMode {
			addAction("←↑↓→", "day")
			addAction(m.keyMap.PrevMonth.Help().Key+"/"+m.keyMap.NextMonth.Help().Key, "month")
			addBinding(m.keyMap.NextEvent, "event")
			if e, ok := m.selectedEvent(); ok && len(e.Status.QuickActions()) > 0 {
				addBinding(m.keyMap.CompleteEvent, "complete")
				addBinding(m.keyMap.CancelEvent, "cancel")
			}
		} else {
			addBinding(m.keyMap.CycleStatus, "status")
			addBinding(m.keyMap.ToggleChecklist, "check")
			addBinding(m.keyMap.CycleFilter, "filter")
			addAction("s/o/g", "sort/ord/grp")
		}
		addBinding(m.keyMap.Add, "add")
		addBinding(m.keyMap.Edit, "edit")
		addBinding(m.keyMap.Delete, "del")
		addBinding(m.keyMap.SwitchView, "view")
		addBinding(m.keyMap.ShowHelp, "help")
		addBinding(m.keyMap.Quit, "quit")

	case EventFormMode, TaskFormMode:
		addAction("tab", "next field")
		addAction("enter", "next/save")
		addAction("ctrl+s", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case LoginMode:
		addAction("tab", "switch field")
		addAction("enter", "log in")
		addAction("esc", "dismiss")

	case HelpViewMode:
		addAction("ctrl+b/esc", "back")
		addAction("q", "quit")
	}

	return strings.Join(actions, separator)
}
