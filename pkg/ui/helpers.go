package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"atelier/pkg/agenda"
	"atelier/pkg/models"
)

// refreshRows rebuilds the task table from the manager's current list
func (m *Model) refreshRows() {
	tasks := m.agenda.Tasks()
	now := m.agenda.Now()

	var groups []agenda.GroupedTasks
	if m.groupByTag {
		groups = agenda.GroupByTag(tasks, m.sortBy, m.sortOrder)
	} else {
		groups = []agenda.GroupedTasks{{Tasks: agenda.SortTasks(tasks, m.sortBy, m.sortOrder)}}
	}

	rows := []table.Row{}
	ids := []string{}
	for _, group := range groups {
		// Add group header if grouping is enabled
		if m.groupByTag {
			rows = append(rows, table.Row{"", fmt.Sprintf("== %s ==", group.GroupName), "", "", "", ""})
			ids = append(ids, "")
		}
		for _, t := range group.Tasks {
			rows = append(rows, m.taskRow(t, now))
			ids = append(ids, t.ID)
		}
	}

	m.table.SetRows(rows)
	m.rowTasks = ids
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}

	if n := len(m.agenda.SelectedEvents()); m.eventCursor >= n {
		m.eventCursor = 0
	}
}

// taskRow renders plain cells; the table applies its own row styles
func (m Model) taskRow(t models.Task, now time.Time) table.Row {
	status := statusBox(t.Status) + " " + t.Status.Label()

	due := ""
	if t.DueDate != nil {
		due = t.DueDate.In(m.location()).Format("Jan 02 15:04")
		if t.IsOverdue(now) {
			due += " !"
		}
	}

	progress := ""
	if done, total := t.ChecklistCounts(); total > 0 {
		progress = fmt.Sprintf("%d/%d", done, total)
	}

	tags := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		tags[i] = "+" + tag
	}

	return table.Row{status, t.Title, string(t.Priority), due, progress, strings.Join(tags, " ")}
}

func statusBox(s models.TaskStatus) string {
	switch s {
	case models.TaskCompleted:
		return "[x]"
	case models.TaskInProgress:
		return "[~]"
	}
	return "[ ]"
}

func eventTimeRange(e models.Event, loc *time.Location) string {
	if e.IsAllDay {
		return "all day"
	}
	start, end := e.StartDate.In(loc), e.EndDate.In(loc)
	if end.IsZero() || end.Equal(start) {
		return start.Format("15:04")
	}
	return start.Format("15:04") + "-" + end.Format("15:04")
}

// highlightTags colors +tag words in text
func highlightTags(text, color string) string {
	words := strings.Fields(text)
	var result strings.Builder
	for i, word := range words {
		if i > 0 {
			result.WriteString(" ")
		}
		if strings.HasPrefix(word, "+") && len(word) > 1 {
			result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(word))
		} else {
			result.WriteString(word)
		}
	}
	return result.String()
}

func progressBar(p float64, width int) string {
	filled := int(p*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
