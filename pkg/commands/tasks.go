package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"atelier/pkg/agenda"
	"atelier/pkg/models"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// ListTasks prints the tasks matching filter in the requested order, then the stats line
func ListTasks(ctx context.Context, env *Env, filter models.TaskFilter, by models.SortBy, order models.SortOrder) error {
	if err := env.Agenda.LoadTasks(ctx, filter); err != nil {
		return err
	}
	tasks := agenda.SortTasks(env.Agenda.Tasks(), by, order)
	now := env.Agenda.Now()
	loc := env.location()

	env.printf("%s\n", headerStyle.Render(fmt.Sprintf("%-36s  %-4s %-12s %-8s %-17s %-5s %s", "ID", "", "Status", "Priority", "Due", "List", "Title")))
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.In(loc).Format("2006-01-02 15:04")
			if t.IsOverdue(now) {
				due += "!"
			}
		}
		progress := ""
		if done, total := t.ChecklistCounts(); total > 0 {
			progress = fmt.Sprintf("%d/%d", done, total)
		}
		title := t.Title
		if len(t.Tags) > 0 {
			title += " +" + strings.Join(t.Tags, " +")
		}
		env.printf("%-36s  %-4s %-12s %-8s %-17s %-5s %s\n", t.ID, statusBox(t.Status), t.Status.Label(), t.Priority, due, progress, title)
	}

	s := env.Agenda.Stats()
	env.printf("\n%d tasks: %d pending, %d in progress, %d completed, %d overdue\n",
		s.Total, s.Pending, s.InProgress, s.Completed, s.Overdue)
	return nil
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

// CycleTask moves a task one step through pending, in progress and completed
func CycleTask(ctx context.Context, env *Env, id string) error {
	if err := env.Agenda.LoadTasks(ctx, models.FilterAll); err != nil {
		return err
	}
	t, err := env.Agenda.CycleTaskStatus(ctx, id)
	if err != nil {
		return err
	}
	env.printf("Task %q moved to %s\n", t.Title, t.Status.Label())
	return nil
}

func SetTaskStatus(ctx context.Context, env *Env, id, status string) error {
	s := models.TaskStatus(strings.ToLower(status))
	if !s.Valid() {
		return fmt.Errorf("unknown status %q, want pending, in_progress or completed", status)
	}
	t, err := env.Agenda.SetTaskStatus(ctx, id, s)
	if err != nil {
		return err
	}
	env.printf("Task %q is now %s\n", t.Title, t.Status.Label())
	return nil
}

// CheckItem toggles checklist item n, counted from 1
func CheckItem(ctx context.Context, env *Env, id string, n int) error {
	if n < 1 {
		return fmt.Errorf("checklist items are numbered from 1")
	}
	if err := env.Agenda.LoadTasks(ctx, models.FilterAll); err != nil {
		return err
	}
	t, err := env.Agenda.ToggleChecklistItem(ctx, id, n-1)
	if err != nil {
		return err
	}
	item := t.Checklist[n-1]
	mark := " "
	if item.Completed {
		mark = "x"
	}
	env.printf("[%s] %s\n", mark, item.Text)
	return nil
}

// DeleteTask asks first unless yes is set
func DeleteTask(ctx context.Context, env *Env, id string, yes bool) error {
	if !yes && !env.confirm(fmt.Sprintf("Delete task %s?", id)) {
		env.printf("Operation cancelled.\n")
		return nil
	}
	if err := env.Agenda.DeleteTask(ctx, id); err != nil {
		return err
	}
	env.printf("Task deleted\n")
	return nil
}
