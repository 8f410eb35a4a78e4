package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atelier/pkg/calendar"
	"atelier/pkg/models"
)

// PrintMonth prints the month grid for month (YYYY-MM, empty for the current
// one) followed by every event of the month grouped by day
func PrintMonth(ctx context.Context, env *Env, month string) error {
	if err := loadMonth(ctx, env, month); err != nil {
		return err
	}
	grid := env.Agenda.Grid()

	env.printf("%s\n\n", headerStyle.Render(fmt.Sprintf("%s %d", grid.Month, grid.Year)))
	for _, day := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		env.printf("%-6s", day)
	}
	env.printf("\n")
	for _, week := range grid.Weeks() {
		var row strings.Builder
		for _, day := range week {
			row.WriteString(dayCell(day))
		}
		env.printf("%s\n", strings.TrimRight(row.String(), " "))
	}

	loc := env.location()
	for _, day := range grid.Days {
		if len(day.Events) == 0 {
			continue
		}
		env.printf("\n%s\n", day.Date.Format("Mon Jan 2"))
		for _, e := range day.Events {
			env.printf("  %-11s %-9s %s (%s)\n", timeRange(e, loc), e.Status, e.Title, e.ID)
		}
	}
	return nil
}

// dayCell is six columns wide: the day number, one dot per event up to the
// cap, and * for today
func dayCell(day *calendar.Day) string {
	if day == nil {
		return strings.Repeat(" ", 6)
	}
	cell := fmt.Sprintf("%2d", day.Number)
	if day.Today {
		cell += "*"
	}
	cell += strings.Repeat(".", day.Marks())
	return fmt.Sprintf("%-6s", cell)
}

func timeRange(e models.Event, loc *time.Location) string {
	if e.IsAllDay {
		return "all day"
	}
	start, end := e.StartDate.In(loc), e.EndDate.In(loc)
	if e.EndDate.IsZero() || end.Equal(start) {
		return start.Format("15:04")
	}
	return start.Format("15:04") + "-" + end.Format("15:04")
}

// loadMonth selects the first day of month (YYYY-MM, empty for the current
// one) and loads its events
func loadMonth(ctx context.Context, env *Env, month string) error {
	first, err := parseMonth(month, env.Agenda.Now())
	if err != nil {
		return err
	}
	env.Agenda.SelectDate(first)
	return env.Agenda.LoadMonth(ctx, first)
}

// CompleteEvent and CancelEvent are the quick actions; the event must start
// in month
func CompleteEvent(ctx context.Context, env *Env, id, month string) error {
	return eventAction(ctx, env, id, month, models.EventCompleted)
}

func CancelEvent(ctx context.Context, env *Env, id, month string) error {
	return eventAction(ctx, env, id, month, models.EventCancelled)
}

func eventAction(ctx context.Context, env *Env, id, month string, target models.EventStatus) error {
	if err := loadMonth(ctx, env, month); err != nil {
		return err
	}
	var (
		e   models.Event
		err error
	)
	if target == models.EventCompleted {
		e, err = env.Agenda.CompleteEvent(ctx, id)
	} else {
		e, err = env.Agenda.CancelEvent(ctx, id)
	}
	if err != nil {
		return err
	}
	env.printf("Event %q is now %s\n", e.Title, e.Status)
	return nil
}

func DeleteEvent(ctx context.Context, env *Env, id string, yes bool) error {
	if !yes && !env.confirm(fmt.Sprintf("Delete event %s?", id)) {
		env.printf("Operation cancelled.\n")
		return nil
	}
	if err := env.Agenda.DeleteEvent(ctx, id); err != nil {
		return err
	}
	env.printf("Event deleted\n")
	return nil
}
