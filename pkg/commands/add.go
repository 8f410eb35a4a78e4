package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atelier/pkg/forms"
	"atelier/pkg/models"
)

// AddTask creates a task from one line of text. +tag words become tags and
// are removed from the title; the due date defaults to the end of today.
func AddTask(ctx context.Context, env *Env, text, dueDate, priority string) (models.Task, error) {
	title, tags := forms.ExtractTags(text)

	if dueDate == "" {
		dueDate = env.Agenda.Now().Format(forms.DateLayout)
	}

	form := forms.NewTaskForm()
	form.Title = title
	form.Description = strings.TrimSpace(text)
	form.DueDate = dueDate
	form.Tags = strings.Join(tags, ",")
	if priority != "" {
		form.Priority = strings.ToLower(priority)
	}

	task, err := form.Payload(env.location())
	if err != nil {
		return models.Task{}, err
	}
	created, err := env.Agenda.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, fmt.Errorf("adding task: %w", err)
	}

	env.printf("Task added: %s (%s)\n", created.Title, created.ID)
	return created, nil
}

// parseMonth reads YYYY-MM, empty meaning the current month
func parseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation("2006-01", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q must look like YYYY-MM", s)
	}
	return t, nil
}
