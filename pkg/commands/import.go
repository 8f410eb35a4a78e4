package commands

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"atelier/pkg/forms"
	"atelier/pkg/models"
)

var dateHeader = regexp.MustCompile(`^(?:(\d{2})\.(\d{2})\.(\d{4})|(\d{4})-(\d{2})-(\d{2})):?$`)

// ImportTasks reads a dated list: DD.MM.YYYY: or YYYY-MM-DD: headers set the
// due date for the "- [x] text +tag" lines below them. "someday:" clears it.
// A line that fails does not stop the import; all failures are returned together.
func ImportTasks(ctx context.Context, env *Env, filename string) (int, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	loc := env.location()
	var (
		currentDate *time.Time
		tasksAdded  int
		errs        error
	)
	for n, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.EqualFold(line, "someday:") {
			currentDate = nil
			continue
		}
		if match := dateHeader.FindStringSubmatch(line); match != nil {
			var day, month, year int
			if match[1] != "" {
				day, _ = strconv.Atoi(match[1])
				month, _ = strconv.Atoi(match[2])
				year, _ = strconv.Atoi(match[3])
			} else {
				year, _ = strconv.Atoi(match[4])
				month, _ = strconv.Atoi(match[5])
				day, _ = strconv.Atoi(match[6])
			}
			due := time.Date(year, time.Month(month), day, 23, 59, 0, 0, loc)
			currentDate = &due
			continue
		}

		if !strings.HasPrefix(line, "- ") {
			continue
		}
		taskText := strings.TrimSpace(strings.TrimPrefix(line, "- "))
		status := models.TaskPending
		switch {
		case strings.HasPrefix(strings.ToLower(taskText), "[x]"):
			status = models.TaskCompleted
			taskText = strings.TrimSpace(taskText[3:])
		case strings.HasPrefix(taskText, "[ ]"):
			taskText = strings.TrimSpace(taskText[3:])
		}
		if taskText == "" {
			continue
		}

		title, tags := forms.ExtractTags(taskText)
		task := models.Task{
			Title:       title,
			Description: taskText,
			Priority:    models.PriorityMedium,
			Status:      status,
			Checklist:   []models.ChecklistItem{},
			Tags:        tags,
		}
		if currentDate != nil {
			due := *currentDate
			task.DueDate = &due
		}
		if _, err := env.Agenda.CreateTask(ctx, task); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d %q: %w", n+1, title, err))
			continue
		}
		tasksAdded++
	}

	env.printf("Successfully imported %d task(s) from %s\n", tasksAdded, filename)
	return tasksAdded, errs
}
