package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"atelier/pkg/agenda"
	"atelier/pkg/models"
)

// ExportTasks writes the tasks matching filter to filename as json or as the
// dated txt list that ImportTasks reads back
func ExportTasks(ctx context.Context, env *Env, filename, exportType string, filter models.TaskFilter) error {
	if exportType != "json" && exportType != "txt" {
		return fmt.Errorf("unknown export type: %s", exportType)
	}
	if err := env.Agenda.LoadTasks(ctx, filter); err != nil {
		return err
	}
	tasks := agenda.SortTasks(env.Agenda.Tasks(), models.SortByDueDate, models.SortAsc)

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	var content []byte
	switch exportType {
	case "json":
		var err error
		content, err = json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling tasks to JSON: %w", err)
		}
	case "txt":
		content = []byte(formatTxt(tasks, env))
	}

	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	env.printf("Successfully exported %d task(s) to %s\n", len(tasks), filename)
	return nil
}

// formatTxt groups tasks under DD.MM.YYYY: headers. Tasks without a due date
// come last under "someday:". Tags are written back as +tag words.
func formatTxt(tasks []models.Task, env *Env) string {
	loc := env.location()
	var lines []string
	lastDate := ""
	for _, task := range tasks {
		dateStr := "someday"
		if task.DueDate != nil {
			dateStr = task.DueDate.In(loc).Format("02.01.2006")
		}
		if dateStr != lastDate {
			lines = append(lines, fmt.Sprintf("\n%s:", dateStr))
			lastDate = dateStr
		}

		status := " "
		if task.Status == models.TaskCompleted {
			status = "x"
		}
		text := task.Title
		for _, tag := range task.Tags {
			text += " +" + tag
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s", status, text))
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
