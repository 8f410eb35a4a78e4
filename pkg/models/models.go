package models

import "fmt"

// ViewMode represents the current console view
type ViewMode int

const (
	CalendarViewMode ViewMode = iota // Default - month grid with the selected day's events
	TasksViewMode                    // Task list for the current filter
)

// TaskFilter selects which tasks the list shows
type TaskFilter string

const (
	FilterAll        TaskFilter = "all"
	FilterPending    TaskFilter = "pending"
	FilterInProgress TaskFilter = "in_progress"
	FilterCompleted  TaskFilter = "completed"
)

// TaskFilters lists filters in the order the filter key cycles through them
var TaskFilters = []TaskFilter{FilterAll, FilterPending, FilterInProgress, FilterCompleted}

// ParseTaskFilter accepts the wire names plus "" for all
func ParseTaskFilter(s string) (TaskFilter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range TaskFilters {
		if string(f) == s {
			return f, nil
		}
	}
	return FilterAll, fmt.Errorf("unknown task filter %q", s)
}

// Next cycles through TaskFilters
func (f TaskFilter) Next() TaskFilter {
	for i, v := range TaskFilters {
		if v == f {
			return TaskFilters[(i+1)%len(TaskFilters)]
		}
	}
	return FilterAll
}

// Status is the task status the filter narrows to, empty for all
func (f TaskFilter) Status() TaskStatus {
	if f == FilterAll {
		return ""
	}
	return TaskStatus(f)
}

// Matches reports whether a task passes the filter
func (f TaskFilter) Matches(t Task) bool {
	return f == FilterAll || f == "" || t.Status == TaskStatus(f)
}

// SortBy represents the task list ordering
type SortBy int

const (
	SortByDueDate SortBy = iota
	SortByPriority
	SortByStatus
	SortByTitle
)

var sortByNames = []string{"due date", "priority", "status", "title"}

func (s SortBy) String() string {
	if int(s) < len(sortByNames) {
		return sortByNames[s]
	}
	return "unknown"
}

// ParseSortBy maps a CLI flag value to a SortBy
func ParseSortBy(s string) (SortBy, error) {
	switch s {
	case "", "due", "due_date":
		return SortByDueDate, nil
	case "priority":
		return SortByPriority, nil
	case "status":
		return SortByStatus, nil
	case "title":
		return SortByTitle, nil
	}
	return SortByDueDate, fmt.Errorf("unknown sort %q", s)
}

// SortOrder represents the sort direction
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)
