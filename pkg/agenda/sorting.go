package agenda

import (
	"sort"
	"strings"
	"time"

	"atelier/pkg/models"
)

// GroupedTasks represents tasks grouped by a common attribute
type GroupedTasks struct {
	GroupName string
	Tasks     []models.Task
}

// statusRank orders the list the way the cycle runs
var statusRank = map[models.TaskStatus]int{
	models.TaskPending:    0,
	models.TaskInProgress: 1,
	models.TaskCompleted:  2,
}

// SortTasks returns a sorted copy. Tasks without a due date sort last
// ascending; ties keep server order.
func SortTasks(tasks []models.Task, by models.SortBy, order models.SortOrder) []models.Task {
	sortedTasks := make([]models.Task, len(tasks))
	copy(sortedTasks, tasks)

	sort.SliceStable(sortedTasks, func(i, j int) bool {
		a, b := sortedTasks[i], sortedTasks[j]
		if order == models.SortDesc {
			a, b = b, a
		}

		switch by {
		case models.SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case models.SortByPriority:
			// urgent first when ascending
			return a.Priority.Rank() > b.Priority.Rank()
		case models.SortByStatus:
			return statusRank[a.Status] < statusRank[b.Status]
		default:
			return dueBefore(a.DueDate, b.DueDate)
		}
	})

	return sortedTasks
}

func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

// GroupByTag groups tasks under their first tag, sorted by group name.
// Untagged tasks go last.
func GroupByTag(tasks []models.Task, by models.SortBy, order models.SortOrder) []GroupedTasks {
	const untagged = "No Tag"
	groups := make(map[string][]models.Task)
	for _, task := range tasks {
		key := untagged
		if len(task.Tags) > 0 {
			key = "+" + task.Tags[0]
		}
		groups[key] = append(groups[key], task)
	}

	var groupNames []string
	for name := range groups {
		if name != untagged {
			groupNames = append(groupNames, name)
		}
	}
	sort.Strings(groupNames)
	if _, ok := groups[untagged]; ok {
		groupNames = append(groupNames, untagged)
	}

	var result []GroupedTasks
	for _, name := range groupNames {
		result = append(result, GroupedTasks{
			GroupName: name,
			Tasks:     SortTasks(groups[name], by, order),
		})
	}
	return result
}
