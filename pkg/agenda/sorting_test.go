package agenda_test

import (
	"testing"
	"time"

	"atelier/pkg/agenda"
	"atelier/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func due(day int) *time.Time {
	t := time.Date(2025, time.March, day, 23, 59, 0, 0, time.UTC)
	return &t
}

func sortFixture() []models.Task {
	return []models.Task{
		{ID: "a", Title: "Bravo", DueDate: due(12), Priority: models.PriorityLow, Status: models.TaskPending, Tags: []string{"shop"}},
		{ID: "b", Title: "alpha", DueDate: due(11), Priority: models.PriorityUrgent, Status: models.TaskCompleted, Tags: []string{"admin"}},
		{ID: "c", Title: "Charlie", Priority: models.PriorityMedium, Status: models.TaskInProgress},
		{ID: "d", Title: "delta", DueDate: due(15), Priority: models.PriorityHigh, Status: models.TaskPending, Tags: []string{"shop", "exhibition"}},
	}
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestSortTasks(t *testing.T) {
	tests := []struct {
		name  string
		by    models.SortBy
		order models.SortOrder
		want  []string
	}{
		{"due date ascending puts undated last", models.SortByDueDate, models.SortAsc, []string{"b", "a", "d", "c"}},
		{"due date descending puts undated first", models.SortByDueDate, models.SortDesc, []string{"c", "d", "a", "b"}},
		{"priority ascending is urgent first", models.SortByPriority, models.SortAsc, []string{"b", "d", "c", "a"}},
		{"priority descending is low first", models.SortByPriority, models.SortDesc, []string{"a", "c", "d", "b"}},
		{"status follows the cycle and keeps order on ties", models.SortByStatus, models.SortAsc, []string{"a", "d", "c", "b"}},
		{"title ignores case", models.SortByTitle, models.SortAsc, []string{"b", "a", "c", "d"}},
		{"title descending", models.SortByTitle, models.SortDesc, []string{"d", "c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := sortFixture()
			got := agenda.SortTasks(tasks, tt.by, tt.order)
			assert.Equal(t, tt.want, taskIDs(got))
			assert.Equal(t, []string{"a", "b", "c", "d"}, taskIDs(tasks))
		})
	}
}

func TestGroupByTag(t *testing.T) {
	groups := agenda.GroupByTag(sortFixture(), models.SortByDueDate, models.SortAsc)
	require.Len(t, groups, 3)

	assert.Equal(t, "+admin", groups[0].GroupName)
	assert.Equal(t, []string{"b"}, taskIDs(groups[0].Tasks))
	assert.Equal(t, "+shop", groups[1].GroupName)
	assert.Equal(t, []string{"a", "d"}, taskIDs(groups[1].Tasks))
	assert.Equal(t, "No Tag", groups[2].GroupName)
	assert.Equal(t, []string{"c"}, taskIDs(groups[2].Tasks))

	desc := agenda.GroupByTag(sortFixture(), models.SortByDueDate, models.SortDesc)
	assert.Equal(t, []string{"d", "a"}, taskIDs(desc[1].Tasks))

	assert.Empty(t, agenda.GroupByTag(nil, models.SortByDueDate, models.SortAsc))
}
