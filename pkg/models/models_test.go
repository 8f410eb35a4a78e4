package models_test

import (
	"testing"
	"time"

	"atelier/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatus_CycleIsTotalAndCyclic(t *testing.T) {
	for _, s := range models.TaskStatuses {
		t.Run(string(s), func(t *testing.T) {
			got := s.Next().Next().Next()
			assert.Equal(t, s, got)
			assert.True(t, s.Next().Valid())
		})
	}
	assert.Equal(t, models.TaskInProgress, models.TaskPending.Next())
	assert.Equal(t, models.TaskCompleted, models.TaskInProgress.Next())
	assert.Equal(t, models.TaskPending, models.TaskCompleted.Next())
}

func TestTask_ChecklistProgress(t *testing.T) {
	task := models.Task{Checklist: []models.ChecklistItem{
		{Text: "A", Completed: false},
		{Text: "B", Completed: true},
	}}
	assert.Equal(t, 0.5, task.ChecklistProgress())

	toggled, err := task.ToggleChecklist(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, toggled.ChecklistProgress())
	// original untouched
	assert.False(t, task.Checklist[0].Completed)

	assert.Equal(t, 0.0, models.Task{}.ChecklistProgress())
}

func TestTask_ToggleChecklistRoundTrip(t *testing.T) {
	task := models.Task{Checklist: []models.ChecklistItem{
		{Text: "frame", Completed: false},
		{Text: "ship", Completed: true},
		{Text: "invoice", Completed: false},
	}}
	for i := range task.Checklist {
		once, err := task.ToggleChecklist(i)
		require.NoError(t, err)
		twice, err := once.ToggleChecklist(i)
		require.NoError(t, err)
		assert.Equal(t, task.Checklist, twice.Checklist)
	}

	_, err := task.ToggleChecklist(3)
	assert.Error(t, err)
	_, err = task.ToggleChecklist(-1)
	assert.Error(t, err)
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name string
		task models.Task
		want bool
	}{
		{"pending past due", models.Task{Status: models.TaskPending, DueDate: &past}, true},
		{"in progress past due", models.Task{Status: models.TaskInProgress, DueDate: &past}, true},
		{"completed past due", models.Task{Status: models.TaskCompleted, DueDate: &past}, false},
		{"pending future", models.Task{Status: models.TaskPending, DueDate: &future}, false},
		{"no due date", models.Task{Status: models.TaskPending}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsOverdue(now))
		})
	}
}

func TestTask_AddTagDeduplicates(t *testing.T) {
	task := models.Task{}
	assert.True(t, task.AddTag(" Print "))
	assert.False(t, task.AddTag("print"))
	assert.False(t, task.AddTag("  "))
	assert.True(t, task.AddTag("Framing"))
	assert.Equal(t, []string{"print", "framing"}, task.Tags)

	assert.Equal(t, []string{"a", "b"}, models.NormalizeTags([]string{"A", "b", "a", " B "}))
}

func TestTask_CloneIsDeep(t *testing.T) {
	due := time.Now()
	est := 30
	task := models.Task{DueDate: &due, EstimatedTime: &est, Tags: []string{"x"}, Checklist: []models.ChecklistItem{{Text: "a"}}}
	c := task.Clone()
	c.Tags[0] = "y"
	c.Checklist[0].Completed = true
	*c.EstimatedTime = 60
	assert.Equal(t, "x", task.Tags[0])
	assert.False(t, task.Checklist[0].Completed)
	assert.Equal(t, 30, *task.EstimatedTime)
}

func TestEventStatus_QuickActions(t *testing.T) {
	assert.Equal(t, []models.EventStatus{models.EventCompleted, models.EventCancelled}, models.EventScheduled.QuickActions())
	assert.Equal(t, []models.EventStatus{models.EventCompleted, models.EventCancelled}, models.EventConfirmed.QuickActions())
	assert.Empty(t, models.EventCompleted.QuickActions())
	assert.Empty(t, models.EventCancelled.QuickActions())

	assert.False(t, models.EventScheduled.Allows(models.EventConfirmed))
	assert.True(t, models.EventScheduled.Allows(models.EventCancelled))
	assert.False(t, models.EventCancelled.Allows(models.EventCompleted))
}

func TestEvent_Participants(t *testing.T) {
	e := models.Event{}
	assert.True(t, e.AddParticipant("Ana"))
	assert.False(t, e.AddParticipant(" Ana "))
	assert.True(t, e.AddParticipant("Luis"))
	assert.False(t, e.AddParticipant(""))
	assert.Equal(t, []string{"Ana", "Luis"}, e.Participants)

	e.RemoveParticipant("Ana")
	assert.Equal(t, []string{"Luis"}, e.Participants)
}

func TestEvent_NormalizeAllDay(t *testing.T) {
	loc := time.UTC
	e := models.Event{
		IsAllDay:  true,
		StartDate: time.Date(2025, 3, 10, 9, 30, 0, 0, loc),
		EndDate:   time.Date(2025, 3, 11, 14, 0, 0, 0, loc),
	}
	e.NormalizeAllDay(loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), e.StartDate)
	assert.Equal(t, time.Date(2025, 3, 11, 23, 59, 59, 0, loc), e.EndDate)

	timed := models.Event{StartDate: time.Date(2025, 3, 10, 9, 30, 0, 0, loc)}
	timed.NormalizeAllDay(loc)
	assert.Equal(t, 9, timed.StartDate.Hour())
}

func TestTaskFilter(t *testing.T) {
	f := models.FilterAll
	seen := map[models.TaskFilter]bool{}
	for i := 0; i < len(models.TaskFilters); i++ {
		seen[f] = true
		f = f.Next()
	}
	assert.Equal(t, models.FilterAll, f)
	assert.Len(t, seen, 4)

	parsed, err := models.ParseTaskFilter("in_progress")
	require.NoError(t, err)
	assert.Equal(t, models.TaskInProgress, parsed.Status())
	_, err = models.ParseTaskFilter("done")
	assert.Error(t, err)

	assert.True(t, models.FilterPending.Matches(models.Task{Status: models.TaskPending}))
	assert.False(t, models.FilterPending.Matches(models.Task{Status: models.TaskCompleted}))
}
