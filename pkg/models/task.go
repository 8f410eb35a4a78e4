package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists priorities from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank is the index of p in Priorities, -1 when unknown
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i
		}
	}
	return -1
}

// TaskStatus is the lifecycle state of a task. None of the states is terminal.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskStatuses lists statuses in cycle order
var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskCompleted}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Next is the one-click cycle: pending -> in_progress -> completed -> pending.
// Unknown statuses restart the cycle at pending.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case TaskPending:
		return TaskInProgress
	case TaskInProgress:
		return TaskCompleted
	default:
		return TaskPending
	}
}

// Label is the human form of the status
func (s TaskStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// ChecklistItem is one line of a task checklist
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task represents a to-do item owned by the backend
type Task struct {
	ID            string          `json:"id,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Priority      Priority        `json:"priority"`
	Status        TaskStatus      `json:"status"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	EstimatedTime *int            `json:"estimatedTime,omitempty"`
	Checklist     []ChecklistItem `json:"checklist"`
	Tags          []string        `json:"tags"`
	RelatedEvent  *string         `json:"relatedEvent,omitempty"`
}

// ChecklistProgress is the completed share of the checklist, 0 when empty
func (t Task) ChecklistProgress() float64 {
	if len(t.Checklist) == 0 {
		return 0
	}
	done := 0
	for _, item := range t.Checklist {
		if item.Completed {
			done++
		}
	}
	return float64(done) / float64(len(t.Checklist))
}

// ChecklistCounts returns completed and total checklist items
func (t Task) ChecklistCounts() (int, int) {
	done := 0
	for _, item := range t.Checklist {
		if item.Completed {
			done++
		}
	}
	return done, len(t.Checklist)
}

// IsOverdue is a display attribute, never a status
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// ToggleChecklist returns a copy of t with item index flipped
func (t Task) ToggleChecklist(index int) (Task, error) {
	if index < 0 || index >= len(t.Checklist) {
		return t, fmt.Errorf("checklist index %d out of range (%d items)", index, len(t.Checklist))
	}
	out := t.Clone()
	out.Checklist[index].Completed = !out.Checklist[index].Completed
	return out, nil
}

// AddTag inserts a lowercase tag unless it is blank or already present
func (t *Task) AddTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return false
	}
	for _, existing := range t.Tags {
		if existing == tag {
			return false
		}
	}
	t.Tags = append(t.Tags, tag)
	return true
}

// NormalizeTags lowercases and deduplicates tags, keeping first occurrences
func NormalizeTags(tags []string) []string {
	t := Task{Tags: []string{}}
	for _, tag := range tags {
		t.AddTag(tag)
	}
	return t.Tags
}

// Clone returns a copy that shares no slices or pointers with t
func (t Task) Clone() Task {
	if t.Checklist != nil {
		t.Checklist = append([]ChecklistItem(nil), t.Checklist...)
	}
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.EstimatedTime != nil {
		e := *t.EstimatedTime
		t.EstimatedTime = &e
	}
	if t.RelatedEvent != nil {
		r := *t.RelatedEvent
		t.RelatedEvent = &r
	}
	return t
}

// TaskStats are aggregate counts computed by the server
type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}
