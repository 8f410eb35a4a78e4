package forms

import (
	"strconv"
	"strings"
	"time"

	"atelier/pkg/models"
)

// TaskForm is the task editor
type TaskForm struct {
	ID           string `validate:"-"`
	Title        string `label:"Title" validate:"required,max=200"`
	Description  string `label:"Description" validate:"max=2000"`
	Priority     string `label:"Priority" validate:"omitempty,oneof=low medium high urgent"`
	Status       string `label:"Status" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate      string `label:"Due date" validate:"omitempty,datetime=2006-01-02"`
	DueTime      string `label:"Due time" validate:"omitempty,datetime=15:04"`
	Estimated    string `label:"Estimate" validate:"omitempty,number"`
	Checklist    string `label:"Checklist"`
	Tags         string `label:"Tags"`
	RelatedEvent string `label:"Related event"`
}

func NewTaskForm() *TaskForm {
	return &TaskForm{
		Priority: string(models.PriorityMedium),
		Status:   string(models.TaskPending),
	}
}

// TaskFormFrom pre-fills the editor with t
func TaskFormFrom(t models.Task, loc *time.Location) *TaskForm {
	f := &TaskForm{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Checklist:   FormatChecklist(t.Checklist),
		Tags:        strings.Join(t.Tags, ", "),
	}
	if t.DueDate != nil {
		due := t.DueDate.In(loc)
		f.DueDate = due.Format(DateLayout)
		f.DueTime = due.Format(TimeLayout)
	}
	if t.EstimatedTime != nil {
		f.Estimated = strconv.Itoa(*t.EstimatedTime)
	}
	if t.RelatedEvent != nil {
		f.RelatedEvent = *t.RelatedEvent
	}
	return f
}

func (f *TaskForm) Editing() bool {
	return f.ID != ""
}

func (f *TaskForm) Fields() []Field {
	return []Field{
		{Key: "title", Label: "Title", Value: &f.Title},
		{Key: "priority", Label: "Priority", Placeholder: "medium", Value: &f.Priority},
		{Key: "status", Label: "Status", Placeholder: "pending", Value: &f.Status},
		{Key: "due_date", Label: "Due date", Placeholder: DateLayout, Value: &f.DueDate},
		{Key: "due_time", Label: "Due time", Placeholder: "23:59", Value: &f.DueTime},
		{Key: "estimated", Label: "Estimate", Placeholder: "minutes", Value: &f.Estimated},
		{Key: "checklist", Label: "Checklist", Placeholder: "[x] done; todo", Value: &f.Checklist},
		{Key: "tags", Label: "Tags", Placeholder: "comma separated", Value: &f.Tags},
		{Key: "related_event", Label: "Related event", Placeholder: "event id", Value: &f.RelatedEvent},
		{Key: "description", Label: "Description", Value: &f.Description},
	}
}

// Payload validates the inputs and assembles the task. A due date without a
// time is due at the end of that day.
func (f *TaskForm) Payload(loc *time.Location) (models.Task, error) {
	if loc == nil {
		loc = time.Local
	}
	f.Title = strings.TrimSpace(f.Title)
	verr := check(f)
	if len(verr.Fields) > 0 {
		return models.Task{}, verr
	}

	t := models.Task{
		ID:          f.ID,
		Title:       f.Title,
		Description: strings.TrimSpace(f.Description),
		Priority:    models.Priority(f.Priority),
		Status:      models.TaskStatus(f.Status),
		Checklist:   ParseChecklist(f.Checklist),
		Tags:        models.NormalizeTags(SplitList(f.Tags)),
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}

	if f.DueDate != "" {
		clock := f.DueTime
		if clock == "" {
			clock = "23:59"
		}
		due, err := combine(f.DueDate, clock, loc)
		if err != nil {
			verr.add("Due date", "Due date is invalid")
			return models.Task{}, verr
		}
		t.DueDate = &due
	}
	estimated, err := parseMinutes(f.Estimated)
	if err != nil {
		verr.add("Estimate", "Estimate must be a whole number of minutes")
		return models.Task{}, verr
	}
	t.EstimatedTime = estimated
	if rel := strings.TrimSpace(f.RelatedEvent); rel != "" {
		t.RelatedEvent = &rel
	}
	return t, nil
}

// ParseChecklist reads "[x] done; todo" into items. A leading [x] marks an
// item completed, a leading [ ] is optional.
func ParseChecklist(s string) []models.ChecklistItem {
	items := []models.ChecklistItem{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		item := models.ChecklistItem{}
		switch {
		case strings.HasPrefix(strings.ToLower(part), "[x]"):
			item.Completed = true
			part = part[3:]
		case strings.HasPrefix(part, "[ ]"):
			part = part[3:]
		}
		item.Text = strings.TrimSpace(part)
		if item.Text != "" {
			items = append(items, item)
		}
	}
	return items
}

// FormatChecklist is the inverse of ParseChecklist
func FormatChecklist(items []models.ChecklistItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Completed {
			parts = append(parts, "[x] "+item.Text)
		} else {
			parts = append(parts, item.Text)
		}
	}
	return strings.Join(parts, "; ")
}
