package forms

import (
	"strconv"
	"strings"
	"time"

	"atelier/pkg/models"
)

// EventForm is the event editor, every input kept as typed
type EventForm struct {
	ID           string `validate:"-"`
	Title        string `label:"Title" validate:"required,max=200"`
	Description  string `label:"Description" validate:"max=2000"`
	Type         string `label:"Type" validate:"omitempty,oneof=exhibition meeting deadline workshop personal other"`
	StartDate    string `label:"Start date" validate:"required,datetime=2006-01-02"`
	StartTime    string `label:"Start time" validate:"omitempty,datetime=15:04"`
	EndDate      string `label:"End date" validate:"omitempty,datetime=2006-01-02"`
	EndTime      string `label:"End time" validate:"omitempty,datetime=15:04"`
	AllDay       string `label:"All day" validate:"omitempty,oneof=yes no y n true false"`
	Location     string `label:"Location" validate:"max=200"`
	Participants string `label:"Participants"`
	Reminder     string `label:"Reminder" validate:"omitempty,number"`
	Status       string `label:"Status" validate:"omitempty,oneof=scheduled confirmed cancelled completed"`
	Notes        string `label:"Notes" validate:"max=2000"`
}

// NewEventForm starts an empty event on day
func NewEventForm(day time.Time) *EventForm {
	return &EventForm{
		Type:      string(models.EventMeeting),
		StartDate: day.Format(DateLayout),
		StartTime: "09:00",
		EndTime:   "10:00",
		AllDay:    "no",
		Status:    string(models.EventScheduled),
	}
}

// EventFormFrom pre-fills the editor with e, times shown in loc
func EventFormFrom(e models.Event, loc *time.Location) *EventForm {
	start, end := e.StartDate.In(loc), e.EndDate.In(loc)
	f := &EventForm{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Type:         string(e.Type),
		StartDate:    start.Format(DateLayout),
		StartTime:    start.Format(TimeLayout),
		EndDate:      end.Format(DateLayout),
		EndTime:      end.Format(TimeLayout),
		AllDay:       formatBool(e.IsAllDay),
		Location:     e.Location,
		Participants: strings.Join(e.Participants, ", "),
		Status:       string(e.Status),
		Notes:        e.Notes,
	}
	if e.IsAllDay {
		f.StartTime, f.EndTime = "", ""
	}
	if e.Reminder != nil && e.Reminder.Enabled {
		f.Reminder = strconv.Itoa(e.Reminder.MinutesBefore)
	}
	return f
}

// Editing reports whether the form updates an existing event
func (f *EventForm) Editing() bool {
	return f.ID != ""
}

func (f *EventForm) Fields() []Field {
	return []Field{
		{Key: "title", Label: "Title", Value: &f.Title},
		{Key: "type", Label: "Type", Placeholder: "meeting", Value: &f.Type},
		{Key: "start_date", Label: "Start date", Placeholder: DateLayout, Value: &f.StartDate},
		{Key: "start_time", Label: "Start time", Placeholder: "HH:MM", Value: &f.StartTime},
		{Key: "end_date", Label: "End date", Placeholder: "same as start", Value: &f.EndDate},
		{Key: "end_time", Label: "End time", Placeholder: "same as start", Value: &f.EndTime},
		{Key: "all_day", Label: "All day", Placeholder: "no", Value: &f.AllDay},
		{Key: "location", Label: "Location", Value: &f.Location},
		{Key: "participants", Label: "Participants", Placeholder: "comma separated", Value: &f.Participants},
		{Key: "reminder", Label: "Reminder", Placeholder: "minutes before", Value: &f.Reminder},
		{Key: "status", Label: "Status", Placeholder: "scheduled", Value: &f.Status},
		{Key: "description", Label: "Description", Value: &f.Description},
		{Key: "notes", Label: "Notes", Value: &f.Notes},
	}
}

// Payload validates the inputs and assembles the event. A missing end date
// or time falls back to the start; all-day events cover whole days in loc.
func (f *EventForm) Payload(loc *time.Location) (models.Event, error) {
	if loc == nil {
		loc = time.Local
	}
	f.Title = strings.TrimSpace(f.Title)
	verr := check(f)
	if len(verr.Fields) > 0 {
		return models.Event{}, verr
	}

	allDay := parseBool(f.AllDay)
	startTime, endTime := f.StartTime, f.EndTime
	if allDay {
		startTime, endTime = "", ""
	}
	if endTime == "" {
		endTime = startTime
	}
	endDate := f.EndDate
	if endDate == "" {
		endDate = f.StartDate
	}

	start, err := combine(f.StartDate, startTime, loc)
	if err != nil {
		verr.add("Start date", "Start date is invalid")
		return models.Event{}, verr
	}
	end, err := combine(endDate, endTime, loc)
	if err != nil {
		verr.add("End date", "End date is invalid")
		return models.Event{}, verr
	}
	if end.Before(start) {
		verr.add("End date", "End must not be before start")
		return models.Event{}, verr
	}

	e := models.Event{
		ID:          f.ID,
		Title:       f.Title,
		Description: strings.TrimSpace(f.Description),
		Type:        models.EventType(f.Type),
		StartDate:   start,
		EndDate:     end,
		IsAllDay:    allDay,
		Location:    strings.TrimSpace(f.Location),
		Status:      models.EventStatus(f.Status),
		Notes:       strings.TrimSpace(f.Notes),
	}
	if e.Type == "" {
		e.Type = models.EventOther
	}
	if e.Status == "" {
		e.Status = models.EventScheduled
	}
	for _, p := range SplitList(f.Participants) {
		e.AddParticipant(p)
	}
	minutes, err := parseMinutes(f.Reminder)
	if err != nil {
		verr.add("Reminder", "Reminder must be a whole number of minutes")
		return models.Event{}, verr
	}
	if minutes != nil {
		e.Reminder = &models.Reminder{Enabled: true, MinutesBefore: *minutes}
	}
	e.NormalizeAllDay(loc)
	return e, nil
}
