package models

import (
	"strings"
	"time"
)

// EventType classifies agenda events
type EventType string

const (
	EventExhibition EventType = "exhibition"
	EventMeeting    EventType = "meeting"
	EventDeadline   EventType = "deadline"
	EventWorkshop   EventType = "workshop"
	EventPersonal   EventType = "personal"
	EventOther      EventType = "other"
)

// EventTypes lists every event type in display order
var EventTypes = []EventType{EventExhibition, EventMeeting, EventDeadline, EventWorkshop, EventPersonal, EventOther}

func (t EventType) Valid() bool {
	for _, v := range EventTypes {
		if v == t {
			return true
		}
	}
	return false
}

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventConfirmed EventStatus = "confirmed"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// EventStatuses lists every event status, initial state first
var EventStatuses = []EventStatus{EventScheduled, EventConfirmed, EventCancelled, EventCompleted}

func (s EventStatus) Valid() bool {
	for _, v := range EventStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the quick actions are exhausted for this status.
// A full edit may still change it.
func (s EventStatus) IsTerminal() bool {
	return s == EventCancelled || s == EventCompleted
}

// QuickActions returns the transitions offered by the complete/cancel buttons.
// confirmed is only reachable through the edit form.
func (s EventStatus) QuickActions() []EventStatus {
	if s.IsTerminal() {
		return nil
	}
	return []EventStatus{EventCompleted, EventCancelled}
}

// Allows reports whether target is one of the quick actions from s
func (s EventStatus) Allows(target EventStatus) bool {
	for _, a := range s.QuickActions() {
		if a == target {
			return true
		}
	}
	return false
}

// Reminder is an optional notification ahead of an event
type Reminder struct {
	Enabled       bool `json:"enabled"`
	MinutesBefore int  `json:"minutesBefore"`
}

// Event represents a single calendar entry owned by the backend
type Event struct {
	ID           string      `json:"id,omitempty"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Type         EventType   `json:"type"`
	StartDate    time.Time   `json:"startDate"`
	EndDate      time.Time   `json:"endDate"`
	IsAllDay     bool        `json:"isAllDay"`
	Location     string      `json:"location,omitempty"`
	Participants []string    `json:"participants,omitempty"`
	Reminder     *Reminder   `json:"reminder,omitempty"`
	Status       EventStatus `json:"status"`
	Notes        string      `json:"notes,omitempty"`
}

// AddParticipant appends a name unless it is blank or already present
func (e *Event) AddParticipant(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, p := range e.Participants {
		if p == name {
			return false
		}
	}
	e.Participants = append(e.Participants, name)
	return true
}

// RemoveParticipant drops a name, keeping the order of the others
func (e *Event) RemoveParticipant(name string) {
	out := e.Participants[:0]
	for _, p := range e.Participants {
		if p != name {
			out = append(out, p)
		}
	}
	e.Participants = out
}

// NormalizeAllDay stretches an all-day event over whole local days.
// Timed events are left untouched.
func (e *Event) NormalizeAllDay(loc *time.Location) {
	if !e.IsAllDay {
		return
	}
	if loc == nil {
		loc = time.Local
	}
	start := e.StartDate.In(loc)
	end := e.EndDate.In(loc)
	if e.EndDate.IsZero() || end.Before(start) {
		end = start
	}
	e.StartDate = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	e.EndDate = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, loc)
}

// Clone returns a copy that shares no slices with e
func (e Event) Clone() Event {
	if e.Participants != nil {
		e.Participants = append([]string(nil), e.Participants...)
	}
	if e.Reminder != nil {
		r := *e.Reminder
		e.Reminder = &r
	}
	return e
}
