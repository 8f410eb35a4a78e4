package agenda

import (
	"context"
	"time"

	"atelier/pkg/calendar"
	"atelier/pkg/models"
)

// Events returns a copy of the cached month
func (m *Manager) Events() []models.Event {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	out := make([]models.Event, len(m.events))
	for i, e := range m.events {
		out[i] = e.Clone()
	}
	return out
}

// EventsOn lists the cached events starting on day, ordered by start time
func (m *Manager) EventsOn(day time.Time) []models.Event {
	return calendar.EventsOn(m.Events(), day, m.loc)
}

// SelectedEvents lists the events of the selected day
func (m *Manager) SelectedEvents() []models.Event {
	return m.EventsOn(m.Selected())
}

func (m *Manager) Event(id string) (models.Event, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return models.Event{}, false
}

// Tasks returns a copy of the cached task list in server order
func (m *Manager) Tasks() []models.Task {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	out := make([]models.Task, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (m *Manager) Task(id string) (models.Task, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Task{}, false
}

func (m *Manager) Stats() models.TaskStats {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.stats
}

func (m *Manager) Selected() time.Time {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.selected
}

func (m *Manager) Filter() models.TaskFilter {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.filter
}

func (m *Manager) Loading() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.loading
}

// LoadedMonth reports which month the cached events belong to
func (m *Manager) LoadedMonth() (int, time.Month, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.loadedYear, m.loadedMonth, m.loadedYear != 0
}

// Location is the zone calendar days are computed in
func (m *Manager) Location() *time.Location {
	return m.loc
}

// Now is the manager's clock, in its location
func (m *Manager) Now() time.Time {
	return m.now().In(m.loc)
}

// SelectDate moves the selection and reports whether the month changed,
// in which case the caller should LoadMonth
func (m *Manager) SelectDate(date time.Time) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	date = dayStart(date, m.loc)
	changed := date.Year() != m.selected.Year() || date.Month() != m.selected.Month()
	m.selected = date
	return changed
}

// MoveDays shifts the selection by n days
func (m *Manager) MoveDays(n int) bool {
	return m.SelectDate(m.Selected().AddDate(0, 0, n))
}

// ShiftMonth moves the selection delta months, keeping the day of month
// where the target month has it, and returns the new selection
func (m *Manager) ShiftMonth(delta int) time.Time {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	year, month := calendar.Shift(m.selected.Year(), m.selected.Month(), delta)
	m.selected = calendar.ClampDay(m.selected, year, month, m.loc)
	return m.selected
}

func (m *Manager) NextMonth(ctx context.Context) error {
	return m.LoadMonth(ctx, m.ShiftMonth(1))
}

func (m *Manager) PrevMonth(ctx context.Context) error {
	return m.LoadMonth(ctx, m.ShiftMonth(-1))
}

// Today selects the current day and reports whether the month changed
func (m *Manager) Today() bool {
	return m.SelectDate(m.now())
}
