package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"atelier/pkg/api"
	"atelier/pkg/forms"
	"atelier/pkg/models"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case loadedMsg:
		m.err = nil
		if msg.err != nil {
			m.err = errors.New(api.UserMessage(msg.err))
		}
		m.refreshRows()
		return m, nil

	case mutationMsg:
		return m.handleMutation(msg), nil

	case authRequiredMsg:
		if m.auth == nil {
			m.err = errors.New("your session has expired, run `atelier login` and reload")
		} else if m.mode != LoginMode {
			m.mode = LoginMode
			m.login.open(msg.reason)
		} else {
			m.login.reason = msg.reason
		}
		return m, m.waitForAuth()

	case loginMsg:
		m.login.busy = false
		switch {
		case msg.err != nil:
			m.login.message = api.UserMessage(msg.err)
		case !msg.ok:
			m.login.message = msg.message
		default:
			m.mode = NormalMode
			m.err = nil
			m.status = "Logged in"
			m.refreshRows()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			return m.updateNormal(msg)
		case EventFormMode, TaskFormMode:
			return m.updateForm(msg)
		case DeleteConfirmMode:
			return m.updateDelete(msg)
		case LoginMode:
			return m.updateLogin(msg)
		case HelpViewMode:
			if msg.String() == "esc" || key.Matches(msg, m.keyMap.ShowHelp) {
				m.mode = NormalMode
			} else if key.Matches(msg, m.keyMap.Quit) {
				m.Close()
				return m, tea.Quit
			}
			return m, nil
		}
	}
	return m, nil
}

func (m Model) handleMutation(msg mutationMsg) Model {
	if msg.err != nil {
		text := api.UserMessage(msg.err)
		m.log.Warn("mutation failed", zap.String("action", msg.done), zap.Error(msg.err))
		if msg.fromForm && m.form != nil {
			m.form.submitErr = text
		} else {
			m.err = errors.New(text)
		}
		m.refreshRows()
		return m
	}

	m.err = nil
	m.status = msg.done
	if msg.fromForm {
		m.form = nil
		m.mode = NormalMode
	}
	m.refreshRows()
	return m
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode
		return m, nil

	case key.Matches(msg, m.keyMap.SwitchView):
		if m.viewMode == models.CalendarViewMode {
			m.viewMode = models.TasksViewMode
		} else {
			m.viewMode = models.CalendarViewMode
		}
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keyMap.Reload):
		m.status = "Reloading…"
		return m, m.reload()

	case key.Matches(msg, m.keyMap.Login) && m.auth != nil:
		m.mode = LoginMode
		m.login.open("")
		return m, nil
	}

	if m.viewMode == models.CalendarViewMode {
		return m.updateCalendar(msg)
	}
	return m.updateTasks(msg)
}

func (m Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	move := func(days int) (tea.Model, tea.Cmd) {
		m.eventCursor = 0
		if m.agenda.MoveDays(days) {
			return m, m.loadMonth()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Left):
		return move(-1)
	case key.Matches(msg, m.keyMap.Right):
		return move(1)
	case key.Matches(msg, m.keyMap.Up):
		return move(-7)
	case key.Matches(msg, m.keyMap.Down):
		return move(7)

	case key.Matches(msg, m.keyMap.PrevMonth):
		m.eventCursor = 0
		return m, m.shiftMonth(-1)
	case key.Matches(msg, m.keyMap.NextMonth):
		m.eventCursor = 0
		return m, m.shiftMonth(1)

	case key.Matches(msg, m.keyMap.JumpToToday):
		m.eventCursor = 0
		if m.agenda.Today() {
			return m, m.loadMonth()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NextEvent):
		if n := len(m.agenda.SelectedEvents()); n > 0 {
			m.eventCursor = (m.eventCursor + 1) % n
		}
		return m, nil

	case key.Matches(msg, m.keyMap.CompleteEvent), key.Matches(msg, m.keyMap.CancelEvent):
		e, ok := m.selectedEvent()
		if !ok {
			return m, nil
		}
		if key.Matches(msg, m.keyMap.CompleteEvent) {
			return m, m.mutate("Event completed", false, func(ctx context.Context) error {
				_, err := m.agenda.CompleteEvent(ctx, e.ID)
				return err
			})
		}
		return m, m.mutate("Event cancelled", false, func(ctx context.Context) error {
			_, err := m.agenda.CancelEvent(ctx, e.ID)
			return err
		})

	case key.Matches(msg, m.keyMap.Add):
		m.form = newEventFormState(forms.NewEventForm(m.agenda.Selected()))
		m.mode = EventFormMode
		return m, nil

	case key.Matches(msg, m.keyMap.Edit):
		if e, ok := m.selectedEvent(); ok {
			m.form = newEventFormState(forms.EventFormFrom(e, m.location()))
			m.mode = EventFormMode
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Delete):
		if e, ok := m.selectedEvent(); ok {
			m.pendingDelete = &deleteTarget{event: true, id: e.ID, title: e.Title}
			m.mode = DeleteConfirmMode
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.CycleFilter):
		return m, m.setFilter(m.agenda.Filter().Next())

	case key.Matches(msg, m.keyMap.ToggleSortBy):
		m.sortBy = (m.sortBy + 1) % (models.SortByTitle + 1)
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleSortOrder):
		if m.sortOrder == models.SortAsc {
			m.sortOrder = models.SortDesc
		} else {
			m.sortOrder = models.SortAsc
		}
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleGroupBy):
		m.groupByTag = !m.groupByTag
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keyMap.Add):
		m.form = newTaskFormState(forms.NewTaskForm())
		m.mode = TaskFormMode
		return m, nil
	}

	t, ok := m.selectedTask()
	switch {
	case key.Matches(msg, m.keyMap.CycleStatus):
		if !ok {
			return m, nil
		}
		next := t.Status.Next()
		return m, m.mutate(fmt.Sprintf("Task moved to %s", next.Label()), false, func(ctx context.Context) error {
			_, err := m.agenda.CycleTaskStatus(ctx, t.ID)
			return err
		})

	case key.Matches(msg, m.keyMap.ToggleChecklist):
		if !ok {
			return m, nil
		}
		n, err := strconv.Atoi(msg.String())
		if err != nil {
			return m, nil
		}
		if n > len(t.Checklist) {
			m.err = fmt.Errorf("task has no checklist item %d", n)
			return m, nil
		}
		return m, m.mutate("Checklist updated", false, func(ctx context.Context) error {
			_, err := m.agenda.ToggleChecklistItem(ctx, t.ID, n-1)
			return err
		})

	case key.Matches(msg, m.keyMap.Edit):
		if ok {
			m.form = newTaskFormState(forms.TaskFormFrom(t, m.location()))
			m.mode = TaskFormMode
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Delete):
		if ok {
			m.pendingDelete = &deleteTarget{id: t.ID, title: t.Title}
			m.mode = DeleteConfirmMode
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fs := m.form
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = NormalMode
		return m, nil
	case "tab", "down":
		fs.next()
		return m, nil
	case "shift+tab", "up":
		fs.previous()
		return m, nil
	case "enter":
		if !fs.last() {
			fs.next()
			return m, nil
		}
		return m.submitForm()
	case "ctrl+s":
		return m.submitForm()
	}
	return m, fs.update(msg)
}

// submitForm validates locally and only sends the payload when the form is clean
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	fs := m.form
	fs.errs = nil
	fs.submitErr = ""
	loc := m.location()

	var verr *forms.ValidationError
	if fs.event != nil {
		e, err := fs.event.Payload(loc)
		if errors.As(err, &verr) {
			fs.errs = verr
			return m, nil
		}
		if fs.event.Editing() {
			id := fs.event.ID
			return m, m.mutate("Event updated", true, func(ctx context.Context) error {
				_, err := m.agenda.UpdateEvent(ctx, id, e)
				return err
			})
		}
		return m, m.mutate("Event created", true, func(ctx context.Context) error {
			_, err := m.agenda.CreateEvent(ctx, e)
			return err
		})
	}

	t, err := fs.task.Payload(loc)
	if errors.As(err, &verr) {
		fs.errs = verr
		return m, nil
	}
	if fs.task.Editing() {
		id := fs.task.ID
		return m, m.mutate("Task updated", true, func(ctx context.Context) error {
			_, err := m.agenda.UpdateTask(ctx, id, t)
			return err
		})
	}
	return m, m.mutate("Task created", true, func(ctx context.Context) error {
		_, err := m.agenda.CreateTask(ctx, t)
		return err
	})
}

func (m Model) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := m.pendingDelete
	switch strings.ToLower(msg.String()) {
	case "y":
		m.mode = NormalMode
		m.pendingDelete = nil
		if target == nil {
			return m, nil
		}
		m.eventCursor = 0
		if target.event {
			return m, m.mutate("Event deleted", false, func(ctx context.Context) error {
				return m.agenda.DeleteEvent(ctx, target.id)
			})
		}
		return m, m.mutate("Task deleted", false, func(ctx context.Context) error {
			return m.agenda.DeleteTask(ctx, target.id)
		})
	case "n", "esc":
		m.mode = NormalMode
		m.pendingDelete = nil
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		if m.bus != nil {
			m.bus.Drop()
		}
		m.mode = NormalMode
		return m, nil
	case "tab", "shift+tab":
		m.login.toggleFocus()
		return m, nil
	case "enter":
		email := strings.TrimSpace(m.login.email.Value())
		password := m.login.password.Value()
		if email == "" || password == "" {
			m.login.message = "Email and password are required"
			return m, nil
		}
		m.login.busy = true
		m.login.message = ""
		return m, m.submitLogin(email, password)
	}
	return m, m.login.update(msg)
}
