package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/pkg/agenda"
	"atelier/pkg/bus"
	"atelier/pkg/config"
	"atelier/pkg/models"
	"atelier/pkg/sample"
	"atelier/pkg/session"
)

var now = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type memPrefs map[string]string

func (p memPrefs) Get(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (p memPrefs) Set(key, value string) error {
	p[key] = value
	return nil
}

type fakeAuth struct {
	result session.LoginResult
	calls  int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (session.LoginResult, error) {
	f.calls++
	return f.result, nil
}

// flakyTasks fails task list fetches while down is set
type flakyTasks struct {
	agenda.Source
	down bool
}

func (f *flakyTasks) Tasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if f.down {
		return nil, errors.New("tasks down")
	}
	return f.Source.Tasks(ctx, filter)
}

func seededStore() *sample.Store {
	return sample.NewSeeded(sample.WithClock(func() time.Time { return now }), sample.WithLocation(time.UTC))
}

func newTestModel(t *testing.T, deps Deps) Model {
	t.Helper()
	return newTestModelOn(t, deps, seededStore())
}

func newTestModelOn(t *testing.T, deps Deps, src agenda.Source) Model {
	t.Helper()
	deps.Agenda = agenda.New(src, agenda.WithClock(func() time.Time { return now }), agenda.WithLocation(time.UTC))

	m := NewModel(deps, config.Config{})
	t.Cleanup(m.Close)
	return run(t, m, m.reload())
}

// run executes cmd synchronously and feeds its message back into the model
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func TestCalendarNavigation(t *testing.T) {
	m := newTestModel(t, Deps{})
	assert.Contains(t, m.View(), "Collector meeting")

	m, cmd := press(t, m, "right")
	assert.Nil(t, cmd)
	assert.Equal(t, 11, m.agenda.Selected().Day())

	m, cmd = press(t, m, "]")
	m = run(t, m, cmd)
	year, month, ok := m.agenda.LoadedMonth()
	require.True(t, ok)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.April, month)
	assert.Contains(t, m.View(), "April 2025")

	m, cmd = press(t, m, "h")
	m = run(t, m, cmd)
	assert.Equal(t, 10, m.agenda.Selected().Day())
	assert.Equal(t, time.March, m.agenda.Selected().Month())
}

func TestQuickActions(t *testing.T) {
	m := newTestModel(t, Deps{})
	require.Len(t, m.agenda.SelectedEvents(), 2)

	// the cancelled framer pickup comes first and has no quick actions left
	assert.NotContains(t, m.helpBar(), "complete")
	assert.NotContains(t, m.helpBar(), "cancel")

	m, cmd := press(t, m, "c")
	m = run(t, m, cmd)
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "no quick action")

	m, _ = press(t, m, "n")
	assert.Contains(t, m.helpBar(), "complete")
	assert.Contains(t, m.helpBar(), "cancel")

	m, cmd = press(t, m, "c")
	m = run(t, m, cmd)
	assert.NoError(t, m.err)
	assert.Equal(t, "Event completed", m.status)
	assert.Equal(t, models.EventCompleted, m.agenda.SelectedEvents()[1].Status)
	assert.NotContains(t, m.helpBar(), "complete")
}

func TestTaskForm_ValidationKeepsFormOpen(t *testing.T) {
	m := newTestModel(t, Deps{})
	m, _ = press(t, m, "tab", "a")
	require.Equal(t, TaskFormMode, m.mode)

	m, cmd := press(t, m, "ctrl+s")
	assert.Nil(t, cmd)
	assert.Equal(t, TaskFormMode, m.mode)
	require.NotNil(t, m.form.errs)
	assert.Equal(t, "Title is required", m.form.errs.For("Title"))
	assert.Contains(t, m.View(), "Title is required")

	m, _ = press(t, m, "F", "r", "a", "m", "e")
	assert.Equal(t, "Frame", m.form.task.Title)

	m, cmd = press(t, m, "ctrl+s")
	m = run(t, m, cmd)
	assert.Equal(t, NormalMode, m.mode)
	assert.Equal(t, "Task created", m.status)
	assert.Equal(t, 5, m.agenda.Stats().Total)
}

func TestTasks_CycleAndChecklist(t *testing.T) {
	m := newTestModel(t, Deps{})
	m, _ = press(t, m, "tab")

	// due date ascending: the completed price list update sorts first
	first, ok := m.selectedTask()
	require.True(t, ok)
	assert.Equal(t, "Update price list", first.Title)

	m, cmd := press(t, m, "1")
	assert.Nil(t, cmd)
	assert.EqualError(t, m.err, "task has no checklist item 1")

	m, cmd = press(t, m, "space")
	m = run(t, m, cmd)
	assert.Equal(t, "Task moved to pending", m.status)
	cycled, _ := m.agenda.Task(first.ID)
	assert.Equal(t, models.TaskPending, cycled.Status)

	m, _ = press(t, m, "down", "down")
	hang, ok := m.selectedTask()
	require.True(t, ok)
	require.Equal(t, "Hang the spring series", hang.Title)

	m, cmd = press(t, m, "2")
	m = run(t, m, cmd)
	hang, _ = m.agenda.Task(hang.ID)
	assert.True(t, hang.Checklist[1].Completed)
}

func TestTasks_FilterIsRemembered(t *testing.T) {
	prefs := memPrefs{}
	m := newTestModel(t, Deps{Prefs: prefs})
	m, _ = press(t, m, "tab")

	m, cmd := press(t, m, "f")
	m = run(t, m, cmd)
	assert.Equal(t, models.FilterPending, m.agenda.Filter())
	assert.Equal(t, "pending", prefs[FilterKey])
	assert.Equal(t, models.FilterPending, StoredFilter(prefs))
	for _, task := range m.agenda.Tasks() {
		assert.Equal(t, models.TaskPending, task.Status)
	}

	assert.Equal(t, models.FilterAll, StoredFilter(memPrefs{FilterKey: "bogus"}))
	assert.Equal(t, models.FilterAll, StoredFilter(nil))
}

func TestTasks_FailedFilterIsNotRemembered(t *testing.T) {
	prefs := memPrefs{}
	src := &flakyTasks{Source: seededStore()}
	m := newTestModelOn(t, Deps{Prefs: prefs}, src)
	m, _ = press(t, m, "tab")

	src.down = true
	m, cmd := press(t, m, "f")
	m = run(t, m, cmd)
	require.Error(t, m.err)
	assert.Equal(t, models.FilterAll, m.agenda.Filter())
	assert.Len(t, m.agenda.Tasks(), 4)
	assert.Contains(t, m.View(), "Filter: all")
	_, saved := prefs[FilterKey]
	assert.False(t, saved)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m := newTestModel(t, Deps{})
	m, _ = press(t, m, "tab", "d")
	require.Equal(t, DeleteConfirmMode, m.mode)
	assert.Contains(t, m.View(), "Update price list")

	m, cmd := press(t, m, "n")
	assert.Nil(t, cmd)
	assert.Equal(t, NormalMode, m.mode)
	assert.Equal(t, 4, m.agenda.Stats().Total)

	m, _ = press(t, m, "d")
	m, cmd = press(t, m, "y")
	m = run(t, m, cmd)
	assert.Equal(t, "Task deleted", m.status)
	assert.Equal(t, 3, m.agenda.Stats().Total)
}

func TestAuthRequired_LoginReplaysPendingRequest(t *testing.T) {
	b := bus.New()
	auth := &fakeAuth{result: session.LoginResult{OK: true}}
	m := newTestModel(t, Deps{Bus: b, Auth: auth})

	replayed := false
	b.Publish(bus.AuthRequired{
		Reason: "Your session has expired. Please log in again.",
		Retry: func(ctx context.Context) error {
			replayed = true
			return nil
		},
	})
	m = run(t, m, m.waitForAuth())
	require.Equal(t, LoginMode, m.mode)
	assert.Contains(t, m.View(), "Your session has expired")

	m, cmd := press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, "Email and password are required", m.login.message)

	m.login.email.SetValue("admin@gallery.test")
	m.login.password.SetValue("secret")
	m, cmd = press(t, m, "enter")
	require.True(t, m.login.busy)
	m = run(t, m, cmd)

	assert.Equal(t, NormalMode, m.mode)
	assert.Equal(t, "Logged in", m.status)
	assert.True(t, replayed)
	assert.False(t, b.Pending())
	assert.Equal(t, 1, auth.calls)
}

func TestAuthRequired_RejectedLoginStaysOpen(t *testing.T) {
	b := bus.New()
	auth := &fakeAuth{result: session.LoginResult{Message: "Invalid email or password"}}
	m := newTestModel(t, Deps{Bus: b, Auth: auth})

	b.Publish(bus.AuthRequired{Reason: "expired"})
	m = run(t, m, m.waitForAuth())
	m.login.email.SetValue("admin@gallery.test")
	m.login.password.SetValue("nope")
	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)

	assert.Equal(t, LoginMode, m.mode)
	assert.Equal(t, "Invalid email or password", m.login.message)
	assert.True(t, b.Pending())

	m, _ = press(t, m, "esc")
	assert.Equal(t, NormalMode, m.mode)
	assert.False(t, b.Pending())
}

func TestAuthRequired_WithoutAuthenticatorShowsHint(t *testing.T) {
	b := bus.New()
	m := newTestModel(t, Deps{Bus: b})

	b.Publish(bus.AuthRequired{Reason: "expired"})
	m = run(t, m, m.waitForAuth())
	assert.Equal(t, NormalMode, m.mode)
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "atelier login")
}
