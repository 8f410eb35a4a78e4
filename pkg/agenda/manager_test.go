package agenda_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"atelier/pkg/agenda"
	"atelier/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) MonthEvents(ctx context.Context, year int, month time.Month) ([]models.Event, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockSource) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(models.Event), args.Error(1)
}

func (m *MockSource) UpdateEvent(ctx context.Context, id string, e models.Event) (models.Event, error) {
	args := m.Called(ctx, id, e)
	return args.Get(0).(models.Event), args.Error(1)
}

func (m *MockSource) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSource) SetEventStatus(ctx context.Context, id string, status models.EventStatus) (models.Event, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(models.Event), args.Error(1)
}

func (m *MockSource) Tasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockSource) TaskStats(ctx context.Context) (models.TaskStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.TaskStats), args.Error(1)
}

func (m *MockSource) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockSource) UpdateTask(ctx context.Context, id string, t models.Task) (models.Task, error) {
	args := m.Called(ctx, id, t)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockSource) DeleteTask(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSource) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockSource) ToggleChecklistItem(ctx context.Context, id string, index int) (models.Task, error) {
	args := m.Called(ctx, id, index)
	return args.Get(0).(models.Task), args.Error(1)
}

var (
	now     = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	meeting = models.Event{
		ID: "e1", Title: "Collector meeting", Type: models.EventMeeting, Status: models.EventScheduled,
		StartDate: time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC),
	}
	opening = models.Event{
		ID: "e2", Title: "Opening night", Type: models.EventExhibition, Status: models.EventCompleted,
		StartDate: time.Date(2025, time.March, 21, 18, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.March, 21, 22, 0, 0, 0, time.UTC),
	}
	framing = models.Task{
		ID: "t1", Title: "Order frames", Priority: models.PriorityHigh, Status: models.TaskPending,
		Checklist: []models.ChecklistItem{{Text: "measure"}, {Text: "order"}},
	}
	invoices = models.Task{ID: "t2", Title: "Send invoices", Priority: models.PriorityLow, Status: models.TaskInProgress}
	stats    = models.TaskStats{Total: 2, Pending: 1, InProgress: 1}
)

func newManager(src agenda.Source) *agenda.Manager {
	return agenda.New(src, agenda.WithLocation(time.UTC), agenda.WithClock(func() time.Time { return now }))
}

func TestManager_Init(t *testing.T) {
	src := new(MockSource)
	src.On("MonthEvents", mock.Anything, 2025, time.March).Return([]models.Event{meeting, opening}, nil)
	src.On("Tasks", mock.Anything, models.FilterAll).Return([]models.Task{framing, invoices}, nil)
	src.On("TaskStats", mock.Anything).Return(stats, nil)

	m := newManager(src)
	assert.True(t, m.Loading())
	require.NoError(t, m.Init(context.Background()))

	assert.False(t, m.Loading())
	assert.Len(t, m.Events(), 2)
	assert.Len(t, m.Tasks(), 2)
	assert.Equal(t, stats, m.Stats())
	assert.Equal(t, []models.Event{meeting}, m.SelectedEvents())

	grid := m.Grid()
	day := grid.Day(10)
	require.NotNil(t, day)
	assert.True(t, day.Today)
	assert.True(t, day.Selected)
	assert.Len(t, day.Events, 1)
	src.AssertExpectations(t)
}

func TestManager_InitFailureStillClearsLoading(t *testing.T) {
	src := new(MockSource)
	src.On("MonthEvents", mock.Anything, 2025, time.March).Return(nil, errors.New("offline"))
	src.On("Tasks", mock.Anything, models.FilterAll).Return([]models.Task{framing}, nil)
	src.On("TaskStats", mock.Anything).Return(stats, nil)

	m := newManager(src)
	err := m.Init(context.Background())
	assert.Error(t, err)
	assert.False(t, m.Loading())
	assert.Len(t, m.Tasks(), 1)
}

func TestManager_LoadMonthKeepsStaleOnError(t *testing.T) {
	src := new(MockSource)
	src.On("MonthEvents", mock.Anything, 2025, time.March).Return([]models.Event{meeting}, nil).Once()
	src.On("MonthEvents", mock.Anything, 2025, time.March).Return(nil, errors.New("timeout")).Once()

	m := newManager(src)
	ctx := context.Background()
	require.NoError(t, m.LoadMonth(ctx, now))
	assert.Error(t, m.LoadMonth(ctx, now))

	assert.Equal(t, []models.Event{meeting}, m.Events())
}

func TestManager_LoadTasksIndependentFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("stats fail", func(t *testing.T) {
		src := new(MockSource)
		src.On("Tasks", mock.Anything, models.FilterPending).Return([]models.Task{framing}, nil)
		src.On("TaskStats", mock.Anything).Return(models.TaskStats{}, errors.New("stats down"))

		m := newManager(src)
		err := m.LoadTasks(ctx, models.FilterPending)
		assert.ErrorContains(t, err, "stats down")
		assert.Equal(t, []models.Task{framing}, m.Tasks())
		assert.Equal(t, models.FilterPending, m.Filter())
	})

	t.Run("tasks fail", func(t *testing.T) {
		src := new(MockSource)
		src.On("Tasks", mock.Anything, models.FilterAll).Return(nil, errors.New("tasks down"))
		src.On("TaskStats", mock.Anything).Return(stats, nil)

		m := newManager(src)
		err := m.LoadTasks(ctx, models.FilterAll)
		assert.ErrorContains(t, err, "tasks down")
		assert.Empty(t, m.Tasks())
		assert.Equal(t, stats, m.Stats())
		assert.Equal(t, models.FilterAll, m.Filter())
	})
}

func TestManager_FailedFilterSwitchKeepsPreviousFilter(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	src.On("Tasks", mock.Anything, models.FilterPending).Return([]models.Task{framing}, nil)
	src.On("Tasks", mock.Anything, models.FilterCompleted).Return(nil, errors.New("down"))
	src.On("TaskStats", mock.Anything).Return(stats, nil)

	m := newManager(src)
	require.NoError(t, m.LoadTasks(ctx, models.FilterPending))

	err := m.SetFilter(ctx, models.FilterCompleted)
	assert.ErrorContains(t, err, "down")
	assert.Equal(t, models.FilterPending, m.Filter())
	assert.Equal(t, []models.Task{framing}, m.Tasks())
}

func TestManager_EventMutations(t *testing.T) {
	ctx := context.Background()
	draft := models.Event{Title: "Studio visit", Type: models.EventMeeting, StartDate: meeting.StartDate, EndDate: meeting.EndDate}

	tests := []struct {
		name      string
		setup     func(src *MockSource)
		run       func(m *agenda.Manager) error
		wantErr   bool
		refetches int
	}{
		{
			name:      "create refetches",
			setup:     func(src *MockSource) { src.On("CreateEvent", mock.Anything, draft).Return(models.Event{ID: "e9"}, nil) },
			run:       func(m *agenda.Manager) error { _, err := m.CreateEvent(ctx, draft); return err },
			refetches: 1,
		},
		{
			name:      "update failure leaves cache",
			setup:     func(src *MockSource) { src.On("UpdateEvent", mock.Anything, "e1", draft).Return(models.Event{}, errors.New("Title is required")) },
			run:       func(m *agenda.Manager) error { _, err := m.UpdateEvent(ctx, "e1", draft); return err },
			wantErr:   true,
			refetches: 0,
		},
		{
			name:      "delete refetches",
			setup:     func(src *MockSource) { src.On("DeleteEvent", mock.Anything, "e1").Return(nil) },
			run:       func(m *agenda.Manager) error { return m.DeleteEvent(ctx, "e1") },
			refetches: 1,
		},
		{
			name: "complete quick action",
			setup: func(src *MockSource) {
				src.On("SetEventStatus", mock.Anything, "e1", models.EventCompleted).Return(meeting, nil)
			},
			run:       func(m *agenda.Manager) error { _, err := m.CompleteEvent(ctx, "e1"); return err },
			refetches: 1,
		},
		{
			name:      "cancel on completed event is unavailable",
			setup:     func(src *MockSource) {},
			run:       func(m *agenda.Manager) error { _, err := m.CancelEvent(ctx, "e2"); return err },
			wantErr:   true,
			refetches: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(MockSource)
			src.On("MonthEvents", mock.Anything, 2025, time.March).Return([]models.Event{meeting, opening}, nil)
			tt.setup(src)

			m := newManager(src)
			require.NoError(t, m.LoadMonth(ctx, now))

			err := tt.run(m)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			src.AssertNumberOfCalls(t, "MonthEvents", 1+tt.refetches)
			assert.Len(t, m.Events(), 2)
		})
	}
}

func TestManager_QuickActionUnavailable(t *testing.T) {
	src := new(MockSource)
	src.On("MonthEvents", mock.Anything, 2025, time.March).Return([]models.Event{opening}, nil)
	m := newManager(src)
	require.NoError(t, m.LoadMonth(context.Background(), now))

	_, err := m.CompleteEvent(context.Background(), "e2")
	assert.ErrorIs(t, err, agenda.ErrQuickActionUnavailable)
	_, err = m.CompleteEvent(context.Background(), "nope")
	assert.ErrorIs(t, err, agenda.ErrUnknownEvent)
	src.AssertNotCalled(t, "SetEventStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_RefetchFailureIsNotReported(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	src.On("Tasks", mock.Anything, models.FilterAll).Return([]models.Task{framing}, nil).Once()
	src.On("TaskStats", mock.Anything).Return(stats, nil).Once()
	src.On("SetTaskStatus", mock.Anything, "t1", models.TaskInProgress).Return(framing, nil)
	src.On("Tasks", mock.Anything, models.FilterAll).Return(nil, errors.New("flaky")).Once()
	src.On("TaskStats", mock.Anything).Return(models.TaskStats{}, errors.New("flaky")).Once()

	m := newManager(src)
	require.NoError(t, m.LoadTasks(ctx, models.FilterAll))

	_, err := m.CycleTaskStatus(ctx, "t1")
	assert.NoError(t, err)
	assert.Equal(t, []models.Task{framing}, m.Tasks())
	src.AssertExpectations(t)
}

func TestManager_CycleUnknownTask(t *testing.T) {
	m := newManager(new(MockSource))
	_, err := m.CycleTaskStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, agenda.ErrUnknownTask)
}

func TestManager_ToggleChecklistReplacesOnlyThatTask(t *testing.T) {
	ctx := context.Background()
	toggled := framing.Clone()
	toggled.Checklist[1].Completed = true

	src := new(MockSource)
	src.On("Tasks", mock.Anything, models.FilterAll).Return([]models.Task{framing, invoices}, nil)
	src.On("TaskStats", mock.Anything).Return(stats, nil)
	src.On("ToggleChecklistItem", mock.Anything, "t1", 1).Return(toggled, nil)

	m := newManager(src)
	require.NoError(t, m.LoadTasks(ctx, models.FilterAll))

	got, err := m.ToggleChecklistItem(ctx, "t1", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.ChecklistProgress())

	tasks := m.Tasks()
	assert.Equal(t, toggled, tasks[0])
	assert.Equal(t, invoices, tasks[1])
	src.AssertNumberOfCalls(t, "Tasks", 1)

	_, err = m.ToggleChecklistItem(ctx, "t1", 5)
	assert.ErrorIs(t, err, agenda.ErrChecklistIndex)
}

func TestManager_SupersededMonthLoadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	april := models.Event{ID: "e3", Title: "Fair", StartDate: time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC)}

	src := new(MockSource)
	src.On("MonthEvents", mock.Anything, 2025, time.March).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]models.Event{meeting}, nil).Once()
	src.On("MonthEvents", mock.Anything, 2025, time.April).Return([]models.Event{april}, nil)

	m := newManager(src)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, m.LoadMonth(ctx, now))
	}()

	<-started
	require.NoError(t, m.NextMonth(ctx))
	close(release)
	wg.Wait()

	assert.Equal(t, []models.Event{april}, m.Events())
	year, month, ok := m.LoadedMonth()
	assert.True(t, ok)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.April, month)
}

func TestManager_Close(t *testing.T) {
	src := new(MockSource)
	m := newManager(src)
	m.Close()

	assert.ErrorIs(t, m.LoadMonth(context.Background(), now), agenda.ErrClosed)
	assert.ErrorIs(t, m.LoadTasks(context.Background(), models.FilterAll), agenda.ErrClosed)
	_, err := m.CreateTask(context.Background(), framing)
	assert.ErrorIs(t, err, agenda.ErrClosed)
	src.AssertExpectations(t)
}

func TestManager_Navigation(t *testing.T) {
	m := agenda.New(new(MockSource), agenda.WithLocation(time.UTC),
		agenda.WithClock(func() time.Time { return time.Date(2024, time.December, 31, 8, 0, 0, 0, time.UTC) }))

	next := m.ShiftMonth(1)
	assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), next)
	// February has no 31st
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), m.ShiftMonth(1))
	m.ShiftMonth(-2)
	assert.Equal(t, time.Date(2024, time.December, 28, 0, 0, 0, 0, time.UTC), m.Selected())

	assert.False(t, m.MoveDays(3))
	assert.True(t, m.MoveDays(1))
	assert.Equal(t, time.January, m.Selected().Month())
	assert.True(t, m.Today())

	// the grid of an unloaded month carries no events
	for _, d := range m.Grid().Days {
		assert.Empty(t, d.Events)
	}
}
