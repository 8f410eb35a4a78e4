// Package agenda is the view-model behind the calendar and task screens.
// It caches one month of events and one filtered task list, and refetches
// from the Source after every successful mutation instead of patching the
// cache locally.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"atelier/pkg/calendar"
	"atelier/pkg/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrClosed                 = errors.New("agenda is closed")
	ErrQuickActionUnavailable = errors.New("no quick action available for this event")
	ErrUnknownEvent           = errors.New("event is not in the displayed month")
	ErrUnknownTask            = errors.New("task is not in the displayed list")
	ErrChecklistIndex         = errors.New("checklist index out of range")
)

// Source is the backend the agenda reads and writes through
type Source interface {
	MonthEvents(ctx context.Context, year int, month time.Month) ([]models.Event, error)
	CreateEvent(ctx context.Context, e models.Event) (models.Event, error)
	UpdateEvent(ctx context.Context, id string, e models.Event) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	SetEventStatus(ctx context.Context, id string, status models.EventStatus) (models.Event, error)

	Tasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	TaskStats(ctx context.Context) (models.TaskStats, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id string, t models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error)
	ToggleChecklistItem(ctx context.Context, id string, index int) (models.Task, error)
}

// Manager is safe for concurrent use; console commands call it from goroutines
type Manager struct {
	mtx sync.Mutex
	src Source
	log *zap.Logger
	loc *time.Location
	now func() time.Time

	events      []models.Event
	loadedYear  int
	loadedMonth time.Month
	tasks       []models.Task
	stats       models.TaskStats

	selected time.Time
	filter   models.TaskFilter
	loading  bool
	closed   bool

	// a load only applies its result if no newer load of the same collection started
	monthSeq uint64
	tasksSeq uint64
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithLocation sets the zone calendar days are computed in
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithFilter sets the initial task filter, e.g. a persisted preference
func WithFilter(f models.TaskFilter) Option {
	return func(m *Manager) { m.filter = f }
}

func New(src Source, opts ...Option) *Manager {
	m := &Manager{
		src:     src,
		log:     zap.NewNop(),
		loc:     time.Local,
		now:     time.Now,
		filter:  models.FilterAll,
		loading: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.selected = dayStart(m.now(), m.loc)
	return m
}

// Init loads the selected month and the task list concurrently and clears
// Loading once both have finished, whatever their outcome.
func (m *Manager) Init(ctx context.Context) error {
	m.mtx.Lock()
	m.loading = true
	selected, filter := m.selected, m.filter
	m.mtx.Unlock()

	var g errgroup.Group
	var monthErr, tasksErr error
	g.Go(func() error {
		monthErr = m.LoadMonth(ctx, selected)
		return nil
	})
	g.Go(func() error {
		tasksErr = m.LoadTasks(ctx, filter)
		return nil
	})
	_ = g.Wait()

	m.mtx.Lock()
	m.loading = false
	m.mtx.Unlock()
	return errors.Join(monthErr, tasksErr)
}

// LoadMonth fetches the events of date's month. On failure the previous
// collection stays in place and the error is returned.
func (m *Manager) LoadMonth(ctx context.Context, date time.Time) error {
	local := date.In(m.loc)
	year, month := local.Year(), local.Month()

	m.mtx.Lock()
	if m.closed {
		m.mtx.Unlock()
		return ErrClosed
	}
	m.monthSeq++
	seq := m.monthSeq
	m.mtx.Unlock()

	events, err := m.src.MonthEvents(ctx, year, month)

	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.closed || seq != m.monthSeq {
		m.log.Debug("discarding superseded month load", zap.Int("year", year), zap.Stringer("month", month))
		return nil
	}
	if err != nil {
		m.log.Warn("loading month failed, keeping previous events",
			zap.Int("year", year), zap.Stringer("month", month), zap.Error(err))
		return fmt.Errorf("loading %s %d: %w", month, year, err)
	}
	m.events = events
	m.loadedYear, m.loadedMonth = year, month
	m.log.Debug("month loaded", zap.Int("year", year), zap.Stringer("month", month), zap.Int("events", len(events)))
	return nil
}

// LoadTasks fetches the task list for filter and the stats concurrently.
// Each result is applied on its own; a failure of one never discards the
// other. filter becomes current together with its task list, so a failed
// fetch keeps the previous filter and tasks.
func (m *Manager) LoadTasks(ctx context.Context, filter models.TaskFilter) error {
	m.mtx.Lock()
	if m.closed {
		m.mtx.Unlock()
		return ErrClosed
	}
	m.tasksSeq++
	seq := m.tasksSeq
	m.mtx.Unlock()

	var g errgroup.Group
	var tasksErr, statsErr error
	g.Go(func() error {
		tasks, err := m.src.Tasks(ctx, filter)
		if err != nil {
			m.log.Warn("loading tasks failed", zap.String("filter", string(filter)), zap.Error(err))
			tasksErr = fmt.Errorf("loading tasks: %w", err)
			return nil
		}
		m.applyTasks(seq, func() {
			m.tasks = tasks
			m.filter = filter
		})
		return nil
	})
	g.Go(func() error {
		stats, err := m.src.TaskStats(ctx)
		if err != nil {
			m.log.Warn("loading task stats failed", zap.Error(err))
			statsErr = fmt.Errorf("loading task stats: %w", err)
			return nil
		}
		m.applyTasks(seq, func() { m.stats = stats })
		return nil
	})
	_ = g.Wait()

	if m.superseded(seq) {
		return nil
	}
	return errors.Join(tasksErr, statsErr)
}

// SetFilter switches the task list to filter and reloads it
func (m *Manager) SetFilter(ctx context.Context, filter models.TaskFilter) error {
	return m.LoadTasks(ctx, filter)
}

// Close makes every later result a no-op
func (m *Manager) Close() {
	m.mtx.Lock()
	m.closed = true
	m.mtx.Unlock()
}

func (m *Manager) applyTasks(seq uint64, apply func()) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.closed || seq != m.tasksSeq {
		m.log.Debug("discarding superseded task load")
		return
	}
	apply()
}

func (m *Manager) superseded(seq uint64) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.closed || seq != m.tasksSeq
}

func (m *Manager) checkOpen() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// refetchMonth and refetchTasks run after a successful write. Their failures
// are already logged by the loaders and are not reported to the caller.
func (m *Manager) refetchMonth(ctx context.Context) {
	_ = m.LoadMonth(ctx, m.Selected())
}

func (m *Manager) refetchTasks(ctx context.Context) {
	_ = m.LoadTasks(ctx, m.Filter())
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Grid lays out the selected month. Events are only placed once the selected
// month has been loaded, so a month switch never shows the previous marks.
func (m *Manager) Grid() calendar.Grid {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	year, month := m.selected.Year(), m.selected.Month()
	var events []models.Event
	if year == m.loadedYear && month == m.loadedMonth {
		events = m.events
	}
	return calendar.Build(year, month, events, m.selected, m.now(), m.loc)
}
