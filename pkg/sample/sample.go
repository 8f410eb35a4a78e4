// Package sample is an in-memory backend seeded with demo data. It stands in
// for the gallery API when the network is unavailable and backs `atelier serve`.
package sample

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"atelier/pkg/catalog"
	"atelier/pkg/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Store is safe for concurrent use. Listings keep insertion order.
type Store struct {
	mtx sync.RWMutex
	loc *time.Location
	now func() time.Time

	events   map[string]models.Event
	eventIDs []string
	tasks    map[string]models.Task
	taskIDs  []string
	artworks []catalog.Artwork
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone months are cut in
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// New returns an empty store
func New(opts ...Option) *Store {
	s := &Store{
		loc:    time.Local,
		now:    time.Now,
		events: make(map[string]models.Event),
		tasks:  make(map[string]models.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded returns a store holding the demo agenda around the clock's current time
func NewSeeded(opts ...Option) *Store {
	s := New(opts...)
	s.Seed(s.now())
	return s
}

func newID() string {
	return uuid.NewString()
}

// MonthEvents lists events starting in the month, ordered by start
func (s *Store) MonthEvents(ctx context.Context, year int, month time.Month) ([]models.Event, error) {
	if month < time.January || month > time.December {
		return nil, invalid("month %d out of range", month)
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []models.Event{}
	for _, id := range s.eventIDs {
		e := s.events[id]
		start := e.StartDate.In(s.loc)
		if start.Year() == year && start.Month() == month {
			res = append(res, e.Clone())
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].StartDate.Before(res[j].StartDate) })
	return res, nil
}

func (s *Store) Event(ctx context.Context, id string) (models.Event, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return models.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return e.Clone(), nil
}

func (s *Store) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	if err := s.prepareEvent(&e); err != nil {
		return models.Event{}, err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	e.ID = newID()
	s.events[e.ID] = e
	s.eventIDs = append(s.eventIDs, e.ID)
	return e.Clone(), nil
}

func (s *Store) UpdateEvent(ctx context.Context, id string, e models.Event) (models.Event, error) {
	if err := s.prepareEvent(&e); err != nil {
		return models.Event{}, err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.events[id]; !ok {
		return models.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	e.ID = id
	s.events[id] = e
	return e.Clone(), nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	delete(s.events, id)
	s.eventIDs = removeID(s.eventIDs, id)
	return nil
}

func (s *Store) SetEventStatus(ctx context.Context, id string, status models.EventStatus) (models.Event, error) {
	if !status.Valid() {
		return models.Event{}, invalid("unknown event status %q", status)
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	e, ok := s.events[id]
	if !ok {
		return models.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	e.Status = status
	s.events[id] = e
	return e.Clone(), nil
}

func (s *Store) prepareEvent(e *models.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return invalid("title is required")
	}
	if e.StartDate.IsZero() {
		return invalid("start date is required")
	}
	if e.Type == "" {
		e.Type = models.EventOther
	}
	if !e.Type.Valid() {
		return invalid("unknown event type %q", e.Type)
	}
	if e.Status == "" {
		e.Status = models.EventScheduled
	}
	if !e.Status.Valid() {
		return invalid("unknown event status %q", e.Status)
	}
	if e.EndDate.IsZero() {
		e.EndDate = e.StartDate
	}
	if e.EndDate.Before(e.StartDate) {
		return invalid("end date is before start date")
	}
	if e.Reminder != nil && e.Reminder.MinutesBefore < 0 {
		return invalid("reminder must not be negative")
	}
	e.NormalizeAllDay(s.loc)
	return nil
}

// Tasks lists the tasks passing filter in insertion order
func (s *Store) Tasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if _, err := models.ParseTaskFilter(string(filter)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []models.Task{}
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if filter.Matches(t) {
			res = append(res, t.Clone())
		}
	}
	return res, nil
}

func (s *Store) Task(ctx context.Context, id string) (models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

// TaskStats counts over every task regardless of any list filter
func (s *Store) TaskStats(ctx context.Context) (models.TaskStats, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	now := s.now()
	var stats models.TaskStats
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		stats.Total++
		switch t.Status {
		case models.TaskPending:
			stats.Pending++
		case models.TaskInProgress:
			stats.InProgress++
		case models.TaskCompleted:
			stats.Completed++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats, nil
}

func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if err := prepareTask(&t); err != nil {
		return models.Task{}, err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t.ID = newID()
	s.tasks[t.ID] = t
	s.taskIDs = append(s.taskIDs, t.ID)
	return t.Clone(), nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, t models.Task) (models.Task, error) {
	if err := prepareTask(&t); err != nil {
		return models.Task{}, err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	t.ID = id
	s.tasks[id] = t
	return t.Clone(), nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	delete(s.tasks, id)
	s.taskIDs = removeID(s.taskIDs, id)
	return nil
}

func (s *Store) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	if !status.Valid() {
		return models.Task{}, invalid("unknown task status %q", status)
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	t.Status = status
	s.tasks[id] = t
	return t.Clone(), nil
}

// ToggleChecklistItem flips one item and returns the whole task
func (s *Store) ToggleChecklistItem(ctx context.Context, id string, index int) (models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	toggled, err := t.ToggleChecklist(index)
	if err != nil {
		return models.Task{}, fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	s.tasks[id] = toggled
	return toggled.Clone(), nil
}

func prepareTask(t *models.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return invalid("title is required")
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if !t.Priority.Valid() {
		return invalid("unknown priority %q", t.Priority)
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	if !t.Status.Valid() {
		return invalid("unknown task status %q", t.Status)
	}
	if t.EstimatedTime != nil && *t.EstimatedTime < 0 {
		return invalid("estimated time must not be negative")
	}
	t.Tags = models.NormalizeTags(t.Tags)
	checklist := []models.ChecklistItem{}
	for _, item := range t.Checklist {
		item.Text = strings.TrimSpace(item.Text)
		if item.Text != "" {
			checklist = append(checklist, item)
		}
	}
	t.Checklist = checklist
	return nil
}

// Artworks lists the catalog, optionally narrowed to kind
func (s *Store) Artworks(ctx context.Context, kind catalog.Kind) ([]catalog.Artwork, error) {
	if kind != "" && !kind.Valid() {
		return nil, invalid("unknown artwork kind %q", kind)
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []catalog.Artwork{}
	for _, a := range s.artworks {
		if kind == "" || a.Kind == kind {
			res = append(res, a)
		}
	}
	return res, nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
