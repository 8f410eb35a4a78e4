package agenda

import (
	"context"
	"fmt"

	"atelier/pkg/models"
)

// Every mutation is one round trip. On success the affected collection is
// refetched; on failure the error is returned unchanged and nothing cached moves.

func (m *Manager) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	if err := m.checkOpen(); err != nil {
		return models.Event{}, err
	}
	created, err := m.src.CreateEvent(ctx, e)
	if err != nil {
		return models.Event{}, err
	}
	m.refetchMonth(ctx)
	return created, nil
}

func (m *Manager) UpdateEvent(ctx context.Context, id string, e models.Event) (models.Event, error) {
	if err := m.checkOpen(); err != nil {
		return models.Event{}, err
	}
	updated, err := m.src.UpdateEvent(ctx, id, e)
	if err != nil {
		return models.Event{}, err
	}
	m.refetchMonth(ctx)
	return updated, nil
}

func (m *Manager) DeleteEvent(ctx context.Context, id string) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	if err := m.src.DeleteEvent(ctx, id); err != nil {
		return err
	}
	m.refetchMonth(ctx)
	return nil
}

func (m *Manager) SetEventStatus(ctx context.Context, id string, status models.EventStatus) (models.Event, error) {
	if err := m.checkOpen(); err != nil {
		return models.Event{}, err
	}
	updated, err := m.src.SetEventStatus(ctx, id, status)
	if err != nil {
		return models.Event{}, err
	}
	m.refetchMonth(ctx)
	return updated, nil
}

// CompleteEvent is the quick action for marking a displayed event done
func (m *Manager) CompleteEvent(ctx context.Context, id string) (models.Event, error) {
	return m.quickAction(ctx, id, models.EventCompleted)
}

// CancelEvent is the quick action for cancelling a displayed event
func (m *Manager) CancelEvent(ctx context.Context, id string) (models.Event, error) {
	return m.quickAction(ctx, id, models.EventCancelled)
}

func (m *Manager) quickAction(ctx context.Context, id string, target models.EventStatus) (models.Event, error) {
	e, ok := m.Event(id)
	if !ok {
		return models.Event{}, fmt.Errorf("event %s: %w", id, ErrUnknownEvent)
	}
	if !e.Status.Allows(target) {
		return models.Event{}, fmt.Errorf("event %q is %s: %w", e.Title, e.Status, ErrQuickActionUnavailable)
	}
	return m.SetEventStatus(ctx, id, target)
}

func (m *Manager) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if err := m.checkOpen(); err != nil {
		return models.Task{}, err
	}
	created, err := m.src.CreateTask(ctx, t)
	if err != nil {
		return models.Task{}, err
	}
	m.refetchTasks(ctx)
	return created, nil
}

func (m *Manager) UpdateTask(ctx context.Context, id string, t models.Task) (models.Task, error) {
	if err := m.checkOpen(); err != nil {
		return models.Task{}, err
	}
	updated, err := m.src.UpdateTask(ctx, id, t)
	if err != nil {
		return models.Task{}, err
	}
	m.refetchTasks(ctx)
	return updated, nil
}

func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	if err := m.checkOpen(); err != nil {
		return err
	}
	if err := m.src.DeleteTask(ctx, id); err != nil {
		return err
	}
	m.refetchTasks(ctx)
	return nil
}

func (m *Manager) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	if err := m.checkOpen(); err != nil {
		return models.Task{}, err
	}
	updated, err := m.src.SetTaskStatus(ctx, id, status)
	if err != nil {
		return models.Task{}, err
	}
	m.refetchTasks(ctx)
	return updated, nil
}

// CycleTaskStatus advances a listed task one step through the status cycle
func (m *Manager) CycleTaskStatus(ctx context.Context, id string) (models.Task, error) {
	t, ok := m.Task(id)
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, ErrUnknownTask)
	}
	return m.SetTaskStatus(ctx, id, t.Status.Next())
}

// ToggleChecklistItem flips one item. The returned task replaces the cached
// task with the same id; sibling tasks and stats are left alone.
func (m *Manager) ToggleChecklistItem(ctx context.Context, id string, index int) (models.Task, error) {
	if err := m.checkOpen(); err != nil {
		return models.Task{}, err
	}
	if t, ok := m.Task(id); ok && (index < 0 || index >= len(t.Checklist)) {
		return models.Task{}, fmt.Errorf("task %q item %d: %w", t.Title, index+1, ErrChecklistIndex)
	}

	updated, err := m.src.ToggleChecklistItem(ctx, id, index)
	if err != nil {
		return models.Task{}, err
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.closed {
		return updated, nil
	}
	for i := range m.tasks {
		if m.tasks[i].ID == updated.ID {
			m.tasks[i] = updated.Clone()
			break
		}
	}
	return updated, nil
}
