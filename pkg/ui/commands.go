package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"atelier/pkg/bus"
	"atelier/pkg/models"
)

// loadedMsg reports a finished load of one or both collections
type loadedMsg struct {
	err error
}

// mutationMsg reports the outcome of a write. fromForm keeps the form open on failure.
type mutationMsg struct {
	done     string
	fromForm bool
	err      error
}

type authRequiredMsg struct {
	reason string
}

type loginMsg struct {
	ok      bool
	message string
	err     error
}

func (m Model) reload() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.agenda.Init(m.ctx)}
	}
}

func (m Model) loadMonth() tea.Cmd {
	selected := m.agenda.Selected()
	return func() tea.Msg {
		return loadedMsg{err: m.agenda.LoadMonth(m.ctx, selected)}
	}
}

func (m Model) shiftMonth(delta int) tea.Cmd {
	return func() tea.Msg {
		var err error
		if delta > 0 {
			err = m.agenda.NextMonth(m.ctx)
		} else {
			err = m.agenda.PrevMonth(m.ctx)
		}
		return loadedMsg{err: err}
	}
}

// setFilter remembers f only once its task list is showing
func (m Model) setFilter(f models.TaskFilter) tea.Cmd {
	return func() tea.Msg {
		err := m.agenda.SetFilter(m.ctx, f)
		if err == nil && m.prefs != nil && m.agenda.Filter() == f {
			if err := m.prefs.Set(FilterKey, string(f)); err != nil {
				m.log.Warn("saving task filter", zap.Error(err))
			}
		}
		return loadedMsg{err: err}
	}
}

// mutate runs fn off the update loop and reports done on success
func (m Model) mutate(done string, fromForm bool, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return mutationMsg{done: done, fromForm: fromForm, err: fn(m.ctx)}
	}
}

// waitForAuth listens for the next auth-required notice from the bus
func (m Model) waitForAuth() tea.Cmd {
	if m.authCh == nil {
		return nil
	}
	ch := m.authCh
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return authRequiredMsg{reason: msg.Reason}
		case <-ctx.Done():
			return nil
		}
	}
}

// submitLogin signs in, replays the request that failed and reloads both collections
func (m Model) submitLogin(email, password string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.auth.Login(m.ctx, email, password)
		if err != nil {
			return loginMsg{err: err}
		}
		if !res.OK {
			return loginMsg{message: res.Message}
		}
		if m.bus != nil {
			if err := m.bus.Replay(m.ctx); err != nil && !errors.Is(err, bus.ErrNothingPending) {
				m.log.Warn("replaying request after login", zap.Error(err))
			}
		}
		if err := m.agenda.Init(m.ctx); err != nil {
			m.log.Warn("reloading after login", zap.Error(err))
		}
		return loginMsg{ok: true}
	}
}
