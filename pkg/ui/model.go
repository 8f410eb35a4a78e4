package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"atelier/pkg/agenda"
	"atelier/pkg/bus"
	"atelier/pkg/config"
	"atelier/pkg/keymaps"
	"atelier/pkg/models"
	"atelier/pkg/session"
)

// FilterKey is where the last task filter is remembered between runs
const FilterKey = "ui.task_filter"

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	EventFormMode
	TaskFormMode
	DeleteConfirmMode
	HelpViewMode
	LoginMode
)

// Prefs is the local key/value storage for UI state
type Prefs interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Authenticator logs the user back in from the modal
type Authenticator interface {
	Login(ctx context.Context, email, password string) (session.LoginResult, error)
}

// Deps are the collaborators the console drives
type Deps struct {
	Agenda *agenda.Manager
	Bus    *bus.Bus
	Auth   Authenticator // nil disables the login modal
	Prefs  Prefs         // nil keeps the filter in memory only
	Log    *zap.Logger
}

type deleteTarget struct {
	event bool
	id    string
	title string
}

// Model represents the application state
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	agenda *agenda.Manager
	bus    *bus.Bus
	auth   Authenticator
	prefs  Prefs
	log    *zap.Logger

	authCh      chan bus.AuthRequired
	unsubscribe func()

	table         table.Model
	rowTasks      []string // task id per table row, empty for group headers
	width, height int

	// Configuration
	config config.Config
	styles config.Styles
	keyMap keymaps.KeyMap

	// View state
	viewMode    models.ViewMode
	mode        InputMode
	eventCursor int
	sortBy      models.SortBy
	sortOrder   models.SortOrder
	groupByTag  bool

	form          *formState
	pendingDelete *deleteTarget
	login         loginState

	status string
	err    error
}

// NewModel creates a new UI model. Call Close when the program exits.
func NewModel(deps Deps, cfg config.Config) Model {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	styles := cfg.Styles

	columns := []table.Column{
		{Title: "Status", Width: 12},
		{Title: "Title", Width: 36},
		{Title: "Priority", Width: 8},
		{Title: "Due", Width: 16},
		{Title: "Checklist", Width: 9},
		{Title: "Tags", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.BorderColor)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		ctx:      ctx,
		cancel:   cancel,
		agenda:   deps.Agenda,
		bus:      deps.Bus,
		auth:     deps.Auth,
		prefs:    deps.Prefs,
		log:      deps.Log,
		table:    t,
		config:   cfg,
		styles:   styles,
		keyMap:   keymaps.BuildKeyMap(cfg.KeyMap),
		viewMode: models.CalendarViewMode,
		mode:     NormalMode,
		login:    newLoginState(),
	}

	if deps.Bus != nil {
		// buffered so a publish never blocks the goroutine that failed the request
		m.authCh = make(chan bus.AuthRequired, 1)
		ch := m.authCh
		m.unsubscribe = deps.Bus.Subscribe(func(msg bus.AuthRequired) {
			select {
			case ch <- msg:
			default:
			}
		})
	}
	return m
}

// StoredFilter returns the remembered task filter, FilterAll when unset
func StoredFilter(prefs Prefs) models.TaskFilter {
	if prefs == nil {
		return models.FilterAll
	}
	raw, err := prefs.Get(FilterKey)
	if err != nil {
		return models.FilterAll
	}
	f, err := models.ParseTaskFilter(raw)
	if err != nil {
		return models.FilterAll
	}
	return f
}

// Init loads both collections and starts listening for auth prompts
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reload(), m.waitForAuth())
}

// Close stops background work started by the model
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.cancel()
	m.agenda.Close()
}

func (m Model) location() *time.Location {
	return m.agenda.Location()
}

// selectedEvent is the highlighted event of the selected day
func (m Model) selectedEvent() (models.Event, bool) {
	events := m.agenda.SelectedEvents()
	if len(events) == 0 {
		return models.Event{}, false
	}
	idx := m.eventCursor
	if idx >= len(events) {
		idx = len(events) - 1
	}
	return events[idx], true
}

// selectedTask is the task under the table cursor
func (m Model) selectedTask() (models.Task, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rowTasks) || m.rowTasks[cursor] == "" {
		return models.Task{}, false
	}
	return m.agenda.Task(m.rowTasks[cursor])
}
