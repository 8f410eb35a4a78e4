package keymaps

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

// KeyDefinitions uses snake_case action names since config keys are case-insensitive
var KeyDefinitions = map[string]KeyDefinition{
	"show_help":        {"ctrl+b", "show/hide commands"},
	"quit":             {"q", "quit"},
	"switch_view":      {"tab", "switch calendar/tasks"},
	"add":              {"a", "add event or task"},
	"edit":             {"e", "edit selected"},
	"delete":           {"d", "delete selected"},
	"cycle_status":     {"space", "cycle task status"},
	"toggle_checklist": {"1,2,3,4,5,6,7,8,9", "toggle checklist item"},
	"complete_event":   {"c", "complete event"},
	"cancel_event":     {"x", "cancel event"},
	"cycle_filter":     {"f", "cycle task filter"},
	"toggle_sort_by":   {"s", "cycle sort by"},
	"toggle_sort_ord":  {"o", "toggle sort order"},
	"toggle_group_by":  {"g", "group by tag"},
	"reload":           {"r", "reload"},
	"jump_to_today":    {"h", "jump to today"},
	"left":             {"left", "previous day"},
	"right":            {"right", "next day"},
	"up":               {"up", "previous week / row"},
	"down":             {"down", "next week / row"},
	"prev_month":       {"[", "previous month"},
	"next_month":       {"]", "next month"},
	"next_event":       {"n", "select next event of the day"},
	"login":            {"L", "log in"},
}

type KeyMap struct {
	ShowHelp        key.Binding
	Quit            key.Binding
	SwitchView      key.Binding
	Add             key.Binding
	Edit            key.Binding
	Delete          key.Binding
	CycleStatus     key.Binding
	ToggleChecklist key.Binding
	CompleteEvent   key.Binding
	CancelEvent     key.Binding
	CycleFilter     key.Binding
	ToggleSortBy    key.Binding
	ToggleSortOrder key.Binding
	ToggleGroupBy   key.Binding
	Reload          key.Binding
	JumpToToday     key.Binding
	Left            key.Binding
	Right           key.Binding
	Up              key.Binding
	Down            key.Binding
	PrevMonth       key.Binding
	NextMonth       key.Binding
	NextEvent       key.Binding
	Login           key.Binding
}

func (km *KeyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"show_help":        &km.ShowHelp,
		"quit":             &km.Quit,
		"switch_view":      &km.SwitchView,
		"add":              &km.Add,
		"edit":             &km.Edit,
		"delete":           &km.Delete,
		"cycle_status":     &km.CycleStatus,
		"toggle_checklist": &km.ToggleChecklist,
		"complete_event":   &km.CompleteEvent,
		"cancel_event":     &km.CancelEvent,
		"cycle_filter":     &km.CycleFilter,
		"toggle_sort_by":   &km.ToggleSortBy,
		"toggle_sort_ord":  &km.ToggleSortOrder,
		"toggle_group_by":  &km.ToggleGroupBy,
		"reload":           &km.Reload,
		"jump_to_today":    &km.JumpToToday,
		"left":             &km.Left,
		"right":            &km.Right,
		"up":               &km.Up,
		"down":             &km.Down,
		"prev_month":       &km.PrevMonth,
		"next_month":       &km.NextMonth,
		"next_event":       &km.NextEvent,
		"login":            &km.Login,
	}
}

func BuildKeyMap(configOverrides map[string]string) KeyMap {
	km := KeyMap{}
	targets := km.bindings()
	for action, def := range KeyDefinitions {
		keyStr := def.DefaultKey
		if override, exists := configOverrides[action]; exists && override != "" {
			keyStr = override
		}
		if target, ok := targets[action]; ok {
			*target = parseKeyBinding(keyStr, def.DefaultKey, def.Help)
		}
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if keyStr == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	keys := strings.Split(keyStr, ",")
	for i, k := range keys {
		keys[i] = strings.TrimSpace(k)
	}

	helpKey := keys[0]
	if len(keys) > 2 {
		helpKey = keys[0] + "-" + keys[len(keys)-1]
	}
	matches := keys
	for _, k := range keys {
		// the terminal reports the space bar as " "
		if k == "space" {
			matches = append(append([]string{}, keys...), " ")
			break
		}
	}
	return key.NewBinding(
		key.WithKeys(matches...),
		key.WithHelp(helpKey, helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}

// Actions lists the configurable action names in a stable order
func Actions() []string {
	names := make([]string, 0, len(KeyDefinitions))
	for name := range KeyDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
