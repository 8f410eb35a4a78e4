package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"atelier/pkg/forms"
)

// formState binds text inputs to the string fields of an event or task form
type formState struct {
	event  *forms.EventForm
	task   *forms.TaskForm
	fields []forms.Field
	inputs []textinput.Model
	active int
	errs   *forms.ValidationError
	// failure from the server, shown above the fields
	submitErr string
}

func newFormState(fields []forms.Field) *formState {
	fs := &formState{fields: fields, inputs: make([]textinput.Model, len(fields))}
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.Width = 40
		in.SetValue(*f.Value)
		fs.inputs[i] = in
	}
	fs.focus(0)
	return fs
}

func newEventFormState(f *forms.EventForm) *formState {
	fs := newFormState(f.Fields())
	fs.event = f
	return fs
}

func newTaskFormState(f *forms.TaskForm) *formState {
	fs := newFormState(f.Fields())
	fs.task = f
	return fs
}

func (fs *formState) editing() bool {
	if fs.event != nil {
		return fs.event.Editing()
	}
	return fs.task.Editing()
}

func (fs *formState) focus(i int) {
	n := len(fs.inputs)
	if n == 0 {
		return
	}
	fs.active = (i%n + n) % n
	for j := range fs.inputs {
		if j == fs.active {
			fs.inputs[j].Focus()
		} else {
			fs.inputs[j].Blur()
		}
	}
}

func (fs *formState) next()     { fs.focus(fs.active + 1) }
func (fs *formState) previous() { fs.focus(fs.active - 1) }
func (fs *formState) last() bool {
	return fs.active == len(fs.inputs)-1
}

// update feeds msg to the focused input and copies its text back into the form
func (fs *formState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	fs.inputs[fs.active], cmd = fs.inputs[fs.active].Update(msg)
	*fs.fields[fs.active].Value = fs.inputs[fs.active].Value()
	return cmd
}

type loginState struct {
	email    textinput.Model
	password textinput.Model
	active   int
	reason   string
	message  string
	busy     bool
}

func newLoginState() loginState {
	email := textinput.New()
	email.Placeholder = "you@gallery.com"
	email.Width = 32

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 32

	return loginState{email: email, password: password}
}

func (l *loginState) open(reason string) {
	l.reason = reason
	l.message = ""
	l.busy = false
	l.password.SetValue("")
	l.active = 0
	l.email.Focus()
	l.password.Blur()
}

func (l *loginState) toggleFocus() {
	if l.active == 0 {
		l.active = 1
		l.email.Blur()
		l.password.Focus()
	} else {
		l.active = 0
		l.password.Blur()
		l.email.Focus()
	}
}

func (l *loginState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if l.active == 0 {
		l.email, cmd = l.email.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}
