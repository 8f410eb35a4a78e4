// Package commands implements the one-shot subcommands. Each handler prints to
// Env.Out and returns its error instead of exiting.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"atelier/pkg/agenda"
	"atelier/pkg/catalog"
	"atelier/pkg/session"
)

// Storage is the local key/value store the storage commands manage
type Storage interface {
	Keys(prefix string) ([]string, error)
	Purge(prefix string) (int64, error)
}

// Env is everything a command may touch
type Env struct {
	Agenda  *agenda.Manager
	Catalog catalog.Source
	Cart    *catalog.Cart
	Session *session.Session
	Storage Storage

	Out io.Writer
	In  io.Reader
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.out(), format, args...)
}

func (e *Env) location() *time.Location {
	if e.Agenda == nil {
		return time.Local
	}
	return e.Agenda.Location()
}

// confirm asks a y/N question on In
func (e *Env) confirm(question string) bool {
	e.printf("%s (y/N): ", question)
	in := e.In
	if in == nil {
		in = os.Stdin
	}
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
