// Package bus carries the process-wide "auth required" notification from the API
// client to whichever top-level component owns the re-authentication prompt.
package bus

import (
	"context"
	"errors"
	"sync"
)

// ErrNothingPending is returned by Replay when no request is waiting
var ErrNothingPending = errors.New("no pending request to replay")

// AuthRequired is published whenever a request is rejected for missing or expired auth
type AuthRequired struct {
	Reason string
	Retry  func(ctx context.Context) error
}

// Bus keeps a single pending retry: when several requests fail before the user
// logs in again, only the last one registered is replayed.
type Bus struct {
	mtx     sync.Mutex
	pending *AuthRequired
	subs    map[int]func(AuthRequired)
	nextID  int
}

func New() *Bus {
	return &Bus{subs: make(map[int]func(AuthRequired))}
}

// Subscribe registers fn and returns a function that removes it
func (b *Bus) Subscribe(fn func(AuthRequired)) func() {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mtx.Lock()
		defer b.mtx.Unlock()
		delete(b.subs, id)
	}
}

// Publish records msg as the pending retry and notifies subscribers outside the lock
func (b *Bus) Publish(msg AuthRequired) {
	b.mtx.Lock()
	b.pending = &msg
	subs := make([]func(AuthRequired), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mtx.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
}

// Pending reports whether a retry is waiting
func (b *Bus) Pending() bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.pending != nil
}

// Drop forgets the pending retry, e.g. when the user dismisses the prompt
func (b *Bus) Drop() {
	b.mtx.Lock()
	b.pending = nil
	b.mtx.Unlock()
}

// Replay runs the pending retry once and clears it
func (b *Bus) Replay(ctx context.Context) error {
	b.mtx.Lock()
	msg := b.pending
	b.pending = nil
	b.mtx.Unlock()

	if msg == nil || msg.Retry == nil {
		return ErrNothingPending
	}
	return msg.Retry(ctx)
}
