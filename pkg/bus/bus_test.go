package bus_test

import (
	"context"
	"errors"
	"testing"

	"atelier/pkg/bus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_LastPendingWins(t *testing.T) {
	b := bus.New()
	var replayed []string

	b.Publish(bus.AuthRequired{Reason: "first", Retry: func(context.Context) error {
		replayed = append(replayed, "first")
		return nil
	}})
	b.Publish(bus.AuthRequired{Reason: "second", Retry: func(context.Context) error {
		replayed = append(replayed, "second")
		return nil
	}})

	require.True(t, b.Pending())
	require.NoError(t, b.Replay(context.Background()))
	assert.Equal(t, []string{"second"}, replayed)

	assert.False(t, b.Pending())
	assert.ErrorIs(t, b.Replay(context.Background()), bus.ErrNothingPending)
}

func TestBus_SubscribersNotified(t *testing.T) {
	b := bus.New()
	var got []string
	unsubscribe := b.Subscribe(func(msg bus.AuthRequired) {
		got = append(got, msg.Reason)
	})

	b.Publish(bus.AuthRequired{Reason: "expired"})
	unsubscribe()
	b.Publish(bus.AuthRequired{Reason: "missing"})

	assert.Equal(t, []string{"expired"}, got)
}

func TestBus_ReplayPropagatesRetryError(t *testing.T) {
	b := bus.New()
	boom := errors.New("still failing")
	b.Publish(bus.AuthRequired{Retry: func(context.Context) error { return boom }})

	assert.ErrorIs(t, b.Replay(context.Background()), boom)
	assert.False(t, b.Pending())
}

func TestBus_Drop(t *testing.T) {
	b := bus.New()
	b.Publish(bus.AuthRequired{Retry: func(context.Context) error { return nil }})
	b.Drop()
	assert.False(t, b.Pending())
}

func TestBus_SubscriberMayPublishWithoutDeadlock(t *testing.T) {
	b := bus.New()
	calls := 0
	b.Subscribe(func(msg bus.AuthRequired) {
		calls++
		if msg.Reason == "outer" {
			b.Publish(bus.AuthRequired{Reason: "inner"})
		}
	})
	b.Publish(bus.AuthRequired{Reason: "outer"})
	assert.Equal(t, 2, calls)
}
