package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringlify/ringlify-cli/internal/session"
)

func TestEventsOrderAndUnsubscribe(t *testing.T) {
	e := NewEvents()
	var calls []string

	e.Subscribe(func(SessionInvalidated) { calls = append(calls, "first") })
	unsub := e.Subscribe(func(SessionInvalidated) { calls = append(calls, "second") })
	e.Subscribe(func(SessionInvalidated) { calls = append(calls, "third") })

	e.Publish(SessionInvalidated{})
	assert.Equal(t, []string{"first", "second", "third"}, calls)

	unsub()
	unsub()
	calls = nil
	e.Publish(SessionInvalidated{})
	assert.Equal(t, []string{"first", "third"}, calls)
}

func TestEventsNilIsSafe(t *testing.T) {
	var e *Events
	assert.NotPanics(t, func() { e.Publish(SessionInvalidated{}) })
}

func TestEventsZeroValue(t *testing.T) {
	var e Events
	fired := false
	e.Subscribe(func(SessionInvalidated) { fired = true })
	e.Publish(SessionInvalidated{})
	assert.True(t, fired)
}

func TestSessionTokenInvalidateWithoutEvents(t *testing.T) {
	acc := session.NewAccessor(session.NewMemoryStore())
	require.NoError(t, acc.Set("t", "b"))

	SessionToken(acc, nil).Invalidate(context.Background(), errors.New("expired"))

	assert.False(t, acc.Auth().IsAuthenticated)
}

func TestStaticKeyIsNotInvalidator(t *testing.T) {
	_, ok := StaticKey("k").(Invalidator)
	assert.False(t, ok)
}
