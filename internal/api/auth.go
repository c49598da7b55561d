package api

import (
	"context"
	"time"

	"github.com/ringlify/ringlify-cli/internal/session"
)

// Authorizer supplies the bearer credential for a request.
// ok=false (or an empty value) sends no Authorization header.
type Authorizer interface {
	Authorization(ctx context.Context) (value string, ok bool)
}

// Invalidator is implemented by authorizers whose credential can be revoked
// by the server. The client calls Invalidate on a 401.
type Invalidator interface {
	Invalidate(ctx context.Context, reason error)
}

type anonymous struct{}

func (anonymous) Authorization(context.Context) (string, bool) { return "", false }

// Anonymous sends no credentials.
func Anonymous() Authorizer { return anonymous{} }

type staticKey string

func (k staticKey) Authorization(context.Context) (string, bool) { return string(k), k != "" }

// StaticKey authorizes with a fixed operator key. A 401 is an ordinary failure.
func StaticKey(key string) Authorizer { return staticKey(key) }

// SessionTokenAuth authorizes with the stored business token and clears the
// session when the server rejects it.
type SessionTokenAuth struct {
	acc    *session.Accessor
	events *Events
	now    func() time.Time
}

var (
	_ Authorizer  = (*SessionTokenAuth)(nil)
	_ Invalidator = (*SessionTokenAuth)(nil)
)

// SessionToken creates the business-session authorizer. events may be nil.
func SessionToken(acc *session.Accessor, events *Events) *SessionTokenAuth {
	return &SessionTokenAuth{acc: acc, events: events, now: time.Now}
}

// Authorization returns the token read from storage at call time.
func (a *SessionTokenAuth) Authorization(context.Context) (string, bool) {
	token := a.acc.Token()
	return token, token != ""
}

// Invalidate clears both session values and publishes SessionInvalidated.
// Storage errors do not stop the event.
func (a *SessionTokenAuth) Invalidate(_ context.Context, reason error) {
	_ = a.acc.Clear()
	a.events.Publish(SessionInvalidated{Reason: reason, At: a.now()})
}
