package session

import (
	"errors"

	"github.com/ringlify/ringlify-cli/internal/output"
)

// Auth is a snapshot of the stored session.
type Auth struct {
	Token           string `json:"-"`
	BusinessID      string `json:"businessId,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Accessor reads and writes the session through a Store.
// Every read goes to the store; nothing is cached.
type Accessor struct {
	store Store
}

// NewAccessor creates an Accessor over s.
func NewAccessor(s Store) *Accessor {
	return &Accessor{store: s}
}

// Auth returns the current session. IsAuthenticated holds exactly when
// both the token and the business id are present and non-empty.
func (a *Accessor) Auth() Auth {
	token := a.Token()
	bid := a.BusinessID()
	return Auth{
		Token:           token,
		BusinessID:      bid,
		IsAuthenticated: token != "" && bid != "",
	}
}

// Set stores both session values. Empty arguments are rejected and nothing is written.
func (a *Accessor) Set(token, businessID string) error {
	if token == "" {
		return output.ErrValidation("token", "must not be empty")
	}
	if businessID == "" {
		return output.ErrValidation("businessId", "must not be empty")
	}
	if err := a.store.Set(KeyToken, token); err != nil {
		return err
	}
	return a.store.Set(KeyBusinessID, businessID)
}

// Clear removes both session values. Both removals are attempted even if one fails.
func (a *Accessor) Clear() error {
	return errors.Join(
		a.store.Remove(KeyToken),
		a.store.Remove(KeyBusinessID),
	)
}

// Token returns the stored bearer token, or "".
func (a *Accessor) Token() string {
	v, _ := a.store.Get(KeyToken)
	return v
}

// BusinessID returns the stored business id, or "".
func (a *Accessor) BusinessID() string {
	v, _ := a.store.Get(KeyBusinessID)
	return v
}
