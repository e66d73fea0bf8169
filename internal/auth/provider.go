// Package auth tracks who is signed in and keeps the API access token in
// local storage in step with the identity provider's session.
package auth

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("not signed in")

type Event string

const (
	EventSignedIn  Event = "SIGNED_IN"
	EventSignedOut Event = "SIGNED_OUT"
)

type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// Name returns the display name stored at signup, if any.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if name, ok := u.Metadata["name"].(string); ok {
		return name
	}
	return ""
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Expired reports whether the access token is past its expiry. Sessions
// without an expiry never expire.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != 0 && now.Unix() >= s.ExpiresAt
}

// Provider is the identity provider client.
type Provider interface {
	GetSession(ctx context.Context) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(fn func(Event, *Session)) (unsubscribe func())
}
