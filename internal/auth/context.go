package auth

import (
	"context"
	"log/slog"

	"entervio-client/internal/observability"
	"entervio-client/internal/storage"
	"entervio-client/internal/store"
)

type State struct {
	User      *User
	IsLoading bool
}

// Context mirrors the provider session into State and keeps the access
// token under storage.AccessTokenKey for the API client.
type Context struct {
	provider Provider
	storage  storage.LocalStorage
	state    *store.Store[State]
	log      *slog.Logger

	unsubscribe func()
}

func NewContext(provider Provider, local storage.LocalStorage, logger *slog.Logger) *Context {
	if logger == nil {
		logger = observability.Logger()
	}
	return &Context{
		provider: provider,
		storage:  local,
		state:    store.New(State{IsLoading: true}),
		log:      logger.With("component", "auth"),
	}
}

// Init reads the current session and follows later sign-ins and sign-outs
// until Close.
func (c *Context) Init(ctx context.Context) {
	session, err := c.provider.GetSession(ctx)
	if err != nil {
		c.log.Warn("failed to read session", "error", err)
	}
	if session != nil && session.AccessToken != "" {
		c.setToken(session.AccessToken)
	}
	c.state.Set(State{User: sessionUser(session), IsLoading: false})

	if c.unsubscribe == nil {
		c.unsubscribe = c.provider.OnAuthStateChange(c.onChange)
	}
}

func (c *Context) onChange(event Event, session *Session) {
	c.log.Debug("auth state changed", "event", event)
	c.state.Update(func(st *State) { st.User = sessionUser(session) })
	if session != nil && session.AccessToken != "" {
		c.setToken(session.AccessToken)
	} else {
		c.clearToken()
	}
}

func (c *Context) Snapshot() State { return c.state.Snapshot() }

func (c *Context) Subscribe(fn func(State)) func() { return c.state.Subscribe(fn) }

func (c *Context) User() *User { return c.state.Snapshot().User }

func (c *Context) IsLoading() bool { return c.state.Snapshot().IsLoading }

// Authenticated reports whether a user is signed in.
func (c *Context) Authenticated() bool { return c.User() != nil }

// Login signs in and stores the token. Provider errors are returned as is.
func (c *Context) Login(ctx context.Context, email, password string) error {
	session, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	if session != nil && session.AccessToken != "" {
		c.setToken(session.AccessToken)
	}
	c.state.Update(func(st *State) { st.User = sessionUser(session) })
	return nil
}

// Logout signs out and clears the user even if the provider call fails.
func (c *Context) Logout(ctx context.Context) error {
	err := c.provider.SignOut(ctx)
	if err != nil {
		c.log.Warn("sign out failed", "error", err)
	}
	c.clearToken()
	c.state.Update(func(st *State) { st.User = nil })
	return err
}

func (c *Context) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Context) setToken(token string) {
	if err := c.storage.SetItem(storage.AccessTokenKey, token); err != nil {
		c.log.Warn("failed to store access token", "error", err)
	}
}

func (c *Context) clearToken() {
	if err := c.storage.RemoveItem(storage.AccessTokenKey); err != nil {
		c.log.Warn("failed to remove access token", "error", err)
	}
}

func sessionUser(s *Session) *User {
	if s == nil {
		return nil
	}
	return s.User
}
