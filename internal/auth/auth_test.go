package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"entervio-client/internal/auth"
	"entervio-client/internal/config"
	"entervio-client/internal/storage"
)

func newGoTrue(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		if r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "No API key found in request"})
			return
		}

		switch r.URL.Path {
		case "/auth/v1/token":
			if r.URL.Query().Get("grant_type") != "password" {
				t.Errorf("unexpected grant type %q", r.URL.Query().Get("grant_type"))
			}
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{
					"error":             "invalid_grant",
					"error_description": "Invalid login credentials",
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "tok-1",
				"token_type":    "bearer",
				"expires_in":    3600,
				"refresh_token": "ref-1",
				"user":          map[string]any{"id": "u1", "email": body["email"], "user_metadata": map[string]any{"name": "Alice"}},
			})
		case "/auth/v1/logout":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSupabaseSignInPersistsSession(t *testing.T) {
	srv, _ := newGoTrue(t)
	local := storage.NewMemoryStorage()
	p := auth.NewSupabaseProvider(config.SupabaseConfig{URL: srv.URL, AnonKey: "anon"}, local, srv.Client(), nil)

	var events []auth.Event
	unsubscribe := p.OnAuthStateChange(func(e auth.Event, s *auth.Session) { events = append(events, e) })
	defer unsubscribe()

	session, err := p.SignInWithPassword(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("SignInWithPassword failed: %v", err)
	}
	if session.AccessToken != "tok-1" || session.User.Email != "a@b.c" || session.User.Name() != "Alice" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.ExpiresAt == 0 {
		t.Fatal("expected expiry computed from expires_in")
	}

	// A second provider over the same storage resumes the session.
	other := auth.NewSupabaseProvider(config.SupabaseConfig{URL: srv.URL, AnonKey: "anon"}, local, srv.Client(), nil)
	resumed, err := other.GetSession(context.Background())
	if err != nil || resumed == nil || resumed.AccessToken != "tok-1" {
		t.Fatalf("expected resumed session, got %+v, %v", resumed, err)
	}
	if len(events) != 1 || events[0] != auth.EventSignedIn {
		t.Fatalf("unexpected events %v", events)
	}
}

func TestSupabaseSignInError(t *testing.T) {
	srv, _ := newGoTrue(t)
	p := auth.NewSupabaseProvider(config.SupabaseConfig{URL: srv.URL, AnonKey: "anon"}, storage.NewMemoryStorage(), srv.Client(), nil)

	_, err := p.SignInWithPassword(context.Background(), "a@b.c", "wrong")
	var perr *auth.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Status != 400 || perr.Code != "invalid_grant" || perr.Error() != "Invalid login credentials" {
		t.Fatalf("unexpected error %+v", perr)
	}
}

func TestSupabaseSignOutForgetsSession(t *testing.T) {
	srv, calls := newGoTrue(t)
	local := storage.NewMemoryStorage()
	p := auth.NewSupabaseProvider(config.SupabaseConfig{URL: srv.URL, AnonKey: "anon"}, local, srv.Client(), nil)

	if _, err := p.SignInWithPassword(context.Background(), "a@b.c", "secret"); err != nil {
		t.Fatal(err)
	}
	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if _, ok := local.GetItem(storage.SessionKey); ok {
		t.Fatal("expected session removed")
	}
	if last := (*calls)[len(*calls)-1]; last != "POST /auth/v1/logout" {
		t.Fatalf("expected logout call, got %q", last)
	}
}

func TestUnreadableSessionIsDiscarded(t *testing.T) {
	local := storage.NewMemoryStorage()
	local.SetItem(storage.SessionKey, "{broken")
	p := auth.NewSupabaseProvider(config.SupabaseConfig{URL: "http://localhost", AnonKey: "anon"}, local, nil, nil)

	session, err := p.GetSession(context.Background())
	if session != nil || err != nil {
		t.Fatalf("expected no session, got %+v, %v", session, err)
	}
	if _, ok := local.GetItem(storage.SessionKey); ok {
		t.Fatal("expected broken session removed")
	}
}

type fakeProvider struct {
	session   *auth.Session
	signInErr error
	listener  func(auth.Event, *auth.Session)
	unsubbed  bool
	signedOut bool
}

func (f *fakeProvider) GetSession(context.Context) (*auth.Session, error) { return f.session, nil }

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &auth.Session{AccessToken: "new-token", User: &auth.User{ID: "u2", Email: email}}, nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.signedOut = true
	return nil
}

func (f *fakeProvider) OnAuthStateChange(fn func(auth.Event, *auth.Session)) func() {
	f.listener = fn
	return func() { f.unsubbed = true }
}

func TestContextInitStoresToken(t *testing.T) {
	local := storage.NewMemoryStorage()
	provider := &fakeProvider{session: &auth.Session{AccessToken: "tok", User: &auth.User{ID: "u1"}}}
	c := auth.NewContext(provider, local, nil)

	if !c.IsLoading() {
		t.Fatal("expected loading before Init")
	}
	c.Init(context.Background())

	if c.IsLoading() || c.User() == nil || c.User().ID != "u1" {
		t.Fatalf("unexpected state %+v", c.Snapshot())
	}
	if tok, _ := local.GetItem(storage.AccessTokenKey); tok != "tok" {
		t.Fatalf("expected token stored, got %q", tok)
	}
}

func TestContextFollowsProviderEvents(t *testing.T) {
	local := storage.NewMemoryStorage()
	provider := &fakeProvider{}
	c := auth.NewContext(provider, local, nil)
	c.Init(context.Background())

	if c.Authenticated() {
		t.Fatal("expected signed out")
	}

	provider.listener(auth.EventSignedIn, &auth.Session{AccessToken: "t2", User: &auth.User{ID: "u3"}})
	if tok, _ := local.GetItem(storage.AccessTokenKey); tok != "t2" || c.User().ID != "u3" {
		t.Fatalf("sign-in not mirrored: %q %+v", tok, c.User())
	}

	provider.listener(auth.EventSignedOut, nil)
	if _, ok := local.GetItem(storage.AccessTokenKey); ok || c.User() != nil {
		t.Fatal("sign-out not mirrored")
	}

	c.Close()
	if !provider.unsubbed {
		t.Fatal("Close must unsubscribe")
	}
}

func TestContextLoginAndLogout(t *testing.T) {
	local := storage.NewMemoryStorage()
	provider := &fakeProvider{}
	c := auth.NewContext(provider, local, nil)
	c.Init(context.Background())

	if err := c.Login(context.Background(), "x@y.z", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tok, _ := local.GetItem(storage.AccessTokenKey); tok != "new-token" {
		t.Fatalf("expected token stored, got %q", tok)
	}
	if c.User() == nil || c.User().Email != "x@y.z" {
		t.Fatalf("unexpected user %+v", c.User())
	}

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := local.GetItem(storage.AccessTokenKey); ok || c.User() != nil || !provider.signedOut {
		t.Fatal("expected signed out state")
	}
}

func TestContextLoginReturnsProviderError(t *testing.T) {
	want := &auth.ProviderError{Status: 400, Message: "Invalid login credentials"}
	c := auth.NewContext(&fakeProvider{signInErr: want}, storage.NewMemoryStorage(), nil)
	c.Init(context.Background())

	if err := c.Login(context.Background(), "x@y.z", "bad"); err != want {
		t.Fatalf("expected provider error, got %v", err)
	}
	if c.Authenticated() {
		t.Fatal("must stay signed out")
	}
}
