package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"entervio-client/internal/config"
	"entervio-client/internal/observability"
	"entervio-client/internal/storage"
)

// ProviderError is an error reported by the identity provider.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("auth request failed: %d", e.Status)
}

// SupabaseProvider talks to the GoTrue REST API and keeps the session in
// local storage so later processes start signed in. Tokens are not
// refreshed; an expired session counts as signed out.
type SupabaseProvider struct {
	cfg     config.SupabaseConfig
	client  *http.Client
	storage storage.LocalStorage
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	listeners map[int]func(Event, *Session)
	nextID    int
}

func NewSupabaseProvider(cfg config.SupabaseConfig, store storage.LocalStorage, client *http.Client, logger *slog.Logger) *SupabaseProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = observability.Logger()
	}
	return &SupabaseProvider{
		cfg:       cfg,
		client:    client,
		storage:   store,
		log:       logger.With("component", "supabase"),
		now:       time.Now,
		listeners: make(map[int]func(Event, *Session)),
	}
}

func (p *SupabaseProvider) GetSession(ctx context.Context) (*Session, error) {
	raw, ok := p.storage.GetItem(storage.SessionKey)
	if !ok || raw == "" {
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		p.log.Warn("discarding unreadable session", "error", err)
		_ = p.storage.RemoveItem(storage.SessionKey)
		return nil, nil
	}
	if session.AccessToken == "" || session.Expired(p.now()) {
		return nil, nil
	}
	return &session, nil
}

func (p *SupabaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := p.post(ctx, "/auth/v1/token?grant_type=password", "", body, &session); err != nil {
		return nil, err
	}
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = p.now().Add(time.Duration(session.ExpiresIn) * time.Second).Unix()
	}

	if err := p.saveSession(&session); err != nil {
		return nil, err
	}
	p.log.Info("signed in", "user_id", userID(&session))
	p.emit(EventSignedIn, &session)
	return &session, nil
}

// SignOut revokes the session server side when possible and always forgets
// it locally.
func (p *SupabaseProvider) SignOut(ctx context.Context) error {
	session, _ := p.GetSession(ctx)

	var remoteErr error
	if session != nil {
		remoteErr = p.post(ctx, "/auth/v1/logout", session.AccessToken, nil, nil)
		if remoteErr != nil {
			p.log.Warn("remote sign out failed", "error", remoteErr)
		}
	}

	if err := p.storage.RemoveItem(storage.SessionKey); err != nil {
		return fmt.Errorf("forgetting session: %w", err)
	}
	p.emit(EventSignedOut, nil)
	return remoteErr
}

func (p *SupabaseProvider) OnAuthStateChange(fn func(Event, *Session)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

func (p *SupabaseProvider) emit(event Event, session *Session) {
	p.mu.Lock()
	fns := make([]func(Event, *Session), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(event, session)
	}
}

func (p *SupabaseProvider) saveSession(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := p.storage.SetItem(storage.SessionKey, string(data)); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (p *SupabaseProvider) post(ctx context.Context, path, token string, body []byte, out any) error {
	if err := p.cfg.ValidateConfig(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.cfg.URL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.cfg.AnonKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return providerError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// providerError reads the GoTrue error shapes: {error, error_description}
// from the token endpoint and {code, error_code, msg} elsewhere.
func providerError(status int, body []byte) error {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	e := &ProviderError{Status: status, Code: payload.ErrorCode}
	if e.Code == "" {
		e.Code = payload.Error
	}
	for _, msg := range []string{payload.ErrorDescription, payload.Msg, payload.Message, payload.Error} {
		if msg != "" {
			e.Message = msg
			break
		}
	}
	return e
}

func userID(s *Session) string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}
