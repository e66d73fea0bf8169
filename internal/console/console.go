// Package console runs a live interview in the terminal: Enter toggles the
// microphone, slash commands drive the rest.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"entervio-client/internal/config"
	"entervio-client/internal/interview"
	"entervio-client/internal/observability"
	"entervio-client/internal/output"
	"entervio-client/internal/router"
)

// Console is one interactive interview. Actions run on the input loop, so a
// reply finishes playing before the next line is handled; cancelling the
// context stops both.
type Console struct {
	store   *interview.Store
	in      io.Reader
	out     *output.Formatter
	catalog *config.Catalog
	router  *router.Router
	log     *slog.Logger

	mu         sync.Mutex
	headerDone bool
	shown      int
	lastError  string
	lastPhase  interview.Phase
	lastCount  int
}

func New(store *interview.Store, in io.Reader, out *output.Formatter, catalog *config.Catalog, r *router.Router) *Console {
	return &Console{
		store:   store,
		in:      in,
		out:     out,
		catalog: catalog,
		router:  r,
		log:     observability.WithFields("component", "console"),
	}
}

// Run loads sessionID and handles input until the interview ends, the user
// quits or input is exhausted.
func (c *Console) Run(ctx context.Context, sessionID string) error {
	unsubscribe := c.store.Subscribe(c.render)
	defer unsubscribe()
	defer c.store.Cleanup()

	if !c.store.Load(ctx, sessionID) {
		if msg := c.store.Snapshot().Error; msg != "" {
			return errors.New(msg)
		}
		return ctx.Err()
	}

	done := make(chan struct{})
	defer close(done)
	lines := readLines(c.in, done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			finished, err := c.handleInput(ctx, strings.TrimSpace(line))
			if finished {
				return err
			}
		}
	}
}

// handleInput reports whether the session is over.
func (c *Console) handleInput(ctx context.Context, line string) (bool, error) {
	switch line {
	case "", "r":
		c.toggleRecording(ctx)
	case "/replay":
		c.handleReplay(ctx)
	case "/status":
		st := c.store.Snapshot()
		c.out.InterviewStatus(string(st.Phase), st.QuestionCount, st.IsPlayingAudio)
	case "/end":
		return c.handleEnd(ctx)
	case "/help":
		c.out.ConsoleHelp()
	case "/quit", "/q":
		return true, nil
	default:
		c.out.Warning("Commande inconnue. Utilisez /help pour la liste des commandes.")
	}
	return false, nil
}

func (c *Console) toggleRecording(ctx context.Context) {
	st := c.store.Snapshot()
	switch {
	case st.Phase == interview.PhaseEnded:
		c.out.Info("L'entretien est terminé.")
	case st.IsRecording:
		c.store.StopRecording(ctx)
	case st.IsProcessing || st.IsLoading:
		c.out.Info("Veuillez patienter...")
	default:
		c.store.StartRecording(ctx)
	}
}

func (c *Console) handleReplay(ctx context.Context) {
	st := c.store.Snapshot()
	for i := len(st.Messages) - 1; i >= 0; i-- {
		if st.Messages[i].Role == interview.RoleAssistant {
			c.store.PlayAudio(ctx, st.SessionID, st.Messages[i].Text)
			return
		}
	}
	c.out.Info("Aucune question à réécouter.")
}

func (c *Console) handleEnd(ctx context.Context) (bool, error) {
	st := c.store.Snapshot()
	if st.IsRecording {
		c.store.Cleanup()
	}
	if !c.store.EndInterview(ctx) {
		return false, nil
	}

	st = c.store.Snapshot()
	next := ""
	if path, err := c.router.URL(router.RouteFeedback, "interviewId", st.SessionID); err == nil {
		next = "entervio open " + path
	} else {
		c.log.Warn("failed to build feedback path", "error", err)
	}
	c.out.InterviewEnded(st.Summary, next)
	return true, nil
}

// render prints what changed since the previous snapshot.
func (c *Console) render(st interview.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.headerDone && st.SessionID != "" {
		c.headerDone = true
		c.out.InterviewHeader(st.CandidateName, c.catalog.DisplayName(st.InterviewerStyle))
	}

	if len(st.Messages) < c.shown {
		c.shown = 0
	}
	for _, m := range st.Messages[c.shown:] {
		if m.Role == interview.RoleAssistant {
			c.out.AssistantMessage(m.Text)
		} else {
			c.out.UserMessage(m.Text)
		}
	}
	c.shown = len(st.Messages)

	if st.QuestionCount != c.lastCount {
		c.lastCount = st.QuestionCount
		if st.QuestionCount > 0 && st.Phase != interview.PhaseLoading {
			c.out.QuestionProgress(st.QuestionCount)
		}
	}

	if st.Error != c.lastError {
		c.lastError = st.Error
		if st.Error != "" {
			c.out.Error(st.Error)
		}
	}

	if st.Phase != c.lastPhase {
		c.lastPhase = st.Phase
		switch st.Phase {
		case interview.PhaseRecording:
			c.out.Recording()
		case interview.PhaseProcessing:
			c.out.Processing()
		}
	}
}

// readLines feeds lines from r until EOF or done. A read already blocked on
// stdin stays blocked; only the send is abandoned.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}
