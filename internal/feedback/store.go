// Package feedback loads the graded summary of a finished interview.
package feedback

import (
	"context"
	"fmt"
	"log/slog"

	"entervio-client/internal/api"
	"entervio-client/internal/observability"
	"entervio-client/internal/store"
)

const (
	errMissingID = "ID d'entretien manquant"
	errNotFound  = "Résumé non trouvé"
)

type State struct {
	InterviewID string
	Summary     *api.InterviewSummary
	Loading     bool
	Error       string

	request uint64
}

type Backend interface {
	GetInterviewSummary(ctx context.Context, interviewID string) (*api.InterviewSummary, error)
}

type Store struct {
	state   *store.Store[State]
	backend Backend
	log     *slog.Logger
}

func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = observability.Logger()
	}
	return &Store{
		state:   store.New(State{Loading: true}),
		backend: backend,
		log:     logger.With("component", "feedback"),
	}
}

func (s *Store) Snapshot() State { return s.state.Snapshot() }

func (s *Store) Subscribe(fn func(State)) func() { return s.state.Subscribe(fn) }

// Fetch loads the summary for interviewID. Only the latest Fetch may write
// its outcome.
func (s *Store) Fetch(ctx context.Context, interviewID string) bool {
	if interviewID == "" {
		s.state.Update(func(st *State) {
			st.request++
			st.Error = errMissingID
			st.Loading = false
		})
		return false
	}

	var req uint64
	s.state.Update(func(st *State) {
		st.request++
		req = st.request
		st.InterviewID = interviewID
		st.Loading = true
		st.Error = ""
	})
	latest := func(st State) bool { return st.request == req }

	summary, err := s.backend.GetInterviewSummary(ctx, interviewID)
	if err != nil {
		s.log.Error("error fetching summary", "interview_id", interviewID, "error", err)
		msg := err.Error()
		if status := api.StatusOf(err); status == 404 {
			msg = errNotFound
		} else if status != 0 {
			msg = fmt.Sprintf("Erreur: %d", status)
		}
		s.state.UpdateIf(latest, func(st *State) {
			st.Error = msg
			st.Loading = false
		})
		return false
	}

	return s.state.UpdateIf(latest, func(st *State) {
		st.Summary = summary
		st.Loading = false
	})
}

func (s *Store) Reset() {
	s.state.Update(func(st *State) {
		*st = State{Loading: true, request: st.request + 1}
	})
}
