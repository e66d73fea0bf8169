// Package interviews lists the signed-in user's past interviews.
package interviews

import (
	"context"
	"log/slog"

	"entervio-client/internal/api"
	"entervio-client/internal/observability"
	"entervio-client/internal/store"
)

const (
	errUnauthorized = "Non autorisé. Veuillez vous connecter."
	errLoadFailed   = "Erreur lors du chargement des entretiens"
)

type State struct {
	Interviews []api.Interview
	Loading    bool
	Error      string

	request uint64
}

type Backend interface {
	ListInterviews(ctx context.Context) ([]api.Interview, error)
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
		log:     logger.With("component", "interviews"),
	}
}

func (s *Store) Snapshot() State { return s.state.Snapshot() }

func (s *Store) Subscribe(fn func(State)) func() { return s.state.Subscribe(fn) }

// Fetch reloads the list. Only the latest Fetch may write its outcome.
func (s *Store) Fetch(ctx context.Context) bool {
	var req uint64
	s.state.Update(func(st *State) {
		st.request++
		req = st.request
		st.Loading = true
		st.Error = ""
	})
	latest := func(st State) bool { return st.request == req }

	list, err := s.backend.ListInterviews(ctx)
	if err != nil {
		s.log.Error("failed to fetch interviews", "error", err)
		msg := errLoadFailed
		if api.IsUnauthorized(err) {
			msg = errUnauthorized
		}
		s.state.UpdateIf(latest, func(st *State) {
			st.Error = msg
			st.Loading = false
		})
		return false
	}

	if list == nil {
		list = []api.Interview{}
	}
	return s.state.UpdateIf(latest, func(st *State) {
		st.Interviews = list
		st.Loading = false
	})
}

// Find returns the interview with the given id from the loaded list.
func (s State) Find(id int) (api.Interview, bool) {
	for _, iv := range s.Interviews {
		if iv.ID == id {
			return iv, true
		}
	}
	return api.Interview{}, false
}

func (s *Store) Reset() {
	s.state.Update(func(st *State) {
		*st = State{Loading: true, request: st.request + 1}
	})
}
