// Package jobs backs the job search page: keyword search, resume-driven
// smart search and labour market statistics.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"entervio-client/internal/api"
	"entervio-client/internal/observability"
	"entervio-client/internal/store"
)

const (
	errSearchFailed = "Failed to search jobs. Please check your inputs and try again."
	errSmartFailed  = "Failed to perform smart search. Ensure you have a resume uploaded."
	errStatsFailed  = "Impossible de charger les statistiques."
)

type State struct {
	Keywords     string
	Location     string
	Jobs         []api.JobOffer
	SmartParams  *api.SmartSearchParams
	Loading      bool
	SmartLoading bool
	Searched     bool
	Error        string

	Stats       json.RawMessage
	AccessStats json.RawMessage
}

// Busy reports whether a search is running; both buttons are disabled then.
func (s State) Busy() bool { return s.Loading || s.SmartLoading }

type Backend interface {
	SearchJobs(ctx context.Context, keywords, location string) (*api.JobSearchResult, error)
	SmartSearchJobs(ctx context.Context) (*api.JobSearchResult, error)
	GetJobStats(ctx context.Context, codeRome, codeGeographique string) (api.JobStats, error)
	GetAccessStats(ctx context.Context, codeRome, codeGeographique string) (api.JobStats, error)
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
		state:   store.New(State{}),
		backend: backend,
		log:     logger.With("component", "jobs"),
	}
}

func (s *Store) Snapshot() State { return s.state.Snapshot() }

func (s *Store) Subscribe(fn func(State)) func() { return s.state.Subscribe(fn) }

func (s *Store) SetKeywords(keywords string) {
	s.state.Update(func(st *State) { st.Keywords = keywords })
}

func (s *Store) SetLocation(location string) {
	s.state.Update(func(st *State) { st.Location = location })
}

// Search runs the keyword search with the current form values.
func (s *Store) Search(ctx context.Context) bool {
	var keywords, location string
	started := s.state.UpdateIf(
		func(st State) bool { return !st.Busy() },
		func(st *State) {
			keywords, location = strings.TrimSpace(st.Keywords), strings.TrimSpace(st.Location)
			st.Loading = true
			st.Error = ""
			st.Searched = true
			st.SmartParams = nil
		},
	)
	if !started {
		return false
	}

	data, err := s.backend.SearchJobs(ctx, keywords, location)
	if err != nil {
		s.log.Error("job search failed", "keywords", keywords, "location", location, "error", err)
		s.state.Update(func(st *State) {
			st.Error = errSearchFailed
			st.Jobs = []api.JobOffer{}
			st.Loading = false
		})
		return false
	}

	s.state.Update(func(st *State) {
		st.Jobs = orEmpty(data.Resultats)
		st.Loading = false
	})
	return true
}

// SmartSearch lets the backend derive the query from the uploaded resume and
// copies the derived keywords and location back into the form.
func (s *Store) SmartSearch(ctx context.Context) bool {
	started := s.state.UpdateIf(
		func(st State) bool { return !st.Busy() },
		func(st *State) {
			st.SmartLoading = true
			st.Error = ""
			st.Searched = true
		},
	)
	if !started {
		return false
	}

	data, err := s.backend.SmartSearchJobs(ctx)
	if err != nil {
		s.log.Error("smart search failed", "error", err)
		s.state.Update(func(st *State) {
			st.Error = errSmartFailed
			st.Jobs = []api.JobOffer{}
			st.SmartLoading = false
		})
		return false
	}

	if data.Message != "" && data.Resultats == nil {
		s.state.Update(func(st *State) {
			st.Error = data.Message
			st.Jobs = []api.JobOffer{}
			st.SmartLoading = false
		})
		return false
	}

	s.state.Update(func(st *State) {
		st.Jobs = orEmpty(data.Resultats)
		if p := data.SmartSearchParams; p != nil {
			st.SmartParams = p
			st.Keywords = p.Keywords
			st.Location = p.Location
		}
		st.SmartLoading = false
	})
	return true
}

// LoadStats fetches market and access statistics for a ROME code and area.
// Either may fail independently.
func (s *Store) LoadStats(ctx context.Context, codeRome, codeGeographique string) bool {
	stats, err := s.backend.GetJobStats(ctx, codeRome, codeGeographique)
	if err != nil {
		s.log.Error("failed to load job stats", "code_rome", codeRome, "error", err)
	}
	access, accessErr := s.backend.GetAccessStats(ctx, codeRome, codeGeographique)
	if accessErr != nil {
		s.log.Error("failed to load access stats", "code_rome", codeRome, "error", accessErr)
	}

	ok := err == nil && accessErr == nil
	s.state.Update(func(st *State) {
		st.Stats = json.RawMessage(stats)
		st.AccessStats = json.RawMessage(access)
		st.Error = ""
		if !ok {
			st.Error = errStatsFailed
		}
	})
	return ok
}

func orEmpty(jobs []api.JobOffer) []api.JobOffer {
	if jobs == nil {
		return []api.JobOffer{}
	}
	return jobs
}
