// Package setup holds the pre-interview form: candidate, resume, persona and
// job description, and starts the interview from it.
package setup

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"entervio-client/internal/api"
	"entervio-client/internal/config"
	"entervio-client/internal/metrics"
	"entervio-client/internal/observability"
	"entervio-client/internal/store"
)

const (
	errNoInterviewer = "Veuillez sélectionner un type de recruteur"
	errUnavailable   = "Service non disponible"
	errStartFailed   = "Impossible de démarrer l'entretien. Veuillez réessayer."
	errUploadFailed  = "Échec de l'envoi du CV. Veuillez réessayer."
)

type State struct {
	CandidateName       string
	SelectedInterviewer *config.Persona
	CandidateID         *int
	JobDescription      string
	Skills              []string
	Error               string
	IsStarting          bool
	IsUploading         bool
}

type Backend interface {
	UploadResume(ctx context.Context, filename string, file io.Reader) (*api.UploadResumeResponse, error)
	GetMe(ctx context.Context) (*api.Candidate, error)
	StartInterview(ctx context.Context, in api.StartInterviewRequest) (*api.StartInterviewResponse, error)
}

type Store struct {
	state   *store.Store[State]
	backend Backend
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewStore(backend Backend, m *metrics.Metrics, logger *slog.Logger) *Store {
	if logger == nil {
		logger = observability.Logger()
	}
	return &Store{
		state:   store.New(State{}),
		backend: backend,
		metrics: m,
		log:     logger.With("component", "setup"),
	}
}

func (s *Store) Snapshot() State { return s.state.Snapshot() }

func (s *Store) Subscribe(fn func(State)) func() { return s.state.Subscribe(fn) }

func (s *Store) SetCandidateName(name string) {
	s.state.Update(func(st *State) {
		st.CandidateName = name
		st.Error = ""
	})
}

func (s *Store) SelectInterviewer(p config.Persona) {
	s.state.Update(func(st *State) {
		st.SelectedInterviewer = &p
		st.Error = ""
	})
}

func (s *Store) SetJobDescription(description string) {
	s.state.Update(func(st *State) {
		st.JobDescription = description
		st.Error = ""
	})
}

func (s *Store) SetError(msg string) {
	s.state.Update(func(st *State) { st.Error = msg })
}

// UploadResume sends the PDF and links the parsed candidate to the form.
func (s *Store) UploadResume(ctx context.Context, filename string, file io.Reader) bool {
	s.state.Update(func(st *State) {
		st.IsUploading = true
		st.Error = ""
	})

	data, err := s.backend.UploadResume(ctx, filename, file)
	if err != nil {
		s.log.Error("error uploading resume", "file", filename, "error", err)
		s.state.Update(func(st *State) {
			st.Error = errUploadFailed
			st.IsUploading = false
		})
		return false
	}

	candidate := api.Candidate{Skills: data.Skills}
	skills := candidate.SkillList()
	s.state.Update(func(st *State) {
		id := data.CandidateID
		st.CandidateID = &id
		if data.Name != "" {
			st.CandidateName = data.Name
		}
		st.Skills = skills
		st.IsUploading = false
	})
	return true
}

// CheckResumeStatus picks up a resume uploaded earlier. Failures are only
// logged.
func (s *Store) CheckResumeStatus(ctx context.Context) {
	me, err := s.backend.GetMe(ctx)
	if err != nil {
		s.log.Warn("error checking resume status", "error", err)
		return
	}
	if !me.HasResume {
		return
	}
	skills := me.SkillList()
	s.state.Update(func(st *State) {
		id := me.CandidateID
		st.CandidateID = &id
		if me.Name != "" {
			st.CandidateName = me.Name
		}
		st.Skills = skills
	})
}

// StartInterview creates the session and returns its id.
func (s *Store) StartInterview(ctx context.Context) (string, bool) {
	snap := s.Snapshot()
	if snap.SelectedInterviewer == nil {
		s.SetError(errNoInterviewer)
		return "", false
	}

	s.state.Update(func(st *State) {
		st.IsStarting = true
		st.Error = ""
	})

	req := api.StartInterviewRequest{
		CandidateName:   strings.TrimSpace(snap.CandidateName),
		InterviewerType: snap.SelectedInterviewer.Type,
		JobDescription:  strings.TrimSpace(snap.JobDescription),
	}
	if snap.CandidateID != nil && *snap.CandidateID != 0 {
		id := *snap.CandidateID
		req.CandidateID = &id
	}

	data, err := s.backend.StartInterview(ctx, req)
	if err != nil {
		s.log.Error("error starting interview", "interviewer", req.InterviewerType, "error", err)
		msg := errStartFailed
		if api.IsNotFound(err) {
			msg = errUnavailable
		}
		s.state.Update(func(st *State) {
			st.Error = msg
			st.IsStarting = false
		})
		return "", false
	}

	s.metrics.IncrementInterviewsStarted()
	s.log.Info("interview started", "session_id", data.SessionID, "interviewer", req.InterviewerType)
	s.state.Update(func(st *State) { st.IsStarting = false })
	return data.SessionID, true
}

func (s *Store) Reset() {
	s.state.Set(State{})
}
