// Package interview drives a live interview session: loading it, recording
// answers, playing the interviewer's voice and ending it.
package interview

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"entervio-client/internal/api"
	"entervio-client/internal/media"
	"entervio-client/internal/metrics"
	"entervio-client/internal/observability"
	"entervio-client/internal/store"

	"github.com/google/uuid"
)

// Backend is the part of the API client the session needs.
type Backend interface {
	GetInterviewInfo(ctx context.Context, sessionID string) (*api.InterviewInfo, error)
	GetConversationHistory(ctx context.Context, sessionID string) (*api.ConversationHistory, error)
	SubmitResponse(ctx context.Context, sessionID string, audio io.Reader, language string) (*api.RespondResult, error)
	EndInterview(ctx context.Context, sessionID string) (*api.EndResult, error)
	GetAudio(ctx context.Context, sessionID, text string) (*api.AudioResource, error)
}

type Options struct {
	Backend  Backend
	Capture  media.AudioCapture
	Player   media.AudioPlayer
	Language string
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

// Store is the interview session. All methods are safe for concurrent use;
// blocking ones run until their request (and any playback) completes.
type Store struct {
	state *store.Store[State]

	backend  Backend
	capture  media.AudioCapture
	player   media.AudioPlayer
	language string
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	generation  uint64
	recorder    media.CaptureSession
	playback    media.Playback
	playbackSeq uint64
}

func NewStore(opts Options) *Store {
	if opts.Language == "" {
		opts.Language = api.DefaultLanguage
	}
	if opts.Logger == nil {
		opts.Logger = observability.Logger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		state:    store.New(initialState(0)),
		backend:  opts.Backend,
		capture:  opts.Capture,
		player:   opts.Player,
		language: opts.Language,
		metrics:  opts.Metrics,
		log:      opts.Logger.With("component", "interview"),
		now:      opts.Now,
	}
}

func (s *Store) Snapshot() State { return s.state.Snapshot() }

func (s *Store) Subscribe(fn func(State)) func() { return s.state.Subscribe(fn) }

// update applies fn only while the store still belongs to generation gen.
func (s *Store) update(gen uint64, fn func(*State)) bool {
	return s.state.UpdateIf(func(st State) bool { return st.generation == gen }, fn)
}

// Load fetches the session and its history. A second Load for an id that is
// already loading returns true without any request. An empty id fails.
func (s *Store) Load(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	var gen uint64
	started := s.state.UpdateIf(
		func(st State) bool { return st.LoadingInterviewID != sessionID },
		func(st *State) {
			gen = st.generation
			st.LoadingInterviewID = sessionID
			st.IsLoading = true
			st.Error = ""
			st.Phase = PhaseLoading
		},
	)
	if !started {
		return true
	}
	log := s.log.With("session_id", sessionID)

	info, err := s.backend.GetInterviewInfo(ctx, sessionID)
	if err != nil {
		log.Error("failed to load interview", "error", err)
		msg := errLoadFailed
		if api.IsNotFound(err) {
			msg = errSessionNotFound
		}
		s.update(gen, func(st *State) {
			st.Error = msg
			st.IsLoading = false
			st.LoadingInterviewID = ""
			st.Phase = PhaseIdle
		})
		return false
	}

	if !s.update(gen, func(st *State) {
		st.Identity = Identity{
			SessionID:        info.SessionID,
			CandidateName:    info.CandidateName,
			InterviewerStyle: info.InterviewerStyle,
		}
		st.QuestionCount = info.QuestionCount
		st.InterviewStarted = true
	}) {
		return false
	}

	s.LoadConversationHistory(ctx, info.SessionID)

	s.update(gen, func(st *State) { st.LoadingInterviewID = "" })
	return true
}

// LoadConversationHistory replaces the messages with the server history and
// replays the last assistant line. Failures are logged and leave the session
// usable.
func (s *Store) LoadConversationHistory(ctx context.Context, sessionID string) {
	gen := s.Snapshot().generation

	history, err := s.backend.GetConversationHistory(ctx, sessionID)
	if err != nil {
		s.log.Warn("failed to load conversation history", "session_id", sessionID, "error", err)
		s.update(gen, func(st *State) {
			st.IsLoading = false
			st.Phase = PhaseReady
		})
		return
	}

	now := s.now()
	messages := make([]Message, 0, len(history.History))
	for _, m := range history.History {
		role := RoleUser
		if m.Role == string(RoleAssistant) {
			role = RoleAssistant
		}
		messages = append(messages, s.newMessage(role, m.Content, now))
	}

	if !s.update(gen, func(st *State) {
		st.Messages = messages
		st.IsLoading = false
		st.Phase = PhaseReady
	}) {
		return
	}

	if n := len(messages); n > 0 && messages[n-1].Role == RoleAssistant {
		s.PlayAudio(ctx, sessionID, messages[n-1].Text)
	}
}

// PlayAudio speaks text with the interviewer's voice and blocks until the
// playback ends. A newer call pauses this one first.
func (s *Store) PlayAudio(ctx context.Context, sessionID, text string) {
	gen := s.Snapshot().generation
	s.update(gen, func(st *State) { st.IsPlayingAudio = true })

	s.mu.Lock()
	prev := s.playback
	s.playback = nil
	s.playbackSeq++
	seq := s.playbackSeq
	s.mu.Unlock()
	if prev != nil {
		prev.Pause()
	}

	log := s.log.With("session_id", sessionID)
	res, err := s.backend.GetAudio(ctx, sessionID, text)
	if err != nil {
		log.Error("failed to fetch audio", "error", err)
		s.finishPlayback(gen, seq)
		return
	}
	defer func() {
		if err := res.Revoke(); err != nil {
			log.Warn("failed to release audio", "path", res.Path, "error", err)
		}
	}()

	s.mu.Lock()
	if s.playbackSeq != seq {
		s.mu.Unlock()
		return
	}
	pb, err := s.player.Play(ctx, res.Path)
	if err != nil {
		s.mu.Unlock()
		log.Error("failed to play audio", "error", err)
		s.finishPlayback(gen, seq)
		return
	}
	s.playback = pb
	s.mu.Unlock()
	s.metrics.IncrementPlaybacksStarted()

	if err := pb.Wait(); err != nil && !errors.Is(err, media.ErrPaused) {
		log.Error("audio playback failed", "error", err)
	}
	s.finishPlayback(gen, seq)
}

// finishPlayback clears the playing flag unless a newer playback took over.
func (s *Store) finishPlayback(gen, seq uint64) {
	s.mu.Lock()
	current := s.playbackSeq == seq
	if current {
		s.playback = nil
	}
	s.mu.Unlock()
	if current {
		s.update(gen, func(st *State) { st.IsPlayingAudio = false })
	}
}

// StartRecording opens the microphone. When access is refused the error is
// shown and the session stays ready.
func (s *Store) StartRecording(ctx context.Context) {
	s.mu.Lock()
	if s.recorder != nil {
		s.mu.Unlock()
		return
	}
	gen := s.generation
	session, err := s.capture.Start(ctx)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("failed to access microphone", "error", err)
		s.update(gen, func(st *State) { st.Error = errMicrophone })
		return
	}
	s.recorder = session
	s.mu.Unlock()

	s.metrics.IncrementRecordingsStarted()
	s.update(gen, func(st *State) {
		st.IsRecording = true
		st.Error = ""
		st.Phase = PhaseRecording
	})
}

// StopRecording releases the microphone and submits what was captured.
func (s *Store) StopRecording(ctx context.Context) {
	s.mu.Lock()
	rec := s.recorder
	s.recorder = nil
	gen := s.generation
	s.mu.Unlock()
	if rec == nil {
		return
	}

	chunks, err := rec.Stop()
	if err != nil {
		s.log.Error("recording failed", "error", err)
		s.update(gen, func(st *State) {
			st.IsRecording = false
			st.Error = errMicrophone
			st.Phase = PhaseReady
		})
		return
	}
	s.update(gen, func(st *State) {
		st.IsRecording = false
		st.Phase = PhaseReady
	})

	s.processRecording(ctx, gen, chunks)
}

func (s *Store) processRecording(ctx context.Context, gen uint64, chunks [][]byte) {
	sessionID := s.Snapshot().SessionID
	if sessionID == "" || totalSize(chunks) == 0 {
		return
	}

	if !s.update(gen, func(st *State) {
		st.IsProcessing = true
		st.Phase = PhaseProcessing
	}) {
		return
	}

	log := s.log.With("session_id", sessionID)
	result, err := s.backend.SubmitResponse(ctx, sessionID, bytes.NewReader(bytes.Join(chunks, nil)), s.language)
	if err != nil {
		log.Error("failed to submit response", "error", err)
		s.update(gen, func(st *State) {
			st.Error = errProcessing
			st.IsProcessing = false
			st.Phase = PhaseReady
		})
		return
	}
	s.metrics.IncrementResponsesSubmitted()

	now := s.now()
	user := s.newMessage(RoleUser, result.Transcription, now)
	assistant := s.newMessage(RoleAssistant, result.Response, now)
	if !s.update(gen, func(st *State) {
		st.QuestionCount = result.QuestionCount
		st.IsFinished = result.IsFinished
		st.Messages = appendMessages(st.Messages, user, assistant)
	}) {
		return
	}

	s.PlayAudio(ctx, sessionID, result.Response)

	s.update(gen, func(st *State) {
		st.IsProcessing = false
		if st.Phase == PhaseProcessing {
			st.Phase = PhaseReady
		}
	})
}

// EndInterview closes the session on the server. Messages stay visible.
func (s *Store) EndInterview(ctx context.Context) bool {
	snap := s.Snapshot()
	if snap.SessionID == "" {
		return false
	}
	gen := snap.generation

	s.update(gen, func(st *State) {
		st.IsProcessing = true
		st.Phase = PhaseProcessing
	})

	result, err := s.backend.EndInterview(ctx, snap.SessionID)
	if err != nil {
		s.log.Error("failed to end interview", "session_id", snap.SessionID, "error", err)
		s.update(gen, func(st *State) {
			st.Error = errEndFailed
			st.IsProcessing = false
			st.Phase = PhaseReady
		})
		return false
	}
	s.metrics.IncrementInterviewsCompleted()

	return s.update(gen, func(st *State) {
		st.InterviewStarted = false
		st.IsProcessing = false
		st.Summary = result.Summary
		st.Phase = PhaseEnded
	})
}

func (s *Store) SetError(msg string) {
	s.state.Update(func(st *State) { st.Error = msg })
}

// Cleanup stops any playback and recording in progress.
func (s *Store) Cleanup() {
	s.mu.Lock()
	pb := s.playback
	s.playback = nil
	s.playbackSeq++
	rec := s.recorder
	s.recorder = nil
	s.mu.Unlock()

	if pb != nil {
		pb.Pause()
	}
	if rec != nil {
		if _, err := rec.Stop(); err != nil {
			s.log.Warn("failed to stop recording", "error", err)
		}
	}
	s.state.Update(func(st *State) {
		st.IsPlayingAudio = false
		st.IsRecording = false
		if st.Phase == PhaseRecording {
			st.Phase = PhaseReady
		}
	})
}

// Reset tears everything down and starts a new generation; results of
// requests still in flight are dropped.
func (s *Store) Reset() {
	s.Cleanup()
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()
	s.state.Set(initialState(gen))
}

func (s *Store) newMessage(role Role, text string, at time.Time) Message {
	return Message{ID: uuid.NewString(), Role: role, Text: text, Timestamp: at}
}

func appendMessages(cur []Message, more ...Message) []Message {
	out := make([]Message, 0, len(cur)+len(more))
	out = append(out, cur...)
	return append(out, more...)
}

func totalSize(chunks [][]byte) int {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	return n
}
