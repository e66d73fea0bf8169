package interview_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"entervio-client/internal/api"
	"entervio-client/internal/interview"
	"entervio-client/internal/media"
	"entervio-client/internal/media/mediatest"
	"entervio-client/internal/metrics"
)

type fakeBackend struct {
	t *testing.T

	mu        sync.Mutex
	info      func(id string) (*api.InterviewInfo, error)
	history   func(id string) (*api.ConversationHistory, error)
	respond   func(id string, audio []byte) (*api.RespondResult, error)
	end       func(id string) (*api.EndResult, error)
	infoCalls int
	audio     []*api.AudioResource
	texts     []string
	endCalls  int
	lang      string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{
		t: t,
		info: func(id string) (*api.InterviewInfo, error) {
			return &api.InterviewInfo{SessionID: id, CandidateName: "Alice", InterviewerStyle: "nice", QuestionCount: 1}, nil
		},
		history: func(string) (*api.ConversationHistory, error) {
			return &api.ConversationHistory{}, nil
		},
		respond: func(string, []byte) (*api.RespondResult, error) {
			return &api.RespondResult{Transcription: "Bonjour", Response: "Parlez-moi de vous", QuestionCount: 2}, nil
		},
		end: func(string) (*api.EndResult, error) {
			return &api.EndResult{Summary: "Bien"}, nil
		},
	}
}

func (b *fakeBackend) GetInterviewInfo(ctx context.Context, id string) (*api.InterviewInfo, error) {
	b.mu.Lock()
	b.infoCalls++
	b.mu.Unlock()
	return b.info(id)
}

func (b *fakeBackend) GetConversationHistory(ctx context.Context, id string) (*api.ConversationHistory, error) {
	return b.history(id)
}

func (b *fakeBackend) SubmitResponse(ctx context.Context, id string, audio io.Reader, language string) (*api.RespondResult, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.lang = language
	b.mu.Unlock()
	return b.respond(id, data)
}

func (b *fakeBackend) EndInterview(ctx context.Context, id string) (*api.EndResult, error) {
	b.mu.Lock()
	b.endCalls++
	b.mu.Unlock()
	return b.end(id)
}

func (b *fakeBackend) GetAudio(ctx context.Context, id, text string) (*api.AudioResource, error) {
	path := filepath.Join(b.t.TempDir(), "speech.mp3")
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return nil, err
	}
	res := &api.AudioResource{Path: path, ContentType: "audio/mpeg"}
	b.mu.Lock()
	b.audio = append(b.audio, res)
	b.texts = append(b.texts, text)
	b.mu.Unlock()
	return res, nil
}

func (b *fakeBackend) spoken() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.texts...)
}

func newTestStore(t *testing.T, backend *fakeBackend, capture *mediatest.Capture, player *mediatest.Player) *interview.Store {
	t.Helper()
	return interview.NewStore(interview.Options{
		Backend: backend,
		Capture: capture,
		Player:  player,
		Metrics: metrics.NewMetrics(),
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoadPlaysLastAssistantMessage(t *testing.T) {
	backend := newFakeBackend(t)
	backend.history = func(string) (*api.ConversationHistory, error) {
		return &api.ConversationHistory{History: []api.ConversationMessage{
			{Role: "assistant", Content: "Bonjour Alice"},
			{Role: "user", Content: "Bonjour"},
			{Role: "assistant", Content: "Présentez-vous"},
		}}, nil
	}
	player := &mediatest.Player{AutoFinish: true}
	s := newTestStore(t, backend, &mediatest.Capture{}, player)

	if !s.Load(context.Background(), "s1") {
		t.Fatalf("Load returned false, error %q", s.Snapshot().Error)
	}

	st := s.Snapshot()
	if st.SessionID != "s1" || st.CandidateName != "Alice" || st.InterviewerStyle != "nice" {
		t.Fatalf("unexpected identity: %+v", st.Identity)
	}
	if len(st.Messages) != 3 || st.Messages[2].Role != interview.RoleAssistant {
		t.Fatalf("unexpected messages: %+v", st.Messages)
	}
	if st.Phase != interview.PhaseReady || st.IsLoading || st.LoadingInterviewID != "" {
		t.Fatalf("expected ready state, got %+v", st)
	}
	if !st.InterviewStarted {
		t.Fatal("expected interview started")
	}
	if got := backend.spoken(); len(got) != 1 || got[0] != "Présentez-vous" {
		t.Fatalf("expected last assistant line to be spoken, got %v", got)
	}
	if st.IsPlayingAudio {
		t.Fatal("expected playback flag cleared after playback")
	}
}

func TestLoadDoesNotSpeakUserMessage(t *testing.T) {
	backend := newFakeBackend(t)
	backend.history = func(string) (*api.ConversationHistory, error) {
		return &api.ConversationHistory{History: []api.ConversationMessage{
			{Role: "assistant", Content: "Bonjour"},
			{Role: "user", Content: "Salut"},
		}}, nil
	}
	player := &mediatest.Player{AutoFinish: true}
	s := newTestStore(t, backend, &mediatest.Capture{}, player)

	s.Load(context.Background(), "s1")
	if player.Count() != 0 {
		t.Fatalf("expected no playback, got %d", player.Count())
	}
}

func TestDuplicateLoadIsSuppressed(t *testing.T) {
	backend := newFakeBackend(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	backend.info = func(id string) (*api.InterviewInfo, error) {
		close(entered)
		<-release
		return &api.InterviewInfo{SessionID: id}, nil
	}
	s := newTestStore(t, backend, &mediatest.Capture{}, &mediatest.Player{AutoFinish: true})

	done := make(chan bool)
	go func() { done <- s.Load(context.Background(), "s1") }()
	<-entered

	if !s.Load(context.Background(), "s1") {
		t.Fatal("expected duplicate load to report true")
	}
	close(release)
	if !<-done {
		t.Fatal("first load failed")
	}

	backend.mu.Lock()
	calls := backend.infoCalls
	backend.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected one info request, got %d", calls)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &api.Error{Status: 404, Message: "Session not found"}, "Session non trouvée. Redirection..."},
		{"server error", &api.Error{Status: 500, Message: "Failed to get interview info: 500"}, "Impossible de charger l'entretien."},
		{"network", errors.New("connection refused"), "Impossible de charger l'entretien."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend(t)
			backend.info = func(string) (*api.InterviewInfo, error) { return nil, tt.err }
			s := newTestStore(t, backend, &mediatest.Capture{}, &mediatest.Player{})

			if s.Load(context.Background(), "s1") {
				t.Fatal("expected Load to fail")
			}
			st := s.Snapshot()
			if st.Error != tt.want {
				t.Fatalf("error = %q, want %q", st.Error, tt.want)
			}
			if st.IsLoading || st.LoadingInterviewID != "" {
				t.Fatalf("loading flags not cleared: %+v", st)
			}
		})
	}
}

func TestLoadWithoutSessionID(t *testing.T) {
	backend := newFakeBackend(t)
	s := newTestStore(t, backend, &mediatest.Capture{}, &mediatest.Player{})

	if s.Load(context.Background(), "") {
		t.Fatal("expected Load to fail for an empty id")
	}
	if backend.infoCalls != 0 {
		t.Fatalf("info calls = %d, want 0", backend.infoCalls)
	}
	if st := s.Snapshot(); st.Phase != interview.PhaseIdle || st.IsLoading {
		t.Fatalf("state changed: %+v", st)
	}
}

func TestHistoryFailureIsAbsorbed(t *testing.T) {
	backend := newFakeBackend(t)
	backend.history = func(string) (*api.ConversationHistory, error) {
		return nil, &api.Error{Status: 500, Message: "Failed to get conversation history: 500"}
	}
	s := newTestStore(t, backend, &mediatest.Capture{}, &mediatest.Player{})

	if !s.Load(context.Background(), "s1") {
		t.Fatal("expected Load to succeed without history")
	}
	st := s.Snapshot()
	if st.Error != "" || len(st.Messages) != 0 || st.Phase != interview.PhaseReady {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestMicrophoneDenied(t *testing.T) {
	backend := newFakeBackend(t)
	capture := &mediatest.Capture{Err: media.ErrPermissionDenied}
	s := newTestStore(t, backend, capture, &mediatest.Player{})
	s.Load(context.Background(), "s1")

	s.StartRecording(context.Background())

	st := s.Snapshot()
	if st.IsRecording || st.Phase != interview.PhaseReady {
		t.Fatalf("expected to stay ready, got %+v", st)
	}
	if st.Error != "Impossible d'accéder au microphone. Veuillez autoriser l'accès." {
		t.Fatalf("unexpected error %q", st.Error)
	}
}

func TestSecondStartWhileRecordingIsNoop(t *testing.T) {
	capture := &mediatest.Capture{Chunks: [][]byte{[]byte("a")}}
	s := newTestStore(t, newFakeBackend(t), capture, &mediatest.Player{AutoFinish: true})
	s.Load(context.Background(), "s1")

	s.StartRecording(context.Background())
	s.StartRecording(context.Background())
	if capture.Starts != 1 {
		t.Fatalf("expected one capture, got %d", capture.Starts)
	}
	if !s.Snapshot().IsRecording {
		t.Fatal("expected recording")
	}
}

func TestRecordAndRespond(t *testing.T) {
	backend := newFakeBackend(t)
	var uploaded []byte
	backend.respond = func(id string, audio []byte) (*api.RespondResult, error) {
		uploaded = audio
		return &api.RespondResult{Transcription: "Je suis développeuse", Response: "Pourquoi ce poste ?", QuestionCount: 3}, nil
	}
	capture := &mediatest.Capture{Chunks: [][]byte{[]byte("ab"), []byte("cd")}}
	player := &mediatest.Player{AutoFinish: true}
	s := newTestStore(t, backend, capture, player)
	s.Load(context.Background(), "s1")

	s.StartRecording(context.Background())
	if st := s.Snapshot(); st.Phase != interview.PhaseRecording {
		t.Fatalf("expected recording phase, got %s", st.Phase)
	}
	s.StopRecording(context.Background())

	if string(uploaded) != "abcd" {
		t.Fatalf("uploaded %q, want concatenated chunks", uploaded)
	}
	if backend.lang != "fr" {
		t.Fatalf("expected default language fr, got %q", backend.lang)
	}
	if capture.Sessions[0].Stopped != 1 {
		t.Fatal("expected microphone released")
	}

	st := s.Snapshot()
	if st.QuestionCount != 3 {
		t.Fatalf("question count = %d, want 3", st.QuestionCount)
	}
	if len(st.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(st.Messages))
	}
	if st.Messages[0].Role != interview.RoleUser || st.Messages[0].Text != "Je suis développeuse" {
		t.Fatalf("unexpected user message %+v", st.Messages[0])
	}
	if st.Messages[1].Role != interview.RoleAssistant || st.Messages[1].Text != "Pourquoi ce poste ?" {
		t.Fatalf("unexpected assistant message %+v", st.Messages[1])
	}
	if st.Messages[0].ID == st.Messages[1].ID {
		t.Fatal("message ids must be unique")
	}
	if st.IsProcessing || st.IsRecording || st.Phase != interview.PhaseReady {
		t.Fatalf("expected ready after processing, got %+v", st)
	}
	if got := backend.spoken(); len(got) != 1 || got[0] != "Pourquoi ce poste ?" {
		t.Fatalf("expected reply spoken, got %v", got)
	}
}

func TestEmptyRecordingIsNotSubmitted(t *testing.T) {
	backend := newFakeBackend(t)
	submitted := false
	backend.respond = func(string, []byte) (*api.RespondResult, error) {
		submitted = true
		return &api.RespondResult{}, nil
	}
	s := newTestStore(t, backend, &mediatest.Capture{}, &mediatest.Player{AutoFinish: true})
	s.Load(context.Background(), "s1")

	s.StartRecording(context.Background())
	s.StopRecording(context.Background())

	if submitted {
		t.Fatal("empty recording must not be submitted")
	}
	if st := s.Snapshot(); st.Phase != interview.PhaseReady || st.IsProcessing {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestRecordingWithoutSessionIsNotSubmitted(t *testing.T) {
	backend := newFakeBackend(t)
	submitted := false
	backend.respond = func(string, []byte) (*api.RespondResult, error) {
		submitted = true
		return &api.RespondResult{}, nil
	}
	capture := &mediatest.Capture{Chunks: [][]byte{[]byte("x")}}
	s := newTestStore(t, backend, capture, &mediatest.Player{AutoFinish: true})

	s.StartRecording(context.Background())
	s.StopRecording(context.Background())

	if submitted {
		t.Fatal("recording without a session must not be submitted")
	}
}

func TestRespondFailure(t *testing.T) {
	backend := newFakeBackend(t)
	backend.respond = func(string, []byte) (*api.RespondResult, error) {
		return nil, &api.Error{Status: 500, Message: "Failed to submit response: 500"}
	}
	capture := &mediatest.Capture{Chunks: [][]byte{[]byte("x")}}
	s := newTestStore(t, backend, capture, &mediatest.Player{AutoFinish: true})
	s.Load(context.Background(), "s1")

	s.StartRecording(context.Background())
	s.StopRecording(context.Background())

	st := s.Snapshot()
	if st.Error != "Erreur lors du traitement de votre réponse. Veuillez réessayer." {
		t.Fatalf("unexpected error %q", st.Error)
	}
	if st.IsProcessing || len(st.Messages) != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSinglePlayback(t *testing.T) {
	backend := newFakeBackend(t)
	player := &mediatest.Player{}
	s := newTestStore(t, backend, &mediatest.Capture{}, player)

	first := make(chan struct{})
	go func() {
		s.PlayAudio(context.Background(), "s1", "première")
		close(first)
	}()
	waitFor(t, "first playback", func() bool { return player.Count() == 1 })
	firstPlayback := player.Last()

	second := make(chan struct{})
	go func() {
		s.PlayAudio(context.Background(), "s1", "seconde")
		close(second)
	}()
	waitFor(t, "second playback", func() bool { return player.Count() == 2 })

	<-first
	if !firstPlayback.IsPaused() {
		t.Fatal("expected first playback paused")
	}
	if !s.Snapshot().IsPlayingAudio {
		t.Fatal("first playback ending must not clear the flag of the second")
	}

	player.Last().Finish(nil)
	<-second

	if player.MaxActive != 1 {
		t.Fatalf("expected at most one active playback, got %d", player.MaxActive)
	}
	want := []string{"play", "pause", "play"}
	if len(player.Events) != len(want) {
		t.Fatalf("events = %v, want %v", player.Events, want)
	}
	for i := range want {
		if player.Events[i] != want[i] {
			t.Fatalf("events = %v, want %v", player.Events, want)
		}
	}
	if s.Snapshot().IsPlayingAudio {
		t.Fatal("expected playback flag cleared")
	}
	for _, res := range backend.audio {
		if _, err := os.Stat(res.Path); !os.IsNotExist(err) {
			t.Fatalf("expected %s released", res.Path)
		}
	}
}

func TestPlaybackErrorClearsFlag(t *testing.T) {
	backend := newFakeBackend(t)
	player := &mediatest.Player{Err: errors.New("no audio device")}
	s := newTestStore(t, backend, &mediatest.Capture{}, player)

	s.PlayAudio(context.Background(), "s1", "bonjour")

	if s.Snapshot().IsPlayingAudio {
		t.Fatal("expected flag cleared after playback error")
	}
	if _, err := os.Stat(backend.audio[0].Path); !os.IsNotExist(err) {
		t.Fatal("expected audio released after playback error")
	}
}

func TestEndInterviewKeepsMessages(t *testing.T) {
	backend := newFakeBackend(t)
	backend.history = func(string) (*api.ConversationHistory, error) {
		return &api.ConversationHistory{History: []api.ConversationMessage{{Role: "user", Content: "Bonjour"}}}, nil
	}
	s := newTestStore(t, backend, &mediatest.Capture{}, &mediatest.Player{AutoFinish: true})
	s.Load(context.Background(), "s1")

	if !s.EndInterview(context.Background()) {
		t.Fatalf("EndInterview failed: %q", s.Snapshot().Error)
	}
	st := s.Snapshot()
	if st.InterviewStarted || st.Phase != interview.PhaseEnded {
		t.Fatalf("expected ended, got %+v", st)
	}
	if len(st.Messages) != 1 || st.Summary != "Bien" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestEndInterviewRequiresSession(t *testing.T) {
	backend := newFakeBackend(t)
	s := newTestStore(t, backend, &mediatest.Capture{}, &mediatest.Player{})

	if s.EndInterview(context.Background()) {
		t.Fatal("expected EndInterview to refuse without a session")
	}
	if backend.endCalls != 0 {
		t.Fatal("backend must not be called without a session")
	}
}

func TestEndInterviewFailure(t *testing.T) {
	backend := newFakeBackend(t)
	backend.end = func(string) (*api.EndResult, error) { return nil, errors.New("boom") }
	s := newTestStore(t, backend, &mediatest.Capture{}, &mediatest.Player{})
	s.Load(context.Background(), "s1")

	s.EndInterview(context.Background())
	st := s.Snapshot()
	if st.Error != "Erreur lors de la fin de l'entretien." || !st.InterviewStarted {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestResetDropsStaleResponse(t *testing.T) {
	backend := newFakeBackend(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.respond = func(string, []byte) (*api.RespondResult, error) {
		close(entered)
		<-release
		return &api.RespondResult{Transcription: "tard", Response: "trop tard", QuestionCount: 9}, nil
	}
	capture := &mediatest.Capture{Chunks: [][]byte{[]byte("x")}}
	s := newTestStore(t, backend, capture, &mediatest.Player{AutoFinish: true})
	s.Load(context.Background(), "s1")
	s.StartRecording(context.Background())

	done := make(chan struct{})
	go func() {
		s.StopRecording(context.Background())
		close(done)
	}()
	<-entered
	s.Reset()
	close(release)
	<-done

	st := s.Snapshot()
	if len(st.Messages) != 0 || st.QuestionCount != 0 || st.SessionID != "" {
		t.Fatalf("stale response leaked into reset state: %+v", st)
	}
	if st.Phase != interview.PhaseIdle || st.InterviewerStyle != "neutral" {
		t.Fatalf("expected initial state, got %+v", st)
	}
	if len(backend.spoken()) != 0 {
		t.Fatal("stale reply must not be spoken")
	}
}

func TestCleanupStopsPlaybackAndRecording(t *testing.T) {
	backend := newFakeBackend(t)
	player := &mediatest.Player{}
	capture := &mediatest.Capture{Chunks: [][]byte{[]byte("x")}}
	s := newTestStore(t, backend, capture, player)
	s.Load(context.Background(), "s1")

	done := make(chan struct{})
	go func() {
		s.PlayAudio(context.Background(), "s1", "bonjour")
		close(done)
	}()
	waitFor(t, "playback", func() bool { return player.Count() == 1 })
	s.StartRecording(context.Background())

	s.Cleanup()
	<-done

	if !player.Last().IsPaused() {
		t.Fatal("expected playback paused")
	}
	if capture.Sessions[0].Stopped != 1 {
		t.Fatal("expected recorder stopped")
	}
	st := s.Snapshot()
	if st.IsPlayingAudio || st.IsRecording {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSubscribersSeeProcessing(t *testing.T) {
	backend := newFakeBackend(t)
	capture := &mediatest.Capture{Chunks: [][]byte{[]byte("x")}}
	s := newTestStore(t, backend, capture, &mediatest.Player{AutoFinish: true})
	s.Load(context.Background(), "s1")

	var mu sync.Mutex
	var phases []interview.Phase
	unsubscribe := s.Subscribe(func(st interview.State) {
		mu.Lock()
		phases = append(phases, st.Phase)
		mu.Unlock()
	})
	defer unsubscribe()

	s.StartRecording(context.Background())
	s.StopRecording(context.Background())

	mu.Lock()
	defer mu.Unlock()
	seen := map[interview.Phase]bool{}
	for _, p := range phases {
		seen[p] = true
	}
	for _, p := range []interview.Phase{interview.PhaseRecording, interview.PhaseProcessing, interview.PhaseReady} {
		if !seen[p] {
			t.Fatalf("phase %s never published, got %v", p, phases)
		}
	}
}
