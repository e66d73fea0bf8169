package console_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"entervio-client/internal/api"
	"entervio-client/internal/config"
	"entervio-client/internal/console"
	"entervio-client/internal/interview"
	"entervio-client/internal/media/mediatest"
	"entervio-client/internal/output"
	"entervio-client/internal/router"
)

type scriptedBackend struct {
	dir     string
	infoErr error
	ended   bool
}

func (b *scriptedBackend) GetInterviewInfo(ctx context.Context, id string) (*api.InterviewInfo, error) {
	if b.infoErr != nil {
		return nil, b.infoErr
	}
	return &api.InterviewInfo{SessionID: id, CandidateName: "Alice", InterviewerStyle: "nice", QuestionCount: 1}, nil
}

func (b *scriptedBackend) GetConversationHistory(ctx context.Context, id string) (*api.ConversationHistory, error) {
	return &api.ConversationHistory{History: []api.ConversationMessage{{Role: "assistant", Content: "Bonjour Alice, présentez-vous."}}}, nil
}

func (b *scriptedBackend) SubmitResponse(ctx context.Context, id string, audio io.Reader, language string) (*api.RespondResult, error) {
	return &api.RespondResult{Transcription: "Je suis Alice.", Response: "Quelles sont vos forces ?", QuestionCount: 2}, nil
}

func (b *scriptedBackend) EndInterview(ctx context.Context, id string) (*api.EndResult, error) {
	b.ended = true
	return &api.EndResult{Summary: "Merci pour cet échange."}, nil
}

func (b *scriptedBackend) GetAudio(ctx context.Context, id, text string) (*api.AudioResource, error) {
	f, err := os.CreateTemp(b.dir, "audio-*.mp3")
	if err != nil {
		return nil, err
	}
	f.Close()
	return &api.AudioResource{Path: filepath.Clean(f.Name())}, nil
}

func newConsole(t *testing.T, backend *scriptedBackend, input string) (*console.Console, *bytes.Buffer) {
	t.Helper()
	catalog, err := config.LoadCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	store := interview.NewStore(interview.Options{
		Backend: backend,
		Capture: &mediatest.Capture{Chunks: [][]byte{[]byte("voice")}},
		Player:  &mediatest.Player{AutoFinish: true},
	})
	var buf bytes.Buffer
	return console.New(store, strings.NewReader(input), output.NewFormatter(&buf), catalog, router.New()), &buf
}

func TestConsoleFullInterview(t *testing.T) {
	backend := &scriptedBackend{dir: t.TempDir()}
	c, buf := newConsole(t, backend, "\n\n/status\n/end\n")

	if err := c.Run(context.Background(), "s1"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !backend.ended {
		t.Fatal("expected interview ended on the backend")
	}

	out := buf.String()
	want := []string{
		"Entretien de Alice avec 😊 Bienveillant",
		"🤖 Bonjour Alice, présentez-vous.",
		"🔴 Enregistrement",
		"⏳ Analyse de votre réponse",
		"🧑 Je suis Alice.",
		"🤖 Quelles sont vos forces ?",
		"Question 2",
		"Questions: 2",
		"🏁 Entretien terminé.",
		"Merci pour cet échange.",
		"entervio open /interview/s1/feedback",
	}
	last := -1
	for _, w := range want {
		idx := strings.Index(out, w)
		if idx < 0 {
			t.Fatalf("output missing %q:\n%s", w, out)
		}
		if idx < last {
			t.Fatalf("%q printed out of order:\n%s", w, out)
		}
		last = idx
	}
}

func TestConsoleUnknownCommandAndQuit(t *testing.T) {
	backend := &scriptedBackend{dir: t.TempDir()}
	c, buf := newConsole(t, backend, "/dance\n/quit\n/end\n")

	if err := c.Run(context.Background(), "s1"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if backend.ended {
		t.Fatal("/quit must not end the interview")
	}
	if !strings.Contains(buf.String(), "Commande inconnue") {
		t.Fatalf("expected unknown command warning:\n%s", buf.String())
	}
}

func TestConsoleLoadFailure(t *testing.T) {
	backend := &scriptedBackend{dir: t.TempDir(), infoErr: &api.Error{Status: 404, Message: "Session not found"}}
	c, _ := newConsole(t, backend, "")

	err := c.Run(context.Background(), "missing")
	if err == nil || err.Error() != "Session non trouvée. Redirection..." {
		t.Fatalf("unexpected error %v", err)
	}
}
