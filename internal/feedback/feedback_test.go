package feedback_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"entervio-client/internal/api"
	"entervio-client/internal/feedback"
	"entervio-client/internal/storage"
)

type fakeBackend func(id string) (*api.InterviewSummary, error)

func (f fakeBackend) GetInterviewSummary(ctx context.Context, id string) (*api.InterviewSummary, error) {
	return f(id)
}

func ptr(s string) *string { return &s }

func TestDecodeMetrics(t *testing.T) {
	m, ok := feedback.DecodeMetrics(ptr(`{"clarity":8,"relevance":7.5,"confidence":6}`))
	if !ok {
		t.Fatal("expected metrics to decode")
	}
	if m.Clarity != 8 || m.Relevance != 7.5 || m.Confidence != 6 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestDecodeMalformedIsAbsent(t *testing.T) {
	for _, in := range []*string{nil, ptr(""), ptr("   "), ptr("{not json"), ptr(`"text"`), ptr("null"), ptr(" null ")} {
		a, ok := feedback.DecodeAnalysis(in)
		if ok {
			t.Fatalf("expected %v to be absent, got %+v", in, a)
		}
		if a.Strengths != nil || a.Weaknesses != nil || a.Improvements != nil {
			t.Fatalf("expected zero value, got %+v", a)
		}
	}
}

func TestDecodeGlobalFeedbackFallsBackToText(t *testing.T) {
	if _, ok := feedback.DecodeGlobalFeedback("Très bon entretien."); ok {
		t.Fatal("plain text must not decode")
	}
	if _, ok := feedback.DecodeGlobalFeedback("null"); ok {
		t.Fatal("null must not decode")
	}
	if m, ok := feedback.DecodeMetrics(ptr("null")); ok {
		t.Fatalf("null metrics decoded as %+v", m)
	}
	g, ok := feedback.DecodeGlobalFeedback(`{"strengths":["clair"],"weaknesses":["rapide"],"analysis":"Bien"}`)
	if !ok || g.Analysis != "Bien" || len(g.Strengths) != 1 || g.Weaknesses[0] != "rapide" {
		t.Fatalf("unexpected feedback %+v %v", g, ok)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name string
		id   string
		err  error
		want string
	}{
		{"missing id", "", nil, "ID d'entretien manquant"},
		{"not found", "3", &api.Error{Status: 404}, "Résumé non trouvé"},
		{"server", "3", &api.Error{Status: 502}, "Erreur: 502"},
		{"transport", "3", errors.New("connection reset"), "connection reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			s := feedback.NewStore(fakeBackend(func(string) (*api.InterviewSummary, error) {
				called = true
				return nil, tt.err
			}), nil)

			if s.Fetch(context.Background(), tt.id) {
				t.Fatal("expected failure")
			}
			st := s.Snapshot()
			if st.Error != tt.want || st.Loading {
				t.Fatalf("unexpected state %+v", st)
			}
			if tt.id == "" && called {
				t.Fatal("backend must not be called without id")
			}
		})
	}
}

func TestFetchSuccessAndReset(t *testing.T) {
	summary := &api.InterviewSummary{Feedback: "ok", Questions: []api.QuestionAnswer{{Question: "Q1", Grade: 8}}}
	s := feedback.NewStore(fakeBackend(func(id string) (*api.InterviewSummary, error) {
		if id != "12" {
			t.Fatalf("unexpected id %q", id)
		}
		return summary, nil
	}), nil)

	if !s.Snapshot().Loading {
		t.Fatal("initial state must be loading")
	}
	if !s.Fetch(context.Background(), "12") {
		t.Fatal("fetch failed")
	}
	st := s.Snapshot()
	if st.Summary != summary || st.Loading || st.Error != "" {
		t.Fatalf("unexpected state %+v", st)
	}

	s.Reset()
	if st := s.Snapshot(); st.Summary != nil || !st.Loading {
		t.Fatalf("unexpected state after reset %+v", st)
	}
}

func TestStaleFetchIsDropped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s := feedback.NewStore(fakeBackend(func(id string) (*api.InterviewSummary, error) {
		if id == "old" {
			close(entered)
			<-release
		}
		return &api.InterviewSummary{Feedback: id}, nil
	}), nil)

	done := make(chan struct{})
	go func() {
		s.Fetch(context.Background(), "old")
		close(done)
	}()
	<-entered
	s.Fetch(context.Background(), "new")
	close(release)
	<-done

	if got := s.Snapshot().Summary.Feedback; got != "new" {
		t.Fatalf("stale summary won: %q", got)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	summary := &api.InterviewSummary{
		Feedback: "global",
		Questions: []api.QuestionAnswer{
			{Question: "Q1", Answer: "A1", Grade: 6, Feedback: "F1"},
			{Question: "Q2", Answer: "A2", Grade: 8, Feedback: "F2"},
		},
	}

	path, err := feedback.Export(dir, "5", summary, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected path")
	}

	got, err := storage.LoadResult(dir, "5")
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}
	if got.AverageGrade != 7 || len(got.Questions) != 2 || got.Timestamp != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected result %+v", got)
	}

	if _, err := feedback.Export(dir, "6", nil, time.Now()); err == nil {
		t.Fatal("expected error without summary")
	}
}
