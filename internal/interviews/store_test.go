package interviews_test

import (
	"context"
	"errors"
	"testing"

	"entervio-client/internal/api"
	"entervio-client/internal/interviews"
)

type fakeBackend struct {
	list []api.Interview
	err  error
}

func (f *fakeBackend) ListInterviews(ctx context.Context) ([]api.Interview, error) {
	return f.list, f.err
}

func TestFetch(t *testing.T) {
	grade := 7.5
	backend := &fakeBackend{list: []api.Interview{
		{ID: 1, InterviewerStyle: "nice", QuestionCount: 4, Grade: &grade},
		{ID: 2, InterviewerStyle: "mean"},
	}}
	s := interviews.NewStore(backend, nil)

	if !s.Snapshot().Loading {
		t.Fatal("initial state must be loading")
	}
	if !s.Fetch(context.Background()) {
		t.Fatalf("Fetch failed: %q", s.Snapshot().Error)
	}
	st := s.Snapshot()
	if len(st.Interviews) != 2 || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	iv, ok := st.Find(1)
	if !ok || *iv.Grade != 7.5 {
		t.Fatalf("Find(1) = %+v, %v", iv, ok)
	}
	if _, ok := st.Find(3); ok {
		t.Fatal("Find(3) must fail")
	}
}

func TestFetchEmptyList(t *testing.T) {
	s := interviews.NewStore(&fakeBackend{}, nil)
	s.Fetch(context.Background())
	if st := s.Snapshot(); st.Interviews == nil || len(st.Interviews) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", st.Interviews)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &api.Error{Status: 401}, "Non autorisé. Veuillez vous connecter."},
		{"server", &api.Error{Status: 500}, "Erreur lors du chargement des entretiens"},
		{"network", errors.New("timeout"), "Erreur lors du chargement des entretiens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := interviews.NewStore(&fakeBackend{err: tt.err}, nil)
			if s.Fetch(context.Background()) {
				t.Fatal("expected failure")
			}
			st := s.Snapshot()
			if st.Error != tt.want || st.Loading {
				t.Fatalf("unexpected state %+v", st)
			}
		})
	}
}

func TestReset(t *testing.T) {
	s := interviews.NewStore(&fakeBackend{list: []api.Interview{{ID: 1}}}, nil)
	s.Fetch(context.Background())
	s.Reset()
	st := s.Snapshot()
	if len(st.Interviews) != 0 || !st.Loading || st.Error != "" {
		t.Fatalf("unexpected state after reset %+v", st)
	}
}
