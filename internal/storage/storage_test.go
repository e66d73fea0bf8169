package storage_test

import (
	"path/filepath"
	"testing"

	"entervio-client/internal/storage"
)

func TestFileStoragePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "local.json")

	s, err := storage.OpenFileStorage(path)
	if err != nil {
		t.Fatalf("OpenFileStorage failed: %v", err)
	}
	if err := s.SetItem(storage.AccessTokenKey, "tok-1"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	reopened, err := storage.OpenFileStorage(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if v, ok := reopened.GetItem(storage.AccessTokenKey); !ok || v != "tok-1" {
		t.Fatalf("expected persisted token, got %q %v", v, ok)
	}

	if err := reopened.RemoveItem(storage.AccessTokenKey); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	again, _ := storage.OpenFileStorage(path)
	if _, ok := again.GetItem(storage.AccessTokenKey); ok {
		t.Fatalf("expected token to be removed")
	}
}

func TestSaveAndListResults(t *testing.T) {
	dir := t.TempDir()

	ids, err := storage.ListResults(filepath.Join(dir, "missing"))
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected empty list for missing dir, got %v %v", ids, err)
	}

	for _, id := range []string{"7", "3"} {
		if _, err := storage.SaveResult(dir, &storage.InterviewResult{InterviewID: id, Feedback: "ok"}); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
	}

	ids, err = storage.ListResults(dir)
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "3" || ids[1] != "7" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	res, err := storage.LoadResult(dir, "7")
	if err != nil || res.Feedback != "ok" {
		t.Fatalf("LoadResult: %+v %v", res, err)
	}

	if _, err := storage.SaveResult(dir, &storage.InterviewResult{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
