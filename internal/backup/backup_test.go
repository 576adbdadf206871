package backup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHistoryEmptyRepo(t *testing.T) {
	s, err := New(t.TempDir(), "tester", "tester@example.com")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	commits, err := s.History(t.Context(), 10)
	if err != nil {
		t.Fatalf("History on empty repo = %v, want nil", err)
	}
	if len(commits) != 0 {
		t.Errorf("commits = %+v, want none", commits)
	}
}

func TestSnapshotter(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "tester", "tester@example.com")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := t.Context()

	t.Run("clean tree is a no-op", func(t *testing.T) {
		hash, err := s.Snapshot(ctx, "nothing")
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if hash != "" {
			t.Errorf("hash = %q, want empty for clean tree", hash)
		}
	})

	if err := os.WriteFile(filepath.Join(dir, "profile.json"), []byte(`[{"key":1}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	first, err := s.Snapshot(ctx, "add profile")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if first == "" {
		t.Fatal("hash empty, want a commit")
	}

	if err := os.WriteFile(filepath.Join(dir, "profile.json"), []byte(`[{"key":2}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := s.Snapshot(ctx, "update profile")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	t.Run("history newest first", func(t *testing.T) {
		commits, err := s.History(ctx, 10)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(commits) != 2 {
			t.Fatalf("len = %d, want 2", len(commits))
		}
		if commits[0].Hash != second || commits[1].Hash != first {
			t.Errorf("order = [%s %s], want newest first", commits[0].Hash, commits[1].Hash)
		}
		if commits[0].Message != "update profile" {
			t.Errorf("message = %q", commits[0].Message)
		}
	})

	t.Run("recover previous file contents", func(t *testing.T) {
		data, err := s.FileAt(ctx, first, "profile.json")
		if err != nil {
			t.Fatalf("FileAt failed: %v", err)
		}
		if string(data) != `[{"key":1}]` {
			t.Errorf("data = %q, want pre-update contents", data)
		}

		head, err := s.FileAt(ctx, "HEAD", "profile.json")
		if err != nil {
			t.Fatalf("FileAt HEAD failed: %v", err)
		}
		if string(head) != `[{"key":2}]` {
			t.Errorf("HEAD data = %q", head)
		}
	})

	t.Run("reopen existing repo", func(t *testing.T) {
		again, err := New(dir, "tester", "tester@example.com")
		if err != nil {
			t.Fatalf("New on existing repo failed: %v", err)
		}
		commits, err := again.History(ctx, 10)
		if err != nil || len(commits) != 2 {
			t.Errorf("History after reopen = (%d, %v), want (2, nil)", len(commits), err)
		}
	})
}
