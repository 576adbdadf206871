package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsCollectionWrites(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan string, 8)
	w, err := New(dir, "json", nil, func(name string) { changed <- name })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go w.Run(ctx)

	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "profile.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-changed:
		if name != "profile" {
			t.Errorf("type name = %q, want %q", name, "profile")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestTypeName(t *testing.T) {
	w := &Watcher{ext: "yaml"}
	tests := []struct {
		path string
		name string
		ok   bool
	}{
		{"/data/profile.yaml", "profile", true},
		{"/data/profile.json", "", false},
		{"/data/.yaml", "", true},
		{"/data/sub.dir/entry.yaml", "entry", true},
	}
	for _, tt := range tests {
		name, ok := w.typeName(tt.path)
		if ok != tt.ok || name != tt.name {
			t.Errorf("typeName(%q) = (%q, %v), want (%q, %v)", tt.path, name, ok, tt.name, tt.ok)
		}
	}
}
