package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestSaveSessionRemovesStaleFileWithoutOpenFile(t *testing.T) {
	a, _ := newTestApp(t)
	wd := t.TempDir()
	chdir(t, wd)

	stalePath := sessionPath(wd)
	if err := os.MkdirAll(filepath.Dir(stalePath), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(stalePath, []byte(`{"stale":true}`), 0o644); err != nil {
		t.Fatalf("write stale session failed: %v", err)
	}

	a.SaveSession()

	if _, err := os.Stat(stalePath); !os.IsNotExist(err) {
		t.Fatalf("expected stale session file to be removed, stat err=%v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	a, _ := newTestApp(t)
	wd := t.TempDir()
	chdir(t, wd)
	path := writeFile(t, wd, "a.txt", "first\nsecond\n")
	if err := a.Open(path); err != nil {
		t.Fatalf("open: %v", err)
	}
	a.editor.SetInsertPosition(8)
	a.toggleSplit()

	a.SaveSession()

	data, err := os.ReadFile(sessionPath(wd))
	if err != nil {
		t.Fatalf("expected session file, read failed: %v", err)
	}
	var got SessionData
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got.Path != path || got.InsertPos != 8 || !got.Split {
		t.Fatalf("unexpected session data: %+v", got)
	}

	// A second app in the same directory picks the session up.
	b, _ := startApp(t)
	if !b.RestoreSession() {
		t.Fatalf("restore failed")
	}
	if b.path != path || b.editor.InsertPosition() != 8 || !b.splitOpen {
		t.Fatalf("restored path=%s pos=%d split=%v", b.path, b.editor.InsertPosition(), b.splitOpen)
	}
	if b.Buffer().Text() != "first\nsecond\n" {
		t.Fatalf("restored text = %q", b.Buffer().Text())
	}
}
