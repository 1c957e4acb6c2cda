package app

import (
	"os"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestBackupRecoveredOnOpen(t *testing.T) {
	a, _ := newTestApp(t)
	path := writeFile(t, t.TempDir(), "notes.txt", "orig")
	if err := a.Open(path); err != nil {
		t.Fatalf("open: %v", err)
	}
	typeRunes(a, "X")
	a.HandleEvent(&backupTickEvent{})

	data, err := os.ReadFile(backupPathForFile(path))
	if err != nil || string(data) != "Xorig" {
		t.Fatalf("backup = %q, %v", data, err)
	}

	b, _ := startApp(t)
	if err := b.Open(path); err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := b.Buffer().Text(); got != "Xorig" {
		t.Fatalf("recovered text = %q", got)
	}
	if !b.Buffer().Modified() {
		t.Fatalf("recovered buffer should be modified")
	}
	if !strings.HasPrefix(b.statusBar.Message, "Recovered") {
		t.Fatalf("message = %q", b.statusBar.Message)
	}
	if _, err := os.Stat(backupPathForFile(path)); !os.IsNotExist(err) {
		t.Fatalf("backup should be removed after recovery, stat err=%v", err)
	}
}

func TestBackupSkipsCleanBuffer(t *testing.T) {
	a, _ := newTestApp(t)
	path := writeFile(t, t.TempDir(), "notes.txt", "orig")
	if err := a.Open(path); err != nil {
		t.Fatalf("open: %v", err)
	}

	a.HandleEvent(&backupTickEvent{})
	if _, err := os.Stat(backupPathForFile(path)); !os.IsNotExist(err) {
		t.Fatalf("clean buffer should not be backed up, stat err=%v", err)
	}
}

func TestSaveRemovesBackup(t *testing.T) {
	a, _ := newTestApp(t)
	path := writeFile(t, t.TempDir(), "notes.txt", "orig")
	if err := a.Open(path); err != nil {
		t.Fatalf("open: %v", err)
	}
	typeRunes(a, "X")
	a.HandleEvent(&backupTickEvent{})

	press(a, tcell.KeyCtrlS)
	if _, err := os.Stat(backupPathForFile(path)); !os.IsNotExist(err) {
		t.Fatalf("save should remove the backup, stat err=%v", err)
	}
}
