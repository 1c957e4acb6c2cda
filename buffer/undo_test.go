package buffer

import (
	"errors"
	"testing"
	"time"
)

func typeText(b *TextBuffer, pos int, s string) {
	for i := 0; i < len(s); i++ {
		b.Insert(pos+i, s[i:i+1])
	}
}

func TestUndoGroupedTypingBurst(t *testing.T) {
	b := New()
	typeText(b, 0, "block")

	// Force a group boundary before the next rapid insert burst.
	if len(b.undo.undos) == 0 {
		t.Fatalf("expected undo ops after initial insert")
	}
	for i := range b.undo.undos {
		b.undo.undos[i].Time = time.Now().Add(-undoGroupInterval - time.Millisecond)
	}

	typeText(b, 5, "ock")
	if got := b.Text(); got != "blockock" {
		t.Fatalf("expected blockock before undo, got %q", got)
	}

	if err := b.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if got := b.Text(); got != "block" {
		t.Fatalf("expected block after undo, got %q", got)
	}

	if err := b.Redo(); err != nil {
		t.Fatalf("redo failed: %v", err)
	}
	if got := b.Text(); got != "blockock" {
		t.Fatalf("expected blockock after redo, got %q", got)
	}
}

func TestUndoRedoSingleGroupedWord(t *testing.T) {
	b := New()
	typeText(b, 0, "block")

	if err := b.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if got := b.Text(); got != "" {
		t.Fatalf("expected empty buffer after undo, got %q", got)
	}
	if b.CursorHint() != 0 {
		t.Fatalf("expected cursor hint 0, got %d", b.CursorHint())
	}

	if err := b.Redo(); err != nil {
		t.Fatalf("redo failed: %v", err)
	}
	if got := b.Text(); got != "block" {
		t.Fatalf("expected block after redo, got %q", got)
	}
}

func TestWhitespaceBreaksUndoGroup(t *testing.T) {
	b := New()
	typeText(b, 0, "ab cd")
	if err := b.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if got := b.Text(); got != "ab " {
		t.Fatalf("expected %q, got %q", "ab ", got)
	}
}

func TestUndoWithoutHistory(t *testing.T) {
	b := New()
	if err := b.Undo(); !errors.Is(err, ErrUndo) {
		t.Fatalf("expected ErrUndo, got %v", err)
	}
	if err := b.Redo(); !errors.Is(err, ErrUndo) {
		t.Fatalf("expected ErrUndo, got %v", err)
	}
}

func TestUndoDisabled(t *testing.T) {
	b := New()
	b.Append("abc")
	b.CanUndo(false)
	if b.UndoEnabled() {
		t.Fatalf("expected undo disabled")
	}
	b.Append("def")
	if err := b.Undo(); !errors.Is(err, ErrUndo) {
		t.Fatalf("expected ErrUndo, got %v", err)
	}
	if got := b.Text(); got != "abcdef" {
		t.Fatalf("content changed by failed undo: %q", got)
	}

	b.CanUndo(true)
	if b.HasUndo() {
		t.Fatalf("history recorded while disabled should be gone")
	}
}

func TestUndoNotifiesListeners(t *testing.T) {
	b := New()
	b.Append("hello")
	got := record(b)
	if err := b.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	want := recorded{pos: 0, deleted: 5, deletedText: "hello"}
	if len(*got) != 1 || (*got)[0] != want {
		t.Fatalf("expected %+v, got %+v", want, *got)
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	b := New()
	b.Append("one")
	if err := b.Undo(); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	b.Append("two")
	if b.HasRedo() {
		t.Fatalf("expected redo history cleared by new edit")
	}
}
