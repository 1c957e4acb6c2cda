package widget

import (
	"strings"
	"testing"

	"textkit/buffer"
)

func TestStatusBarUpdateFromEditor(t *testing.T) {
	buf := buffer.NewWithText("one\n\ttwo")
	ed := NewTextEditor(0, 0, 40, 5, buf)
	ed.SetInsertPosition(6)
	buf.Select(2, 6)

	sb := NewStatusBar()
	sb.Update(ed)

	if sb.Line != 1 || sb.Col != 9 {
		t.Fatalf("line/col = %d/%d, want 1/9", sb.Line, sb.Col)
	}
	if sb.SelChars != 4 || sb.SelLines != 2 {
		t.Fatalf("selection = %d chars %d lines", sb.SelChars, sb.SelLines)
	}
	if sb.Modified {
		t.Fatalf("fresh buffer should not be modified")
	}
}

func TestStatusBarDraw(t *testing.T) {
	sb := NewStatusBar()
	sb.Filename = "notes.txt"
	sb.Modified = true
	sb.TabInfo = "Tab: 8"
	screen := newScreen(t, 80, 1)

	sb.Draw(screen, 0, 0, 80)
	row := rowText(screen, 0, 0, 80)
	if !strings.HasPrefix(row, " EDIT  notes.txt ●") {
		t.Fatalf("row = %q", row)
	}
	if !strings.Contains(row, "Ln 1, Col 1") {
		t.Fatalf("row missing position: %q", row)
	}

	sb.Message = "Saved"
	sb.Draw(screen, 0, 0, 80)
	if row := rowText(screen, 0, 0, 80); row != " EDIT  Saved" {
		t.Fatalf("message row = %q", row)
	}
}
