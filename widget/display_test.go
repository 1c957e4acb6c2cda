package widget

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"textkit/buffer"
	"textkit/config"
	"textkit/highlight"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init failed: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func rowText(screen tcell.Screen, x, y, w int) string {
	var sb strings.Builder
	for c := 0; c < w; c++ {
		r, _, _, _ := screen.GetContent(x+c, y)
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestDisplayExpandsTabs(t *testing.T) {
	buf := buffer.NewWithText("a\tb\nxy")
	buf.SetTabDistance(4)
	d := NewTextDisplay(0, 0, 20, 3, buf)
	screen := newScreen(t, 20, 3)

	d.Draw(screen)

	want := []string{"a   b", "xy", ""}
	for row, w := range want {
		if got := rowText(screen, 0, row, 20); got != w {
			t.Fatalf("row %d = %q, want %q", row, got, w)
		}
	}
}

func TestDisplayLineNumbers(t *testing.T) {
	buf := buffer.NewWithText("abc\ndef")
	d := NewTextDisplay(0, 0, 20, 2, buf)
	d.LineNumbers = true
	screen := newScreen(t, 20, 2)

	d.Draw(screen)

	if got := rowText(screen, 0, 0, 20); got != " 1 abc" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := rowText(screen, 0, 1, 20); got != " 2 def" {
		t.Fatalf("row 1 = %q", got)
	}
}

func TestDisplayScrolls(t *testing.T) {
	buf := buffer.NewWithText("one\ntwo\nthree\nfour")
	d := NewTextDisplay(0, 0, 3, 2, buf)
	screen := newScreen(t, 3, 2)

	d.SetInsertPosition(buf.Length())
	d.ShowInsertPosition()
	d.Draw(screen)

	if d.TopLine() != 2 {
		t.Fatalf("expected top line 2, got %d", d.TopLine())
	}
	// "four" is 4 columns; the cursor sits after it
	if d.HorizOffset() != 2 {
		t.Fatalf("expected horizontal offset 2, got %d", d.HorizOffset())
	}
	if got := rowText(screen, 0, 1, 3); got != "ur" {
		t.Fatalf("row 1 = %q", got)
	}
}

func TestDisplaySelectionAndHighlightStyles(t *testing.T) {
	buf := buffer.NewWithText("hello world")
	theme := config.Themes["dark"]
	d := NewTextDisplay(0, 0, 20, 1, buf)
	d.Theme = theme
	screen := newScreen(t, 20, 1)

	buf.Select(0, 5)
	buf.Highlight(6, 11)
	d.Draw(screen)

	_, _, st, _ := screen.GetContent(1, 0)
	if _, bg, _ := st.Decompose(); bg != theme.Selection {
		t.Fatalf("selected cell background = %v, want %v", bg, theme.Selection)
	}
	_, _, st, _ = screen.GetContent(7, 0)
	if _, bg, _ := st.Decompose(); bg != theme.Highlight {
		t.Fatalf("highlighted cell background = %v, want %v", bg, theme.Highlight)
	}
	_, _, st, _ = screen.GetContent(5, 0)
	if _, bg, _ := st.Decompose(); bg != theme.Background {
		t.Fatalf("plain cell background = %v, want %v", bg, theme.Background)
	}
}

func TestDisplayUsesStyleBuffer(t *testing.T) {
	buf := buffer.NewWithText("ab")
	styles := buffer.NewWithText(string([]byte{highlight.StylePlain, highlight.StyleString}))
	table := highlight.DefaultTable()
	d := NewTextDisplay(0, 0, 10, 1, buf)
	d.SetHighlightData(styles, table)
	screen := newScreen(t, 10, 1)

	d.Draw(screen)

	want, _ := table.Lookup(highlight.StyleString)
	wantFg, _, _ := want.Style.Decompose()
	_, _, st, _ := screen.GetContent(1, 0)
	if fg, _, _ := st.Decompose(); fg != wantFg {
		t.Fatalf("styled cell foreground = %v, want %v", fg, wantFg)
	}
}

func TestDisplaysSharingBufferStayInSync(t *testing.T) {
	buf := buffer.NewWithText("shared")
	a := NewTextDisplay(0, 0, 20, 1, buf)
	b := NewTextDisplay(0, 1, 20, 1, buf)
	screen := newScreen(t, 20, 2)
	a.Draw(screen)
	b.Draw(screen)

	b.SetInsertPosition(6)
	buf.Insert(0, ">> ")

	if !a.Damaged() || !b.Damaged() {
		t.Fatalf("both displays should be damaged by an edit")
	}
	if b.InsertPosition() != 9 {
		t.Fatalf("insert position should follow the edit, got %d", b.InsertPosition())
	}
	a.Draw(screen)
	b.Draw(screen)
	for row := 0; row < 2; row++ {
		if got := rowText(screen, 0, row, 20); got != ">> shared" {
			t.Fatalf("row %d = %q", row, got)
		}
	}
}

func TestSetBufferMovesListener(t *testing.T) {
	first := buffer.NewWithText("one")
	second := buffer.NewWithText("two")
	d := NewTextDisplay(0, 0, 10, 1, first)
	if first.ListenerCount() != 1 {
		t.Fatalf("expected display to listen on first buffer")
	}

	d.SetBuffer(second)
	if first.ListenerCount() != 0 || second.ListenerCount() != 1 {
		t.Fatalf("listeners: first=%d second=%d", first.ListenerCount(), second.ListenerCount())
	}

	d.Detach()
	if second.ListenerCount() != 0 || d.Buffer() != nil {
		t.Fatalf("detach should unbind the display")
	}
	if first.Closed() || second.Closed() {
		t.Fatalf("rebinding must not close buffers")
	}
}

func TestDisplayDeletionMovesInsertPosition(t *testing.T) {
	buf := buffer.NewWithText("0123456789")
	d := NewTextDisplay(0, 0, 10, 1, buf)
	d.SetInsertPosition(5)

	buf.Remove(3, 7)
	if d.InsertPosition() != 3 {
		t.Fatalf("cursor inside deleted text should move to its start, got %d", d.InsertPosition())
	}
	buf.Remove(0, 2)
	if d.InsertPosition() != 1 {
		t.Fatalf("cursor after deleted text should shift, got %d", d.InsertPosition())
	}
}

func TestDisplayMouseDragSelects(t *testing.T) {
	buf := buffer.NewWithText("abcdef\nghijkl")
	d := NewTextDisplay(0, 0, 10, 2, buf)

	d.HandleMouse(tcell.NewEventMouse(1, 0, tcell.Button1, tcell.ModNone))
	d.HandleMouse(tcell.NewEventMouse(2, 1, tcell.Button1, tcell.ModNone))
	d.HandleMouse(tcell.NewEventMouse(2, 1, tcell.ButtonNone, tcell.ModNone))

	r, ok := buf.SelectionPosition()
	if !ok || r.Start != 1 || r.End != 9 {
		t.Fatalf("selection = %+v, %v", r, ok)
	}
	if d.InsertPosition() != 9 {
		t.Fatalf("insert position = %d", d.InsertPosition())
	}
}

func TestByteForColumn(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want int
	}{
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"abc", 9, 3},
		{"\tx", 3, 0},
		{"\tx", 8, 1},
		{"日本", 2, 3},
	}
	for _, tt := range tests {
		if got := byteForColumn(tt.line, tt.col, 8); got != tt.want {
			t.Fatalf("byteForColumn(%q, %d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}
}
