package widget

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func plainKey(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func runeKey(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestPromptEditing(t *testing.T) {
	p := NewPrompt("Find: ", "ac")
	var changes []string
	p.OnChange = func(v string) { changes = append(changes, v) }

	p.HandleKey(plainKey(tcell.KeyLeft))
	p.HandleKey(runeKey('b'))
	if p.Input != "abc" || p.Cursor != 2 {
		t.Fatalf("input=%q cursor=%d", p.Input, p.Cursor)
	}
	p.HandleKey(plainKey(tcell.KeyHome))
	p.HandleKey(plainKey(tcell.KeyDelete))
	p.HandleKey(plainKey(tcell.KeyEnd))
	p.HandleKey(plainKey(tcell.KeyBackspace2))
	if p.Input != "b" {
		t.Fatalf("input = %q", p.Input)
	}
	if strings.Join(changes, ",") != "abc,bc,b" {
		t.Fatalf("changes = %v", changes)
	}
}

func TestPromptSubmitAndCancel(t *testing.T) {
	p := NewPrompt("Save as: ", "")
	var submitted string
	cancelled := false
	p.OnSubmit = func(v string) { submitted = v }
	p.OnCancel = func() { cancelled = true }

	for _, r := range "out.txt" {
		p.HandleKey(runeKey(r))
	}
	p.HandleKey(plainKey(tcell.KeyEnter))
	if submitted != "out.txt" {
		t.Fatalf("submitted %q", submitted)
	}
	p.HandleKey(plainKey(tcell.KeyEscape))
	if !cancelled {
		t.Fatalf("escape should cancel")
	}
	if p.HandleKey(plainKey(tcell.KeyF5)) {
		t.Fatalf("unbound key should not be consumed")
	}
}

func TestPromptDraw(t *testing.T) {
	p := NewPrompt("Find: ", "héllo")
	p.Info = "(2)"
	screen := newScreen(t, 30, 1)

	p.Draw(screen, 0, 0, 30)
	row := rowText(screen, 0, 0, 30)
	if !strings.HasPrefix(row, "Find: héllo") || !strings.HasSuffix(row, "(2)") {
		t.Fatalf("row = %q", row)
	}
	_, _, st, _ := screen.GetContent(11, 0)
	if _, _, attrs := st.Decompose(); attrs&tcell.AttrReverse == 0 {
		t.Fatalf("cursor cell should be reversed")
	}
}
