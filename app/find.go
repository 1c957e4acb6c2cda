package app

import (
	"fmt"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"textkit/widget"
)

var matcher = search.New(language.Und, search.IgnoreCase)

// findNext returns the first case-insensitive match of query at or after
// from, wrapping around to the start of text.
func findNext(text, query string, from int) (start, end int, ok bool) {
	if query == "" {
		return 0, 0, false
	}
	from = min(max(from, 0), len(text))
	if s, e := matcher.IndexString(text[from:], query); s >= 0 {
		return from + s, from + e, true
	}
	if s, e := matcher.IndexString(text[:from], query); s >= 0 {
		return s, e, true
	}
	return 0, 0, false
}

func countMatches(text, query string) int {
	if query == "" {
		return 0
	}
	n := 0
	for pos := 0; pos < len(text); {
		_, e := matcher.IndexString(text[pos:], query)
		if e <= 0 {
			break
		}
		n++
		pos += e
	}
	return n
}

// openFind shows the find prompt. Typing searches from where the cursor
// was; Enter moves to the next match.
func (a *App) openFind() {
	origin := a.editor.InsertPosition()
	initial := ""
	if a.buf.Selected() {
		initial = a.buf.SelectionText()
		if r, ok := a.buf.SelectionPosition(); ok {
			origin = r.Start
		}
	}
	p := widget.NewPrompt("Find: ", initial)
	p.OnChange = func(q string) { a.findFrom(p, origin) }
	p.OnSubmit = func(q string) { a.findFrom(p, a.editor.InsertPosition()) }
	p.OnCancel = a.closePrompt
	a.openPrompt(p)
	if initial != "" {
		a.findFrom(p, origin)
	}
}

func (a *App) findFrom(p *widget.Prompt, from int) {
	text := a.buf.Text()
	start, end, ok := findNext(text, p.Input, from)
	if !ok {
		if p.Input != "" {
			p.Info = "(0)"
		} else {
			p.Info = ""
		}
		a.buf.Unselect()
		return
	}
	p.Info = fmt.Sprintf("(%d)", countMatches(text, p.Input))
	a.buf.Select(start, end)
	a.editor.SetInsertPosition(end)
	a.editor.ShowInsertPosition()
}

// openSaveAs asks for a file name for an untitled buffer.
func (a *App) openSaveAs() {
	p := widget.NewPrompt("Save as: ", "")
	p.OnSubmit = func(name string) {
		a.closePrompt()
		if name == "" {
			return
		}
		absPath, err := filepath.Abs(name)
		if err != nil {
			a.setTemporaryError("Error saving: " + err.Error())
			return
		}
		a.path = absPath
		a.applyFileSettings()
		a.attachStyler()
		a.watch(absPath)
		a.save()
	}
	p.OnCancel = a.closePrompt
	a.openPrompt(p)
}

func (a *App) openPrompt(p *widget.Prompt) {
	p.Theme = a.theme
	a.prompt = p
}

func (a *App) closePrompt() {
	a.prompt = nil
}
