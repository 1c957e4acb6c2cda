package widget

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"textkit/config"
)

type StatusBar struct {
	Mode     string // "EDIT" or "TERM"
	Filename string
	Modified bool
	Line     int
	Col      int
	Language string
	Encoding string
	LineEnd  string
	TabInfo  string // "Tab: 8"
	Message  string // temporary status message
	SelChars int    // selected bytes, 0 = no selection
	SelLines int
	Theme    *config.ColorScheme
}

func NewStatusBar() *StatusBar {
	return &StatusBar{
		Mode:     "EDIT",
		Encoding: "UTF-8",
		LineEnd:  "LF",
	}
}

// Update copies the cursor and buffer state of ed.
func (s *StatusBar) Update(ed *TextEditor) {
	buf := ed.Buffer()
	if buf == nil {
		return
	}
	pos := ed.InsertPosition()
	s.Line = buf.CountLines(0, pos)
	s.Col = ed.column(pos)
	s.Modified = buf.Modified()
	s.Encoding = buf.Encoding
	s.LineEnd = buf.LineEnding
	s.TabInfo = fmt.Sprintf("Tab: %d", buf.TabDistance())
	s.SelChars, s.SelLines = 0, 0
	if r, ok := buf.SelectionPosition(); ok {
		s.SelChars = r.Len()
		s.SelLines = buf.CountLines(r.Start, r.End) + 1
	}
}

func (s *StatusBar) Draw(screen tcell.Screen, x, y, width int) {
	theme := s.Theme
	if theme == nil {
		theme = config.Themes["monokai"]
	}

	style := tcell.StyleDefault.Background(theme.StatusBarBg).Foreground(theme.StatusBarFg)
	modeStyle := tcell.StyleDefault.Background(theme.StatusBarModeBg).Foreground(tcell.ColorWhite).Bold(true)

	fill(screen, x, y, width, style)
	clip := func(col int, text string, st tcell.Style) int {
		for _, ch := range text {
			if col >= x+width {
				break
			}
			screen.SetContent(col, y, ch, nil, st)
			col++
		}
		return col
	}

	col := clip(x, " "+s.Mode+" ", modeStyle)
	col = clip(col, " ", style)

	// A temporary message replaces the rest.
	if s.Message != "" {
		clip(col, s.Message, style)
		return
	}

	fname := s.Filename
	if fname == "" {
		fname = "untitled"
	}
	if s.Modified {
		fname += " ●"
	}
	col = clip(col, fname, style)

	lang := s.Language
	if lang == "" {
		lang = "Plain Text"
	}
	right := fmt.Sprintf("Ln %d, Col %d │ %s │ %s │ %s │ %s ", s.Line+1, s.Col+1, lang, s.Encoding, s.LineEnd, s.TabInfo)
	if s.SelChars > 0 {
		right = fmt.Sprintf("Sel: %d chars, %d lines │ ", s.SelChars, s.SelLines) + right
	}
	rightRunes := []rune(right)
	rightStart := x + width - len(rightRunes)
	if rightStart > col+2 {
		clip(rightStart, right, style)
	}
}
