package widget

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"textkit/config"
)

// Prompt is a one-line input bar drawn over the status bar.
type Prompt struct {
	Label  string
	Input  string
	Cursor int // rune index into Input
	Info   string
	Theme  *config.ColorScheme

	OnSubmit func(value string)
	OnCancel func()
	// OnChange runs after every edit of Input; find uses it to search
	// while typing.
	OnChange func(value string)
}

func NewPrompt(label, initial string) *Prompt {
	return &Prompt{
		Label:  label,
		Input:  initial,
		Cursor: len([]rune(initial)),
	}
}

func (p *Prompt) Draw(screen tcell.Screen, x, y, width int) {
	theme := p.Theme
	if theme == nil {
		theme = config.Themes["monokai"]
	}
	style := tcell.StyleDefault.Background(theme.StatusBarBg).Foreground(theme.StatusBarFg)
	labelStyle := style.Foreground(tcell.ColorYellow).Bold(true)

	for cx := x; cx < x+width; cx++ {
		screen.SetContent(cx, y, ' ', nil, style)
	}

	col := x
	for _, ch := range p.Label {
		if col >= x+width {
			return
		}
		screen.SetContent(col, y, ch, nil, labelStyle)
		col += runewidth.RuneWidth(ch)
	}

	for i, ch := range []rune(p.Input) {
		if col >= x+width {
			break
		}
		st := style
		if i == p.Cursor {
			st = style.Reverse(true)
		}
		screen.SetContent(col, y, ch, nil, st)
		col += runewidth.RuneWidth(ch)
	}
	if p.Cursor >= len([]rune(p.Input)) && col < x+width {
		screen.SetContent(col, y, ' ', nil, style.Reverse(true))
		col++
	}

	if p.Info != "" {
		infoStart := x + width - runewidth.StringWidth(p.Info)
		if infoStart > col {
			putString(screen, infoStart, y, p.Info, style.Foreground(tcell.ColorGray))
		}
	}
}

// HandleKey edits the input. Enter submits and Esc cancels.
func (p *Prompt) HandleKey(ev *tcell.EventKey) bool {
	runes := []rune(p.Input)
	switch ev.Key() {
	case tcell.KeyEscape:
		if p.OnCancel != nil {
			p.OnCancel()
		}
		return true
	case tcell.KeyEnter:
		if p.OnSubmit != nil {
			p.OnSubmit(p.Input)
		}
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.Cursor > 0 {
			p.setInput(string(runes[:p.Cursor-1])+string(runes[p.Cursor:]), p.Cursor-1)
		}
		return true
	case tcell.KeyDelete:
		if p.Cursor < len(runes) {
			p.setInput(string(runes[:p.Cursor])+string(runes[p.Cursor+1:]), p.Cursor)
		}
		return true
	case tcell.KeyLeft:
		if p.Cursor > 0 {
			p.Cursor--
		}
		return true
	case tcell.KeyRight:
		if p.Cursor < len(runes) {
			p.Cursor++
		}
		return true
	case tcell.KeyHome, tcell.KeyCtrlA:
		p.Cursor = 0
		return true
	case tcell.KeyEnd:
		p.Cursor = len(runes)
		return true
	case tcell.KeyCtrlU:
		p.setInput("", 0)
		return true
	case tcell.KeyRune:
		ch := ev.Rune()
		p.setInput(string(runes[:p.Cursor])+string(ch)+string(runes[p.Cursor:]), p.Cursor+1)
		return true
	}
	return false
}

func (p *Prompt) setInput(s string, cursor int) {
	p.Input = s
	p.Cursor = cursor
	if p.OnChange != nil {
		p.OnChange(s)
	}
}
