// Package widget holds the views that render TextBuffers into a tcell
// screen. A widget never owns its buffer; several widgets may share one and
// each redraws when the buffer notifies it.
package widget

import (
	"strconv"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"textkit/buffer"
	"textkit/config"
	"textkit/highlight"
)

// TextDisplay is a read-only view of a TextBuffer.
type TextDisplay struct {
	X, Y, W, H int

	Theme       *config.ColorScheme
	LineNumbers bool

	buf      *buffer.TextBuffer
	listener buffer.ListenerID

	styleBuf   *buffer.TextBuffer
	styleTable highlight.StyleTable

	topLine     int
	horizOffset int
	insertPos   int
	showCursor  bool
	focused     bool
	damaged     bool

	// mouse drag state
	mouseDown   bool
	mouseAnchor int
}

// NewTextDisplay creates a display at the given rectangle bound to buf,
// which may be nil.
func NewTextDisplay(x, y, w, h int, buf *buffer.TextBuffer) *TextDisplay {
	d := &TextDisplay{X: x, Y: y, W: w, H: h, damaged: true}
	d.SetBuffer(buf)
	return d
}

func (d *TextDisplay) Buffer() *buffer.TextBuffer { return d.buf }

// SetBuffer rebinds the display. It stops listening to the previous
// buffer; neither buffer is closed.
func (d *TextDisplay) SetBuffer(buf *buffer.TextBuffer) {
	if d.buf == buf {
		return
	}
	if d.buf != nil && !d.buf.Closed() {
		d.buf.RemoveModifyCallback(d.listener)
	}
	d.buf = buf
	d.topLine, d.horizOffset, d.insertPos = 0, 0, 0
	d.damaged = true
	if buf != nil {
		d.listener = buf.AddModifyCallback(d.bufferModified)
	}
}

// Detach unbinds the display from its buffer.
func (d *TextDisplay) Detach() { d.SetBuffer(nil) }

// SetHighlightData attaches a style buffer (one style byte per content
// byte) and the table its bytes index. A nil style buffer turns styling
// off.
func (d *TextDisplay) SetHighlightData(styleBuf *buffer.TextBuffer, table highlight.StyleTable) {
	d.styleBuf = styleBuf
	d.styleTable = table
	d.damaged = true
}

func (d *TextDisplay) bufferModified(pos, inserted, deleted, restyled int, deletedText string) {
	d.damaged = true
	if inserted == 0 && deleted == 0 {
		return
	}
	switch {
	case d.insertPos < pos:
	case d.insertPos < pos+deleted:
		d.insertPos = pos
	default:
		d.insertPos += inserted - deleted
	}
	if d.insertPos > d.buf.Length() {
		d.insertPos = d.buf.Length()
	}
}

// Damaged reports whether the display changed since the last Draw.
func (d *TextDisplay) Damaged() bool { return d.damaged }

func (d *TextDisplay) Resize(x, y, w, h int) {
	d.X, d.Y, d.W, d.H = x, y, w, h
	d.damaged = true
}

func (d *TextDisplay) IsFocused() bool { return d.focused }

func (d *TextDisplay) SetFocused(f bool) {
	d.focused = f
	d.damaged = true
}

func (d *TextDisplay) InsertPosition() int { return d.insertPos }

func (d *TextDisplay) SetInsertPosition(pos int) {
	if d.buf == nil {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > d.buf.Length() {
		pos = d.buf.Length()
	}
	d.insertPos = pos
	d.damaged = true
}

// ShowCursor turns drawing of the insert position on or off.
func (d *TextDisplay) ShowCursor(show bool) {
	d.showCursor = show
	d.damaged = true
}

// Scroll sets the first visible line and the horizontal column offset.
func (d *TextDisplay) Scroll(topLine, horizOffset int) {
	d.topLine = max(topLine, 0)
	d.horizOffset = max(horizOffset, 0)
	d.damaged = true
}

func (d *TextDisplay) TopLine() int { return d.topLine }

func (d *TextDisplay) HorizOffset() int { return d.horizOffset }

// LineCount is the number of lines in the buffer, counting the line after
// a trailing newline.
func (d *TextDisplay) LineCount() int {
	if d.buf == nil {
		return 0
	}
	return d.buf.CountLines(0, d.buf.Length()) + 1
}

func (d *TextDisplay) gutterWidth() int {
	if !d.LineNumbers {
		return 0
	}
	return len(strconv.Itoa(d.LineCount())) + 2
}

func (d *TextDisplay) textWidth() int { return max(d.W-d.gutterWidth(), 0) }

// ShowInsertPosition scrolls so the insert position is visible.
func (d *TextDisplay) ShowInsertPosition() {
	if d.buf == nil || d.H <= 0 {
		return
	}
	line := d.buf.CountLines(0, d.insertPos)
	if line < d.topLine {
		d.topLine = line
	} else if line >= d.topLine+d.H {
		d.topLine = line - d.H + 1
	}

	col := d.column(d.insertPos)
	w := d.textWidth()
	if col < d.horizOffset {
		d.horizOffset = col
	} else if w > 0 && col >= d.horizOffset+w {
		d.horizOffset = col - w + 1
	}
	d.damaged = true
}

// column returns the display column of pos within its line.
func (d *TextDisplay) column(pos int) int {
	start := d.buf.LineStart(pos)
	line, _ := d.buf.TextRange(start, pos)
	return displayWidth(line, d.buf.TabDistance())
}

// PositionToXY returns the screen cell of pos, and false when it is
// scrolled out of view.
func (d *TextDisplay) PositionToXY(pos int) (int, int, bool) {
	if d.buf == nil {
		return 0, 0, false
	}
	row := d.buf.CountLines(0, pos) - d.topLine
	col := d.column(pos) - d.horizOffset
	if row < 0 || row >= d.H || col < 0 || col >= d.textWidth() {
		return 0, 0, false
	}
	return d.X + d.gutterWidth() + col, d.Y + row, true
}

// XYToPosition maps a screen cell to the nearest buffer position.
func (d *TextDisplay) XYToPosition(x, y int) int {
	if d.buf == nil {
		return 0
	}
	lineStart := d.buf.SkipLines(0, d.topLine+max(y-d.Y, 0))
	lineEnd := d.buf.LineEnd(lineStart)
	line, _ := d.buf.TextRange(lineStart, lineEnd)
	col := max(x-d.X-d.gutterWidth(), 0) + d.horizOffset
	return lineStart + byteForColumn(line, col, d.buf.TabDistance())
}

func (d *TextDisplay) contains(x, y int) bool {
	return x >= d.X && x < d.X+d.W && y >= d.Y && y < d.Y+d.H
}

// Draw paints the display's rectangle.
func (d *TextDisplay) Draw(screen tcell.Screen) {
	d.damaged = false
	if d.W <= 0 || d.H <= 0 {
		return
	}
	theme := d.Theme
	if theme == nil {
		theme = config.Themes["monokai"]
	}
	base := tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground)
	selStyle := base.Background(theme.Selection)
	hlStyle := base.Background(theme.Highlight)
	gutterStyle := base.Foreground(theme.LineNumber)
	activeGutterStyle := base.Foreground(theme.LineNumberActive)

	if d.buf == nil || d.buf.Closed() {
		for row := 0; row < d.H; row++ {
			fill(screen, d.X, d.Y+row, d.W, base)
		}
		return
	}

	text := d.buf.Text()
	var styles string
	if d.styleBuf != nil && d.styleBuf.Length() == len(text) {
		styles = d.styleBuf.Text()
	}
	sel, hasSel := d.buf.SelectionPosition()
	hl, hasHl := d.buf.HighlightPosition()
	tab := d.buf.TabDistance()

	gutterW := d.gutterWidth()
	textX := d.X + gutterW
	textW := d.textWidth()
	lines := d.LineCount()
	if d.topLine >= lines {
		d.topLine = lines - 1
	}
	cursorLine := d.buf.CountLines(0, d.insertPos)

	styleAt := func(i int) tcell.Style {
		switch {
		case hasSel && sel.Contains(i):
			return selStyle
		case hasHl && hl.Contains(i):
			return hlStyle
		}
		if styles != "" && i < len(styles) {
			if e, ok := d.styleTable.Lookup(styles[i]); ok {
				fg, _, attrs := e.Style.Decompose()
				return base.Foreground(fg).Attributes(attrs)
			}
		}
		return base
	}

	pos := d.buf.SkipLines(0, d.topLine)
	for row := 0; row < d.H; row++ {
		y := d.Y + row
		lineNo := d.topLine + row
		if lineNo >= lines {
			fill(screen, d.X, y, d.W, base)
			continue
		}

		if gutterW > 0 {
			st := gutterStyle
			if lineNo == cursorLine {
				st = activeGutterStyle
			}
			num := strconv.Itoa(lineNo + 1)
			fill(screen, d.X, y, gutterW, st)
			putString(screen, d.X+gutterW-1-len(num), y, num, st)
		}

		end := d.buf.LineEnd(pos)
		col := 0
		for i := pos; i < end; {
			r, size := utf8.DecodeRuneInString(text[i:])
			st := styleAt(i)
			if r == '\t' {
				n := tab - col%tab
				for k := 0; k < n; k++ {
					d.putCell(screen, textX, y, col+k, textW, ' ', st)
				}
				col += n
			} else {
				w := max(runewidth.RuneWidth(r), 1)
				if r < ' ' || r == utf8.RuneError {
					r = '?'
				}
				if col < d.horizOffset && col+w > d.horizOffset {
					// wide rune cut by the left edge
					for c := d.horizOffset; c < col+w; c++ {
						d.putCell(screen, textX, y, c, textW, ' ', st)
					}
				} else {
					d.putCell(screen, textX, y, col, textW, r, st)
				}
				col += w
			}
			i += size
		}

		// The newline cell shows selection past the end of the line.
		tail := base
		if end < len(text) && hasSel && sel.Contains(end) {
			tail = selStyle
		}
		for c := max(col-d.horizOffset, 0); c < textW; c++ {
			screen.SetContent(textX+c, y, ' ', nil, tail)
			tail = base
		}
		pos = end + 1
	}

	if d.showCursor && d.focused {
		if cx, cy, ok := d.PositionToXY(d.insertPos); ok {
			screen.ShowCursor(cx, cy)
		} else {
			screen.HideCursor()
		}
	}
}

func (d *TextDisplay) putCell(screen tcell.Screen, textX, y, col, textW int, r rune, st tcell.Style) {
	sc := col - d.horizOffset
	if sc < 0 || sc >= textW {
		return
	}
	screen.SetContent(textX+sc, y, r, nil, st)
}

// HandleKey scrolls a read-only display.
func (d *TextDisplay) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		d.Scroll(d.topLine-1, d.horizOffset)
	case tcell.KeyDown:
		d.Scroll(min(d.topLine+1, max(d.LineCount()-1, 0)), d.horizOffset)
	case tcell.KeyPgUp:
		d.Scroll(d.topLine-d.H, d.horizOffset)
	case tcell.KeyPgDn:
		d.Scroll(min(d.topLine+d.H, max(d.LineCount()-1, 0)), d.horizOffset)
	case tcell.KeyLeft:
		d.Scroll(d.topLine, d.horizOffset-1)
	case tcell.KeyRight:
		d.Scroll(d.topLine, d.horizOffset+1)
	default:
		return false
	}
	return true
}

// HandleMouse selects by dragging with the primary button and scrolls
// with the wheel.
func (d *TextDisplay) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	buttons := ev.Buttons()
	if !d.contains(x, y) && !d.mouseDown {
		return false
	}
	if d.buf == nil {
		return true
	}
	switch {
	case buttons&tcell.WheelUp != 0:
		d.Scroll(d.topLine-3, d.horizOffset)
	case buttons&tcell.WheelDown != 0:
		d.Scroll(min(d.topLine+3, max(d.LineCount()-1, 0)), d.horizOffset)
	case buttons&tcell.Button1 != 0:
		pos := d.XYToPosition(x, y)
		if !d.mouseDown {
			d.mouseDown = true
			d.mouseAnchor = pos
			d.buf.Unselect()
		} else {
			d.buf.Select(d.mouseAnchor, pos)
		}
		d.SetInsertPosition(pos)
	default:
		d.mouseDown = false
	}
	return true
}

func fill(screen tcell.Screen, x, y, w int, st tcell.Style) {
	for c := 0; c < w; c++ {
		screen.SetContent(x+c, y, ' ', nil, st)
	}
}

func putString(screen tcell.Screen, x, y int, s string, st tcell.Style) int {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, st)
		x += max(runewidth.RuneWidth(r), 1)
	}
	return x
}

// displayWidth returns the columns line occupies with tabs expanded.
func displayWidth(line string, tab int) int {
	col := 0
	for _, r := range line {
		if r == '\t' {
			col += tab - col%tab
		} else {
			col += max(runewidth.RuneWidth(r), 1)
		}
	}
	return col
}

// byteForColumn returns the byte offset in line whose cell holds col, or
// len(line) past the end.
func byteForColumn(line string, target, tab int) int {
	col := 0
	for i, r := range line {
		w := max(runewidth.RuneWidth(r), 1)
		if r == '\t' {
			w = tab - col%tab
		}
		if col+w > target {
			if target-col >= (w+1)/2 && w > 1 {
				return i + utf8.RuneLen(r)
			}
			return i
		}
		col += w
	}
	return len(line)
}
