package widget

import (
	"github.com/gdamore/tcell/v2"

	"textkit/buffer"
	"textkit/clipboardx"
)

// TextEditor is a TextDisplay that edits its buffer from keyboard input.
type TextEditor struct {
	*TextDisplay

	Clipboard  clipboardx.Clipboard
	Overstrike bool

	// OnMessage receives short status texts such as "Copied".
	OnMessage func(msg string)

	anchor  int
	goalCol int
}

// NewTextEditor creates an editor bound to buf with a process-local
// clipboard.
func NewTextEditor(x, y, w, h int, buf *buffer.TextBuffer) *TextEditor {
	ed := &TextEditor{
		TextDisplay: NewTextDisplay(x, y, w, h, buf),
		Clipboard:   &clipboardx.Memory{},
		goalCol:     -1,
	}
	ed.ShowCursor(true)
	return ed
}

func (ed *TextEditor) message(msg string) {
	if ed.OnMessage != nil {
		ed.OnMessage(msg)
	}
}

// InsertText replaces the selection with s, or inserts s at the insert
// position. In overstrike mode s overwrites the characters after the
// cursor up to the end of the line.
func (ed *TextEditor) InsertText(s string) {
	buf := ed.buf
	if buf == nil {
		return
	}
	ed.goalCol = -1
	if buf.Selected() {
		r, _ := buf.SelectionPosition()
		buf.ReplaceSelection(s)
		ed.SetInsertPosition(r.Start + len(s))
		ed.ShowInsertPosition()
		return
	}
	pos := ed.insertPos
	if ed.Overstrike {
		end := pos
		for range []rune(s) {
			if end >= buf.LineEnd(pos) {
				break
			}
			end = buf.NextChar(end)
		}
		buf.Replace(pos, end, s)
	} else {
		buf.Insert(pos, s)
	}
	ed.SetInsertPosition(pos + len(s))
	ed.ShowInsertPosition()
}

// Backspace deletes the selection or the character before the cursor.
func (ed *TextEditor) Backspace() {
	buf := ed.buf
	if buf == nil {
		return
	}
	ed.goalCol = -1
	if ed.deleteSelection() {
		return
	}
	if ed.insertPos == 0 {
		return
	}
	prev := buf.PrevChar(ed.insertPos)
	buf.Remove(prev, ed.insertPos)
	ed.SetInsertPosition(prev)
	ed.ShowInsertPosition()
}

// Delete deletes the selection or the character after the cursor.
func (ed *TextEditor) Delete() {
	buf := ed.buf
	if buf == nil {
		return
	}
	ed.goalCol = -1
	if ed.deleteSelection() {
		return
	}
	if ed.insertPos >= buf.Length() {
		return
	}
	buf.Remove(ed.insertPos, buf.NextChar(ed.insertPos))
	ed.ShowInsertPosition()
}

func (ed *TextEditor) deleteSelection() bool {
	r, ok := ed.buf.SelectionPosition()
	if !ok {
		return false
	}
	ed.buf.RemoveSelection()
	ed.SetInsertPosition(r.Start)
	ed.ShowInsertPosition()
	return true
}

// currentLine returns the bounds of the cursor's line including its
// newline, if any.
func (ed *TextEditor) currentLine() (int, int) {
	start := ed.buf.LineStart(ed.insertPos)
	end := ed.buf.LineEnd(ed.insertPos)
	if end < ed.buf.Length() {
		end++
	}
	return start, end
}

// Copy puts the selection, or the whole current line when nothing is
// selected, on the clipboard.
func (ed *TextEditor) Copy() bool {
	if ed.buf == nil || ed.Clipboard == nil {
		return false
	}
	var text string
	if ed.buf.Selected() {
		text = ed.buf.SelectionText()
	} else {
		start, end := ed.currentLine()
		text, _ = ed.buf.TextRange(start, end)
	}
	if text == "" {
		return false
	}
	ed.Clipboard.Write(text)
	ed.message("Copied")
	return true
}

// Cut is Copy followed by deleting what was copied.
func (ed *TextEditor) Cut() bool {
	if !ed.Copy() {
		return false
	}
	if !ed.deleteSelection() {
		start, end := ed.currentLine()
		ed.buf.Remove(start, end)
		ed.SetInsertPosition(start)
		ed.ShowInsertPosition()
	}
	ed.message("Cut")
	return true
}

// Paste inserts the clipboard text.
func (ed *TextEditor) Paste() bool {
	if ed.buf == nil || ed.Clipboard == nil {
		return false
	}
	text := ed.Clipboard.Read()
	if text == "" {
		return false
	}
	ed.InsertText(text)
	return true
}

// Undo reverts the last edit group and moves the cursor to where it
// happened.
func (ed *TextEditor) Undo() error {
	if ed.buf == nil {
		return buffer.ErrUndo
	}
	if err := ed.buf.Undo(); err != nil {
		return err
	}
	ed.buf.Unselect()
	ed.SetInsertPosition(ed.buf.CursorHint())
	ed.ShowInsertPosition()
	return nil
}

func (ed *TextEditor) Redo() error {
	if ed.buf == nil {
		return buffer.ErrUndo
	}
	if err := ed.buf.Redo(); err != nil {
		return err
	}
	ed.buf.Unselect()
	ed.SetInsertPosition(ed.buf.CursorHint())
	ed.ShowInsertPosition()
	return nil
}

func (ed *TextEditor) SelectAll() {
	if ed.buf == nil {
		return
	}
	ed.buf.Select(0, ed.buf.Length())
	ed.anchor = 0
	ed.SetInsertPosition(ed.buf.Length())
}

// moveTo moves the cursor; with extend it grows the selection from the
// anchor instead of clearing it.
func (ed *TextEditor) moveTo(pos int, extend bool) {
	if extend {
		if !ed.buf.Selected() {
			ed.anchor = ed.insertPos
		}
		ed.SetInsertPosition(pos)
		ed.buf.Select(ed.anchor, ed.insertPos)
	} else {
		ed.buf.Unselect()
		ed.SetInsertPosition(pos)
	}
	ed.ShowInsertPosition()
}

// verticalTarget returns the position n lines away (negative is up),
// keeping the column the cursor had before vertical movement started.
func (ed *TextEditor) verticalTarget(n int) int {
	buf := ed.buf
	if ed.goalCol < 0 {
		ed.goalCol = ed.column(ed.insertPos)
	}
	start := buf.LineStart(ed.insertPos)
	if n < 0 {
		if start == 0 {
			return 0
		}
		start = buf.RewindLines(start, -n)
	} else {
		next := buf.SkipLines(start, n)
		if next == buf.Length() && buf.CountLines(start, next) < n {
			return buf.Length()
		}
		start = next
	}
	line, _ := buf.TextRange(start, buf.LineEnd(start))
	return start + byteForColumn(line, ed.goalCol, buf.TabDistance())
}

// HandleKey applies an editing key. It returns false for keys the editor
// does not use.
func (ed *TextEditor) HandleKey(ev *tcell.EventKey) bool {
	buf := ed.buf
	if buf == nil {
		return false
	}
	shift := ev.Modifiers()&tcell.ModShift != 0
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0
	alt := ev.Modifiers()&tcell.ModAlt != 0
	wordMod := ctrl || alt

	vertical := false
	switch ev.Key() {
	case tcell.KeyCtrlC:
		ed.Copy()
	case tcell.KeyCtrlX:
		ed.Cut()
	case tcell.KeyCtrlV:
		ed.Paste()
	case tcell.KeyCtrlZ:
		// Ctrl+Shift+Z = Redo
		if shift {
			ed.Redo()
		} else {
			ed.Undo()
		}
	case tcell.KeyCtrlY:
		ed.Redo()
	case tcell.KeyCtrlA:
		ed.SelectAll()
	case tcell.KeyEscape:
		buf.Unselect()
	case tcell.KeyInsert:
		ed.Overstrike = !ed.Overstrike

	case tcell.KeyUp:
		vertical = true
		ed.moveTo(ed.verticalTarget(-1), shift)
	case tcell.KeyDown:
		vertical = true
		ed.moveTo(ed.verticalTarget(1), shift)
	case tcell.KeyPgUp:
		vertical = true
		ed.moveTo(ed.verticalTarget(-max(ed.H, 1)), shift)
	case tcell.KeyPgDn:
		vertical = true
		ed.moveTo(ed.verticalTarget(max(ed.H, 1)), shift)
	case tcell.KeyLeft:
		switch {
		case wordMod:
			ed.moveTo(buf.WordLeft(ed.insertPos), shift)
		case buf.Selected() && !shift:
			r, _ := buf.SelectionPosition()
			ed.moveTo(r.Start, false)
		default:
			ed.moveTo(buf.PrevChar(ed.insertPos), shift)
		}
	case tcell.KeyRight:
		switch {
		case wordMod:
			ed.moveTo(buf.WordRight(ed.insertPos), shift)
		case buf.Selected() && !shift:
			r, _ := buf.SelectionPosition()
			ed.moveTo(r.End, false)
		default:
			ed.moveTo(buf.NextChar(ed.insertPos), shift)
		}
	case tcell.KeyHome:
		if ctrl {
			ed.moveTo(0, shift)
		} else {
			ed.moveTo(buf.LineStart(ed.insertPos), shift)
		}
	case tcell.KeyEnd:
		if ctrl {
			ed.moveTo(buf.Length(), shift)
		} else {
			ed.moveTo(buf.LineEnd(ed.insertPos), shift)
		}

	case tcell.KeyEnter:
		ed.InsertText("\n")
	case tcell.KeyTab:
		ed.InsertText("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if wordMod && !buf.Selected() {
			start := buf.WordLeft(ed.insertPos)
			buf.Remove(start, ed.insertPos)
			ed.SetInsertPosition(start)
			ed.ShowInsertPosition()
		} else {
			ed.Backspace()
		}
	case tcell.KeyDelete:
		if wordMod && !buf.Selected() {
			buf.Remove(ed.insertPos, buf.WordRight(ed.insertPos))
			ed.ShowInsertPosition()
		} else {
			ed.Delete()
		}
	case tcell.KeyRune:
		if ctrl || alt {
			return false
		}
		ed.InsertText(string(ev.Rune()))
	default:
		return false
	}
	if !vertical {
		ed.goalCol = -1
	}
	return true
}

// HandleMouse focuses on click and otherwise behaves like TextDisplay.
func (ed *TextEditor) HandleMouse(ev *tcell.EventMouse) bool {
	if !ed.TextDisplay.HandleMouse(ev) {
		return false
	}
	if ed.buf != nil && ev.Buttons()&tcell.Button1 != 0 {
		ed.goalCol = -1
		if r, ok := ed.buf.SelectionPosition(); ok {
			if r.Start == ed.insertPos {
				ed.anchor = r.End
			} else {
				ed.anchor = r.Start
			}
		}
	}
	return true
}
