// Package buffer implements TextBuffer, the text store shared by display and
// editor widgets.
//
// A TextBuffer is not safe for concurrent use. It belongs to the UI
// goroutine; background work posts events to that goroutine instead of
// touching buffers directly.
package buffer

import (
	"fmt"
)

const defaultTabDistance = 8

type TextBuffer struct {
	content     []byte
	sel         span
	hl          span
	tabDistance int

	undoEnabled bool
	undo        *UndoStack
	replaying   bool
	cursorHint  int

	listeners     []*listener
	nextListener  ListenerID
	lastChange    Change
	hasLastChange bool

	Encoding   string // detected by LoadFile: "UTF-8", "UTF-8 BOM", "Latin-1"
	LineEnding string // "LF" or "CRLF", detected by LoadFile and preserved by SaveFile

	savedSnapshot string
	closed        bool
}

// New allocates an empty buffer with undo tracking enabled.
func New() *TextBuffer {
	return &TextBuffer{
		tabDistance: defaultTabDistance,
		undoEnabled: true,
		undo:        NewUndoStack(),
		Encoding:    "UTF-8",
		LineEnding:  "LF",
	}
}

// NewWithText allocates a buffer holding s, with empty undo history.
func NewWithText(s string) *TextBuffer {
	b := New()
	b.content = []byte(s)
	b.savedSnapshot = s
	return b
}

// Clone allocates a new buffer and copies this buffer's content into it.
// Selection, highlight, listeners and history are not copied.
func (b *TextBuffer) Clone() *TextBuffer {
	c := New()
	c.tabDistance = b.tabDistance
	c.Encoding = b.Encoding
	c.LineEnding = b.LineEnding
	c.Copy(b, 0, b.Length(), 0)
	c.undo.Clear()
	c.savedSnapshot = c.Text()
	return c
}

// Close releases the buffer's storage and drops its listeners. Widgets
// must be unbound first. Calling Close again is a no-op; any mutation of a
// closed buffer panics.
func (b *TextBuffer) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.content = nil
	b.sel.clear()
	b.hl.clear()
	b.undo.Clear()
	for _, l := range b.listeners {
		l.removed = true
	}
	b.listeners = nil
}

func (b *TextBuffer) Closed() bool { return b.closed }

func (b *TextBuffer) mustOpen() {
	if b.closed {
		panic("buffer: use of closed TextBuffer")
	}
}

func (b *TextBuffer) Text() string { return string(b.content) }

func (b *TextBuffer) Length() int { return len(b.content) }

// SetText replaces the whole content with s.
func (b *TextBuffer) SetText(s string) {
	b.edit(0, len(b.content), s)
}

func (b *TextBuffer) Append(s string) {
	b.edit(len(b.content), len(b.content), s)
}

// Insert puts s at pos. Positions past the end insert at the end.
func (b *TextBuffer) Insert(pos int, s string) {
	checkPos("pos", pos)
	b.edit(b.clamp(pos), b.clamp(pos), s)
}

// Remove deletes [start, end). The bounds are ordered and clamped to the
// buffer.
func (b *TextBuffer) Remove(start, end int) {
	start, end = b.orderedRange(start, end)
	b.edit(start, end, "")
}

// Replace deletes [start, end) and inserts s at start as a single change.
func (b *TextBuffer) Replace(start, end int, s string) {
	start, end = b.orderedRange(start, end)
	b.edit(start, end, s)
}

// TextRange returns the content of [start, end). It reports false instead
// of clamping when the range is not within the buffer.
func (b *TextBuffer) TextRange(start, end int) (string, bool) {
	checkPos("start", start)
	checkPos("end", end)
	if b.closed || start > end || end > len(b.content) {
		return "", false
	}
	return string(b.content[start:end]), true
}

// Copy inserts src[start, end) into b at to. Only b's listeners are
// notified. Copying a buffer into itself is not supported.
func (b *TextBuffer) Copy(src *TextBuffer, start, end, to int) {
	if src == b {
		panic(fmt.Errorf("buffer: copy from a buffer into itself: %w", ErrInvalidArgument))
	}
	start, end = src.orderedRange(start, end)
	checkPos("to", to)
	to = b.clamp(to)
	b.edit(to, to, string(src.content[start:end]))
}

func (b *TextBuffer) TabDistance() int { return b.tabDistance }

// SetTabDistance changes the tab width. Listeners get a restyle of the
// whole buffer since every column after a tab moves.
func (b *TextBuffer) SetTabDistance(n int) {
	checkPos("tab distance", n)
	if n == 0 {
		n = 1
	}
	if n == b.tabDistance {
		return
	}
	b.tabDistance = n
	b.notify(Change{Pos: 0, Restyled: len(b.content)})
}

// Modified reports whether the content differs from what was last loaded
// or saved.
func (b *TextBuffer) Modified() bool {
	return string(b.content) != b.savedSnapshot
}

func (b *TextBuffer) MarkSaved() {
	b.savedSnapshot = string(b.content)
}

func (b *TextBuffer) clamp(pos int) int {
	if pos > len(b.content) {
		return len(b.content)
	}
	return pos
}

func (b *TextBuffer) orderedRange(start, end int) (int, int) {
	checkPos("start", start)
	checkPos("end", end)
	r := NewRange(b.clamp(start), b.clamp(end))
	return r.Start, r.End
}

// edit is the single mutation path: it splices the content, moves the
// selection and highlight, records undo and notifies listeners.
func (b *TextBuffer) edit(start, end int, text string) {
	b.mustOpen()
	if start == end && text == "" {
		return
	}
	if len(b.content)-(end-start)+len(text) > MaxPos {
		panic(fmt.Errorf("buffer: content would exceed %d bytes: %w", MaxPos, ErrInvalidArgument))
	}

	deleted := string(b.content[start:end])
	next := make([]byte, 0, len(b.content)-len(deleted)+len(text))
	next = append(next, b.content[:start]...)
	next = append(next, text...)
	next = append(next, b.content[end:]...)
	b.content = next

	b.sel.update(start, len(deleted), len(text))
	b.hl.update(start, len(deleted), len(text))
	b.cursorHint = start + len(text)

	if b.undoEnabled && !b.replaying {
		b.undo.Push(Operation{Pos: start, Deleted: deleted, Inserted: text})
	}

	b.notify(Change{
		Pos:         start,
		Inserted:    len(text),
		Deleted:     len(deleted),
		DeletedText: deleted,
	})
}

// CanUndo turns undo tracking on or off. Turning it off drops the history.
func (b *TextBuffer) CanUndo(flag bool) {
	b.undoEnabled = flag
	if !flag {
		b.undo.Clear()
	}
}

func (b *TextBuffer) UndoEnabled() bool { return b.undoEnabled }

// HasUndo reports whether Undo would do anything.
func (b *TextBuffer) HasUndo() bool { return b.undoEnabled && b.undo.CanUndo() }

func (b *TextBuffer) HasRedo() bool { return b.undoEnabled && b.undo.CanRedo() }

// Undo reverts the most recent edit, or the most recent group of typed
// characters.
func (b *TextBuffer) Undo() error {
	if !b.undoEnabled {
		return fmt.Errorf("undo: tracking disabled: %w", ErrUndo)
	}
	ops := b.undo.PopUndo()
	if len(ops) == 0 {
		return fmt.Errorf("undo: nothing to undo: %w", ErrUndo)
	}
	b.replaying = true
	defer func() { b.replaying = false }()
	for _, op := range ops {
		b.edit(op.Pos, op.Pos+len(op.Inserted), op.Deleted)
	}
	return nil
}

// Redo reapplies what the last Undo reverted.
func (b *TextBuffer) Redo() error {
	if !b.undoEnabled {
		return fmt.Errorf("redo: tracking disabled: %w", ErrUndo)
	}
	ops := b.undo.PopRedo()
	if len(ops) == 0 {
		return fmt.Errorf("redo: nothing to redo: %w", ErrUndo)
	}
	b.replaying = true
	defer func() { b.replaying = false }()
	for _, op := range ops {
		b.edit(op.Pos, op.Pos+len(op.Deleted), op.Inserted)
	}
	return nil
}

// CursorHint is the position just after the most recent edit, including
// edits applied by Undo and Redo. Editors use it to place the caret.
func (b *TextBuffer) CursorHint() int { return b.cursorHint }
