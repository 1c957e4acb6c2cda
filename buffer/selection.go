package buffer

// Select makes [start, end) the selection. An empty range clears it.
func (b *TextBuffer) Select(start, end int) {
	start, end = b.orderedRange(start, end)
	old := b.sel
	b.sel.set(start, end)
	b.restyle(old, b.sel)
}

func (b *TextBuffer) Unselect() {
	old := b.sel
	b.sel.clear()
	b.restyle(old, b.sel)
}

func (b *TextBuffer) Selected() bool { return b.sel.active }

// SelectionPosition returns the selected range, or false with no selection.
func (b *TextBuffer) SelectionPosition() (Range, bool) { return b.sel.position() }

// SelectionText returns the selected text, or "" with no selection.
func (b *TextBuffer) SelectionText() string {
	r, ok := b.sel.position()
	if !ok {
		return ""
	}
	return string(b.content[r.Start:r.End])
}

// RemoveSelection deletes the selected text. Without a selection it does
// nothing.
func (b *TextBuffer) RemoveSelection() {
	r, ok := b.sel.position()
	if !ok {
		return
	}
	b.edit(r.Start, r.End, "")
}

// ReplaceSelection replaces the selected text with s. Without a selection
// it does nothing.
func (b *TextBuffer) ReplaceSelection(s string) {
	r, ok := b.sel.position()
	if !ok {
		return
	}
	b.edit(r.Start, r.End, s)
}

// Highlight marks [start, end) independently of the selection. An empty
// range clears it.
func (b *TextBuffer) Highlight(start, end int) {
	start, end = b.orderedRange(start, end)
	old := b.hl
	b.hl.set(start, end)
	b.restyle(old, b.hl)
}

func (b *TextBuffer) Unhighlight() {
	old := b.hl
	b.hl.clear()
	b.restyle(old, b.hl)
}

func (b *TextBuffer) IsHighlighted() bool { return b.hl.active }

func (b *TextBuffer) HighlightPosition() (Range, bool) { return b.hl.position() }

func (b *TextBuffer) HighlightText() string {
	r, ok := b.hl.position()
	if !ok {
		return ""
	}
	return string(b.content[r.Start:r.End])
}

// restyle tells listeners which bytes changed presentation when a span
// moves from old to cur.
func (b *TextBuffer) restyle(old, cur span) {
	if !old.active && !cur.active {
		return
	}
	if old.active == cur.active && old.r == cur.r {
		return
	}
	var r Range
	switch {
	case !old.active:
		r = cur.r
	case !cur.active:
		r = old.r
	default:
		r = Range{Start: min(old.r.Start, cur.r.Start), End: max(old.r.End, cur.r.End)}
	}
	b.notify(Change{Pos: r.Start, Restyled: r.Len()})
}
