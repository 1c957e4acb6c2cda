package buffer

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

// LineStart returns the position of the first byte of the line holding pos.
func (b *TextBuffer) LineStart(pos int) int {
	checkPos("pos", pos)
	pos = b.clamp(pos)
	return bytes.LastIndexByte(b.content[:pos], '\n') + 1
}

// LineEnd returns the position of the newline ending the line holding pos,
// or Length() on the last line.
func (b *TextBuffer) LineEnd(pos int) int {
	checkPos("pos", pos)
	pos = b.clamp(pos)
	if i := bytes.IndexByte(b.content[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(b.content)
}

// LineText returns the line holding pos, without its newline.
func (b *TextBuffer) LineText(pos int) string {
	return string(b.content[b.LineStart(pos):b.LineEnd(pos)])
}

// CountLines returns the number of newlines in [start, end).
func (b *TextBuffer) CountLines(start, end int) int {
	start, end = b.orderedRange(start, end)
	return bytes.Count(b.content[start:end], []byte{'\n'})
}

// SkipLines returns the start of the line n lines below the one holding
// pos, or Length() when the buffer runs out first.
func (b *TextBuffer) SkipLines(pos, n int) int {
	checkPos("pos", pos)
	pos = b.LineStart(pos)
	for ; n > 0; n-- {
		i := bytes.IndexByte(b.content[pos:], '\n')
		if i < 0 {
			return len(b.content)
		}
		pos += i + 1
	}
	return pos
}

// RewindLines returns the start of the line n lines above the one holding
// pos, or 0.
func (b *TextBuffer) RewindLines(pos, n int) int {
	pos = b.LineStart(pos)
	for ; n > 0 && pos > 0; n-- {
		pos = b.LineStart(pos - 1)
	}
	return pos
}

// WordStart returns the start of the word touching pos: pos moves back
// over word characters (letters, digits, '_').
func (b *TextBuffer) WordStart(pos int) int {
	checkPos("pos", pos)
	pos = b.clamp(pos)
	for pos > 0 {
		r, size := utf8.DecodeLastRune(b.content[:pos])
		if charClass(r) != classWord {
			break
		}
		pos -= size
	}
	return pos
}

// WordEnd returns the position just past the word touching pos.
func (b *TextBuffer) WordEnd(pos int) int {
	checkPos("pos", pos)
	pos = b.clamp(pos)
	for pos < len(b.content) {
		r, size := utf8.DecodeRune(b.content[pos:])
		if charClass(r) != classWord {
			break
		}
		pos += size
	}
	return pos
}

// PrevChar returns the start of the rune before pos.
func (b *TextBuffer) PrevChar(pos int) int {
	pos = b.clamp(pos)
	if pos == 0 {
		return 0
	}
	_, size := utf8.DecodeLastRune(b.content[:pos])
	return pos - size
}

// NextChar returns the position after the rune at pos.
func (b *TextBuffer) NextChar(pos int) int {
	pos = b.clamp(pos)
	if pos == len(b.content) {
		return pos
	}
	_, size := utf8.DecodeRune(b.content[pos:])
	return pos + size
}

// WordLeft and WordRight give the word-jump targets editors use: runs of
// whitespace are skipped, then a run of same-class characters.
func (b *TextBuffer) WordLeft(pos int) int {
	pos = b.clamp(pos)
	for pos > 0 {
		r, size := utf8.DecodeLastRune(b.content[:pos])
		if charClass(r) != classSpace {
			break
		}
		pos -= size
	}
	if pos == 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRune(b.content[:pos])
	cls := charClass(r)
	for pos > 0 {
		r, size := utf8.DecodeLastRune(b.content[:pos])
		if charClass(r) != cls {
			break
		}
		pos -= size
	}
	return pos
}

func (b *TextBuffer) WordRight(pos int) int {
	pos = b.clamp(pos)
	if pos == len(b.content) {
		return pos
	}
	r, _ := utf8.DecodeRune(b.content[pos:])
	cls := charClass(r)
	for pos < len(b.content) {
		r, size := utf8.DecodeRune(b.content[pos:])
		if charClass(r) != cls {
			break
		}
		pos += size
	}
	for pos < len(b.content) {
		r, size := utf8.DecodeRune(b.content[pos:])
		if charClass(r) != classSpace {
			break
		}
		pos += size
	}
	return pos
}

const (
	classSpace = iota
	classWord
	classSymbol
)

func charClass(r rune) int {
	if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
		return classSpace
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		return classWord
	}
	return classSymbol
}
