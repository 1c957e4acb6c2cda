// Package highlight fills style buffers: a TextBuffer parallel to the text
// buffer holding one style byte per content byte. Style bytes index a
// StyleTable, 'A' being the first entry.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/gdamore/tcell/v2"

	"textkit/buffer"
)

// Style bytes used by DefaultTable.
const (
	StylePlain byte = 'A' + iota
	StyleKeyword
	StyleBuiltin
	StyleString
	StyleComment
	StyleNumber
	StyleFunction
	StyleClass
	StyleOperator
)

type StyleTableEntry struct {
	Style tcell.Style
}

type StyleTable []StyleTableEntry

// DefaultTable returns a table for the default style bytes.
func DefaultTable() StyleTable {
	base := tcell.StyleDefault
	return StyleTable{
		StylePlain - 'A':    {base.Foreground(tcell.ColorWhite)},
		StyleKeyword - 'A':  {base.Foreground(tcell.ColorBlue).Bold(true)},
		StyleBuiltin - 'A':  {base.Foreground(tcell.ColorBlue)},
		StyleString - 'A':   {base.Foreground(tcell.ColorGreen)},
		StyleComment - 'A':  {base.Foreground(tcell.ColorGray).Italic(true)},
		StyleNumber - 'A':   {base.Foreground(tcell.ColorDarkCyan)},
		StyleFunction - 'A': {base.Foreground(tcell.ColorYellow)},
		StyleClass - 'A':    {base.Foreground(tcell.ColorFuchsia)},
		StyleOperator - 'A': {base.Foreground(tcell.ColorWhite)},
	}
}

// Lookup returns the entry for a style byte; ok is false for bytes outside
// the table.
func (t StyleTable) Lookup(style byte) (StyleTableEntry, bool) {
	i := int(style) - 'A'
	if i < 0 || i >= len(t) {
		return StyleTableEntry{}, false
	}
	return t[i], true
}

// Styler tokenizes text with a chroma lexer and writes style buffers.
type Styler struct {
	lexer chroma.Lexer
	Name  string
}

// NewStyler picks a lexer by language name; unknown names fall back to
// plain text.
func NewStyler(language string) *Styler {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return newStyler(lexer)
}

// ForFile picks a lexer from the file name.
func ForFile(filename string) *Styler {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return newStyler(lexer)
}

func newStyler(lexer chroma.Lexer) *Styler {
	name := ""
	if cfg := lexer.Config(); cfg != nil {
		name = cfg.Name
	}
	return &Styler{lexer: chroma.Coalesce(lexer), Name: name}
}

// DetectLanguage returns the chroma language name for filename, or "".
func DetectLanguage(filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		return ""
	}
	config := lexer.Config()
	if config == nil {
		return ""
	}
	return config.Name
}

// Styles returns one style byte per byte of text.
func (s *Styler) Styles(text string) string {
	out := make([]byte, 0, len(text))
	iter, err := s.lexer.Tokenise(nil, text)
	if err != nil {
		return strings.Repeat(string(StylePlain), len(text))
	}
	for _, tok := range iter.Tokens() {
		st := tokenStyle(tok.Type)
		for i := 0; i < len(tok.Value); i++ {
			out = append(out, st)
		}
	}
	// Some lexers add a trailing newline token; keep the lengths equal.
	switch {
	case len(out) > len(text):
		out = out[:len(text)]
	case len(out) < len(text):
		out = append(out, strings.Repeat(string(StylePlain), len(text)-len(out))...)
	}
	return string(out)
}

// Restyle recomputes the whole style buffer from text. Listeners on
// styleBuf see one change.
func (s *Styler) Restyle(text *buffer.TextBuffer, styleBuf *buffer.TextBuffer) {
	styles := s.Styles(text.Text())
	if styles == styleBuf.Text() {
		return
	}
	styleBuf.SetText(styles)
}

// Attach keeps styleBuf in step with text: every content change of text
// restyles. The returned function detaches.
func (s *Styler) Attach(text *buffer.TextBuffer, styleBuf *buffer.TextBuffer) func() {
	styleBuf.CanUndo(false)
	s.Restyle(text, styleBuf)
	id := text.AddModifyCallback(func(pos, inserted, deleted, restyled int, deletedText string) {
		if inserted == 0 && deleted == 0 {
			return
		}
		s.Restyle(text, styleBuf)
	})
	return func() { text.RemoveModifyCallback(id) }
}

func tokenStyle(t chroma.TokenType) byte {
	switch {
	case t == chroma.Keyword || t == chroma.KeywordConstant || t == chroma.KeywordDeclaration ||
		t == chroma.KeywordNamespace || t == chroma.KeywordReserved || t == chroma.KeywordType:
		return StyleKeyword

	case t == chroma.NameBuiltin || t == chroma.NameBuiltinPseudo:
		return StyleBuiltin

	case t.InCategory(chroma.Literal) && t.InSubCategory(chroma.LiteralString):
		return StyleString

	case t.InCategory(chroma.Comment):
		return StyleComment

	case t.InSubCategory(chroma.LiteralNumber):
		return StyleNumber

	case t == chroma.NameFunction || t == chroma.NameFunctionMagic:
		return StyleFunction

	case t == chroma.NameClass || t == chroma.NameException || t == chroma.NameDecorator:
		return StyleClass

	case t == chroma.Operator || t == chroma.OperatorWord || t == chroma.Punctuation:
		return StyleOperator

	default:
		return StylePlain
	}
}
