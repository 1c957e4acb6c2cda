package buffer

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// MaxFileSize is the largest file LoadFile, InsertFile and AppendFile
// accept.
const MaxFileSize = 100 * 1024 * 1024

type decodedFile struct {
	text       string
	encoding   string
	lineEnding string
}

// LoadFile replaces the content with the file at path and resets undo
// history. On failure the buffer is left unchanged and the error wraps
// ErrResourceNotFound.
func (b *TextBuffer) LoadFile(path string) error {
	b.mustOpen()
	f, err := readFile(path)
	if err != nil {
		return err
	}

	b.replaying = true
	b.edit(0, len(b.content), f.text)
	b.replaying = false
	b.undo.Clear()

	b.Encoding = f.encoding
	b.LineEnding = f.lineEnding
	b.savedSnapshot = f.text
	return nil
}

// InsertFile inserts the file at path at pos as one undoable edit.
func (b *TextBuffer) InsertFile(path string, pos int) error {
	checkPos("pos", pos)
	b.mustOpen()
	f, err := readFile(path)
	if err != nil {
		return err
	}
	pos = b.clamp(pos)
	b.edit(pos, pos, f.text)
	return nil
}

func (b *TextBuffer) AppendFile(path string) error {
	return b.InsertFile(path, len(b.content))
}

// SaveFile writes the content to path using the buffer's Encoding and
// LineEnding, then marks the buffer saved.
func (b *TextBuffer) SaveFile(path string) error {
	data := b.encodedContent()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	b.MarkSaved()
	return nil
}

func (b *TextBuffer) encodedContent() []byte {
	text := string(b.content)
	if b.LineEnding == "CRLF" {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	switch b.Encoding {
	case "UTF-8 BOM":
		return append([]byte{0xEF, 0xBB, 0xBF}, text...)
	case "UTF-8", "":
		return []byte(text)
	}
	enc := encodingFor(b.Encoding)
	if enc == nil {
		return []byte(text)
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		// Characters the original encoding cannot represent; keep the data.
		return []byte(text)
	}
	return out
}

func readFile(path string) (decodedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return decodedFile{}, fmt.Errorf("load %s: %w: %w", path, ErrResourceNotFound, err)
	}
	if info.IsDir() {
		return decodedFile{}, fmt.Errorf("load %s: is a directory: %w", path, ErrResourceNotFound)
	}
	if info.Size() > MaxFileSize {
		return decodedFile{}, fmt.Errorf("load %s: file too large (%d MB), max supported is %d MB: %w",
			path, info.Size()/(1024*1024), MaxFileSize/(1024*1024), ErrResourceNotFound)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return decodedFile{}, fmt.Errorf("load %s: %w: %w", path, ErrResourceNotFound, err)
	}

	name := detectEncoding(data)
	switch name {
	case "UTF-8":
	case "UTF-8 BOM":
		data = data[3:]
	default:
		data, err = encodingFor(name).NewDecoder().Bytes(data)
		if err != nil {
			return decodedFile{}, fmt.Errorf("load %s: decode %s: %w: %w", path, name, ErrResourceNotFound, err)
		}
	}

	lineEnding := "LF"
	if bytes.Contains(data, []byte("\r\n")) {
		lineEnding = "CRLF"
		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	}
	if len(data) > MaxPos {
		return decodedFile{}, fmt.Errorf("load %s: decoded text too large: %w", path, ErrResourceNotFound)
	}

	return decodedFile{text: string(data), encoding: name, lineEnding: lineEnding}, nil
}

// detectEncoding checks BOM and validates UTF-8 to determine file encoding.
func detectEncoding(data []byte) string {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return "UTF-8 BOM"
	}
	if len(data) >= 2 {
		if data[0] == 0xFF && data[1] == 0xFE {
			return "UTF-16 LE"
		}
		if data[0] == 0xFE && data[1] == 0xFF {
			return "UTF-16 BE"
		}
	}
	if utf8.Valid(data) {
		return "UTF-8"
	}
	return "Latin-1"
}

func encodingFor(name string) encoding.Encoding {
	switch name {
	case "UTF-16 LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case "UTF-16 BE":
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case "Latin-1":
		return charmap.ISO8859_1
	}
	return nil
}
