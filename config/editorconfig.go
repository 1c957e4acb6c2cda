package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"textkit/buffer"
)

// EditorConfig holds the .editorconfig properties textkit understands.
type EditorConfig struct {
	IndentStyle string // "tab" or "space"
	IndentSize  int    // 0 means unset
	TabWidth    int    // 0 means unset
	EndOfLine   string // "lf" or "crlf"
}

// TabDistance is tab_width, falling back to indent_size; 0 when neither is
// set.
func (ec *EditorConfig) TabDistance() int {
	if ec.TabWidth > 0 {
		return ec.TabWidth
	}
	return ec.IndentSize
}

// Apply copies the settings onto a buffer.
func (ec *EditorConfig) Apply(b *buffer.TextBuffer) {
	if n := ec.TabDistance(); n > 0 {
		b.SetTabDistance(n)
	}
	switch ec.EndOfLine {
	case "lf":
		b.LineEnding = "LF"
	case "crlf":
		b.LineEnding = "CRLF"
	}
}

// FindEditorConfig walks from the file's directory upward, merging the
// sections that match the file. Closer files win; a file with root = true
// stops the walk. Returns nil when nothing applies.
func FindEditorConfig(filePath string) *EditorConfig {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil
	}
	name := filepath.Base(absPath)

	merged := make(map[string]string)
	for dir := filepath.Dir(absPath); ; {
		props, isRoot := parseEditorConfig(filepath.Join(dir, ".editorconfig"), name)
		for k, v := range props {
			if _, set := merged[k]; !set {
				merged[k] = v
			}
		}
		parent := filepath.Dir(dir)
		if isRoot || parent == dir {
			break
		}
		dir = parent
	}
	return fromProperties(merged)
}

func parseEditorConfig(path, fileName string) (map[string]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	props := make(map[string]string)
	isRoot := false
	preamble := true
	matching := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		if line[0] == '[' && line[len(line)-1] == ']' {
			preamble = false
			matching = matchGlob(line[1:len(line)-1], fileName)
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))
		switch {
		case preamble && key == "root":
			isRoot = value == "true"
		case matching:
			props[key] = value
		}
	}
	return props, isRoot
}

// matchGlob matches an editorconfig section glob with one level of
// {a,b} alternatives.
func matchGlob(pattern, fileName string) bool {
	open := strings.IndexByte(pattern, '{')
	end := strings.IndexByte(pattern, '}')
	if open >= 0 && end > open {
		for _, alt := range strings.Split(pattern[open+1:end], ",") {
			if matchGlob(pattern[:open]+alt+pattern[end+1:], fileName) {
				return true
			}
		}
		return false
	}
	matched, _ := filepath.Match(strings.TrimPrefix(pattern, "**/"), fileName)
	return matched
}

func fromProperties(m map[string]string) *EditorConfig {
	ec := &EditorConfig{
		IndentStyle: m["indent_style"],
		EndOfLine:   m["end_of_line"],
	}
	if n, err := strconv.Atoi(m["indent_size"]); err == nil && n > 0 {
		ec.IndentSize = n
	}
	if n, err := strconv.Atoi(m["tab_width"]); err == nil && n > 0 {
		ec.TabWidth = n
	}
	if *ec == (EditorConfig{}) {
		return nil
	}
	return ec
}
