// Package clipboardx provides the clipboards TextEditor cuts and pastes
// through.
package clipboardx

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

type Clipboard interface {
	Write(text string) bool
	Read() string
}

// Memory is a process-local clipboard.
type Memory struct {
	text string
}

func (m *Memory) Write(text string) bool {
	m.text = text
	return true
}

func (m *Memory) Read() string { return m.text }

// System writes to every mechanism that works (the OS clipboard through
// atotto/clipboard, CLI helpers, OSC52 on a terminal) and keeps a local
// copy for when none of them can be read back.
type System struct {
	local Memory
	// OSC52 receives the OSC52 escape; nil means os.Stdout when it is a
	// terminal.
	OSC52 io.Writer
}

func NewSystem() *System { return &System{} }

func (s *System) Write(text string) bool {
	s.local.Write(text)
	ok := false

	if err := clipboard.WriteAll(text); err == nil {
		ok = true
	}
	if writeWithCommands(text) {
		ok = true
	}
	if s.writeOSC52(text) {
		ok = true
	}
	return ok
}

func (s *System) Read() string {
	if text, err := clipboard.ReadAll(); err == nil && text != "" {
		return text
	}
	if text, ok := readWithCommands(); ok && text != "" {
		return text
	}
	return s.local.Read()
}

type command struct {
	name string
	args []string
}

var writeCommands = []command{
	{name: "wl-copy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--input"}},
	{name: "pbcopy"},
	{name: "clip.exe"},
}

var readCommands = []command{
	{name: "wl-paste", args: []string{"--no-newline"}},
	{name: "xclip", args: []string{"-o", "-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--output"}},
	{name: "pbpaste"},
	{name: "powershell.exe", args: []string{"-NoProfile", "-Command", "Get-Clipboard"}},
}

func writeWithCommands(text string) bool {
	ok := false
	for _, c := range writeCommands {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		cmd := exec.Command(c.name, c.args...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			ok = true
		}
	}
	return ok
}

func readWithCommands() (string, bool) {
	for _, c := range readCommands {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		out, err := exec.Command(c.name, c.args...).Output()
		if err == nil && len(out) > 0 {
			return string(out), true
		}
	}
	return "", false
}

func (s *System) writeOSC52(text string) bool {
	if text == "" {
		return false
	}
	w := s.OSC52
	if w == nil {
		if fi, err := os.Stdout.Stat(); err != nil || (fi.Mode()&os.ModeCharDevice) == 0 {
			return false
		}
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, OSC52(text))
	return err == nil
}

// OSC52 returns the terminal escape that sets the clipboard to text.
func OSC52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\x07"
}
