package widget

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"

	"textkit/buffer"
	"textkit/highlight"
)

// TermOutputEvent carries PTY output to the main event loop.
type TermOutputEvent struct {
	tcell.EventTime
	Term *Terminal
	Data []byte
}

// TermExitEvent is posted once the terminal's child process has exited.
type TermExitEvent struct {
	tcell.EventTime
	Term *Terminal
	Err  error
}

type ansiState int

const (
	stateNormal ansiState = iota
	stateEscape
	stateCSI
	stateOSC
	stateOSCEscape
)

// Style bytes written for SGR colors. Bright colors share the normal ones.
const (
	ansiDefault byte = 'A'
	ansiBlack   byte = 'B'
)

// ANSITable maps the terminal's style bytes: the default entry followed by
// the eight ANSI colors.
func ANSITable() highlight.StyleTable {
	colors := []tcell.Color{
		tcell.ColorBlack, tcell.ColorMaroon, tcell.ColorGreen, tcell.ColorOlive,
		tcell.ColorNavy, tcell.ColorPurple, tcell.ColorTeal, tcell.ColorSilver,
	}
	table := highlight.StyleTable{{Style: tcell.StyleDefault}}
	for _, c := range colors {
		table = append(table, highlight.StyleTableEntry{Style: tcell.StyleDefault.Foreground(c)})
	}
	return table
}

// Terminal is an append-only TextDisplay fed by program output. It keeps
// at most HistoryLines lines and, with StayAtBottom, follows new output.
// Start attaches a shell on a PTY.
type Terminal struct {
	*TextDisplay

	HistoryLines int
	StayAtBottom bool

	ansi     bool
	styles   *buffer.TextBuffer
	curStyle byte
	state    ansiState
	params   []byte
	partial  []byte

	ptyFile *os.File
	cmd     *exec.Cmd
}

// NewTerminal creates a terminal with its own buffer. historyLines <= 0
// keeps everything.
func NewTerminal(x, y, w, h, historyLines int) *Terminal {
	buf := buffer.New()
	buf.CanUndo(false)
	styles := buffer.New()
	styles.CanUndo(false)
	t := &Terminal{
		TextDisplay:  NewTextDisplay(x, y, w, h, buf),
		HistoryLines: historyLines,
		StayAtBottom: true,
		styles:       styles,
		curStyle:     ansiDefault,
	}
	t.SetAnsi(true)
	return t
}

// SetAnsi turns color rendering of SGR sequences on or off. Escape
// sequences are consumed either way.
func (t *Terminal) SetAnsi(on bool) {
	t.ansi = on
	if on {
		t.SetHighlightData(t.styles, ANSITable())
	} else {
		t.SetHighlightData(nil, nil)
	}
}

func (t *Terminal) Ansi() bool { return t.ansi }

// Append adds program output.
func (t *Terminal) Append(s string) { t.ProcessOutput([]byte(s)) }

func (t *Terminal) Printf(format string, args ...any) {
	t.Append(fmt.Sprintf(format, args...))
}

// Clear drops all text and resets the color state.
func (t *Terminal) Clear() {
	t.buf.SetText("")
	t.styles.SetText("")
	t.curStyle = ansiDefault
	t.state = stateNormal
	t.partial = nil
	t.Scroll(0, 0)
}

// ProcessOutput appends raw output. Escape sequences and UTF-8 runes may
// be split across calls.
func (t *Terminal) ProcessOutput(data []byte) {
	if len(t.partial) > 0 {
		data = append(t.partial, data...)
		t.partial = nil
	}

	var text, st []byte
	flush := func() {
		if len(text) == 0 {
			return
		}
		t.buf.Append(string(text))
		t.styles.Append(string(st))
		text, st = text[:0], st[:0]
	}

	for i := 0; i < len(data); {
		b := data[i]
		switch t.state {
		case stateNormal:
			switch {
			case b == 0x1b:
				t.state = stateEscape
			case b == '\b':
				flush()
				t.backspace()
			case b == '\n' || b == '\t':
				text = append(text, b)
				st = append(st, t.curStyle)
			case b < 0x20 || b == 0x7f:
				// \r, BEL and other controls
			default:
				if !utf8.FullRune(data[i:]) {
					t.partial = append([]byte(nil), data[i:]...)
					i = len(data)
					continue
				}
				r, size := utf8.DecodeRune(data[i:])
				if r != utf8.RuneError || size > 1 {
					text = append(text, data[i:i+size]...)
					for k := 0; k < size; k++ {
						st = append(st, t.curStyle)
					}
				}
				i += size
				continue
			}
		case stateEscape:
			switch b {
			case '[':
				t.state = stateCSI
				t.params = t.params[:0]
			case ']':
				t.state = stateOSC
			default:
				t.state = stateNormal
			}
		case stateCSI:
			if b >= 0x40 && b <= 0x7e {
				if b == 'm' {
					t.processSGR(string(t.params))
				}
				t.state = stateNormal
			} else {
				t.params = append(t.params, b)
			}
		case stateOSC:
			switch b {
			case 0x07:
				t.state = stateNormal
			case 0x1b:
				t.state = stateOSCEscape
			}
		case stateOSCEscape:
			t.state = stateNormal
		}
		i++
	}
	flush()
	t.trimHistory()
	if t.StayAtBottom {
		t.ScrollToBottom()
	}
}

func (t *Terminal) processSGR(params string) {
	if params == "" {
		t.curStyle = ansiDefault
		return
	}
	parts := strings.Split(params, ";")
	for i := 0; i < len(parts); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			n = 0
		}
		switch {
		case n == 0 || n == 39:
			t.curStyle = ansiDefault
		case n >= 30 && n <= 37:
			t.curStyle = ansiBlack + byte(n-30)
		case n >= 90 && n <= 97:
			t.curStyle = ansiBlack + byte(n-90)
		case n == 38 || n == 48:
			// extended colors are not rendered; skip their arguments
			if i+1 < len(parts) && parts[i+1] == "5" {
				i += 2
			} else if i+1 < len(parts) && parts[i+1] == "2" {
				i += 4
			}
		}
	}
}

// backspace removes the last rune unless it ends a line.
func (t *Terminal) backspace() {
	end := t.buf.Length()
	if end == 0 {
		return
	}
	prev := t.buf.PrevChar(end)
	if s, _ := t.buf.TextRange(prev, end); s == "\n" {
		return
	}
	t.buf.Remove(prev, end)
	t.styles.Remove(prev, end)
}

func (t *Terminal) trimHistory() {
	if t.HistoryLines <= 0 {
		return
	}
	excess := t.LineCount() - t.HistoryLines
	if excess <= 0 {
		return
	}
	cut := t.buf.SkipLines(0, excess)
	t.buf.Remove(0, cut)
	t.styles.Remove(0, cut)
}

// ScrollToBottom shows the last lines of output.
func (t *Terminal) ScrollToBottom() {
	t.Scroll(max(t.LineCount()-t.H, 0), 0)
}

// Start runs shell on a PTY sized to the terminal. Output arrives as
// TermOutputEvents posted to screen and must be handed to ProcessOutput on
// the event loop.
func (t *Terminal) Start(screen tcell.Screen, shell string, args ...string) error {
	if t.ptyFile != nil {
		return fmt.Errorf("terminal: already running")
	}
	cmd := exec.Command(shell, args...)
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(max(t.H, 1)),
		Cols: uint16(max(t.W, 1)),
	})
	if err != nil {
		return fmt.Errorf("terminal: start %s: %w", shell, err)
	}
	t.cmd = cmd
	t.ptyFile = ptmx

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				ev := &TermOutputEvent{Term: t, Data: data}
				ev.SetEventNow()
				// PostEventWait so heavy output is not dropped
				screen.PostEventWait(ev)
			}
			if err != nil {
				break
			}
		}
		ev := &TermExitEvent{Term: t, Err: cmd.Wait()}
		ev.SetEventNow()
		screen.PostEvent(ev)
	}()
	return nil
}

// Running reports whether a child process is attached.
func (t *Terminal) Running() bool { return t.ptyFile != nil }

// Write sends input to the child process.
func (t *Terminal) Write(data []byte) (int, error) {
	if t.ptyFile == nil {
		return 0, os.ErrClosed
	}
	return t.ptyFile.Write(data)
}

func (t *Terminal) Resize(x, y, w, h int) {
	t.TextDisplay.Resize(x, y, w, h)
	if t.ptyFile != nil {
		pty.Setsize(t.ptyFile, &pty.Winsize{Rows: uint16(max(h, 1)), Cols: uint16(max(w, 1))})
	}
	if t.StayAtBottom {
		t.ScrollToBottom()
	}
}

// HandleKey forwards keys to the child process. Shift+PgUp/PgDn and keys
// with no process attached scroll the history.
func (t *Terminal) HandleKey(ev *tcell.EventKey) bool {
	if t.ptyFile == nil || (ev.Modifiers()&tcell.ModShift != 0 && (ev.Key() == tcell.KeyPgUp || ev.Key() == tcell.KeyPgDn)) {
		return t.TextDisplay.HandleKey(ev)
	}

	var seq string
	switch ev.Key() {
	case tcell.KeyRune:
		seq = string(ev.Rune())
	case tcell.KeyEnter:
		seq = "\r"
	case tcell.KeyTab:
		seq = "\t"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		seq = "\x7f"
	case tcell.KeyEscape:
		seq = "\x1b"
	case tcell.KeyUp:
		seq = "\x1b[A"
	case tcell.KeyDown:
		seq = "\x1b[B"
	case tcell.KeyRight:
		seq = "\x1b[C"
	case tcell.KeyLeft:
		seq = "\x1b[D"
	default:
		if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			seq = string(rune(k))
		} else {
			return false
		}
	}
	t.Write([]byte(seq))
	if t.StayAtBottom {
		t.ScrollToBottom()
	}
	return true
}

// Close stops the child process. The terminal's text stays.
func (t *Terminal) Close() {
	if t.ptyFile != nil {
		t.ptyFile.Close()
		t.ptyFile = nil
	}
	if t.cmd != nil && t.cmd.Process != nil {
		t.cmd.Process.Kill()
		t.cmd = nil
	}
}
