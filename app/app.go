// Package app hosts the textkit screen: an editor and an optional mirror
// view over one shared buffer, a terminal pane and a status bar.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"

	"textkit/buffer"
	"textkit/clipboardx"
	"textkit/config"
	"textkit/highlight"
	"textkit/widget"
)

const (
	focusEditor   = "editor"
	focusMirror   = "mirror"
	focusTerminal = "terminal"

	messageTTL = 5 * time.Second
)

type App struct {
	cfg    *config.Config
	theme  *config.ColorScheme
	screen tcell.Screen

	buf  *buffer.TextBuffer
	path string

	styles       *buffer.TextBuffer
	styler       *highlight.Styler
	detachStyler func()

	editor    *widget.TextEditor
	mirror    *widget.TextDisplay
	terminal  *widget.Terminal
	statusBar *widget.StatusBar
	prompt    *widget.Prompt

	focus     string
	splitOpen bool
	termOpen  bool

	watcher    *fsnotify.Watcher
	lastSave   time.Time
	stopBackup chan struct{}

	statusMessageTime time.Time
	quit              bool
}

func New(cfg *config.Config) *App {
	buf := buffer.New()
	buf.SetTabDistance(cfg.TabDistance)
	return &App{
		cfg:   cfg,
		theme: cfg.GetTheme(),
		buf:   buf,
		focus: focusEditor,
	}
}

// Buffer is the buffer both views edit.
func (a *App) Buffer() *buffer.TextBuffer { return a.buf }

// Init builds the widgets on screen. Run calls it; tests call it with a
// simulation screen.
func (a *App) Init(screen tcell.Screen) {
	a.screen = screen

	a.editor = widget.NewTextEditor(0, 0, 0, 0, a.buf)
	a.editor.Theme = a.theme
	a.editor.LineNumbers = a.cfg.LineNumbers
	a.editor.OnMessage = a.setTemporaryMessage
	if a.cfg.SystemClipboard {
		a.editor.Clipboard = clipboardx.NewSystem()
	}

	a.mirror = widget.NewTextDisplay(0, 0, 0, 0, a.buf)
	a.mirror.Theme = a.theme
	a.mirror.LineNumbers = a.cfg.LineNumbers

	a.terminal = widget.NewTerminal(0, 0, 0, 0, a.cfg.HistoryLines)
	a.terminal.Theme = a.theme

	a.statusBar = widget.NewStatusBar()
	a.statusBar.Theme = a.theme

	if a.cfg.SyntaxHighlight {
		a.styles = buffer.New()
		a.styles.CanUndo(false)
		a.editor.SetHighlightData(a.styles, highlight.DefaultTable())
		a.mirror.SetHighlightData(a.styles, highlight.DefaultTable())
	}
	if a.cfg.WatchFiles {
		a.setupFileWatcher(screen)
	}

	a.layout()
	a.updateFocus()
}

// Open loads path into the shared buffer. A path that does not exist yet
// opens an empty buffer that saves there.
func (a *App) Open(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := a.buf.LoadFile(absPath); err != nil {
		if _, statErr := os.Stat(absPath); !os.IsNotExist(statErr) {
			return err
		}
		a.buf.SetText("")
		a.buf.CanUndo(false)
		a.buf.CanUndo(true)
		a.buf.MarkSaved()
		a.setTemporaryMessage("New file " + filepath.Base(absPath))
	}
	if a.path != "" {
		a.unwatch(a.path)
	}
	a.path = absPath
	a.applyFileSettings()
	a.attachStyler()
	a.recoverBackup()
	a.watch(absPath)
	a.editor.SetInsertPosition(0)
	a.editor.Scroll(0, 0)
	a.mirror.Scroll(0, 0)
	return nil
}

// applyFileSettings applies the configured tab distance, then .editorconfig.
func (a *App) applyFileSettings() {
	a.buf.SetTabDistance(a.cfg.TabDistance)
	if a.path == "" {
		return
	}
	if ec := config.FindEditorConfig(a.path); ec != nil {
		ec.Apply(a.buf)
	}
}

func (a *App) attachStyler() {
	if a.styles == nil {
		return
	}
	if a.detachStyler != nil {
		a.detachStyler()
	}
	a.styler = highlight.ForFile(a.path)
	a.detachStyler = a.styler.Attach(a.buf, a.styles)
}

func (a *App) Run(files []string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.EnableMouse()
	screen.EnablePaste()
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	a.Init(screen)
	a.startBackupTimer(screen)
	switch {
	case len(files) == 0:
		a.RestoreSession()
	case len(files) > 1:
		a.setTemporaryMessage(fmt.Sprintf("Opened %s; %d more ignored", filepath.Base(files[0]), len(files)-1))
		fallthrough
	default:
		if err := a.Open(files[0]); err != nil {
			a.Close()
			screen.Fini()
			return err
		}
	}

	for !a.quit {
		a.clearExpiredMessages()
		a.Draw()
		a.HandleEvent(screen.PollEvent())
	}

	a.SaveSession()
	a.Close()
	screen.Clear()
	screen.Fini()
	return nil
}

// Close stops background work and releases the buffers.
func (a *App) Close() {
	if a.stopBackup != nil {
		close(a.stopBackup)
		a.stopBackup = nil
	}
	a.cleanBackup()
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
	if a.terminal != nil {
		a.terminal.Close()
	}
	if a.detachStyler != nil {
		a.detachStyler()
		a.detachStyler = nil
	}
	if a.editor != nil {
		a.editor.Detach()
	}
	if a.mirror != nil {
		a.mirror.Detach()
	}
	a.buf.Close()
	if a.styles != nil {
		a.styles.Close()
	}
}

// HandleEvent applies one event; it reports false once the app should
// quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.layout()
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *widget.TermOutputEvent:
		ev.Term.ProcessOutput(ev.Data)
	case *widget.TermExitEvent:
		ev.Term.Close()
		a.setTemporaryMessage("Shell exited")
	case *FileWatchEvent:
		a.handleFileWatchEvent(ev)
	case *backupTickEvent:
		a.saveBackup()
	}
	a.updateStatus()
	return !a.quit
}

func (a *App) handleKey(ev *tcell.EventKey) {
	// The terminal keeps most control keys for the shell.
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		a.handleQuit()
		return
	case tcell.KeyCtrlT:
		a.toggleTerminal()
		return
	case tcell.KeyCtrlE:
		a.cycleFocus()
		return
	}
	if a.prompt != nil {
		a.prompt.HandleKey(ev)
		return
	}
	if a.focus == focusTerminal {
		a.terminal.HandleKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyCtrlF:
		a.openFind()
		return
	case tcell.KeyCtrlS:
		a.save()
		return
	case tcell.KeyCtrlW:
		a.toggleSplit()
		return
	case tcell.KeyCtrlR:
		a.reloadFile()
		return
	case tcell.KeyCtrlL:
		a.editor.LineNumbers = !a.editor.LineNumbers
		a.mirror.LineNumbers = a.editor.LineNumbers
		return
	case tcell.KeyCtrlD:
		a.highlightWord()
		return
	}

	if a.focus == focusMirror {
		a.mirror.HandleKey(ev)
		return
	}
	a.editor.HandleKey(ev)
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pressed := ev.Buttons()&tcell.Button1 != 0
	switch {
	case a.termOpen && inRect(x, y, a.terminal.X, a.terminal.Y, a.terminal.W, a.terminal.H):
		if pressed {
			a.setFocus(focusTerminal)
		}
		a.terminal.HandleMouse(ev)
	case a.splitOpen && inRect(x, y, a.mirror.X, a.mirror.Y, a.mirror.W, a.mirror.H):
		if pressed {
			a.setFocus(focusMirror)
		}
		a.mirror.HandleMouse(ev)
	default:
		if pressed && inRect(x, y, a.editor.X, a.editor.Y, a.editor.W, a.editor.H) {
			a.setFocus(focusEditor)
		}
		a.editor.HandleMouse(ev)
	}
}

func inRect(x, y, rx, ry, rw, rh int) bool {
	return x >= rx && x < rx+rw && y >= ry && y < ry+rh
}

// handleQuit refuses the first quit while the buffer has unsaved changes.
func (a *App) handleQuit() {
	if a.buf.Modified() && a.statusBar.Message != unsavedQuitMessage {
		a.setTemporaryMessage(unsavedQuitMessage)
		return
	}
	a.quit = true
}

const unsavedQuitMessage = "Unsaved changes! Press Ctrl+Q again to quit"

func (a *App) save() {
	if a.path == "" {
		a.openSaveAs()
		return
	}
	if err := a.buf.SaveFile(a.path); err != nil {
		a.setTemporaryError("Error saving: " + err.Error())
		return
	}
	a.lastSave = time.Now()
	a.cleanBackup()
	a.setTemporaryMessage("Saved " + filepath.Base(a.path))
}

func (a *App) reloadFile() {
	if a.path == "" {
		a.setTemporaryError("Cannot reload: no file path")
		return
	}
	a.performReload()
}

// performReload reloads the file into the shared buffer, keeping the
// cursor where it was when possible.
func (a *App) performReload() {
	pos := a.editor.InsertPosition()
	if err := a.buf.LoadFile(a.path); err != nil {
		a.setTemporaryError("Error reloading: " + err.Error())
		return
	}
	a.applyFileSettings()
	a.editor.SetInsertPosition(pos)
	a.editor.ShowInsertPosition()
	a.setTemporaryMessage("↻ " + filepath.Base(a.path) + " (reloaded)")
}

// highlightWord marks the word under the cursor, or clears the mark.
func (a *App) highlightWord() {
	pos := a.editor.InsertPosition()
	start, end := a.buf.WordStart(pos), a.buf.WordEnd(pos)
	if start == end {
		a.buf.Unhighlight()
		return
	}
	a.buf.Highlight(start, end)
	a.setTemporaryMessage("Highlighted " + a.buf.HighlightText())
}

func (a *App) toggleTerminal() {
	a.termOpen = !a.termOpen
	a.layout()
	if !a.termOpen {
		if a.focus == focusTerminal {
			a.setFocus(focusEditor)
		}
		return
	}
	if !a.terminal.Running() {
		if err := a.terminal.Start(a.screen, a.cfg.Shell); err != nil {
			a.terminal.Printf("%v\n", err)
		}
	}
	a.setFocus(focusTerminal)
}

func (a *App) toggleSplit() {
	a.splitOpen = !a.splitOpen
	if !a.splitOpen && a.focus == focusMirror {
		a.setFocus(focusEditor)
	}
	a.layout()
}

func (a *App) cycleFocus() {
	order := []string{focusEditor}
	if a.splitOpen {
		order = append(order, focusMirror)
	}
	if a.termOpen {
		order = append(order, focusTerminal)
	}
	for i, f := range order {
		if f == a.focus {
			a.setFocus(order[(i+1)%len(order)])
			return
		}
	}
	a.setFocus(focusEditor)
}

func (a *App) setFocus(f string) {
	a.focus = f
	a.updateFocus()
}

func (a *App) updateFocus() {
	a.editor.SetFocused(a.focus == focusEditor)
	a.mirror.SetFocused(a.focus == focusMirror)
	a.terminal.SetFocused(a.focus == focusTerminal)
}

// Layout helpers

func (a *App) termLayout() (x, y, w, h int) {
	screenW, screenH := a.screen.Size()
	w = screenW
	h = int(float64(screenH-1) * a.cfg.TermRatio)
	if h < 3 {
		h = 3
	}
	y = screenH - 1 - h // -1 for status bar
	return
}

func (a *App) layout() {
	screenW, screenH := a.screen.Size()
	editH := screenH - 1
	if a.termOpen {
		_, termY, termW, termH := a.termLayout()
		editH = termY
		// first terminal row is its title bar
		a.terminal.Resize(0, termY+1, termW, termH-1)
	}
	editW := screenW
	if a.splitOpen {
		editW = screenW / 2
		a.mirror.Resize(editW+1, 0, screenW-editW-1, editH)
	}
	a.editor.Resize(0, 0, editW, editH)
	a.editor.ShowInsertPosition()
}

func (a *App) updateStatus() {
	a.statusBar.Update(a.editor)
	a.statusBar.Filename = filepath.Base(a.path)
	if a.path == "" {
		a.statusBar.Filename = ""
	}
	a.statusBar.Language = ""
	if a.styler != nil {
		a.statusBar.Language = a.styler.Name
	}
	if a.focus == focusTerminal {
		a.statusBar.Mode = "TERM"
	} else {
		a.statusBar.Mode = "EDIT"
	}
}

// Draw renders every visible widget and shows the screen.
func (a *App) Draw() {
	screen := a.screen
	screen.HideCursor()
	screenW, screenH := screen.Size()

	a.editor.Draw(screen)
	if a.splitOpen {
		border := tcell.StyleDefault.Background(a.theme.Background).Foreground(a.theme.Border)
		for y := 0; y < a.editor.H; y++ {
			screen.SetContent(a.editor.W, y, '│', nil, border)
		}
		a.mirror.Draw(screen)
	}
	if a.termOpen {
		title := tcell.StyleDefault.Background(a.theme.StatusBarBg).Foreground(a.theme.StatusBarFg)
		y := a.terminal.Y - 1
		for x := 0; x < screenW; x++ {
			screen.SetContent(x, y, ' ', nil, title)
		}
		for i, r := range " TERMINAL " {
			screen.SetContent(i, y, r, nil, title.Bold(true))
		}
		a.terminal.Draw(screen)
	}
	if a.prompt != nil {
		a.prompt.Draw(screen, 0, screenH-1, screenW)
	} else {
		a.statusBar.Draw(screen, 0, screenH-1, screenW)
	}
	screen.Show()
}

// setTemporaryMessage sets a message that clears after messageTTL.
func (a *App) setTemporaryMessage(msg string) {
	a.statusBar.Message = msg
	a.statusMessageTime = time.Now()
}

func (a *App) setTemporaryError(msg string) {
	a.setTemporaryMessage(msg)
}

func (a *App) clearExpiredMessages() {
	if !a.statusMessageTime.IsZero() && time.Since(a.statusMessageTime) > messageTTL {
		a.statusBar.Message = ""
		a.statusMessageTime = time.Time{}
	}
}
