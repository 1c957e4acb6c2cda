package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
)

const (
	watchDebounce = 100 * time.Millisecond
	saveGrace     = time.Second
)

// FileWatchEvent carries file system change notifications to the main event loop.
type FileWatchEvent struct {
	tcell.EventTime
	Path string
	Op   fsnotify.Op
}

func (a *App) setupFileWatcher(screen tcell.Screen) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// continue without watching
		return
	}
	a.watcher = watcher

	go func() {
		// Debounce: collect events and send after a quiet period.
		debounceTimer := time.NewTimer(watchDebounce)
		debounceTimer.Stop()
		var pending []fsnotify.Event

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				pending = append(pending, event)
				debounceTimer.Reset(watchDebounce)

			case <-debounceTimer.C:
				for _, event := range pending {
					ev := &FileWatchEvent{Path: event.Name, Op: event.Op}
					ev.SetEventNow()
					screen.PostEvent(ev)
				}
				pending = nil

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
}

// watch follows the directory holding path, so saves that replace the
// file by renaming are still seen.
func (a *App) watch(path string) {
	if a.watcher == nil {
		return
	}
	a.watcher.Add(filepath.Dir(path))
}

func (a *App) unwatch(path string) {
	if a.watcher == nil {
		return
	}
	a.watcher.Remove(filepath.Dir(path))
}

func (a *App) handleFileWatchEvent(ev *FileWatchEvent) {
	if a.path == "" || filepath.Clean(ev.Path) != a.path {
		return
	}
	name := filepath.Base(a.path)

	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if _, err := os.Stat(a.path); os.IsNotExist(err) {
			a.setTemporaryMessage("Warning: " + name + " was deleted externally")
		}

	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		info, err := os.Stat(a.path)
		if err != nil {
			return
		}
		// our own save
		if !a.lastSave.IsZero() && info.ModTime().Sub(a.lastSave) <= saveGrace {
			return
		}
		if a.buf.Modified() {
			a.setTemporaryMessage("⚠ " + name + " was modified externally! (unsaved changes)")
			return
		}
		a.performReload()
	}
}
