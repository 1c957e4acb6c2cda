package app

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
)

const backupInterval = 30 * time.Second

// backupTickEvent asks the event loop to back up the buffer.
type backupTickEvent struct {
	tcell.EventTime
}

type backupInfo struct {
	OriginalPath string `json:"original_path"`
	Timestamp    string `json:"timestamp"`
}

func backupDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "textkit", "backups")
}

func backupPathForFile(originalPath string) string {
	h := sha256.Sum256([]byte(originalPath))
	return filepath.Join(backupDir(), fmt.Sprintf("%x.bak", h[:8]))
}

func backupMetaPath(backupPath string) string {
	return backupPath + ".json"
}

// startBackupTimer posts a backupTickEvent every backupInterval until
// Close.
func (a *App) startBackupTimer(screen tcell.Screen) {
	stop := make(chan struct{})
	a.stopBackup = stop
	go func() {
		ticker := time.NewTicker(backupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ev := &backupTickEvent{}
				ev.SetEventNow()
				screen.PostEvent(ev)
			case <-stop:
				return
			}
		}
	}()
}

// saveBackup writes the unsaved buffer next to a small metadata file.
func (a *App) saveBackup() {
	if a.path == "" || !a.buf.Modified() {
		return
	}
	os.MkdirAll(backupDir(), 0755)

	bpath := backupPathForFile(a.path)
	if err := os.WriteFile(bpath, []byte(a.buf.Text()), 0644); err != nil {
		return
	}
	meta := backupInfo{
		OriginalPath: a.path,
		Timestamp:    time.Now().Format(time.RFC3339),
	}
	metaData, _ := json.Marshal(meta)
	os.WriteFile(backupMetaPath(bpath), metaData, 0644)
}

func (a *App) cleanBackup() {
	if a.path == "" {
		return
	}
	bpath := backupPathForFile(a.path)
	os.Remove(bpath)
	os.Remove(backupMetaPath(bpath))
}

// recoverBackup replaces the freshly opened content with a backup left by
// a session that did not exit cleanly. The recovery is one undoable edit
// and leaves the buffer modified.
func (a *App) recoverBackup() bool {
	bpath := backupPathForFile(a.path)
	metaData, err := os.ReadFile(backupMetaPath(bpath))
	if err != nil {
		return false
	}
	var info backupInfo
	if json.Unmarshal(metaData, &info) != nil || info.OriginalPath != a.path {
		return false
	}
	data, err := os.ReadFile(bpath)
	if err != nil {
		return false
	}
	if string(data) != a.buf.Text() {
		a.buf.SetText(string(data))
		a.setTemporaryMessage("Recovered unsaved changes to " + filepath.Base(a.path))
	}
	a.cleanBackup()
	return true
}
