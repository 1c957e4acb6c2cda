package app

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SessionData is what textkit remembers per working directory.
type SessionData struct {
	WorkingDir  string `json:"working_dir"`
	Path        string `json:"path"`
	InsertPos   int    `json:"insert_pos"`
	TopLine     int    `json:"top_line"`
	HorizOffset int    `json:"horiz_offset"`
	Split       bool   `json:"split"`
}

func sessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "textkit", "sessions")
}

func sessionPath(workDir string) string {
	hash := sha256.Sum256([]byte(workDir))
	return filepath.Join(sessionDir(), fmt.Sprintf("%x.json", hash[:8]))
}

func (a *App) SaveSession() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	path := sessionPath(wd)

	if a.path == "" {
		// Nothing file-backed is open: drop any stale session.
		_ = os.Remove(path)
		return
	}

	session := SessionData{
		WorkingDir:  wd,
		Path:        a.path,
		InsertPos:   a.editor.InsertPosition(),
		TopLine:     a.editor.TopLine(),
		HorizOffset: a.editor.HorizOffset(),
		Split:       a.splitOpen,
	}

	os.MkdirAll(sessionDir(), 0755)

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return
	}
	os.WriteFile(path, data, 0644)
}

// RestoreSession reopens the file remembered for the working directory.
func (a *App) RestoreSession() bool {
	wd, err := os.Getwd()
	if err != nil {
		return false
	}

	data, err := os.ReadFile(sessionPath(wd))
	if err != nil {
		return false
	}
	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return false
	}
	if session.WorkingDir != wd || session.Path == "" {
		return false
	}
	if _, err := os.Stat(session.Path); err != nil {
		return false
	}
	if err := a.Open(session.Path); err != nil {
		return false
	}

	a.editor.SetInsertPosition(session.InsertPos)
	a.editor.Scroll(session.TopLine, session.HorizOffset)
	if session.Split != a.splitOpen {
		a.toggleSplit()
	}
	return true
}
