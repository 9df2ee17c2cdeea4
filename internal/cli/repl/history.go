package repl

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHistorySize caps the number of remembered lines.
const DefaultHistorySize = 500

// History keeps browse input lines across sessions. Consecutive repeats
// are stored once.
type History struct {
	path  string
	limit int
	lines []string
}

// NewHistory returns a History persisted at path, or in memory only when
// path is empty.
func NewHistory(path string) *History {
	return &History{path: path, limit: DefaultHistorySize}
}

// Add records line.
func (h *History) Add(line string) {
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return
	}
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.limit; over > 0 {
		h.lines = append(h.lines[:0], h.lines[over:]...)
	}
}

// Recent returns up to n lines, oldest first.
func (h *History) Recent(n int) []string {
	if n > len(h.lines) {
		n = len(h.lines)
	}
	if n <= 0 {
		return nil
	}
	return append([]string(nil), h.lines[len(h.lines)-n:]...)
}

// Load appends the lines stored at the history path. A missing file is
// an empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}
	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			h.Add(line)
		}
	}
	return sc.Err()
}

// Save writes the history with mode 0600, creating its directory.
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return err
	}
	data := strings.Join(h.lines, "\n")
	if data != "" {
		data += "\n"
	}
	return os.WriteFile(h.path, []byte(data), 0o600)
}
