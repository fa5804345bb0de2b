// Package activity keeps the human-readable movement journal: one plain
// text line per successful mutation, appended by the presentation layer.
// It is deliberately not the diagnostic log.
package activity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Recorder struct {
	mu   sync.Mutex
	path string
}

func New(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Recorder{path: path}, nil
}

// Log appends one timestamped line.
func (r *Recorder) Log(message string) error {
	line := fmt.Sprintf("%s | %s\n", time.Now().Format("2006-01-02 15:04:05"), message)

	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteString(line)
	return err
}

// ReadAll returns every journal line, oldest first. A missing file is an
// empty journal.
func (r *Recorder) ReadAll() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// Clear drops the journal.
func (r *Recorder) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := os.Remove(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
