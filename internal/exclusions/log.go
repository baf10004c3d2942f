// Package exclusions records rejected candidates for the current run.
//
// The log is a JSON-lines file truncated when a run opens it, so it always
// describes the latest run only.
package exclusions

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"flixlist/internal/catalog"
)

// Entry is one line of the log.
type Entry struct {
	Time  time.Time `json:"time"`
	RunID string    `json:"run_id,omitempty"`
	catalog.Rejection
}

// Log appends rejections to a file. A nil *Log discards everything.
type Log struct {
	mu    sync.Mutex
	file  *os.File
	enc   *json.Encoder
	runID string
	now   func() time.Time
	count int
}

// Open truncates (or creates) the log at path. An empty path returns a nil
// log that accepts and drops writes.
func Open(path, runID string) (*Log, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure exclusion log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open exclusion log: %w", err)
	}
	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	return &Log{file: file, enc: enc, runID: runID, now: time.Now}, nil
}

// Record appends one rejection.
func (l *Log) Record(r catalog.Rejection) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return errors.New("exclusion log closed")
	}
	entry := Entry{Time: l.now().UTC(), RunID: l.runID, Rejection: r}
	if err := l.enc.Encode(entry); err != nil {
		return fmt.Errorf("write exclusion: %w", err)
	}
	l.count++
	return nil
}

// Count returns the number of entries written since Open.
func (l *Log) Count() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Close flushes and closes the file.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Sync()
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}

// Read loads every entry from the log at path. A missing file yields no
// entries.
func Read(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(text), &entry); err != nil {
			return entries, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
