package observability

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// Event is one line of the activity log: something that happened to a task.
type Event struct {
	Time   time.Time      `json:"time"`
	Type   string         `json:"type"`
	TaskID string         `json:"task_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// EventFilter selects events on Read. Zero fields match everything; Since
// and Until are inclusive.
type EventFilter struct {
	Since  time.Time
	Until  time.Time
	Types  []string
	TaskID string
}

func (f EventFilter) match(e Event) bool {
	switch {
	case !f.Since.IsZero() && e.Time.Before(f.Since):
		return false
	case !f.Until.IsZero() && e.Time.After(f.Until):
		return false
	case len(f.Types) > 0 && !slices.Contains(f.Types, e.Type):
		return false
	case f.TaskID != "" && e.TaskID != f.TaskID:
		return false
	}
	return true
}

// EventLog appends task activity and reads it back.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

type jsonlEventLog struct {
	mu  sync.Mutex
	out *os.File
}

// NewJSONLEventLog opens the append-only activity log at path, one JSON
// object per line.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("opening event log: creating directory: %w", err)
	}
	out, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{out: out}, nil
}

// Write stamps events without a time with the current UTC time.
func (l *jsonlEventLog) Write(event Event) error {
	if event.Type == "" {
		return fmt.Errorf("writing event: type is required")
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("writing %s event: %w", event.Type, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing %s event: %w", event.Type, err)
	}
	return nil
}

// Read returns matching events in append order. Lines that do not decode,
// such as a line cut short by a crash, are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	in, err := os.Open(l.out.Name())
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	defer in.Close()

	var events []Event
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadBytes('\n')
		var e Event
		if len(line) > 0 && json.Unmarshal(line, &e) == nil && filter.match(e) {
			events = append(events, e)
		}
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading event log: %w", err)
		}
	}
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.out.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}
