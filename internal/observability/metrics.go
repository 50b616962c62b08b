package observability

import (
	"fmt"
	"time"
)

// Metrics summarises task activity over a time window.
type Metrics struct {
	TasksCreated   int        `json:"tasks_created"`
	TasksCompleted int        `json:"tasks_completed"`
	TasksReopened  int        `json:"tasks_reopened"`
	TasksEdited    int        `json:"tasks_edited"`
	TasksDeleted   int        `json:"tasks_deleted"`
	EventCount     int        `json:"event_count"`
	OldestEvent    *time.Time `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and counts them by type.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EventCount: len(events)}
	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "task.created":
			m.TasksCreated++
		case "task.completed":
			m.TasksCompleted++
		case "task.reopened":
			m.TasksReopened++
		case "task.edited":
			m.TasksEdited++
		case "task.deleted":
			m.TasksDeleted++
		}
	}

	return m, nil
}

// ParseSince turns a duration such as "7d", "30d" or "24h" into the instant
// that far before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	var num int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if num < 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q: must not be negative", s)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
