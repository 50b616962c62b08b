package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMetricsCalculator_Calculate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	types := []string{
		"task.created",
		"task.created",
		"task.completed",
		"task.reopened",
		"task.completed",
		"task.edited",
		"task.deleted",
		"unrelated.event",
	}
	for i, typ := range types {
		if err := log.Write(Event{Time: base.Add(time.Duration(i) * time.Hour), Type: typ}); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}

	if m.TasksCreated != 2 {
		t.Errorf("TasksCreated = %d, want 2", m.TasksCreated)
	}
	if m.TasksCompleted != 2 {
		t.Errorf("TasksCompleted = %d, want 2", m.TasksCompleted)
	}
	if m.TasksReopened != 1 {
		t.Errorf("TasksReopened = %d, want 1", m.TasksReopened)
	}
	if m.TasksEdited != 1 {
		t.Errorf("TasksEdited = %d, want 1", m.TasksEdited)
	}
	if m.TasksDeleted != 1 {
		t.Errorf("TasksDeleted = %d, want 1", m.TasksDeleted)
	}
	if m.EventCount != len(types) {
		t.Errorf("EventCount = %d, want %d", m.EventCount, len(types))
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("OldestEvent = %v, want %v", m.OldestEvent, base)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(7*time.Hour)) {
		t.Errorf("NewestEvent = %v, want %v", m.NewestEvent, base.Add(7*time.Hour))
	}
}

func TestMetricsCalculator_SinceFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	_ = log.Write(Event{Time: base, Type: "task.created"})
	_ = log.Write(Event{Time: base.Add(48 * time.Hour), Type: "task.created"})

	m, err := NewMetricsCalculator(log).Calculate(base.Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.TasksCreated != 1 {
		t.Errorf("TasksCreated = %d, want 1", m.TasksCreated)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculating metrics: %v", err)
	}
	if m.EventCount != 0 || m.OldestEvent != nil || m.NewestEvent != nil {
		t.Errorf("expected empty metrics, got %+v", m)
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"7d", now.AddDate(0, 0, -7), false},
		{"30d", now.AddDate(0, 0, -30), false},
		{"24h", now.Add(-24 * time.Hour), false},
		{"0d", now, false},
		{"d", time.Time{}, true},
		{"7w", time.Time{}, true},
		{"xd", time.Time{}, true},
		{"-1d", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSince(tt.input, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseSince(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
