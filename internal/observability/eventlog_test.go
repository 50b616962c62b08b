package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openEventLog(t *testing.T, path string) EventLog {
	t.Helper()
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("NewJSONLEventLog() error = %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestEventLog_HistoryOfOneTask(t *testing.T) {
	log := openEventLog(t, filepath.Join(t.TempDir(), "events.jsonl"))

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	history := []Event{
		{Time: base, Type: "task.created", TaskID: "a", Data: map[string]any{"text": "Buy milk"}},
		{Time: base.Add(time.Minute), Type: "task.created", TaskID: "b", Data: map[string]any{"text": "Walk dog"}},
		{Time: base.Add(2 * time.Minute), Type: "task.completed", TaskID: "a"},
		{Time: base.Add(3 * time.Minute), Type: "task.edited", TaskID: "b", Data: map[string]any{"text": "Walk the dog"}},
		{Time: base.Add(4 * time.Minute), Type: "task.deleted", TaskID: "a", Data: map[string]any{"completed": true}},
	}
	for _, e := range history {
		if err := log.Write(e); err != nil {
			t.Fatalf("Write(%s) error = %v", e.Type, err)
		}
	}

	got, err := log.Read(EventFilter{TaskID: "a"})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var types []string
	for _, e := range got {
		types = append(types, e.Type)
	}
	if strings.Join(types, ",") != "task.created,task.completed,task.deleted" {
		t.Errorf("history of a = %v", types)
	}
	if got[0].Data["text"] != "Buy milk" || got[2].Data["completed"] != true {
		t.Errorf("payloads did not round-trip: %+v", got)
	}

	texts, err := log.Read(EventFilter{Types: []string{"task.created", "task.edited"}, Since: base.Add(time.Minute)})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(texts) != 2 || texts[1].Data["text"] != "Walk the dog" {
		t.Errorf("text changes since %v = %+v", base.Add(time.Minute), texts)
	}
}

func TestEventLog_ReopenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")

	first, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("NewJSONLEventLog() error = %v", err)
	}
	if err := first.Write(Event{Type: "task.created", TaskID: "a"}); err != nil {
		t.Fatal(err)
	}
	_ = first.Close()

	second := openEventLog(t, path)
	if err := second.Write(Event{Type: "task.deleted", TaskID: "a"}); err != nil {
		t.Fatal(err)
	}

	got, err := second.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 2 || got[0].Type != "task.created" || got[1].Type != "task.deleted" {
		t.Errorf("expected both sessions' events, got %+v", got)
	}
	if got[0].Time.IsZero() {
		t.Error("expected Write to stamp the time")
	}
}

func TestEventLog_SkipsTornLastLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"time":"2026-03-01T09:00:00Z","type":"task.created","task_id":"a"}` + "\n" +
		`{"time":"2026-03-01T09:01:00Z","type":"task.comp`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	log := openEventLog(t, path)
	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || got[0].TaskID != "a" {
		t.Errorf("expected only the complete line, got %+v", got)
	}
}

func TestEventLog_LongTaskText(t *testing.T) {
	log := openEventLog(t, filepath.Join(t.TempDir(), "events.jsonl"))

	text := strings.Repeat("x", 128*1024)
	if err := log.Write(Event{Type: "task.edited", TaskID: "a", Data: map[string]any{"text": text}}); err != nil {
		t.Fatal(err)
	}

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 1 || got[0].Data["text"] != text {
		t.Errorf("expected the long line to be read back whole")
	}
}

func TestEventLog_RequiresType(t *testing.T) {
	log := openEventLog(t, filepath.Join(t.TempDir(), "events.jsonl"))
	if err := log.Write(Event{TaskID: "a"}); err == nil {
		t.Error("expected an error for an event without type")
	}
}
