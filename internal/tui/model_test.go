package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/storage"
	"github.com/valter-silva-au/todo/pkg/models"
)

const testDuration = 500 * time.Millisecond

func newTestModel(t *testing.T, duration time.Duration) (Model, core.TaskStore, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	store := core.NewTaskStore(kv, &core.SequentialIDGenerator{}, nil, nil, core.StoreOptions{IncompleteFirst: true})
	t.Cleanup(store.Flush)

	m := New(store, Options{
		AnimationDuration: duration,
		FPS:               30,
		Now:               func() time.Time { return t0 },
	})
	m = send(t, m, hydrate(store)())
	return m, store, kv
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, keyMsg(k))
	}
	return m
}

func texts(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Text
	}
	return out
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_LoadingBlocksInput(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := core.NewTaskStore(kv, &core.SequentialIDGenerator{}, nil, nil, core.StoreOptions{})
	m := New(store, Options{AnimationDuration: testDuration})

	if cmd := m.Init(); cmd == nil {
		t.Fatal("expected Init to return a command")
	}
	if !strings.Contains(m.View(), "Loading...") {
		t.Errorf("expected loading view, got %q", m.View())
	}

	m = press(t, m, "Buy milk", "enter")
	if store.Len() != 0 {
		t.Errorf("expected input to be ignored while loading, got %d tasks", store.Len())
	}

	if _, cmd := m.Update(keyMsg("ctrl+c")); !isQuit(cmd) {
		t.Error("expected ctrl+c to quit while loading")
	}
}

func TestModel_HydratesPersistedTasks(t *testing.T) {
	kv := storage.NewMemoryKV()
	data, err := storage.EncodeTasks([]models.Task{
		{ID: "a", Text: "Buy milk", Completed: true},
		{ID: "b", Text: "Walk dog"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(context.Background(), core.DefaultStorageKey, data); err != nil {
		t.Fatal(err)
	}

	store := core.NewTaskStore(kv, nil, nil, nil, core.StoreOptions{})
	m := New(store, Options{})
	m = send(t, m, hydrate(store)())

	view := m.View()
	if strings.Contains(view, "Loading...") {
		t.Error("expected loading to finish")
	}
	if !strings.Contains(view, "[x] Buy milk") || !strings.Contains(view, "[ ] Walk dog") {
		t.Errorf("expected both persisted tasks in view, got:\n%s", view)
	}
}

func TestModel_EmptyList(t *testing.T) {
	m, _, _ := newTestModel(t, testDuration)
	if !strings.Contains(m.View(), "No tasks yet.") {
		t.Errorf("expected empty state, got:\n%s", m.View())
	}
}

func TestModel_CreateTask(t *testing.T) {
	m, store, _ := newTestModel(t, testDuration)

	m = press(t, m, "Buy milk")
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)

	if got := texts(store.Tasks()); len(got) != 1 || got[0] != "Buy milk" {
		t.Fatalf("expected [Buy milk], got %v", got)
	}
	if m.input.Value() != "" {
		t.Errorf("expected input to be cleared, got %q", m.input.Value())
	}
	if cmd == nil {
		t.Error("expected the enter animation to start the clock")
	}
	if !m.anim.active() {
		t.Error("expected an enter animation for the new row")
	}
}

func TestModel_CreateBlankIsNoop(t *testing.T) {
	m, store, _ := newTestModel(t, testDuration)

	m = press(t, m, "   ", "enter")
	if store.Len() != 0 {
		t.Errorf("expected no task, got %d", store.Len())
	}
	if m.input.Value() != "   " {
		t.Errorf("expected input to keep its text, got %q", m.input.Value())
	}
	if m.anim.active() {
		t.Error("expected no animation")
	}
}

func TestModel_EnterAnimationRevealsRow(t *testing.T) {
	m, _, _ := newTestModel(t, testDuration)
	m = press(t, m, "Buy milk", "enter")

	if strings.Contains(m.View(), "Buy milk") {
		t.Error("expected the new row to start hidden")
	}

	m = send(t, m, frameMsg(t0.Add(testDuration/2)))
	if !strings.Contains(m.View(), "[ ] Buy ") || strings.Contains(m.View(), "Buy milk") {
		t.Errorf("expected half the label mid-animation, got:\n%s", m.View())
	}

	next, cmd := m.Update(frameMsg(t0.Add(testDuration)))
	m = next.(Model)
	if !strings.Contains(m.View(), "[ ] Buy milk") {
		t.Errorf("expected full label after the animation, got:\n%s", m.View())
	}
	if cmd != nil {
		t.Error("expected the clock to stop once idle")
	}
}

func TestModel_ToggleFromList(t *testing.T) {
	m, store, _ := newTestModel(t, 0)
	m = press(t, m, "Buy milk", "enter", "tab", " ")

	task, ok := store.Get("1")
	if !ok || !task.Completed {
		t.Fatalf("expected task to be completed, got %+v", task)
	}
	if !strings.Contains(m.View(), "[x] Buy milk") {
		t.Errorf("expected completed row, got:\n%s", m.View())
	}

	m = press(t, m, "enter")
	if task, _ := store.Get("1"); task.Completed {
		t.Error("expected enter to toggle back to incomplete")
	}
}

func TestModel_Scenario(t *testing.T) {
	m, store, kv := newTestModel(t, testDuration)

	m = press(t, m, "Buy milk", "enter")
	m = send(t, m, frameMsg(t0.Add(testDuration)))
	m = press(t, m, "tab", " ", "tab", "Walk dog", "enter")
	m = send(t, m, frameMsg(t0.Add(testDuration)))

	if got := texts(store.Tasks()); len(got) != 2 || got[0] != "Walk dog" || got[1] != "Buy milk" {
		t.Fatalf("expected [Walk dog Buy milk], got %v", got)
	}

	// Cursor follows the new task, then moves down to Buy milk.
	m = press(t, m, "tab", "down")
	if m.cursor != "1" {
		t.Fatalf("expected cursor on Buy milk, got %q", m.cursor)
	}

	next, cmd := m.Update(keyMsg("d"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected the exit animation to start the clock")
	}
	if store.Len() != 2 {
		t.Fatal("expected delete to wait for the exit animation")
	}

	m = send(t, m, frameMsg(t0.Add(testDuration/2)))
	if store.Len() != 2 {
		t.Fatal("expected task to remain mid-animation")
	}

	m = send(t, m, frameMsg(t0.Add(testDuration)))
	if got := texts(store.Tasks()); len(got) != 1 || got[0] != "Walk dog" {
		t.Fatalf("expected [Walk dog], got %v", got)
	}
	if m.cursor != "2" {
		t.Errorf("expected cursor to move to the remaining task, got %q", m.cursor)
	}

	store.Flush()
	data, err := kv.Get(context.Background(), core.DefaultStorageKey)
	if err != nil {
		t.Fatal(err)
	}
	persisted, err := storage.DecodeTasks(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(persisted) != 1 || persisted[0].Text != "Walk dog" || persisted[0].Completed {
		t.Errorf("expected persisted [Walk dog], got %+v", persisted)
	}
}

func TestModel_DeleteWithoutAnimation(t *testing.T) {
	m, store, _ := newTestModel(t, 0)
	m = press(t, m, "Buy milk", "enter", "tab")

	next, cmd := m.Update(keyMsg("x"))
	m = next.(Model)
	if cmd != nil {
		t.Error("expected no animation clock")
	}
	if store.Len() != 0 {
		t.Errorf("expected immediate delete, got %d tasks", store.Len())
	}
	if m.cursor != "" {
		t.Errorf("expected cursor to be cleared, got %q", m.cursor)
	}
}

func TestModel_LeavingRowIgnoresActions(t *testing.T) {
	m, store, _ := newTestModel(t, testDuration)
	m = press(t, m, "Buy milk", "enter")
	m = send(t, m, frameMsg(t0.Add(testDuration)))
	m = press(t, m, "tab", "d", " ", "e")

	if task, _ := store.Get("1"); task.Completed {
		t.Error("expected toggle on a leaving row to be ignored")
	}
	if m.menu != nil {
		t.Error("expected options menu not to open on a leaving row")
	}
}

func TestModel_EditThroughMenu(t *testing.T) {
	m, store, _ := newTestModel(t, 0)
	m = press(t, m, "Buy milk", "enter", "tab", "e")

	if m.menu == nil {
		t.Fatal("expected options menu to open")
	}
	view := m.View()
	for _, want := range []string{"Task Options", "What would you like to do?", "Edit", "Cancel"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected menu to contain %q", want)
		}
	}

	m = press(t, m, "enter")
	edit, ok := store.Editing()
	if !ok || edit.TaskID != "1" || edit.Buffer != "Buy milk" {
		t.Fatalf("expected editing task 1 with its text, got %+v %v", edit, ok)
	}

	m = press(t, m, " oat")
	if edit, _ := store.Editing(); edit.Buffer != "Buy milk oat" {
		t.Errorf("expected buffer to mirror the field, got %q", edit.Buffer)
	}

	m = press(t, m, "enter")
	if _, ok := store.Editing(); ok {
		t.Error("expected edit mode to end")
	}
	if task, _ := store.Get("1"); task.Text != "Buy milk oat" {
		t.Errorf("expected committed text, got %q", task.Text)
	}
	if !strings.Contains(m.View(), "Buy milk oat") {
		t.Errorf("expected view to show new text, got:\n%s", m.View())
	}
}

func TestModel_EditEscapeCancels(t *testing.T) {
	m, store, _ := newTestModel(t, 0)
	m = press(t, m, "Buy milk", "enter", "tab", "o", "enter", "!!!", "esc")

	if _, ok := store.Editing(); ok {
		t.Error("expected edit mode to end")
	}
	if task, _ := store.Get("1"); task.Text != "Buy milk" {
		t.Errorf("expected text unchanged, got %q", task.Text)
	}

	// The list has focus again: q quits.
	_, cmd := m.Update(keyMsg("q"))
	if !isQuit(cmd) {
		t.Error("expected q to quit from the list")
	}
}

func TestModel_MenuCancel(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{"cancel button", []string{"right", "enter"}},
		{"escape", []string{"esc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store, _ := newTestModel(t, 0)
			m = press(t, m, "Buy milk", "enter", "tab", "e")
			m = press(t, m, tt.keys...)

			if m.menu != nil {
				t.Error("expected menu to close")
			}
			if _, ok := store.Editing(); ok {
				t.Error("expected no edit mode")
			}
			if task, _ := store.Get("1"); task.Text != "Buy milk" {
				t.Errorf("expected text unchanged, got %q", task.Text)
			}
		})
	}
}

func TestModel_CursorMovement(t *testing.T) {
	m, _, _ := newTestModel(t, 0)
	m = press(t, m, "one", "enter", "two", "enter", "three", "enter", "tab")

	if m.cursor != "3" {
		t.Fatalf("expected cursor on the newest task, got %q", m.cursor)
	}
	m = press(t, m, "up", "k")
	if m.cursor != "1" {
		t.Errorf("expected cursor on first task, got %q", m.cursor)
	}
	m = press(t, m, "k")
	if m.cursor != "1" {
		t.Errorf("expected cursor to stay at the top, got %q", m.cursor)
	}
	m = press(t, m, "j", "down", "down")
	if m.cursor != "3" {
		t.Errorf("expected cursor to stop at the bottom, got %q", m.cursor)
	}
}

func TestModel_QuitOnlyFromList(t *testing.T) {
	m, _, _ := newTestModel(t, 0)

	next, cmd := m.Update(keyMsg("q"))
	if isQuit(cmd) {
		t.Error("expected q to be typed into the input")
	}
	if got := next.(Model).input.Value(); got != "q" {
		t.Errorf("expected input %q, got %q", "q", got)
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t, 0)
	m = press(t, m, "tab", "?")
	if !m.help.ShowAll {
		t.Error("expected full help")
	}
	m = press(t, m, "?")
	if m.help.ShowAll {
		t.Error("expected short help")
	}
}

// countingStore records the edit-state calls the view makes on the store.
type countingStore struct {
	core.TaskStore
	calls []string
}

func (c *countingStore) BeginEdit(id, text string) bool {
	c.calls = append(c.calls, "BeginEdit")
	return c.TaskStore.BeginEdit(id, text)
}

func (c *countingStore) CancelEdit() {
	c.calls = append(c.calls, "CancelEdit")
	c.TaskStore.CancelEdit()
}

func TestModel_MenuCancelOnlyClosesMenu(t *testing.T) {
	for _, keys := range [][]string{{"right", "enter"}, {"esc"}} {
		store := &countingStore{TaskStore: core.NewTaskStore(storage.NewMemoryKV(), &core.SequentialIDGenerator{}, nil, nil, core.StoreOptions{})}
		t.Cleanup(store.Flush)

		m := New(store, Options{Now: func() time.Time { return t0 }})
		m = send(t, m, hydrate(store)())
		m = press(t, m, "Buy milk", "enter", "tab", "e")
		m = press(t, m, keys...)

		if m.menu != nil {
			t.Errorf("%v: expected menu to close", keys)
		}
		if len(store.calls) != 0 {
			t.Errorf("%v: expected no edit-state calls, got %v", keys, store.calls)
		}
	}
}
