package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valter-silva-au/todo/internal/storage"
	"github.com/valter-silva-au/todo/pkg/models"
	"go.uber.org/zap"
)

// DefaultStorageKey is the slot the collection is persisted under.
const DefaultStorageKey = "tasks"

var (
	// ErrTaskNotFound is returned by Resolve when no task matches a reference.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAmbiguousRef is returned by Resolve when an ID prefix matches more
	// than one task.
	ErrAmbiguousRef = errors.New("ambiguous task reference")
)

// EditState describes the single task currently being edited.
type EditState struct {
	TaskID string
	Buffer string
}

// StoreOptions configures a TaskStore.
type StoreOptions struct {
	// Key is the storage slot; DefaultStorageKey when empty.
	Key string
	// IncompleteFirst keeps every incomplete task ahead of every completed
	// one, stable within each group. The order is re-established on create
	// and toggle; hydrated data keeps its stored order.
	IncompleteFirst bool
	// WriteTimeout bounds each snapshot write; zero means no bound.
	WriteTimeout time.Duration
}

// TaskStore owns the ordered task collection and the edit-mode state.
// Every successful mutation schedules a write of the full collection; write
// and read failures are logged and otherwise ignored.
type TaskStore interface {
	// Hydrate reads the persisted collection once. Later calls do nothing.
	Hydrate(ctx context.Context)
	Tasks() []models.Task
	Get(id string) (models.Task, bool)
	Len() int
	Resolve(ref string) (models.Task, error)

	Create(text string) (models.Task, bool)
	Delete(id string) bool
	Toggle(id string) bool

	// Edit replaces the text of a task in one step, outside the interactive
	// edit state. Blank text and absent ids are no-ops.
	Edit(id, text string) bool

	BeginEdit(id, currentText string) bool
	SetEditBuffer(text string)
	CommitEdit() bool
	CancelEdit()
	Editing() (EditState, bool)

	// Persist schedules a write of the current collection.
	Persist()
	// Flush waits for all scheduled writes to finish.
	Flush()
}

type taskStore struct {
	mu       sync.Mutex
	tasks    []models.Task
	edit     *EditState
	hydrated bool
	gen      uint64

	kv     storage.KVStore
	opts   StoreOptions
	ids    IDGenerator
	events EventLogger
	log    *zap.Logger
	writer *snapshotWriter
}

// NewTaskStore creates an empty TaskStore persisting to kv. ids defaults to
// UUIDs, events and log may be nil.
func NewTaskStore(kv storage.KVStore, ids IDGenerator, events EventLogger, log *zap.Logger, opts StoreOptions) TaskStore {
	if opts.Key == "" {
		opts.Key = DefaultStorageKey
	}
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &taskStore{
		tasks:  []models.Task{},
		kv:     kv,
		opts:   opts,
		ids:    ids,
		events: events,
		log:    log,
		writer: newSnapshotWriter(kv, opts.Key, opts.WriteTimeout, log),
	}
}

func (s *taskStore) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return
	}
	s.hydrated = true

	data, err := s.kv.Get(ctx, s.opts.Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("loading tasks failed", zap.String("key", s.opts.Key), zap.Error(err))
		}
		return
	}

	loaded, err := storage.DecodeTasks(data)
	if err != nil {
		s.log.Error("loading tasks failed", zap.String("key", s.opts.Key), zap.Error(err))
		return
	}

	seen := make(map[string]bool, len(loaded))
	tasks := make([]models.Task, 0, len(loaded))
	for _, t := range loaded {
		if t.ID == "" {
			t.ID = s.ids.NewID()
		}
		if seen[t.ID] {
			s.log.Warn("skipping task with duplicate id", zap.String("id", t.ID))
			continue
		}
		if strings.TrimSpace(t.Text) == "" {
			s.log.Warn("skipping task with empty text", zap.String("id", t.ID))
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	s.tasks = tasks
	s.log.Debug("tasks loaded", zap.Int("count", len(tasks)))
}

func (s *taskStore) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneTasks(s.tasks)
}

func (s *taskStore) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

func (s *taskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Resolve looks a task up by exact ID, then by 1-based position, then by
// unique ID prefix.
func (s *taskStore) Resolve(ref string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, fmt.Errorf("resolving task: empty reference: %w", ErrTaskNotFound)
	}
	if i := s.indexOf(ref); i >= 0 {
		return s.tasks[i], nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(s.tasks) {
			return s.tasks[n-1], nil
		}
	}

	var match *models.Task
	for i := range s.tasks {
		if strings.HasPrefix(s.tasks[i].ID, ref) {
			if match != nil {
				return models.Task{}, fmt.Errorf("resolving task %q: %w", ref, ErrAmbiguousRef)
			}
			match = &s.tasks[i]
		}
	}
	if match == nil {
		return models.Task{}, fmt.Errorf("resolving task %q: %w", ref, ErrTaskNotFound)
	}
	return *match, nil
}

func (s *taskStore) Create(text string) (models.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, false
	}

	s.mu.Lock()
	id := s.ids.NewID()
	for s.indexOf(id) >= 0 {
		id = s.ids.NewID()
	}
	task := models.Task{ID: id, Text: text}
	s.tasks = append(s.tasks, task)
	if s.opts.IncompleteFirst {
		SortIncompleteFirst(s.tasks)
	}
	s.persistLocked()
	s.mu.Unlock()

	s.logEvent(EventTaskCreated, map[string]any{"id": task.ID, "text": task.Text})
	return task, true
}

func (s *taskStore) Delete(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	if s.edit != nil && s.edit.TaskID == id {
		s.edit = nil
	}
	s.persistLocked()
	s.mu.Unlock()

	s.logEvent(EventTaskDeleted, map[string]any{"id": removed.ID, "completed": removed.Completed})
	return true
}

func (s *taskStore) Toggle(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	completed := s.tasks[i].Completed
	if s.opts.IncompleteFirst {
		SortIncompleteFirst(s.tasks)
	}
	s.persistLocked()
	s.mu.Unlock()

	eventType := EventTaskReopened
	if completed {
		eventType = EventTaskCompleted
	}
	s.logEvent(eventType, map[string]any{"id": id})
	return true
}

func (s *taskStore) Edit(id, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	changed := s.setTextLocked(i, text)
	s.mu.Unlock()

	if changed {
		s.logEvent(EventTaskEdited, map[string]any{"id": id, "text": text})
	}
	return true
}

func (s *taskStore) BeginEdit(id, currentText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return false
	}
	s.edit = &EditState{TaskID: id, Buffer: currentText}
	return true
}

func (s *taskStore) SetEditBuffer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit != nil {
		s.edit.Buffer = text
	}
}

// CommitEdit writes the buffer into the task being edited and leaves edit
// mode. The write is dropped when the task is gone or the buffer is blank.
func (s *taskStore) CommitEdit() bool {
	s.mu.Lock()
	edit := s.edit
	s.edit = nil
	if edit == nil {
		s.mu.Unlock()
		return false
	}
	i := s.indexOf(edit.TaskID)
	text := strings.TrimSpace(edit.Buffer)
	if i < 0 || text == "" {
		s.mu.Unlock()
		return false
	}
	changed := s.setTextLocked(i, text)
	s.mu.Unlock()

	if changed {
		s.logEvent(EventTaskEdited, map[string]any{"id": edit.TaskID, "text": text})
	}
	return true
}

func (s *taskStore) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}

func (s *taskStore) Editing() (EditState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return EditState{}, false
	}
	return *s.edit, true
}

func (s *taskStore) Persist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}

func (s *taskStore) Flush() {
	s.writer.wait()
}

// persistLocked encodes the collection and hands it to the writer.
// s.mu must be held.
func (s *taskStore) persistLocked() {
	data, err := storage.EncodeTasks(s.tasks)
	if err != nil {
		s.log.Error("encoding tasks failed", zap.Error(err))
		return
	}
	s.gen++
	s.writer.schedule(s.gen, data)
}

// setTextLocked writes text into the task at i and schedules a write. It
// reports whether the text changed. s.mu must be held.
func (s *taskStore) setTextLocked(i int, text string) bool {
	changed := s.tasks[i].Text != text
	s.tasks[i].Text = text
	s.persistLocked()
	return changed
}

func (s *taskStore) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

func (s *taskStore) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.LogEvent(eventType, data); err != nil {
		s.log.Warn("writing activity event failed", zap.String("type", eventType), zap.Error(err))
	}
}

// SortIncompleteFirst moves every incomplete task ahead of every completed
// one, keeping the relative order inside each group.
func SortIncompleteFirst(tasks []models.Task) {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		switch {
		case a.Completed == b.Completed:
			return 0
		case a.Completed:
			return 1
		default:
			return -1
		}
	})
}
