// Package tui is the full-screen list view of the to-do list. It renders the
// task collection, maps key presses to store operations and plays the row
// enter and exit animations.
package tui

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

// TaskStore is the subset of core.TaskStore the list view drives.
type TaskStore interface {
	Hydrate(ctx context.Context)
	Tasks() []models.Task
	Create(text string) (models.Task, bool)
	Delete(id string) bool
	Toggle(id string) bool
	BeginEdit(id, currentText string) bool
	SetEditBuffer(text string)
	CommitEdit() bool
	CancelEdit()
	Editing() (core.EditState, bool)
}

// Options configures the list view.
type Options struct {
	// AnimationDuration is the length of the enter and exit animations.
	// Zero disables the visual phase; deletes then apply immediately.
	AnimationDuration time.Duration
	FPS               int
	// Now is the clock used to start animations; time.Now when nil.
	Now func() time.Time
}

const (
	focusInput = iota
	focusList
)

// loadedMsg is sent once the store has been hydrated.
type loadedMsg struct{}

// Model is the bubbletea model of the to-do screen.
type Model struct {
	store TaskStore
	tasks []models.Task

	cursor    string // ID of the highlighted task
	cursorIdx int    // last known position of the cursor, used after removals
	focus     int

	input   textinput.Model
	editor  textinput.Model
	menu    *optionsMenu
	keys    keyMap
	help    help.Model
	anim    *animator
	now     func() time.Time
	clock   time.Time
	loading bool

	width  int
	height int
}

// New creates the list view over store. The store is hydrated by the
// command returned from Init.
func New(store TaskStore, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	in := textinput.New()
	in.Placeholder = "Add a new task"
	in.Prompt = "+ "
	in.CharLimit = 256
	in.Width = 40
	in.Focus()

	ed := textinput.New()
	ed.Prompt = ""
	ed.CharLimit = 256
	ed.Width = 40

	return Model{
		store:   store,
		focus:   focusInput,
		input:   in,
		editor:  ed,
		keys:    defaultKeyMap(),
		help:    help.New(),
		anim:    newAnimator(opts.AnimationDuration, opts.FPS),
		now:     opts.Now,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, hydrate(m.store))
}

func hydrate(store TaskStore) tea.Cmd {
	return func() tea.Msg {
		store.Hydrate(context.Background())
		return loadedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.loading = false
		m.refresh()
		return m, nil

	case frameMsg:
		return m.onFrame(time.Time(msg))

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		switch {
		case m.menu != nil:
			return m.updateMenu(msg)
		case m.editingID() != "":
			return m.updateEditor(msg)
		case m.focus == focusInput:
			return m.updateInput(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
	} else if m.editingID() != "" {
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		task, ok := m.store.Create(m.input.Value())
		if !ok {
			return m, nil
		}
		m.input.Reset()
		m.cursor = task.ID
		m.refresh()
		m.clock = m.now()
		m.anim.enter(task.ID, m.clock)
		return m, m.anim.start()

	case key.Matches(msg, m.keys.Focus):
		m.setFocus(focusList)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Focus):
		m.setFocus(focusInput)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Toggle):
		if id := m.actionable(); id != "" {
			m.store.Toggle(id)
			m.refresh()
		}

	case key.Matches(msg, m.keys.Options):
		if id := m.actionable(); id != "" {
			m.menu = newOptionsMenu(id)
		}

	case key.Matches(msg, m.keys.Delete):
		if id := m.actionable(); id != "" {
			return m.startDelete(id)
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.menu.prev()
	case key.Matches(msg, m.keys.Right):
		m.menu.next()
	case key.Matches(msg, m.keys.Cancel):
		m.menu = nil
	case key.Matches(msg, m.keys.Submit):
		choice, id := m.menu.selected, m.menu.taskID
		m.menu = nil
		if choice == menuEdit {
			return m.beginEdit(id)
		}
	}
	return m, nil
}

func (m Model) beginEdit(id string) (tea.Model, tea.Cmd) {
	i := m.indexOf(id)
	if i < 0 || !m.store.BeginEdit(id, m.tasks[i].Text) {
		return m, nil
	}
	m.editor.SetValue(m.tasks[i].Text)
	m.editor.CursorEnd()
	return m, m.editor.Focus()
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.store.SetEditBuffer(m.editor.Value())
		m.store.CommitEdit()
		m.editor.Blur()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.store.CancelEdit()
		m.editor.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.store.SetEditBuffer(m.editor.Value())
	return m, cmd
}

// startDelete runs the first phase of a delete: the row starts its exit
// animation and is removed from the store once the animation finishes.
func (m Model) startDelete(id string) (tea.Model, tea.Cmd) {
	if !m.anim.enabled() {
		m.store.Delete(id)
		m.refresh()
		return m, nil
	}
	m.clock = m.now()
	if !m.anim.exit(id, m.clock) {
		return m, nil
	}
	return m, m.anim.start()
}

func (m Model) onFrame(now time.Time) (tea.Model, tea.Cmd) {
	m.clock = now
	done := m.anim.advance(now)
	if len(done) > 0 {
		for _, id := range done {
			m.store.Delete(id)
		}
		m.refresh()
	}
	return m, m.anim.next()
}

// refresh reloads the task snapshot and keeps the cursor on the same task,
// or on its neighbour when the task is gone.
func (m *Model) refresh() {
	m.tasks = m.store.Tasks()
	if len(m.tasks) == 0 {
		m.cursor, m.cursorIdx = "", 0
		return
	}
	if i := m.indexOf(m.cursor); i >= 0 {
		m.cursorIdx = i
		return
	}
	m.cursorIdx = min(m.cursorIdx, len(m.tasks)-1)
	m.cursor = m.tasks[m.cursorIdx].ID
}

func (m *Model) moveCursor(delta int) {
	if len(m.tasks) == 0 {
		return
	}
	i := max(m.indexOf(m.cursor), 0) + delta
	i = min(max(i, 0), len(m.tasks)-1)
	m.cursor, m.cursorIdx = m.tasks[i].ID, i
}

func (m *Model) setFocus(focus int) {
	m.focus = focus
	if focus == focusInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

// actionable returns the highlighted task unless it is already leaving.
func (m Model) actionable() string {
	if m.cursor == "" || m.indexOf(m.cursor) < 0 || m.anim.exiting(m.cursor) {
		return ""
	}
	return m.cursor
}

func (m Model) editingID() string {
	edit, ok := m.store.Editing()
	if !ok {
		return ""
	}
	return edit.TaskID
}

func (m Model) indexOf(id string) int {
	return slices.IndexFunc(m.tasks, func(t models.Task) bool { return t.ID == id })
}

func (m Model) View() string {
	title := titleStyle.Render(" To-Do List ")
	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading...\n", title)
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")

	box := inputStyle
	if m.focus == focusInput && m.menu == nil && m.editingID() == "" {
		box = activeInputStyle
	}
	b.WriteString(box.Render(m.input.View()))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(emptyStyle.Render("  No tasks yet."))
		b.WriteString("\n")
	}
	editing := m.editingID()
	for _, t := range m.tasks {
		b.WriteString(m.renderRow(t, editing))
		b.WriteString("\n")
	}

	if m.menu != nil {
		b.WriteString("\n")
		b.WriteString(m.menu.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.helpKeys(editing)))
	return b.String()
}

func (m Model) helpKeys(editing string) help.KeyMap {
	switch {
	case editing != "":
		return editKeys{m.keys}
	case m.focus == focusInput:
		return inputKeys{m.keys}
	default:
		return listKeys{m.keys}
	}
}

func (m Model) renderRow(t models.Task, editing string) string {
	pointer := "  "
	if m.focus == focusList && t.ID == m.cursor {
		pointer = cursorStyle.Render("> ")
	}

	if t.ID == editing {
		return pointer + "✎ " + m.editor.View()
	}

	check := "[ ] "
	style := labelStyle
	if t.Completed {
		check = "[x] "
		style = completedStyle
	}

	label := t.Text
	if v := m.anim.visibility(t.ID, m.clock); v < 1 {
		label = revealPrefix(label, v)
		style = style.Foreground(fadeColor(v))
	}
	return pointer + check + style.Render(label)
}

// revealPrefix keeps the leading share of text given by visibility, which
// makes a row grow in and shrink out.
func revealPrefix(text string, visibility float64) string {
	runes := []rune(text)
	n := int(math.Ceil(visibility * float64(len(runes))))
	n = min(max(n, 0), len(runes))
	return string(runes[:n])
}

// Tasks returns the snapshot currently on screen.
func (m Model) Tasks() []models.Task {
	return models.CloneTasks(m.tasks)
}
