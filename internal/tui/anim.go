package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg is delivered by the animation clock. Its value is the frame time.
type frameMsg time.Time

// rowAnim tracks the running animations of one row. A zero start time means
// that animation is not running.
type rowAnim struct {
	enterStart time.Time
	exitStart  time.Time
}

// animator is a side table of row animations keyed by task ID. It never
// touches the task collection itself: finished exits are reported back to
// the caller, which applies the deletion.
type animator struct {
	duration time.Duration
	interval time.Duration
	rows     map[string]*rowAnim
	ticking  bool
}

func newAnimator(duration time.Duration, fps int) *animator {
	if fps <= 0 {
		fps = 30
	}
	return &animator{
		duration: duration,
		interval: time.Second / time.Duration(fps),
		rows:     make(map[string]*rowAnim),
	}
}

// enabled reports whether animations have a visual phase at all.
func (a *animator) enabled() bool {
	return a.duration > 0
}

func (a *animator) row(id string) *rowAnim {
	r, ok := a.rows[id]
	if !ok {
		r = &rowAnim{}
		a.rows[id] = r
	}
	return r
}

// enter starts the one-shot appearance animation of a new row.
func (a *animator) enter(id string, now time.Time) {
	if !a.enabled() {
		return
	}
	a.row(id).enterStart = now
}

// exit starts the removal animation of a row. It returns false when the row
// is already leaving.
func (a *animator) exit(id string, now time.Time) bool {
	if a.exiting(id) {
		return false
	}
	a.row(id).exitStart = now
	return true
}

func (a *animator) exiting(id string) bool {
	r, ok := a.rows[id]
	return ok && !r.exitStart.IsZero()
}

func (a *animator) progress(start, now time.Time) float64 {
	if start.IsZero() || a.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(a.duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// visibility is enter progress times the remaining exit fraction, in [0, 1].
func (a *animator) visibility(id string, now time.Time) float64 {
	r, ok := a.rows[id]
	if !ok {
		return 1
	}
	enter := a.progress(r.enterStart, now)
	exit := 0.0
	if !r.exitStart.IsZero() {
		exit = a.progress(r.exitStart, now)
	}
	return enter * (1 - exit)
}

// advance drops finished animations and returns the IDs whose exit
// animation completed at now.
func (a *animator) advance(now time.Time) []string {
	var done []string
	for id, r := range a.rows {
		if !r.exitStart.IsZero() {
			if a.progress(r.exitStart, now) >= 1 {
				done = append(done, id)
				delete(a.rows, id)
			}
			continue
		}
		if a.progress(r.enterStart, now) >= 1 {
			delete(a.rows, id)
		}
	}
	return done
}

func (a *animator) active() bool {
	return len(a.rows) > 0
}

// start returns the tick command when the clock is idle and there is
// something to animate. Only one tick loop runs at a time.
func (a *animator) start() tea.Cmd {
	if a.ticking || !a.active() {
		return nil
	}
	a.ticking = true
	return a.tick()
}

// next is called for every frame; it keeps the loop alive while animations
// remain.
func (a *animator) next() tea.Cmd {
	if !a.active() {
		a.ticking = false
		return nil
	}
	return a.tick()
}

func (a *animator) tick() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
