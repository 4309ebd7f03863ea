// Package schedule provides the two timers the dashboard views need: a
// repeating refresh timer and a debounced delayed message. Both hand out
// tea.Tick commands and are driven from the Bubble Tea update loop, so
// they need no locking.
package schedule

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Repeater delivers a message every interval until stopped. Each Start
// opens a new generation; ticks carry the generation they were scheduled
// for and only ticks of the running generation are accepted.
type Repeater struct {
	interval time.Duration
	msg      func(gen uint64) tea.Msg

	gen     uint64
	running bool
}

// NewRepeater creates a stopped repeater. msg builds the tick message for
// a generation.
func NewRepeater(interval time.Duration, msg func(gen uint64) tea.Msg) *Repeater {
	return &Repeater{interval: interval, msg: msg}
}

// Interval returns the tick period.
func (r *Repeater) Interval() time.Duration { return r.interval }

// Start begins ticking and returns the command for the first tick. A
// running repeater is restarted: ticks already scheduled are invalidated
// and the next one is a full interval away. A zero interval never starts.
func (r *Repeater) Start() tea.Cmd {
	if r.interval <= 0 {
		return nil
	}
	r.gen++
	r.running = true
	return r.tick()
}

// Stop invalidates every scheduled tick.
func (r *Repeater) Stop() {
	r.running = false
	r.gen++
}

// Running reports whether the repeater is ticking.
func (r *Repeater) Running() bool { return r.running }

// Generation returns the generation current ticks are scheduled for.
func (r *Repeater) Generation() uint64 { return r.gen }

// Accept reports whether a tick scheduled for gen belongs to the running
// generation.
func (r *Repeater) Accept(gen uint64) bool {
	return r.running && gen == r.gen
}

// Next schedules the tick after an accepted one. It returns nil once the
// repeater is stopped.
func (r *Repeater) Next() tea.Cmd {
	if !r.running {
		return nil
	}
	return r.tick()
}

func (r *Repeater) tick() tea.Cmd {
	gen := r.gen
	return tea.Tick(r.interval, func(time.Time) tea.Msg {
		return r.msg(gen)
	})
}
