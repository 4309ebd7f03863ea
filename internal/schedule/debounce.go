package schedule

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Debouncer keeps only the last of a burst of triggers. Every trigger gets
// a sequence number; the settled message of an older trigger is rejected
// by Settle.
type Debouncer struct {
	delay   time.Duration
	seq     uint64
	pending bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger supersedes any pending trigger and returns a command delivering
// msg(seq) once the delay has passed.
func (d *Debouncer) Trigger(msg func(seq uint64) tea.Msg) tea.Cmd {
	d.seq++
	d.pending = true
	seq := d.seq
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return msg(seq)
	})
}

// Settle reports whether seq is the latest pending trigger and clears it.
func (d *Debouncer) Settle(seq uint64) bool {
	if !d.pending || seq != d.seq {
		return false
	}
	d.pending = false
	return true
}

// Cancel drops the pending trigger and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	was := d.pending
	d.pending = false
	d.seq++
	return was
}

// Pending reports whether a trigger is waiting to settle.
func (d *Debouncer) Pending() bool { return d.pending }
