package watch

import (
	"context"
	"time"
)

// Debouncer coalesces bursts of file change notifications into single
// rebuild triggers. A quiet window postpones the trigger while events
// keep arriving; the max delay bounds how long a busy editor can
// postpone it.
type Debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration

	events   chan struct{}
	triggers chan struct{}
}

// NewDebouncer builds a debouncer. Zero durations get sane defaults.
func NewDebouncer(quiet, maxDelay time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = 100 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	return &Debouncer{
		quiet:    quiet,
		maxDelay: maxDelay,
		events:   make(chan struct{}, 64),
		triggers: make(chan struct{}, 1),
	}
}

// Notify records a change. Never blocks; a full event buffer means a
// trigger is already overdue.
func (d *Debouncer) Notify() {
	select {
	case d.events <- struct{}{}:
	default:
	}
}

// Triggers delivers one value per coalesced burst.
func (d *Debouncer) Triggers() <-chan struct{} {
	return d.triggers
}

// Run owns the timers. It returns when ctx is done.
func (d *Debouncer) Run(ctx context.Context) {
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	var quietC, maxC <-chan time.Time

	emit := func() {
		select {
		case d.triggers <- struct{}{}:
		default:
		}
		quietC, maxC = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.events:
			resetTimer(quietTimer, d.quiet)
			quietC = quietTimer.C
			if maxC == nil {
				resetTimer(maxTimer, d.maxDelay)
				maxC = maxTimer.C
			}
		case <-quietC:
			emit()
		case <-maxC:
			emit()
		}
	}
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	stopTimer(t)
	return t
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, after time.Duration) {
	stopTimer(t)
	t.Reset(after)
}
