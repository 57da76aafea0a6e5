package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
)

// Repeat intervals for each warning category. These gate how often a
// warning re-fires while its condition stays true, independently of the
// dispatcher's cooldown table.
const (
	sittingCriticalRepeat  = 10 * time.Minute
	sittingWarningRepeat   = 15 * time.Minute
	standingCriticalRepeat = 10 * time.Minute
	standingWarningRepeat  = 15 * time.Minute
	inactivityRepeat       = 20 * time.Minute
)

// Notifier accepts alert events emitted by the tracker.
type Notifier interface {
	Submit(event alert.Event) bool
}

// Tracker is a finite-state machine over activity categories. It
// accumulates per-state durations, detects threshold crossings, and
// emits health warnings into the notifier.
type Tracker struct {
	mu         sync.Mutex
	notifier   Notifier
	thresholds Thresholds

	started      bool
	firstUpdate  time.Time
	current      State
	since        time.Time
	lastMovement time.Time

	totals  map[State]time.Duration
	longest map[State]time.Duration

	warningsIssued int
	warnedSitting  time.Time
	warnedStanding time.Time
	warnedInactive time.Time
}

func NewTracker(thresholds Thresholds, notifier Notifier) *Tracker {
	return &Tracker{
		notifier:   notifier,
		thresholds: thresholds,
		current:    Unknown,
		totals:     make(map[State]time.Duration),
		longest:    make(map[State]time.Duration),
	}
}

// Update records the observed activity at the given instant. A repeated
// state never resets the running segment; only a change of activity
// closes out a duration.
func (t *Tracker) Update(state State, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case !t.started:
		t.started = true
		t.firstUpdate = now
		t.current = state
		t.since = now
		t.lastMovement = now
	case state != t.current:
		duration := now.Sub(t.since)
		t.totals[t.current] += duration
		if duration > t.longest[t.current] {
			t.longest[t.current] = duration
		}
		if t.current == Walking {
			t.lastMovement = now
		}

		t.current = state
		t.since = now
		if state == Walking {
			t.lastMovement = now
		}
	}

	t.checkWarnings(now)
}

func (t *Tracker) checkWarnings(now time.Time) {
	if t.notifier == nil {
		return
	}

	duration := now.Sub(t.since)

	switch t.current {
	case Sitting:
		if duration > t.thresholds.SittingCritical {
			if t.repeatElapsed(t.warnedSitting, sittingCriticalRepeat, now) {
				t.emit(now, alert.PriorityCritical, int(sittingCriticalRepeat.Seconds()),
					fmt.Sprintf("Critical: You have been sitting for %d minutes. Please stand up and move around immediately!", int(duration.Minutes())))
				t.warnedSitting = now
				t.warningsIssued++
			}
		} else if duration > t.thresholds.SittingWarning {
			if t.repeatElapsed(t.warnedSitting, sittingWarningRepeat, now) {
				t.emit(now, alert.PriorityHigh, int(sittingWarningRepeat.Seconds()),
					fmt.Sprintf("Health Alert: You have been sitting for %d minutes. Consider taking a break.", int(duration.Minutes())))
				t.warnedSitting = now
				t.warningsIssued++
			}
		}
	case Standing:
		if duration > t.thresholds.StandingCritical {
			if t.repeatElapsed(t.warnedStanding, standingCriticalRepeat, now) {
				t.emit(now, alert.PriorityHigh, int(standingCriticalRepeat.Seconds()),
					fmt.Sprintf("Alert: You have been standing for %d minutes. Consider sitting down to rest.", int(duration.Minutes())))
				t.warnedStanding = now
				t.warningsIssued++
			}
		} else if duration > t.thresholds.StandingWarning {
			if t.repeatElapsed(t.warnedStanding, standingWarningRepeat, now) {
				t.emit(now, alert.PriorityNormal, int(standingWarningRepeat.Seconds()),
					fmt.Sprintf("Reminder: You have been standing for %d minutes. Take a short break if needed.", int(duration.Minutes())))
				t.warnedStanding = now
			}
		}
	}

	// Inactivity is checked regardless of posture.
	sinceMovement := now.Sub(t.lastMovement)
	if sinceMovement > t.thresholds.MovementReminder {
		if t.repeatElapsed(t.warnedInactive, inactivityRepeat, now) {
			t.emit(now, alert.PriorityNormal, int(inactivityRepeat.Seconds()),
				fmt.Sprintf("Movement Reminder: You haven't walked for %d minutes. A short walk would be beneficial.", int(sinceMovement.Minutes())))
			t.warnedInactive = now
			t.warningsIssued++
		}
	}
}

func (*Tracker) repeatElapsed(lastWarned time.Time, repeat time.Duration, now time.Time) bool {
	return lastWarned.IsZero() || now.Sub(lastWarned) > repeat
}

func (t *Tracker) emit(now time.Time, priority alert.Priority, cooldownSeconds int, message string) {
	event := alert.NewEvent(alert.KindHealthWarning, message, priority, cooldownSeconds)
	event.CreatedAt = now
	t.notifier.Submit(event)
}

// CurrentDuration returns how long the current state has been held.
func (t *Tracker) CurrentDuration(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return 0
	}

	return now.Sub(t.since)
}

// Current returns the current state.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.current
}

// Totals returns the accumulated duration of every closed segment,
// per state. The open segment is not included.
func (t *Tracker) Totals() map[State]time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	totals := make(map[State]time.Duration, len(t.totals))
	for state, d := range t.totals {
		totals[state] = d
	}

	return totals
}

// WarningsIssued returns the number of health warnings counted today.
func (t *Tracker) WarningsIssued() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.warningsIssued
}

// Summary returns the externally visible tracker state.
func (t *Tracker) Summary(now time.Time) Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	summary := Summary{
		CurrentActivity: string(t.current),
		DailyStats: DailyStats{
			TotalSitting:    t.totals[Sitting].Seconds(),
			TotalStanding:   t.totals[Standing].Seconds(),
			TotalWalking:    t.totals[Walking].Seconds(),
			LongestSitting:  t.longest[Sitting].Seconds(),
			LongestStanding: t.longest[Standing].Seconds(),
			WarningsIssued:  t.warningsIssued,
		},
	}

	if t.started {
		summary.CurrentDuration = now.Sub(t.since).Seconds()
		summary.LastMovement = now.Sub(t.lastMovement).Seconds()
	}

	return summary
}

// ResetDaily zeroes the daily statistics. The current state and its
// running segment are left alone.
func (t *Tracker) ResetDaily() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totals = make(map[State]time.Duration)
	t.longest = make(map[State]time.Duration)
	t.warningsIssued = 0
}
