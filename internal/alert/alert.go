package alert

import (
	"time"

	"github.com/google/uuid"
)

// Priority determines which notification channels receive an event.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid returns whether the priority is a known level.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Well-known event kinds. The cooldown vocabulary is drawn from this set
// plus the posture names, so the cooldown table stays small.
const (
	KindFall          = "fall"
	KindHelp          = "help"
	KindGesture       = "gesture"
	KindHealthWarning = "health_warning"
)

// Event is a single alert. Immutable once created; the With* methods
// return copies.
type Event struct {
	ID              string    `json:"id"`
	Kind            string    `json:"type"`
	Message         string    `json:"message"`
	Priority        Priority  `json:"priority"`
	CooldownKey     string    `json:"cooldown_key,omitempty"`
	CooldownSeconds int       `json:"cooldown"`
	Speak           bool      `json:"speak"`
	CreatedAt       time.Time `json:"timestamp"`
}

// NewEvent builds an event with the cooldown key defaulting to the kind.
// Negative cooldowns are clamped to zero.
func NewEvent(kind, message string, priority Priority, cooldownSeconds int) Event {
	if cooldownSeconds < 0 {
		cooldownSeconds = 0
	}
	if !priority.IsValid() {
		priority = PriorityNormal
	}

	return Event{
		ID:              uuid.NewString(),
		Kind:            kind,
		Message:         message,
		Priority:        priority,
		CooldownKey:     kind,
		CooldownSeconds: cooldownSeconds,
		Speak:           true,
		CreatedAt:       time.Now(),
	}
}

// WithCooldownKey overrides the suppression-table key.
func (e Event) WithCooldownKey(key string) Event {
	e.CooldownKey = key
	return e
}

// WithSpeak controls whether the voice channel announces the event.
func (e Event) WithSpeak(speak bool) Event {
	e.Speak = speak
	return e
}

// TonePulse is a single tone in a pattern.
type TonePulse struct {
	FrequencyHz int
	Duration    time.Duration
	Pause       time.Duration
}

// TonePattern is the audible signature played for an event.
type TonePattern struct {
	Pulses []TonePulse
}

// HelpTonePattern is three quick beeps, reserved for help requests.
func HelpTonePattern() TonePattern {
	return TonePattern{Pulses: []TonePulse{
		{FrequencyHz: 2000, Duration: 300 * time.Millisecond, Pause: 100 * time.Millisecond},
		{FrequencyHz: 2000, Duration: 300 * time.Millisecond, Pause: 100 * time.Millisecond},
		{FrequencyHz: 2000, Duration: 300 * time.Millisecond},
	}}
}

// CriticalTonePattern is a single long beep for other urgent events.
func CriticalTonePattern() TonePattern {
	return TonePattern{Pulses: []TonePulse{
		{FrequencyHz: 1500, Duration: 500 * time.Millisecond},
	}}
}

// PatternFor selects the tone signature for an event.
func PatternFor(e Event) TonePattern {
	if e.Kind == KindHelp {
		return HelpTonePattern()
	}
	return CriticalTonePattern()
}
