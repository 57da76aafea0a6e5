package activity

import "time"

// State is a discrete activity category. Exactly one state is current at
// any instant.
type State string

const (
	Sitting  State = "Sitting"
	Standing State = "Standing"
	Walking  State = "Walking"
	Unknown  State = "Unknown"
)

// States lists every tracked state.
func States() []State {
	return []State{Sitting, Standing, Walking, Unknown}
}

// FromString maps a label to a known state, defaulting to Unknown.
func FromString(s string) State {
	switch State(s) {
	case Sitting, Standing, Walking:
		return State(s)
	default:
		return Unknown
	}
}

// Thresholds are the activity durations that trigger health warnings.
type Thresholds struct {
	SittingWarning   time.Duration
	SittingCritical  time.Duration
	StandingWarning  time.Duration
	StandingCritical time.Duration
	MovementReminder time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SittingWarning:   30 * time.Minute,
		SittingCritical:  60 * time.Minute,
		StandingWarning:  20 * time.Minute,
		StandingCritical: 40 * time.Minute,
		MovementReminder: 15 * time.Minute,
	}
}

// DailyStats mirrors the daily_stats block the dashboard merges key by
// key. Durations are in seconds.
type DailyStats struct {
	TotalSitting    float64 `json:"total_sitting"`
	TotalStanding   float64 `json:"total_standing"`
	TotalWalking    float64 `json:"total_walking"`
	LongestSitting  float64 `json:"longest_sitting"`
	LongestStanding float64 `json:"longest_standing"`
	WarningsIssued  int     `json:"warnings_issued"`
}

// Summary is the tracker's externally visible state at a point in time.
// CurrentDuration and LastMovement are in seconds.
type Summary struct {
	CurrentActivity string     `json:"current_activity"`
	CurrentDuration float64    `json:"current_duration"`
	LastMovement    float64    `json:"last_movement"`
	DailyStats      DailyStats `json:"daily_stats"`
}
