package session

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/activity"
	"github.com/manvi18ux/assistive-har-system/internal/errors"
	"github.com/manvi18ux/assistive-har-system/internal/telemetry"
)

const statsFilePerm = 0o644

// ActivityDurations summarizes per-activity time for a session, in
// minutes.
type ActivityDurations struct {
	TotalSittingMinutes    float64 `json:"total_sitting_minutes"`
	TotalStandingMinutes   float64 `json:"total_standing_minutes"`
	TotalWalkingMinutes    float64 `json:"total_walking_minutes"`
	LongestSittingMinutes  float64 `json:"longest_sitting_minutes"`
	LongestStandingMinutes float64 `json:"longest_standing_minutes"`
	HealthWarningsIssued   int     `json:"health_warnings_issued"`
}

// Stats is the single JSON document persisted when the process exits.
type Stats struct {
	SessionStart      time.Time         `json:"session_start"`
	SessionEnd        time.Time         `json:"session_end"`
	FallsDetected     int               `json:"falls_detected"`
	HelpRequests      int               `json:"help_requests"`
	TotalGestures     int               `json:"total_gestures"`
	ActivityDurations ActivityDurations `json:"activity_durations"`
}

// Build assembles the exit summary from the tracker summary and the
// store's counters.
func Build(summary activity.Summary, stats telemetry.Statistics, start, end time.Time) Stats {
	daily := summary.DailyStats

	return Stats{
		SessionStart:  start,
		SessionEnd:    end,
		FallsDetected: stats.FallsToday,
		HelpRequests:  stats.HelpRequestsToday,
		TotalGestures: stats.TotalGesturesToday,
		ActivityDurations: ActivityDurations{
			TotalSittingMinutes:    roundMinutes(daily.TotalSitting),
			TotalStandingMinutes:   roundMinutes(daily.TotalStanding),
			TotalWalkingMinutes:    roundMinutes(daily.TotalWalking),
			LongestSittingMinutes:  roundMinutes(daily.LongestSitting),
			LongestStandingMinutes: roundMinutes(daily.LongestStanding),
			HealthWarningsIssued:   daily.WarningsIssued,
		},
	}
}

// Write persists the summary as an indented JSON document.
func Write(path string, stats Stats) error {
	errFactory := errors.New()

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return errFactory.Wrap(errors.ErrSessionSummary, err)
	}

	if err := os.WriteFile(path, data, statsFilePerm); err != nil {
		return errFactory.Wrap(errors.ErrSessionSummary, err)
	}

	return nil
}

func roundMinutes(seconds float64) float64 {
	return math.Round(seconds/60*100) / 100
}
