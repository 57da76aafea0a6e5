package telemetry

import (
	"sync"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/errors"
	"github.com/manvi18ux/assistive-har-system/internal/logger"
)

const (
	alertListCap   = 50
	activityLogCap = 100

	resetCheckInterval = time.Hour
)

// StoredAlert is an accepted alert plus the time the store saw it.
type StoredAlert struct {
	alert.Event
	ReceivedAt time.Time `json:"received_at"`
}

// Statistics holds the rolling daily counters.
type Statistics struct {
	FallsToday         int        `json:"falls_today"`
	HelpRequestsToday  int        `json:"help_requests_today"`
	TotalGesturesToday int        `json:"total_gestures_today"`
	LastFallTime       *time.Time `json:"last_fall_time"`
	LastHelpTime       *time.Time `json:"last_help_time"`
}

// ActivityEntry is one line of the recent-activity log.
type ActivityEntry struct {
	Activity  string    `json:"activity"`
	Timestamp time.Time `json:"timestamp"`
}

// DurationBlock is the stored activity-duration aggregate.
type DurationBlock struct {
	CurrentActivity string             `json:"current_activity"`
	CurrentDuration float64            `json:"current_duration"`
	LastMovement    float64            `json:"last_movement"`
	DailyStats      map[string]float64 `json:"daily_stats"`
}

// DurationUpdate carries a partial update of the duration block. Only
// fields present in the payload overwrite stored values; daily_stats is
// merged key by key.
type DurationUpdate struct {
	CurrentActivity *string            `json:"current_activity"`
	CurrentDuration *float64           `json:"current_duration"`
	LastMovement    *float64           `json:"last_movement"`
	DailyStats      map[string]float64 `json:"daily_stats"`
}

// Snapshot is the externally visible aggregate.
type Snapshot struct {
	CurrentActivity   string          `json:"current_activity"`
	Alerts            []StoredAlert   `json:"alerts"`
	Statistics        Statistics      `json:"statistics"`
	ActivityLog       []ActivityEntry `json:"activity_log"`
	ActivityDuration  DurationBlock   `json:"activity_duration"`
	SystemStatus      string          `json:"system_status"`
	MonitoringStarted time.Time       `json:"monitoring_started"`
}

// Store aggregates the latest monitoring state under a single mutex so
// readers never observe a partially-updated snapshot.
type Store struct {
	mu   sync.Mutex
	data Snapshot
	repo Repository
	stop chan struct{}
	done chan struct{}
	now  func() time.Time
}

type StoreOption func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(cfg Config, opts ...StoreOption) (*Store, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{
		repo: repo,
		stop: make(chan struct{}),
		done: make(chan struct{}),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.data = Snapshot{
		CurrentActivity: "Unknown",
		ActivityDuration: DurationBlock{
			CurrentActivity: "Unknown",
			DailyStats: map[string]float64{
				"total_sitting":    0,
				"total_standing":   0,
				"total_walking":    0,
				"longest_sitting":  0,
				"longest_standing": 0,
				"warnings_issued":  0,
			},
		},
		SystemStatus:      "Active",
		MonitoringStarted: s.now(),
	}

	go s.runDailyReset()

	return s, nil
}

// RecordAlert prepends the alert to the list, updates the matching daily
// counter, and persists it best-effort. Implements alert.Recorder.
func (s *Store) RecordAlert(event alert.Event) {
	receivedAt := s.now()

	s.mu.Lock()
	s.data.Alerts = append([]StoredAlert{{Event: event, ReceivedAt: receivedAt}}, s.data.Alerts...)
	if len(s.data.Alerts) > alertListCap {
		s.data.Alerts = s.data.Alerts[:alertListCap]
	}

	switch event.Kind {
	case alert.KindFall:
		s.data.Statistics.FallsToday++
		t := receivedAt
		s.data.Statistics.LastFallTime = &t
	case alert.KindHelp:
		s.data.Statistics.HelpRequestsToday++
		t := receivedAt
		s.data.Statistics.LastHelpTime = &t
	case alert.KindGesture:
		s.data.Statistics.TotalGesturesToday++
	}
	s.mu.Unlock()

	if err := s.repo.RecordAlert(event, receivedAt); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist alert")
	}
}

// RecordActivity sets the current activity and prepends it to the
// bounded activity log.
func (s *Store) RecordActivity(activity string, timestamp time.Time) {
	s.mu.Lock()
	s.data.CurrentActivity = activity
	s.data.ActivityLog = append([]ActivityEntry{{Activity: activity, Timestamp: timestamp}}, s.data.ActivityLog...)
	if len(s.data.ActivityLog) > activityLogCap {
		s.data.ActivityLog = s.data.ActivityLog[:activityLogCap]
	}
	s.mu.Unlock()

	if err := s.repo.RecordActivity(activity, timestamp); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist activity")
	}
}

// RecordActivityDuration merges a partial duration update into the
// stored block.
func (s *Store) RecordActivityDuration(update DurationUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.CurrentActivity != nil {
		s.data.ActivityDuration.CurrentActivity = *update.CurrentActivity
	}
	if update.CurrentDuration != nil {
		s.data.ActivityDuration.CurrentDuration = *update.CurrentDuration
	}
	if update.LastMovement != nil {
		s.data.ActivityDuration.LastMovement = *update.LastMovement
	}
	for key, value := range update.DailyStats {
		s.data.ActivityDuration.DailyStats[key] = value
	}
}

// Snapshot returns a consistent copy of the aggregate.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data
	snapshot.Alerts = append([]StoredAlert(nil), s.data.Alerts...)
	snapshot.ActivityLog = append([]ActivityEntry(nil), s.data.ActivityLog...)
	snapshot.ActivityDuration.DailyStats = make(map[string]float64, len(s.data.ActivityDuration.DailyStats))
	for key, value := range s.data.ActivityDuration.DailyStats {
		snapshot.ActivityDuration.DailyStats[key] = value
	}

	return snapshot
}

// Statistics returns the current daily counters.
func (s *Store) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.Statistics
}

// ResetDailyCounters zeroes the "today" counters. The tracker's own
// daily stats are reset by its caller, not here.
func (s *Store) ResetDailyCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Statistics.FallsToday = 0
	s.data.Statistics.HelpRequestsToday = 0
	s.data.Statistics.TotalGesturesToday = 0
}

// Close stops the reset timer and closes the repository.
func (s *Store) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done

	return s.repo.Close()
}

func (s *Store) runDailyReset() {
	defer close(s.done)

	ticker := time.NewTicker(resetCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.now().Local().Hour() == 0 {
				logger.Info().Msg("Resetting daily statistics")
				s.ResetDailyCounters()
			}
		}
	}
}
