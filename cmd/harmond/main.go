package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/activity"
	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/alert/channel"
	"github.com/manvi18ux/assistive-har-system/internal/config"
	"github.com/manvi18ux/assistive-har-system/internal/logger"
	"github.com/manvi18ux/assistive-har-system/internal/pid"
	"github.com/manvi18ux/assistive-har-system/internal/session"
	"github.com/manvi18ux/assistive-har-system/internal/telemetry"
)

const shutdownTimeout = 2 * time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write pid file")
	}
	defer pid.Remove()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	sessionStart := time.Now()

	store, err := telemetry.NewStore(telemetry.Config{Enabled: cfg.Telemetry, DBPath: cfg.TelemetryDB})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry store")
	}

	alertLog, err := channel.NewJSONLog(cfg.AlertLog)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize alert log")
	}

	pusher := remotePusher()
	channels := buildChannels(store, alertLog, pusher)

	dispatcher, err := alert.NewDispatcher(alert.Config{
		QueueSize:           cfg.QueueSize,
		HistorySize:         cfg.HistorySize,
		VoiceEnabled:        cfg.Voice,
		ShortMessageEnabled: cfg.ShortMessage,
	}, channels)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize alert dispatcher")
	}

	tracker := activity.NewTracker(thresholds(), dispatcher)

	server := telemetry.NewServer(store, telemetry.ServerConfig{
		ListenAddress: cfg.ListenAddress,
		OnActivity: func(label string, now time.Time) {
			tracker.Update(activity.FromString(label), now)
		},
		OnEvent:   dispatcher.Submit,
		Logs:      alertLog,
		StatsPath: cfg.SessionStats,
	})
	server.Start()

	if err := loop(ctx, tracker, store, pusher); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}

	cleanup(dispatcher, server, store, tracker, sessionStart)
}

func loop(ctx context.Context, tracker *activity.Tracker, store *telemetry.Store, pusher *channel.Pusher) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("invalid interval: %d", cfg.Interval)
	}

	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	day := time.Now().YearDay()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := time.Now()
			if now.YearDay() != day {
				day = now.YearDay()
				logger.Info().Msg("New day, resetting activity statistics")
				tracker.ResetDaily()
			}

			summary := tracker.Summary(now)
			store.RecordActivityDuration(durationUpdate(summary))

			if pusher != nil {
				pushCtx, pushCancel := context.WithTimeout(ctx, time.Second)
				if err := pusher.PushActivitySummary(pushCtx, summary); err != nil {
					logger.Debug().Err(err).Msg("Dashboard push skipped")
				}
				pushCancel()
			}

			logSummary(summary)
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup(
	dispatcher *alert.Dispatcher,
	server *telemetry.Server,
	store *telemetry.Store,
	tracker *activity.Tracker,
	sessionStart time.Time,
) {
	if err := dispatcher.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to stop alert dispatcher")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to stop telemetry server")
	}
	cancel()

	now := time.Now()
	stats := session.Build(tracker.Summary(now), store.Statistics(), sessionStart, now)

	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close telemetry store")
	}

	if err := session.Write(cfg.SessionStats, stats); err != nil {
		logger.Error().Err(err).Msg("failed to save session summary")
	} else {
		logger.Info().Str("path", cfg.SessionStats).Msg("Session summary saved")
	}

	logger.Info().Msg("Exiting...")
}

func buildChannels(store *telemetry.Store, alertLog *channel.JSONLog, pusher *channel.Pusher) alert.Channels {
	channels := alert.Channels{
		Recorder: store,
		Log:      alertLog,
	}

	if cfg.Voice {
		speaker, err := channel.NewCommandSpeaker(cfg.SpeechCommand)
		if err != nil {
			logger.Warn().Err(err).Msg("Voice channel unavailable")
		} else {
			channels.Voice = speaker
		}
	}

	beeper, err := channel.NewCommandBeeper(cfg.BeepCommand)
	if err != nil {
		logger.Warn().Err(err).Msg("Tone channel unavailable")
	} else {
		channels.Tone = beeper
	}

	if cfg.ShortMessage {
		gateway, err := channel.NewGateway(cfg.SMSGateway, cfg.SMSRecipients)
		if err != nil {
			logger.Warn().Err(err).Msg("Short message channel unavailable")
		} else {
			channels.ShortMessage = gateway
		}
	}

	if pusher != nil {
		channels.Remote = pusher
	}

	return channels
}

func remotePusher() *channel.Pusher {
	if cfg.DashboardURL == "" {
		return nil
	}

	pusher, err := channel.NewPusher(cfg.DashboardURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Remote telemetry push unavailable")
		return nil
	}

	return pusher
}

func thresholds() activity.Thresholds {
	return activity.Thresholds{
		SittingWarning:   time.Duration(cfg.Thresholds.SittingWarning) * time.Second,
		SittingCritical:  time.Duration(cfg.Thresholds.SittingCritical) * time.Second,
		StandingWarning:  time.Duration(cfg.Thresholds.StandingWarning) * time.Second,
		StandingCritical: time.Duration(cfg.Thresholds.StandingCritical) * time.Second,
		MovementReminder: time.Duration(cfg.Thresholds.MovementReminder) * time.Second,
	}
}

func durationUpdate(summary activity.Summary) telemetry.DurationUpdate {
	return telemetry.DurationUpdate{
		CurrentActivity: &summary.CurrentActivity,
		CurrentDuration: &summary.CurrentDuration,
		LastMovement:    &summary.LastMovement,
		DailyStats: map[string]float64{
			"total_sitting":    summary.DailyStats.TotalSitting,
			"total_standing":   summary.DailyStats.TotalStanding,
			"total_walking":    summary.DailyStats.TotalWalking,
			"longest_sitting":  summary.DailyStats.LongestSitting,
			"longest_standing": summary.DailyStats.LongestStanding,
			"warnings_issued":  float64(summary.DailyStats.WarningsIssued),
		},
	}
}

func logSummary(summary activity.Summary) {
	if cfg.Debug {
		logger.Debug().
			Str("current_activity", summary.CurrentActivity).
			Float64("current_duration", summary.CurrentDuration).
			Float64("last_movement", summary.LastMovement).
			Float64("total_sitting", summary.DailyStats.TotalSitting).
			Float64("total_standing", summary.DailyStats.TotalStanding).
			Float64("total_walking", summary.DailyStats.TotalWalking).
			Int("warnings_issued", summary.DailyStats.WarningsIssued).
			Msg("")
	} else if cfg.Verbose {
		logger.Info().
			Str("activity", summary.CurrentActivity).
			Float64("duration", summary.CurrentDuration).
			Int("warnings", summary.DailyStats.WarningsIssued).
			Msg("")
	}
}
