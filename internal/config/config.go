package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/manvi18ux/assistive-har-system/internal/errors"
)

const (
	DefaultLogLevel = "info"

	defaultInterval      = 2
	defaultListenAddress = "127.0.0.1:5000"
	defaultAlertLog      = "activity_log.json"
	defaultSessionStats  = "session_stats.json"
	defaultQueueSize     = 64
	defaultHistorySize   = 100

	defaultSittingWarning   = 1800
	defaultSittingCritical  = 3600
	defaultStandingWarning  = 1200
	defaultStandingCritical = 2400
	defaultMovementReminder = 900
)

// Thresholds holds the activity-duration limits, in seconds, that trigger
// health warnings.
type Thresholds struct {
	SittingWarning   int `mapstructure:"sitting_warning"`
	SittingCritical  int `mapstructure:"sitting_critical"`
	StandingWarning  int `mapstructure:"standing_warning"`
	StandingCritical int `mapstructure:"standing_critical"`
	MovementReminder int `mapstructure:"movement_reminder"`
}

type Config struct {
	Interval      int        `mapstructure:"interval"`
	LogLevel      string     `mapstructure:"log_level"`
	ListenAddress string     `mapstructure:"listen_address"`
	DashboardURL  string     `mapstructure:"dashboard_url"`
	Voice         bool       `mapstructure:"voice"`
	SpeechCommand string     `mapstructure:"speech_command"`
	BeepCommand   string     `mapstructure:"beep_command"`
	ShortMessage  bool       `mapstructure:"short_message"`
	SMSGateway    string     `mapstructure:"sms_gateway"`
	SMSRecipients []string   `mapstructure:"sms_recipients"`
	AlertLog      string     `mapstructure:"alert_log"`
	SessionStats  string     `mapstructure:"session_stats"`
	Telemetry     bool       `mapstructure:"telemetry"`
	TelemetryDB   string     `mapstructure:"database"`
	QueueSize     int        `mapstructure:"queue_size"`
	HistorySize   int        `mapstructure:"history_size"`
	Thresholds    Thresholds `mapstructure:"thresholds"`
	Debug         bool       `mapstructure:"debug"`
	Verbose       bool       `mapstructure:"verbose"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("harmond", pflag.ContinueOnError)
	flags.Int("interval", defaultInterval, "Seconds between activity summary pushes")
	flags.String("log-level", "", "Log level (debug, info, warning, error)")
	flags.String("listen", "", "Telemetry HTTP listen address")
	flags.String("dashboard", "", "Remote dashboard base URL")
	flags.Bool("voice", true, "Enable voice announcements")
	flags.Bool("sms", false, "Enable short-message alerts for critical events")
	flags.Bool("telemetry", false, "Enable telemetry persistence")
	flags.String("database", "", "Path to the telemetry database")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"interval":  "interval",
		"log-level": "log_level",
		"listen":    "listen_address",
		"dashboard": "dashboard_url",
		"voice":     "voice",
		"sms":       "short_message",
		"telemetry": "telemetry",
		"database":  "database",
		"debug":     "debug",
		"verbose":   "verbose",
	}
	for flagName, key := range bindings {
		if f := flags.Lookup(flagName); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	if configPath := os.Getenv("HARMOND_CONFIG"); configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("harmond")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HARMOND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	applyLogLevel(config)

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("listen_address", defaultListenAddress)
	// Remote push is optional infrastructure; empty disables it.
	v.SetDefault("dashboard_url", "")
	v.SetDefault("voice", true)
	v.SetDefault("speech_command", "espeak")
	v.SetDefault("beep_command", "beep")
	v.SetDefault("short_message", false)
	v.SetDefault("sms_gateway", "")
	v.SetDefault("sms_recipients", []string{})
	v.SetDefault("alert_log", defaultAlertLog)
	v.SetDefault("session_stats", defaultSessionStats)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "")
	v.SetDefault("queue_size", defaultQueueSize)
	v.SetDefault("history_size", defaultHistorySize)
	v.SetDefault("thresholds.sitting_warning", defaultSittingWarning)
	v.SetDefault("thresholds.sitting_critical", defaultSittingCritical)
	v.SetDefault("thresholds.standing_warning", defaultStandingWarning)
	v.SetDefault("thresholds.standing_critical", defaultStandingCritical)
	v.SetDefault("thresholds.movement_reminder", defaultMovementReminder)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.QueueSize <= 0 || c.HistorySize <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "queue and history sizes must be positive")
	}

	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	for name, value := range map[string]int{
		"sitting_warning":   c.Thresholds.SittingWarning,
		"sitting_critical":  c.Thresholds.SittingCritical,
		"standing_warning":  c.Thresholds.StandingWarning,
		"standing_critical": c.Thresholds.StandingCritical,
		"movement_reminder": c.Thresholds.MovementReminder,
	} {
		if value <= 0 {
			return errFactory.WithData(errors.ErrInvalidThreshold, name)
		}
	}

	if c.Thresholds.SittingCritical < c.Thresholds.SittingWarning {
		return errFactory.WithData(errors.ErrInvalidThreshold, "sitting_critical below sitting_warning")
	}
	if c.Thresholds.StandingCritical < c.Thresholds.StandingWarning {
		return errFactory.WithData(errors.ErrInvalidThreshold, "standing_critical below standing_warning")
	}

	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithData(errors.ErrMissingConfig, "database path required when telemetry is enabled")
	}

	if c.ShortMessage && (c.SMSGateway == "" || len(c.SMSRecipients) == 0) {
		return errFactory.WithData(errors.ErrMissingConfig, "sms_gateway and sms_recipients required when short_message is enabled")
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	default:
		return false
	}
}

func applyLogLevel(c *Config) {
	level := zerolog.WarnLevel
	switch c.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if c.Debug {
		level = zerolog.DebugLevel
	} else if c.Verbose && level > zerolog.InfoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
}
