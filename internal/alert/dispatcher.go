package alert

import (
	"context"
	"sync"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/errors"
	"github.com/manvi18ux/assistive-har-system/internal/logger"
)

const (
	defaultQueueSize   = 64
	defaultHistorySize = 100

	closeTimeout   = 2 * time.Second
	voiceTimeout   = 30 * time.Second
	toneTimeout    = 2 * time.Second
	messageTimeout = 5 * time.Second
	pushTimeout    = 1 * time.Second
)

type Config struct {
	QueueSize           int
	HistorySize         int
	VoiceEnabled        bool
	ShortMessageEnabled bool
}

func DefaultConfig() Config {
	return Config{
		QueueSize:    defaultQueueSize,
		HistorySize:  defaultHistorySize,
		VoiceEnabled: true,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.QueueSize <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "queue size must be positive")
	}
	if c.HistorySize <= 0 {
		return errFactory.WithData(ErrInvalidConfig, "history size must be positive")
	}

	return nil
}

// Dispatcher owns the inbound alert queue. Producers submit without
// blocking; one consumer goroutine drains the queue and fans each event
// out to the configured channels in acceptance order. Voice runs on its
// own goroutine per event so a long utterance never delays the rest.
type Dispatcher struct {
	cfg       Config
	channels  Channels
	cooldowns *cooldownTable
	history   *History
	queue     chan Event
	stop      chan struct{}
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
	now       func() time.Time
}

type Option func(*Dispatcher)

// WithClock overrides the time source used for cooldown admission.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(cfg Config, channels Channels, opts ...Option) (*Dispatcher, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitDispatcher, err)
	}

	d := &Dispatcher{
		cfg:       cfg,
		channels:  channels,
		cooldowns: newCooldownTable(),
		history:   NewHistory(cfg.HistorySize),
		queue:     make(chan Event, cfg.QueueSize),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	go d.run()

	return d, nil
}

// Submit runs the cooldown admission check and enqueues the event.
// It returns false when the event is suppressed, the queue is full, or
// the dispatcher is shutting down. It never blocks on delivery.
func (d *Dispatcher) Submit(event Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	key := event.CooldownKey
	if key == "" {
		key = event.Kind
	}

	cooldown := time.Duration(event.CooldownSeconds) * time.Second
	if !d.cooldowns.allow(key, cooldown, d.now()) {
		logger.Debug().
			Str("kind", event.Kind).
			Str("cooldown_key", key).
			Msg("Alert suppressed by cooldown")
		return false
	}

	select {
	case d.queue <- event:
		return true
	default:
		logger.Warn().Str("kind", event.Kind).Msg("Alert queue full, dropping alert")
		return false
	}
}

// History returns up to limit accepted events, newest first.
func (d *Dispatcher) History(limit int) []Event {
	return d.history.Recent(limit)
}

// Close stops admission and returns once the in-flight delivery finishes
// or the shutdown timeout elapses. Events still queued are abandoned.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.stop)
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-time.After(closeTimeout):
		return errors.New().New(ErrShutdownTimeout)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for {
		select {
		case <-d.stop:
			return
		default:
		}

		select {
		case <-d.stop:
			return
		case event := <-d.queue:
			d.deliver(event)
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	errFactory := errors.New()

	d.history.Append(event)

	if d.channels.Recorder != nil {
		d.channels.Recorder.RecordAlert(event)
	}

	if d.channels.Log != nil {
		if err := d.channels.Log.Append(event); err != nil {
			logger.ErrorWithCode(errFactory.Wrap(ErrLogWrite, err)).Send()
		}
	}

	route := RouteFor(event.Priority)

	if route.Voice && d.cfg.VoiceEnabled && event.Speak && d.channels.Voice != nil {
		go d.speak(event)
	}

	if route.Tone && d.channels.Tone != nil {
		ctx, cancel := context.WithTimeout(context.Background(), toneTimeout)
		if err := d.channels.Tone.Play(ctx, PatternFor(event)); err != nil {
			logger.ErrorWithCode(errFactory.Wrap(ErrToneDelivery, err)).Send()
		}
		cancel()
	}

	if route.ShortMessage && d.cfg.ShortMessageEnabled && d.channels.ShortMessage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
		if err := d.channels.ShortMessage.Send(ctx, event); err != nil {
			logger.ErrorWithCode(errFactory.Wrap(ErrMessageDelivery, err)).Send()
		}
		cancel()
	}

	if route.RemotePush && d.channels.Remote != nil {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		if err := d.channels.Remote.PushAlert(ctx, event); err != nil {
			// The telemetry endpoint is optional infrastructure.
			logger.Debug().Err(err).Msg("Telemetry push skipped")
		}
		cancel()
	}
}

func (d *Dispatcher) speak(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), voiceTimeout)
	defer cancel()

	if err := d.channels.Voice.Speak(ctx, event.Message); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(ErrVoiceDelivery, err)).Send()
	}
}
