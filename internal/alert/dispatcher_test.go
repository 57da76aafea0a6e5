package alert_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []alert.Event
}

func (r *fakeRecorder) RecordAlert(event alert.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *fakeRecorder) Events() []alert.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]alert.Event(nil), r.events...)
}

type fakeVoice struct {
	mu       sync.Mutex
	messages []string
}

func (v *fakeVoice) Speak(_ context.Context, message string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append(v.messages, message)
	return nil
}

func (v *fakeVoice) Messages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.messages...)
}

type fakeTone struct {
	mu       sync.Mutex
	patterns []alert.TonePattern
	err      error
}

func (f *fakeTone) Play(_ context.Context, pattern alert.TonePattern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, pattern)
	return f.err
}

func (f *fakeTone) Patterns() []alert.TonePattern {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]alert.TonePattern(nil), f.patterns...)
}

type fakeMessenger struct {
	mu     sync.Mutex
	events []alert.Event
}

func (m *fakeMessenger) Send(_ context.Context, event alert.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *fakeMessenger) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type failingLog struct{}

func (failingLog) Append(alert.Event) error {
	return fmt.Errorf("disk full")
}

func newDispatcher(t *testing.T, cfg alert.Config, channels alert.Channels, clock *fakeClock) *alert.Dispatcher {
	t.Helper()

	opts := []alert.Option{}
	if clock != nil {
		opts = append(opts, alert.WithClock(clock.Now))
	}

	d, err := alert.NewDispatcher(cfg, channels, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	return d
}

func TestSubmitCooldownWindow(t *testing.T) {
	clock := newFakeClock()
	d := newDispatcher(t, alert.DefaultConfig(), alert.Channels{}, clock)

	event := alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, 30)

	assert.True(t, d.Submit(event), "first submission should be accepted")

	clock.Advance(10 * time.Second)
	assert.False(t, d.Submit(event), "submission within cooldown should be rejected")

	clock.Advance(21 * time.Second)
	assert.True(t, d.Submit(event), "submission after cooldown should be accepted")
}

func TestSubmitCooldownKeyOverride(t *testing.T) {
	clock := newFakeClock()
	d := newDispatcher(t, alert.DefaultConfig(), alert.Channels{}, clock)

	first := alert.NewEvent(alert.KindGesture, "Wave gesture detected", alert.PriorityNormal, 30).
		WithCooldownKey("gesture_left")
	second := alert.NewEvent(alert.KindGesture, "Wave gesture detected", alert.PriorityNormal, 30).
		WithCooldownKey("gesture_right")

	assert.True(t, d.Submit(first))
	assert.True(t, d.Submit(second), "distinct cooldown keys are admitted independently")
	assert.False(t, d.Submit(first), "same key within cooldown is rejected")
}

func TestSuppressedEventReachesNoChannel(t *testing.T) {
	clock := newFakeClock()
	recorder := &fakeRecorder{}
	tone := &fakeTone{}
	d := newDispatcher(t, alert.DefaultConfig(), alert.Channels{Recorder: recorder, Tone: tone}, clock)

	event := alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, 30)

	require.True(t, d.Submit(event))
	require.Eventually(t, func() bool { return len(recorder.Events()) == 1 }, time.Second, 10*time.Millisecond)

	clock.Advance(5 * time.Second)
	require.False(t, d.Submit(event))

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, recorder.Events(), 1, "suppressed event must not reach channels")
	assert.Len(t, tone.Patterns(), 1)
}

func TestConcurrentSubmitSameKey(t *testing.T) {
	d := newDispatcher(t, alert.DefaultConfig(), alert.Channels{}, nil)

	event := alert.NewEvent(alert.KindHelp, "Help requested!", alert.PriorityCritical, 30)

	var wg sync.WaitGroup
	accepted := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted <- d.Submit(event)
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for ok := range accepted {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one concurrent submission may pass admission")
}

func TestDeliveryOrder(t *testing.T) {
	recorder := &fakeRecorder{}
	d := newDispatcher(t, alert.DefaultConfig(), alert.Channels{Recorder: recorder}, nil)

	var want []string
	for i := 0; i < 5; i++ {
		kind := fmt.Sprintf("kind_%d", i)
		want = append(want, kind)
		require.True(t, d.Submit(alert.NewEvent(kind, "message", alert.PriorityNormal, 0)))
	}

	require.Eventually(t, func() bool { return len(recorder.Events()) == 5 }, time.Second, 10*time.Millisecond)

	var got []string
	for _, event := range recorder.Events() {
		got = append(got, event.Kind)
	}
	assert.Equal(t, want, got, "events are delivered in acceptance order")
}

func TestChannelFailureDoesNotAbortDelivery(t *testing.T) {
	recorder := &fakeRecorder{}
	tone := &fakeTone{err: fmt.Errorf("no sound device")}
	messenger := &fakeMessenger{}
	cfg := alert.DefaultConfig()
	cfg.ShortMessageEnabled = true

	d := newDispatcher(t, cfg, alert.Channels{
		Recorder:     recorder,
		Tone:         tone,
		ShortMessage: messenger,
		Log:          failingLog{},
	}, nil)

	require.True(t, d.Submit(alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, 0)))

	require.Eventually(t, func() bool { return messenger.Count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Len(t, recorder.Events(), 1)
	assert.Len(t, d.History(0), 1, "failed channels do not keep the event out of history")
}

func TestVoiceRespectsSpeakFlag(t *testing.T) {
	voice := &fakeVoice{}
	recorder := &fakeRecorder{}
	d := newDispatcher(t, alert.DefaultConfig(), alert.Channels{Voice: voice, Recorder: recorder}, nil)

	silent := alert.NewEvent(alert.KindGesture, "Stop gesture detected", alert.PriorityHigh, 0).WithSpeak(false)
	require.True(t, d.Submit(silent))

	spoken := alert.NewEvent(alert.KindHelp, "Help requested!", alert.PriorityCritical, 0)
	require.True(t, d.Submit(spoken))

	require.Eventually(t, func() bool { return len(voice.Messages()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"Help requested!"}, voice.Messages())

	require.Eventually(t, func() bool { return len(recorder.Events()) == 2 }, time.Second, 10*time.Millisecond)
}

func TestVoiceDisabledByConfig(t *testing.T) {
	voice := &fakeVoice{}
	recorder := &fakeRecorder{}
	cfg := alert.DefaultConfig()
	cfg.VoiceEnabled = false

	d := newDispatcher(t, cfg, alert.Channels{Voice: voice, Recorder: recorder}, nil)

	require.True(t, d.Submit(alert.NewEvent(alert.KindHelp, "Help requested!", alert.PriorityCritical, 0)))
	require.Eventually(t, func() bool { return len(recorder.Events()) == 1 }, time.Second, 10*time.Millisecond)

	assert.Empty(t, voice.Messages())
}

func TestCloseStopsAdmission(t *testing.T) {
	d, err := alert.NewDispatcher(alert.DefaultConfig(), alert.Channels{})
	require.NoError(t, err)

	require.NoError(t, d.Close())
	assert.False(t, d.Submit(alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, 0)))
	assert.NoError(t, d.Close(), "closing twice is harmless")
}

func TestNewEventDefaults(t *testing.T) {
	event := alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, -5)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, alert.KindFall, event.CooldownKey, "cooldown key defaults to kind")
	assert.Equal(t, 0, event.CooldownSeconds, "negative cooldowns are clamped")
	assert.True(t, event.Speak)
	assert.False(t, event.CreatedAt.IsZero())

	unknown := alert.NewEvent(alert.KindGesture, "msg", alert.Priority("bogus"), 1)
	assert.Equal(t, alert.PriorityNormal, unknown.Priority)
}
