package alert_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
)

func historyEvent(i int) alert.Event {
	return alert.NewEvent(fmt.Sprintf("kind_%d", i), "message", alert.PriorityNormal, 0)
}

func TestHistoryAppendBelowCapacity(t *testing.T) {
	h := alert.NewHistory(5)

	for i := 0; i < 3; i++ {
		h.Append(historyEvent(i))
	}

	assert.Equal(t, 3, h.Len())

	recent := h.Recent(0)
	assert.Len(t, recent, 3)
	assert.Equal(t, "kind_2", recent[0].Kind, "newest comes first")
	assert.Equal(t, "kind_0", recent[2].Kind)
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := alert.NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Append(historyEvent(i))
	}

	assert.Equal(t, 3, h.Len())

	recent := h.Recent(0)
	var kinds []string
	for _, event := range recent {
		kinds = append(kinds, event.Kind)
	}
	assert.Equal(t, []string{"kind_4", "kind_3", "kind_2"}, kinds)
}

func TestHistoryRecentLimit(t *testing.T) {
	h := alert.NewHistory(10)

	for i := 0; i < 6; i++ {
		h.Append(historyEvent(i))
	}

	recent := h.Recent(2)
	assert.Len(t, recent, 2)
	assert.Equal(t, "kind_5", recent[0].Kind)
	assert.Equal(t, "kind_4", recent[1].Kind)

	assert.Len(t, h.Recent(100), 6, "limit beyond length returns everything")
}

func TestHistoryEmpty(t *testing.T) {
	h := alert.NewHistory(4)

	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Recent(0))
	assert.Empty(t, h.Recent(10))
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		name     string
		priority alert.Priority
		want     alert.Route
	}{
		{
			name:     "normal",
			priority: alert.PriorityNormal,
			want:     alert.Route{Voice: true, RemotePush: true},
		},
		{
			name:     "high",
			priority: alert.PriorityHigh,
			want:     alert.Route{Voice: true, Tone: true, RemotePush: true},
		},
		{
			name:     "critical",
			priority: alert.PriorityCritical,
			want:     alert.Route{Voice: true, Tone: true, ShortMessage: true, RemotePush: true},
		},
		{
			name:     "unknown falls back to normal",
			priority: alert.Priority("urgent"),
			want:     alert.Route{Voice: true, RemotePush: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alert.RouteFor(tt.priority))
		})
	}
}

func TestPatternFor(t *testing.T) {
	help := alert.PatternFor(alert.NewEvent(alert.KindHelp, "Help requested!", alert.PriorityCritical, 0))
	assert.Len(t, help.Pulses, 3)
	for _, pulse := range help.Pulses {
		assert.Equal(t, 2000, pulse.FrequencyHz)
	}

	fall := alert.PatternFor(alert.NewEvent(alert.KindFall, "Fall detected!", alert.PriorityCritical, 0))
	assert.Len(t, fall.Pulses, 1)
	assert.Equal(t, 1500, fall.Pulses[0].FrequencyHz)
}
