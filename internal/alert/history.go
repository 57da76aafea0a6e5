package alert

import "sync"

// History is a bounded, insertion-ordered record of accepted alerts.
// When full, the oldest entry is evicted.
type History struct {
	mu     sync.RWMutex
	events []Event
	start  int
	count  int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{events: make([]Event, capacity)}
}

// Append records an event, evicting the oldest when at capacity.
func (h *History) Append(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count < len(h.events) {
		h.events[(h.start+h.count)%len(h.events)] = event
		h.count++
		return
	}

	h.events[h.start] = event
	h.start = (h.start + 1) % len(h.events)
}

// Len returns the number of retained events.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.count
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns everything retained.
func (h *History) Recent(limit int) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		idx := (h.start + h.count - 1 - i) % len(h.events)
		out = append(out, h.events[idx])
	}

	return out
}
