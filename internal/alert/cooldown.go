package alert

import (
	"sync"
	"time"
)

// cooldownTable maps a cooldown key to the time of the last accepted
// alert bearing it. Entries are only ever moved forward.
type cooldownTable struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func newCooldownTable() *cooldownTable {
	return &cooldownTable{last: make(map[string]time.Time)}
}

// allow performs the admission check and, when it passes, stamps the key.
// Check and stamp happen under one critical section so two concurrent
// submissions with the same key cannot both pass.
func (t *cooldownTable) allow(key string, cooldown time.Duration, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lastAt, ok := t.last[key]; ok && now.Sub(lastAt) < cooldown {
		return false
	}

	t.last[key] = now

	return true
}
