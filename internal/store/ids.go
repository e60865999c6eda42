package store

import (
	"sync"
	"time"
)

// IDGen hands out clock-based ids that never repeat within a process: each id
// is the current Unix millisecond, bumped past the previous id when the clock
// has not advanced.
type IDGen struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGen(now func() time.Time) *IDGen {
	if now == nil {
		now = time.Now
	}
	return &IDGen{now: now}
}

func (g *IDGen) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe moves the floor past an id that was assigned elsewhere, such as a
// fixture id.
func (g *IDGen) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
