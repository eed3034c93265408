package sequence

import (
	"sort"
	"sync"
	"time"
)

// manualClock fires deferred tasks only when the test advances it.
type manualClock struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{clock: m, at: m.now + d, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves time forward by d and runs every task that came due, in
// deadline order.
func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		var due []*manualTimer
		for _, t := range m.tasks {
			if !t.stopped && !t.fired && t.at <= m.now {
				due = append(due, t)
			}
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
		if len(due) == 0 {
			m.mu.Unlock()
			return
		}
		next := due[0]
		next.fired = true
		m.mu.Unlock()
		next.f()
	}
}

// live counts tasks that are scheduled and not yet fired or stopped.
func (m *manualClock) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
