package session

import (
	"sync"
	"time"

	"github.com/mcoot/invisiblewalls/internal/dependencies/clock"
	"github.com/mcoot/invisiblewalls/internal/model"
)

// tasks tracks the pending timers of each session so they can be
// cancelled together when a round is replaced.
type tasks struct {
	clock clock.Clock

	mu      sync.Mutex
	pending map[model.SessionID]map[int]clock.Timer
	nextID  int
}

func newTasks(clk clock.Clock) *tasks {
	return &tasks{
		clock:   clk,
		pending: make(map[model.SessionID]map[int]clock.Timer),
	}
}

// schedule runs fn after d unless the session's tasks are cancelled first
func (t *tasks) schedule(id model.SessionID, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	taskID := t.nextID
	t.nextID++

	timer := t.clock.AfterFunc(d, func() {
		t.done(id, taskID)
		fn()
	})

	if t.pending[id] == nil {
		t.pending[id] = make(map[int]clock.Timer)
	}
	t.pending[id][taskID] = timer
}

func (t *tasks) done(id model.SessionID, taskID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending[id], taskID)
	if len(t.pending[id]) == 0 {
		delete(t.pending, id)
	}
}

// cancel stops every pending task of a session
func (t *tasks) cancel(id model.SessionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, timer := range t.pending[id] {
		timer.Stop()
	}
	delete(t.pending, id)
}

func (t *tasks) cancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timers := range t.pending {
		for _, timer := range timers {
			timer.Stop()
		}
		delete(t.pending, id)
	}
}

// count returns the number of pending tasks for a session
func (t *tasks) count(id model.SessionID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending[id])
}
