package api

import (
	"context"
	"sync"
	"time"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// executionRegistry tracks the cancel func and completion signal for every
// plan currently running under ExecuteWorkflow, so a single plan can be
// interrupted by CancelPlan and every in-flight plan can be drained on
// server shutdown.
type executionRegistry struct {
	mu      sync.Mutex
	entries map[contracts.PlanID]*executionEntry
}

type executionEntry struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newExecutionRegistry() *executionRegistry {
	return &executionRegistry{entries: make(map[contracts.PlanID]*executionEntry)}
}

// register records cancel under id, together with a done channel that
// finish closes once the plan's Execute call returns.
func (r *executionRegistry) register(id contracts.PlanID, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &executionEntry{cancel: cancel, done: make(chan struct{})}
}

// finish marks id's execution complete and drops it from the registry.
func (r *executionRegistry) finish(id contracts.PlanID) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	if ok {
		close(entry.done)
	}
}

// cancel signals id's in-flight execution, if any, to stop. Returns false if
// id has no tracked execution (already finished, or never started).
func (r *executionRegistry) cancel(id contracts.PlanID) bool {
	r.mu.Lock()
	entry, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	entry.cancel()
	return true
}

// cancelAll signals every tracked in-flight execution to stop. Returns the
// number cancelled.
func (r *executionRegistry) cancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		entry.cancel()
	}
	return len(r.entries)
}

// waitAll waits for all tracked executions to finish, up to timeout.
// Returns the number still active after timeout.
func (r *executionRegistry) waitAll(timeout time.Duration) int {
	deadline := time.Now().Add(timeout)

	for {
		r.mu.Lock()
		active := len(r.entries)
		var first chan struct{}
		for _, entry := range r.entries {
			first = entry.done
			break
		}
		r.mu.Unlock()

		if active == 0 {
			return 0
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return active
		}

		select {
		case <-time.After(remaining):
			return active
		case <-first:
			// One execution finished, loop to check the rest.
		}
	}
}
