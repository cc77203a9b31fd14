// Package store provides a bounded, recency-ordered in-memory catalog of
// plans. Plans are mutated in place by the executor that owns them; Store
// only tracks membership and eviction order rather than holding a separate
// copy of each plan's state.
package store

import (
	"sort"
	"sync"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// DefaultMaxStoredPlans bounds the store when the caller does not override
// it.
const DefaultMaxStoredPlans = 100

// Store implements contracts.PlanStore.
type Store struct {
	mu             sync.RWMutex
	plans          map[contracts.PlanID]*contracts.Plan
	maxStoredPlans int
}

// New constructs a Store bounded at maxStoredPlans (0 uses DefaultMaxStoredPlans).
func New(maxStoredPlans int) *Store {
	if maxStoredPlans <= 0 {
		maxStoredPlans = DefaultMaxStoredPlans
	}
	return &Store{
		plans:          make(map[contracts.PlanID]*contracts.Plan),
		maxStoredPlans: maxStoredPlans,
	}
}

// Save implements contracts.PlanStore.Save: overwrites in place, then evicts
// the oldest-by-CreatedAt entries if over capacity.
func (s *Store) Save(plan *contracts.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans[plan.ID] = plan
	if len(s.plans) <= s.maxStoredPlans {
		return
	}

	all := make([]*contracts.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt < all[j].CreatedAt })

	overflow := len(all) - s.maxStoredPlans
	for _, p := range all[:overflow] {
		delete(s.plans, p.ID)
	}
}

// Get implements contracts.PlanStore.Get.
func (s *Store) Get(id contracts.PlanID) (*contracts.Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	return p, ok
}

// List implements contracts.PlanStore.List, in descending CreatedAt order.
func (s *Store) List() []*contracts.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*contracts.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// GetByStatus returns stored plans matching status, in descending CreatedAt
// order.
func (s *Store) GetByStatus(status contracts.PlanStatus) []*contracts.Plan {
	all := s.List()
	out := make([]*contracts.Plan, 0, len(all))
	for _, p := range all {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Delete removes a single plan by ID.
func (s *Store) Delete(id contracts.PlanID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
}

// Clear removes every stored plan.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = make(map[contracts.PlanID]*contracts.Plan)
}

// Prune implements contracts.PlanStore.Prune: removes plans older than
// maxAge (a Unix-millisecond cutoff timestamp, not a duration — callers
// compute `now - retention` before calling).
func (s *Store) Prune(cutoff contracts.Timestamp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.plans {
		if p.CreatedAt < cutoff {
			delete(s.plans, id)
		}
	}
}
