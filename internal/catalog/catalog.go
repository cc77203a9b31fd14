// Package catalog provides a read-only, in-memory view of registered agents
// and their routing configuration.
package catalog

import (
	"sort"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// Catalog implements contracts.AgentCatalog over an in-memory map built once
// at construction: a simple Get/List accessor over registered agents.
// No locking is needed: the catalog is read-only after
// startup.
type Catalog struct {
	agents map[contracts.AgentID]*contracts.Agent
}

// New constructs a Catalog from an inline list of agents — the shape tests
// and the composition root both use, since registry loading from disk is
// out of scope.
func New(agents ...contracts.Agent) *Catalog {
	m := make(map[contracts.AgentID]*contracts.Agent, len(agents))
	for i := range agents {
		a := agents[i]
		m[a.ID] = &a
	}
	return &Catalog{agents: m}
}

// Get implements contracts.AgentCatalog.
func (c *Catalog) Get(id contracts.AgentID) (*contracts.Agent, bool) {
	a, ok := c.agents[id]
	return a, ok
}

// List implements contracts.AgentCatalog, returned in stable ID order.
func (c *Catalog) List() []*contracts.Agent {
	out := make([]*contracts.Agent, 0, len(c.agents))
	for _, a := range c.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
