package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/catalog"
)

func TestCatalog_GetAndList(t *testing.T) {
	c := catalog.New(
		contracts.Agent{ID: "b", Title: "B"},
		contracts.Agent{ID: "a", Title: "A"},
	)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, contracts.AgentID("a"), list[0].ID)
	assert.Equal(t, contracts.AgentID("b"), list[1].ID)
}
