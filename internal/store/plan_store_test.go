package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/store"
)

func TestStore_SaveAndGet(t *testing.T) {
	s := store.New(0)
	p := &contracts.Plan{ID: "p1", CreatedAt: 1}
	s.Save(p)

	got, ok := s.Get("p1")
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestStore_EvictsOldestOverCapacity(t *testing.T) {
	s := store.New(2)
	s.Save(&contracts.Plan{ID: "p1", CreatedAt: 1})
	s.Save(&contracts.Plan{ID: "p2", CreatedAt: 2})
	s.Save(&contracts.Plan{ID: "p3", CreatedAt: 3})

	_, ok := s.Get("p1")
	assert.False(t, ok, "oldest plan should have been evicted")
	_, ok = s.Get("p3")
	assert.True(t, ok)
	assert.Len(t, s.List(), 2)
}

func TestStore_ListDescendingCreatedAt(t *testing.T) {
	s := store.New(0)
	s.Save(&contracts.Plan{ID: "p1", CreatedAt: 1})
	s.Save(&contracts.Plan{ID: "p2", CreatedAt: 2})

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, contracts.PlanID("p2"), list[0].ID)
}

func TestStore_Prune(t *testing.T) {
	s := store.New(0)
	s.Save(&contracts.Plan{ID: "old", CreatedAt: 1})
	s.Save(&contracts.Plan{ID: "new", CreatedAt: 100})

	s.Prune(50)
	_, ok := s.Get("old")
	assert.False(t, ok)
	_, ok = s.Get("new")
	assert.True(t, ok)
}
