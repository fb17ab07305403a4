package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableInsert(t *testing.T) {
	cfg := Config{MaxNeighbors: 2, MaxDistance: 0.999}

	t.Run("Self", func(t *testing.T) {
		tab := newTable(1, cfg)
		assert.Equal(t, OutcomeRejectedSelf, tab.Insert(1, 0.1))
		assert.Equal(t, 0, tab.Len())
	})

	t.Run("Threshold", func(t *testing.T) {
		tab := newTable(1, cfg)
		assert.Equal(t, OutcomeRejectedThreshold, tab.Insert(2, 0.9995))
		assert.Equal(t, 0, tab.Len())
	})

	t.Run("EvictionOrder", func(t *testing.T) {
		// Capacity 2: B=0.3, C=0.5, then D=0.1 must evict C.
		tab := newTable(0, cfg)
		assert.Equal(t, OutcomeAccepted, tab.Insert(1, 0.3))
		assert.Equal(t, OutcomeAccepted, tab.Insert(2, 0.5))
		assert.Equal(t, OutcomeAccepted, tab.Insert(3, 0.1))

		assert.Equal(t, 2, tab.Len())

		d, ok := tab.Get(3)
		require.True(t, ok)
		assert.Equal(t, 0.1, d)

		d, ok = tab.Get(1)
		require.True(t, ok)
		assert.Equal(t, 0.3, d)

		_, ok = tab.Get(2)
		assert.False(t, ok)
	})

	t.Run("RejectNotBeatingWorst", func(t *testing.T) {
		tab := newTable(0, cfg)
		require.Equal(t, OutcomeAccepted, tab.Insert(1, 0.3))
		require.Equal(t, OutcomeAccepted, tab.Insert(2, 0.5))

		assert.Equal(t, OutcomeRejectedFull, tab.Insert(3, 0.5))
		assert.Equal(t, OutcomeRejectedFull, tab.Insert(3, 0.7))
		assert.Equal(t, 2, tab.Len())
		_, ok := tab.Get(3)
		assert.False(t, ok)
	})

	t.Run("BetterExists", func(t *testing.T) {
		tab := newTable(0, Config{MaxNeighbors: 1, MaxDistance: 0.999})
		require.Equal(t, OutcomeAccepted, tab.Insert(1, 0.4))

		assert.Equal(t, OutcomeRejectedBetterExists, tab.Insert(1, 0.6))
		d, ok := tab.Get(1)
		require.True(t, ok)
		assert.Equal(t, 0.4, d)
	})

	t.Run("UpdateInPlace", func(t *testing.T) {
		tab := newTable(0, cfg)
		require.Equal(t, OutcomeAccepted, tab.Insert(1, 0.4))

		assert.Equal(t, OutcomeAccepted, tab.Insert(1, 0.2))
		d, ok := tab.Get(1)
		require.True(t, ok)
		assert.Equal(t, 0.2, d)
		assert.Equal(t, 1, tab.Len())
	})

	t.Run("ZeroCapacity", func(t *testing.T) {
		tab := newTable(0, Config{MaxNeighbors: 0, MaxDistance: 0.999})
		assert.Equal(t, OutcomeRejectedFull, tab.Insert(1, 0.1))
		assert.Equal(t, 0, tab.Len())
	})
}

func TestTableStaleEntries(t *testing.T) {
	// An update in place leaves a stale entry in the eviction index; worst
	// lookups must skip it.
	tab := newTable(0, Config{MaxNeighbors: 2, MaxDistance: 0.999})
	require.Equal(t, OutcomeAccepted, tab.Insert(1, 0.5))
	require.Equal(t, OutcomeAccepted, tab.Insert(2, 0.3))
	require.Equal(t, OutcomeAccepted, tab.Insert(1, 0.1)) // stale (0.5, 1) left behind

	// Live is {1: 0.1, 2: 0.3}; the worst is 2, not the stale 0.5 record.
	w, ok := tab.worst()
	require.True(t, ok)
	assert.Equal(t, NodeID(2), w.id)
	assert.Equal(t, 0.3, w.dist)

	// A candidate below the live worst must evict 2 despite the stale max.
	assert.Equal(t, OutcomeAccepted, tab.Insert(3, 0.2))
	_, ok = tab.Get(2)
	assert.False(t, ok)
	assert.Equal(t, 1, tab.order.Len()-tab.Len()) // one stale record remains

	tab.finalizeLocal()
	assert.Equal(t, tab.Len(), tab.order.Len())
}

func TestTableAscending(t *testing.T) {
	tab := newTable(0, Config{MaxNeighbors: 10, MaxDistance: 0.999})
	for id, d := range map[NodeID]float64{1: 0.5, 2: 0.1, 3: 0.9, 4: 0.3} {
		require.Equal(t, OutcomeAccepted, tab.Insert(id, d))
	}
	tab.finalizeLocal()

	var got []NodeID
	prev := -1.0
	for nb := range tab.Ascending() {
		assert.GreaterOrEqual(t, nb.Distance, prev)
		prev = nb.Distance
		got = append(got, nb.ID)
	}
	assert.Equal(t, []NodeID{2, 4, 1, 3}, got)

	// Removed neighbors disappear from iteration even before the next
	// finalize pass.
	tab.Remove(4)
	got = got[:0]
	for nb := range tab.Ascending() {
		got = append(got, nb.ID)
	}
	assert.Equal(t, []NodeID{2, 1, 3}, got)
}

func TestTableAscendingRestartable(t *testing.T) {
	tab := newTable(0, Config{MaxNeighbors: 4, MaxDistance: 0.999})
	require.Equal(t, OutcomeAccepted, tab.Insert(1, 0.2))
	require.Equal(t, OutcomeAccepted, tab.Insert(2, 0.4))
	tab.finalizeLocal()

	seq := tab.Ascending()
	for range 2 {
		var got []NodeID
		for nb := range seq {
			got = append(got, nb.ID)
		}
		assert.Equal(t, []NodeID{1, 2}, got)
	}
}
