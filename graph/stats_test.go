package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		g, err := New(lineDistance)
		require.NoError(t, err)

		s := g.Stats()
		assert.Equal(t, 0, s.Nodes)
		assert.Equal(t, 0, s.Edges)
		assert.Equal(t, 0, s.Pending)
		assert.Zero(t, s.Distance)
	})

	t.Run("Pending", func(t *testing.T) {
		g, err := New(lineDistance)
		require.NoError(t, err)

		g.Add(0)
		g.Add(1)
		assert.Equal(t, 2, g.Stats().Pending)

		require.NoError(t, g.Rebuild(context.Background()))
		assert.Equal(t, 0, g.Stats().Pending)
	})

	t.Run("Distances", func(t *testing.T) {
		g, err := New(lineDistance)
		require.NoError(t, err)

		a := g.Add(0)
		b := g.Add(1)
		c := g.Add(5)

		mustAccept := func(u, v NodeID, d float64) {
			t.Helper()
			ou, ov, err := g.InsertCandidate(u, v, d)
			require.NoError(t, err)
			require.True(t, ou.Accepted() && ov.Accepted())
		}
		mustAccept(a, b, 0.1)
		mustAccept(a, c, 0.5)
		mustAccept(b, c, 0.3)

		s := g.Stats()
		assert.Equal(t, 3, s.Nodes)
		assert.Equal(t, 3, s.Edges)
		assert.InDelta(t, 0.3, s.Distance.Mean, 1e-9)
		assert.Equal(t, 0.1, s.Distance.Min)
		assert.Equal(t, 0.5, s.Distance.Max)
		assert.Equal(t, 0.3, s.Distance.Median)
		assert.Greater(t, s.Distance.StdDev, 0.0)
	})
}
