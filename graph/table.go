package graph

import (
	"iter"
	"math"
	"slices"

	"github.com/tidwall/btree"
)

// NodeID identifies a node in the graph. IDs are assigned once, monotonically,
// and are never reused while the node is live.
type NodeID uint32

// Neighbor is a single entry of a node's adjacency list.
type Neighbor struct {
	ID       NodeID
	Distance float64
}

// Config bounds a node's neighbor table.
type Config struct {
	// MaxNeighbors is the table capacity. Zero yields a degenerate node that
	// accepts no edges.
	MaxNeighbors int

	// MaxDistance is the acceptance threshold; candidates above it are
	// rejected outright. Keep it close to 1.0 so only near-useless edges
	// are filtered.
	MaxDistance float64
}

// DefaultConfig returns the graph-wide default table bounds.
func DefaultConfig() Config {
	return Config{
		MaxNeighbors: 100,
		MaxDistance:  0.999,
	}
}

// sortEntry keys the eviction index by (distance, id) so the logical worst
// neighbor is the tree maximum and ties break deterministically.
type sortEntry struct {
	dist float64
	id   NodeID
}

func sortEntryLess(a, b sortEntry) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

// Table is a bounded, distance-ordered adjacency list for one node.
//
// The live mapping is authoritative. The eviction index may hold stale
// entries referring to neighbors that were since removed or updated; they
// are skipped lazily during worst-neighbor lookups and compacted eagerly
// only by finalizeLocal.
type Table struct {
	owner NodeID
	cfg   Config

	live  map[NodeID]float64
	order *btree.BTreeG[sortEntry]

	// sorted is the ascending snapshot taken by the last finalizeLocal.
	// Between finalize passes it is the last-sorted order, not guaranteed
	// fresh.
	sorted []Neighbor
	dirty  bool
}

func newTable(owner NodeID, cfg Config) *Table {
	if cfg.MaxDistance < 0 {
		cfg.MaxDistance = 0
	}
	if cfg.MaxDistance > 1 {
		cfg.MaxDistance = 1
	}
	return &Table{
		owner: owner,
		cfg:   cfg,
		live:  make(map[NodeID]float64),
		order: btree.NewBTreeG(sortEntryLess),
	}
}

// Owner returns the id of the node this table belongs to.
func (t *Table) Owner() NodeID { return t.owner }

// Len returns the number of live neighbors.
func (t *Table) Len() int { return len(t.live) }

// Capacity returns the configured maximum number of neighbors.
func (t *Table) Capacity() int { return t.cfg.MaxNeighbors }

// MaxDistance returns the acceptance threshold.
func (t *Table) MaxDistance() float64 { return t.cfg.MaxDistance }

func (t *Table) setMaxDistance(d float64) { t.cfg.MaxDistance = d }

// Get returns the stored distance to other, if present.
func (t *Table) Get(other NodeID) (float64, bool) {
	d, ok := t.live[other]
	return d, ok
}

// Remove drops the directed record to other from this table only.
// The eviction index keeps a stale entry until the next finalizeLocal.
func (t *Table) Remove(other NodeID) bool {
	if _, ok := t.live[other]; !ok {
		return false
	}
	delete(t.live, other)
	t.dirty = true
	return true
}

// Insert offers a candidate neighbor to this table only. The caller is
// responsible for offering the symmetric candidate to the other node;
// eviction here may leave a dangling record on the peer, which Finalize
// repairs.
func (t *Table) Insert(other NodeID, distance float64) InsertOutcome {
	if other == t.owner {
		return OutcomeRejectedSelf
	}

	if old, ok := t.live[other]; ok {
		if old < distance {
			return OutcomeRejectedBetterExists
		}
		// Equal-or-better update in place. The previous index entry goes
		// stale and is skipped until compaction.
		t.live[other] = distance
		t.order.Set(sortEntry{dist: distance, id: other})
		t.dirty = true
		return OutcomeAccepted
	}

	if distance > t.cfg.MaxDistance {
		return OutcomeRejectedThreshold
	}

	if t.cfg.MaxNeighbors <= 0 {
		return OutcomeRejectedFull
	}

	if len(t.live) >= t.cfg.MaxNeighbors {
		worst, ok := t.worst()
		if !ok || distance >= worst.dist {
			return OutcomeRejectedFull
		}
		delete(t.live, worst.id)
		t.order.Delete(worst)
	}

	t.live[other] = distance
	t.order.Set(sortEntry{dist: distance, id: other})
	t.dirty = true
	return OutcomeAccepted
}

// worst locates the live entry with the largest distance, skipping stale
// index entries lazily.
func (t *Table) worst() (sortEntry, bool) {
	var (
		found bool
		w     sortEntry
	)
	t.order.Descend(sortEntry{dist: math.Inf(1)}, func(e sortEntry) bool {
		if d, ok := t.live[e.id]; ok && d == e.dist {
			w, found = e, true
			return false
		}
		return true
	})
	return w, found
}

// Ascending iterates the neighbors in the last-sorted ascending order,
// skipping entries removed since the last finalize. The sequence is finite
// and restartable; after a Finalize it reflects the live mapping exactly.
func (t *Table) Ascending() iter.Seq[Neighbor] {
	return func(yield func(Neighbor) bool) {
		for _, n := range t.sorted {
			if _, ok := t.live[n.ID]; !ok {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// finalizeLocal re-derives the eviction index and the sorted snapshot from
// the live mapping, dropping all stale entries.
func (t *Table) finalizeLocal() {
	if !t.dirty {
		return
	}

	t.sorted = t.sorted[:0]
	for id, dist := range t.live {
		t.sorted = append(t.sorted, Neighbor{ID: id, Distance: dist})
	}
	slices.SortFunc(t.sorted, func(a, b Neighbor) int {
		if a.Distance != b.Distance {
			if a.Distance < b.Distance {
				return -1
			}
			return 1
		}
		if a.ID != b.ID {
			if a.ID < b.ID {
				return -1
			}
			return 1
		}
		return 0
	})

	t.order = btree.NewBTreeG(sortEntryLess)
	for _, n := range t.sorted {
		t.order.Set(sortEntry{dist: n.Distance, id: n.ID})
	}

	t.dirty = false
}
