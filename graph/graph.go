package graph

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// DistanceFunc computes the scalar distance in [0, 1] between two node
// payloads. It must be pure and deterministic; symmetry is assumed, not
// enforced.
type DistanceFunc[T any] func(a, b T) (float64, error)

// Options configures a Graph.
type Options struct {
	// Defaults are the table bounds applied by Add.
	Defaults Config

	// Parallelism is the number of workers used for pairwise distance
	// computation during Rebuild. Zero or negative means GOMAXPROCS.
	Parallelism int
}

// DefaultOptions contains the default options for a Graph.
var DefaultOptions = Options{
	Defaults: DefaultConfig(),
}

type node[T any] struct {
	id      NodeID
	payload T
	table   *Table
}

// Graph is a collection of nodes with bounded, distance-ordered neighbor
// tables. Mutations (Rebuild, Finalize, Disconnect) are single-writer; see
// the package documentation for the concurrency contract.
type Graph[T any] struct {
	distance DistanceFunc[T]
	opts     Options

	nodes  map[NodeID]*node[T]
	nextID NodeID

	// pending holds nodes added since the last rebuild. When only a subset
	// of nodes is pending, Rebuild pairs new nodes against all nodes instead
	// of recomputing every pair.
	pending map[NodeID]struct{}
}

// New creates an empty graph over the given distance source.
func New[T any](distance DistanceFunc[T], optFns ...func(o *Options)) (*Graph[T], error) {
	if distance == nil {
		return nil, errors.New("graph: distance source must not be nil")
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Graph[T]{
		distance: distance,
		opts:     opts,
		nodes:    make(map[NodeID]*node[T]),
		pending:  make(map[NodeID]struct{}),
	}, nil
}

// Add creates an empty node with the graph-wide default bounds. The node
// participates in no edges until the next Rebuild.
func (g *Graph[T]) Add(payload T) NodeID {
	return g.AddWithConfig(payload, g.opts.Defaults)
}

// AddWithConfig creates an empty node with per-node table bounds.
func (g *Graph[T]) AddWithConfig(payload T, cfg Config) NodeID {
	id := g.nextID
	g.nextID++

	g.nodes[id] = &node[T]{
		id:      id,
		payload: payload,
		table:   newTable(id, cfg),
	}
	g.pending[id] = struct{}{}
	return id
}

// Len returns the number of live nodes.
func (g *Graph[T]) Len() int { return len(g.nodes) }

// Contains reports whether id is live.
func (g *Graph[T]) Contains(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// IDs returns all live node ids in ascending order.
func (g *Graph[T]) IDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Payload returns the payload stored for id.
func (g *Graph[T]) Payload(id NodeID) (T, error) {
	n, ok := g.nodes[id]
	if !ok {
		var zero T
		return zero, &ErrUnknownNode{ID: id}
	}
	return n.payload, nil
}

// Degree returns the number of live neighbors of id.
func (g *Graph[T]) Degree(id NodeID) (int, error) {
	n, ok := g.nodes[id]
	if !ok {
		return 0, &ErrUnknownNode{ID: id}
	}
	return n.table.Len(), nil
}

// Neighbors iterates the neighbors of id in ascending-distance order
// (fresh after a Finalize; last-sorted order otherwise).
func (g *Graph[T]) Neighbors(id NodeID) (iter.Seq[Neighbor], error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &ErrUnknownNode{ID: id}
	}
	return n.table.Ascending(), nil
}

// InsertCandidate offers the candidate edge (u, v, distance) to both
// endpoints symmetrically and returns the per-side outcomes.
func (g *Graph[T]) InsertCandidate(u, v NodeID, distance float64) (InsertOutcome, InsertOutcome, error) {
	un, ok := g.nodes[u]
	if !ok {
		return 0, 0, &ErrUnknownNode{ID: u}
	}
	vn, ok := g.nodes[v]
	if !ok {
		return 0, 0, &ErrUnknownNode{ID: v}
	}
	if !validDistance(distance) {
		return 0, 0, &ErrInvalidDistance{Value: distance, A: u, B: v}
	}
	return un.table.Insert(v, distance), vn.table.Insert(u, distance), nil
}

// Rebuild computes pairwise distances and feeds them to both endpoints of
// every pair. Distance computation runs in parallel; the table mutations
// happen in a single-threaded commit pass.
//
// Candidates with a distance outside [0, 1] are skipped and reported via
// the returned error; valid candidates are still committed. After an
// interrupted or partially failed rebuild the graph may hold one-sided
// edges until the next Finalize.
func (g *Graph[T]) Rebuild(ctx context.Context) error {
	pairs := g.rebuildPairs()
	if len(pairs) == 0 {
		clear(g.pending)
		return nil
	}

	dists := make([]float64, len(pairs))

	workers := g.opts.Parallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	chunk := (len(pairs) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(pairs); start += chunk {
		end := min(start+chunk, len(pairs))
		eg.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				p := pairs[i]
				d, err := g.distance(g.nodes[p[0]].payload, g.nodes[p[1]].payload)
				if err != nil {
					return fmt.Errorf("distance source for pair (%d, %d): %w", p[0], p[1], err)
				}
				dists[i] = d
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	var invalid []error
	for i, p := range pairs {
		d := dists[i]
		if !validDistance(d) {
			invalid = append(invalid, &ErrInvalidDistance{Value: d, A: p[0], B: p[1]})
			continue
		}
		g.nodes[p[0]].table.Insert(p[1], d)
		g.nodes[p[1]].table.Insert(p[0], d)
	}

	clear(g.pending)
	return errors.Join(invalid...)
}

// rebuildPairs selects the unordered pairs the next rebuild must recompute:
// everything when the graph is fresh (or nothing is pending), otherwise each
// pending node against all nodes, new-vs-new pairs counted once.
func (g *Graph[T]) rebuildPairs() [][2]NodeID {
	ids := g.IDs()

	if len(g.pending) == 0 || len(g.pending) == len(g.nodes) {
		pairs := make([][2]NodeID, 0, len(ids)*(len(ids)-1)/2)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairs = append(pairs, [2]NodeID{ids[i], ids[j]})
			}
		}
		return pairs
	}

	newcomers := make([]NodeID, 0, len(g.pending))
	for id := range g.pending {
		newcomers = append(newcomers, id)
	}
	slices.Sort(newcomers)

	var pairs [][2]NodeID
	for _, p := range newcomers {
		for _, q := range ids {
			if p == q {
				continue
			}
			if _, ok := g.pending[q]; ok && q <= p {
				continue
			}
			pairs = append(pairs, [2]NodeID{p, q})
		}
	}
	return pairs
}

// Finalize repairs one-sided edges left behind by evictions and re-sorts
// every neighbor table. It is idempotent and safe to re-run after any
// partial or interrupted rebuild.
func (g *Graph[T]) Finalize() {
	for _, u := range g.IDs() {
		ut := g.nodes[u].table
		for v, d := range ut.live {
			peer, ok := g.nodes[v]
			if !ok {
				ut.Remove(v)
				continue
			}
			pd, ok := peer.table.Get(u)
			if !ok {
				ut.Remove(v)
				continue
			}
			if pd != d {
				// Both endpoints accepted the edge, but at different values
				// (an eviction plus re-insert race). Settle on the smaller
				// distance; an equal-or-better update is always accepted.
				m := min(d, pd)
				ut.Insert(v, m)
				peer.table.Insert(u, m)
			}
		}
	}

	for _, id := range g.IDs() {
		g.nodes[id].table.finalizeLocal()
	}
}

// Disconnect removes a node and heals the hole it leaves: the thresholds of
// its former neighbors are temporarily relaxed, pairwise distances among
// them are recomputed and offered as candidate edges, then the thresholds
// are restored. Dangling references outside the former neighborhood are
// left for the next Finalize.
func (g *Graph[T]) Disconnect(id NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return &ErrUnknownNode{ID: id}
	}

	neighbors := make([]NodeID, 0, n.table.Len())
	for v := range n.table.live {
		if _, ok := g.nodes[v]; ok {
			neighbors = append(neighbors, v)
		}
	}
	slices.Sort(neighbors)

	// Delete every edge to and from the node before healing.
	for _, w := range g.nodes {
		w.table.Remove(id)
	}
	delete(g.nodes, id)
	delete(g.pending, id)

	saved := make(map[NodeID]float64, len(neighbors))
	for _, v := range neighbors {
		t := g.nodes[v].table
		saved[v] = t.MaxDistance()
		t.setMaxDistance(1.0)
	}
	restore := func() {
		for v, d := range saved {
			g.nodes[v].table.setMaxDistance(d)
		}
	}

	var invalid []error
	for i := 0; i < len(neighbors); i++ {
		for j := i + 1; j < len(neighbors); j++ {
			a, b := g.nodes[neighbors[i]], g.nodes[neighbors[j]]
			d, err := g.distance(a.payload, b.payload)
			if err != nil {
				restore()
				return fmt.Errorf("distance source for pair (%d, %d): %w", a.id, b.id, err)
			}
			if !validDistance(d) {
				invalid = append(invalid, &ErrInvalidDistance{Value: d, A: a.id, B: b.id})
				continue
			}
			a.table.Insert(b.id, d)
			b.table.Insert(a.id, d)
		}
	}
	restore()

	// Local repair among the former neighborhood.
	for _, v := range neighbors {
		vt := g.nodes[v].table
		for w, d := range vt.live {
			peer, ok := g.nodes[w]
			if !ok {
				vt.Remove(w)
				continue
			}
			pd, ok := peer.table.Get(v)
			if !ok {
				vt.Remove(w)
				continue
			}
			if pd != d {
				m := min(d, pd)
				vt.Insert(w, m)
				peer.table.Insert(v, m)
			}
		}
		vt.finalizeLocal()
	}

	return errors.Join(invalid...)
}
