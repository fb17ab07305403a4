// Package recommend implements read-only traversals over a finalized
// similarity graph: breadth-first expansion, depth-grouped sorted expansion,
// and the rule-weighted diversified top-N query.
//
// A Recommender holds no state between queries; queries may run concurrently
// with each other, but never with a graph mutation phase.
package recommend

import (
	"errors"
	"iter"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/tonndorf/refrain/graph"
	"github.com/tonndorf/refrain/rules"
)

// ErrInvalidCount is returned when a negative result count is requested.
var ErrInvalidCount = errors.New("recommend: count must not be negative")

// directTableThreshold is the count below which Recommend answers straight
// from the seed's own sorted table instead of traversing.
const directTableThreshold = 5

// RuleLookup serves the association rules a node participates in.
// *rules.Index satisfies it.
type RuleLookup interface {
	Lookup(id graph.NodeID) []rules.Rule
}

// Compile time check.
var _ RuleLookup = (*rules.Index)(nil)

// Recommender answers similarity queries over a finalized graph.
type Recommender[T any] struct {
	g     *graph.Graph[T]
	rules RuleLookup
}

// New creates a recommender over g. ruleLookup may be nil, in which case
// every query uses the plain sorted traversal.
func New[T any](g *graph.Graph[T], ruleLookup RuleLookup) *Recommender[T] {
	return &Recommender[T]{g: g, rules: ruleLookup}
}

// BFS expands breadth-first from seed, yielding the seed first and then
// every reachable node, unordered within a level. limit > 0 caps the number
// of yielded nodes; limit <= 0 exhausts the reachable component.
func (r *Recommender[T]) BFS(seed graph.NodeID, limit int) (iter.Seq[graph.NodeID], error) {
	if !r.g.Contains(seed) {
		return nil, &graph.ErrUnknownNode{ID: seed}
	}

	return func(yield func(graph.NodeID) bool) {
		visited := roaring.New()
		visited.Add(uint32(seed))

		if !yield(seed) {
			return
		}
		emitted := 1
		if limit > 0 && emitted >= limit {
			return
		}

		queue := []graph.NodeID{seed}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			neighbors, err := r.g.Neighbors(cur)
			if err != nil {
				continue
			}
			for nb := range neighbors {
				if visited.Contains(uint32(nb.ID)) {
					continue
				}
				visited.Add(uint32(nb.ID))
				queue = append(queue, nb.ID)

				if !yield(nb.ID) {
					return
				}
				emitted++
				if limit > 0 && emitted >= limit {
					return
				}
			}
		}
	}, nil
}

// BFSSorted expands breadth-first from seed grouped by depth: within each
// level the candidates are sorted by the distance of the edge that
// discovered them (ties by id) before being yielded. The seed is yielded
// first. limit behaves as in BFS.
func (r *Recommender[T]) BFSSorted(seed graph.NodeID, limit int) (iter.Seq[graph.NodeID], error) {
	if !r.g.Contains(seed) {
		return nil, &graph.ErrUnknownNode{ID: seed}
	}

	return func(yield func(graph.NodeID) bool) {
		visited := roaring.New()
		visited.Add(uint32(seed))

		if !yield(seed) {
			return
		}
		emitted := 1
		if limit > 0 && emitted >= limit {
			return
		}

		level := []graph.NodeID{seed}
		for len(level) > 0 {
			var next []graph.Neighbor
			for _, cur := range level {
				neighbors, err := r.g.Neighbors(cur)
				if err != nil {
					continue
				}
				for nb := range neighbors {
					if visited.Contains(uint32(nb.ID)) {
						continue
					}
					// First discovery wins; its edge distance ranks the
					// candidate within the level.
					visited.Add(uint32(nb.ID))
					next = append(next, nb)
				}
			}

			slices.SortFunc(next, func(a, b graph.Neighbor) int {
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

			level = level[:0]
			for _, nb := range next {
				level = append(level, nb.ID)
				if !yield(nb.ID) {
					return
				}
				emitted++
				if limit > 0 && emitted >= limit {
					return
				}
			}
		}
	}, nil
}

// Recommend returns up to n nodes similar to seed, best first. The seed is
// never part of the result and no node appears twice. Fewer than n results
// mean the reachable and rule-derived candidate pool was exhausted.
//
// Small queries (n < 5) answer directly from the seed's sorted neighbor
// table without traversal. Larger queries consult the rule lookup: with no
// matching rules the result is the plain depth-sorted traversal, otherwise
// rule-derived candidate streams are merged in (see mergeRuleStreams).
func (r *Recommender[T]) Recommend(seed graph.NodeID, n int) ([]graph.NodeID, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	if !r.g.Contains(seed) {
		return nil, &graph.ErrUnknownNode{ID: seed}
	}
	if n == 0 {
		return nil, nil
	}

	if n < directTableThreshold {
		neighbors, err := r.g.Neighbors(seed)
		if err != nil {
			return nil, err
		}
		out := make([]graph.NodeID, 0, n)
		for nb := range neighbors {
			out = append(out, nb.ID)
			if len(out) == n {
				break
			}
		}
		return out, nil
	}

	var matched []rules.Rule
	if r.rules != nil {
		matched = r.rules.Lookup(seed)
	}

	if len(matched) == 0 {
		seq, err := r.BFSSorted(seed, 0)
		if err != nil {
			return nil, err
		}
		out := make([]graph.NodeID, 0, n)
		for id := range seq {
			if id == seed {
				continue
			}
			out = append(out, id)
			if len(out) == n {
				break
			}
		}
		return out, nil
	}

	return r.mergeRuleStreams(seed, n, matched)
}

// mergeRuleStreams builds the diversified result: the base half comes from
// the depth-sorted traversal of the seed, the rest is drawn round-robin
// from per-rule streams. Each matching rule gets a candidate budget
// proportional to its share of the summed ratings over a reserved half of
// n, split evenly across the nodes of its opposite set. If the rule streams
// run dry before n unique nodes are collected, the remainder is drained
// from the (exhaustive) base traversal.
func (r *Recommender[T]) mergeRuleStreams(seed graph.NodeID, n int, matched []rules.Rule) ([]graph.NodeID, error) {
	baseSeq, err := r.BFSSorted(seed, 0)
	if err != nil {
		return nil, err
	}
	baseNext, baseStop := iter.Pull(baseSeq)
	defer baseStop()

	var sumRating float64
	for _, rule := range matched {
		sumRating += rule.Rating
	}

	half := n / 2

	type stream struct {
		next func() (graph.NodeID, bool)
		stop func()
	}
	var all []stream
	defer func() {
		for _, s := range all {
			s.stop()
		}
	}()

	for _, rule := range matched {
		opposite, ok := rule.Opposite(seed)
		if !ok || opposite == nil || opposite.IsEmpty() {
			continue
		}

		// All ratings zero: weight the rules evenly.
		share := 1 / float64(len(matched))
		if sumRating > 0 {
			share = rule.Rating / sumRating
		}
		budget := int(math.Ceil(share * float64(half)))
		perNode := int(math.Ceil(float64(budget) / float64(opposite.GetCardinality())))
		if perNode < 1 {
			perNode = 1
		}

		it := opposite.Iterator()
		for it.HasNext() {
			id := graph.NodeID(it.Next())
			if id == seed || !r.g.Contains(id) {
				continue
			}
			seq, err := r.BFSSorted(id, perNode)
			if err != nil {
				continue
			}
			next, stop := iter.Pull(seq)
			all = append(all, stream{next: next, stop: stop})
		}
	}
	streams := all

	seen := roaring.New()
	seen.Add(uint32(seed))
	out := make([]graph.NodeID, 0, n)
	collect := func(id graph.NodeID) bool {
		if seen.Contains(uint32(id)) {
			return len(out) == n
		}
		seen.Add(uint32(id))
		out = append(out, id)
		return len(out) == n
	}

	// Base half first.
	for len(out) < half {
		id, ok := baseNext()
		if !ok {
			baseNext = nil
			break
		}
		if collect(id) {
			return out, nil
		}
	}

	// Round-robin over the rule streams: one draw per stream per round,
	// dropping exhausted streams between rounds.
	for len(streams) > 0 && len(out) < n {
		alive := streams[:0:len(streams)]
		for _, s := range streams {
			id, ok := s.next()
			if !ok {
				continue
			}
			alive = append(alive, s)
			if collect(id) {
				return out, nil
			}
		}
		streams = alive
	}

	// Streams exhausted: fill from the rest of the base traversal.
	for baseNext != nil && len(out) < n {
		id, ok := baseNext()
		if !ok {
			break
		}
		if collect(id) {
			break
		}
	}

	return out, nil
}
