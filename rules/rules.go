// Package rules stores externally mined association rules and the listen
// history they are mined from. The graph engine only consumes rule lookups;
// mining itself happens outside this module.
//
// The index is single-writer/multiple-reader under the same caller-enforced
// contract as the graph.
package rules

import (
	"errors"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/tonndorf/refrain/graph"
)

// Rule associates two disjoint sets of nodes that tend to be played
// together, with the support and rating produced by the miner.
type Rule struct {
	Left    *roaring.Bitmap
	Right   *roaring.Bitmap
	Support uint64
	Rating  float64
}

// Set builds a rule side from node ids.
func Set(ids ...graph.NodeID) *roaring.Bitmap {
	b := roaring.New()
	for _, id := range ids {
		b.Add(uint32(id))
	}
	return b
}

// Contains reports whether either side of the rule contains id.
func (r Rule) Contains(id graph.NodeID) bool {
	return (r.Left != nil && r.Left.Contains(uint32(id))) ||
		(r.Right != nil && r.Right.Contains(uint32(id)))
}

// Opposite returns the side of the rule that does not contain id.
func (r Rule) Opposite(id graph.NodeID) (*roaring.Bitmap, bool) {
	if r.Left != nil && r.Left.Contains(uint32(id)) {
		return r.Right, true
	}
	if r.Right != nil && r.Right.Contains(uint32(id)) {
		return r.Left, true
	}
	return nil, false
}

var (
	// ErrEmptySide is returned when a rule is inserted with a nil or empty side.
	ErrEmptySide = errors.New("rules: both rule sides must be non-empty")

	// ErrNegativeRating is returned when a rule carries a rating below zero.
	ErrNegativeRating = errors.New("rules: rating must not be negative")
)

// Index is an in-memory association-rule store with member lookup.
// Rules are kept ordered by descending rating; ties keep insertion order.
type Index struct {
	rules []Rule
}

// NewIndex creates an empty rule index.
func NewIndex() *Index {
	return &Index{}
}

// Len returns the number of stored rules.
func (ix *Index) Len() int { return len(ix.rules) }

// Insert adds a rule to the index.
func (ix *Index) Insert(r Rule) error {
	if r.Left == nil || r.Right == nil || r.Left.IsEmpty() || r.Right.IsEmpty() {
		return ErrEmptySide
	}
	if r.Rating < 0 {
		return ErrNegativeRating
	}

	// First position with a strictly smaller rating keeps ties stable.
	pos := sort.Search(len(ix.rules), func(i int) bool {
		return ix.rules[i].Rating < r.Rating
	})
	ix.rules = append(ix.rules, Rule{})
	copy(ix.rules[pos+1:], ix.rules[pos:])
	ix.rules[pos] = r
	return nil
}

// Lookup returns the rules whose predicate or consequence set contains id,
// in descending-rating order.
func (ix *Index) Lookup(id graph.NodeID) []Rule {
	var out []Rule
	for _, r := range ix.rules {
		if r.Contains(id) {
			out = append(out, r)
		}
	}
	return out
}

// Best returns the highest-rated rule, if any.
func (ix *Index) Best() (Rule, bool) {
	if len(ix.rules) == 0 {
		return Rule{}, false
	}
	return ix.rules[0], true
}

// Drop removes every rule that references id on either side. Useful when a
// node is disconnected from the graph.
func (ix *Index) Drop(id graph.NodeID) int {
	kept := ix.rules[:0]
	dropped := 0
	for _, r := range ix.rules {
		if r.Contains(id) {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	ix.rules = kept
	return dropped
}

// Clear removes all rules.
func (ix *Index) Clear() {
	ix.rules = nil
}
