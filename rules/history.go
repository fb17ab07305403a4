package rules

import (
	"slices"
	"time"

	"github.com/tonndorf/refrain/graph"
)

// HistoryOptions bounds a listen history.
type HistoryOptions struct {
	// MaxGroups is the number of closed listen groups kept; older groups
	// are discarded.
	MaxGroups int

	// MaxGroupSize closes the current group once it holds this many listens.
	MaxGroupSize int

	// Gap closes the current group when the pause since the last listen
	// exceeds it.
	Gap time.Duration

	// Clock is the time source, overridable in tests. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultHistoryOptions mirror a single listening session: short groups,
// one-hour inactivity gap.
var DefaultHistoryOptions = HistoryOptions{
	MaxGroups:    100,
	MaxGroupSize: 5,
	Gap:          time.Hour,
}

type listen struct {
	id graph.NodeID
	at time.Time
}

// History groups fed listens into sessions. Closed groups are the input an
// external rule miner consumes; playcounts feed the heuristic seed choice.
type History struct {
	opts    HistoryOptions
	groups  [][]listen
	current []listen
	counts  map[graph.NodeID]uint64
}

// NewHistory creates a listen history.
func NewHistory(optFns ...func(o *HistoryOptions)) *History {
	opts := DefaultHistoryOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxGroups <= 0 {
		opts.MaxGroups = DefaultHistoryOptions.MaxGroups
	}
	if opts.MaxGroupSize <= 0 {
		opts.MaxGroupSize = DefaultHistoryOptions.MaxGroupSize
	}
	if opts.Gap <= 0 {
		opts.Gap = DefaultHistoryOptions.Gap
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &History{
		opts:   opts,
		counts: make(map[graph.NodeID]uint64),
	}
}

// NewListenHistory creates a history sized for long-term rule mining.
func NewListenHistory(optFns ...func(o *HistoryOptions)) *History {
	base := func(o *HistoryOptions) {
		o.MaxGroups = 10000
		o.MaxGroupSize = 10
	}
	return NewHistory(append([]func(o *HistoryOptions){base}, optFns...)...)
}

func (h *History) lastTime() time.Time {
	if len(h.current) > 0 {
		return h.current[len(h.current)-1].at
	}
	return h.opts.Clock()
}

// Feed records a single listen, rotating the current group when it is full
// or the inactivity gap has passed.
func (h *History) Feed(id graph.NodeID) {
	now := h.opts.Clock()

	exceedsSize := len(h.current) >= h.opts.MaxGroupSize
	exceedsGap := now.Sub(h.lastTime()) >= h.opts.Gap

	if exceedsSize || exceedsGap {
		h.rotate()
	}

	h.current = append(h.current, listen{id: id, at: now})
	h.counts[id]++
}

func (h *History) rotate() {
	if len(h.current) == 0 {
		return
	}
	h.groups = append(h.groups, h.current)
	if over := len(h.groups) - h.opts.MaxGroups; over > 0 {
		h.groups = h.groups[over:]
	}
	h.current = nil
}

// Groups returns the listen groups, oldest first, including the still-open
// group if non-empty.
func (h *History) Groups() [][]graph.NodeID {
	out := make([][]graph.NodeID, 0, len(h.groups)+1)
	for _, grp := range h.groups {
		ids := make([]graph.NodeID, len(grp))
		for i, l := range grp {
			ids[i] = l.id
		}
		out = append(out, ids)
	}
	if len(h.current) > 0 {
		ids := make([]graph.NodeID, len(h.current))
		for i, l := range h.current {
			ids[i] = l.id
		}
		out = append(out, ids)
	}
	return out
}

// Count returns how often id was fed. Unknown ids count zero.
func (h *History) Count(id graph.NodeID) uint64 {
	return h.counts[id]
}

// PlayCount pairs a node with its listen count.
type PlayCount struct {
	ID    graph.NodeID
	Count uint64
}

// TopCounts returns the n most played nodes, descending by count, ascending
// by id on ties. n <= 0 returns all.
func (h *History) TopCounts(n int) []PlayCount {
	out := make([]PlayCount, 0, len(h.counts))
	for id, c := range h.counts {
		out = append(out, PlayCount{ID: id, Count: c})
	}
	slices.SortFunc(out, func(a, b PlayCount) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
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
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Clear forgets all groups and counts.
func (h *History) Clear() {
	h.groups = nil
	h.current = nil
	clear(h.counts)
}
