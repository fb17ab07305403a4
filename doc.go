// Package refrain provides an embedded music similarity graph and
// recommendation engine for Go.
//
// Refrain maintains, for every song, a small table of its nearest neighbors
// under an externally supplied distance metric, and answers ranked,
// diversified recommendation queries by traversing that graph:
//
//   - Bounded-degree neighbor tables with capacity-limited eviction
//   - Incremental bulk rebuilds with parallel distance computation
//   - A repair pass (Finalize) that heals one-sided edges after eviction
//   - Depth-sorted breadth-first recommendation queries
//   - Diversification via externally mined association rules
//
// # Quick Start
//
//	ctx := context.Background()
//
//	// The distance source is yours: pure, deterministic, in [0, 1].
//	eng, err := refrain.New(func(a, b Song) (float64, error) {
//	    return genreDistance(a, b), nil
//	})
//	if err != nil {
//	    panic(err)
//	}
//
//	for _, song := range library {
//	    eng.Add(song)
//	}
//	if err := eng.Rebuild(ctx); err != nil {
//	    panic(err)
//	}
//
//	ids, err := eng.Recommend(ctx, seed, 20)
//
// # Concurrency
//
// An Engine is safe for concurrent use: mutations (Add, Rebuild, Remove)
// take a write lock, queries share a read lock. The underlying graph and
// recommend packages are lock-free and single-writer; use them directly
// only if you enforce that contract yourself.
//
// # Scope
//
// Refrain does not compute distances, normalize attributes, mine
// association rules, or persist anything. Those belong to collaborating
// systems; refrain consumes a distance function and, optionally, a rule
// lookup and a listen history.
package refrain
