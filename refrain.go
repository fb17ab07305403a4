package refrain

import (
	"context"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tonndorf/refrain/graph"
	"github.com/tonndorf/refrain/recommend"
	"github.com/tonndorf/refrain/rules"
)

// SongID identifies a song in the engine.
type SongID = graph.NodeID

// Engine is the consumer-facing session object: a similarity graph, a
// recommender, and optional rule/history collaborators behind a coarse
// single-writer/multiple-reader lock.
type Engine[T any] struct {
	mu sync.RWMutex

	graph *graph.Graph[T]
	rec   *recommend.Recommender[T]

	ruleIndex *rules.Index
	history   *rules.History

	cache *lru.Cache[cacheKey, []SongID]

	logger  *Logger
	metrics MetricsCollector
}

type cacheKey struct {
	seed SongID
	n    int
}

// New creates an engine over the given distance source.
func New[T any](distance graph.DistanceFunc[T], optFns ...Option) (*Engine[T], error) {
	o := applyOptions(optFns)

	g, err := graph.New(distance, func(opts *graph.Options) {
		opts.Defaults = o.config
		opts.Parallelism = o.parallelism
	})
	if err != nil {
		return nil, err
	}

	lookup := o.ruleLookup
	if lookup == nil && o.ruleIndex != nil {
		lookup = o.ruleIndex
	}

	e := &Engine[T]{
		graph:     g,
		rec:       recommend.New(g, lookup),
		ruleIndex: o.ruleIndex,
		history:   o.history,
		logger:    o.logger,
		metrics:   o.metricsCollector,
	}

	if o.cacheSize > 0 {
		// Error only on non-positive size, which is excluded here.
		e.cache, _ = lru.New[cacheKey, []SongID](o.cacheSize)
	}

	return e, nil
}

// Add inserts a song and returns its id. The song participates in no edges
// until the next Rebuild.
func (e *Engine[T]) Add(payload T) SongID {
	start := time.Now()

	e.mu.Lock()
	id := e.graph.Add(payload)
	e.invalidate()
	e.mu.Unlock()

	e.metrics.RecordAdd(time.Since(start))
	e.logger.LogAdd(context.Background(), id)
	return id
}

// AddWithConfig inserts a song with per-song neighbor-table bounds.
func (e *Engine[T]) AddWithConfig(payload T, cfg graph.Config) SongID {
	start := time.Now()

	e.mu.Lock()
	id := e.graph.AddWithConfig(payload, cfg)
	e.invalidate()
	e.mu.Unlock()

	e.metrics.RecordAdd(time.Since(start))
	e.logger.LogAdd(context.Background(), id)
	return id
}

// Rebuild recomputes pairwise distances for songs added since the last
// rebuild (or for everything on the first pass) and repairs the graph. The
// graph satisfies all consistency invariants when Rebuild returns.
//
// A non-nil error reports rejected candidates (invalid distances) or a
// failing distance source; the committed remainder is still repaired.
func (e *Engine[T]) Rebuild(ctx context.Context) error {
	start := time.Now()

	e.mu.Lock()
	err := e.graph.Rebuild(ctx)
	e.graph.Finalize()
	e.invalidate()
	songs := e.graph.Len()
	e.mu.Unlock()

	e.metrics.RecordRebuild(songs, time.Since(start), err)
	e.logger.LogRebuild(ctx, songs, time.Since(start), err)
	return translateError(err)
}

// Repair re-runs the self-healing pass alone. It is idempotent; use it
// after a cancelled Rebuild to restore consistency without recomputing
// distances.
func (e *Engine[T]) Repair(ctx context.Context) {
	start := time.Now()

	e.mu.Lock()
	e.graph.Finalize()
	e.invalidate()
	e.mu.Unlock()

	e.metrics.RecordRepair(time.Since(start))
	e.logger.LogRepair(ctx, time.Since(start))
}

// Remove deletes a song and closes the hole it leaves by reconnecting its
// former neighbors. Rules referencing the song are dropped from an engine-
// owned rule index.
func (e *Engine[T]) Remove(ctx context.Context, id SongID) error {
	start := time.Now()

	e.mu.Lock()
	err := e.graph.Disconnect(id)
	if err == nil && e.ruleIndex != nil {
		e.ruleIndex.Drop(id)
	}
	e.invalidate()
	e.mu.Unlock()

	e.metrics.RecordRemove(time.Since(start), err)
	e.logger.LogRemove(ctx, id, err)
	return translateError(err)
}

// Recommend returns up to n songs similar to seed, best first. The seed is
// never part of the result and no song appears twice.
func (e *Engine[T]) Recommend(ctx context.Context, seed SongID, n int) ([]SongID, error) {
	start := time.Now()

	if e.cache != nil {
		if hit, ok := e.cache.Get(cacheKey{seed: seed, n: n}); ok {
			e.metrics.RecordRecommend(n, len(hit), time.Since(start), nil)
			return slices.Clone(hit), nil
		}
	}

	e.mu.RLock()
	out, err := e.rec.Recommend(seed, n)
	e.mu.RUnlock()

	if err == nil && e.cache != nil {
		e.cache.Add(cacheKey{seed: seed, n: n}, slices.Clone(out))
	}

	e.metrics.RecordRecommend(n, len(out), time.Since(start), err)
	e.logger.LogRecommend(ctx, seed, n, len(out), err)
	return out, translateError(err)
}

// RecommendFromHeuristic guesses a seed and recommends from it: the lowest
// live member of the best rule wins, then the most played song, then the
// lowest live id. The chosen seed is the first element of the result,
// followed by up to n recommendations.
func (e *Engine[T]) RecommendFromHeuristic(ctx context.Context, n int) ([]SongID, error) {
	e.mu.RLock()
	seed, ok := e.heuristicSeed()
	e.mu.RUnlock()
	if !ok {
		return nil, ErrEmptyGraph
	}

	recs, err := e.Recommend(ctx, seed, n)
	if err != nil {
		return nil, err
	}
	return append([]SongID{seed}, recs...), nil
}

func (e *Engine[T]) heuristicSeed() (SongID, bool) {
	if e.ruleIndex != nil {
		if best, ok := e.ruleIndex.Best(); ok {
			it := best.Left.Iterator()
			for it.HasNext() {
				id := SongID(it.Next())
				if e.graph.Contains(id) {
					return id, true
				}
			}
		}
	}

	if e.history != nil {
		for _, pc := range e.history.TopCounts(0) {
			if pc.Count == 0 {
				break
			}
			if e.graph.Contains(pc.ID) {
				return pc.ID, true
			}
		}
	}

	ids := e.graph.IDs()
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// FeedHistory records a listen in the engine's history.
func (e *Engine[T]) FeedHistory(id SongID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.graph.Contains(id) {
		return translateError(&graph.ErrUnknownNode{ID: id})
	}
	if e.history != nil {
		e.history.Feed(id)
	}
	return nil
}

// Neighbors returns the neighbor table of id in ascending-distance order.
func (e *Engine[T]) Neighbors(id SongID) ([]graph.Neighbor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seq, err := e.graph.Neighbors(id)
	if err != nil {
		return nil, translateError(err)
	}
	var out []graph.Neighbor
	for nb := range seq {
		out = append(out, nb)
	}
	return out, nil
}

// Payload returns the song stored under id.
func (e *Engine[T]) Payload(id SongID) (T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, err := e.graph.Payload(id)
	return p, translateError(err)
}

// Contains reports whether id is a live song.
func (e *Engine[T]) Contains(id SongID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Contains(id)
}

// Len returns the number of live songs.
func (e *Engine[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Len()
}

// Stats returns graph statistics.
func (e *Engine[T]) Stats() graph.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Stats()
}

// invalidate drops cached recommendations. Callers hold the write lock.
func (e *Engine[T]) invalidate() {
	if e.cache != nil {
		e.cache.Purge()
	}
}
