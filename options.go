package refrain

import (
	"log/slog"

	"github.com/tonndorf/refrain/graph"
	"github.com/tonndorf/refrain/recommend"
	"github.com/tonndorf/refrain/rules"
)

type options struct {
	config           graph.Config
	parallelism      int
	logger           *Logger
	metricsCollector MetricsCollector
	ruleIndex        *rules.Index
	ruleLookup       recommend.RuleLookup
	history          *rules.History
	cacheSize        int
}

// Option configures Engine construction.
type Option func(*options)

// WithConfig sets the graph-wide default neighbor-table bounds.
func WithConfig(cfg graph.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithParallelism sets the number of workers used for pairwise distance
// computation during rebuilds. Zero or negative means GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithRuleIndex wires an externally managed association-rule index into the
// recommender and the heuristic seed choice.
func WithRuleIndex(ix *rules.Index) Option {
	return func(o *options) {
		o.ruleIndex = ix
	}
}

// WithRuleLookup wires a custom rule source into the recommender. It takes
// precedence over WithRuleIndex for lookups; the heuristic seed choice
// still requires a concrete index.
func WithRuleLookup(lookup recommend.RuleLookup) Option {
	return func(o *options) {
		o.ruleLookup = lookup
	}
}

// WithHistory wires an externally managed listen history into FeedHistory
// and the heuristic seed choice.
func WithHistory(h *rules.History) Option {
	return func(o *options) {
		o.history = h
	}
}

// WithRecommendationCache sets the size of the LRU cache for recommendation
// results. The cache is invalidated by every mutation. size <= 0 disables
// caching.
func WithRecommendationCache(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		config:           graph.DefaultConfig(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		cacheSize:        128,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
