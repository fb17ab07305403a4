// Package graph implements an incremental bounded-degree similarity graph.
//
// Every node owns a Table: a capacity-limited adjacency list ordered by
// distance, backed by a B-tree eviction index. Edges are conceptually
// undirected but stored as two directed records that may transiently
// disagree after an eviction; Finalize is the sole authority that restores
// bidirectional consistency.
//
// The graph is single-writer: Rebuild, Finalize and Disconnect must not
// overlap with each other or with reads. Read-only accessors may run
// concurrently once a Finalize has completed. Callers enforce this contract,
// typically with a coarse RWMutex (see the root package).
package graph
