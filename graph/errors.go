package graph

import "fmt"

// ErrUnknownNode indicates an operation referenced a node id that is not
// live in the graph. No partial mutation happens for the failed operation.
type ErrUnknownNode struct {
	ID NodeID
}

func (e *ErrUnknownNode) Error() string {
	return fmt.Sprintf("unknown node: %d", e.ID)
}

// ErrInvalidDistance indicates the distance source produced a value outside
// [0, 1] (or NaN) for a pair of nodes. The offending candidate is rejected
// instead of corrupting table state.
type ErrInvalidDistance struct {
	Value float64
	A, B  NodeID
}

func (e *ErrInvalidDistance) Error() string {
	return fmt.Sprintf("invalid distance %v for pair (%d, %d): must be in [0, 1]", e.Value, e.A, e.B)
}

func validDistance(d float64) bool {
	return d >= 0 && d <= 1
}
