package refrain

import (
	"errors"
	"fmt"

	"github.com/tonndorf/refrain/graph"
	"github.com/tonndorf/refrain/recommend"
)

var (
	// ErrNotFound is returned when an operation references a song that is
	// not in the graph.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCount is returned when a negative result count is requested.
	ErrInvalidCount = errors.New("count must not be negative")

	// ErrEmptyGraph is returned when a heuristic query runs against a graph
	// with no songs.
	ErrEmptyGraph = errors.New("graph is empty")
)

// ErrInvalidDistance indicates the distance source produced a value outside
// [0, 1]. Offending candidates are rejected, valid ones still commit.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDistance struct {
	Value float64
	cause error
}

func (e *ErrInvalidDistance) Error() string {
	return fmt.Sprintf("invalid distance: %v", e.Value)
}

func (e *ErrInvalidDistance) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var un *graph.ErrUnknownNode
	if errors.As(err, &un) {
		return fmt.Errorf("%w: song %d: %w", ErrNotFound, un.ID, err)
	}

	var id *graph.ErrInvalidDistance
	if errors.As(err, &id) {
		return &ErrInvalidDistance{Value: id.Value, cause: err}
	}

	if errors.Is(err, recommend.ErrInvalidCount) {
		return fmt.Errorf("%w: %w", ErrInvalidCount, err)
	}

	return err
}
