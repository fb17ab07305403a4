package graph

// InsertOutcome reports what a candidate insertion did to a neighbor table.
//
// Rejections are expected results of the eviction policy, not errors.
type InsertOutcome int

const (
	// OutcomeAccepted means the candidate was stored (or updated in place).
	OutcomeAccepted InsertOutcome = iota

	// OutcomeRejectedSelf means the candidate referenced the owning node.
	OutcomeRejectedSelf

	// OutcomeRejectedBetterExists means the neighbor is already present with
	// a strictly smaller distance.
	OutcomeRejectedBetterExists

	// OutcomeRejectedThreshold means the distance exceeded the table's
	// max-distance acceptance threshold.
	OutcomeRejectedThreshold

	// OutcomeRejectedFull means the table is at capacity and the candidate
	// did not beat the current worst neighbor.
	OutcomeRejectedFull
)

// Accepted reports whether the candidate mutated the table.
func (o InsertOutcome) Accepted() bool { return o == OutcomeAccepted }

// String returns a human-readable outcome name.
func (o InsertOutcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "Accepted"
	case OutcomeRejectedSelf:
		return "RejectedSelf"
	case OutcomeRejectedBetterExists:
		return "RejectedBetterExists"
	case OutcomeRejectedThreshold:
		return "RejectedThreshold"
	case OutcomeRejectedFull:
		return "RejectedFull"
	default:
		return "Unknown"
	}
}
