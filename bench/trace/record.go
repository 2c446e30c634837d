// Package trace provides per-evaluation decision recording for a benchmark run.
// This package has no dependencies on bench/; it stores pure data types.
package trace

import "time"

// Decision is the controller outcome of one fps evaluation.
type Decision string

const (
	// DecisionGrow means the target rate was met and the population grew.
	DecisionGrow Decision = "grow"
	// DecisionHold means the rate was inconclusive; the population grew without
	// moving the last known-good count.
	DecisionHold Decision = "hold"
	// DecisionBackoff means overload triggered a refinement round.
	DecisionBackoff Decision = "backoff"
	// DecisionFinalize means overload converged the profile.
	DecisionFinalize Decision = "finalize"
)

// EvaluationRecord captures one filtered fps evaluation and what the
// controller did with it.
type EvaluationRecord struct {
	Seq           int
	Profile       string
	Elapsed       time.Duration // benchmark time since enable (sum of frame deltas)
	Entities      int
	FPS           float64
	StepSize      int // step in force when the evaluation arrived
	LastKnownGood int // after the decision was applied
	Decision      Decision
}

// ProfileRecord captures one finalised profile.
type ProfileRecord struct {
	Profile       string
	Started       time.Duration
	Finished      time.Duration
	LastKnownGood int
	LastTested    int
	Evaluations   int
}
