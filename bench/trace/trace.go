package trace

import "time"

// RunTrace collects evaluation and profile records during a benchmark run.
type RunTrace struct {
	StartedAt   time.Time // wall clock at enable
	Evaluations []EvaluationRecord
	Profiles    []ProfileRecord
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace() *RunTrace {
	return &RunTrace{
		Evaluations: make([]EvaluationRecord, 0),
		Profiles:    make([]ProfileRecord, 0),
	}
}

// Reset drops all records and stamps a new start time.
func (rt *RunTrace) Reset(startedAt time.Time) {
	rt.StartedAt = startedAt
	rt.Evaluations = rt.Evaluations[:0]
	rt.Profiles = rt.Profiles[:0]
}

// RecordEvaluation appends an evaluation record.
func (rt *RunTrace) RecordEvaluation(record EvaluationRecord) {
	rt.Evaluations = append(rt.Evaluations, record)
}

// RecordProfile appends a finalised profile record.
func (rt *RunTrace) RecordProfile(record ProfileRecord) {
	rt.Profiles = append(rt.Profiles, record)
}

// EvaluationsFor returns the evaluations recorded under the named profile, in
// order.
func (rt *RunTrace) EvaluationsFor(profile string) []EvaluationRecord {
	var out []EvaluationRecord
	for _, ev := range rt.Evaluations {
		if ev.Profile == profile {
			out = append(out, ev)
		}
	}
	return out
}

// ProfileNames returns the distinct profile names seen in evaluation order.
func (rt *RunTrace) ProfileNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, ev := range rt.Evaluations {
		if !seen[ev.Profile] {
			seen[ev.Profile] = true
			names = append(names, ev.Profile)
		}
	}
	return names
}
