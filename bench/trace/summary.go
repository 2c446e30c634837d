package trace

// ProfileSummary aggregates the evaluations of one profile.
type ProfileSummary struct {
	Evaluations int
	Backoffs    int
	PeakFPS     float64
	MinFPS      float64
	MaxEntities int
}

// RunSummary aggregates statistics from a RunTrace.
type RunSummary struct {
	TotalEvaluations int
	Decisions        map[Decision]int
	PerProfile       map[string]ProfileSummary
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *RunSummary {
	summary := &RunSummary{
		Decisions:  make(map[Decision]int),
		PerProfile: make(map[string]ProfileSummary),
	}
	if rt == nil {
		return summary
	}

	summary.TotalEvaluations = len(rt.Evaluations)
	for _, ev := range rt.Evaluations {
		summary.Decisions[ev.Decision]++

		ps, ok := summary.PerProfile[ev.Profile]
		if !ok {
			ps.MinFPS = ev.FPS
		}
		ps.Evaluations++
		if ev.Decision == DecisionBackoff {
			ps.Backoffs++
		}
		if ev.FPS > ps.PeakFPS {
			ps.PeakFPS = ev.FPS
		}
		if ev.FPS < ps.MinFPS {
			ps.MinFPS = ev.FPS
		}
		if ev.Entities > ps.MaxEntities {
			ps.MaxEntities = ev.Entities
		}
		summary.PerProfile[ev.Profile] = ps
	}
	return summary
}
