package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions     int
	ImmediateStarts    int // customers that found their server idle
	DelayedStarts      int // customers that waited for their server
	MeanDelay          float64
	MaxDelay           float64
	UniqueServers      int
	ServerDistribution map[int]int // server index → customers assigned
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ServerDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Assignments)
	if len(st.Assignments) > 0 {
		totalDelay := 0.0
		for _, a := range st.Assignments {
			summary.ServerDistribution[a.ChosenServer]++
			if a.Delay > 0 {
				summary.DelayedStarts++
			} else {
				summary.ImmediateStarts++
			}
			totalDelay += a.Delay
			if a.Delay > summary.MaxDelay {
				summary.MaxDelay = a.Delay
			}
		}
		summary.MeanDelay = totalDelay / float64(len(st.Assignments))
	}

	summary.UniqueServers = len(summary.ServerDistribution)

	return summary
}
