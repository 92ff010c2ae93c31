package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalShots        int
	GuidedShots       int
	ShotsByShip       map[string]int
	TotalJumps        int
	JumpsByTransition map[string]int
	TotalDestroyed    int
	KillsByShip       map[string]int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ShotsByShip:       make(map[string]int),
		JumpsByTransition: make(map[string]int),
		KillsByShip:       make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalShots = len(st.Fires)
	for _, f := range st.Fires {
		summary.ShotsByShip[f.Ship]++
		if f.Guided {
			summary.GuidedShots++
		}
	}

	for _, j := range st.Jumps {
		summary.TotalJumps += 1 + j.Escorts
		summary.JumpsByTransition[j.Transition]++
	}

	summary.TotalDestroyed = len(st.Destructions)
	for _, d := range st.Destructions {
		if d.Killer != "" {
			summary.KillsByShip[d.Killer]++
		}
	}

	return summary
}
