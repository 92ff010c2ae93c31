package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	// GIVEN no trace
	// WHEN summarized
	summary := Summarize(nil)

	// THEN all counts are zero and the maps are usable
	if summary.TotalShots != 0 || summary.TotalJumps != 0 || summary.TotalDestroyed != 0 {
		t.Error("expected zero totals")
	}
	if summary.ShotsByShip == nil || summary.KillsByShip == nil || summary.JumpsByTransition == nil {
		t.Error("expected non-nil maps")
	}
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalShots != 0 {
		t.Errorf("expected 0 shots, got %d", summary.TotalShots)
	}
	if summary.GuidedShots != 0 {
		t.Errorf("expected 0 guided shots, got %d", summary.GuidedShots)
	}
	if len(summary.ShotsByShip) != 0 || len(summary.KillsByShip) != 0 {
		t.Error("expected empty distributions")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with fires, jumps and destructions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	st.RecordFire(FireRecord{Ship: "a", Weapon: "laser"})
	st.RecordFire(FireRecord{Ship: "a", Weapon: "missile", Guided: true})
	st.RecordFire(FireRecord{Ship: "b", Weapon: "laser"})
	st.RecordJump(JumpRecord{Ship: "a", Transition: "quantum", Escorts: 2})
	st.RecordJump(JumpRecord{Ship: "c", Transition: "farcaster"})
	st.RecordDestruction(DestructionRecord{Name: "b", Kind: "ship", Killer: "a"})
	st.RecordDestruction(DestructionRecord{Name: "d", Kind: "ship"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalShots != 3 {
		t.Errorf("expected 3 shots, got %d", summary.TotalShots)
	}
	if summary.GuidedShots != 1 {
		t.Errorf("expected 1 guided shot, got %d", summary.GuidedShots)
	}
	if summary.ShotsByShip["a"] != 2 || summary.ShotsByShip["b"] != 1 {
		t.Errorf("unexpected shot distribution %v", summary.ShotsByShip)
	}
	// escorts travel with their leader and count as jumps
	if summary.TotalJumps != 4 {
		t.Errorf("expected 4 ships jumped, got %d", summary.TotalJumps)
	}
	if summary.JumpsByTransition["quantum"] != 1 || summary.JumpsByTransition["farcaster"] != 1 {
		t.Errorf("unexpected transition distribution %v", summary.JumpsByTransition)
	}
	if summary.TotalDestroyed != 2 {
		t.Errorf("expected 2 destroyed, got %d", summary.TotalDestroyed)
	}
}

func TestSummarize_Kills_UncreditedIgnored(t *testing.T) {
	// GIVEN destructions with and without a killer
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	st.RecordDestruction(DestructionRecord{Name: "x", Killer: "a"})
	st.RecordDestruction(DestructionRecord{Name: "y", Killer: "a"})
	st.RecordDestruction(DestructionRecord{Name: "z"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN only credited kills are distributed
	if summary.KillsByShip["a"] != 2 {
		t.Errorf("expected a count 2, got %d", summary.KillsByShip["a"])
	}
	if len(summary.KillsByShip) != 1 {
		t.Errorf("expected 1 credited ship, got %d", len(summary.KillsByShip))
	}
}
