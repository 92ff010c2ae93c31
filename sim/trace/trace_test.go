package trace

import (
	"testing"
)

func TestSimulationTrace_RecordFire_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for events
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN a fire record is recorded
	st.RecordFire(FireRecord{
		Frame:  12,
		Ship:   "Falcon",
		Weapon: "laser",
		Target: "Raider",
		Region: "Janus",
	})

	// THEN the trace contains one fire record with correct data
	if len(st.Fires) != 1 {
		t.Fatalf("expected 1 fire, got %d", len(st.Fires))
	}
	if st.Fires[0].Ship != "Falcon" {
		t.Errorf("expected ship Falcon, got %s", st.Fires[0].Ship)
	}
	if st.Fires[0].Guided {
		t.Error("expected guided=false")
	}
}

func TestSimulationTrace_RecordJump_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for events
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN a jump record is recorded
	st.RecordJump(JumpRecord{
		Frame:      40,
		Ship:       "Falcon",
		From:       "Janus",
		To:         "Kala",
		Transition: "quantum",
		Escorts:    2,
	})

	// THEN the trace contains one jump record with correct data
	if len(st.Jumps) != 1 {
		t.Fatalf("expected 1 jump, got %d", len(st.Jumps))
	}
	if st.Jumps[0].To != "Kala" {
		t.Errorf("expected destination Kala, got %s", st.Jumps[0].To)
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN multiple records are added
	st.RecordFire(FireRecord{Frame: 1, Ship: "a"})
	st.RecordFire(FireRecord{Frame: 2, Ship: "b"})
	st.RecordDestruction(DestructionRecord{Frame: 3, Name: "b", Kind: "ship", Killer: "a"})

	// THEN order is preserved
	if len(st.Fires) != 2 {
		t.Fatalf("expected 2 fires, got %d", len(st.Fires))
	}
	if st.Fires[0].Ship != "a" || st.Fires[1].Ship != "b" {
		t.Error("fire order not preserved")
	}
	if len(st.Destructions) != 1 || st.Destructions[0].Killer != "a" {
		t.Error("destruction record mismatch")
	}
}

func TestSimulationTrace_Enabled(t *testing.T) {
	var nilTrace *SimulationTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must not be enabled")
	}
	if NewSimulationTrace(TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("level none must not be enabled")
	}
	if !NewSimulationTrace(TraceConfig{Level: TraceLevelEvents}).Enabled() {
		t.Error("level events must be enabled")
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"events", true},
		{"", true}, // empty defaults to none
		{"decisions", false},
		{"foobar", false},
		{"NONE", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
