package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every weapon release, hyperjump and destruction.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects event records during a mission.
type SimulationTrace struct {
	Config       TraceConfig
	Fires        []FireRecord
	Jumps        []JumpRecord
	Destructions []DestructionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:       config,
		Fires:        make([]FireRecord, 0),
		Jumps:        make([]JumpRecord, 0),
		Destructions: make([]DestructionRecord, 0),
	}
}

// Enabled reports whether records should be collected.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelEvents
}

// RecordFire appends a weapon release record.
func (st *SimulationTrace) RecordFire(record FireRecord) {
	st.Fires = append(st.Fires, record)
}

// RecordJump appends a resolved hyperjump record.
func (st *SimulationTrace) RecordJump(record JumpRecord) {
	st.Jumps = append(st.Jumps, record)
}

// RecordDestruction appends an object destruction record.
func (st *SimulationTrace) RecordDestruction(record DestructionRecord) {
	st.Destructions = append(st.Destructions, record)
}
