// Package trace provides event recording for post-mission analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// FireRecord captures one shot leaving a weapon.
type FireRecord struct {
	Frame  int64
	Ship   string
	Weapon string
	Target string // empty when fired without a target
	Region string
	Guided bool
}

// JumpRecord captures one resolved region transfer.
type JumpRecord struct {
	Frame      int64
	Ship       string
	From       string
	To         string
	Transition string
	Escorts    int // dropships carried along
}

// DestructionRecord captures one object removed from the simulation.
type DestructionRecord struct {
	Frame  int64
	Name   string
	Kind   string
	Region string
	Killer string // empty when no ship is credited
}
