package sim

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Category tags the capability a ship system provides.
type Category int

const (
	CategoryWeapon Category = iota + 1
	CategoryQuantumDrive
	CategoryFarcaster
	CategoryShield
)

func (c Category) String() string {
	switch c {
	case CategoryWeapon:
		return "weapon"
	case CategoryQuantumDrive:
		return "quantum-drive"
	case CategoryFarcaster:
		return "farcaster"
	case CategoryShield:
		return "shield"
	default:
		return "unknown"
	}
}

// Status is the damage state of a system.
type Status int

const (
	StatusNominal Status = iota
	StatusDegraded
	StatusCritical
	StatusDestroyed
)

// System is a powered component mounted on a ship. Dispatch is by interface;
// Category lets callers pick out a capability without type switches.
type System interface {
	Category() Category
	Name() string
	Ship() *Ship
	Power() *PowerSink
	MountLocation() r3.Vec
	ExecFrame(seconds float64)
	TimeSkip(seconds float64)
}

// PowerSink is the energy contract shared by every system: a capacity
// filled at a recharge rate while powered, plus damage bookkeeping.
type PowerSink struct {
	capacity     float64
	energy       float64
	rechargeRate float64
	powerOff     bool
	availability float64
}

func newPowerSink(capacity, rechargeRate float64) PowerSink {
	return PowerSink{capacity: capacity, energy: capacity, rechargeRate: rechargeRate, availability: 1}
}

func (p *PowerSink) Power() *PowerSink         { return p }
func (p *PowerSink) Capacity() float64         { return p.capacity }
func (p *PowerSink) Energy() float64           { return p.energy }
func (p *PowerSink) Availability() float64     { return p.availability }
func (p *PowerSink) IsPowerOn() bool           { return !p.powerOff }
func (p *PowerSink) PowerOn()                  { p.powerOff = false }
func (p *PowerSink) SetRechargeRate(r float64) { p.rechargeRate = r }

// SetEnergy stores e clamped to [0, capacity].
func (p *PowerSink) SetEnergy(e float64) {
	p.energy, _ = clamp(e, 0, p.capacity)
}

// PowerOff stops recharging.
func (p *PowerSink) PowerOff() { p.powerOff = true }

// IsCharged reports whether the sink is full.
func (p *PowerSink) IsCharged() bool { return p.energy >= p.capacity }

// Recharge fills the sink for the given interval. Damaged systems charge at
// a rate scaled by their availability.
func (p *PowerSink) Recharge(seconds float64) {
	if p.powerOff || p.availability <= 0 {
		return
	}
	p.SetEnergy(p.energy + p.rechargeRate*p.availability*seconds)
}

// Status derives the damage state from availability.
func (p *PowerSink) Status() Status {
	switch {
	case p.availability <= 0:
		return StatusDestroyed
	case p.availability < 0.5:
		return StatusCritical
	case p.availability < 1:
		return StatusDegraded
	default:
		return StatusNominal
	}
}

// ApplyDamage lowers availability by fraction (0..1).
func (p *PowerSink) ApplyDamage(fraction float64) {
	p.availability, _ = clamp(p.availability-fraction, 0, 1)
}

// Repair restores full availability.
func (p *PowerSink) Repair() { p.availability = 1 }
