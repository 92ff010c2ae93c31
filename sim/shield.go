package sim

import "gonum.org/v1/gonum/spatial/r3"

// Shield soaks incoming damage out of its stored energy before the hull
// takes any.
type Shield struct {
	PowerSink
	ship *Ship
}

func newShield(ship *Ship, d *ShieldDesign) *Shield {
	return &Shield{PowerSink: newPowerSink(d.Capacity, d.RechargeRate), ship: ship}
}

func (s *Shield) Category() Category    { return CategoryShield }
func (s *Shield) Name() string          { return "shield" }
func (s *Shield) Ship() *Ship           { return s.ship }
func (s *Shield) MountLocation() r3.Vec { return s.ship.Location() }

func (s *Shield) ExecFrame(seconds float64) {
	if s.ship.Paused() {
		return
	}
	s.Recharge(seconds)
}

func (s *Shield) TimeSkip(seconds float64) { s.Recharge(seconds) }

// Absorb spends stored energy against damage and returns what gets through.
func (s *Shield) Absorb(damage float64) float64 {
	absorbed := min(damage, s.energy)
	s.energy -= absorbed
	return damage - absorbed
}
