package sim

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Director is a ship's pilot. It runs before the ship's systems each frame.
type Director interface {
	ExecFrame(ship *Ship, seconds float64)
}

// ApproachDirector closes on a target to a standoff range and hands the
// target to the ship's weapons. It observes the target so a destroyed
// target is dropped immediately.
type ApproachDirector struct {
	registry *Registry
	target   Handle
	standoff float64
	assigned bool
}

// NewApproachDirector returns a director that pursues target.
func NewApproachDirector(registry *Registry, target Object, standoff float64) *ApproachDirector {
	d := &ApproachDirector{registry: registry, standoff: standoff}
	d.SetTarget(target)
	return d
}

// SetTarget changes the pursued object. nil stops the pursuit.
func (d *ApproachDirector) SetTarget(target Object) {
	if !d.target.IsZero() {
		d.registry.Ignore(d, d.target)
	}
	d.target = Handle{}
	d.assigned = false
	if target != nil {
		d.target = target.Base().Handle()
		d.registry.Observe(d, d.target)
	}
}

// Target resolves the pursued object.
func (d *ApproachDirector) Target() Object { return d.registry.Lookup(d.target) }

func (d *ApproachDirector) Update(obj Object) bool {
	if obj.Base().Handle() == d.target {
		d.target = Handle{}
		d.assigned = false
	}
	return true
}

func (d *ApproachDirector) ObserverName() string { return "ApproachDirector" }

func (d *ApproachDirector) ExecFrame(ship *Ship, seconds float64) {
	tgt := d.Target()
	if tgt == nil || tgt.Base().Region() != ship.Region() {
		ship.SetAcceleration(r3.Vec{})
		return
	}
	if !d.assigned {
		ship.SetTarget(tgt, nil)
		d.assigned = true
	}
	loc := tgt.Base().Location()
	ship.turnToward(loc, seconds)

	rng := distance(loc, ship.Location())
	closing := r3.Dot(r3.Sub(ship.Velocity(), tgt.Base().Velocity()), unit(r3.Sub(loc, ship.Location())))
	accel := ship.Design().MaxAccel
	switch {
	case rng > d.standoff && closing*closing < 2*accel*(rng-d.standoff):
		ship.SetAcceleration(r3.Scale(accel, ship.Frame().Forward))
	case closing > 0:
		ship.SetAcceleration(r3.Scale(-accel, unit(ship.Velocity())))
	default:
		ship.SetAcceleration(r3.Vec{})
	}
}
