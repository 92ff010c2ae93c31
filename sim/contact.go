package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// threatCone is the half-angle around a shot's heading inside which an
// unguided round counts as inbound.
const threatCone = 5 * Degree

// Contact is one team's sensor track of another object in the same region.
// Tracks are rebuilt every active frame; the handle goes stale when the
// object is destroyed.
type Contact struct {
	obj      Handle
	kind     ObjectType
	team     int
	loc      r3.Vec
	vel      r3.Vec
	acquired float64 // seconds the track has been held
}

func (c *Contact) Handle() Handle    { return c.obj }
func (c *Contact) Type() ObjectType  { return c.kind }
func (c *Contact) Team() int         { return c.team }
func (c *Contact) Location() r3.Vec  { return c.loc }
func (c *Contact) Velocity() r3.Vec  { return c.vel }
func (c *Contact) Acquired() float64 { return c.acquired }
func (c *Contact) IsShot() bool      { return c.kind == TypeShot || c.kind == TypeDrone }
func (c *Contact) IsShip() bool      { return c.kind == TypeShip }

// Resolve returns the tracked object, or nil once it is gone or dying.
func (c *Contact) Resolve(r *Registry) Object {
	obj := r.Lookup(c.obj)
	if obj == nil || obj.Base().IsDead() {
		return nil
	}
	return obj
}

// Threat reports whether the tracked shot is coming for ship: a seeker
// locked onto it, or an unguided round heading at it.
func (c *Contact) Threat(r *Registry, ship *Ship) bool {
	if !c.IsShot() || !IsHostile(c.team, ship.Team()) {
		return false
	}
	shot, ok := c.Resolve(r).(*Shot)
	if !ok {
		return false
	}
	if shot.IsTracking(ship) {
		return true
	}
	if shot.IsBeam() {
		return false
	}
	toShip := r3.Sub(ship.Location(), shot.Location())
	if r3.Norm2(toShip) == 0 {
		return true
	}
	rel := r3.Sub(shot.Velocity(), ship.Velocity())
	if r3.Norm2(rel) == 0 {
		return false
	}
	cos := r3.Cos(rel, toShip)
	return cos > 0 && math.Acos(math.Min(1, cos)) < threatCone+math.Atan2(ship.Radius(), r3.Norm(toShip))
}
