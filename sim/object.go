package sim

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// ObjectType tags the concrete kind of a SimObject.
type ObjectType int

const (
	TypeShip ObjectType = iota + 1
	TypeShot
	TypeDrone
	TypeDebris
	TypeAsteroid
	TypeExplosion
)

func (t ObjectType) String() string {
	switch t {
	case TypeShip:
		return "ship"
	case TypeShot:
		return "shot"
	case TypeDrone:
		return "drone"
	case TypeDebris:
		return "debris"
	case TypeAsteroid:
		return "asteroid"
	case TypeExplosion:
		return "explosion"
	default:
		return "unknown"
	}
}

// Object is anything that lives in a SimRegion's lists.
type Object interface {
	Base() *SimObject
}

// SimObject carries the identity, kinematics and lifecycle state shared by
// every simulated object. It is embedded by Ship, Shot, Debris, Asteroid and
// Explosion.
type SimObject struct {
	handle Handle
	self   Object
	id     uint32
	kind   ObjectType
	name   string

	sim *Sim
	// region is a back-reference; the region's lists own the object.
	region *SimRegion

	frame  Frame
	vel    r3.Vec
	accel  r3.Vec
	radius float64
	mass   float64

	// life counts down in seconds; negative means the object does not expire.
	life float64

	active bool
	dead   bool
}

func (o *SimObject) Base() *SimObject { return o }

func (o *SimObject) Handle() Handle           { return o.handle }
func (o *SimObject) ID() uint32               { return o.id }
func (o *SimObject) Type() ObjectType         { return o.kind }
func (o *SimObject) Name() string             { return o.name }
func (o *SimObject) Region() *SimRegion       { return o.region }
func (o *SimObject) Sim() *Sim                { return o.sim }
func (o *SimObject) Location() r3.Vec         { return o.frame.Pos }
func (o *SimObject) Velocity() r3.Vec         { return o.vel }
func (o *SimObject) Acceleration() r3.Vec     { return o.accel }
func (o *SimObject) Frame() Frame             { return o.frame }
func (o *SimObject) Radius() float64          { return o.radius }
func (o *SimObject) Mass() float64            { return o.mass }
func (o *SimObject) Life() float64            { return o.life }
func (o *SimObject) IsActive() bool           { return o.active }
func (o *SimObject) IsDead() bool             { return o.dead }
func (o *SimObject) SetVelocity(v r3.Vec)     { o.vel = v }
func (o *SimObject) SetAcceleration(a r3.Vec) { o.accel = a }
func (o *SimObject) SetFrame(f Frame)         { o.frame = f }

// Paused reports whether the owning Sim is paused. Detached objects never
// advance.
func (o *SimObject) Paused() bool {
	return o.sim == nil || o.sim.Paused()
}

// MoveTo relocates the object without changing its orientation.
func (o *SimObject) MoveTo(p r3.Vec) { o.frame.Pos = p }

// Activate attaches the object to the visual layer. Repeat calls are no-ops.
func (o *SimObject) Activate(scene Scene) {
	if o.active {
		return
	}
	o.active = true
	if scene != nil && o.self != nil {
		scene.AddGraphic(o.self)
	}
}

// Deactivate detaches the object from the visual layer. Repeat calls are
// no-ops.
func (o *SimObject) Deactivate(scene Scene) {
	if !o.active {
		return
	}
	o.active = false
	if scene != nil && o.self != nil {
		scene.DelGraphic(o.self)
	}
}

// integrate advances position by velocity and velocity by acceleration.
// scale stretches the positional step (warp factor).
func (o *SimObject) integrate(seconds, scale float64) {
	o.vel = r3.Add(o.vel, r3.Scale(seconds, o.accel))
	o.frame.Pos = r3.Add(o.frame.Pos, r3.Scale(seconds*scale, o.vel))
}

// expire counts life down and reports whether it ran out.
func (o *SimObject) expire(seconds float64) bool {
	if o.life < 0 {
		return false
	}
	o.life -= seconds
	return o.life <= 0
}

// destroy hands the object to its region's pending-removal list.
func (o *SimObject) destroy() {
	if o.region != nil && o.self != nil {
		o.region.DestroyObject(o.self)
		return
	}
	o.dead = true
}
