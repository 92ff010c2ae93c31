package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ExplosionType selects the lifetime and size of a burst effect.
type ExplosionType int

const (
	ExplosionShotBurst ExplosionType = iota
	ExplosionShipDeath
	ExplosionQuantumFlash
)

var explosionLife = map[ExplosionType]float64{
	ExplosionShotBurst:    0.5,
	ExplosionShipDeath:    4,
	ExplosionQuantumFlash: 1.5,
}

func (t ExplosionType) String() string {
	switch t {
	case ExplosionShotBurst:
		return "shot_burst"
	case ExplosionShipDeath:
		return "ship_death"
	case ExplosionQuantumFlash:
		return "quantum_flash"
	}
	return fmt.Sprintf("explosion(%d)", int(t))
}

// Explosion is a timed, non-colliding burst.
type Explosion struct {
	SimObject
	etype ExplosionType
	scale float64
}

func newExplosion(s *Sim, etype ExplosionType, loc, vel r3.Vec, scale float64) *Explosion {
	e := &Explosion{etype: etype, scale: scale}
	e.sim = s
	e.kind = TypeExplosion
	e.name = etype.String()
	e.frame = NewFrame(loc)
	e.vel = vel
	e.life = explosionLife[etype]
	e.radius = scale
	return e
}

func (e *Explosion) ExplosionType() ExplosionType { return e.etype }
func (e *Explosion) Scale() float64               { return e.scale }

func (e *Explosion) ExecFrame(seconds float64) {
	if e.Paused() || e.dead {
		return
	}
	e.integrate(seconds, 1)
	if e.expire(seconds) {
		e.destroy()
	}
}

func (e *Explosion) TimeSkip(seconds float64) {
	if e.expire(seconds) {
		e.destroy()
	}
}

// Debris is wreckage left by a destroyed ship. It drifts until its life
// runs out.
type Debris struct {
	SimObject
}

func newDebris(s *Sim, loc, vel r3.Vec, life, radius float64) *Debris {
	d := &Debris{}
	d.sim = s
	d.kind = TypeDebris
	d.name = "debris"
	d.frame = NewFrame(loc)
	d.vel = vel
	d.life = life
	d.radius = radius
	d.mass = radius
	return d
}

func (d *Debris) ExecFrame(seconds float64) {
	if d.Paused() || d.dead {
		return
	}
	d.integrate(seconds, 1)
	if d.expire(seconds) {
		d.destroy()
	}
}

func (d *Debris) TimeSkip(seconds float64) {
	if d.expire(seconds) {
		d.destroy()
		return
	}
	d.integrate(seconds, 1)
}

// Asteroid is a massive, immortal collider.
type Asteroid struct {
	SimObject
}

func newAsteroid(s *Sim, name string, loc r3.Vec, radius, mass float64) *Asteroid {
	a := &Asteroid{}
	a.sim = s
	a.kind = TypeAsteroid
	a.name = name
	a.frame = NewFrame(loc)
	a.radius = radius
	a.mass = mass
	a.life = -1
	return a
}
