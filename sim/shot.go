package sim

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultShotRadius = 1.0
	defaultBeamRange  = 10e3
)

// Shot is a projectile, beam or drone released by a Weapon. The design is
// shared with the weapon; the owner and target are weak references.
type Shot struct {
	SimObject

	design    *WeaponDesign
	owner     Handle
	ownerTeam int

	// beam anchoring: the weapon and barrel the beam is emitted from
	weapon  *Weapon
	barrel  int
	beamEnd r3.Vec

	seeker *Seeker

	prev      r3.Vec
	fuse      float64
	damage    float64
	hitPoints float64
	armed     bool
}

func newShot(s *Sim, frame Frame, vel r3.Vec, design *WeaponDesign, owner *Ship) *Shot {
	shot := &Shot{
		design:    design,
		damage:    design.Damage,
		hitPoints: design.HitPoints,
		armed:     true,
	}
	shot.sim = s
	shot.kind = design.ShotType()
	shot.name = design.Name
	shot.frame = frame
	shot.vel = vel
	shot.prev = frame.Pos
	shot.life = design.Life
	shot.radius = design.Radius
	if shot.radius <= 0 {
		shot.radius = defaultShotRadius
	}
	shot.mass = 1
	if owner != nil {
		shot.owner = owner.Handle()
		shot.ownerTeam = owner.Team()
	}
	if design.Guided || design.Drone {
		shot.seeker = &Seeker{shot: shot, pursuit: design.Drone}
	}
	return shot
}

func (s *Shot) Design() *WeaponDesign     { return s.design }
func (s *Shot) Team() int                 { return s.ownerTeam }
func (s *Shot) Damage() float64           { return s.damage }
func (s *Shot) IsBeam() bool              { return s.design.Beam }
func (s *Shot) IsGuided() bool            { return s.seeker != nil }
func (s *Shot) IsDrone() bool             { return s.design.Drone }
func (s *Shot) IsArmed() bool             { return s.armed }
func (s *Shot) Fuse() float64             { return s.fuse }
func (s *Shot) SetFuse(seconds float64)   { s.fuse = seconds }
func (s *Shot) HitPoints() float64        { return s.hitPoints }
func (s *Shot) PreviousLocation() r3.Vec  { return s.prev }
func (s *Shot) BeamEnd() r3.Vec           { return s.beamEnd }
func (s *Shot) Seeker() *Seeker           { return s.seeker }
func (s *Shot) IsHostileTo(team int) bool { return IsHostile(s.ownerTeam, team) }

// Disarm makes the shot harmless: it keeps flying but neither damages nor
// detonates.
func (s *Shot) Disarm() { s.armed = false }

// Owner resolves the firing ship.
func (s *Shot) Owner() *Ship {
	if s.sim == nil {
		return nil
	}
	ship, _ := s.sim.registry.Lookup(s.owner).(*Ship)
	return ship
}

// SeekTarget hands a target to the shot's seeker. Unguided shots ignore it.
func (s *Shot) SeekTarget(obj Object, subtarget System) {
	if s.seeker != nil {
		s.seeker.SetTarget(obj, subtarget)
	}
}

// Target resolves the seeker's target.
func (s *Shot) Target() Object {
	if s.seeker == nil {
		return nil
	}
	return s.seeker.Target()
}

// IsTracking reports whether the shot's seeker is locked on obj.
func (s *Shot) IsTracking(obj Object) bool {
	return s.seeker != nil && !s.seeker.target.IsZero() && s.seeker.target == obj.Base().Handle()
}

// ExecFrame advances guidance and motion, and counts down fuse and life.
func (s *Shot) ExecFrame(seconds float64) {
	if s.Paused() || s.dead {
		return
	}
	if s.design.Beam {
		s.execBeam(seconds)
		return
	}
	if s.seeker != nil {
		s.seeker.ExecFrame(seconds)
	}
	s.prev = s.Location()
	s.integrate(seconds, 1)

	if s.fuse > 0 {
		s.fuse -= seconds
		if s.fuse <= 0 {
			s.Detonate()
			return
		}
	}
	if s.expire(seconds) {
		if s.design.Flak || s.design.Splash > 0 {
			s.Detonate()
		} else {
			s.destroy()
		}
	}
}

func (s *Shot) execBeam(seconds float64) {
	owner := s.Owner()
	if owner == nil || owner.IsDead() || s.weapon == nil {
		s.destroy()
		return
	}
	aim := s.weapon.AimFrame()
	origin := s.weapon.MuzzleLocation(s.barrel)
	s.prev = origin
	s.frame = aim
	s.frame.Pos = origin
	s.vel = owner.Velocity()
	rng := s.design.MaxRange
	if rng <= 0 {
		rng = defaultBeamRange
	}
	s.beamEnd = r3.Add(origin, r3.Scale(rng, aim.Forward))
	if s.expire(seconds) {
		s.destroy()
	}
}

// TimeSkip advances the shot in closed form. It expires in bulk without
// detonating.
func (s *Shot) TimeSkip(seconds float64) {
	if s.Paused() || s.dead {
		return
	}
	if s.design.Beam || s.expire(seconds) {
		s.destroy()
		return
	}
	s.prev = s.Location()
	s.integrate(seconds, 1)
	if s.fuse > 0 {
		s.fuse -= seconds
		if s.fuse <= 0 {
			s.destroy()
		}
	}
}

// Detonate bursts the shot in place, queueing splash damage when the design
// has a blast radius.
func (s *Shot) Detonate() {
	if s.dead {
		return
	}
	if s.armed && s.sim != nil && s.region != nil {
		if s.design.Splash > 0 {
			s.sim.CreateSplash(s.region, s.Location(), s.damage, s.design.Splash, s.Owner())
		}
		s.sim.CreateExplosion(s.Location(), s.Velocity(), ExplosionShotBurst, 1, s.region)
	}
	s.destroy()
}

// absorbHit applies damage to a drone and reports whether it was destroyed.
func (s *Shot) absorbHit(damage float64) bool {
	if !s.design.Drone {
		return false
	}
	s.hitPoints -= damage
	return s.hitPoints <= 0
}

// Seeker is the guidance head of a guided shot or drone. Missiles fly lead
// pursuit; drones fly pure pursuit.
type Seeker struct {
	shot      *Shot
	target    Handle
	subtarget System
	pursuit   bool
}

// SetTarget locks the seeker onto obj. nil releases the lock.
func (k *Seeker) SetTarget(obj Object, subtarget System) {
	reg := k.shot.sim.registry
	if !k.target.IsZero() {
		reg.Ignore(k, k.target)
	}
	k.target = Handle{}
	k.subtarget = nil
	if obj == nil {
		return
	}
	k.target = obj.Base().Handle()
	k.subtarget = subtarget
	reg.Observe(k, k.target)
}

// Target resolves the seeker's target.
func (k *Seeker) Target() Object {
	return k.shot.sim.registry.Lookup(k.target)
}

func (k *Seeker) Subtarget() System { return k.subtarget }

func (k *Seeker) Update(obj Object) bool {
	if obj.Base().Handle() == k.target {
		k.target = Handle{}
		k.subtarget = nil
	}
	return true
}

func (k *Seeker) ObserverName() string { return "Seeker(" + k.shot.Name() + ")" }

// ExecFrame steers the shot toward its target at the design agility.
func (k *Seeker) ExecFrame(seconds float64) {
	tgt := k.Target()
	if tgt == nil {
		return
	}
	shot := k.shot
	tb := tgt.Base()
	if tb.IsDead() || tb.Region() != shot.Region() {
		k.SetTarget(nil, nil)
		return
	}
	tloc := tb.Location()
	if k.subtarget != nil {
		tloc = k.subtarget.MountLocation()
	}
	rng := distance(tloc, shot.Location())
	if d := shot.design.MaxTrack; d > 0 && rng > d {
		k.SetTarget(nil, nil)
		return
	}

	aim := r3.Sub(tloc, shot.Location())
	if !k.pursuit {
		closing := r3.Norm(r3.Sub(shot.Velocity(), tb.Velocity()))
		if closing > 0 {
			t := rng / closing
			aim = r3.Add(aim, r3.Scale(t, tb.Velocity()))
		}
	}
	shot.vel = turnToward(shot.vel, aim, shot.design.Agility*seconds)
	if r3.Norm2(shot.vel) > 0 {
		shot.frame = shot.frame.LookAt(r3.Add(shot.Location(), shot.vel))
	}
}
