package sim

import (
	"math"
	"slices"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultSensorRange = 25e3
	debrisLifeMin      = 5.0
	debrisLifeMax      = 15.0
	debrisSpeed        = 50.0
)

// Orbit places a region in the universe. Primary is the body the region
// orbits; region-local coordinates are relative to Location.
type Orbit struct {
	Location   r3.Vec
	Primary    r3.Vec
	HasPrimary bool
}

// SimRegion owns the objects in one spatial partition and advances them. An
// active region is simulated object by object; an inactive one is advanced
// in closed form by ResolveTimeSkip.
//
// Objects destroyed during a frame are marked dead and queued; they stay in
// the lists until the Sim purges them after every region has run.
type SimRegion struct {
	sim    *Sim
	name   string
	orbit  Orbit
	active bool

	ships      []*Ship
	shots      []*Shot
	drones     []*Shot
	debris     []*Debris
	asteroids  []*Asteroid
	explosions []*Explosion

	tracks [NumTeams][]*Contact

	dead []Object
}

func newSimRegion(s *Sim, name string, orbit Orbit) *SimRegion {
	return &SimRegion{sim: s, name: name, orbit: orbit}
}

func (r *SimRegion) Name() string              { return r.name }
func (r *SimRegion) Sim() *Sim                 { return r.sim }
func (r *SimRegion) Orbit() Orbit              { return r.orbit }
func (r *SimRegion) Location() r3.Vec          { return r.orbit.Location }
func (r *SimRegion) IsActive() bool            { return r.active }
func (r *SimRegion) Ships() []*Ship            { return r.ships }
func (r *SimRegion) Shots() []*Shot            { return r.shots }
func (r *SimRegion) Drones() []*Shot           { return r.drones }
func (r *SimRegion) Debris() []*Debris         { return r.debris }
func (r *SimRegion) Asteroids() []*Asteroid    { return r.asteroids }
func (r *SimRegion) Explosions() []*Explosion  { return r.explosions }
func (r *SimRegion) PendingRemovals() []Object { return r.dead }

// TrackList is the contact list of team in this region.
func (r *SimRegion) TrackList(team int) []*Contact {
	if team < 0 || team >= NumTeams {
		return nil
	}
	return r.tracks[team]
}

// FindShip returns the live ship with the given name, or nil.
func (r *SimRegion) FindShip(name string) *Ship {
	for _, s := range r.ships {
		if s.Name() == name && !s.IsDead() {
			return s
		}
	}
	return nil
}

// InsertObject adds obj to this region's lists, removing it from its
// previous region first so it is never held by two regions.
func (r *SimRegion) InsertObject(obj Object) {
	b := obj.Base()
	if b.region == r {
		return
	}
	if b.region != nil {
		b.region.RemoveObject(obj)
	}
	switch o := obj.(type) {
	case *Ship:
		r.ships = append(r.ships, o)
	case *Shot:
		if o.IsDrone() {
			r.drones = append(r.drones, o)
		} else {
			r.shots = append(r.shots, o)
		}
	case *Debris:
		r.debris = append(r.debris, o)
	case *Asteroid:
		r.asteroids = append(r.asteroids, o)
	case *Explosion:
		r.explosions = append(r.explosions, o)
	default:
		logrus.Warnf("region %s: cannot insert %s", r.name, describe(obj))
		return
	}
	b.region = r
	if r.active {
		b.Activate(r.sim.scene)
	}
}

// RemoveObject takes obj out of this region's lists and detaches it from
// the scene.
func (r *SimRegion) RemoveObject(obj Object) {
	b := obj.Base()
	if b.region != r {
		return
	}
	switch o := obj.(type) {
	case *Ship:
		r.ships = remove(r.ships, o)
	case *Shot:
		r.shots = remove(r.shots, o)
		r.drones = remove(r.drones, o)
	case *Debris:
		r.debris = remove(r.debris, o)
	case *Asteroid:
		r.asteroids = remove(r.asteroids, o)
	case *Explosion:
		r.explosions = remove(r.explosions, o)
	}
	b.region = nil
	b.Deactivate(r.sim.scene)
}

func remove[T comparable](list []T, v T) []T {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}

// DestroyObject marks obj dead and queues it for removal. Repeat calls are
// no-ops.
func (r *SimRegion) DestroyObject(obj Object) {
	b := obj.Base()
	if b.dead {
		return
	}
	b.dead = true
	r.dead = append(r.dead, obj)
}

// Activate attaches every object to scene and switches the region to full
// simulation.
func (r *SimRegion) Activate(scene Scene) {
	r.active = true
	r.eachObject(func(obj Object) { obj.Base().Activate(scene) })
}

// Deactivate detaches every object from scene. The region is advanced by
// ResolveTimeSkip from then on.
func (r *SimRegion) Deactivate(scene Scene) {
	r.active = false
	r.eachObject(func(obj Object) { obj.Base().Deactivate(scene) })
}

func (r *SimRegion) eachObject(fn func(Object)) {
	for _, o := range r.ships {
		fn(o)
	}
	for _, o := range r.shots {
		fn(o)
	}
	for _, o := range r.drones {
		fn(o)
	}
	for _, o := range r.debris {
		fn(o)
	}
	for _, o := range r.asteroids {
		fn(o)
	}
	for _, o := range r.explosions {
		fn(o)
	}
}

// ExecFrame runs one frame: ships, then shots and drones, then collisions,
// then effects, then the contact tracks.
func (r *SimRegion) ExecFrame(seconds float64) {
	for _, s := range slices.Clone(r.ships) {
		s.ExecFrame(seconds)
	}
	for _, s := range slices.Clone(r.shots) {
		s.ExecFrame(seconds)
	}
	for _, d := range slices.Clone(r.drones) {
		d.ExecFrame(seconds)
	}

	r.collide(seconds)

	for _, e := range slices.Clone(r.explosions) {
		e.ExecFrame(seconds)
	}
	for _, d := range slices.Clone(r.debris) {
		d.ExecFrame(seconds)
	}

	r.updateTracks(seconds)
}

// ResolveTimeSkip advances every object in closed form.
func (r *SimRegion) ResolveTimeSkip(seconds float64) {
	for _, s := range slices.Clone(r.ships) {
		s.TimeSkip(seconds)
	}
	for _, s := range slices.Clone(r.shots) {
		s.TimeSkip(seconds)
	}
	for _, d := range slices.Clone(r.drones) {
		d.TimeSkip(seconds)
	}
	for _, e := range slices.Clone(r.explosions) {
		e.TimeSkip(seconds)
	}
	for _, d := range slices.Clone(r.debris) {
		d.TimeSkip(seconds)
	}
}

func (r *SimRegion) collide(seconds float64) {
	for _, shot := range r.shots {
		if shot.dead || !shot.armed {
			continue
		}
		if shot.IsBeam() {
			r.beamHits(shot, seconds)
			continue
		}
		if r.shotHitsShip(shot) {
			continue
		}
		r.shotHitsDrone(shot)
	}
	for _, drone := range r.drones {
		if !drone.dead && drone.armed {
			r.shotHitsShip(drone)
		}
	}

	for i, a := range r.ships {
		if a.dead {
			continue
		}
		for _, b := range r.ships[i+1:] {
			if !b.dead {
				r.shipsCollide(a, b)
			}
		}
		for _, rock := range r.asteroids {
			r.shipHitsAsteroid(a, rock)
		}
	}
}

// shotHitsShip sweeps the shot's last step against every ship except its
// owner.
func (r *SimRegion) shotHitsShip(shot *Shot) bool {
	for _, ship := range r.ships {
		if ship.dead || ship.Handle() == shot.owner {
			continue
		}
		hit, _ := segmentHitsSphere(shot.prev, shot.Location(), ship.Location(), ship.Radius()+shot.Radius())
		if !hit {
			continue
		}
		var sub System
		if shot.seeker != nil && shot.IsTracking(ship) {
			sub = shot.seeker.Subtarget()
		}
		r.damageShip(ship, shot.Damage(), sub, shot.Owner())
		if shot.design.Splash > 0 {
			shot.Detonate()
		} else {
			r.sim.CreateExplosion(shot.Location(), ship.Velocity(), ExplosionShotBurst, 1, r)
			shot.destroy()
		}
		return true
	}
	return false
}

// shotHitsDrone lets shots intercept hostile drones.
func (r *SimRegion) shotHitsDrone(shot *Shot) bool {
	for _, drone := range r.drones {
		if drone.dead || drone == shot || !IsHostile(drone.Team(), shot.Team()) {
			continue
		}
		hit, _ := segmentHitsSphere(shot.prev, shot.Location(), drone.Location(), drone.Radius()+shot.Radius())
		if !hit {
			continue
		}
		if drone.absorbHit(shot.Damage()) {
			drone.Detonate()
		}
		shot.Detonate()
		return true
	}
	return false
}

// beamHits damages the nearest ship the beam passes through and cuts the
// beam short at the hit.
func (r *SimRegion) beamHits(beam *Shot, seconds float64) {
	var target *Ship
	nearest := math.Inf(1)
	origin, end := beam.prev, beam.BeamEnd()
	for _, ship := range r.ships {
		if ship.dead || ship.Handle() == beam.owner {
			continue
		}
		hit, t := segmentHitsSphere(origin, end, ship.Location(), ship.Radius())
		if hit && t < nearest {
			target, nearest = ship, t
		}
	}
	if target == nil {
		return
	}
	beam.beamEnd = r3.Add(origin, r3.Scale(nearest, r3.Sub(end, origin)))
	var sub System
	if w := beam.weapon; w != nil && w.Target() == Object(target) {
		sub = w.Subtarget()
	}
	r.damageShip(target, beam.Damage()*seconds, sub, beam.Owner())
}

// shipsCollide is a perfectly inelastic collision; each hull is damaged by
// the closing speed weighted by the other's share of the mass. Static hulls
// do not move. Ships in warp pass through each other.
func (r *SimRegion) shipsCollide(a, b *Ship) {
	if a.WarpFactor() > 1 || b.WarpFactor() > 1 {
		return
	}
	d := r3.Sub(b.Location(), a.Location())
	if r3.Norm(d) > a.Radius()+b.Radius() {
		return
	}
	rel := r3.Sub(b.Velocity(), a.Velocity())
	if r3.Dot(rel, d) >= 0 {
		return
	}
	speed := r3.Norm(rel)
	ma, mb := a.Mass(), b.Mass()
	var common r3.Vec
	switch {
	case a.IsStatic() && b.IsStatic():
		return
	case a.IsStatic():
		common = a.Velocity()
		ma, mb = 1, 0
	case b.IsStatic():
		common = b.Velocity()
		ma, mb = 0, 1
	default:
		common = r3.Scale(1/(ma+mb), r3.Add(r3.Scale(ma, a.Velocity()), r3.Scale(mb, b.Velocity())))
	}
	if !a.IsStatic() {
		a.SetVelocity(common)
	}
	if !b.IsStatic() {
		b.SetVelocity(common)
	}
	total := ma + mb
	r.damageShip(a, speed*mb/total, nil, b)
	r.damageShip(b, speed*ma/total, nil, a)
}

func (r *SimRegion) shipHitsAsteroid(ship *Ship, rock *Asteroid) {
	if ship.dead || ship.IsStatic() {
		return
	}
	d := r3.Sub(rock.Location(), ship.Location())
	if r3.Norm(d) > ship.Radius()+rock.Radius() || r3.Dot(ship.Velocity(), d) <= 0 {
		return
	}
	speed := r3.Norm(r3.Sub(ship.Velocity(), rock.Velocity()))
	ship.SetVelocity(rock.Velocity())
	r.damageShip(ship, speed, nil, nil)
}

// damageShip applies damage and queues the ship for destruction when its
// hull fails, crediting attacker with the hit and the kill.
func (r *SimRegion) damageShip(ship *Ship, damage float64, sub System, attacker *Ship) {
	if damage <= 0 || ship.dead {
		return
	}
	if attacker != nil && attacker != ship {
		attacker.stats.Hits++
	}
	if !ship.InflictDamage(damage, sub) {
		return
	}
	ship.stats.Destroyed = true
	if attacker != nil && attacker != ship {
		attacker.stats.Kills++
		ship.killer = attacker.Name()
	}
	r.DestroyObject(ship)
}

// updateTracks rebuilds every team's contact list from the sensor ranges of
// its ships. Acquisition time carries over for objects still held.
func (r *SimRegion) updateTracks(seconds float64) {
	for team := range NumTeams {
		prev := make(map[Handle]float64, len(r.tracks[team]))
		for _, c := range r.tracks[team] {
			prev[c.obj] = c.acquired
		}

		var sensors []*Ship
		for _, s := range r.ships {
			if s.team == team && !s.dead {
				sensors = append(sensors, s)
			}
		}
		var tracks []*Contact
		consider := func(obj Object, objTeam int) {
			b := obj.Base()
			if b.dead || objTeam == team {
				return
			}
			for _, s := range sensors {
				rng := s.design.SensorRange
				if rng <= 0 {
					rng = defaultSensorRange
				}
				if distance(s.Location(), b.Location()) > rng {
					continue
				}
				c := &Contact{obj: b.handle, kind: b.kind, team: objTeam, loc: b.Location(), vel: b.Velocity()}
				if age, ok := prev[b.handle]; ok {
					c.acquired = age + seconds
				}
				tracks = append(tracks, c)
				return
			}
		}
		if len(sensors) > 0 {
			for _, s := range r.ships {
				consider(s, s.team)
			}
			for _, s := range r.shots {
				consider(s, s.ownerTeam)
			}
			for _, d := range r.drones {
				consider(d, d.ownerTeam)
			}
		}
		r.tracks[team] = tracks
	}
}

// purgeDead removes every queued object: ships leave wreckage and a death
// burst, observers are notified, handles are released. Objects destroyed by
// the purge itself are handled in the same call.
func (r *SimRegion) purgeDead(effects bool) {
	s := r.sim
	for len(r.dead) > 0 {
		dead := r.dead
		r.dead = nil
		for _, obj := range dead {
			b := obj.Base()
			loc, vel := b.Location(), b.Velocity()

			switch o := obj.(type) {
			case *Ship:
				if effects {
					s.CreateExplosion(loc, vel, ExplosionShipDeath, o.Radius(), r)
					r.spawnDebris(o)
				}
				o.detachObservers(s.registry)
				s.recordDestruction(o, o.killer)
			case *Shot:
				if o.seeker != nil {
					s.registry.Forget(o.seeker)
				}
				if o.IsDrone() {
					s.recordDestruction(o, "")
				}
			}

			s.registry.Release(b.handle)
			r.RemoveObject(obj)
		}
	}
}

func (r *SimRegion) spawnDebris(ship *Ship) {
	rng := r.sim.rng.ForSubsystem(SubsystemDebris)
	n := 3 + rng.Intn(4)
	for range n {
		vel := r3.Add(ship.Velocity(), r3.Scale(rng.Float64()*debrisSpeed, randomDirection(rng)))
		life := randomRange(rng, debrisLifeMin, debrisLifeMax)
		r.sim.CreateDebris(r, ship.Location(), vel, life, ship.Radius()/4)
	}
}
