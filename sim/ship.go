package sim

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// NumTeams is the number of IFF codes. Team 0 is neutral.
const NumTeams = 5

const (
	trackInterval = 0.5
	trackLength   = 32
)

// IsHostile reports whether two IFF codes are at war. Neutrals are hostile
// to nobody.
func IsHostile(a, b int) bool {
	return a != 0 && b != 0 && a != b
}

// ShipStats accumulates per-ship mission statistics.
type ShipStats struct {
	Name        string
	Team        int
	ShotsFired  int
	Hits        int
	Kills       int
	Jumps       int
	DamageTaken float64
	Destroyed   bool
}

// Ship is a hull with systems, a director and a velocity. Its systems are
// owned by the ship; everything it targets is held by handle only.
type Ship struct {
	SimObject

	design    *ShipDesign
	team      int
	integrity float64
	valid     bool

	systems   []System
	weapons   []*Weapon
	groups    []*WeaponGroup
	drive     *QuantumDrive
	farcaster *Farcaster
	shield    *Shield

	director Director
	warp     float64

	ward       Handle
	wardOffset r3.Vec

	target Handle

	track     []r3.Vec
	trackTime float64

	stats  *ShipStats
	killer string
}

// newShip builds a hull and its systems. Weapon mounts whose design is not
// in the catalog are skipped with a warning; the ship is still usable.
func newShip(s *Sim, design *ShipDesign, name string, team int) *Ship {
	ship := &Ship{
		design:    design,
		team:      team,
		integrity: design.Integrity,
		warp:      1,
		stats:     &ShipStats{Name: name, Team: team},
	}
	ship.sim = s
	ship.kind = TypeShip
	ship.name = name
	ship.frame = NewFrame(r3.Vec{})
	ship.radius = design.Radius
	ship.mass = design.Mass
	ship.life = -1
	ship.valid = design.Validate() == nil
	if !ship.valid {
		logrus.Warnf("ship %q built from invalid design %q", name, design.Name)
	}

	if design.Shield != nil {
		ship.shield = newShield(ship, design.Shield)
		ship.systems = append(ship.systems, ship.shield)
	}
	for i, m := range design.Weapons {
		wd, ok := s.catalog.WeaponDesign(m.Design)
		if !ok {
			logrus.Warnf("ship %q: weapon mount %d references unknown design %q, skipped", name, i, m.Design)
			continue
		}
		w := newWeapon(ship, wd, m)
		ship.weapons = append(ship.weapons, w)
		ship.systems = append(ship.systems, w)
		if m.Group != "" {
			ship.groupFor(m.Group).Add(w)
		}
	}
	if design.Drive != nil {
		ship.drive = newQuantumDrive(ship, design.Drive)
		ship.systems = append(ship.systems, ship.drive)
	}
	if design.Farcaster != nil {
		ship.farcaster = newFarcaster(ship, design.Farcaster)
		ship.systems = append(ship.systems, ship.farcaster)
	}
	return ship
}

func (s *Ship) groupFor(name string) *WeaponGroup {
	if g := s.Group(name); g != nil {
		return g
	}
	g := NewWeaponGroup(name)
	s.groups = append(s.groups, g)
	return g
}

func (s *Ship) Design() *ShipDesign         { return s.design }
func (s *Ship) Team() int                   { return s.team }
func (s *Ship) Valid() bool                 { return s.valid }
func (s *Ship) Integrity() float64          { return s.integrity }
func (s *Ship) Systems() []System           { return s.systems }
func (s *Ship) Weapons() []*Weapon          { return s.weapons }
func (s *Ship) Groups() []*WeaponGroup      { return s.groups }
func (s *Ship) QuantumDrive() *QuantumDrive { return s.drive }
func (s *Ship) Farcaster() *Farcaster       { return s.farcaster }
func (s *Ship) Shield() *Shield             { return s.shield }
func (s *Ship) Director() Director          { return s.director }
func (s *Ship) SetDirector(d Director)      { s.director = d }
func (s *Ship) WarpFactor() float64         { return s.warp }
func (s *Ship) IsDropship() bool            { return s.design.Dropship }
func (s *Ship) IsStatic() bool              { return s.design.Static }
func (s *Ship) Stats() *ShipStats           { return s.stats }
func (s *Ship) Track() []r3.Vec             { return s.track }
func (s *Ship) IsHostileTo(team int) bool   { return IsHostile(s.team, team) }
func (s *Ship) SetIntegrity(v float64)      { s.integrity = v }

// Group returns the named weapon group, or nil.
func (s *Ship) Group(name string) *WeaponGroup {
	for _, g := range s.groups {
		if g.Name() == name {
			return g
		}
	}
	return nil
}

// SetWarp sets the warp factor that scales positional motion.
func (s *Ship) SetWarp(w float64) {
	if w < 1 {
		w = 1
	}
	s.warp = w
}

// Target resolves the ship's current target; nil once it is destroyed.
func (s *Ship) Target() Object {
	if s.sim == nil {
		return nil
	}
	return s.sim.registry.Lookup(s.target)
}

// SetTarget assigns obj to the ship and to every weapon not on point-defense
// orders. A nil obj clears all targets.
func (s *Ship) SetTarget(obj Object, subtarget System) {
	if obj == nil {
		s.target = Handle{}
	} else {
		s.target = obj.Base().Handle()
	}
	for _, w := range s.weapons {
		if w.Orders() != OrdersPointDefense {
			w.SetTarget(obj, subtarget)
		}
	}
}

// Ward is the ship this one escorts, if any.
func (s *Ship) Ward() *Ship {
	if s.sim == nil {
		return nil
	}
	ward, _ := s.sim.registry.Lookup(s.ward).(*Ship)
	return ward
}

// SetWard makes the ship hold station on ward at its current offset.
func (s *Ship) SetWard(ward *Ship) {
	if ward == nil {
		s.ward = Handle{}
		return
	}
	s.ward = ward.Handle()
	s.wardOffset = r3.Sub(s.Location(), ward.Location())
}

// ContactList is the track list for the ship's team in its region.
func (s *Ship) ContactList() []*Contact {
	if s.region == nil {
		return nil
	}
	return s.region.TrackList(s.team)
}

// ClearTrack forgets the position trail and every weapon lock. Used when
// the ship changes region.
func (s *Ship) ClearTrack() {
	s.track = s.track[:0]
	s.trackTime = 0
	s.target = Handle{}
	for _, w := range s.weapons {
		w.SetTarget(nil, nil)
	}
}

// InflictDamage applies damage, shield first. Any hull damage also wears
// down subtarget when one is given. It reports whether the hull failed.
func (s *Ship) InflictDamage(damage float64, subtarget System) bool {
	if damage <= 0 || s.dead {
		return false
	}
	if s.shield != nil && s.shield.IsPowerOn() {
		damage = s.shield.Absorb(damage)
	}
	if damage <= 0 {
		return false
	}
	s.integrity -= damage
	s.stats.DamageTaken += damage
	if subtarget != nil && subtarget.Ship() == s {
		subtarget.Power().ApplyDamage(damage / (0.25 * s.design.Integrity))
	}
	return s.integrity <= 0
}

// ExecFrame runs the director, every system and the flight model.
func (s *Ship) ExecFrame(seconds float64) {
	if s.Paused() || s.dead {
		return
	}
	if s.director != nil {
		s.director.ExecFrame(s, seconds)
	}
	for _, sys := range s.systems {
		sys.ExecFrame(seconds)
	}
	if s.design.Static {
		s.vel = r3.Vec{}
		s.accel = r3.Vec{}
		return
	}
	s.integrate(seconds, s.warp)
	s.updateTrack(seconds)
}

// TimeSkip advances the ship in closed form while its region is not being
// simulated. Escorts stay on station relative to their ward.
func (s *Ship) TimeSkip(seconds float64) {
	if s.Paused() || s.dead {
		return
	}
	if ward := s.Ward(); ward != nil {
		s.frame.Pos = r3.Add(ward.Location(), s.wardOffset)
		s.vel = ward.Velocity()
	} else if !s.design.Static {
		half := 0.5 * seconds * seconds
		s.frame.Pos = r3.Add(s.frame.Pos, r3.Add(r3.Scale(seconds*s.warp, s.vel), r3.Scale(half, s.accel)))
		s.vel = r3.Add(s.vel, r3.Scale(seconds, s.accel))
	}
	for _, sys := range s.systems {
		sys.TimeSkip(seconds)
	}
}

// detachObservers unregisters everything the ship owns that observes other
// objects.
func (s *Ship) detachObservers(reg *Registry) {
	for _, w := range s.weapons {
		reg.Forget(w)
	}
	if s.farcaster != nil {
		reg.Forget(s.farcaster)
	}
	if o, ok := s.director.(Observer); ok {
		reg.Forget(o)
	}
}

func (s *Ship) updateTrack(seconds float64) {
	s.trackTime -= seconds
	if s.trackTime > 0 {
		return
	}
	s.trackTime = trackInterval
	if len(s.track) == trackLength {
		copy(s.track, s.track[1:])
		s.track = s.track[:trackLength-1]
	}
	s.track = append(s.track, s.Location())
}

// turnToward yaws and pitches the hull toward p at the design turn rate.
func (s *Ship) turnToward(p r3.Vec, seconds float64) {
	want := r3.Sub(p, s.Location())
	if r3.Norm2(want) == 0 {
		return
	}
	maxTurn := s.design.TurnRate * seconds
	if maxTurn <= 0 {
		return
	}
	fwd := turnToward(s.frame.Forward, want, maxTurn)
	if math.IsNaN(fwd.X) {
		return
	}
	s.frame = s.frame.LookAt(r3.Add(s.Location(), fwd))
}
