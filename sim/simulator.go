package sim

import (
	"errors"
	"fmt"
	"slices"

	"github.com/deepspace-sim/deepspace-sim/sim/trace"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrUnknownRegion = errors.New("unknown region")
	ErrMissionState  = errors.New("invalid mission state")
)

// quantumFlashScale sizes the flash at both ends of a quantum jump.
const quantumFlashScale = 50.0

// Config wires a Sim to its design catalog and its collaborators. Only
// Catalog is required; nil hooks are replaced by no-ops and a nil Clock by
// the wall clock.
type Config struct {
	Catalog  *Catalog
	Seed     int64
	Clock    Clock
	Scene    Scene
	Sound    Sound
	Net      NetHook
	Recorder Recorder
	Trace    *trace.SimulationTrace
}

type missionState int

const (
	missionNone missionState = iota
	missionLoaded
	missionRunning
	missionComplete
)

// Sim owns every region and, through them, every object. It creates and
// destroys objects, and applies the structural changes queued during a
// frame (jumps, splash damage, removals) once the frame's update pass is
// done.
//
// Thread-safety: NOT thread-safe. Must be driven from one goroutine.
type Sim struct {
	catalog  *Catalog
	registry *Registry
	rng      *PartitionedRNG
	clock    Clock
	scene    Scene
	sound    Sound
	net      NetHook
	recorder Recorder
	trace    *trace.SimulationTrace

	regions []*SimRegion
	active  *SimRegion
	paused  bool
	player  Handle

	hyper  []*SimHyper
	splash []*SimSplash

	nextID  uint32
	frame   int64
	elapsed float64
	stats   []*ShipStats

	state     missionState
	missionID uuid.UUID
	mission   string
}

// NewSim creates an empty simulation. Panics if cfg.Catalog is nil.
func NewSim(cfg Config) *Sim {
	if cfg.Catalog == nil {
		panic("NewSim: Catalog is nil")
	}
	s := &Sim{
		catalog:  cfg.Catalog,
		registry: NewRegistry(),
		rng:      NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		clock:    cfg.Clock,
		scene:    cfg.Scene,
		sound:    cfg.Sound,
		net:      cfg.Net,
		recorder: cfg.Recorder,
		trace:    cfg.Trace,
	}
	if s.clock == nil {
		s.clock = WallClock{}
	}
	if s.scene == nil {
		s.scene = nopScene{}
	}
	if s.sound == nil {
		s.sound = nopSound{}
	}
	if s.net == nil {
		s.net = nopNet{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	return s
}

func (s *Sim) Registry() *Registry           { return s.registry }
func (s *Sim) RNG() *PartitionedRNG          { return s.rng }
func (s *Sim) Catalog() *Catalog             { return s.catalog }
func (s *Sim) Clock() Clock                  { return s.clock }
func (s *Sim) Regions() []*SimRegion         { return s.regions }
func (s *Sim) ActiveRegion() *SimRegion      { return s.active }
func (s *Sim) Paused() bool                  { return s.paused }
func (s *Sim) Pause(p bool)                  { s.paused = p }
func (s *Sim) Frame() int64                  { return s.frame }
func (s *Sim) Elapsed() float64              { return s.elapsed }
func (s *Sim) Stats() []*ShipStats           { return s.stats }
func (s *Sim) Trace() *trace.SimulationTrace { return s.trace }
func (s *Sim) HyperList() []*SimHyper        { return s.hyper }

// AddRegion creates a region. Region names are unique.
func (s *Sim) AddRegion(name string, orbit Orbit) (*SimRegion, error) {
	if s.FindRegion(name) != nil {
		return nil, fmt.Errorf("region %q already exists", name)
	}
	r := newSimRegion(s, name, orbit)
	s.regions = append(s.regions, r)
	return r, nil
}

// FindRegion returns the named region, or nil.
func (s *Sim) FindRegion(name string) *SimRegion {
	for _, r := range s.regions {
		if r.name == name {
			return r
		}
	}
	return nil
}

// SetActiveRegion moves the camera to r: the previous focus is detached
// from the scene unless it is r itself.
func (s *Sim) SetActiveRegion(r *SimRegion) {
	if r == s.active {
		if r != nil && !r.active {
			r.Activate(s.scene)
		}
		return
	}
	if s.active != nil {
		s.active.Deactivate(s.scene)
	}
	s.active = r
	if r != nil {
		r.Activate(s.scene)
	}
}

// PlayerShip resolves the player's ship, if any.
func (s *Sim) PlayerShip() *Ship {
	ship, _ := s.registry.Lookup(s.player).(*Ship)
	return ship
}

// SetPlayerShip makes ship the player's; the active region follows it.
func (s *Sim) SetPlayerShip(ship *Ship) {
	if ship == nil {
		s.player = Handle{}
		return
	}
	s.player = ship.Handle()
	if ship.Region() != nil {
		s.SetActiveRegion(ship.Region())
	}
}

// FindShip searches every region for a live ship with the given name.
func (s *Sim) FindShip(name string) *Ship {
	for _, r := range s.regions {
		if ship := r.FindShip(name); ship != nil {
			return ship
		}
	}
	return nil
}

func (s *Sim) register(obj Object) {
	s.registry.Register(obj)
	s.nextID++
	obj.Base().id = s.nextID
}

// CreateShip builds a ship from the named design and places it in rgn.
func (s *Sim) CreateShip(design, name string, team int, rgn *SimRegion, loc r3.Vec) (*Ship, error) {
	if rgn == nil {
		return nil, fmt.Errorf("ship %q: %w", name, ErrUnknownRegion)
	}
	d, ok := s.catalog.ShipDesign(design)
	if !ok {
		return nil, fmt.Errorf("ship %q: %w %q", name, ErrUnknownShipDesign, design)
	}
	if team < 0 || team >= NumTeams {
		return nil, fmt.Errorf("ship %q: team %d out of range [0, %d)", name, team, NumTeams)
	}
	ship := newShip(s, d, name, team)
	ship.frame.Pos = loc
	s.register(ship)
	rgn.InsertObject(ship)
	s.stats = append(s.stats, ship.stats)
	return ship, nil
}

// CreateShot releases a shot into rgn.
func (s *Sim) CreateShot(rgn *SimRegion, frame Frame, vel r3.Vec, design *WeaponDesign, owner *Ship) *Shot {
	shot := newShot(s, frame, vel, design, owner)
	s.register(shot)
	rgn.InsertObject(shot)
	return shot
}

// CreateDebris adds drifting wreckage to rgn.
func (s *Sim) CreateDebris(rgn *SimRegion, loc, vel r3.Vec, life, radius float64) *Debris {
	d := newDebris(s, loc, vel, life, radius)
	s.register(d)
	rgn.InsertObject(d)
	return d
}

// CreateAsteroid adds a static collider to rgn.
func (s *Sim) CreateAsteroid(rgn *SimRegion, name string, loc r3.Vec, radius, mass float64) *Asteroid {
	a := newAsteroid(s, name, loc, radius, mass)
	s.register(a)
	rgn.InsertObject(a)
	return a
}

// CreateExplosion adds a burst effect to rgn.
func (s *Sim) CreateExplosion(loc, vel r3.Vec, etype ExplosionType, scale float64, rgn *SimRegion) *Explosion {
	e := newExplosion(s, etype, loc, vel, scale)
	s.register(e)
	rgn.InsertObject(e)
	return e
}

// CreateSplash queues area damage, applied after the frame's update pass.
func (s *Sim) CreateSplash(rgn *SimRegion, loc r3.Vec, damage, radius float64, owner *Ship) {
	if rgn == nil || damage <= 0 || radius <= 0 {
		return
	}
	sp := &SimSplash{region: rgn, loc: loc, damage: damage, radius: radius}
	if owner != nil {
		sp.owner = owner.Handle()
	}
	s.splash = append(s.splash, sp)
}

// RequestHyperJump queues a region transfer for ship. A ship already in
// the queue keeps its first request.
func (s *Sim) RequestHyperJump(ship *Ship, rgn *SimRegion, loc r3.Vec, t Transition, from, to *Farcaster) {
	s.requestHyper(ship, rgn, loc, t, from, to, nil)
}

func (s *Sim) requestHyper(ship *Ship, rgn *SimRegion, loc r3.Vec, t Transition, from, to *Farcaster, escorts []escortSlot) {
	if ship == nil || rgn == nil {
		return
	}
	for _, h := range s.hyper {
		if h.ship == ship.Handle() {
			logrus.Debugf("%s: hyperjump already queued, request ignored", ship.Name())
			return
		}
	}
	h := &SimHyper{
		registry:   s.registry,
		ship:       ship.Handle(),
		name:       ship.Name(),
		region:     rgn,
		loc:        loc,
		transition: t,
		from:       from,
		to:         to,
		escorts:    slices.Clone(escorts),
	}
	s.registry.Observe(h, h.ship)
	s.hyper = append(s.hyper, h)
}

// ResolveHyperList moves every queued ship to its destination region.
// Quantum jumps carry the drive's formation along at the offsets fixed
// when the ramp started.
func (s *Sim) ResolveHyperList() {
	list := s.hyper
	s.hyper = nil
	queued := make(map[Handle]bool, len(list))
	for _, h := range list {
		queued[h.ship] = true
	}
	for _, h := range list {
		ship := h.Ship()
		if ship == nil || ship.IsDead() {
			logrus.Warnf("hyperjump for %q dropped: ship destroyed", h.name)
			s.registry.Forget(h)
			continue
		}
		s.registry.Ignore(h, h.ship)

		src := ship.Region()
		dst := h.region
		from := ship.Location()

		type escort struct {
			ship   *Ship
			offset r3.Vec
		}
		var escorts []escort
		if src != dst {
			for _, slot := range h.escorts {
				e, _ := s.registry.Lookup(slot.ship).(*Ship)
				if e == nil || e == ship || e.IsDead() || e.Region() != src || queued[slot.ship] {
					continue
				}
				escorts = append(escorts, escort{e, slot.offset})
			}
		}

		s.transfer(ship, dst, h.loc)
		for _, e := range escorts {
			s.transfer(e.ship, dst, r3.Add(h.loc, e.offset))
		}

		if h.transition == TransitionQuantum && ((src != nil && src.active) || dst.active) {
			if src != nil {
				s.CreateExplosion(from, r3.Vec{}, ExplosionQuantumFlash, quantumFlashScale, src)
			}
			s.CreateExplosion(h.loc, r3.Vec{}, ExplosionQuantumFlash, quantumFlashScale, dst)
		}
		if ship.Handle() == s.player {
			s.SetActiveRegion(dst)
		}

		s.recorder.HyperJumpResolved(h.transition.String())
		if s.trace.Enabled() {
			rec := trace.JumpRecord{Frame: s.frame, Ship: ship.Name(), To: dst.Name(), Transition: h.transition.String(), Escorts: len(escorts)}
			if src != nil {
				rec.From = src.Name()
			}
			s.trace.RecordJump(rec)
		}
		logrus.Debugf("[frame %07d] %s %s jump to %s with %d escorts", s.frame, ship.Name(), h.transition, dst.Name(), len(escorts))
	}
}

func (s *Sim) transfer(ship *Ship, dst *SimRegion, loc r3.Vec) {
	for _, w := range ship.Weapons() {
		w.dropBeams()
	}
	dst.InsertObject(ship)
	ship.MoveTo(loc)
	ship.ClearTrack()
	ship.stats.Jumps++
}

// ResolveSplashList applies queued area damage with linear falloff.
func (s *Sim) ResolveSplashList() {
	list := s.splash
	s.splash = nil
	for _, sp := range list {
		owner, _ := s.registry.Lookup(sp.owner).(*Ship)
		for _, ship := range sp.region.Ships() {
			if ship.IsDead() {
				continue
			}
			d := distance(ship.Location(), sp.loc) - ship.Radius()
			if d < 0 {
				d = 0
			}
			if d >= sp.radius {
				continue
			}
			sp.region.damageShip(ship, sp.damage*(1-d/sp.radius), nil, owner)
		}
		for _, drone := range sp.region.Drones() {
			if drone.IsDead() || distance(drone.Location(), sp.loc) >= sp.radius {
				continue
			}
			if drone.absorbHit(sp.damage) {
				sp.region.DestroyObject(drone)
			}
		}
	}
}

// ExecFrame advances the whole simulation by seconds. Active regions step
// every object; inactive regions time-skip. Splash damage, jumps and
// removals queued during the pass are applied afterwards, in that order.
func (s *Sim) ExecFrame(seconds float64) {
	if s.paused {
		return
	}
	start := s.clock.Now()
	s.frame++

	for _, r := range s.regions {
		if r.active {
			r.ExecFrame(seconds)
		} else {
			r.ResolveTimeSkip(seconds)
		}
	}
	s.ResolveSplashList()
	s.ResolveHyperList()
	for _, r := range s.regions {
		r.purgeDead(true)
	}
	s.elapsed += seconds

	s.recorder.FrameExecuted(s.clock.Now().Sub(start))
	for _, r := range s.regions {
		s.recorder.RegionPopulation(r.name, len(r.ships), len(r.shots)+len(r.drones))
	}
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		objects := 0
		for _, r := range s.regions {
			objects += len(r.ships) + len(r.shots) + len(r.drones)
		}
		logrus.Debugf("[frame %07d] t=%.2fs regions=%d objects=%d", s.frame, s.elapsed, len(s.regions), objects)
	}
}

func (s *Sim) recordFire(w *Weapon, shot *Shot, target Object) {
	s.recorder.ShotFired(w.design.Name)
	if !s.trace.Enabled() {
		return
	}
	rec := trace.FireRecord{Frame: s.frame, Ship: w.ship.Name(), Weapon: w.name, Guided: shot.IsGuided()}
	if target != nil {
		rec.Target = target.Base().Name()
	}
	if rgn := w.ship.Region(); rgn != nil {
		rec.Region = rgn.Name()
	}
	s.trace.RecordFire(rec)
}

func (s *Sim) recordDestruction(obj Object, killer string) {
	b := obj.Base()
	s.recorder.ObjectDestroyed(b.kind.String())
	if !s.trace.Enabled() {
		return
	}
	rec := trace.DestructionRecord{Frame: s.frame, Name: b.name, Kind: b.kind.String(), Killer: killer}
	if b.region != nil {
		rec.Region = b.region.Name()
	}
	s.trace.RecordDestruction(rec)
}

// MissionResult is the outcome of a committed mission.
type MissionResult struct {
	ID         uuid.UUID
	Name       string
	Frames     int64
	SimSeconds float64
	Ships      []ShipStats
	Survivors  map[int]int // team -> live ships
}

// LoadMission builds the regions, ships and asteroids of m. The Sim must
// be empty.
func (s *Sim) LoadMission(m *Mission) error {
	if s.state != missionNone {
		return fmt.Errorf("load mission %q: %w", m.Name, ErrMissionState)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("load mission %q: %w", m.Name, err)
	}
	if err := s.build(m); err != nil {
		s.UnloadMission()
		return fmt.Errorf("load mission %q: %w", m.Name, err)
	}
	s.state = missionLoaded
	s.mission = m.Name
	s.missionID = uuid.New()
	logrus.Infof("mission %q loaded: %d regions, %d ships", m.Name, len(s.regions), len(s.stats))
	return nil
}

func (s *Sim) build(m *Mission) error {
	for _, rs := range m.Regions {
		orbit := Orbit{Location: vec(rs.Location)}
		if rs.Primary != nil {
			orbit.Primary = vec(*rs.Primary)
			orbit.HasPrimary = true
		}
		r, err := s.AddRegion(rs.Name, orbit)
		if err != nil {
			return err
		}
		if rs.Active {
			r.Activate(s.scene)
		}
	}

	ships := make(map[string]*Ship, len(m.Ships))
	for _, ss := range m.Ships {
		ship, err := s.CreateShip(ss.Design, ss.Name, ss.Team, s.FindRegion(ss.Region), vec(ss.Location))
		if err != nil {
			return err
		}
		ship.SetVelocity(vec(ss.Velocity))
		if ss.LookAt != nil {
			ship.SetFrame(ship.Frame().LookAt(vec(*ss.LookAt)))
		}
		if ss.Orders != "" {
			orders, err := ParseOrders(ss.Orders)
			if err != nil {
				return fmt.Errorf("ship %q: %w", ss.Name, err)
			}
			for _, w := range ship.Weapons() {
				w.SetFiringOrders(orders)
			}
		}
		ships[ss.Name] = ship
	}

	for _, ss := range m.Ships {
		ship := ships[ss.Name]
		if ss.Ward != "" {
			ship.SetWard(ships[ss.Ward])
		}
		if ss.Target != "" {
			ship.SetDirector(NewApproachDirector(s.registry, ships[ss.Target], ss.Standoff))
		}
		if q := ss.QuantumDestination; q != nil && ship.QuantumDrive() != nil {
			ship.QuantumDrive().SetDestination(s.FindRegion(q.Region), vec(q.Location))
			if q.Engage {
				ship.QuantumDrive().Engage(false)
			}
		}
		if ss.FarcasterDestination != "" && ship.Farcaster() != nil {
			ship.Farcaster().SetDestinationName(ss.FarcasterDestination)
		}
		if ss.Player {
			s.SetPlayerShip(ship)
		}
	}

	for _, as := range m.Asteroids {
		s.CreateAsteroid(s.FindRegion(as.Region), as.Name, vec(as.Location), as.Radius, as.Mass)
	}
	if s.active == nil {
		for _, r := range s.regions {
			if r.active {
				s.active = r
				break
			}
		}
	}
	return nil
}

// ExecMission starts a loaded mission.
func (s *Sim) ExecMission() error {
	if s.state != missionLoaded {
		return fmt.Errorf("exec mission: %w", ErrMissionState)
	}
	s.state = missionRunning
	return nil
}

// CommitMission ends a running mission and reports its outcome.
func (s *Sim) CommitMission() (*MissionResult, error) {
	if s.state != missionRunning {
		return nil, fmt.Errorf("commit mission: %w", ErrMissionState)
	}
	s.state = missionComplete
	res := &MissionResult{
		ID:         s.missionID,
		Name:       s.mission,
		Frames:     s.frame,
		SimSeconds: s.elapsed,
		Survivors:  make(map[int]int),
	}
	for _, st := range s.stats {
		res.Ships = append(res.Ships, *st)
		if !st.Destroyed {
			res.Survivors[st.Team]++
		}
	}
	logrus.Infof("mission %q committed after %d frames (%.1fs)", s.mission, s.frame, s.elapsed)
	return res, nil
}

// UnloadMission destroys every object, notifying their observers, and
// removes every region.
func (s *Sim) UnloadMission() {
	for _, r := range s.regions {
		r.eachObject(func(obj Object) { r.DestroyObject(obj) })
		r.purgeDead(false)
		r.Deactivate(s.scene)
	}
	for _, h := range s.hyper {
		s.registry.Forget(h)
	}
	s.regions = nil
	s.active = nil
	s.player = Handle{}
	s.hyper = nil
	s.splash = nil
	s.stats = nil
	s.frame = 0
	s.elapsed = 0
	s.state = missionNone
	s.mission = ""
}

func vec(v [3]float64) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }
