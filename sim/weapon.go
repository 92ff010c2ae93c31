package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// Orders is a weapon's firing mode.
type Orders int

const (
	OrdersManual       Orders = iota // fire only on command
	OrdersAuto                       // engage the assigned target, acquire one if none
	OrdersPointDefense               // engage inbound shots and drones only
)

var ordersNames = map[Orders]string{
	OrdersManual:       "manual",
	OrdersAuto:         "auto",
	OrdersPointDefense: "point_defense",
}

// ValidOrders is the set of recognized firing order names.
var ValidOrders = map[string]bool{"manual": true, "auto": true, "point_defense": true}

func (o Orders) String() string {
	if n, ok := ordersNames[o]; ok {
		return n
	}
	return fmt.Sprintf("orders(%d)", int(o))
}

// ParseOrders maps a firing order name to its value.
func ParseOrders(name string) (Orders, error) {
	for o, n := range ordersNames {
		if n == name {
			return o, nil
		}
	}
	return OrdersManual, fmt.Errorf("unknown firing orders %q; valid options: manual, auto, point_defense", name)
}

// Guided munitions lock inside these cones regardless of the aim basket.
const (
	guidedLockCone       = 10 * Degree
	guidedManualLockCone = 20 * Degree
	droneManualLockCone  = 30 * Degree
	defaultFiringCone    = 2 * Degree
)

// Weapon is a ship-mounted launcher: a power sink, a magazine, one or more
// barrels and an optional turret. It runs the seek, lock, center and fire
// cycle each frame according to its orders.
type Weapon struct {
	PowerSink

	design  *WeaponDesign
	ship    *Ship
	name    string
	group   string
	mount   r3.Vec
	muzzles []r3.Vec
	valid   bool

	ammo         int
	refire       float64
	orders       Orders
	activeBarrel int // -1 fires every barrel together
	rippleCount  int

	target    Handle
	subtarget System

	aimAz     float64
	aimEl     float64
	aimTime   time.Time
	objective r3.Vec
	locked    bool
	centered  bool

	// live beam per barrel
	beams []*Shot
}

func newWeapon(ship *Ship, design *WeaponDesign, mount WeaponMount) *Weapon {
	w := &Weapon{
		PowerSink:    newPowerSink(design.Capacity, design.RechargeRate),
		design:       design,
		ship:         ship,
		name:         mount.Name,
		group:        mount.Group,
		mount:        r3.Vec{X: mount.Offset[0], Y: mount.Offset[1], Z: mount.Offset[2]},
		ammo:         design.Ammo,
		activeBarrel: -1,
		aimAz:        design.AimAzRest,
		aimEl:        design.AimElRest,
	}
	if w.name == "" {
		w.name = design.Name
	}
	for _, m := range design.Muzzles {
		w.muzzles = append(w.muzzles, r3.Vec{X: m[0], Y: m[1], Z: m[2]})
	}
	if design.BarrelMode == BarrelRotate {
		w.activeBarrel = 0
	}
	w.beams = make([]*Shot, len(w.muzzles))
	if err := design.Validate(); err != nil {
		logrus.Warnf("weapon %q on %q disabled: %v", w.name, ship.Name(), err)
		return w
	}
	w.valid = true
	return w
}

func (w *Weapon) Design() *WeaponDesign { return w.design }
func (w *Weapon) Name() string          { return w.name }
func (w *Weapon) Group() string         { return w.group }
func (w *Weapon) Ship() *Ship           { return w.ship }
func (w *Weapon) Category() Category    { return CategoryWeapon }
func (w *Weapon) Valid() bool           { return w.valid }
func (w *Weapon) Ammo() int             { return w.ammo }
func (w *Weapon) SetAmmo(n int)         { w.ammo = n }
func (w *Weapon) Refire() float64       { return w.refire }
func (w *Weapon) Orders() Orders        { return w.orders }
func (w *Weapon) Subtarget() System     { return w.subtarget }
func (w *Weapon) Azimuth() float64      { return w.aimAz }
func (w *Weapon) Elevation() float64    { return w.aimEl }
func (w *Weapon) Objective() r3.Vec     { return w.objective }
func (w *Weapon) Locked() bool          { return w.locked }
func (w *Weapon) Centered() bool        { return w.centered }
func (w *Weapon) ActiveBarrel() int     { return w.activeBarrel }
func (w *Weapon) RippleCount() int      { return w.rippleCount }
func (w *Weapon) Barrels() int          { return len(w.muzzles) }

// SetFiringOrders changes the firing mode. Leaving point defense drops the
// current target so the weapon does not keep chasing a shot.
func (w *Weapon) SetFiringOrders(o Orders) {
	if w.orders == OrdersPointDefense && o != OrdersPointDefense {
		w.SetTarget(nil, nil)
	}
	w.orders = o
}

func (w *Weapon) registry() *Registry { return w.ship.sim.registry }

// Target resolves the weapon's target; nil once it is destroyed.
func (w *Weapon) Target() Object {
	if w.target.IsZero() {
		return nil
	}
	return w.registry().Lookup(w.target)
}

// SetTarget aims the weapon at obj, optionally at one of its systems. A nil
// obj cancels the engagement. The weapon observes its target so it lets go
// the moment the target is destroyed.
func (w *Weapon) SetTarget(obj Object, subtarget System) {
	if obj != nil && obj.Base() == &w.ship.SimObject {
		return
	}
	if obj != nil && !w.target.IsZero() && obj.Base().Handle() == w.target {
		w.subtarget = subtarget
		return
	}
	reg := w.registry()
	if !w.target.IsZero() {
		reg.Ignore(w, w.target)
	}
	w.target = Handle{}
	w.subtarget = nil
	w.locked = false
	w.centered = false
	if obj == nil {
		return
	}
	w.target = obj.Base().Handle()
	w.subtarget = subtarget
	reg.Observe(w, w.target)
}

func (w *Weapon) Update(obj Object) bool {
	h := obj.Base().Handle()
	if h == w.target {
		w.target = Handle{}
		w.subtarget = nil
		w.locked = false
		w.centered = false
	}
	for i, b := range w.beams {
		if b != nil && b.Handle() == h {
			w.beams[i] = nil
		}
	}
	return true
}

func (w *Weapon) ObserverName() string { return "Weapon(" + w.ship.Name() + "/" + w.name + ")" }

// mountFrame is the ship frame translated to the mount point: the turret's
// zero azimuth and elevation.
func (w *Weapon) mountFrame() Frame {
	f := w.ship.Frame()
	f.Pos = f.ToWorld(w.mount)
	return f
}

// MountLocation is the world-space pivot of the weapon.
func (w *Weapon) MountLocation() r3.Vec { return w.mountFrame().Pos }

// AimFrame is the mount frame turned to the current azimuth and elevation.
func (w *Weapon) AimFrame() Frame {
	return w.mountFrame().Yaw(w.aimAz).Pitch(w.aimEl)
}

// MuzzleLocation is the world-space position of barrel n.
func (w *Weapon) MuzzleLocation(n int) r3.Vec {
	aim := w.AimFrame()
	if n < 0 || n >= len(w.muzzles) {
		return aim.Pos
	}
	return aim.ToWorld(w.muzzles[n])
}

// CanLockPoint computes the turret angles that put p on the bore sight and
// clamps them to the aim basket. A clamped solution is not a lock, except
// that guided munitions lock anywhere inside their seeker cone.
func (w *Weapon) CanLockPoint(p r3.Vec) (az, el float64, locked bool) {
	f := w.mountFrame()
	local := f.ToLocal(p)

	switch {
	case local.Z != 0:
		az = math.Atan(local.X / local.Z)
		if local.Z < 0 {
			if local.X >= 0 {
				az += math.Pi
			} else {
				az -= math.Pi
			}
		}
	case local.X > 0:
		az = math.Pi / 2
	case local.X < 0:
		az = -math.Pi / 2
	}

	turned := f.Yaw(az).ToLocal(p)
	switch {
	case turned.Z > 0:
		el = math.Atan(turned.Y / turned.Z)
	case turned.Y > 0:
		el = math.Pi / 2
	case turned.Y < 0:
		el = -math.Pi / 2
	}
	rawAz, rawEl := az, el

	d := w.design
	var clampedAz, clampedEl bool
	az, clampedAz = clamp(az, d.AimAzMin, d.AimAzMax)
	el, clampedEl = clamp(el, d.AimElMin, d.AimElMax)
	locked = !clampedAz && !clampedEl

	if d.Guided || d.Drone {
		cone := guidedLockCone
		if w.orders == OrdersManual {
			cone = guidedManualLockCone
			if d.Drone {
				cone = droneManualLockCone
			}
		}
		if math.Abs(rawAz) < cone && math.Abs(rawEl) < cone {
			locked = true
		}
	}
	return az, el, locked
}

// AimTurret slews toward the requested angles. Turret motion is bounded by
// slew rate times the wall-clock time since the previous call, so the
// turret's speed does not depend on the frame step.
func (w *Weapon) AimTurret(az, el float64) {
	d := w.design
	az, _ = clamp(az, d.AimAzMin, d.AimAzMax)
	el, _ = clamp(el, d.AimElMin, d.AimElMax)

	now := w.ship.sim.clock.Now()
	if w.aimTime.IsZero() {
		w.aimTime = now
		return
	}
	maxTurn := d.SlewRate * now.Sub(w.aimTime).Seconds()
	w.aimTime = now
	if maxTurn <= 0 {
		return
	}
	w.aimAz = slew(w.aimAz, az, maxTurn)
	w.aimEl = slew(w.aimEl, el, maxTurn)
}

// ZeroAim returns the turret to its rest position.
func (w *Weapon) ZeroAim() {
	if w.design.Turret {
		w.AimTurret(w.design.AimAzRest, w.design.AimElRest)
	}
}

func slew(from, to, maxStep float64) float64 {
	switch d := to - from; {
	case d > maxStep:
		return from + maxStep
	case d < -maxStep:
		return from - maxStep
	default:
		return to
	}
}

// FindObjective computes the aim point on the current target, leading it
// for projectile weapons, and updates the lock and centering state.
func (w *Weapon) FindObjective() {
	tgt := w.Target()
	if tgt != nil && tgt.Base().Region() != w.ship.Region() {
		w.SetTarget(nil, nil)
		tgt = nil
	}
	if tgt == nil || tgt.Base().IsDead() {
		w.locked = false
		w.centered = false
		w.ZeroAim()
		return
	}
	tb := tgt.Base()
	obj := tb.Location()
	if w.subtarget != nil {
		obj = w.subtarget.MountLocation()
	}
	origin := w.MountLocation()
	rng := distance(obj, origin)

	d := w.design
	if !d.Beam && d.Speed > 0 {
		shotVel := r3.Add(w.ship.Velocity(), r3.Scale(d.Speed, w.AimFrame().Forward))
		closing := r3.Norm(r3.Sub(shotVel, tb.Velocity()))
		if closing > 0 {
			t := rng / closing
			obj = r3.Add(obj, r3.Scale(t, tb.Velocity()))
			obj = r3.Add(obj, r3.Scale(0.25*t*t, tb.Acceleration()))
		}
	}
	w.objective = obj

	az, el, locked := w.CanLockPoint(obj)
	if d.MaxRange > 0 && rng > d.MaxRange {
		locked = false
	}
	if d.Turret {
		w.AimTurret(az, el)
	}
	w.locked = locked
	w.centered = locked && w.isCentered(obj)
}

func (w *Weapon) isCentered(p r3.Vec) bool {
	aim := w.AimFrame()
	to := r3.Sub(p, aim.Pos)
	if r3.Norm2(to) == 0 {
		return true
	}
	cone := w.design.FiringCone
	if cone <= 0 {
		cone = defaultFiringCone
	}
	cos := math.Min(1, r3.Cos(aim.Forward, to))
	return math.Acos(cos) <= cone
}

// SelectTarget picks a target from the ship's contact list: the closest
// inbound hostile shot or drone in range and inside the basket, else the
// closest hostile ship. Weapons on point-defense orders consider shots only.
func (w *Weapon) SelectTarget() {
	if w.ship.Region() == nil {
		w.SetTarget(nil, nil)
		return
	}
	reg := w.registry()
	origin := w.MountLocation()
	d := w.design

	var threat, hostile Object
	threatDist, hostileDist := math.Inf(1), math.Inf(1)
	for _, c := range w.ship.ContactList() {
		obj := c.Resolve(reg)
		if obj == nil {
			continue
		}
		switch {
		case c.IsShot():
			if !d.CanTarget(TargetShots) || !c.Threat(reg, w.ship) {
				continue
			}
		case c.IsShip():
			if w.orders == OrdersPointDefense || !d.CanTarget(TargetShips) || !IsHostile(c.Team(), w.ship.Team()) {
				continue
			}
		default:
			continue
		}
		rng := distance(c.Location(), origin)
		if d.MaxRange > 0 && rng > d.MaxRange {
			continue
		}
		if _, _, ok := w.CanLockPoint(c.Location()); !ok {
			continue
		}
		if c.IsShot() {
			if rng < threatDist {
				threat, threatDist = obj, rng
			}
		} else if rng < hostileDist {
			hostile, hostileDist = obj, rng
		}
	}

	switch {
	case threat != nil:
		w.SetTarget(threat, nil)
	case hostile != nil:
		w.SetTarget(hostile, nil)
	default:
		w.SetTarget(nil, nil)
	}
}

// ExecFrame recharges, counts down the refire timer and runs the
// engagement cycle for the weapon's orders.
func (w *Weapon) ExecFrame(seconds float64) {
	if w.ship.Paused() {
		return
	}
	w.Recharge(seconds)
	if w.refire > 0 {
		w.refire = math.Max(0, w.refire-seconds)
	}
	if !w.valid {
		return
	}

	switch w.orders {
	case OrdersPointDefense:
		w.SelectTarget()
	case OrdersAuto:
		if w.Target() == nil {
			w.SelectTarget()
		}
	}
	w.FindObjective()

	if w.rippleCount > 0 {
		w.rippleCount--
		if w.releaseSalvo() == nil {
			w.rippleCount = 0
		}
		return
	}
	if w.orders != OrdersManual && w.centered && w.Target() != nil {
		w.Fire()
	}
}

// TimeSkip recharges and counts down the refire timer in bulk.
func (w *Weapon) TimeSkip(seconds float64) {
	w.Recharge(seconds)
	w.refire = math.Max(0, w.refire-seconds)
	w.rippleCount = 0
}

// Fire pulls the trigger. It returns the last shot released, or nil when
// the weapon is paused, invalid, reloading, empty or short of charge.
func (w *Weapon) Fire() *Shot {
	if w.ship.Paused() || !w.valid || !w.IsPowerOn() || w.Status() == StatusDestroyed {
		return nil
	}
	d := w.design
	if w.refire > 0 || w.ammo == 0 || w.energy < d.MinCharge || !w.canRelease() {
		return nil
	}

	w.refire = d.RefireDelay
	w.ship.sim.net.WeaponFire(w, w.Target(), w.subtarget)
	shot := w.releaseSalvo()

	if d.RippleCount > 1 && w.rippleCount == 0 {
		w.rippleCount = d.RippleCount - 1
	}
	if w.Status() != StatusNominal {
		w.refire *= 2
	}
	return shot
}

// releaseSalvo fires every barrel together, or the next barrel of the
// rotation. Ripple follow-ups release the same pattern as the trigger pull.
func (w *Weapon) releaseSalvo() *Shot {
	if w.activeBarrel >= 0 {
		return w.fireNextBarrel()
	}
	var shot *Shot
	for i := range w.muzzles {
		if s := w.FireBarrel(i); s != nil {
			shot = s
		}
	}
	return shot
}

// canRelease reports whether releaseSalvo would put at least one shot out.
func (w *Weapon) canRelease() bool {
	if w.activeBarrel >= 0 {
		return w.barrelReady(w.activeBarrel)
	}
	for i := range w.muzzles {
		if w.barrelReady(i) {
			return true
		}
	}
	return false
}

// fireNextBarrel releases the active barrel and advances the rotation. A
// full rotation adds the salvo delay to the refire timer.
func (w *Weapon) fireNextBarrel() *Shot {
	shot := w.FireBarrel(w.activeBarrel)
	w.activeBarrel++
	if w.activeBarrel >= len(w.muzzles) {
		w.activeBarrel = 0
		w.refire += w.design.SalvoDelay
	}
	return shot
}

func (w *Weapon) barrelReady(n int) bool {
	if !w.valid || n < 0 || n >= len(w.muzzles) {
		return false
	}
	d := w.design
	if w.ammo == 0 || w.energy < d.Charge {
		return false
	}
	if d.Beam && w.beams[n] != nil {
		return false
	}
	return w.ship.Region() != nil
}

// dropBeams ends every live beam. Beams stay behind when the ship leaves
// its region.
func (w *Weapon) dropBeams() {
	for i, b := range w.beams {
		if b == nil {
			continue
		}
		w.registry().Ignore(w, b.Handle())
		b.destroy()
		w.beams[i] = nil
	}
}

// FireBarrel releases one shot from barrel n. It returns nil when the
// magazine is empty, the sink lacks the shot charge, or the barrel already
// has a live beam.
func (w *Weapon) FireBarrel(n int) *Shot {
	if !w.barrelReady(n) {
		return nil
	}
	d := w.design
	s := w.ship.sim
	region := w.ship.Region()

	aim := w.AimFrame()
	muzzle := w.MuzzleLocation(n)
	frame := aim
	frame.Pos = muzzle
	vel := w.ship.Velocity()
	if !d.Beam {
		vel = r3.Add(vel, r3.Scale(d.Speed, aim.Forward))
	}

	shot := s.CreateShot(region, frame, vel, d, w.ship)
	if d.Beam {
		shot.weapon = w
		shot.barrel = n
		shot.execBeam(0)
		w.beams[n] = shot
		s.registry.Observe(w, shot.Handle())
	}

	if w.ammo > 0 {
		w.ammo--
	}
	w.SetEnergy(w.energy - d.Charge)

	tgt := w.Target()
	if shot.IsGuided() && tgt != nil {
		shot.SeekTarget(tgt, w.subtarget)
		s.net.WeaponRelease(w, shot)
	}
	if d.Flak && !shot.IsGuided() && tgt != nil {
		rng := distance(w.objective, muzzle)
		if speed := r3.Norm(r3.Sub(vel, w.ship.Velocity())); speed > 0 && rng >= d.MinRange {
			shot.SetFuse(rng / speed)
		}
	}

	if d.Sound != "" {
		s.sound.Play(d.Sound, muzzle)
	}
	w.ship.stats.ShotsFired++
	s.recordFire(w, shot, tgt)
	return shot
}
