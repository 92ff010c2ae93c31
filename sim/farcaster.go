package sim

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	farcasterCapture = 1000.0
	farcasterExit    = 2000.0
)

// Farcaster is a gate system. Once fully charged it captures every eligible
// ship inside its capture radius and throws them to a paired destination
// gate, which runs the arrival ramp.
type Farcaster struct {
	PowerSink

	ship *Ship

	state JumpState
	warp  float64

	dest     Handle
	destName string
	warned   bool

	jumpships []Handle
}

func newFarcaster(ship *Ship, d *FarcasterDesign) *Farcaster {
	return &Farcaster{
		PowerSink: newPowerSink(d.Capacity, d.RechargeRate),
		ship:      ship,
		warp:      1,
	}
}

func (f *Farcaster) Category() Category    { return CategoryFarcaster }
func (f *Farcaster) Name() string          { return "farcaster" }
func (f *Farcaster) Ship() *Ship           { return f.ship }
func (f *Farcaster) MountLocation() r3.Vec { return f.ship.Location() }
func (f *Farcaster) State() JumpState      { return f.state }
func (f *Farcaster) WarpFactor() float64   { return f.warp }

func (f *Farcaster) registry() *Registry { return f.ship.sim.registry }

// SetDestination pairs this gate with dest.
func (f *Farcaster) SetDestination(dest *Ship) {
	if !f.dest.IsZero() {
		f.registry().Ignore(f, f.dest)
	}
	f.dest = Handle{}
	if dest == nil {
		return
	}
	f.destName = dest.Name()
	f.dest = dest.Handle()
	f.registry().Observe(f, f.dest)
}

// SetDestinationName pairs this gate with the named ship, resolved the
// first time the gate needs it.
func (f *Farcaster) SetDestinationName(name string) {
	f.SetDestination(nil)
	f.destName = name
	f.warned = false
}

// Destination resolves the destination gate, looking it up by name if it
// has not been bound yet.
func (f *Farcaster) Destination() *Ship {
	if dest, ok := f.registry().Lookup(f.dest).(*Ship); ok {
		return dest
	}
	if f.destName == "" {
		return nil
	}
	dest := f.ship.sim.FindShip(f.destName)
	if dest == nil || dest == f.ship {
		if !f.warned {
			logrus.Warnf("farcaster %q: destination %q not found", f.ship.Name(), f.destName)
			f.warned = true
		}
		return nil
	}
	f.SetDestination(dest)
	return dest
}

// Jumpships resolves the ships in transit through this gate.
func (f *Farcaster) Jumpships() []*Ship {
	var ships []*Ship
	for _, h := range f.jumpships {
		if ship, ok := f.registry().Lookup(h).(*Ship); ok {
			ships = append(ships, ship)
		}
	}
	return ships
}

func (f *Farcaster) Update(obj Object) bool {
	h := obj.Base().Handle()
	if h == f.dest {
		f.dest = Handle{}
	}
	for i, j := range f.jumpships {
		if j == h {
			f.jumpships = append(f.jumpships[:i], f.jumpships[i+1:]...)
			break
		}
	}
	return true
}

func (f *Farcaster) ObserverName() string { return "Farcaster(" + f.ship.Name() + ")" }

func (f *Farcaster) ExecFrame(seconds float64) {
	if f.ship.Paused() {
		return
	}
	if !f.IsPowerOn() {
		if f.state != JumpReady {
			f.AbortJump()
		}
		return
	}
	switch f.state {
	case JumpReady:
		f.Recharge(seconds)
		if f.IsCharged() && f.Destination() != nil && f.capture() {
			f.state = JumpPrewarp
		}
	case JumpPrewarp:
		w := f.warp * warpGrowth
		if w >= maxWarp {
			f.setWarp(maxWarp)
			f.Jump()
			return
		}
		f.setWarp(w)
	case JumpPostwarp:
		w := f.warp * warpDecay
		if w <= 1 {
			f.setWarp(1)
			f.release()
			f.state = JumpReady
			return
		}
		f.setWarp(w)
	}
}

func (f *Farcaster) TimeSkip(seconds float64) {
	switch f.state {
	case JumpReady:
		f.Recharge(seconds)
	case JumpPrewarp:
		f.Jump()
	case JumpPostwarp:
		f.setWarp(1)
		f.release()
		f.state = JumpReady
	}
}

// capture collects the ships eligible to jump and reports whether any were
// found.
func (f *Farcaster) capture() bool {
	rgn := f.ship.Region()
	if rgn == nil {
		return false
	}
	for _, ship := range rgn.Ships() {
		if ship == f.ship || ship.IsDead() || ship.IsStatic() || ship.WarpFactor() > 1 {
			continue
		}
		if distance(ship.Location(), f.ship.Location()) > farcasterCapture {
			continue
		}
		f.jumpships = append(f.jumpships, ship.Handle())
		f.registry().Observe(f, ship.Handle())
	}
	return len(f.jumpships) > 0
}

func (f *Farcaster) release() {
	for _, h := range f.jumpships {
		f.registry().Ignore(f, h)
	}
	f.jumpships = nil
}

// Jump sends every captured ship to the destination gate's exit, keeping
// their offsets from this gate, and hands them to the destination for the
// arrival ramp.
func (f *Farcaster) Jump() {
	dest := f.Destination()
	if dest == nil || dest.Region() == nil {
		f.AbortJump()
		return
	}
	remote := dest.Farcaster()
	exit := r3.Add(dest.Location(), r3.Scale(farcasterExit, dest.Frame().Forward))
	ships := f.Jumpships()
	for _, ship := range ships {
		offset := r3.Sub(ship.Location(), f.ship.Location())
		f.ship.sim.RequestHyperJump(ship, dest.Region(), r3.Add(exit, offset), TransitionFarcaster, f, remote)
	}
	f.release()
	if remote != nil {
		remote.Arrive(ships)
	}
	f.energy = 0
	f.state = JumpPostwarp
}

// Arrive starts the arrival ramp for ships thrown here by a paired gate.
func (f *Farcaster) Arrive(ships []*Ship) {
	f.release()
	for _, ship := range ships {
		f.jumpships = append(f.jumpships, ship.Handle())
		f.registry().Observe(f, ship.Handle())
	}
	f.state = JumpPostwarp
	f.setWarp(maxWarp)
}

// AbortJump returns the gate to Ready and releases everything captured.
func (f *Farcaster) AbortJump() {
	f.setWarp(1)
	f.release()
	f.state = JumpReady
	f.energy = 0
}

func (f *Farcaster) setWarp(w float64) {
	f.warp = w
	for _, ship := range f.Jumpships() {
		ship.SetWarp(w)
	}
}
