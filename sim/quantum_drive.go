package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// JumpState is the phase of a quantum drive or farcaster transition.
type JumpState int

const (
	JumpReady JumpState = iota
	JumpCountdown
	JumpPrewarp
	JumpPostwarp
)

func (s JumpState) String() string {
	switch s {
	case JumpReady:
		return "ready"
	case JumpCountdown:
		return "countdown"
	case JumpPrewarp:
		return "prewarp"
	case JumpPostwarp:
		return "postwarp"
	}
	return fmt.Sprintf("jump_state(%d)", int(s))
}

// Warp ramp and escort constants shared by both transition systems.
const (
	maxWarp       = 5000.0
	warpGrowth    = 1.5
	warpDecay     = 0.75
	escortRadius  = 5000.0
	quantumExit   = 150e3
	quantumJitter = 60e3
	scatterMin    = 15e3
	scatterMax    = 22e3
)

// countdownDelay returns the extra countdown seconds one ship at rng adds.
func countdownDelay(rng float64) float64 {
	switch {
	case rng < 25e3:
		return 5
	case rng < 50e3:
		return 2
	case rng < 100e3:
		return 1
	case rng < 200e3:
		return 0.5
	}
	return 0
}

// QuantumDrive moves its ship to another region after a countdown and a
// warp ramp. Nearby traffic lengthens the countdown.
type QuantumDrive struct {
	PowerSink

	ship      *Ship
	countdown float64

	state    JumpState
	warp     float64
	jumpTime float64

	destRegion *SimRegion
	destLoc    r3.Vec

	escorts []escortSlot
}

func newQuantumDrive(ship *Ship, d *DriveDesign) *QuantumDrive {
	return &QuantumDrive{
		PowerSink: newPowerSink(d.Capacity, d.RechargeRate),
		ship:      ship,
		countdown: d.Countdown,
		warp:      1,
	}
}

func (q *QuantumDrive) Category() Category          { return CategoryQuantumDrive }
func (q *QuantumDrive) Name() string                { return "quantum drive" }
func (q *QuantumDrive) Ship() *Ship                 { return q.ship }
func (q *QuantumDrive) MountLocation() r3.Vec       { return q.ship.Location() }
func (q *QuantumDrive) State() JumpState            { return q.state }
func (q *QuantumDrive) WarpFactor() float64         { return q.warp }
func (q *QuantumDrive) JumpTime() float64           { return q.jumpTime }
func (q *QuantumDrive) Destination() *SimRegion     { return q.destRegion }
func (q *QuantumDrive) DestinationLocation() r3.Vec { return q.destLoc }

// SetDestination selects the region and region-local point to jump to.
func (q *QuantumDrive) SetDestination(rgn *SimRegion, loc r3.Vec) {
	q.destRegion = rgn
	q.destLoc = loc
}

// Engage starts the countdown. It only succeeds from Ready, fully charged,
// powered and with a destination. immediate skips the countdown.
func (q *QuantumDrive) Engage(immediate bool) bool {
	if q.state != JumpReady || !q.IsCharged() || !q.IsPowerOn() || q.destRegion == nil {
		return false
	}
	q.jumpTime = q.countdown
	if rgn := q.ship.Region(); rgn != nil {
		for _, other := range rgn.Ships() {
			if other == q.ship || other.IsDead() {
				continue
			}
			q.jumpTime += countdownDelay(distance(other.Location(), q.ship.Location()))
		}
	}
	if immediate {
		q.jumpTime = 0
		q.state = JumpPrewarp
		q.gatherEscorts()
	} else {
		q.state = JumpCountdown
	}
	logrus.Debugf("%s: quantum drive engaged, jump in %.1fs", q.ship.Name(), q.jumpTime)
	return true
}

// PowerOff cuts the drive. A transition in progress is aborted.
func (q *QuantumDrive) PowerOff() {
	q.PowerSink.PowerOff()
	if q.state != JumpReady {
		q.AbortJump()
	}
}

// AbortJump cancels any transition, draining the drive.
func (q *QuantumDrive) AbortJump() {
	q.state = JumpReady
	q.jumpTime = 0
	q.energy = 0
	q.setWarp(1)
	q.releaseEscorts()
}

func (q *QuantumDrive) ExecFrame(seconds float64) {
	if q.ship.Paused() {
		return
	}
	if !q.IsPowerOn() && q.state != JumpReady {
		q.AbortJump()
		return
	}
	switch q.state {
	case JumpReady:
		q.Recharge(seconds)
	case JumpCountdown:
		q.jumpTime -= seconds
		if q.jumpTime <= 0 {
			q.jumpTime = 0
			q.state = JumpPrewarp
			q.gatherEscorts()
		}
	case JumpPrewarp:
		w := q.warp * warpGrowth
		if w >= maxWarp {
			q.setWarp(maxWarp)
			q.Jump()
			return
		}
		q.setWarp(w)
	case JumpPostwarp:
		w := q.warp * warpDecay
		if w <= 1 {
			q.setWarp(1)
			q.releaseEscorts()
			q.state = JumpReady
			return
		}
		q.setWarp(w)
	}
}

// TimeSkip runs the transition without the warp ramps.
func (q *QuantumDrive) TimeSkip(seconds float64) {
	switch q.state {
	case JumpReady:
		q.Recharge(seconds)
	case JumpCountdown:
		q.jumpTime -= seconds
		if q.jumpTime <= 0 {
			q.jumpTime = 0
			q.Jump()
		}
	case JumpPrewarp:
		q.Jump()
	case JumpPostwarp:
		q.setWarp(1)
		q.releaseEscorts()
		q.state = JumpReady
	}
}

// Jump requests the region transfer. The exit point lies on the far side of
// the destination from its primary body, scattered so arrivals do not stack.
func (q *QuantumDrive) Jump() {
	s := q.ship.sim
	if q.destRegion == nil || s == nil {
		q.AbortJump()
		return
	}
	if q.state == JumpCountdown {
		q.gatherEscorts()
	}
	rng := s.rng.ForSubsystem(SubsystemQuantum)
	loc := q.destLoc
	if orbit := q.destRegion.Orbit(); orbit.HasPrimary {
		away := unit(r3.Sub(orbit.Location, orbit.Primary))
		loc = r3.Scale(quantumExit+rng.Float64()*quantumJitter, away)
	}
	loc = r3.Add(loc, r3.Scale(randomRange(rng, scatterMin, scatterMax), randomDirection(rng)))

	s.requestHyper(q.ship, q.destRegion, loc, TransitionQuantum, nil, nil, q.escorts)
	q.energy = 0
	q.jumpTime = 0
	q.state = JumpPostwarp
}

// gatherEscorts fixes the formation for this jump: the dropships within
// escort range when the ramp starts, at their current offsets.
func (q *QuantumDrive) gatherEscorts() {
	q.escorts = nil
	rgn := q.ship.Region()
	if rgn == nil {
		return
	}
	for _, e := range rgn.Ships() {
		if e == q.ship || !e.IsDropship() || e.IsDead() {
			continue
		}
		offset := r3.Sub(e.Location(), q.ship.Location())
		if r3.Norm(offset) < escortRadius {
			q.escorts = append(q.escorts, escortSlot{ship: e.Handle(), offset: offset})
		}
	}
}

// Escorts returns the live dropships flying in the formation.
func (q *QuantumDrive) Escorts() []*Ship {
	var out []*Ship
	for _, slot := range q.escorts {
		if e := q.escort(slot); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (q *QuantumDrive) escort(slot escortSlot) *Ship {
	e, _ := q.ship.sim.registry.Lookup(slot.ship).(*Ship)
	if e == nil || e.IsDead() {
		return nil
	}
	return e
}

// setWarp applies a warp factor to the ship and its formation. A member no
// longer in the ship's region leaves the formation at warp 1.
func (q *QuantumDrive) setWarp(w float64) {
	q.warp = w
	q.ship.SetWarp(w)
	kept := q.escorts[:0]
	for _, slot := range q.escorts {
		e := q.escort(slot)
		if e == nil {
			continue
		}
		if e.Region() != q.ship.Region() {
			e.SetWarp(1)
			continue
		}
		e.SetWarp(w)
		kept = append(kept, slot)
	}
	q.escorts = kept
}

// releaseEscorts drops the formation, returning every member to warp 1.
func (q *QuantumDrive) releaseEscorts() {
	for _, slot := range q.escorts {
		if e := q.escort(slot); e != nil {
			e.SetWarp(1)
		}
	}
	q.escorts = nil
}
