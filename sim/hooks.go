package sim

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Scene is the visual layer. Objects are attached exactly once when they
// enter an active region and detached once when they leave it.
type Scene interface {
	AddGraphic(obj Object)
	DelGraphic(obj Object)
}

// Sound triggers fire-and-forget effects. The kernel never tracks playback.
type Sound interface {
	Play(name string, loc r3.Vec)
}

// NetHook lets a replication layer mirror firing decisions between peers.
// WeaponFire is called when a weapon's trigger is accepted; WeaponRelease
// when a guided munition leaves the rail with a target assigned.
type NetHook interface {
	WeaponFire(w *Weapon, target Object, subtarget System)
	WeaponRelease(w *Weapon, shot *Shot)
}

// Recorder receives kernel counters. sim/metrics provides a Prometheus
// implementation.
type Recorder interface {
	FrameExecuted(d time.Duration)
	ShotFired(weapon string)
	HyperJumpResolved(transition string)
	ObjectDestroyed(kind string)
	RegionPopulation(region string, ships, shots int)
}

type nopScene struct{}

func (nopScene) AddGraphic(Object) {}
func (nopScene) DelGraphic(Object) {}

type nopSound struct{}

func (nopSound) Play(string, r3.Vec) {}

type nopNet struct{}

func (nopNet) WeaponFire(*Weapon, Object, System) {}
func (nopNet) WeaponRelease(*Weapon, *Shot)       {}

type nopRecorder struct{}

func (nopRecorder) FrameExecuted(time.Duration)       {}
func (nopRecorder) ShotFired(string)                  {}
func (nopRecorder) HyperJumpResolved(string)          {}
func (nopRecorder) ObjectDestroyed(string)            {}
func (nopRecorder) RegionPopulation(string, int, int) {}
