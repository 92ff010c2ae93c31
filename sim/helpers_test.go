package sim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var zeroVec = r3.Vec{}

// testWeaponDesigns covers every shot family used by the tests.
func testWeaponDesigns() []*WeaponDesign {
	return []*WeaponDesign{
		{
			Name: "cannon", Capacity: 100, RechargeRate: 10, MinCharge: 10, Charge: 10,
			Ammo: -1, Muzzles: [][3]float64{{0, 0, 2}}, RefireDelay: 1,
			Speed: 1000, Life: 5, Damage: 10,
			AimAzMin: -0.5, AimAzMax: 0.5, AimElMin: -0.5, AimElMax: 0.5,
			MaxRange: 5000,
		},
		{
			Name: "turret", Capacity: 100, RechargeRate: 10, Charge: 1,
			Ammo: -1, Muzzles: [][3]float64{{0, 0, 1}}, RefireDelay: 0.5,
			Speed: 2000, Life: 2, Damage: 5, Turret: true, SlewRate: 1,
			AimAzMin: -math.Pi / 2, AimAzMax: math.Pi / 2, AimElMin: -0.5, AimElMax: 1,
			MaxRange: 5000, Targets: TargetShips | TargetShots,
		},
		{
			Name: "missile", Capacity: 100, RechargeRate: 10, Charge: 10,
			Ammo: 3, Muzzles: [][3]float64{{0, 0, 2}}, RefireDelay: 0,
			Speed: 300, Life: 30, Damage: 200, Guided: true, Agility: 1,
		},
		{
			Name: "beam", Capacity: 100, RechargeRate: 10, Charge: 20,
			Ammo: -1, Muzzles: [][3]float64{{0, 0, 2}}, RefireDelay: 0.5,
			Life: 1, Damage: 50, Beam: true, MaxRange: 3000,
			AimAzMin: -0.1, AimAzMax: 0.1, AimElMin: -0.1, AimElMax: 0.1,
		},
		{
			Name: "twin", Capacity: 100, RechargeRate: 10, Charge: 1,
			Ammo: -1, Muzzles: [][3]float64{{-1, 0, 2}, {1, 0, 2}}, BarrelMode: BarrelRotate,
			RefireDelay: 0.2, SalvoDelay: 1, Speed: 1000, Life: 5, Damage: 5,
			AimAzMin: -0.5, AimAzMax: 0.5, AimElMin: -0.5, AimElMax: 0.5,
		},
	}
}

func testShipDesigns() []*ShipDesign {
	return []*ShipDesign{
		{Name: "fighter", Mass: 10, Radius: 5, Integrity: 100, MaxAccel: 50, TurnRate: 1,
			Weapons: []WeaponMount{{Design: "cannon", Group: "guns"}}},
		{Name: "gunboat", Mass: 100, Radius: 10, Integrity: 500,
			Weapons: []WeaponMount{{Design: "turret", Name: "dorsal"}}},
		{Name: "bomber", Mass: 50, Radius: 8, Integrity: 200,
			Weapons: []WeaponMount{{Design: "missile", Name: "rail"}}},
		{Name: "lancer", Mass: 50, Radius: 8, Integrity: 200,
			Weapons: []WeaponMount{{Design: "beam", Name: "lance"}, {Design: "twin", Name: "twin", Group: "guns"}}},
		{Name: "hulk", Mass: 1000, Radius: 20, Integrity: 100},
		{Name: "jumper", Mass: 1000, Radius: 20, Integrity: 1000,
			Drive: &DriveDesign{Capacity: 100, RechargeRate: 10, Countdown: 10}},
		{Name: "escort", Mass: 10, Radius: 5, Integrity: 50, Dropship: true},
		{Name: "gate", Mass: 1e6, Radius: 100, Integrity: 1e5, Static: true,
			Farcaster: &FarcasterDesign{Capacity: 100, RechargeRate: 50}},
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	for _, d := range testWeaponDesigns() {
		require.NoError(t, c.AddWeaponDesign(d))
	}
	for _, d := range testShipDesigns() {
		require.NoError(t, c.AddShipDesign(d))
	}
	return c
}

// newTestSim returns a Sim on a manual clock with one active region named
// "alpha" and one inactive region named "beta".
func newTestSim(t *testing.T) (*Sim, *ManualClock) {
	t.Helper()
	clock := NewManualClock(time.Unix(1000, 0))
	s := NewSim(Config{Catalog: testCatalog(t), Seed: 42, Clock: clock})
	alpha, err := s.AddRegion("alpha", Orbit{})
	require.NoError(t, err)
	alpha.Activate(s.scene)
	s.active = alpha
	_, err = s.AddRegion("beta", Orbit{Location: r3.Vec{X: 1e9}})
	require.NoError(t, err)
	return s, clock
}

func mustShip(t *testing.T, s *Sim, design, name string, team int, rgn string, loc r3.Vec) *Ship {
	t.Helper()
	ship, err := s.CreateShip(design, name, team, s.FindRegion(rgn), loc)
	require.NoError(t, err)
	return ship
}

// recordingObserver counts notifications per object name.
type recordingObserver struct {
	name  string
	seen  map[string]int
	keep  bool
	onHit func(obj Object)
}

func newRecordingObserver(name string) *recordingObserver {
	return &recordingObserver{name: name, seen: make(map[string]int), keep: true}
}

func (o *recordingObserver) Update(obj Object) bool {
	o.seen[obj.Base().Name()]++
	if o.onHit != nil {
		o.onHit(obj)
	}
	return o.keep
}

func (o *recordingObserver) ObserverName() string { return o.name }

// countingScene tracks attach and detach calls per object.
type countingScene struct {
	added   map[Object]int
	removed map[Object]int
}

func newCountingScene() *countingScene {
	return &countingScene{added: make(map[Object]int), removed: make(map[Object]int)}
}

func (c *countingScene) AddGraphic(obj Object) { c.added[obj]++ }
func (c *countingScene) DelGraphic(obj Object) { c.removed[obj]++ }

// recordingNet logs NetHook calls in order as "fire:<weapon>" and
// "release:<weapon>".
type recordingNet struct {
	calls []string
}

func (n *recordingNet) WeaponFire(w *Weapon, _ Object, _ System) {
	n.calls = append(n.calls, "fire:"+w.Name())
}

func (n *recordingNet) WeaponRelease(w *Weapon, _ *Shot) {
	n.calls = append(n.calls, "release:"+w.Name())
}
