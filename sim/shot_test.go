package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func mineDesign() *WeaponDesign {
	return &WeaponDesign{Name: "mine", Muzzles: [][3]float64{{0, 0, 0}}, Speed: 1, Life: 1, Damage: 50, Splash: 100, Ammo: -1}
}

func droneDesign() *WeaponDesign {
	return &WeaponDesign{Name: "drone", Muzzles: [][3]float64{{0, 0, 0}}, Speed: 300, Life: 30, Damage: 20, Drone: true, HitPoints: 20, Agility: 1, Ammo: -1}
}

func TestShot_ExecFrame_ExpiresWithoutBurst(t *testing.T) {
	s, _ := newTestSim(t)
	alpha := s.FindRegion("alpha")
	f := mustShip(t, s, "fighter", "f", 1, "alpha", zeroVec)
	shot := f.Weapons()[0].Fire()
	require.NotNil(t, shot)

	for range 6 {
		s.ExecFrame(1)
	}

	assert.True(t, shot.IsDead())
	assert.Empty(t, alpha.Shots())
	assert.False(t, hasExplosion(alpha, ExplosionShotBurst))
}

func TestShot_ExecFrame_SplashOnExpiry(t *testing.T) {
	// GIVEN a stationary mine 50 m from a hulk
	s, _ := newTestSim(t)
	alpha := s.FindRegion("alpha")
	hulk := mustShip(t, s, "hulk", "h", 2, "alpha", r3.Vec{Z: 50})
	shot := s.CreateShot(alpha, NewFrame(zeroVec), zeroVec, mineDesign(), nil)

	// WHEN its life runs out
	for range 3 {
		s.ExecFrame(0.25)
	}
	require.False(t, shot.IsDead())
	s.ExecFrame(0.25)

	// THEN it detonated and the blast reached the hulk's surface 30 m away
	assert.True(t, shot.IsDead())
	assert.True(t, hasExplosion(alpha, ExplosionShotBurst))
	assert.InDelta(t, 65, hulk.Integrity(), 1e-9)
}

func TestShot_ExecFrame_FuseDetonates(t *testing.T) {
	s, _ := newTestSim(t)
	alpha := s.FindRegion("alpha")
	d := mineDesign()
	d.Life = 10
	shot := s.CreateShot(alpha, NewFrame(zeroVec), zeroVec, d, nil)
	shot.SetFuse(0.3)

	s.ExecFrame(0.25)
	require.False(t, shot.IsDead())
	s.ExecFrame(0.25)

	assert.True(t, shot.IsDead())
	assert.True(t, hasExplosion(alpha, ExplosionShotBurst))
}

func TestShot_Detonate_Disarmed(t *testing.T) {
	s, _ := newTestSim(t)
	alpha := s.FindRegion("alpha")
	hulk := mustShip(t, s, "hulk", "h", 2, "alpha", r3.Vec{Z: 50})
	shot := s.CreateShot(alpha, NewFrame(zeroVec), zeroVec, mineDesign(), nil)

	shot.Disarm()
	shot.Detonate()
	s.ResolveSplashList()

	assert.True(t, shot.IsDead())
	assert.False(t, hasExplosion(alpha, ExplosionShotBurst))
	assert.InDelta(t, 100, hulk.Integrity(), 1e-9)
}

func TestShot_Owner_WeakReference(t *testing.T) {
	s, _ := newTestSim(t)
	alpha := s.FindRegion("alpha")
	f := mustShip(t, s, "fighter", "f", 3, "alpha", zeroVec)
	shot := f.Weapons()[0].Fire()
	require.NotNil(t, shot)
	require.Equal(t, f, shot.Owner())

	alpha.DestroyObject(f)
	alpha.purgeDead(false)

	assert.Nil(t, shot.Owner())
	assert.Equal(t, 3, shot.Team())
	assert.True(t, shot.IsHostileTo(1))
}

func TestSeeker_Guidance(t *testing.T) {
	tests := []struct {
		name   string
		design func() *WeaponDesign
		leads  bool
	}{
		{"missile leads", func() *WeaponDesign { return testWeaponDesigns()[2] }, true},
		{"drone pursues", droneDesign, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a seeker flying at a target crossing to +X
			s, _ := newTestSim(t)
			alpha := s.FindRegion("alpha")
			target := mustShip(t, s, "hulk", "h", 2, "alpha", r3.Vec{Z: 1000})
			target.SetVelocity(r3.Vec{X: 100})
			shot := s.CreateShot(alpha, NewFrame(zeroVec), r3.Vec{Z: 300}, tt.design(), nil)
			shot.SeekTarget(target, nil)
			require.True(t, shot.IsTracking(target))

			// WHEN one frame of guidance runs
			shot.ExecFrame(0.1)

			// THEN only lead pursuit turns ahead of the target; speed is kept
			assert.InDelta(t, 300, r3.Norm(shot.Velocity()), 1e-6)
			if tt.leads {
				assert.InDelta(t, 300*math.Sin(0.1), shot.Velocity().X, 1e-6)
			} else {
				assert.InDelta(t, 0, shot.Velocity().X, 1e-9)
			}
		})
	}
}

func TestSeeker_DropsTarget(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Sim, target *Ship, d *WeaponDesign)
	}{
		{"destroyed", func(s *Sim, target *Ship, _ *WeaponDesign) {
			alpha := s.FindRegion("alpha")
			alpha.DestroyObject(target)
			alpha.purgeDead(false)
		}},
		{"left the region", func(s *Sim, target *Ship, _ *WeaponDesign) {
			s.FindRegion("beta").InsertObject(target)
		}},
		{"beyond track range", func(s *Sim, _ *Ship, d *WeaponDesign) { d.MaxTrack = 500 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSim(t)
			alpha := s.FindRegion("alpha")
			target := mustShip(t, s, "hulk", "h", 2, "alpha", r3.Vec{Z: 1000})
			d := testWeaponDesigns()[2]
			shot := s.CreateShot(alpha, NewFrame(zeroVec), r3.Vec{Z: 300}, d, nil)
			shot.SeekTarget(target, nil)

			tt.setup(s, target, d)
			shot.ExecFrame(0.1)

			assert.Nil(t, shot.Target())
			assert.False(t, shot.IsTracking(target))
		})
	}
}

func TestShot_AbsorbHit(t *testing.T) {
	s, _ := newTestSim(t)
	alpha := s.FindRegion("alpha")
	drone := s.CreateShot(alpha, NewFrame(zeroVec), zeroVec, droneDesign(), nil)
	bolt := s.CreateShot(alpha, NewFrame(zeroVec), zeroVec, testWeaponDesigns()[0], nil)

	assert.Equal(t, []*Shot{drone}, alpha.Drones())
	assert.False(t, drone.absorbHit(10))
	assert.True(t, drone.absorbHit(15))
	assert.False(t, bolt.absorbHit(1000))
}

func TestShot_TimeSkip(t *testing.T) {
	s, _ := newTestSim(t)
	beta := s.FindRegion("beta")
	shot := s.CreateShot(beta, NewFrame(zeroVec), r3.Vec{Z: 100}, testWeaponDesigns()[0], nil)
	beam := s.CreateShot(beta, NewFrame(zeroVec), zeroVec, testWeaponDesigns()[3], nil)

	shot.TimeSkip(2)
	beam.TimeSkip(0.1)

	assert.Equal(t, r3.Vec{Z: 200}, shot.Location())
	assert.Equal(t, zeroVec, shot.PreviousLocation())
	assert.False(t, shot.IsDead())
	assert.True(t, beam.IsDead())

	shot.TimeSkip(10)
	assert.True(t, shot.IsDead())
}
