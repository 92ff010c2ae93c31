package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestWeaponGroup_Empty(t *testing.T) {
	g := NewWeaponGroup("spare")

	assert.Nil(t, g.Selected())
	assert.Nil(t, g.Fire())
	assert.Equal(t, 0, g.Ammo())
	g.CycleWeapon()
	assert.Equal(t, 0, g.Len())
}

func TestWeaponGroup_Ammo(t *testing.T) {
	s, _ := newTestSim(t)
	require.NoError(t, s.Catalog().AddShipDesign(&ShipDesign{
		Name: "arsenal", Mass: 100, Radius: 10, Integrity: 100,
		Weapons: []WeaponMount{
			{Design: "missile", Name: "rail-1", Group: "missiles"},
			{Design: "missile", Name: "rail-2", Group: "missiles"},
			{Design: "cannon", Name: "gun", Group: "mixed"},
			{Design: "missile", Name: "rail-3", Group: "mixed"},
		},
	}))
	ship := mustShip(t, s, "arsenal", "a", 1, "alpha", zeroVec)

	missiles := ship.Group("missiles")
	require.NotNil(t, missiles)
	assert.Equal(t, 6, missiles.Ammo())
	missiles.Weapons()[0].SetAmmo(1)
	assert.Equal(t, 4, missiles.Ammo())

	assert.Equal(t, -1, ship.Group("mixed").Ammo())
	assert.Nil(t, ship.Group("none"))
}

func TestWeaponGroup_CycleAndFire(t *testing.T) {
	// GIVEN two cannon mounts in one group
	s, _ := newTestSim(t)
	require.NoError(t, s.Catalog().AddShipDesign(&ShipDesign{
		Name: "brawler", Mass: 100, Radius: 10, Integrity: 100,
		Weapons: []WeaponMount{
			{Design: "cannon", Name: "left", Group: "guns"},
			{Design: "cannon", Name: "right", Group: "guns", Offset: [3]float64{4, 0, 0}},
		},
	}))
	ship := mustShip(t, s, "brawler", "b", 1, "alpha", zeroVec)
	g := ship.Group("guns")
	require.Equal(t, 2, g.Len())

	// WHEN the player fires, cycles and fires again
	first := g.Fire()
	g.CycleWeapon()
	second := g.Fire()
	g.CycleWeapon()

	// THEN each mount fired once and the selection wrapped around
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, r3.Vec{Z: 2}, first.Location())
	assert.Equal(t, r3.Vec{X: 4, Z: 2}, second.Location())
	assert.Equal(t, g.Weapons()[0], g.Selected())
	assert.Nil(t, g.Fire(), "left mount is still reloading")
}

func TestWeaponGroup_OrdersAndTarget(t *testing.T) {
	s, _ := newTestSim(t)
	lancer := mustShip(t, s, "lancer", "l", 1, "alpha", zeroVec)
	target := mustShip(t, s, "hulk", "h", 2, "alpha", r3.Vec{Z: 1000})
	g := lancer.Group("guns")
	require.NotNil(t, g)

	g.SetFiringOrders(OrdersAuto)
	g.SetTarget(target, nil)

	for _, w := range g.Weapons() {
		assert.Equal(t, OrdersAuto, w.Orders())
		assert.Equal(t, Object(target), w.Target())
	}
	// the lance is not in the group
	assert.Equal(t, OrdersManual, lancer.Weapons()[0].Orders())
	assert.Nil(t, lancer.Weapons()[0].Target())
}
