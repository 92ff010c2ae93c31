package sim

// WeaponGroup is a named set of weapons on one ship that take orders and
// targets together. The player cycles through the group for "selected"
// weapon fire.
type WeaponGroup struct {
	name     string
	weapons  []*Weapon
	selected int
}

// NewWeaponGroup returns an empty group.
func NewWeaponGroup(name string) *WeaponGroup {
	return &WeaponGroup{name: name}
}

func (g *WeaponGroup) Name() string       { return g.name }
func (g *WeaponGroup) Weapons() []*Weapon { return g.weapons }
func (g *WeaponGroup) Len() int           { return len(g.weapons) }

// Add appends w to the group.
func (g *WeaponGroup) Add(w *Weapon) { g.weapons = append(g.weapons, w) }

// Ammo is the rounds left across the group; -1 if any member is unlimited.
func (g *WeaponGroup) Ammo() int {
	total := 0
	for _, w := range g.weapons {
		if w.Ammo() < 0 {
			return -1
		}
		total += w.Ammo()
	}
	return total
}

// SetFiringOrders sets the orders for every member.
func (g *WeaponGroup) SetFiringOrders(o Orders) {
	for _, w := range g.weapons {
		w.SetFiringOrders(o)
	}
}

// SetTarget assigns a target to every member.
func (g *WeaponGroup) SetTarget(obj Object, subtarget System) {
	for _, w := range g.weapons {
		w.SetTarget(obj, subtarget)
	}
}

// Selected is the weapon the group fires next, or nil for an empty group.
func (g *WeaponGroup) Selected() *Weapon {
	if len(g.weapons) == 0 {
		return nil
	}
	return g.weapons[g.selected]
}

// CycleWeapon advances the selection.
func (g *WeaponGroup) CycleWeapon() {
	if len(g.weapons) > 0 {
		g.selected = (g.selected + 1) % len(g.weapons)
	}
}

// Fire triggers the selected weapon and returns its shot, if any.
func (g *WeaponGroup) Fire() *Shot {
	if w := g.Selected(); w != nil {
		return w.Fire()
	}
	return nil
}
