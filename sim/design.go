package sim

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDesign       = errors.New("invalid design")
	ErrUnknownShipDesign   = errors.New("unknown ship design")
	ErrUnknownWeaponDesign = errors.New("unknown weapon design")
	ErrDuplicateDesign     = errors.New("duplicate design")
	ErrCatalogClosed       = errors.New("catalog closed")
)

// TargetClass is a bitmask of what a weapon is allowed to engage.
type TargetClass int

const (
	TargetShips TargetClass = 1 << iota
	TargetShots
)

// Barrel release modes.
const (
	BarrelSalvo  = "salvo"  // every barrel on each trigger pull
	BarrelRotate = "rotate" // one barrel per trigger pull, round robin
)

// ValidBarrelModes is the set of recognized barrel release modes.
var ValidBarrelModes = map[string]bool{"": true, BarrelSalvo: true, BarrelRotate: true}

// WeaponDesign is an immutable, already-parsed weapon record shared by every
// weapon and shot built from it. Angles are radians, distances metres,
// times seconds.
type WeaponDesign struct {
	Name  string `yaml:"name"`
	Sound string `yaml:"sound"`

	// power sink
	Capacity     float64 `yaml:"capacity"`
	RechargeRate float64 `yaml:"recharge_rate"`
	MinCharge    float64 `yaml:"min_charge"`
	Charge       float64 `yaml:"charge"`

	// Ammo is the magazine size; -1 means unlimited.
	Ammo int `yaml:"ammo"`

	Muzzles     [][3]float64 `yaml:"muzzles"`
	BarrelMode  string       `yaml:"barrel_mode"`
	RefireDelay float64      `yaml:"refire_delay"`
	SalvoDelay  float64      `yaml:"salvo_delay"`
	RippleCount int          `yaml:"ripple_count"`

	// shot
	Speed     float64 `yaml:"speed"`
	Life      float64 `yaml:"life"`
	Damage    float64 `yaml:"damage"`
	Splash    float64 `yaml:"splash_radius"`
	Radius    float64 `yaml:"shot_radius"`
	HitPoints float64 `yaml:"hit_points"`
	Beam      bool    `yaml:"beam"`
	Guided    bool    `yaml:"guided"`
	Drone     bool    `yaml:"drone"`
	Flak      bool    `yaml:"flak"`
	Agility   float64 `yaml:"agility"`

	// aiming
	Turret     bool        `yaml:"turret"`
	AimAzMin   float64     `yaml:"aim_az_min"`
	AimAzMax   float64     `yaml:"aim_az_max"`
	AimElMin   float64     `yaml:"aim_el_min"`
	AimElMax   float64     `yaml:"aim_el_max"`
	AimAzRest  float64     `yaml:"aim_az_rest"`
	AimElRest  float64     `yaml:"aim_el_rest"`
	SlewRate   float64     `yaml:"slew_rate"`
	FiringCone float64     `yaml:"firing_cone"`
	MinRange   float64     `yaml:"min_range"`
	MaxRange   float64     `yaml:"max_range"`
	MaxTrack   float64     `yaml:"max_track"`
	Targets    TargetClass `yaml:"targets"`
}

// ShotType reports the object type shots of this design are created as.
func (d *WeaponDesign) ShotType() ObjectType {
	if d.Drone {
		return TypeDrone
	}
	return TypeShot
}

// CanTarget reports whether the design may engage objects of class c.
func (d *WeaponDesign) CanTarget(c TargetClass) bool {
	targets := d.Targets
	if targets == 0 {
		targets = TargetShips
	}
	return targets&c != 0
}

// UnmarshalYAML decodes a weapon design record. A record without an ammo
// key gets an unlimited magazine.
func (d *WeaponDesign) UnmarshalYAML(n *yaml.Node) error {
	type record WeaponDesign
	r := record{Ammo: -1}
	if err := n.Decode(&r); err != nil {
		return err
	}
	*d = WeaponDesign(r)
	return nil
}

// Validate checks ranges and mode names. A weapon built from a design that
// fails validation is marked invalid and never fires.
func (d *WeaponDesign) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: weapon design has no name", ErrInvalidDesign)
	}
	if !ValidBarrelModes[d.BarrelMode] {
		return fmt.Errorf("%w: weapon %q: unknown barrel mode %q", ErrInvalidDesign, d.Name, d.BarrelMode)
	}
	if len(d.Muzzles) == 0 {
		return fmt.Errorf("%w: weapon %q has no muzzles", ErrInvalidDesign, d.Name)
	}
	if d.Ammo < -1 || d.Ammo == 0 {
		return fmt.Errorf("%w: weapon %q: ammo must be positive or -1, got %d", ErrInvalidDesign, d.Name, d.Ammo)
	}
	for name, v := range map[string]float64{
		"capacity": d.Capacity, "recharge_rate": d.RechargeRate, "min_charge": d.MinCharge,
		"charge": d.Charge, "refire_delay": d.RefireDelay, "salvo_delay": d.SalvoDelay,
		"speed": d.Speed, "damage": d.Damage, "slew_rate": d.SlewRate, "max_range": d.MaxRange,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: weapon %q: %s must be non-negative, got %f", ErrInvalidDesign, d.Name, name, v)
		}
	}
	if d.RippleCount < 0 {
		return fmt.Errorf("%w: weapon %q: ripple_count must be non-negative", ErrInvalidDesign, d.Name)
	}
	if d.AimAzMin > d.AimAzMax || d.AimElMin > d.AimElMax {
		return fmt.Errorf("%w: weapon %q: aim basket min exceeds max", ErrInvalidDesign, d.Name)
	}
	if d.Life <= 0 {
		return fmt.Errorf("%w: weapon %q: shot life must be positive", ErrInvalidDesign, d.Name)
	}
	if !d.Beam && d.Speed == 0 {
		return fmt.Errorf("%w: weapon %q: non-beam weapon needs a muzzle speed", ErrInvalidDesign, d.Name)
	}
	return nil
}

// WeaponMount places a weapon design on a hull.
type WeaponMount struct {
	Design string     `yaml:"design"`
	Name   string     `yaml:"name"`
	Offset [3]float64 `yaml:"offset"`
	Group  string     `yaml:"group"`
}

// DriveDesign configures a quantum drive.
type DriveDesign struct {
	Capacity     float64 `yaml:"capacity"`
	RechargeRate float64 `yaml:"recharge_rate"`
	Countdown    float64 `yaml:"countdown"`
}

// FarcasterDesign configures a farcaster gate.
type FarcasterDesign struct {
	Capacity     float64 `yaml:"capacity"`
	RechargeRate float64 `yaml:"recharge_rate"`
}

// ShieldDesign configures a deflector.
type ShieldDesign struct {
	Capacity     float64 `yaml:"capacity"`
	RechargeRate float64 `yaml:"recharge_rate"`
}

// ShipDesign is an immutable hull record.
type ShipDesign struct {
	Name        string  `yaml:"name"`
	Class       string  `yaml:"class"`
	Mass        float64 `yaml:"mass"`
	Radius      float64 `yaml:"radius"`
	Integrity   float64 `yaml:"integrity"`
	MaxAccel    float64 `yaml:"max_accel"`
	TurnRate    float64 `yaml:"turn_rate"`
	SensorRange float64 `yaml:"sensor_range"`
	Dropship    bool    `yaml:"dropship"`
	Static      bool    `yaml:"static"`

	Weapons   []WeaponMount    `yaml:"weapons"`
	Drive     *DriveDesign     `yaml:"quantum_drive"`
	Farcaster *FarcasterDesign `yaml:"farcaster"`
	Shield    *ShieldDesign    `yaml:"shield"`
}

// Validate checks the hull record on its own; weapon references are checked
// by the Catalog.
func (d *ShipDesign) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: ship design has no name", ErrInvalidDesign)
	}
	if d.Mass <= 0 {
		return fmt.Errorf("%w: ship %q: mass must be positive", ErrInvalidDesign, d.Name)
	}
	if d.Radius <= 0 {
		return fmt.Errorf("%w: ship %q: radius must be positive", ErrInvalidDesign, d.Name)
	}
	if d.Integrity <= 0 {
		return fmt.Errorf("%w: ship %q: integrity must be positive", ErrInvalidDesign, d.Name)
	}
	if d.MaxAccel < 0 || d.TurnRate < 0 || d.SensorRange < 0 {
		return fmt.Errorf("%w: ship %q: max_accel, turn_rate and sensor_range must be non-negative", ErrInvalidDesign, d.Name)
	}
	if d.Drive != nil && d.Drive.Capacity <= 0 {
		return fmt.Errorf("%w: ship %q: quantum drive capacity must be positive", ErrInvalidDesign, d.Name)
	}
	if d.Farcaster != nil && d.Farcaster.Capacity <= 0 {
		return fmt.Errorf("%w: ship %q: farcaster capacity must be positive", ErrInvalidDesign, d.Name)
	}
	return nil
}
