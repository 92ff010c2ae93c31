package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mission is a complete scenario: the design catalog, the regions and the
// initial placement of every ship, loadable from a YAML file.
type Mission struct {
	Name      string         `yaml:"name"`
	Seed      int64          `yaml:"seed"`
	Weapons   []WeaponDesign `yaml:"weapon_designs"`
	Designs   []ShipDesign   `yaml:"ship_designs"`
	Regions   []RegionSpec   `yaml:"regions"`
	Ships     []ShipSpec     `yaml:"ships"`
	Asteroids []AsteroidSpec `yaml:"asteroids"`
}

// RegionSpec places a region. Primary is the orbited body, if any.
type RegionSpec struct {
	Name     string      `yaml:"name"`
	Location [3]float64  `yaml:"location"`
	Primary  *[3]float64 `yaml:"primary"`
	Active   bool        `yaml:"active"`
}

// ShipSpec places one ship and its initial orders.
type ShipSpec struct {
	Name     string      `yaml:"name"`
	Design   string      `yaml:"design"`
	Region   string      `yaml:"region"`
	Team     int         `yaml:"team"`
	Location [3]float64  `yaml:"location"`
	Velocity [3]float64  `yaml:"velocity"`
	LookAt   *[3]float64 `yaml:"look_at"`
	Orders   string      `yaml:"orders"`
	Player   bool        `yaml:"player"`

	// Ward names the ship this one escorts.
	Ward string `yaml:"ward"`
	// Target names the ship this one pursues to Standoff range.
	Target   string  `yaml:"target"`
	Standoff float64 `yaml:"standoff"`

	QuantumDestination   *QuantumSpec `yaml:"quantum_destination"`
	FarcasterDestination string       `yaml:"farcaster_destination"`
}

// QuantumSpec sets a quantum drive destination; Engage starts the countdown
// when the mission loads.
type QuantumSpec struct {
	Region   string     `yaml:"region"`
	Location [3]float64 `yaml:"location"`
	Engage   bool       `yaml:"engage"`
}

// AsteroidSpec places a static collider.
type AsteroidSpec struct {
	Name     string     `yaml:"name"`
	Region   string     `yaml:"region"`
	Location [3]float64 `yaml:"location"`
	Radius   float64    `yaml:"radius"`
	Mass     float64    `yaml:"mass"`
}

// LoadMissionFile reads and parses a YAML mission file.
func LoadMissionFile(path string) (*Mission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mission: %w", err)
	}
	var m Mission
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing mission: %w", err)
	}
	return &m, nil
}

// BuildCatalog registers every design in the mission into a new Catalog.
func (m *Mission) BuildCatalog() (*Catalog, error) {
	c := NewCatalog()
	for i := range m.Weapons {
		if err := c.AddWeaponDesign(&m.Weapons[i]); err != nil {
			return nil, err
		}
	}
	for i := range m.Designs {
		if err := c.AddShipDesign(&m.Designs[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Validate checks names and cross references. Design records themselves
// are checked by BuildCatalog.
func (m *Mission) Validate() error {
	regions := make(map[string]bool, len(m.Regions))
	for _, r := range m.Regions {
		if r.Name == "" {
			return fmt.Errorf("region with empty name")
		}
		if regions[r.Name] {
			return fmt.Errorf("duplicate region %q", r.Name)
		}
		regions[r.Name] = true
	}

	designs := make(map[string]bool, len(m.Designs))
	for _, d := range m.Designs {
		designs[d.Name] = true
	}

	ships := make(map[string]bool, len(m.Ships))
	players := 0
	for _, s := range m.Ships {
		if s.Name == "" {
			return fmt.Errorf("ship with empty name")
		}
		if ships[s.Name] {
			return fmt.Errorf("duplicate ship %q", s.Name)
		}
		ships[s.Name] = true
		if !designs[s.Design] {
			return fmt.Errorf("ship %q: %w %q", s.Name, ErrUnknownShipDesign, s.Design)
		}
		if !regions[s.Region] {
			return fmt.Errorf("ship %q: %w %q", s.Name, ErrUnknownRegion, s.Region)
		}
		if s.Team < 0 || s.Team >= NumTeams {
			return fmt.Errorf("ship %q: team must be in [0, %d), got %d", s.Name, NumTeams, s.Team)
		}
		if s.Orders != "" && !ValidOrders[s.Orders] {
			return fmt.Errorf("ship %q: unknown orders %q", s.Name, s.Orders)
		}
		if s.Standoff < 0 {
			return fmt.Errorf("ship %q: standoff must be non-negative", s.Name)
		}
		if q := s.QuantumDestination; q != nil && !regions[q.Region] {
			return fmt.Errorf("ship %q: quantum destination: %w %q", s.Name, ErrUnknownRegion, q.Region)
		}
		if s.Player {
			players++
		}
	}
	if players > 1 {
		return fmt.Errorf("%d ships marked as player, at most one allowed", players)
	}

	for _, s := range m.Ships {
		for field, ref := range map[string]string{"ward": s.Ward, "target": s.Target, "farcaster_destination": s.FarcasterDestination} {
			if ref == "" {
				continue
			}
			if !ships[ref] {
				return fmt.Errorf("ship %q: %s references unknown ship %q", s.Name, field, ref)
			}
			if ref == s.Name {
				return fmt.Errorf("ship %q: %s references itself", s.Name, field)
			}
		}
	}

	for _, a := range m.Asteroids {
		if !regions[a.Region] {
			return fmt.Errorf("asteroid %q: %w %q", a.Name, ErrUnknownRegion, a.Region)
		}
		if a.Radius <= 0 {
			return fmt.Errorf("asteroid %q: radius must be positive", a.Name)
		}
	}
	return nil
}

var targetClassNames = map[string]TargetClass{"ships": TargetShips, "shots": TargetShots}

// UnmarshalYAML accepts a single class name or a list of them.
func (t *TargetClass) UnmarshalYAML(value *yaml.Node) error {
	var names []string
	switch value.Kind {
	case yaml.ScalarNode:
		names = []string{value.Value}
	case yaml.SequenceNode:
		if err := value.Decode(&names); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: targets must be a name or a list of names", value.Line)
	}
	var c TargetClass
	for _, n := range names {
		v, ok := targetClassNames[n]
		if !ok {
			return fmt.Errorf("line %d: unknown target class %q; valid options: ships, shots", value.Line, n)
		}
		c |= v
	}
	*t = c
	return nil
}
