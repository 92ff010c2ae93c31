package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Catalog holds the design records a Sim builds objects from. It is created
// by the caller, handed to NewSim through Config, and torn down with Close.
type Catalog struct {
	weapons map[string]*WeaponDesign
	ships   map[string]*ShipDesign
	closed  bool
}

// NewCatalog returns an empty, open catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		weapons: make(map[string]*WeaponDesign),
		ships:   make(map[string]*ShipDesign),
	}
}

// AddWeaponDesign validates and stores d. Designs are immutable once added.
func (c *Catalog) AddWeaponDesign(d *WeaponDesign) error {
	if c.closed {
		return ErrCatalogClosed
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := c.weapons[d.Name]; ok {
		return fmt.Errorf("%w: weapon %q", ErrDuplicateDesign, d.Name)
	}
	c.weapons[d.Name] = d
	return nil
}

// AddShipDesign validates d and every weapon it mounts.
func (c *Catalog) AddShipDesign(d *ShipDesign) error {
	if c.closed {
		return ErrCatalogClosed
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := c.ships[d.Name]; ok {
		return fmt.Errorf("%w: ship %q", ErrDuplicateDesign, d.Name)
	}
	for _, m := range d.Weapons {
		if _, ok := c.weapons[m.Design]; !ok {
			return fmt.Errorf("ship %q mounts %q: %w", d.Name, m.Design, ErrUnknownWeaponDesign)
		}
	}
	c.ships[d.Name] = d
	return nil
}

// WeaponDesign looks up a weapon record by name.
func (c *Catalog) WeaponDesign(name string) (*WeaponDesign, bool) {
	d, ok := c.weapons[name]
	return d, ok
}

// ShipDesign looks up a hull record by name.
func (c *Catalog) ShipDesign(name string) (*ShipDesign, bool) {
	d, ok := c.ships[name]
	return d, ok
}

// ShipDesignNames returns the registered hull names, sorted.
func (c *Catalog) ShipDesignNames() []string {
	names := make([]string, 0, len(c.ships))
	for n := range c.ships {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close drops every record. Objects already built keep their design
// pointers; new lookups fail.
func (c *Catalog) Close() {
	if c.closed {
		return
	}
	logrus.Debugf("closing catalog: %d ship designs, %d weapon designs", len(c.ships), len(c.weapons))
	c.closed = true
	c.weapons = map[string]*WeaponDesign{}
	c.ships = map[string]*ShipDesign{}
}
