package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transition is the kind of region transfer a jump uses.
type Transition int

const (
	TransitionQuantum Transition = iota
	TransitionFarcaster
)

func (t Transition) String() string {
	switch t {
	case TransitionQuantum:
		return "quantum"
	case TransitionFarcaster:
		return "farcaster"
	}
	return fmt.Sprintf("transition(%d)", int(t))
}

// SimHyper is a queued region transfer. It observes the jumping ship so a
// ship destroyed before the queue is resolved simply drops out.
type SimHyper struct {
	registry   *Registry
	ship       Handle
	name       string
	region     *SimRegion
	loc        r3.Vec
	transition Transition
	from       *Farcaster
	to         *Farcaster
	escorts    []escortSlot
}

// escortSlot is a dropship carried by a quantum jump at a fixed offset from
// the jumping ship.
type escortSlot struct {
	ship   Handle
	offset r3.Vec
}

func (h *SimHyper) Region() *SimRegion     { return h.region }
func (h *SimHyper) Location() r3.Vec       { return h.loc }
func (h *SimHyper) Transition() Transition { return h.transition }
func (h *SimHyper) From() *Farcaster       { return h.from }
func (h *SimHyper) To() *Farcaster         { return h.to }

// Ship resolves the jumping ship; nil once it is destroyed.
func (h *SimHyper) Ship() *Ship {
	ship, _ := h.registry.Lookup(h.ship).(*Ship)
	return ship
}

func (h *SimHyper) Update(obj Object) bool {
	if obj.Base().Handle() == h.ship {
		h.ship = Handle{}
	}
	return true
}

func (h *SimHyper) ObserverName() string { return "SimHyper(" + h.name + ")" }

// SimSplash is queued area damage around a detonation.
type SimSplash struct {
	region *SimRegion
	loc    r3.Vec
	damage float64
	radius float64
	owner  Handle
}
