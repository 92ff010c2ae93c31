package sim

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Handle is a weak reference to a registered object: a slot index plus the
// generation the slot had when the object was registered. A handle whose
// generation no longer matches its slot resolves to nil.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h refers to nothing.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d.%d)", h.index, h.gen)
}

// Observer is notified when an object it observes is destroyed.
//
// Update is called at most once per destruction. Implementations must drop
// every reference they hold to obj before returning. The return value tells
// the registry whether the observer keeps its registrations on other objects;
// returning false detaches it from everything.
type Observer interface {
	Update(obj Object) bool
	ObserverName() string
}

type slot struct {
	gen       uint32
	obj       Object
	observers []Observer
	notified  bool
}

// Registry owns object identity and the notify-on-destroy table. It is the
// single place that knows who observes whom; objects and observers only keep
// handles.
//
// Thread-safety: NOT thread-safe. Must be called from the simulation goroutine.
type Registry struct {
	slots    []slot
	free     []uint32
	watching map[Observer][]Handle

	notifying bool
	deferred  []func()
}

// NewRegistry returns an empty registry. Slot 0 is never handed out.
func NewRegistry() *Registry {
	return &Registry{
		slots:    make([]slot, 1),
		watching: make(map[Observer][]Handle),
	}
}

// Register assigns a fresh handle to obj and records it on obj's SimObject.
// Registering an already-registered live object returns its existing handle.
func (r *Registry) Register(obj Object) Handle {
	base := obj.Base()
	if r.Lookup(base.handle) == obj {
		return base.handle
	}
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}
	s := &r.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.obj = obj
	s.observers = nil
	s.notified = false
	h := Handle{index: idx, gen: s.gen}
	base.handle = h
	base.self = obj
	return h
}

func (r *Registry) slot(h Handle) *slot {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[h.index]
	if s.gen != h.gen || s.obj == nil {
		return nil
	}
	return s
}

// Lookup resolves h. Stale or zero handles yield nil.
func (r *Registry) Lookup(h Handle) Object {
	if s := r.slot(h); s != nil {
		return s.obj
	}
	return nil
}

// Len returns the number of live registered objects.
func (r *Registry) Len() int {
	return len(r.slots) - 1 - len(r.free)
}

// Observe registers o with the object behind h and records h in o's own
// list. Repeat calls are no-ops. During a notify pass the registration is
// applied after the pass completes.
func (r *Registry) Observe(o Observer, h Handle) {
	if o == nil || h.IsZero() {
		return
	}
	if r.notifying {
		r.deferred = append(r.deferred, func() { r.Observe(o, h) })
		return
	}
	s := r.slot(h)
	if s == nil || s.notified {
		return
	}
	if !slices.Contains(s.observers, o) {
		s.observers = append(s.observers, o)
	}
	if !slices.Contains(r.watching[o], h) {
		r.watching[o] = append(r.watching[o], h)
	}
}

// Ignore is the inverse of Observe. Both sides of the link are removed
// together.
func (r *Registry) Ignore(o Observer, h Handle) {
	if o == nil || h.IsZero() {
		return
	}
	if r.notifying {
		r.deferred = append(r.deferred, func() { r.Ignore(o, h) })
		return
	}
	if s := r.slot(h); s != nil {
		s.observers = slices.DeleteFunc(s.observers, func(x Observer) bool { return x == o })
	}
	r.unwatch(o, h)
}

func (r *Registry) unwatch(o Observer, h Handle) {
	list := slices.DeleteFunc(r.watching[o], func(x Handle) bool { return x == h })
	if len(list) == 0 {
		delete(r.watching, o)
		return
	}
	r.watching[o] = list
}

// Forget detaches o from every object it observes. Observers call this when
// they are torn down themselves.
func (r *Registry) Forget(o Observer) {
	if r.notifying {
		r.deferred = append(r.deferred, func() { r.Forget(o) })
		return
	}
	for _, h := range slices.Clone(r.watching[o]) {
		r.Ignore(o, h)
	}
	delete(r.watching, o)
}

// IsObserving reports whether o is registered with the object behind h.
func (r *Registry) IsObserving(o Observer, h Handle) bool {
	s := r.slot(h)
	return s != nil && slices.Contains(s.observers, o) && slices.Contains(r.watching[o], h)
}

// Observers returns a copy of the observers registered with h.
func (r *Registry) Observers(h Handle) []Observer {
	if s := r.slot(h); s != nil {
		return slices.Clone(s.observers)
	}
	return nil
}

// Observed returns a copy of the handles o currently observes.
func (r *Registry) Observed(o Observer) []Handle {
	return slices.Clone(r.watching[o])
}

// Notify calls Update on every observer of h exactly once and clears the
// table entry. It returns the number of observers notified.
//
// Calls made from inside an Update (Observe, Ignore, Forget, Notify on other
// objects) are queued and run once the pass finishes. Notifying the same
// object twice is a logic error: it is logged and nobody is notified again.
func (r *Registry) Notify(h Handle) int {
	s := r.slot(h)
	if s == nil {
		return 0
	}
	if s.notified {
		logrus.Warnf("double notify on sim object %s (%s)", describe(s.obj), h)
		return 0
	}
	if r.notifying {
		s.notified = true
		r.deferred = append(r.deferred, func() { r.notify(h) })
		return 0
	}
	s.notified = true
	n := r.notify(h)
	r.drain()
	return n
}

func (r *Registry) notify(h Handle) int {
	s := r.slot(h)
	if s == nil {
		return 0
	}
	obj := s.obj
	observers := s.observers
	s.observers = nil
	expected := len(observers)

	r.notifying = true
	count := 0
	for _, o := range observers {
		if !slices.Contains(r.watching[o], h) {
			// detached by an earlier observer's teardown
			continue
		}
		r.unwatch(o, h)
		if !o.Update(obj) {
			r.deferred = append(r.deferred, func() { r.Forget(o) })
		}
		count++
	}
	r.notifying = false

	if count != expected {
		logrus.Warnf("incomplete notify sim object %s - %d of %d notified", describe(obj), count, expected)
	}
	return count
}

func (r *Registry) drain() {
	for len(r.deferred) > 0 {
		ops := r.deferred
		r.deferred = nil
		for _, op := range ops {
			op()
		}
	}
}

// Release notifies the observers of h if that has not happened yet, then
// frees the slot. Every outstanding handle to the object goes stale.
func (r *Registry) Release(h Handle) {
	s := r.slot(h)
	if s == nil {
		return
	}
	if !s.notified {
		r.Notify(h)
	} else if !r.notifying {
		r.drain()
	}
	s = r.slot(h)
	if s == nil {
		return
	}
	if r.notifying {
		r.deferred = append(r.deferred, func() { r.Release(h) })
		return
	}
	s.obj = nil
	s.observers = nil
	r.free = append(r.free, h.index)
}

func describe(obj Object) string {
	if obj == nil {
		return "<nil>"
	}
	b := obj.Base()
	return fmt.Sprintf("'%s' (%s)", b.name, b.kind)
}
