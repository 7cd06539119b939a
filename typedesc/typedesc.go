package typedesc

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Capability flags describe collection shapes of a type, used to decide
// whether an indexed property may be synthesized as an indexer.
type Capability uint

const (
	CapList Capability = 1 << iota
	CapReadOnlyList
	CapMap
	CapReadOnlyMap
)

func (c Capability) Has(flag Capability) bool { return c&flag != 0 }

// TypeDesc is a read-only snapshot of a type and its member catalog. It is
// computed fresh for each target/wrapper pair; nothing in it is mutated after
// construction.
type TypeDesc struct {
	Type Type

	// Name is the fully-qualified display name of the type.
	Name string

	// Members holds the type's own members in declaration order.
	Members []Member

	// Bases holds the inheritance chain, nearest first. Members redeclared
	// down the chain are deduplicated by [TypeDesc.Flatten].
	Bases []*TypeDesc

	// Marshal is the at-most-one type-level conversion annotation.
	Marshal *MarshalAnnotation

	// IsValueType and IsStatic describe the declaration.
	IsValueType bool
	IsStatic    bool

	// Disposable reports whether the type implements the disposal protocol
	// (a Close entry point).
	Disposable bool

	// NativeEvents reports whether the type hosts events with registration
	// tokens natively, enabling the token-table synthesis strategy.
	NativeEvents bool

	// Caps describes collection capabilities; Key and Elem carry the
	// corresponding key/element types when a capability is set.
	Caps Capability
	Key  Type
	Elem Type
}

// Flatten returns the complete visible member catalog: own members plus
// inherited ones, deduplicated by identity key with the most-derived
// declaration winning, filtered to public accessibility, in declaration order
// (own members first, then each base in order).
func (t *TypeDesc) Flatten() []Member {
	seen := linkedhashmap.New() // identity -> Member

	add := func(members []Member) {
		for _, m := range members {
			if m.Access != Public {
				continue
			}
			key := m.Identity()
			if _, ok := seen.Get(key); ok {
				// Redeclared down the chain; the nearest declaration wins.
				continue
			}
			seen.Put(key, m)
		}
	}

	add(t.Members)
	for _, base := range t.Bases {
		for _, inherited := range base.Flatten() {
			add([]Member{inherited})
		}
	}

	flat := make([]Member, 0, seen.Size())
	for it := seen.Iterator(); it.Next(); {
		flat = append(flat, it.Value().(Member))
	}
	return flat
}
