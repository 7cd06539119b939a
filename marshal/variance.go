package marshal

import (
	"go/types"

	"github.com/wherewhere/wrapgen/typedesc"
)

// Variance is the direction of required subtype compatibility between a
// native type and the type it stands in for.
type Variance int

const (
	// VarianceNone requires type identity (modulo open generic shapes).
	VarianceNone Variance = iota

	// VarianceOut is covariant: a result position.
	VarianceOut

	// VarianceIn is contravariant: a parameter position.
	VarianceIn
)

func (v Variance) String() string {
	switch v {
	case VarianceNone:
		return "none"
	case VarianceOut:
		return "out"
	case VarianceIn:
		return "in"
	}
	return "variance(?)"
}

// Negate flips the direction: Out becomes In and vice versa, None stays.
func (v Variance) Negate() Variance {
	switch v {
	case VarianceOut:
		return VarianceIn
	case VarianceIn:
		return VarianceOut
	}
	return VarianceNone
}

// Compatible reports whether original may stand in for against under the
// given variance. This is the single subtype predicate shared by member
// matching and marshal resolution.
//
// VarianceNone compares by identity, except that two generic instantiations
// are treated as identical when either side is still an open shape and both
// share the same generic origin; this lets generically defined adapters match
// any instantiation.
func Compatible(original, against typedesc.Type, v Variance) bool {
	switch v {
	case VarianceNone:
		return typedesc.SameOpenShape(original, against)
	case VarianceOut:
		return subtypeOf(original, against)
	case VarianceIn:
		return subtypeOf(against, original)
	}
	return false
}

// subtypeOf reports whether sub is super, a subtype of it, or an implementor
// of it.
func subtypeOf(sub, super typedesc.Type) bool {
	if typedesc.SameOpenShape(sub, super) {
		return true
	}
	if sub.IsZero() || super.IsZero() {
		return false
	}

	if super.IsInterface() {
		if types.Implements(sub.T, super.Interface) {
			return true
		}
		// Pointer receivers satisfy through the pointer type.
		if !sub.IsPointer() && types.Implements(types.NewPointer(sub.T), super.Interface) {
			return true
		}
	}

	return types.AssignableTo(sub.T, super.T)
}
