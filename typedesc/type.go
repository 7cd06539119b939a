package typedesc

import (
	"go/token"
	"go/types"
)

// Type describes a type information. It holds information of [types.Type] that
// is necessary from wrapgen's perspective.
type Type struct {
	T types.Type

	Basic     *types.Basic
	Slice     *types.Slice
	Map       *types.Map
	Struct    *types.Struct
	Interface *types.Interface
	Pointer   *types.Pointer
	Signature *types.Signature
	Named     *types.Named

	Elem *Type
	Key  *Type
}

func (t Type) Type() types.Type { return t.T }
func (t Type) String() string {
	if t.T == nil {
		return "<nil>"
	}
	return t.T.String()
}

func (t Type) IsZero() bool      { return t.T == nil }
func (t Type) IsBasic() bool     { return t.Basic != nil }
func (t Type) IsSlice() bool     { return t.Slice != nil }
func (t Type) IsMap() bool       { return t.Map != nil }
func (t Type) IsStruct() bool    { return t.Struct != nil }
func (t Type) IsInterface() bool { return t.Interface != nil }
func (t Type) IsPointer() bool   { return t.Pointer != nil }
func (t Type) IsFunc() bool      { return t.Signature != nil }
func (t Type) IsNamed() bool     { return t.Named != nil }

func (t Type) IsError() bool { return t.T == types.Universe.Lookup("error").Type() }

func (t Type) Identical(u Type) bool { return types.Identical(t.T, u.T) }

// TypeOf inspects the given type and returns a new [Type].
func TypeOf(t types.Type) Type {
	switch tt := types.Unalias(t).(type) {
	case *types.Basic:
		return Type{T: t, Basic: tt}
	case *types.Slice:
		elem := TypeOf(tt.Elem())
		return Type{T: t, Slice: tt, Elem: &elem}
	case *types.Map:
		elem := TypeOf(tt.Elem())
		key := TypeOf(tt.Key())
		return Type{T: t, Map: tt, Elem: &elem, Key: &key}
	case *types.Struct:
		return Type{T: t, Struct: tt}
	case *types.Interface:
		return Type{T: t, Interface: tt}
	case *types.Pointer:
		elem := TypeOf(tt.Elem())
		return Type{T: t, Pointer: tt, Elem: &elem}
	case *types.Signature:
		return Type{T: t, Signature: tt}
	case *types.Named:
		info := TypeOf(tt.Underlying())
		info.T = t
		info.Named = tt
		return info
	}
	// Arrays, channels, type parameters and the rest only need the bare type
	// from this engine's perspective.
	return Type{T: t}
}

// Pkg returns the package where the type is defined. It returns nil if the
// type is not a named type.
func (t Type) Pkg() *types.Package {
	if !t.IsNamed() {
		return nil
	}
	return t.Named.Obj().Pkg()
}

// Pos returns the position where the type is defined. It returns token.NoPos
// if the type is not a named type.
func (t Type) Pos() token.Pos {
	if t.IsNamed() {
		return t.Named.Obj().Pos()
	}
	if t.IsPointer() {
		return t.Deref().Pos()
	}
	return token.NoPos
}

// Deref returns the element type if the type is a pointer. For type of *X, it
// returns type of X. If the type is not a pointer, it returns the type itself.
func (t Type) Deref() Type {
	if t.IsPointer() {
		return (*t.Elem).Deref()
	}
	return t
}

// IsOpenShape reports whether the type is a generic shape that is not fully
// instantiated: a named type with type parameters whose arguments are absent
// or are themselves open.
func (t Type) IsOpenShape() bool {
	if !t.IsNamed() {
		return isOpen(t.T)
	}

	if t.Named.TypeParams().Len() == 0 {
		return false
	}

	targs := t.Named.TypeArgs()
	if targs.Len() == 0 {
		return true
	}

	for i := 0; i < targs.Len(); i++ {
		if isOpen(targs.At(i)) {
			return true
		}
	}
	return false
}

func isOpen(t types.Type) bool {
	switch t := types.Unalias(t).(type) {
	case *types.TypeParam:
		return true
	case *types.Named:
		return TypeOf(t).IsOpenShape()
	case *types.Slice:
		return isOpen(t.Elem())
	case *types.Map:
		return isOpen(t.Key()) || isOpen(t.Elem())
	case *types.Pointer:
		return isOpen(t.Elem())
	}
	return false
}

// SameOpenShape reports whether t and u denote the same named type when at
// least one side is still an open generic shape. Two instantiations of the
// same generic origin compare equal here even if their type arguments differ,
// as long as one side's arguments are all open type parameters. For closed
// types it falls back to [types.Identical].
//
// This predicate is intentionally separate from general type equality so that
// unrelated generic instantiations are never conflated elsewhere.
func SameOpenShape(t, u Type) bool {
	if t.IsNamed() && u.IsNamed() && (t.IsOpenShape() || u.IsOpenShape()) {
		return t.Named.Origin().Obj() == u.Named.Origin().Obj()
	}
	return t.Identical(u)
}

// TypeArgs returns the type arguments of a named instantiation, or nil.
func (t Type) TypeArgs() []types.Type {
	if !t.IsNamed() {
		return nil
	}
	targs := t.Named.TypeArgs()
	if targs == nil || targs.Len() == 0 {
		return nil
	}
	out := make([]types.Type, targs.Len())
	for i := range out {
		out[i] = targs.At(i)
	}
	return out
}

// Instantiate substitutes the given type arguments into an open generic shape.
// Closed types are returned unchanged. It returns false when instantiation is
// impossible, e.g. mismatched arity.
func (t Type) Instantiate(targs []types.Type) (Type, bool) {
	if !t.IsNamed() || !t.IsOpenShape() {
		return t, true
	}

	origin := t.Named.Origin()
	if origin.TypeParams().Len() != len(targs) {
		return Type{}, false
	}

	inst, err := types.Instantiate(nil, origin, targs, false)
	if err != nil {
		return Type{}, false
	}
	return TypeOf(inst), true
}
