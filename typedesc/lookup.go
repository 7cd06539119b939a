package typedesc

import (
	"iter"

	"golang.org/x/tools/go/types/typeutil"
)

// TypeMap indexes values by type identity. Unlike a plain map keyed by
// types.Type, structurally identical types hash to the same entry.
type TypeMap[V any] struct {
	m *typeutil.Map
}

// NewTypeMap creates a new [TypeMap].
func NewTypeMap[V any]() *TypeMap[V] {
	m := new(typeutil.Map)
	m.SetHasher(typeutil.MakeHasher())
	return &TypeMap[V]{m}
}

// Put registers a value for the given type. It reports whether the type was
// not present before.
func (l *TypeMap[V]) Put(t Type, v V) bool {
	return l.m.Set(t.T, v) == nil
}

// Get finds the value registered for the given type.
func (l *TypeMap[V]) Get(t Type) (V, bool) {
	if l == nil {
		return *new(V), false
	}
	v, ok := l.m.At(t.T).(V)
	if !ok {
		return *new(V), false
	}
	return v, true
}

// Len returns the number of registered types.
func (l *TypeMap[V]) Len() int {
	if l == nil {
		return 0
	}
	return l.m.Len()
}

// Range iterates all registered values.
func (l *TypeMap[V]) Range() iter.Seq2[Type, V] {
	return func(yield func(Type, V) bool) {
		if l == nil {
			return
		}
		for _, t := range l.m.Keys() {
			v, ok := l.m.At(t).(V)
			if !ok {
				continue
			}
			if !yield(TypeOf(t), v) {
				return
			}
		}
	}
}
