package typedesc

import (
	"fmt"
	"go/token"
	"strings"
)

// Kind distinguishes the member kinds this engine mirrors.
type Kind int

const (
	KindConstructor Kind = iota
	KindMethod
	KindProperty
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	case KindEvent:
		return "event"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Direction is the data-flow direction of a parameter. Descriptors built
// from Go surfaces carry DirIn only: out and ref flows are spelled as
// pointer parameters or extra results, which arrive as ordinary typed
// values. DirOut and DirRef exist for descriptor suppliers whose surfaces
// have genuine reference semantics.
type Direction int

const (
	DirNone Direction = iota
	DirIn
	DirOut
	DirRef
)

// Accessibility of a member at its declaration site.
type Accessibility int

const (
	Public Accessibility = iota
	Internal
	Private
)

// Param is a single parameter of a method or an indexer.
type Param struct {
	Name string
	Type Type
	Dir  Direction
}

// MarshalAnnotation pins a conversion at a declaration site. It names a
// converter type whose two callables reconcile a managed representation with
// the exposed wrapper representation. The annotated declaration may be either
// side of the pair; the annotation itself always carries both.
type MarshalAnnotation struct {
	// Converter is the adapter type declaring the conversion callables.
	Converter Type

	// Managed is the native representation; Wrapper is the exposed one.
	Managed Type
	Wrapper Type

	// ToWrapper and ToManaged are the callable names on Converter. Empty
	// names default to "ToWrapper" and "ToManaged".
	ToWrapper string
	ToManaged string

	Pos token.Pos
}

// Member describes a single member of a type: a constructor, a method, a
// property (optionally an indexer), or an event. It is an immutable value;
// all matching and synthesis operates on copies.
type Member struct {
	Name      string
	Kind      Kind
	Static    bool
	Access    Accessibility
	Declaring Type

	// Params holds method/constructor parameters, or index parameters for an
	// indexer property. Events and plain properties have none.
	Params []Param

	// Result is the method return type, the property type, or the event
	// handler type. Zero for void methods and constructors.
	Result Type

	// Readable and Writable apply to properties only.
	Readable bool
	Writable bool

	// TypeParams is the member's own type-parameter arity.
	TypeParams int

	// Throws reports a trailing error result on the declaration. The error is
	// stripped from Result and invisible to matching; generated forwarders
	// propagate it as calling convention.
	Throws bool

	// Marshal is the optional per-site conversion annotation.
	Marshal *MarshalAnnotation

	// Stub marks a user-authored declaration without a body, eligible for
	// matching. A non-stub wrapper-side member suppresses generation.
	Stub bool

	Pos token.Pos
}

// IsIndexer reports whether the member is a property with index parameters.
func (m Member) IsIndexer() bool {
	return m.Kind == KindProperty && len(m.Params) != 0
}

// IsVoid reports whether the member produces no result value.
func (m Member) IsVoid() bool { return m.Result.IsZero() }

// Arity returns the number of parameters.
func (m Member) Arity() int { return len(m.Params) }

// Identity returns the stable identity key used for equality and
// deduplication: name, kind, static-ness, parameter-type sequence, and
// type-parameter arity. The result type is deliberately excluded because
// overriding members may covary it.
func (m Member) Identity() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('#')
	b.WriteString(m.Kind.String())
	if m.Static {
		b.WriteString("#static")
	}
	fmt.Fprintf(&b, "#%d(", m.TypeParams)
	for i, p := range m.Params {
		if i != 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Type.String())
	}
	b.WriteByte(')')
	return b.String()
}

// ShortIdentity returns the arity-level identity key (name, kind, static-ness,
// arity) used by All-mode override detection, where the user's parameter
// types may differ from the target's by a resolvable marshal.
func (m Member) ShortIdentity() string {
	static := ""
	if m.Static {
		static = "#static"
	}
	return fmt.Sprintf("%s#%s%s/%d", m.Name, m.Kind, static, len(m.Params))
}

// DebugName renders the member for diagnostics, e.g. "Buffer.Read(p []byte)".
func (m Member) DebugName() string {
	var b strings.Builder
	if !m.Declaring.IsZero() {
		b.WriteString(m.Declaring.String())
		b.WriteByte('.')
	}
	b.WriteString(m.Name)
	if m.Kind == KindMethod || m.Kind == KindConstructor || m.IsIndexer() {
		open, close := byte('('), byte(')')
		if m.IsIndexer() {
			open, close = '[', ']'
		}
		b.WriteByte(open)
		for i, p := range m.Params {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Type.String())
		}
		b.WriteByte(close)
	}
	return b.String()
}

func (m Member) String() string { return m.DebugName() }
