package matching

import (
	"go/token"

	"github.com/wherewhere/wrapgen/marshal"
	"github.com/wherewhere/wrapgen/typedesc"
)

// Decl is a wrapper declaration: which target type to wrap, in which mode,
// and what the user already declared on the wrapper side. It is a read-only
// snapshot; the matcher never mutates it.
type Decl struct {
	// Target is the type being wrapped.
	Target *typedesc.TypeDesc

	// Name is the wrapper type name, used in diagnostics.
	Name string

	// Mode selects the member set to mirror.
	Mode Mode

	// Interfaces is the interface set for ModeInterface. Callers default it
	// to the interfaces the wrapper declares when no explicit list is given.
	Interfaces []*typedesc.TypeDesc

	// Members holds the wrapper-side members the user pre-declared. Stubs are
	// matching candidates; complete members suppress generation under
	// ModeAll.
	Members []typedesc.Member

	Pos token.Pos
}

// Pair is one matched (wrapper member, target member) couple together with
// the marshal plans that reconcile their signatures. Params holds one plan
// per wrapper-side parameter, in order; Result reconciles the return,
// property, or event-handler type and is the zero Plan for void members.
type Pair struct {
	Target  typedesc.Member
	Wrapper typedesc.Member

	// FromStub reports whether the wrapper member came from a user stub
	// rather than being synthesized from the target member.
	FromStub bool

	Params []marshal.Plan
	Result marshal.Plan
}
