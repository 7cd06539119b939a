package synth

import (
	"fmt"
	"go/token"

	"github.com/wherewhere/wrapgen/typedesc"
)

// Kind distinguishes the member plans the planner emits.
type Kind int

const (
	KindCtor Kind = iota
	KindMethod
	KindDispose
	KindProperty
	KindIndexer
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindCtor:
		return "ctor"
	case KindMethod:
		return "method"
	case KindDispose:
		return "dispose"
	case KindProperty:
		return "property"
	case KindIndexer:
		return "indexer"
	case KindEvent:
		return "event"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// EventStrategy selects how an event plan adapts subscription.
type EventStrategy int

const (
	// EventDirect forwards handlers unchanged; no auxiliary state.
	EventDirect EventStrategy = iota

	// EventTokenTable attaches one native handler on first add and fans out
	// through a registration-token table afterwards.
	EventTokenTable

	// EventWeakMap keeps a handler association table so remove can find the
	// converted native handler that was actually attached.
	EventWeakMap
)

func (s EventStrategy) String() string {
	switch s {
	case EventDirect:
		return "direct"
	case EventTokenTable:
		return "token-table"
	case EventWeakMap:
		return "weak-map"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Aux names the hidden per-wrapper state a plan needs beside the member
// itself. Empty names mean the state is absent.
type Aux struct {
	// OnceFlag guards the one-time native attachment of a token-table event.
	OnceFlag string

	// TokenTable is the registration-token table of a token-table event.
	TokenTable string

	// HandlerTable is the handler association table of a weak-map event.
	HandlerTable string

	// SuppressFinalizer marks a disposal plan that must cancel any pending
	// finalization of the wrapper instance.
	SuppressFinalizer bool
}

// MemberPlan is one synthesized wrapper member. Which body fields are set
// depends on Kind: Body for constructors, methods, and disposal; Getter and
// Setter for properties and indexers; Add and Remove for events.
type MemberPlan struct {
	Kind   Kind
	Name   string
	Static bool

	// Auto marks the zero-parameter constructor added when the user declared
	// only parameterized ones.
	Auto bool

	Params []typedesc.Param
	Result typedesc.Type

	Body   Expr
	Getter Expr
	Setter Expr
	Add    Expr
	Remove Expr

	// Throws reports the target's trailing error result; the rendered
	// forwarder returns it, wrapped with the member path. Call holds the raw
	// target invocation of a throwing method, whose successful value Body then
	// converts.
	Throws bool
	Call   Expr

	Event EventStrategy
	Aux   Aux

	// Target is the target member this plan forwards to. Zero for the auto
	// constructor.
	Target typedesc.Member

	// FromStub reports whether the member signature came from a user stub.
	FromStub bool
}

// Diagnostic is an advisory warning raised beside the plan set. Synthesis
// is never blocked by one.
type Diagnostic struct {
	// Member identifies the member the warning is about.
	Member typedesc.Member

	// Suggest is the declaration text the user may paste to silence the
	// warning.
	Suggest string

	Pos token.Pos
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("warning: %s has no wrapper-side declaration; suggest: %s",
		d.Member.DebugName(), d.Suggest)
}
