package synth

import (
	"github.com/wherewhere/wrapgen/marshal"
	"github.com/wherewhere/wrapgen/typedesc"
)

// Expr is one node of the abstract forwarding expression carried by a member
// plan. The tree is deliberately tiny; it only has to express "forward these
// values through these conversions", not general Go.
//
// Plans use a few well-known identifiers: the receiver, the wrapped native
// instance, the setter value, and the event handler. The renderer owns their
// concrete spelling.
type Expr interface{ expr() }

// Ident is a bare identifier, usually a parameter name.
type Ident struct{ Name string }

// Select is a field or method selection on X.
type Select struct {
	X    Expr
	Name string
}

// Call invokes Fn with Args.
type Call struct {
	Fn   Expr
	Args []Expr
}

// Convert applies one direction of a marshal conversion to X.
type Convert struct {
	Conv marshal.Conv
	X    Expr
}

// Lambda is an anonymous function literal, used to defer a target call into
// a multi-arg conversion.
type Lambda struct {
	Params []typedesc.Param
	Result typedesc.Type
	Body   Expr
}

// FanOut is the single native attachment of a token-table event: a handler
// literal of the wrapper handler type that invokes every handler registered
// in the token table. When the handler type converts, a [Convert] turns the
// literal into its native representation.
type FanOut struct {
	Table   string
	Handler typedesc.Type
}

// Index subscripts X with Key.
type Index struct {
	X   Expr
	Key Expr
}

// Assign stores RHS into LHS. Only setter bodies use it.
type Assign struct {
	LHS Expr
	RHS Expr
}

func (Ident) expr()   {}
func (Select) expr()  {}
func (Call) expr()    {}
func (Convert) expr() {}
func (Lambda) expr()  {}
func (FanOut) expr()  {}
func (Index) expr()   {}
func (Assign) expr()  {}
