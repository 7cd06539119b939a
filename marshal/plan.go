package marshal

import (
	"strings"

	"github.com/wherewhere/wrapgen/typedesc"
)

// Conv is one direction of a conversion: a callable that turns a value of one
// representation into the other. The zero value is the identity conversion.
type Conv struct {
	// Converter is the adapter type declaring the callable. Zero for free
	// functions and for the identity conversion.
	Converter typedesc.Type

	// Name is the callable name. Empty means identity.
	Name string
}

// IsIdentity reports whether the conversion passes values through unchanged.
func (c Conv) IsIdentity() bool { return c.Name == "" }

func (c Conv) String() string {
	if c.IsIdentity() {
		return "<identity>"
	}
	if c.Converter.IsZero() {
		return c.Name
	}
	var b strings.Builder
	b.WriteString(c.Converter.String())
	b.WriteByte('.')
	b.WriteString(c.Name)
	return b.String()
}

// Plan reconciles a managed (native) type with a wrapper (exposed) type.
type Plan struct {
	// Managed and Wrapper are the two representations.
	Managed typedesc.Type
	Wrapper typedesc.Type

	// ToWrapper converts managed to wrapper; ToManaged the reverse.
	ToWrapper Conv
	ToManaged Conv

	// HasConversion is false only for the identity plan, in which case
	// Managed equals Wrapper and both conversions are identity.
	HasConversion bool

	// ExtraParams holds the auxiliary trailing argument types of a
	// split-signature conversion, such as the cancellation argument of an
	// async adapter. Empty for ordinary conversions.
	ExtraParams []typedesc.Type
}

// Identity returns the always-succeeding fallback plan for t.
func Identity(t typedesc.Type) Plan {
	return Plan{Managed: t, Wrapper: t}
}

// IsMultiArg reports whether the plan carries auxiliary trailing parameters.
func (p Plan) IsMultiArg() bool { return len(p.ExtraParams) != 0 }
