// Package marshal resolves conversions between a native representation and
// the representation a wrapper surface exposes. Resolution consults explicit
// annotations first, then the ambient adapter registry, and always falls back
// to identity, so it never fails; callers inspect [Plan.HasConversion] to
// learn whether a genuine conversion was found.
package marshal

import (
	"errors"
	"slices"

	"github.com/wherewhere/wrapgen/typedesc"
)

// Resolver finds the conversion plan that reconciles a native type with the
// type a wrapper member wants to expose. It is read-only after all type-level
// annotations are registered, so a single Resolver may serve concurrent
// resolutions.
type Resolver struct {
	reg    *Registry
	annots *typedesc.TypeMap[*typedesc.MarshalAnnotation]
}

// NewResolver creates a resolver backed by the given ambient registry. A nil
// registry is valid and leaves only annotations and identity.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{
		reg:    reg,
		annots: typedesc.NewTypeMap[*typedesc.MarshalAnnotation](),
	}
}

// Annotate records a type-level conversion annotation declared on t. Generic
// annotations are registered on the open shape and matched against any
// instantiation of the same origin.
func (r *Resolver) Annotate(t typedesc.Type, a *typedesc.MarshalAnnotation) {
	if t.IsZero() || a == nil {
		return
	}
	r.annots.Put(t, a)
}

// Resolve reconciles original with expected under the given variance. The
// strategies are ordered; the first suitable one wins:
//
//  1. the per-site annotation, when given
//  2. a type-level annotation on original's declaration
//  3. a type-level annotation on expected's declaration
//  4. the ambient registry, in entry order
//  5. identity
//
// Identity always succeeds, so the returned plan is never invalid; when none
// of the explicit strategies applied, [Plan.HasConversion] is false and both
// sides of the plan are original.
func (r *Resolver) Resolve(original, expected typedesc.Type, site *typedesc.MarshalAnnotation, v Variance) Plan {
	if plan, err := r.tryAnnotation(site, original, expected, v); !errors.Is(err, skip) {
		return plan
	}
	if plan, err := r.tryAnnotation(r.annotationOf(original), original, expected, v); !errors.Is(err, skip) {
		return plan
	}
	if plan, err := r.tryAnnotation(r.annotationOf(expected), original, expected, v); !errors.Is(err, skip) {
		return plan
	}
	if plan, err := r.tryAmbient(original, expected, v); !errors.Is(err, skip) {
		return plan
	}
	return Identity(original)
}

// skip is returned by tryXXX methods to indicate that the strategy does not
// apply, so [Resolver.Resolve] should fall through to the next one.
var skip = errors.New("skip")

// annotationOf finds the type-level annotation declared on t. Instantiations
// inherit the annotation of their generic origin.
func (r *Resolver) annotationOf(t typedesc.Type) *typedesc.MarshalAnnotation {
	if t.IsZero() {
		return nil
	}
	if a, ok := r.annots.Get(t); ok {
		return a
	}
	if t.IsNamed() && len(t.TypeArgs()) != 0 {
		if a, ok := r.annots.Get(typedesc.TypeOf(t.Named.Origin())); ok {
			return a
		}
	}
	return nil
}

func (r *Resolver) tryAnnotation(a *typedesc.MarshalAnnotation, original, expected typedesc.Type, v Variance) (Plan, error) {
	if a == nil {
		return Plan{}, skip
	}

	managed, wrapper := instantiatePair(a.Managed, a.Wrapper, original, expected)
	if !checkSuitable(managed, wrapper, original, expected, v) {
		return Plan{}, skip
	}

	return Plan{
		Managed:       managed,
		Wrapper:       wrapper,
		ToWrapper:     Conv{Converter: a.Converter, Name: convName(a.ToWrapper, "ToWrapper")},
		ToManaged:     Conv{Converter: a.Converter, Name: convName(a.ToManaged, "ToManaged")},
		HasConversion: true,
	}, nil
}

func (r *Resolver) tryAmbient(original, expected typedesc.Type, v Variance) (Plan, error) {
	for _, e := range r.reg.Entries() {
		managed, wrapper := instantiatePair(e.Managed, e.Wrapper, original, expected)
		if !checkSuitable(managed, wrapper, original, expected, v) {
			continue
		}

		return Plan{
			Managed:       managed,
			Wrapper:       wrapper,
			ToWrapper:     e.ToWrapper,
			ToManaged:     e.ToManaged,
			HasConversion: true,
			ExtraParams:   slices.Clone(e.ExtraParams),
		}, nil
	}
	return Plan{}, skip
}

// convName defaults empty callable names.
func convName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// instantiatePair closes a generic adapter pair against the resolution site.
// Type arguments are taken from original, or from expected when original is
// not an instantiation. When neither side supplies arguments, the pair stays
// open and suitability falls back to open-shape comparison.
func instantiatePair(managed, wrapper, original, expected typedesc.Type) (typedesc.Type, typedesc.Type) {
	targs := original.TypeArgs()
	if targs == nil {
		targs = expected.TypeArgs()
	}
	if targs == nil {
		return managed, wrapper
	}

	if m, ok := managed.Instantiate(targs); ok {
		managed = m
	}
	if w, ok := wrapper.Instantiate(targs); ok {
		wrapper = w
	}
	return managed, wrapper
}

// checkSuitable gates an adapter pair against the resolution site. An open
// generic wrapper only ever matches a generic instantiation; otherwise an
// unrelated non-generic type could satisfy a generic adapter. Then original
// must be variance-compatible with the managed side, and, when expected is
// known, expected must be variance-compatible with the wrapper side under the
// negated variance.
func checkSuitable(managed, wrapper, original, expected typedesc.Type, v Variance) bool {
	if wrapper.IsOpenShape() && len(original.TypeArgs()) == 0 && len(expected.TypeArgs()) == 0 {
		return false
	}
	if !Compatible(original, managed, v) {
		return false
	}
	if !expected.IsZero() && !Compatible(expected, wrapper, v.Negate()) {
		return false
	}
	return true
}
