package matching

import (
	"github.com/wherewhere/wrapgen/marshal"
	"github.com/wherewhere/wrapgen/typedesc"
)

// samePair decides whether the wrapper-side candidate w and the target member
// t describe the same member, and if so returns the matched pair with all
// marshal plans resolved. Kind, static-ness, and name must agree exactly;
// type differences must be reconcilable by the resolver.
func (m *Matcher) samePair(w, t typedesc.Member) (Pair, bool) {
	if w.Static != t.Static || w.Kind != t.Kind || w.Name != t.Name {
		return Pair{}, false
	}

	switch w.Kind {
	case typedesc.KindMethod, typedesc.KindConstructor:
		return m.sameCallable(w, t)
	case typedesc.KindProperty:
		return m.sameProperty(w, t)
	case typedesc.KindEvent:
		return m.sameEvent(w, t)
	}
	return Pair{}, false
}

// sameCallable matches methods and constructors. The wrapper arity either
// equals the target's, or is strictly smaller when the return plan is a
// multi-arg marshal whose auxiliary parameters absorb the excess trailing
// target parameters (the async-adapter shape). An equal-arity pair never
// carries a multi-arg plan: the auxiliary parameters would have no
// arguments to bind.
func (m *Matcher) sameCallable(w, t typedesc.Member) (Pair, bool) {
	result, ok := m.reconcile(t.Result, w.Result, w.Marshal, marshal.VarianceOut)
	if !ok {
		return Pair{}, false
	}

	switch {
	case w.Arity() == t.Arity():
		if result.IsMultiArg() {
			return Pair{}, false
		}

	case w.Arity() < t.Arity():
		excess := t.Params[w.Arity():]
		if len(excess) != len(result.ExtraParams) {
			return Pair{}, false
		}
		for i, p := range excess {
			if !p.Type.Identical(result.ExtraParams[i]) {
				return Pair{}, false
			}
		}

	default:
		return Pair{}, false
	}

	params, ok := m.reconcileParams(w.Params, t.Params[:w.Arity()])
	if !ok {
		return Pair{}, false
	}

	return Pair{Target: t, Wrapper: w, FromStub: w.Stub, Params: params, Result: result}, true
}

func (m *Matcher) sameProperty(w, t typedesc.Member) (Pair, bool) {
	if w.Arity() != t.Arity() {
		return Pair{}, false
	}

	params, ok := m.reconcileParams(w.Params, t.Params)
	if !ok {
		return Pair{}, false
	}

	result, ok := m.reconcile(t.Result, w.Result, w.Marshal, valueVariance(t))
	if !ok {
		return Pair{}, false
	}

	return Pair{Target: t, Wrapper: w, FromStub: w.Stub, Params: params, Result: result}, true
}

func (m *Matcher) sameEvent(w, t typedesc.Member) (Pair, bool) {
	// Handlers flow both ways through add/remove, so the handler type is
	// invariant.
	result, ok := m.reconcile(t.Result, w.Result, w.Marshal, marshal.VarianceNone)
	if !ok {
		return Pair{}, false
	}
	return Pair{Target: t, Wrapper: w, FromStub: w.Stub, Result: result}, true
}

// reconcileParams resolves one plan per parameter pair, in the contravariant
// direction. It fails as soon as any pair stays unreconciled.
func (m *Matcher) reconcileParams(ws, ts []typedesc.Param) ([]marshal.Plan, bool) {
	if len(ws) != len(ts) {
		return nil, false
	}

	plans := make([]marshal.Plan, len(ws))
	for i := range ws {
		plan, ok := m.reconcile(ts[i].Type, ws[i].Type, nil, marshal.VarianceIn)
		if !ok {
			return nil, false
		}
		plans[i] = plan
	}
	return plans, true
}

// reconcile matches the native type original against the wrapper-side type
// expected: equal types match by identity, different types only through a
// genuine conversion. Two absent types (a void result) match trivially.
func (m *Matcher) reconcile(original, expected typedesc.Type, site *typedesc.MarshalAnnotation, v marshal.Variance) (marshal.Plan, bool) {
	if original.IsZero() || expected.IsZero() {
		return marshal.Plan{}, original.IsZero() == expected.IsZero()
	}
	if original.Identical(expected) {
		return marshal.Identity(original), true
	}

	plan := m.resolver.Resolve(original, expected, site, v)
	return plan, plan.HasConversion
}

// resultVariance is the marshal direction of a member's produced value:
// covariant for method returns, per-capability for properties, invariant for
// event handlers.
func resultVariance(t typedesc.Member) marshal.Variance {
	switch t.Kind {
	case typedesc.KindProperty:
		return valueVariance(t)
	case typedesc.KindEvent:
		return marshal.VarianceNone
	}
	return marshal.VarianceOut
}

// valueVariance derives the marshal direction of a property value from the
// target's read/write capability: values only read out are covariant, values
// only written in are contravariant, and two-way values are invariant.
func valueVariance(t typedesc.Member) marshal.Variance {
	switch {
	case t.Readable && !t.Writable:
		return marshal.VarianceOut
	case t.Writable && !t.Readable:
		return marshal.VarianceIn
	}
	return marshal.VarianceNone
}
