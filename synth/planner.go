// Package synth turns matched member pairs into concrete member plans: the
// ordered, renderable description of every wrapper member to generate,
// including forwarding bodies, hidden auxiliary state, and advisory
// diagnostics.
package synth

import (
	"go/types"
	"strings"

	"github.com/wherewhere/wrapgen/internal/codefmt"
	"github.com/wherewhere/wrapgen/marshal"
	"github.com/wherewhere/wrapgen/matching"
	"github.com/wherewhere/wrapgen/typedesc"
)

// Well-known identifiers of the generated wrapper shape. The planner builds
// expression trees against these; the renderer declares them.
const (
	recvName    = "x"
	nativeField = "o"
	valueName   = "value"
	handlerName = "handler"
	tokenName   = "token"
	resultName  = "v"
)

// disposeName is the disposal entry point on both sides of the wrap.
const disposeName = "Close"

// Policy is the generation policy supplied by the host.
type Policy struct {
	// PatchDispose enables disposal special-casing.
	PatchDispose bool

	// NativeEventTokens reports that the hosting environment supports
	// registration tokens, enabling the token-table event strategy.
	NativeEventTokens bool

	// RequireDeclared raises a diagnostic for every generated member the
	// user did not declare a stub for.
	RequireDeclared bool
}

// Planner emits member plans for matched pairs. It is stateless across
// declarations.
type Planner struct {
	policy Policy
	fmt    codefmt.Formatter
}

// NewPlanner creates a planner under the given policy.
func NewPlanner(policy Policy, fmt codefmt.Formatter) *Planner {
	return &Planner{policy: policy, fmt: fmt}
}

// autoCtor is the tri-state deciding whether a zero-parameter constructor
// must be added: any zero-parameter constructor clears the need permanently,
// any parameterized one raises it unless already cleared.
type autoCtor int

const (
	autoCtorUnset autoCtor = iota
	autoCtorNeeded
	autoCtorNotNeeded
)

// Plan produces the ordered plan set for the declaration's matched pairs,
// plus any advisory diagnostics. The order follows the pair order except for
// the auto constructor, which is appended last.
func (p *Planner) Plan(decl *matching.Decl, pairs []matching.Pair) ([]MemberPlan, []Diagnostic) {
	ns := codefmt.NewNS(nil)
	ns.Reserve(recvName)
	ns.Reserve(nativeField)

	var plans []MemberPlan
	var diags []Diagnostic
	ctor := autoCtorUnset

	for _, pair := range pairs {
		if p.policy.RequireDeclared && !pair.FromStub {
			diags = append(diags, p.missingDecl(decl, pair))
		}

		switch pair.Wrapper.Kind {
		case typedesc.KindConstructor:
			plans = append(plans, p.planCtor(decl, pair))
			if pair.Wrapper.Arity() == 0 {
				ctor = autoCtorNotNeeded
			} else if ctor != autoCtorNotNeeded {
				ctor = autoCtorNeeded
			}

		case typedesc.KindMethod:
			if p.isDispose(decl, pair.Wrapper) {
				plans = append(plans, planDispose(pair))
				continue
			}
			plans = append(plans, planMethod(pair))

		case typedesc.KindProperty:
			if pair.Target.Writable && !pair.Target.Readable {
				// Write-only surfaces have no safe wrapper shape.
				continue
			}
			if pair.Target.IsIndexer() {
				if plan, ok := planIndexer(decl, pair); ok {
					plans = append(plans, plan)
				}
				continue
			}
			plans = append(plans, planProperty(pair))

		case typedesc.KindEvent:
			plans = append(plans, p.planEvent(decl, pair, ns))
		}
	}

	if ctor == autoCtorNeeded {
		plans = append(plans, MemberPlan{
			Kind:   KindCtor,
			Name:   "New" + decl.Name,
			Static: true,
			Auto:   true,
		})
	}
	return plans, diags
}

// isDispose reports whether the member is the disposal entry point: a
// zero-parameter, void, non-static method named Close on a disposable
// target, under the disposal policy.
func (p *Planner) isDispose(decl *matching.Decl, w typedesc.Member) bool {
	return p.policy.PatchDispose &&
		decl.Target.Disposable &&
		!w.Static &&
		w.Name == disposeName &&
		w.Arity() == 0 &&
		w.IsVoid()
}

func (p *Planner) missingDecl(decl *matching.Decl, pair matching.Pair) Diagnostic {
	return Diagnostic{
		Member:  pair.Target,
		Suggest: p.suggestStub(decl, pair.Wrapper),
		Pos:     decl.Pos,
	}
}

// native is the wrapped instance, reached through the receiver.
func native() Expr {
	return Select{X: Ident{recvName}, Name: nativeField}
}

// targetFn is the callable for a target member: a selection on the wrapped
// instance, or a package-qualified identifier for static members, which live
// at package level on the target side.
func targetFn(t typedesc.Member) Expr {
	if !t.Static {
		return Select{X: native(), Name: t.Name}
	}
	if pkg := t.Declaring.Pkg(); pkg != nil {
		return Select{X: Ident{pkg.Name()}, Name: t.Name}
	}
	return Ident{t.Name}
}

// toManaged converts a wrapper-side value into its native representation.
func toManaged(plan marshal.Plan, x Expr) Expr {
	if !plan.HasConversion {
		return x
	}
	return Convert{Conv: plan.ToManaged, X: x}
}

// toWrapper converts a native value into its wrapper representation.
func toWrapper(plan marshal.Plan, x Expr) Expr {
	if !plan.HasConversion {
		return x
	}
	return Convert{Conv: plan.ToWrapper, X: x}
}

// forwardArgs converts every wrapper parameter into its native form.
func forwardArgs(pair matching.Pair) []Expr {
	args := make([]Expr, len(pair.Wrapper.Params))
	for i, param := range pair.Wrapper.Params {
		args[i] = toManaged(pair.Params[i], Ident{param.Name})
	}
	return args
}

// planCtor forwards a target constructor. Mirrored constructors take the
// wrapper's name, NewGadgetWithSize becoming NewGadgetWrapperWithSize, so
// wrappers generated into the target's own package do not collide with it.
// Stub constructors keep the name the user declared.
func (p *Planner) planCtor(decl *matching.Decl, pair matching.Pair) MemberPlan {
	w := pair.Wrapper
	name := w.Name
	if !pair.FromStub && decl.Target.Type.IsNamed() {
		if rest, ok := strings.CutPrefix(name, "New"+decl.Target.Type.Named.Obj().Name()); ok {
			name = "New" + decl.Name + rest
		}
	}

	body := Call{Fn: targetFn(pair.Target), Args: forwardArgs(pair)}

	return MemberPlan{
		Kind:     KindCtor,
		Name:     name,
		Static:   true,
		Params:   w.Params,
		Result:   w.Result,
		Body:     body,
		Throws:   pair.Target.Throws,
		Target:   pair.Target,
		FromStub: pair.FromStub,
	}
}

func planMethod(pair matching.Pair) MemberPlan {
	w, t := pair.Wrapper, pair.Target
	args := forwardArgs(pair)

	var body Expr
	switch {
	case pair.Result.IsMultiArg():
		// The conversion owns the auxiliary trailing parameters; the target
		// call is deferred into a lambda receiving them. The matcher only
		// emits multi-arg pairs whose extras are the target's trailing
		// parameters, so they index from the end.
		lambda := Lambda{Result: t.Result}
		base := len(t.Params) - len(pair.Result.ExtraParams)
		for i, extra := range pair.Result.ExtraParams {
			param := t.Params[base+i]
			lambda.Params = append(lambda.Params, typedesc.Param{
				Name: param.Name,
				Type: extra,
				Dir:  typedesc.DirIn,
			})
			args = append(args, Ident{param.Name})
		}
		lambda.Body = Call{Fn: targetFn(t), Args: args}
		body = Convert{Conv: pair.Result.ToWrapper, X: lambda}

	default:
		body = toWrapper(pair.Result, Call{Fn: targetFn(t), Args: args})
	}

	plan := MemberPlan{
		Kind:     KindMethod,
		Name:     w.Name,
		Static:   w.Static,
		Params:   w.Params,
		Result:   w.Result,
		Body:     body,
		Target:   t,
		FromStub: pair.FromStub,
	}

	// A trailing target error splits the forwarding in two: the raw call, then
	// the conversion of its successful value. Multi-arg adapters own their
	// whole call shape and absorb the error themselves.
	if t.Throws && !pair.Result.IsMultiArg() {
		plan.Throws = true
		plan.Call = Call{Fn: targetFn(t), Args: args}
		if w.Result.IsZero() {
			plan.Body = nil
		} else {
			plan.Body = toWrapper(pair.Result, Ident{resultName})
		}
	}
	return plan
}

func planDispose(pair matching.Pair) MemberPlan {
	return MemberPlan{
		Kind:     KindDispose,
		Name:     disposeName,
		Body:     Call{Fn: Select{X: native(), Name: disposeName}},
		Throws:   pair.Target.Throws,
		Aux:      Aux{SuppressFinalizer: true},
		Target:   pair.Target,
		FromStub: pair.FromStub,
	}
}

func planProperty(pair matching.Pair) MemberPlan {
	w, t := pair.Wrapper, pair.Target
	plan := MemberPlan{
		Kind:     KindProperty,
		Name:     w.Name,
		Static:   w.Static,
		Result:   w.Result,
		Target:   t,
		FromStub: pair.FromStub,
	}

	if t.Readable {
		plan.Getter = toWrapper(pair.Result, Call{Fn: Select{X: native(), Name: t.Name}})
	}
	if t.Writable {
		plan.Setter = Call{
			Fn:   Select{X: native(), Name: "Set" + t.Name},
			Args: []Expr{toManaged(pair.Result, Ident{valueName})},
		}
	}
	return plan
}

// planIndexer gates indexer synthesis on the declaring type's collection
// capabilities: an integer index against a list shape, or a key-typed index
// against a map shape. Anything else stays unsynthesized.
func planIndexer(decl *matching.Decl, pair matching.Pair) (MemberPlan, bool) {
	t := pair.Target
	if len(t.Params) != 1 {
		return MemberPlan{}, false
	}

	caps := decl.Target.Caps
	idx := t.Params[0].Type

	listLike := caps.Has(typedesc.CapList|typedesc.CapReadOnlyList) && isIntType(idx)
	mapLike := caps.Has(typedesc.CapMap|typedesc.CapReadOnlyMap) &&
		!decl.Target.Key.IsZero() && idx.Identical(decl.Target.Key)
	if !listLike && !mapLike {
		return MemberPlan{}, false
	}

	w := pair.Wrapper
	key := toManaged(pair.Params[0], Ident{w.Params[0].Name})
	element := Index{X: native(), Key: key}

	plan := MemberPlan{
		Kind:     KindIndexer,
		Name:     w.Name,
		Params:   w.Params,
		Result:   w.Result,
		Target:   t,
		FromStub: pair.FromStub,
	}
	if t.Readable {
		plan.Getter = toWrapper(pair.Result, element)
	}
	if t.Writable {
		plan.Setter = Assign{LHS: element, RHS: toManaged(pair.Result, Ident{valueName})}
	}
	return plan, true
}

func isIntType(t typedesc.Type) bool {
	return t.IsBasic() && t.Basic.Kind() == types.Int
}
