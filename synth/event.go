package synth

import (
	"unicode"
	"unicode/utf8"

	"github.com/wherewhere/wrapgen/internal/codefmt"
	"github.com/wherewhere/wrapgen/matching"
)

// planEvent picks one of three mutually exclusive subscription strategies.
//
// When the target hosts events with registration tokens natively and the
// policy allows it, a single native handler is attached on the first add and
// every subscription after that only touches the token table; a handler
// conversion applies to that one attachment, turning the fan-out literal
// into its native representation. Otherwise, when the handler type needs a
// conversion, a handler association table remembers which converted native
// handler each wrapper handler turned into, so remove can detach the exact
// one without relying on function equality across the conversion. With an
// identity marshal, add and remove forward unchanged.
func (p *Planner) planEvent(decl *matching.Decl, pair matching.Pair, ns codefmt.NS) MemberPlan {
	w := pair.Wrapper
	plan := MemberPlan{
		Kind:     KindEvent,
		Name:     w.Name,
		Static:   w.Static,
		Result:   w.Result,
		Target:   pair.Target,
		FromStub: pair.FromStub,
	}

	switch {
	case decl.Target.NativeEvents && p.policy.NativeEventTokens:
		plan.Event = EventTokenTable
		plan.Aux.OnceFlag = ns.Name(lowerFirst(w.Name) + "Hooked")
		plan.Aux.TokenTable = ns.Name(lowerFirst(w.Name) + "Tokens")
		plan.Add = toManaged(pair.Result, FanOut{Table: plan.Aux.TokenTable, Handler: w.Result})
		plan.Remove = Ident{tokenName}

	case pair.Result.HasConversion:
		plan.Event = EventWeakMap
		plan.Aux.HandlerTable = ns.Name(lowerFirst(w.Name) + "Handlers")
		plan.Add = Convert{Conv: pair.Result.ToManaged, X: Ident{handlerName}}
		plan.Remove = Ident{handlerName}

	default:
		plan.Event = EventDirect
		plan.Add = Ident{handlerName}
		plan.Remove = Ident{handlerName}
	}
	return plan
}

func lowerFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
