// Package matching decides which members of a target type a wrapper mirrors.
// Given a wrapper declaration, the matcher pairs wrapper-side candidates with
// target members by name, kind, and signature compatibility, resolving any
// type differences through the marshal resolver. The output is an ordered
// pair set that the synthesis planner turns into member plans.
package matching

import (
	"slices"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/wherewhere/wrapgen/internal/codefmt"
	"github.com/wherewhere/wrapgen/internal/lcs"
	"github.com/wherewhere/wrapgen/marshal"
	"github.com/wherewhere/wrapgen/typedesc"
)

// Matcher pairs wrapper-side member candidates with target members. It holds
// no per-declaration state, so one Matcher may serve many declarations.
type Matcher struct {
	resolver *marshal.Resolver
	fmt      codefmt.Formatter
}

// NewMatcher creates a matcher resolving type differences through the given
// resolver.
func NewMatcher(resolver *marshal.Resolver, fmt codefmt.Formatter) *Matcher {
	return &Matcher{resolver: resolver, fmt: fmt}
}

// Match computes the ordered set of matched pairs for the declaration. The
// order follows the target's declaration order in ModeAll and the candidate
// order otherwise, so identical inputs always yield identical outputs.
//
// Unmatched candidates in ModeDeclared/ModeInterface are reported as one
// [codefmt.CodeError] carrying the match table; the returned pairs are still
// valid for the candidates that did match.
func (m *Matcher) Match(decl *Decl) ([]Pair, error) {
	if decl.Mode == ModeNone {
		return nil, nil
	}
	if decl.Mode.Has(ModeAll) {
		return m.matchAll(decl), nil
	}
	return m.matchCandidates(decl, m.candidates(decl))
}

// matchAll mirrors every public target member, honoring user overrides: a
// same-identity stub replaces the generated member once, a same-identity
// complete member suppresses generation for that identity entirely.
func (m *Matcher) matchAll(decl *Decl) []Pair {
	declared := linkedhashmap.New() // ShortIdentity -> Member
	for _, w := range decl.Members {
		key := w.ShortIdentity()
		if _, ok := declared.Get(key); !ok {
			declared.Put(key, w)
		}
	}

	var pairs []Pair
	emitted := make(map[string]bool)

	for _, t := range decl.Target.Flatten() {
		key := t.ShortIdentity()
		if v, ok := declared.Get(key); ok {
			w := v.(typedesc.Member)
			if !w.Stub || emitted[key] {
				// The user's member stands; never generate beside it.
				continue
			}
			emitted[key] = true
			if pair, ok := m.samePair(w, t); ok {
				pairs = append(pairs, pair)
			}
			// An irreconcilable override still wins: the member is the
			// user's problem now, not ours.
			continue
		}
		pairs = append(pairs, m.mirror(t))
	}
	return pairs
}

// candidates collects the wrapper-side signatures to match, deduplicated by
// identity with user-declared stubs taking precedence over interface
// requirements.
func (m *Matcher) candidates(decl *Decl) []typedesc.Member {
	byIdentity := linkedhashmap.New() // Identity -> Member

	add := func(members []typedesc.Member) {
		for _, w := range members {
			key := w.Identity()
			if _, ok := byIdentity.Get(key); !ok {
				byIdentity.Put(key, w)
			}
		}
	}

	if decl.Mode.Has(ModeDeclared) {
		for _, w := range decl.Members {
			if w.Stub {
				add([]typedesc.Member{w})
			}
		}
	}
	if decl.Mode.Has(ModeInterface) {
		for _, iface := range decl.Interfaces {
			add(iface.Flatten())
		}
	}

	out := make([]typedesc.Member, 0, byIdentity.Size())
	for it := byIdentity.Iterator(); it.Next(); {
		out = append(out, it.Value().(typedesc.Member))
	}
	return out
}

// matchCandidates evaluates the cross product of candidates and target
// members. Several target overloads satisfying one candidate is an
// ambiguity, resolved by keeping the overload with the most parameters; on
// an equal-arity tie the first declared overload stays.
//
// Any candidate matching nothing fails the whole declaration; the error
// carries the full match table so every miss is reported at once.
func (m *Matcher) matchCandidates(decl *Decl, candidates []typedesc.Member) ([]Pair, error) {
	flat := decl.Target.Flatten()
	vis := newVisualizer()

	var pairs []Pair
	for _, w := range candidates {
		var best Pair
		found, overloaded := false, false
		for _, t := range flat {
			pair, ok := m.samePair(w, t)
			if !ok {
				continue
			}
			if found {
				overloaded = true
			}
			if !found || pair.Target.Arity() > best.Target.Arity() {
				best, found = pair, true
			}
		}

		if !found {
			vis.Fail(w, m.missingReason(w, flat))
			continue
		}
		reason := ""
		if overloaded {
			reason = "overloaded; widest wins"
		}
		vis.Match(w, best.Target, reason)
		pairs = append(pairs, best)
	}

	if !vis.IsValid() {
		var b strings.Builder
		for _, line := range strings.SplitAfter(vis.String(), "\n") {
			b.WriteString("\t")
			b.WriteString(line)
		}
		return pairs, m.fmt.Errorf(codefmt.Pos(decl.Pos),
			"cannot wrap %s as %s\n%s", decl.Target.Name, decl.Name, b.String())
	}
	return pairs, nil
}

func (m *Matcher) missingReason(w typedesc.Member, flat []typedesc.Member) string {
	seen := linkedhashset.New()
	for _, t := range flat {
		seen.Add(t.Name)
	}

	names := make([]string, 0, seen.Size())
	for it := seen.Iterator(); it.Next(); {
		names = append(names, it.Value().(string))
	}

	if closest := lcs.Closest(w.Name, names); closest != "" {
		return "missing; did you mean " + closest
	}
	return "missing"
}

// mirror synthesizes the wrapper-side counterpart of a target member,
// deriving each wrapper-side type from the resolved marshal. When the result
// marshal is multi-arg and the trailing target parameters are exactly its
// auxiliary parameters, those parameters fold into the conversion instead of
// being mirrored; any other parameter shape leaves the adapter's auxiliary
// parameters with nothing to bind, so the result mirrors unconverted.
func (m *Matcher) mirror(t typedesc.Member) Pair {
	w := t
	w.Declaring = typedesc.Type{}
	w.Stub = false
	w.Marshal = nil

	var result marshal.Plan
	if !t.Result.IsZero() {
		result = m.resolver.Resolve(t.Result, typedesc.Type{}, t.Marshal, resultVariance(t))
		w.Result = result.Wrapper
	}

	params := t.Params
	if result.IsMultiArg() {
		n := len(params) - len(result.ExtraParams)
		folds := n >= 0
		for i := 0; folds && i < len(result.ExtraParams); i++ {
			if !params[n+i].Type.Identical(result.ExtraParams[i]) {
				folds = false
			}
		}
		if folds {
			params = params[:n]
		} else {
			result = marshal.Identity(t.Result)
			w.Result = t.Result
		}
	}

	w.Params = slices.Clone(params)
	plans := make([]marshal.Plan, len(params))
	for i, p := range params {
		plans[i] = m.resolver.Resolve(p.Type, typedesc.Type{}, nil, marshal.VarianceIn)
		w.Params[i].Type = plans[i].Wrapper
	}

	return Pair{Target: t, Wrapper: w, Params: plans, Result: result}
}
