package synth_test

import (
	"bytes"
	"fmt"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wherewhere/wrapgen/internal/codefmt"
	"github.com/wherewhere/wrapgen/marshal"
	"github.com/wherewhere/wrapgen/matching"
	"github.com/wherewhere/wrapgen/synth"
	"github.com/wherewhere/wrapgen/typedesc"
)

var (
	fixturePkg = types.NewPackage("example.com/fixture", "fixture")

	tokenT    = namedStruct("Token")
	handleT   = namedStruct("Handle")
	extraT    = namedStruct("Extra")
	adaptersT = namedStruct("Adapters")

	intT = typedesc.TypeOf(types.Typ[types.Int])

	// handlerT is a func(int) handler type for event plans.
	handlerT = typedesc.TypeOf(types.NewSignatureType(nil, nil, nil,
		types.NewTuple(types.NewVar(token.NoPos, nil, "e", types.Typ[types.Int])),
		nil, false))
)

func namedStruct(name string) typedesc.Type {
	obj := types.NewTypeName(token.NoPos, fixturePkg, name, nil)
	named := types.NewNamed(obj, types.NewStruct(nil, nil), nil)
	return typedesc.TypeOf(named)
}

func member(kind typedesc.Kind, name string, result typedesc.Type, params ...typedesc.Type) typedesc.Member {
	m := typedesc.Member{Name: name, Kind: kind, Result: result}
	if kind == typedesc.KindConstructor {
		m.Static = true
	}
	for i, p := range params {
		m.Params = append(m.Params, typedesc.Param{
			Name: fmt.Sprintf("p%d", i),
			Type: p,
			Dir:  typedesc.DirIn,
		})
	}
	return m
}

// identityPair builds a pair whose wrapper side mirrors the target exactly.
func identityPair(t typedesc.Member) matching.Pair {
	pair := matching.Pair{Target: t, Wrapper: t}
	for _, p := range t.Params {
		pair.Params = append(pair.Params, marshal.Identity(p.Type))
	}
	if !t.Result.IsZero() {
		pair.Result = marshal.Identity(t.Result)
	}
	return pair
}

// convPair builds a pair whose result type converts between Token and Handle.
func convPair(t typedesc.Member, extra ...typedesc.Type) matching.Pair {
	pair := identityPair(t)
	pair.Wrapper.Result = handleT
	pair.Result = marshal.Plan{
		Managed:       tokenT,
		Wrapper:       handleT,
		ToWrapper:     marshal.Conv{Converter: adaptersT, Name: "ToWrapper"},
		ToManaged:     marshal.Conv{Converter: adaptersT, Name: "ToManaged"},
		HasConversion: true,
		ExtraParams:   extra,
	}
	return pair
}

func newPlanner(policy synth.Policy) *synth.Planner {
	return synth.NewPlanner(policy, codefmt.New("example.com/fixture", nil))
}

func decl(target *typedesc.TypeDesc) *matching.Decl {
	return &matching.Decl{Target: target, Name: "Wrapper"}
}

func TestPlanMethodForward(t *testing.T) {
	p := newPlanner(synth.Policy{})

	m := member(typedesc.KindMethod, "Add", intT, intT, intT)
	plans, diags := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(m)})
	require.Empty(t, diags)
	require.Len(t, plans, 1)

	assert.Equal(t, synth.KindMethod, plans[0].Kind)
	assert.Equal(t, "Add", plans[0].Name)
	require.Len(t, plans[0].Params, 2)
}

func TestPlanMethodMultiArgLambda(t *testing.T) {
	p := newPlanner(synth.Policy{})

	// Fetch(p0 int, p1 Extra) Token on the target; the wrapper keeps only
	// p0, the Extra parameter belongs to the multi-arg return adapter.
	m := member(typedesc.KindMethod, "Fetch", tokenT, intT, extraT)
	pair := convPair(m, extraT)
	pair.Wrapper.Params = pair.Wrapper.Params[:1]
	pair.Params = pair.Params[:1]

	plans, _ := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{pair})
	require.Len(t, plans, 1)

	conv, ok := plans[0].Body.(synth.Convert)
	require.True(t, ok)
	lambda, ok := conv.X.(synth.Lambda)
	require.True(t, ok)
	require.Len(t, lambda.Params, 1)
	assert.True(t, lambda.Params[0].Type.Identical(extraT))
}

func TestPlanAutoCtor(t *testing.T) {
	p := newPlanner(synth.Policy{})

	ctor := member(typedesc.KindConstructor, "NewGadget", typedesc.Type{}, intT)
	plans, _ := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(ctor)})

	// A parameterized constructor alone raises the need for a zero-parameter
	// one.
	require.Len(t, plans, 2)
	assert.Equal(t, synth.KindCtor, plans[1].Kind)
	assert.True(t, plans[1].Auto)
	assert.Equal(t, "NewWrapper", plans[1].Name)
}

func TestPlanCtorRenamed(t *testing.T) {
	p := newPlanner(synth.Policy{})
	target := &typedesc.TypeDesc{Type: namedStruct("Gadget")}

	// Mirrored constructors take the wrapper's name in place of the target's.
	ctor := member(typedesc.KindConstructor, "NewGadgetWithSize", typedesc.Type{}, intT)
	plans, _ := p.Plan(decl(target), []matching.Pair{identityPair(ctor)})
	require.NotEmpty(t, plans)
	assert.Equal(t, "NewWrapperWithSize", plans[0].Name)

	// Stub constructors keep the name the user declared.
	stubbed := identityPair(ctor)
	stubbed.FromStub = true
	plans, _ = p.Plan(decl(target), []matching.Pair{stubbed})
	require.NotEmpty(t, plans)
	assert.Equal(t, "NewGadgetWithSize", plans[0].Name)
}

func TestPlanAutoCtorClearedByZeroArg(t *testing.T) {
	p := newPlanner(synth.Policy{})

	zero := member(typedesc.KindConstructor, "NewGadget", typedesc.Type{})
	parameterized := member(typedesc.KindConstructor, "NewGadgetWith", typedesc.Type{}, intT)

	// The zero-parameter constructor clears the need permanently, in either
	// order.
	for _, pairs := range [][]matching.Pair{
		{identityPair(zero), identityPair(parameterized)},
		{identityPair(parameterized), identityPair(zero)},
	} {
		plans, _ := p.Plan(decl(&typedesc.TypeDesc{}), pairs)
		require.Len(t, plans, 2)
		for _, plan := range plans {
			assert.False(t, plan.Auto)
		}
	}
}

func TestPlanDispose(t *testing.T) {
	target := &typedesc.TypeDesc{Disposable: true}
	m := member(typedesc.KindMethod, "Close", typedesc.Type{})

	p := newPlanner(synth.Policy{PatchDispose: true})
	plans, _ := p.Plan(decl(target), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)
	assert.Equal(t, synth.KindDispose, plans[0].Kind)
	assert.True(t, plans[0].Aux.SuppressFinalizer)

	// Without the policy the same member is an ordinary method.
	p = newPlanner(synth.Policy{})
	plans, _ = p.Plan(decl(target), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)
	assert.Equal(t, synth.KindMethod, plans[0].Kind)
}

func TestPlanWriteOnlyPropertySkipped(t *testing.T) {
	p := newPlanner(synth.Policy{})

	m := member(typedesc.KindProperty, "Secret", intT)
	m.Writable = true

	plans, _ := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(m)})
	assert.Empty(t, plans)
}

func TestPlanProperty(t *testing.T) {
	p := newPlanner(synth.Policy{})

	m := member(typedesc.KindProperty, "Size", intT)
	m.Readable = true
	m.Writable = true

	plans, _ := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)
	assert.Equal(t, synth.KindProperty, plans[0].Kind)
	assert.NotNil(t, plans[0].Getter)
	assert.NotNil(t, plans[0].Setter)
}

func TestPlanIndexerEligibility(t *testing.T) {
	m := member(typedesc.KindProperty, "At", intT, intT)
	m.Readable = true

	p := newPlanner(synth.Policy{})

	// A list capability on the host makes the int-indexed property an
	// indexer.
	listHost := &typedesc.TypeDesc{Caps: typedesc.CapList, Elem: intT}
	plans, _ := p.Plan(decl(listHost), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)
	assert.Equal(t, synth.KindIndexer, plans[0].Kind)

	// The identical property without the capability is not synthesized.
	plans, _ = p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(m)})
	assert.Empty(t, plans)
}

func TestPlanIndexerMapKey(t *testing.T) {
	m := member(typedesc.KindProperty, "Lookup", intT, tokenT)
	m.Readable = true

	p := newPlanner(synth.Policy{})
	mapHost := &typedesc.TypeDesc{Caps: typedesc.CapReadOnlyMap, Key: tokenT, Elem: intT}
	plans, _ := p.Plan(decl(mapHost), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)
	assert.Equal(t, synth.KindIndexer, plans[0].Kind)

	// A key type the host's map shape does not declare is rejected.
	wrongKey := &typedesc.TypeDesc{Caps: typedesc.CapReadOnlyMap, Key: handleT, Elem: intT}
	plans, _ = p.Plan(decl(wrongKey), []matching.Pair{identityPair(m)})
	assert.Empty(t, plans)
}

func TestPlanEventStrategies(t *testing.T) {
	m := member(typedesc.KindEvent, "Changed", handlerT)

	// Native token hosting plus policy selects the token table.
	p := newPlanner(synth.Policy{NativeEventTokens: true})
	plans, _ := p.Plan(decl(&typedesc.TypeDesc{NativeEvents: true}), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)
	assert.Equal(t, synth.EventTokenTable, plans[0].Event)
	assert.NotEmpty(t, plans[0].Aux.OnceFlag)
	assert.NotEmpty(t, plans[0].Aux.TokenTable)

	// The identity marshal attaches the bare fan-out literal.
	_, bare := plans[0].Add.(synth.FanOut)
	assert.True(t, bare)

	// A handler conversion without native hosting selects the weak map.
	p = newPlanner(synth.Policy{})
	plans, _ = p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{convPair(m)})
	require.Len(t, plans, 1)
	assert.Equal(t, synth.EventWeakMap, plans[0].Event)
	assert.NotEmpty(t, plans[0].Aux.HandlerTable)

	// Identity marshal forwards directly with no auxiliary state.
	plans, _ = p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)
	assert.Equal(t, synth.EventDirect, plans[0].Event)
	assert.Equal(t, synth.Aux{}, plans[0].Aux)
}

func TestWriteTokenTableEventConverted(t *testing.T) {
	// A handler conversion on a native-token target keeps the token table;
	// the conversion applies to the single native attachment, so the fan-out
	// literal reaches the native add in its native representation.
	h := typedesc.TypeOf(types.NewSignatureType(nil, nil, nil,
		types.NewTuple(types.NewVar(token.NoPos, nil, "", types.Typ[types.Int])),
		nil, false))
	m := member(typedesc.KindEvent, "Changed", h)
	pair := identityPair(m)
	pair.Result.HasConversion = true
	pair.Result.ToWrapper = marshal.Conv{Converter: adaptersT, Name: "ToWrapper"}
	pair.Result.ToManaged = marshal.Conv{Converter: adaptersT, Name: "ToManaged"}

	p := newPlanner(synth.Policy{NativeEventTokens: true})
	plans, _ := p.Plan(decl(&typedesc.TypeDesc{NativeEvents: true}), []matching.Pair{pair})
	require.Len(t, plans, 1)
	require.Equal(t, synth.EventTokenTable, plans[0].Event)

	var buf bytes.Buffer
	w := codefmt.NewWriter(&buf, codefmt.New("example.com/fixture", nil))
	synth.WriteMember(w, "Wrapper", plans[0])

	assert.Equal(t,
		"func (x *Wrapper) AddChanged(handler func(int)) uint64 {\n"+
			"\tif !x.changedHooked {\n"+
			"\t\tx.changedHooked = true\n"+
			"\t\tx.changedTokens = make(map[uint64]func(int))\n"+
			"\t\tx.o.AddChanged(Adapters{}.ToManaged(func(a0 int) {\n"+
			"\t\t\tfor _, h := range x.changedTokens {\n"+
			"\t\t\t\th(a0)\n"+
			"\t\t\t}\n"+
			"\t\t}))\n"+
			"\t}\n"+
			"\tx.changedTokensSeq++\n"+
			"\ttoken := x.changedTokensSeq\n"+
			"\tx.changedTokens[token] = handler\n"+
			"\treturn token\n}\n"+
			"func (x *Wrapper) RemoveChanged(token uint64) {\n"+
			"\tdelete(x.changedTokens, token)\n}\n",
		buf.String())
}

func TestPlanRequireDeclaredDiagnostic(t *testing.T) {
	p := newPlanner(synth.Policy{RequireDeclared: true})

	m := member(typedesc.KindMethod, "Ping", typedesc.Type{})
	stubbed := identityPair(m)
	stubbed.FromStub = true

	_, diags := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(m), stubbed})
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Suggest, "func (x *Wrapper) Ping()")
	assert.Contains(t, diags[0].String(), "warning")
}

func TestWriteMethod(t *testing.T) {
	p := newPlanner(synth.Policy{})

	m := member(typedesc.KindMethod, "Add", intT, intT)
	plans, _ := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)

	var buf bytes.Buffer
	w := codefmt.NewWriter(&buf, codefmt.New("example.com/fixture", nil))
	synth.WriteMember(w, "Wrapper", plans[0])

	assert.Equal(t, "func (x *Wrapper) Add(p0 int) int {\n\treturn x.o.Add(p0)\n}\n", buf.String())
}

func TestWriteThrowingMethod(t *testing.T) {
	p := newPlanner(synth.Policy{})

	m := member(typedesc.KindMethod, "Fetch", intT, intT)
	m.Throws = true
	plans, _ := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{identityPair(m)})
	require.Len(t, plans, 1)

	var buf bytes.Buffer
	w := codefmt.NewWriter(&buf, codefmt.New("example.com/fixture", nil))
	synth.WriteMember(w, "Wrapper", plans[0])

	assert.Equal(t,
		"func (x *Wrapper) Fetch(p0 int) (res int, err error) {\n"+
			"\tv, err := x.o.Fetch(p0)\n"+
			"\tif err != nil {\n"+
			"\t\treturn res, wraperrors.Wrap(\"Wrapper.Fetch\", err)\n"+
			"\t}\n"+
			"\treturn v, nil\n}\n",
		buf.String())
}

func TestWriteConvertedMethod(t *testing.T) {
	p := newPlanner(synth.Policy{})

	m := member(typedesc.KindMethod, "Read", tokenT)
	plans, _ := p.Plan(decl(&typedesc.TypeDesc{}), []matching.Pair{convPair(m)})
	require.Len(t, plans, 1)

	var buf bytes.Buffer
	w := codefmt.NewWriter(&buf, codefmt.New("example.com/fixture", nil))
	synth.WriteMember(w, "Wrapper", plans[0])

	assert.Equal(t,
		"func (x *Wrapper) Read() Handle {\n\treturn Adapters{}.ToWrapper(x.o.Read())\n}\n",
		buf.String())
}
