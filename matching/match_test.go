package matching_test

import (
	"fmt"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wherewhere/wrapgen/internal/codefmt"
	"github.com/wherewhere/wrapgen/marshal"
	"github.com/wherewhere/wrapgen/matching"
	"github.com/wherewhere/wrapgen/typedesc"
)

var (
	fixturePkg = types.NewPackage("example.com/fixture", "fixture")

	// Token is a native representation, Handle its wrapper counterpart, and
	// Extra the auxiliary argument of the multi-arg adapter between them.
	tokenT    = namedStruct("Token")
	handleT   = namedStruct("Handle")
	extraT    = namedStruct("Extra")
	adaptersT = namedStruct("Adapters")

	intT = typedesc.TypeOf(types.Typ[types.Int])
)

func namedStruct(name string) typedesc.Type {
	obj := types.NewTypeName(token.NoPos, fixturePkg, name, nil)
	named := types.NewNamed(obj, types.NewStruct(nil, nil), nil)
	return typedesc.TypeOf(named)
}

func method(name string, result typedesc.Type, params ...typedesc.Type) typedesc.Member {
	m := typedesc.Member{Name: name, Kind: typedesc.KindMethod, Result: result}
	for i, p := range params {
		m.Params = append(m.Params, typedesc.Param{
			Name: fmt.Sprintf("p%d", i),
			Type: p,
			Dir:  typedesc.DirIn,
		})
	}
	return m
}

func stub(m typedesc.Member) typedesc.Member {
	m.Stub = true
	return m
}

// tokenHandleRegistry reconciles Token with Handle, optionally through a
// multi-arg adapter taking the given auxiliary parameters.
func tokenHandleRegistry(extra ...typedesc.Type) *marshal.Registry {
	return marshal.NewRegistry(marshal.Entry{
		Managed:     tokenT,
		Wrapper:     handleT,
		ToWrapper:   marshal.Conv{Converter: adaptersT, Name: "ToWrapper"},
		ToManaged:   marshal.Conv{Converter: adaptersT, Name: "ToManaged"},
		ExtraParams: extra,
	})
}

func newMatcher(reg *marshal.Registry) *matching.Matcher {
	return matching.NewMatcher(marshal.NewResolver(reg), codefmt.New("example.com/fixture", nil))
}

func gadget(members ...typedesc.Member) *typedesc.TypeDesc {
	return &typedesc.TypeDesc{Name: "fixture.Gadget", Members: members}
}

func TestMatchNone(t *testing.T) {
	m := newMatcher(nil)

	pairs, err := m.Match(&matching.Decl{
		Target: gadget(method("Ping", typedesc.Type{})),
		Mode:   matching.ModeNone,
	})
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestMatchAllMirrors(t *testing.T) {
	m := newMatcher(nil)

	pairs, err := m.Match(&matching.Decl{
		Target: gadget(
			method("Ping", typedesc.Type{}),
			method("Add", intT, intT, intT),
		),
		Mode: matching.ModeAll,
	})
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, "Ping", pairs[0].Wrapper.Name)
	assert.False(t, pairs[0].FromStub)

	assert.Equal(t, "Add", pairs[1].Wrapper.Name)
	require.Len(t, pairs[1].Params, 2)
	assert.False(t, pairs[1].Params[0].HasConversion)
	assert.True(t, pairs[1].Wrapper.Result.Identical(intT))
}

func TestMatchAllStubOverride(t *testing.T) {
	m := newMatcher(nil)

	pairs, err := m.Match(&matching.Decl{
		Target:  gadget(method("Ping", typedesc.Type{})),
		Mode:    matching.ModeAll,
		Members: []typedesc.Member{stub(method("Ping", typedesc.Type{}))},
	})
	require.NoError(t, err)

	// Exactly one entry, built from the user's stub.
	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].FromStub)
}

func TestMatchAllCompleteMemberSuppresses(t *testing.T) {
	m := newMatcher(nil)

	pairs, err := m.Match(&matching.Decl{
		Target:  gadget(method("Ping", typedesc.Type{})),
		Mode:    matching.ModeAll,
		Members: []typedesc.Member{method("Ping", typedesc.Type{})},
	})
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestMatchAllFoldsMultiArgReturn(t *testing.T) {
	m := newMatcher(tokenHandleRegistry(extraT))

	pairs, err := m.Match(&matching.Decl{
		Target: gadget(method("Fetch", tokenT, intT, extraT)),
		Mode:   matching.ModeAll,
	})
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	// The trailing Extra parameter folds into the multi-arg return adapter;
	// the wrapper keeps only the leading parameter.
	w := pairs[0].Wrapper
	require.Len(t, w.Params, 1)
	assert.True(t, w.Params[0].Type.Identical(intT))
	assert.True(t, w.Result.Identical(handleT))
	assert.True(t, pairs[0].Result.IsMultiArg())
}

func TestMatchAllUnfoldableMultiArgMirrorsIdentity(t *testing.T) {
	m := newMatcher(tokenHandleRegistry(extraT))

	// Fetch's parameters do not end with the adapter's Extra, so the
	// multi-arg return adapter has nothing to absorb; the wrapper mirrors
	// the native Token result unconverted.
	pairs, err := m.Match(&matching.Decl{
		Target: gadget(method("Fetch", tokenT, intT)),
		Mode:   matching.ModeAll,
	})
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	w := pairs[0].Wrapper
	require.Len(t, w.Params, 1)
	assert.True(t, w.Params[0].Type.Identical(intT))
	assert.True(t, w.Result.Identical(tokenT))
	assert.False(t, pairs[0].Result.IsMultiArg())
	assert.False(t, pairs[0].Result.HasConversion)
}

func TestMatchDeclared(t *testing.T) {
	m := newMatcher(tokenHandleRegistry())

	pairs, err := m.Match(&matching.Decl{
		Target:  gadget(method("Read", tokenT)),
		Mode:    matching.ModeDeclared,
		Members: []typedesc.Member{stub(method("Read", handleT))},
	})
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	assert.True(t, pairs[0].FromStub)
	assert.True(t, pairs[0].Result.HasConversion)
	assert.True(t, pairs[0].Result.Wrapper.Identical(handleT))
}

func TestMatchDeclaredIgnoresCompleteMembers(t *testing.T) {
	m := newMatcher(nil)

	pairs, err := m.Match(&matching.Decl{
		Target:  gadget(method("Ping", typedesc.Type{})),
		Mode:    matching.ModeDeclared,
		Members: []typedesc.Member{method("Ping", typedesc.Type{})},
	})
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestMatchDeclaredNoMatch(t *testing.T) {
	m := newMatcher(nil)

	_, err := m.Match(&matching.Decl{
		Target:  gadget(method("ReadBytes", tokenT)),
		Name:    "Wrapper",
		Mode:    matching.ModeDeclared,
		Members: []typedesc.Member{stub(method("ReedBytes", tokenT))},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAIL:")
	assert.Contains(t, err.Error(), "ReedBytes")
	assert.Contains(t, err.Error(), "did you mean ReadBytes")
}

func TestMatchDeclaredEqualArityRejectsMultiArg(t *testing.T) {
	m := newMatcher(tokenHandleRegistry(extraT))

	// The stub declares the target's full arity, leaving the adapter's
	// auxiliary Extra parameter no argument to bind to; the candidate does
	// not match.
	_, err := m.Match(&matching.Decl{
		Target:  gadget(method("Fetch", tokenT, intT)),
		Name:    "Wrapper",
		Mode:    matching.ModeDeclared,
		Members: []typedesc.Member{stub(method("Fetch", handleT, intT))},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAIL:")
	assert.Contains(t, err.Error(), "Fetch")
}

func TestMatchOverloadAmbiguityLargerArityWins(t *testing.T) {
	// Both overloads satisfy the stub: the one-parameter overload through
	// the plain Token adapter, the two-parameter overload through the
	// multi-arg Token2 adapter absorbing the trailing Extra. The wider
	// overload wins.
	token2T := namedStruct("Token2")
	m := newMatcher(marshal.NewRegistry(
		marshal.Entry{
			Managed:   tokenT,
			Wrapper:   handleT,
			ToWrapper: marshal.Conv{Converter: adaptersT, Name: "ToWrapper"},
			ToManaged: marshal.Conv{Converter: adaptersT, Name: "ToManaged"},
		},
		marshal.Entry{
			Managed:     token2T,
			Wrapper:     handleT,
			ToWrapper:   marshal.Conv{Converter: adaptersT, Name: "ToWrapper2"},
			ToManaged:   marshal.Conv{Converter: adaptersT, Name: "ToManaged2"},
			ExtraParams: []typedesc.Type{extraT},
		},
	))

	pairs, err := m.Match(&matching.Decl{
		Target: gadget(
			method("Fetch", tokenT, intT),
			method("Fetch", token2T, intT, extraT),
		),
		Mode:    matching.ModeDeclared,
		Members: []typedesc.Member{stub(method("Fetch", handleT, intT))},
	})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 2, pairs[0].Target.Arity())
}

func TestMatchInterface(t *testing.T) {
	m := newMatcher(nil)

	iface := &typedesc.TypeDesc{
		Name:    "fixture.Pinger",
		Members: []typedesc.Member{method("Ping", typedesc.Type{})},
	}

	pairs, err := m.Match(&matching.Decl{
		Target: gadget(
			method("Ping", typedesc.Type{}),
			method("Ignored", typedesc.Type{}),
		),
		Mode:       matching.ModeInterface,
		Interfaces: []*typedesc.TypeDesc{iface},
	})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Ping", pairs[0].Target.Name)
}

func TestMatchDeclaredAndInterfaceUnion(t *testing.T) {
	m := newMatcher(nil)

	iface := &typedesc.TypeDesc{
		Name: "fixture.Pinger",
		Members: []typedesc.Member{
			method("Ping", typedesc.Type{}),
		},
	}

	pairs, err := m.Match(&matching.Decl{
		Target: gadget(
			method("Ping", typedesc.Type{}),
			method("Reset", typedesc.Type{}),
		),
		Mode:       matching.ModeDeclared | matching.ModeInterface,
		Interfaces: []*typedesc.TypeDesc{iface},
		Members:    []typedesc.Member{stub(method("Reset", typedesc.Type{}))},
	})
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	// Declared stubs come first, then interface requirements.
	assert.Equal(t, "Reset", pairs[0].Target.Name)
	assert.True(t, pairs[0].FromStub)
	assert.Equal(t, "Ping", pairs[1].Target.Name)
	assert.False(t, pairs[1].FromStub)
}

func TestMatchEventHandlerInvariant(t *testing.T) {
	event := typedesc.Member{
		Name:   "Changed",
		Kind:   typedesc.KindEvent,
		Result: tokenT,
	}
	wrapperEvent := event
	wrapperEvent.Result = handleT

	// Handler types resolve invariantly, which the exact adapter pair
	// satisfies.
	m := newMatcher(tokenHandleRegistry())
	pairs, err := m.Match(&matching.Decl{
		Target:  gadget(event),
		Mode:    matching.ModeDeclared,
		Members: []typedesc.Member{stub(wrapperEvent)},
	})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].Result.HasConversion)
}
