// Package catalog builds type descriptors from loaded Go packages. It maps
// Go declarations onto the member model: getter/setter method pairs become
// properties, Add/Remove method pairs become events, New* package functions
// become constructors, and slice- or map-shaped types gain the matching
// collection capabilities.
//
// A trailing error result is treated as Go calling convention rather than
// part of the member shape: it forwards through generated code unchanged and
// is invisible to matching, the same way the original surface's exceptions
// would be.
package catalog

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/wherewhere/wrapgen/typedesc"
)

// LoadMode is the packages.Load mode the catalog needs.
const LoadMode = packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo

// Catalog describes the exported types of one loaded package.
type Catalog struct {
	pkg   *packages.Package
	cache *typedesc.TypeMap[*typedesc.TypeDesc]
}

// New creates a catalog over a loaded package.
func New(pkg *packages.Package) (*Catalog, error) {
	if pkg.Name == "" {
		return nil, fmt.Errorf("need pkg name")
	}
	if pkg.PkgPath == "" {
		return nil, fmt.Errorf("need pkg path")
	}
	if pkg.Types == nil {
		return nil, fmt.Errorf("need pkg types")
	}
	return &Catalog{
		pkg:   pkg,
		cache: typedesc.NewTypeMap[*typedesc.TypeDesc](),
	}, nil
}

// Load loads the single package matched by pattern, ready for cataloging.
func Load(pattern string) (*Catalog, error) {
	pkgs, err := packages.Load(&packages.Config{Mode: LoadMode}, pattern)
	if err != nil {
		return nil, err
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("pattern %q matched %d packages, need exactly 1", pattern, len(pkgs))
	}
	if len(pkgs[0].Errors) != 0 {
		return nil, pkgs[0].Errors[0]
	}
	return New(pkgs[0])
}

// Package returns the loaded package the catalog describes.
func (c *Catalog) Package() *packages.Package {
	return c.pkg
}

// Describe builds the descriptor of the named type in the package scope.
func (c *Catalog) Describe(name string) (*typedesc.TypeDesc, error) {
	obj := c.pkg.Types.Scope().Lookup(name)
	if obj == nil {
		return nil, fmt.Errorf("no type %s in %s", name, c.pkg.PkgPath)
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%s in %s is not a type", name, c.pkg.PkgPath)
	}
	return c.DescribeType(typedesc.TypeOf(tn.Type())), nil
}

// DescribeType builds the descriptor of an arbitrary type. Descriptors are
// cached, so mutually referring types do not recurse forever.
func (c *Catalog) DescribeType(ty typedesc.Type) *typedesc.TypeDesc {
	if desc, ok := c.cache.Get(ty); ok {
		return desc
	}

	desc := &typedesc.TypeDesc{
		Type:        ty,
		Name:        types.TypeString(ty.T, nil),
		IsValueType: !ty.IsPointer() && !ty.IsInterface(),
	}
	c.cache.Put(ty, desc)

	switch {
	case ty.IsInterface():
		c.interfaceMembers(desc, ty)
	case ty.IsNamed():
		c.namedMembers(desc, ty)
	}

	if ty.IsSlice() {
		desc.Caps = typedesc.CapList | typedesc.CapReadOnlyList
		desc.Elem = *ty.Elem
	}
	if ty.IsMap() {
		desc.Caps = typedesc.CapMap | typedesc.CapReadOnlyMap
		desc.Key = *ty.Key
		desc.Elem = *ty.Elem
	}
	return desc
}

func (c *Catalog) interfaceMembers(desc *typedesc.TypeDesc, ty typedesc.Type) {
	iface := ty.Interface
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		desc.Bases = append(desc.Bases, c.DescribeType(typedesc.TypeOf(iface.EmbeddedType(i))))
	}

	var methods []*types.Func
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		if m := iface.ExplicitMethod(i); m.Exported() {
			methods = append(methods, m)
		}
	}
	c.classify(desc, ty, methods)
}

func (c *Catalog) namedMembers(desc *typedesc.TypeDesc, ty typedesc.Type) {
	named := ty.Named

	// Embedded named fields form the inheritance chain.
	if ty.IsStruct() {
		for i := 0; i < ty.Struct.NumFields(); i++ {
			f := ty.Struct.Field(i)
			if f.Anonymous() && f.Exported() {
				desc.Bases = append(desc.Bases, c.DescribeType(typedesc.TypeOf(f.Type())))
			}
		}
	}

	var methods []*types.Func
	for i := 0; i < named.NumMethods(); i++ {
		if m := named.Method(i); m.Exported() {
			methods = append(methods, m)
		}
	}
	c.classify(desc, ty, methods)
	c.constructors(desc, ty)
}

// classify turns raw methods into members, pairing accessors and event
// registrations. Members keep the declaration order of the method that
// introduced them.
func (c *Catalog) classify(desc *typedesc.TypeDesc, ty typedesc.Type, methods []*types.Func) {
	byName := make(map[string]*types.Func, len(methods))
	for _, m := range methods {
		byName[m.Name()] = m
	}

	consumed := make(map[string]bool)
	for _, m := range methods {
		name := m.Name()
		if consumed[name] {
			continue
		}

		if prop, ok := c.property(ty, m, byName, consumed); ok {
			desc.Members = append(desc.Members, prop)
			continue
		}
		if event, ok := c.event(ty, m, byName, consumed, desc); ok {
			desc.Members = append(desc.Members, event)
			continue
		}

		member := c.method(ty, m)
		if member.Name == "Close" && member.Arity() == 0 && member.IsVoid() && !member.Static {
			desc.Disposable = true
		}
		desc.Members = append(desc.Members, member)
	}
}

// property pairs a getter X() T with a setter SetX(T). Either side may be
// encountered first; lone getters and lone setters stay plain methods.
func (c *Catalog) property(ty typedesc.Type, m *types.Func, byName map[string]*types.Func, consumed map[string]bool) (typedesc.Member, bool) {
	getter, setter := m, (*types.Func)(nil)

	if rest, ok := strings.CutPrefix(m.Name(), "Set"); ok && rest != "" {
		getter, setter = byName[rest], m
	} else {
		setter = byName["Set"+m.Name()]
	}
	if getter == nil || setter == nil {
		return typedesc.Member{}, false
	}

	gsig := getter.Signature()
	ssig := setter.Signature()
	if gsig.Params().Len() != 0 || gsig.Results().Len() != 1 ||
		ssig.Params().Len() != 1 || ssig.Results().Len() != 0 {
		return typedesc.Member{}, false
	}
	if !types.Identical(gsig.Results().At(0).Type(), ssig.Params().At(0).Type()) {
		return typedesc.Member{}, false
	}

	consumed[getter.Name()] = true
	consumed[setter.Name()] = true

	return typedesc.Member{
		Name:      getter.Name(),
		Kind:      typedesc.KindProperty,
		Declaring: ty,
		Result:    typedesc.TypeOf(gsig.Results().At(0).Type()),
		Readable:  true,
		Writable:  true,
		Pos:       getter.Pos(),
	}, true
}

// event pairs AddX with RemoveX. A token-returning Add marks the host as a
// native event host, where Remove takes the token instead of the handler.
func (c *Catalog) event(ty typedesc.Type, m *types.Func, byName map[string]*types.Func, consumed map[string]bool, desc *typedesc.TypeDesc) (typedesc.Member, bool) {
	rest, ok := strings.CutPrefix(m.Name(), "Add")
	if !ok || rest == "" {
		return typedesc.Member{}, false
	}
	remove := byName["Remove"+rest]
	if remove == nil {
		return typedesc.Member{}, false
	}

	asig := m.Signature()
	rsig := remove.Signature()
	if asig.Params().Len() != 1 || rsig.Params().Len() != 1 {
		return typedesc.Member{}, false
	}

	consumed[m.Name()] = true
	consumed[remove.Name()] = true

	if asig.Results().Len() == 1 {
		desc.NativeEvents = true
	}

	return typedesc.Member{
		Name:      rest,
		Kind:      typedesc.KindEvent,
		Declaring: ty,
		Result:    typedesc.TypeOf(asig.Params().At(0).Type()),
		Pos:       m.Pos(),
	}, true
}

func (c *Catalog) method(ty typedesc.Type, m *types.Func) typedesc.Member {
	sig := m.Signature()

	member := typedesc.Member{
		Name:       m.Name(),
		Kind:       typedesc.KindMethod,
		Declaring:  ty,
		TypeParams: sig.TypeParams().Len(),
		Pos:        m.Pos(),
	}

	for i := 0; i < sig.Params().Len(); i++ {
		p := sig.Params().At(i)
		name := p.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("p%d", i)
		}
		member.Params = append(member.Params, typedesc.Param{
			Name: name,
			Type: typedesc.TypeOf(p.Type()),
			Dir:  typedesc.DirIn,
		})
	}

	member.Result, member.Throws = resultOf(sig)
	return member
}

// resultOf models the single meaningful result, dropping a trailing error.
func resultOf(sig *types.Signature) (typedesc.Type, bool) {
	results := sig.Results()
	n := results.Len()

	throws := n > 0 && typedesc.TypeOf(results.At(n-1).Type()).IsError()
	if throws {
		n--
	}
	if n == 0 {
		return typedesc.Type{}, throws
	}
	return typedesc.TypeOf(results.At(0).Type()), throws
}

// constructors collects package functions named after the type, New<Type>
// and New<Type>* with the type (or a pointer to it) as result.
func (c *Catalog) constructors(desc *typedesc.TypeDesc, ty typedesc.Type) {
	if !ty.IsNamed() {
		return
	}
	typeName := ty.Named.Obj().Name()

	scope := c.pkg.Types.Scope()
	for _, name := range scope.Names() {
		if !strings.HasPrefix(name, "New"+typeName) {
			continue
		}
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}

		sig := fn.Signature()
		result, _ := resultOf(sig)
		if !result.Deref().Identical(ty) {
			continue
		}

		ctor := c.method(ty, fn)
		ctor.Kind = typedesc.KindConstructor
		ctor.Static = true
		ctor.Result = typedesc.Type{}
		desc.Members = append(desc.Members, ctor)
	}
}
