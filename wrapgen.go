// Package wrapgen generates wrapper types over existing Go API surfaces.
// Given a target type's member catalog and a wrapper declaration, it decides
// which members to mirror, how each parameter and return value converts
// between the native and the exposed representation, and what forwarding
// code to synthesize.
//
// The pipeline is resolver, matcher, planner: [marshal.Resolver] reconciles
// type pairs, [matching.Matcher] pairs wrapper candidates with target
// members, and [synth.Planner] turns the pairs into renderable member plans.
// One [Generator] may plan many declarations; everything it holds is
// read-only after construction, so declarations can be planned concurrently.
package wrapgen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"maps"
	"slices"

	"github.com/wherewhere/wrapgen/internal/codefmt"
	"github.com/wherewhere/wrapgen/marshal"
	"github.com/wherewhere/wrapgen/matching"
	"github.com/wherewhere/wrapgen/synth"
	"github.com/wherewhere/wrapgen/typedesc"
)

// Version is set on release builds.
var Version = ""

// wraperrorsPath is the runtime support package throwing forwarders import.
const wraperrorsPath = "github.com/wherewhere/wrapgen/pkg/wraperrors"

// Generator plans and renders wrapper declarations.
type Generator struct {
	resolver *marshal.Resolver
	matcher  *matching.Matcher
	planner  *synth.Planner
	fmt      codefmt.Formatter
	pkgName  string
}

// New creates a generator emitting code into the package named pkgName at
// import path pkgPath. The registry must be fully constructed before this
// call and is never mutated afterwards; fset may be nil when no position
// information is available.
func New(pkgPath, pkgName string, fset *token.FileSet, reg *marshal.Registry, policy synth.Policy) *Generator {
	f := codefmt.New(pkgPath, fset)
	resolver := marshal.NewResolver(reg)
	return &Generator{
		resolver: resolver,
		matcher:  matching.NewMatcher(resolver, f),
		planner:  synth.NewPlanner(policy, f),
		fmt:      f,
		pkgName:  pkgName,
	}
}

// Annotate registers a type-level marshal annotation. All annotations must
// be registered before the first Plan or Generate call.
func (g *Generator) Annotate(t typedesc.Type, a *typedesc.MarshalAnnotation) {
	g.resolver.Annotate(t, a)
}

// Plan matches one declaration against its target and plans every member to
// synthesize. The returned plans are valid even when err is non-nil; the
// error covers candidates that matched nothing.
func (g *Generator) Plan(decl *matching.Decl) ([]synth.MemberPlan, []synth.Diagnostic, error) {
	pairs, err := g.matcher.Match(decl)
	plans, diags := g.planner.Plan(decl, pairs)
	return plans, diags, err
}

// Generate renders the wrapper source file for the given declarations, in
// order. Diagnostics are advisory and may accompany both success and
// failure.
func (g *Generator) Generate(decls []*matching.Decl) ([]byte, []synth.Diagnostic, error) {
	var body bytes.Buffer
	w := codefmt.NewWriter(&body, g.fmt)

	var diags []synth.Diagnostic
	var errs []error
	var extraImports []string

	for _, decl := range decls {
		plans, ds, err := g.Plan(decl)
		diags = append(diags, ds...)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		g.writeWrapper(w, decl, plans)
		for _, plan := range plans {
			if plan.Aux.SuppressFinalizer && !slices.Contains(extraImports, "runtime") {
				extraImports = append(extraImports, "runtime")
			}
			if plan.Aux.HandlerTable != "" && !slices.Contains(extraImports, "reflect") {
				extraImports = append(extraImports, "reflect")
			}
			if plan.Throws && !slices.Contains(extraImports, wraperrorsPath) {
				extraImports = append(extraImports, wraperrorsPath)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, diags, err
	}
	return g.frame(w, &body, extraImports), diags, nil
}

// writeWrapper renders the wrapper struct with its hidden state, then every
// member plan.
func (g *Generator) writeWrapper(w *codefmt.Writer, decl *matching.Decl, plans []synth.MemberPlan) {
	target := decl.Target.Type
	w.Printf("// %s wraps %t.\n", decl.Name, target.T)
	w.Printf("type %s struct {\n", decl.Name)
	if target.IsNamed() && target.IsStruct() {
		// Struct targets are held by pointer, matching their constructors.
		w.Printf("\to *%t\n", target.T)
	} else {
		w.Printf("\to %t\n", target.T)
	}
	for _, plan := range plans {
		synth.WriteAuxFields(w, plan)
	}
	w.Printf("}\n\n")

	for _, plan := range plans {
		synth.WriteMember(w, decl.Name, plan)
		w.Printf("\n")
	}
}

// frame prepends the file header and the import block collected during
// rendering, then applies gofmt when it succeeds. The block is emitted in
// sorted order so the output stays deterministic even when gofmt rejects the
// body and the raw bytes are returned.
func (g *Generator) frame(w *codefmt.Writer, body *bytes.Buffer, extraImports []string) []byte {
	versionSuffix := ""
	if Version != "" {
		versionSuffix = "@" + Version
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by github.com/wherewhere/wrapgen%s. DO NOT EDIT.\n", versionSuffix)
	fmt.Fprintf(&buf, "package %s\n", g.pkgName)

	if len(w.Imports()) != 0 || len(extraImports) != 0 {
		fmt.Fprintf(&buf, "import (\n")
		for _, path := range slices.Sorted(slices.Values(extraImports)) {
			fmt.Fprintf(&buf, "%q\n", path)
		}
		for _, alias := range slices.Sorted(maps.Keys(w.Imports())) {
			if imp := w.Imports()[alias]; imp.HasAlias {
				fmt.Fprintf(&buf, "%s %q\n", alias, imp.Path())
			} else {
				fmt.Fprintf(&buf, "%q\n", imp.Path())
			}
		}
		fmt.Fprintf(&buf, ")\n")
	}

	_, _ = io.Copy(&buf, body)
	code := buf.Bytes()

	// Apply gofmt if succeeded
	if fmtCode, err := format.Source(code); err == nil {
		code = fmtCode
	}
	return code
}
