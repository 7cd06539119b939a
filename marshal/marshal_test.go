package marshal_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wherewhere/wrapgen/typedesc"
)

// fixtureSrc declares the type relationships the marshal tests exercise: an
// interface with value- and pointer-receiver implementors, two unrelated
// struct pairs standing in for native/wrapper representations, and a generic
// pair for adapter instantiation.
const fixtureSrc = `package fixture

type Animal interface{ Sound() string }

type Dog struct{}

func (Dog) Sound() string { return "woof" }

type Cat struct{}

func (*Cat) Sound() string { return "meow" }

type Task struct{ v int }

type Operation struct{ v int }

type AltOperation struct{ v int }

type Promise[T any] struct{ v T }

type Future[T any] struct{ v T }

type Converters struct{}

var (
	promiseOfInt Promise[int]
	futureOfInt  Future[int]
)
`

func loadFixture(t *testing.T) *types.Package {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "fixture.go", fixtureSrc, parser.AllErrors)
	require.NoError(t, err)

	pkg, err := (&types.Config{}).Check("fixture", fset, []*ast.File{file}, nil)
	require.NoError(t, err)
	return pkg
}

// fixtureType looks up a type or variable declared in fixtureSrc.
func fixtureType(t *testing.T, pkg *types.Package, name string) typedesc.Type {
	t.Helper()

	obj := pkg.Scope().Lookup(name)
	require.NotNil(t, obj, "fixture has no %q", name)
	return typedesc.TypeOf(obj.Type())
}
