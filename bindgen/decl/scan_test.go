package decl

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/starbind/errors"
)

func scanSource(t *testing.T, src string, opts Options) (*Package, error) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "fixture.go", src, parser.ParseComments)
	require.NoError(t, err)
	return Scan(fset, []*ast.File{f}, opts)
}

func mustScan(t *testing.T, src string) *Package {
	t.Helper()
	pkg, err := scanSource(t, src, Options{})
	require.NoError(t, err)
	return pkg
}

func TestScanRecord(t *testing.T) {
	pkg := mustScan(t, `package game

import "time"

//starbind:structure
type Player struct {
	Name   string
	HP     int    `+"`starbind:\"hit_points\"`"+`
	secret string `+"`starbind:\"-\"`"+`
	X, Y   float64
	Idle   time.Duration
	_      int
}
`)
	require.Len(t, pkg.Decls, 1)
	d := pkg.Decls[0]
	assert.Equal(t, KindRecord, d.Kind)
	assert.Equal(t, "game", pkg.Name)
	require.NotNil(t, d.Record)

	var names, goNames, types []string
	for _, f := range d.Record.Fields {
		names = append(names, f.Name)
		goNames = append(goNames, f.GoName)
		types = append(types, f.Type.Text)
	}
	assert.Equal(t, []string{"name", "hit_points", "x", "y", "idle"}, names)
	assert.Equal(t, []string{"Name", "HP", "X", "Y", "Idle"}, goNames)
	assert.Equal(t, []string{"string", "int", "float64", "float64", "time.Duration"}, types)
	assert.Equal(t, "time", d.Record.Fields[4].Type.Imports["time"])
	assert.Equal(t, 7, d.Record.Fields[0].Pos.Line)
}

func TestScanConstEnum(t *testing.T) {
	pkg := mustScan(t, `package game

//starbind:enumeration
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusDone
	unrelated = 5
	other
)

const Paused Status = 9
`)
	require.Len(t, pkg.Decls, 1)
	u := pkg.Decls[0].Union
	require.NotNil(t, u)
	assert.Equal(t, StyleConst, u.Style)

	var names, goNames []string
	for _, v := range u.Variants {
		names = append(names, v.Name)
		goNames = append(goNames, v.GoName)
		assert.True(t, v.IsUnit)
	}
	assert.Equal(t, []string{"Idle", "Running", "Done", "Paused"}, names)
	assert.Equal(t, []string{"StatusIdle", "StatusRunning", "StatusDone", "Paused"}, goNames)
	assert.Len(t, u.Units(), 4)
}

func TestScanSealedEnum(t *testing.T) {
	pkg := mustScan(t, `package geo

// Shape is a closed set of shapes.
//starbind:enumeration
type Shape interface{ isShape() }

type Square struct{}
type Circle struct{ R float64 }
type Dot struct{}

func (*Dot) isShape()    {}
func (Circle) isShape()  {}
func (Square) isShape()  {}
`)
	require.Len(t, pkg.Decls, 1)
	u := pkg.Decls[0].Union
	require.NotNil(t, u)
	assert.Equal(t, StyleSealed, u.Style)
	assert.Equal(t, "isShape", u.Marker)

	require.Len(t, u.Variants, 3)
	assert.Equal(t, VariantDescriptor{Name: "Square", GoName: "Square", IsUnit: true, Pos: u.Variants[0].Pos}, u.Variants[0])
	assert.Equal(t, "Circle", u.Variants[1].Name)
	assert.False(t, u.Variants[1].IsUnit)
	assert.Equal(t, "Dot", u.Variants[2].Name)
	assert.True(t, u.Variants[2].Pointer)
	assert.True(t, u.Variants[2].IsUnit)

	units := u.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "Square", units[0].Name)
	assert.Equal(t, "Dot", units[1].Name)
}

const counterBlock = `package counter

//starbind:structure
//starbind:implementation
type Counter struct {
	value int
}

func NewCounter() *Counter { return &Counter{} }

func NewCounterFrom(start int) Counter { return Counter{value: start} }

func (c *Counter) Increment(by int) { c.value += by }

func (c Counter) Get() int { return c.value }

func (c Counter) hidden() {}

//starbind:skip
func (c Counter) Skipped() {}

//starbind:name total
func (c Counter) Sum(xs ...int) int { return 0 }

func (c *Counter) Reset(_ int, keep bool) error { return nil }

//starbind:static Counter
func parseCounter(s string) (Counter, error) { return Counter{}, nil }

func Helper() int { return 0 }

type Other struct{}

func (o Other) Get() int { return 1 }
`

func TestScanMethodBlock(t *testing.T) {
	pkg := mustScan(t, counterBlock)
	require.Len(t, pkg.Decls, 2)
	assert.Equal(t, KindRecord, pkg.Decls[0].Kind)
	assert.Equal(t, KindMethodBlock, pkg.Decls[1].Kind)

	block := pkg.Lookup(KindMethodBlock, "Counter").Block
	require.NotNil(t, block)

	type row struct {
		name     string
		goName   string
		receiver Receiver
		arity    int
	}
	var got []row
	for _, r := range block.Routines {
		got = append(got, row{r.Name, r.GoName, r.Receiver, r.Arity()})
	}
	assert.Equal(t, []row{
		{"new", "NewCounter", ReceiverNone, 0},
		{"new_from", "NewCounterFrom", ReceiverNone, 1},
		{"increment", "Increment", ReceiverMutRef, 1},
		{"get", "Get", ReceiverRef, 0},
		{"total", "Sum", ReceiverRef, 1},
		{"reset", "Reset", ReceiverMutRef, 1},
		{"parse_counter", "parseCounter", ReceiverNone, 1},
	}, got)

	increment := block.Routines[2]
	require.Len(t, increment.Params, 1)
	assert.Equal(t, Param{Name: "by", Type: increment.Params[0].Type, Forwarded: true}, increment.Params[0])
	assert.Equal(t, "int", increment.Params[0].Type.Text)
	assert.Empty(t, increment.Results)

	sum := block.Routines[4]
	assert.True(t, sum.Variadic)
	assert.Equal(t, "int", sum.Params[0].Type.Text)

	reset := block.Routines[5]
	require.Len(t, reset.Params, 2)
	assert.False(t, reset.Params[0].Forwarded)
	assert.Equal(t, "keep", reset.Params[1].Name)
	require.Len(t, reset.Results, 1)
	assert.Equal(t, "error", reset.Results[0].Text)

	parse := block.Routines[6]
	require.Len(t, parse.Results, 2)
	assert.Equal(t, "Counter", parse.Results[0].Text)
}

func TestScanGoNaming(t *testing.T) {
	pkg, err := scanSource(t, counterBlock, Options{Naming: NamingGo})
	require.NoError(t, err)

	block := pkg.Lookup(KindMethodBlock, "Counter").Block
	var names []string
	for _, r := range block.Routines {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"new", "newFrom", "Increment", "Get", "total", "Reset", "parseCounter"}, names)
	assert.Equal(t, "value", pkg.Lookup(KindRecord, "Counter").Record.Fields[0].Name)
}

func TestScanUnnamedParameters(t *testing.T) {
	pkg := mustScan(t, `package p

//starbind:implementation
type T struct{}

func (T) Touch(int, string) {}
`)
	r := pkg.Decls[0].Block.Routines[0]
	require.Len(t, r.Params, 2)
	assert.False(t, r.Params[0].Forwarded)
	assert.False(t, r.Params[1].Forwarded)
	assert.Equal(t, 0, r.Arity())
	assert.Equal(t, ReceiverRef, r.Receiver)
}

func TestScanCompileDirectives(t *testing.T) {
	pkg := mustScan(t, `package p

//starbind:structure
type Counter struct{ value int }

//starbind:compile Counter, fields,
var _ = 1

func f() {
	//starbind:compile   Other, methods
}
`)
	require.Len(t, pkg.Compiles, 2)
	assert.Equal(t, "Counter, fields,", pkg.Compiles[0].Text)
	assert.Equal(t, 6, pkg.Compiles[0].Pos.Line)
	assert.Equal(t, 20, pkg.Compiles[0].Pos.Column)
	assert.Equal(t, "Other, methods", pkg.Compiles[1].Text)
	assert.Equal(t, 23, pkg.Compiles[1].Pos.Column)
}

func TestScanSkipsGeneratedFiles(t *testing.T) {
	fset := token.NewFileSet()
	src, err := parser.ParseFile(fset, "a.go", "package p\n\n//starbind:structure\ntype A struct{ X int }\n", parser.ParseComments)
	require.NoError(t, err)
	gen, err := parser.ParseFile(fset, "zz_generated.starbind.go",
		"// Code generated by starbind. DO NOT EDIT.\n\npackage p\n\n//starbind:structure\ntype B struct{ Y int }\n", parser.ParseComments)
	require.NoError(t, err)

	pkg, err := Scan(fset, []*ast.File{src, gen}, Options{})
	require.NoError(t, err)
	require.Len(t, pkg.Decls, 1)
	assert.Equal(t, "A", pkg.Decls[0].Name)
	assert.Contains(t, pkg.Types, "A")
	assert.NotContains(t, pkg.Types, "B")
}

func TestScanMalformed(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
		line    int
	}{
		{
			name: "embedded field",
			src: `package p

//starbind:structure
type T struct {
	Base
	X int
}
type Base struct{}
`,
			wantMsg: "embedded field Base in T has no name",
			line:    5,
		},
		{
			name: "duplicate field name",
			src: `package p

//starbind:structure
type T struct {
	A int ` + "`starbind:\"b\"`" + `
	B int
}
`,
			wantMsg: `field name "b" in T already used`,
			line:    6,
		},
		{
			name:    "structure on non-struct",
			src:     "package p\n\n//starbind:structure\ntype T int\n",
			wantMsg: "requires a struct type",
			line:    4,
		},
		{
			name:    "enumeration on struct",
			src:     "package p\n\n//starbind:enumeration\ntype T struct{}\n",
			wantMsg: "cannot annotate T",
			line:    4,
		},
		{
			name:    "interface without marker",
			src:     "package p\n\n//starbind:enumeration\ntype T interface{ Area() float64 }\n",
			wantMsg: "exactly one unexported marker method",
			line:    4,
		},
		{
			name:    "generic type",
			src:     "package p\n\n//starbind:structure\ntype Box[V any] struct{ v V }\n",
			wantMsg: "generic type Box cannot be bound",
			line:    4,
		},
		{
			name:    "unknown directive",
			src:     "package p\n\n//starbind:struct\ntype T struct{}\n",
			wantMsg: "unknown directive //starbind:struct",
			line:    3,
		},
		{
			name:    "type directive with arguments",
			src:     "package p\n\n//starbind:structure extra\ntype T struct{}\n",
			wantMsg: "takes no arguments",
			line:    3,
		},
		{
			name:    "function directive on type",
			src:     "package p\n\n//starbind:skip\ntype T struct{}\n",
			wantMsg: "annotates functions, not type T",
			line:    3,
		},
		{
			name:    "type directive on function",
			src:     "package p\n\n//starbind:structure\nfunc F() {}\n",
			wantMsg: "annotates types, not function F",
			line:    3,
		},
		{
			name:    "directive on constant",
			src:     "package p\n\n//starbind:enumeration\nconst C = 1\n",
			wantMsg: "cannot annotate a constant",
			line:    3,
		},
		{
			name:    "static names unknown type",
			src:     "package p\n\n//starbind:static Missing\nfunc F() {}\n",
			wantMsg: "names unknown type Missing",
			line:    3,
		},
		{
			name:    "name needs identifier",
			src:     "package p\n\ntype T struct{}\n\n//starbind:name not-ident\nfunc (T) F() {}\n",
			wantMsg: "needs an identifier",
			line:    5,
		},
		{
			name: "duplicate routine name",
			src: `package p

//starbind:implementation
type T struct{}

func (T) Get() int { return 0 }

//starbind:name get
func (T) Fetch() int { return 0 }
`,
			wantMsg: `routine name "get" in T already used`,
			line:    9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanSource(t, tt.src, Options{})
			require.Error(t, err)
			assert.True(t, errors.IsMalformed(err), "want malformed declaration, got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			pos, ok := errors.PositionOf(err)
			require.True(t, ok)
			assert.Equal(t, "fixture.go", pos.Filename)
			assert.Equal(t, tt.line, pos.Line)
		})
	}
}

func TestScanUnknownNaming(t *testing.T) {
	_, err := scanSource(t, "package p\n", Options{Naming: "kebab"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown naming style "kebab"`)
}

func TestImportName(t *testing.T) {
	tests := map[string]string{
		"time":                                  "time",
		"gopkg.in/yaml.v3":                      "yaml",
		"github.com/Masterminds/semver/v3":      "semver",
		"github.com/kballard/go-shellquote":     "shellquote",
		"github.com/pelletier/go-toml/v2":       "toml",
		"github.com/teranos/starbind/host":      "host",
		"example.com/multi-word":                "multi_word",
	}
	for path, want := range tests {
		assert.Equal(t, want, importName(path), path)
	}
}
