package methods

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/bindgen/emit"
	"github.com/teranos/starbind/errors"
)

const counter = `package counter

import "time"

//starbind:implementation
type Counter struct {
	value int
}

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Increment(by int) { c.value += by }

func (c Counter) Get() int { return c.value }

func (c Counter) Sum(xs ...int) int { return 0 }

func (c *Counter) Reset(_ int, keep bool) error { return nil }

//starbind:static Counter
func parseCounter(s string) (Counter, error) { return Counter{}, nil }

func (c Counter) Split() (int, int) { return 0, 0 }

func (c Counter) Describe(d time.Duration) (string, int, error) { return "", 0, nil }

func (c Counter) Scale(args int, this string) int { return 0 }

func (c Counter) Touch(...string) {}
`

func block(t *testing.T, src string) *decl.MethodBlock {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "fixture.go", src, parser.ParseComments)
	require.NoError(t, err)
	pkg, err := decl.Scan(fset, []*ast.File{f}, decl.Options{})
	require.NoError(t, err)
	d := pkg.Lookup(decl.KindMethodBlock, "Counter")
	require.NotNil(t, d)
	return d.Block
}

func render(t *testing.T, h *emit.Helper) string {
	t.Helper()
	f := emit.NewFile("example.com/counter", "counter", emit.Options{})
	emit.Append(f, h.Code)
	src := fmt.Sprintf("%#v", f)
	_, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, 0)
	require.NoError(t, err, src)
	return src
}

func TestExtract(t *testing.T) {
	h, err := Extract(block(t, counter), emit.Options{})
	require.NoError(t, err)
	assert.Equal(t, "starbindCounterMethods", h.Func)
	assert.Equal(t, decl.HelperMethods, h.Kind)
	assert.Equal(t, []string{
		"new", "increment", "get", "sum", "reset", "parse_counter", "split", "describe", "scale", "touch",
	}, h.Entries)

	src := render(t, h)
	assert.Contains(t, src, "func starbindCounterMethods(methods *host.Methods[Counter]) {")
	assert.Contains(t, src, `"time"`)

	tests := []struct {
		name string
		want []string
	}{
		{"static constructor", []string{
			`methods.Function("new", func(args host.Args) (any, error) {`,
			"if err := args.Unpack(); err != nil {",
			"return NewCounter(), nil",
		}},
		{"mutating method", []string{
			`methods.MethodMut("increment", func(this *Counter, args host.Args) (any, error) {`,
			"var by int",
			"if err := args.Unpack(&by); err != nil {",
			"this.Increment(by)\n\t\treturn nil, nil",
		}},
		{"read method", []string{
			`methods.Method("get", func(this *Counter, args host.Args) (any, error) {`,
			"return this.Get(), nil",
		}},
		{"variadic", []string{
			"var xs []int",
			"args.Unpack(host.Rest(&xs))",
			"return this.Sum(xs...), nil",
		}},
		{"dropped parameter", []string{
			"var keep bool",
			"args.Unpack(&keep)",
			"return nil, this.Reset(*new(int), keep)",
		}},
		{"value and error", []string{
			`methods.Function("parse_counter", func(args host.Args) (any, error) {`,
			"var s string",
			"return parseCounter(s)",
		}},
		{"tuple", []string{
			"r0, r1 := this.Split()",
			"return host.Tuple(r0, r1), nil",
		}},
		{"tuple with error", []string{
			"var d time.Duration",
			"r0, r1, err := this.Describe(d)",
			"return host.Tuple(r0, r1), nil",
		}},
		{"reserved names", []string{
			"var args_ int",
			"var this_ string",
			"args.Unpack(&args_, &this_)",
			"return this.Scale(args_, this_), nil",
		}},
		{"unnamed variadic", []string{
			"this.Touch()\n\t\treturn nil, nil",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.want {
				assert.Contains(t, src, want)
			}
		})
	}
}

func TestExtractVariadicWithoutParameters(t *testing.T) {
	b := &decl.MethodBlock{Owner: "Counter", Routines: []decl.RoutineDescriptor{{
		Name:     "broken",
		GoName:   "Broken",
		Receiver: decl.ReceiverRef,
		Variadic: true,
		Pos:      token.Position{Filename: "counter.go", Line: 3, Column: 1},
	}}}
	_, err := Extract(b, emit.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
	assert.Contains(t, err.Error(), "counter.go:3:1")
}

func TestExtractEmptyBlock(t *testing.T) {
	h, err := Extract(&decl.MethodBlock{Owner: "Counter"}, emit.Options{})
	require.NoError(t, err)
	assert.Empty(t, h.Entries)
	assert.Contains(t, render(t, h), "func starbindCounterMethods(methods *host.Methods[Counter]) {}")
}

func TestLocals(t *testing.T) {
	params := []decl.Param{
		{Name: "args", Forwarded: true},
		{Name: "args_", Forwarded: true},
		{Name: "_"},
		{Name: "err", Forwarded: true},
	}
	assert.Equal(t, []string{"args__", "args_", "", "err_"}, locals("Counter", params))
}

func TestLocalsAvoidTypeNames(t *testing.T) {
	duration, err := parser.ParseExpr("time.Duration")
	require.NoError(t, err)
	imports := map[string]string{"time": "time"}

	params := []decl.Param{
		{Name: "time", Forwarded: true, Type: decl.TypeToken{Text: "int", Expr: ast.NewIdent("int"), Imports: imports}},
		{Name: "d", Forwarded: true, Type: decl.TypeToken{Text: "time.Duration", Expr: duration, Imports: imports}},
		{Name: "Counter", Forwarded: true, Type: decl.TypeToken{Text: "int", Expr: ast.NewIdent("int"), Imports: imports}},
	}
	assert.Equal(t, []string{"time_", "d", "Counter_"}, locals("Counter", params))
}

const waiter = `package counter

import "time"

//starbind:implementation
type Counter struct{}

func (c *Counter) Wait(time int, d time.Duration) {}
`

func TestExtractRenamesImportShadowingParameter(t *testing.T) {
	h, err := Extract(block(t, waiter), emit.Options{})
	require.NoError(t, err)

	src := render(t, h)
	assert.Contains(t, src, "var time_ int")
	assert.Contains(t, src, "var d time.Duration")
	assert.Contains(t, src, "args.Unpack(&time_, &d)")
	assert.Contains(t, src, "this.Wait(time_, d)")
	assert.NotContains(t, src, "var time int")
}

const ticker = `package counter

import "time"

//starbind:implementation
type Counter struct{}

func (c *Counter) OnTick(cb func(time.Duration)) {}

func (c *Counter) Every(f func(at time.Time) (bool, error)) {}
`

func TestExtractQualifiesFuncTypeParameters(t *testing.T) {
	h, err := Extract(block(t, ticker), emit.Options{})
	require.NoError(t, err)

	src := render(t, h)
	assert.Contains(t, src, `"time"`)
	assert.Contains(t, src, "var cb func(time.Duration)")
	assert.Contains(t, src, "var f func(time.Time) (bool, error)")
}
