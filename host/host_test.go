package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

type counter struct{ value int }

type counterData struct{}

func (counterData) AddFields(fields *Fields[counter]) {
	fields.Get("value", func(this *counter) (any, error) { return this.value, nil })
}

func (counterData) AddMethods(methods *Methods[counter]) {
	methods.Function("new", func(args Args) (any, error) {
		if err := args.Unpack(); err != nil {
			return nil, err
		}
		return counter{}, nil
	})
	methods.MethodMut("increment", func(this *counter, args Args) (any, error) {
		var by int
		if err := args.Unpack(&by); err != nil {
			return nil, err
		}
		this.value += by
		return nil, nil
	})
	methods.Method("get", func(this *counter, args Args) (any, error) {
		if err := args.Unpack(); err != nil {
			return nil, err
		}
		return this.value, nil
	})
}

type status int

type statusData struct{}

func (statusData) AddFields(*Fields[status]) {}

func (statusData) AddMethods(methods *Methods[status]) {
	methods.Variant("Idle", func() status { return 0 })
	methods.Variant("Done", func() status { return 1 })
}

type shape interface{ isShape() }

type square struct{}

func (square) isShape() {}

type dot struct{ X int }

func (*dot) isShape() {}

type shapeData struct{}

func (shapeData) AddFields(*Fields[shape]) {}

func (shapeData) AddMethods(methods *Methods[shape]) {
	methods.Variant("Square", func() shape { return square{} })
	methods.Function("dot", func(args Args) (any, error) {
		var x int
		if err := args.Unpack(&x); err != nil {
			return nil, err
		}
		return &dot{X: x}, nil
	})
	methods.Function("describe", func(args Args) (any, error) {
		var s shape
		if err := args.Unpack(&s); err != nil {
			return nil, err
		}
		switch s := s.(type) {
		case square:
			return "square", nil
		case *dot:
			return s.X, nil
		}
		return "unknown", nil
	})
}

var (
	counterType = Register[counter]("Counter", counterData{})
	statusType  = Register[status]("Status", statusData{})
	shapeType   = Register[shape]("Shape", shapeData{})
)

func run(t *testing.T, src string) (starlark.StringDict, error) {
	t.Helper()
	thread := &starlark.Thread{Name: t.Name()}
	return starlark.ExecFile(thread, "test.star", src, Globals())
}

func TestCounterRoundTrip(t *testing.T) {
	globals, err := run(t, `
c = Counter.new()
before = c.value
c.increment(5)
after = c.value
got = c.get()
text = str(c)
`)
	require.NoError(t, err)

	assert.Equal(t, starlark.MakeInt(0), globals["before"])
	assert.Equal(t, starlark.MakeInt(5), globals["after"])
	assert.Equal(t, starlark.MakeInt(5), globals["got"])
	assert.Equal(t, starlark.String("Counter(value=5)"), globals["text"])

	obj, ok := globals["c"].(*Object[counter])
	require.True(t, ok)
	assert.Equal(t, counter{value: 5}, obj.Borrow())
}

func TestCallingTypeCallsNew(t *testing.T) {
	globals, err := run(t, "c = Counter()\nv = c.value\n")
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(0), globals["v"])

	_, err = run(t, "Status()\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status has no constructor")
}

func TestFrozenObjectRejectsMutation(t *testing.T) {
	obj := counterType.Wrap(counter{value: 1})
	obj.Freeze()

	inc, err := obj.Attr("increment")
	require.NoError(t, err)
	_, err = starlark.Call(&starlark.Thread{}, inc, starlark.Tuple{starlark.MakeInt(1)}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frozen")

	get, err := obj.Attr("get")
	require.NoError(t, err)
	v, err := starlark.Call(&starlark.Thread{}, get, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(1), v)
}

func TestReadCallsDoNotMutate(t *testing.T) {
	obj := counterType.Wrap(counter{value: 3})
	_, err := obj.Attr("value")
	require.NoError(t, err)
	assert.Equal(t, counter{value: 3}, obj.Borrow())
}

func TestRejectsKeywordArguments(t *testing.T) {
	_, err := run(t, "c = Counter()\nc.increment(by = 1)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected keyword argument")
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing", "Counter().increment()\n", "increment"},
		{"extra", "Counter().get(1)\n", "get"},
		{"wrong type", "Counter().increment(\"x\")\n", "increment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVariants(t *testing.T) {
	globals, err := run(t, `
idle = Status.Idle()
same = Status.Idle() == Status.Idle()
differ = Status.Idle() != Status.Done()
name = str(Status.Done())
index = {Status.Idle(): "idle"}
`)
	require.NoError(t, err)

	assert.Equal(t, starlark.True, globals["same"])
	assert.Equal(t, starlark.True, globals["differ"])
	assert.Equal(t, starlark.String("Status.Done"), globals["name"])

	var got status
	require.NoError(t, FromValue(globals["idle"], &got))
	assert.Equal(t, status(0), got)
}

func TestSealedInterface(t *testing.T) {
	globals, err := run(t, `
sq = Shape.describe(Shape.Square())
d = Shape.dot(7)
x = Shape.describe(d)
kind = type(d)
`)
	require.NoError(t, err)

	assert.Equal(t, starlark.String("square"), globals["sq"])
	assert.Equal(t, starlark.MakeInt(7), globals["x"])
	assert.Equal(t, starlark.String("Shape"), globals["kind"])

	var d *dot
	require.NoError(t, FromValue(globals["d"], &d))
	assert.Equal(t, 7, d.X)
}

func TestHash(t *testing.T) {
	obj := counterType.Wrap(counter{})
	_, err := obj.Hash()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "freeze")

	obj.Freeze()
	_, err = obj.Hash()
	assert.NoError(t, err)

	a, err := statusType.Wrap(1).Hash()
	require.NoError(t, err)
	b, err := statusType.Wrap(1).Hash()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRegistry(t *testing.T) {
	assert.Subset(t, Names(), []string{"Counter", "Status", "Shape"})

	v, ok := Lookup("Counter")
	require.True(t, ok)
	assert.Equal(t, "<type Counter>", v.String())

	got, ok := TypeOf[counter]()
	require.True(t, ok)
	assert.Same(t, counterType, got)
	assert.Equal(t, []string{"value"}, got.Fields())
	assert.Equal(t, []string{"new", "increment", "get"}, got.Methods())

	assert.Equal(t, []string{"Square", "describe", "dot"}, shapeType.AttrNames())
	assert.Equal(t, []string{"get", "increment", "value"}, counterType.Wrap(counter{}).AttrNames())

	_, ok = TypeOf[dot]()
	assert.False(t, ok)
}

func TestRegisterConflictPanics(t *testing.T) {
	assert.Panics(t, func() { Register[dot]("Counter", dotData{}) })
}

type dotData struct{}

func (dotData) AddFields(*Fields[dot])   {}
func (dotData) AddMethods(*Methods[dot]) {}

type acc struct{ total int }

type accData struct{}

func (accData) AddFields(fields *Fields[acc]) {
	fields.Get("total", func(this *acc) (any, error) { return this.total, nil })
}

func (accData) AddMethods(methods *Methods[acc]) {
	methods.Function("new", func(args Args) (any, error) {
		var n int
		if err := args.Unpack(&n); err != nil {
			return nil, err
		}
		return acc{total: n}, nil
	})
	methods.MethodMut("absorb", func(this *acc, args Args) (any, error) {
		var other acc
		if err := args.Unpack(&other); err != nil {
			return nil, err
		}
		this.total += other.total
		return nil, nil
	})
	methods.MethodMut("absorb_all", func(this *acc, args Args) (any, error) {
		var others []acc
		if err := args.Unpack(&others); err != nil {
			return nil, err
		}
		for _, o := range others {
			this.total += o.total
		}
		return nil, nil
	})
	methods.MethodMut("reenter", func(this *acc, args Args) (any, error) {
		var fn starlark.Value
		if err := args.Unpack(&fn); err != nil {
			return nil, err
		}
		this.total++
		return starlark.Call(args.Thread(), fn, nil, nil)
	})
}

var _ = Register[acc]("Acc", accData{})

// runWithin fails the test instead of hanging when src never finishes.
func runWithin(t *testing.T, src string) (starlark.StringDict, error) {
	t.Helper()
	type result struct {
		globals starlark.StringDict
		err     error
	}
	done := make(chan result, 1)
	go func() {
		thread := &starlark.Thread{Name: t.Name()}
		g, err := starlark.ExecFile(thread, "test.star", src, Globals())
		done <- result{g, err}
	}()
	select {
	case r := <-done:
		return r.globals, r.err
	case <-time.After(5 * time.Second):
		t.Fatalf("script did not finish: %s", src)
		return nil, nil
	}
}

func TestMutatingCallWithItselfAsArgument(t *testing.T) {
	_, err := runWithin(t, "a = Acc(2)\na.absorb(a)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Acc.absorb: for parameter 1: Acc is already mutably borrowed")

	globals, err := runWithin(t, "a = Acc(2)\nb = Acc(3)\na.absorb(b)\ntotal = a.total\n")
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(5), globals["total"])
}

func TestMutatingCallSeesSnapshotOfNestedSelf(t *testing.T) {
	globals, err := runWithin(t, "a = Acc(2)\na.absorb_all([a, Acc(3)])\ntotal = a.total\n")
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(7), globals["total"])
}

func TestReentrantMutationIsRejected(t *testing.T) {
	_, err := runWithin(t, "a = Acc(0)\na.reenter(lambda: a.absorb(Acc(1)))\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Acc is already mutably borrowed")

	globals, err := runWithin(t, "a = Acc(0)\na.reenter(lambda: a.total)\ntotal = a.total\n")
	require.NoError(t, err)
	assert.Equal(t, starlark.MakeInt(1), globals["total"])
}

type clashData struct {
	fields  func(*Fields[acc])
	methods func(*Methods[acc])
}

func (c clashData) AddFields(f *Fields[acc])    { c.fields(f) }
func (c clashData) AddMethods(m *Methods[acc]) { c.methods(m) }

func TestMethodTableCollisionsPanic(t *testing.T) {
	noFields := func(*Fields[acc]) {}
	tests := []struct {
		name string
		ud   clashData
		want string
	}{
		{"variant and function", clashData{noFields, func(m *Methods[acc]) {
			m.Variant("new", func() acc { return acc{} })
			m.Function("new", func(Args) (any, error) { return acc{}, nil })
		}}, "host: Clash.new is registered as both variant and function"},
		{"method twice", clashData{noFields, func(m *Methods[acc]) {
			m.Method("get", func(*acc, Args) (any, error) { return nil, nil })
			m.MethodMut("get", func(*acc, Args) (any, error) { return nil, nil })
		}}, "host: Clash.get is registered as both method and mutating method"},
		{"field and method", clashData{
			func(f *Fields[acc]) { f.Get("total", func(this *acc) (any, error) { return this.total, nil }) },
			func(m *Methods[acc]) { m.Method("total", func(*acc, Args) (any, error) { return nil, nil }) },
		}, "host: Clash.total is registered as both field and method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PanicsWithValue(t, tt.want, func() { Register[acc]("Clash", tt.ud) })
			_, ok := Lookup("Clash")
			assert.False(t, ok)
		})
	}
}
