package example

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/teranos/starbind/bindgen"
	"github.com/teranos/starbind/host"
)

func exec(t *testing.T, src string) starlark.StringDict {
	t.Helper()
	thread := &starlark.Thread{Name: t.Name()}
	globals, err := starlark.ExecFile(thread, "example.star", src, host.Globals())
	require.NoError(t, err)
	return globals
}

func TestCounterScript(t *testing.T) {
	globals := exec(t, `
c = Counter()
start = c.value
c.increment(5)
after = c.value
got = c.get()
`)
	assert.Equal(t, starlark.MakeInt(0), globals["start"])
	assert.Equal(t, starlark.MakeInt(5), globals["after"])
	assert.Equal(t, starlark.MakeInt(5), globals["got"])

	obj, ok := globals["c"].(*host.Object[Counter])
	require.True(t, ok)
	assert.Equal(t, 5, obj.Borrow().Get())
}

func TestPlayerScript(t *testing.T) {
	globals := exec(t, `
p = Player.new("ann")
name = p.name
hp = p.hit_points
alive = p.alive()
down = p.damage(40)
hp_after = p.hit_points
p.set_status(PlayerStatus.Spectating())
spectating = p.status == PlayerStatus.Spectating()
stats = p.stats()
text = str(p)
`)
	assert.Equal(t, starlark.String("ann"), globals["name"])
	assert.Equal(t, starlark.MakeInt(StartingHP), globals["hp"])
	assert.Equal(t, starlark.True, globals["alive"])
	assert.Equal(t, starlark.False, globals["down"])
	assert.Equal(t, starlark.MakeInt(60), globals["hp_after"])
	assert.Equal(t, starlark.True, globals["spectating"])
	assert.Equal(t, `Player(name="ann", hit_points=60, status=PlayerStatus.Spectating)`, globals["text"].(starlark.String).GoString())

	stats, ok := globals["stats"].(starlark.Tuple)
	require.True(t, ok)
	require.Len(t, stats, 2)
	assert.Equal(t, starlark.MakeInt(60), stats[0])
	assert.Equal(t, "PlayerStatus.Spectating", stats[1].String())
}

func TestPlayerHiddenField(t *testing.T) {
	globals := exec(t, "p = Player.new(\"bo\")\nattrs = dir(p)\n")
	attrs := globals["attrs"].(*starlark.List)

	var names []string
	for i := 0; i < attrs.Len(); i++ {
		names = append(names, string(attrs.Index(i).(starlark.String)))
	}
	assert.Contains(t, names, "hit_points")
	assert.NotContains(t, names, "team")
	assert.NotContains(t, names, "hp")
}

func TestPlayerErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"routine error", `Player.new("x").damage(-1)`, "negative damage -1"},
		{"wrong argument type", `Player.new("x").damage("lots")`, "damage"},
		{"too many arguments", `Player.new("x").alive(1)`, "alive"},
		{"status from string", `Player.new("x").set_status("Down")`, "cannot convert string to PlayerStatus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := starlark.ExecFile(&starlark.Thread{}, "example.star", tt.src, host.Globals())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDamageKnocksDown(t *testing.T) {
	globals := exec(t, `
p = Player.new("cy")
down = p.damage(250)
status = p.status
`)
	assert.Equal(t, starlark.True, globals["down"])
	assert.Equal(t, "PlayerStatus.Down", globals["status"].String())
}

func TestPlayerStatusRecover(t *testing.T) {
	globals := exec(t, "s = PlayerStatus.Down()\n")

	got, err := starbindPlayerStatusRecover(globals["s"])
	require.NoError(t, err)
	assert.Equal(t, PlayerStatusDown, got)

	var s PlayerStatus
	require.NoError(t, s.Unpack(globals["s"]))
	assert.Equal(t, PlayerStatusDown, s)

	_, err = starbindPlayerStatusRecover(starlark.MakeInt(1))
	var convErr *host.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "int", convErr.From)
	assert.Equal(t, "PlayerStatus", convErr.To)
}

func TestShapeScript(t *testing.T) {
	globals := exec(t, `
square = Shape.area(Shape.Square())
circle = Shape.area(Shape.new_circle(2.0))
same = Shape.Square() == Shape.Square()
`)
	assert.Equal(t, starlark.Float(1), globals["square"])
	assert.InDelta(t, 4*math.Pi, float64(globals["circle"].(starlark.Float)), 1e-9)
	assert.Equal(t, starlark.True, globals["same"])

	shape, err := starbindShapeRecover(exec(t, "c = Shape.new_circle(1.5)\n")["c"])
	require.NoError(t, err)
	assert.Equal(t, Circle{R: 1.5}, shape)
}

func TestShapeHasNoCircleVariant(t *testing.T) {
	_, err := starlark.ExecFile(&starlark.Thread{}, "example.star", "Shape.Circle()\n", host.Globals())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circle")
}

// TestBindingsMatchDeclarations regenerates the package and compares the
// helper table with what the checked-in bindings register.
func TestBindingsMatchDeclarations(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the package with the go command")
	}
	pkgs, err := bindgen.Load(context.Background(), []string{"."}, bindgen.Options{})
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	res, err := bindgen.NewGenerator(bindgen.Options{}).GeneratePackage(pkgs[0])
	require.NoError(t, err)

	got := map[string][]string{}
	for _, h := range res.Helpers {
		got[h.Func] = h.Entries
	}
	assert.Equal(t, map[string][]string{
		"starbindCounterFields":        {"value"},
		"starbindCounterMethods":       {"new", "increment", "get"},
		"starbindPlayerFields":         {"name", "hit_points", "status"},
		"starbindPlayerMethods":        {"new", "damage", "set_status", "alive", "stats"},
		"starbindPlayerStatusVariants": {"Active", "Down", "Spectating"},
		"starbindShapeVariants":        {"Square"},
		"starbindShapeMethods":         {"new_circle", "area"},
	}, got)
	require.Len(t, res.Units, 4)

	counter, ok := host.TypeOf[Counter]()
	require.True(t, ok)
	assert.Equal(t, []string{"value"}, counter.Fields())
	assert.Equal(t, []string{"new", "increment", "get"}, counter.Methods())
}
