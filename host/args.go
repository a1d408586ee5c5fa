package host

import (
	"reflect"

	"go.starlark.net/starlark"

	"github.com/teranos/starbind/errors"
)

// Args is the positional argument list of one call from Starlark.
type Args struct {
	thread *starlark.Thread
	fn     string
	args   starlark.Tuple
}

func newArgs(thread *starlark.Thread, fn string, args starlark.Tuple, kwargs []starlark.Tuple) (Args, error) {
	if len(kwargs) > 0 {
		return Args{}, errors.Newf("%s: unexpected keyword argument %s", fn, kwargs[0][0])
	}
	return Args{thread: thread, fn: fn, args: args}, nil
}

// NewArgs builds an argument list outside a Starlark call, for tests and
// for Go code invoking bound routines directly.
func NewArgs(fn string, values ...starlark.Value) Args {
	return Args{fn: fn, args: values}
}

// Len is the number of positional arguments.
func (a Args) Len() int { return len(a.args) }

// Values returns the raw arguments.
func (a Args) Values() starlark.Tuple { return a.args }

// Thread is the calling thread, nil outside a Starlark call.
func (a Args) Thread() *starlark.Thread { return a.thread }

// Unpack assigns the arguments, in order, to the pointers in dsts. Every
// destination is required and extra arguments are an error unless the last
// destination is a Rest.
//
// Destinations implementing starlark.Unpacker and the pointer kinds
// starlark.UnpackPositionalArgs understands are handled by Starlark itself;
// anything else is converted with FromValue.
func (a Args) Unpack(dsts ...any) error {
	var rest *restArgs
	if n := len(dsts); n > 0 {
		if r, ok := dsts[n-1].(restArgs); ok {
			rest = &r
			dsts = dsts[:n-1]
		}
	}

	fixed, extra := a.args, starlark.Tuple(nil)
	if rest != nil && len(fixed) > len(dsts) {
		fixed, extra = a.args[:len(dsts)], a.args[len(dsts):]
	}

	targets := make([]any, len(dsts))
	for i, d := range dsts {
		targets[i] = unpackTarget(d)
	}
	if err := starlark.UnpackPositionalArgs(a.fn, fixed, nil, len(dsts), targets...); err != nil {
		return err
	}
	if rest != nil {
		return rest.fill(a.fn, len(dsts), extra)
	}
	return nil
}

func unpackTarget(d any) any {
	switch d.(type) {
	case starlark.Unpacker, *starlark.Value, *string, *bool, *int, *float64:
		return d
	}
	return reflectUnpacker{dst: d}
}

type reflectUnpacker struct{ dst any }

func (r reflectUnpacker) Unpack(v starlark.Value) error { return FromValue(v, r.dst) }

type restArgs struct{ dst any }

// Rest collects every remaining argument into the slice slicePtr points at.
// It must be the last destination passed to Args.Unpack.
func Rest(slicePtr any) any { return restArgs{dst: slicePtr} }

func (r restArgs) fill(fn string, offset int, extra starlark.Tuple) error {
	rv := reflect.ValueOf(r.dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return errors.AssertionFailedf("%s: Rest needs a pointer to a slice, got %T", fn, r.dst)
	}
	out := reflect.MakeSlice(rv.Elem().Type(), len(extra), len(extra))
	for i, v := range extra {
		if err := fromValue(v, out.Index(i)); err != nil {
			return errors.Wrapf(err, "%s: for parameter %d", fn, offset+i+1)
		}
	}
	rv.Elem().Set(out)
	return nil
}

type tuple []any

// Tuple returns several results as one Starlark tuple.
func Tuple(values ...any) any { return tuple(values) }
