package host

import (
	"fmt"
	"reflect"
	"sort"

	"go.starlark.net/starlark"

	"github.com/teranos/starbind/errors"
)

// ConversionError reports a value that could not cross the boundary.
type ConversionError struct {
	From    string
	To      string
	Message string
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// TypeName is the Starlark type name of v, or "nil".
func TypeName(v starlark.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Type()
}

var valueType = reflect.TypeOf((*starlark.Value)(nil)).Elem()

// boxed is implemented by *Object[T].
type boxed interface {
	nativeValue() reflect.Value
}

// ToValue converts a Go value returned by a bound routine into Starlark.
// Registered types are boxed; pointers are dereferenced and copied, so a
// script never aliases Go-owned memory.
func ToValue(x any) (starlark.Value, error) {
	switch x := x.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return x, nil
	case tuple:
		out := make(starlark.Tuple, len(x))
		for i, v := range x {
			sv, err := ToValue(v)
			if err != nil {
				return nil, err
			}
			out[i] = sv
		}
		return out, nil
	}
	return toValue(reflect.ValueOf(x))
}

func toValue(v reflect.Value) (starlark.Value, error) {
	if !v.IsValid() {
		return starlark.None, nil
	}
	if b, ok := lookupBoxer(v.Type()); ok {
		return b.box(v), nil
	}

	if named(v.Type()) {
		if b, ok := lookupImplementor(v.Type()); ok && !(v.Kind() == reflect.Pointer && v.IsNil()) {
			return b.box(v), nil
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return starlark.None, nil
		}
		if v.Type().Implements(valueType) {
			return v.Interface().(starlark.Value), nil
		}
		return toValue(v.Elem())
	}

	switch v.Kind() {
	case reflect.Bool:
		return starlark.Bool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return starlark.MakeUint64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return starlark.Float(v.Float()), nil
	case reflect.String:
		return starlark.String(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return starlark.Bytes(v.Bytes()), nil
		}
		return listOf(v)
	case reflect.Array:
		return listOf(v)
	case reflect.Map:
		return dictOf(v)
	}
	return nil, &ConversionError{From: v.Type().String(), To: "starlark.Value", Message: "unsupported kind " + v.Kind().String()}
}

// named reports whether rt, or the type a pointer rt points at, is a
// defined type from some package.
func named(rt reflect.Type) bool {
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Name() != "" && rt.PkgPath() != ""
}

func listOf(v reflect.Value) (starlark.Value, error) {
	elems := make([]starlark.Value, v.Len())
	for i := range elems {
		sv, err := toValue(v.Index(i))
		if err != nil {
			return nil, err
		}
		elems[i] = sv
	}
	return starlark.NewList(elems), nil
}

func dictOf(v reflect.Value) (starlark.Value, error) {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	d := starlark.NewDict(len(keys))
	for _, k := range keys {
		sk, err := toValue(k)
		if err != nil {
			return nil, err
		}
		sv, err := toValue(v.MapIndex(k))
		if err != nil {
			return nil, err
		}
		if err := d.SetKey(sk, sv); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// FromValue converts v into the Go value dst points at.
func FromValue(v starlark.Value, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.AssertionFailedf("FromValue needs a non-nil pointer, got %T", dst)
	}
	return fromValue(v, rv.Elem())
}

func fromValue(v starlark.Value, out reflect.Value) error {
	mismatch := func(msg string) error {
		return &ConversionError{From: TypeName(v), To: out.Type().String(), Message: msg}
	}

	if out.CanAddr() {
		if u, ok := out.Addr().Interface().(starlark.Unpacker); ok {
			return u.Unpack(v)
		}
	}
	if out.Type() == valueType {
		out.Set(reflect.ValueOf(&v).Elem())
		return nil
	}
	if b, ok := v.(boxed); ok {
		if set(out, b.nativeValue()) {
			return nil
		}
		return mismatch("")
	}

	switch out.Kind() {
	case reflect.Bool:
		b, ok := v.(starlark.Bool)
		if !ok {
			return mismatch("")
		}
		out.SetBool(bool(b))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := v.(starlark.Int)
		if !ok {
			return mismatch("")
		}
		n, ok := i.Int64()
		if !ok || out.OverflowInt(n) {
			return mismatch("out of range")
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, ok := v.(starlark.Int)
		if !ok {
			return mismatch("")
		}
		n, ok := i.Uint64()
		if !ok || out.OverflowUint(n) {
			return mismatch("out of range")
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, ok := starlark.AsFloat(v)
		if !ok {
			return mismatch("")
		}
		out.SetFloat(f)
	case reflect.String:
		s, ok := starlark.AsString(v)
		if !ok {
			return mismatch("")
		}
		out.SetString(s)
	case reflect.Slice:
		if bs, ok := v.(starlark.Bytes); ok && out.Type().Elem().Kind() == reflect.Uint8 {
			out.SetBytes([]byte(string(bs)))
			return nil
		}
		seq, ok := v.(starlark.Indexable)
		if !ok {
			return mismatch("")
		}
		s := reflect.MakeSlice(out.Type(), seq.Len(), seq.Len())
		for i := 0; i < seq.Len(); i++ {
			if err := fromValue(seq.Index(i), s.Index(i)); err != nil {
				return errors.Wrapf(err, "index %d", i)
			}
		}
		out.Set(s)
	case reflect.Map:
		d, ok := v.(*starlark.Dict)
		if !ok {
			return mismatch("")
		}
		m := reflect.MakeMapWithSize(out.Type(), d.Len())
		for _, item := range d.Items() {
			k := reflect.New(out.Type().Key()).Elem()
			if err := fromValue(item[0], k); err != nil {
				return errors.Wrapf(err, "key %s", item[0])
			}
			e := reflect.New(out.Type().Elem()).Elem()
			if err := fromValue(item[1], e); err != nil {
				return errors.Wrapf(err, "value for key %s", item[0])
			}
			m.SetMapIndex(k, e)
		}
		out.Set(m)
	case reflect.Pointer:
		if v == starlark.None {
			out.Set(reflect.Zero(out.Type()))
			return nil
		}
		p := reflect.New(out.Type().Elem())
		if err := fromValue(v, p.Elem()); err != nil {
			return err
		}
		out.Set(p)
	case reflect.Interface:
		if out.NumMethod() > 0 {
			return mismatch("")
		}
		if n := toNative(v); n != nil {
			out.Set(reflect.ValueOf(n))
		} else {
			out.Set(reflect.Zero(out.Type()))
		}
	default:
		return mismatch("unsupported kind " + out.Kind().String())
	}
	return nil
}

// set assigns a boxed native value to out, looking through the dynamic
// value of an interface union and through one level of pointer.
func set(out, nv reflect.Value) bool {
	candidates := []reflect.Value{nv}
	if nv.Kind() == reflect.Interface && !nv.IsNil() {
		candidates = append(candidates, nv.Elem())
	}
	for _, c := range candidates {
		switch {
		case c.Type().AssignableTo(out.Type()):
			out.Set(c)
			return true
		case out.Kind() == reflect.Pointer && c.Type().AssignableTo(out.Type().Elem()):
			p := reflect.New(out.Type().Elem())
			p.Elem().Set(c)
			out.Set(p)
			return true
		}
	}
	return false
}

// toNative converts Starlark values to plain Go values for untyped (any)
// destinations.
func toNative(v starlark.Value) any {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(v)
	case starlark.Int:
		if n, ok := v.Int64(); ok {
			return n
		}
		return v.String()
	case starlark.Float:
		return float64(v)
	case starlark.String:
		return string(v)
	case starlark.Bytes:
		return []byte(string(v))
	case boxed:
		return v.nativeValue().Interface()
	case *starlark.Dict:
		m := make(map[string]any, v.Len())
		for _, item := range v.Items() {
			key := item[0].String()
			if s, ok := item[0].(starlark.String); ok {
				key = string(s)
			}
			m[key] = toNative(item[1])
		}
		return m
	case starlark.Indexable:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = toNative(v.Index(i))
		}
		return out
	}
	return v
}
