package host

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/teranos/starbind/errors"
)

// Type is the Starlark value standing for a registered Go type. Its
// attributes are the static functions and variant constructors; calling it
// calls the "new" static function.
type Type[T any] struct {
	name     string
	rtype    reflect.Type
	fields   *Fields[T]
	methods  *Methods[T]
	variants []namedValue[T]
}

type namedValue[T any] struct {
	name  string
	value T
}

var (
	_ starlark.HasAttrs   = (*Type[int])(nil)
	_ starlark.Callable   = (*Type[int])(nil)
	_ starlark.HasAttrs   = (*Object[int])(nil)
	_ starlark.Comparable = (*Object[int])(nil)
)

func newType[T any](name string) *Type[T] {
	return &Type[T]{
		name:    name,
		rtype:   reflect.TypeOf((*T)(nil)).Elem(),
		fields:  &Fields[T]{getters: map[string]Getter[T]{}},
		methods: &Methods[T]{owner: name, entries: map[string]*entry[T]{}},
	}
}

// seal snapshots variant values so objects can print their variant name.
// A field and an instance method sharing a name panics.
func (t *Type[T]) seal() {
	for _, name := range t.methods.names {
		switch e := t.methods.entries[name]; e.kind {
		case callVariant:
			t.variants = append(t.variants, namedValue[T]{name: name, value: e.variant()})
		case callRead, callMut:
			if _, clash := t.fields.getters[name]; clash {
				panic(fmt.Sprintf("host: %s.%s is registered as both field and %s", t.name, name, e.kind))
			}
		}
	}
}

// Wrap boxes v as a Starlark value of this type.
func (t *Type[T]) Wrap(v T) *Object[T] { return &Object[T]{typ: t, value: v} }

// Fields lists the field names instances expose.
func (t *Type[T]) Fields() []string { return t.fields.Names() }

// Methods lists every method table entry.
func (t *Type[T]) Methods() []string { return t.methods.Names() }

func (t *Type[T]) goType() reflect.Type { return t.rtype }

func (t *Type[T]) box(v reflect.Value) starlark.Value {
	if !v.Type().AssignableTo(t.rtype) && v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return t.Wrap(v.Interface().(T))
}

func (t *Type[T]) String() string { return "<type " + t.name + ">" }
func (t *Type[T]) Type() string { return "type" }
func (t *Type[T]) Freeze() {}
func (t *Type[T]) Truth() starlark.Bool { return starlark.True }
func (t *Type[T]) Hash() (uint32, error) { return starlark.String(t.name).Hash() }
func (t *Type[T]) Name() string { return t.name }

func (t *Type[T]) Attr(name string) (starlark.Value, error) {
	e, ok := t.methods.entries[name]
	if !ok || (e.kind != callStatic && e.kind != callVariant) {
		return nil, nil
	}
	return starlark.NewBuiltin(t.name+"."+name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return t.callStatic(thread, b.Name(), e, args, kwargs)
	}), nil
}

func (t *Type[T]) AttrNames() []string {
	var names []string
	for _, name := range t.methods.names {
		if k := t.methods.entries[name].kind; k == callStatic || k == callVariant {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CallInternal makes Counter(...) an alias for Counter.new(...).
func (t *Type[T]) CallInternal(thread *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	e, ok := t.methods.entries["new"]
	if !ok || e.kind != callStatic {
		return nil, errors.Newf("%s has no constructor", t.name)
	}
	return t.callStatic(thread, t.name, e, args, kwargs)
}

func (t *Type[T]) callStatic(thread *starlark.Thread, fn string, e *entry[T], args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	a, err := newArgs(thread, fn, args, kwargs)
	if err != nil {
		return nil, err
	}
	if e.kind == callVariant {
		if err := a.Unpack(); err != nil {
			return nil, err
		}
		return t.Wrap(e.variant()), nil
	}
	res, err := e.static(a)
	if err != nil {
		return nil, err
	}
	return ToValue(res)
}

// Object is a boxed instance of T. Read calls and field reads work on a
// copy taken under the read lock. A mutating call borrows the object
// exclusively: it fails once the object is frozen, while another mutating
// call is in progress, or when the object is among its own arguments.
// Reads made during a mutating call see the value from before it.
type Object[T any] struct {
	typ      *Type[T]
	mu       sync.RWMutex
	value    T
	frozen   bool
	borrowed bool
}

// Borrow returns a copy of the boxed value.
func (o *Object[T]) Borrow() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

func (o *Object[T]) nativeValue() reflect.Value {
	v := o.Borrow()
	return reflect.ValueOf(&v).Elem()
}

func (o *Object[T]) Type() string { return o.typ.name }

func (o *Object[T]) Freeze() {
	o.mu.Lock()
	o.frozen = true
	o.mu.Unlock()
}

func (o *Object[T]) Truth() starlark.Bool { return starlark.True }

func (o *Object[T]) String() string {
	v := o.Borrow()
	for _, nv := range o.typ.variants {
		if reflect.DeepEqual(nv.value, v) {
			return o.typ.name + "." + nv.name
		}
	}
	if len(o.typ.fields.names) == 0 {
		return fmt.Sprintf("%s(%v)", o.typ.name, v)
	}

	var b strings.Builder
	b.WriteString(o.typ.name)
	b.WriteByte('(')
	for i, name := range o.typ.fields.names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		cp := v
		val, err := o.typ.fields.getters[name](&cp)
		if err != nil {
			b.WriteString("?")
			continue
		}
		sv, err := ToValue(val)
		if err != nil {
			fmt.Fprintf(&b, "%v", val)
			continue
		}
		b.WriteString(sv.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Hash is defined for comparable types that cannot change under the key:
// types without mutating methods, or frozen objects.
func (o *Object[T]) Hash() (uint32, error) {
	o.mu.RLock()
	v, frozen := o.value, o.frozen
	o.mu.RUnlock()

	if !o.typ.rtype.Comparable() {
		return 0, errors.Newf("unhashable type: %s", o.typ.name)
	}
	if !frozen && o.typ.methods.has(callMut) {
		return 0, errors.Newf("unhashable type: %s (mutable; freeze it first)", o.typ.name)
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%s:%#v", o.typ.name, v)
	return h.Sum32(), nil
}

func (o *Object[T]) CompareSameType(op syntax.Token, y starlark.Value, depth int) (bool, error) {
	other, ok := y.(*Object[T])
	if !ok {
		return false, errors.Newf("cannot compare %s with %s", o.Type(), y.Type())
	}
	eq := reflect.DeepEqual(o.Borrow(), other.Borrow())
	switch op {
	case syntax.EQL:
		return eq, nil
	case syntax.NEQ:
		return !eq, nil
	default:
		return false, errors.Newf("%s %s %s not supported", o.Type(), op, y.Type())
	}
}

func (o *Object[T]) Attr(name string) (starlark.Value, error) {
	if get, ok := o.typ.fields.getters[name]; ok {
		v := o.Borrow()
		res, err := get(&v)
		if err != nil {
			return nil, err
		}
		return ToValue(res)
	}
	e, ok := o.typ.methods.entries[name]
	if !ok || (e.kind != callRead && e.kind != callMut) {
		return nil, nil
	}
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		return o.call(thread, o.typ.name+"."+name, e, args, kwargs)
	}).BindReceiver(o), nil
}

func (o *Object[T]) AttrNames() []string {
	names := o.typ.fields.Names()
	for _, name := range o.typ.methods.names {
		if k := o.typ.methods.entries[name].kind; k == callRead || k == callMut {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (o *Object[T]) call(thread *starlark.Thread, fn string, e *entry[T], args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	a, err := newArgs(thread, fn, args, kwargs)
	if err != nil {
		return nil, err
	}

	var res any
	if e.kind == callMut {
		res, err = o.callMut(fn, e, a)
	} else {
		v := o.Borrow()
		res, err = e.method(&v, a)
	}
	if err != nil {
		return nil, err
	}
	return ToValue(res)
}

// callMut runs e on a working copy and stores it back afterwards. The lock
// is not held during the call, so converting arguments that read o cannot
// deadlock.
func (o *Object[T]) callMut(fn string, e *entry[T], a Args) (any, error) {
	for i, arg := range a.args {
		if arg == starlark.Value(o) {
			return nil, errors.Newf("%s: for parameter %d: %s is already mutably borrowed", fn, i+1, o.typ.name)
		}
	}

	o.mu.Lock()
	switch {
	case o.frozen:
		o.mu.Unlock()
		return nil, errors.Newf("%s: cannot call %s on frozen %s", fn, e.kind, o.typ.name)
	case o.borrowed:
		o.mu.Unlock()
		return nil, errors.Newf("%s: %s is already mutably borrowed", fn, o.typ.name)
	}
	o.borrowed = true
	v := o.value
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.value = v
		o.borrowed = false
		o.mu.Unlock()
	}()
	return e.method(&v, a)
}
