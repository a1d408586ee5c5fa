// Package host exposes registered Go types to Starlark.
//
// A type is registered once, usually from a generated init function, with a
// UserData that fills its field table and method table:
//
//	host.Register[Counter]("Counter", starbindCounter{})
//
// The registered *Type[T] is a Starlark value; put Globals() into a
// thread's predeclared environment to make every registered type callable
// from scripts. Instances cross the boundary boxed in *Object[T].
package host

import (
	"fmt"
	"reflect"
	"sync"

	"go.starlark.net/starlark"
)

// UserData fills the field and method tables for T. Generated registration
// units implement it.
type UserData[T any] interface {
	AddFields(fields *Fields[T])
	AddMethods(methods *Methods[T])
}

// boxer is the type-erased view of a *Type[T] the registry and the
// reflective converters work with.
type boxer interface {
	starlark.Value
	goType() reflect.Type
	box(v reflect.Value) starlark.Value
}

var registry = struct {
	sync.RWMutex
	byName map[string]boxer
	byType map[reflect.Type]boxer
	order  []string
}{
	byName: map[string]boxer{},
	byType: map[reflect.Type]boxer{},
}

// Register builds the Starlark type for T named name and records it in the
// process-wide registry. Registering the same name again for the same Go
// type replaces the previous registration; reusing a name for a different
// Go type panics, as registration happens at init time.
func Register[T any](name string, ud UserData[T]) *Type[T] {
	t := newType[T](name)
	ud.AddFields(t.fields)
	ud.AddMethods(t.methods)
	t.seal()

	registry.Lock()
	defer registry.Unlock()

	if prev, ok := registry.byName[name]; ok {
		if prev.goType() != t.rtype {
			panic(fmt.Sprintf("host: %s is already registered for %s", name, prev.goType()))
		}
		delete(registry.byType, prev.goType())
	} else {
		registry.order = append(registry.order, name)
	}
	registry.byName[name] = t
	registry.byType[t.rtype] = t
	return t
}

// Lookup returns the registered type value for name.
func Lookup(name string) (starlark.Value, bool) {
	registry.RLock()
	defer registry.RUnlock()
	b, ok := registry.byName[name]
	return b, ok
}

// TypeOf returns the registration for T, if any.
func TypeOf[T any]() (*Type[T], bool) {
	registry.RLock()
	defer registry.RUnlock()
	b, ok := registry.byType[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	t, ok := b.(*Type[T])
	return t, ok
}

// Names lists registered type names in registration order.
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()
	return append([]string(nil), registry.order...)
}

// Globals returns a fresh environment binding every registered type by
// name, suitable for starlark.ExecFile's predeclared argument.
func Globals() starlark.StringDict {
	registry.RLock()
	defer registry.RUnlock()
	env := make(starlark.StringDict, len(registry.byName))
	for name, b := range registry.byName {
		env[name] = b
	}
	return env
}

func lookupBoxer(rt reflect.Type) (boxer, bool) {
	registry.RLock()
	defer registry.RUnlock()
	b, ok := registry.byType[rt]
	return b, ok
}

// lookupImplementor finds a registered interface type that rt satisfies.
// It lets a concrete variant returned from a Go routine box as its union.
func lookupImplementor(rt reflect.Type) (boxer, bool) {
	registry.RLock()
	defer registry.RUnlock()
	if rt.Kind() == reflect.Interface {
		return nil, false
	}
	for _, name := range registry.order {
		b := registry.byName[name]
		if it := b.goType(); it.Kind() == reflect.Interface && it.NumMethod() > 0 && rt.Implements(it) {
			return b, true
		}
	}
	return nil, false
}
