package host

import "fmt"

// Getter reads one field from a private copy of the instance.
type Getter[T any] func(this *T) (any, error)

// Function is a static routine: no instance.
type Function func(args Args) (any, error)

// Method is an instance routine. For read calls this points at a private
// copy; for mutating calls it points at the boxed value itself.
type Method[T any] func(this *T, args Args) (any, error)

// Fields is the field table for T. Entries keep registration order.
type Fields[T any] struct {
	names   []string
	getters map[string]Getter[T]
}

// Get registers a read-only field. A later registration with the same name
// replaces the earlier one.
func (f *Fields[T]) Get(name string, getter Getter[T]) {
	if _, ok := f.getters[name]; !ok {
		f.names = append(f.names, name)
	}
	f.getters[name] = getter
}

// Names lists the registered fields in order.
func (f *Fields[T]) Names() []string { return append([]string(nil), f.names...) }

type callKind int

const (
	callStatic callKind = iota
	callRead
	callMut
	callVariant
)

func (k callKind) String() string {
	switch k {
	case callRead:
		return "method"
	case callMut:
		return "mutating method"
	case callVariant:
		return "variant"
	default:
		return "function"
	}
}

type entry[T any] struct {
	kind    callKind
	static  Function
	method  Method[T]
	variant func() T
}

// Methods is the method table for T: instance methods, static functions and
// unit variant constructors share one namespace. Registering a name twice
// panics.
type Methods[T any] struct {
	owner   string
	names   []string
	entries map[string]*entry[T]
}

// Function registers a static routine reachable as Type.name(...).
func (m *Methods[T]) Function(name string, fn Function) {
	m.add(name, &entry[T]{kind: callStatic, static: fn})
}

// Method registers a read call reachable as obj.name(...).
func (m *Methods[T]) Method(name string, fn Method[T]) {
	m.add(name, &entry[T]{kind: callRead, method: fn})
}

// MethodMut registers a mutating call reachable as obj.name(...).
func (m *Methods[T]) MethodMut(name string, fn Method[T]) {
	m.add(name, &entry[T]{kind: callMut, method: fn})
}

// Variant registers a zero-argument constructor reachable as Type.name().
func (m *Methods[T]) Variant(name string, ctor func() T) {
	m.add(name, &entry[T]{kind: callVariant, variant: ctor})
}

func (m *Methods[T]) add(name string, e *entry[T]) {
	if prev, ok := m.entries[name]; ok {
		panic(fmt.Sprintf("host: %s.%s is registered as both %s and %s", m.owner, name, prev.kind, e.kind))
	}
	m.names = append(m.names, name)
	m.entries[name] = e
}

// Names lists the registered entries in order.
func (m *Methods[T]) Names() []string { return append([]string(nil), m.names...) }

func (m *Methods[T]) has(kinds ...callKind) bool {
	for _, e := range m.entries {
		for _, k := range kinds {
			if e.kind == k {
				return true
			}
		}
	}
	return false
}
