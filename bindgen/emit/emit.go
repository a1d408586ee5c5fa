// Package emit is the shared vocabulary of the code-emitting stages: the
// helper record each extractor produces, the per-package registry the
// assembler validates against, and the naming conventions that let
// generated pieces find each other.
package emit

import (
	"github.com/dave/jennifer/jen"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/errors"
)

// DefaultHostImport is the import path of the host protocol package.
const DefaultHostImport = "github.com/teranos/starbind/host"

// StarlarkImport is the import path of the Starlark interpreter.
const StarlarkImport = "go.starlark.net/starlark"

// Options are the knobs shared by every emitting stage.
type Options struct {
	HostImport string
}

// Host returns the configured host import path.
func (o Options) Host() string {
	if o.HostImport == "" {
		return DefaultHostImport
	}
	return o.HostImport
}

// Helper is one generated helper routine attached to a type.
type Helper struct {
	Type    string
	Kind    decl.Helper
	Func    string   // name of the registration function the unit calls
	Entries []string // script-side names the helper registers
	Code    []jen.Code
}

// Unit is the registration unit for one type.
type Unit struct {
	Type    string
	Helpers decl.HelperSet
	Code    []jen.Code
}

// HelperFunc names the registration function for a type's helper.
func HelperFunc(typeName string, kind decl.Helper) string {
	switch kind {
	case decl.HelperFields:
		return "starbind" + typeName + "Fields"
	case decl.HelperMethods:
		return "starbind" + typeName + "Methods"
	default:
		return "starbind" + typeName + "Variants"
	}
}

// RecoverFunc names the value-recovery routine for a tagged union.
func RecoverFunc(typeName string) string { return "starbind" + typeName + "Recover" }

// UnitType names the registration unit's adapter type.
func UnitType(typeName string) string { return "starbind" + typeName }

type key struct {
	typeName string
	kind     decl.Helper
}

// Registry records which helpers were generated for which types in one
// package run. The assembler consults it instead of assuming a helper
// exists.
type Registry struct {
	helpers map[key]*Helper
	order   []*Helper
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{helpers: map[key]*Helper{}}
}

// Record adds a helper. A second helper of the same kind for the same type
// is rejected.
func (r *Registry) Record(h *Helper) error {
	k := key{h.Type, h.Kind}
	if _, dup := r.helpers[k]; dup {
		return errors.Wrapf(errors.ErrDuplicateHelper, "%s helper for %s", h.Kind, h.Type)
	}
	r.helpers[k] = h
	r.order = append(r.order, h)
	return nil
}

// Lookup returns the helper of kind for typeName.
func (r *Registry) Lookup(typeName string, kind decl.Helper) (*Helper, bool) {
	h, ok := r.helpers[key{typeName, kind}]
	return h, ok
}

// Kinds returns the set of helpers recorded for typeName.
func (r *Registry) Kinds(typeName string) decl.HelperSet {
	var s decl.HelperSet
	for _, h := range r.order {
		if h.Type == typeName {
			s = s.With(h.Kind)
		}
	}
	return s
}

// Helpers returns every recorded helper in recording order.
func (r *Registry) Helpers() []*Helper {
	return append([]*Helper(nil), r.order...)
}

// Len is the number of recorded helpers.
func (r *Registry) Len() int { return len(r.order) }

// NewFile starts a generated file for a package with the host and
// Starlark imports named the way generated code refers to them. A custom
// host import is aliased to host.
func NewFile(pkgPath, pkgName string, opts Options) *jen.File {
	if pkgPath == "" {
		pkgPath = pkgName
	}
	f := jen.NewFilePathName(pkgPath, pkgName)
	if host := opts.Host(); host == DefaultHostImport {
		f.ImportName(host, "host")
	} else {
		f.ImportAlias(host, "host")
	}
	f.ImportName(StarlarkImport, "starlark")
	return f
}

// Append adds top-level declarations to f, one blank line apart.
func Append(f *jen.File, code []jen.Code) {
	for _, c := range code {
		f.Add(c)
		f.Line()
	}
}
