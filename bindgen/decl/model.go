// Package decl holds the normalized shape of annotated Go declarations:
// records, tagged unions and method blocks, plus the compile directives that
// select which generated helpers a type's registration unit wires in.
//
// Everything here is built once by Scan and read by the extractors and the
// assembler. Nothing mutates a Decl after Scan returns.
package decl

import (
	"go/ast"
	"go/token"
	"strings"
)

// Kind discriminates the three declaration shapes.
type Kind int

const (
	KindRecord Kind = iota
	KindTaggedUnion
	KindMethodBlock
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindTaggedUnion:
		return "tagged-union"
	case KindMethodBlock:
		return "method-block"
	default:
		return "unknown"
	}
}

// TypeToken is a declared type as written in source. Text is what a human
// reads; Expr and Imports let the emitter re-qualify package selectors.
type TypeToken struct {
	Text    string
	Expr    ast.Expr
	Imports map[string]string
}

func (t TypeToken) String() string { return t.Text }

// FieldDescriptor is one named struct field.
type FieldDescriptor struct {
	Name   string // script-side name
	GoName string
	Type   TypeToken
	Pos    token.Position
}

// Record is a struct type whose fields are exposed as read-only getters.
type Record struct {
	Name   string
	Fields []FieldDescriptor
	Pos    token.Position
}

// UnionStyle is how a Go tagged union is spelled.
type UnionStyle int

const (
	// StyleConst is a defined basic type with typed constants.
	StyleConst UnionStyle = iota
	// StyleSealed is an interface with one unexported marker method.
	StyleSealed
)

func (s UnionStyle) String() string {
	if s == StyleSealed {
		return "sealed"
	}
	return "const"
}

// VariantDescriptor is one case of a tagged union. GoName is the constant
// for StyleConst and the variant's type name for StyleSealed.
type VariantDescriptor struct {
	Name    string
	GoName  string
	IsUnit  bool
	Pointer bool // sealed variant implemented on the pointer receiver
	Pos     token.Position
}

// TaggedUnion is an enumeration whose unit variants become constructors.
type TaggedUnion struct {
	Name     string
	Style    UnionStyle
	Marker   string // sealing method, StyleSealed only
	Unpacker bool   // the type already declares an Unpack method
	Variants []VariantDescriptor
	Pos      token.Position
}

// Units returns the variants that carry no data.
func (u *TaggedUnion) Units() []VariantDescriptor {
	var out []VariantDescriptor
	for _, v := range u.Variants {
		if v.IsUnit {
			out = append(out, v)
		}
	}
	return out
}

// Receiver is the call-receiver shape of a routine.
type Receiver int

const (
	ReceiverNone Receiver = iota
	ReceiverRef
	ReceiverMutRef
)

func (r Receiver) String() string {
	switch r {
	case ReceiverRef:
		return "ByRef"
	case ReceiverMutRef:
		return "ByMutRef"
	default:
		return "None"
	}
}

// Param is one declared parameter. Forwarded is false when the parameter
// has no usable name (blank or unnamed) and so cannot be bound from script.
type Param struct {
	Name      string
	Type      TypeToken
	Forwarded bool
}

// RoutineDescriptor is one function or method in a method block.
type RoutineDescriptor struct {
	Name     string // script-side name
	GoName   string
	Receiver Receiver
	Params   []Param
	Results  []TypeToken
	Variadic bool // last parameter is ...T; its Type is T
	Pos      token.Position
}

// Arity counts parameters that are filled from script arguments.
func (r RoutineDescriptor) Arity() int {
	n := 0
	for _, p := range r.Params {
		if p.Forwarded {
			n++
		}
	}
	return n
}

// MethodBlock collects the routines associated with an owner type.
type MethodBlock struct {
	Owner    string
	Routines []RoutineDescriptor
	Pos      token.Position
}

// Decl is the discriminated declaration model. Exactly one of Record,
// Union and Block is set, matching Kind.
type Decl struct {
	Kind   Kind
	Name   string
	Pos    token.Position
	Record *Record
	Union  *TaggedUnion
	Block  *MethodBlock
}

// Helper names one generated helper routine kind.
type Helper int

const (
	HelperFields Helper = iota
	HelperMethods
	HelperVariants
)

// Vocabulary lists every helper in canonical order.
var Vocabulary = []Helper{HelperFields, HelperMethods, HelperVariants}

func (h Helper) String() string {
	switch h {
	case HelperFields:
		return "fields"
	case HelperMethods:
		return "methods"
	case HelperVariants:
		return "variants"
	default:
		return "unknown"
	}
}

// Annotation is the directive that makes an extractor produce h.
func (h Helper) Annotation() string {
	switch h {
	case HelperFields:
		return DirectivePrefix + VerbStructure
	case HelperMethods:
		return DirectivePrefix + VerbImplementation
	default:
		return DirectivePrefix + VerbEnumeration
	}
}

// ParseHelper maps a compile-directive token onto the vocabulary.
func ParseHelper(s string) (Helper, bool) {
	for _, h := range Vocabulary {
		if h.String() == s {
			return h, true
		}
	}
	return 0, false
}

// VocabularyString renders the accepted helper tokens for diagnostics.
func VocabularyString() string {
	names := make([]string, len(Vocabulary))
	for i, h := range Vocabulary {
		names[i] = h.String()
	}
	return strings.Join(names, ", ")
}

// HelperSet is a set of helpers.
type HelperSet uint8

func (s HelperSet) Has(h Helper) bool { return s&(1<<h) != 0 }
func (s HelperSet) With(h Helper) HelperSet { return s | 1<<h }
func (s HelperSet) Empty() bool { return s == 0 }

// List returns the members in canonical order.
func (s HelperSet) List() []Helper {
	var out []Helper
	for _, h := range Vocabulary {
		if s.Has(h) {
			out = append(out, h)
		}
	}
	return out
}

func (s HelperSet) String() string {
	list := s.List()
	names := make([]string, len(list))
	for i, h := range list {
		names[i] = h.String()
	}
	return strings.Join(names, ", ")
}

// Selection is one parsed compile directive.
type Selection struct {
	Target  string
	Helpers HelperSet
	Pos     token.Position
}

// CompileDirective is the raw argument text of a //starbind:compile line.
// Pos is the position of the first byte of Text.
type CompileDirective struct {
	Text string
	Pos  token.Position
}

// Package is everything Scan found in one Go package.
type Package struct {
	Name     string
	Path     string
	Dir      string
	Decls    []*Decl
	Compiles []CompileDirective
	Types    map[string]token.Position
}

// Lookup returns the declaration of kind k for the named type.
func (p *Package) Lookup(k Kind, name string) *Decl {
	for _, d := range p.Decls {
		if d.Kind == k && d.Name == name {
			return d
		}
	}
	return nil
}

// Empty reports whether p has nothing to generate.
func (p *Package) Empty() bool {
	return len(p.Decls) == 0 && len(p.Compiles) == 0
}
