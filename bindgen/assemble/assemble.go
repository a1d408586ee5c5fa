// Package assemble turns a compile directive into the registration unit for
// one type: an adapter implementing host.UserData that calls exactly the
// helpers the directive selected, and an init function registering it.
//
// Assembly is one pass with no retries: parse, validate, select, emit. A
// failure at any step yields no unit.
package assemble

import (
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/bindgen/emit"
	"github.com/teranos/starbind/errors"
)

// ParseSelection parses "TypeName, helper, helper," where pos is the
// position of the first byte of text. Each helper must come from the
// fields/methods/variants vocabulary; diagnostics point at the offending
// token.
func ParseSelection(text string, pos token.Position) (*decl.Selection, error) {
	type item struct {
		text string
		pos  token.Position
	}

	var items []item
	parts := strings.Split(text, ",")
	offset := 0
	for i, part := range parts {
		lead := len(part) - len(strings.TrimLeft(part, " \t"))
		at := shift(pos, offset+lead)
		offset += len(part) + 1

		word := strings.TrimSpace(part)
		if word == "" {
			if i == len(parts)-1 && i > 0 {
				break // trailing comma
			}
			if len(parts) == 1 {
				return nil, errors.Malformedf(pos, "%s%s needs a type name", decl.DirectivePrefix, decl.VerbCompile)
			}
			return nil, errors.Malformedf(at, "empty entry in %s%s list", decl.DirectivePrefix, decl.VerbCompile)
		}
		if !token.IsIdentifier(word) {
			return nil, errors.Malformedf(at, "%q is not an identifier", word)
		}
		items = append(items, item{text: word, pos: at})
	}

	sel := &decl.Selection{Target: items[0].text, Pos: items[0].pos}
	for _, it := range items[1:] {
		h, ok := decl.ParseHelper(it.text)
		if !ok {
			return nil, errors.At(it.pos, errors.WithHintf(
				errors.Mark(errors.Newf("unknown helper %q for %s (expected one of: %s)",
					it.text, sel.Target, decl.VocabularyString()), errors.ErrUnknownHelper),
				"accepted helpers are %s", decl.VocabularyString(),
			))
		}
		sel.Helpers = sel.Helpers.With(h)
	}
	return sel, nil
}

func shift(pos token.Position, n int) token.Position {
	if pos.IsValid() {
		pos.Column += n
		pos.Offset += n
	}
	return pos
}

// Assemble emits the registration unit for sel. Every selected helper must
// have been recorded in reg by its extractor; a missing one is reported
// instead of producing code that references an undeclared function.
func Assemble(sel *decl.Selection, reg *emit.Registry, opts emit.Options) (*emit.Unit, error) {
	host := opts.Host()
	target := sel.Target

	helpers := map[decl.Helper]*emit.Helper{}
	for _, h := range sel.Helpers.List() {
		rec, ok := reg.Lookup(target, h)
		if !ok {
			return nil, errors.At(sel.Pos, errors.WithHintf(
				errors.Mark(errors.Newf("%s selects %s, but no %s helper was generated for %s",
					target, h, h, target), errors.ErrMissingHelper),
				"annotate %s with %s or drop %q from the list", target, h.Annotation(), h.String(),
			))
		}
		helpers[h] = rec
	}

	if err := collide(sel, helpers); err != nil {
		return nil, err
	}

	unit := emit.UnitType(target)
	call := func(h decl.Helper, arg string) []jen.Code {
		if rec, ok := helpers[h]; ok {
			return []jen.Code{jen.Id(rec.Func).Call(jen.Id(arg))}
		}
		return nil
	}

	var methodsBody []jen.Code
	methodsBody = append(methodsBody, call(decl.HelperMethods, "methods")...)
	methodsBody = append(methodsBody, call(decl.HelperVariants, "methods")...)

	code := []jen.Code{
		jen.Commentf("%s exposes %s to Starlark.", unit, target).Line().
			Type().Id(unit).Struct(),

		jen.Func().Params(jen.Id(unit)).Id("AddFields").Params(
			jen.Id("fields").Op("*").Qual(host, "Fields").Types(jen.Id(target)),
		).Block(call(decl.HelperFields, "fields")...),

		jen.Func().Params(jen.Id(unit)).Id("AddMethods").Params(
			jen.Id("methods").Op("*").Qual(host, "Methods").Types(jen.Id(target)),
		).Block(methodsBody...),

		jen.Func().Id("init").Params().Block(
			jen.Qual(host, "Register").Types(jen.Id(target)).Call(jen.Lit(target), jen.Id(unit).Values()),
		),
	}
	return &emit.Unit{Type: target, Helpers: sel.Helpers, Code: code}, nil
}

// shared lists helper pairs whose entries land in one host namespace: the
// method table holds methods and variants, and instances expose fields
// next to methods.
var shared = [][2]decl.Helper{
	{decl.HelperMethods, decl.HelperVariants},
	{decl.HelperFields, decl.HelperMethods},
}

// collide rejects a selection whose helpers register the same name twice.
// The host table keeps one entry per name, so either would silently hide
// the other.
func collide(sel *decl.Selection, helpers map[decl.Helper]*emit.Helper) error {
	for _, pair := range shared {
		a, b := helpers[pair[0]], helpers[pair[1]]
		if a == nil || b == nil {
			continue
		}
		names := make(map[string]bool, len(a.Entries))
		for _, n := range a.Entries {
			names[n] = true
		}
		for _, n := range b.Entries {
			if names[n] {
				return errors.WithHint(
					errors.Malformedf(sel.Pos, "%s: %s and %s helpers both register %q", sel.Target, pair[0], pair[1], n),
					"rename one of them with a struct tag or //starbind:name",
				)
			}
		}
	}
	return nil
}
