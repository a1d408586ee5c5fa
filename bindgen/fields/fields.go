// Package fields generates the getter table for a record: one read-only
// entry per named field.
package fields

import (
	"github.com/dave/jennifer/jen"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/bindgen/emit"
	"github.com/teranos/starbind/errors"
)

// Extract builds the fields helper for rec. Each getter receives a private
// copy of the instance and returns the field's current value. A field
// without a name aborts extraction.
func Extract(rec *decl.Record, opts emit.Options) (*emit.Helper, error) {
	fn := emit.HelperFunc(rec.Name, decl.HelperFields)
	helper := &emit.Helper{Type: rec.Name, Kind: decl.HelperFields, Func: fn}

	body := make([]jen.Code, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		if f.GoName == "" {
			return nil, errors.Malformedf(f.Pos, "field of %s has no name", rec.Name)
		}
		body = append(body, jen.Id("fields").Dot("Get").Call(
			jen.Lit(f.Name),
			jen.Func().Params(jen.Id("this").Op("*").Id(rec.Name)).Params(jen.Id("any"), jen.Error()).Block(
				jen.Return(jen.Id("this").Dot(f.GoName), jen.Nil()),
			),
		))
		helper.Entries = append(helper.Entries, f.Name)
	}

	helper.Code = []jen.Code{
		jen.Commentf("%s registers the %s field getters.", fn, rec.Name).Line().
			Func().Id(fn).Params(
			jen.Id("fields").Op("*").Qual(opts.Host(), "Fields").Types(jen.Id(rec.Name)),
		).Block(body...),
	}
	return helper, nil
}
