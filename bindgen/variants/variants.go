// Package variants generates constructors for the unit variants of a
// tagged union and the routine that turns a boxed Starlark value back into
// the native union value.
package variants

import (
	"github.com/dave/jennifer/jen"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/bindgen/emit"
	"github.com/teranos/starbind/logger"
)

// Extract builds the variants helper for u. Data-carrying variants are
// left out without error.
//
// Const unions also get an Unpack method so the type satisfies
// starlark.Unpacker and can be used directly as a parameter type. Interface
// unions cannot carry methods, so only the recovery function is emitted.
func Extract(u *decl.TaggedUnion, opts emit.Options) (*emit.Helper, error) {
	host := opts.Host()
	fn := emit.HelperFunc(u.Name, decl.HelperVariants)
	helper := &emit.Helper{Type: u.Name, Kind: decl.HelperVariants, Func: fn}

	var body []jen.Code
	for _, v := range u.Variants {
		if !v.IsUnit {
			logger.Debugw("Skipping data-carrying variant", logger.FieldType, u.Name, "variant", v.GoName)
			continue
		}
		body = append(body, jen.Id("methods").Dot("Variant").Call(
			jen.Lit(v.Name),
			jen.Func().Params().Id(u.Name).Block(jen.Return(variantValue(u, v))),
		))
		helper.Entries = append(helper.Entries, v.Name)
	}

	helper.Code = []jen.Code{
		jen.Commentf("%s registers the %s unit variant constructors.", fn, u.Name).Line().
			Func().Id(fn).Params(
			jen.Id("methods").Op("*").Qual(host, "Methods").Types(jen.Id(u.Name)),
		).Block(body...),
		recovery(u, host),
	}
	if u.Style == decl.StyleConst && !u.Unpacker {
		helper.Code = append(helper.Code, unpack(u))
	}
	return helper, nil
}

func variantValue(u *decl.TaggedUnion, v decl.VariantDescriptor) jen.Code {
	if u.Style == decl.StyleConst {
		return jen.Id(v.GoName)
	}
	if v.Pointer {
		return jen.Op("&").Id(v.GoName).Values()
	}
	return jen.Id(v.GoName).Values()
}

// recovery borrows a boxed value as the union type and returns a copy.
// Anything else yields a *host.ConversionError naming both types.
func recovery(u *decl.TaggedUnion, host string) jen.Code {
	fn := emit.RecoverFunc(u.Name)
	return jen.Commentf("%s converts a Starlark value back into a %s.", fn, u.Name).Line().
		Func().Id(fn).Params(jen.Id("v").Qual(emit.StarlarkImport, "Value")).Params(jen.Id(u.Name), jen.Error()).Block(
		jen.List(jen.Id("obj"), jen.Id("ok")).Op(":=").Id("v").Assert(jen.Op("*").Qual(host, "Object").Types(jen.Id(u.Name))),
		jen.If(jen.Op("!").Id("ok")).Block(
			jen.Var().Id("zero").Id(u.Name),
			jen.Return(jen.Id("zero"), jen.Op("&").Qual(host, "ConversionError").Values(
				jen.Id("From").Op(":").Qual(host, "TypeName").Call(jen.Id("v")),
				jen.Id("To").Op(":").Lit(u.Name),
				jen.Id("Message").Op(":").Lit("expected userdata for "+u.Name),
			)),
		),
		jen.Return(jen.Id("obj").Dot("Borrow").Call(), jen.Nil()),
	)
}

func unpack(u *decl.TaggedUnion) jen.Code {
	return jen.Comment("Unpack implements starlark.Unpacker.").Line().
		Func().Params(jen.Id("x").Op("*").Id(u.Name)).Id("Unpack").Params(jen.Id("v").Qual(emit.StarlarkImport, "Value")).Error().Block(
		jen.List(jen.Id("got"), jen.Err()).Op(":=").Id(emit.RecoverFunc(u.Name)).Call(jen.Id("v")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.Op("*").Id("x").Op("=").Id("got"),
		jen.Return(jen.Nil()),
	)
}
