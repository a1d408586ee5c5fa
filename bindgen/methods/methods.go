// Package methods generates call-forwarding entries for a method block.
//
// Each routine is classified by receiver shape and registered through the
// matching host builder:
//
//	None     -> methods.Function   static call, no instance
//	ByRef    -> methods.Method     instance copied under a read lock
//	ByMutRef -> methods.MethodMut  instance borrowed under the write lock
//
// Parameters are unpacked from the Starlark argument tuple in declaration
// order using their declared types, so arity and types are checked by the
// host before the Go routine runs.
package methods

import (
	"fmt"
	"go/ast"

	"github.com/dave/jennifer/jen"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/bindgen/emit"
	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
)

// reserved names are taken by the generated closure signature or the
// packages it refers to, so parameters are renamed around them.
var reserved = map[string]bool{"this": true, "args": true, "host": true, "err": true}

// Extract builds the methods helper for b.
func Extract(b *decl.MethodBlock, opts emit.Options) (*emit.Helper, error) {
	host := opts.Host()
	fn := emit.HelperFunc(b.Owner, decl.HelperMethods)
	helper := &emit.Helper{Type: b.Owner, Kind: decl.HelperMethods, Func: fn}

	body := make([]jen.Code, 0, len(b.Routines))
	for _, r := range b.Routines {
		e, err := entry(b.Owner, r, host)
		if err != nil {
			return nil, err
		}
		body = append(body, e)
		helper.Entries = append(helper.Entries, r.Name)
		logger.Debugw("Bound routine", logger.FieldType, b.Owner, "routine", r.Name, "receiver", r.Receiver.String())
	}

	helper.Code = []jen.Code{
		jen.Commentf("%s registers the %s methods and static functions.", fn, b.Owner).Line().
			Func().Id(fn).Params(
			jen.Id("methods").Op("*").Qual(host, "Methods").Types(jen.Id(b.Owner)),
		).Block(body...),
	}
	return helper, nil
}

func entry(owner string, r decl.RoutineDescriptor, host string) (jen.Code, error) {
	if r.Variadic && len(r.Params) == 0 {
		return nil, errors.Unsupportedf(r.Pos, "variadic routine %s has no parameters", r.GoName)
	}

	argsParam := jen.Id("args").Qual(host, "Args")
	results := jen.Params(jen.Id("any"), jen.Error())
	body := forward(owner, r, host)

	switch r.Receiver {
	case decl.ReceiverNone:
		return jen.Id("methods").Dot("Function").Call(
			jen.Lit(r.Name),
			jen.Func().Params(argsParam).Add(results).Block(body...),
		), nil
	case decl.ReceiverRef, decl.ReceiverMutRef:
		builder := "Method"
		if r.Receiver == decl.ReceiverMutRef {
			builder = "MethodMut"
		}
		return jen.Id("methods").Dot(builder).Call(
			jen.Lit(r.Name),
			jen.Func().Params(jen.Id("this").Op("*").Id(owner), argsParam).Add(results).Block(body...),
		), nil
	default:
		return nil, errors.Unsupportedf(r.Pos, "routine %s has unknown receiver shape %d", r.GoName, r.Receiver)
	}
}

// locals assigns each forwarded parameter a Go identifier that cannot clash
// with the closure's own names, another parameter, or a name the
// parameter types refer to. A local called time would otherwise shadow
// the time package for every declaration after it.
func locals(owner string, params []decl.Param) []string {
	blocked := typeNames(params)
	blocked[owner] = true
	clashes := func(name string) bool { return reserved[name] || blocked[name] }

	taken := map[string]bool{}
	for _, p := range params {
		if p.Forwarded {
			taken[p.Name] = true
		}
	}
	out := make([]string, len(params))
	for i, p := range params {
		if !p.Forwarded {
			continue
		}
		name := p.Name
		if clashes(name) {
			for name = name + "_"; taken[name] || clashes(name); name += "_" {
			}
			taken[name] = true
		}
		out[i] = name
	}
	return out
}

// typeNames collects the package names in scope for the parameters and
// every identifier their types mention.
func typeNames(params []decl.Param) map[string]bool {
	names := map[string]bool{}
	for _, p := range params {
		for name := range p.Type.Imports {
			names[name] = true
		}
		if p.Type.Expr == nil {
			names[p.Type.Text] = true
			continue
		}
		ast.Inspect(p.Type.Expr, func(n ast.Node) bool {
			if id, ok := n.(*ast.Ident); ok {
				names[id.Name] = true
			}
			return true
		})
	}
	return names
}

// forward emits the closure body: declare and unpack the parameters, call
// the routine, and shape its results for the host.
func forward(owner string, r decl.RoutineDescriptor, host string) []jen.Code {
	names := locals(owner, r.Params)
	last := len(r.Params) - 1

	var stmts, targets, callArgs []jen.Code
	for i, p := range r.Params {
		variadic := r.Variadic && i == last
		switch {
		case p.Forwarded && variadic:
			stmts = append(stmts, jen.Var().Id(names[i]).Add(emit.SliceOf(p.Type)))
			targets = append(targets, jen.Qual(host, "Rest").Call(jen.Op("&").Id(names[i])))
			callArgs = append(callArgs, jen.Id(names[i]).Op("..."))
		case p.Forwarded:
			stmts = append(stmts, jen.Var().Id(names[i]).Add(emit.TypeCode(p.Type)))
			targets = append(targets, jen.Op("&").Id(names[i]))
			callArgs = append(callArgs, jen.Id(names[i]))
		case variadic:
			// An unnamed variadic tail is simply passed nothing.
		default:
			callArgs = append(callArgs, jen.Op("*").New(emit.TypeCode(p.Type)))
		}
	}
	stmts = append(stmts, jen.If(
		jen.Err().Op(":=").Id("args").Dot("Unpack").Call(targets...),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(jen.Nil(), jen.Err())))

	var call *jen.Statement
	if r.Receiver == decl.ReceiverNone {
		call = jen.Id(r.GoName).Call(callArgs...)
	} else {
		call = jen.Id("this").Dot(r.GoName).Call(callArgs...)
	}
	return append(stmts, results(r.Results, call, host)...)
}

func results(res []decl.TypeToken, call *jen.Statement, host string) []jen.Code {
	n := len(res)
	failing := n > 0 && emit.IsError(res[n-1])

	switch {
	case n == 0:
		return []jen.Code{call, jen.Return(jen.Nil(), jen.Nil())}
	case n == 1 && failing:
		return []jen.Code{jen.Return(jen.Nil(), call)}
	case n == 1:
		return []jen.Code{jen.Return(call, jen.Nil())}
	case n == 2 && failing:
		return []jen.Code{jen.Return(call)}
	}

	values := n
	if failing {
		values--
	}
	lhs := make([]jen.Code, 0, n)
	tuple := make([]jen.Code, 0, values)
	for i := 0; i < values; i++ {
		id := fmt.Sprintf("r%d", i)
		lhs = append(lhs, jen.Id(id))
		tuple = append(tuple, jen.Id(id))
	}
	if !failing {
		return []jen.Code{
			jen.List(lhs...).Op(":=").Add(call),
			jen.Return(jen.Qual(host, "Tuple").Call(tuple...), jen.Nil()),
		}
	}
	lhs = append(lhs, jen.Err())
	return []jen.Code{
		jen.List(lhs...).Op(":=").Add(call),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Qual(host, "Tuple").Call(tuple...), jen.Nil()),
	}
}
