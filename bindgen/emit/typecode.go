package emit

import (
	"go/ast"

	"github.com/dave/jennifer/jen"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/bindgen/util"
)

// TypeCode renders a declared type as jen code, re-qualifying package
// selectors through the declaring file's imports so the generated file
// imports what it uses.
func TypeCode(t decl.TypeToken) *jen.Statement {
	if t.Expr == nil {
		return jen.Id(t.Text)
	}
	return exprCode(t.Expr, t.Imports)
}

func exprCode(expr ast.Expr, imports map[string]string) *jen.Statement {
	switch e := expr.(type) {
	case *ast.Ident:
		return jen.Id(e.Name)
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok {
			if path, ok := imports[x.Name]; ok {
				return jen.Qual(path, e.Sel.Name)
			}
		}
	case *ast.ParenExpr:
		return jen.Parens(exprCode(e.X, imports))
	case *ast.StarExpr:
		return jen.Op("*").Add(exprCode(e.X, imports))
	case *ast.ArrayType:
		if e.Len == nil {
			return jen.Index().Add(exprCode(e.Elt, imports))
		}
		return jen.Index(jen.Id(util.ExprString(e.Len))).Add(exprCode(e.Elt, imports))
	case *ast.MapType:
		return jen.Map(exprCode(e.Key, imports)).Add(exprCode(e.Value, imports))
	case *ast.Ellipsis:
		return jen.Op("...").Add(exprCode(e.Elt, imports))
	case *ast.InterfaceType:
		if len(e.Methods.List) == 0 {
			return jen.Interface()
		}
	case *ast.FuncType:
		fn := jen.Func().Params(fieldTypes(e.Params, imports)...)
		if e.Results == nil || len(e.Results.List) == 0 {
			return fn
		}
		results := fieldTypes(e.Results, imports)
		if len(results) == 1 {
			return fn.Add(results[0])
		}
		return fn.Params(results...)
	case *ast.StructType:
		if fields, ok := structFields(e, imports); ok {
			return jen.Struct(fields...)
		}
	case *ast.IndexExpr:
		return exprCode(e.X, imports).Types(exprCode(e.Index, imports))
	case *ast.IndexListExpr:
		args := make([]jen.Code, len(e.Indices))
		for i, ix := range e.Indices {
			args[i] = exprCode(ix, imports)
		}
		return exprCode(e.X, imports).Types(args...)
	case *ast.ChanType:
		elt := exprCode(e.Value, imports)
		switch e.Dir {
		case ast.SEND:
			return jen.Chan().Op("<-").Add(elt)
		case ast.RECV:
			return jen.Op("<-").Chan().Add(elt)
		default:
			return jen.Chan().Add(elt)
		}
	}
	// Tagged structs and interfaces with methods are emitted verbatim.
	return jen.Id(util.ExprString(expr))
}

// fieldTypes renders the types of a parameter or result list, one entry per
// name. Names are dropped; they do not affect type identity.
func fieldTypes(fl *ast.FieldList, imports map[string]string) []jen.Code {
	if fl == nil {
		return nil
	}
	var out []jen.Code
	for _, f := range fl.List {
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, exprCode(f.Type, imports))
		}
	}
	return out
}

// structFields renders an untagged struct type. Tags take part in type
// identity and jen reorders them, so tagged structs are not handled.
func structFields(st *ast.StructType, imports map[string]string) ([]jen.Code, bool) {
	var out []jen.Code
	for _, f := range st.Fields.List {
		if f.Tag != nil {
			return nil, false
		}
		typ := exprCode(f.Type, imports)
		if len(f.Names) == 0 {
			out = append(out, typ)
			continue
		}
		for _, n := range f.Names {
			out = append(out, jen.Id(n.Name).Add(typ))
		}
	}
	return out, true
}

// SliceOf renders []T for the element type of a variadic parameter.
func SliceOf(t decl.TypeToken) *jen.Statement {
	return jen.Index().Add(TypeCode(t))
}

// IsError reports whether a result token is the predeclared error type.
func IsError(t decl.TypeToken) bool {
	if t.Expr != nil {
		return util.IsErrorType(t.Expr)
	}
	return t.Text == "error"
}
