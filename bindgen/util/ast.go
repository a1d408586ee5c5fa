package util

import (
	"go/ast"
	"go/types"
)

// BaseTypeName returns the name of the named type an expression refers to,
// looking through one pointer and any parentheses. Qualified and composite
// expressions yield "".
func BaseTypeName(expr ast.Expr) (name string, pointer bool) {
	for {
		switch e := expr.(type) {
		case *ast.ParenExpr:
			expr = e.X
		case *ast.StarExpr:
			if pointer {
				return "", false
			}
			pointer = true
			expr = e.X
		case *ast.Ident:
			return e.Name, pointer
		default:
			return "", false
		}
	}
}

// ExprString renders a type expression as Go source text.
func ExprString(expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	return types.ExprString(expr)
}

// IsErrorType reports whether expr is the predeclared error type.
func IsErrorType(expr ast.Expr) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == "error"
}
