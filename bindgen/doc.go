// Package bindgen generates Starlark bindings for annotated Go types.
//
// # Pipeline
//
// A package run has three stages:
//  1. decl.Scan reads //starbind: directives into the declaration model
//  2. the fields, variants and methods extractors each turn one declaration
//     into a helper and record it in an emit.Registry
//  3. assemble turns every //starbind:compile directive into a
//     registration unit, checking that each helper it selects was recorded
//
// All extractors run before any compile directive is assembled, so the
// order of declarations in the source does not matter. The first error
// aborts the package and nothing is written.
//
// # Output
//
// Each package gets one file, zz_generated.starbind.go by default, next to
// its sources. The file starts with a "Code generated ... DO NOT EDIT."
// header, which is also how later scans recognise and skip it.
package bindgen
