// Package errors provides error handling for starbind.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "expected one of: fields, methods, variants")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the generator pipeline.
// Use these with errors.Is() for type-safe error checking.
var (
	// ErrMalformedDeclaration indicates an annotation or compile directive
	// that cannot be interpreted
	ErrMalformedDeclaration = New("malformed declaration")

	// ErrUnknownHelper indicates a compile directive naming a helper kind
	// outside the fields/methods/variants vocabulary
	ErrUnknownHelper = New("unknown helper")

	// ErrMissingHelper indicates a compile directive selecting a helper
	// that was never produced for the type
	ErrMissingHelper = New("missing helper")

	// ErrDuplicateHelper indicates the same helper was produced twice for a type
	ErrDuplicateHelper = New("duplicate helper")

	// ErrUnsupported indicates a Go construct the generator cannot bind
	ErrUnsupported = New("unsupported construct")

	// ErrStale indicates generated output on disk differs from what would be generated
	ErrStale = New("generated bindings are stale")
)

// IsMalformed checks if an error is or wraps ErrMalformedDeclaration
func IsMalformed(err error) bool {
	return err != nil && Is(err, ErrMalformedDeclaration)
}

// IsStale checks if an error is or wraps ErrStale
func IsStale(err error) bool {
	return err != nil && Is(err, ErrStale)
}
