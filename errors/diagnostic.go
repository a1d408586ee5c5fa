package errors

import (
	"fmt"
	"go/token"
)

// Diagnostic attaches a source position to an error so that it renders
// as file:line:col: message, the form editors and go vet use.
type Diagnostic struct {
	Pos token.Position
	Err error
}

func (d *Diagnostic) Error() string {
	if !d.Pos.IsValid() {
		return d.Err.Error()
	}
	return fmt.Sprintf("%s: %s", d.Pos, d.Err)
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// At positions err at pos. A nil err stays nil.
func At(pos token.Position, err error) error {
	if err == nil {
		return nil
	}
	return &Diagnostic{Pos: pos, Err: err}
}

// Malformedf reports a malformed declaration at pos.
func Malformedf(pos token.Position, format string, args ...interface{}) error {
	return At(pos, Wrapf(ErrMalformedDeclaration, format, args...))
}

// Unsupportedf reports a construct the generator cannot bind at pos.
func Unsupportedf(pos token.Position, format string, args ...interface{}) error {
	return At(pos, Wrapf(ErrUnsupported, format, args...))
}

// PositionOf returns the position recorded by the outermost Diagnostic in
// err's chain, if any.
func PositionOf(err error) (token.Position, bool) {
	var d *Diagnostic
	if As(err, &d) {
		return d.Pos, true
	}
	return token.Position{}, false
}
