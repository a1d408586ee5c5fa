package decl

import (
	"go/ast"
	"go/token"
	"strings"
)

// DirectivePrefix starts every starbind comment directive.
const DirectivePrefix = "//starbind:"

// Directive verbs.
const (
	VerbStructure      = "structure"
	VerbEnumeration    = "enumeration"
	VerbImplementation = "implementation"
	VerbCompile        = "compile"
	VerbSkip           = "skip"
	VerbName           = "name"
	VerbStatic         = "static"
)

var (
	typeVerbs = map[string]bool{VerbStructure: true, VerbEnumeration: true, VerbImplementation: true}
	funcVerbs = map[string]bool{VerbSkip: true, VerbName: true, VerbStatic: true}
)

// Directive is one parsed //starbind: line.
type Directive struct {
	Verb    string
	Args    string
	Pos     token.Pos // start of the comment
	ArgsPos token.Pos // start of Args, or end of the verb when Args is empty
}

// ParseDirectives returns the starbind directives in a comment group, in order.
func ParseDirectives(cg *ast.CommentGroup) []Directive {
	if cg == nil {
		return nil
	}
	var out []Directive
	for _, c := range cg.List {
		if d, ok := parseDirective(c); ok {
			out = append(out, d)
		}
	}
	return out
}

func parseDirective(c *ast.Comment) (Directive, bool) {
	rest, ok := strings.CutPrefix(c.Text, DirectivePrefix)
	if !ok {
		return Directive{}, false
	}
	end := strings.IndexAny(rest, " \t")
	if end < 0 {
		end = len(rest)
	}
	verb := rest[:end]
	offset := len(DirectivePrefix) + end
	args := rest[end:]
	trimmed := strings.TrimLeft(args, " \t")
	offset += len(args) - len(trimmed)

	return Directive{
		Verb:    verb,
		Args:    strings.TrimRight(trimmed, " \t"),
		Pos:     c.Slash,
		ArgsPos: c.Slash + token.Pos(offset),
	}, true
}

func findDirective(dirs []Directive, verb string) (Directive, bool) {
	for _, d := range dirs {
		if d.Verb == verb {
			return d, true
		}
	}
	return Directive{}, false
}
