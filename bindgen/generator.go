package bindgen

import (
	"bytes"
	"go/token"

	"github.com/teranos/starbind/bindgen/assemble"
	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/bindgen/emit"
	"github.com/teranos/starbind/bindgen/fields"
	"github.com/teranos/starbind/bindgen/methods"
	"github.com/teranos/starbind/bindgen/variants"
	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
	"github.com/teranos/starbind/version"
)

// DefaultOutput is the generated file name used when Options.Output is empty.
const DefaultOutput = "zz_generated.starbind.go"

// headerPrefix starts the first line of every generated file. The rest of
// the line is the generator version.
const headerPrefix = "Code generated by starbind"

// Options configure a Generator.
type Options struct {
	Naming     decl.Naming
	HostImport string
	Output     string
	BuildFlags []string
	Dir        string // working directory for Load; empty means the current one
	Version    string // stamped into the header; empty means the running build
}

func (o Options) output() string {
	if o.Output == "" {
		return DefaultOutput
	}
	return o.Output
}

// Result is the outcome of generating one package.
type Result struct {
	Package *decl.Package
	Helpers []*emit.Helper
	Units   []*emit.Unit
	Source  []byte // nil when the package has nothing to bind
}

// Empty reports whether the package produced no output.
func (r *Result) Empty() bool { return len(r.Source) == 0 }

// Generator runs the pipeline for one package at a time.
type Generator struct {
	opts Options
	emit emit.Options
}

// NewGenerator returns a generator for opts.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts, emit: emit.Options{HostImport: opts.HostImport}}
}

// Output is the generated file name.
func (g *Generator) Output() string { return g.opts.output() }

// GeneratePackage extracts every declaration in pkg, assembles every
// compile directive, and renders the result.
func (g *Generator) GeneratePackage(pkg *decl.Package) (*Result, error) {
	log := logger.Named("bindgen").With(logger.FieldPackage, pkg.Path)
	res := &Result{Package: pkg}
	if pkg.Empty() {
		log.Debugw("Nothing to bind")
		return res, nil
	}

	reg := emit.NewRegistry()
	for _, d := range pkg.Decls {
		h, err := g.extract(d)
		if err != nil {
			return nil, err
		}
		if err := reg.Record(h); err != nil {
			return nil, errors.At(d.Pos, err)
		}
		log.Debugw("Extracted helper",
			logger.FieldType, h.Type,
			logger.FieldHelper, h.Kind.String(),
			logger.FieldCount, len(h.Entries))
	}
	res.Helpers = reg.Helpers()

	compiled := map[string]token.Position{}
	for _, c := range pkg.Compiles {
		sel, err := assemble.ParseSelection(c.Text, c.Pos)
		if err != nil {
			return nil, err
		}
		if _, ok := pkg.Types[sel.Target]; !ok {
			return nil, errors.WithHintf(
				errors.Malformedf(sel.Pos, "%s%s names %s, which is not declared in package %s",
					decl.DirectivePrefix, decl.VerbCompile, sel.Target, pkg.Name),
				"the compile directive must live in the package that declares the type",
			)
		}
		if prev, dup := compiled[sel.Target]; dup {
			return nil, errors.At(sel.Pos, errors.Wrapf(errors.ErrDuplicateHelper,
				"%s is already compiled at %s", sel.Target, prev))
		}
		compiled[sel.Target] = sel.Pos

		unit, err := assemble.Assemble(sel, reg, g.emit)
		if err != nil {
			return nil, err
		}
		res.Units = append(res.Units, unit)
		log.Debugw("Assembled unit", logger.FieldType, unit.Type, "helpers", unit.Helpers.String())
	}

	for _, h := range res.Helpers {
		if _, ok := compiled[h.Type]; !ok {
			log.Debugw("Helper not selected by any compile directive",
				logger.FieldType, h.Type, logger.FieldHelper, h.Kind.String())
		}
	}

	src, err := g.render(pkg, res)
	if err != nil {
		return nil, err
	}
	res.Source = src
	return res, nil
}

func (g *Generator) extract(d *decl.Decl) (*emit.Helper, error) {
	switch d.Kind {
	case decl.KindRecord:
		return fields.Extract(d.Record, g.emit)
	case decl.KindTaggedUnion:
		return variants.Extract(d.Union, g.emit)
	case decl.KindMethodBlock:
		return methods.Extract(d.Block, g.emit)
	default:
		return nil, errors.AssertionFailedf("unknown declaration kind %d for %s", d.Kind, d.Name)
	}
}

func (g *Generator) render(pkg *decl.Package, res *Result) ([]byte, error) {
	f := emit.NewFile(pkg.Path, pkg.Name, g.emit)
	f.HeaderComment(g.header())
	for _, h := range res.Helpers {
		emit.Append(f, h.Code)
	}
	for _, u := range res.Units {
		emit.Append(f, u.Code)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, errors.Wrapf(err, "render bindings for %s", pkg.Name)
	}
	return buf.Bytes(), nil
}

func (g *Generator) header() string {
	v := g.opts.Version
	if v == "" {
		v = version.Get().Version
	}
	return headerPrefix + " " + v + ". DO NOT EDIT."
}
