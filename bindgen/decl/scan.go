package decl

import (
	"go/ast"
	"go/token"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/teranos/starbind/bindgen/util"
	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
)

// Naming selects how Go identifiers become script-side names.
type Naming string

const (
	NamingSnake Naming = "snake"
	NamingGo    Naming = "go"
)

// Valid reports whether n is a known naming style.
func (n Naming) Valid() bool { return n == NamingSnake || n == NamingGo }

// Options tunes Scan.
type Options struct {
	Naming Naming
}

// TagName is the struct tag key read on record fields.
const TagName = "starbind"

type typeEntry struct {
	spec    *ast.TypeSpec
	dirs    []Directive
	imports map[string]string
}

type funcEntry struct {
	decl    *ast.FuncDecl
	dirs    []Directive
	imports map[string]string
}

type constEntry struct {
	name     string
	typeName string
	pos      token.Pos
}

type scanner struct {
	fset   *token.FileSet
	opts   Options
	pkg    *Package
	types  []*typeEntry
	byName map[string]*typeEntry
	funcs  []*funcEntry
	consts []constEntry
}

// Scan reads the starbind directives in files and builds the declaration
// model for the package. Generated files are ignored so a previous run's
// output never feeds back into the next one. The first malformed
// declaration aborts the scan.
func Scan(fset *token.FileSet, files []*ast.File, opts Options) (*Package, error) {
	if opts.Naming == "" {
		opts.Naming = NamingSnake
	}
	if !opts.Naming.Valid() {
		return nil, errors.Newf("unknown naming style %q", opts.Naming)
	}

	s := &scanner{
		fset:   fset,
		opts:   opts,
		pkg:    &Package{Types: map[string]token.Position{}},
		byName: map[string]*typeEntry{},
	}

	for _, f := range files {
		if ast.IsGenerated(f) {
			logger.Debugw("Skipping generated file", logger.FieldFile, fset.Position(f.Package).Filename)
			continue
		}
		if s.pkg.Name == "" {
			s.pkg.Name = f.Name.Name
		}
		if err := s.collect(f); err != nil {
			return nil, err
		}
	}

	for _, te := range s.types {
		if err := s.build(te); err != nil {
			return nil, err
		}
	}
	if err := s.checkFuncDirectives(); err != nil {
		return nil, err
	}
	return s.pkg, nil
}

func (s *scanner) pos(p token.Pos) token.Position { return s.fset.Position(p) }

func (s *scanner) collect(f *ast.File) error {
	imports := fileImports(f)

	for _, cg := range f.Comments {
		for _, d := range ParseDirectives(cg) {
			if d.Verb == VerbCompile {
				s.pkg.Compiles = append(s.pkg.Compiles, CompileDirective{Text: d.Args, Pos: s.pos(d.ArgsPos)})
			}
		}
	}

	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			switch d.Tok {
			case token.TYPE:
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					dirs := ParseDirectives(ts.Doc)
					if d.Lparen == token.NoPos {
						dirs = append(ParseDirectives(d.Doc), dirs...)
					}
					te := &typeEntry{spec: ts, dirs: withoutCompile(dirs), imports: imports}
					s.types = append(s.types, te)
					s.byName[ts.Name.Name] = te
					s.pkg.Types[ts.Name.Name] = s.pos(ts.Name.Pos())
				}
			case token.CONST:
				if err := s.rejectDirectives(d.Doc, "constant"); err != nil {
					return err
				}
				s.collectConsts(d)
			case token.VAR:
				if err := s.rejectDirectives(d.Doc, "variable"); err != nil {
					return err
				}
			}
		case *ast.FuncDecl:
			s.funcs = append(s.funcs, &funcEntry{decl: d, dirs: withoutCompile(ParseDirectives(d.Doc)), imports: imports})
		}
	}
	return nil
}

// collectConsts records typed constants in declaration order. An implicit
// continuation line (no type, no value) repeats the previous spec's type,
// which is how iota enumerations are written.
func (s *scanner) collectConsts(d *ast.GenDecl) {
	current := ""
	for _, spec := range d.Specs {
		vs := spec.(*ast.ValueSpec)
		switch {
		case vs.Type != nil:
			current, _ = util.BaseTypeName(vs.Type)
		case len(vs.Values) > 0:
			current = ""
		}
		if current == "" {
			continue
		}
		for _, n := range vs.Names {
			if n.Name == "_" {
				continue
			}
			s.consts = append(s.consts, constEntry{name: n.Name, typeName: current, pos: n.Pos()})
		}
	}
}

func (s *scanner) rejectDirectives(cg *ast.CommentGroup, what string) error {
	dirs := withoutCompile(ParseDirectives(cg))
	if len(dirs) == 0 {
		return nil
	}
	return errors.Malformedf(s.pos(dirs[0].Pos), "%s%s cannot annotate a %s", DirectivePrefix, dirs[0].Verb, what)
}

func withoutCompile(dirs []Directive) []Directive {
	out := dirs[:0:0]
	for _, d := range dirs {
		if d.Verb != VerbCompile {
			out = append(out, d)
		}
	}
	return out
}

func (s *scanner) build(te *typeEntry) error {
	if len(te.dirs) == 0 {
		return nil
	}
	name := te.spec.Name.Name
	seen := map[string]bool{}

	for _, d := range te.dirs {
		switch {
		case funcVerbs[d.Verb]:
			return errors.Malformedf(s.pos(d.Pos), "%s%s annotates functions, not type %s", DirectivePrefix, d.Verb, name)
		case !typeVerbs[d.Verb]:
			return errors.WithHintf(
				errors.Malformedf(s.pos(d.Pos), "unknown directive %s%s", DirectivePrefix, d.Verb),
				"type directives are %s, %s and %s", VerbStructure, VerbEnumeration, VerbImplementation,
			)
		case d.Args != "":
			return errors.Malformedf(s.pos(d.ArgsPos), "%s%s takes no arguments", DirectivePrefix, d.Verb)
		case seen[d.Verb]:
			return errors.Malformedf(s.pos(d.Pos), "duplicate %s%s on %s", DirectivePrefix, d.Verb, name)
		}
		seen[d.Verb] = true
	}

	if te.spec.Assign != token.NoPos {
		return errors.Malformedf(s.pos(te.spec.Pos()), "type alias %s cannot be bound", name)
	}
	if te.spec.TypeParams != nil && len(te.spec.TypeParams.List) > 0 {
		return errors.Malformedf(s.pos(te.spec.Pos()), "generic type %s cannot be bound", name)
	}

	for _, d := range te.dirs {
		var (
			decl *Decl
			err  error
		)
		switch d.Verb {
		case VerbStructure:
			decl, err = s.buildRecord(te)
		case VerbEnumeration:
			decl, err = s.buildUnion(te)
		case VerbImplementation:
			decl, err = s.buildBlock(te)
		}
		if err != nil {
			return err
		}
		s.pkg.Decls = append(s.pkg.Decls, decl)
	}
	return nil
}

func (s *scanner) token(expr ast.Expr, imports map[string]string) TypeToken {
	return TypeToken{Text: util.ExprString(expr), Expr: expr, Imports: imports}
}

func (s *scanner) scriptName(goName string) string {
	if s.opts.Naming == NamingGo {
		return goName
	}
	return util.ToSnakeCase(goName)
}

func (s *scanner) buildRecord(te *typeEntry) (*Decl, error) {
	name := te.spec.Name.Name
	st, ok := te.spec.Type.(*ast.StructType)
	if !ok {
		return nil, errors.Malformedf(s.pos(te.spec.Pos()), "%s%s requires a struct type, %s is %s",
			DirectivePrefix, VerbStructure, name, util.ExprString(te.spec.Type))
	}

	rec := &Record{Name: name, Pos: s.pos(te.spec.Pos())}
	seen := map[string]token.Position{}
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, errors.Malformedf(s.pos(f.Pos()), "embedded field %s in %s has no name",
				util.ExprString(f.Type), name)
		}
		tagName, skip := util.ParseCustomTag(f.Tag, TagName)
		if skip {
			logger.Debugw("Field excluded by tag", logger.FieldType, name, "field", f.Names[0].Name)
			continue
		}
		for _, n := range f.Names {
			if n.Name == "_" {
				continue
			}
			script := tagName
			if script == "" {
				script = s.scriptName(n.Name)
			}
			if prev, dup := seen[script]; dup {
				return nil, errors.Malformedf(s.pos(n.Pos()), "field name %q in %s already used at %s", script, name, prev)
			}
			seen[script] = s.pos(n.Pos())
			rec.Fields = append(rec.Fields, FieldDescriptor{
				Name:   script,
				GoName: n.Name,
				Type:   s.token(f.Type, te.imports),
				Pos:    s.pos(n.Pos()),
			})
		}
	}
	return &Decl{Kind: KindRecord, Name: name, Pos: rec.Pos, Record: rec}, nil
}

func (s *scanner) buildUnion(te *typeEntry) (*Decl, error) {
	name := te.spec.Name.Name
	u := &TaggedUnion{Name: name, Pos: s.pos(te.spec.Pos())}

	switch t := te.spec.Type.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		u.Style = StyleConst
		for _, c := range s.consts {
			if c.typeName != name {
				continue
			}
			u.Variants = append(u.Variants, VariantDescriptor{
				Name:   util.TrimTypePrefix(c.name, name),
				GoName: c.name,
				IsUnit: true,
				Pos:    s.pos(c.pos),
			})
		}
	case *ast.InterfaceType:
		marker, err := s.sealingMethod(name, t)
		if err != nil {
			return nil, err
		}
		u.Style = StyleSealed
		u.Marker = marker
		u.Variants = s.sealedVariants(name, marker)
	default:
		return nil, errors.WithHint(
			errors.Malformedf(s.pos(te.spec.Pos()), "%s%s cannot annotate %s (%s)",
				DirectivePrefix, VerbEnumeration, name, util.ExprString(te.spec.Type)),
			"use a defined basic type with typed constants, or an interface with one unexported marker method",
		)
	}

	for _, fe := range s.funcs {
		fd := fe.decl
		if fd.Recv != nil && len(fd.Recv.List) == 1 && fd.Name.Name == "Unpack" {
			if base, _ := util.BaseTypeName(fd.Recv.List[0].Type); base == name {
				u.Unpacker = true
			}
		}
	}

	seen := map[string]token.Position{}
	for _, v := range u.Variants {
		if prev, dup := seen[v.Name]; dup {
			return nil, errors.Malformedf(v.Pos, "variant name %q in %s already used at %s", v.Name, name, prev)
		}
		seen[v.Name] = v.Pos
		if !v.IsUnit {
			logger.Debugw("Data-carrying variant has no binding", logger.FieldType, name, "variant", v.GoName)
		}
	}
	return &Decl{Kind: KindTaggedUnion, Name: name, Pos: u.Pos, Union: u}, nil
}

func (s *scanner) sealingMethod(name string, it *ast.InterfaceType) (string, error) {
	methods := it.Methods.List
	if len(methods) == 1 && len(methods[0].Names) == 1 {
		m := methods[0]
		ft, isFunc := m.Type.(*ast.FuncType)
		if isFunc && !m.Names[0].IsExported() && len(ft.Params.List) == 0 && (ft.Results == nil || len(ft.Results.List) == 0) {
			return m.Names[0].Name, nil
		}
	}
	return "", errors.Malformedf(s.pos(it.Pos()),
		"enumeration interface %s must declare exactly one unexported marker method with no parameters or results", name)
}

func (s *scanner) sealedVariants(owner, marker string) []VariantDescriptor {
	type found struct {
		v   VariantDescriptor
		pos token.Pos
	}
	var all []found
	for _, fe := range s.funcs {
		fd := fe.decl
		if fd.Recv == nil || len(fd.Recv.List) != 1 || fd.Name.Name != marker {
			continue
		}
		base, ptr := util.BaseTypeName(fd.Recv.List[0].Type)
		if base == "" {
			continue
		}
		v := VariantDescriptor{
			Name:    util.TrimTypePrefix(base, owner),
			GoName:  base,
			Pointer: ptr,
		}
		at := fd.Pos()
		if te, ok := s.byName[base]; ok {
			at = te.spec.Pos()
			st, isStruct := te.spec.Type.(*ast.StructType)
			v.IsUnit = isStruct && len(st.Fields.List) == 0 && te.spec.TypeParams == nil
		}
		v.Pos = s.pos(at)
		all = append(all, found{v: v, pos: at})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].pos < all[j].pos })

	out := make([]VariantDescriptor, len(all))
	for i, f := range all {
		out[i] = f.v
	}
	return out
}

func (s *scanner) buildBlock(te *typeEntry) (*Decl, error) {
	owner := te.spec.Name.Name
	block := &MethodBlock{Owner: owner, Pos: s.pos(te.spec.Pos())}
	seen := map[string]token.Position{}

	for _, fe := range s.funcs {
		rd, ok, err := s.routine(owner, fe)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if prev, dup := seen[rd.Name]; dup {
			return nil, errors.Malformedf(rd.Pos, "routine name %q in %s already used at %s", rd.Name, owner, prev)
		}
		seen[rd.Name] = rd.Pos
		block.Routines = append(block.Routines, rd)
	}
	return &Decl{Kind: KindMethodBlock, Name: owner, Pos: block.Pos, Block: block}, nil
}

// routine decides whether fe belongs to owner's method block and, if so,
// describes it. Methods join by receiver; functions join by returning the
// owner first or by an explicit static directive.
func (s *scanner) routine(owner string, fe *funcEntry) (RoutineDescriptor, bool, error) {
	fd := fe.decl
	if _, skip := findDirective(fe.dirs, VerbSkip); skip {
		return RoutineDescriptor{}, false, nil
	}
	nameDir, renamed := findDirective(fe.dirs, VerbName)
	staticDir, static := findDirective(fe.dirs, VerbStatic)

	rd := RoutineDescriptor{GoName: fd.Name.Name, Pos: s.pos(fd.Pos())}
	if fd.Recv != nil && len(fd.Recv.List) == 1 {
		base, ptr := util.BaseTypeName(fd.Recv.List[0].Type)
		if base != owner {
			return rd, false, nil
		}
		if !fd.Name.IsExported() && !renamed {
			return rd, false, nil
		}
		rd.Receiver = ReceiverRef
		if ptr {
			rd.Receiver = ReceiverMutRef
		}
	} else {
		if static {
			if staticDir.Args != owner {
				return rd, false, nil
			}
		} else if !fd.Name.IsExported() || !returnsOwner(fd, owner) {
			return rd, false, nil
		}
		rd.Receiver = ReceiverNone
	}

	if fd.Type.TypeParams != nil && len(fd.Type.TypeParams.List) > 0 {
		logger.Debugw("Generic function has no binding", logger.FieldType, owner, "func", fd.Name.Name)
		return rd, false, nil
	}

	switch {
	case renamed:
		rd.Name = nameDir.Args
	case rd.Receiver == ReceiverNone:
		rd.Name = s.staticName(owner, fd.Name.Name)
	default:
		rd.Name = s.scriptName(fd.Name.Name)
	}

	for _, f := range fd.Type.Params.List {
		typ := f.Type
		if el, ok := typ.(*ast.Ellipsis); ok {
			typ = el.Elt
			rd.Variadic = true
		}
		tok := s.token(typ, fe.imports)
		if len(f.Names) == 0 {
			logger.Debugw("Unnamed parameter not forwarded", logger.FieldType, owner, "func", fd.Name.Name)
			rd.Params = append(rd.Params, Param{Type: tok})
			continue
		}
		for _, n := range f.Names {
			if n.Name == "_" {
				logger.Debugw("Blank parameter not forwarded", logger.FieldType, owner, "func", fd.Name.Name)
			}
			rd.Params = append(rd.Params, Param{Name: n.Name, Type: tok, Forwarded: n.Name != "_"})
		}
	}

	if fd.Type.Results != nil {
		for _, f := range fd.Type.Results.List {
			n := len(f.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				rd.Results = append(rd.Results, s.token(f.Type, fe.imports))
			}
		}
	}
	return rd, true, nil
}

// staticName maps constructor functions onto the host's "new" hook:
// NewCounter becomes new and NewCounterFromFile becomes new_from_file.
func (s *scanner) staticName(owner, goName string) string {
	base := goName
	if rest, ok := strings.CutPrefix(goName, "New"+owner); ok && (rest == "" || unicode.IsUpper([]rune(rest)[0])) {
		base = "New" + rest
	}
	if base == "New" {
		return "new"
	}
	if strings.HasPrefix(base, "New") && s.opts.Naming == NamingGo {
		return util.LowerFirst(base)
	}
	return s.scriptName(base)
}

func returnsOwner(fd *ast.FuncDecl, owner string) bool {
	if fd.Type.Results == nil || len(fd.Type.Results.List) == 0 {
		return false
	}
	base, _ := util.BaseTypeName(fd.Type.Results.List[0].Type)
	return base == owner
}

// checkFuncDirectives validates function directives independently of
// whether any method block claimed the function.
func (s *scanner) checkFuncDirectives() error {
	for _, fe := range s.funcs {
		for _, d := range fe.dirs {
			switch {
			case typeVerbs[d.Verb]:
				return errors.Malformedf(s.pos(d.Pos), "%s%s annotates types, not function %s", DirectivePrefix, d.Verb, fe.decl.Name.Name)
			case !funcVerbs[d.Verb]:
				return errors.WithHintf(
					errors.Malformedf(s.pos(d.Pos), "unknown directive %s%s", DirectivePrefix, d.Verb),
					"function directives are %s, %s and %s", VerbSkip, VerbName, VerbStatic,
				)
			case d.Verb == VerbName && !token.IsIdentifier(d.Args):
				return errors.Malformedf(s.pos(d.ArgsPos), "%s%s needs an identifier, got %q", DirectivePrefix, VerbName, d.Args)
			case d.Verb == VerbStatic && fe.decl.Recv != nil:
				return errors.Malformedf(s.pos(d.Pos), "%s%s cannot annotate method %s", DirectivePrefix, VerbStatic, fe.decl.Name.Name)
			case d.Verb == VerbStatic && !token.IsIdentifier(d.Args):
				return errors.Malformedf(s.pos(d.ArgsPos), "%s%s needs a type name, got %q", DirectivePrefix, VerbStatic, d.Args)
			case d.Verb == VerbStatic:
				if _, ok := s.byName[d.Args]; !ok {
					return errors.Malformedf(s.pos(d.ArgsPos), "%s%s names unknown type %s", DirectivePrefix, VerbStatic, d.Args)
				}
			}
		}
	}
	return nil
}

// fileImports maps the names a file uses for its imports onto import paths.
func fileImports(f *ast.File) map[string]string {
	imports := map[string]string{}
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := importName(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = p
	}
	return imports
}

// importName guesses a package name from its import path the way goimports
// does when nothing better is known.
func importName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		if dir := path.Dir(importPath); dir != "." {
			base = path.Base(dir)
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return strings.ReplaceAll(base, "-", "_")
}
