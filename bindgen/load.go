package bindgen

import (
	"context"
	"go/token"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax

// Load resolves patterns with the go command and scans each matched
// package. Only syntax is loaded, so packages whose bindings are stale or
// missing still load. Test files are not part of the result.
func Load(ctx context.Context, patterns []string, opts Options) ([]*decl.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        opts.Dir,
		BuildFlags: opts.BuildFlags,
		Fset:       token.NewFileSet(),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", strings.Join(patterns, " "))
	}

	var out []*decl.Package
	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			return nil, errors.WithHint(
				errors.Newf("load %s: %s", p.PkgPath, p.Errors[0]),
				"starbind only needs the package to parse; fix the reported file first",
			)
		}
		if len(p.GoFiles) == 0 {
			logger.Debugw("Package has no Go files", logger.FieldPackage, p.PkgPath)
			continue
		}

		scanned, err := decl.Scan(cfg.Fset, p.Syntax, decl.Options{Naming: opts.Naming})
		if err != nil {
			return nil, err
		}
		scanned.Path = p.PkgPath
		scanned.Dir = filepath.Dir(p.GoFiles[0])
		if scanned.Name == "" {
			scanned.Name = p.Name
		}
		out = append(out, scanned)
	}
	return out, nil
}
