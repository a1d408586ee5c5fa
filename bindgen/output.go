package bindgen

import (
	"bufio"
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
)

// Path is where r's package keeps its generated file.
func (g *Generator) Path(r *Result) string {
	return filepath.Join(r.Package.Dir, g.Output())
}

// Write stores r next to its package sources. Unchanged files are left
// alone. An empty result removes a previously generated file, since its
// declarations no longer exist.
func (g *Generator) Write(r *Result) (changed bool, err error) {
	path := g.Path(r)
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "read %s", path)
	}
	exists := err == nil

	if r.Empty() {
		if !exists {
			return false, nil
		}
		if !isGenerated(existing) {
			return false, errors.Newf("%s exists but was not generated by starbind; refusing to remove it", path)
		}
		if err := os.Remove(path); err != nil {
			return false, errors.Wrapf(err, "remove %s", path)
		}
		logger.Infow("Removed stale bindings", logger.FieldPath, path)
		return true, nil
	}

	if exists && bytes.Equal(existing, r.Source) {
		logger.Debugw("Bindings unchanged", logger.FieldPath, path)
		return false, nil
	}
	if exists && !isGenerated(existing) {
		return false, errors.Newf("%s exists but was not generated by starbind; refusing to overwrite it", path)
	}
	if err := os.WriteFile(path, r.Source, 0o644); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}
	logger.Infow("Wrote bindings",
		logger.FieldPath, path,
		logger.FieldCount, len(r.Units))
	return true, nil
}

// Check reports ErrStale when the file on disk differs from r. The
// generator version in the header is not compared.
func (g *Generator) Check(r *Result) error {
	path := g.Path(r)
	existing, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if r.Empty() {
			return nil
		}
		return errors.WithHint(errors.Wrapf(errors.ErrStale, "%s is missing", path), "run starbind generate")
	case err != nil:
		return errors.Wrapf(err, "read %s", path)
	}

	if r.Empty() {
		return errors.WithHint(errors.Wrapf(errors.ErrStale, "%s has no declarations left", path), "run starbind generate to remove it")
	}
	if filterHeader(existing) != filterHeader(r.Source) {
		return errors.WithHint(errors.Wrapf(errors.ErrStale, "%s", path), "run starbind generate")
	}
	return nil
}

// filterHeader drops the generator header line, which changes with every
// release and carries no binding content.
func filterHeader(content []byte) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "// "+headerPrefix) {
			continue
		}
		result.WriteString(line)
		result.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		// Forces a mismatch rather than a false match.
		return ""
	}
	return result.String()
}

// isGenerated reports whether content carries a starbind header.
func isGenerated(content []byte) bool {
	f, err := parser.ParseFile(token.NewFileSet(), "", content, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil || !ast.IsGenerated(f) {
		return false
	}
	return bytes.Contains(content, []byte("// "+headerPrefix))
}
