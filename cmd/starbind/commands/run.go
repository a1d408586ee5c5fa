// Package commands implements the starbind subcommands.
package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/teranos/starbind/bindgen"
	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/config"
	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
	"github.com/teranos/starbind/version"
)

// session is the resolved state every pipeline command starts from.
type session struct {
	dir    string
	loaded *config.Loaded
	opts   bindgen.Options
	gen    *bindgen.Generator
}

// addSessionFlags registers the flags shared by generate, check and inspect.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("dir", "C", "", "Run as if started in this directory")
	cmd.Flags().String("naming", "", "Script naming style: snake or go (default from config)")
	cmd.Flags().String("build-flags", "", `Extra go build flags, shell-quoted (e.g. -tags "a b")`)
}

// newSession loads configuration, applies flag overrides and checks the
// project's required starbind version.
func newSession(cmd *cobra.Command) (*session, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get working directory")
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", dir)
	}

	loaded, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	if err := version.Check(version.Get().Version, cfg.Generate.RequiredVersion); err != nil {
		return nil, err
	}

	if naming, _ := cmd.Flags().GetString("naming"); naming != "" {
		cfg.Generate.Naming = naming
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	flags, err := cfg.Generate.Flags()
	if err != nil {
		return nil, err
	}
	if extra, _ := cmd.Flags().GetString("build-flags"); extra != "" {
		more, err := shellquote.Split(extra)
		if err != nil {
			return nil, errors.Wrapf(err, "--build-flags %q", extra)
		}
		flags = append(flags, more...)
	}

	opts := bindgen.Options{
		Naming:     decl.Naming(cfg.Generate.Naming),
		HostImport: cfg.Generate.HostImport,
		Output:     cfg.Generate.Output,
		BuildFlags: flags,
		Dir:        dir,
	}
	logger.Debugw("Session ready",
		logger.FieldPath, dir,
		"project", loaded.Project,
		"naming", cfg.Generate.Naming,
		"build_flags", flags)

	return &session{dir: dir, loaded: loaded, opts: opts, gen: bindgen.NewGenerator(opts)}, nil
}

// load resolves patterns relative to the session directory.
func (s *session) load(ctx context.Context, patterns []string) ([]*decl.Package, error) {
	return bindgen.Load(ctx, patterns, s.opts)
}

// generate runs the pipeline over every package matched by patterns.
func (s *session) generate(ctx context.Context, patterns []string) ([]*bindgen.Result, error) {
	pkgs, err := s.load(ctx, patterns)
	if err != nil {
		return nil, err
	}
	results := make([]*bindgen.Result, 0, len(pkgs))
	for _, pkg := range pkgs {
		res, err := s.gen.GeneratePackage(pkg)
		if err != nil {
			return nil, errors.Wrapf(err, "package %s", pkg.Path)
		}
		results = append(results, res)
	}
	return results, nil
}
