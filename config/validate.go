package config

import (
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/errors"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	g := c.Generate

	if g.Output == "" {
		return errors.New("generate.output cannot be empty")
	}
	if filepath.Base(g.Output) != g.Output {
		return errors.Newf("generate.output must be a file name, got %q", g.Output)
	}
	if !strings.HasSuffix(g.Output, ".go") || strings.HasSuffix(g.Output, "_test.go") {
		return errors.Newf("generate.output must be a non-test .go file, got %q", g.Output)
	}

	if !decl.Naming(g.Naming).Valid() {
		return errors.WithHint(
			errors.Newf("generate.naming must be snake or go, got %q", g.Naming),
			"snake turns Increment into increment and NewCounterFrom into new_from",
		)
	}

	if g.HostImport == "" || strings.ContainsAny(g.HostImport, " \t\"") {
		return errors.Newf("generate.host_import is not an import path: %q", g.HostImport)
	}

	if _, err := g.Flags(); err != nil {
		return err
	}

	if g.RequiredVersion != "" {
		if _, err := semver.NewConstraint(g.RequiredVersion); err != nil {
			return errors.Wrapf(err, "generate.required_version %q", g.RequiredVersion)
		}
	}

	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	return nil
}
