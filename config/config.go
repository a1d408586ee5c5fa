// Package config loads starbind settings.
//
// Settings merge in precedence order (lowest to highest):
//
//	defaults < user (~/.config/starbind/starbind.toml) < project (starbind.toml) < STARBIND_* env vars
//
// The project file is found by walking up from the working directory, the
// same way the go command finds go.mod.
package config

import (
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/starbind/errors"
)

// FileName is the project and user config file name.
const FileName = "starbind.toml"

// EnvPrefix prefixes environment overrides: STARBIND_GENERATE_NAMING=go.
const EnvPrefix = "STARBIND"

// Config is the complete starbind configuration.
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" toml:"generate"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch"`
}

// GenerateConfig controls the generator.
type GenerateConfig struct {
	Output          string `mapstructure:"output" toml:"output"`                     // generated file name
	Naming          string `mapstructure:"naming" toml:"naming"`                     // snake or go
	HostImport      string `mapstructure:"host_import" toml:"host_import"`           // import path of the host package
	BuildFlags      string `mapstructure:"build_flags" toml:"build_flags"`           // shell-quoted go build flags
	RequiredVersion string `mapstructure:"required_version" toml:"required_version"` // semver constraint, empty = any
}

// WatchConfig controls generate --watch.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"`
}

// Flags splits BuildFlags the way a shell would.
func (g GenerateConfig) Flags() ([]string, error) {
	if g.BuildFlags == "" {
		return nil, nil
	}
	flags, err := shellquote.Split(g.BuildFlags)
	if err != nil {
		return nil, errors.Wrapf(err, "generate.build_flags %q", g.BuildFlags)
	}
	return flags, nil
}

// Debounce is the watch quiet period.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}
