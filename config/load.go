package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
)

// Source says where a setting came from.
type Source string

const (
	SourceDefault     Source = "default"
	SourceUser        Source = "user"
	SourceProject     Source = "project"
	SourceEnvironment Source = "environment"
)

// Setting is one effective key with its origin.
type Setting struct {
	Key    string `json:"key" yaml:"key"`
	Value  any    `json:"value" yaml:"value"`
	Source Source `json:"source" yaml:"source"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"` // file or env var
}

// Loaded is a resolved configuration and the files that fed it.
type Loaded struct {
	Config   *Config
	Project  string // project file, empty if none was found
	Settings []Setting
}

// Load resolves configuration for a run started in dir. An empty dir means
// the working directory.
func Load(dir string) (*Loaded, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get working directory")
		}
		dir = wd
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	sources := map[string]Setting{}
	project := FindProject(dir)
	for _, f := range []struct {
		path   string
		source Source
	}{
		{UserPath(), SourceUser},
		{project, SourceProject},
	} {
		if f.path == "" {
			continue
		}
		if err := mergeFile(v, f.path, f.source, sources); err != nil {
			return nil, err
		}
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHintf(err, "check %s or the %s_* environment", describe(project), EnvPrefix)
	}

	return &Loaded{Config: cfg, Project: project, Settings: settings(v, sources)}, nil
}

// LoadWithViper decodes a prepared viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// mergeFile layers one TOML file into v's config layer, below env vars.
func mergeFile(v *viper.Viper, path string, source Source, sources map[string]Setting) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("toml")
	if err := file.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := v.MergeConfigMap(file.AllSettings()); err != nil {
		return errors.Wrapf(err, "failed to merge config file %s", path)
	}
	for _, key := range file.AllKeys() {
		sources[key] = Setting{Key: key, Source: source, Path: path}
	}
	logger.Debugw("Merged config file", logger.FieldPath, path, "source", string(source))
	return nil
}

func settings(v *viper.Viper, sources map[string]Setting) []Setting {
	keys := v.AllKeys()
	sort.Strings(keys)

	out := make([]Setting, 0, len(keys))
	for _, key := range keys {
		s, ok := sources[key]
		if !ok {
			s = Setting{Key: key, Source: SourceDefault}
		}
		env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, set := os.LookupEnv(env); set {
			s = Setting{Key: key, Source: SourceEnvironment, Path: env}
		}
		s.Value = v.Get(key)
		out = append(out, s)
	}
	return out
}

// FindProject walks up from dir looking for starbind.toml.
func FindProject(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// UserPath is the per-user config file, empty when no config directory
// can be determined.
func UserPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "starbind", FileName)
}

func describe(project string) string {
	if project == "" {
		return UserPath()
	}
	return project
}
