package config

import "github.com/spf13/viper"

// Default values.
const (
	DefaultOutput     = "zz_generated.starbind.go"
	DefaultNaming     = "snake"
	DefaultHostImport = "github.com/teranos/starbind/host"
	DefaultDebounceMS = 300
)

// SetDefaults registers a default for every key. Every key needs one so
// that environment overrides are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.output", DefaultOutput)
	v.SetDefault("generate.naming", DefaultNaming)
	v.SetDefault("generate.host_import", DefaultHostImport)
	v.SetDefault("generate.build_flags", "")
	v.SetDefault("generate.required_version", "")

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode.
		panic(err)
	}
	return cfg
}
