package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/starbind/config"
	"github.com/teranos/starbind/errors"
)

// ConfigCmd shows the effective configuration.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long: `Show every configuration key, its value and where it came from.

Configuration sources (in order of precedence):
1. Environment variables (STARBIND_* prefix, e.g. STARBIND_GENERATE_NAMING)
2. Project config (starbind.toml, searched upward from the working directory)
3. User config (~/.config/starbind/starbind.toml)
4. Default values

The project file is also checked for unknown keys.

Examples:
  starbind config
  starbind config --format json`,
	RunE: runConfig,
}

func init() {
	ConfigCmd.Flags().StringP("dir", "C", "", "Run as if started in this directory")
	ConfigCmd.Flags().String("format", "table", "Output format: table, json, yaml")
}

func runConfig(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	format, _ := cmd.Flags().GetString("format")

	loaded, err := config.Load(dir)
	if err != nil {
		return err
	}

	var unknown []string
	if loaded.Project != "" {
		if unknown, err = config.Lint(loaded.Project); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(loaded.Settings), "encode json")
	case "yaml":
		return errors.Wrap(yaml.NewEncoder(out).Encode(loaded.Settings), "encode yaml")
	case "table":
	default:
		return errors.Newf("unknown format %q (expected table, json or yaml)", format)
	}

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range loaded.Settings {
		data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.Path})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render(); err != nil {
		return errors.Wrap(err, "render table")
	}

	if loaded.Project == "" {
		fmt.Fprintf(out, "no %s found; using user config and defaults\n", config.FileName)
	}
	for _, key := range unknown {
		pterm.Warning.WithWriter(cmd.ErrOrStderr()).Printf("unknown key %s in %s\n", key, loaded.Project)
	}
	return nil
}

// InitCmd writes a starter starbind.toml.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starbind.toml with default settings",
	Long: `Write starbind.toml in the current directory with every key set to
its default. An existing file is kept unless --force is given, in which
case it is backed up as starbind.toml.back1 first.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	InitCmd.Flags().StringP("dir", "C", "", "Directory to create starbind.toml in")
	InitCmd.Flags().Bool("force", false, "Overwrite an existing starbind.toml")
	InitCmd.Flags().String("naming", "", "Initial generate.naming (snake or go)")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	force, _ := cmd.Flags().GetBool("force")
	naming, _ := cmd.Flags().GetString("naming")
	if dir == "" {
		dir = "."
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return errors.WithHint(errors.Newf("%s already exists", path), "pass --force to overwrite it (a backup is kept)")
	}

	cfg := config.Default()
	if naming != "" {
		cfg.Generate.Naming = naming
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return nil
}
