package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/starbind/cmd/starbind/commands"
	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
)

var rootCmd = &cobra.Command{
	Use:   "starbind",
	Short: "starbind - Starlark bindings for Go types",
	Long: `starbind - Starlark bindings for Go types.

starbind reads //starbind: directives on Go types and generates the glue
that exposes their fields, methods and unit variants to Starlark scripts.

Available commands:
  generate - Write zz_generated.starbind.go for each package
  check    - Fail if generated bindings are out of date
  inspect  - Show the declarations starbind found
  config   - Show effective configuration and where it came from
  init     - Create a starbind.toml in the current directory
  version  - Show version information

Examples:
  starbind generate ./...          # Generate bindings for every package
  starbind generate --watch .      # Regenerate on every save
  starbind check ./...             # CI: verify bindings are committed
  starbind inspect --format json   # Machine-readable declaration model`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		logger.Cleanup()
		os.Exit(1)
	}
}
