package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/starbind/errors"
)

// CheckCmd verifies that generated bindings are up to date.
var CheckCmd = &cobra.Command{
	Use:   "check [packages]",
	Short: "Check that generated bindings are up to date",
	Long: `Regenerate bindings in memory and compare them with the files on disk.

The generator version in the file header is ignored, so upgrading starbind
alone does not make bindings stale. Exits non-zero when any package needs
starbind generate.

Examples:
  starbind check ./...`,
	RunE: runCheck,
}

func init() {
	addSessionFlags(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	results, err := s.generate(cmd.Context(), args)
	if err != nil {
		return err
	}

	var stale []string
	for _, res := range results {
		if err := s.gen.Check(res); err != nil {
			if !errors.IsStale(err) {
				return err
			}
			stale = append(stale, s.gen.Path(res))
			fmt.Fprintf(cmd.OutOrStdout(), "stale: %s\n", s.gen.Path(res))
		}
	}
	if len(stale) > 0 {
		return errors.WithHint(
			errors.Wrapf(errors.ErrStale, "%d of %d package(s)", len(stale), len(results)),
			"run starbind generate and commit the result",
		)
	}
	pterm.Success.Printf("%d package(s) up to date\n", len(results))
	return nil
}
