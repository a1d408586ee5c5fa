package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/starbind/bindgen"
	"github.com/teranos/starbind/logger"
)

// GenerateCmd writes bindings for the matched packages.
var GenerateCmd = &cobra.Command{
	Use:   "generate [packages]",
	Short: "Generate Starlark bindings",
	Long: `Generate Starlark bindings for annotated types.

Every matched package with //starbind: directives gets a
zz_generated.starbind.go next to its sources. Packages whose directives
were all removed have their generated file deleted.

Examples:
  starbind generate                      # Current package
  starbind generate ./...                # Whole module
  starbind generate --watch ./...        # Regenerate on change
  starbind generate --build-flags "-tags integration" ./...`,
	RunE: runGenerate,
}

func init() {
	addSessionFlags(GenerateCmd)
	GenerateCmd.Flags().BoolP("watch", "w", false, "Regenerate whenever Go sources change")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		_, err := s.writeAll(cmd.Context(), cmd.OutOrStdout(), args)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.watch(ctx, cmd, args)
}

// writeAll generates and writes every package, returning their directories.
func (s *session) writeAll(ctx context.Context, out io.Writer, patterns []string) ([]string, error) {
	start := time.Now()
	results, err := s.generate(ctx, patterns)
	if err != nil {
		return nil, err
	}

	var dirs []string
	written := 0
	for _, res := range results {
		dirs = append(dirs, res.Package.Dir)
		changed, err := s.gen.Write(res)
		if err != nil {
			return nil, err
		}
		if changed {
			written++
			if res.Empty() {
				fmt.Fprintf(out, "removed %s\n", s.gen.Path(res))
			} else {
				fmt.Fprintf(out, "wrote %s (%d types)\n", s.gen.Path(res), len(res.Units))
			}
		}
	}
	logger.Infow("Generation complete",
		"packages", len(results),
		"written", written,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return dirs, nil
}

func (s *session) watch(ctx context.Context, cmd *cobra.Command, patterns []string) error {
	dirs, err := s.writeAll(ctx, cmd.OutOrStdout(), patterns)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		dirs = []string{s.dir}
	}

	pterm.Info.Printf("Watching %d package(s), Ctrl+C to stop\n", len(dirs))
	return bindgen.Watch(ctx, dirs, s.gen.Output(), s.loaded.Config.Watch.Debounce(), func() {
		if _, err := s.writeAll(ctx, cmd.OutOrStdout(), patterns); err != nil {
			pterm.Error.Println(err.Error())
		}
	})
}
