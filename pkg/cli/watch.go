package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cratekit/cratekit/pkg/logger"
	"github.com/cratekit/cratekit/pkg/notifier"
	"github.com/cratekit/cratekit/pkg/watch"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var notify bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve the request whenever the project changes",
		Long: `Resolve the request, then resolve it again whenever a Cargo.toml, a
.cargo/config.toml or a source file that could add or remove a target
changes. Every resolution prints one summary line.

With --notify a desktop notification is shown when the project stops
resolving and when it recovers.

The [env] table is exported into this process on the first resolution.
Variables that are already set are kept, so edits to unforced entries only
take effect after a restart. Forced entries are re-applied every time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runWatch(ctx, notify, debounce)
		},
	}

	cmd.Flags().BoolVar(&notify, "notify", false, "show desktop notifications on failure and recovery")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "time to let file events settle before resolving")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, notify bool, debounce time.Duration) error {
	if _, err := c.filter(); err != nil {
		return err
	}

	n := notifier.New(notify, c.logger)

	w := watch.New(c.config.WorkDir, c.resolve, func(ev watch.Event) {
		stamp := ev.Timestamp.Format("15:04:05")
		if ev.Err != nil {
			n.NotifyFailure(ev.Err)
			fmt.Fprintf(c.output, "[%s] %s %v\n", stamp, color.RedString("✗"), ev.Err)
			return
		}
		artifacts := ev.Project.Artifacts().Len()
		n.NotifyResolved(ev.Project.Package(), artifacts)
		fmt.Fprintf(c.output, "[%s] %s %s: %d artifacts in %s\n",
			stamp, color.GreenString("✓"), ev.Project.Package(), artifacts, ev.Project.TargetDir())
	}, c.logger)
	w.SetDebounce(debounce)

	c.logger.Info("Watching for changes", logger.WithField("dir", c.config.WorkDir))
	if err := w.Run(ctx); err != nil {
		return err
	}
	c.logger.Info("Stopped watching")
	return nil
}
