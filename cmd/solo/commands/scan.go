package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/subhaanfazeel/solo/internal/app"
	"github.com/subhaanfazeel/solo/internal/config"
	"github.com/subhaanfazeel/solo/internal/deadline"
)

// ScanCmd implements the 'scan' command.
type ScanCmd struct {
	NoAgent bool `name:"no-agent" help:"Talk to the server directly, without the caching agent"`
}

func (s *ScanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.RequestTimeout)
	defer cancel()
	return RunScan(ctx, os.Stdout, cfg, s.NoAgent, time.Now())
}

// RunScan performs one resync, which also runs the deadline scan, and
// prints each pending task's countdown followed by the overdue events.
func RunScan(ctx context.Context, out io.Writer, cfg config.Config, noAgent bool, now time.Time) error {
	rt, err := app.NewRuntime(ctx, cfg, app.RuntimeOptions{DisableAgent: noAgent})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if err := rt.Engine.Resync(ctx); err != nil {
		return err
	}
	snap := rt.Store.Snapshot()
	for _, task := range snap.Data.Tasks {
		if task.Done {
			continue
		}
		label := "no deadline"
		if task.HasDeadline() {
			label = deadline.Countdown(task.Deadline, now, time.Local).Label
		}
		_, _ = fmt.Fprintf(out, "%-12s %s\n", label, task.Text)
	}
	if ev, ok := rt.Presenter.Current(); ok {
		_, _ = fmt.Fprintf(out, "\n%s\n%s\n", ev.Title, ev.Body)
	}
	return nil
}
