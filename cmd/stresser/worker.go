package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"
	"golang.org/x/sys/unix"

	"github.com/stressforge/stresser/internal/oomadj"
	"github.com/stressforge/stresser/internal/rlimits"
	"github.com/stressforge/stresser/internal/stressors"
	"github.com/stressforge/stresser/internal/supervise"
)

// workerCommand is the child-side entry point the supervision engine
// re-execs into. Hidden: it is an implementation detail of the
// fork+supervise path, not a user surface.
func workerCommand() *cli.Command {
	return &cli.Command{
		Name:   "worker",
		Hidden: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "stressor", Required: true},
			&cli.DurationFlag{Name: "timeout"},
			&cli.StringSliceFlag{Name: "arg"},
			&cli.BoolFlag{Name: "drop-caps"},
			&cli.BoolFlag{Name: "quiet"},
			&cli.BoolFlag{Name: "skip-oom-adjust"},
		},
		Action: workerAction,
	}
}

func workerAction(ctx context.Context, cmd *cli.Command) error {
	level := "info"
	if cmd.Bool("quiet") {
		level = "warn"
	}
	log := newLogger(level)

	name := cmd.String("stressor")
	fn, ok := stressors.Lookup(name)
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown stressor %q", name), 2)
	}

	// children volunteer for reclaim before touching any memory
	if !cmd.Bool("skip-oom-adjust") {
		adj := &oomadj.Adjuster{Log: log}
		adj.Apply(0, true, false)
	}
	if cmd.Bool("drop-caps") {
		dropPrivileges(log)
	}

	run := supervise.NewRun(name, cmd.StringSlice("arg"), cmd.Duration("timeout"))
	rlimits.FromArgs(run.Args).Apply(log)

	// the ladder's polite rungs should let the payload wind down
	wctx, stop := signal.NotifyContext(ctx, unix.SIGTERM, unix.SIGALRM, os.Interrupt)
	defer stop()
	if !run.Deadline.IsZero() {
		var cancel context.CancelFunc
		wctx, cancel = context.WithDeadline(wctx, run.Deadline)
		defer cancel()
	}

	code := fn(wctx, run)
	log.Debug("worker finished", "stressor", name, "ops", run.Ops.Value(), "exit", code)
	if code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// dropPrivileges switches to nobody when running as root. Failures are
// logged and ignored: an unprivileged harness has nothing to drop.
func dropPrivileges(log *slog.Logger) {
	if unix.Geteuid() != 0 {
		return
	}
	const nobody = 65534
	if err := unix.Setgid(nobody); err != nil {
		log.Warn("drop group privileges", "err", err)
	}
	if err := unix.Setuid(nobody); err != nil {
		log.Warn("drop user privileges", "err", err)
	}
}
