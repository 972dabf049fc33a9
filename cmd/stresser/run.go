package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/stressforge/stresser/api"
	"github.com/stressforge/stresser/internal/artifacts"
	"github.com/stressforge/stresser/internal/behave"
	"github.com/stressforge/stresser/internal/environment"
	"github.com/stressforge/stresser/internal/gatherer"
	"github.com/stressforge/stresser/internal/gatherer/natsgath"
	"github.com/stressforge/stresser/internal/gatherer/sqsgath"
	"github.com/stressforge/stresser/internal/gatherer/termgath"
	"github.com/stressforge/stresser/internal/oomadj"
	"github.com/stressforge/stresser/internal/oomdetect"
	"github.com/stressforge/stresser/internal/planfetch"
	"github.com/stressforge/stresser/internal/stressors"
	"github.com/stressforge/stresser/internal/supervise"
	"github.com/stressforge/stresser/internal/sysinfo"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "execute a stress plan",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "plan",
				Aliases: []string{"p"},
				Value:   "plan.toml",
				Usage:   "path or S3 location of the stress plan TOML file",
			},
		},
		Action: runAction,
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list registered stressors",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, name := range stressors.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg := environment.ReadEnvConfig()
	log := newLogger(cfg.LogLevel)

	planPath, err := planfetch.Fetch(ctx, cmd.String("plan"), cfg.AwsRegion)
	if err != nil {
		return err
	}
	plan, err := behave.Parse(planPath)
	if err != nil {
		return err
	}

	if dir, err := artifacts.Dir(); err == nil {
		if err := artifacts.Prune(dir, "stresser-oom-*.log.zst", 32); err != nil {
			log.Debug("artifact pruning failed", "dir", dir, "err", err)
		}
	}

	gath, err := selectGatherer(cfg, plan.RunUuid)
	if err != nil {
		return err
	}

	// the supervisor itself must survive memory pressure
	adj := &oomadj.Adjuster{Log: log}
	adj.Apply(0, false, true)

	gath.StartRun(sysinfo.Describe())

	failed := 0
	for _, sc := range plan.Scenarios {
		gath.StartStressor(sc.Name, sc.Workers)

		result, err := runScenario(ctx, log, sc)
		if err != nil {
			log.Error("scenario aborted", "scenario", sc.Name, "err", err)
			gath.FinishRunWithInternalError(err.Error())
			return cli.Exit("", 1)
		}
		gath.FinishStressor(sc.Name, result)

		if result.Failed() == sc.ExpectSuccess {
			log.Error("scenario outcome mismatch",
				"scenario", sc.Name, "exit", result.ExitCode,
				"expect_success", sc.ExpectSuccess)
			failed++
		}
	}

	gath.FinishRunWithoutError()
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d scenario(s) failed", failed), 1)
	}
	return nil
}

// runScenario supervises all workers of one scenario concurrently and
// merges their outcomes.
func runScenario(ctx context.Context, log *slog.Logger, sc behave.Scenario) (*api.StressorResult, error) {
	worker, ok := stressors.Lookup(sc.Stressor)
	if !ok {
		return nil, fmt.Errorf("unknown stressor %q", sc.Stressor)
	}

	detector := oomdetect.New(log)
	results := make([]supervise.Result, sc.Workers)
	ops := make([]int64, sc.Workers)
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < sc.Workers; i++ {
		g.Go(func() error {
			run := supervise.NewRun(sc.Stressor, sc.Args, sc.Timeout)
			engine := &supervise.Engine{
				Log:      log,
				Detector: detector,
			}
			res, err := engine.Supervise(gctx, run, worker, sc.Flags)
			if err != nil {
				return err
			}
			results[i] = res
			ops[i] = run.Ops.Value()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &api.StressorResult{
		Stressor:   sc.Stressor,
		WallMillis: time.Since(started).Milliseconds(),
	}
	for i, res := range results {
		if res.ExitCode > merged.ExitCode {
			merged.ExitCode = res.ExitCode
		}
		merged.Ops += ops[i]
		merged.Restarts += res.Restarts
		merged.Segvs += res.Segvs
		merged.Buses += res.Buses
		merged.Ooms += res.Ooms
		merged.OomKilled = merged.OomKilled || res.OomKilled
		merged.GaveUp = merged.GaveUp || res.GaveUp
	}
	return merged, nil
}

func selectGatherer(cfg *environment.EnvConfig, runUuid string) (gatherer.Gatherer, error) {
	switch cfg.Gatherer {
	case "", "term":
		return termgath.New(), nil
	case "nats":
		nc, err := nats.Connect(cfg.NatsUrl)
		if err != nil {
			return nil, fmt.Errorf("connect to NATS: %w", err)
		}
		return natsgath.New(nc, runUuid, cfg.NatsSubject), nil
	case "sqs":
		if cfg.SqsQueueUrl == "" {
			return nil, fmt.Errorf("SQS gatherer selected but SQS_QUEUE_URL is empty")
		}
		return sqsgath.New(runUuid, cfg.SqsQueueUrl, cfg.AwsRegion), nil
	default:
		return nil, fmt.Errorf("unknown gatherer %q", cfg.Gatherer)
	}
}
