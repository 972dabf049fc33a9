// Package supervise runs stressor payloads in supervised child
// processes. The engine starts a child, reaps it with a
// signal-escalation ladder when it turns unresponsive, classifies the
// death cause and transparently restarts children that were crashed by
// SIGSEGV, SIGBUS or the kernel OOM killer.
package supervise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/stressforge/stresser/internal/oomdetect"
)

// Flags select supervision policy for one supervised run.
type Flags uint32

const (
	// FlagDropCaps drops elevated privileges in the child before the
	// payload runs.
	FlagDropCaps Flags = 1 << iota

	// FlagQuiet demotes informational supervision logging to debug.
	FlagQuiet

	// FlagNoChildWrapper runs the worker in the current process with
	// no fork; escalation and restart logic never engage.
	FlagNoChildWrapper

	// FlagOOMAcceptable makes an OOM kill of the child a successful
	// terminal state instead of a restart trigger.
	FlagOOMAcceptable

	// FlagSkipOomAdjust leaves the child's kill-priority hint alone.
	FlagSkipOomAdjust
)

// FlagNone is the default fork+supervise behaviour.
const FlagNone Flags = 0

// WorkerFunc is a stressor payload body. It returns the process exit
// status for the attempt.
type WorkerFunc func(ctx context.Context, run *Run) int

// CommandFunc builds the child process for one fork attempt. A fresh
// command is built per attempt; exec.Cmd cannot be started twice.
type CommandFunc func(run *Run) *exec.Cmd

var (
	// ErrNoWorker is returned when in-process mode has no worker body.
	ErrNoWorker = errors.New("no worker function")

	// ErrNoCommand is returned when the command factory yields nil.
	ErrNoCommand = errors.New("no child command")

	errGaveUp = errors.New("wait escalation deadline exceeded")

	errForkBudget = errors.New("fork pressure outlasted the run budget")
)

// Result is the terminal outcome of one supervised run. The crash
// counters are diagnostic; they never bound retries.
type Result struct {
	ExitCode  int
	OomKilled bool
	GaveUp    bool

	Restarts int64
	Segvs    int64
	Buses    int64
	Ooms     int64

	Last Classification
}

// childRecord tracks exactly one live child at a time. The counters are
// per supervised run, not per attempt: they persist across restarts.
type childRecord struct {
	pid  int
	rung int

	restarts int64
	segvs    int64
	buses    int64
	ooms     int64

	last     Classification
	lastCode int
}

// Engine supervises stressor children. The zero value is usable; all
// fields are optional tuning knobs.
type Engine struct {
	// Ladder overrides the default signal-escalation ladder.
	Ladder Ladder

	// StartBackoff is the sleep between start retries under fork
	// pressure (EAGAIN/ENOMEM). Default 100ms.
	StartBackoff time.Duration

	// Detector confirms OOM kills, diagnostics only. Default no-op.
	Detector oomdetect.Detector

	// Command builds child processes. Default re-execs the current
	// binary with the hidden worker subcommand.
	Command CommandFunc

	Log *slog.Logger

	// start is swapped by tests to simulate fork failures.
	start func(*exec.Cmd) error
}

// Supervise runs one supervised stressor invocation to a terminal
// state. Transient conditions (fork pressure, crash-recoverable child
// deaths) are absorbed here; only hard start failures and unexpected
// wait errors come back as a non-nil error.
func (e *Engine) Supervise(ctx context.Context, run *Run, worker WorkerFunc, flags Flags) (Result, error) {
	log := e.logger().With("stressor", run.Name)

	if flags&FlagNoChildWrapper != 0 {
		return e.runInProcess(ctx, run, worker)
	}

	command := e.Command
	if command == nil {
		command = SelfCommand(flags)
	}

	rec := &childRecord{}
	for {
		if !e.mayContinue(ctx, run) {
			return e.result(rec, rec.lastCode, rec.last), nil
		}

		pid, err := e.startChild(ctx, run, command, log)
		if err != nil {
			if errors.Is(err, errForkBudget) {
				// transient fork pressure is never a hard error; the
				// budget ran out, report what we have
				return e.result(rec, rec.lastCode, rec.last), nil
			}
			return e.result(rec, 1, Classification{Cause: CauseWaitFailed, Err: err}),
				fmt.Errorf("start %s child: %w", run.Name, err)
		}
		rec.pid = pid

		ws, rung, werr := e.reap(ctx, run, pid, log)
		rec.rung = rung
		if werr != nil {
			switch {
			case errors.Is(werr, unix.ECHILD):
				// someone else reaped it, treat as gone
				log.Warn("child already reaped", "pid", pid)
				return e.result(rec, 0, Classification{Cause: CauseWaitFailed, Err: werr}), nil
			case errors.Is(werr, errGaveUp):
				log.Warn("gave up waiting for child", "pid", pid, "give_up", e.ladder().GiveUp)
				res := e.result(rec, 128+int(unix.SIGKILL), Classification{Cause: CauseWaitFailed, Err: werr})
				res.GaveUp = true
				return res, nil
			default:
				return e.result(rec, 1, Classification{Cause: CauseWaitFailed, Err: werr}),
					fmt.Errorf("wait for %s child: %w", run.Name, werr)
			}
		}

		run.Ops.Inc()

		cls := Classify(ws, rung < e.ladder().KillIndex())
		rec.last = cls
		switch cls.Cause {
		case CauseExit:
			return e.result(rec, cls.Code, cls), nil
		case CauseBus:
			rec.buses++
			rec.restarts++
			rec.lastCode = 128 + int(cls.Signal)
			e.info(log, flags, "child hit bus error, restarting", "pid", pid, "buses", rec.buses)
		case CauseSegv:
			rec.segvs++
			rec.restarts++
			rec.lastCode = 128 + int(cls.Signal)
			e.info(log, flags, "child segfaulted, restarting", "pid", pid, "segvs", rec.segvs)
		case CauseOOM:
			confirmed := e.detector().KilledByOOM(pid)
			if flags&FlagOOMAcceptable != 0 {
				res := e.result(rec, 0, cls)
				res.OomKilled = true
				e.info(log, flags, "child OOM killed, acceptable terminal state",
					"pid", pid, "confirmed", confirmed)
				return res, nil
			}
			rec.ooms++
			rec.restarts++
			rec.lastCode = 128 + int(cls.Signal)
			e.info(log, flags, "child OOM killed, restarting",
				"pid", pid, "confirmed", confirmed, "ooms", rec.ooms)
		case CauseSignal:
			return e.result(rec, 128+int(cls.Signal), cls), nil
		}
	}
}

func (e *Engine) runInProcess(ctx context.Context, run *Run, worker WorkerFunc) (Result, error) {
	if worker == nil {
		return Result{ExitCode: 1}, ErrNoWorker
	}
	wctx := ctx
	if !run.Deadline.IsZero() {
		var cancel context.CancelFunc
		wctx, cancel = context.WithDeadline(ctx, run.Deadline)
		defer cancel()
	}
	code := worker(wctx, run)
	return Result{ExitCode: code, Last: Classification{Cause: CauseExit, Code: code}}, nil
}

// startChild starts a fresh child, retrying indefinitely on fork
// resource exhaustion while the caller's budget allows; when the
// budget runs out mid-retry the transient errno is absorbed into
// errForkBudget. Any other start error is a hard failure.
func (e *Engine) startChild(ctx context.Context, run *Run, command CommandFunc, log *slog.Logger) (int, error) {
	backoff := e.StartBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	start := e.start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	for {
		cmd := command(run)
		if cmd == nil {
			return 0, ErrNoCommand
		}
		err := start(cmd)
		if err == nil {
			return cmd.Process.Pid, nil
		}
		if !errors.Is(err, syscall.EAGAIN) && !errors.Is(err, syscall.ENOMEM) {
			return 0, err
		}
		if !e.mayContinue(ctx, run) {
			log.Debug("giving up on fork retries, run budget gone", "err", err)
			return 0, errForkBudget
		}
		log.Debug("fork pressure, retrying start", "err", err, "backoff", backoff)
		time.Sleep(backoff)
	}
}

// reap waits for pid. While the run is within budget it just polls;
// once the run is overdue it walks the escalation ladder, sending the
// rung's signal and waiting out its patience before stepping up. The
// rung index never regresses within the episode. Returns the ladder
// rung delivered last, -1 when none was needed.
func (e *Engine) reap(ctx context.Context, run *Run, pid int, log *slog.Logger) (unix.WaitStatus, int, error) {
	l := e.ladder()
	var ws unix.WaitStatus
	rung := -1
	var escalateAt, giveUpAt time.Time

	for {
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return ws, rung, err
		}
		if wpid == pid {
			return ws, rung, nil
		}

		now := time.Now()
		if !e.mayContinue(ctx, run) {
			if giveUpAt.IsZero() {
				escalateAt = now
				giveUpAt = now.Add(l.GiveUp)
			}
			if now.After(giveUpAt) {
				return ws, rung, errGaveUp
			}
			if !now.Before(escalateAt) && len(l.Rungs) > 0 {
				rung = l.next(rung)
				r := l.Rungs[rung]
				log.Debug("escalating child signal",
					"pid", pid, "signal", unix.SignalName(r.Signal), "rung", rung)
				if kerr := unix.Kill(pid, r.Signal); kerr != nil && kerr != unix.ESRCH {
					log.Debug("signal child", "pid", pid, "err", kerr)
				}
				patience := r.Patience
				if patience <= 0 {
					patience = l.Poll
				}
				escalateAt = now.Add(patience)
			}
		}
		time.Sleep(l.Poll)
	}
}

func (e *Engine) result(rec *childRecord, code int, cls Classification) Result {
	return Result{
		ExitCode: code,
		Restarts: rec.restarts,
		Segvs:    rec.segvs,
		Buses:    rec.buses,
		Ooms:     rec.ooms,
		Last:     cls,
	}
}

func (e *Engine) mayContinue(ctx context.Context, run *Run) bool {
	return ctx.Err() == nil && run.KeepGoing()
}

func (e *Engine) ladder() Ladder {
	l := e.Ladder
	if len(l.Rungs) == 0 {
		l = DefaultLadder()
	}
	if l.GiveUp <= 0 {
		l.GiveUp = defaultGiveUp
	}
	if l.Poll <= 0 {
		l.Poll = defaultPoll
	}
	return l
}

func (e *Engine) detector() oomdetect.Detector {
	if e.Detector == nil {
		return oomdetect.Nop()
	}
	return e.Detector
}

func (e *Engine) logger() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

func (e *Engine) info(log *slog.Logger, flags Flags, msg string, args ...any) {
	if flags&FlagQuiet != 0 {
		log.Debug(msg, args...)
		return
	}
	log.Info(msg, args...)
}

// SelfCommand builds children by re-execing the current binary with the
// hidden worker subcommand, so the payload runs in a separate process
// the kernel can kill without taking the supervisor down.
func SelfCommand(flags Flags) CommandFunc {
	return func(run *Run) *exec.Cmd {
		exe, err := os.Executable()
		if err != nil {
			exe = "/proc/self/exe"
		}
		args := []string{"worker", "--stressor", run.Name}
		if !run.Deadline.IsZero() {
			args = append(args, "--timeout", run.Remaining().String())
		}
		if flags&FlagDropCaps != 0 {
			args = append(args, "--drop-caps")
		}
		if flags&FlagQuiet != 0 {
			args = append(args, "--quiet")
		}
		if flags&FlagSkipOomAdjust != 0 {
			args = append(args, "--skip-oom-adjust")
		}
		for _, a := range run.Args {
			args = append(args, "--arg", a)
		}
		cmd := exec.Command(exe, args...)
		// plain files only: copier goroutines would outlive our raw wait
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd
	}
}
