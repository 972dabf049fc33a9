package supervise

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Cause tags the reason a supervised child stopped running.
type Cause int

const (
	// CauseExit means the child exited on its own; Code holds the
	// exit status.
	CauseExit Cause = iota

	// CauseOOM means the child died from a SIGKILL we never sent,
	// which under memory pressure is the kernel OOM killer.
	CauseOOM

	// CauseSegv means the child crashed with SIGSEGV.
	CauseSegv

	// CauseBus means the child crashed with SIGBUS.
	CauseBus

	// CauseSignal means the child died from some other signal; Signal
	// holds it.
	CauseSignal

	// CauseWaitFailed means the child could not be reaped; Err holds
	// the wait error.
	CauseWaitFailed
)

func (c Cause) String() string {
	switch c {
	case CauseExit:
		return "exit"
	case CauseOOM:
		return "oom"
	case CauseSegv:
		return "segv"
	case CauseBus:
		return "bus"
	case CauseSignal:
		return "signal"
	case CauseWaitFailed:
		return "wait-failed"
	default:
		return "unknown"
	}
}

// Classification is the tagged outcome of one child attempt, derived
// from the wait status. It drives the restart decision.
type Classification struct {
	Cause  Cause
	Code   int
	Signal unix.Signal
	Err    error
}

func (c Classification) String() string {
	switch c.Cause {
	case CauseExit:
		return fmt.Sprintf("exited %d", c.Code)
	case CauseSignal:
		return fmt.Sprintf("killed by %s", unix.SignalName(c.Signal))
	case CauseWaitFailed:
		return fmt.Sprintf("wait failed: %v", c.Err)
	default:
		return c.Cause.String()
	}
}

// Classify maps a wait status to a termination classification.
// sentBelowKill must be true when the escalation ladder had not yet
// delivered SIGKILL to this child: a SIGKILL death in that case is
// OOM-shaped, since nobody else in the harness sends SIGKILL.
func Classify(ws unix.WaitStatus, sentBelowKill bool) Classification {
	if ws.Exited() {
		return Classification{Cause: CauseExit, Code: ws.ExitStatus()}
	}
	if ws.Signaled() {
		sig := ws.Signal()
		switch {
		case sig == unix.SIGBUS:
			return Classification{Cause: CauseBus, Signal: sig}
		case sig == unix.SIGSEGV:
			return Classification{Cause: CauseSegv, Signal: sig}
		case sig == unix.SIGKILL && sentBelowKill:
			return Classification{Cause: CauseOOM, Signal: sig}
		default:
			return Classification{Cause: CauseSignal, Signal: sig}
		}
	}
	return Classification{Cause: CauseWaitFailed, Err: fmt.Errorf("unexpected wait status %#x", uint32(ws))}
}
