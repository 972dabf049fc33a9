package supervise

import (
	"time"

	"golang.org/x/sys/unix"
)

// Rung is one step of the signal-escalation ladder: the signal to send
// and how long to wait for the child to react before stepping up.
type Rung struct {
	Signal   unix.Signal
	Patience time.Duration
}

// Ladder is an ordered, fixed sequence of increasingly forceful
// termination signals applied to an unresponsive child. The rung index
// never regresses within one wait episode; once at the final rung it
// stays there until the child is reaped or GiveUp elapses.
type Ladder struct {
	Rungs []Rung

	// GiveUp bounds one wait-escalation episode in wall-clock time.
	GiveUp time.Duration

	// Poll is the reap polling interval.
	Poll time.Duration
}

const (
	defaultGiveUp = 120 * time.Second
	defaultPoll   = 20 * time.Millisecond
)

// DefaultLadder is a few polite SIGALRMs, one SIGTERM, then SIGKILL.
// A child stuck in an uninterruptible kernel wait will not react to the
// first SIGALRM; the stepped patience values are tuned defaults, not
// contract.
func DefaultLadder() Ladder {
	rungs := make([]Rung, 0, 7)
	for i := 0; i < 5; i++ {
		rungs = append(rungs, Rung{Signal: unix.SIGALRM, Patience: 200 * time.Millisecond})
	}
	rungs = append(rungs,
		Rung{Signal: unix.SIGTERM, Patience: time.Second},
		Rung{Signal: unix.SIGKILL})
	return Ladder{
		Rungs:  rungs,
		GiveUp: defaultGiveUp,
		Poll:   defaultPoll,
	}
}

// KillIndex returns the index of the first SIGKILL rung, or len(Rungs)
// when the ladder never reaches SIGKILL. A child found dead from
// SIGKILL before this rung was delivered did not get it from us.
func (l Ladder) KillIndex() int {
	for i, r := range l.Rungs {
		if r.Signal == unix.SIGKILL {
			return i
		}
	}
	return len(l.Rungs)
}

// next advances the rung index monotonically, sticking at the last rung.
func (l Ladder) next(idx int) int {
	if idx+1 >= len(l.Rungs) {
		return len(l.Rungs) - 1
	}
	return idx + 1
}
