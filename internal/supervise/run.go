package supervise

import (
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Run identifies one supervised stressor invocation. It is created by
// the caller before the first supervised attempt and lives for the
// whole stress run; the engine only reads it. Ops is bumped by the
// worker body (in-process mode) and once per completed child attempt
// (forked mode).
type Run struct {
	// Name of the stressor, used for logging and child dispatch.
	Name string

	// Args is opaque payload configuration, passed through to the
	// worker as key=value strings.
	Args []string

	// Ops counts completed stress operations.
	Ops *xsync.Counter

	// Deadline is the wall-clock end of the run. Zero means no
	// deadline.
	Deadline time.Time

	// Cont is the caller-owned continue flag. The engine polls it at
	// every state transition; once false no new child is forked. A nil
	// flag means "always continue", bounded by Deadline only.
	Cont *atomic.Bool
}

// NewRun builds a Run with a fresh op counter. A timeout of zero leaves
// the run unbounded.
func NewRun(name string, args []string, timeout time.Duration) *Run {
	r := &Run{
		Name: name,
		Args: args,
		Ops:  xsync.NewCounter(),
	}
	if timeout > 0 {
		r.Deadline = time.Now().Add(timeout)
	}
	return r
}

// KeepGoing reports whether the caller still wants work done.
func (r *Run) KeepGoing() bool {
	if r.Cont != nil && !r.Cont.Load() {
		return false
	}
	if !r.Deadline.IsZero() && time.Now().After(r.Deadline) {
		return false
	}
	return true
}

// Remaining returns the time left until the deadline, zero when the
// deadline has passed and a large duration when there is none.
func (r *Run) Remaining() time.Duration {
	if r.Deadline.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	d := time.Until(r.Deadline)
	if d < 0 {
		return 0
	}
	return d
}
